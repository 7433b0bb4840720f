package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// SourceKind identifies where a job's media comes from.
type SourceKind string

const (
	SourceOnlineVideo    SourceKind = "youtube"
	SourceBroadcastTV    SourceKind = "tv"
	SourceBroadcastRadio SourceKind = "radio"
)

// ParseSourceKind maps the wire value of tipo_pauta to a SourceKind.
func ParseSourceKind(s string) (SourceKind, error) {
	switch k := SourceKind(strings.ToLower(strings.TrimSpace(s))); k {
	case SourceOnlineVideo, SourceBroadcastTV, SourceBroadcastRadio:
		return k, nil
	default:
		return "", fmt.Errorf("unknown source kind %q", s)
	}
}

// Label is the upper-cased form used in user-facing messages.
func (k SourceKind) Label() string {
	if k == SourceOnlineVideo {
		return "YouTube"
	}
	return strings.ToUpper(string(k))
}

// JobRequest is one accepted job. It is never mutated after acceptance.
type JobRequest struct {
	ID         string     `json:"job_id"`
	Kind       SourceKind `json:"tipo_pauta"`
	Identifier string     `json:"identifier"` // URL for online video, record key otherwise
	Session    string     `json:"session,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// StartRequest is the wire form of a job descriptor, shared by the websocket
// start_processing message and the POST /start body.
type StartRequest struct {
	Kind       string `json:"tipo_pauta"`
	RecordID   any    `json:"id_pauta,omitempty"`
	YoutubeURL string `json:"youtube_url,omitempty"`
}

// Identifier returns the identifier relevant for the requested kind.
func (r StartRequest) Identifier() string {
	if strings.EqualFold(strings.TrimSpace(r.Kind), string(SourceOnlineVideo)) {
		return strings.TrimSpace(r.YoutubeURL)
	}
	switch v := r.RecordID.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case float64:
		// Fractional or out-of-range numbers keep their literal form so they
		// fail record id parsing instead of naming a different record.
		if v != math.Trunc(v) || math.Abs(v) >= math.MaxInt64 {
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
		return strconv.FormatInt(int64(v), 10)
	default:
		return fmt.Sprint(v)
	}
}

// BroadcastRecord is the metadata row of a scheduled TV or radio segment.
type BroadcastRecord struct {
	ID         int64
	CapturedAt time.Time // UTC
}

// AudioArtifact is the local audio file produced by acquisition.
type AudioArtifact struct {
	LocalPath string
	Job       JobRequest
}

// Transcript is the text produced by the speech-to-text backend.
type Transcript struct {
	Text string
}

// Empty reports whether the transcript carries no usable text.
func (t Transcript) Empty() bool {
	return strings.TrimSpace(t.Text) == ""
}

// AnalysisResult is the output of the text analysis chain.
type AnalysisResult struct {
	Headline   string   `json:"titular"`
	Summary    string   `json:"resumen"`
	Entities   Entities `json:"entidades"`
	Topics     []string `json:"temas"`
	Transcript string   `json:"transcripcion"`
}

// MatchKind distinguishes how a keyword matched.
type MatchKind string

const (
	MatchExactKeyword MatchKind = "palabra clave"
	MatchTopicSector  MatchKind = "sector"
)

// KeywordMatch records one client keyword hit.
type KeywordMatch struct {
	Client string    `json:"cliente"`
	Term   string    `json:"palabra_clave"`
	Kind   MatchKind `json:"tipo"`
}

// Report is the successful job outcome: the analysis plus client matches.
type Report struct {
	AnalysisResult
	Matches []KeywordMatch `json:"coincidencias"`
}

// Event names a job emits to its subscriber.
const (
	EventProgress        = "progress"
	EventAudioReady      = "audio_ready"
	EventProcessingDone  = "processing_done"
	EventProcessingError = "processing_error"
)

// ProgressEvent is one progress notification for a job.
type ProgressEvent struct {
	Percent int    `json:"progress"`
	Message string `json:"message"`
}

// JobOutcome is the single terminal value of a job. Exactly one of Report and
// Err is set.
type JobOutcome struct {
	Job    JobRequest
	Report *Report
	Err    *Error
}

// Succeeded reports whether the job completed.
func (o JobOutcome) Succeeded() bool {
	return o.Err == nil && o.Report != nil
}

// Stage is a state of the job state machine.
type Stage string

const (
	StagePending      Stage = "pending"
	StageAcquiring    Stage = "acquiring"
	StageAcquired     Stage = "acquired"
	StageTranscribing Stage = "transcribing"
	StageAnalyzing    Stage = "analyzing"
	StageMatching     Stage = "matching"
	StageCompleted    Stage = "completed"
	StageFailed       Stage = "failed"
)

// Terminal reports whether no further transition is possible.
func (s Stage) Terminal() bool {
	return s == StageCompleted || s == StageFailed
}

// ClientKeywords is one client entry of the keyword directory.
type ClientKeywords struct {
	Client   string
	Keywords []string
	Contacts []string
	Sector   bool
}

// KeywordDirectory is the read-only client keyword configuration. It is
// loaded per job and never mutated after construction.
type KeywordDirectory struct {
	Clients []ClientKeywords
}

// Len is the number of clients.
func (d KeywordDirectory) Len() int {
	return len(d.Clients)
}
