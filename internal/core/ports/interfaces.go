package ports

import (
	"context"
	"errors"

	"github.com/danilodaat/automat/internal/core/domain"
)

// RecordStore looks up broadcast metadata by key.
type RecordStore interface {
	// FindRecord returns the record for id. A missing record is reported as
	// (nil, nil); errors are reserved for store failures.
	FindRecord(ctx context.Context, kind domain.SourceKind, id int64) (*domain.BroadcastRecord, error)
}

// Fetcher downloads a remote file to a local path.
type Fetcher interface {
	// Fetch writes the body of url to dest. A non-success status is an error.
	Fetch(ctx context.Context, url, dest string) error
}

// Transcoder converts media files with an external encoder.
type Transcoder interface {
	// ExtractAudio writes the audio track of src to dst as compressed audio.
	ExtractAudio(ctx context.Context, src, dst string) error
	// Run executes the encoder with raw arguments in dir.
	Run(ctx context.Context, dir string, args ...string) error
}

// Extractor pulls audio from an online video host.
type Extractor interface {
	// ExtractAudio downloads the audio-only stream of videoURL into dir, naming
	// files after videoID, and asks the post-processor for an mp3.
	ExtractAudio(ctx context.Context, videoURL, dir, videoID string) error
}

// Acquirer turns a job request into a local audio artifact.
type Acquirer interface {
	Acquire(ctx context.Context, job domain.JobRequest, ws Workspace, progress ProgressFunc) (*domain.AudioArtifact, error)
}

// ProgressFunc reports intermediate progress from inside a stage.
type ProgressFunc func(percent int, message string)

// Transcriber sends an audio artifact to a speech-to-text backend.
type Transcriber interface {
	Transcribe(ctx context.Context, audio domain.AudioArtifact) (domain.Transcript, error)
}

// Completer is a single prompt/response exchange with a language backend.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// CompletionRequest is one language backend call.
type CompletionRequest struct {
	Model     string
	System    string
	User      string
	MaxTokens int
}

// Summarizer produces a summary of transcript text.
type Summarizer interface {
	Summarize(ctx context.Context, text string) string
}

// HeadlineWriter produces a headline for transcript text.
type HeadlineWriter interface {
	Headline(ctx context.Context, text string) string
}

// EntityExtractor produces categorized named entities.
type EntityExtractor interface {
	Extract(ctx context.Context, text string) domain.Entities
}

// TopicClassifier picks up to three taxonomy labels.
type TopicClassifier interface {
	Classify(ctx context.Context, text string) []string
}

// TextAnalyzer runs the whole analysis chain.
type TextAnalyzer interface {
	Analyze(ctx context.Context, t domain.Transcript) domain.AnalysisResult
}

// KeywordSource loads the client keyword directory.
type KeywordSource interface {
	// Load never fails: a missing or malformed source yields an empty directory.
	Load(ctx context.Context) domain.KeywordDirectory
}

// KeywordMatcher finds client keyword hits in an analyzed transcript.
type KeywordMatcher interface {
	Match(transcript string, entities domain.Entities, topics []string, dir domain.KeywordDirectory) []domain.KeywordMatch
}

// EventSink delivers job events to subscribers. An empty session broadcasts.
type EventSink interface {
	Emit(session string, event string, payload any)
}

// Workspace hands out job-unique temporary paths and reclaims them.
type Workspace interface {
	// Dir is the directory owned by the job.
	Dir() string
	// Path returns a tracked path for name inside Dir.
	Path(name string) string
	// Track registers an externally created path for cleanup.
	Track(path string)
	// Remove deletes one path; missing files are not an error.
	Remove(path string) error
	// SweepPartials deletes partially-written download files.
	SweepPartials() error
	// Cleanup deletes every tracked path and the job directory.
	Cleanup() error
}

// WorkspaceProvider allocates the workspace of a job.
type WorkspaceProvider interface {
	Open(ctx context.Context, jobID string) (Workspace, error)
}

// Extraction failure classes reported by Extractor implementations.
var (
	// ErrSourceUnavailable means the video is private or removed. Retrying
	// cannot help.
	ErrSourceUnavailable = errors.New("video is private or unavailable")
	// ErrSourceForbidden means the host blocked the request.
	ErrSourceForbidden = errors.New("video host blocked the request")
)
