package deepgram

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/danilodaat/automat/internal/core/domain"
)

const (
	DefaultURL      = "https://api.deepgram.com/v1/listen"
	DefaultModel    = "nova-2"
	DefaultLanguage = "es"
	DefaultTimeout  = 10 * time.Minute
)

// Options configure a Transcriber. Zero fields take the defaults.
type Options struct {
	APIKey   string
	URL      string
	Model    string
	Language string
	Timeout  time.Duration
}

// Transcriber implements ports.Transcriber using the Deepgram REST API.
type Transcriber struct {
	apiKey   string
	endpoint string
	model    string
	language string
	client   *http.Client
}

// NewTranscriber creates a Transcriber. The API key is required.
func NewTranscriber(opts Options) (*Transcriber, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("deepgram API key not set")
	}
	if opts.URL == "" {
		opts.URL = DefaultURL
	}
	if opts.Model == "" {
		opts.Model = DefaultModel
	}
	if opts.Language == "" {
		opts.Language = DefaultLanguage
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	return &Transcriber{
		apiKey:   opts.APIKey,
		endpoint: opts.URL,
		model:    opts.Model,
		language: opts.Language,
		client:   &http.Client{Timeout: opts.Timeout},
	}, nil
}

// Transcribe uploads the audio file and returns the first alternative of the
// first channel. Transport errors, non-200 responses and empty transcripts
// are TranscriptionFailed.
func (t *Transcriber) Transcribe(ctx context.Context, audio domain.AudioArtifact) (domain.Transcript, error) {
	f, err := os.Open(audio.LocalPath)
	if err != nil {
		return domain.Transcript{}, domain.NewError(domain.KindTranscriptionFailed, "could not read audio file", err)
	}
	defer f.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.requestURL(), f)
	if err != nil {
		return domain.Transcript{}, domain.NewError(domain.KindTranscriptionFailed, "could not build transcription request", err)
	}
	req.Header.Set("Authorization", "Token "+t.apiKey)
	req.Header.Set("Content-Type", "audio/mpeg")

	resp, err := t.client.Do(req)
	if err != nil {
		return domain.Transcript{}, domain.NewError(domain.KindTranscriptionFailed, "transcription request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return domain.Transcript{}, domain.NewError(domain.KindTranscriptionFailed, "transcription service rejected the audio",
			fmt.Errorf("status %d, body: %s", resp.StatusCode, strings.TrimSpace(string(body))))
	}

	var result listenResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return domain.Transcript{}, domain.NewError(domain.KindTranscriptionFailed, "could not decode transcription response", err)
	}

	text := result.transcript()
	if strings.TrimSpace(text) == "" {
		return domain.Transcript{}, domain.Errorf(domain.KindTranscriptionFailed, "empty transcription")
	}
	return domain.Transcript{Text: text}, nil
}

func (t *Transcriber) requestURL() string {
	q := url.Values{}
	q.Set("model", t.model)
	q.Set("language", t.language)
	q.Set("smart_format", "true")
	return t.endpoint + "?" + q.Encode()
}

type listenResponse struct {
	Results struct {
		Channels []struct {
			Alternatives []struct {
				Transcript string  `json:"transcript"`
				Confidence float64 `json:"confidence"`
			} `json:"alternatives"`
		} `json:"channels"`
	} `json:"results"`
}

func (r listenResponse) transcript() string {
	if len(r.Results.Channels) == 0 || len(r.Results.Channels[0].Alternatives) == 0 {
		return ""
	}
	return r.Results.Channels[0].Alternatives[0].Transcript
}
