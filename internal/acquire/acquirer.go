// Package acquire turns a job request into a local audio file. Each source
// kind has its own strategy and retry policy; every strategy removes its own
// intermediate files and never relies on the orchestrator's final cleanup.
package acquire

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/danilodaat/automat/internal/core/domain"
	"github.com/danilodaat/automat/internal/core/ports"
	"github.com/danilodaat/automat/internal/retry"
)

// Default retry schedules.
var (
	DefaultBroadcastPolicy = retry.NewFixed(3, 3*time.Second)
	DefaultOnlinePolicy    = retry.NewExponential(5, 3*time.Second)
)

// Deps are the collaborators of the Acquirer.
type Deps struct {
	Records    ports.RecordStore
	Fetcher    ports.Fetcher
	Transcoder ports.Transcoder
	Extractor  ports.Extractor
	URLs       *URLBuilder
	Logger     logrus.FieldLogger
}

// Option adjusts an Acquirer.
type Option func(*Acquirer)

// WithBroadcastPolicy overrides the TV/radio download policy.
func WithBroadcastPolicy(p retry.Policy) Option {
	return func(a *Acquirer) { a.broadcastPolicy = p }
}

// WithOnlinePolicy overrides the online extraction policy.
func WithOnlinePolicy(p retry.Policy) Option {
	return func(a *Acquirer) { a.onlinePolicy = p }
}

type strategy interface {
	acquire(ctx context.Context, job domain.JobRequest, ws ports.Workspace, progress ports.ProgressFunc) (string, error)
}

// Acquirer implements ports.Acquirer.
type Acquirer struct {
	deps            Deps
	broadcastPolicy retry.Policy
	onlinePolicy    retry.Policy
	strategies      map[domain.SourceKind]strategy
}

// New wires the three acquisition strategies.
func New(deps Deps, opts ...Option) *Acquirer {
	if deps.Logger == nil {
		deps.Logger = logrus.StandardLogger()
	}
	a := &Acquirer{
		deps:            deps,
		broadcastPolicy: DefaultBroadcastPolicy,
		onlinePolicy:    DefaultOnlinePolicy,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.strategies = map[domain.SourceKind]strategy{
		domain.SourceBroadcastTV:    &broadcast{a: a, transcode: true},
		domain.SourceBroadcastRadio: &broadcast{a: a},
		domain.SourceOnlineVideo:    &online{a: a},
	}
	return a
}

// Acquire produces exactly one audio artifact for job, or a classified error.
func (a *Acquirer) Acquire(ctx context.Context, job domain.JobRequest, ws ports.Workspace, progress ports.ProgressFunc) (*domain.AudioArtifact, error) {
	if progress == nil {
		progress = func(int, string) {}
	}
	s, ok := a.strategies[job.Kind]
	if !ok {
		return nil, domain.Errorf(domain.KindInvalidSource, "Tipo de pauta inválido %q: debe ser youtube, tv o radio", job.Kind)
	}
	path, err := s.acquire(ctx, job, ws, progress)
	if err != nil {
		return nil, err
	}
	return &domain.AudioArtifact{LocalPath: path, Job: job}, nil
}

func (a *Acquirer) log(job domain.JobRequest) logrus.FieldLogger {
	return a.deps.Logger.WithFields(logrus.Fields{"job_id": job.ID, "source": job.Kind})
}

// parseRecordID validates a broadcast key.
func parseRecordID(identifier string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(identifier), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid record id %q", identifier)
	}
	return id, nil
}
