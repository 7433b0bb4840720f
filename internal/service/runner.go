package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/danilodaat/automat/internal/core/domain"
)

// ErrShuttingDown is returned by Submit once the runner's context is done.
var ErrShuttingDown = errors.New("server is shutting down")

// Runner schedules jobs in the background, one goroutine per job, with at
// most maxConcurrent jobs running at once. Jobs share nothing but the
// read-only collaborators of the Orchestrator.
type Runner struct {
	ctx   context.Context
	orch  *Orchestrator
	queue chan struct{}
	wg    sync.WaitGroup
	log   logrus.FieldLogger
	now   func() time.Time
}

// NewRunner creates a runner whose jobs live until ctx is done.
func NewRunner(ctx context.Context, orch *Orchestrator, maxConcurrent int, logger logrus.FieldLogger) *Runner {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Runner{
		ctx:   ctx,
		orch:  orch,
		queue: make(chan struct{}, maxConcurrent),
		log:   logger,
		now:   time.Now,
	}
}

// NewJob turns a wire request into a job with a fresh id. An unknown kind is
// kept as-is and fails in acquisition with InvalidSource.
func NewJob(req domain.StartRequest, session string, now time.Time) domain.JobRequest {
	kind, err := domain.ParseSourceKind(req.Kind)
	if err != nil {
		kind = domain.SourceKind(strings.TrimSpace(req.Kind))
	}
	return domain.JobRequest{
		ID:         uuid.New().String(),
		Kind:       kind,
		Identifier: req.Identifier(),
		Session:    session,
		CreatedAt:  now.UTC(),
	}
}

// Submit accepts a job and returns its id without waiting for it. Results
// arrive as events addressed to session, or broadcast when session is empty.
func (r *Runner) Submit(req domain.StartRequest, session string) (string, error) {
	if r.ctx.Err() != nil {
		return "", ErrShuttingDown
	}
	job := NewJob(req, session, r.now())
	r.log.WithFields(logrus.Fields{"job_id": job.ID, "source": job.Kind, "sid": session}).Info("job accepted")

	r.wg.Add(1)
	go r.run(job)
	return job.ID, nil
}

func (r *Runner) run(job domain.JobRequest) {
	defer r.wg.Done()

	select {
	case r.queue <- struct{}{}:
		defer func() { <-r.queue }()
	case <-r.ctx.Done():
		r.log.WithField("job_id", job.ID).Warn("job dropped before start: shutting down")
		return
	}
	r.orch.RunJob(r.ctx, job)
}

// Wait blocks until every submitted job has finished.
func (r *Runner) Wait() {
	r.wg.Wait()
}
