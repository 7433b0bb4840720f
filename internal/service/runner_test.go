package service

import (
	"context"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danilodaat/automat/internal/adapters/localstorage"
	"github.com/danilodaat/automat/internal/core/domain"
	"github.com/danilodaat/automat/internal/core/ports"
	"github.com/danilodaat/automat/internal/keywords"
)

// gatedAcquirer blocks every job until release is closed and records the
// highest number of jobs seen inside it at once.
type gatedAcquirer struct {
	release chan struct{}
	entered chan string
	active  int32
	peak    int32
}

func (g *gatedAcquirer) Acquire(ctx context.Context, job domain.JobRequest, ws ports.Workspace, _ ports.ProgressFunc) (*domain.AudioArtifact, error) {
	n := atomic.AddInt32(&g.active, 1)
	defer atomic.AddInt32(&g.active, -1)
	for {
		p := atomic.LoadInt32(&g.peak)
		if n <= p || atomic.CompareAndSwapInt32(&g.peak, p, n) {
			break
		}
	}
	g.entered <- job.ID
	select {
	case <-g.release:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	path := ws.Path("audio.mp3")
	if err := os.WriteFile(path, []byte("ID3"), 0644); err != nil {
		return nil, err
	}
	return &domain.AudioArtifact{LocalPath: path, Job: job}, nil
}

type staticAnalyzer struct{}

func (staticAnalyzer) Analyze(_ context.Context, t domain.Transcript) domain.AnalysisResult {
	return domain.AnalysisResult{Entities: domain.NewEntities(), Topics: []string{"Otro"}, Transcript: t.Text}
}

type textTranscriber string

func (t textTranscriber) Transcribe(context.Context, domain.AudioArtifact) (domain.Transcript, error) {
	return domain.Transcript{Text: string(t)}, nil
}

func newRunnerFixture(t *testing.T, ctx context.Context, maxConcurrent int) (*Runner, *gatedAcquirer, *recordingSink) {
	t.Helper()
	logger, _ := logtest.NewNullLogger()
	acq := &gatedAcquirer{release: make(chan struct{}), entered: make(chan string, 16)}
	sink := &recordingSink{}
	orch := NewOrchestrator(Deps{
		Workspaces:  localstorage.NewLocalStorage(t.TempDir()),
		Acquirer:    acq,
		Transcriber: textTranscriber("hola"),
		Analyzer:    staticAnalyzer{},
		Keywords:    staticKeywords{},
		Matcher:     keywords.Matcher{},
		Events:      sink,
		Logger:      logger,
	})
	return NewRunner(ctx, orch, maxConcurrent, logger), acq, sink
}

func TestSubmitReturnsBeforeJobCompletes(t *testing.T) {
	r, acq, sink := newRunnerFixture(t, context.Background(), 2)

	id, err := r.Submit(domain.StartRequest{Kind: "radio", RecordID: float64(42)}, "sid-7")
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	select {
	case got := <-acq.entered:
		assert.Equal(t, id, got)
	case <-time.After(2 * time.Second):
		t.Fatal("job never started")
	}
	assert.Empty(t, sink.terminal())

	close(acq.release)
	r.Wait()

	terminal := sink.terminal()
	require.Len(t, terminal, 1)
	assert.Equal(t, EventProcessingDone, terminal[0].event)
	assert.Equal(t, "sid-7", terminal[0].session)
}

func TestRunnerBoundsConcurrency(t *testing.T) {
	r, acq, sink := newRunnerFixture(t, context.Background(), 2)

	ids := map[string]bool{}
	for i := 0; i < 5; i++ {
		id, err := r.Submit(domain.StartRequest{Kind: "tv", RecordID: "1"}, "")
		require.NoError(t, err)
		ids[id] = true
	}
	assert.Len(t, ids, 5)

	for i := 0; i < 2; i++ {
		<-acq.entered
	}
	select {
	case <-acq.entered:
		t.Fatal("a third job started while two were running")
	case <-time.After(100 * time.Millisecond):
	}

	close(acq.release)
	var drain sync.WaitGroup
	drain.Add(1)
	go func() {
		defer drain.Done()
		for i := 0; i < 3; i++ {
			<-acq.entered
		}
	}()
	r.Wait()
	drain.Wait()

	assert.LessOrEqual(t, atomic.LoadInt32(&acq.peak), int32(2))
	assert.Len(t, sink.terminal(), 5)
}

func TestSubmitAfterShutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	r, _, _ := newRunnerFixture(t, ctx, 1)
	cancel()

	_, err := r.Submit(domain.StartRequest{Kind: "radio", RecordID: "1"}, "")
	assert.ErrorIs(t, err, ErrShuttingDown)
}

func TestCancelledJobStillTerminates(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	r, acq, sink := newRunnerFixture(t, ctx, 1)

	_, err := r.Submit(domain.StartRequest{Kind: "radio", RecordID: "1"}, "")
	require.NoError(t, err)
	<-acq.entered
	cancel()
	r.Wait()

	terminal := sink.terminal()
	require.Len(t, terminal, 1)
	assert.Equal(t, EventProcessingError, terminal[0].event)
}

func TestNewJob(t *testing.T) {
	now := time.Date(2024, 3, 6, 10, 0, 0, 0, time.FixedZone("PET", -5*3600))

	job := NewJob(domain.StartRequest{Kind: " YouTube ", YoutubeURL: " https://youtu.be/dQw4w9WgXcQ "}, "sid", now)
	assert.Equal(t, domain.SourceOnlineVideo, job.Kind)
	assert.Equal(t, "https://youtu.be/dQw4w9WgXcQ", job.Identifier)
	assert.Equal(t, "sid", job.Session)
	assert.Equal(t, time.UTC, job.CreatedAt.Location())
	assert.Len(t, job.ID, 36)

	other := NewJob(domain.StartRequest{Kind: "podcast", RecordID: float64(3)}, "", now)
	assert.Equal(t, domain.SourceKind("podcast"), other.Kind)
	assert.Equal(t, "3", other.Identifier)
	assert.NotEqual(t, job.ID, other.ID)
}
