package service

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/sirupsen/logrus"

	"github.com/danilodaat/automat/internal/core/domain"
	"github.com/danilodaat/automat/internal/core/ports"
)

// Event names emitted for a job.
const (
	EventProgress        = domain.EventProgress
	EventAudioReady      = domain.EventAudioReady
	EventProcessingDone  = domain.EventProcessingDone
	EventProcessingError = domain.EventProcessingError
)

// Deps are the collaborators of the Orchestrator.
type Deps struct {
	Workspaces  ports.WorkspaceProvider
	Acquirer    ports.Acquirer
	Transcriber ports.Transcriber
	Analyzer    ports.TextAnalyzer
	Keywords    ports.KeywordSource
	Matcher     ports.KeywordMatcher
	Events      ports.EventSink
	Logger      logrus.FieldLogger
}

// Orchestrator drives one job through acquisition, transcription, analysis
// and keyword matching.
type Orchestrator struct {
	deps Deps
}

// NewOrchestrator creates a new Orchestrator.
func NewOrchestrator(deps Deps) *Orchestrator {
	if deps.Logger == nil {
		deps.Logger = logrus.StandardLogger()
	}
	if deps.Events == nil {
		deps.Events = NopSink{}
	}
	return &Orchestrator{deps: deps}
}

// RunJob executes a job to its terminal state. It emits exactly one
// processing_done or processing_error event and removes the job's
// temporary files before doing so.
func (o *Orchestrator) RunJob(ctx context.Context, job domain.JobRequest) domain.JobOutcome {
	r := &jobRun{
		o:     o,
		job:   job,
		stage: domain.StagePending,
		log:   o.deps.Logger.WithFields(logrus.Fields{"job_id": job.ID, "source": job.Kind}),
	}
	r.log.WithField("identifier", job.Identifier).Info("starting job")

	report, err := r.execute(ctx)
	r.cleanup()
	return r.finish(report, err)
}

// jobRun is the mutable state of one job.
type jobRun struct {
	o       *Orchestrator
	job     domain.JobRequest
	stage   domain.Stage
	percent int
	ws      ports.Workspace
	log     logrus.FieldLogger
}

func (r *jobRun) execute(ctx context.Context) (report *domain.Report, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.WithField("stage", r.stage).Errorf("panic during job: %v\n%s", rec, debug.Stack())
			report = nil
			err = domain.NewError(domain.KindUnexpected, "unexpected error during processing", fmt.Errorf("panic: %v", rec))
		}
	}()

	d := r.o.deps
	r.enter(domain.StageAcquiring, 5, "Iniciando procesamiento...")

	ws, err := d.Workspaces.Open(ctx, r.job.ID)
	if err != nil {
		return nil, domain.NewError(domain.KindUnexpected, "could not prepare a working directory", err)
	}
	r.ws = ws

	audio, err := d.Acquirer.Acquire(ctx, r.job, ws, r.progress)
	if err != nil {
		return nil, err
	}
	r.enter(domain.StageAcquired, 25, fmt.Sprintf("Audio de %s obtenido exitosamente", r.job.Kind.Label()))
	d.Events.Emit(r.job.Session, EventAudioReady, map[string]string{"mp3": audio.LocalPath})

	r.enter(domain.StageTranscribing, 30, "Audio obtenido, iniciando transcripción...")
	r.progress(50, "Transcribiendo audio...")
	transcript, err := d.Transcriber.Transcribe(ctx, *audio)
	if err != nil {
		return nil, err
	}
	if transcript.Empty() {
		return nil, domain.Errorf(domain.KindTranscriptionFailed, "empty transcription")
	}
	r.log.WithField("chars", len(transcript.Text)).Info("transcription complete")

	r.enter(domain.StageAnalyzing, 65, "Analizando texto...")
	analysis := d.Analyzer.Analyze(ctx, transcript)

	r.enter(domain.StageMatching, 85, "Verificando palabras clave de clientes...")
	dir := d.Keywords.Load(ctx)
	matches := d.Matcher.Match(transcript.Text, analysis.Entities, analysis.Topics, dir)
	if matches == nil {
		matches = []domain.KeywordMatch{}
	}
	r.log.WithFields(logrus.Fields{"clients": dir.Len(), "matches": len(matches)}).Info("keyword matching complete")

	return &domain.Report{AnalysisResult: analysis, Matches: matches}, nil
}

// enter moves to stage and reports percent.
func (r *jobRun) enter(stage domain.Stage, percent int, message string) {
	r.stage = stage
	r.log.WithField("stage", stage).Debug("stage entered")
	r.progress(percent, message)
}

// progress emits a progress event. Percentages never decrease and stay
// within [0, 100].
func (r *jobRun) progress(percent int, message string) {
	if percent < r.percent {
		percent = r.percent
	}
	if percent > 100 {
		percent = 100
	}
	r.percent = percent
	r.o.deps.Events.Emit(r.job.Session, EventProgress, domain.ProgressEvent{Percent: percent, Message: message})
}

func (r *jobRun) cleanup() {
	if r.ws == nil {
		return
	}
	if err := r.ws.Cleanup(); err != nil {
		r.log.WithError(err).Warn("cleanup left files behind")
		return
	}
	r.log.Debug("temporary files removed")
}

func (r *jobRun) finish(report *domain.Report, err error) domain.JobOutcome {
	out := domain.JobOutcome{Job: r.job}
	events := r.o.deps.Events

	if err != nil {
		derr := domain.Classify(err)
		r.stage = domain.StageFailed
		out.Err = derr
		r.log.WithError(err).WithFields(logrus.Fields{"stage": r.stage, "kind": derr.Kind}).Error("job failed")
		events.Emit(r.job.Session, EventProcessingError, map[string]string{"error_message": Describe(derr, r.job)})
		return out
	}

	r.stage = domain.StageCompleted
	r.progress(100, "Procesamiento completado")
	out.Report = report
	r.log.WithField("matches", len(report.Matches)).Info("job completed")
	events.Emit(r.job.Session, EventProcessingDone, report)
	return out
}
