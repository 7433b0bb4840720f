// Package analysis turns a transcript into a headline, a summary, entities and
// topics. Each sub-stage has a language-backend implementation and a local
// fallback; which one runs is decided once, when the Analyzer is built.
package analysis

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/danilodaat/automat/internal/core/domain"
	"github.com/danilodaat/automat/internal/core/ports"
	"github.com/danilodaat/automat/internal/retry"
)

// Config configures the Analyzer. A nil Completer selects the fallbacks.
type Config struct {
	Completer   ports.Completer
	Models      Models
	Policy      retry.Policy
	ChunkBudget int
	Logger      logrus.FieldLogger
}

// Analyzer implements ports.TextAnalyzer.
type Analyzer struct {
	Summarizer ports.Summarizer
	Headlines  ports.HeadlineWriter
	Entities   ports.EntityExtractor
	Topics     ports.TopicClassifier
	logger     logrus.FieldLogger
}

// New builds an Analyzer backed by cfg.Completer, or by the local fallbacks
// when it is nil.
func New(cfg Config) *Analyzer {
	if cfg.Logger == nil {
		cfg.Logger = logrus.StandardLogger()
	}
	a := &Analyzer{logger: cfg.Logger}

	if cfg.Completer == nil {
		cfg.Logger.Warn("language backend not configured, analysis uses local fallbacks")
		a.Summarizer = TruncatingSummarizer{}
		a.Headlines = TruncatingHeadlineWriter{}
		a.Entities = PatternEntityExtractor{}
		a.Topics = HeuristicTopicClassifier{}
		return a
	}

	if cfg.Models == (Models{}) {
		cfg.Models = DefaultModels
	}
	if cfg.Policy.Attempts == 0 {
		cfg.Policy = DefaultCallPolicy
	}
	if cfg.ChunkBudget == 0 {
		cfg.ChunkBudget = DefaultChunkBudget
	}
	c := caller{completer: cfg.Completer, policy: cfg.Policy, logger: cfg.Logger}
	a.Summarizer = &ChunkedSummarizer{caller: c, model: cfg.Models.Summary, budget: cfg.ChunkBudget}
	a.Headlines = &BackendHeadlineWriter{caller: c, model: cfg.Models.Headline}
	a.Entities = &BackendEntityExtractor{caller: c, model: cfg.Models.Entities}
	a.Topics = &BackendTopicClassifier{caller: c, model: cfg.Models.Topics}
	return a
}

// Analyze runs the four sub-stages concurrently. A stage that panics leaves
// its field at the degraded value; the others are unaffected.
func (a *Analyzer) Analyze(ctx context.Context, t domain.Transcript) domain.AnalysisResult {
	res := domain.AnalysisResult{
		Entities:   domain.NewEntities(),
		Topics:     []string{SentinelTopic},
		Transcript: t.Text,
	}

	var g errgroup.Group
	g.Go(isolate("summary", func() { res.Summary = a.Summarizer.Summarize(ctx, t.Text) }))
	g.Go(isolate("headline", func() { res.Headline = a.Headlines.Headline(ctx, t.Text) }))
	g.Go(isolate("entities", func() { res.Entities = a.Entities.Extract(ctx, t.Text) }))
	g.Go(isolate("topics", func() {
		if topics := a.Topics.Classify(ctx, t.Text); len(topics) > 0 {
			res.Topics = topics
		}
	}))
	if err := g.Wait(); err != nil {
		a.logger.WithError(err).Error("analysis stage failed, continuing with degraded result")
	}
	return res
}

func isolate(stage string, fn func()) func() error {
	return func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("%s stage panicked: %v", stage, r)
			}
		}()
		fn()
		return nil
	}
}
