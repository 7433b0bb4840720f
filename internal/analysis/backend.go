package analysis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/danilodaat/automat/internal/core/domain"
	"github.com/danilodaat/automat/internal/core/ports"
	"github.com/danilodaat/automat/internal/retry"
)

// DefaultCallPolicy bounds every language backend call.
var DefaultCallPolicy = retry.NewFixed(3, 2*time.Second)

// PromptWindow is how much of the transcript the entity and topic prompts see.
const PromptWindow = 2000

// Models names the backend model used by each sub-stage.
type Models struct {
	Summary  string
	Headline string
	Entities string
	Topics   string
}

// DefaultModels are the models each sub-stage is tuned for.
var DefaultModels = Models{
	Summary:  "gpt-4o-mini",
	Headline: "gpt-3.5-turbo-1106",
	Entities: "gpt-4o-mini",
	Topics:   "gpt-3.5-turbo-1106",
}

const (
	summaryPrompt  = "Genera un resumen muy conciso y preciso de la siguiente noticia, que ocurre en Perú a menos que se mencione explícitamente otro país. El resumen debe tener un máximo de 3 oraciones."
	headlinePrompt = "Genera un titular conciso y atractivo para la siguiente noticia, que se asume ocurre en Perú a menos que se especifique lo contrario."
	entitySystem   = "Eres un asistente experto en identificación y corrección de entidades nombradas, con conocimiento especial sobre Perú."
	entityPrompt   = `Identifica y lista las entidades en el siguiente texto, clasificándolas en las siguientes categorías:
- Personas
- Organizaciones
- Ubicaciones
- Países
- Productos

Reglas:
1. Usa el formato "Entidad1, Entidad2, ..."
2. Corrige los errores ortográficos en los nombres de las entidades.
3. Usa mayúsculas iniciales para nombres propios.
4. Si no hay entidades para una categoría, omítela.
5. Presta especial atención a las entidades peruanas.

Texto: %s`
	topicPrompt = "Clasifica el tema de la siguiente transcripción en hasta tres de estas categorías: %s. Transcripción: %s"
)

// caller performs one retried backend exchange.
type caller struct {
	completer ports.Completer
	policy    retry.Policy
	logger    logrus.FieldLogger
}

func (c caller) call(ctx context.Context, stage string, req ports.CompletionRequest) (string, error) {
	var out string
	err := c.policy.Do(ctx, func(ctx context.Context, _ int) error {
		resp, err := c.completer.Complete(ctx, req)
		if err != nil {
			return err
		}
		out = strings.TrimSpace(resp)
		return nil
	}, func(attempt int, err error, _ time.Duration) {
		c.logger.WithError(err).WithFields(logrus.Fields{"stage": stage, "attempt": attempt}).Warn("language backend call failed")
	})
	if err != nil {
		c.logger.WithError(err).WithField("stage", stage).Errorf("language backend gave up after %d attempts", c.policy.MaxAttempts())
		return "", err
	}
	return out, nil
}

// ChunkedSummarizer summarizes every chunk independently and joins the
// results in order.
type ChunkedSummarizer struct {
	caller
	model  string
	budget int
}

func (s *ChunkedSummarizer) Summarize(ctx context.Context, text string) string {
	chunks := Chunk(text, s.budget)
	parts := make([]string, 0, len(chunks))
	for _, ch := range chunks {
		out, err := s.call(ctx, "summary", ports.CompletionRequest{
			Model:     s.model,
			System:    summaryPrompt,
			User:      ch,
			MaxTokens: 150,
		})
		if err != nil {
			return ""
		}
		parts = append(parts, out)
	}
	return strings.Join(parts, " ")
}

// BackendHeadlineWriter asks the backend for a headline over the full text.
type BackendHeadlineWriter struct {
	caller
	model string
}

func (h *BackendHeadlineWriter) Headline(ctx context.Context, text string) string {
	out, err := h.call(ctx, "headline", ports.CompletionRequest{
		Model:     h.model,
		System:    headlinePrompt,
		User:      text,
		MaxTokens: 60,
	})
	if err != nil {
		return ""
	}
	return out
}

// BackendEntityExtractor asks the backend for categorized entity lists.
type BackendEntityExtractor struct {
	caller
	model string
}

func (x *BackendEntityExtractor) Extract(ctx context.Context, text string) domain.Entities {
	out, err := x.call(ctx, "entities", ports.CompletionRequest{
		Model:     x.model,
		System:    entitySystem,
		User:      fmt.Sprintf(entityPrompt, window(text, PromptWindow)),
		MaxTokens: 300,
	})
	if err != nil {
		return domain.NewEntities()
	}
	return ParseEntities(out)
}

// ParseEntities reads "Category: item, item" lines. Markdown emphasis and
// list bullets around categories and items are dropped; lines without a
// colon are ignored.
func ParseEntities(response string) domain.Entities {
	e := domain.NewEntities()
	for _, line := range strings.Split(response, "\n") {
		category, items, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		category = cleanEntity(strings.TrimLeft(strings.TrimSpace(category), "-•"))
		if category == "" {
			continue
		}
		var clean []string
		for _, item := range strings.Split(items, ",") {
			if it := cleanEntity(item); it != "" {
				clean = append(clean, it)
			}
		}
		e.Set(category, clean)
	}
	return e
}

func cleanEntity(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, "*", ""))
}

// BackendTopicClassifier asks the backend to pick taxonomy labels and keeps
// the ones that appear in its answer.
type BackendTopicClassifier struct {
	caller
	model string
}

func (c *BackendTopicClassifier) Classify(ctx context.Context, text string) []string {
	out, err := c.call(ctx, "topics", ports.CompletionRequest{
		Model:     c.model,
		System:    fmt.Sprintf(topicPrompt, strings.Join(Taxonomy, ", "), window(text, PromptWindow)),
		MaxTokens: 120,
	})
	if err != nil {
		return []string{SentinelTopic}
	}
	return MatchTaxonomy(out)
}
