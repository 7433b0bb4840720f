// Package openai adapts the OpenAI chat completion API to ports.Completer.
package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	goopenai "github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/danilodaat/automat/internal/core/ports"
)

// ErrEmptyResponse is returned when the backend answers without choices.
var ErrEmptyResponse = errors.New("language backend returned no choices")

// Options configure a Completer.
type Options struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
	Logger  logrus.FieldLogger
}

// Completer implements ports.Completer. Calls pass through a circuit breaker
// so an outage fails fast instead of holding every analysis stage for its
// full retry schedule.
type Completer struct {
	client *goopenai.Client
	cb     *gobreaker.CircuitBreaker
}

// NewCompleter returns nil when no API key is configured, which callers treat
// as "backend not available".
func NewCompleter(opts Options) *Completer {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}

	cfg := goopenai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		cfg.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	}
	cfg.HTTPClient = &http.Client{Timeout: opts.Timeout}

	log := opts.Logger
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "openai",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 5 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.WithField("breaker", name).Warnf("circuit breaker %s -> %s", from, to)
		},
	})

	return &Completer{client: goopenai.NewClientWithConfig(cfg), cb: cb}
}

// Complete sends one chat completion and returns the first choice.
func (c *Completer) Complete(ctx context.Context, req ports.CompletionRequest) (string, error) {
	out, err := c.cb.Execute(func() (interface{}, error) {
		resp, err := c.client.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
			Model:     req.Model,
			Messages:  messages(req),
			MaxTokens: req.MaxTokens,
		})
		if err != nil {
			return nil, err
		}
		if len(resp.Choices) == 0 {
			return nil, ErrEmptyResponse
		}
		return resp.Choices[0].Message.Content, nil
	})
	if err != nil {
		return "", fmt.Errorf("chat completion (%s): %w", req.Model, err)
	}
	return strings.TrimSpace(out.(string)), nil
}

func messages(req ports.CompletionRequest) []goopenai.ChatCompletionMessage {
	var msgs []goopenai.ChatCompletionMessage
	if req.System != "" {
		msgs = append(msgs, goopenai.ChatCompletionMessage{Role: goopenai.ChatMessageRoleSystem, Content: req.System})
	}
	if req.User != "" {
		msgs = append(msgs, goopenai.ChatCompletionMessage{Role: goopenai.ChatMessageRoleUser, Content: req.User})
	}
	return msgs
}
