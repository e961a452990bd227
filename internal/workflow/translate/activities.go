package translate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	backend "github.com/redis/go-redis/v9"

	"github.com/calvora/conveyor/internal/observability"
	"github.com/calvora/conveyor/pkg/domain"
	"github.com/calvora/conveyor/pkg/queue"
	"github.com/calvora/conveyor/pkg/registry"
)

// Activity names registered by this workflow.
const (
	ActivityTranslate = "translate_phrase"
	ActivityComplete  = "complete_translate"
)

// resultTTL keeps a finished stream readable for late consumers before the
// broker expires it.
const resultTTL = time.Hour

// Translator produces a translation as a stream of chunks. Vendor adapters
// (LLM services) implement this outside the orchestration core.
type Translator interface {
	Translate(ctx context.Context, phrase, language string) (<-chan string, error)
}

// WordByWord is a trivial Translator that streams the phrase back one word at
// a time, tagged with the target language. It stands in where no vendor
// adapter is configured.
type WordByWord struct{}

func (WordByWord) Translate(ctx context.Context, phrase, language string) (<-chan string, error) {
	out := make(chan string)
	go func() {
		defer close(out)
		for _, word := range strings.Fields(phrase) {
			select {
			case out <- fmt.Sprintf("%s(%s)", word, language):
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

// Activities streams translation chunks into the run's result queue. The
// producer checks cancellation on every publish; a cancelled run surfaces as a
// non-retryable failure so the host does not re-run the stream.
type Activities struct {
	translator Translator
	client     *backend.Client
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// ActivitiesOption configures an Activities set.
type ActivitiesOption func(*Activities)

// WithMetrics counts published chunks on the orchestration metrics.
func WithMetrics(m *observability.Metrics) ActivitiesOption {
	return func(a *Activities) {
		a.metrics = m
	}
}

// NewActivities creates the translate activity set.
func NewActivities(translator Translator, client *backend.Client, logger *slog.Logger, opts ...ActivitiesOption) *Activities {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	a := &Activities{translator: translator, client: client, logger: logger}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Register adds the translate activities to the registry.
func (a *Activities) Register(reg *registry.Registry) error {
	if err := reg.Register(ActivityTranslate, a.translate); err != nil {
		return err
	}
	return reg.Register(ActivityComplete, a.complete)
}

// translate streams chunks for (phrase, language, run id) into the queue and
// returns the assembled text.
func (a *Activities) translate(ctx context.Context, args []any) (any, error) {
	phrase, language, runID, err := translateArgs(args)
	if err != nil {
		return nil, err
	}

	mgr := queue.New(a.client, queue.WithRunID(runID), queue.WithLogger(a.logger))
	chunks, err := a.translator.Translate(ctx, phrase, language)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ActivityTranslate, err)
	}

	var sb strings.Builder
	for chunk := range chunks {
		if err := mgr.Publish(ctx, map[string]any{"content": chunk}); err != nil {
			if errors.Is(err, queue.ErrCancelled) {
				// Consumer walked away; do not let the host replay the stream.
				return nil, &domain.ActivityError{
					Type:    "QueueCancelledError",
					Message: fmt.Sprintf("run %s cancelled by consumer", runID),
				}
			}
			return nil, err
		}
		if a.metrics != nil {
			a.metrics.QueuePublishes.Inc()
		}
		sb.WriteString(chunk)
	}
	return sb.String(), nil
}

// complete appends the terminal message so the consumer's stream ends.
func (a *Activities) complete(ctx context.Context, args []any) (any, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("%s: expected 1 argument, got %d", ActivityComplete, len(args))
	}
	runID, ok := args[0].(string)
	if !ok {
		return nil, fmt.Errorf("%s: run id must be a string", ActivityComplete)
	}
	mgr := queue.New(a.client, queue.WithRunID(runID), queue.WithLogger(a.logger))
	return nil, mgr.MarkComplete(ctx, resultTTL)
}

func translateArgs(args []any) (phrase, language, runID string, err error) {
	if len(args) != 3 {
		return "", "", "", fmt.Errorf("%s: expected 3 arguments, got %d", ActivityTranslate, len(args))
	}
	names := []string{"phrase", "language", "run id"}
	vals := make([]string, 3)
	for i, arg := range args {
		s, ok := arg.(string)
		if !ok {
			return "", "", "", fmt.Errorf("%s: %s must be a string", ActivityTranslate, names[i])
		}
		vals[i] = s
	}
	return vals[0], vals[1], vals[2], nil
}
