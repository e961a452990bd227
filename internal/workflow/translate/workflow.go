package translate

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/calvora/conveyor/pkg/domain"
	"github.com/calvora/conveyor/pkg/ports"
)

// Params is the translate request payload.
type Params struct {
	Phrase   string `json:"phrase"`
	Language string `json:"language"`
}

// Workflow streams a translation to the run's result queue and terminates the
// stream once the translation activity finishes.
type Workflow struct {
	host    ports.Host
	policy  domain.RetryPolicy
	timeout time.Duration
	logger  *slog.Logger
}

// NewWorkflow creates a translate workflow bound to a host.
func NewWorkflow(h ports.Host, logger *slog.Logger) *Workflow {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Workflow{
		host:    h,
		policy:  domain.DefaultRetryPolicy(),
		timeout: 30 * time.Second,
		logger:  logger,
	}
}

// Run translates params.Phrase, streaming chunks under runID, and returns the
// assembled result. The stream is marked complete even though consumers may
// still be connecting; the broker keeps it readable until expiry.
func (w *Workflow) Run(ctx context.Context, params Params, runID string) (string, error) {
	w.logger.Info("translate workflow started", "run_id", runID, "language", params.Language)

	result, err := w.host.ExecuteActivity(ctx, ActivityTranslate, w.policy, w.timeout,
		params.Phrase, params.Language, runID)
	if err != nil {
		return "", err
	}

	if _, err := w.host.ExecuteActivity(ctx, ActivityComplete, w.policy, w.timeout, runID); err != nil {
		return "", err
	}

	text, _ := result.(string)
	w.logger.Info("translate workflow done", "run_id", runID)
	return text, nil
}
