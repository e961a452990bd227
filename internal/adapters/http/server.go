package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	backend "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/calvora/conveyor/internal/ledger"
	"github.com/calvora/conveyor/internal/runtime"
	"github.com/calvora/conveyor/internal/workflow/transfer"
	"github.com/calvora/conveyor/internal/workflow/translate"
	"github.com/calvora/conveyor/pkg/domain"
	"github.com/calvora/conveyor/pkg/dsl"
	"github.com/calvora/conveyor/pkg/queue"
)

// Server exposes the orchestration core over HTTP: transfer and pipeline entry
// points, streaming consumption of result queues via server-sent events, and
// Prometheus metrics.
type Server struct {
	Transfers     *transfer.Workflow
	Translates    *translate.Workflow
	Interpreter   *runtime.Interpreter
	Ledger        *ledger.Service
	Redis         *backend.Client
	Gatherer      prometheus.Gatherer
	ListenTimeout time.Duration
	Logger        *slog.Logger
}

// NewHandler builds the router.
func NewHandler(s *Server) http.Handler {
	if s.Logger == nil {
		s.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if s.ListenTimeout <= 0 {
		s.ListenTimeout = 30 * time.Second
	}

	r := chi.NewRouter()
	r.Get("/healthz", s.handleHealth)
	if s.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Post("/accounts", s.handleCreateAccount)
	r.Get("/accounts/{id}", s.handleGetAccount)
	r.Post("/transfers", s.handleTransfer)
	r.Post("/pipelines", s.handlePipeline)
	r.Post("/translations", s.handleTranslate)
	r.Get("/streams/{id}", s.handleStream)
	r.Delete("/streams/{id}", s.handleCancelStream)
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type createAccountRequest struct {
	ID      string  `json:"id"`
	Balance float64 `json:"balance"`
}

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	acc, err := s.Ledger.CreateAccount(r.Context(), req.ID, decimal.NewFromFloat(req.Balance))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, acc)
}

func (s *Server) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	acc, err := s.Ledger.GetAccount(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		var notFound *domain.AccountNotFoundError
		if errors.As(err, &notFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		s.Logger.Error("get account failed", "err", err)
		writeError(w, http.StatusInternalServerError, "failed to load account")
		return
	}
	writeJSON(w, http.StatusOK, acc)
}

func (s *Server) handleTransfer(w http.ResponseWriter, r *http.Request) {
	var input transfer.Input
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if input.Amount <= 0 {
		writeError(w, http.StatusBadRequest, "amount must be positive")
		return
	}
	result := s.Transfers.Run(r.Context(), input)
	writeJSON(w, http.StatusOK, result)
}

type pipelineRequest struct {
	Variables map[string]any `json:"variables"`
	Root      map[string]any `json:"root"`
}

func (s *Server) handlePipeline(w http.ResponseWriter, r *http.Request) {
	var req pipelineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	root, err := dsl.Decode(req.Root)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	vars, err := s.Interpreter.Execute(r.Context(), root, req.Variables)
	if err != nil {
		var invalid *dsl.ValidationError
		if errors.As(err, &invalid) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.Logger.Error("pipeline run failed", "err", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"variables": vars})
}

func (s *Server) handleTranslate(w http.ResponseWriter, r *http.Request) {
	var params translate.Params
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if params.Phrase == "" || params.Language == "" {
		writeError(w, http.StatusBadRequest, "phrase and language are required")
		return
	}

	runID := uuid.NewString()
	// The run outlives the request; the client follows it on /streams/{id}.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if _, err := s.Translates.Run(ctx, params, runID); err != nil {
			s.Logger.Error("translate run failed", "run_id", runID, "err", err)
		}
	}()

	writeJSON(w, http.StatusAccepted, map[string]string{"run_id": runID})
}

// handleStream replays a run's result stream as server-sent events until a
// terminal message, cancellation or listen timeout.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	runID := chi.URLParam(r, "id")
	mgr := queue.New(s.Redis, queue.WithRunID(runID), queue.WithLogger(s.Logger))

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		data, err := mgr.Next(r.Context(), s.ListenTimeout)
		if err != nil {
			switch {
			case errors.Is(err, queue.ErrDone):
				writeEvent(w, flusher, "done", nil)
			case errors.Is(err, queue.ErrCancelled):
				writeEvent(w, flusher, "cancelled", nil)
			case errors.Is(err, queue.ErrTimeout):
				writeEvent(w, flusher, "timeout", nil)
			default:
				s.Logger.Error("stream read failed", "run_id", runID, "err", err)
				writeEvent(w, flusher, "error", map[string]any{"message": "stream failed"})
			}
			return
		}
		writeEvent(w, flusher, "message", data)
	}
}

func (s *Server) handleCancelStream(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "id")
	mgr := queue.New(s.Redis, queue.WithRunID(runID), queue.WithLogger(s.Logger))
	if err := mgr.Cancel(r.Context()); err != nil {
		s.Logger.Error("cancel failed", "run_id", runID, "err", err)
		writeError(w, http.StatusInternalServerError, "failed to cancel stream")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeEvent(w http.ResponseWriter, flusher http.Flusher, event string, data map[string]any) {
	if data == nil {
		data = map[string]any{}
	}
	payload, err := json.Marshal(data)
	if err != nil {
		return
	}
	_, _ = w.Write([]byte("event: " + event + "\ndata: " + string(payload) + "\n\n"))
	flusher.Flush()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
