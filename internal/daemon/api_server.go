package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"periksa/internal/api"
	"periksa/internal/checker"
	"periksa/internal/config"
	"periksa/internal/logging"
	"periksa/internal/news"
	"periksa/internal/training"
)

type apiServer struct {
	bind    string
	logger  *slog.Logger
	daemon  *Daemon
	newsSvc *api.NewsService

	listener net.Listener
	server   *http.Server
}

func newAPIServer(cfg *config.Config, d *Daemon, logger *slog.Logger) (*apiServer, error) {
	if cfg == nil || d == nil {
		return nil, nil
	}
	bind := strings.TrimSpace(cfg.Paths.APIBind)
	if bind == "" {
		return nil, nil
	}

	srv := &apiServer{
		bind:    bind,
		logger:  logger,
		daemon:  d,
		newsSvc: api.NewNewsService(d.store, logger),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/status", srv.handleStatus)
	mux.HandleFunc("/api/stats", srv.handleStats)
	mux.HandleFunc("/api/news", srv.handleNewsList)
	mux.HandleFunc("/api/news/", srv.handleNewsItem)
	mux.HandleFunc("/api/news/fetch", srv.handleFetch)
	mux.HandleFunc("/api/admin/label", srv.handleLabel)
	mux.HandleFunc("/api/admin/label-bulk", srv.handleLabelBulk)
	mux.HandleFunc("/api/admin/training-queue", srv.handleTrainingQueue)
	mux.HandleFunc("/api/admin/pending-training", srv.handlePendingTraining)
	mux.HandleFunc("/api/admin/trigger-retrain", srv.handleTriggerRetrain)
	mux.HandleFunc("/api/admin/training-history", srv.handleTrainingHistory)
	mux.HandleFunc("/api/admin/unlabeled", srv.handleUnlabeled)
	mux.HandleFunc("/api/admin/labeled", srv.handleLabeled)
	mux.HandleFunc("/api/checker/check", srv.handleCheck)
	mux.HandleFunc("/api/checker/check-url", srv.handleCheckURL)
	mux.HandleFunc("/api/checker/stats", srv.handleCheckStats)
	mux.HandleFunc("/api/checker/recent", srv.handleCheckRecent)

	srv.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv, nil
}

func (s *apiServer) start(ctx context.Context) error {
	if s == nil {
		return nil
	}
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log().Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.log().Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

func (s *apiServer) stop() {
	if s == nil {
		return
	}
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

// Addr returns the bound listener address, useful when binding to port 0.
func (s *apiServer) addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *apiServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	status := s.daemon.Status(r.Context())
	s.writeJSON(w, http.StatusOK, map[string]any{
		"running":       status.Running,
		"database_path": status.DatabasePath,
		"lock_path":     status.LockFilePath,
		"queue": map[string]any{
			"total_pending":      status.Queue.TotalPending,
			"total_trained":      status.Queue.TotalTrained,
			"threshold":          status.Queue.Threshold,
			"ready_for_training": status.Queue.ReadyForTraining,
		},
	})
}

func (s *apiServer) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	counts, err := s.newsSvc.LabelCounts(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	queueStatus, err := s.daemon.queue.Status(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"records_by_labeler": counts,
		"queue":              api.QueueStatusFromStatus(queueStatus),
	})
}

func (s *apiServer) handleNewsList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	items, err := s.newsSvc.List(r.Context(), queryLimit(r, 50))
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"total": len(items), "news": items})
}

func (s *apiServer) handleNewsItem(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/api/news/")
	if id == "" || strings.Contains(id, "/") {
		s.writeError(w, http.StatusNotFound, "not found")
		return
	}
	item, err := s.newsSvc.Get(r.Context(), id)
	if errors.Is(err, news.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, "news not found")
		return
	}
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, item)
}

func (s *apiServer) handleFetch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.daemon.ingest == nil {
		s.writeError(w, http.StatusServiceUnavailable, "ingestion is not configured")
		return
	}
	summary, err := s.daemon.ingest.Poll(r.Context())
	if err != nil {
		s.writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, api.IngestSummary{
		Total:     summary.Total,
		Processed: summary.Processed,
		Skipped:   summary.Skipped,
		Failed:    summary.Failed,
	})
}

func (s *apiServer) handleLabel(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req api.LabelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	resp, err := s.newsSvc.Label(r.Context(), req)
	switch {
	case errors.Is(err, news.ErrNotFound):
		s.writeError(w, http.StatusNotFound, "news not found")
	case errors.Is(err, news.ErrInvalidLabel):
		s.writeError(w, http.StatusBadRequest, err.Error())
	case err != nil:
		s.writeError(w, http.StatusInternalServerError, err.Error())
	default:
		s.writeJSON(w, http.StatusOK, resp)
	}
}

func (s *apiServer) handleLabelBulk(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var requests []api.LabelRequest
	if err := json.NewDecoder(r.Body).Decode(&requests); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	resp, err := s.newsSvc.LabelBulk(r.Context(), requests)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *apiServer) handleTrainingQueue(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	status, err := s.daemon.queue.Status(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, api.QueueStatusFromStatus(status))
}

func (s *apiServer) handlePendingTraining(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	samples, err := s.daemon.queue.PendingItems(r.Context(), queryLimit(r, 100))
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"total": len(samples), "items": api.PendingItemsFromSamples(samples)})
}

func (s *apiServer) handleTriggerRetrain(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	force := r.URL.Query().Get("force") == "true"
	result, err := s.daemon.orchestrator.TriggerRetrain(r.Context(), force)
	if errors.Is(err, training.ErrRetrainInProgress) {
		s.writeError(w, http.StatusConflict, err.Error())
		return
	}
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, api.RetrainResponseFromResult(result))
}

func (s *apiServer) handleTrainingHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	entries, err := s.daemon.store.History(r.Context(), queryLimit(r, 10))
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"total": len(entries), "history": api.HistoryItemsFromEntries(entries)})
}

func (s *apiServer) handleUnlabeled(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	items, err := s.newsSvc.Unlabeled(r.Context(), queryLimit(r, 50))
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"total": len(items), "news": items})
}

func (s *apiServer) handleLabeled(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var trained *bool
	if raw := r.URL.Query().Get("trained"); raw != "" {
		value, err := strconv.ParseBool(raw)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid trained filter")
			return
		}
		trained = &value
	}
	items, err := s.newsSvc.Labeled(r.Context(), queryLimit(r, 50), trained)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"total": len(items), "news": items})
}

func (s *apiServer) handleCheck(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.daemon.checker == nil {
		s.writeError(w, http.StatusServiceUnavailable, "checker is not configured")
		return
	}
	var req api.CheckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	result, err := s.daemon.checker.Check(r.Context(), req.Title, req.Content, req.URL)
	s.writeCheckResult(w, result, err)
}

func (s *apiServer) handleCheckURL(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.daemon.checker == nil {
		s.writeError(w, http.StatusServiceUnavailable, "checker is not configured")
		return
	}
	var req struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	result, err := s.daemon.checker.CheckURL(r.Context(), req.URL)
	s.writeCheckResult(w, result, err)
}

func (s *apiServer) writeCheckResult(w http.ResponseWriter, result *checker.Result, err error) {
	var validationErr *checker.ValidationError
	switch {
	case errors.As(err, &validationErr):
		s.writeError(w, http.StatusBadRequest, validationErr.Reason)
	case err != nil:
		s.writeError(w, http.StatusInternalServerError, err.Error())
	default:
		s.writeJSON(w, http.StatusOK, api.CheckResponse{
			Prediction: string(result.Prediction),
			Confidence: result.Confidence,
			Message:    result.Message,
			Warning:    result.Warning,
		})
	}
}

func (s *apiServer) handleCheckStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.daemon.checker == nil {
		s.writeError(w, http.StatusServiceUnavailable, "checker is not configured")
		return
	}
	stats, err := s.daemon.checker.Stats(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, api.CheckStatsResponse{
		UniqueArticles:     stats.UniqueArticles,
		TotalChecks:        stats.TotalChecks,
		HoaxPredictions:    stats.HoaxPredictions,
		NonHoaxPredictions: stats.NonHoaxPredictions,
		HoaxRatio:          stats.HoaxRatio(),
	})
}

func (s *apiServer) handleCheckRecent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.daemon.checker == nil {
		s.writeError(w, http.StatusServiceUnavailable, "checker is not configured")
		return
	}
	checks, err := s.daemon.checker.Recent(r.Context(), queryLimit(r, 20))
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"total": len(checks), "checks": api.CheckRecordsFromChecks(checks)})
}

func queryLimit(r *http.Request, fallback int) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return fallback
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return fallback
	}
	return limit
}

func (s *apiServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log().Error("failed to encode response", logging.Error(err))
	}
}

func (s *apiServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

func (s *apiServer) log() *slog.Logger {
	if s.logger != nil {
		return s.logger.With(logging.String(logging.FieldComponent, "api-server"))
	}
	return logging.NewNop()
}
