package daemon

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"periksa/internal/checker"
	"periksa/internal/classifier"
	"periksa/internal/config"
	"periksa/internal/logging"
	"periksa/internal/store"
	"periksa/internal/testsupport"
	"periksa/internal/training"
)

type stubTrainer struct {
	result training.Result
	err    error
}

func (s *stubTrainer) Train(context.Context, string, []training.Sample) (training.Result, error) {
	return s.result, s.err
}

func newTestDaemon(t *testing.T, cfg *config.Config, trainer training.Trainer) (*Daemon, *store.Store) {
	t.Helper()

	st := testsupport.MustOpenStore(t, cfg)
	logger := logging.NewNop()
	router := classifier.NewRouter(nil, classifier.NewEngine(), logger)
	queue := training.NewQueue(st, cfg.Training.Threshold)
	if trainer == nil {
		trainer = &stubTrainer{result: training.Result{Success: true}}
	}
	orchestrator := training.NewOrchestrator(queue, st, trainer, cfg.Training.BaseModelRef, 0, logger)
	checkSvc := checker.NewService(router, nil, st, logger)

	d, err := New(cfg, st, nil, queue, orchestrator, checkSvc, logger)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	return d, st
}

func newTestServer(t *testing.T, d *Daemon) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(d.api.server.Handler)
	t.Cleanup(server.Close)
	return server
}

func getJSON(t *testing.T, url string, out any) *http.Response {
	t.Helper()

	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	if out != nil && resp.StatusCode == http.StatusOK {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
	return resp
}

func postJSON(t *testing.T, url string, body any, out any) *http.Response {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	resp, err := http.Post(url, "application/json", reader)
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	defer resp.Body.Close()
	if out != nil && resp.StatusCode == http.StatusOK {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
	return resp
}

func TestStatusEndpoint(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithThreshold(5))
	d, st := newTestDaemon(t, cfg, nil)
	server := newTestServer(t, d)

	testsupport.SaveAdminLabeled(t, st, "adm-1", "Satu", "hoax")

	var payload struct {
		Running bool `json:"running"`
		Queue   struct {
			TotalPending int `json:"total_pending"`
			Threshold    int `json:"threshold"`
		} `json:"queue"`
	}
	resp := getJSON(t, server.URL+"/api/status", &payload)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	if payload.Queue.TotalPending != 1 || payload.Queue.Threshold != 5 {
		t.Fatalf("unexpected payload %+v", payload)
	}
}

func TestLabelEndpoint(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	d, st := newTestDaemon(t, cfg, nil)
	server := newTestServer(t, d)

	testsupport.SaveRecord(t, st, testsupport.NewRecord("rec-1", "Judul"))

	var labelResp struct {
		Success           bool   `json:"success"`
		CanUseForTraining bool   `json:"can_use_for_training"`
		Label             string `json:"label"`
	}
	resp := postJSON(t, server.URL+"/api/admin/label", map[string]string{
		"news_id": "rec-1",
		"label":   "hoax",
		"notes":   "cek manual",
	}, &labelResp)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	if !labelResp.Success || !labelResp.CanUseForTraining || labelResp.Label != "hoax" {
		t.Fatalf("unexpected response %+v", labelResp)
	}

	record, err := st.GetRecord(context.Background(), "rec-1")
	if err != nil {
		t.Fatalf("GetRecord: %v", err)
	}
	if !record.CanUseForTraining || record.LabelNotes != "cek manual" {
		t.Fatalf("label not persisted: %+v", record)
	}
}

func TestLabelEndpointErrors(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	d, st := newTestDaemon(t, cfg, nil)
	server := newTestServer(t, d)

	resp := postJSON(t, server.URL+"/api/admin/label", map[string]string{
		"news_id": "missing",
		"label":   "hoax",
	}, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("missing record: status %d, want 404", resp.StatusCode)
	}

	testsupport.SaveRecord(t, st, testsupport.NewRecord("rec-1", "Judul"))
	resp = postJSON(t, server.URL+"/api/admin/label", map[string]string{
		"news_id": "rec-1",
		"label":   "mungkin",
	}, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("invalid label: status %d, want 400", resp.StatusCode)
	}
}

func TestBulkLabelEndpoint(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	d, st := newTestDaemon(t, cfg, nil)
	server := newTestServer(t, d)

	testsupport.SaveRecord(t, st, testsupport.NewRecord("rec-1", "Satu"))
	testsupport.SaveRecord(t, st, testsupport.NewRecord("rec-2", "Dua"))

	var bulkResp struct {
		Total   int      `json:"total"`
		Success int      `json:"success"`
		Failed  int      `json:"failed"`
		Errors  []string `json:"errors"`
	}
	resp := postJSON(t, server.URL+"/api/admin/label-bulk", []map[string]string{
		{"news_id": "rec-1", "label": "hoax"},
		{"news_id": "rec-2", "label": "non-hoax"},
		{"news_id": "missing", "label": "hoax"},
	}, &bulkResp)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	if bulkResp.Total != 3 || bulkResp.Success != 2 || bulkResp.Failed != 1 {
		t.Fatalf("unexpected response %+v", bulkResp)
	}
	if len(bulkResp.Errors) != 1 || !strings.Contains(bulkResp.Errors[0], "missing") {
		t.Fatalf("expected one error naming the missing id, got %+v", bulkResp.Errors)
	}
}

func TestTriggerRetrainEndpoint(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithThreshold(2))
	d, st := newTestDaemon(t, cfg, &stubTrainer{result: training.Result{Success: true}})
	server := newTestServer(t, d)

	testsupport.SaveAdminLabeled(t, st, "adm-1", "Satu", "hoax")
	testsupport.SaveAdminLabeled(t, st, "adm-2", "Dua", "non-hoax")

	var retrainResp struct {
		Success     bool `json:"success"`
		Skipped     bool `json:"skipped"`
		SamplesUsed int  `json:"samples_used"`
	}
	resp := postJSON(t, server.URL+"/api/admin/trigger-retrain", nil, &retrainResp)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	if !retrainResp.Success || retrainResp.SamplesUsed != 2 {
		t.Fatalf("unexpected response %+v", retrainResp)
	}

	pending, err := st.CountPending(context.Background())
	if err != nil {
		t.Fatalf("CountPending: %v", err)
	}
	if pending != 0 {
		t.Fatalf("queue should be drained, %d pending", pending)
	}
}

func TestTriggerRetrainBelowThreshold(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithThreshold(10))
	d, st := newTestDaemon(t, cfg, nil)
	server := newTestServer(t, d)

	testsupport.SaveAdminLabeled(t, st, "adm-1", "Satu", "hoax")

	var retrainResp struct {
		Success bool   `json:"success"`
		Skipped bool   `json:"skipped"`
		Message string `json:"message"`
	}
	resp := postJSON(t, server.URL+"/api/admin/trigger-retrain", nil, &retrainResp)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	if !retrainResp.Skipped || retrainResp.Success {
		t.Fatalf("expected skip, got %+v", retrainResp)
	}

	// force bypasses the threshold gate.
	resp = postJSON(t, server.URL+"/api/admin/trigger-retrain?force=true", nil, &retrainResp)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("force status %d", resp.StatusCode)
	}
	if !retrainResp.Success {
		t.Fatalf("force should run, got %+v", retrainResp)
	}
}

func TestCheckerEndpoints(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	d, _ := newTestDaemon(t, cfg, nil)
	server := newTestServer(t, d)

	resp := postJSON(t, server.URL+"/api/checker/check", map[string]string{
		"content": "pendek",
	}, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("short content: status %d, want 400", resp.StatusCode)
	}

	var checkResp struct {
		Prediction string `json:"prediction"`
		Message    string `json:"message"`
		Warning    string `json:"warning"`
	}
	content := "Pemerintah daerah mengumumkan jadwal perbaikan jalan utama selama dua pekan ke depan."
	resp = postJSON(t, server.URL+"/api/checker/check", map[string]string{
		"content": content,
	}, &checkResp)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	if checkResp.Prediction != "non-hoax" || checkResp.Warning == "" {
		t.Fatalf("unexpected response %+v", checkResp)
	}

	var statsResp struct {
		TotalChecks int `json:"total_checks"`
	}
	resp = getJSON(t, server.URL+"/api/checker/stats", &statsResp)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("stats status %d", resp.StatusCode)
	}
	if statsResp.TotalChecks != 1 {
		t.Fatalf("expected 1 recorded check, got %d", statsResp.TotalChecks)
	}
}

func TestNewsEndpoints(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	d, st := newTestDaemon(t, cfg, nil)
	server := newTestServer(t, d)

	long := testsupport.NewRecord("rec-1", "Judul Panjang")
	long.Content = strings.Repeat("x", 800)
	testsupport.SaveRecord(t, st, long)
	testsupport.SaveAdminLabeled(t, st, "adm-1", "Berlabel", "hoax")

	var listResp struct {
		Total int `json:"total"`
		News  []struct {
			ID      string `json:"id"`
			Content string `json:"content"`
		} `json:"news"`
	}
	resp := getJSON(t, server.URL+"/api/news", &listResp)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	if listResp.Total != 2 {
		t.Fatalf("expected 2 records, got %d", listResp.Total)
	}
	for _, item := range listResp.News {
		if len(item.Content) > 500 {
			t.Fatalf("listing content not previewed: %d bytes", len(item.Content))
		}
	}

	var itemResp struct {
		ID      string `json:"id"`
		Content string `json:"content"`
	}
	resp = getJSON(t, server.URL+"/api/news/rec-1", &itemResp)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("item status %d", resp.StatusCode)
	}
	if len(itemResp.Content) != 800 {
		t.Fatalf("detail view must return full content, got %d bytes", len(itemResp.Content))
	}

	resp = getJSON(t, server.URL+"/api/news/unknown", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("missing record: status %d, want 404", resp.StatusCode)
	}

	var unlabeledResp struct {
		Total int `json:"total"`
	}
	resp = getJSON(t, server.URL+"/api/admin/unlabeled", &unlabeledResp)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unlabeled status %d", resp.StatusCode)
	}
	if unlabeledResp.Total != 1 {
		t.Fatalf("expected 1 unlabeled record, got %d", unlabeledResp.Total)
	}

	var labeledResp struct {
		Total int `json:"total"`
	}
	resp = getJSON(t, server.URL+"/api/admin/labeled?trained=false", &labeledResp)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("labeled status %d", resp.StatusCode)
	}
	if labeledResp.Total != 1 {
		t.Fatalf("expected 1 labeled record, got %d", labeledResp.Total)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	d, _ := newTestDaemon(t, cfg, nil)
	server := newTestServer(t, d)

	resp := postJSON(t, server.URL+"/api/status", nil, nil)
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("status %d, want 405", resp.StatusCode)
	}
	resp = getJSON(t, server.URL+"/api/admin/trigger-retrain", nil)
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("status %d, want 405", resp.StatusCode)
	}
}

func TestTrainingHistoryEndpoint(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithThreshold(1))
	d, st := newTestDaemon(t, cfg, &stubTrainer{err: fmt.Errorf("gpu unavailable")})
	server := newTestServer(t, d)

	testsupport.SaveAdminLabeled(t, st, "adm-1", "Satu", "hoax")

	resp := postJSON(t, server.URL+"/api/admin/trigger-retrain", nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("retrain status %d", resp.StatusCode)
	}

	var historyResp struct {
		Total   int `json:"total"`
		History []struct {
			Status  string `json:"status"`
			Message string `json:"message"`
		} `json:"history"`
	}
	resp = getJSON(t, server.URL+"/api/admin/training-history", &historyResp)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("history status %d", resp.StatusCode)
	}
	if historyResp.Total != 1 || historyResp.History[0].Status != "failed" {
		t.Fatalf("expected one failed run, got %+v", historyResp)
	}
	if !strings.Contains(historyResp.History[0].Message, "gpu unavailable") {
		t.Fatalf("failure reason missing: %+v", historyResp.History[0])
	}
}
