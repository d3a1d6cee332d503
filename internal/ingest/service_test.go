package ingest_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"periksa/internal/classifier"
	"periksa/internal/identity"
	"periksa/internal/ingest"
	"periksa/internal/logging"
	"periksa/internal/news"
	"periksa/internal/testsupport"
)

func feedServer(t *testing.T, itemCount int) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	var server *httptest.Server

	mux.HandleFunc("/feed", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<?xml version="1.0" encoding="UTF-8"?><rss version="2.0"><channel><title>Berita</title>`)
		for i := 0; i < itemCount; i++ {
			fmt.Fprintf(w, `<item><title>Berita %d</title><link>%s/artikel/%d</link><description>Ringkasan %d</description></item>`, i, server.URL, i, i)
		}
		fmt.Fprint(w, `</channel></rss>`)
	})
	mux.HandleFunc("/artikel/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `<html><body><article>Isi lengkap artikel dari %s.</article></body></html>`, r.URL.Path)
	})

	server = httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func newTestService(t *testing.T, server *httptest.Server, records ingest.RecordStore) *ingest.Service {
	t.Helper()

	router := classifier.NewRouter(nil, classifier.NewEngine(), logging.NewNop())
	fetcher := ingest.NewHTTPFetcher(5 * time.Second)
	return ingest.NewService(server.URL+"/feed", fetcher, router, records, 2, logging.NewNop())
}

func TestPollIngestsNewArticles(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	server := feedServer(t, 3)
	service := newTestService(t, server, st)
	ctx := context.Background()

	summary, err := service.Poll(ctx)
	if err != nil {
		t.Fatalf("Poll: %v", err)
	}
	if summary.Total != 3 || summary.Processed != 3 || summary.Skipped != 0 {
		t.Fatalf("unexpected summary %+v", summary)
	}

	id := identity.FromLink(server.URL + "/artikel/0")
	record, err := st.GetRecord(ctx, id)
	if err != nil {
		t.Fatalf("GetRecord: %v", err)
	}
	if record == nil {
		t.Fatal("ingested record not found")
	}
	if record.LabeledBy != news.LabeledBySystem {
		t.Fatalf("labeled_by = %s, want system", record.LabeledBy)
	}
	if record.SystemLabel == "" || record.SystemConfidence <= 0 {
		t.Fatalf("missing system verdict: %+v", record)
	}
	if record.Content == "" {
		t.Fatal("article content not fetched")
	}
}

func TestPollSkipsKnownArticles(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	server := feedServer(t, 2)
	service := newTestService(t, server, st)
	ctx := context.Background()

	if _, err := service.Poll(ctx); err != nil {
		t.Fatalf("first Poll: %v", err)
	}
	summary, err := service.Poll(ctx)
	if err != nil {
		t.Fatalf("second Poll: %v", err)
	}
	if summary.Processed != 0 || summary.Skipped != 2 {
		t.Fatalf("repeat poll should skip everything, got %+v", summary)
	}
}

func TestPollRelabelSurvivesReingestion(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	server := feedServer(t, 1)
	service := newTestService(t, server, st)
	ctx := context.Background()

	if _, err := service.Poll(ctx); err != nil {
		t.Fatalf("Poll: %v", err)
	}

	id := identity.FromLink(server.URL + "/artikel/0")
	record, err := st.GetRecord(ctx, id)
	if err != nil || record == nil {
		t.Fatalf("GetRecord: %v %v", record, err)
	}
	if err := record.ApplyAdminLabel("hoax", "", time.Now()); err != nil {
		t.Fatalf("ApplyAdminLabel: %v", err)
	}
	testsupport.SaveRecord(t, st, record)

	if _, err := service.Poll(ctx); err != nil {
		t.Fatalf("re-poll: %v", err)
	}
	after, err := st.GetRecord(ctx, id)
	if err != nil {
		t.Fatalf("GetRecord after re-poll: %v", err)
	}
	if after.LabeledBy != news.LabeledByAdmin || !after.CanUseForTraining {
		t.Fatalf("re-ingestion must not clobber admin label, got %+v", after)
	}
}

func TestPollBadFeed(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	service := newTestService(t, server, st)
	if _, err := service.Poll(context.Background()); err == nil {
		t.Fatal("expected error for unreachable feed")
	}
}
