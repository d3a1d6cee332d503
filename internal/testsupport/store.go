package testsupport

import (
	"context"
	"testing"
	"time"

	"periksa/internal/classifier"
	"periksa/internal/config"
	"periksa/internal/news"
	"periksa/internal/store"
)

// MustOpenStore opens a store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *store.Store {
	t.Helper()

	st, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() {
		st.Close()
	})
	return st
}

// NewRecord builds a system-labeled record for tests.
func NewRecord(id, title string) *news.Record {
	return &news.Record{
		ID:               id,
		Title:            title,
		Link:             "https://example.com/" + id,
		Content:          "Isi berita untuk " + title,
		Source:           "example.com",
		SystemLabel:      classifier.LabelNonHoax,
		SystemConfidence: 0.7,
		LabeledBy:        news.LabeledBySystem,
		CreatedAt:        time.Now().UTC(),
	}
}

// SaveRecord persists a record for tests.
func SaveRecord(t testing.TB, st *store.Store, record *news.Record) {
	t.Helper()

	if err := st.SaveRecord(context.Background(), record); err != nil {
		t.Fatalf("store.SaveRecord: %v", err)
	}
}

// SaveAdminLabeled persists a record carrying a fresh admin label.
func SaveAdminLabeled(t testing.TB, st *store.Store, id, title, label string) *news.Record {
	t.Helper()

	record := NewRecord(id, title)
	if err := record.ApplyAdminLabel(label, "", time.Now()); err != nil {
		t.Fatalf("apply admin label: %v", err)
	}
	SaveRecord(t, st, record)
	return record
}
