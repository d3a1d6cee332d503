package store_test

import (
	"context"
	"testing"
	"time"

	"periksa/internal/store"
	"periksa/internal/testsupport"
)

func TestAppendHistoryAssignsIdentity(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	accuracy := 0.93
	entry := &store.HistoryEntry{
		SamplesUsed: 60,
		Accuracy:    &accuracy,
		Status:      store.HistoryStatusSuccess,
	}
	if err := st.AppendHistory(ctx, entry); err != nil {
		t.Fatalf("AppendHistory: %v", err)
	}
	if entry.ID == "" {
		t.Fatal("expected generated id")
	}
	if entry.TrainedAt.IsZero() {
		t.Fatal("expected assigned timestamp")
	}
}

func TestHistoryOrderAndLimit(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		entry := &store.HistoryEntry{
			TrainedAt:   base.Add(time.Duration(i) * time.Hour),
			SamplesUsed: 50 + i,
			Status:      store.HistoryStatusSuccess,
		}
		if err := st.AppendHistory(ctx, entry); err != nil {
			t.Fatalf("AppendHistory %d: %v", i, err)
		}
	}
	failed := &store.HistoryEntry{
		TrainedAt: base.Add(10 * time.Hour),
		Status:    store.HistoryStatusFailed,
		Message:   "trainer exited non-zero",
	}
	if err := st.AppendHistory(ctx, failed); err != nil {
		t.Fatalf("AppendHistory failed entry: %v", err)
	}

	entries, err := st.History(ctx, 2)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Status != store.HistoryStatusFailed {
		t.Fatalf("most recent entry should be the failure, got %+v", entries[0])
	}
	if entries[0].Message != "trainer exited non-zero" {
		t.Fatalf("message not persisted: %q", entries[0].Message)
	}
	if entries[1].SamplesUsed != 52 {
		t.Fatalf("expected second entry samples_used 52, got %d", entries[1].SamplesUsed)
	}
}
