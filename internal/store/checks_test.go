package store_test

import (
	"context"
	"strings"
	"testing"

	"periksa/internal/classifier"
	"periksa/internal/store"
	"periksa/internal/testsupport"
)

func TestSaveUserCheckIncrementsCounter(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	check := &store.UserCheck{
		ID:         "check-abc",
		Content:    "teks yang dicek pengguna",
		Prediction: classifier.LabelHoax,
		Confidence: 0.7,
	}
	if err := st.SaveUserCheck(ctx, check); err != nil {
		t.Fatalf("SaveUserCheck: %v", err)
	}
	if err := st.SaveUserCheck(ctx, check); err != nil {
		t.Fatalf("SaveUserCheck repeat: %v", err)
	}

	recent, err := st.RecentUserChecks(ctx, 10)
	if err != nil {
		t.Fatalf("RecentUserChecks: %v", err)
	}
	if len(recent) != 1 {
		t.Fatalf("expected 1 unique check, got %d", len(recent))
	}
	if recent[0].CheckCount != 2 {
		t.Fatalf("expected check_count 2, got %d", recent[0].CheckCount)
	}
}

func TestSaveUserCheckTruncatesContent(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	check := &store.UserCheck{
		ID:         "check-long",
		Content:    strings.Repeat("a", 5000),
		Prediction: classifier.LabelNonHoax,
		Confidence: 0.9,
	}
	if err := st.SaveUserCheck(ctx, check); err != nil {
		t.Fatalf("SaveUserCheck: %v", err)
	}

	recent, err := st.RecentUserChecks(ctx, 1)
	if err != nil {
		t.Fatalf("RecentUserChecks: %v", err)
	}
	if len(recent[0].Content) != 2000 {
		t.Fatalf("expected stored content capped at 2000, got %d", len(recent[0].Content))
	}
}

func TestUserCheckStats(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	hoax := &store.UserCheck{ID: "check-1", Content: "a", Prediction: classifier.LabelHoax, Confidence: 0.8}
	valid := &store.UserCheck{ID: "check-2", Content: "b", Prediction: classifier.LabelNonHoax, Confidence: 0.9}
	for _, check := range []*store.UserCheck{hoax, hoax, valid} {
		if err := st.SaveUserCheck(ctx, check); err != nil {
			t.Fatalf("SaveUserCheck: %v", err)
		}
	}

	stats, err := st.UserCheckStats(ctx)
	if err != nil {
		t.Fatalf("UserCheckStats: %v", err)
	}
	if stats.UniqueArticles != 2 || stats.TotalChecks != 3 {
		t.Fatalf("unexpected stats %+v", stats)
	}
	if stats.HoaxPredictions != 2 || stats.NonHoaxPredictions != 1 {
		t.Fatalf("unexpected prediction split %+v", stats)
	}
	if ratio := stats.HoaxRatio(); ratio < 0.66 || ratio > 0.67 {
		t.Fatalf("unexpected hoax ratio %.4f", ratio)
	}
}
