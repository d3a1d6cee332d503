package news

import (
	"errors"
	"testing"
	"time"

	"periksa/internal/classifier"
)

func systemRecord() *Record {
	return &Record{
		ID:               "abc",
		Title:            "Judul",
		Content:          "Isi berita",
		SystemLabel:      classifier.LabelNonHoax,
		SystemConfidence: 0.8,
		LabeledBy:        LabeledBySystem,
		CreatedAt:        time.Now().UTC(),
	}
}

func TestApplyAdminLabelGrantsEligibility(t *testing.T) {
	record := systemRecord()
	now := time.Now()

	if err := record.ApplyAdminLabel("hoax", "terverifikasi manual", now); err != nil {
		t.Fatalf("ApplyAdminLabel: %v", err)
	}
	if record.LabeledBy != LabeledByAdmin {
		t.Fatalf("labeled_by = %s, want admin", record.LabeledBy)
	}
	if !record.CanUseForTraining || !record.IsVerified {
		t.Fatalf("admin label must verify and grant eligibility, got %+v", record)
	}
	if record.Trained {
		t.Fatal("fresh admin label must reset trained")
	}
	if record.LabeledAt == nil {
		t.Fatal("labeled_at must be set")
	}
	if !record.Pending() {
		t.Fatal("admin-labeled record must be pending")
	}
}

func TestApplyAdminLabelRelabelResetsTrained(t *testing.T) {
	record := systemRecord()
	if err := record.ApplyAdminLabel("hoax", "", time.Now()); err != nil {
		t.Fatalf("ApplyAdminLabel: %v", err)
	}
	record.Trained = true

	if err := record.ApplyAdminLabel("non-hoax", "koreksi", time.Now()); err != nil {
		t.Fatalf("relabel: %v", err)
	}
	if record.Trained {
		t.Fatal("relabeling must re-queue the record for training")
	}
	if record.ManualLabel != classifier.LabelNonHoax {
		t.Fatalf("manual label = %s, want non-hoax", record.ManualLabel)
	}
}

func TestApplyUserLabelNeverGrantsEligibility(t *testing.T) {
	record := systemRecord()

	if err := record.ApplyUserLabel("hoax", time.Now()); err != nil {
		t.Fatalf("ApplyUserLabel: %v", err)
	}
	if record.LabeledBy != LabeledByUser {
		t.Fatalf("labeled_by = %s, want user", record.LabeledBy)
	}
	if record.CanUseForTraining {
		t.Fatal("user labels must not grant training eligibility")
	}
	if record.IsVerified {
		t.Fatal("user labels must not verify the record")
	}
}

func TestApplyLabelRejectsUnknownValue(t *testing.T) {
	record := systemRecord()
	if err := record.ApplyAdminLabel("ragu-ragu", "", time.Now()); !errors.Is(err, ErrInvalidLabel) {
		t.Fatalf("expected ErrInvalidLabel, got %v", err)
	}
	if record.CanUseForTraining {
		t.Fatal("failed labeling must not mutate eligibility")
	}
}

func TestEffectiveLabelFallsBackToSystem(t *testing.T) {
	record := systemRecord()
	if record.EffectiveLabel() != classifier.LabelNonHoax {
		t.Fatalf("effective label = %s, want system label", record.EffectiveLabel())
	}
	if err := record.ApplyAdminLabel("hoax", "", time.Now()); err != nil {
		t.Fatalf("ApplyAdminLabel: %v", err)
	}
	if record.EffectiveLabel() != classifier.LabelHoax {
		t.Fatalf("effective label = %s, want manual label", record.EffectiveLabel())
	}
	if record.TrainingLabel() != 1 {
		t.Fatalf("training label = %d, want 1 for hoax", record.TrainingLabel())
	}
}

func TestParseLabeledBy(t *testing.T) {
	if got, ok := ParseLabeledBy(" Admin "); !ok || got != LabeledByAdmin {
		t.Fatalf("ParseLabeledBy(Admin) = %q, %t", got, ok)
	}
	if _, ok := ParseLabeledBy("robot"); ok {
		t.Fatal("unknown labeler must be rejected")
	}
}
