package news

import (
	"strings"
	"time"

	"periksa/internal/classifier"
)

// LabeledBy identifies who produced a record's current label.
type LabeledBy string

const (
	LabeledBySystem LabeledBy = "system"
	LabeledByAdmin  LabeledBy = "admin"
	LabeledByUser   LabeledBy = "user"
)

// ParseLabeledBy converts a string into a known provenance value.
func ParseLabeledBy(value string) (LabeledBy, bool) {
	switch LabeledBy(strings.ToLower(strings.TrimSpace(value))) {
	case LabeledBySystem:
		return LabeledBySystem, true
	case LabeledByAdmin:
		return LabeledByAdmin, true
	case LabeledByUser:
		return LabeledByUser, true
	default:
		return "", false
	}
}

// Record is one distinct news item persisted in the record store.
//
// CanUseForTraining may only be true when LabeledBy is admin; every label
// transition goes through the Apply* methods which preserve that invariant.
type Record struct {
	ID          string
	Title       string
	Link        string
	Content     string
	Source      string
	PublishedAt *time.Time

	SystemLabel      classifier.Label
	SystemConfidence float64

	ManualLabel classifier.Label
	LabelNotes  string
	LabeledBy   LabeledBy
	IsVerified  bool

	CanUseForTraining bool
	Trained           bool

	LabeledAt *time.Time
	CreatedAt time.Time
}

// EffectiveLabel returns the manual label when present, otherwise the system
// label from ingestion time.
func (r *Record) EffectiveLabel() classifier.Label {
	if r.ManualLabel != "" {
		return r.ManualLabel
	}
	return r.SystemLabel
}

// Pending reports whether the record is eligible for training and has not yet
// been consumed by a successful retrain.
func (r *Record) Pending() bool {
	return r.CanUseForTraining && !r.Trained
}

// TrainingLabel returns the integer label encoding used by the trainer:
// 1 for hoax, 0 for non-hoax.
func (r *Record) TrainingLabel() int {
	if r.EffectiveLabel() == classifier.LabelHoax {
		return 1
	}
	return 0
}
