package news

import (
	"fmt"
	"time"
)

// ApplyAdminLabel records an admin verdict. The record becomes verified and
// eligible for training; a previously trained record is re-queued for the
// next training pass.
func (r *Record) ApplyAdminLabel(label string, notes string, now time.Time) error {
	parsed, ok := parseRecordLabel(label)
	if !ok {
		return fmt.Errorf("%w: %q", ErrInvalidLabel, label)
	}

	r.ManualLabel = parsed
	r.LabelNotes = notes
	r.LabeledBy = LabeledByAdmin
	r.IsVerified = true
	r.CanUseForTraining = true
	r.Trained = false
	labeledAt := now.UTC()
	r.LabeledAt = &labeledAt
	return nil
}

// ApplyUserLabel records a user verdict. User labels never grant training
// eligibility.
func (r *Record) ApplyUserLabel(label string, now time.Time) error {
	parsed, ok := parseRecordLabel(label)
	if !ok {
		return fmt.Errorf("%w: %q", ErrInvalidLabel, label)
	}

	r.ManualLabel = parsed
	r.LabeledBy = LabeledByUser
	r.IsVerified = false
	r.CanUseForTraining = false
	labeledAt := now.UTC()
	r.LabeledAt = &labeledAt
	return nil
}
