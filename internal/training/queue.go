package training

import (
	"context"
	"fmt"
	"strings"
	"time"

	"periksa/internal/news"
	"periksa/internal/store"
)

// RecordSource is the read side of the record store the queue needs.
type RecordSource interface {
	QueryRecords(ctx context.Context, filter store.Filter, orderBy string, limit int) ([]*news.Record, error)
	CountPending(ctx context.Context) (int, error)
	CountTrained(ctx context.Context) (int, error)
}

// QueueStatus is the derived state of the training queue. It is recomputed on
// every call and never stored.
type QueueStatus struct {
	TotalPending     int
	TotalTrained     int
	Threshold        int
	ReadyForTraining bool
}

// Sample is one row of training data handed to the external trainer.
type Sample struct {
	ID        string     `json:"id,omitempty"`
	Text      string     `json:"text"`
	Label     int        `json:"label"`
	Source    string     `json:"source"`
	URL       string     `json:"url"`
	LabeledBy string     `json:"labeled_by,omitempty"`
	LabeledAt *time.Time `json:"labeled_at,omitempty"`
}

// Queue is the read-only aggregate view over training-eligible records.
type Queue struct {
	records   RecordSource
	threshold int
}

// NewQueue builds a queue over the given record source.
func NewQueue(records RecordSource, threshold int) *Queue {
	if threshold <= 0 {
		threshold = 50
	}
	return &Queue{records: records, threshold: threshold}
}

// Threshold returns the configured retrain threshold.
func (q *Queue) Threshold() int {
	return q.threshold
}

// Status recomputes the queue aggregate from the record population.
func (q *Queue) Status(ctx context.Context) (QueueStatus, error) {
	pending, err := q.records.CountPending(ctx)
	if err != nil {
		return QueueStatus{}, fmt.Errorf("queue status: %w", err)
	}
	trained, err := q.records.CountTrained(ctx)
	if err != nil {
		return QueueStatus{}, fmt.Errorf("queue status: %w", err)
	}
	return QueueStatus{
		TotalPending:     pending,
		TotalTrained:     trained,
		Threshold:        q.threshold,
		ReadyForTraining: pending >= q.threshold,
	}, nil
}

// PendingItems returns eligible-but-untrained records as training samples,
// most recently labeled first. limit <= 0 means unbounded.
func (q *Queue) PendingItems(ctx context.Context, limit int) ([]Sample, error) {
	eligible := true
	trained := false
	records, err := q.records.QueryRecords(ctx, store.Filter{
		CanUseForTraining: &eligible,
		Trained:           &trained,
	}, store.OrderByLabeledDesc, limit)
	if err != nil {
		return nil, fmt.Errorf("pending items: %w", err)
	}
	return samplesFromRecords(records, true), nil
}

// ExportDataset produces trainer rows. includeTrained reconstructs the full
// admin-labeled corpus for a full retrain; otherwise only the untrained
// subset is exported for incremental fine-tuning.
func (q *Queue) ExportDataset(ctx context.Context, includeTrained bool) ([]Sample, error) {
	eligible := true
	filter := store.Filter{CanUseForTraining: &eligible}
	if !includeTrained {
		trained := false
		filter.Trained = &trained
	}
	records, err := q.records.QueryRecords(ctx, filter, store.OrderByLabeledDesc, 0)
	if err != nil {
		return nil, fmt.Errorf("export dataset: %w", err)
	}
	return samplesFromRecords(records, false), nil
}

func samplesFromRecords(records []*news.Record, withProvenance bool) []Sample {
	samples := make([]Sample, 0, len(records))
	for _, record := range records {
		if record.EffectiveLabel() == "" {
			continue
		}
		sample := Sample{
			ID:     record.ID,
			Text:   strings.TrimSpace(record.Title + " " + record.Content),
			Label:  record.TrainingLabel(),
			Source: record.Source,
			URL:    record.Link,
		}
		if withProvenance {
			sample.LabeledBy = string(record.LabeledBy)
			sample.LabeledAt = record.LabeledAt
		}
		samples = append(samples, sample)
	}
	return samples
}
