package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// History entry statuses.
const (
	HistoryStatusSuccess = "success"
	HistoryStatusFailed  = "failed"
)

// HistoryEntry is one retrain attempt, successful or not.
type HistoryEntry struct {
	ID          string
	TrainedAt   time.Time
	SamplesUsed int
	Accuracy    *float64
	F1          *float64
	Status      string
	Message     string
}

// AppendHistory persists a retrain attempt. The entry id and timestamp are
// assigned here when absent.
func (s *Store) AppendHistory(ctx context.Context, entry *HistoryEntry) error {
	if entry == nil {
		return errors.New("history entry is nil")
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.TrainedAt.IsZero() {
		entry.TrainedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO training_history (id, trained_at, samples_used, accuracy, f1, status, message)
         VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.ID,
		entry.TrainedAt.UTC().Format(time.RFC3339Nano),
		entry.SamplesUsed,
		nullableFloat(entry.Accuracy),
		nullableFloat(entry.F1),
		entry.Status,
		nullableString(entry.Message),
	)
	if err != nil {
		return fmt.Errorf("append history: %w", err)
	}
	return nil
}

// History returns retrain attempts, most recent first.
func (s *Store) History(ctx context.Context, limit int) ([]*HistoryEntry, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, trained_at, samples_used, accuracy, f1, status, message
         FROM training_history ORDER BY trained_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var entries []*HistoryEntry
	for rows.Next() {
		var (
			entry      HistoryEntry
			trainedRaw string
			accuracy   sql.NullFloat64
			f1         sql.NullFloat64
			message    sql.NullString
		)
		if err := rows.Scan(&entry.ID, &trainedRaw, &entry.SamplesUsed, &accuracy, &f1, &entry.Status, &message); err != nil {
			return nil, err
		}
		if trainedAt, err := parseTimeString(trainedRaw); err == nil {
			entry.TrainedAt = trainedAt
		}
		if accuracy.Valid {
			value := accuracy.Float64
			entry.Accuracy = &value
		}
		if f1.Valid {
			value := f1.Float64
			entry.F1 = &value
		}
		entry.Message = message.String
		entries = append(entries, &entry)
	}
	return entries, rows.Err()
}
