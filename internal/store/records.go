package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"periksa/internal/classifier"
	"periksa/internal/news"
)

// Filter narrows record queries. Nil fields match everything.
type Filter struct {
	LabeledBy         *news.LabeledBy
	CanUseForTraining *bool
	Trained           *bool
}

// Ordering options for record queries.
const (
	OrderByCreatedDesc = "created_at DESC"
	OrderByLabeledDesc = "labeled_at DESC"
)

const recordColumns = "id, title, link, content, source, published_at, system_label, system_confidence, manual_label, label_notes, labeled_by, is_verified, can_use_for_training, trained, labeled_at, created_at"

// SaveRecord inserts or replaces a record keyed by its identity digest.
func (s *Store) SaveRecord(ctx context.Context, record *news.Record) error {
	if record == nil {
		return errors.New("record is nil")
	}
	if record.ID == "" {
		return errors.New("record id is required")
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO records (`+recordColumns+`)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
         ON CONFLICT(id) DO UPDATE SET
             title = excluded.title,
             link = excluded.link,
             content = excluded.content,
             source = excluded.source,
             published_at = excluded.published_at,
             system_label = excluded.system_label,
             system_confidence = excluded.system_confidence,
             manual_label = excluded.manual_label,
             label_notes = excluded.label_notes,
             labeled_by = excluded.labeled_by,
             is_verified = excluded.is_verified,
             can_use_for_training = excluded.can_use_for_training,
             trained = excluded.trained,
             labeled_at = excluded.labeled_at`,
		record.ID,
		record.Title,
		record.Link,
		record.Content,
		record.Source,
		nullableTime(record.PublishedAt),
		nullableString(string(record.SystemLabel)),
		record.SystemConfidence,
		nullableString(string(record.ManualLabel)),
		nullableString(record.LabelNotes),
		string(record.LabeledBy),
		boolToInt(record.IsVerified),
		boolToInt(record.CanUseForTraining),
		boolToInt(record.Trained),
		nullableTime(record.LabeledAt),
		record.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("save record: %w", err)
	}
	return nil
}

// GetRecord fetches a record by identifier. A missing record returns
// (nil, nil).
func (s *Store) GetRecord(ctx context.Context, id string) (*news.Record, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+recordColumns+` FROM records WHERE id = ?`, id)
	record, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get record: %w", err)
	}
	return record, nil
}

// QueryRecords returns records matching the filter, ordered by a timestamp
// column. limit <= 0 means unbounded.
func (s *Store) QueryRecords(ctx context.Context, filter Filter, orderBy string, limit int) ([]*news.Record, error) {
	builder := sq.Select(recordColumns).From("records")
	if filter.LabeledBy != nil {
		builder = builder.Where(sq.Eq{"labeled_by": string(*filter.LabeledBy)})
	}
	if filter.CanUseForTraining != nil {
		builder = builder.Where(sq.Eq{"can_use_for_training": boolToInt(*filter.CanUseForTraining)})
	}
	if filter.Trained != nil {
		builder = builder.Where(sq.Eq{"trained": boolToInt(*filter.Trained)})
	}
	if orderBy == "" {
		orderBy = OrderByCreatedDesc
	}
	builder = builder.OrderBy(orderBy)
	if limit > 0 {
		builder = builder.Limit(uint64(limit))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build record query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	var records []*news.Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// MarkTrained flips trained=true for exactly the given ids inside one
// transaction.
func (s *Store) MarkTrained(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin mark-trained tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query, args, err := sq.Update("records").
		Set("trained", 1).
		Where(sq.Eq{"id": ids}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build mark-trained query: %w", err)
	}

	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("mark trained: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit mark-trained: %w", err)
	}
	return affected, nil
}

// CountPending counts records eligible for training and not yet trained.
func (s *Store) CountPending(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM records WHERE can_use_for_training = 1 AND trained = 0`,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count pending: %w", err)
	}
	return count, nil
}

// CountTrained counts records already consumed by a successful retrain.
func (s *Store) CountTrained(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM records WHERE trained = 1`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count trained: %w", err)
	}
	return count, nil
}

// CountByLabeledBy returns record counts grouped by provenance.
func (s *Store) CountByLabeledBy(ctx context.Context) (map[news.LabeledBy]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT labeled_by, COUNT(1) FROM records GROUP BY labeled_by`)
	if err != nil {
		return nil, fmt.Errorf("count by labeled_by: %w", err)
	}
	defer rows.Close()

	counts := make(map[news.LabeledBy]int)
	for rows.Next() {
		var labeledBy string
		var count int
		if err := rows.Scan(&labeledBy, &count); err != nil {
			return nil, err
		}
		counts[news.LabeledBy(labeledBy)] = count
	}
	return counts, rows.Err()
}

func scanRecord(scanner interface{ Scan(dest ...any) error }) (*news.Record, error) {
	var (
		id               string
		title            string
		link             string
		content          string
		source           string
		publishedRaw     sql.NullString
		systemLabel      sql.NullString
		systemConfidence float64
		manualLabel      sql.NullString
		labelNotes       sql.NullString
		labeledBy        string
		isVerified       int
		canUse           int
		trained          int
		labeledRaw       sql.NullString
		createdRaw       string
	)

	if err := scanner.Scan(
		&id,
		&title,
		&link,
		&content,
		&source,
		&publishedRaw,
		&systemLabel,
		&systemConfidence,
		&manualLabel,
		&labelNotes,
		&labeledBy,
		&isVerified,
		&canUse,
		&trained,
		&labeledRaw,
		&createdRaw,
	); err != nil {
		return nil, err
	}

	record := &news.Record{
		ID:                id,
		Title:             title,
		Link:              link,
		Content:           content,
		Source:            source,
		SystemLabel:       classifier.Label(systemLabel.String),
		SystemConfidence:  systemConfidence,
		ManualLabel:       classifier.Label(manualLabel.String),
		LabelNotes:        labelNotes.String,
		LabeledBy:         news.LabeledBy(labeledBy),
		IsVerified:        isVerified != 0,
		CanUseForTraining: canUse != 0,
		Trained:           trained != 0,
	}

	if publishedRaw.Valid {
		if published, err := parseTimeString(publishedRaw.String); err == nil {
			record.PublishedAt = &published
		}
	}
	if labeledRaw.Valid {
		if labeled, err := parseTimeString(labeledRaw.String); err == nil {
			record.LabeledAt = &labeled
		}
	}
	if created, err := parseTimeString(createdRaw); err == nil {
		record.CreatedAt = created
	}
	return record, nil
}
