package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"periksa/internal/classifier"
)

// storedContentLimit caps how much submitted text is retained per user check.
const storedContentLimit = 2000

// UserCheck is one anonymous checker submission, tracked for analytics only.
// User checks live in their own table and are never training candidates.
type UserCheck struct {
	ID            string
	Title         string
	Content       string
	URL           string
	Prediction    classifier.Label
	Confidence    float64
	CheckCount    int
	CreatedAt     time.Time
	LastCheckedAt time.Time
}

// CheckStats aggregates user-check activity.
type CheckStats struct {
	UniqueArticles     int
	TotalChecks        int
	HoaxPredictions    int
	NonHoaxPredictions int
}

// HoaxRatio returns the share of checks predicted hoax.
func (s CheckStats) HoaxRatio() float64 {
	if s.TotalChecks == 0 {
		return 0
	}
	return float64(s.HoaxPredictions) / float64(s.TotalChecks)
}

// SaveUserCheck inserts a new user check or increments the counter of an
// existing one.
func (s *Store) SaveUserCheck(ctx context.Context, check *UserCheck) error {
	if check == nil {
		return errors.New("check is nil")
	}
	if check.ID == "" {
		return errors.New("check id is required")
	}

	now := time.Now().UTC()
	timestamp := now.Format(time.RFC3339Nano)

	content := check.Content
	if len(content) > storedContentLimit {
		content = content[:storedContentLimit]
	}

	var existing int
	err := s.db.QueryRowContext(ctx, `SELECT check_count FROM user_checks WHERE id = ?`, check.ID).Scan(&existing)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		_, err = s.db.ExecContext(
			ctx,
			`INSERT INTO user_checks (id, title, content, url, prediction, confidence, check_count, created_at, last_checked_at)
             VALUES (?, ?, ?, ?, ?, ?, 1, ?, ?)`,
			check.ID,
			nullableString(check.Title),
			content,
			nullableString(check.URL),
			string(check.Prediction),
			check.Confidence,
			timestamp,
			timestamp,
		)
		if err != nil {
			return fmt.Errorf("insert user check: %w", err)
		}
	case err != nil:
		return fmt.Errorf("lookup user check: %w", err)
	default:
		_, err = s.db.ExecContext(
			ctx,
			`UPDATE user_checks SET check_count = check_count + 1, last_checked_at = ? WHERE id = ?`,
			timestamp,
			check.ID,
		)
		if err != nil {
			return fmt.Errorf("update user check: %w", err)
		}
	}
	return nil
}

// UserCheckStats aggregates all user checks.
func (s *Store) UserCheckStats(ctx context.Context) (CheckStats, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT prediction, check_count FROM user_checks`)
	if err != nil {
		return CheckStats{}, fmt.Errorf("user check stats: %w", err)
	}
	defer rows.Close()

	var stats CheckStats
	for rows.Next() {
		var prediction string
		var count int
		if err := rows.Scan(&prediction, &count); err != nil {
			return CheckStats{}, err
		}
		stats.UniqueArticles++
		stats.TotalChecks += count
		if classifier.Label(prediction) == classifier.LabelHoax {
			stats.HoaxPredictions += count
		} else {
			stats.NonHoaxPredictions += count
		}
	}
	return stats, rows.Err()
}

// RecentUserChecks returns the most recently checked submissions.
func (s *Store) RecentUserChecks(ctx context.Context, limit int) ([]*UserCheck, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, title, content, url, prediction, confidence, check_count, created_at, last_checked_at
         FROM user_checks ORDER BY last_checked_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("recent user checks: %w", err)
	}
	defer rows.Close()

	var checks []*UserCheck
	for rows.Next() {
		var (
			check      UserCheck
			title      sql.NullString
			url        sql.NullString
			prediction string
			createdRaw string
			checkedRaw string
		)
		if err := rows.Scan(&check.ID, &title, &check.Content, &url, &prediction, &check.Confidence, &check.CheckCount, &createdRaw, &checkedRaw); err != nil {
			return nil, err
		}
		check.Title = title.String
		check.URL = url.String
		check.Prediction = classifier.Label(prediction)
		if created, err := parseTimeString(createdRaw); err == nil {
			check.CreatedAt = created
		}
		if checked, err := parseTimeString(checkedRaw); err == nil {
			check.LastCheckedAt = checked
		}
		checks = append(checks, &check)
	}
	return checks, rows.Err()
}
