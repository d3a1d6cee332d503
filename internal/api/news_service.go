package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"periksa/internal/logging"
	"periksa/internal/news"
	"periksa/internal/store"
)

// bulkErrorLimit caps the error list in bulk label responses.
const bulkErrorLimit = 10

// NewsService exposes record listing and labeling operations.
type NewsService struct {
	store  *store.Store
	logger *slog.Logger
}

// NewNewsService builds the news service.
func NewNewsService(st *store.Store, logger *slog.Logger) *NewsService {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &NewsService{
		store:  st,
		logger: logger.With(logging.String(logging.FieldComponent, "news")),
	}
}

// List returns the most recently ingested records with content previews.
func (s *NewsService) List(ctx context.Context, limit int) ([]NewsItem, error) {
	if limit <= 0 {
		limit = 50
	}
	records, err := s.store.QueryRecords(ctx, store.Filter{}, store.OrderByCreatedDesc, limit)
	if err != nil {
		return nil, err
	}
	return newsItemsFromRecords(records, true), nil
}

// Get returns one full record.
func (s *NewsService) Get(ctx context.Context, id string) (*NewsItem, error) {
	record, err := s.store.GetRecord(ctx, id)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, news.ErrNotFound
	}
	item := newsItemFromRecord(record, false)
	return &item, nil
}

// Label applies a verdict to one record. Admin labels grant training
// eligibility; user labels never do.
func (s *NewsService) Label(ctx context.Context, req LabelRequest) (*LabelResponse, error) {
	record, err := s.store.GetRecord(ctx, req.NewsID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, news.ErrNotFound
	}

	labeledBy := news.LabeledByAdmin
	if req.LabeledBy != "" {
		parsed, ok := news.ParseLabeledBy(req.LabeledBy)
		if !ok || parsed == news.LabeledBySystem {
			return nil, fmt.Errorf("%w: labeled_by %q", news.ErrInvalidLabel, req.LabeledBy)
		}
		labeledBy = parsed
	}

	now := time.Now()
	switch labeledBy {
	case news.LabeledByAdmin:
		err = record.ApplyAdminLabel(req.Label, req.Notes, now)
	case news.LabeledByUser:
		err = record.ApplyUserLabel(req.Label, now)
	}
	if err != nil {
		return nil, err
	}

	if err := s.store.SaveRecord(ctx, record); err != nil {
		return nil, err
	}

	s.logger.Info("record labeled",
		logging.String(logging.FieldRecordID, record.ID),
		logging.String(logging.FieldLabel, string(record.ManualLabel)),
		logging.String("labeled_by", string(record.LabeledBy)))

	message := fmt.Sprintf("News labeled as %q.", record.ManualLabel)
	if record.CanUseForTraining {
		message = fmt.Sprintf("News labeled as %q by admin. Will be used for training.", record.ManualLabel)
	}
	return &LabelResponse{
		Success:           true,
		Message:           message,
		NewsID:            record.ID,
		Label:             string(record.ManualLabel),
		CanUseForTraining: record.CanUseForTraining,
	}, nil
}

// LabelBulk applies verdicts to many records. Per-record failures are
// collected, not fatal.
func (s *NewsService) LabelBulk(ctx context.Context, requests []LabelRequest) (*BulkLabelResponse, error) {
	response := &BulkLabelResponse{Total: len(requests), Errors: []string{}}
	for _, req := range requests {
		if _, err := s.Label(ctx, req); err != nil {
			response.Failed++
			if len(response.Errors) < bulkErrorLimit {
				response.Errors = append(response.Errors, fmt.Sprintf("%s: %v", req.NewsID, err))
			}
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return response, err
			}
			continue
		}
		response.Success++
	}
	return response, nil
}

// Unlabeled lists records still carrying only their system label, newest
// first.
func (s *NewsService) Unlabeled(ctx context.Context, limit int) ([]NewsItem, error) {
	if limit <= 0 {
		limit = 50
	}
	labeledBy := news.LabeledBySystem
	records, err := s.store.QueryRecords(ctx, store.Filter{LabeledBy: &labeledBy}, store.OrderByCreatedDesc, limit)
	if err != nil {
		return nil, err
	}
	return newsItemsFromRecords(records, true), nil
}

// Labeled lists admin-labeled records, most recently labeled first. trained
// narrows by consumption status when non-nil.
func (s *NewsService) Labeled(ctx context.Context, limit int, trained *bool) ([]NewsItem, error) {
	if limit <= 0 {
		limit = 50
	}
	labeledBy := news.LabeledByAdmin
	records, err := s.store.QueryRecords(ctx, store.Filter{LabeledBy: &labeledBy, Trained: trained}, store.OrderByLabeledDesc, limit)
	if err != nil {
		return nil, err
	}
	return newsItemsFromRecords(records, true), nil
}

// LabelCounts returns record counts grouped by provenance.
func (s *NewsService) LabelCounts(ctx context.Context) (map[news.LabeledBy]int, error) {
	return s.store.CountByLabeledBy(ctx)
}
