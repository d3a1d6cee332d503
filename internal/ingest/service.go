package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/mmcdole/gofeed"
	"golang.org/x/sync/errgroup"

	"periksa/internal/classifier"
	"periksa/internal/identity"
	"periksa/internal/logging"
	"periksa/internal/news"
	"periksa/internal/store"
)

// RecordStore is the persistence surface the ingest service needs.
type RecordStore interface {
	GetRecord(ctx context.Context, id string) (*news.Record, error)
	SaveRecord(ctx context.Context, record *news.Record) error
}

// Summary reports one feed poll cycle.
type Summary struct {
	Total     int
	Processed int
	Skipped   int
	Failed    int
}

// Service polls an RSS feed, deduplicates articles by link digest, classifies
// new ones, and persists them as system-labeled records.
type Service struct {
	feedURL    string
	parser     *gofeed.Parser
	fetcher    Fetcher
	router     *classifier.Router
	records    RecordStore
	logger     *slog.Logger
	maxFetches int
}

// NewService wires an ingest service. maxFetches <= 0 defaults to 4
// concurrent article fetches.
func NewService(feedURL string, fetcher Fetcher, router *classifier.Router, records RecordStore, maxFetches int, logger *slog.Logger) *Service {
	if maxFetches <= 0 {
		maxFetches = 4
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Service{
		feedURL:    feedURL,
		parser:     gofeed.NewParser(),
		fetcher:    fetcher,
		router:     router,
		records:    records,
		logger:     logger.With(logging.String(logging.FieldComponent, "ingest")),
		maxFetches: maxFetches,
	}
}

// Poll runs one ingestion cycle against the configured feed.
func (s *Service) Poll(ctx context.Context) (Summary, error) {
	feed, err := s.parser.ParseURLWithContext(s.feedURL, ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("parse feed %q: %w", s.feedURL, err)
	}

	summary := Summary{Total: len(feed.Items)}
	var mu sync.Mutex

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(s.maxFetches)

	for _, item := range feed.Items {
		item := item
		group.Go(func() error {
			processed, err := s.processItem(groupCtx, item)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				summary.Failed++
				s.logger.Warn("article ingest failed",
					logging.String("link", item.Link),
					logging.Error(err))
			case processed:
				summary.Processed++
			default:
				summary.Skipped++
			}
			// Per-item failures are counted, not fatal for the cycle.
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return summary, err
	}

	s.logger.Info("feed poll complete",
		logging.Int("total", summary.Total),
		logging.Int("processed", summary.Processed),
		logging.Int("skipped", summary.Skipped),
		logging.Int("failed", summary.Failed))
	return summary, nil
}

// processItem handles one feed entry. Returns false when the article was
// already ingested.
func (s *Service) processItem(ctx context.Context, item *gofeed.Item) (bool, error) {
	link := strings.TrimSpace(item.Link)
	if link == "" {
		return false, fmt.Errorf("feed item %q has no link", item.Title)
	}

	id := identity.FromLink(link)
	existing, err := s.records.GetRecord(ctx, id)
	if err != nil {
		return false, err
	}
	if existing != nil {
		return false, nil
	}

	content, err := s.fetcher.Fetch(ctx, link)
	if err != nil || strings.TrimSpace(content) == "" {
		if err != nil {
			s.logger.Debug("content fetch failed, using feed summary",
				logging.String("link", link),
				logging.Error(err))
		}
		content = strings.TrimSpace(item.Description)
	}

	source := sourceFromItem(item, link)
	prediction := s.router.Predict(ctx, item.Title+" "+content, source)

	now := time.Now().UTC()
	record := &news.Record{
		ID:               id,
		Title:            strings.TrimSpace(item.Title),
		Link:             link,
		Content:          content,
		Source:           source,
		PublishedAt:      item.PublishedParsed,
		SystemLabel:      prediction.Label,
		SystemConfidence: prediction.Confidence,
		LabeledBy:        news.LabeledBySystem,
		CreatedAt:        now,
	}
	if err := s.records.SaveRecord(ctx, record); err != nil {
		return false, err
	}

	s.logger.Info("article ingested",
		logging.String(logging.FieldRecordID, id),
		logging.String(logging.FieldLabel, string(prediction.Label)),
		logging.Float64("confidence", prediction.Confidence),
		logging.String(logging.FieldSource, source))
	return true, nil
}

func sourceFromItem(item *gofeed.Item, link string) string {
	if item.Custom != nil {
		if source := strings.TrimSpace(item.Custom["source"]); source != "" {
			return source
		}
	}
	return identity.HostOf(link)
}

var _ RecordStore = (*store.Store)(nil)
