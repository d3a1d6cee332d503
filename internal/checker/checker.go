package checker

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"periksa/internal/classifier"
	"periksa/internal/identity"
	"periksa/internal/ingest"
	"periksa/internal/logging"
	"periksa/internal/store"
)

// minContentLength is the shortest text accepted for a check.
const minContentLength = 50

// Advisory attached to every check result. Predictions are not a verdict.
const resultWarning = "Hasil ini adalah prediksi AI dan bukan jaminan kebenaran. " +
	"Selalu verifikasi informasi dari sumber resmi dan terpercaya."

// ValidationError marks rejected input as distinct from internal failures so
// the API layer can map it to a client error.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// Result is the outcome of one anonymous hoax check.
type Result struct {
	Prediction classifier.Label
	Confidence float64
	Message    string
	Warning    string
}

// CheckStore is the analytics surface the checker writes to. Check results
// are never training data.
type CheckStore interface {
	SaveUserCheck(ctx context.Context, check *store.UserCheck) error
	UserCheckStats(ctx context.Context) (store.CheckStats, error)
	RecentUserChecks(ctx context.Context, limit int) ([]*store.UserCheck, error)
}

// Service answers anonymous hoax checks from end users.
type Service struct {
	router  *classifier.Router
	fetcher ingest.Fetcher
	checks  CheckStore
	logger  *slog.Logger
}

// NewService wires the checker. fetcher may be nil when URL checks are
// disabled.
func NewService(router *classifier.Router, fetcher ingest.Fetcher, checks CheckStore, logger *slog.Logger) *Service {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Service{
		router:  router,
		fetcher: fetcher,
		checks:  checks,
		logger:  logger.With(logging.String(logging.FieldComponent, "checker")),
	}
}

// Check classifies user-submitted text. The result is advisory only and is
// recorded for analytics, never for training.
func (s *Service) Check(ctx context.Context, title, content, url string) (*Result, error) {
	if len(strings.TrimSpace(content)) < minContentLength {
		return nil, &ValidationError{Reason: fmt.Sprintf("content must be at least %d characters long", minContentLength)}
	}

	text := content
	if strings.TrimSpace(title) != "" {
		text = title + " " + content
	}

	prediction := s.router.Predict(ctx, text, "user_check")

	result := &Result{
		Prediction: prediction.Label,
		Confidence: prediction.Confidence,
		Message:    advisoryMessage(prediction),
		Warning:    resultWarning,
	}

	s.recordCheck(ctx, title, content, url, prediction)
	return result, nil
}

// CheckURL fetches an article and classifies its extracted content.
func (s *Service) CheckURL(ctx context.Context, url string) (*Result, error) {
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return nil, &ValidationError{Reason: "invalid URL format"}
	}
	if s.fetcher == nil {
		return nil, fmt.Errorf("URL checks are not enabled")
	}

	content, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		s.logger.Debug("url check fetch failed", logging.String("url", url), logging.Error(err))
	}
	if len(content) < minContentLength {
		return nil, &ValidationError{Reason: "could not extract sufficient content from URL"}
	}

	prediction := s.router.Predict(ctx, content, url)

	var message string
	if prediction.Label == classifier.LabelHoax {
		message = fmt.Sprintf("Artikel dari URL ini terindikasi HOAX dengan confidence %.1f%%", prediction.Confidence*100)
	} else {
		message = fmt.Sprintf("Artikel dari URL ini terlihat VALID dengan confidence %.1f%%", prediction.Confidence*100)
	}

	result := &Result{
		Prediction: prediction.Label,
		Confidence: prediction.Confidence,
		Message:    message,
		Warning:    resultWarning,
	}

	s.recordCheck(ctx, "", content, url, prediction)
	return result, nil
}

// Stats aggregates user-check activity.
func (s *Service) Stats(ctx context.Context) (store.CheckStats, error) {
	return s.checks.UserCheckStats(ctx)
}

// Recent lists the latest user checks.
func (s *Service) Recent(ctx context.Context, limit int) ([]*store.UserCheck, error) {
	return s.checks.RecentUserChecks(ctx, limit)
}

// recordCheck persists the check for analytics. Failures are logged and the
// check still succeeds.
func (s *Service) recordCheck(ctx context.Context, title, content, url string, prediction classifier.Prediction) {
	check := &store.UserCheck{
		ID:         identity.FromContent(content),
		Title:      title,
		Content:    content,
		URL:        url,
		Prediction: prediction.Label,
		Confidence: prediction.Confidence,
	}
	if err := s.checks.SaveUserCheck(ctx, check); err != nil {
		s.logger.Warn("failed to record user check", logging.Error(err))
	}
}

func advisoryMessage(prediction classifier.Prediction) string {
	if prediction.Label == classifier.LabelHoax {
		switch {
		case prediction.Confidence > 0.8:
			return "Berita ini SANGAT MUNGKIN adalah HOAX. Harap verifikasi dari sumber terpercaya."
		case prediction.Confidence > 0.6:
			return "Berita ini KEMUNGKINAN adalah HOAX. Sebaiknya cek fakta lebih lanjut."
		default:
			return "Berita ini memiliki indikasi HOAX. Tetap waspada."
		}
	}
	switch {
	case prediction.Confidence > 0.8:
		return "Berita ini KEMUNGKINAN BESAR adalah FAKTA."
	case prediction.Confidence > 0.6:
		return "Berita ini MUNGKIN adalah FAKTA, namun tetap verifikasi."
	default:
		return "Berita ini terlihat valid, tapi sebaiknya tetap cross-check."
	}
}
