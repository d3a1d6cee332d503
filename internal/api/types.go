package api

import (
	"time"

	"periksa/internal/news"
	"periksa/internal/store"
	"periksa/internal/training"
)

// contentPreviewLimit caps article bodies in listing responses.
const contentPreviewLimit = 500

// NewsItem is the wire representation of a news record.
type NewsItem struct {
	ID                string     `json:"id"`
	Title             string     `json:"title"`
	Link              string     `json:"link,omitempty"`
	Content           string     `json:"content"`
	Source            string     `json:"source"`
	PublishedAt       *time.Time `json:"published_at,omitempty"`
	SystemLabel       string     `json:"system_label,omitempty"`
	SystemConfidence  float64    `json:"system_confidence"`
	ManualLabel       string     `json:"manual_label,omitempty"`
	LabelNotes        string     `json:"label_notes,omitempty"`
	LabeledBy         string     `json:"labeled_by"`
	IsVerified        bool       `json:"is_verified"`
	CanUseForTraining bool       `json:"can_use_for_training"`
	Trained           bool       `json:"trained"`
	LabeledAt         *time.Time `json:"labeled_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}

// LabelRequest asks for one record to be labeled.
type LabelRequest struct {
	NewsID    string `json:"news_id"`
	Label     string `json:"label"`
	Notes     string `json:"notes,omitempty"`
	LabeledBy string `json:"labeled_by,omitempty"`
}

// LabelResponse reports the outcome of a single labeling operation.
type LabelResponse struct {
	Success           bool   `json:"success"`
	Message           string `json:"message"`
	NewsID            string `json:"news_id"`
	Label             string `json:"label"`
	CanUseForTraining bool   `json:"can_use_for_training"`
}

// BulkLabelResponse reports a bulk labeling run. The error list is capped.
type BulkLabelResponse struct {
	Total   int      `json:"total"`
	Success int      `json:"success"`
	Failed  int      `json:"failed"`
	Errors  []string `json:"errors"`
}

// QueueStatusResponse mirrors training.QueueStatus on the wire.
type QueueStatusResponse struct {
	TotalPending     int  `json:"total_pending"`
	TotalTrained     int  `json:"total_trained"`
	Threshold        int  `json:"threshold"`
	ReadyForTraining bool `json:"ready_for_training"`
}

// RetrainResponse reports one retrain trigger.
type RetrainResponse struct {
	Success     bool     `json:"success"`
	Skipped     bool     `json:"skipped"`
	Message     string   `json:"message"`
	SamplesUsed int      `json:"samples_used"`
	Accuracy    *float64 `json:"accuracy,omitempty"`
	F1          *float64 `json:"f1,omitempty"`
}

// HistoryItem is one retrain attempt on the wire.
type HistoryItem struct {
	ID          string    `json:"id"`
	TrainedAt   time.Time `json:"trained_at"`
	SamplesUsed int       `json:"samples_used"`
	Accuracy    *float64  `json:"accuracy,omitempty"`
	F1          *float64  `json:"f1,omitempty"`
	Status      string    `json:"status"`
	Message     string    `json:"message,omitempty"`
}

// CheckRequest is a user hoax-check submission.
type CheckRequest struct {
	Title   string `json:"title,omitempty"`
	Content string `json:"content"`
	URL     string `json:"url,omitempty"`
}

// CheckResponse is the advisory verdict returned to users.
type CheckResponse struct {
	Prediction string  `json:"prediction"`
	Confidence float64 `json:"confidence"`
	Message    string  `json:"message"`
	Warning    string  `json:"warning,omitempty"`
}

// CheckStatsResponse aggregates anonymous checker traffic.
type CheckStatsResponse struct {
	UniqueArticles     int     `json:"unique_articles"`
	TotalChecks        int     `json:"total_checks"`
	HoaxPredictions    int     `json:"hoax_predictions"`
	NonHoaxPredictions int     `json:"non_hoax_predictions"`
	HoaxRatio          float64 `json:"hoax_ratio"`
}

// CheckRecord is one recorded user check on the wire.
type CheckRecord struct {
	ID            string    `json:"id"`
	Title         string    `json:"title,omitempty"`
	Content       string    `json:"content"`
	URL           string    `json:"url,omitempty"`
	Prediction    string    `json:"prediction"`
	Confidence    float64   `json:"confidence"`
	CheckCount    int       `json:"check_count"`
	CreatedAt     time.Time `json:"created_at"`
	LastCheckedAt time.Time `json:"last_checked_at"`
}

// CheckRecordsFromChecks converts stored user checks for the wire.
func CheckRecordsFromChecks(checks []*store.UserCheck) []CheckRecord {
	records := make([]CheckRecord, len(checks))
	for i, check := range checks {
		records[i] = CheckRecord{
			ID:            check.ID,
			Title:         check.Title,
			Content:       check.Content,
			URL:           check.URL,
			Prediction:    string(check.Prediction),
			Confidence:    check.Confidence,
			CheckCount:    check.CheckCount,
			CreatedAt:     check.CreatedAt,
			LastCheckedAt: check.LastCheckedAt,
		}
	}
	return records
}

// IngestSummary reports one feed poll cycle on the wire.
type IngestSummary struct {
	Total     int `json:"total"`
	Processed int `json:"processed"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed"`
}

// PendingItem is one training-queue row on the wire.
type PendingItem struct {
	ID        string     `json:"id"`
	Text      string     `json:"text"`
	Label     int        `json:"label"`
	Source    string     `json:"source"`
	URL       string     `json:"url"`
	LabeledBy string     `json:"labeled_by"`
	LabeledAt *time.Time `json:"labeled_at,omitempty"`
}

func newsItemFromRecord(record *news.Record, preview bool) NewsItem {
	content := record.Content
	if preview && len(content) > contentPreviewLimit {
		content = content[:contentPreviewLimit]
	}
	return NewsItem{
		ID:                record.ID,
		Title:             record.Title,
		Link:              record.Link,
		Content:           content,
		Source:            record.Source,
		PublishedAt:       record.PublishedAt,
		SystemLabel:       string(record.SystemLabel),
		SystemConfidence:  record.SystemConfidence,
		ManualLabel:       string(record.ManualLabel),
		LabelNotes:        record.LabelNotes,
		LabeledBy:         string(record.LabeledBy),
		IsVerified:        record.IsVerified,
		CanUseForTraining: record.CanUseForTraining,
		Trained:           record.Trained,
		LabeledAt:         record.LabeledAt,
		CreatedAt:         record.CreatedAt,
	}
}

func newsItemsFromRecords(records []*news.Record, preview bool) []NewsItem {
	items := make([]NewsItem, len(records))
	for i, record := range records {
		items[i] = newsItemFromRecord(record, preview)
	}
	return items
}

// QueueStatusFromStatus converts the queue aggregate for the wire.
func QueueStatusFromStatus(status training.QueueStatus) QueueStatusResponse {
	return QueueStatusResponse{
		TotalPending:     status.TotalPending,
		TotalTrained:     status.TotalTrained,
		Threshold:        status.Threshold,
		ReadyForTraining: status.ReadyForTraining,
	}
}

// RetrainResponseFromResult converts an orchestrator outcome for the wire.
func RetrainResponseFromResult(result *training.RetrainResult) RetrainResponse {
	return RetrainResponse{
		Success:     result.Success,
		Skipped:     result.Skipped,
		Message:     result.Message,
		SamplesUsed: result.SamplesUsed,
		Accuracy:    result.Accuracy,
		F1:          result.F1,
	}
}

// HistoryItemsFromEntries converts stored history rows for the wire.
func HistoryItemsFromEntries(entries []*store.HistoryEntry) []HistoryItem {
	items := make([]HistoryItem, len(entries))
	for i, entry := range entries {
		items[i] = HistoryItem{
			ID:          entry.ID,
			TrainedAt:   entry.TrainedAt,
			SamplesUsed: entry.SamplesUsed,
			Accuracy:    entry.Accuracy,
			F1:          entry.F1,
			Status:      entry.Status,
			Message:     entry.Message,
		}
	}
	return items
}

// PendingItemsFromSamples converts queue samples for the wire.
func PendingItemsFromSamples(samples []training.Sample) []PendingItem {
	items := make([]PendingItem, len(samples))
	for i, sample := range samples {
		items[i] = PendingItem{
			ID:        sample.ID,
			Text:      sample.Text,
			Label:     sample.Label,
			Source:    sample.Source,
			URL:       sample.URL,
			LabeledBy: sample.LabeledBy,
			LabeledAt: sample.LabeledAt,
		}
	}
	return items
}
