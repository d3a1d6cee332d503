package news

import (
	"errors"

	"periksa/internal/classifier"
)

var (
	// ErrNotFound indicates a labeling operation referenced an unknown record id.
	ErrNotFound = errors.New("record not found")
	// ErrInvalidLabel indicates a label value outside hoax/non-hoax.
	ErrInvalidLabel = errors.New("invalid label")
)

func parseRecordLabel(value string) (classifier.Label, bool) {
	return classifier.ParseLabel(value)
}
