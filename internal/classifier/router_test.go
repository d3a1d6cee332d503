package classifier

import (
	"context"
	"errors"
	"testing"

	"periksa/internal/logging"
)

type staticDetector struct {
	pred Prediction
	err  error
}

func (d *staticDetector) Predict(context.Context, string, string) (Prediction, error) {
	return d.pred, d.err
}

func TestRouterPrefersMLDetector(t *testing.T) {
	ml := &staticDetector{pred: Prediction{Label: LabelHoax, Confidence: 0.91}}
	router := NewRouter(ml, NewEngine(), logging.NewNop())

	pred := router.Predict(context.Background(), neutralText, "kompas.com")
	if pred != ml.pred {
		t.Fatalf("expected ML prediction %+v, got %+v", ml.pred, pred)
	}
}

func TestRouterFallsBackToEngine(t *testing.T) {
	ml := &staticDetector{err: errors.New("scorer unavailable")}
	router := NewRouter(ml, NewEngine(), logging.NewNop())

	pred := router.Predict(context.Background(), neutralText, "kompas.com")
	if pred.Label != LabelNonHoax {
		t.Fatalf("expected rule-engine fallback to non-hoax, got %s", pred.Label)
	}
	if pred.Confidence != 0.95 {
		t.Fatalf("expected rule-engine confidence 0.95, got %.4f", pred.Confidence)
	}
}

func TestRouterWithoutDetector(t *testing.T) {
	router := NewRouter(nil, NewEngine(), logging.NewNop())

	pred := router.Predict(context.Background(), sensationalText, "")
	if pred.Label != LabelHoax {
		t.Fatalf("expected hoax from rule engine, got %s", pred.Label)
	}
}
