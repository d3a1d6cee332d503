package classifier

import (
	"context"
	"log/slog"

	"periksa/internal/logging"
)

// Detector produces a prediction for a text. Implementations may fail; the
// Router absorbs those failures.
type Detector interface {
	Predict(ctx context.Context, text, source string) (Prediction, error)
}

// Router consults an optional ML detector first and falls back to the rule
// engine on any failure. Router.Predict never returns an error.
type Router struct {
	ml     Detector
	engine *Engine
	logger *slog.Logger
}

// NewRouter builds a router. ml may be nil, in which case every prediction
// comes from the rule engine.
func NewRouter(ml Detector, engine *Engine, logger *slog.Logger) *Router {
	if engine == nil {
		engine = NewEngine()
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Router{ml: ml, engine: engine, logger: logger}
}

// Predict returns the ML verdict when a detector is configured and succeeds,
// otherwise the deterministic rule-based verdict.
func (r *Router) Predict(ctx context.Context, text, source string) Prediction {
	if r.ml != nil {
		pred, err := r.ml.Predict(ctx, text, source)
		if err == nil {
			return pred
		}
		r.logger.Warn("ml detector failed, using rule engine",
			logging.String(logging.FieldComponent, "classifier"),
			logging.Error(err))
	}
	return r.engine.Score(text, source)
}

// Engine exposes the fallback rule engine for explanation queries.
func (r *Router) Engine() *Engine {
	return r.engine
}
