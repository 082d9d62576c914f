package service

import (
	"context"

	"AlphaPull/internal/domain/models"
)

// AlphaModel turns price/indicator data into directional insights.
// Each GenerateInsights call is independent and side-effect free apart from
// diagnostic output; implementations emit at most one insight per symbol.
type AlphaModel interface {
	// Name identifies the model for provenance and logging.
	Name() string
	// GenerateInsights analyses the given symbols and returns zero or one
	// insight per symbol. A bad symbol is skipped, never an error: the
	// returned error is reserved for invocation-level failures.
	GenerateInsights(ctx context.Context, symbols []string) ([]models.Insight, error)
	// Initialize and Cleanup are diagnostic-only lifecycle hooks.
	Initialize(ctx context.Context) error
	Cleanup(ctx context.Context) error
}
