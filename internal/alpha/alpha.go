// Package alpha contains the signal-generating models and the consensus
// composite that merges their insights.
package alpha

import (
	domrepo "AlphaPull/internal/domain/repository"
	applogger "AlphaPull/pkg/logger"
)

// Skip reasons shared by the models. A skip is never an error: the symbol
// is dropped from the current call and processing continues.
const (
	skipInsufficientData     = "insufficient_data"
	skipIndicatorUnavailable = "indicator_unavailable"
	skipCollaboratorFailure  = "collaborator_failure"
	skipQuorumNotMet         = "quorum_not_met"
	skipTie                  = "tie"
)

// diag bundles the optional logger/metrics pair injected into each model.
type diag struct {
	l       *applogger.Logger
	metrics domrepo.Metrics
}

func (d *diag) skip(model, symbol, reason string, cause error) {
	if d.metrics != nil {
		d.metrics.RecordSkip(model, reason)
	}
	if d.l == nil {
		return
	}
	fields := []applogger.Field{
		applogger.String("model", model),
		applogger.String("symbol", symbol),
		applogger.String("reason", reason),
	}
	if cause != nil {
		fields = append(fields, applogger.Error(cause))
	}
	d.l.Debug("symbol skipped", fields...)
}

func (d *diag) emitted(model, symbol, direction string, confidence float64) {
	if d.metrics != nil {
		d.metrics.RecordInsight(model, symbol, direction)
	}
	if d.l == nil {
		return
	}
	d.l.Info("insight generated",
		applogger.String("model", model),
		applogger.String("symbol", symbol),
		applogger.String("direction", direction),
		applogger.Float64("confidence", confidence),
	)
}
