package usecase

import (
	"context"
	"fmt"
	"time"

	"AlphaPull/internal/domain/models"
	drepo "AlphaPull/internal/domain/repository"
	domsvc "AlphaPull/internal/domain/service"
	applogger "AlphaPull/pkg/logger"
)

// InsightCycle drives the composite model over the configured universe and
// publishes whatever consensus it reaches. One cycle is one full
// generate-and-publish pass; Start repeats it on an interval.
type InsightCycle struct {
	model    domsvc.AlphaModel
	universe []string
	pub      drepo.InsightPublisher
	metrics  drepo.Metrics
	l        *applogger.Logger

	interval time.Duration
	timeout  time.Duration
}

// NewInsightCycle wires the cycle. The publisher may be nil when running
// request-only (insights are still returned to API callers).
func NewInsightCycle(
	model domsvc.AlphaModel,
	universe []string,
	pub drepo.InsightPublisher,
	metrics drepo.Metrics,
	interval, timeout time.Duration,
) *InsightCycle {
	if interval <= 0 {
		interval = time.Minute
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &InsightCycle{
		model:    model,
		universe: universe,
		pub:      pub,
		metrics:  metrics,
		interval: interval,
		timeout:  timeout,
	}
}

// SetLogger injects a structured logger.
func (c *InsightCycle) SetLogger(l *applogger.Logger) { c.l = l }

// Run executes a single cycle against the given symbols (the configured
// universe when symbols is empty) and returns the generated insights.
func (c *InsightCycle) Run(ctx context.Context, symbols []string) ([]models.Insight, error) {
	if len(symbols) == 0 {
		symbols = c.universe
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	insights, err := c.model.GenerateInsights(ctx, symbols)
	if err != nil {
		c.metrics.RecordError("cycle")
		return nil, fmt.Errorf("generate insights: %w", err)
	}
	c.metrics.RecordLatency("cycle", time.Since(start).Seconds())

	if c.pub != nil && len(insights) > 0 {
		if err := c.pub.PublishBatch(ctx, insights); err != nil {
			c.metrics.RecordError("publish")
			if c.l != nil {
				c.l.Error("insight publish failed",
					applogger.Int("insights", len(insights)),
					applogger.Error(err),
				)
			}
			// insights are still valid for the caller
		}
	}

	if c.l != nil {
		c.l.Info("cycle complete",
			applogger.Int("symbols", len(symbols)),
			applogger.Int("insights", len(insights)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return insights, nil
}

// Start initializes the model and runs cycles until the context ends.
func (c *InsightCycle) Start(ctx context.Context) error {
	if err := c.model.Initialize(ctx); err != nil {
		return fmt.Errorf("initialize model: %w", err)
	}

	go func() {
		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := c.Run(ctx, nil); err != nil && c.l != nil {
					c.l.Error("scheduled cycle failed", applogger.Error(err))
				}
			}
		}
	}()
	return nil
}

// Shutdown releases model resources.
func (c *InsightCycle) Shutdown(ctx context.Context) error {
	return c.model.Cleanup(ctx)
}
