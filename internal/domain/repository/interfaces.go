package repository

import (
	"context"

	"AlphaPull/internal/domain/models"
)

type MarketStream interface {
	Connect(ctx context.Context) error
	Subscribe(ctx context.Context) error
	Read(ctx context.Context) (<-chan *models.Tick, <-chan error)
	Reconnect(ctx context.Context) error
	Close() error
	IsConnected() bool
}

// InsightPublisher delivers composite insights downstream.
type InsightPublisher interface {
	Publish(ctx context.Context, in models.Insight) error
	PublishBatch(ctx context.Context, insights []models.Insight) error
	Close() error
}

// TickStorage persists streamed ticks as the raw price history.
type TickStorage interface {
	Store(ctx context.Context, t *models.Tick) error
	StoreBatch(ctx context.Context, ticks []*models.Tick) error
	Health(ctx context.Context) error
	Close() error
}

type Metrics interface {
	RecordInsight(model, symbol, direction string)
	RecordSkip(model, reason string)
	RecordError(kind string)
	RecordLastPrice(symbol string, price float64)
	RecordLatency(op string, seconds float64)
}
