package usecase

import (
	"context"
	"errors"
	"time"

	"AlphaPull/internal/domain/models"
	drepo "AlphaPull/internal/domain/repository"
	applogger "AlphaPull/pkg/logger"
)

var errStreamClosed = errors.New("stream channel closed")

// TickIngestor pulls ticks off the market stream and writes them to tick
// storage in batches. The stored ticks become the price history the alpha
// models read back.
type TickIngestor struct {
	stream  drepo.MarketStream
	storage drepo.TickStorage
	metrics drepo.Metrics
	l       *applogger.Logger

	batchSize    int
	batchTimeout time.Duration
}

// NewTickIngestor creates the ingestor. Batch size and timeout bound how
// long a tick can sit in the buffer before it reaches storage.
func NewTickIngestor(
	stream drepo.MarketStream,
	storage drepo.TickStorage,
	metrics drepo.Metrics,
	batchSize int,
	batchTimeout time.Duration,
) *TickIngestor {
	if batchSize <= 0 {
		batchSize = 100
	}
	if batchTimeout <= 0 {
		batchTimeout = time.Second
	}
	return &TickIngestor{
		stream:       stream,
		storage:      storage,
		metrics:      metrics,
		batchSize:    batchSize,
		batchTimeout: batchTimeout,
	}
}

// SetLogger injects a structured logger.
func (i *TickIngestor) SetLogger(l *applogger.Logger) { i.l = l }

// IsConnected reports stream status for health checks.
func (i *TickIngestor) IsConnected() bool { return i.stream.IsConnected() }

// Start connects, subscribes and launches the consume loop.
func (i *TickIngestor) Start(ctx context.Context) error {
	if err := i.stream.Connect(ctx); err != nil {
		return err
	}
	if err := i.stream.Subscribe(ctx); err != nil {
		return err
	}
	tickCh, errCh := i.stream.Read(ctx)
	go i.consume(ctx, tickCh, errCh)
	return nil
}

func (i *TickIngestor) consume(ctx context.Context, tickCh <-chan *models.Tick, errCh <-chan error) {
	batch := make([]*models.Tick, 0, i.batchSize)
	ticker := time.NewTicker(i.batchTimeout)
	defer ticker.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}
		start := time.Now()
		if err := i.storage.StoreBatch(ctx, batch); err != nil {
			i.metrics.RecordError("tick_store")
			if i.l != nil {
				i.l.Error("tick batch store failed",
					applogger.Int("batch", len(batch)),
					applogger.Error(err),
				)
			}
		} else {
			i.metrics.RecordLatency("tick_store", time.Since(start).Seconds())
		}
		batch = batch[:0]
	}

	for {
		select {
		case <-ctx.Done():
			flush()
			return
		case err, ok := <-errCh:
			if !ok {
				err = errStreamClosed
			}
			if err != nil {
				i.metrics.RecordError("stream")
				if i.l != nil {
					i.l.Warn("stream error, reconnecting", applogger.Error(err))
				}
				if rerr := i.stream.Reconnect(ctx); rerr != nil {
					if i.l != nil {
						i.l.Error("stream reconnect failed", applogger.Error(rerr))
					}
					continue
				}
				// the old channels are dead after a reconnect
				tickCh, errCh = i.stream.Read(ctx)
			}
		case t, ok := <-tickCh:
			if !ok {
				tickCh = nil // wait for the reconnect to replace it
				continue
			}
			if t == nil {
				continue
			}
			i.metrics.RecordLastPrice(t.Symbol, t.Price)
			batch = append(batch, t)
			if len(batch) >= i.batchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		}
	}
}

// Shutdown flushes nothing further and closes the stream; the consume loop
// exits with its context.
func (i *TickIngestor) Shutdown(ctx context.Context) error {
	return i.stream.Close()
}
