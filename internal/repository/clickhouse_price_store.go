package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	domsvc "AlphaPull/internal/domain/service"
	"AlphaPull/pkg/cache"
	pkgch "AlphaPull/pkg/clickhouse"
	applogger "AlphaPull/pkg/logger"
)

// CHPriceStore serves price history out of the raw tick table in ClickHouse.
// It implements the models' DataProvider. An optional cache front absorbs
// the repeated per-model lookups within a single generation cycle.
type CHPriceStore struct {
	db       *sql.DB
	table    string
	cache    cache.Service
	cacheTTL time.Duration
	l        *applogger.Logger
}

func NewCHPriceStore(ch *pkgch.Client) *CHPriceStore {
	return &CHPriceStore{db: ch.DB(), table: "alphapull.rt_ticks_raw"}
}

// SetLogger injects a structured logger.
func (s *CHPriceStore) SetLogger(l *applogger.Logger) { s.l = l }

// SetCache enables read-through caching of history lookups.
func (s *CHPriceStore) SetCache(c cache.Service, ttl time.Duration) {
	s.cache = c
	s.cacheTTL = ttl
}

// GetPriceHistory returns up to n closing prices for a symbol, ordered
// oldest first. Fewer than n points is not an error; callers decide whether
// the series is long enough.
func (s *CHPriceStore) GetPriceHistory(ctx context.Context, symbol string, n int) ([]float64, error) {
	if n <= 0 {
		return nil, fmt.Errorf("price history: n must be positive, got %d", n)
	}

	key := fmt.Sprintf("prices:%s:%d", symbol, n)
	if s.cache != nil {
		var cached []float64
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			return cached, nil
		}
	}

	start := time.Now()
	q := fmt.Sprintf(`
        SELECT price
        FROM %s
        WHERE symbol = ?
        ORDER BY ts DESC
        LIMIT ?
    `, s.table)
	rows, err := s.db.QueryContext(ctx, q, symbol, n)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse price_history query error",
				applogger.String("symbol", symbol),
				applogger.Int("limit", n),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("price history: %w", err)
	}
	defer rows.Close()

	prices := make([]float64, 0, n)
	for rows.Next() {
		var p float64
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("scan price: %w", err)
		}
		prices = append(prices, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	// reverse to ASC so the last element is the latest observation
	for i, j := 0, len(prices)-1; i < j; i, j = i+1, j-1 {
		prices[i], prices[j] = prices[j], prices[i]
	}

	if s.cache != nil && len(prices) > 0 {
		if err := s.cache.Set(ctx, key, prices, s.cacheTTL); err != nil && s.l != nil {
			s.l.Warn("price_history cache set failed",
				applogger.String("symbol", symbol),
				applogger.Error(err),
			)
		}
	}

	if s.l != nil {
		s.l.Debug("clickhouse price_history ok",
			applogger.String("symbol", symbol),
			applogger.Int("limit", n),
			applogger.Int("rows", len(prices)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return prices, nil
}

var _ domsvc.DataProvider = (*CHPriceStore)(nil)
