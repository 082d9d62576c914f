package di

import (
	"context"
	"fmt"
	"time"

	"AlphaPull/internal/alpha"
	"AlphaPull/internal/domain/repository"
	domsvc "AlphaPull/internal/domain/service"
	"AlphaPull/internal/handler/api"
	internalrepo "AlphaPull/internal/repository"
	"AlphaPull/internal/service/stream"
	"AlphaPull/internal/services/calc"
	"AlphaPull/internal/usecase"
	pkgcache "AlphaPull/pkg/cache"
	pkgch "AlphaPull/pkg/clickhouse"
	"AlphaPull/pkg/config"
	xhttp "AlphaPull/pkg/http"
	pkgkafka "AlphaPull/pkg/kafka"
	applogger "AlphaPull/pkg/logger"
	"AlphaPull/pkg/metrics"
	"AlphaPull/pkg/server"
)

// ProvideLogger creates the application logger from config.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	return applogger.New(&applogger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideClickHouseClient creates a ClickHouse client and ensures schema.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := client.InitSchema(ctx, []string{
		"CREATE DATABASE IF NOT EXISTS alphapull",
		`CREATE TABLE IF NOT EXISTS alphapull.rt_ticks_raw (
            ts DateTime, symbol String, price Float64, volume Float64,
            source String, event_id String, seq UInt64
        ) ENGINE=ReplacingMergeTree ORDER BY (symbol, ts, event_id)`,
	}); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}

	return client, nil
}

// ProvideCache builds the cache front per config. Returns nil when caching
// is disabled; the price store treats nil as no cache.
func ProvideCache(cfg *config.Config) (pkgcache.Service, error) {
	if !cfg.Cache.Enabled {
		return nil, nil
	}
	if cfg.Cache.Redis.Enabled {
		rc, err := pkgcache.NewRedisCache(
			pkgcache.WithRedisHost(cfg.Cache.Redis.Host),
			pkgcache.WithRedisPort(cfg.Cache.Redis.Port),
			pkgcache.WithRedisPassword(cfg.Cache.Redis.Password),
			pkgcache.WithRedisDB(cfg.Cache.Redis.DB),
		)
		if err != nil {
			return nil, fmt.Errorf("redis cache: %w", err)
		}
		return pkgcache.NewLayeredCache(rc, pkgcache.WithLayeredMemorySize(cfg.Cache.MaxItems)), nil
	}
	return pkgcache.NewMemoryCache(pkgcache.WithMemoryMaxSize(cfg.Cache.MaxItems)), nil
}

// ProvidePriceStore creates the ClickHouse-backed DataProvider.
func ProvidePriceStore(ch *pkgch.Client, c pkgcache.Service, l *applogger.Logger, cfg *config.Config) domsvc.DataProvider {
	store := internalrepo.NewCHPriceStore(ch)
	store.SetLogger(l)
	if c != nil {
		store.SetCache(c, cfg.Cache.TTL)
	}
	return store
}

// ProvideCalcEngine selects the local or remote calculation engine.
func ProvideCalcEngine(cfg *config.Config) domsvc.CalculationEngine {
	if cfg.Engine.Mode == "http" {
		return calc.NewHTTPEngine(cfg.Engine.BaseURL, cfg.Engine.Timeout)
	}
	return calc.NewEngine()
}

// ProvideCompositeModel builds the enabled sub-models and the consensus
// composite over them.
func ProvideCompositeModel(
	cfg *config.Config,
	data domsvc.DataProvider,
	engine domsvc.CalculationEngine,
	l *applogger.Logger,
	rec repository.Metrics,
) (domsvc.AlphaModel, error) {
	var subModels []domsvc.AlphaModel

	if cfg.Models.Threshold.Enabled {
		m, err := alpha.NewThresholdModel(
			cfg.Models.Threshold.Period,
			cfg.Models.Threshold.Oversold,
			cfg.Models.Threshold.Overbought,
			data, engine,
		)
		if err != nil {
			return nil, err
		}
		m.SetLogger(l)
		m.SetMetrics(rec)
		subModels = append(subModels, m)
	}

	if cfg.Models.Crossover.Enabled {
		m, err := alpha.NewCrossoverModel(
			cfg.Models.Crossover.FastPeriod,
			cfg.Models.Crossover.SlowPeriod,
			data, engine,
		)
		if err != nil {
			return nil, err
		}
		m.SetLogger(l)
		m.SetMetrics(rec)
		subModels = append(subModels, m)
	}

	composite, err := alpha.NewCompositeModel(cfg.Models.Composite.Quorum, subModels...)
	if err != nil {
		return nil, err
	}
	composite.SetLogger(l)
	composite.SetMetrics(rec)
	return composite, nil
}

// ProvideKafkaProducer creates a Kafka producer, or nil when disabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideInsightPublisher creates the Kafka publisher, or nil when no
// producer is configured (API-only deployments).
func ProvideInsightPublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.InsightPublisher {
	if producer == nil {
		return nil
	}
	return internalrepo.NewKafkaInsightPublisher(producer, cfg.Kafka.Topic)
}

// ProvideTickStorage creates ClickHouse tick storage.
func ProvideTickStorage(chClient *pkgch.Client, cfg *config.Config) repository.TickStorage {
	return internalrepo.NewCHTickStorage(chClient.DB(), cfg.ClickHouse.Database+".rt_ticks_raw")
}

// ProvideMarketStream creates the WebSocket market stream, or nil when
// streaming is disabled.
func ProvideMarketStream(cfg *config.Config, l *applogger.Logger) repository.MarketStream {
	if !cfg.Stream.Enabled {
		return nil
	}
	s := stream.New(
		cfg.Stream.APIKey,
		cfg.Stream.WebSocketURL,
		cfg.Universe,
		cfg.Stream.ReconnectDelay,
		cfg.Stream.PingInterval,
	)
	s.SetLogger(l)
	return s
}

// ProvideTickIngestor creates the tick ingestion use case, or nil when no
// stream is configured.
func ProvideTickIngestor(
	ms repository.MarketStream,
	storage repository.TickStorage,
	rec repository.Metrics,
	cfg *config.Config,
	l *applogger.Logger,
) *usecase.TickIngestor {
	if ms == nil {
		return nil
	}
	ing := usecase.NewTickIngestor(ms, storage, rec, cfg.Stream.BatchSize, cfg.Stream.BatchTimeout)
	ing.SetLogger(l)
	return ing
}

// ProvideInsightCycle creates the generation cycle use case.
func ProvideInsightCycle(
	model domsvc.AlphaModel,
	pub repository.InsightPublisher,
	rec repository.Metrics,
	cfg *config.Config,
	l *applogger.Logger,
) *usecase.InsightCycle {
	c := usecase.NewInsightCycle(model, cfg.Universe, pub, rec, cfg.Cycle.Interval, cfg.Cycle.Timeout)
	c.SetLogger(l)
	return c
}

// ProvideRiskReporter creates the risk reporting use case.
func ProvideRiskReporter(data domsvc.DataProvider, engine domsvc.CalculationEngine, rec repository.Metrics) *usecase.RiskReporter {
	return usecase.NewRiskReporter(data, engine, rec)
}

// ProvideHandler creates the Echo API handler.
func ProvideHandler(l *applogger.Logger, cycle *usecase.InsightCycle, risk *usecase.RiskReporter, ing *usecase.TickIngestor) xhttp.Handler {
	var healthy func() bool
	if ing != nil {
		healthy = ing.IsConnected
	}
	return api.NewInsightsEchoHandler(l, cycle, risk, healthy)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	cycle *usecase.InsightCycle,
	ing *usecase.TickIngestor,
	handler xhttp.Handler,
	chClient *pkgch.Client,
	producer *pkgkafka.Producer,
) *server.App {
	if ing == nil {
		return server.New(cfg, l, cycle, nil, handler, chClient, producer)
	}
	return server.New(cfg, l, cycle, ing, handler, chClient, producer)
}
