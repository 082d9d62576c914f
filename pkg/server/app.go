package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	pkgch "AlphaPull/pkg/clickhouse"
	"AlphaPull/pkg/config"
	xhttp "AlphaPull/pkg/http"
	pkgkafka "AlphaPull/pkg/kafka"
	applogger "AlphaPull/pkg/logger"
)

// cycleRunner is the scheduled generation loop.
type cycleRunner interface {
	Start(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

// ingestRunner is the optional stream-to-storage pipeline.
type ingestRunner interface {
	Start(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	l          *applogger.Logger
	cycle      cycleRunner
	ingestor   ingestRunner
	handler    xhttp.Handler
	chClient   *pkgch.Client
	producer   *pkgkafka.Producer
	httpServer *xhttp.Server
}

// New creates a new App instance with all dependencies. The ingestor and
// producer may be nil for API-only deployments.
func New(
	cfg *config.Config,
	l *applogger.Logger,
	cycle cycleRunner,
	ingestor ingestRunner,
	handler xhttp.Handler,
	chClient *pkgch.Client,
	producer *pkgkafka.Producer,
) *App {
	return &App{
		cfg:      cfg,
		l:        l,
		cycle:    cycle,
		ingestor: ingestor,
		handler:  handler,
		chClient: chClient,
		producer: producer,
	}
}

// producerPublisher adapts the Kafka producer to the log collector's
// publisher contract.
type producerPublisher struct {
	p *pkgkafka.Producer
}

func (pp producerPublisher) PublishMessage(ctx context.Context, topic string, payload interface{}) error {
	return pp.p.Publish(ctx, topic, nil, payload)
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// aggregate repeated error logs onto the bus when a producer exists
	if a.producer != nil {
		a.l.AddCollector(&applogger.CollectionConfig{
			TimeInterval:   30 * time.Second,
			CountThreshold: 100,
			Topic:          "alphapull.logs",
			Publisher:      producerPublisher{p: a.producer},
		})
	}

	a.httpServer = xhttp.NewServer(a.handler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithRequestMetrics(a.cfg.Metrics.Enabled, a.l, time.Second),
	)

	if a.ingestor != nil {
		if err := a.ingestor.Start(ctx); err != nil {
			a.l.Error("ingestor start error", applogger.Error(err))
			return err
		}
		a.l.Info("tick ingestor started", applogger.Strings("universe", a.cfg.Universe))
	}

	if err := a.cycle.Start(ctx); err != nil {
		a.l.Error("cycle start error", applogger.Error(err))
		return err
	}
	a.l.Info("insight cycle started",
		applogger.Duration("interval_ms", a.cfg.Cycle.Interval),
		applogger.Int("universe", len(a.cfg.Universe)),
	)

	if err := a.httpServer.Start(); err != nil {
		a.l.Error("http server start error", applogger.Error(err))
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.l.Info("shutdown signal received")
	return a.shutdown(ctx)
}

// shutdown gracefully stops all services.
func (a *App) shutdown(ctx context.Context) error {
	if a.ingestor != nil {
		if err := a.ingestor.Shutdown(ctx); err != nil {
			a.l.Warn("ingestor stop error", applogger.Error(err))
		}
	}

	if err := a.cycle.Shutdown(ctx); err != nil {
		a.l.Warn("cycle stop error", applogger.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.l.Error("http shutdown error", applogger.Error(err))
	}

	if a.producer != nil {
		a.l.RemoveCollector()
		if err := a.producer.Close(); err != nil {
			a.l.Warn("kafka producer close error", applogger.Error(err))
		}
	}

	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			a.l.Warn("clickhouse close error", applogger.Error(err))
		}
	}

	a.l.Info("shutdown complete")
	return nil
}
