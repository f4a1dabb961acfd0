// Package dedup wires the deduplicating store, the stream processor and the
// metrics server into a single run.
package dedup

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethpandaops/logdedup/pkg/dedup/store"
	"github.com/ethpandaops/logdedup/pkg/dedup/stream"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// EventLoader supplies the ordered events for a run.
type EventLoader interface {
	Load(ctx context.Context) ([]stream.Event, error)
}

// ResultHandler receives every result of a successful run, in order.
type ResultHandler func(result stream.Result)

type Deduplicator struct {
	log *logrus.Logger
	Cfg Config

	store     *store.Store
	loader    EventLoader
	processor *stream.Processor

	metrics  *Metrics
	gatherer prometheus.Gatherer
}

// New creates a Deduplicator registering metrics on the default registry.
func New(log *logrus.Logger, conf *Config) (*Deduplicator, error) {
	return NewWithRegistry(log, conf, prometheus.DefaultRegisterer, prometheus.DefaultGatherer)
}

// NewWithRegistry creates a Deduplicator using the given registerer and
// gatherer. A nil registerer skips metric registration.
func NewWithRegistry(log *logrus.Logger, conf *Config, registerer prometheus.Registerer, gatherer prometheus.Gatherer) (*Deduplicator, error) {
	if err := conf.Validate(); err != nil {
		return nil, err
	}

	s, err := store.NewWithMetrics(log, &conf.Store, store.NewMetricsWithRegisterer("logdedup_store", registerer))
	if err != nil {
		return nil, err
	}

	d := &Deduplicator{
		log:       log,
		Cfg:       *conf,
		store:     s,
		loader:    stream.NewLoader(log, &conf.Source),
		processor: stream.NewProcessor(log, stream.NewMetricsWithRegisterer("logdedup_stream", registerer)),
		metrics:   NewMetricsWithRegisterer("logdedup", registerer),
		gatherer:  gatherer,
	}

	log.WithFields(logrus.Fields{
		"expiration_time": conf.Store.ExpirationTime,
		"max_size":        conf.Store.MaxSize,
	}).Info("initialized deduplicator")

	return d, nil
}

// Store returns the underlying store.
func (d *Deduplicator) Store() *store.Store {
	return d.store
}

// Start loads the events, runs them through the store and hands each result
// to handler. When a metrics address is configured the metrics server runs
// alongside, and with linger set it keeps serving until SIGINT or SIGTERM.
func (d *Deduplicator) Start(ctx context.Context, handler ResultHandler) error {
	d.log.Info("starting deduplicator")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := d.store.Start(ctx); err != nil {
		return err
	}
	defer d.store.Stop()

	g, gctx := errgroup.WithContext(ctx)

	if d.Cfg.MetricsAddr != "" {
		g.Go(func() error {
			return d.ServeMetrics(gctx)
		})
	}

	g.Go(func() error {
		defer cancel()

		if err := d.run(gctx, handler); err != nil {
			return err
		}

		if d.Cfg.Linger && d.Cfg.MetricsAddr != "" {
			d.waitForSignal(gctx)
		}

		return nil
	})

	return g.Wait()
}

func (d *Deduplicator) run(ctx context.Context, handler ResultHandler) error {
	started := time.Now()

	events, err := d.loader.Load(ctx)
	if err != nil {
		d.metrics.ObserveRun("failed", time.Since(started).Seconds())

		return err
	}

	results, err := d.processor.Run(d.store, events)
	if err != nil {
		d.metrics.ObserveRun("failed", time.Since(started).Seconds())

		return err
	}

	d.metrics.ObserveRun("succeeded", time.Since(started).Seconds())

	if handler != nil {
		for _, result := range results {
			handler(result)
		}
	}

	return nil
}

func (d *Deduplicator) waitForSignal(ctx context.Context) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGTERM, syscall.SIGINT)
	defer signal.Stop(sigs)

	d.log.Info("stream finished, serving metrics until interrupted")

	select {
	case sig := <-sigs:
		d.log.Printf("Caught signal: %v", sig)
	case <-ctx.Done():
	}

	d.log.Printf("Shutting down...")
}

// ServeMetrics serves the prometheus endpoint until ctx is done.
func (d *Deduplicator) ServeMetrics(ctx context.Context) error {
	server := &http.Server{
		Addr:              d.Cfg.MetricsAddr,
		ReadHeaderTimeout: 15 * time.Second,
		Handler:           promhttp.HandlerFor(d.gatherer, promhttp.HandlerOpts{}),
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			d.log.WithError(err).Warn("failed to shut down metrics server")
		}
	}()

	d.log.Infof("serving metrics at %s", d.Cfg.MetricsAddr)

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
