package main

import (
	"context"
	"fmt"
	"time"

	"teddywatch/internal/config"
	"teddywatch/internal/detector"
	"teddywatch/internal/metrics"
	"teddywatch/internal/pipeline"
	"teddywatch/internal/sink"
	"teddywatch/internal/stats"
	"teddywatch/pkg/log"
)

// app is the wired set of long-lived components.
type app struct {
	detector detector.Detector
	store    stats.Store
	sinks    *sink.Set
	metrics  *metrics.Metrics
	pipeline *pipeline.Pipeline
}

// newApp loads the model, opens the store and connects the enabled sinks.
// A nil store selects the configured backend.
func newApp(ctx context.Context, conf *config.Config, store stats.Store) (*app, error) {
	a := &app{metrics: metrics.New()}

	var err error
	if store == nil {
		store, err = stats.NewStore(conf, log.Component(ctx, "stats"))
		if err != nil {
			return nil, fmt.Errorf("open stats store: %w", err)
		}
	}
	a.store = store
	if err := a.store.Init(ctx); err != nil {
		a.Close()
		return nil, fmt.Errorf("init stats store: %w", err)
	}

	det, err := detector.New(ctx, conf, log.Component(ctx, "detector"))
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("load detector: %w", err)
	}
	a.detector = det

	a.sinks, err = sink.FromConfig(ctx, conf, log.Component(ctx, "sink"))
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("connect sinks: %w", err)
	}

	a.pipeline = pipeline.New(a.detector, a.store, a.metrics,
		pipeline.WithTimeout(time.Duration(conf.RequestTimeout)*time.Second),
		pipeline.WithSinks(a.sinks.Sinks...),
	)
	return a, nil
}

// Close waits for in-flight work and then releases everything in reverse
// order.
func (a *app) Close() {
	if a.pipeline != nil {
		a.pipeline.Close()
	}
	if a.sinks != nil {
		a.sinks.Close()
	}
	if a.detector != nil {
		a.detector.Close()
	}
	if a.store != nil {
		a.store.Close()
	}
}
