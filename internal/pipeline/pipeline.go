// Package pipeline turns one uploaded image into an annotated response and a
// statistics event.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"teddywatch/internal/detector"
	"teddywatch/internal/imagecodec"
	"teddywatch/internal/metrics"
	"teddywatch/internal/stats"
	"teddywatch/pkg/log"
)

const (
	BorderThickness = 10

	sinkTimeout = 30 * time.Second
)

var borderColor = color.RGBA{R: 255, G: 0, B: 0, A: 0}

// Sink receives every successfully processed upload. Delivery is best-effort.
type Sink interface {
	Name() string
	Emit(ctx context.Context, o *Outcome) error
}

// Outcome is the result of one processed upload.
type Outcome struct {
	Event   stats.Event
	Boxes   []detector.Box
	Image   []byte // JPEG
	Message string
	Width   int
	Height  int
}

func (o *Outcome) Hit() bool {
	return o.Event.IsHit()
}

func (o *Outcome) Count() int {
	return len(o.Boxes)
}

type Pipeline struct {
	detector detector.Detector
	store    stats.Store
	sinks    []Sink
	metrics  *metrics.Metrics
	timeout  time.Duration
	now      func() time.Time
	wg       sync.WaitGroup
}

type Option func(*Pipeline)

// WithTimeout bounds each inference call. Zero disables the deadline.
func WithTimeout(d time.Duration) Option {
	return func(p *Pipeline) {
		p.timeout = d
	}
}

func WithSinks(sinks ...Sink) Option {
	return func(p *Pipeline) {
		p.sinks = append(p.sinks, sinks...)
	}
}

func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) {
		p.now = now
	}
}

func New(det detector.Detector, store stats.Store, m *metrics.Metrics, opts ...Option) *Pipeline {
	p := &Pipeline{
		detector: det,
		store:    store,
		metrics:  m,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process runs one upload through decode, inference, classification,
// annotation, bookkeeping and encoding. The returned error is always an
// *Error.
func (p *Pipeline) Process(ctx context.Context, data []byte) (*Outcome, error) {
	logger := log.Component(ctx, "pipeline")

	outcome, err := p.process(ctx, data, logger)
	if err != nil {
		if KindOf(err) == KindCanceled {
			// the client went away; not a service failure
			p.metrics.Uploads.WithLabelValues(metrics.OutcomeCanceled).Inc()
			logger.Info("upload canceled by client")
		} else {
			p.metrics.Uploads.WithLabelValues(metrics.OutcomeError).Inc()
		}
		return nil, err
	}

	if outcome.Hit() {
		p.metrics.Uploads.WithLabelValues(metrics.OutcomeHit).Inc()
	} else {
		p.metrics.Uploads.WithLabelValues(metrics.OutcomeMiss).Inc()
	}
	p.emit(ctx, outcome, logger)
	return outcome, nil
}

func (p *Pipeline) process(ctx context.Context, data []byte, logger *logrus.Entry) (*Outcome, error) {
	img, err := imagecodec.Decode(data)
	if err != nil {
		img.Close()
		logger.WithError(err).Warn("failed to decode upload")
		return nil, newError(KindDecode, err)
	}
	defer img.Close()

	logger.Debugf("running inference on %dx%d image", img.Cols(), img.Rows())
	start := time.Now()
	boxes, err := p.detect(ctx, img)
	p.metrics.InferenceSeconds.Observe(time.Since(start).Seconds())
	if err != nil {
		switch {
		case errors.Is(err, context.DeadlineExceeded):
			return nil, newError(KindTimeout, err)
		case errors.Is(err, context.Canceled):
			return nil, newError(KindCanceled, err)
		}
		return nil, newError(KindInference, err)
	}
	logger.Infof("inference complete, %d object(s) in %v", len(boxes), time.Since(start))

	event := stats.NewEvent(len(boxes), p.now())
	outcome := &Outcome{
		Event: event,
		Boxes: boxes,
	}

	var result gocv.Mat
	if event.IsHit() {
		annotated := p.detector.Annotate(img, boxes)
		result, err = imagecodec.DrawBorder(annotated, BorderThickness, borderColor)
		annotated.Close()
		if err != nil {
			return nil, newError(KindEncode, err)
		}
		defer result.Close()
		outcome.Message = hitMessage(len(boxes))
	} else {
		result = img
		outcome.Message = event.Result()
	}

	// a lost statistics write never costs the client its image
	if err := p.store.Append(context.WithoutCancel(ctx), event); err != nil {
		p.metrics.StoreErrors.Inc()
		logger.WithError(err).Error("failed to record detection event")
	}

	outcome.Image, err = imagecodec.Encode(result)
	if err != nil {
		return nil, newError(KindEncode, err)
	}
	outcome.Width, outcome.Height = result.Cols(), result.Rows()

	return outcome, nil
}

// detect runs inference on a private clone of img so a deadline can return
// early while the model call, which cannot be interrupted, finishes in the
// background.
func (p *Pipeline) detect(ctx context.Context, img gocv.Mat) ([]detector.Box, error) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	type result struct {
		boxes []detector.Box
		err   error
	}
	ch := make(chan result, 1)
	frame := img.Clone()

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer frame.Close()
		boxes, err := p.detector.Detect(ctx, frame)
		ch <- result{boxes: boxes, err: err}
	}()

	select {
	case r := <-ch:
		return r.boxes, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (p *Pipeline) emit(ctx context.Context, o *Outcome, logger *logrus.Entry) {
	for _, sink := range p.sinks {
		p.wg.Add(1)
		go func(sink Sink) {
			defer p.wg.Done()
			sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sinkTimeout)
			defer cancel()
			if err := sink.Emit(sctx, o); err != nil {
				p.metrics.SinkErrors.WithLabelValues(sink.Name()).Inc()
				logger.WithError(err).WithField("sink", sink.Name()).Error("failed to emit detection")
			}
		}(sink)
	}
}

// Statistics reads the whole statistics document.
func (p *Pipeline) Statistics(ctx context.Context) (*stats.Statistics, error) {
	s, err := p.store.Load(ctx)
	if err != nil {
		return nil, newError(KindStore, err)
	}
	return s, nil
}

// Close waits for background inference and sink deliveries.
func (p *Pipeline) Close() {
	p.wg.Wait()
}

func hitMessage(n int) string {
	plural := ""
	if n > 1 {
		plural = "s"
	}
	return fmt.Sprintf("⚠️ %d Teddy Bear%s Detected!", n, plural)
}
