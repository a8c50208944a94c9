// Package inference coordinates the content-addressed classification cache.
//
// For each input the Orchestrator derives a fingerprint, consults the result
// store and returns a stored value on a hit. On a miss it scores the image,
// resolves the label, formats the result line and writes it back under the
// same fingerprint. The cache key depends only on the input bytes, so a new
// model or label table keeps serving entries computed by the previous one.
package inference

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/JaimeStill/glimpse/internal/failure"
	"github.com/JaimeStill/glimpse/internal/fingerprint"
	"github.com/JaimeStill/glimpse/internal/results"
	"github.com/JaimeStill/glimpse/internal/scoring"
)

// Classifier scores raw image bytes.
type Classifier interface {
	Classify(ctx context.Context, b []byte) (scoring.Result, error)
}

// Resolver maps a 1-based class index to a label.
type Resolver interface {
	Resolve(class int) (string, error)
}

// Recorder receives cache and inference measurements.
type Recorder interface {
	CacheHit()
	CacheMiss()
	CacheWriteFailed()
	Failure(kind string)
	ObserveInference(d time.Duration)
}

// Response is the outcome of one classification request.
type Response struct {
	Fingerprint fingerprint.Fingerprint
	Value       string
	// Cached is true when Value was served from the store.
	Cached bool
	// WriteErr is set when Value was computed but could not be persisted.
	WriteErr *WriteError
}

// Orchestrator implements classify-with-cache over its collaborators.
// It holds no mutable state of its own apart from the optional flight group.
type Orchestrator struct {
	store      results.Store
	classifier Classifier
	labels     Resolver
	deriver    fingerprint.Deriver
	recorder   Recorder
	precision  int
	flight     *singleflight.Group
	logger     *slog.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithDeriver replaces the default SHA-256 fingerprint deriver.
func WithDeriver(d fingerprint.Deriver) Option {
	return func(o *Orchestrator) {
		if d != nil {
			o.deriver = d
		}
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(o *Orchestrator) {
		if r != nil {
			o.recorder = r
		}
	}
}

// New creates an Orchestrator.
func New(
	cfg Config,
	store results.Store,
	classifier Classifier,
	labels Resolver,
	logger *slog.Logger,
	opts ...Option,
) *Orchestrator {
	o := &Orchestrator{
		store:      store,
		classifier: classifier,
		labels:     labels,
		deriver:    fingerprint.DeriverFunc(fingerprint.Of),
		recorder:   nopRecorder{},
		precision:  cfg.Decimals(),
		logger:     logger.With("system", "inference"),
	}

	if cfg.Coalesce() {
		o.flight = &singleflight.Group{}
	}

	for _, opt := range opts {
		opt(o)
	}

	return o
}

// ClassifyWithCache returns the classification string for b.
// When the result was computed but the cache write failed, the valid result
// is returned together with a *WriteError.
func (o *Orchestrator) ClassifyWithCache(ctx context.Context, b []byte) (string, error) {
	resp, err := o.Classify(ctx, b)
	if err != nil {
		return "", err
	}
	if resp.WriteErr != nil {
		return resp.Value, resp.WriteErr
	}
	return resp.Value, nil
}

// Classify runs the cache protocol for b and reports how the value was obtained.
// A non-nil error means no result is available.
func (o *Orchestrator) Classify(ctx context.Context, b []byte) (*Response, error) {
	key := o.deriver.Of(b)

	value, found, err := o.store.Lookup(ctx, key)
	if err != nil {
		return nil, o.fail(key, err)
	}

	if found {
		o.recorder.CacheHit()
		o.logger.Info("classification served", "cache", "hit", "fingerprint", key)
		return &Response{Fingerprint: key, Value: value, Cached: true}, nil
	}

	o.recorder.CacheMiss()

	if o.flight == nil {
		return o.compute(ctx, key, b)
	}

	// The shared computation outlives any single caller's cancellation;
	// each caller stops waiting when its own ctx is done.
	ch := o.flight.DoChan(string(key), func() (any, error) {
		return o.compute(context.WithoutCancel(ctx), key, b)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			o.logger.Debug("miss coalesced", "fingerprint", key)
		}
		resp := *res.Val.(*Response)
		return &resp, nil
	}
}

func (o *Orchestrator) compute(ctx context.Context, key fingerprint.Fingerprint, b []byte) (*Response, error) {
	start := time.Now()

	result, err := o.classifier.Classify(ctx, b)
	if err != nil {
		return nil, o.fail(key, err)
	}

	label, err := o.labels.Resolve(result.Class)
	if err != nil {
		return nil, o.fail(key, err)
	}

	o.recorder.ObserveInference(time.Since(start))

	resp := &Response{
		Fingerprint: key,
		Value:       Format(label, result.Confidence, o.precision),
	}

	if err := o.store.Insert(ctx, key, resp.Value); err != nil {
		resp.WriteErr = &WriteError{Fingerprint: key, Result: resp.Value, Err: err}
		o.recorder.CacheWriteFailed()
		o.logger.Error("cache write failed", "fingerprint", key, "error", err)
	}

	o.logger.Info("classification served",
		"cache", "miss",
		"fingerprint", key,
		"class", result.Class,
		"confidence", result.Confidence,
	)

	return resp, nil
}

func (o *Orchestrator) fail(key fingerprint.Fingerprint, err error) error {
	kind := failure.KindOf(err)
	o.recorder.Failure(kind.String())
	o.logger.Warn("classification failed", "fingerprint", key, "kind", kind, "error", err)
	return err
}

type nopRecorder struct{}

func (nopRecorder) CacheHit()                      {}
func (nopRecorder) CacheMiss()                     {}
func (nopRecorder) CacheWriteFailed()              {}
func (nopRecorder) Failure(string)                 {}
func (nopRecorder) ObserveInference(time.Duration) {}
