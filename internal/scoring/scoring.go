// Package scoring wraps a trained image classification model.
// An Engine decodes raw image bytes, resizes and normalizes the pixels into
// the model's fixed input tensor, runs the model and selects the best class.
package scoring

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/JaimeStill/glimpse/internal/failure"
)

// Model is an opaque scoring function over a fixed-shape input tensor.
type Model interface {
	// Run returns one score per class for the given input tensor.
	Run(input []float32) ([]float32, error)
	Close() error
}

// Result is the best class produced by a model run.
// Class is 1-based, matching the label table ordinal.
type Result struct {
	Class      int
	Confidence float32
}

// Engine classifies raw image bytes with a Model.
type Engine struct {
	model  Model
	width  int
	height int
	layout Layout
	logger *slog.Logger
}

// New creates an Engine over model using the tensor geometry in cfg.
func New(cfg *Config, model Model, logger *slog.Logger) *Engine {
	return &Engine{
		model:  model,
		width:  cfg.InputWidth,
		height: cfg.InputHeight,
		layout: cfg.Layout,
		logger: logger.With("system", "scoring"),
	}
}

// Classify decodes b, runs the model and returns the highest scoring class.
func (e *Engine) Classify(ctx context.Context, b []byte) (Result, error) {
	img, err := Decode(b)
	if err != nil {
		return Result{}, err
	}

	input, err := Tensor(img, e.width, e.height, e.layout)
	if err != nil {
		return Result{}, err
	}

	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	scores, err := e.model.Run(input)
	if err != nil {
		return Result{}, failure.New(failure.Model, "run model", err)
	}

	class, score, err := Argmax(scores)
	if err != nil {
		return Result{}, failure.New(failure.Model, "select class", err)
	}

	e.logger.Debug("image scored",
		"bounds", img.Bounds().Size(),
		"class", class,
		"confidence", score,
	)

	return Result{Class: class, Confidence: score}, nil
}

// Close releases the underlying model.
func (e *Engine) Close() error {
	return e.model.Close()
}

// Argmax returns the 1-based index and value of the maximum score.
// Equal maxima resolve to the lowest index.
func Argmax(scores []float32) (int, float32, error) {
	if len(scores) == 0 {
		return 0, 0, errors.New("empty score vector")
	}

	best := 0
	for i, s := range scores {
		if math.IsNaN(float64(s)) {
			return 0, 0, fmt.Errorf("score %d is NaN", i+1)
		}
		if s > scores[best] {
			best = i
		}
	}

	return best + 1, scores[best], nil
}
