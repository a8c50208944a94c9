package scoring_test

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"math"
	"testing"

	"github.com/JaimeStill/glimpse/internal/failure"
	"github.com/JaimeStill/glimpse/internal/scoring"
)

type fakeModel struct {
	scores []float32
	err    error
	input  []float32
	closed bool
}

func (m *fakeModel) Run(input []float32) ([]float32, error) {
	m.input = input
	return m.scores, m.err
}

func (m *fakeModel) Close() error {
	m.closed = true
	return nil
}

func encodePNG(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()

	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, c)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode() error = %v", err)
	}
	return buf.Bytes()
}

func testConfig() *scoring.Config {
	return &scoring.Config{InputWidth: 4, InputHeight: 4, Classes: 3, Layout: scoring.NHWC}
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestArgmax(t *testing.T) {
	nan := float32(math.NaN())

	tests := []struct {
		name      string
		scores    []float32
		wantClass int
		wantScore float32
		wantErr   bool
	}{
		{"single", []float32{0.3}, 1, 0.3, false},
		{"last", []float32{0.1, 0.2, 0.7}, 3, 0.7, false},
		{"first of tie", []float32{0.1, 0.2, 0.4, 0.1, 0.1, 0.4}, 3, 0.4, false},
		{"tie at 2 and 5", []float32{0.1, 0.9, 0.2, 0.3, 0.9}, 2, 0.9, false},
		{"negative", []float32{-3, -1, -2}, 2, -1, false},
		{"empty", nil, 0, 0, true},
		{"nan", []float32{0.1, nan, 0.2}, 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			class, score, err := scoring.Argmax(tt.scores)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Argmax() error = %v, wantErr %v", err, tt.wantErr)
			}
			if class != tt.wantClass || score != tt.wantScore {
				t.Errorf("Argmax() = (%d, %v), want (%d, %v)", class, score, tt.wantClass, tt.wantScore)
			}
		})
	}
}

func TestArgmaxTieDeterministic(t *testing.T) {
	scores := []float32{0.1, 0.9, 0.2, 0.3, 0.9}

	for i := range 100 {
		class, score, err := scoring.Argmax(scores)
		if err != nil {
			t.Fatalf("run %d: Argmax() error = %v", i, err)
		}
		if class != 2 || score != 0.9 {
			t.Fatalf("run %d: Argmax() = (%d, %v), want (2, 0.9)", i, class, score)
		}
	}
}

func TestDecode(t *testing.T) {
	if _, err := scoring.Decode(encodePNG(t, 2, 2, color.White)); err != nil {
		t.Errorf("Decode(png) error = %v", err)
	}

	tests := []struct {
		name  string
		input []byte
	}{
		{"empty", nil},
		{"garbage", []byte{0x00, 0x01, 0x02}},
		{"truncated png", encodePNG(t, 2, 2, color.White)[:20]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := scoring.Decode(tt.input)
			if !errors.Is(err, failure.ErrDecode) {
				t.Errorf("Decode() error = %v, want Decode kind", err)
			}
		})
	}
}

func near(a, b float32) bool {
	return math.Abs(float64(a-b)) <= 2.0/255
}

func TestTensorLayout(t *testing.T) {
	img, err := scoring.Decode(encodePNG(t, 8, 8, color.NRGBA{R: 255, G: 0, B: 51, A: 255}))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	const w, h = 2, 3
	plane := w * h

	t.Run("nhwc", func(t *testing.T) {
		data, err := scoring.Tensor(img, w, h, scoring.NHWC)
		if err != nil {
			t.Fatalf("Tensor() error = %v", err)
		}
		if len(data) != 3*plane {
			t.Fatalf("len = %d, want %d", len(data), 3*plane)
		}
		for i := range plane {
			r, g, b := data[i*3], data[i*3+1], data[i*3+2]
			if !near(r, 1) || !near(g, 0) || !near(b, 0.2) {
				t.Fatalf("pixel %d = (%v, %v, %v), want (1, 0, 0.2)", i, r, g, b)
			}
		}
	})

	t.Run("nchw", func(t *testing.T) {
		data, err := scoring.Tensor(img, w, h, scoring.NCHW)
		if err != nil {
			t.Fatalf("Tensor() error = %v", err)
		}
		for i := range plane {
			r, g, b := data[i], data[plane+i], data[2*plane+i]
			if !near(r, 1) || !near(g, 0) || !near(b, 0.2) {
				t.Fatalf("pixel %d = (%v, %v, %v), want (1, 0, 0.2)", i, r, g, b)
			}
		}
	})
}

func TestTensorInvalidSize(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	_, err := scoring.Tensor(img, 0, 4, scoring.NHWC)
	if !errors.Is(err, failure.ErrModel) {
		t.Errorf("Tensor() error = %v, want Model kind", err)
	}
}

func TestEngineClassify(t *testing.T) {
	model := &fakeModel{scores: []float32{0.05, 0.08, 0.87}}
	engine := scoring.New(testConfig(), model, discard())

	result, err := engine.Classify(context.Background(), encodePNG(t, 16, 10, color.Black))
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}

	if result.Class != 3 || result.Confidence != 0.87 {
		t.Errorf("Classify() = %+v, want class 3 at 0.87", result)
	}
	if len(model.input) != 3*4*4 {
		t.Errorf("model input len = %d, want %d", len(model.input), 3*4*4)
	}

	if err := engine.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if !model.closed {
		t.Error("Close() did not close the model")
	}
}

func TestEngineClassifyErrors(t *testing.T) {
	valid := encodePNG(t, 4, 4, color.White)

	tests := []struct {
		name  string
		model *fakeModel
		input []byte
		want  error
	}{
		{"undecodable", &fakeModel{scores: []float32{1}}, []byte{0x00, 0x01, 0x02}, failure.ErrDecode},
		{"run failure", &fakeModel{err: errors.New("session closed")}, valid, failure.ErrModel},
		{"empty scores", &fakeModel{scores: []float32{}}, valid, failure.ErrModel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := scoring.New(testConfig(), tt.model, discard())
			_, err := engine.Classify(context.Background(), tt.input)
			if !errors.Is(err, tt.want) {
				t.Errorf("Classify() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestEngineClassifyCanceled(t *testing.T) {
	model := &fakeModel{scores: []float32{1}}
	engine := scoring.New(testConfig(), model, discard())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := engine.Classify(ctx, encodePNG(t, 4, 4, color.White))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Classify() error = %v, want context.Canceled", err)
	}
	if model.input != nil {
		t.Error("model ran after cancellation")
	}
}
