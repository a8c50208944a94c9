package scoring

import (
	"errors"
	"fmt"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/JaimeStill/glimpse/internal/failure"
)

var envMu sync.Mutex

// ErrClosed is returned by Run after the model has been closed.
var ErrClosed = errors.New("model closed")

// onnxModel runs a precompiled ONNX graph with fixed input and output shapes.
// The session binds a single pair of tensors, so Run is serialized.
type onnxModel struct {
	mu      sync.Mutex
	session *ort.AdvancedSession
	input   *ort.Tensor[float32]
	output  *ort.Tensor[float32]
}

// LoadONNX initializes the onnxruntime environment (once per process) and
// loads the graph at cfg.ModelPath with the configured tensor shapes.
func LoadONNX(cfg *Config) (Model, error) {
	if err := initEnvironment(cfg.SharedLibraryPath); err != nil {
		return nil, failure.New(failure.Model, "initialize onnxruntime", err)
	}

	input, err := ort.NewEmptyTensor[float32](ort.NewShape(cfg.InputShape()...))
	if err != nil {
		return nil, failure.New(failure.Model, "create input tensor", err)
	}

	output, err := ort.NewEmptyTensor[float32](ort.NewShape(cfg.OutputShape()...))
	if err != nil {
		input.Destroy()
		return nil, failure.New(failure.Model, "create output tensor", err)
	}

	session, err := ort.NewAdvancedSession(
		cfg.ModelPath,
		[]string{cfg.InputName}, []string{cfg.OutputName},
		[]ort.ArbitraryTensor{input}, []ort.ArbitraryTensor{output},
		nil,
	)
	if err != nil {
		input.Destroy()
		output.Destroy()
		return nil, failure.New(failure.Model, "load model "+cfg.ModelPath, err)
	}

	return &onnxModel{
		session: session,
		input:   input,
		output:  output,
	}, nil
}

func (m *onnxModel) Run(input []float32) ([]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.session == nil {
		return nil, failure.New(failure.Model, "run model", ErrClosed)
	}

	dst := m.input.GetData()
	if len(input) != len(dst) {
		return nil, fmt.Errorf("input has %d values, model expects %d", len(input), len(dst))
	}
	copy(dst, input)

	if err := m.session.Run(); err != nil {
		return nil, fmt.Errorf("run session: %w", err)
	}

	out := m.output.GetData()
	scores := make([]float32, len(out))
	copy(scores, out)
	return scores, nil
}

func (m *onnxModel) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var err error
	if m.session != nil {
		err = m.session.Destroy()
		m.session = nil
	}
	if m.input != nil {
		m.input.Destroy()
		m.input = nil
	}
	if m.output != nil {
		m.output.Destroy()
		m.output = nil
	}
	return err
}

func initEnvironment(sharedLibraryPath string) error {
	envMu.Lock()
	defer envMu.Unlock()

	if ort.IsInitialized() {
		return nil
	}
	if sharedLibraryPath != "" {
		ort.SetSharedLibraryPath(sharedLibraryPath)
	}
	return ort.InitializeEnvironment()
}
