package scoring

import (
	"errors"
	"testing"

	"github.com/JaimeStill/glimpse/internal/failure"
)

func TestONNXRunAfterClose(t *testing.T) {
	m := &onnxModel{}
	if err := m.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	_, err := m.Run(make([]float32, 3))
	if !errors.Is(err, ErrClosed) {
		t.Errorf("Run() error = %v, want ErrClosed", err)
	}
	if failure.KindOf(err) != failure.Model {
		t.Errorf("Run() kind = %v, want %v", failure.KindOf(err), failure.Model)
	}
}
