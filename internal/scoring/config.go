package scoring

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Layout is the memory order of the model's input tensor.
type Layout string

const (
	// NHWC is batch, height, width, channel; the layout of TensorFlow-exported graphs.
	NHWC Layout = "nhwc"
	// NCHW is batch, channel, height, width; the layout of PyTorch-exported graphs.
	NCHW Layout = "nchw"
)

// Config holds model asset locations and tensor geometry.
type Config struct {
	ModelPath         string `toml:"model_path"`
	LabelsPath        string `toml:"labels_path"`
	SharedLibraryPath string `toml:"shared_library_path"`
	InputName         string `toml:"input_name"`
	OutputName        string `toml:"output_name"`
	InputWidth        int    `toml:"input_width"`
	InputHeight       int    `toml:"input_height"`
	Classes           int    `toml:"classes"`
	Layout            Layout `toml:"layout"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	ModelPath         string
	LabelsPath        string
	SharedLibraryPath string
	InputName         string
	OutputName        string
	InputWidth        string
	InputHeight       string
	Classes           string
	Layout            string
}

// InputShape returns the input tensor shape for the configured layout.
func (c *Config) InputShape() []int64 {
	w, h := int64(c.InputWidth), int64(c.InputHeight)
	if c.Layout == NCHW {
		return []int64{1, 3, h, w}
	}
	return []int64{1, h, w, 3}
}

// OutputShape returns the output tensor shape.
func (c *Config) OutputShape() []int64 {
	return []int64{1, int64(c.Classes)}
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.ModelPath != "" {
		c.ModelPath = overlay.ModelPath
	}
	if overlay.LabelsPath != "" {
		c.LabelsPath = overlay.LabelsPath
	}
	if overlay.SharedLibraryPath != "" {
		c.SharedLibraryPath = overlay.SharedLibraryPath
	}
	if overlay.InputName != "" {
		c.InputName = overlay.InputName
	}
	if overlay.OutputName != "" {
		c.OutputName = overlay.OutputName
	}
	if overlay.InputWidth != 0 {
		c.InputWidth = overlay.InputWidth
	}
	if overlay.InputHeight != 0 {
		c.InputHeight = overlay.InputHeight
	}
	if overlay.Classes != 0 {
		c.Classes = overlay.Classes
	}
	if overlay.Layout != "" {
		c.Layout = overlay.Layout
	}
}

func (c *Config) loadDefaults() {
	if c.ModelPath == "" {
		c.ModelPath = "mobilenet_v2_1.4_224.onnx"
	}
	if c.LabelsPath == "" {
		c.LabelsPath = "labels.txt"
	}
	if c.InputName == "" {
		c.InputName = "input"
	}
	if c.OutputName == "" {
		c.OutputName = "output"
	}
	if c.InputWidth == 0 {
		c.InputWidth = 224
	}
	if c.InputHeight == 0 {
		c.InputHeight = 224
	}
	if c.Classes == 0 {
		c.Classes = 1001
	}
	if c.Layout == "" {
		c.Layout = NHWC
	}
}

func (c *Config) loadEnv(env *Env) {
	setString := func(name string, dst *string) {
		if name == "" {
			return
		}
		if v := os.Getenv(name); v != "" {
			*dst = v
		}
	}
	setInt := func(name string, dst *int) {
		if name == "" {
			return
		}
		if v := os.Getenv(name); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}

	setString(env.ModelPath, &c.ModelPath)
	setString(env.LabelsPath, &c.LabelsPath)
	setString(env.SharedLibraryPath, &c.SharedLibraryPath)
	setString(env.InputName, &c.InputName)
	setString(env.OutputName, &c.OutputName)
	setInt(env.InputWidth, &c.InputWidth)
	setInt(env.InputHeight, &c.InputHeight)
	setInt(env.Classes, &c.Classes)

	if env.Layout != "" {
		if v := os.Getenv(env.Layout); v != "" {
			c.Layout = Layout(strings.ToLower(v))
		}
	}
}

func (c *Config) validate() error {
	if c.InputWidth < 1 || c.InputHeight < 1 {
		return fmt.Errorf("invalid input size: %dx%d", c.InputWidth, c.InputHeight)
	}
	if c.Classes < 1 {
		return fmt.Errorf("invalid classes: %d", c.Classes)
	}
	if c.Layout != NHWC && c.Layout != NCHW {
		return fmt.Errorf("invalid layout: %s", c.Layout)
	}
	return nil
}
