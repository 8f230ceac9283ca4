// Package config holds the runtime options of the face filters. The defaults can be
// overridden by a YAML file and by the FACEFILTER_* environment variables, in this order.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/esimov/facefilter"
	"github.com/esimov/facefilter/imop"
	"github.com/esimov/facefilter/landmark"
	"gopkg.in/yaml.v3"
)

// Config groups the camera, filter and landmark detection options.
type Config struct {
	Camera   CameraConfig        `yaml:"camera"`
	Filters  FiltersConfig       `yaml:"filters"`
	Scheme   string              `yaml:"scheme"`
	Detector landmark.PigoConfig `yaml:"detector"`
}

// CameraConfig selects the capture device and the preview window of the live mode.
type CameraConfig struct {
	Device int    `yaml:"device"`
	Window string `yaml:"window"`
	Delay  int    `yaml:"delay"` // key polling delay in milliseconds
}

// FiltersConfig holds the initial filter, the overlay assets and the blending options.
type FiltersConfig struct {
	Mode       string `yaml:"mode"`
	Sunglasses string `yaml:"sunglasses"`
	Mustache   string `yaml:"mustache"`
	BlurKernel int    `yaml:"blur_kernel"`
	Blend      string `yaml:"blend"`
}

// Default returns the built-in options.
func Default() *Config {
	return &Config{
		Camera: CameraConfig{
			Device: 0,
			Window: "Webcam Feed",
			Delay:  1,
		},
		Filters: FiltersConfig{
			Mode:       facefilter.ModeNone.String(),
			Sunglasses: "assets/sunglasses.png",
			Mustache:   "assets/mustache.png",
			BlurKernel: facefilter.DefaultBlurKernel,
			Blend:      imop.Replace,
		},
		Scheme:   landmark.Pigo.Name,
		Detector: landmark.DefaultPigoConfig(),
	}
}

// Load returns the default options overridden by the YAML file found at path
// (when path is not empty) and by the environment variables.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile overrides the options defined in the YAML file.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("could not read the config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("could not decode the config file %s: %w", path, err)
	}
	return nil
}

// Validate checks the consistency of the options.
func (c *Config) Validate() error {
	if k := c.Filters.BlurKernel; k < 3 || k%2 == 0 {
		return fmt.Errorf("the blur kernel size should be an odd number greater than 1, got %d", k)
	}
	if err := imop.InitOp().Set(c.Filters.Blend); err != nil {
		return err
	}
	if _, err := facefilter.ParseMode(c.Filters.Mode); err != nil {
		return err
	}
	if c.Camera.Device < 0 {
		return fmt.Errorf("invalid camera device index: %d", c.Camera.Device)
	}
	if c.Camera.Delay <= 0 {
		return fmt.Errorf("the key polling delay should be positive, got %d", c.Camera.Delay)
	}
	if c.Scheme == "" {
		return fmt.Errorf("missing landmark scheme")
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Camera.Device = envInt("FACEFILTER_DEVICE", c.Camera.Device)
	c.Camera.Window = envString("FACEFILTER_WINDOW", c.Camera.Window)
	c.Camera.Delay = envInt("FACEFILTER_DELAY", c.Camera.Delay)

	c.Filters.Mode = envString("FACEFILTER_MODE", c.Filters.Mode)
	c.Filters.Sunglasses = envString("FACEFILTER_SUNGLASSES", c.Filters.Sunglasses)
	c.Filters.Mustache = envString("FACEFILTER_MUSTACHE", c.Filters.Mustache)
	c.Filters.BlurKernel = envInt("FACEFILTER_BLUR_KERNEL", c.Filters.BlurKernel)
	c.Filters.Blend = envString("FACEFILTER_BLEND", c.Filters.Blend)

	c.Scheme = envString("FACEFILTER_SCHEME", c.Scheme)
	c.Detector.FaceFinder = envString("FACEFILTER_FACEFINDER", c.Detector.FaceFinder)
	c.Detector.Puploc = envString("FACEFILTER_PUPLOC", c.Detector.Puploc)
	c.Detector.FlpDir = envString("FACEFILTER_FLP_DIR", c.Detector.FlpDir)
	c.Detector.MinSize = envInt("FACEFILTER_MIN_SIZE", c.Detector.MinSize)
}

// envInt reads an environment variable and parses it as a non negative integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n >= 0 {
		return n
	}
	return defaultVal
}

func envString(key, defaultVal string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return defaultVal
}
