package main

import (
	"fmt"
	"image"
	_ "image/png" // blend sources
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/gogpu/anim"
	"github.com/gogpu/anim/effect"
)

// config is the YAML configuration of gifx. Flags override Input and Output.
//
//	input: in.gif
//	output: out.gif
//	defaultDelay: 100ms
//	minDelay: 20ms
//	loopCount: 0
//	alphaThreshold: 128
//	effect:
//	  hue: 90
//	  envelope: inOutQuad
type config struct {
	Input          string         `yaml:"input"`
	Output         string         `yaml:"output"`
	DefaultDelay   time.Duration  `yaml:"defaultDelay"`
	MinDelay       time.Duration  `yaml:"minDelay"`
	LoopCount      *int           `yaml:"loopCount"`
	AlphaThreshold uint8          `yaml:"alphaThreshold"`
	Effect         effect.Options `yaml:"effect"`
}

func defaultConfig() config {
	return config{
		Output:         "out.gif",
		DefaultDelay:   anim.DefaultDelay,
		AlphaThreshold: 128,
	}
}

// loadConfig reads path on top of the defaults. An empty path yields the
// defaults.
func loadConfig(path string) (config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path) //nolint:gosec // path is user-provided intentionally
	if err != nil {
		return config{}, fmt.Errorf("gifx: read config: %w", err)
	}
	if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
		return config{}, fmt.Errorf("gifx: parse config %s: %w", path, err)
	}
	if err := cfg.Effect.Validate(); err != nil {
		return config{}, fmt.Errorf("gifx: config %s: %w", path, err)
	}
	if b := cfg.Effect.Blend; b != nil && b.Image != "" {
		img := b.Image
		if !filepath.IsAbs(img) {
			img = filepath.Join(filepath.Dir(path), img)
		}
		src, err := loadImage(img)
		if err != nil {
			return config{}, fmt.Errorf("gifx: config %s: blend image: %w", path, err)
		}
		b.Source = src
	}
	return cfg, nil
}

// loadImage decodes a PNG into a pixmap.
func loadImage(path string) (*anim.Pixmap, error) {
	f, err := os.Open(path) //nolint:gosec // path is user-provided intentionally
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, err
	}
	return anim.PixmapFromImage(img), nil
}

// animOptions returns the engine options selected by cfg.
func (c config) animOptions() []anim.Option {
	return []anim.Option{
		anim.WithDefaultDelay(c.DefaultDelay),
		anim.WithMinDelay(c.MinDelay),
	}
}
