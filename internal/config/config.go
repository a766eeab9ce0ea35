package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/horizon/internal/physics"
)

const (
	DefaultOutputDir    = "runs"
	DefaultSampleEvery  = 10
	DefaultTheme        = "default"
	DefaultFPS          = 30
	DefaultStepsPerTick = 5
)

// Config is the on-disk form of a run. Angles are in degrees and band edges
// in units of the absorption radius.
type Config struct {
	G         float64      `yaml:"g"`
	Mass      float64      `yaml:"mass"`
	TiltDeg   float64      `yaml:"tilt_deg"`
	Dt        float64      `yaml:"dt"`
	Steps     int          `yaml:"steps"`
	Particles int          `yaml:"particles"`
	Seed      int64        `yaml:"seed"`
	Workers   int          `yaml:"workers"`
	Disk      DiskConfig   `yaml:"disk"`
	Output    OutputConfig `yaml:"output"`
	View      ViewConfig   `yaml:"view"`
}

type DiskConfig struct {
	Inner float64 `yaml:"inner"`
	Outer float64 `yaml:"outer"`
}

type OutputConfig struct {
	Dir         string `yaml:"dir"`
	SampleEvery int    `yaml:"sample_every"`
}

type ViewConfig struct {
	Theme        string `yaml:"theme"`
	FPS          int    `yaml:"fps"`
	StepsPerTick int    `yaml:"steps_per_tick"`
}

func DefaultConfig() *Config {
	return &Config{
		G:         physics.DefaultG,
		Mass:      physics.DefaultM,
		TiltDeg:   physics.DefaultTiltDegrees,
		Dt:        physics.DefaultDt,
		Steps:     physics.DefaultSteps,
		Particles: physics.DefaultParticles,
		Disk: DiskConfig{
			Inner: physics.DefaultInnerRadius,
			Outer: physics.DefaultOuterRadius,
		},
		Output: OutputConfig{
			Dir:         DefaultOutputDir,
			SampleEvery: DefaultSampleEvery,
		},
		View: ViewConfig{
			Theme:        DefaultTheme,
			FPS:          DefaultFPS,
			StepsPerTick: DefaultStepsPerTick,
		},
	}
}

// Load reads a YAML file on top of the defaults, so a file only needs the
// keys it changes.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if err := LoadInto(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadInto overlays the keys present in path onto cfg.
func LoadInto(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Physics converts the file form into a validated physics.Config.
func (c *Config) Physics() (physics.Config, error) {
	pc := physics.Config{
		G:           c.G,
		M:           c.Mass,
		Tilt:        physics.Radians(c.TiltDeg),
		Dt:          c.Dt,
		Steps:       c.Steps,
		N:           c.Particles,
		InnerRadius: c.Disk.Inner,
		OuterRadius: c.Disk.Outer,
		Seed:        c.Seed,
		Workers:     c.Workers,
	}
	if err := pc.Validate(); err != nil {
		return physics.Config{}, err
	}
	return pc, nil
}
