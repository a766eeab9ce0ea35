package config

import (
	"fmt"
	"sort"

	"github.com/san-kum/horizon/internal/dynamo"
)

// Preset is a named variation of the default run.
type Preset struct {
	Description string
	Apply       func(c *Config)
}

var Presets = map[string]Preset{
	"interstellar": {
		Description: "reference disk, 3000 particles tilted 25 degrees",
		Apply:       func(c *Config) {},
	},
	"edge-on": {
		Description: "disk seen edge-on",
		Apply: func(c *Config) {
			c.TiltDeg = 90
		},
	},
	"face-on": {
		Description: "untilted disk in the x-y plane",
		Apply: func(c *Config) {
			c.TiltDeg = 0
		},
	},
	"dense": {
		Description: "10000 particles packed into 3-15 r_s",
		Apply: func(c *Config) {
			c.Particles = 10000
			c.Disk.Outer = 15
		},
	},
	"ring": {
		Description: "narrow band hugging r_s where the glow ring dominates",
		Apply: func(c *Config) {
			c.Disk.Inner = 1.05
			c.Disk.Outer = 2
			c.Dt = 0.05
			c.Steps = 4000
		},
	},
	"quick": {
		Description: "500 particles for 500 steps",
		Apply: func(c *Config) {
			c.Particles = 500
			c.Steps = 500
			c.Dt = 0.02
		},
	},
}

// GetPreset returns a fresh config for the named preset, or nil.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	p.Apply(cfg)
	return cfg
}

// FromPreset is GetPreset with an error for unknown names.
func FromPreset(name string) (*Config, error) {
	cfg := GetPreset(name)
	if cfg == nil {
		return nil, fmt.Errorf("%w: %q (have %v)", dynamo.ErrUnknownPreset, name, ListPresets())
	}
	return cfg, nil
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
