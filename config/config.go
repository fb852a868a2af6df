// Package config holds the viewer settings.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const DefaultFile = "agentview.yaml"

type Viewer struct {
	AgentsDir string  `yaml:"agents_dir"`
	Agent     string  `yaml:"agent"`
	Scale     float64 `yaml:"scale"`
	Volume    float64 `yaml:"volume"`
	Script    string  `yaml:"script"`
	IdleMinMS int     `yaml:"idle_min_ms"`
	IdleMaxMS int     `yaml:"idle_max_ms"`
	HoldMS    int     `yaml:"hold_ms"`
	LogLevel  string  `yaml:"log_level"`
	Watch     bool    `yaml:"watch"`
	Seed      uint64  `yaml:"seed"`
}

func Default() Viewer {
	return Viewer{
		AgentsDir: "agents",
		Agent:     "Blinky",
		Scale:     2,
		Volume:    0.5,
		IdleMinMS: 3000,
		IdleMaxMS: 7000,
		HoldMS:    5000,
		LogLevel:  "info",
		Watch:     true,
	}
}

// Load overlays the YAML file at path on Default. A missing file is not an
// error when path is DefaultFile.
func Load(path string) (Viewer, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && path == DefaultFile {
			return cfg, nil
		}
		return cfg, fmt.Errorf("config: load %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("config: unmarshal %s: %w", path, err)
	}
	cfg.Normalize()
	return cfg, nil
}

// Normalize clamps out of range values back to something playable.
func (v *Viewer) Normalize() {
	def := Default()
	if v.Agent == "" {
		v.Agent = def.Agent
	}
	if v.Scale <= 0 {
		v.Scale = def.Scale
	}
	v.Volume = min(max(v.Volume, 0), 1)
	if v.IdleMinMS <= 0 {
		v.IdleMinMS = def.IdleMinMS
	}
	if v.IdleMaxMS < v.IdleMinMS {
		v.IdleMaxMS = v.IdleMinMS
	}
	if v.HoldMS <= 0 {
		v.HoldMS = def.HoldMS
	}
}

func (v Viewer) IdleMin() time.Duration { return time.Duration(v.IdleMinMS) * time.Millisecond }
func (v Viewer) IdleMax() time.Duration { return time.Duration(v.IdleMaxMS) * time.Millisecond }
func (v Viewer) Hold() time.Duration    { return time.Duration(v.HoldMS) * time.Millisecond }
