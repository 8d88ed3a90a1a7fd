package config

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/outofforest/flashstore/persistence"
	"github.com/outofforest/flashstore/records"
)

const (
	// DefaultImage is the path of the flash image used if none is configured.
	DefaultImage = "flash.img"

	// DefaultPresetCapacity is the maximum number of preset records accepted by the CLI.
	DefaultPresetCapacity = 10
)

// Config defines flashctl settings.
type Config struct {
	Image    string         `yaml:"image"`
	Geometry GeometryConfig `yaml:"geometry"`
	Presets  PresetsConfig  `yaml:"presets"`
	Poll     PollConfig     `yaml:"poll"`
	Gops     bool           `yaml:"gops"`
}

// GeometryConfig defines layout of the data pages.
// Base is a pointer because 0 is a valid flash address.
type GeometryConfig struct {
	Base     *uint32 `yaml:"base"`
	PageSize uint32  `yaml:"pageSize"`
	Pages    uint32  `yaml:"pages"`
}

// PresetsConfig defines admission rules for presets.
// Capacity of 0 rejects every new preset.
type PresetsConfig struct {
	Capacity *int `yaml:"capacity"`
}

// Limit returns the maximum number of preset records accepted.
func (p PresetsConfig) Limit() int {
	if p.Capacity == nil {
		return DefaultPresetCapacity
	}
	return *p.Capacity
}

// PollConfig defines how completion of device operations is awaited.
type PollConfig struct {
	Interval time.Duration `yaml:"interval"`
	Timeout  time.Duration `yaml:"timeout"`
}

// Default returns configuration with all the defaults applied.
func Default() Config {
	var cfg Config
	cfg.withDefaults()
	return cfg
}

// Load reads configuration from YAML file. Empty path returns defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.WithStack(err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Wrapf(err, "parsing config %s failed", path)
	}
	cfg.withDefaults()

	if err := cfg.Geometry.Persistence().Validate(); err != nil {
		return Config{}, err
	}
	if cfg.Presets.Limit() < 0 {
		return Config{}, errors.Errorf("preset capacity must not be negative, provided: %d", cfg.Presets.Limit())
	}
	return cfg, nil
}

// Persistence returns the geometry used by the store.
func (g GeometryConfig) Persistence() persistence.Geometry {
	geometry := persistence.Geometry{
		Base:     persistence.DefaultGeometry().Base,
		PageSize: g.PageSize,
		Pages:    g.Pages,
	}
	if g.Base != nil {
		geometry.Base = records.Address(*g.Base)
	}
	return geometry
}

// Waiter returns waiter polling the device.
func (p PollConfig) Waiter() persistence.Waiter {
	return persistence.PollWaiter{
		Interval: p.Interval,
		Timeout:  p.Timeout,
	}
}

func (c *Config) withDefaults() {
	if c.Image == "" {
		c.Image = DefaultImage
	}

	geometry := persistence.DefaultGeometry()
	if c.Geometry.PageSize == 0 {
		c.Geometry.PageSize = geometry.PageSize
	}
	if c.Geometry.Pages == 0 {
		c.Geometry.Pages = geometry.Pages
	}
	if c.Geometry.Base == nil {
		base := uint32(geometry.Base)
		c.Geometry.Base = &base
	}

	if c.Presets.Capacity == nil {
		capacity := DefaultPresetCapacity
		c.Presets.Capacity = &capacity
	}
	if c.Poll.Timeout == 0 {
		c.Poll.Timeout = time.Second
	}
}
