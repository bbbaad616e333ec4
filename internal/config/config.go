package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	TourPath      string  `yaml:"tour"`
	ToursDir      string  `yaml:"tours_dir"`
	BaseURL       string  `yaml:"base_url"`
	InitialSurvey string  `yaml:"initial_survey"`
	ShareBase     string  `yaml:"share_base"`
	Speed         float64 `yaml:"speed"`
	Loop          bool    `yaml:"loop"`

	TransitionFoV float64 `yaml:"transition_fov"`
	NearThreshold float64 `yaml:"near_threshold"`

	ZoomOut    time.Duration `yaml:"zoom_out"`
	Transition time.Duration `yaml:"transition"`
	ZoomIn     time.Duration `yaml:"zoom_in"`
	HideFade   time.Duration `yaml:"hide_fade"`
	RevealFade time.Duration `yaml:"reveal_fade"`
	FlashOut   time.Duration `yaml:"flash_out"`
	FlashHold  time.Duration `yaml:"flash_hold"`
	FlashIn    time.Duration `yaml:"flash_in"`

	FirstPause      time.Duration `yaml:"first_pause"`
	DwellPause      time.Duration `yaml:"dwell_pause"`
	EndPause        time.Duration `yaml:"end_pause"`
	CountdownPeriod time.Duration `yaml:"countdown_period"`

	ShowStats    bool   `yaml:"stats"`
	BuildVersion string `yaml:"-"`
}

func Default() *Config {
	return &Config{
		ToursDir:      "input/tours",
		InitialSurvey: "CDS/P/2MASS/color",
		Speed:         1,
		Loop:          true,

		TransitionFoV: 5.0,
		NearThreshold: 0.2,

		ZoomOut:    2 * time.Second,
		Transition: 2 * time.Second,
		ZoomIn:     2 * time.Second,
		HideFade:   500 * time.Millisecond,
		RevealFade: 500 * time.Millisecond,
		FlashOut:   1500 * time.Millisecond,
		FlashHold:  500 * time.Millisecond,
		FlashIn:    1500 * time.Millisecond,

		FirstPause:      2 * time.Second,
		DwellPause:      8 * time.Second,
		EndPause:        5 * time.Second,
		CountdownPeriod: 100 * time.Millisecond,
	}
}

// Load overlays the YAML file at path on the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("ошибка разбора конфигурации %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Speed <= 0 {
		return fmt.Errorf("speed must be > 0, got %v", c.Speed)
	}
	if c.TransitionFoV <= 0 {
		return fmt.Errorf("transition_fov must be > 0, got %v", c.TransitionFoV)
	}
	if c.NearThreshold < 0 {
		return fmt.Errorf("near_threshold must be >= 0, got %v", c.NearThreshold)
	}
	return nil
}
