// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kkyr/fig"
)

const (
	configEnv           = "CITYWEATHER"
	DefaultTextTpl      = "{{.ConditionIconWithSpace}}{{.Location}}: {{.Current}} ({{title .Condition}})\nH: {{.High}}  L: {{.Low}}"
	DefaultSearchingTpl = "Searching weather for {{.Query}}..."
	DefaultPromptTpl    = "Please type a city above and press enter"
)

// Config represents the application's configuration structure.
type Config struct {
	// Allowed values: imperial, metric, standard
	Units    string     `fig:"units" default:"imperial"`
	LogLevel slog.Level `fig:"loglevel" default:"0"`

	Weather struct {
		APIKey  string        `fig:"apikey"`
		Timeout time.Duration `fig:"timeout" default:"10s"`
	} `fig:"weather"`

	Intervals struct {
		// 0 disables the refresh
		Refresh time.Duration `fig:"refresh"`
	} `fig:"intervals"`

	Templates struct {
		Text      string `fig:"text"`
		Searching string `fig:"searching"`
		Prompt    string `fig:"prompt"`
	} `fig:"templates"`
}

func NewFromFile(path, file string) (*Config, error) {
	conf := new(Config)
	_, err := os.Stat(filepath.Join(path, file))
	if err != nil {
		return conf, fmt.Errorf("failed to read Config: %w", err)
	}
	if err = fig.Load(conf, fig.Dirs(path), fig.File(file), fig.UseEnv(configEnv)); err != nil {
		return conf, fmt.Errorf("failed to load Config: %w", err)
	}

	return conf, conf.Validate()
}

func New() (*Config, error) {
	conf := new(Config)
	if err := fig.Load(conf, fig.AllowNoFile(), fig.UseEnv(configEnv)); err != nil {
		return conf, fmt.Errorf("failed to load Config: %w", err)
	}

	return conf, conf.Validate()
}

func (c *Config) Validate() error {
	c.Units = strings.ToLower(c.Units)
	if c.Units != "imperial" && c.Units != "metric" && c.Units != "standard" {
		return fmt.Errorf("invalid units: %s", c.Units)
	}
	if c.Weather.APIKey == "" {
		return fmt.Errorf("an OpenWeatherMap API key is required (set %s_WEATHER_APIKEY)", configEnv)
	}
	if c.Weather.Timeout <= 0 {
		return fmt.Errorf("invalid weather timeout: %s", c.Weather.Timeout)
	}
	if c.Intervals.Refresh < 0 {
		return fmt.Errorf("invalid refresh interval: %s", c.Intervals.Refresh)
	}
	if c.Templates.Text == "" {
		c.Templates.Text = DefaultTextTpl
	}
	if c.Templates.Searching == "" {
		c.Templates.Searching = DefaultSearchingTpl
	}
	if c.Templates.Prompt == "" {
		c.Templates.Prompt = DefaultPromptTpl
	}

	return nil
}
