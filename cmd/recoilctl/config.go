// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/rs/zerolog"
)

type config struct {
	LogLevel      zerolog.Level
	InboxCapacity int
	Pairs         int
	Messages      int
	Interval      time.Duration
	Timeout       time.Duration
	MetricsAddr   string
}

type fileConfig struct {
	LogLevel      string `toml:"log_level"`
	InboxCapacity int    `toml:"inbox_capacity"`
	Pairs         int    `toml:"pairs"`
	Messages      int    `toml:"messages"`
	Interval      string `toml:"interval"`
	Timeout       string `toml:"timeout"`
	MetricsAddr   string `toml:"metrics_addr"`
}

func defaultConfig() config {
	return config{
		LogLevel:      zerolog.InfoLevel,
		InboxCapacity: 64,
		Pairs:         4,
		Messages:      16,
		Interval:      10 * time.Millisecond,
		Timeout:       time.Second,
	}
}

// loadConfig overlays the keys present in the TOML file at path onto the
// defaults. An empty path yields the defaults.
func loadConfig(path string) (config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return config{}, fmt.Errorf("load recoilctl config: %w", err)
	}

	if meta.IsDefined("log_level") {
		lvl, err := zerolog.ParseLevel(strings.TrimSpace(raw.LogLevel))
		if err != nil {
			return config{}, fmt.Errorf("parse log_level: %w", err)
		}
		cfg.LogLevel = lvl
	}

	if meta.IsDefined("inbox_capacity") {
		cfg.InboxCapacity = raw.InboxCapacity
	}

	if meta.IsDefined("pairs") {
		cfg.Pairs = raw.Pairs
	}

	if meta.IsDefined("messages") {
		cfg.Messages = raw.Messages
	}

	if meta.IsDefined("interval") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.Interval))
		if err != nil {
			return config{}, fmt.Errorf("parse interval: %w", err)
		}
		cfg.Interval = d
	}

	if meta.IsDefined("timeout") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.Timeout))
		if err != nil {
			return config{}, fmt.Errorf("parse timeout: %w", err)
		}
		cfg.Timeout = d
	}

	if meta.IsDefined("metrics_addr") {
		cfg.MetricsAddr = strings.TrimSpace(raw.MetricsAddr)
	}

	return cfg, cfg.validate()
}

func (c config) validate() error {
	switch {
	case c.InboxCapacity <= 0:
		return fmt.Errorf("inbox_capacity must be positive, got %d", c.InboxCapacity)
	case c.Pairs <= 0:
		return fmt.Errorf("pairs must be positive, got %d", c.Pairs)
	case c.Messages < 0:
		return fmt.Errorf("messages must not be negative, got %d", c.Messages)
	case c.Interval < 0:
		return fmt.Errorf("interval must not be negative, got %v", c.Interval)
	case c.Timeout <= 0:
		return fmt.Errorf("timeout must be positive, got %v", c.Timeout)
	}
	return nil
}
