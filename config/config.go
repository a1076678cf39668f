// go-aime
// Copyright (c) 2025 The Zaparoo Project Contributors.
// SPDX-License-Identifier: LGPL-3.0-or-later
//
// This file is part of go-aime.
//
// go-aime is free software; you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public
// License as published by the Free Software Foundation; either
// version 3 of the License, or (at your option) any later version.
//
// go-aime is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with go-aime; if not, write to the Free Software Foundation,
// Inc., 51 Franklin Street, Fifth Floor, Boston, MA  02110-1301, USA.

// Package config loads the reader's INI settings file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/ZaparooProject/go-aime"
	"github.com/ZaparooProject/go-aime/detection"
	"github.com/spf13/viper"
	"gopkg.in/ini.v1"
)

// DefaultFile is the settings file read when no path is given
const DefaultFile = "settings.ini"

// EnvPrefix prefixes environment overrides, e.g. AIME_SERIALSETTINGS_COMPORT
const EnvPrefix = "AIME"

// SerialConfig is the [SerialSettings] section
type SerialConfig struct {
	COMPort     string   `mapstructure:"comport"`
	IgnorePaths []string `mapstructure:"ignorepaths"`
	Prefer      []string `mapstructure:"prefer"`
	BaudRate    int      `mapstructure:"baudrate"`
}

// ReaderConfig is the [Reader] section
type ReaderConfig struct {
	Probe            string        `mapstructure:"probe"`
	Sequence         string        `mapstructure:"sequence"`
	PollInterval     time.Duration `mapstructure:"pollinterval"`
	ReadTimeout      time.Duration `mapstructure:"readtimeout"`
	ReconnectBackoff time.Duration `mapstructure:"reconnectbackoff"`
	VerifyChecksum   bool          `mapstructure:"verifychecksum"`
}

// SettingsConfig is the [Settings] section
type SettingsConfig struct {
	CardFile string `mapstructure:"cardfile"`
}

// InputConfig is the [Input] section
type InputConfig struct {
	KeyCommand string `mapstructure:"keycommand"`
}

// LoggingConfig is the [Logging] section. A non-empty File enables a
// rotating log file.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"maxsize"`
	MaxBackups int    `mapstructure:"maxbackups"`
	MaxAgeDays int    `mapstructure:"maxage"`
	Compress   bool   `mapstructure:"compress"`
}

// MetricsConfig is the [Metrics] section. A non-empty Listen address
// serves /metrics.
type MetricsConfig struct {
	Listen string `mapstructure:"listen"`
}

// Config is the whole settings file
type Config struct {
	Logging  LoggingConfig  `mapstructure:"logging"`
	Serial   SerialConfig   `mapstructure:"serialsettings"`
	Reader   ReaderConfig   `mapstructure:"reader"`
	Settings SettingsConfig `mapstructure:"settings"`
	Input    InputConfig    `mapstructure:"input"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

// Default returns the configuration used when the file is missing
func Default() *Config {
	cfg, err := load(viper.New(), "")
	if err != nil {
		panic(fmt.Sprintf("config defaults: %v", err))
	}
	return cfg
}

// Load reads the INI file at path over the defaults. A missing file is not
// an error. Environment variables prefixed AIME_ override both.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultFile
	}
	return load(viper.New(), path)
}

func load(v *viper.Viper, path string) (*Config, error) {
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		values, err := readINI(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, err
		default:
			if err := v.MergeConfigMap(values); err != nil {
				return nil, fmt.Errorf("merge %s: %w", path, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("serialsettings.comport", detection.DefaultPortName())
	v.SetDefault("serialsettings.baudrate", aime.DefaultBaudRate)
	v.SetDefault("serialsettings.ignorepaths", []string{})
	v.SetDefault("serialsettings.prefer", []string{})

	v.SetDefault("reader.probe", aime.ProbeFeliCa.String())
	v.SetDefault("reader.sequence", aime.SequenceEcho.String())
	v.SetDefault("reader.verifychecksum", false)
	v.SetDefault("reader.pollinterval", "500ms")
	v.SetDefault("reader.readtimeout", aime.DefaultReadTimeout.String())
	v.SetDefault("reader.reconnectbackoff", "1s")

	v.SetDefault("settings.cardfile", "Data/System/JSON/config.json")

	v.SetDefault("input.keycommand", "")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.file", "")
	v.SetDefault("logging.maxsize", 10)
	v.SetDefault("logging.maxbackups", 3)
	v.SetDefault("logging.maxage", 28)
	v.SetDefault("logging.compress", false)

	v.SetDefault("metrics.listen", "")
}

// readINI parses the file into a section -> key -> value map. Section and
// key names are lower-cased to match viper's keys.
func readINI(path string) (map[string]any, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	file, err := ini.LoadSources(ini.LoadOptions{
		Insensitive:              true,
		SpaceBeforeInlineComment: true,
	}, path)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	values := make(map[string]any)
	for _, section := range file.Sections() {
		keys := section.Keys()
		if len(keys) == 0 {
			continue
		}
		entries := make(map[string]any, len(keys))
		for _, key := range keys {
			if section.Name() == "serialsettings" && isListKey(key.Name()) {
				entries[key.Name()] = key.Strings(",")
				continue
			}
			entries[key.Name()] = key.String()
		}
		values[section.Name()] = entries
	}
	return values, nil
}

// isListKey reports whether a [SerialSettings] key holds a comma-separated list
func isListKey(name string) bool {
	return name == "ignorepaths" || name == "prefer"
}

// Validate checks the values the reader cannot run with
func (c *Config) Validate() error {
	if c.Serial.BaudRate <= 0 {
		return fmt.Errorf("%w: baud rate %d", aime.ErrInvalidParameter, c.Serial.BaudRate)
	}
	if _, err := aime.ParseProbePolicy(c.Reader.Probe); err != nil {
		return err
	}
	if _, err := aime.ParseSequencePolicy(c.Reader.Sequence); err != nil {
		return err
	}
	if c.Reader.ReadTimeout <= 0 {
		return fmt.Errorf("%w: read timeout %v", aime.ErrInvalidParameter, c.Reader.ReadTimeout)
	}
	if c.Reader.PollInterval < 0 || c.Reader.ReconnectBackoff < 0 {
		return fmt.Errorf("%w: negative interval", aime.ErrInvalidParameter)
	}
	return nil
}

// DeviceOptions translates the [Reader] section into session options
func (c *Config) DeviceOptions() ([]aime.Option, error) {
	probe, err := aime.ParseProbePolicy(c.Reader.Probe)
	if err != nil {
		return nil, err
	}
	sequence, err := aime.ParseSequencePolicy(c.Reader.Sequence)
	if err != nil {
		return nil, err
	}
	return []aime.Option{
		aime.WithTimeout(c.Reader.ReadTimeout),
		aime.WithPollInterval(c.Reader.PollInterval),
		aime.WithProbePolicy(probe),
		aime.WithSequencePolicy(sequence),
		aime.WithChecksumVerification(c.Reader.VerifyChecksum),
	}, nil
}
