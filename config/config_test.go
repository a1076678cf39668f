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

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ZaparooProject/go-aime"
	"github.com/ZaparooProject/go-aime/detection"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeINI(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "settings.ini")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, detection.DefaultPortName(), cfg.Serial.COMPort)
	assert.Equal(t, 38400, cfg.Serial.BaudRate)
	assert.Equal(t, "felica", cfg.Reader.Probe)
	assert.Equal(t, "echo", cfg.Reader.Sequence)
	assert.False(t, cfg.Reader.VerifyChecksum)
	assert.Equal(t, 500*time.Millisecond, cfg.Reader.PollInterval)
	assert.Equal(t, 3*time.Second, cfg.Reader.ReadTimeout)
	assert.Equal(t, time.Second, cfg.Reader.ReconnectBackoff)
	assert.Equal(t, "Data/System/JSON/config.json", cfg.Settings.CardFile)
	assert.Empty(t, cfg.Input.KeyCommand)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Empty(t, cfg.Logging.File)
	assert.Empty(t, cfg.Metrics.Listen)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.ini"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_File(t *testing.T) {
	path := writeINI(t, `[SerialSettings]
COMPort = COM7        ; "auto" enables detection
BaudRate = 115200
IgnorePaths = COM1, COM2
Prefer = 0403:6001, 1a86:7523

[Reader]
Probe = extended
Sequence = increment
VerifyChecksum = true
PollInterval = 250ms
ReadTimeout = 1s
ReconnectBackoff = 2s

[Settings]
CardFile = cards.json

[Input]
KeyCommand = xdotool key Return

[Logging]
Level = debug
File = aime.log

[Metrics]
Listen = :9110
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "COM7", cfg.Serial.COMPort)
	assert.Equal(t, 115200, cfg.Serial.BaudRate)
	assert.Equal(t, []string{"COM1", "COM2"}, cfg.Serial.IgnorePaths)
	assert.Equal(t, []string{"0403:6001", "1a86:7523"}, cfg.Serial.Prefer)
	assert.Equal(t, "extended", cfg.Reader.Probe)
	assert.Equal(t, "increment", cfg.Reader.Sequence)
	assert.True(t, cfg.Reader.VerifyChecksum)
	assert.Equal(t, 250*time.Millisecond, cfg.Reader.PollInterval)
	assert.Equal(t, time.Second, cfg.Reader.ReadTimeout)
	assert.Equal(t, 2*time.Second, cfg.Reader.ReconnectBackoff)
	assert.Equal(t, "cards.json", cfg.Settings.CardFile)
	assert.Equal(t, "xdotool key Return", cfg.Input.KeyCommand)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "aime.log", cfg.Logging.File)
	assert.Equal(t, ":9110", cfg.Metrics.Listen)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := writeINI(t, "[SerialSettings]\nCOMPort = COM3\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "COM3", cfg.Serial.COMPort)
	assert.Equal(t, 38400, cfg.Serial.BaudRate)
	assert.Equal(t, 500*time.Millisecond, cfg.Reader.PollInterval)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("AIME_SERIALSETTINGS_COMPORT", "/dev/ttyACM3")
	t.Setenv("AIME_READER_POLLINTERVAL", "1s")
	path := writeINI(t, "[SerialSettings]\nCOMPort = COM3\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/dev/ttyACM3", cfg.Serial.COMPort)
	assert.Equal(t, time.Second, cfg.Reader.PollInterval)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "unknown probe", content: "[Reader]\nProbe = mifare\n"},
		{name: "unknown sequence", content: "[Reader]\nSequence = random\n"},
		{name: "zero baud", content: "[SerialSettings]\nBaudRate = 0\n"},
		{name: "bad duration", content: "[Reader]\nPollInterval = soon\n"},
		{name: "zero timeout", content: "[Reader]\nReadTimeout = 0s\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeINI(t, tt.content))
			require.Error(t, err)
		})
	}
}

func TestDeviceOptions(t *testing.T) {
	cfg := Default()
	cfg.Reader.Probe = "extended"

	opts, err := cfg.DeviceOptions()
	require.NoError(t, err)
	require.Len(t, opts, 5)

	mock := aime.NewMockTransport()
	_, err = aime.New(mock, opts...)
	require.NoError(t, err)
	assert.Equal(t, 3*time.Second, mock.Timeout())

	cfg.Reader.Sequence = "bogus"
	_, err = cfg.DeviceOptions()
	require.ErrorIs(t, err, aime.ErrInvalidParameter)
}
