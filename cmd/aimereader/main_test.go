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

package main

import (
	"context"
	"flag"
	"io"
	"testing"
	"time"

	"github.com/ZaparooProject/go-aime"
	"github.com/ZaparooProject/go-aime/config"
	"github.com/ZaparooProject/go-aime/detection"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFlagSet() *flag.FlagSet {
	fs := flag.NewFlagSet("aimereader", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func TestApplyFlags_OnlySetFlagsOverride(t *testing.T) {
	t.Parallel()
	f, err := parseFlags(newFlagSet(), []string{"-port", "auto", "-probe", "extended", "-debug"})
	require.NoError(t, err)

	cfg := config.Default()
	cfg.Serial.BaudRate = 19200
	cfg.Reader.PollInterval = time.Second
	applyFlags(f, cfg)

	assert.Equal(t, "auto", cfg.Serial.COMPort)
	assert.Equal(t, "extended", cfg.Reader.Probe)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 19200, cfg.Serial.BaudRate, "unset flag must not override config")
	assert.Equal(t, time.Second, cfg.Reader.PollInterval)
}

func TestApplyFlags_All(t *testing.T) {
	t.Parallel()
	f, err := parseFlags(newFlagSet(), []string{
		"-port", "COM9", "-baud", "115200", "-sequence", "increment",
		"-poll-interval", "250ms", "-verify-checksum", "-card-file", "cards.json",
		"-key-command", "xdotool key Return", "-metrics-addr", ":9110", "-log-file", "aime.log",
	})
	require.NoError(t, err)

	cfg := config.Default()
	applyFlags(f, cfg)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "COM9", cfg.Serial.COMPort)
	assert.Equal(t, 115200, cfg.Serial.BaudRate)
	assert.Equal(t, "increment", cfg.Reader.Sequence)
	assert.Equal(t, 250*time.Millisecond, cfg.Reader.PollInterval)
	assert.True(t, cfg.Reader.VerifyChecksum)
	assert.Equal(t, "cards.json", cfg.Settings.CardFile)
	assert.Equal(t, "xdotool key Return", cfg.Input.KeyCommand)
	assert.Equal(t, ":9110", cfg.Metrics.Listen)
	assert.Equal(t, "aime.log", cfg.Logging.File)
}

func TestParseFlags_Unknown(t *testing.T) {
	t.Parallel()
	_, err := parseFlags(newFlagSet(), []string{"-frobnicate"})
	require.Error(t, err)
}

func TestDeviceOptions(t *testing.T) {
	t.Parallel()
	cfg := config.Default()
	cfg.Input.KeyCommand = "xdotool key Return"

	opts, err := deviceOptions(cfg)
	require.NoError(t, err)

	_, err = aime.New(aime.NewMockTransport(), opts...)
	require.NoError(t, err)
}

func TestTransportFactory_MissingPortIsFatal(t *testing.T) {
	t.Parallel()
	cfg := config.Default()
	cfg.Serial.COMPort = "/dev/aime-does-not-exist"

	_, err := transportFactory(cfg)(context.Background())
	require.Error(t, err)
	assert.True(t, aime.IsFatal(err))
}

func TestDetectionOptions_FromConfig(t *testing.T) {
	t.Parallel()
	cfg := config.Default()
	cfg.Serial.IgnorePaths = []string{"COM1"}
	cfg.Serial.Prefer = []string{"0403:6001"}

	opts := detectionOptions(cfg)
	assert.Equal(t, []string{"COM1"}, opts.IgnorePaths)
	assert.Equal(t, []string{"0403:6001"}, opts.Prefer)
	assert.Equal(t, detection.DefaultBlocklist(), opts.Blocklist)
}
