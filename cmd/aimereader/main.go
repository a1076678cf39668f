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

// Command aimereader polls an Aime/FeliCa card reader, saves the card id of
// every scanned card to the game's settings file and presses Enter.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ZaparooProject/go-aime"
	"github.com/ZaparooProject/go-aime/config"
	"github.com/ZaparooProject/go-aime/detection"
	"github.com/ZaparooProject/go-aime/inject"
	"github.com/ZaparooProject/go-aime/internal/logging"
	"github.com/ZaparooProject/go-aime/metrics"
	"github.com/ZaparooProject/go-aime/polling"
	"github.com/ZaparooProject/go-aime/settings"
	"github.com/ZaparooProject/go-aime/transport/uart"
	"github.com/rs/zerolog/log"
)

type flags struct {
	configPath     *string
	port           *string
	baud           *int
	probe          *string
	sequence       *string
	pollInterval   *time.Duration
	verifyChecksum *bool
	cardFile       *string
	keyCommand     *string
	metricsAddr    *string
	logFile        *string
	debug          *bool
	listPorts      *bool
	set            map[string]bool
}

func parseFlags(fs *flag.FlagSet, args []string) (*flags, error) {
	f := &flags{
		configPath: fs.String("config", config.DefaultFile, "INI settings file"),
		port: fs.String("port", "",
			`Serial port (e.g. COM4 or /dev/ttyUSB0), "auto" for detection. Overrides [SerialSettings] COMPort.`),
		baud:         fs.Int("baud", aime.DefaultBaudRate, "Serial baud rate"),
		probe:        fs.String("probe", "felica", "Probe policy: felica or extended"),
		sequence:     fs.String("sequence", "echo", "Sequence number policy: echo or increment"),
		pollInterval: fs.Duration("poll-interval", 500*time.Millisecond, "Minimum time between poll attempts"),
		verifyChecksum: fs.Bool("verify-checksum", false,
			"Reject responses with a bad checksum"),
		cardFile:    fs.String("card-file", "", "JSON settings file receiving network.local_card"),
		keyCommand:  fs.String("key-command", "", `Command that presses Enter, e.g. "xdotool key Return"`),
		metricsAddr: fs.String("metrics-addr", "", "Serve Prometheus metrics on this address, e.g. :9110"),
		logFile:     fs.String("log-file", "", "Also write logs to this rotating file"),
		debug:       fs.Bool("debug", false, "Enable debug output"),
		listPorts:   fs.Bool("list-ports", false, "List serial ports and exit"),
		set:         make(map[string]bool),
	}
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	fs.Visit(func(fl *flag.Flag) { f.set[fl.Name] = true })
	return f, nil
}

// applyFlags overrides cfg with the flags given on the command line
func applyFlags(f *flags, cfg *config.Config) {
	if f.set["port"] {
		cfg.Serial.COMPort = *f.port
	}
	if f.set["baud"] {
		cfg.Serial.BaudRate = *f.baud
	}
	if f.set["probe"] {
		cfg.Reader.Probe = *f.probe
	}
	if f.set["sequence"] {
		cfg.Reader.Sequence = *f.sequence
	}
	if f.set["poll-interval"] {
		cfg.Reader.PollInterval = *f.pollInterval
	}
	if f.set["verify-checksum"] {
		cfg.Reader.VerifyChecksum = *f.verifyChecksum
	}
	if f.set["card-file"] {
		cfg.Settings.CardFile = *f.cardFile
	}
	if f.set["key-command"] {
		cfg.Input.KeyCommand = *f.keyCommand
	}
	if f.set["metrics-addr"] {
		cfg.Metrics.Listen = *f.metricsAddr
	}
	if f.set["log-file"] {
		cfg.Logging.File = *f.logFile
	}
	if *f.debug {
		cfg.Logging.Level = "debug"
	}
}

// transportFactory resolves the port on every connection so a reader that
// re-enumerates under a new name is found again. A missing port is retried.
func detectionOptions(cfg *config.Config) detection.Options {
	detect := detection.DefaultOptions()
	detect.IgnorePaths = cfg.Serial.IgnorePaths
	detect.Prefer = cfg.Serial.Prefer
	return detect
}

func transportFactory(cfg *config.Config) aime.TransportFactory {
	detect := detectionOptions(cfg)

	return func(ctx context.Context) (aime.Transport, error) {
		path, err := detection.Resolve(cfg.Serial.COMPort, detect)
		if err != nil {
			return nil, aime.NewTransportError("detect", cfg.Serial.COMPort, err, aime.ErrorTypeTransient)
		}
		log.Debug().Str("port", path).Int("baud", cfg.Serial.BaudRate).Msg("opening reader")
		return uart.Factory(path, uart.WithBaudRate(cfg.Serial.BaudRate))(ctx)
	}
}

func deviceOptions(cfg *config.Config) ([]aime.Option, error) {
	opts, err := cfg.DeviceOptions()
	if err != nil {
		return nil, err
	}
	injector, err := inject.FromConfig(cfg.Input.KeyCommand)
	if err != nil {
		return nil, err
	}
	if cfg.Settings.CardFile != "" {
		opts = append(opts, aime.WithCardStore(settings.NewJSONStore(cfg.Settings.CardFile)))
	}
	return append(opts, aime.WithKeyInjector(injector)), nil
}

func listPorts(w io.Writer) error {
	ports, err := detection.ListPorts()
	if err != nil {
		return err
	}
	if len(ports) == 0 {
		_, _ = fmt.Fprintln(w, "No serial ports found")
		return nil
	}
	for _, p := range ports {
		if p.USB {
			_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", p.Path, p.VIDPID, p.Product)
		} else {
			_, _ = fmt.Fprintln(w, p.Path)
		}
	}
	return nil
}

func run(ctx context.Context, f *flags) error {
	cfg, err := config.Load(*f.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyFlags(f, cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	closer, err := logging.Setup(logging.Options{
		Level:      cfg.Logging.Level,
		File:       cfg.Logging.File,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
		Compress:   cfg.Logging.Compress,
	})
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	defer func() { _ = closer.Close() }()

	if *f.listPorts {
		return listPorts(os.Stdout)
	}

	opts, err := deviceOptions(cfg)
	if err != nil {
		return err
	}

	supervisor, err := polling.NewSupervisor(transportFactory(cfg), &polling.Config{
		Backoff:      cfg.Reader.ReconnectBackoff,
		IdleInterval: polling.DefaultConfig().IdleInterval,
	}, opts...)
	if err != nil {
		return fmt.Errorf("failed to create supervisor: %w", err)
	}
	supervisor.OnCardDetected = func(event *aime.CardEvent) {
		if event.HasID() {
			_, _ = fmt.Printf("CARD: %s\n", event.ID)
		} else {
			_, _ = fmt.Printf("CARD: %s card present\n", event.Family)
		}
	}

	if cfg.Metrics.Listen != "" {
		reg := metrics.NewRegistry()
		if err := metrics.Register(reg, supervisor); err != nil {
			return err
		}
		go func() {
			if err := metrics.Serve(ctx, cfg.Metrics.Listen, reg); err != nil {
				log.Error().Err(err).Msg("metrics server stopped")
			}
		}()
	}

	log.Info().
		Str("port", cfg.Serial.COMPort).
		Int("baud", cfg.Serial.BaudRate).
		Str("probe", cfg.Reader.Probe).
		Msg("waiting for cards")
	return supervisor.Run(ctx)
}

func main() {
	f, err := parseFlags(flag.CommandLine, os.Args[1:])
	if err != nil {
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, f); err != nil && !errors.Is(err, context.Canceled) {
		_, _ = fmt.Fprintf(os.Stderr, "aimereader: %v\n", err)
		stop()
		os.Exit(1)
	}
}
