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

// Package detection finds the serial port an Aime reader is attached to.
package detection

import (
	"errors"
	"fmt"
	"runtime"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
	"go.bug.st/serial/enumerator"
)

// AutoPort is the configured port name that enables auto-detection
const AutoPort = "auto"

// ErrNoPortFound is returned when auto-detection finds no usable port
var ErrNoPortFound = errors.New("no usable serial port found")

// Port is a serial port seen during detection
type Port struct {
	Path         string
	VIDPID       string
	Product      string
	SerialNumber string
	USB          bool
}

// Options filters and ranks detected ports
type Options struct {
	// Blocklist holds VID:PID pairs that are never picked
	Blocklist []string
	// IgnorePaths holds port paths that are never picked
	IgnorePaths []string
	// Prefer holds VID:PID pairs picked before any other port, in order
	Prefer []string
}

// DefaultOptions returns options with the default blocklist
func DefaultOptions() Options {
	return Options{Blocklist: DefaultBlocklist()}
}

// DefaultPortName returns the port used when none is configured
func DefaultPortName() string {
	switch runtime.GOOS {
	case "windows":
		return "COM4"
	case "darwin":
		return "/dev/cu.usbserial"
	default:
		return "/dev/ttyUSB0"
	}
}

// Resolve turns a configured port name into a path: empty selects the
// platform default and "auto" runs detection
func Resolve(configured string, opts Options) (string, error) {
	configured = strings.TrimSpace(configured)
	switch {
	case configured == "":
		return DefaultPortName(), nil
	case strings.EqualFold(configured, AutoPort):
		return FindPort(opts)
	default:
		return configured, nil
	}
}

// ListPorts returns the serial ports present on the system. USB details come
// from the enumerator; on failure the platform's own listing is used.
func ListPorts() ([]Port, error) {
	details, err := enumerator.GetDetailedPortsList()
	if err != nil {
		log.Debug().Err(err).Msg("port enumeration failed, using platform listing")
		ports, platformErr := platformPorts()
		if platformErr != nil {
			return nil, errors.Join(err, platformErr)
		}
		return ports, nil
	}

	ports := make([]Port, 0, len(details))
	for _, d := range details {
		p := Port{
			Path:         d.Name,
			Product:      d.Product,
			SerialNumber: d.SerialNumber,
			USB:          d.IsUSB,
		}
		if d.IsUSB {
			p.VIDPID = ParseVIDPID(d.VID, d.PID)
		}
		ports = append(ports, p)
	}
	return ports, nil
}

// FindPort lists the system's ports and picks one with SelectPort
func FindPort(opts Options) (string, error) {
	ports, err := ListPorts()
	if err != nil {
		return "", fmt.Errorf("list serial ports: %w", err)
	}
	port, err := SelectPort(ports, opts)
	if err != nil {
		return "", err
	}
	log.Info().Str("port", port.Path).Str("usb", port.VIDPID).Msg("reader port detected")
	return port.Path, nil
}

// SelectPort drops blocked and ignored ports, then picks the first preferred
// VID:PID, then the first USB port, then the first remaining port. Ties are
// broken by path.
func SelectPort(ports []Port, opts Options) (Port, error) {
	candidates := make([]Port, 0, len(ports))
	for _, p := range ports {
		if IsPathIgnored(p.Path, opts.IgnorePaths) {
			continue
		}
		if p.VIDPID != "" && IsBlocked(p.VIDPID, opts.Blocklist) {
			log.Debug().Str("port", p.Path).Str("usb", p.VIDPID).Msg("skipping blocked device")
			continue
		}
		candidates = append(candidates, p)
	}
	if len(candidates) == 0 {
		return Port{}, ErrNoPortFound
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Path < candidates[j].Path
	})

	best, rank := -1, len(opts.Prefer)
	for i, p := range candidates {
		if r := matchVIDPID(p.VIDPID, opts.Prefer); r >= 0 && r < rank {
			best, rank = i, r
		}
	}
	if best >= 0 {
		return candidates[best], nil
	}
	for _, p := range candidates {
		if p.USB {
			return p, nil
		}
	}
	return candidates[0], nil
}
