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

package aime

import (
	"fmt"
	"time"
)

// Option is a functional option for configuring a Device
type Option func(*Device) error

// WithConfig replaces the whole device configuration
func WithConfig(config *DeviceConfig) Option {
	return func(d *Device) error {
		if config == nil {
			return fmt.Errorf("%w: nil device config", ErrInvalidParameter)
		}
		c := *config
		d.config = &c
		return nil
	}
}

// WithTimeout sets the per-read transport timeout
func WithTimeout(timeout time.Duration) Option {
	return func(d *Device) error {
		if timeout <= 0 {
			return fmt.Errorf("%w: timeout must be positive", ErrInvalidParameter)
		}
		d.config.ReadTimeout = timeout
		return nil
	}
}

// WithPollInterval sets the poll throttle window
func WithPollInterval(interval time.Duration) Option {
	return func(d *Device) error {
		if interval < 0 {
			return fmt.Errorf("%w: negative poll interval", ErrInvalidParameter)
		}
		d.config.PollInterval = interval
		return nil
	}
}

// WithProbePolicy selects the probe commands sent per poll attempt
func WithProbePolicy(policy ProbePolicy) Option {
	return func(d *Device) error {
		d.config.Probe = policy
		return nil
	}
}

// WithSequencePolicy selects how outgoing sequence numbers are chosen
func WithSequencePolicy(policy SequencePolicy) Option {
	return func(d *Device) error {
		d.config.Sequence = policy
		return nil
	}
}

// WithChecksumVerification enables or disables checksum checks on responses
func WithChecksumVerification(enabled bool) Option {
	return func(d *Device) error {
		d.config.VerifyChecksum = enabled
		return nil
	}
}

// WithFeedback sets the LED feedback colours and hold time
func WithFeedback(feedback Feedback) Option {
	return func(d *Device) error {
		d.config.Feedback = feedback
		return nil
	}
}

// WithCardStore sets where detected card ids are persisted
func WithCardStore(store CardStore) Option {
	return func(d *Device) error {
		d.store = store
		return nil
	}
}

// WithKeyInjector sets the collaborator notified on every detected card
func WithKeyInjector(injector KeyInjector) Option {
	return func(d *Device) error {
		d.injector = injector
		return nil
	}
}

// WithSessionID tags card events and logs with a connection id
func WithSessionID(id string) Option {
	return func(d *Device) error {
		d.sessionID = id
		return nil
	}
}

// WithClock replaces the time source used by the poll throttle
func WithClock(now func() time.Time) Option {
	return func(d *Device) error {
		if now == nil {
			return fmt.Errorf("%w: nil clock", ErrInvalidParameter)
		}
		d.now = now
		return nil
	}
}
