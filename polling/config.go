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

package polling

import (
	"fmt"
	"time"
)

// Config controls the supervisor's loop timing
type Config struct {
	// Backoff is the pause between closing a failed connection and reopening it
	Backoff time.Duration
	// IdleInterval is the pause between two calls into the session's poll.
	// The session's own throttle decides when a probe is actually sent.
	IdleInterval time.Duration
}

// DefaultConfig returns the reader's stock timing: 1s reconnect backoff and
// a 10ms idle loop.
func DefaultConfig() *Config {
	return &Config{
		Backoff:      time.Second,
		IdleInterval: 10 * time.Millisecond,
	}
}

// Validate reports a configuration the supervisor cannot run with
func (c *Config) Validate() error {
	if c.Backoff < 0 {
		return fmt.Errorf("backoff must not be negative: %v", c.Backoff)
	}
	if c.IdleInterval <= 0 {
		return fmt.Errorf("idle interval must be positive: %v", c.IdleInterval)
	}
	return nil
}
