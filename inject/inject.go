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

// Package inject presses the Enter key on the host after a card is read.
package inject

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/ZaparooProject/go-aime"
	"github.com/rs/zerolog/log"
)

// DefaultTimeout bounds a single key press command
const DefaultTimeout = 2 * time.Second

// ErrEmptyCommand is returned by NewCommand for a blank command line
var ErrEmptyCommand = errors.New("key command is empty")

// Command runs an external program, e.g. "xdotool key Return", for every
// key press
type Command struct {
	name    string
	args    []string
	timeout time.Duration
}

// NewCommand splits line on whitespace into a program and its arguments
func NewCommand(line string) (*Command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil, ErrEmptyCommand
	}
	return &Command{name: fields[0], args: fields[1:], timeout: DefaultTimeout}, nil
}

// String returns the command line
func (c *Command) String() string {
	return strings.Join(append([]string{c.name}, c.args...), " ")
}

// PressEnter runs the command and waits for it to exit
func (c *Command) PressEnter(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, c.name, c.args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s: %w: %s", c, err, strings.TrimSpace(string(out)))
	}
	log.Debug().Stringer("command", c).Msg("enter pressed")
	return nil
}

// Nop does nothing. It is used when no key command is configured.
type Nop struct{}

// PressEnter returns nil
func (Nop) PressEnter(context.Context) error {
	return nil
}

// FromConfig returns a Command for line, or Nop when line is blank
func FromConfig(line string) (aime.KeyInjector, error) {
	if strings.TrimSpace(line) == "" {
		return Nop{}, nil
	}
	return NewCommand(line)
}
