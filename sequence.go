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
	"strings"
)

// Sequencer supplies the sequence number for outgoing frames and learns from
// the sequence numbers the reader echoes back.
type Sequencer interface {
	// Next returns the sequence number to put in the next outgoing frame
	Next() byte
	// Observe is called with the sequence number of every decoded response
	Observe(seq byte)
	// Value returns the current counter without advancing it
	Value() byte
}

// SequencePolicy selects a Sequencer implementation
type SequencePolicy int

const (
	// SequenceEcho reuses the last sequence number the reader sent. Requester
	// and reader stay in lockstep even if a send is skipped.
	SequenceEcho SequencePolicy = iota
	// SequenceIncrement advances the counter before every send and ignores
	// the reader's echoes.
	SequenceIncrement
)

// String returns the policy name used in configuration
func (p SequencePolicy) String() string {
	switch p {
	case SequenceEcho:
		return "echo"
	case SequenceIncrement:
		return "increment"
	default:
		return fmt.Sprintf("SequencePolicy(%d)", int(p))
	}
}

// ParseSequencePolicy parses a policy name as written in configuration
func ParseSequencePolicy(s string) (SequencePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "echo":
		return SequenceEcho, nil
	case "increment":
		return SequenceIncrement, nil
	default:
		return 0, fmt.Errorf("%w: unknown sequence policy %q", ErrInvalidParameter, s)
	}
}

// NewSequencer returns a fresh counter for the policy, starting at zero
func (p SequencePolicy) NewSequencer() Sequencer {
	if p == SequenceIncrement {
		return &incrementSequencer{}
	}
	return &echoSequencer{}
}

type echoSequencer struct {
	value byte
}

func (s *echoSequencer) Next() byte       { return s.value }
func (s *echoSequencer) Observe(seq byte) { s.value = seq }
func (s *echoSequencer) Value() byte      { return s.value }

// incrementSequencer wraps from 255 back to 0 through byte overflow
type incrementSequencer struct {
	value byte
}

func (s *incrementSequencer) Next() byte {
	s.value++
	return s.value
}

func (*incrementSequencer) Observe(byte) {}

func (s *incrementSequencer) Value() byte { return s.value }
