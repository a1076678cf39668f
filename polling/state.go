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
	"errors"
	"fmt"
	"sync"
)

// State is the connection state of a supervised reader
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateInitializing
	StatePolling
	StateTerminated
)

// ErrInvalidTransition is returned when a state change is not allowed from
// the current state
var ErrInvalidTransition = errors.New("invalid state transition")

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateInitializing:
		return "initializing"
	case StatePolling:
		return "polling"
	case StateTerminated:
		return "terminated"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// transitions lists the states reachable from each state. Connecting may
// re-enter itself when an open attempt is retried.
var transitions = map[State][]State{
	StateDisconnected: {StateConnecting, StateTerminated},
	StateConnecting:   {StateConnecting, StateInitializing, StateTerminated},
	StateInitializing: {StateConnecting, StatePolling, StateTerminated},
	StatePolling:      {StateConnecting, StateTerminated},
}

// CanTransition reports whether to is reachable from s
func (s State) CanTransition(to State) bool {
	for _, next := range transitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// stateMachine guards the current state for readers outside the worker
type stateMachine struct {
	onChange func(from, to State)
	current  State
	mu       sync.Mutex
}

func (m *stateMachine) get() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// reset returns a terminated machine to disconnected so it can run again
func (m *stateMachine) reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == StateTerminated {
		m.current = StateDisconnected
	}
}

// transition moves to the given state and reports the change to onChange
// outside the lock
func (m *stateMachine) transition(to State) error {
	m.mu.Lock()
	from := m.current
	if !from.CanTransition(to) {
		m.mu.Unlock()
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	m.current = to
	onChange := m.onChange
	m.mu.Unlock()

	if onChange != nil {
		onChange(from, to)
	}
	return nil
}
