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
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ZaparooProject/go-aime"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Supervisor errors
var (
	ErrAlreadyRunning = errors.New("supervisor is already running")
	ErrNilFactory     = errors.New("transport factory cannot be nil")
)

// Metrics is a snapshot of the supervisor's counters
type Metrics struct {
	Connects          int64 // transports opened
	Reconnects        int64 // retryable faults that led to a reconnect
	HandshakeFailures int64 // reset handshakes answered with something else
	Polls             int64 // poll attempts that reached the reader
	Cards             int64 // card events delivered
	Errors            int64 // faults of any kind
}

type counters struct {
	connects          atomic.Int64
	reconnects        atomic.Int64
	handshakeFailures atomic.Int64
	polls             atomic.Int64
	cards             atomic.Int64
	errors            atomic.Int64
}

// Supervisor owns a reader connection: it opens the transport, runs the reset
// handshake, polls until the connection faults, and reconnects after a
// backoff. Retryable faults reconnect, fatal faults end Run with the error.
// Everything runs on one goroutine.
type Supervisor struct {
	factory        aime.TransportFactory
	config         *Config
	OnCardDetected func(event *aime.CardEvent)
	OnStateChange  func(from, to State)
	cancel         context.CancelFunc
	done           chan struct{}
	err            error
	sessionID      string
	deviceOpts     []aime.Option
	state          stateMachine
	metrics        counters
	mu             sync.Mutex
	running        atomic.Bool
}

// NewSupervisor creates a supervisor that opens transports with factory and
// builds each session with opts
func NewSupervisor(factory aime.TransportFactory, config *Config, opts ...aime.Option) (*Supervisor, error) {
	if factory == nil {
		return nil, ErrNilFactory
	}
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", aime.ErrInvalidParameter, err)
	}

	s := &Supervisor{
		factory:    factory,
		config:     config,
		deviceOpts: opts,
	}
	s.state.onChange = s.stateChanged
	return s, nil
}

// State returns the current connection state
func (s *Supervisor) State() State {
	return s.state.get()
}

// SessionID returns the id of the current connection, empty between connections
func (s *Supervisor) SessionID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessionID
}

// Metrics returns a snapshot of the counters
func (s *Supervisor) Metrics() Metrics {
	return Metrics{
		Connects:          s.metrics.connects.Load(),
		Reconnects:        s.metrics.reconnects.Load(),
		HandshakeFailures: s.metrics.handshakeFailures.Load(),
		Polls:             s.metrics.polls.Load(),
		Cards:             s.metrics.cards.Load(),
		Errors:            s.metrics.errors.Load(),
	}
}

// Start runs the supervisor in the background. Use Stop to end it and Err to
// read the reason it ended.
func (s *Supervisor) Start(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	s.mu.Lock()
	s.cancel = cancel
	s.done = done
	s.err = nil
	s.mu.Unlock()

	go func() {
		defer close(done)
		defer s.running.Store(false)
		defer cancel()

		err := s.Run(runCtx)
		s.mu.Lock()
		s.err = err
		s.mu.Unlock()
	}()
	return nil
}

// Stop cancels a running supervisor and waits until it has released the
// transport
func (s *Supervisor) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// IsRunning returns whether Start's goroutine is still active
func (s *Supervisor) IsRunning() bool {
	return s.running.Load()
}

// Err returns the error that ended the last Start, nil on cancellation
func (s *Supervisor) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Run supervises the reader until ctx is cancelled, which returns nil, or a
// fatal fault, which is returned.
func (s *Supervisor) Run(ctx context.Context) error {
	s.state.reset()
	for {
		if ctx.Err() != nil {
			s.terminate()
			return nil
		}
		if err := s.state.transition(StateConnecting); err != nil {
			return err
		}

		err := s.session(ctx)
		s.setSessionID("")

		if ctx.Err() != nil {
			s.terminate()
			log.Info().Msg("reader supervisor stopped")
			return nil
		}
		if aime.IsFatal(err) {
			s.terminate()
			log.Error().Err(err).Msg("reader connection failed, giving up")
			return err
		}

		s.metrics.reconnects.Add(1)
		log.Warn().Err(err).Dur("backoff", s.config.Backoff).Msg("reader connection lost, reconnecting")
		if err := sleepContext(ctx, s.config.Backoff); err != nil {
			s.terminate()
			return nil
		}
	}
}

// session runs one connection from open to fault. The transport is closed
// on return, and also as soon as ctx is cancelled so a blocked read returns.
func (s *Supervisor) session(ctx context.Context) error {
	transport, err := s.factory(ctx)
	if err != nil {
		s.metrics.errors.Add(1)
		return fmt.Errorf("open transport: %w", err)
	}
	s.metrics.connects.Add(1)

	stop := context.AfterFunc(ctx, func() {
		_ = transport.Close()
	})
	defer func() {
		stop()
		if err := transport.Close(); err != nil {
			log.Debug().Err(err).Msg("closing transport")
		}
	}()

	sessionID := uuid.NewString()
	s.setSessionID(sessionID)
	logger := log.With().Str("session", sessionID).Str("port", transport.Path()).Logger()
	logger.Info().Msg("reader connected")

	opts := append(slices.Clone(s.deviceOpts), aime.WithSessionID(sessionID))
	device, err := aime.New(transport, opts...)
	if err != nil {
		s.metrics.errors.Add(1)
		return err
	}

	if err := s.state.transition(StateInitializing); err != nil {
		return err
	}
	if err := device.InitContext(ctx); err != nil {
		s.metrics.errors.Add(1)
		if errors.Is(err, aime.ErrHandshakeFailed) {
			s.metrics.handshakeFailures.Add(1)
		}
		return err
	}
	if err := s.state.transition(StatePolling); err != nil {
		return err
	}

	ticker := time.NewTicker(s.config.IdleInterval)
	defer ticker.Stop()

	for {
		event, err := device.PollContext(ctx)
		if event != nil {
			s.metrics.polls.Add(1)
			s.metrics.cards.Add(1)
			if s.OnCardDetected != nil {
				s.OnCardDetected(event)
			}
		}
		switch {
		case err == nil:
		case errors.Is(err, aime.ErrPollSkipped):
		case errors.Is(err, aime.ErrNoCard):
			s.metrics.polls.Add(1)
		default:
			s.metrics.errors.Add(1)
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (s *Supervisor) terminate() {
	if s.state.get() == StateTerminated {
		return
	}
	_ = s.state.transition(StateTerminated)
}

func (s *Supervisor) setSessionID(id string) {
	s.mu.Lock()
	s.sessionID = id
	s.mu.Unlock()
}

func (s *Supervisor) stateChanged(from, to State) {
	log.Debug().Stringer("from", from).Stringer("to", to).Msg("reader state")
	if s.OnStateChange != nil {
		s.OnStateChange(from, to)
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
