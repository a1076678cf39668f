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
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// DeviceConfig contains configuration options for the Device
type DeviceConfig struct {
	Feedback Feedback
	// ReadTimeout is the per-read transport timeout
	ReadTimeout time.Duration
	// PollInterval is the minimum time between the starts of two poll attempts
	PollInterval time.Duration
	// Probe selects the probe commands sent by each poll attempt
	Probe ProbePolicy
	// Sequence selects how outgoing sequence numbers are chosen
	Sequence SequencePolicy
	// VerifyChecksum rejects responses whose checksum does not match
	VerifyChecksum bool
}

// DefaultDeviceConfig returns default device configuration
func DefaultDeviceConfig() *DeviceConfig {
	return &DeviceConfig{
		Feedback:     DefaultFeedback(),
		ReadTimeout:  DefaultReadTimeout,
		PollInterval: 500 * time.Millisecond,
		Probe:        ProbeFeliCa,
		Sequence:     SequenceEcho,
	}
}

// SessionState is a snapshot of the protocol session
type SessionState struct {
	LastPoll time.Time
	Sequence byte
}

// Device is a protocol session with one Aime reader.
//
// Thread Safety: Device is NOT thread-safe. The protocol is strictly
// request/response, so all methods must be called from the goroutine that
// owns the transport.
type Device struct {
	transport Transport
	config    *DeviceConfig
	seq       Sequencer
	esc       *escaper
	limiter   *rate.Limiter
	store     CardStore
	injector  KeyInjector
	now       func() time.Time
	lastPoll  time.Time
	sessionID string
}

// New creates a session over an open transport
func New(transport Transport, opts ...Option) (*Device, error) {
	if transport == nil {
		return nil, fmt.Errorf("%w: nil transport", ErrInvalidParameter)
	}

	device := &Device{
		transport: transport,
		config:    DefaultDeviceConfig(),
		now:       time.Now,
	}

	for _, opt := range opts {
		if err := opt(device); err != nil {
			return nil, err
		}
	}

	device.seq = device.config.Sequence.NewSequencer()
	device.esc = newEscaper(transport, nil, transport.Path())
	device.limiter = rate.NewLimiter(rate.Every(device.config.PollInterval), 1)

	if device.config.ReadTimeout > 0 {
		if err := transport.SetTimeout(device.config.ReadTimeout); err != nil {
			return nil, fmt.Errorf("failed to set timeout on transport: %w", err)
		}
	}

	return device, nil
}

// Transport returns the underlying transport
func (d *Device) Transport() Transport {
	return d.transport
}

// State returns a snapshot of the session state
func (d *Device) State() SessionState {
	return SessionState{
		LastPoll: d.lastPoll,
		Sequence: d.seq.Value(),
	}
}

// Init runs the reset handshake
func (d *Device) Init() error {
	return d.InitContext(context.Background())
}

// InitContext sends the reset command and checks the reader's answer. A
// wrong answer is ErrHandshakeFailed, which callers may retry by reconnecting.
// A successful reset starts the poll throttle window.
func (d *Device) InitContext(ctx context.Context) error {
	resp, err := d.exchange(ctx, subCommand, cmdReset, resetPayload)
	if err != nil {
		return fmt.Errorf("reset: %w", err)
	}

	if resp.Command != cmdReset || !isResetOK(resp.Data) {
		log.Warn().
			Str("port", d.transport.Path()).
			Stringer("response", resp).
			Msg("reader reset not OK")
		return fmt.Errorf("%w: unexpected response %s", ErrHandshakeFailed, resp)
	}

	log.Info().Str("port", d.transport.Path()).Msg("reader reset OK")
	now := d.now()
	d.limiter.AllowN(now, 1)
	d.lastPoll = now
	return nil
}

func isResetOK(data []byte) bool {
	for _, ok := range resetOKPayloads {
		if bytes.Equal(data, ok) {
			return true
		}
	}
	return false
}

// Poll runs one throttled poll attempt
func (d *Device) Poll() (*CardEvent, error) {
	return d.PollContext(context.Background())
}

// PollContext runs one poll attempt. Inside the throttle window it does no
// I/O and returns ErrPollSkipped. Otherwise the probes of the configured
// policy are tried in order until one hits; if none does the idle LED is set
// and ErrNoCard is returned. A card event may come back together with an
// error when feedback fails after the card was handled.
func (d *Device) PollContext(ctx context.Context) (*CardEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	now := d.now()
	if !d.limiter.AllowN(now, 1) {
		return nil, ErrPollSkipped
	}
	d.lastPoll = now

	for _, p := range d.config.Probe.probes() {
		resp, err := d.exchange(ctx, subCommand, p.command, p.payload)
		if err != nil {
			return nil, fmt.Errorf("%s probe: %w", p.family, err)
		}
		if p.hit(resp) {
			return d.handleCard(ctx, p, resp, now)
		}
	}

	if err := d.SetLED(ctx, d.config.Feedback.Idle); err != nil {
		return nil, fmt.Errorf("idle led: %w", err)
	}
	return nil, ErrNoCard
}

// handleCard persists the id, shows LED feedback and presses Enter
func (d *Device) handleCard(ctx context.Context, p probe, resp *Frame, at time.Time) (*CardEvent, error) {
	event := &CardEvent{
		DetectedAt: at,
		SessionID:  d.sessionID,
		Family:     p.family,
	}

	success := d.config.Feedback.Success
	if p.extractID {
		event.Raw = extractCardID(resp.Data)
		event.ID = FormatCardID(event.Raw)
		log.Info().Str("card", event.ID).Str("session", d.sessionID).Msg("card found")

		if err := d.persist(ctx, event.ID); err != nil {
			log.Error().Err(err).Str("card", event.ID).Msg("card id not saved")
			success = d.config.Feedback.Failure
		}

		if err := d.SetLED(ctx, d.config.Feedback.Processing); err != nil {
			return event, fmt.Errorf("processing led: %w", err)
		}
		if err := sleepContext(ctx, d.config.Feedback.Hold); err != nil {
			return event, err
		}
	} else {
		log.Info().Str("family", string(p.family)).Str("session", d.sessionID).Msg("card present")
	}

	if err := d.SetLED(ctx, success); err != nil {
		return event, fmt.Errorf("result led: %w", err)
	}
	if err := sleepContext(ctx, d.config.Feedback.Hold); err != nil {
		return event, err
	}

	if d.injector != nil {
		if err := d.injector.PressEnter(ctx); err != nil {
			log.Warn().Err(err).Msg("key injection failed")
		}
	}
	return event, nil
}

func (d *Device) persist(ctx context.Context, id string) error {
	if d.store == nil {
		return nil
	}
	if err := d.store.SaveCardID(ctx, id); err != nil {
		return fmt.Errorf("%w: %w", ErrConfigPersist, err)
	}
	log.Debug().Str("card", id).Msg("card id saved")
	return nil
}

// SendCommand sends one command and returns the decoded response
func (d *Device) SendCommand(ctx context.Context, sub, cmd byte, data []byte) (*Frame, error) {
	return d.exchange(ctx, sub, cmd, data)
}

func (d *Device) exchange(ctx context.Context, sub, cmd byte, data []byte) (*Frame, error) {
	if err := d.send(ctx, sub, cmd, data); err != nil {
		return nil, err
	}
	return d.receive(ctx)
}

// encode builds the wire bytes for a command using the next sequence number
func (d *Device) encode(sub, cmd byte, data []byte) ([]byte, error) {
	f, err := NewFrame(sub, d.seq.Next(), cmd, data)
	if err != nil {
		return nil, err
	}
	return f.MarshalBinary()
}

func (d *Device) send(ctx context.Context, sub, cmd byte, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	wire, err := d.encode(sub, cmd, data)
	if err != nil {
		return err
	}

	log.Debug().Str("port", d.transport.Path()).Hex("tx", wire).Msg("send")
	if _, err := d.transport.Write(wire); err != nil {
		return err
	}
	return nil
}

// receive decodes one response and lets the sequencer observe its sequence number
func (d *Device) receive(ctx context.Context) (*Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := readFrame(d.esc)
	if err != nil {
		return nil, err
	}
	log.Debug().Str("port", d.transport.Path()).Stringer("rx", f).Msg("receive")

	if d.config.VerifyChecksum && !f.Valid() {
		return nil, NewTransportError("decode", d.transport.Path(),
			fmt.Errorf("%w: got %#02x, want %#02x", ErrChecksumMismatch, f.Checksum, f.computeChecksum()),
			ErrorTypeTransient)
	}

	d.seq.Observe(f.Seq)
	return f, nil
}

// Close closes the device connection
func (d *Device) Close() error {
	if d.transport != nil {
		if err := d.transport.Close(); err != nil {
			return fmt.Errorf("failed to close transport: %w", err)
		}
	}
	return nil
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
