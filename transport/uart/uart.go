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

// Package uart provides the serial transport for Aime readers.
package uart

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ZaparooProject/go-aime"
	"go.bug.st/serial"
)

// Transport is a serial port connection to a reader. Read returns (0, nil)
// when the read timeout expires without data.
type Transport struct {
	port     serial.Port
	portName string
	baudRate int
	timeout  time.Duration
	mu       sync.Mutex
	closed   bool
}

// Option configures a Transport before the port is opened
type Option func(*Transport)

// WithBaudRate overrides the default 38400 baud
func WithBaudRate(baud int) Option {
	return func(t *Transport) {
		if baud > 0 {
			t.baudRate = baud
		}
	}
}

// New opens portName at 8N1. Open failures are fatal transport errors.
func New(portName string, opts ...Option) (*Transport, error) {
	t := &Transport{
		portName: portName,
		baudRate: aime.DefaultBaudRate,
		timeout:  aime.DefaultReadTimeout,
	}
	for _, opt := range opts {
		opt(t)
	}

	port, err := serial.Open(portName, &serial.Mode{
		BaudRate: t.baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, classify("open", portName, err)
	}

	if err := port.SetReadTimeout(t.timeout); err != nil {
		_ = port.Close()
		return nil, classify("set timeout", portName, err)
	}
	// stale bytes from a previous session would be scanned as a frame
	if err := port.ResetInputBuffer(); err != nil {
		_ = port.Close()
		return nil, classify("reset input", portName, err)
	}

	t.port = port
	return t, nil
}

// Factory returns a TransportFactory that opens portName on every call
func Factory(portName string, opts ...Option) aime.TransportFactory {
	return func(ctx context.Context) (aime.Transport, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return New(portName, opts...)
	}
}

func (t *Transport) currentPort() (serial.Port, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed || t.port == nil {
		return nil, aime.ErrTransportClosed
	}
	return t.port, nil
}

// Read reads raw bytes from the port. It is not serialized with Close so a
// concurrent Close can abort a blocked read.
func (t *Transport) Read(p []byte) (int, error) {
	port, err := t.currentPort()
	if err != nil {
		return 0, err
	}
	n, err := port.Read(p)
	if err != nil {
		return n, classify("read", t.portName, err)
	}
	return n, nil
}

// Write writes raw bytes to the port
func (t *Transport) Write(p []byte) (int, error) {
	port, err := t.currentPort()
	if err != nil {
		return 0, err
	}
	n, err := port.Write(p)
	if err != nil {
		return n, classify("write", t.portName, err)
	}
	if n != len(p) {
		return n, aime.NewFatalError("write", t.portName,
			fmt.Errorf("short write: %d of %d bytes", n, len(p)))
	}
	return n, nil
}

// SetTimeout sets the read timeout
func (t *Transport) SetTimeout(timeout time.Duration) error {
	port, err := t.currentPort()
	if err != nil {
		return err
	}
	if err := port.SetReadTimeout(timeout); err != nil {
		return classify("set timeout", t.portName, err)
	}
	t.mu.Lock()
	t.timeout = timeout
	t.mu.Unlock()
	return nil
}

// Close closes the port. Further calls are no-ops.
func (t *Transport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed || t.port == nil {
		t.closed = true
		return nil
	}
	t.closed = true
	if err := t.port.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", t.portName, err)
	}
	return nil
}

// IsConnected returns true until Close is called
func (t *Transport) IsConnected() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.port != nil && !t.closed
}

// Type returns the transport type
func (*Transport) Type() aime.TransportType {
	return aime.TransportUART
}

// Path returns the port name
func (t *Transport) Path() string {
	return t.portName
}

// portErrorCode returns the serial library's error code if err carries one
func portErrorCode(err error) (serial.PortErrorCode, bool) {
	var ptr *serial.PortError
	if errors.As(err, &ptr) && ptr != nil {
		return ptr.Code(), true
	}
	var val serial.PortError
	if errors.As(err, &val) {
		return val.Code(), true
	}
	return 0, false
}

// classify wraps a serial error for the session. Every port fault is
// fatal; a port closed under us additionally matches ErrTransportClosed.
func classify(op, portName string, err error) error {
	if code, ok := portErrorCode(err); ok && code == serial.PortClosed {
		return aime.NewFatalError(op, portName, fmt.Errorf("%w: %w", aime.ErrTransportClosed, err))
	}
	return aime.NewFatalError(op, portName, err)
}
