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
	"context"
	"io"
	"time"
)

// Transport is the raw byte stream to an Aime reader.
//
// Read must block for at most the configured timeout and report an expired
// deadline as (0, nil), the way serial ports do. Any non-nil error from Read
// or Write is passed through unchanged; transports should return a
// *TransportError built with NewFatalError for faults that must end the
// session.
type Transport interface {
	io.ReadWriteCloser

	// SetTimeout sets the per-read timeout
	SetTimeout(timeout time.Duration) error

	// IsConnected returns true if the transport is open
	IsConnected() bool

	// Type returns the transport type
	Type() TransportType

	// Path returns the port identifier, used in errors and logs
	Path() string
}

// TransportType represents the type of transport
type TransportType string

const (
	// TransportUART represents UART/serial transport.
	TransportUART TransportType = "uart"
	// TransportMock represents a mock transport for testing
	TransportMock TransportType = "mock"
)

// TransportFactory opens a new transport. It is called once per connection
// attempt by the reconnect supervisor.
type TransportFactory func(ctx context.Context) (Transport, error)

// DefaultReadTimeout is the per-read timeout used by the reader protocol
const DefaultReadTimeout = 3 * time.Second

// DefaultBaudRate is the reader's serial speed
const DefaultBaudRate = 38400
