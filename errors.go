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
	"errors"
	"fmt"
)

// Protocol and transport errors
var (
	// ErrTimeout means no byte arrived within the transport's read deadline.
	ErrTimeout = errors.New("read timeout")
	// ErrTruncatedEscape means the stream ended between an escape byte and its follow byte.
	ErrTruncatedEscape = errors.New("truncated escape sequence")
	// ErrMalformedFrame means a decoded frame cannot be valid (e.g. length below overhead).
	ErrMalformedFrame = errors.New("malformed frame")
	// ErrChecksumMismatch is returned by decode when checksum verification is enabled.
	ErrChecksumMismatch = fmt.Errorf("%w: checksum mismatch", ErrMalformedFrame)
	// ErrTransportFatal marks a transport fault that must not be retried
	// (device removed, permission denied, port closed under us).
	ErrTransportFatal = errors.New("fatal transport error")
	// ErrTransportClosed is returned by operations on a closed transport.
	ErrTransportClosed = errors.New("transport closed")
	// ErrDataTooLarge means a payload does not fit in a single frame.
	ErrDataTooLarge = errors.New("data too large for frame")
)

// Session errors
var (
	// ErrHandshakeFailed means the reset command got an unexpected answer.
	ErrHandshakeFailed = errors.New("reader reset handshake failed")
	// ErrConfigPersist means a card id could not be written to the settings store.
	ErrConfigPersist = errors.New("failed to persist card id")
	// ErrPollSkipped is returned by Poll inside the throttle window; no I/O was done.
	ErrPollSkipped = errors.New("poll skipped: throttle window not elapsed")
	// ErrNoCard is returned by Poll when every probe missed.
	ErrNoCard = errors.New("no card detected")
	// ErrInvalidParameter is returned for bad option values.
	ErrInvalidParameter = errors.New("invalid parameter")
)

// ErrorType categorizes errors for retry decisions
type ErrorType int

const (
	// ErrorTypePermanent errors end the session
	ErrorTypePermanent ErrorType = iota
	// ErrorTypeTransient errors can be recovered by reconnecting
	ErrorTypeTransient
	// ErrorTypeTimeout errors are read deadlines that expired
	ErrorTypeTimeout
)

// String returns the error type name
func (t ErrorType) String() string {
	switch t {
	case ErrorTypePermanent:
		return "permanent"
	case ErrorTypeTransient:
		return "transient"
	case ErrorTypeTimeout:
		return "timeout"
	default:
		return fmt.Sprintf("ErrorType(%d)", int(t))
	}
}

// TransportError wraps a transport fault with the operation and port it happened on
type TransportError struct {
	Err       error
	Op        string
	Port      string
	Type      ErrorType
	Retryable bool
}

// Error implements the error interface
func (e *TransportError) Error() string {
	if e.Port != "" {
		return fmt.Sprintf("%s on %s: %v", e.Op, e.Port, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error
func (e *TransportError) Unwrap() error {
	return e.Err
}

// NewTransportError creates a transport error; retryability follows the type
func NewTransportError(op, port string, err error, errType ErrorType) *TransportError {
	return &TransportError{
		Op:        op,
		Port:      port,
		Err:       err,
		Type:      errType,
		Retryable: errType != ErrorTypePermanent,
	}
}

// NewTimeoutError creates a retryable read timeout error
func NewTimeoutError(op, port string) *TransportError {
	return NewTransportError(op, port, ErrTimeout, ErrorTypeTimeout)
}

// NewFrameCorruptedError creates a retryable malformed frame error
func NewFrameCorruptedError(op, port string) *TransportError {
	return NewTransportError(op, port, ErrMalformedFrame, ErrorTypeTransient)
}

// NewFatalError wraps err as a non-retryable transport fault
func NewFatalError(op, port string, err error) *TransportError {
	return NewTransportError(op, port, fmt.Errorf("%w: %w", ErrTransportFatal, err), ErrorTypePermanent)
}

// IsRetryable reports whether the supervisor should reconnect after err.
// A TransportError's own Retryable flag wins over its wrapped error.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var te *TransportError
	if errors.As(err, &te) {
		return te.Retryable
	}

	switch {
	case errors.Is(err, ErrTransportFatal), errors.Is(err, ErrTransportClosed):
		return false
	case errors.Is(err, ErrTimeout),
		errors.Is(err, ErrTruncatedEscape),
		errors.Is(err, ErrMalformedFrame),
		errors.Is(err, ErrHandshakeFailed):
		return true
	default:
		return false
	}
}

// IsFatal reports whether err must terminate the session
func IsFatal(err error) bool {
	return err != nil && !IsRetryable(err)
}

// GetErrorType returns the category of err
func GetErrorType(err error) ErrorType {
	if err == nil {
		return ErrorTypePermanent
	}

	var te *TransportError
	if errors.As(err, &te) {
		return te.Type
	}

	switch {
	case errors.Is(err, ErrTimeout):
		return ErrorTypeTimeout
	case errors.Is(err, ErrTruncatedEscape),
		errors.Is(err, ErrMalformedFrame),
		errors.Is(err, ErrHandshakeFailed):
		return ErrorTypeTransient
	default:
		return ErrorTypePermanent
	}
}
