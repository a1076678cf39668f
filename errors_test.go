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
	"io"
	"strings"
	"testing"
)

func TestIsRetryable(t *testing.T) {
	t.Parallel()
	tests := []struct {
		err  error
		name string
		want bool
	}{
		{name: "nil error", err: nil, want: false},
		{name: "timeout retryable", err: ErrTimeout, want: true},
		{name: "truncated escape retryable", err: ErrTruncatedEscape, want: true},
		{name: "malformed frame retryable", err: ErrMalformedFrame, want: true},
		{name: "checksum mismatch retryable", err: ErrChecksumMismatch, want: true},
		{name: "handshake failure retryable", err: ErrHandshakeFailed, want: true},
		{name: "wrapped timeout retryable", err: fmt.Errorf("felica probe: %w", ErrTimeout), want: true},
		{name: "fatal not retryable", err: ErrTransportFatal, want: false},
		{name: "closed not retryable", err: ErrTransportClosed, want: false},
		{name: "data too large not retryable", err: ErrDataTooLarge, want: false},
		{name: "invalid parameter not retryable", err: ErrInvalidParameter, want: false},
		{name: "unknown error not retryable", err: io.ErrClosedPipe, want: false},
		{
			name: "text-only wrap not retryable",
			err:  errors.New("outer: " + ErrTimeout.Error()),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := IsRetryable(tt.err); got != tt.want {
				t.Errorf("IsRetryable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsRetryable_TransportError(t *testing.T) {
	t.Parallel()
	tests := []struct {
		transport *TransportError
		name      string
		want      bool
	}{
		{
			name: "retryable flag set",
			transport: &TransportError{
				Err:       errors.New("test error"),
				Op:        "read",
				Port:      "/dev/ttyUSB0",
				Type:      ErrorTypeTransient,
				Retryable: true,
			},
			want: true,
		},
		{
			name: "retryable flag cleared",
			transport: &TransportError{
				Err:  errors.New("test error"),
				Op:   "write",
				Port: "/dev/ttyUSB0",
				Type: ErrorTypeTransient,
			},
			want: false,
		},
		{
			name: "flag wins over retryable cause",
			transport: &TransportError{
				Err:  ErrTimeout,
				Op:   "read",
				Port: "/dev/ttyUSB0",
				Type: ErrorTypeTimeout,
			},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := IsRetryable(tt.transport); got != tt.want {
				t.Errorf("IsRetryable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsFatal(t *testing.T) {
	t.Parallel()
	if IsFatal(nil) {
		t.Error("IsFatal(nil) = true, want false")
	}
	if IsFatal(NewTimeoutError("read", "COM4")) {
		t.Error("timeout should not be fatal")
	}
	fatal := NewFatalError("read", "COM4", io.EOF)
	if !IsFatal(fatal) {
		t.Error("NewFatalError should be fatal")
	}
	if !errors.Is(fatal, ErrTransportFatal) {
		t.Error("fatal error should wrap ErrTransportFatal")
	}
	if !errors.Is(fatal, io.EOF) {
		t.Error("fatal error should wrap its cause")
	}
}

func TestGetErrorType(t *testing.T) {
	t.Parallel()
	tests := []struct {
		err  error
		name string
		want ErrorType
	}{
		{name: "nil error", err: nil, want: ErrorTypePermanent},
		{name: "timeout", err: ErrTimeout, want: ErrorTypeTimeout},
		{name: "truncated escape", err: ErrTruncatedEscape, want: ErrorTypeTransient},
		{name: "malformed frame", err: ErrMalformedFrame, want: ErrorTypeTransient},
		{name: "checksum mismatch", err: ErrChecksumMismatch, want: ErrorTypeTransient},
		{name: "handshake failed", err: ErrHandshakeFailed, want: ErrorTypeTransient},
		{name: "fatal", err: ErrTransportFatal, want: ErrorTypePermanent},
		{name: "unknown error", err: errors.New("unknown error"), want: ErrorTypePermanent},
		{name: "timeout constructor", err: NewTimeoutError("read", "COM4"), want: ErrorTypeTimeout},
		{name: "corrupted constructor", err: NewFrameCorruptedError("decode", "COM4"), want: ErrorTypeTransient},
		{name: "fatal constructor", err: NewFatalError("open", "COM4", io.EOF), want: ErrorTypePermanent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := GetErrorType(tt.err); got != tt.want {
				t.Errorf("GetErrorType() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestErrorType_String(t *testing.T) {
	t.Parallel()
	tests := map[ErrorType]string{
		ErrorTypePermanent: "permanent",
		ErrorTypeTransient: "transient",
		ErrorTypeTimeout:   "timeout",
		ErrorType(42):      "ErrorType(42)",
	}
	for typ, want := range tests {
		if got := typ.String(); got != want {
			t.Errorf("String() = %q, want %q", got, want)
		}
	}
}

func TestNewTransportError(t *testing.T) {
	t.Parallel()
	tests := []struct {
		err       error
		name      string
		op        string
		port      string
		errType   ErrorType
		retryable bool
	}{
		{
			name:    "permanent",
			op:      "open",
			port:    "/dev/ttyUSB0",
			err:     errors.New("permission denied"),
			errType: ErrorTypePermanent,
		},
		{
			name:      "transient without port",
			op:        "decode",
			err:       ErrMalformedFrame,
			errType:   ErrorTypeTransient,
			retryable: true,
		},
		{
			name:      "timeout",
			op:        "read",
			port:      "COM4",
			err:       ErrTimeout,
			errType:   ErrorTypeTimeout,
			retryable: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			te := NewTransportError(tt.op, tt.port, tt.err, tt.errType)

			if te.Op != tt.op {
				t.Errorf("Op = %q, want %q", te.Op, tt.op)
			}
			if te.Port != tt.port {
				t.Errorf("Port = %q, want %q", te.Port, tt.port)
			}
			if !errors.Is(te, tt.err) {
				t.Errorf("Err = %v, want %v", te.Err, tt.err)
			}
			if te.Type != tt.errType {
				t.Errorf("Type = %v, want %v", te.Type, tt.errType)
			}
			if te.Retryable != tt.retryable {
				t.Errorf("Retryable = %v, want %v", te.Retryable, tt.retryable)
			}
		})
	}
}

func TestTransportError_Error(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		te   *TransportError
		want []string
	}{
		{
			name: "with port",
			te:   &TransportError{Err: errors.New("connection failed"), Op: "read", Port: "/dev/ttyUSB0"},
			want: []string{"read", "/dev/ttyUSB0", "connection failed"},
		},
		{
			name: "without port",
			te:   &TransportError{Err: errors.New("device busy"), Op: "write"},
			want: []string{"write", "device busy"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := tt.te.Error()
			for _, substr := range tt.want {
				if !strings.Contains(got, substr) {
					t.Errorf("Error() = %q, should contain %q", got, substr)
				}
			}
		})
	}
}

func TestTransportError_Unwrap(t *testing.T) {
	t.Parallel()
	originalErr := errors.New("original error")
	te := &TransportError{Err: originalErr, Op: "read"}

	if !errors.Is(te, originalErr) {
		t.Error("errors.Is should find the wrapped error")
	}
	var target *TransportError
	if !errors.As(fmt.Errorf("outer: %w", te), &target) {
		t.Error("errors.As should find the TransportError")
	}
}
