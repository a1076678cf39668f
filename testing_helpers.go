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
	"sync"
	"time"
)

// MockTransport is an in-memory Transport for tests. Every Write is parsed
// as a frame and handed to the responder, whose bytes become readable. An
// empty receive buffer reads as an expired timeout, or blocks until Close
// when BlockWhenEmpty is set.
type MockTransport struct {
	responder      func(req *Frame) ([]byte, error)
	wake           chan struct{}
	path           string
	rx             bytes.Buffer
	readErrs       []error
	writes         [][]byte
	frames         []*Frame
	timeout        time.Duration
	closeCount     int
	mu             sync.Mutex
	closed         bool
	blockWhenEmpty bool
}

// NewMockTransport creates a mock transport with no responder
func NewMockTransport() *MockTransport {
	return &MockTransport{
		path: "mock",
		wake: make(chan struct{}),
	}
}

// NewMockTransportWithFunc creates a mock transport with a responder
func NewMockTransportWithFunc(fn func(req *Frame) ([]byte, error)) *MockTransport {
	m := NewMockTransport()
	m.SetResponder(fn)
	return m
}

// SetResponder sets the function called with every frame written
func (m *MockTransport) SetResponder(fn func(req *Frame) ([]byte, error)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responder = fn
}

// QueueBytes makes raw bytes available to Read
func (m *MockTransport) QueueBytes(b []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rx.Write(b)
	m.signalLocked()
}

// QueueFrame marshals f and makes it available to Read
func (m *MockTransport) QueueFrame(f *Frame) error {
	wire, err := f.MarshalBinary()
	if err != nil {
		return err
	}
	m.QueueBytes(wire)
	return nil
}

// FailNextRead makes the next Read return err instead of data
func (m *MockTransport) FailNextRead(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.readErrs = append(m.readErrs, err)
	m.signalLocked()
}

// BlockWhenEmpty makes Read wait for data or Close instead of timing out
func (m *MockTransport) BlockWhenEmpty(block bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blockWhenEmpty = block
}

// signalLocked wakes a blocked reader; m.mu must be held
func (m *MockTransport) signalLocked() {
	close(m.wake)
	m.wake = make(chan struct{})
}

// Read returns queued bytes, an injected error, or (0, nil) for a timeout
func (m *MockTransport) Read(p []byte) (int, error) {
	for {
		m.mu.Lock()
		if m.closed {
			m.mu.Unlock()
			return 0, ErrTransportClosed
		}
		if len(m.readErrs) > 0 {
			err := m.readErrs[0]
			m.readErrs = m.readErrs[1:]
			m.mu.Unlock()
			return 0, err
		}
		if m.rx.Len() > 0 {
			n, err := m.rx.Read(p)
			m.mu.Unlock()
			return n, err
		}
		if !m.blockWhenEmpty {
			m.mu.Unlock()
			return 0, nil
		}
		wake := m.wake
		m.mu.Unlock()
		<-wake
	}
}

// Write records p and queues the responder's answer
func (m *MockTransport) Write(p []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return 0, ErrTransportClosed
	}

	m.writes = append(m.writes, append([]byte(nil), p...))
	req, err := ParseFrame(p)
	if err != nil {
		return len(p), nil
	}
	m.frames = append(m.frames, req)

	if m.responder == nil {
		return len(p), nil
	}
	resp, err := m.responder(req)
	if err != nil {
		return 0, err
	}
	if len(resp) > 0 {
		m.rx.Write(resp)
		m.signalLocked()
	}
	return len(p), nil
}

// Close marks the transport closed and releases blocked readers
func (m *MockTransport) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closeCount++
	if !m.closed {
		m.closed = true
		m.signalLocked()
	}
	return nil
}

// SetTimeout records the timeout
func (m *MockTransport) SetTimeout(timeout time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.timeout = timeout
	return nil
}

// Timeout returns the last timeout set
func (m *MockTransport) Timeout() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.timeout
}

// IsConnected returns true until Close is called
func (m *MockTransport) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return !m.closed
}

// Type returns TransportMock
func (*MockTransport) Type() TransportType {
	return TransportMock
}

// Path returns the mock port name
func (m *MockTransport) Path() string {
	return m.path
}

// Writes returns a copy of every buffer written
func (m *MockTransport) Writes() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]byte, len(m.writes))
	copy(out, m.writes)
	return out
}

// Frames returns every written buffer that parsed as a frame
func (m *MockTransport) Frames() []*Frame {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*Frame, len(m.frames))
	copy(out, m.frames)
	return out
}

// CloseCount returns how many times Close was called
func (m *MockTransport) CloseCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closeCount
}

// Reply marshals a response frame for use in a responder
func Reply(sub, seq, cmd byte, data []byte) ([]byte, error) {
	f, err := NewFrame(sub, seq, cmd, data)
	if err != nil {
		return nil, err
	}
	return f.MarshalBinary()
}

// ReaderResponder answers the reset command with resetData and probes with
// probeData. LED commands get no answer. Responses echo the request's
// sequence number.
func ReaderResponder(resetData, probeData []byte) func(req *Frame) ([]byte, error) {
	return func(req *Frame) ([]byte, error) {
		switch req.Command {
		case cmdReset:
			return Reply(req.SubSelector, req.Seq, cmdReset, resetData)
		case cmdFeliCaProbe, cmdProbeAlt:
			return Reply(req.SubSelector, req.Seq, req.Command, probeData)
		default:
			return nil, nil
		}
	}
}
