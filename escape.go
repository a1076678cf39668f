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

	"github.com/ZaparooProject/go-aime/internal/frame"
)

// escaper reads and writes logical bytes over a byte-stuffed stream.
// Escape and sync values are sent as [Escape, value-1].
type escaper struct {
	r    io.Reader
	w    io.ByteWriter
	port string
	buf  [1]byte
}

func newEscaper(r io.Reader, w io.ByteWriter, port string) *escaper {
	return &escaper{r: r, w: w, port: port}
}

// readRaw reads one byte without unescaping. An expired read deadline,
// reported by the transport as (0, nil), becomes a timeout error.
func (e *escaper) readRaw() (byte, error) {
	n, err := e.r.Read(e.buf[:])
	if n == 1 {
		return e.buf[0], nil
	}
	if err == nil {
		return 0, NewTimeoutError("read", e.port)
	}
	return 0, err
}

// ReadByte reads one logical byte, undoing the escape if present
func (e *escaper) ReadByte() (byte, error) {
	b, err := e.readRaw()
	if err != nil {
		return 0, err
	}
	if b != frame.Escape {
		return b, nil
	}

	follow, err := e.readRaw()
	if err != nil {
		if errors.Is(err, ErrTimeout) || (errors.Is(err, io.EOF) && !errors.Is(err, ErrTransportFatal)) {
			return 0, NewTransportError("read", e.port,
				fmt.Errorf("%w after %#02x", ErrTruncatedEscape, frame.Escape), ErrorTypeTransient)
		}
		return 0, err
	}
	return follow + 1, nil
}

// WriteByte writes one logical byte, escaping sync and escape values
func (e *escaper) WriteByte(b byte) error {
	if frame.NeedsEscape(b) {
		if err := e.w.WriteByte(frame.Escape); err != nil {
			return err
		}
		return e.w.WriteByte(b - 1)
	}
	return e.w.WriteByte(b)
}
