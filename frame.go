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
	"errors"
	"fmt"
	"io"

	"github.com/ZaparooProject/go-aime/internal/frame"
)

// Frame is one protocol message. Length and Checksum are derived from the
// other fields by NewFrame and recomputed on every marshal.
type Frame struct {
	Data        []byte
	Length      byte
	SubSelector byte
	Seq         byte
	Command     byte
	Checksum    byte
}

// NewFrame builds a frame with length and checksum filled in
func NewFrame(sub, seq, cmd byte, data []byte) (*Frame, error) {
	if len(data) > frame.MaxDataLength {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", ErrDataTooLarge, len(data), frame.MaxDataLength)
	}
	f := &Frame{
		Length:      byte(len(data) + frame.Overhead),
		SubSelector: sub,
		Seq:         seq,
		Command:     cmd,
		Data:        append([]byte(nil), data...),
	}
	f.Checksum = f.computeChecksum()
	return f, nil
}

func (f *Frame) computeChecksum() byte {
	return frame.CalculateChecksum(f.Length, f.SubSelector, f.Seq, f.Command, f.Data)
}

// Valid reports whether the checksum matches the other fields
func (f *Frame) Valid() bool {
	return frame.ValidChecksum(f.Length, f.SubSelector, f.Seq, f.Command, f.Data, f.Checksum)
}

// MarshalBinary encodes the frame for the wire. The sync byte is written
// literally; every other field goes through the escaper.
func (f *Frame) MarshalBinary() ([]byte, error) {
	if len(f.Data) > frame.MaxDataLength {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", ErrDataTooLarge, len(f.Data), frame.MaxDataLength)
	}
	length := byte(len(f.Data) + frame.Overhead)
	checksum := frame.CalculateChecksum(length, f.SubSelector, f.Seq, f.Command, f.Data)

	var buf bytes.Buffer
	buf.Grow(2 * (len(f.Data) + frame.Overhead + 2))
	buf.WriteByte(frame.Sync)

	e := newEscaper(nil, &buf, "")
	header := [...]byte{length, f.SubSelector, f.Seq, f.Command}
	for _, b := range header {
		if err := e.WriteByte(b); err != nil {
			return nil, err
		}
	}
	for _, b := range f.Data {
		if err := e.WriteByte(b); err != nil {
			return nil, err
		}
	}
	if err := e.WriteByte(checksum); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// String returns a short debug representation
func (f *Frame) String() string {
	return fmt.Sprintf("frame{len=%d sub=%#02x seq=%d cmd=%#02x data=% X sum=%#02x}",
		f.Length, f.SubSelector, f.Seq, f.Command, f.Data, f.Checksum)
}

// ParseFrame decodes the first frame found in b. Bytes before the first
// literal sync byte are skipped. The checksum is returned, not verified.
func ParseFrame(b []byte) (*Frame, error) {
	return readFrame(newEscaper(bytes.NewReader(b), nil, ""))
}

// readFrame scans raw bytes for a literal sync, then decodes the escaped body
func readFrame(e *escaper) (*Frame, error) {
	for {
		b, err := e.readRaw()
		if err != nil {
			return nil, decodeError(e, err)
		}
		if b == frame.Sync {
			break
		}
	}

	var header [frame.Overhead]byte
	for i := range header {
		b, err := e.ReadByte()
		if err != nil {
			return nil, decodeError(e, err)
		}
		header[i] = b
	}

	f := &Frame{
		Length:      header[0],
		SubSelector: header[1],
		Seq:         header[2],
		Command:     header[3],
	}
	if f.Length < frame.Overhead {
		return nil, NewTransportError("decode", e.port,
			fmt.Errorf("%w: length %d below overhead %d", ErrMalformedFrame, f.Length, frame.Overhead),
			ErrorTypeTransient)
	}

	f.Data = make([]byte, int(f.Length)-frame.Overhead)
	for i := range f.Data {
		b, err := e.ReadByte()
		if err != nil {
			return nil, decodeError(e, err)
		}
		f.Data[i] = b
	}

	checksum, err := e.ReadByte()
	if err != nil {
		return nil, decodeError(e, err)
	}
	f.Checksum = checksum
	return f, nil
}

// decodeError turns an exhausted stream into a malformed frame error
func decodeError(e *escaper, err error) error {
	if errors.Is(err, io.EOF) && !errors.Is(err, ErrTransportFatal) {
		return NewTransportError("decode", e.port,
			fmt.Errorf("%w: %w", ErrMalformedFrame, io.ErrUnexpectedEOF), ErrorTypeTransient)
	}
	return err
}
