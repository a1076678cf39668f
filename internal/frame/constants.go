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

// Package frame provides protocol constants and checksum helpers for Aime reader frames
package frame

// Frame markers and control bytes
const (
	Sync   = 0xE0 // Literal frame delimiter, never escaped at a frame boundary
	Escape = 0xD0 // Escape sentinel, the next raw byte is value-1
)

// Frame size limits
const (
	// Overhead is the part of the length byte not taken by data
	// (length, sub-selector, sequence number and command).
	Overhead = 4
	// MaxDataLength is the largest payload a single length byte can describe
	MaxDataLength = 0xFF - Overhead
)

// Sub-selectors observed on the wire
const (
	SubCommand = 0x00 // Reset and card probes
	SubLED     = 0x08 // LED control
)
