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

package frame

// CalculateChecksum returns the frame checksum over length, sub-selector,
// sequence number, command and data, truncated to one byte.
func CalculateChecksum(length, sub, seq, cmd byte, data []byte) byte {
	sum := length + sub + seq + cmd
	for _, b := range data {
		sum += b
	}
	return sum
}

// ValidChecksum reports whether checksum matches the other fields
func ValidChecksum(length, sub, seq, cmd byte, data []byte, checksum byte) bool {
	return CalculateChecksum(length, sub, seq, cmd, data) == checksum
}

// NeedsEscape reports whether a logical byte must be sent as an escape pair
func NeedsEscape(b byte) bool {
	return b == Escape || b == Sync
}
