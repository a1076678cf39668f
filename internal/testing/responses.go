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

// Package testing provides canned reader payloads for tests
package testing

// BuildResetResponseData returns the data of a successful reset answer
func BuildResetResponseData() []byte {
	return []byte{0x03, 0x00}
}

// BuildResetResponseDataAlt returns the other accepted reset answer
func BuildResetResponseDataAlt() []byte {
	return []byte{0x00, 0x00}
}

// BuildFeliCaCardData returns a FeliCa probe answer carrying idm at the card
// id offset. The first five bytes are status and card-count fields.
func BuildFeliCaCardData(idm []byte) []byte {
	data := []byte{0x01, 0x10, 0x01, 0x00, 0x12}
	return append(data, idm...)
}

// BuildNoCardData returns a probe answer with no card in the field
func BuildNoCardData() []byte {
	return []byte{0x00}
}

// SampleIDm is an 8-byte FeliCa IDm used across tests
func SampleIDm() []byte {
	return []byte{0x01, 0x2E, 0x4C, 0xD0, 0xE0, 0x9A, 0x00, 0xFF}
}

// SampleCardID is SampleIDm rendered as a 20-character card id
const SampleCardID = "012E4CD0E09A00FF0000"
