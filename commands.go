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

import "github.com/ZaparooProject/go-aime/internal/frame"

// Reader command codes
const (
	cmdReset       = 0x62
	cmdLED         = 0x81
	cmdFeliCaProbe = 0x42
	cmdProbeAlt    = 0x40
)

// Sub-selectors
const (
	subCommand = frame.SubCommand
	subLED     = frame.SubLED
)

// Command payloads
var (
	resetPayload    = []byte{0x00}
	feliCaPayload   = []byte{0x00}
	altProbePayload = []byte{0x01, 0x03}
	resetOKPayloads = [][]byte{{0x03, 0x00}, {0x00, 0x00}}
)

const (
	ledPayloadPrefix  = 0x03
	cardIDOffset      = 5
	cardIDLength      = 8
	cardIDHexWidth    = 20
	minCardDataLength = 5 // a probe hit carries more than 4 data bytes
)
