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
	"time"
)

// Color is an LED colour in RGB order
type Color struct {
	R, G, B byte
}

// Colours used for reader feedback
var (
	ColorOff   = Color{}
	ColorRed   = Color{R: 0xFF}
	ColorGreen = Color{G: 0xFF}
	ColorBlue  = Color{B: 0xFF}
	ColorAmber = Color{R: 0xFF, G: 0x80}
)

// Feedback configures the LED sequence shown around a card read
type Feedback struct {
	// Processing is shown while a detected card is being handled
	Processing Color
	// Success is shown once the card was handled
	Success Color
	// Failure replaces Success when the card id could not be persisted
	Failure Color
	// Idle is shown after a poll that found no card
	Idle Color
	// Hold is how long Processing and Success stay lit
	Hold time.Duration
}

// DefaultFeedback returns the reader's stock feedback: blue, then red on
// success, green while idle.
func DefaultFeedback() Feedback {
	return Feedback{
		Processing: ColorBlue,
		Success:    ColorRed,
		Failure:    ColorAmber,
		Idle:       ColorGreen,
		Hold:       400 * time.Millisecond,
	}
}

// ledPayload builds the LED command payload. The reader expects red, blue,
// green in that order.
func ledPayload(red, green, blue byte) []byte {
	return []byte{ledPayloadPrefix, red, blue, green}
}

// SetColor sets the reader LED. LED commands are not answered by the reader,
// so nothing is read back.
func (d *Device) SetColor(ctx context.Context, red, green, blue byte) error {
	return d.send(ctx, subLED, cmdLED, ledPayload(red, green, blue))
}

// SetLED sets the reader LED to c
func (d *Device) SetLED(ctx context.Context, c Color) error {
	return d.SetColor(ctx, c.R, c.G, c.B)
}
