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
	"encoding/hex"
	"strings"
	"time"
)

// CardEvent describes one successful probe. It is handed to the card store,
// the key injector and any observer, then discarded.
type CardEvent struct {
	DetectedAt time.Time
	// ID is the card id rendered by FormatCardID. Empty for probe families
	// that only signal presence.
	ID        string
	SessionID string
	Family    ProbeFamily
	Raw       []byte
}

// HasID reports whether the event carries a card id
func (e *CardEvent) HasID() bool {
	return e.ID != ""
}

// FormatCardID renders a raw card id as exactly 20 upper-case hex characters,
// right-padded with '0' or truncated.
func FormatCardID(raw []byte) string {
	s := strings.ToUpper(hex.EncodeToString(raw))
	if len(s) >= cardIDHexWidth {
		return s[:cardIDHexWidth]
	}
	return s + strings.Repeat("0", cardIDHexWidth-len(s))
}

// extractCardID slices the raw id out of a FeliCa probe response. Short
// responses yield what is there.
func extractCardID(data []byte) []byte {
	if len(data) <= cardIDOffset {
		return nil
	}
	end := cardIDOffset + cardIDLength
	if end > len(data) {
		end = len(data)
	}
	return append([]byte(nil), data[cardIDOffset:end]...)
}

// CardStore persists the id of the last card seen
type CardStore interface {
	SaveCardID(ctx context.Context, id string) error
}

// KeyInjector signals the host application that a card was read
type KeyInjector interface {
	PressEnter(ctx context.Context) error
}
