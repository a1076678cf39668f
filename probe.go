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
	"fmt"
	"strings"
)

// ProbeFamily names the probe command that found a card
type ProbeFamily string

const (
	// FamilyFeliCa is the FeliCa probe (0x42 with payload [0x00]); hits carry a card id
	FamilyFeliCa ProbeFamily = "felica"
	// FamilyFeliCaRetry repeats the FeliCa probe; hits only signal presence
	FamilyFeliCaRetry ProbeFamily = "felica-retry"
	// FamilyAlternate is the 0x40 probe with payload [0x01, 0x03]; hits only signal presence
	FamilyAlternate ProbeFamily = "alternate"
)

// ProbePolicy selects which probe commands a poll attempt sends
type ProbePolicy int

const (
	// ProbeFeliCa sends the FeliCa probe only
	ProbeFeliCa ProbePolicy = iota
	// ProbeExtended falls back to the repeat and alternate probes when the
	// FeliCa probe misses
	ProbeExtended
)

// String returns the policy name used in configuration
func (p ProbePolicy) String() string {
	switch p {
	case ProbeFeliCa:
		return "felica"
	case ProbeExtended:
		return "extended"
	default:
		return fmt.Sprintf("ProbePolicy(%d)", int(p))
	}
}

// ParseProbePolicy parses a policy name as written in configuration
func ParseProbePolicy(s string) (ProbePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "felica":
		return ProbeFeliCa, nil
	case "extended":
		return ProbeExtended, nil
	default:
		return 0, fmt.Errorf("%w: unknown probe policy %q", ErrInvalidParameter, s)
	}
}

type probe struct {
	family    ProbeFamily
	payload   []byte
	command   byte
	extractID bool
}

// hit reports whether resp answers this probe with a card present
func (p probe) hit(resp *Frame) bool {
	return resp.Command == p.command && len(resp.Data) >= minCardDataLength
}

// probes returns the probe sequence for a poll attempt, in the order they are tried
func (p ProbePolicy) probes() []probe {
	feliCa := probe{family: FamilyFeliCa, command: cmdFeliCaProbe, payload: feliCaPayload, extractID: true}
	if p != ProbeExtended {
		return []probe{feliCa}
	}
	return []probe{
		feliCa,
		{family: FamilyFeliCaRetry, command: cmdFeliCaProbe, payload: feliCaPayload},
		{family: FamilyAlternate, command: cmdProbeAlt, payload: altProbePayload},
	}
}
