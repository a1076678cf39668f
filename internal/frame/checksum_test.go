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

import "testing"

func TestCalculateChecksum(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		data   []byte
		length byte
		sub    byte
		seq    byte
		cmd    byte
		want   byte
	}{
		{
			name:   "reset command",
			length: 0x05,
			sub:    0x00,
			seq:    0x05,
			cmd:    0x62,
			data:   []byte{0x00},
			want:   0x6C,
		},
		{
			name:   "empty data",
			length: 0x04,
			sub:    0x00,
			seq:    0x00,
			cmd:    0x42,
			data:   []byte{},
			want:   0x46,
		},
		{
			name:   "led command",
			length: 0x08,
			sub:    0x08,
			seq:    0x01,
			cmd:    0x81,
			data:   []byte{0x03, 0xFF, 0x00, 0x00},
			want:   0x8E, // 0x08+0x08+0x01+0x81+0x03+0xFF = 0x18E
		},
		{
			name:   "overflow handling",
			length: 0x06,
			sub:    0x00,
			seq:    0xFF,
			cmd:    0xFF,
			data:   []byte{0xFF, 0x02},
			want:   0x05, // 0x305 truncated
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := CalculateChecksum(tt.length, tt.sub, tt.seq, tt.cmd, tt.data)
			if got != tt.want {
				t.Errorf("CalculateChecksum() = %#02x, want %#02x", got, tt.want)
			}
		})
	}
}

func TestValidChecksum(t *testing.T) {
	t.Parallel()
	data := []byte{0x00}

	if !ValidChecksum(0x05, 0x00, 0x05, 0x62, data, 0x6C) {
		t.Error("expected matching checksum to be accepted")
	}
	if ValidChecksum(0x05, 0x00, 0x05, 0x62, data, 0x6D) {
		t.Error("expected corrupted checksum to be rejected")
	}
}

func TestNeedsEscape(t *testing.T) {
	t.Parallel()
	for i := 0; i < 256; i++ {
		b := byte(i)
		want := b == 0xD0 || b == 0xE0
		if got := NeedsEscape(b); got != want {
			t.Errorf("NeedsEscape(%#02x) = %v, want %v", b, got, want)
		}
	}
}
