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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEchoSequencer(t *testing.T) {
	t.Parallel()
	s := SequenceEcho.NewSequencer()

	assert.Equal(t, byte(0), s.Next())
	assert.Equal(t, byte(0), s.Next(), "echo policy must not advance on its own")

	s.Observe(0x2A)
	assert.Equal(t, byte(0x2A), s.Next())
	assert.Equal(t, byte(0x2A), s.Value())

	s.Observe(0xFF)
	assert.Equal(t, byte(0xFF), s.Next())
}

func TestIncrementSequencer(t *testing.T) {
	t.Parallel()
	s := SequenceIncrement.NewSequencer()

	for want := 1; want <= 255; want++ {
		assert.Equal(t, byte(want), s.Next())
		s.Observe(0x00)
	}
	assert.Equal(t, byte(0), s.Next(), "counter wraps after 255")
	assert.Equal(t, byte(0), s.Value())
}

func TestParseSequencePolicy(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in      string
		want    SequencePolicy
		wantErr bool
	}{
		{in: "", want: SequenceEcho},
		{in: "echo", want: SequenceEcho},
		{in: " Increment ", want: SequenceIncrement},
		{in: "random", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			got, err := ParseSequencePolicy(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidParameter)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, mustParseSequence(t, got.String()))
		})
	}
}

func mustParseSequence(t *testing.T, s string) SequencePolicy {
	t.Helper()
	p, err := ParseSequencePolicy(s)
	require.NoError(t, err)
	return p
}
