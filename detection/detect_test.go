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

package detection

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samplePorts() []Port {
	return []Port{
		{Path: "/dev/ttyS0"},
		{Path: "/dev/ttyUSB1", VIDPID: "0403:6001", USB: true},
		{Path: "/dev/ttyACM0", VIDPID: "2341:0043", USB: true},
		{Path: "/dev/ttyUSB0", VIDPID: "1A86:7523", USB: true},
	}
}

func TestSelectPort(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		ports   []Port
		opts    Options
		want    string
		wantErr error
	}{
		{
			name:  "first usb port by path",
			ports: samplePorts(),
			opts:  Options{},
			want:  "/dev/ttyACM0",
		},
		{
			name:  "blocked device skipped",
			ports: samplePorts(),
			opts:  DefaultOptions(),
			want:  "/dev/ttyUSB0",
		},
		{
			name:  "preferred device wins",
			ports: samplePorts(),
			opts:  Options{Blocklist: DefaultBlocklist(), Prefer: []string{"0403:6001"}},
			want:  "/dev/ttyUSB1",
		},
		{
			name:  "prefer list order wins over path order",
			ports: samplePorts(),
			opts:  Options{Prefer: []string{"0403:6001", "1a86:7523"}},
			want:  "/dev/ttyUSB1",
		},
		{
			name:  "later preference used when first is absent",
			ports: samplePorts(),
			opts:  Options{Prefer: []string{"dead:beef", "1a86:7523"}},
			want:  "/dev/ttyUSB0",
		},
		{
			name:  "ignored path skipped",
			ports: samplePorts(),
			opts:  Options{Blocklist: DefaultBlocklist(), IgnorePaths: []string{"/dev/ttyUSB0"}},
			want:  "/dev/ttyUSB1",
		},
		{
			name:  "non usb fallback",
			ports: []Port{{Path: "COM4"}, {Path: "COM1"}},
			want:  "COM1",
		},
		{
			name:    "nothing left",
			ports:   []Port{{Path: "/dev/ttyACM0", VIDPID: "2341:0043", USB: true}},
			opts:    DefaultOptions(),
			wantErr: ErrNoPortFound,
		},
		{
			name:    "no ports",
			wantErr: ErrNoPortFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := SelectPort(tt.ports, tt.opts)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Path)
		})
	}
}

func TestDefaultPortName(t *testing.T) {
	t.Parallel()
	switch runtime.GOOS {
	case "windows":
		assert.Equal(t, "COM4", DefaultPortName())
	case "darwin":
		assert.Equal(t, "/dev/cu.usbserial", DefaultPortName())
	default:
		assert.Equal(t, "/dev/ttyUSB0", DefaultPortName())
	}
}

func TestResolve(t *testing.T) {
	t.Parallel()

	got, err := Resolve("", DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, DefaultPortName(), got)

	got, err = Resolve(" COM7 ", DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, "COM7", got)
}
