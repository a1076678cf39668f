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
	"path/filepath"
	"strings"
)

// DefaultBlocklist returns USB serial devices that are never picked by
// auto-detection. Entries are VID:PID in hex, matched case-insensitively.
func DefaultBlocklist() []string {
	return []string{
		"2341:0043", // Arduino Uno R3
		"2341:0042", // Arduino Mega 2560 R3
	}
}

// IsBlocked reports whether vidpid is listed in blocklist
func IsBlocked(vidpid string, blocklist []string) bool {
	return matchVIDPID(vidpid, blocklist) >= 0
}

// matchVIDPID returns the index of the first entry equal to vidpid, or -1
func matchVIDPID(vidpid string, list []string) int {
	vidpid = strings.ToUpper(strings.TrimSpace(vidpid))
	if vidpid == "" {
		return -1
	}
	for i, entry := range list {
		if strings.ToUpper(strings.TrimSpace(entry)) == vidpid {
			return i
		}
	}
	return -1
}

// ParseVIDPID joins the vendor and product ids reported by the enumerator
// into the upper-case "VID:PID" form used by the block and prefer lists.
// It returns "" unless both ids are four hex digits.
func ParseVIDPID(vid, pid string) string {
	vid = strings.ToUpper(strings.TrimSpace(vid))
	pid = strings.ToUpper(strings.TrimSpace(pid))
	if !isUSBID(vid) || !isUSBID(pid) {
		return ""
	}
	return vid + ":" + pid
}

func isUSBID(s string) bool {
	if len(s) != 4 {
		return false
	}
	for _, r := range s {
		if (r < '0' || r > '9') && (r < 'A' || r > 'F') {
			return false
		}
	}
	return true
}

// IsPathIgnored reports whether devicePath is one of ignorePaths. Paths are
// cleaned and compared without regard to case, so "com4" matches "COM4".
func IsPathIgnored(devicePath string, ignorePaths []string) bool {
	if devicePath == "" {
		return false
	}
	device := portKey(devicePath)
	for _, p := range ignorePaths {
		if p != "" && portKey(p) == device {
			return true
		}
	}
	return false
}

func portKey(path string) string {
	return strings.ToLower(filepath.Clean(strings.TrimSpace(path)))
}
