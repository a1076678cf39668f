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

/*
Package aime talks to Aime/FeliCa arcade card readers over their serial
protocol.

Every request and response is a frame:

	E0 LEN SUB SEQ CMD DATA... CHK

LEN is len(DATA)+4 and CHK is the sum of LEN, SUB, SEQ, CMD and DATA modulo
256. After the literal E0 sync byte, the values E0 and D0 are sent as D0
followed by the value minus one.

Features:
  - Byte-stuffed frame codec with optional checksum verification
  - Device-echoed or self-incrementing sequence numbers
  - Reset handshake and throttled FeliCa polling
  - RGB LED feedback
  - Card id hand-off through CardStore and KeyInjector
  - Reconnecting supervisor (package polling)

Basic Usage:

	import (
	    "github.com/ZaparooProject/go-aime"
	    "github.com/ZaparooProject/go-aime/transport/uart"
	)

	transport, err := uart.New("COM4")
	if err != nil {
	    log.Fatal(err)
	}

	device, err := aime.New(transport, aime.WithProbePolicy(aime.ProbeExtended))
	if err != nil {
	    log.Fatal(err)
	}
	defer device.Close()

	if err := device.Init(); err != nil {
	    log.Fatal(err)
	}

	for {
	    event, err := device.Poll()
	    switch {
	    case errors.Is(err, aime.ErrPollSkipped), errors.Is(err, aime.ErrNoCard):
	        time.Sleep(10 * time.Millisecond)
	    case err != nil:
	        log.Fatal(err)
	    default:
	        fmt.Println("card:", event.ID)
	    }
	}

Most programs should let polling.Supervisor own the connection instead: it
reopens the port after timeouts and malformed frames and stops on fatal
transport errors.

Error Handling:

Use IsRetryable and IsFatal to classify errors, or errors.Is against the
sentinels:

	if errors.Is(err, aime.ErrTimeout) {
	    // the reader did not answer
	}

Thread Safety:

Device operations are not thread-safe. A Device is meant to be driven by a
single goroutine.
*/
package aime
