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

// Package settings writes detected card ids into the game's JSON settings
// file.
package settings

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog/log"
)

const (
	networkKey   = "network"
	localCardKey = "local_card"
)

// ErrNotObject is returned when the file or its network entry is not a JSON object
var ErrNotObject = errors.New("settings value is not a JSON object")

// JSONStore saves card ids to network.local_card of a JSON file. Other keys
// are kept; object keys are written in sorted order with a 4 space indent.
type JSONStore struct {
	path string
	mu   sync.Mutex
}

// NewJSONStore returns a store for the file at path. The file must exist
// when a card is saved.
func NewJSONStore(path string) *JSONStore {
	return &JSONStore{path: path}
}

// Path returns the settings file path
func (s *JSONStore) Path() string {
	return s.path
}

// SaveCardID sets network.local_card to id, creating the network object if
// it is missing
func (s *JSONStore) SaveCardID(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("read settings: %w", err)
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("decode %s: %w", s.path, err)
	}
	if doc == nil {
		return fmt.Errorf("%w: %s", ErrNotObject, s.path)
	}

	network := map[string]json.RawMessage{}
	if existing, ok := doc[networkKey]; ok && !isNull(existing) {
		if err := json.Unmarshal(existing, &network); err != nil || network == nil {
			return fmt.Errorf("%w: %s", ErrNotObject, networkKey)
		}
	}

	card, err := json.Marshal(id)
	if err != nil {
		return fmt.Errorf("encode card id: %w", err)
	}
	network[localCardKey] = card

	out, err := encode(doc, network)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}

	if err := writeFile(s.path, out); err != nil {
		return err
	}
	log.Debug().Str("file", s.path).Str("card", id).Msg("local card updated")
	return nil
}

// encode writes doc with network in place of its network entry. HTML
// characters are left as they are so untouched values keep their bytes.
func encode(doc, network map[string]json.RawMessage) ([]byte, error) {
	out := make(map[string]any, len(doc)+1)
	for k, v := range doc {
		out[k] = v
	}
	out[networkKey] = network

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(out); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// writeFile replaces path through a temporary file in the same directory so
// a crash never leaves a truncated settings file
func writeFile(path string, data []byte) error {
	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp settings: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp settings: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp settings: %w", err)
	}
	if err := os.Chmod(tmpName, mode); err != nil {
		return fmt.Errorf("chmod temp settings: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replace settings: %w", err)
	}
	return nil
}
