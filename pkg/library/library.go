// Copyright 2026 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package library persists saved wireless credentials, keyed by the BSSID
// of the access point they belong to.
package library

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/mattn/go-runewidth"
	"github.com/natefinch/atomic"
	"github.com/pelletier/go-toml/v2"
	"github.com/u-root/wpamenu/pkg/werr"
)

// Record is one saved network.
type Record struct {
	// BSSID is the hardware address of the access point.
	BSSID string `toml:"mac"`
	// ESSID is the network name at the time the password was set.
	ESSID string `toml:"essid"`
	// Password is the plaintext passphrase.
	Password string `toml:"pwd"`
	// PSK is the derived pre-shared key in lowercase hex.
	PSK string `toml:"psk"`
}

// KeyLen is the display width of the record's ESSID.
func (r *Record) KeyLen() int {
	return runewidth.StringWidth(r.ESSID)
}

// Line renders the record with its ESSID padded to keyLen columns.
func (r *Record) Line(keyLen int) string {
	return fmt.Sprintf("%s  %s", runewidth.FillRight(r.ESSID, keyLen), r.BSSID)
}

// Library maps BSSID to saved credentials.
type Library map[string]Record

// Load reads the library at path. A missing file is an IO error like any
// other read failure; callers decide whether that is fatal.
func Load(path string) (Library, error) {
	const op = "load library"

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, werr.Errorf(werr.IO, op, "reading known access points from %q: %w", path, err)
	}
	lib := Library{}
	if err := toml.Unmarshal(b, &lib); err != nil {
		return nil, werr.Errorf(werr.Persistence, op, "decoding known access points from %q: %v", path, err)
	}
	for k, r := range lib {
		// The table key is authoritative; older files may omit mac.
		if r.BSSID != k {
			r.BSSID = k
			lib[k] = r
		}
	}
	return lib, nil
}

// Save replaces the file at path with lib. The previous file survives a
// failed write.
func (lib Library) Save(path string) error {
	const op = "save library"

	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	enc.SetIndentTables(true)
	if err := enc.Encode(map[string]Record(lib)); err != nil {
		return werr.Errorf(werr.Persistence, op, "encoding library: %v", err)
	}
	if err := atomic.WriteFile(path, &buf); err != nil {
		return werr.Errorf(werr.IO, op, "writing library file %q: %v", path, err)
	}
	if err := os.Chmod(path, 0o600); err != nil {
		return werr.Errorf(werr.IO, op, "%q: %v", path, err)
	}
	return nil
}

// Insert adds r, replacing any record with the same BSSID.
func (lib Library) Insert(r Record) {
	lib[r.BSSID] = r
}

// Remove deletes the record for bssid and reports whether it existed.
func (lib Library) Remove(bssid string) bool {
	_, ok := lib[bssid]
	delete(lib, bssid)
	return ok
}

// Sorted returns the records ordered by ESSID, then BSSID.
func (lib Library) Sorted() []Record {
	recs := make([]Record, 0, len(lib))
	for _, r := range lib {
		recs = append(recs, r)
	}
	sort.Slice(recs, func(i, j int) bool {
		if recs[i].ESSID != recs[j].ESSID {
			return recs[i].ESSID < recs[j].ESSID
		}
		return recs[i].BSSID < recs[j].BSSID
	})
	return recs
}

// IsNotExist reports whether err came from a library file that does not
// exist yet.
func IsNotExist(err error) bool {
	return errors.Is(err, os.ErrNotExist)
}
