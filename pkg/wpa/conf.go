// Copyright 2026 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wpa

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/natefinch/atomic"
	"github.com/u-root/wpamenu/pkg/werr"
)

const header = `update_config=1
ctrl_interface=DIR=%s GROUP=%s
`

const stanza = `network={
	bssid=%s
	ssid=%s
	#psk="%s"
	psk=%s
}
`

// Header is the global part of a wpa_supplicant configuration file.
type Header struct {
	// Socket is the control interface directory.
	Socket string
	// Group may use the control interface.
	Group string
}

// Block is one network stanza, pinned to a BSSID.
type Block struct {
	BSSID    string
	SSID     string
	Password string
	PSK      string
}

// quoteSSID returns the ssid in quoted form, or as bare hex when quoting
// cannot represent it.
func quoteSSID(ssid string) string {
	for _, r := range ssid {
		if r == '"' || r < 0x20 || r == 0x7f {
			return hex.EncodeToString([]byte(ssid))
		}
	}
	return `"` + ssid + `"`
}

// Render writes the configuration for blocks to w. Blocks are sorted by
// BSSID, so rendering the same set twice gives identical bytes.
func Render(w io.Writer, h Header, blocks []Block) error {
	sorted := append([]Block(nil), blocks...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].BSSID < sorted[j].BSSID })

	if _, err := fmt.Fprintf(w, header, h.Socket, h.Group); err != nil {
		return err
	}
	for _, b := range sorted {
		// The password is a comment for the operator; a line break would
		// end the comment and corrupt the stanza.
		pwd := strings.NewReplacer("\n", " ", "\r", " ").Replace(b.Password)
		if _, err := fmt.Fprintf(w, stanza, b.BSSID, quoteSSID(b.SSID), pwd, b.PSK); err != nil {
			return err
		}
	}
	return nil
}

// WriteConfig replaces the file at path with the rendered configuration.
// The file is written to a temporary name and renamed, so a failed write
// leaves the previous file intact.
func WriteConfig(path string, h Header, blocks []Block) error {
	const op = "write wpa_supplicant config"

	var buf bytes.Buffer
	if err := Render(&buf, h, blocks); err != nil {
		return werr.E(werr.Persistence, op, err)
	}
	if err := atomic.WriteFile(path, &buf); err != nil {
		return werr.Errorf(werr.IO, op, "%q: %v", path, err)
	}
	if err := os.Chmod(path, 0o600); err != nil {
		return werr.Errorf(werr.IO, op, "%q: %v", path, err)
	}
	return nil
}
