// Copyright 2026 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wifi

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"os/exec"
	"regexp"
	"unicode/utf8"

	"github.com/u-root/wpamenu/pkg/library"
	"github.com/u-root/wpamenu/pkg/werr"
	"golang.org/x/crypto/pbkdf2"
)

// pskRE matches the psk directive line of wpa_passphrase output. The ssid
// and #psk lines echo operator input, so only a whole line of 64 hex digits
// counts.
var pskRE = regexp.MustCompile(`(?m)^\s*psk=([0-9a-f]{64})\r?$`)

// Passphrase derives keys with the wpa_passphrase tool.
type Passphrase struct {
	// Path is the wpa_passphrase binary.
	Path string
}

var _ = Deriver(Passphrase{})

// Derive runs the tool as `wpa_passphrase essid password`.
func (p Passphrase) Derive(ctx context.Context, bssid, essid, password string) (library.Record, error) {
	const op = "wpa_passphrase"

	out, err := exec.CommandContext(ctx, p.Path, essid, password).Output()
	if err != nil {
		if _, ok := err.(*exec.ExitError); !ok {
			return library.Record{}, werr.Errorf(werr.Derivation, op, "unable to execute %q: %v", p.Path, err)
		}
		// wpa_passphrase exits 1 with an explanation on stdout when it
		// rejects a passphrase; the pattern match below reports it.
	}
	if !utf8.Valid(out) {
		return library.Record{}, werr.Errorf(werr.Derivation, op, "output is not UTF-8")
	}
	return recordFromOutput(bssid, essid, password, string(out))
}

// recordFromOutput extracts the key from wpa_passphrase output.
func recordFromOutput(bssid, essid, password, out string) (library.Record, error) {
	m := pskRE.FindAllStringSubmatch(out, -1)
	if m == nil {
		return library.Record{}, werr.Errorf(werr.Derivation, "wpa_passphrase", "unable to match output: %q", out)
	}
	// The directive follows the echoed input, so the last match wins.
	return library.Record{BSSID: bssid, ESSID: essid, Password: password, PSK: m[len(m)-1][1]}, nil
}

// PBKDF2 derives keys in process with the IEEE 802.11i algorithm
// (PBKDF2-HMAC-SHA1, 4096 rounds, 256 bits).
type PBKDF2 struct{}

var _ = Deriver(PBKDF2{})

// Derive applies the same passphrase rules wpa_passphrase does.
func (PBKDF2) Derive(_ context.Context, bssid, essid, password string) (library.Record, error) {
	const op = "derive psk"

	if len(password) < 8 || len(password) > 63 {
		return library.Record{}, werr.Errorf(werr.Derivation, op, "passphrase must be 8..63 characters")
	}
	for i := 0; i < len(password); i++ {
		if c := password[i]; c < 32 || c > 126 {
			return library.Record{}, werr.Errorf(werr.Derivation, op, "invalid passphrase character")
		}
	}
	if len(essid) == 0 || len(essid) > 32 {
		return library.Record{}, werr.Errorf(werr.Derivation, op, "ssid must be 1..32 bytes")
	}
	key := pbkdf2.Key([]byte(password), []byte(essid), 4096, 32, sha1.New)
	return library.Record{BSSID: bssid, ESSID: essid, Password: password, PSK: hex.EncodeToString(key)}, nil
}
