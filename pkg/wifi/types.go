// Copyright 2018 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wifi

import (
	"context"
	"fmt"
	"sort"

	"github.com/mattn/go-runewidth"
	"github.com/u-root/wpamenu/pkg/library"
	"github.com/u-root/wpamenu/pkg/menu"
	"github.com/u-root/wpamenu/pkg/wpa"
)

// Network is an access point seen in a scan, decorated with what the
// library knows about it.
type Network struct {
	wpa.ScanResult

	// Saved is set when the library has credentials for this BSSID.
	Saved    bool
	Password string
	PSK      string
	// PriorESSID is the saved ESSID when it differs from the broadcast one.
	PriorESSID string
	// Current is set for the access point the interface is associated with.
	Current bool
}

var _ = menu.Item(&Network{})

// KeyLen is the display width of the ESSID.
func (n *Network) KeyLen() int {
	return runewidth.StringWidth(n.ESSID)
}

// Line renders "<marks> <essid> <level> dBm <freq> <bssid> [<prior essid>]".
// The marks are '>' for the current association and '*' for a saved
// network, each in its own column.
func (n *Network) Line(keyLen int) string {
	mark := []byte("  ")
	if n.Current {
		mark[0] = '>'
	}
	if n.Saved {
		mark[1] = '*'
	}
	line := fmt.Sprintf("%s %s %4d dBm  %4d  %s",
		mark, runewidth.FillRight(n.ESSID, keyLen), n.Level, n.Frequency, n.BSSID)
	if n.PriorESSID != "" {
		line += " " + n.PriorESSID
	}
	return line
}

// Reconcile decorates scan results with library data, matched by BSSID,
// and orders them strongest signal first. Equal levels keep scan order.
func Reconcile(results []wpa.ScanResult, lib library.Library) []Network {
	nets := make([]Network, 0, len(results))
	for _, r := range results {
		n := Network{ScanResult: r}
		if rec, ok := lib[r.BSSID]; ok {
			n.Saved = true
			n.Password = rec.Password
			n.PSK = rec.PSK
			if rec.ESSID != r.ESSID {
				n.PriorESSID = rec.ESSID
			}
		}
		nets = append(nets, n)
	}
	sort.SliceStable(nets, func(i, j int) bool { return nets[i].Level > nets[j].Level })
	return nets
}

// Controller is the part of the supplicant control channel the Manager
// needs. *wpa.Client implements it.
type Controller interface {
	Scan(ctx context.Context) error
	ScanResults(ctx context.Context) ([]wpa.ScanResult, error)
	ListNetworks(ctx context.Context) ([]wpa.ConfiguredNetwork, error)
	Status(ctx context.Context) (string, error)
	SelectNetwork(ctx context.Context, id int) error
	Reconfigure(ctx context.Context) error
}

var _ = Controller(&wpa.Client{})

// Selector lets the operator pick one of items. ok is false when nothing
// was picked.
type Selector interface {
	Select(prompt string, items []menu.Item) (n int, ok bool, err error)
}

// Deriver turns a password into a library record for one access point.
type Deriver interface {
	Derive(ctx context.Context, bssid, essid, password string) (library.Record, error)
}

// Leaser acquires an address once the interface is associated.
type Leaser interface {
	Lease(ctx context.Context) error
}
