// Copyright 2026 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wifi

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/u-root/wpamenu/pkg/config"
	"github.com/u-root/wpamenu/pkg/library"
	"github.com/u-root/wpamenu/pkg/menu"
	"github.com/u-root/wpamenu/pkg/werr"
	"github.com/u-root/wpamenu/pkg/wpa"
)

// Manager runs the connect, set-password and forget workflows. Each call
// loads the library, works on its own copy and writes it back; nothing is
// kept between calls.
type Manager struct {
	libraryPath string
	confPath    string
	header      wpa.Header

	ctl  Controller
	menu Selector
	psk  Deriver
	dhcp Leaser
	log  logrus.FieldLogger
}

// NewManager wires the workflows to their collaborators.
func NewManager(cfg *config.Config, ctl Controller, sel Selector, psk Deriver, dhcp Leaser, log logrus.FieldLogger) *Manager {
	return &Manager{
		libraryPath: cfg.Library,
		confPath:    cfg.WPAConf,
		header:      wpa.Header{Socket: cfg.WPASocket, Group: cfg.Group},
		ctl:         ctl,
		menu:        sel,
		psk:         psk,
		dhcp:        dhcp,
		log:         log,
	}
}

// loadLenient returns the library, or an empty one if it cannot be read.
func (m *Manager) loadLenient() library.Library {
	lib, err := library.Load(m.libraryPath)
	if err != nil {
		if library.IsNotExist(err) {
			m.log.Infof("No saved networks yet (%s)", m.libraryPath)
		} else {
			m.log.Warnf("Continuing with no saved networks: %v", err)
		}
		return library.Library{}
	}
	return lib
}

// scan runs a fresh scan and reconciles it with lib.
func (m *Manager) scan(ctx context.Context, lib library.Library) ([]Network, error) {
	if err := m.ctl.Scan(ctx); err != nil {
		return nil, err
	}
	results, err := m.ctl.ScanResults(ctx)
	if err != nil {
		return nil, err
	}
	nets := Reconcile(results, lib)
	for _, n := range nets {
		if n.PriorESSID != "" {
			m.log.Debugf("%s now broadcasts %q, saved as %q", n.BSSID, n.ESSID, n.PriorESSID)
		}
	}
	return nets, nil
}

func networkItems(nets []Network) []menu.Item {
	items := make([]menu.Item, len(nets))
	for i := range nets {
		items[i] = &nets[i]
	}
	return items
}

func recordItems(recs []library.Record) []menu.Item {
	items := make([]menu.Item, len(recs))
	for i := range recs {
		items[i] = &recs[i]
	}
	return items
}

// save persists lib and regenerates the supplicant configuration from it.
func (m *Manager) save(lib library.Library) error {
	if err := lib.Save(m.libraryPath); err != nil {
		return err
	}
	blocks := make([]wpa.Block, 0, len(lib))
	for _, r := range lib {
		blocks = append(blocks, wpa.Block{BSSID: r.BSSID, SSID: r.ESSID, Password: r.Password, PSK: r.PSK})
	}
	return wpa.WriteConfig(m.confPath, m.header, blocks)
}

// Connect scans, lets the operator choose a network and makes the daemon
// use it, then acquires a lease.
func (m *Manager) Connect(ctx context.Context) error {
	lib := m.loadLenient()
	nets, err := m.scan(ctx, lib)
	if err != nil {
		return err
	}

	if cur, err := m.ctl.Status(ctx); err != nil {
		m.log.Debugf("Unable to read current association: %v", err)
	} else {
		for i := range nets {
			nets[i].Current = cur != "" && strings.EqualFold(nets[i].BSSID, cur)
		}
	}

	n, ok, err := m.menu.Select("connect", networkItems(nets))
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	target := nets[n]

	configured, err := m.ctl.ListNetworks(ctx)
	if err != nil {
		return err
	}
	for _, c := range configured {
		if !strings.EqualFold(c.BSSID, target.BSSID) {
			continue
		}
		m.log.WithFields(logrus.Fields{"essid": target.ESSID, "bssid": target.BSSID, "id": c.ID}).Info("Selecting network")
		if err := m.ctl.SelectNetwork(ctx, c.ID); err != nil {
			return err
		}
		return m.dhcp.Lease(ctx)
	}
	return werr.Errorf(werr.NotConfigured, "connect",
		"%q (%s) is not configured; set a password for it first", target.ESSID, target.BSSID)
}

// SetPassword scans, lets the operator choose a network and saves password
// for it, then has the daemon reload its configuration.
func (m *Manager) SetPassword(ctx context.Context, password string) error {
	lib := m.loadLenient()
	nets, err := m.scan(ctx, lib)
	if err != nil {
		return err
	}

	n, ok, err := m.menu.Select("set password", networkItems(nets))
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	target := nets[n]

	rec, err := m.psk.Derive(ctx, target.BSSID, target.ESSID, password)
	if err != nil {
		return err
	}
	lib.Insert(rec)
	if err := m.save(lib); err != nil {
		return err
	}
	m.log.WithFields(logrus.Fields{"essid": rec.ESSID, "bssid": rec.BSSID}).Info("Saved network")
	return m.ctl.Reconfigure(ctx)
}

// Forget lets the operator choose a saved network and removes it. Unlike
// the other workflows, an unreadable library is an error here.
func (m *Manager) Forget(ctx context.Context) error {
	lib, err := library.Load(m.libraryPath)
	if err != nil {
		return err
	}

	recs := lib.Sorted()
	n, ok, err := m.menu.Select("forget", recordItems(recs))
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	lib.Remove(recs[n].BSSID)
	if err := m.save(lib); err != nil {
		return err
	}
	m.log.WithFields(logrus.Fields{"essid": recs[n].ESSID, "bssid": recs[n].BSSID}).Info("Forgot network")
	return nil
}
