// Copyright 2026 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wifi

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/u-root/wpamenu/pkg/config"
	"github.com/u-root/wpamenu/pkg/library"
	"github.com/u-root/wpamenu/pkg/tlog"
	"github.com/u-root/wpamenu/pkg/werr"
	"github.com/u-root/wpamenu/pkg/wpa"
)

const (
	office    = "11:22:33:44:55:66"
	emptyConf = "update_config=1\nctrl_interface=DIR=/var/run/wpa_supplicant GROUP=netdev\n"
)

type fixture struct {
	cfg  *config.Config
	ctl  *StubController
	sel  *StubSelector
	psk  StubDeriver
	dhcp *StubLeaser
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Library = filepath.Join(dir, "lib.toml")
	cfg.WPAConf = filepath.Join(dir, "wpa.conf")
	cfg.WPASocket = "/var/run/wpa_supplicant"
	cfg.Group = "netdev"
	return &fixture{
		cfg: cfg,
		ctl: &StubController{
			Results: []wpa.ScanResult{
				{BSSID: office, Frequency: 5180, Level: -70, ESSID: "Office"},
				{BSSID: home, Frequency: 2412, Level: -40, ESSID: "HomeNet"},
			},
		},
		sel:  &StubSelector{Pick: -1},
		psk:  StubDeriver{PSK: "0123456789abcdef"},
		dhcp: &StubLeaser{},
	}
}

func (f *fixture) manager(t *testing.T) *Manager {
	return NewManager(f.cfg, f.ctl, f.sel, f.psk, f.dhcp, tlog.New(t))
}

func (f *fixture) writeLibrary(t *testing.T, lib library.Library) {
	t.Helper()
	require.NoError(t, lib.Save(f.cfg.Library))
}

func TestConnectNothingSelected(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.manager(t).Connect(context.Background()))
	assert.Equal(t, 1, f.ctl.Scans)
	assert.Len(t, f.sel.Lines, 2)
	assert.Empty(t, f.ctl.Selected)
	assert.Zero(t, f.dhcp.Leases)
}

func TestConnectConfigured(t *testing.T) {
	f := newFixture(t)
	f.ctl.Configured = []wpa.ConfiguredNetwork{{ID: 0, BSSID: office}, {ID: 3, BSSID: "AA:BB:CC:DD:EE:FF"}}
	f.sel.Pick = 0 // strongest first

	require.NoError(t, f.manager(t).Connect(context.Background()))
	assert.Equal(t, []int{3}, f.ctl.Selected)
	assert.Equal(t, 1, f.dhcp.Leases)
}

func TestConnectNotConfigured(t *testing.T) {
	f := newFixture(t)
	f.ctl.Configured = []wpa.ConfiguredNetwork{{ID: 0, BSSID: office}}
	f.sel.Pick = 0

	err := f.manager(t).Connect(context.Background())
	require.Error(t, err)
	assert.True(t, werr.Is(err, werr.NotConfigured), "got %v", err)
	assert.Contains(t, err.Error(), "HomeNet")
	assert.Empty(t, f.ctl.Selected)
	assert.Zero(t, f.dhcp.Leases)
}

func TestConnectMarks(t *testing.T) {
	f := newFixture(t)
	f.ctl.Associated = home
	f.writeLibrary(t, library.Library{office: {BSSID: office, ESSID: "Office", Password: "pw", PSK: "ff"}})

	require.NoError(t, f.manager(t).Connect(context.Background()))
	require.Len(t, f.sel.Lines, 2)
	assert.Equal(t, ">  HomeNet  -40 dBm  2412  "+home, f.sel.Lines[0])
	assert.Equal(t, " * Office   -70 dBm  5180  "+office, f.sel.Lines[1])
}

func TestConnectStatusErrorIgnored(t *testing.T) {
	f := newFixture(t)
	f.ctl.StatusErr = errors.New("no status")
	require.NoError(t, f.manager(t).Connect(context.Background()))
	assert.Len(t, f.sel.Lines, 2)
}

func TestConnectScanError(t *testing.T) {
	f := newFixture(t)
	f.ctl.ScanErr = werr.Errorf(werr.Protocol, "scan", "scan failed")
	err := f.manager(t).Connect(context.Background())
	assert.True(t, werr.Is(err, werr.Protocol), "got %v", err)
	assert.Nil(t, f.sel.Lines)
}

func TestSetPassword(t *testing.T) {
	f := newFixture(t)
	f.sel.Pick = 0

	m := f.manager(t)
	require.NoError(t, m.SetPassword(context.Background(), "hunter22"))
	assert.Equal(t, 1, f.ctl.Reconfigured)

	lib, err := library.Load(f.cfg.Library)
	require.NoError(t, err)
	assert.Equal(t, library.Library{
		home: {BSSID: home, ESSID: "HomeNet", Password: "hunter22", PSK: "0123456789abcdef"},
	}, lib)

	conf, err := os.ReadFile(f.cfg.WPAConf)
	require.NoError(t, err)
	assert.Equal(t, emptyConf+`network={
	bssid=aa:bb:cc:dd:ee:ff
	ssid="HomeNet"
	#psk="hunter22"
	psk=0123456789abcdef
}
`, string(conf))
	fi, err := os.Stat(f.cfg.WPAConf)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), fi.Mode().Perm())

	// Setting it again replaces the record.
	require.NoError(t, m.SetPassword(context.Background(), "correct horse"))
	lib, err = library.Load(f.cfg.Library)
	require.NoError(t, err)
	require.Len(t, lib, 1)
	assert.Equal(t, "correct horse", lib[home].Password)
	assert.Equal(t, 2, f.ctl.Reconfigured)
}

func TestSetPasswordKeepsOthers(t *testing.T) {
	f := newFixture(t)
	f.writeLibrary(t, library.Library{"de:ad:be:ef:00:01": {BSSID: "de:ad:be:ef:00:01", ESSID: "Cafe", Password: "latte", PSK: "aa"}})
	f.sel.Pick = 1

	require.NoError(t, f.manager(t).SetPassword(context.Background(), "office-pw"))
	lib, err := library.Load(f.cfg.Library)
	require.NoError(t, err)
	assert.Len(t, lib, 2)
	assert.Equal(t, "Office", lib[office].ESSID)
	assert.Equal(t, "Cafe", lib["de:ad:be:ef:00:01"].ESSID)
}

func TestSetPasswordDeriveError(t *testing.T) {
	f := newFixture(t)
	f.sel.Pick = 0
	f.psk.Err = werr.Errorf(werr.Derivation, "derive", "no psk")

	err := f.manager(t).SetPassword(context.Background(), "x")
	assert.True(t, werr.Is(err, werr.Derivation), "got %v", err)
	assert.Zero(t, f.ctl.Reconfigured)
	assert.NoFileExists(t, f.cfg.Library)
	assert.NoFileExists(t, f.cfg.WPAConf)
}

func TestSetPasswordCorruptLibrary(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, os.WriteFile(f.cfg.Library, []byte("[[[not toml"), 0o600))
	f.sel.Pick = 0

	require.NoError(t, f.manager(t).SetPassword(context.Background(), "hunter22"))
	lib, err := library.Load(f.cfg.Library)
	require.NoError(t, err)
	assert.Len(t, lib, 1)
}

func TestSetPasswordNothingSelected(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.manager(t).SetPassword(context.Background(), "hunter22"))
	assert.Zero(t, f.ctl.Reconfigured)
	assert.NoFileExists(t, f.cfg.Library)
}

func TestForget(t *testing.T) {
	f := newFixture(t)
	f.writeLibrary(t, library.Library{home: {BSSID: home, ESSID: "HomeNet", Password: "pw", PSK: "ff"}})
	f.sel.Pick = 0

	require.NoError(t, f.manager(t).Forget(context.Background()))
	assert.Equal(t, []string{"HomeNet  " + home}, f.sel.Lines)
	assert.Zero(t, f.ctl.Scans)

	lib, err := library.Load(f.cfg.Library)
	require.NoError(t, err)
	assert.Empty(t, lib)
	conf, err := os.ReadFile(f.cfg.WPAConf)
	require.NoError(t, err)
	assert.Equal(t, emptyConf, string(conf))
}

func TestForgetSorted(t *testing.T) {
	f := newFixture(t)
	f.writeLibrary(t, library.Library{
		office: {BSSID: office, ESSID: "Office"},
		home:   {BSSID: home, ESSID: "HomeNet"},
	})
	f.sel.Pick = 1

	require.NoError(t, f.manager(t).Forget(context.Background()))
	assert.Equal(t, []string{"HomeNet  " + home, "Office   " + office}, f.sel.Lines)
	lib, err := library.Load(f.cfg.Library)
	require.NoError(t, err)
	assert.Contains(t, lib, home)
	assert.NotContains(t, lib, office)
}

func TestForgetMissingLibrary(t *testing.T) {
	f := newFixture(t)
	f.sel.Pick = 0
	err := f.manager(t).Forget(context.Background())
	require.Error(t, err)
	assert.True(t, werr.Is(err, werr.IO), "got %v", err)
	assert.True(t, library.IsNotExist(err))
	assert.Nil(t, f.sel.Lines)
}

func TestForgetCorruptLibrary(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, os.WriteFile(f.cfg.Library, []byte("[[[not toml"), 0o600))
	err := f.manager(t).Forget(context.Background())
	assert.True(t, werr.Is(err, werr.Persistence), "got %v", err)
	assert.NoFileExists(t, f.cfg.WPAConf)
}
