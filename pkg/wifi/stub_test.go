// Copyright 2018 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wifi

import (
	"context"

	"github.com/u-root/wpamenu/pkg/library"
	"github.com/u-root/wpamenu/pkg/menu"
	"github.com/u-root/wpamenu/pkg/wpa"
)

var _ = Controller(&StubController{})

// StubController records the commands it is given.
type StubController struct {
	Results    []wpa.ScanResult
	Configured []wpa.ConfiguredNetwork
	Associated string
	ScanErr    error
	StatusErr  error

	Scans        int
	Selected     []int
	Reconfigured int
}

func (s *StubController) Scan(context.Context) error {
	s.Scans++
	return s.ScanErr
}

func (s *StubController) ScanResults(context.Context) ([]wpa.ScanResult, error) {
	return s.Results, nil
}

func (s *StubController) ListNetworks(context.Context) ([]wpa.ConfiguredNetwork, error) {
	return s.Configured, nil
}

func (s *StubController) Status(context.Context) (string, error) {
	return s.Associated, s.StatusErr
}

func (s *StubController) SelectNetwork(_ context.Context, id int) error {
	s.Selected = append(s.Selected, id)
	return nil
}

func (s *StubController) Reconfigure(context.Context) error {
	s.Reconfigured++
	return nil
}

// StubSelector picks a fixed line; a negative Pick selects nothing.
type StubSelector struct {
	Pick  int
	Lines []string
}

func (s *StubSelector) Select(_ string, items []menu.Item) (int, bool, error) {
	s.Lines = menu.Lines(items)
	if s.Pick < 0 || s.Pick >= len(items) {
		return 0, false, nil
	}
	return s.Pick, true, nil
}

// StubDeriver uses a fixed key.
type StubDeriver struct {
	PSK string
	Err error
}

func (s StubDeriver) Derive(_ context.Context, bssid, essid, password string) (library.Record, error) {
	if s.Err != nil {
		return library.Record{}, s.Err
	}
	return library.Record{BSSID: bssid, ESSID: essid, Password: password, PSK: s.PSK}, nil
}

// StubLeaser counts leases.
type StubLeaser struct {
	Leases int
}

func (s *StubLeaser) Lease(context.Context) error {
	s.Leases++
	return nil
}
