// Copyright 2026 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wpa

import (
	"regexp"
	"strconv"
)

const macRE = `(?:[0-9a-fA-F]{2}:){5}[0-9a-fA-F]{2}`

var (
	// RegEx for parsing wpa_cli output. Every pattern is line anchored and
	// none of the field classes may cross a newline.
	//
	//	bssid / frequency / signal level / flags / ssid
	scanRE = regexp.MustCompile(`(?m)^(` + macRE + `)\t(\d+)\t(-?\d+)\t[^\t\n]*\t([^\n]*?)\r?$`)
	//	network id / ssid / bssid / flags
	listRE   = regexp.MustCompile(`(?m)^(\d+)\t[^\t\n]*\t(` + macRE + `)(?:\t|\r?$)`)
	statusRE = regexp.MustCompile(`(?m)^bssid=(` + macRE + `)\r?$`)
)

// ScanResult is one access point line of "scan_results".
type ScanResult struct {
	BSSID     string
	Frequency int
	Level     int
	ESSID     string
}

// ConfiguredNetwork maps a daemon network id to the BSSID it is pinned to.
type ConfiguredNetwork struct {
	ID    int
	BSSID string
}

// ParseScanResults extracts one ScanResult per matching line. The header and
// any other line that does not match is skipped.
func ParseScanResults(out string) []ScanResult {
	var res []ScanResult
	for _, m := range scanRE.FindAllStringSubmatch(out, -1) {
		freq, err := strconv.Atoi(m[2])
		if err != nil {
			continue
		}
		level, err := strconv.Atoi(m[3])
		if err != nil {
			continue
		}
		res = append(res, ScanResult{
			BSSID:     m[1],
			Frequency: freq,
			Level:     level,
			ESSID:     m[4],
		})
	}
	return res
}

// ParseNetworkList extracts the configured networks from "list_networks".
// Networks without a BSSID ("any") are skipped.
func ParseNetworkList(out string) []ConfiguredNetwork {
	var res []ConfiguredNetwork
	for _, m := range listRE.FindAllStringSubmatch(out, -1) {
		id, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		res = append(res, ConfiguredNetwork{ID: id, BSSID: m[2]})
	}
	return res
}

// ParseStatus returns the BSSID the interface is associated with, or "".
func ParseStatus(out string) string {
	m := statusRE.FindStringSubmatch(out)
	if m == nil {
		return ""
	}
	return m[1]
}
