// Copyright 2021 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package main runs the steps wpamenu takes against wpa_supplicant, one at a
// time and with everything printed, to make spotting errors in wifi bugs
// easier. It never changes the supplicant's configuration.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/sirupsen/logrus"
	flag "github.com/spf13/pflag"
	"github.com/u-root/wpamenu/pkg/config"
	"github.com/u-root/wpamenu/pkg/library"
	"github.com/u-root/wpamenu/pkg/wifi"
	"github.com/u-root/wpamenu/pkg/wpa"
	"github.com/vishvananda/netlink"
	"golang.org/x/sys/unix"
)

var (
	configPath = flag.StringP("config", "c", "", "configuration file")
	noScan     = flag.Bool("no-scan", false, "only show cached scan results")
)

func linkState(w io.Writer, iface string) {
	link, err := netlink.LinkByName(iface)
	if err != nil {
		fmt.Fprintf(w, "link %s: %v\n", iface, err)
		return
	}
	a := link.Attrs()
	fmt.Fprintf(w, "link %s: index %d, state %s, flags %v, mac %s\n", a.Name, a.Index, a.OperState, a.Flags, a.HardwareAddr)
	addrs, err := netlink.AddrList(link, netlink.FAMILY_ALL)
	if err != nil {
		fmt.Fprintf(w, "addresses: %v\n", err)
		return
	}
	for _, addr := range addrs {
		fmt.Fprintf(w, "  addr %s\n", addr.IPNet)
	}
}

func dump(ctx context.Context, w io.Writer, c *wpa.Client, cfg *config.Config, scan bool) {
	linkState(w, cfg.Interface)

	if scan {
		fmt.Fprintln(w, "\n== scan")
		if err := c.Scan(ctx); err != nil {
			fmt.Fprintf(w, "scan: %v\n", err)
		}
	}

	for _, q := range []string{"status", "scan_results", "list_networks"} {
		fmt.Fprintf(w, "\n== %s\n", q)
		out, err := c.Query(ctx, q)
		if err != nil {
			fmt.Fprintf(w, "%s: %v\n", q, err)
			continue
		}
		fmt.Fprint(w, out)

		fmt.Fprintf(w, "-- parsed\n")
		switch q {
		case "status":
			fmt.Fprintf(w, "bssid %q\n", wpa.ParseStatus(out))
		case "scan_results":
			lib, err := library.Load(cfg.Library)
			if err != nil {
				fmt.Fprintf(w, "library: %v\n", err)
			}
			for _, n := range wifi.Reconcile(wpa.ParseScanResults(out), lib) {
				fmt.Fprintf(w, "%+v\n", n)
			}
		case "list_networks":
			for _, n := range wpa.ParseNetworkList(out) {
				fmt.Fprintf(w, "%+v\n", n)
			}
		}
	}
}

func main() {
	flag.Parse()

	log := logrus.New()
	log.Level = logrus.DebugLevel
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Warnf("Using default settings: %v", err)
	}

	c := wpa.NewClient(cfg.WPACli, cfg.Interface, cfg.WPASocket)
	c.ScanTimeout = cfg.ScanTimeout
	c.Log = log

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, unix.SIGTERM)
	defer stop()
	dump(ctx, os.Stdout, c, cfg, !*noScan)
}
