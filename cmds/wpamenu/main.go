// Copyright 2026 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// wpamenu chooses a wireless network from a menu and has wpa_supplicant use
// it.
//
// Synopsis:
//
//	wpamenu [-v] [-c FILE] [-p PASSWORD | -f]
//
// With no option it scans, offers the networks in range and connects to the
// chosen one. -p saves PASSWORD for the chosen network and -f forgets a
// saved network.
//
// wpa_supplicant must be running with the generated configuration:
//
//	wpa_supplicant -B -i <interface> -c <wpa_conf>
//
// A sudoers rule such as
//
//	%netdev ALL = NOPASSWD: /usr/sbin/dhclient
//
// lets the lease be acquired without a password prompt. Otherwise set
// askpass in the configuration file.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/sirupsen/logrus"
	flag "github.com/spf13/pflag"
	"github.com/u-root/wpamenu/pkg/config"
	"github.com/u-root/wpamenu/pkg/dhclient"
	"github.com/u-root/wpamenu/pkg/menu"
	"github.com/u-root/wpamenu/pkg/wifi"
	"github.com/u-root/wpamenu/pkg/wpa"
	"golang.org/x/sys/unix"
)

const usage = `usage: wpamenu [ OPTION ] [ ARG ]

where OPTION can be
    -p, --password ARG  set selected network password to ARG
    -f, --forget        forget selected network
    -c, --config FILE   read settings from FILE
    -v, --verbose       verbose output
`

// Exit statuses.
const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

type action int

const (
	connect action = iota
	setPassword
	forget
)

type options struct {
	action   action
	password string
	config   string
	verbose  bool
	help     bool
}

type usageError struct {
	msg string
}

func (u *usageError) Error() string {
	return u.msg
}

func parseArgs(args []string) (*options, error) {
	fs := flag.NewFlagSet("wpamenu", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Usage = func() {}

	o := &options{}
	fs.StringVarP(&o.password, "password", "p", "", "set selected network password")
	forgetFlag := fs.BoolP("forget", "f", false, "forget selected network")
	fs.StringVarP(&o.config, "config", "c", "", "configuration file")
	fs.BoolVarP(&o.verbose, "verbose", "v", false, "verbose output")
	fs.BoolVarP(&o.help, "help", "h", false, "show usage")

	if err := fs.Parse(args); err != nil {
		return nil, &usageError{msg: err.Error()}
	}
	if fs.NArg() > 0 {
		return nil, &usageError{msg: fmt.Sprintf("unexpected argument %q", fs.Arg(0))}
	}
	switch {
	case fs.Changed("password") && *forgetFlag:
		return nil, &usageError{msg: "-p and -f are mutually exclusive"}
	case fs.Changed("password"):
		o.action = setPassword
	case *forgetFlag:
		o.action = forget
	}
	return o, nil
}

func newLogger(w io.Writer, verbose bool) *logrus.Logger {
	l := logrus.New()
	l.Out = w
	l.Formatter = &logrus.TextFormatter{DisableTimestamp: true}
	if verbose {
		l.Level = logrus.DebugLevel
	}
	return l
}

func newManager(cfg *config.Config, log *logrus.Logger) *wifi.Manager {
	ctl := wpa.NewClient(cfg.WPACli, cfg.Interface, cfg.WPASocket)
	ctl.ScanTimeout = cfg.ScanTimeout
	ctl.Log = log

	var sel wifi.Selector = menu.Term{Title: "wpamenu"}
	if len(cfg.Menu) > 0 {
		sel = menu.External{Command: cfg.Menu, PromptFlag: cfg.MenuPromptFlag}
	}

	var psk wifi.Deriver = wifi.Passphrase{Path: cfg.WPAPassphrase}
	if cfg.Derive == config.Builtin {
		psk = wifi.PBKDF2{}
	}

	var lease wifi.Leaser = &dhclient.Sudo{
		Sudo:      cfg.Sudo,
		DHClient:  cfg.DHClient,
		Interface: cfg.Interface,
		Askpass:   cfg.Askpass,
		Log:       log,
	}
	if cfg.DHCP == config.Native {
		lease = &dhclient.Native{
			Interface: cfg.Interface,
			Timeout:   cfg.DHCPTimeout,
			Retry:     cfg.DHCPRetry,
			Log:       log,
		}
	}

	return wifi.NewManager(cfg, ctl, sel, psk, lease, log)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	o, err := parseArgs(args)
	var ue *usageError
	if errors.As(err, &ue) {
		fmt.Fprintf(stderr, "wpamenu: %v\n%s", ue, usage)
		return exitUsage
	}
	if o.help {
		fmt.Fprint(stdout, usage)
		return exitOK
	}

	log := newLogger(stderr, o.verbose)
	cfg, err := config.Load(o.config)
	if err != nil {
		log.Warnf("Using default settings: %v", err)
	}
	if cfg.Verbose {
		log.Level = logrus.DebugLevel
	}
	log.Debugf("Settings: %+v", *cfg)

	m := newManager(cfg, log)
	switch o.action {
	case setPassword:
		err = m.SetPassword(ctx, o.password)
	case forget:
		err = m.Forget(ctx)
	default:
		err = m.Connect(ctx)
	}
	if err != nil {
		log.Error(err)
		return exitError
	}
	return exitOK
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, unix.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
