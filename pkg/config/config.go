// Copyright 2026 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config builds wpamenu's settings from defaults and an optional
// TOML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// EnvConfig names a config file that overrides the search path.
const EnvConfig = "WPAMENU_CONFIG"

// Derivation and DHCP backends.
const (
	External = "external"
	Builtin  = "builtin"
	Native   = "native"
)

// MaxDHCPRetry bounds dhcp_retry.
const MaxDHCPRetry = 10

// Config holds every setting. It is built once in main and handed to the
// components that need it.
type Config struct {
	// Interface is the wireless interface. Default wlan0.
	Interface string
	// Library of saved networks. Default <confdir>/wpamenu_lib.toml.
	Library string
	// WPASocket is wpa_supplicant's control socket directory.
	WPASocket string
	// WPACli is the wpa_cli binary.
	WPACli string
	// WPAPassphrase is the wpa_passphrase binary.
	WPAPassphrase string
	// DHClient is the dhclient binary.
	DHClient string
	// Sudo elevates DHClient.
	Sudo string
	// WPAConf is the generated wpa_supplicant configuration.
	// Default <confdir>/wpamenu_wpa.conf.
	WPAConf string
	// Askpass, if set, is exported as SUDO_ASKPASS.
	Askpass string
	// Group may use the control socket. Default netdev.
	Group string
	// ScanTimeout bounds waiting for scan results.
	ScanTimeout time.Duration
	// Derive is External (wpa_passphrase) or Builtin.
	Derive string
	// DHCP is External (sudo dhclient) or Native.
	DHCP        string
	DHCPTimeout time.Duration
	DHCPRetry   int
	// Menu is a dmenu style command; empty uses the terminal menu.
	Menu []string
	// MenuPromptFlag passes the prompt to Menu.
	MenuPromptFlag string
	Verbose        bool
}

// file is the on-disk form; absent keys keep their defaults.
type file struct {
	Interface      *string  `toml:"interface"`
	Library        *string  `toml:"library"`
	WPASocket      *string  `toml:"wpa_socket"`
	WPACli         *string  `toml:"wpa_cli"`
	WPAPassphrase  *string  `toml:"wpa_passphrase"`
	DHClient       *string  `toml:"dhclient"`
	Sudo           *string  `toml:"sudo"`
	WPAConf        *string  `toml:"wpa_conf"`
	Askpass        *string  `toml:"askpass"`
	Group          *string  `toml:"group"`
	ScanTimeout    *int     `toml:"scan_timeout"`
	Derive         *string  `toml:"derive"`
	DHCP           *string  `toml:"dhcp"`
	DHCPTimeout    *int     `toml:"dhcp_timeout"`
	DHCPRetry      *int     `toml:"dhcp_retry"`
	Menu           []string `toml:"menu"`
	MenuPromptFlag *string  `toml:"menu_prompt_flag"`
	Verbose        *bool    `toml:"verbose"`
}

// Dir returns $XDG_CONFIG_HOME, falling back to $HOME/.config.
func Dir() (string, error) {
	if d := os.Getenv("XDG_CONFIG_HOME"); d != "" {
		return d, nil
	}
	if h := os.Getenv("HOME"); h != "" {
		return filepath.Join(h, ".config"), nil
	}
	return "", errors.New("unable to determine configuration directory")
}

// Default returns the built-in settings.
func Default() *Config {
	dir, err := Dir()
	if err != nil {
		dir = "."
	}
	return &Config{
		Interface:     "wlan0",
		Library:       filepath.Join(dir, "wpamenu_lib.toml"),
		WPASocket:     "/var/run/wpa_supplicant",
		WPACli:        "/usr/sbin/wpa_cli",
		WPAPassphrase: "wpa_passphrase",
		DHClient:      "/usr/sbin/dhclient",
		Sudo:          "sudo",
		WPAConf:       filepath.Join(dir, "wpamenu_wpa.conf"),
		Group:         "netdev",
		ScanTimeout:   30 * time.Second,
		Derive:        External,
		DHCP:          External,
		DHCPTimeout:   15 * time.Second,
		DHCPRetry:     5,
	}
}

// Load returns the defaults overridden by the first config file found:
// explicit, then $WPAMENU_CONFIG, then <confdir>/wpamenu.toml. The returned
// Config is always usable; a non-nil error reports a file that exists but
// could not be used.
func Load(explicit string) (*Config, error) {
	cfg := Default()

	var candidates []string
	if explicit != "" {
		candidates = append(candidates, explicit)
	}
	if p := os.Getenv(EnvConfig); p != "" {
		candidates = append(candidates, p)
	}
	if dir, err := Dir(); err == nil {
		candidates = append(candidates, filepath.Join(dir, "wpamenu.toml"))
	}

	for _, p := range candidates {
		b, err := os.ReadFile(p)
		if errors.Is(err, os.ErrNotExist) && p != explicit {
			continue
		}
		if err != nil {
			return cfg, fmt.Errorf("reading config %q: %v", p, err)
		}
		var f file
		if err := toml.Unmarshal(b, &f); err != nil {
			return cfg, fmt.Errorf("decoding config %q: %v", p, err)
		}
		if err := cfg.apply(&f); err != nil {
			return Default(), fmt.Errorf("config %q: %v", p, err)
		}
		return cfg, nil
	}
	return cfg, nil
}

func (c *Config) apply(f *file) error {
	setString(&c.Interface, f.Interface)
	setString(&c.Library, f.Library)
	setString(&c.WPASocket, f.WPASocket)
	setString(&c.WPACli, f.WPACli)
	setString(&c.WPAPassphrase, f.WPAPassphrase)
	setString(&c.DHClient, f.DHClient)
	setString(&c.Sudo, f.Sudo)
	setString(&c.WPAConf, f.WPAConf)
	setString(&c.Askpass, f.Askpass)
	setString(&c.Group, f.Group)
	setString(&c.Derive, f.Derive)
	setString(&c.DHCP, f.DHCP)
	setString(&c.MenuPromptFlag, f.MenuPromptFlag)
	if f.ScanTimeout != nil {
		c.ScanTimeout = time.Duration(*f.ScanTimeout) * time.Second
	}
	if f.DHCPTimeout != nil {
		c.DHCPTimeout = time.Duration(*f.DHCPTimeout) * time.Second
	}
	if f.DHCPRetry != nil {
		c.DHCPRetry = *f.DHCPRetry
	}
	if f.Menu != nil {
		c.Menu = f.Menu
	}
	if f.Verbose != nil {
		c.Verbose = *f.Verbose
	}

	switch c.Derive {
	case External, Builtin:
	default:
		return fmt.Errorf("derive must be %q or %q, not %q", External, Builtin, c.Derive)
	}
	switch c.DHCP {
	case External, Native:
	default:
		return fmt.Errorf("dhcp must be %q or %q, not %q", External, Native, c.DHCP)
	}
	// The native client waits DHCPTimeout << DHCPRetry in total.
	if c.DHCPRetry < 0 || c.DHCPRetry > MaxDHCPRetry {
		return fmt.Errorf("dhcp_retry must be 0..%d, not %d", MaxDHCPRetry, c.DHCPRetry)
	}
	if c.DHCPTimeout <= 0 {
		return fmt.Errorf("dhcp_timeout must be positive, not %v", c.DHCPTimeout)
	}
	if c.ScanTimeout < 0 {
		return fmt.Errorf("scan_timeout must not be negative, not %v", c.ScanTimeout)
	}
	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
