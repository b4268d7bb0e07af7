// Copyright 2026 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package wpa drives wpa_supplicant through wpa_cli and renders its
// configuration file.
package wpa

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"
	"github.com/u-root/wpamenu/pkg/werr"
	"golang.org/x/sys/unix"
)

// Event markers wpa_cli prints while a scan is running.
const (
	ScanResultsEvent = "CTRL-EVENT-SCAN-RESULTS"
	ScanFailedEvent  = "CTRL-EVENT-SCAN-FAILED"
)

// How long a session gets to exit after "quit" or SIGTERM.
const exitGrace = 2 * time.Second

// Client runs wpa_cli against one interface and control socket directory.
type Client struct {
	// Path is the wpa_cli binary.
	Path      string
	Interface string
	Socket    string
	// ScanTimeout bounds an interactive scan. Zero means no bound beyond
	// the caller's context.
	ScanTimeout time.Duration

	Log logrus.FieldLogger
}

// NewClient returns a Client with a logger that discards output.
func NewClient(path, iface, socket string) *Client {
	l := logrus.New()
	l.Out = io.Discard
	return &Client{Path: path, Interface: iface, Socket: socket, Log: l}
}

func (c *Client) command(ctx context.Context, args ...string) *exec.Cmd {
	base := []string{"-i", c.Interface, "-p", c.Socket}
	cmd := exec.CommandContext(ctx, c.Path, append(base, args...)...)
	c.Log.Debugf("Executing wpa_cli command: %v", cmd.Args)
	return cmd
}

// Scan starts an interactive session, requests a scan and blocks until the
// daemon reports the scan finished. The session is always torn down before
// Scan returns.
//
// A failed read or write on the session is a werr.IO error. A scan failure
// event, output ending early or the ScanTimeout deadline is werr.Protocol.
func (c *Client) Scan(ctx context.Context) (err error) {
	const op = "wpa_cli scan"

	var cancel context.CancelFunc
	if c.ScanTimeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, c.ScanTimeout)
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}
	defer cancel()

	// The session process is not tied to ctx; teardown below decides how
	// it ends.
	cmd := c.command(context.Background())
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return werr.E(werr.IO, op, err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return werr.E(werr.IO, op, err)
	}
	if err := cmd.Start(); err != nil {
		return werr.Errorf(werr.IO, op, "unable to execute %q: %v", c.Path, err)
	}

	done := false
	defer func() {
		if terr := c.teardown(cmd, stdin, done); terr != nil {
			if err != nil {
				err = multierror.Append(err, terr)
			} else {
				err = werr.E(werr.IO, op, terr)
			}
		}
	}()

	if _, err := io.WriteString(stdin, "scan\n"); err != nil {
		return werr.Errorf(werr.IO, op, "writing to wpa_cli: %v", err)
	}

	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		s := bufio.NewScanner(stdout)
		for s.Scan() {
			select {
			case lines <- s.Text():
			case <-ctx.Done():
				return
			}
		}
		readErr <- s.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return werr.Errorf(werr.Protocol, op, "no scan result before deadline: %v", ctx.Err())
		case err := <-readErr:
			if err != nil {
				return werr.Errorf(werr.IO, op, "reading wpa_cli output: %v", err)
			}
			return werr.Errorf(werr.Protocol, op, "end of wpa_cli output before %s", ScanResultsEvent)
		case line := <-lines:
			switch {
			case strings.Contains(line, ScanResultsEvent):
				c.Log.Debugf("wpa_cli: %s", line)
				if _, err := io.WriteString(stdin, "quit\n"); err != nil {
					return werr.Errorf(werr.IO, op, "writing to wpa_cli: %v", err)
				}
				done = true
				return nil
			case strings.Contains(line, ScanFailedEvent):
				c.Log.Debugf("wpa_cli: %s", line)
				return werr.Errorf(werr.Protocol, op, "wpa_cli scan failed")
			}
		}
	}
}

// teardown ends the session. After a clean "quit" the process is given
// exitGrace to leave on its own; otherwise it is asked with SIGTERM and
// finally killed.
func (c *Client) teardown(cmd *exec.Cmd, stdin io.Closer, quit bool) error {
	stdin.Close()

	waited := make(chan error, 1)
	go func() { waited <- cmd.Wait() }()

	if !quit {
		if err := cmd.Process.Signal(unix.SIGTERM); err != nil {
			c.Log.Debugf("Signalling wpa_cli: %v", err)
		}
	}
	select {
	case err := <-waited:
		var ee *exec.ExitError
		if errors.As(err, &ee) {
			// Exit status of an interactive session carries no meaning.
			return nil
		}
		return err
	case <-time.After(exitGrace):
	}
	if err := cmd.Process.Kill(); err != nil {
		return fmt.Errorf("killing wpa_cli: %v", err)
	}
	<-waited
	return nil
}

// Query runs wpa_cli non-interactively and returns its output as text.
func (c *Client) Query(ctx context.Context, args ...string) (string, error) {
	op := "wpa_cli " + strings.Join(args, " ")

	var stderr bytes.Buffer
	cmd := c.command(ctx, args...)
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		var ee *exec.ExitError
		if errors.As(err, &ee) {
			return "", werr.Errorf(werr.IO, op, "%v: %s", err, strings.TrimSpace(stderr.String()))
		}
		return "", werr.Errorf(werr.IO, op, "unable to execute %q: %v", c.Path, err)
	}
	if !utf8.Valid(out) {
		return "", werr.Errorf(werr.Decode, op, "output is not UTF-8")
	}
	return string(out), nil
}

// Run runs wpa_cli and discards its output. Only a failure to run the
// command is an error: some wpa_cli versions exit non-zero after a
// successful reconfigure.
func (c *Client) Run(ctx context.Context, args ...string) error {
	op := "wpa_cli " + strings.Join(args, " ")

	cmd := c.command(ctx, args...)
	if err := cmd.Run(); err != nil {
		var ee *exec.ExitError
		if errors.As(err, &ee) {
			c.Log.Debugf("%s: %v (ignored)", op, err)
			return nil
		}
		return werr.Errorf(werr.IO, op, "unable to execute %q: %v", c.Path, err)
	}
	return nil
}

// ScanResults returns the parsed results of the last scan.
func (c *Client) ScanResults(ctx context.Context) ([]ScanResult, error) {
	out, err := c.Query(ctx, "scan_results")
	if err != nil {
		return nil, err
	}
	res := ParseScanResults(out)
	c.Log.Debugf("Parsed %d scan results", len(res))
	return res, nil
}

// ListNetworks returns the networks the daemon has configured.
func (c *Client) ListNetworks(ctx context.Context) ([]ConfiguredNetwork, error) {
	out, err := c.Query(ctx, "list_networks")
	if err != nil {
		return nil, err
	}
	res := ParseNetworkList(out)
	c.Log.Debugf("Parsed %d configured networks", len(res))
	return res, nil
}

// Status returns the BSSID the interface is associated with, or "".
func (c *Client) Status(ctx context.Context) (string, error) {
	out, err := c.Query(ctx, "status")
	if err != nil {
		return "", err
	}
	return ParseStatus(out), nil
}

// SelectNetwork makes the daemon use configured network id exclusively.
func (c *Client) SelectNetwork(ctx context.Context, id int) error {
	return c.Run(ctx, "select_network", strconv.Itoa(id))
}

// Reconfigure makes the daemon reload its configuration file.
func (c *Client) Reconfigure(ctx context.Context) error {
	return c.Run(ctx, "reconfigure")
}
