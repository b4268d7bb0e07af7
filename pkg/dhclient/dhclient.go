// Copyright 2019 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package dhclient acquires a lease on the wireless interface once the
// supplicant has associated.
package dhclient

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/u-root/u-root/pkg/dhclient"
	"github.com/u-root/wpamenu/pkg/werr"
	"github.com/vishvananda/netlink"
	"golang.org/x/sys/unix"
)

const op = "dhcp"

// maxRetry keeps Timeout << Retry from overflowing.
const maxRetry = 16

// Sudo runs an external dhclient as root through sudo -A.
type Sudo struct {
	// Sudo is the elevation command.
	Sudo string
	// DHClient is the dhclient binary.
	DHClient string
	// Interface is passed to dhclient; empty lets it pick.
	Interface string
	// Askpass, if set, is exported as SUDO_ASKPASS.
	Askpass string
	Log     logrus.FieldLogger
}

func (s *Sudo) command(ctx context.Context) *exec.Cmd {
	args := []string{"-A", s.DHClient}
	if s.Interface != "" {
		args = append(args, s.Interface)
	}
	cmd := exec.CommandContext(ctx, s.Sudo, args...)
	cmd.Stdin, cmd.Stdout, cmd.Stderr = os.Stdin, os.Stdout, os.Stderr
	cmd.Env = os.Environ()
	if s.Askpass != "" {
		if err := unix.Access(s.Askpass, unix.X_OK); err != nil {
			s.Log.Warnf("askpass %q is not executable: %v", s.Askpass, err)
		}
		cmd.Env = append(cmd.Env, "SUDO_ASKPASS="+s.Askpass)
	}
	return cmd
}

// Lease runs dhclient and waits for it to exit.
func (s *Sudo) Lease(ctx context.Context) error {
	cmd := s.command(ctx)
	s.Log.Debugf("Running %v", cmd.Args)
	err := cmd.Run()
	var ee *exec.ExitError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &ee):
		return werr.Errorf(werr.IO, op, "%s as root: %v", s.DHClient, err)
	default:
		return werr.Errorf(werr.IO, op, "invoking %s: %v", s.Sudo, err)
	}
}

// Native speaks DHCP on the interface directly. It needs CAP_NET_ADMIN.
type Native struct {
	Interface string
	// Timeout is the per-packet timeout.
	Timeout time.Duration
	Retry   int
	Log     logrus.FieldLogger
}

// Lease requests an IPv4 lease and configures the interface with it.
func (n *Native) Lease(ctx context.Context) error {
	if n.Retry < 0 || n.Retry > maxRetry || n.Timeout <= 0 {
		return werr.Errorf(werr.IO, op, "bad timeout %v or retry count %d", n.Timeout, n.Retry)
	}
	link, err := netlink.LinkByName(n.Interface)
	if err != nil {
		return werr.Errorf(werr.IO, op, "can't find interface %q: %v", n.Interface, err)
	}

	ctx, cancel := context.WithTimeout(ctx, n.Timeout*time.Duration(1<<uint(n.Retry)))
	defer cancel()

	c := dhclient.Config{
		Timeout: n.Timeout,
		Retries: n.Retry,
	}
	if l, ok := n.Log.(*logrus.Logger); ok && l.IsLevelEnabled(logrus.DebugLevel) {
		c.LogLevel = dhclient.LogSummary
	}
	r := dhclient.SendRequests(ctx, []netlink.Link{link}, true, false, c, 30*time.Second)

	var failure error
	for {
		select {
		case <-ctx.Done():
			if failure == nil {
				failure = ctx.Err()
			}
			return werr.Errorf(werr.IO, op, "no lease on %s: %v", n.Interface, failure)

		case result, ok := <-r:
			if !ok {
				if failure == nil {
					failure = fmt.Errorf("no response")
				}
				return werr.Errorf(werr.IO, op, "no lease on %s: %v", n.Interface, failure)
			}
			name := result.Interface.Attrs().Name
			if result.Err != nil {
				n.Log.Debugf("Could not configure %s: %v", name, result.Err)
				failure = result.Err
				continue
			}
			if err := result.Lease.Configure(); err != nil {
				n.Log.Debugf("Could not configure %s: %v", name, err)
				failure = err
				continue
			}
			n.Log.Infof("Configured %s with %s", name, result.Lease)
			return nil
		}
	}
}
