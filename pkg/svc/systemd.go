// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package svc queries systemd about the cluster daemons and notifies systemd
// when pcsd is ready.
package svc

import (
	"context"
	"fmt"
	"io"

	"github.com/oalbrigt/pcs/pkg/cmdutil"
	"golang.org/x/sync/errgroup"
)

// Status is the systemd active state of a unit.
type Status string

const (
	StatusRunning Status = "active"
	StatusStopped Status = "inactive"
)

// Systemd runs systemctl through a cmdutil.Runner.
type Systemd struct {
	Runner    cmdutil.Runner
	Systemctl string
}

func (s *Systemd) systemctl() string {
	if s.Systemctl == "" {
		return "systemctl"
	}
	return s.Systemctl
}

func unitName(service string) string {
	return service + ".service"
}

func (s *Systemd) run(ctx context.Context, args ...string) (bool, error) {
	res, err := s.Runner.Run(ctx, s.systemctl(), args...)
	if err != nil {
		return false, err
	}
	return res.Success(), nil
}

// IsActive reports whether service is running.
func (s *Systemd) IsActive(ctx context.Context, service string) (bool, error) {
	return s.run(ctx, "is-active", unitName(service))
}

// IsEnabled reports whether service starts on boot.
func (s *Systemd) IsEnabled(ctx context.Context, service string) (bool, error) {
	return s.run(ctx, "is-enabled", unitName(service))
}

// Status returns whether service is running.
func (s *Systemd) Status(ctx context.Context, service string) (Status, error) {
	active, err := s.IsActive(ctx, service)
	if err != nil {
		return "", err
	}
	if active {
		return StatusRunning, nil
	}
	return StatusStopped, nil
}

// Daemon is a service listed in the daemon status.
type Daemon struct {
	Name string
	// AlwaysShown daemons are listed even when neither running nor enabled.
	AlwaysShown bool
}

// ClusterDaemons are the daemons shown by "pcs status".
var ClusterDaemons = []Daemon{
	{Name: "corosync", AlwaysShown: true},
	{Name: "pacemaker", AlwaysShown: true},
	{Name: "pacemaker_remote"},
	{Name: "pcsd", AlwaysShown: true},
	{Name: "sbd"},
}

// DaemonStatus is the state of one daemon.
type DaemonStatus struct {
	Name    string
	Running bool
	Enabled bool
	// Err is set when systemctl could not be run.
	Err error
}

func (d DaemonStatus) String() string {
	active, enabled := "inactive", "disabled"
	if d.Running {
		active = "active"
	}
	if d.Enabled {
		enabled = "enabled"
	}
	return fmt.Sprintf("%s: %s/%s", d.Name, active, enabled)
}

// DaemonStatuses queries daemons concurrently and returns their states in
// the order given.
func (s *Systemd) DaemonStatuses(ctx context.Context, daemons []Daemon) []DaemonStatus {
	out := make([]DaemonStatus, len(daemons))
	var g errgroup.Group
	for i, d := range daemons {
		g.Go(func() error {
			st := DaemonStatus{Name: d.Name}
			st.Running, st.Err = s.IsActive(ctx, d.Name)
			if st.Err == nil {
				st.Enabled, st.Err = s.IsEnabled(ctx, d.Name)
			}
			out[i] = st
			return nil
		})
	}
	g.Wait()
	return out
}

// WriteDaemonStatus prints the "Daemon Status:" block. Daemons which could
// not be queried are skipped.
func (s *Systemd) WriteDaemonStatus(ctx context.Context, w io.Writer, prefix string) {
	fmt.Fprintln(w, "Daemon Status:")
	for i, st := range s.DaemonStatuses(ctx, ClusterDaemons) {
		if st.Err != nil {
			continue
		}
		if ClusterDaemons[i].AlwaysShown || st.Running || st.Enabled {
			fmt.Fprintf(w, "%s%s\n", prefix, st)
		}
	}
}
