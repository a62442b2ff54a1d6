// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command pcs configures and inspects Corosync/Pacemaker clusters.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/oalbrigt/pcs/pkg/cli"
	"github.com/oalbrigt/pcs/pkg/cmdutil"
	"github.com/oalbrigt/pcs/pkg/node"
	"github.com/oalbrigt/pcs/pkg/parseargs"
	"github.com/oalbrigt/pcs/pkg/pcsd"
	"github.com/oalbrigt/pcs/pkg/quorum"
	"github.com/oalbrigt/pcs/pkg/settings"
	"github.com/oalbrigt/pcs/pkg/status"
	"golang.org/x/term"
)

func newApp() *cli.App {
	return &cli.App{
		Name:        "pcs",
		Description: "Control and configure pacemaker and corosync.",
		Examples: []string{
			"pcs status",
			"pcs quorum device add model net host=qnetd algorithm=ffsplit",
			"pcs node attribute node1 rack=1",
		},
		Groups: map[string]cli.Group{
			"status": status.Group(),
			"quorum": quorum.Group(),
			"node":   node.Group(),
		},
	}
}

// newEnv builds the command environment from the parsed options.
func newEnv(set settings.Settings, mods parseargs.InputModifiers, stdin io.Reader, stdout, stderr io.Writer) (*cli.Env, error) {
	runner := &cmdutil.ExecRunner{
		Debug: mods.IsSpecified(parseargs.DebugOption),
		Log:   stderr,
	}
	if mods.IsSpecified("-f") {
		path, err := filepath.Abs(mods.String("-f"))
		if err != nil {
			return nil, err
		}
		runner.Env = append(runner.Env, "CIB_file="+path)
	}
	if mods.IsSpecified("--corosync_conf") {
		set.CorosyncConfFile = mods.String("--corosync_conf")
	}
	timeout := set.RequestTimeout
	if mods.IsSpecified("--request-timeout") {
		v := mods.String("--request-timeout")
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return nil, parseargs.Errorf("'%s' is not a valid --request-timeout value, use a positive integer", v)
		}
		timeout = n
	}
	hosts, err := pcsd.LoadKnownHosts(set.KnownHostsFile)
	if err != nil {
		return nil, err
	}
	env := &cli.Env{
		Runner:   runner,
		Settings: set,
		Pcsd:     pcsd.NewClient(set.PcsdPort, time.Duration(timeout)*time.Second, hosts.Tokens()),
		Stdin:    stdin,
		Stdout:   stdout,
		Stderr:   stderr,
	}
	if f, ok := stderr.(*os.File); ok {
		env.Color = term.IsTerminal(int(f.Fd()))
	}
	return env, nil
}

// run executes pcs and returns the process exit code.
func run(ctx context.Context, argv []string, stdin io.Reader, stdout, stderr io.Writer) int {
	set, err := settings.FromEnv()
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	cl, err := cli.Parse(parseargs.DefaultOptionTable(), argv)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	mods := cl.Modifiers()
	if mods.IsSpecified("--version") {
		fmt.Fprintln(stdout, settings.Version)
		return 0
	}
	env, err := newEnv(set, mods, stdin, stdout, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	err = newApp().Run(ctx, env, cl)
	switch {
	case err == nil:
		return 0
	case errors.Is(err, status.ErrNodesOffline):
		return 2
	case parseargs.IsUsage(err):
		return 1
	}
	env.PrintError(err)
	return 1
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
