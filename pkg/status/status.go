// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package status implements "pcs status".
package status

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/oalbrigt/pcs/pkg/cib"
	"github.com/oalbrigt/pcs/pkg/cli"
	"github.com/oalbrigt/pcs/pkg/parseargs"
	"github.com/oalbrigt/pcs/pkg/quorum"
	"github.com/shayne/yargs"
)

// Group returns the "status" command group.
func Group() cli.Group {
	return cli.Group{
		Info:    yargs.GroupInfo{Description: "View cluster status"},
		Default: "full",
		Commands: map[string]cli.Command{
			"full": {
				Info: yargs.SubCommandInfo{
					Description: "View all information about the cluster and resources",
					Usage:       "[--full] [--hide-inactive]",
					Hidden:      true,
				},
				Run: Full,
			},
			"cluster": {
				Info: yargs.SubCommandInfo{Description: "View current cluster status"},
				Run:  Cluster,
			},
			"corosync": {
				Info: yargs.SubCommandInfo{Description: "View current membership information as seen by corosync"},
				Run:  Corosync,
			},
			"nodes": {
				Info: yargs.SubCommandInfo{
					Description: "View current status of nodes from pacemaker",
					Usage:       "[corosync | both | config]",
				},
				Run: Nodes,
			},
			"pcsd": {
				Info: yargs.SubCommandInfo{
					Description: "Show current status of pcsd on nodes specified, or on all nodes configured in the local cluster",
					Usage:       "[NODE]...",
				},
				Run: Pcsd,
			},
			"quorum": {
				Info: yargs.SubCommandInfo{Description: "View current quorum status"},
				Run:  quorum.Status,
			},
			"xml": {
				Info: yargs.SubCommandInfo{Description: "View xml version of status (output from crm_mon -r -1 -X)"},
				Run:  XML,
			},
		},
	}
}

// Full prints crm_mon output together with the cluster name, fencing
// warnings and daemon status.
func Full(ctx context.Context, env *cli.Env, args []string, mods parseargs.InputModifiers) error {
	if err := mods.EnsureOnlySupported("--hide-inactive", "--full", "-f", "--corosync_conf", "--request-timeout"); err != nil {
		return err
	}
	if len(args) > 0 {
		return parseargs.ErrUsage
	}
	full := mods.Bool("--full")
	if mods.IsSpecified("--hide-inactive") && mods.IsSpecified("--full") {
		return errors.New("you cannot specify both --hide-inactive and --full")
	}

	monArgs := []string{"--one-shot"}
	if !mods.Bool("--hide-inactive") {
		monArgs = append(monArgs, "--inactive")
	}
	if full {
		monArgs = append(monArgs, "--show-detail", "--show-node-attributes", "--failcounts")
	}
	res, err := env.Runner.Run(ctx, env.Settings.CrmMon, monArgs...)
	if err != nil {
		return err
	}
	if !res.Success() {
		return errors.New("cluster is not currently running on this node")
	}

	var name string
	if conf, err := env.CorosyncConf(); err == nil {
		name = conf.ClusterName()
	}
	fmt.Fprintf(env.Stdout, "Cluster name: %s\n", name)

	if err := stonithCheck(ctx, env, mods); err != nil {
		return err
	}
	fmt.Fprintln(env.Stdout, res.Stdout)

	if full {
		tickets, err := env.Runner.Run(ctx, env.Settings.CrmTicket, "-L")
		switch {
		case err != nil || !tickets.Success():
			fmt.Fprint(env.Stdout, "WARNING: Unable to get information about tickets\n\n")
		case tickets.Stdout != "":
			fmt.Fprintln(env.Stdout, "Tickets:")
			fmt.Fprintln(env.Stdout, indent(tickets.Stdout, "  "))
		}
	}

	if mods.IsSpecified("-f") || mods.IsSpecified("--corosync_conf") {
		return nil
	}
	if full {
		printPcsdStatus(ctx, env)
		fmt.Fprintln(env.Stdout)
	}
	env.Systemd().WriteDaemonStatus(ctx, env.Stdout, "  ")
	return nil
}

// stonithCheck prints warnings about the fencing configuration.
func stonithCheck(ctx context.Context, env *cli.Env, mods parseargs.InputModifiers) error {
	doc, err := env.CIB(ctx)
	if err != nil {
		return err
	}
	sbdRunning := false
	if !mods.IsSpecified("-f") {
		if running, err := env.Systemd().IsActive(ctx, "sbd"); err == nil {
			sbdRunning = running
		}
	}
	for _, w := range cib.StonithWarnings(doc, sbdRunning) {
		env.PrintWarning(w)
	}
	return nil
}

// indent prefixes every line of text.
func indent(text, prefix string) string {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		if l != "" {
			lines[i] = prefix + l
		}
	}
	return strings.Join(lines, "\n")
}

// Cluster prints the summary part of crm_mon output.
func Cluster(ctx context.Context, env *cli.Env, args []string, mods parseargs.InputModifiers) error {
	if err := mods.EnsureOnlySupported("-f", "--request-timeout"); err != nil {
		return err
	}
	if len(args) > 0 {
		return parseargs.ErrUsage
	}
	res, err := env.Runner.Run(ctx, env.Settings.CrmMon, "-1", "-r")
	if err != nil {
		return err
	}
	if !res.Success() {
		return errors.New("cluster is not currently running on this node")
	}
	fmt.Fprintln(env.Stdout, "Cluster Status:")
	seenEmpty := false
	for _, line := range strings.Split(strings.TrimSuffix(res.Stdout, "\n"), "\n") {
		if line == "" {
			if seenEmpty {
				break
			}
			seenEmpty = true
			continue
		}
		fmt.Fprintln(env.Stdout, "", line)
	}
	if !mods.IsSpecified("-f") && env.HasCorosyncConf() {
		fmt.Fprintln(env.Stdout)
		printPcsdStatus(ctx, env)
	}
	return nil
}

// Corosync prints the membership as seen by corosync-quorumtool.
func Corosync(ctx context.Context, env *cli.Env, args []string, mods parseargs.InputModifiers) error {
	if err := mods.EnsureOnlySupported(); err != nil {
		return err
	}
	if len(args) > 0 {
		return parseargs.ErrUsage
	}
	res, err := env.Runner.Run(ctx, env.Settings.CorosyncQuorumtool, "-l")
	if err != nil {
		return err
	}
	if !res.Success() {
		return errors.New("corosync not running")
	}
	fmt.Fprintln(env.Stdout, strings.TrimRight(res.Stdout, " \t\n"))
	return nil
}

// XML prints the cluster status as crm_mon XML.
func XML(ctx context.Context, env *cli.Env, args []string, mods parseargs.InputModifiers) error {
	if err := mods.EnsureOnlySupported("-f"); err != nil {
		return err
	}
	if len(args) > 0 {
		return parseargs.ErrUsage
	}
	res, err := env.Runner.Run(ctx, env.Settings.CrmMon, "-1", "-r", "-X")
	if err != nil {
		return err
	}
	if !res.Success() {
		return errors.New("running crm_mon, is pacemaker running?")
	}
	fmt.Fprintln(env.Stdout, strings.TrimRight(res.Stdout, " \t\n"))
	return nil
}
