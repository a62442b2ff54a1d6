// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package quorum implements "pcs quorum".
package quorum

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/oalbrigt/pcs/pkg/cli"
	"github.com/oalbrigt/pcs/pkg/corosync"
	"github.com/oalbrigt/pcs/pkg/parseargs"
	"github.com/shayne/yargs"
)

// Group returns the "quorum" command group.
func Group() cli.Group {
	return cli.Group{
		Info:    yargs.GroupInfo{Description: "Manage cluster quorum settings"},
		Default: "config",
		Commands: map[string]cli.Command{
			"config": {
				Info: yargs.SubCommandInfo{Description: "Show quorum configuration"},
				Run:  Config,
			},
			"status": {
				Info: yargs.SubCommandInfo{Description: "Show quorum runtime status"},
				Run:  Status,
			},
			"expected-votes": {
				Info: yargs.SubCommandInfo{
					Description: "Set expected votes in the live cluster to specified value",
					Usage:       "<votes>",
				},
				Run: ExpectedVotes,
			},
			"update": {
				Info: yargs.SubCommandInfo{
					Description: "Add, remove or change quorum options",
					Usage:       "[auto_tie_breaker=[0|1]] [last_man_standing=[0|1]] [last_man_standing_window=[<time in ms>]] [wait_for_all=[0|1]]",
				},
				Run: Update,
			},
			"device": {
				Info: yargs.SubCommandInfo{
					Description: "Manage a quorum device: add, update, remove, status, heuristics remove",
					Usage:       "<add|update|remove|status|heuristics remove> ...",
				},
				Run: Device,
			},
			"unblock": {
				Info: yargs.SubCommandInfo{Description: "Cancel waiting for all nodes when establishing quorum"},
				Run:  Unblock,
			},
		},
	}
}

// Config prints the quorum configuration from corosync.conf.
func Config(ctx context.Context, env *cli.Env, args []string, mods parseargs.InputModifiers) error {
	if err := mods.EnsureOnlySupported("--corosync_conf"); err != nil {
		return err
	}
	if len(args) > 0 {
		return parseargs.ErrUsage
	}
	conf, err := env.CorosyncConf()
	if err != nil {
		return err
	}
	WriteConfig(env.Stdout, conf)
	return nil
}

// WriteConfig prints quorum options and the quorum device of conf.
func WriteConfig(w io.Writer, conf *corosync.Config) {
	fmt.Fprintln(w, "Options:")
	writeOptions(w, "  ", conf.QuorumOptions())
	dev, ok := conf.Device()
	if !ok {
		return
	}
	fmt.Fprintln(w, "Device:")
	writeOptions(w, "  ", dev.GenericOptions)
	fmt.Fprintf(w, "  Model: %s\n", dev.Model)
	writeOptions(w, "    ", dev.ModelOptions)
	if len(dev.HeuristicsOptions) > 0 {
		fmt.Fprintln(w, "  Heuristics:")
		writeOptions(w, "    ", dev.HeuristicsOptions)
	}
}

func writeOptions(w io.Writer, prefix string, opts map[string]string) {
	for _, name := range slices.Sorted(maps.Keys(opts)) {
		fmt.Fprintf(w, "%s%s: %s\n", prefix, name, opts[name])
	}
}

// Status prints the runtime quorum status of the local node.
func Status(ctx context.Context, env *cli.Env, args []string, mods parseargs.InputModifiers) error {
	if err := mods.EnsureOnlySupported(); err != nil {
		return err
	}
	if len(args) > 0 {
		return parseargs.ErrUsage
	}
	res, err := env.Runner.Run(ctx, env.Settings.CorosyncQuorumtool, "-p")
	if err != nil {
		return err
	}
	// corosync-quorumtool exits with 1 when the node is quorate.
	if (res.ExitCode != 0 && res.ExitCode != 1) || strings.TrimSpace(res.Stderr) != "" {
		return fmt.Errorf("Unable to get quorum status: %s", strings.TrimSpace(res.Stderr))
	}
	fmt.Fprintln(env.Stdout, res.Stdout)
	return nil
}

// ExpectedVotes sets expected votes in the running cluster.
func ExpectedVotes(ctx context.Context, env *cli.Env, args []string, mods parseargs.InputModifiers) error {
	if err := mods.EnsureOnlySupported(); err != nil {
		return err
	}
	if len(args) != 1 {
		return parseargs.ErrUsage
	}
	votes, err := strconv.Atoi(args[0])
	if err != nil || votes < 1 {
		return fmt.Errorf("'%s' is not a valid expected votes value, use a positive integer", args[0])
	}
	res, err := env.Runner.Run(ctx, env.Settings.CorosyncQuorumtool, "-e", strconv.Itoa(votes))
	if err != nil {
		return err
	}
	if !res.Success() {
		return fmt.Errorf("Unable to set expected votes: %s", strings.TrimSpace(res.Output()))
	}
	return nil
}

// Update changes quorum options in corosync.conf.
func Update(ctx context.Context, env *cli.Env, args []string, mods parseargs.InputModifiers) error {
	if err := mods.EnsureOnlySupported("--skip-offline", "--force", "--corosync_conf", "--request-timeout"); err != nil {
		return err
	}
	opts, err := parseargs.PrepareOptions(args)
	if err != nil {
		return err
	}
	if opts.Len() == 0 {
		return parseargs.ErrUsage
	}
	conf, err := env.CorosyncConf()
	if err != nil {
		return err
	}
	warnings, err := conf.SetQuorumOptions(opts.Map(), mods.Bool("--force"))
	warn(env, warnings)
	if err != nil {
		return err
	}
	return pushConfig(ctx, env, mods, conf)
}

// warn prints the problems --force overrode.
func warn(env *cli.Env, warnings []string) {
	for _, w := range warnings {
		env.Warnf("%s", w)
	}
}

// pushConfig stores conf to the corosync.conf file given by --corosync_conf,
// or distributes it to all cluster nodes.
func pushConfig(ctx context.Context, env *cli.Env, mods parseargs.InputModifiers, conf *corosync.Config) error {
	if mods.IsSpecified("--corosync_conf") {
		return env.WriteCorosyncConf(conf)
	}
	return cli.DistributeCorosyncConf(ctx, env, conf, mods.Bool("--skip-offline"))
}

// Unblock cancels waiting for all nodes when the cluster starts without
// being able to reach the other nodes.
func Unblock(ctx context.Context, env *cli.Env, args []string, mods parseargs.InputModifiers) error {
	if err := mods.EnsureOnlySupported("--force"); err != nil {
		return err
	}
	if len(args) > 0 {
		return parseargs.ErrUsage
	}
	set := env.Settings

	res, err := env.Runner.Run(ctx, set.CorosyncCmapctl, "-g", "runtime.votequorum.wait_for_all_status")
	if err != nil || !res.Success() {
		return errors.New("unable to check quorum status")
	}
	if corosync.CmapValue(res.Stdout) != "1" {
		return errors.New("cluster is not waiting for nodes to establish quorum")
	}

	conf, err := env.CorosyncConf()
	if err != nil {
		return err
	}
	active, err := env.CorosyncActiveNodes(ctx)
	if err != nil {
		return err
	}
	var unjoined []string
	for _, n := range conf.NodeNames() {
		if !slices.Contains(active, n) && !slices.Contains(unjoined, n) {
			unjoined = append(unjoined, n)
		}
	}
	slices.Sort(unjoined)
	if len(unjoined) == 0 {
		return errors.New("no unjoined nodes found")
	}

	if !mods.Bool("--force") {
		ok, err := env.Confirm(fmt.Sprintf(
			"WARNING: If node(s) %s are not powered off or they do have access to shared resources, data corruption and/or cluster failure may occur. Are you sure you want to continue?",
			strings.Join(unjoined, ", "),
		))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(env.Stdout, "Canceled")
			return nil
		}
	}

	for _, node := range unjoined {
		res, err := env.Runner.Run(ctx, set.StonithAdmin, "-C", node)
		if err != nil {
			return err
		}
		if !res.Success() {
			return fmt.Errorf("unable to confirm fencing of node '%s'\n%s", node, strings.TrimSpace(res.Output()))
		}
		fmt.Fprintf(env.Stdout, "Node: %s confirmed fenced\n", node)
	}

	res, err = env.Runner.Run(ctx, set.CorosyncCmapctl, "-s", "quorum.cancel_wait_for_all", "u8", "1")
	if err != nil || !res.Success() {
		return errors.New("unable to cancel waiting for nodes")
	}
	fmt.Fprintln(env.Stdout, "Quorum unblocked")

	// Toggling startup-fencing makes pacemaker recompute the transition.
	startupFencing, err := env.CIBProperty(ctx, "startup-fencing")
	if err != nil {
		return err
	}
	toggled := "false"
	if strings.ToLower(startupFencing) == "false" {
		toggled = "true"
	}
	if err := env.SetCIBProperty(ctx, "startup-fencing", toggled); err != nil {
		return err
	}
	if err := env.SetCIBProperty(ctx, "startup-fencing", startupFencing); err != nil {
		return err
	}
	fmt.Fprintln(env.Stdout, "Waiting for nodes canceled")
	return nil
}
