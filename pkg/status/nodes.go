// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package status

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/oalbrigt/pcs/pkg/cib"
	"github.com/oalbrigt/pcs/pkg/cli"
	"github.com/oalbrigt/pcs/pkg/parseargs"
)

// Nodes prints node membership. With "config" it lists configured nodes,
// with "corosync" corosync membership, with "both" corosync membership
// followed by pacemaker node states. Without arguments it prints pacemaker
// node states.
func Nodes(ctx context.Context, env *cli.Env, args []string, mods parseargs.InputModifiers) error {
	if len(args) == 1 && args[0] == "config" {
		if err := mods.EnsureOnlySupported("-f", "--corosync_conf"); err != nil {
			return err
		}
		return nodesConfig(ctx, env)
	}
	if len(args) == 1 && (args[0] == "corosync" || args[0] == "both") {
		if err := mods.EnsureOnlySupported(); err != nil {
			return err
		}
		if err := nodesCorosync(ctx, env); err != nil {
			return err
		}
		if args[0] == "corosync" {
			return nil
		}
	}
	if err := mods.EnsureOnlySupported("-f"); err != nil {
		return err
	}
	state, err := env.ClusterState(ctx)
	if errors.Is(err, cib.ErrBadClusterState) {
		return errors.New("No nodes section found")
	}
	if err != nil {
		return err
	}
	writePacemakerNodes(env.Stdout, state.Nodes)
	return nil
}

func nodesConfig(ctx context.Context, env *cli.Env) error {
	var corosyncNodes []string
	if env.HasCorosyncConf() {
		conf, err := env.CorosyncConf()
		if err != nil {
			return err
		}
		corosyncNodes = conf.NodeNames()
	}
	state, err := env.ClusterState(ctx)
	if err != nil {
		return err
	}
	var pacemakerNodes []string
	for _, n := range state.Nodes {
		if !n.IsRemote() {
			pacemakerNodes = append(pacemakerNodes, n.Name)
		}
	}
	slices.Sort(pacemakerNodes)

	fmt.Fprintln(env.Stdout, "Corosync Nodes:")
	if len(corosyncNodes) > 0 {
		fmt.Fprintln(env.Stdout, " "+strings.Join(corosyncNodes, " "))
	}
	fmt.Fprintln(env.Stdout, "Pacemaker Nodes:")
	if len(pacemakerNodes) > 0 {
		fmt.Fprintln(env.Stdout, " "+strings.Join(pacemakerNodes, " "))
	}
	return nil
}

func nodesCorosync(ctx context.Context, env *cli.Env) error {
	conf, err := env.CorosyncConf()
	if err != nil {
		return err
	}
	online, err := env.CorosyncActiveNodes(ctx)
	if err != nil {
		return err
	}
	var offline []string
	for _, n := range conf.NodeNames() {
		if !slices.Contains(online, n) {
			offline = append(offline, n)
		}
	}
	slices.Sort(offline)
	fmt.Fprintln(env.Stdout, "Corosync Nodes:")
	writeList(env.Stdout, "Online:", online)
	writeList(env.Stdout, "Offline:", offline)
	return nil
}

func writeList(w io.Writer, label string, names []string) {
	fmt.Fprintln(w, strings.Join(append([]string{" " + label}, names...), " "))
}

func writePacemakerNodes(w io.Writer, nodes []cib.StateNode) {
	type bucket struct{ online, standby, maintenance, offline []string }
	var local, remote bucket
	for _, n := range nodes {
		b := &local
		if n.IsRemote() {
			b = &remote
		}
		switch {
		case !n.Online:
			b.offline = append(b.offline, n.Name)
		case n.Standby:
			b.standby = append(b.standby, n.Name)
		case n.Maintenance:
			b.maintenance = append(b.maintenance, n.Name)
		default:
			b.online = append(b.online, n.Name)
		}
	}
	for _, g := range []struct {
		title string
		b     bucket
	}{
		{"Pacemaker Nodes:", local},
		{"Pacemaker Remote Nodes:", remote},
	} {
		fmt.Fprintln(w, g.title)
		writeList(w, "Online:", g.b.online)
		writeList(w, "Standby:", g.b.standby)
		writeList(w, "Maintenance:", g.b.maintenance)
		writeList(w, "Offline:", g.b.offline)
	}
}
