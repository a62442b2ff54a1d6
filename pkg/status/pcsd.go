// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package status

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/oalbrigt/pcs/pkg/cli"
	"github.com/oalbrigt/pcs/pkg/parseargs"
	"golang.org/x/sync/errgroup"
)

// ErrNodesOffline is returned by Pcsd when pcsd is not reachable or not
// authorized on some of the nodes. pcs exits with 2 on it.
var ErrNodesOffline = errors.New("pcsd is not online on all nodes")

// Pcsd prints the state of pcsd on the given nodes, or on all nodes of the
// local cluster.
func Pcsd(ctx context.Context, env *cli.Env, args []string, mods parseargs.InputModifiers) error {
	if err := mods.EnsureOnlySupported("--request-timeout"); err != nil {
		return err
	}
	nodes := args
	if len(nodes) == 0 {
		conf, err := env.CorosyncConf()
		if err != nil {
			return err
		}
		nodes = conf.NodeNames()
		if len(nodes) == 0 {
			return errors.New("no nodes found in corosync.conf")
		}
	}
	if !CheckNodes(ctx, env, env.Stdout, nodes, "  ") {
		return ErrNodesOffline
	}
	return nil
}

// printPcsdStatus prints the "PCSD Status:" block of the local cluster.
func printPcsdStatus(ctx context.Context, env *cli.Env) {
	fmt.Fprintln(env.Stdout, "PCSD Status:")
	conf, err := env.CorosyncConf()
	if err != nil {
		fmt.Fprintln(env.Stdout, err)
		return
	}
	CheckNodes(ctx, env, env.Stdout, conf.NodeNames(), "  ")
}

// CheckNodes checks pcsd on nodes in parallel and prints one line per node
// in the given order. It reports whether all nodes are online.
func CheckNodes(ctx context.Context, env *cli.Env, w io.Writer, nodes []string, prefix string) bool {
	results := make([]error, len(nodes))
	var g errgroup.Group
	for i, node := range nodes {
		g.Go(func() error {
			results[i] = env.Pcsd.CheckAuth(ctx, node)
			return nil
		})
	}
	g.Wait()

	allOnline := true
	for i, node := range nodes {
		desc := "Online"
		switch err := results[i]; {
		case err == nil:
		case errors.Is(err, cli.ErrNotAuthorized):
			desc = "Unable to authenticate"
			allOnline = false
		default:
			desc = "Offline"
			allOnline = false
		}
		fmt.Fprintf(w, "%s%s: %s\n", prefix, node, desc)
	}
	return allOnline
}
