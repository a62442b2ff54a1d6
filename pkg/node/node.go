// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package node implements "pcs node".
package node

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/oalbrigt/pcs/pkg/cib"
	"github.com/oalbrigt/pcs/pkg/cli"
	"github.com/oalbrigt/pcs/pkg/parseargs"
	"github.com/shayne/yargs"
)

// Group returns the "node" command group.
func Group() cli.Group {
	return cli.Group{
		Info: yargs.GroupInfo{Description: "Manage cluster nodes"},
		Commands: map[string]cli.Command{
			"attribute": {
				Info: yargs.SubCommandInfo{
					Description: "Manage node attributes. Without name=value pairs, show attributes of the node or of all nodes",
					Usage:       "[[<node>] [--name <name>] | <node> <name>=<value> ...]",
				},
				Run: Attribute,
			},
		},
	}
}

// Attribute shows node attributes or, given name=value pairs, sets them. An
// empty value removes the attribute.
func Attribute(ctx context.Context, env *cli.Env, args []string, mods parseargs.InputModifiers) error {
	if err := mods.EnsureOnlySupported("-f", "--name"); err != nil {
		return err
	}
	if len(args) < 2 {
		var node string
		if len(args) == 1 {
			node = args[0]
		}
		return showAttributes(ctx, env, node, mods.String("--name"))
	}
	if mods.IsSpecified("--name") {
		return parseargs.Errorf("you cannot specify both --name and attributes to set")
	}
	opts, err := parseargs.PrepareOptions(args[1:])
	if err != nil {
		return err
	}
	attrs := make([]cib.NVPair, 0, opts.Len())
	for _, name := range opts.Names() {
		attrs = append(attrs, cib.NVPair{Name: name, Value: opts.Get(name)})
	}
	return SetAttributes(ctx, env, args[0], attrs)
}

// SetAttributes updates instance attributes of node in the CIB.
func SetAttributes(ctx context.Context, env *cli.Env, node string, attrs []cib.NVPair) error {
	doc, err := env.CIB(ctx)
	if err != nil {
		return err
	}
	nodes, err := cib.NodesSection(doc)
	if err != nil {
		return err
	}
	var stateNodes []cib.StateNode
	if cib.NodeByUname(nodes, node) == nil {
		state, err := env.ClusterState(ctx)
		if err != nil {
			return err
		}
		stateNodes = state.Nodes
	}
	if err := cib.UpdateNodeInstanceAttrs(doc, node, attrs, stateNodes); err != nil {
		return err
	}
	return env.ReplaceCIBConfiguration(ctx, doc)
}

func showAttributes(ctx context.Context, env *cli.Env, node, name string) error {
	doc, err := env.CIB(ctx)
	if err != nil {
		return err
	}
	all, err := cib.NodeAttributes(doc)
	if err != nil {
		return err
	}
	fmt.Fprintln(env.Stdout, "Node Attributes:")
	for _, uname := range slices.Sorted(maps.Keys(all)) {
		if node != "" && uname != node {
			continue
		}
		var parts []string
		for _, p := range all[uname] {
			if name == "" || p.Name == name {
				parts = append(parts, p.Name+"="+p.Value)
			}
		}
		if len(parts) > 0 {
			fmt.Fprintf(env.Stdout, " %s: %s\n", uname, strings.Join(parts, " "))
		}
	}
	return nil
}
