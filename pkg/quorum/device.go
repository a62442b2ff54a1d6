// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package quorum

import (
	"context"
	"fmt"
	"strings"

	"github.com/oalbrigt/pcs/pkg/cli"
	"github.com/oalbrigt/pcs/pkg/corosync"
	"github.com/oalbrigt/pcs/pkg/parseargs"
)

var deviceCommands = map[string]cli.Command{
	"add":        {Run: DeviceAdd},
	"update":     {Run: DeviceUpdate},
	"remove":     {Run: DeviceRemove},
	"status":     {Run: DeviceStatus},
	"heuristics": {Run: deviceHeuristics},
}

var heuristicsCommands = map[string]cli.Command{
	"remove": {Run: DeviceHeuristicsRemove},
}

// Device routes "pcs quorum device" subcommands.
func Device(ctx context.Context, env *cli.Env, args []string, mods parseargs.InputModifiers) error {
	return cli.Route(ctx, env, deviceCommands, "", args, mods)
}

func deviceHeuristics(ctx context.Context, env *cli.Env, args []string, mods parseargs.InputModifiers) error {
	return cli.Route(ctx, env, heuristicsCommands, "", args, mods)
}

var deviceKeywords = []string{"model", "heuristics"}

// parseDeviceGroups splits device arguments into "generic", "model" and
// "heuristics" groups.
func parseDeviceGroups(args []string) (parseargs.Groups, error) {
	groups, err := parseargs.GroupByKeywords(args, parseargs.Keywords(deviceKeywords...), parseargs.GroupOptions{
		ImplicitFirstGroup: "generic",
		NoKeywordRepeat:    true,
		OnlyFoundKeywords:  true,
	})
	if err != nil {
		return parseargs.Groups{}, err
	}
	for _, kw := range deviceKeywords {
		if groups.Has(kw) && len(groups.Get(kw)) == 0 {
			return parseargs.Groups{}, parseargs.Errorf("No %s options specified", kw)
		}
	}
	return groups, nil
}

// deviceOptions parses the generic and heuristics groups.
func deviceOptions(groups parseargs.Groups) (generic, heuristics parseargs.Options, err error) {
	if generic, err = parseargs.PrepareOptions(groups.Get("generic")); err != nil {
		return
	}
	if generic.Has("model") {
		err = parseargs.Errorf("Model cannot be specified in generic options")
		return
	}
	heuristics, err = parseargs.PrepareOptions(groups.Get("heuristics"))
	return
}

// DeviceAdd adds a quorum device to the cluster configuration.
func DeviceAdd(ctx context.Context, env *cli.Env, args []string, mods parseargs.InputModifiers) error {
	if err := mods.EnsureOnlySupported("--force", "--skip-offline", "--request-timeout", "--corosync_conf"); err != nil {
		return err
	}
	groups, err := parseDeviceGroups(args)
	if err != nil {
		return err
	}
	modelArgs := groups.Get("model")
	if len(modelArgs) == 0 || strings.Contains(modelArgs[0], "=") {
		return parseargs.ErrUsage
	}
	model := modelArgs[0]
	modelOpts, err := parseargs.PrepareOptions(modelArgs[1:])
	if err != nil {
		return err
	}
	generic, heuristics, err := deviceOptions(groups)
	if err != nil {
		return err
	}
	return editConfig(ctx, env, mods, func(conf *corosync.Config) error {
		warnings, err := conf.AddDevice(model, modelOpts, generic, heuristics, mods.Bool("--force"))
		warn(env, warnings)
		return err
	})
}

// DeviceUpdate changes options of the quorum device.
func DeviceUpdate(ctx context.Context, env *cli.Env, args []string, mods parseargs.InputModifiers) error {
	if err := mods.EnsureOnlySupported("--force", "--skip-offline", "--request-timeout", "--corosync_conf"); err != nil {
		return err
	}
	groups, err := parseDeviceGroups(args)
	if err != nil {
		return err
	}
	if groups.Len() == 0 {
		return parseargs.ErrUsage
	}
	modelOpts, err := parseargs.PrepareOptions(groups.Get("model"))
	if err != nil {
		return err
	}
	generic, heuristics, err := deviceOptions(groups)
	if err != nil {
		return err
	}
	return editConfig(ctx, env, mods, func(conf *corosync.Config) error {
		warnings, err := conf.UpdateDevice(modelOpts, generic, heuristics, mods.Bool("--force"))
		warn(env, warnings)
		return err
	})
}

// DeviceRemove removes the quorum device.
func DeviceRemove(ctx context.Context, env *cli.Env, args []string, mods parseargs.InputModifiers) error {
	if err := mods.EnsureOnlySupported("--skip-offline", "--request-timeout", "--corosync_conf"); err != nil {
		return err
	}
	if len(args) > 0 {
		return parseargs.ErrUsage
	}
	return editConfig(ctx, env, mods, (*corosync.Config).RemoveDevice)
}

// DeviceHeuristicsRemove removes heuristics of the quorum device.
func DeviceHeuristicsRemove(ctx context.Context, env *cli.Env, args []string, mods parseargs.InputModifiers) error {
	if err := mods.EnsureOnlySupported("--skip-offline", "--corosync_conf", "--request-timeout"); err != nil {
		return err
	}
	if len(args) > 0 {
		return parseargs.ErrUsage
	}
	return editConfig(ctx, env, mods, (*corosync.Config).RemoveDeviceHeuristics)
}

// DeviceStatus prints the runtime status of the local quorum device.
func DeviceStatus(ctx context.Context, env *cli.Env, args []string, mods parseargs.InputModifiers) error {
	if err := mods.EnsureOnlySupported("--full"); err != nil {
		return err
	}
	if len(args) > 0 {
		return parseargs.ErrUsage
	}
	toolArgs := []string{"-s"}
	if mods.Bool("--full") {
		toolArgs = append(toolArgs, "-v")
	}
	res, err := env.Runner.Run(ctx, env.Settings.CorosyncQDeviceTool, toolArgs...)
	if err != nil {
		return err
	}
	if !res.Success() {
		return fmt.Errorf("Unable to get quorum device status: %s", strings.TrimSpace(res.Output()))
	}
	fmt.Fprintln(env.Stdout, res.Stdout)
	return nil
}

// editConfig loads corosync.conf, applies edit and stores the result.
func editConfig(ctx context.Context, env *cli.Env, mods parseargs.InputModifiers, edit func(*corosync.Config) error) error {
	conf, err := env.CorosyncConf()
	if err != nil {
		return err
	}
	if err := edit(conf); err != nil {
		return err
	}
	return pushConfig(ctx, env, mods, conf)
}
