// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package cli parses the pcs command line and routes it to command handlers.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/fatih/color"
	"github.com/oalbrigt/pcs/pkg/cmdutil"
	"github.com/oalbrigt/pcs/pkg/parseargs"
	"github.com/oalbrigt/pcs/pkg/settings"
	"github.com/shayne/yargs"
)

// ErrNotAuthorized is returned by PcsdClient when a node rejects our
// credentials.
var ErrNotAuthorized = errors.New("Unable to authenticate")

// PcsdClient talks to pcsd on cluster nodes.
type PcsdClient interface {
	// CheckAuth returns nil when node is online and accepts our credentials.
	CheckAuth(ctx context.Context, node string) error
	// SetCorosyncConf stores conf as corosync.conf on node.
	SetCorosyncConf(ctx context.Context, node, conf string) error
}

// Env is what command handlers use to reach the outside world.
type Env struct {
	Runner   cmdutil.Runner
	Settings settings.Settings
	Pcsd     PcsdClient

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	// Color enables colored warnings.
	Color bool
}

func (e *Env) colored(attr color.Attribute, w io.Writer, label, msg string) {
	c := color.New(attr)
	if !e.Color {
		c.DisableColor()
	}
	c.Fprint(w, label)
	fmt.Fprintln(w, msg)
}

// Warnf prints a warning to Stderr.
func (e *Env) Warnf(format string, args ...any) {
	e.colored(color.FgYellow, e.Stderr, "Warning: ", fmt.Sprintf(format, args...))
}

// PrintError prints err the way pcs reports a failed command.
func (e *Env) PrintError(err error) {
	e.colored(color.FgRed, e.Stderr, "Error: ", err.Error())
}

// Confirm asks the user a yes/no question on Stdin.
func (e *Env) Confirm(msg string) (bool, error) {
	return cmdutil.Confirm(e.Stdin, e.Stdout, msg)
}

// Handler runs a command. args are the positional arguments following the
// command name.
type Handler func(ctx context.Context, env *Env, args []string, mods parseargs.InputModifiers) error

// Command is a pcs command together with its help metadata.
type Command struct {
	Info yargs.SubCommandInfo
	Run  Handler
}

// Group is a top level pcs command such as "status" or "quorum".
type Group struct {
	Info yargs.GroupInfo
	// Default is the command run when none is given. Without a default the
	// group usage is printed.
	Default  string
	Commands map[string]Command
}

// ErrHelp is returned by Route when the user asked for help.
var ErrHelp = errors.New("help requested")

// Route runs the command named by args[0] from commands, or def when args
// is empty. Unknown commands are a usage error.
func Route(ctx context.Context, env *Env, commands map[string]Command, def string, args []string, mods parseargs.InputModifiers) error {
	name := def
	if len(args) > 0 {
		name, args = args[0], args[1:]
	}
	if name == "help" {
		return ErrHelp
	}
	cmd, ok := commands[name]
	if !ok || name == "" {
		return parseargs.ErrUsage
	}
	return cmd.Run(ctx, env, args, mods)
}

// GlobalFlags documents the options shared by all commands in the help
// output.
type GlobalFlags struct {
	Debug          bool `flag:"debug" help:"Print all network traffic and external commands run"`
	Force          bool `flag:"force" help:"Perform the action despite errors"`
	RequestTimeout int  `flag:"request-timeout" help:"Timeout for each outgoing request to another node in seconds" default:"60"`
	Version        bool `flag:"version" help:"Print pcs version information"`
}

// App is the pcs command tree.
type App struct {
	Name        string
	Description string
	Examples    []string
	Groups      map[string]Group
}

// Registry returns the command tree in yargs form.
func (a *App) Registry() yargs.Registry {
	groups := make(map[string]yargs.GroupSpec, len(a.Groups))
	for name, g := range a.Groups {
		cmds := make(map[string]yargs.CommandSpec, len(g.Commands))
		for cname, c := range g.Commands {
			info := c.Info
			if info.Name == "" {
				info.Name = cname
			}
			cmds[cname] = yargs.CommandSpec{Info: info}
		}
		info := g.Info
		if info.Name == "" {
			info.Name = name
		}
		groups[name] = yargs.GroupSpec{Info: info, Commands: cmds}
	}
	return yargs.Registry{
		Command: yargs.CommandInfo{
			Name:        a.Name,
			Description: a.Description,
			Examples:    a.Examples,
		},
		Groups: groups,
	}
}

// Usage returns the top level help.
func (a *App) Usage() string {
	return yargs.GenerateGlobalHelp(a.Registry().HelpConfig(), GlobalFlags{})
}

// GroupUsage returns the help of a group.
func (a *App) GroupUsage(group string) string {
	return yargs.GenerateGroupHelp(a.Registry().HelpConfig(), group, GlobalFlags{})
}

// GroupNames returns the sorted group names.
func (a *App) GroupNames() []string {
	return slices.Sorted(maps.Keys(a.Groups))
}

func wantsHelp(mods parseargs.InputModifiers) bool {
	return mods.IsSpecified("-h") || mods.IsSpecified("--help")
}

// Run dispatches a parsed command line. Usage errors print the relevant help
// to Stderr and are returned as is.
func (a *App) Run(ctx context.Context, env *Env, cl CommandLine) error {
	mods := cl.Modifiers()
	args := yargs.ApplyAliases(cl.Args, a.Registry().HelpConfig())
	if len(args) == 0 || args[0] == "help" {
		if wantsHelp(mods) || (len(args) > 0 && args[0] == "help") {
			fmt.Fprint(env.Stdout, a.Usage())
			return nil
		}
		fmt.Fprint(env.Stderr, a.Usage())
		return parseargs.ErrUsage
	}
	name := args[0]
	g, ok := a.Groups[name]
	if !ok {
		fmt.Fprint(env.Stderr, a.Usage())
		return parseargs.Errorf("unknown command '%s'", name)
	}
	if wantsHelp(mods) {
		fmt.Fprint(env.Stdout, a.GroupUsage(name))
		return nil
	}
	err := Route(ctx, env, g.Commands, g.Default, args[1:], mods)
	switch {
	case errors.Is(err, ErrHelp):
		fmt.Fprint(env.Stdout, a.GroupUsage(name))
		return nil
	case parseargs.IsUsage(err):
		fmt.Fprint(env.Stderr, a.GroupUsage(name))
	}
	return err
}
