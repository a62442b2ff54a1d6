// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pcsd

import (
	"encoding/json"
	"log"
	"net/http"
	"slices"

	"github.com/oalbrigt/pcs/pkg/cmdutil"
)

// anyArgs at the end of an allowed command matches any remaining arguments.
const anyArgs = "..."

// allowedCommand is a pcs command which may be run through /run_pcs.
// Commands without a permission either run on other nodes, which check
// permissions themselves, or need none.
type allowedCommand struct {
	argv       []string
	permission Permission
}

var allowedCommands = []allowedCommand{
	{argv: []string{"cluster", "auth", anyArgs}},
	{argv: []string{"cluster", "corosync"}, permission: PermissionRead},
	{argv: []string{"cluster", "corosync", anyArgs}},
	{argv: []string{"cluster", "destroy", anyArgs}, permission: PermissionFull},
	{argv: []string{"cluster", "disable"}, permission: PermissionWrite},
	{argv: []string{"cluster", "disable", anyArgs}},
	{argv: []string{"cluster", "enable"}, permission: PermissionWrite},
	{argv: []string{"cluster", "enable", anyArgs}},
	{argv: []string{"cluster", "node", anyArgs}, permission: PermissionFull},
	{argv: []string{"cluster", "pcsd-status", anyArgs}},
	{argv: []string{"cluster", "start"}, permission: PermissionWrite},
	{argv: []string{"cluster", "start", anyArgs}},
	{argv: []string{"cluster", "stop"}, permission: PermissionWrite},
	{argv: []string{"cluster", "stop", anyArgs}},
	{argv: []string{"cluster", "sync", anyArgs}, permission: PermissionFull},
	{argv: []string{"config", "restore", anyArgs}, permission: PermissionFull},
	{argv: []string{"host", "auth", anyArgs}},
	{argv: []string{"host", "deauth", anyArgs}},
	{argv: []string{"pcsd", "deauth", anyArgs}},
	{argv: []string{"pcsd", "sync-certificates", anyArgs}, permission: PermissionFull},
	{argv: []string{"status", "pcsd", anyArgs}},
}

// debugOptions are --debug and the prefixes getopt accepts for it.
var debugOptions = []string{"--de", "--deb", "--debu", "--debug"}

// lookupCommand returns the first allowed command matching argv.
func lookupCommand(argv []string) (allowedCommand, bool) {
	for _, cmd := range allowedCommands {
		if slices.Equal(argv, cmd.argv) {
			return cmd, true
		}
		if cmd.argv[len(cmd.argv)-1] != anyArgs {
			continue
		}
		prefix := cmd.argv[:len(cmd.argv)-1]
		if len(argv) >= len(prefix) && slices.Equal(argv[:len(prefix)], prefix) {
			return cmd, true
		}
	}
	return allowedCommand{}, false
}

// CommandAllowed reports whether argv may be run through /run_pcs.
func CommandAllowed(argv []string) bool {
	_, ok := lookupCommand(argv)
	return ok
}

// stripDebug removes debug options so command output does not reveal the
// commands pcs runs internally.
func stripDebug(argv []string) []string {
	out := make([]string, 0, len(argv))
	for _, a := range argv {
		if !slices.Contains(debugOptions, a) {
			out = append(out, a)
		}
	}
	return out
}

// RunPcsResult is the response of /run_pcs.
type RunPcsResult struct {
	Status string `json:"status"`
	Data   any    `json:"data"`
}

// RunPcsOutput is the data of a successful /run_pcs call.
type RunPcsOutput struct {
	Stdout string `json:"stdout"`
	Stderr string `json:"stderr"`
	Code   int    `json:"code"`
}

func writePrettyJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Write(b)
}

func (s *Server) handleRunPcs(w http.ResponseWriter, r *http.Request) {
	empty := struct{}{}
	command := r.FormValue("command")
	if command == "" {
		command = "{}"
	}
	var argv []string
	if err := json.Unmarshal([]byte(command), &argv); err != nil {
		writePrettyJSON(w, RunPcsResult{Status: "error", Data: empty})
		return
	}
	argv = stripDebug(argv)
	cmd, ok := lookupCommand(argv)
	if !ok {
		log.Printf("run_pcs: refusing %s", cmdutil.CommandLine("pcs", argv...))
		writePrettyJSON(w, RunPcsResult{Status: "bad_command", Data: empty})
		return
	}
	if cmd.permission != "" && !s.permitted(w, r, cmd.permission) {
		return
	}

	var (
		res cmdutil.Result
		err error
	)
	stdin := r.FormValue("stdin")
	if ir, ok := s.cfg.Runner.(cmdutil.InputRunner); ok {
		res, err = ir.RunInput(r.Context(), stdin, s.cfg.Settings.Pcs, argv...)
	} else {
		res, err = s.cfg.Runner.Run(r.Context(), s.cfg.Settings.Pcs, argv...)
	}
	if err != nil {
		log.Printf("run_pcs: %v", err)
		res = cmdutil.Result{Stderr: err.Error(), ExitCode: 1}
	}
	writePrettyJSON(w, RunPcsResult{
		Status: "ok",
		Data: RunPcsOutput{
			Stdout: res.Stdout,
			Stderr: res.Stderr,
			Code:   res.ExitCode,
		},
	})
}
