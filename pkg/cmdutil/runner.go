// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cmdutil

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// Result is the outcome of a command that ran to completion.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Success reports whether the command exited with 0.
func (r Result) Success() bool { return r.ExitCode == 0 }

// Output returns stdout followed by stderr, the way the tools print them on a
// terminal.
func (r Result) Output() string { return r.Stdout + r.Stderr }

// Runner runs external commands. A command which starts and exits with a
// non-zero code is a Result, not an error.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (Result, error)
}

// InputRunner is a Runner which can also feed stdin to the command.
type InputRunner interface {
	Runner
	RunInput(ctx context.Context, stdin, name string, args ...string) (Result, error)
}

// ExecRunner runs commands on the local host.
type ExecRunner struct {
	// Env is appended to the environment of the pcs process.
	Env []string
	// Debug logs every command and its output to Log.
	Debug bool
	Log   io.Writer
}

// Run runs a command without input and waits for it to finish.
func (e *ExecRunner) Run(ctx context.Context, name string, args ...string) (Result, error) {
	return e.RunInput(ctx, "", name, args...)
}

// RunInput runs a command with stdin as its standard input.
func (e *ExecRunner) RunInput(ctx context.Context, stdin, name string, args ...string) (Result, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	if stdin != "" {
		cmd.Stdin = strings.NewReader(stdin)
	}
	if len(e.Env) > 0 {
		cmd.Env = append(os.Environ(), e.Env...)
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	e.logf("Running: %s\n", CommandLine(name, args...))
	err := cmd.Run()
	res := Result{Stdout: stdout.String(), Stderr: stderr.String()}
	if err != nil {
		var ee *exec.ExitError
		if !errors.As(err, &ee) {
			return Result{}, fmt.Errorf("unable to run %s: %w", name, err)
		}
		res.ExitCode = ee.ExitCode()
	}
	e.logf("Return Value: %d\n--Debug Output Start--\n%s--Debug Output End--\n\n", res.ExitCode, res.Output())
	return res, nil
}

func (e *ExecRunner) logf(format string, args ...any) {
	if !e.Debug {
		return
	}
	w := e.Log
	if w == nil {
		w = os.Stderr
	}
	fmt.Fprintf(w, format, args...)
}

// CommandLine renders a command for logs and error messages.
func CommandLine(name string, args ...string) string {
	parts := make([]string, 0, len(args)+1)
	for _, a := range append([]string{name}, args...) {
		if a == "" || strings.ContainsAny(a, " \t\"'") {
			a = fmt.Sprintf("%q", a)
		}
		parts = append(parts, a)
	}
	return strings.Join(parts, " ")
}
