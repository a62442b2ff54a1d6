// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cmdutil

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
)

// FakeCall is a command recorded by FakeRunner.
type FakeCall struct {
	Name  string
	Args  []string
	Stdin string
}

func (c FakeCall) String() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

// FakeResponse is the canned outcome of a command.
type FakeResponse struct {
	Result Result
	Err    error
}

// FakeRunner is a Runner serving canned responses. Responses are keyed by the
// command line joined with single spaces; a key holding only the command name
// matches any arguments. Unknown commands fail.
type FakeRunner struct {
	Responses map[string]FakeResponse

	mu    sync.Mutex
	calls []FakeCall
}

// NewFakeRunner returns a FakeRunner with no responses.
func NewFakeRunner() *FakeRunner {
	return &FakeRunner{Responses: make(map[string]FakeResponse)}
}

// Set registers stdout and exit code for a command line.
func (f *FakeRunner) Set(cmdline, stdout string, exitCode int) *FakeRunner {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Responses == nil {
		f.Responses = make(map[string]FakeResponse)
	}
	f.Responses[cmdline] = FakeResponse{Result: Result{Stdout: stdout, ExitCode: exitCode}}
	return f
}

// Run records the command and returns its canned response.
func (f *FakeRunner) Run(ctx context.Context, name string, args ...string) (Result, error) {
	return f.RunInput(ctx, "", name, args...)
}

// RunInput is like Run and records stdin.
func (f *FakeRunner) RunInput(ctx context.Context, stdin, name string, args ...string) (Result, error) {
	call := FakeCall{Name: name, Args: slices.Clone(args), Stdin: stdin}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	if resp, ok := f.Responses[call.String()]; ok {
		return resp.Result, resp.Err
	}
	if resp, ok := f.Responses[name]; ok {
		return resp.Result, resp.Err
	}
	return Result{}, fmt.Errorf("unexpected command %q", call.String())
}

// Calls returns the recorded commands in order.
func (f *FakeRunner) Calls() []FakeCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.calls)
}

// CommandLines returns the recorded commands rendered as strings.
func (f *FakeRunner) CommandLines() []string {
	calls := f.Calls()
	out := make([]string, len(calls))
	for i, c := range calls {
		out[i] = c.String()
	}
	return out
}
