// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package node

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/oalbrigt/pcs/pkg/cib"
	"github.com/oalbrigt/pcs/pkg/cli"
	"github.com/oalbrigt/pcs/pkg/cmdutil"
	"github.com/oalbrigt/pcs/pkg/parseargs"
	"github.com/oalbrigt/pcs/pkg/settings"
)

const testCIB = `<cib>
  <configuration>
    <crm_config/>
    <nodes>
      <node id="1" uname="rh7-1">
        <instance_attributes id="nodes-1">
          <nvpair id="nodes-1-a" name="a" value="1"/>
          <nvpair id="nodes-1-b" name="b" value="2"/>
        </instance_attributes>
      </node>
      <node id="2" uname="rh7-2">
        <instance_attributes id="nodes-2">
          <nvpair id="nodes-2-a" name="a" value="3"/>
        </instance_attributes>
      </node>
    </nodes>
    <resources/>
  </configuration>
  <status/>
</cib>`

const testState = `<crm_mon version="2.0.0">
  <nodes>
    <node name="rh7-1" id="1" online="true" standby="false" maintenance="false" type="member"/>
    <node name="rh7-3" id="3" online="true" standby="false" maintenance="false" type="member"/>
  </nodes>
</crm_mon>`

const replaceCmd = "cibadmin --replace -V --xml-pipe -o configuration"

func newEnv(runner cmdutil.Runner) (*cli.Env, *bytes.Buffer) {
	var out bytes.Buffer
	return &cli.Env{
		Runner:   runner,
		Settings: settings.Default(),
		Stdout:   &out,
		Stderr:   new(bytes.Buffer),
	}, &out
}

func mods(opts ...string) parseargs.InputModifiers {
	raw := make(map[string]string)
	for _, o := range opts {
		name, value, _ := strings.Cut(o, "=")
		raw[name] = value
	}
	return parseargs.NewInputModifiers(raw)
}

// pushed returns the configuration section piped to cibadmin.
func pushed(t *testing.T, runner *cmdutil.FakeRunner) string {
	t.Helper()
	for _, c := range runner.Calls() {
		if c.String() == replaceCmd {
			return c.Stdin
		}
	}
	t.Fatalf("cib was not pushed, calls: %q", runner.CommandLines())
	return ""
}

func TestAttributeShow(t *testing.T) {
	tests := []struct {
		args []string
		opts []string
		want string
	}{
		{nil, nil, "Node Attributes:\n rh7-1: a=1 b=2\n rh7-2: a=3\n"},
		{[]string{"rh7-1"}, nil, "Node Attributes:\n rh7-1: a=1 b=2\n"},
		{nil, []string{"--name=a"}, "Node Attributes:\n rh7-1: a=1\n rh7-2: a=3\n"},
		{[]string{"rh7-2"}, []string{"--name=b"}, "Node Attributes:\n"},
	}
	for _, tt := range tests {
		runner := cmdutil.NewFakeRunner().Set("cibadmin -l -Q", testCIB, 0)
		env, out := newEnv(runner)
		if err := Attribute(context.Background(), env, tt.args, mods(tt.opts...)); err != nil {
			t.Fatal(err)
		}
		if got := out.String(); got != tt.want {
			t.Fatalf("Attribute(%q, %q) output = %q, want %q", tt.args, tt.opts, got, tt.want)
		}
	}
}

func TestAttributeSet(t *testing.T) {
	runner := cmdutil.NewFakeRunner().
		Set("cibadmin -l -Q", testCIB, 0).
		Set(replaceCmd, "", 0)
	env, _ := newEnv(runner)
	if err := Attribute(context.Background(), env, []string{"rh7-1", "a=", "c=3"}, mods()); err != nil {
		t.Fatal(err)
	}
	conf := pushed(t, runner)
	if !strings.HasPrefix(conf, "<configuration>") {
		t.Fatalf("pushed %q, want configuration section", conf)
	}
	if strings.Contains(conf, `id="nodes-1-a"`) || !strings.Contains(conf, `<nvpair id="nodes-1-c" name="c" value="3"/>`) {
		t.Fatalf("pushed configuration:\n%s", conf)
	}
	for _, c := range runner.CommandLines() {
		if strings.HasPrefix(c, "crm_mon") {
			t.Fatalf("queried cluster state for a node present in the cib")
		}
	}
}

func TestAttributeSetNodeFromState(t *testing.T) {
	runner := cmdutil.NewFakeRunner().
		Set("cibadmin -l -Q", testCIB, 0).
		Set("crm_mon --one-shot -r --as-xml", testState, 0).
		Set(replaceCmd, "", 0)
	env, _ := newEnv(runner)
	if err := Attribute(context.Background(), env, []string{"rh7-3", "x=y"}, mods()); err != nil {
		t.Fatal(err)
	}
	conf := pushed(t, runner)
	if !strings.Contains(conf, `<node id="3" uname="rh7-3" type="member">`) || !strings.Contains(conf, `<instance_attributes id="nodes-3">`) {
		t.Fatalf("pushed configuration:\n%s", conf)
	}
}

func TestAttributeSetErrors(t *testing.T) {
	runner := cmdutil.NewFakeRunner().
		Set("cibadmin -l -Q", testCIB, 0).
		Set("crm_mon --one-shot -r --as-xml", testState, 0)
	env, _ := newEnv(runner)
	ctx := context.Background()

	var nf *cib.NodeNotFoundError
	if err := Attribute(ctx, env, []string{"rh7-9", "x=y"}, mods()); !errors.As(err, &nf) {
		t.Fatalf("Attribute(rh7-9) = %v, want NodeNotFoundError", err)
	}
	if err := Attribute(ctx, env, []string{"rh7-1", "x"}, mods()); err == nil {
		t.Fatalf("Attribute(rh7-1 x) succeeded")
	}
	if err := Attribute(ctx, env, []string{"rh7-1", "x=y"}, mods("--name=x")); err == nil {
		t.Fatalf("Attribute with --name succeeded")
	}
	if err := Attribute(ctx, env, nil, mods("--full")); err == nil {
		t.Fatalf("Attribute(--full) succeeded")
	}

	runner.Set(replaceCmd, "error", 1)
	err := Attribute(ctx, env, []string{"rh7-1", "x=y"}, mods())
	if err == nil || !strings.HasPrefix(err.Error(), "Unable to update cib") {
		t.Fatalf("Attribute() = %v, want update error", err)
	}
}
