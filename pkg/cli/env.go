// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/beevik/etree"
	"github.com/fatih/color"
	"github.com/oalbrigt/pcs/pkg/cib"
	"github.com/oalbrigt/pcs/pkg/cmdutil"
	"github.com/oalbrigt/pcs/pkg/corosync"
	"github.com/oalbrigt/pcs/pkg/fileutil"
	"github.com/oalbrigt/pcs/pkg/svc"
)

// PrintWarning prints a "WARNING: " line to Stdout, as part of command
// output rather than a diagnostic.
func (e *Env) PrintWarning(msg string) {
	e.colored(color.FgYellow, e.Stdout, "WARNING: ", msg)
}

// Systemd returns a systemctl wrapper using the environment's runner.
func (e *Env) Systemd() *svc.Systemd {
	return &svc.Systemd{Runner: e.Runner, Systemctl: e.Settings.Systemctl}
}

// HasCorosyncConf reports whether the corosync.conf file exists.
func (e *Env) HasCorosyncConf() bool {
	return fileutil.Exists(e.Settings.CorosyncConfFile)
}

// CorosyncConf reads and parses corosync.conf.
func (e *Env) CorosyncConf() (*corosync.Config, error) {
	path := e.Settings.CorosyncConfFile
	text, err := os.ReadFile(path)
	if err != nil {
		var pe *fs.PathError
		if errors.As(err, &pe) {
			err = pe.Err
		}
		return nil, fmt.Errorf("Unable to read %s: %v", path, err)
	}
	conf, err := corosync.ParseConfig(string(text))
	if err != nil {
		return nil, fmt.Errorf("Unable to parse %s: %w", path, err)
	}
	return conf, nil
}

// WriteCorosyncConf stores conf to the local corosync.conf file.
func (e *Env) WriteCorosyncConf(conf *corosync.Config) error {
	path := e.Settings.CorosyncConfFile
	if err := fileutil.WriteFile(path, []byte(conf.String()), 0644); err != nil {
		return fmt.Errorf("Unable to write %s: %w", path, err)
	}
	return nil
}

// ClusterStateXML returns the output of crm_mon in XML.
func (e *Env) ClusterStateXML(ctx context.Context) (string, error) {
	res, err := e.Runner.Run(ctx, e.Settings.CrmMon, "--one-shot", "-r", "--as-xml")
	if err != nil {
		return "", err
	}
	if !res.Success() {
		return "", errors.New("error running crm_mon, is pacemaker running?")
	}
	return res.Stdout, nil
}

// ClusterState returns the parsed status of the cluster.
func (e *Env) ClusterState(ctx context.Context) (cib.ClusterState, error) {
	xml, err := e.ClusterStateXML(ctx)
	if err != nil {
		return cib.ClusterState{}, err
	}
	return cib.ParseClusterState(xml)
}

// CIB returns the cluster information base. With -f the runner points
// cibadmin at the file through CIB_file.
func (e *Env) CIB(ctx context.Context) (*etree.Document, error) {
	res, err := e.Runner.Run(ctx, e.Settings.CibAdmin, "-l", "-Q")
	if err != nil {
		return nil, err
	}
	if !res.Success() {
		return nil, fmt.Errorf("unable to get cib\n%s", strings.TrimSpace(res.Output()))
	}
	return cib.Parse(res.Stdout)
}

// ReplaceCIBConfiguration pushes the configuration section of doc.
func (e *Env) ReplaceCIBConfiguration(ctx context.Context, doc *etree.Document) error {
	conf := doc.FindElement("/cib/configuration")
	if conf == nil {
		return errors.New("Unable to get configuration section of cib")
	}
	out := etree.NewDocument()
	out.SetRoot(conf.Copy())
	xml, err := out.WriteToString()
	if err != nil {
		return err
	}
	ir, ok := e.Runner.(cmdutil.InputRunner)
	if !ok {
		return errors.New("unable to update cib: runner cannot pipe input")
	}
	res, err := ir.RunInput(ctx, xml, e.Settings.CibAdmin, "--replace", "-V", "--xml-pipe", "-o", "configuration")
	if err != nil {
		return err
	}
	if !res.Success() {
		return fmt.Errorf("Unable to update cib\n%s", strings.TrimSpace(res.Output()))
	}
	return nil
}

// CorosyncActiveNodes returns the nodes which corosync reports as joined.
func (e *Env) CorosyncActiveNodes(ctx context.Context) ([]string, error) {
	res, err := e.Runner.Run(ctx, e.Settings.CorosyncCmapctl)
	if err != nil {
		return nil, err
	}
	if !res.Success() {
		return nil, errors.New("unable to get corosync membership, is corosync running?")
	}
	return corosync.ActiveNodes(res.Stdout), nil
}

// CIBProperty returns the value of a cluster property, or "" when it is not
// set.
func (e *Env) CIBProperty(ctx context.Context, name string) (string, error) {
	res, err := e.Runner.Run(ctx, e.Settings.CrmAttribute, "--type", "crm_config", "--name", name, "--query", "--quiet")
	if err != nil {
		return "", err
	}
	if !res.Success() {
		return "", nil
	}
	return strings.TrimSpace(res.Stdout), nil
}

// SetCIBProperty sets a cluster property. An empty value removes it.
func (e *Env) SetCIBProperty(ctx context.Context, name, value string) error {
	args := []string{"--type", "crm_config", "--name", name}
	if value == "" {
		args = append(args, "--delete")
	} else {
		args = append(args, "--update", value)
	}
	res, err := e.Runner.Run(ctx, e.Settings.CrmAttribute, args...)
	if err != nil {
		return err
	}
	if !res.Success() {
		return fmt.Errorf("Unable to set %s: %s", name, strings.TrimSpace(res.Output()))
	}
	return nil
}
