// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package corosync reads and edits corosync.conf and the corosync runtime
// state reported by corosync-cmapctl.
package corosync

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/oalbrigt/pcs/pkg/parseargs"
)

// QuorumOptionNames are the quorum options pcs manages.
var QuorumOptionNames = []string{
	"auto_tie_breaker",
	"last_man_standing",
	"last_man_standing_window",
	"wait_for_all",
}

// Node is a nodelist.node entry.
type Node struct {
	ID    string
	Name  string
	Addrs []string
}

// Config is a parsed corosync.conf.
type Config struct {
	root *Section
}

// ParseConfig parses corosync.conf text.
func ParseConfig(text string) (*Config, error) {
	root, err := ParseSections(text)
	if err != nil {
		return nil, err
	}
	return &Config{root: root}, nil
}

func (c *Config) String() string {
	return c.root.String()
}

// Root returns the top-level section.
func (c *Config) Root() *Section {
	return c.root
}

// ClusterName returns totem.cluster_name.
func (c *Config) ClusterName() string {
	var name string
	for _, totem := range c.root.Sections("totem") {
		if v, ok := totem.Attr("cluster_name"); ok {
			name = v
		}
	}
	return name
}

// Nodes returns the nodelist entries in file order.
func (c *Config) Nodes() []Node {
	var nodes []Node
	for _, nl := range c.root.Sections("nodelist") {
		for _, n := range nl.Sections("node") {
			node := Node{}
			node.ID, _ = n.Attr("nodeid")
			node.Name, _ = n.Attr("name")
			for _, a := range n.Attrs() {
				if strings.HasPrefix(a.Name, "ring") && strings.HasSuffix(a.Name, "_addr") {
					node.Addrs = append(node.Addrs, a.Value)
				}
			}
			nodes = append(nodes, node)
		}
	}
	return nodes
}

// NodeNames returns node names, falling back to ring0_addr for nodes without
// a name.
func (c *Config) NodeNames() []string {
	var names []string
	for _, n := range c.Nodes() {
		switch {
		case n.Name != "":
			names = append(names, n.Name)
		case len(n.Addrs) > 0:
			names = append(names, n.Addrs[0])
		}
	}
	return names
}

func (c *Config) quorumSections() []*Section {
	return c.root.Sections("quorum")
}

// QuorumOptions returns the managed quorum options which are set.
func (c *Config) QuorumOptions() map[string]string {
	opts := make(map[string]string)
	for _, q := range c.quorumSections() {
		for _, a := range q.Attrs() {
			if slices.Contains(QuorumOptionNames, a.Name) {
				opts[a.Name] = a.Value
			}
		}
	}
	return opts
}

// SetQuorumOptions validates and applies quorum options. An empty value
// removes the option. With force, unknown options are set too and reported
// as warnings.
func (c *Config) SetQuorumOptions(opts map[string]string, force bool) (warnings []string, err error) {
	v := &validator{force: force}
	if err := v.quorumOptions(opts); err != nil {
		return nil, err
	}
	q := c.root.Ensure("quorum")
	for _, name := range slices.Sorted(maps.Keys(opts)) {
		for _, other := range c.quorumSections() {
			if other != q {
				other.DelAttr(name)
			}
		}
		q.SetAttr(name, opts[name])
	}
	c.updateTwoNode()
	return v.warnings, nil
}

func (v *validator) quorumOptions(opts map[string]string) error {
	for _, name := range slices.Sorted(maps.Keys(opts)) {
		value := opts[name]
		if !slices.Contains(QuorumOptionNames, name) {
			if err := v.forceable("invalid quorum option '%s', allowed options are: %s",
				name, strings.Join(QuorumOptionNames, ", ")); err != nil {
				return err
			}
			continue
		}
		if value == "" {
			continue
		}
		switch name {
		case "last_man_standing_window":
			if !isPositiveInt(value) {
				return parseargs.Errorf("'%s' is not a valid %s value, use positive integer", value, name)
			}
		default:
			if value != "0" && value != "1" {
				return parseargs.Errorf("'%s' is not a valid %s value, use 0, 1", value, name)
			}
		}
	}
	return nil
}

func isPositiveInt(s string) bool {
	n, err := strconv.Atoi(s)
	return err == nil && n > 0
}

// updateTwoNode keeps quorum.two_node in line with the node count: two_node
// is set for a two-node cluster without a quorum device or auto_tie_breaker.
func (c *Config) updateTwoNode() {
	twoNode := len(c.Nodes()) == 2 && !c.HasDevice() && c.QuorumOptions()["auto_tie_breaker"] != "1"
	for _, q := range c.quorumSections() {
		q.DelAttr("two_node")
	}
	if twoNode {
		c.root.Ensure("quorum").SetAttr("two_node", "1")
	}
}

// Device is the quorum.device configuration.
type Device struct {
	Model             string
	GenericOptions    map[string]string
	ModelOptions      map[string]string
	HeuristicsOptions map[string]string
}

func (c *Config) deviceSection() (*Section, bool) {
	var dev *Section
	for _, q := range c.quorumSections() {
		if d, ok := q.Section("device"); ok {
			dev = d
		}
	}
	return dev, dev != nil
}

// HasDevice reports whether a quorum device is configured.
func (c *Config) HasDevice() bool {
	_, ok := c.deviceSection()
	return ok
}

// Device returns the quorum device configuration.
func (c *Config) Device() (Device, bool) {
	sec, ok := c.deviceSection()
	if !ok {
		return Device{}, false
	}
	d := Device{
		GenericOptions:    make(map[string]string),
		ModelOptions:      make(map[string]string),
		HeuristicsOptions: make(map[string]string),
	}
	for _, a := range sec.Attrs() {
		if a.Name == "model" {
			d.Model = a.Value
			continue
		}
		d.GenericOptions[a.Name] = a.Value
	}
	if d.Model != "" {
		for _, m := range sec.Sections(d.Model) {
			for _, a := range m.Attrs() {
				d.ModelOptions[a.Name] = a.Value
			}
		}
	}
	for _, h := range sec.Sections("heuristics") {
		for _, a := range h.Attrs() {
			d.HeuristicsOptions[a.Name] = a.Value
		}
	}
	return d, true
}

// AddDevice adds a quorum device. With force, an unknown model and unknown
// options are accepted and reported as warnings.
func (c *Config) AddDevice(model string, modelOpts, genericOpts, heuristicsOpts parseargs.Options, force bool) (warnings []string, err error) {
	if c.HasDevice() {
		return nil, fmt.Errorf("quorum device is already defined")
	}
	v := &validator{force: force}
	if err := v.model(model); err != nil {
		return nil, err
	}
	if model == "net" {
		if err := v.netOptions(modelOpts.Map(), true); err != nil {
			return nil, err
		}
	}
	if err := v.options("quorum device", genericOpts.Map(), genericOptionValues); err != nil {
		return nil, err
	}
	if err := v.heuristicsOptions(heuristicsOpts.Map()); err != nil {
		return nil, err
	}

	dev := NewSection("device")
	for _, name := range genericOpts.Names() {
		dev.SetAttr(name, genericOpts.Get(name))
	}
	dev.SetAttr("model", model)
	if modelOpts.Len() > 0 {
		m := NewSection(model)
		for _, name := range modelOpts.Names() {
			m.SetAttr(name, modelOpts.Get(name))
		}
		dev.AddSection(m)
	}
	if heuristicsOpts.Len() > 0 {
		h := NewSection("heuristics")
		for _, name := range heuristicsOpts.Names() {
			h.SetAttr(name, heuristicsOpts.Get(name))
		}
		if _, ok := h.Attr("mode"); !ok && hasExec(heuristicsOpts.Map()) {
			h.SetAttr("mode", "on")
		}
		dev.AddSection(h)
	}
	c.root.Ensure("quorum").AddSection(dev)
	c.updateTwoNode()
	return v.warnings, nil
}

// UpdateDevice changes options of the configured quorum device. Empty values
// remove options; sections left empty are removed.
func (c *Config) UpdateDevice(modelOpts, genericOpts, heuristicsOpts parseargs.Options, force bool) (warnings []string, err error) {
	dev, ok := c.deviceSection()
	if !ok {
		return nil, fmt.Errorf("no quorum device is defined in this cluster")
	}
	v := &validator{force: force}
	model, _ := dev.Attr("model")
	if model == "net" {
		if err := v.netOptions(modelOpts.Map(), false); err != nil {
			return nil, err
		}
	}
	if err := v.options("quorum device", genericOpts.Map(), genericOptionValues); err != nil {
		return nil, err
	}
	if err := v.heuristicsOptions(heuristicsOpts.Map()); err != nil {
		return nil, err
	}

	for _, name := range genericOpts.Names() {
		dev.SetAttr(name, genericOpts.Get(name))
	}
	updateSubsection(dev, model, modelOpts)
	updateSubsection(dev, "heuristics", heuristicsOpts)
	return v.warnings, nil
}

func updateSubsection(dev *Section, name string, opts parseargs.Options) {
	if opts.Len() == 0 {
		return
	}
	sec := dev.Ensure(name)
	for _, n := range opts.Names() {
		sec.SetAttr(n, opts.Get(n))
	}
	if sec.Empty() {
		dev.DelSection(sec)
	}
}

// RemoveDevice removes the quorum device.
func (c *Config) RemoveDevice() error {
	if !c.HasDevice() {
		return fmt.Errorf("no quorum device is defined in this cluster")
	}
	for _, q := range c.quorumSections() {
		q.DelSections("device")
	}
	c.updateTwoNode()
	return nil
}

// RemoveDeviceHeuristics removes the heuristics of the quorum device.
func (c *Config) RemoveDeviceHeuristics() error {
	dev, ok := c.deviceSection()
	if !ok {
		return fmt.Errorf("no quorum device is defined in this cluster")
	}
	dev.DelSections("heuristics")
	return nil
}

// validator checks user supplied options. With force, the problems which
// may be overridden are collected as warnings instead of failing.
type validator struct {
	force    bool
	warnings []string
}

func (v *validator) forceable(format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	if v.force {
		v.warnings = append(v.warnings, msg)
		return nil
	}
	return parseargs.Errorf("%s, use --force to override", msg)
}

func (v *validator) model(model string) error {
	if model == "net" {
		return nil
	}
	return v.forceable("'%s' is not a valid model value, use 'net'", model)
}

var netOptionValues = map[string]func(string) bool{
	"algorithm":        oneOf("ffsplit", "lms"),
	"connect_timeout":  isPositiveInt,
	"force_ip_version": oneOf("0", "4", "6"),
	"host":             func(v string) bool { return v != "" },
	"port":             isPort,
	"tie_breaker": func(v string) bool {
		return v == "lowest" || v == "highest" || isPositiveInt(v)
	},
}

func (v *validator) netOptions(opts map[string]string, adding bool) error {
	if adding {
		if opts["host"] == "" {
			return parseargs.Errorf("required option 'host' is missing")
		}
	} else if host, ok := opts["host"]; ok && host == "" {
		return parseargs.Errorf("required option 'host' cannot be removed")
	}
	return v.options("quorum device model", opts, netOptionValues)
}

var genericOptionValues = map[string]func(string) bool{
	"sync_timeout": isPositiveInt,
	"timeout":      isPositiveInt,
}

var heuristicsOptionValues = map[string]func(string) bool{
	"mode":         oneOf("off", "on", "sync"),
	"interval":     isPositiveInt,
	"sync_timeout": isPositiveInt,
	"timeout":      isPositiveInt,
}

func (v *validator) heuristicsOptions(opts map[string]string) error {
	rest := make(map[string]string)
	for k, val := range opts {
		if k == "exec_" {
			return parseargs.Errorf("heuristics option 'exec_' is missing a name")
		}
		if strings.HasPrefix(k, "exec_") {
			continue
		}
		rest[k] = val
	}
	return v.options("heuristics", rest, heuristicsOptionValues)
}

func hasExec(opts map[string]string) bool {
	for k, v := range opts {
		if strings.HasPrefix(k, "exec_") && v != "" {
			return true
		}
	}
	return false
}

func (v *validator) options(kind string, opts map[string]string, allowed map[string]func(string) bool) error {
	for _, name := range slices.Sorted(maps.Keys(opts)) {
		value := opts[name]
		check, ok := allowed[name]
		if !ok {
			if err := v.forceable("invalid %s option '%s', allowed options are: %s",
				kind, name, strings.Join(slices.Sorted(maps.Keys(allowed)), ", ")); err != nil {
				return err
			}
			continue
		}
		if value == "" || check(value) {
			continue
		}
		if err := v.forceable("'%s' is not a valid %s value", value, name); err != nil {
			return err
		}
	}
	return nil
}

func oneOf(values ...string) func(string) bool {
	return func(v string) bool { return slices.Contains(values, v) }
}

func isPort(v string) bool {
	n, err := strconv.Atoi(v)
	return err == nil && n > 0 && n <= 65535
}
