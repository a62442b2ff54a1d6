// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package corosync

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

var (
	ErrMissingClosingBrace    = errors.New("unable to parse corosync config: missing closing brace")
	ErrUnexpectedClosingBrace = errors.New("unable to parse corosync config: unexpected closing brace")
)

// LineError reports a line which is neither a section boundary nor an
// attribute.
type LineError struct {
	Line int
	Text string
}

func (e *LineError) Error() string {
	return fmt.Sprintf("unable to parse corosync config: line %d is not opening or closing a section or key: value: %q", e.Line, e.Text)
}

// Attr is a "name: value" line.
type Attr struct {
	Name  string
	Value string
}

// Section is a node of the corosync.conf tree. The root section has no name
// and holds the top-level sections.
type Section struct {
	Name     string
	attrs    []Attr
	sections []*Section
	parent   *Section
}

// NewSection returns an empty detached section.
func NewSection(name string) *Section {
	return &Section{Name: name}
}

// ParseSections parses corosync.conf text into a tree.
func ParseSections(text string) (*Section, error) {
	root := NewSection("")
	cur := root
	for i, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		switch {
		case line == "" || strings.HasPrefix(line, "#"):
		case strings.HasSuffix(line, "{"):
			name := strings.TrimSpace(strings.TrimSuffix(line, "{"))
			child := NewSection(name)
			cur.AddSection(child)
			cur = child
		case line == "}":
			if cur.parent == nil {
				return nil, ErrUnexpectedClosingBrace
			}
			cur = cur.parent
		default:
			name, value, ok := strings.Cut(line, ":")
			if !ok {
				return nil, &LineError{Line: i + 1, Text: line}
			}
			cur.attrs = append(cur.attrs, Attr{
				Name:  strings.TrimSpace(name),
				Value: strings.TrimSpace(value),
			})
		}
	}
	if cur != root {
		return nil, ErrMissingClosingBrace
	}
	return root, nil
}

// Attrs returns the attributes in file order.
func (s *Section) Attrs() []Attr {
	return slices.Clone(s.attrs)
}

// Attr returns the value of the last attribute called name.
func (s *Section) Attr(name string) (string, bool) {
	for i := len(s.attrs) - 1; i >= 0; i-- {
		if s.attrs[i].Name == name {
			return s.attrs[i].Value, true
		}
	}
	return "", false
}

// SetAttr sets name to value, replacing every existing occurrence. An empty
// value removes the attribute.
func (s *Section) SetAttr(name, value string) {
	if value == "" {
		s.DelAttr(name)
		return
	}
	found := false
	s.attrs = slices.DeleteFunc(s.attrs, func(a Attr) bool {
		if a.Name != name {
			return false
		}
		if found {
			return true
		}
		found = true
		return false
	})
	for i := range s.attrs {
		if s.attrs[i].Name == name {
			s.attrs[i].Value = value
			return
		}
	}
	s.attrs = append(s.attrs, Attr{Name: name, Value: value})
}

// DelAttr removes every attribute called name.
func (s *Section) DelAttr(name string) {
	s.attrs = slices.DeleteFunc(s.attrs, func(a Attr) bool { return a.Name == name })
}

// Sections returns the child sections called name, or all children for "".
func (s *Section) Sections(name string) []*Section {
	var out []*Section
	for _, c := range s.sections {
		if name == "" || c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

// Section returns the last child section called name.
func (s *Section) Section(name string) (*Section, bool) {
	found := s.Sections(name)
	if len(found) == 0 {
		return nil, false
	}
	return found[len(found)-1], true
}

// Ensure returns the last child section called name, creating it if needed.
func (s *Section) Ensure(name string) *Section {
	if c, ok := s.Section(name); ok {
		return c
	}
	c := NewSection(name)
	s.AddSection(c)
	return c
}

// AddSection appends child, detaching it from its previous parent.
func (s *Section) AddSection(child *Section) {
	if child.parent != nil {
		child.parent.DelSection(child)
	}
	child.parent = s
	s.sections = append(s.sections, child)
}

// DelSection removes child from s.
func (s *Section) DelSection(child *Section) {
	s.sections = slices.DeleteFunc(s.sections, func(c *Section) bool { return c == child })
	if child.parent == s {
		child.parent = nil
	}
}

// DelSections removes every child section called name.
func (s *Section) DelSections(name string) {
	for _, c := range s.Sections(name) {
		s.DelSection(c)
	}
}

// Empty reports whether s has neither attributes nor sections.
func (s *Section) Empty() bool {
	return len(s.attrs) == 0 && len(s.sections) == 0
}

// String renders the tree in corosync.conf syntax.
func (s *Section) String() string {
	var b strings.Builder
	s.export(&b, "")
	return b.String()
}

const indent = "    "

func (s *Section) export(b *strings.Builder, prefix string) {
	for _, a := range s.attrs {
		fmt.Fprintf(b, "%s%s: %s\n", prefix, a.Name, a.Value)
	}
	if len(s.attrs) > 0 && len(s.sections) > 0 {
		b.WriteString("\n")
	}
	for i, c := range s.sections {
		fmt.Fprintf(b, "%s%s {\n", prefix, c.Name)
		c.export(b, prefix+indent)
		fmt.Fprintf(b, "%s}\n", prefix)
		if i < len(s.sections)-1 {
			b.WriteString("\n")
		}
	}
}
