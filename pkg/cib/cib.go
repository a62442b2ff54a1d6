// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package cib reads and edits the Pacemaker cluster information base and the
// cluster state printed by crm_mon.
package cib

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/beevik/etree"
)

// Parse parses CIB XML.
func Parse(xml string) (*etree.Document, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromString(xml); err != nil {
		return nil, fmt.Errorf("unable to parse cib: %w", err)
	}
	if doc.Root() == nil || doc.Root().Tag != "cib" {
		return nil, fmt.Errorf("unable to parse cib: missing cib element")
	}
	return doc, nil
}

// String renders doc.
func String(doc *etree.Document) (string, error) {
	return doc.WriteToString()
}

// Section returns the configuration child called name, e.g. "nodes".
func Section(doc *etree.Document, name string) (*etree.Element, error) {
	el := doc.FindElement("/cib/configuration/" + name)
	if el == nil {
		return nil, fmt.Errorf("Unable to get %s section of cib", name)
	}
	return el, nil
}

// NodesSection returns /cib/configuration/nodes.
func NodesSection(doc *etree.Document) (*etree.Element, error) {
	return Section(doc, "nodes")
}

// IDExists reports whether any element in the tree of el has the given id.
func IDExists(el *etree.Element, id string) bool {
	found := false
	walk(treeRoot(el), func(e *etree.Element) bool {
		if e.SelectAttrValue("id", "") == id {
			found = true
		}
		return !found
	})
	return found
}

// FindUniqueID returns id, or id with the lowest "-N" suffix, which is not
// used in the tree of el.
func FindUniqueID(el *etree.Element, id string) string {
	candidate := id
	for i := 1; IDExists(el, candidate); i++ {
		candidate = id + "-" + strconv.Itoa(i)
	}
	return candidate
}

// SubelementID returns a unique id for a child of el named after suffix.
func SubelementID(el *etree.Element, suffix string) string {
	return FindUniqueID(el, el.SelectAttrValue("id", "")+"-"+SanitizeID(suffix))
}

// SanitizeID drops characters which are not allowed in an XML id.
func SanitizeID(id string) string {
	var b strings.Builder
	for i, r := range id {
		ok := unicode.IsLetter(r) || r == '_'
		if i > 0 {
			ok = ok || unicode.IsDigit(r) || r == '-' || r == '.'
		}
		if ok {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func treeRoot(el *etree.Element) *etree.Element {
	for el.Parent() != nil && el.Parent().Tag != "" {
		el = el.Parent()
	}
	return el
}

// walk visits el and its descendants in document order until fn returns
// false.
func walk(el *etree.Element, fn func(*etree.Element) bool) bool {
	if !fn(el) {
		return false
	}
	for _, c := range el.ChildElements() {
		if !walk(c, fn) {
			return false
		}
	}
	return true
}

// IsFalse reports whether a pacemaker boolean value is false.
func IsFalse(v string) bool {
	switch strings.ToLower(v) {
	case "false", "off", "n", "no", "0":
		return true
	}
	return false
}
