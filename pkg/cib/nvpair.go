// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cib

import "github.com/beevik/etree"

// NVPair is a name and value of an nvpair element.
type NVPair struct {
	Name  string
	Value string
}

// Nvpairs returns the nvpair children of nvset.
func Nvpairs(nvset *etree.Element) []NVPair {
	var out []NVPair
	for _, p := range nvset.SelectElements("nvpair") {
		out = append(out, NVPair{
			Name:  p.SelectAttrValue("name", ""),
			Value: p.SelectAttrValue("value", ""),
		})
	}
	return out
}

// SetNvpair sets name to value in nvset. An empty value removes the nvpair.
func SetNvpair(nvset *etree.Element, name, value string) {
	var existing *etree.Element
	for _, p := range nvset.SelectElements("nvpair") {
		if p.SelectAttrValue("name", "") == name {
			existing = p
			break
		}
	}
	switch {
	case existing != nil && value == "":
		nvset.RemoveChild(existing)
	case existing != nil:
		existing.CreateAttr("value", value)
	case value != "":
		p := nvset.CreateElement("nvpair")
		p.CreateAttr("id", SubelementID(nvset, name))
		p.CreateAttr("name", name)
		p.CreateAttr("value", value)
	}
}

// UpdateNvset applies pairs to nvset in order and removes nvset from its
// parent when nothing is left in it.
func UpdateNvset(nvset *etree.Element, pairs []NVPair) {
	for _, p := range pairs {
		SetNvpair(nvset, p.Name, p.Value)
	}
	removeWhenPointless(nvset)
}

func removeWhenPointless(el *etree.Element) {
	if len(el.ChildElements()) > 0 {
		return
	}
	for _, a := range el.Attr {
		if a.Key != "id" {
			return
		}
	}
	if parent := el.Parent(); parent != nil {
		parent.RemoveChild(el)
	}
}

// MetaAttribute returns the value of a meta attribute of a resource.
func MetaAttribute(resource *etree.Element, name string) (string, bool) {
	for _, meta := range resource.SelectElements("meta_attributes") {
		for _, p := range Nvpairs(meta) {
			if p.Name == name {
				return p.Value, true
			}
		}
	}
	return "", false
}
