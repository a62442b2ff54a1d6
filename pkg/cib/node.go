// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cib

import (
	"fmt"

	"github.com/beevik/etree"
)

// NodeNotFoundError is returned for a node missing from both the CIB and the
// cluster state.
type NodeNotFoundError struct {
	Node string
}

func (e *NodeNotFoundError) Error() string {
	return fmt.Sprintf("Node '%s' does not appear to exist in configuration", e.Node)
}

// UpdateNodeInstanceAttrs updates the first instance_attributes of the node
// with uname name, creating the instance_attributes if needed. A node missing
// from the CIB is created from its entry in stateNodes.
func UpdateNodeInstanceAttrs(doc *etree.Document, name string, attrs []NVPair, stateNodes []StateNode) error {
	nodes, err := NodesSection(doc)
	if err != nil {
		return err
	}
	node, err := ensureNode(nodes, name, stateNodes)
	if err != nil {
		return err
	}
	ia := node.SelectElement("instance_attributes")
	if ia == nil {
		ia = node.CreateElement("instance_attributes")
		ia.CreateAttr("id", FindUniqueID(node, "nodes-"+node.SelectAttrValue("id", "")))
	}
	UpdateNvset(ia, attrs)
	return nil
}

// NodeByUname returns the node element with the given uname.
func NodeByUname(nodes *etree.Element, uname string) *etree.Element {
	for _, n := range nodes.SelectElements("node") {
		if n.SelectAttrValue("uname", "") == uname {
			return n
		}
	}
	return nil
}

func ensureNode(nodes *etree.Element, name string, stateNodes []StateNode) (*etree.Element, error) {
	if n := NodeByUname(nodes, name); n != nil {
		return n, nil
	}
	for _, s := range stateNodes {
		if s.Name != name {
			continue
		}
		n := nodes.CreateElement("node")
		n.CreateAttr("id", s.ID)
		n.CreateAttr("uname", s.Name)
		if s.Type != "" {
			n.CreateAttr("type", s.Type)
		}
		return n, nil
	}
	return nil, &NodeNotFoundError{Node: name}
}

// NodeAttributes returns the instance attributes of every node in the CIB,
// keyed by uname.
func NodeAttributes(doc *etree.Document) (map[string][]NVPair, error) {
	nodes, err := NodesSection(doc)
	if err != nil {
		return nil, err
	}
	out := make(map[string][]NVPair)
	for _, n := range nodes.SelectElements("node") {
		uname := n.SelectAttrValue("uname", "")
		for _, ia := range n.SelectElements("instance_attributes") {
			out[uname] = append(out[uname], Nvpairs(ia)...)
		}
	}
	return out, nil
}
