// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cib

import (
	"errors"

	"github.com/beevik/etree"
)

// ErrBadClusterState is returned for crm_mon output without a nodes section.
var ErrBadClusterState = errors.New("cannot load cluster status, xml does not conform to the schema")

// StateNode is a node as reported by crm_mon.
type StateNode struct {
	Name        string
	ID          string
	Type        string
	Online      bool
	Standby     bool
	Maintenance bool
}

// IsRemote reports whether the node is a pacemaker remote or guest node.
func (n StateNode) IsRemote() bool {
	return n.Type == "remote"
}

// ClusterState is the parsed output of crm_mon --as-xml.
type ClusterState struct {
	Nodes []StateNode
}

// ParseClusterState parses the output of crm_mon -X.
func ParseClusterState(xml string) (ClusterState, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromString(xml); err != nil {
		return ClusterState{}, errors.Join(ErrBadClusterState, err)
	}
	root := doc.Root()
	if root == nil || root.Tag != "crm_mon" {
		return ClusterState{}, ErrBadClusterState
	}
	nodes := root.SelectElement("nodes")
	if nodes == nil {
		return ClusterState{}, ErrBadClusterState
	}
	var st ClusterState
	for _, n := range nodes.SelectElements("node") {
		st.Nodes = append(st.Nodes, StateNode{
			Name:        n.SelectAttrValue("name", ""),
			ID:          n.SelectAttrValue("id", ""),
			Type:        n.SelectAttrValue("type", ""),
			Online:      n.SelectAttrValue("online", "") == "true",
			Standby:     n.SelectAttrValue("standby", "") == "true",
			Maintenance: n.SelectAttrValue("maintenance", "") == "true",
		})
	}
	return st, nil
}
