// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cib

import "github.com/beevik/etree"

// GuestNode is a resource running as a pacemaker guest node.
type GuestNode struct {
	Name string `json:"name"`
	Addr string `json:"addr"`
}

// FindGuestNodes returns the guest nodes defined by primitives under el. The
// address defaults to the node name when remote-addr is not set.
func FindGuestNodes(el *etree.Element) []GuestNode {
	var out []GuestNode
	for _, prim := range el.FindElements(".//primitive") {
		name, _ := MetaAttribute(prim, "remote-node")
		if name == "" {
			continue
		}
		addr, _ := MetaAttribute(prim, "remote-addr")
		if addr == "" {
			addr = name
		}
		out = append(out, GuestNode{Name: name, Addr: addr})
	}
	return out
}
