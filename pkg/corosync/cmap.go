// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package corosync

import (
	"regexp"
	"slices"
	"strings"
)

var (
	cmapNodeNameRe   = regexp.MustCompile(`(?m)^nodelist\.node\.(\d+)\.name .*= (.*)$`)
	cmapNodeIDRe     = regexp.MustCompile(`(?m)^nodelist\.node\.(\d+)\.nodeid .*= (\d+)$`)
	cmapNodeStatusRe = regexp.MustCompile(`(?m)^runtime\.totem\.pg\.mrp\.srp\.members\.(\d+)\.status.*= (.*)$`)
)

// ActiveNodes returns the sorted names of the nodes which corosync reports as
// joined in the output of corosync-cmapctl.
func ActiveNodes(cmap string) []string {
	indexToID := make(map[string]string)
	for _, m := range cmapNodeIDRe.FindAllStringSubmatch(cmap, -1) {
		indexToID[m[1]] = strings.TrimSpace(m[2])
	}
	idToStatus := make(map[string]string)
	for _, m := range cmapNodeStatusRe.FindAllStringSubmatch(cmap, -1) {
		idToStatus[m[1]] = strings.TrimSpace(m[2])
	}
	var active []string
	for _, m := range cmapNodeNameRe.FindAllStringSubmatch(cmap, -1) {
		id, ok := indexToID[m[1]]
		if !ok {
			continue
		}
		if idToStatus[id] == "joined" {
			active = append(active, strings.TrimSpace(m[2]))
		}
	}
	slices.Sort(active)
	return active
}

// CmapValue returns the value of a "key (type) = value" line printed by
// corosync-cmapctl -g.
func CmapValue(line string) string {
	parts := strings.Split(line, "=")
	return strings.TrimSpace(parts[len(parts)-1])
}
