// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cib

import (
	"fmt"
	"slices"
	"strings"

	"github.com/beevik/etree"
)

// StonithActionReplacedBy lists the options to use instead of "action".
var StonithActionReplacedBy = []string{"pcmk_off_action", "pcmk_reboot_action"}

// StonithWarnings returns warnings about the fencing setup in doc.
// sbdRunning suppresses the warning about missing stonith devices.
func StonithWarnings(doc *etree.Document, sbdRunning bool) []string {
	stonithEnabled := true
	var devices, withAction, withCycle []string
	for _, conf := range doc.FindElements("//configuration") {
		for _, p := range conf.FindElements("./crm_config//nvpair") {
			if p.SelectAttrValue("name", "") == "stonith-enabled" && IsFalse(p.SelectAttrValue("value", "")) {
				stonithEnabled = false
			}
		}
		for _, prim := range conf.FindElements(".//primitive") {
			if prim.SelectAttrValue("class", "") != "stonith" {
				continue
			}
			id := prim.SelectAttrValue("id", "")
			devices = append(devices, id)
			for _, ia := range prim.SelectElements("instance_attributes") {
				for _, p := range Nvpairs(ia) {
					if p.Name == "action" && p.Value != "" {
						withAction = append(withAction, id)
					}
					if p.Name == "method" && p.Value == "cycle" {
						withCycle = append(withCycle, id)
					}
				}
			}
		}
	}

	var warnings []string
	if stonithEnabled && len(devices) == 0 && !sbdRunning {
		warnings = append(warnings, "no stonith devices and stonith-enabled is not false")
	}
	if len(withAction) > 0 {
		replaced := make([]string, len(StonithActionReplacedBy))
		for i, o := range StonithActionReplacedBy {
			replaced[i] = "'" + o + "'"
		}
		slices.Sort(withAction)
		warnings = append(warnings, fmt.Sprintf(
			"following stonith devices have the 'action' option set, it is recommended to set %s instead: %s",
			strings.Join(replaced, ", "), strings.Join(withAction, ", "),
		))
	}
	if len(withCycle) > 0 {
		slices.Sort(withCycle)
		warnings = append(warnings, fmt.Sprintf(
			"following stonith devices have the 'method' option set to 'cycle' which is potentially dangerous, please consider using 'onoff': %s",
			strings.Join(withCycle, ", "),
		))
	}
	return warnings
}
