// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pcsd

import (
	"context"
	"log"
	"net/http"
	"os"
	"regexp"
	"slices"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/oalbrigt/pcs/pkg/cib"
	"github.com/oalbrigt/pcs/pkg/corosync"
	"github.com/oalbrigt/pcs/pkg/fileutil"
	"github.com/oalbrigt/pcs/pkg/settings"
	"github.com/oalbrigt/pcs/pkg/svc"
)

// handleCheckAuth is only reached with a valid token.
func (s *Server) handleCheckAuth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]bool{"success": true})
}

// ServiceStatus is the state of a cluster daemon on a node.
type ServiceStatus struct {
	Running bool `json:"running"`
	Enabled bool `json:"enabled"`
}

// NodeStatus is the response of /remote/status.
type NodeStatus struct {
	ClusterName      string                   `json:"cluster_name"`
	CorosyncNodes    []string                 `json:"corosync_nodes"`
	CorosyncOnline   []string                 `json:"corosync_online"`
	CorosyncOffline  []string                 `json:"corosync_offline"`
	PacemakerOnline  []string                 `json:"pacemaker_online"`
	PacemakerOffline []string                 `json:"pacemaker_offline"`
	PacemakerStandby []string                 `json:"pacemaker_standby"`
	GuestNodes       []cib.GuestNode          `json:"guest_nodes"`
	Services         map[string]ServiceStatus `json:"services"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if !s.permitted(w, r, PermissionRead) {
		return
	}
	writeJSON(w, s.nodeStatus(r.Context()))
}

// nodeStatus collects what is known about the local node. Parts which
// cannot be determined are left empty.
func (s *Server) nodeStatus(ctx context.Context) NodeStatus {
	st := NodeStatus{Services: make(map[string]ServiceStatus)}
	set := s.cfg.Settings

	if text, err := os.ReadFile(set.CorosyncConfFile); err == nil {
		if conf, err := corosync.ParseConfig(string(text)); err == nil {
			st.ClusterName = conf.ClusterName()
			st.CorosyncNodes = conf.NodeNames()
		} else {
			log.Printf("status: %s: %v", set.CorosyncConfFile, err)
		}
	}
	if res, err := s.cfg.Runner.Run(ctx, set.CorosyncCmapctl); err == nil && res.Success() {
		st.CorosyncOnline = corosync.ActiveNodes(res.Stdout)
		for _, n := range st.CorosyncNodes {
			if !slices.Contains(st.CorosyncOnline, n) {
				st.CorosyncOffline = append(st.CorosyncOffline, n)
			}
		}
	}
	if res, err := s.cfg.Runner.Run(ctx, set.CrmMon, "--one-shot", "-r", "--as-xml"); err == nil && res.Success() {
		if state, err := cib.ParseClusterState(res.Stdout); err == nil {
			for _, n := range state.Nodes {
				switch {
				case n.Standby:
					st.PacemakerStandby = append(st.PacemakerStandby, n.Name)
				case n.Online:
					st.PacemakerOnline = append(st.PacemakerOnline, n.Name)
				default:
					st.PacemakerOffline = append(st.PacemakerOffline, n.Name)
				}
			}
		}
	}
	if res, err := s.cfg.Runner.Run(ctx, set.CibAdmin, "--local", "--query"); err == nil && res.Success() {
		if doc, err := cib.Parse(res.Stdout); err == nil {
			st.GuestNodes = cib.FindGuestNodes(doc.Root())
		}
	}
	for _, d := range s.systemd.DaemonStatuses(ctx, svc.ClusterDaemons) {
		if d.Err == nil {
			st.Services[d.Name] = ServiceStatus{Running: d.Running, Enabled: d.Enabled}
		}
	}
	return st
}

var (
	pacemakerVersionRe = regexp.MustCompile(`Pacemaker (\S+)`)
	corosyncVersionRe  = regexp.MustCompile(`version '([^']+)'`)
)

// versionParts returns major, minor and patch of a version string, or an
// empty slice when it cannot be parsed.
func versionParts(version string) []uint64 {
	v, err := semver.NewVersion(version)
	if err != nil {
		return []uint64{}
	}
	return []uint64{v.Major(), v.Minor(), v.Patch()}
}

// matchVersion returns the version captured by re in out.
func matchVersion(re *regexp.Regexp, out string) []uint64 {
	m := re.FindStringSubmatch(out)
	if m == nil {
		return []uint64{}
	}
	return versionParts(m[1])
}

func (s *Server) handleSwVersions(w http.ResponseWriter, r *http.Request) {
	if !s.permitted(w, r, PermissionRead) {
		return
	}
	ctx := r.Context()
	set := s.cfg.Settings
	out := map[string][]uint64{
		"pcs":       versionParts(settings.Version),
		"pacemaker": {},
		"corosync":  {},
	}
	if res, err := s.cfg.Runner.Run(ctx, set.Pacemakerd, "--version"); err == nil && res.Success() {
		out["pacemaker"] = matchVersion(pacemakerVersionRe, res.Stdout)
	}
	if res, err := s.cfg.Runner.Run(ctx, set.Corosync, "-v"); err == nil && res.Success() {
		out["corosync"] = matchVersion(corosyncVersionRe, res.Output())
	}
	writeJSON(w, out)
}

func (s *Server) handleSetCorosyncConf(w http.ResponseWriter, r *http.Request) {
	if !s.permitted(w, r, PermissionFull) {
		return
	}
	text := r.FormValue("corosync_conf")
	if strings.TrimSpace(text) == "" {
		log.Printf("Invalid corosync.conf file")
		writeText(w, http.StatusBadRequest, "Failed")
		return
	}
	if _, err := corosync.ParseConfig(text); err != nil {
		log.Printf("Invalid corosync.conf file: %v", err)
		writeText(w, http.StatusBadRequest, "Failed")
		return
	}
	if err := fileutil.WriteFile(s.cfg.Settings.CorosyncConfFile, []byte(text), 0644); err != nil {
		log.Printf("Unable to write %s: %v", s.cfg.Settings.CorosyncConfFile, err)
		writeText(w, http.StatusInternalServerError, "Failed")
		return
	}
	writeText(w, http.StatusOK, "Succeeded")
}
