// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package settings holds the file locations and binaries pcs and pcsd use.
package settings

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
)

// DefaultPath is read when PCS_SETTINGS is not set.
const DefaultPath = "/etc/pcs/settings.toml"

// Version of pcs.
const Version = "0.10.1"

// Settings holds the paths and daemon options pcs and pcsd run with.
type Settings struct {
	CorosyncConfFile string `toml:"corosync_conf_file"`

	CrmMon              string `toml:"crm_mon"`
	CrmTicket           string `toml:"crm_ticket"`
	CibAdmin            string `toml:"cibadmin"`
	CrmAttribute        string `toml:"crm_attribute"`
	StonithAdmin        string `toml:"stonith_admin"`
	CorosyncCmapctl     string `toml:"corosync_cmapctl"`
	CorosyncQuorumtool  string `toml:"corosync_quorumtool"`
	CorosyncQDeviceTool string `toml:"corosync_qdevice_tool"`
	Corosync            string `toml:"corosync"`
	Pacemakerd          string `toml:"pacemakerd"`
	Systemctl           string `toml:"systemctl"`
	Pcs                 string `toml:"pcs"`

	PcsdBind       string `toml:"pcsd_bind"`
	PcsdPort       int    `toml:"pcsd_port"`
	PcsdGUIDir     string `toml:"pcsd_gui_dir"`
	PcsdCertFile   string `toml:"pcsd_cert_file"`
	PcsdKeyFile    string `toml:"pcsd_key_file"`
	RequestTimeout int    `toml:"request_timeout"`

	// PcsdTokensFile holds the tokens pcsd accepts.
	PcsdTokensFile string `toml:"pcsd_tokens_file"`
	// PcsdSuperuser may run everything without explicit permissions.
	PcsdSuperuser string `toml:"pcsd_superuser"`
	// KnownHostsFile holds the tokens pcs presents to pcsd on other nodes.
	KnownHostsFile string `toml:"known_hosts_file"`
}

// Default returns the compiled-in settings.
func Default() Settings {
	return Settings{
		CorosyncConfFile:    "/etc/corosync/corosync.conf",
		CrmMon:              "crm_mon",
		CrmTicket:           "crm_ticket",
		CibAdmin:            "cibadmin",
		CrmAttribute:        "crm_attribute",
		StonithAdmin:        "stonith_admin",
		CorosyncCmapctl:     "corosync-cmapctl",
		CorosyncQuorumtool:  "corosync-quorumtool",
		CorosyncQDeviceTool: "corosync-qdevice-tool",
		Corosync:            "corosync",
		Pacemakerd:          "pacemakerd",
		Systemctl:           "systemctl",
		Pcs:                 "pcs",
		PcsdBind:            "",
		PcsdPort:            2224,
		PcsdGUIDir:          "/usr/share/pcsd/public",
		PcsdCertFile:        "/var/lib/pcsd/pcsd.crt",
		PcsdKeyFile:         "/var/lib/pcsd/pcsd.key",
		RequestTimeout:      60,
		PcsdTokensFile:      "/var/lib/pcsd/tokens.toml",
		PcsdSuperuser:       "hacluster",
		KnownHostsFile:      "/var/lib/pcsd/known-hosts.toml",
	}
}

// Load returns the defaults overridden by the TOML file at path. A missing
// file is not an error.
func Load(path string) (Settings, error) {
	s := Default()
	if path == "" {
		return s, nil
	}
	if _, err := toml.DecodeFile(path, &s); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Settings{}, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return s, nil
}

// FromEnv loads the settings file named by PCS_SETTINGS (or DefaultPath) and
// applies PCSD_PORT and PCSD_BIND.
func FromEnv() (Settings, error) {
	path := DefaultPath
	if p := os.Getenv("PCS_SETTINGS"); p != "" {
		path = p
	}
	s, err := Load(path)
	if err != nil {
		return Settings{}, err
	}
	if port := os.Getenv("PCSD_PORT"); port != "" {
		n, err := strconv.Atoi(port)
		if err != nil || n <= 0 || n > 65535 {
			return Settings{}, fmt.Errorf("invalid PCSD_PORT %q", port)
		}
		s.PcsdPort = n
	}
	if bind := os.Getenv("PCSD_BIND"); bind != "" {
		s.PcsdBind = bind
	}
	return s, nil
}

// PcsdAddr is the address pcsd listens on.
func (s Settings) PcsdAddr() string {
	return net.JoinHostPort(s.PcsdBind, strconv.Itoa(s.PcsdPort))
}
