// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package pcsd implements the pcs daemon HTTP API and a client for it.
package pcsd

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/oalbrigt/pcs/pkg/cmdutil"
	"github.com/oalbrigt/pcs/pkg/compress"
	"github.com/oalbrigt/pcs/pkg/settings"
	"github.com/oalbrigt/pcs/pkg/svc"
)

// Config is the configuration of a Server.
type Config struct {
	Settings settings.Settings
	Runner   cmdutil.Runner
}

// Server serves the pcsd API.
type Server struct {
	cfg     Config
	systemd *svc.Systemd
}

// NewServer returns a Server for cfg.
func NewServer(cfg Config) *Server {
	return &Server{
		cfg: cfg,
		systemd: &svc.Systemd{
			Runner:    cfg.Runner,
			Systemctl: cfg.Settings.Systemctl,
		},
	}
}

// Handler returns the root handler of the daemon.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /remote/check_auth", s.handleCheckAuth)
	mux.HandleFunc("GET /remote/status", s.handleStatus)
	mux.HandleFunc("GET /remote/get_sw_versions", s.handleSwVersions)
	mux.HandleFunc("POST /remote/set_corosync_conf", s.handleSetCorosyncConf)
	mux.HandleFunc("POST /run_pcs", s.handleRunPcs)
	mux.Handle("/ui/", guiHeaders(http.StripPrefix("/ui/", http.FileServer(http.Dir(s.cfg.Settings.PcsdGUIDir)))))
	mux.Handle("/{$}", http.RedirectHandler("/ui/", http.StatusFound))
	return logRequests(securityHeaders(compress.Middleware(s.authenticate(mux))))
}

// securityHeaders sets the headers sent with every response.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Strict-Transport-Security", "max-age=604800")
		next.ServeHTTP(w, r)
	})
}

// guiHeaders sets the headers sent with the web UI.
func guiHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "SAMEORIGIN")
		h.Set("X-Xss-Protection", "1; mode=block")
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	if r.status == 0 {
		r.status = code
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}

// logRequests tags each request with an id and logs it once served.
func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		w.Header().Set("X-Request-Id", id)
		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)
		log.Printf("%s %s %s %d", id, r.Method, r.URL.Path, rec.status)
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("failed to write response: %v", err)
	}
}

func writeText(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(code)
	w.Write([]byte(msg))
}
