// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command pcsd serves the pcs node API over HTTPS.
package main

import (
	"context"
	"crypto/tls"
	"errors"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/oalbrigt/pcs/pkg/cmdutil"
	"github.com/oalbrigt/pcs/pkg/pcsd"
	"github.com/oalbrigt/pcs/pkg/settings"
	"github.com/oalbrigt/pcs/pkg/svc"
	"tailscale.com/util/must"
)

var (
	addr     = flag.String("addr", "", "address to listen on, overrides the settings file")
	certFile = flag.String("cert", "", "TLS certificate file, overrides the settings file")
	keyFile  = flag.String("key", "", "TLS key file, overrides the settings file")
	debug    = flag.Bool("debug", false, "log external commands run")
)

func newHTTPServer(set settings.Settings) *http.Server {
	runner := &cmdutil.ExecRunner{
		Debug: *debug,
		Log:   log.Writer(),
	}
	server := pcsd.NewServer(pcsd.Config{
		Settings: set,
		Runner:   runner,
	})
	return &http.Server{
		Handler:           server.Handler(),
		ReadHeaderTimeout: 30 * time.Second,
		TLSConfig:         &tls.Config{MinVersion: tls.VersionTLS12},
	}
}

// issueToken adds a token for user to the token store and returns it.
func issueToken(path, user string, perms []string) (string, error) {
	tokens, err := pcsd.LoadTokens(path)
	if err != nil {
		return "", err
	}
	u := pcsd.User{Name: user}
	for _, p := range perms {
		switch perm := pcsd.Permission(p); perm {
		case pcsd.PermissionRead, pcsd.PermissionWrite, pcsd.PermissionGrant, pcsd.PermissionFull:
			u.Permissions = append(u.Permissions, perm)
		default:
			return "", fmt.Errorf("invalid permission %q", p)
		}
	}
	token := tokens.Add(u)
	if err := tokens.Save(path); err != nil {
		return "", err
	}
	return token, nil
}

func main() {
	flag.Parse()
	set, err := settings.FromEnv()
	if err != nil {
		log.Fatalf("failed to load settings: %v", err)
	}
	if flag.NArg() > 0 {
		if flag.Arg(0) != "token" || flag.NArg() < 2 {
			log.Fatal("usage: pcsd [flags] | pcsd token USER [PERMISSION...]")
		}
		token, err := issueToken(set.PcsdTokensFile, flag.Arg(1), flag.Args()[2:])
		if err != nil {
			log.Fatalf("failed to issue token: %v", err)
		}
		fmt.Println(token)
		return
	}
	listen := set.PcsdAddr()
	if *addr != "" {
		listen = *addr
	}
	if *certFile != "" {
		set.PcsdCertFile = *certFile
	}
	if *keyFile != "" {
		set.PcsdKeyFile = *keyFile
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := newHTTPServer(set)
	ln := must.Get(net.Listen("tcp", listen))
	log.Printf("pcsd %s listening on %v", settings.Version, ln.Addr())
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("shutdown: %v", err)
		}
	}()
	if err := svc.NotifyReadyFromEnv(); err != nil {
		log.Printf("failed to notify systemd: %v", err)
	}
	if err := srv.ServeTLS(ln, set.PcsdCertFile, set.PcsdKeyFile); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("server error: %v", err)
	}
}
