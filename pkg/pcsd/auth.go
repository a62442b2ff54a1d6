// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pcsd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/google/uuid"
	"github.com/oalbrigt/pcs/pkg/fileutil"
)

// TokenCookie is the cookie carrying the pcsd token.
const TokenCookie = "token"

// Permission is an access level to the local cluster.
type Permission string

const (
	PermissionRead  Permission = "read"
	PermissionWrite Permission = "write"
	PermissionGrant Permission = "grant"
	PermissionFull  Permission = "full"
)

// allows reports whether holding p grants want. full implies everything and
// write implies read.
func (p Permission) allows(want Permission) bool {
	switch p {
	case want, PermissionFull:
		return true
	case PermissionWrite:
		return want == PermissionRead
	}
	return false
}

// User is the user a request was authenticated as.
type User struct {
	Name        string       `toml:"user"`
	Permissions []Permission `toml:"permissions,omitempty"`
}

// Tokens is the token store of pcsd. On disk it is a TOML file:
//
//	[tokens.0f6a9c3e-5b52-4bd4-9ae4-0bd2b1c2a0f1]
//	user = "hacluster"
//
//	[tokens.8d1bbf0e-2cbd-4b38-a1d3-77c9e0f6ae12]
//	user = "alice"
//	permissions = ["read"]
type Tokens struct {
	Tokens map[string]User `toml:"tokens"`
}

// LoadTokens reads the token store at path. A missing file holds no tokens.
func LoadTokens(path string) (Tokens, error) {
	var t Tokens
	if _, err := toml.DecodeFile(path, &t); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Tokens{}, nil
		}
		return Tokens{}, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return t, nil
}

// Save writes the token store to path, readable by root only.
func (t Tokens) Save(path string) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(t); err != nil {
		return err
	}
	return fileutil.WriteFile(path, buf.Bytes(), 0600)
}

// Add issues a new token for user and returns it.
func (t *Tokens) Add(user User) string {
	token := uuid.NewString()
	if t.Tokens == nil {
		t.Tokens = make(map[string]User)
	}
	t.Tokens[token] = user
	return token
}

// Login returns the user token belongs to.
func (t Tokens) Login(token string) (User, bool) {
	if token == "" {
		return User{}, false
	}
	u, ok := t.Tokens[token]
	return u, ok
}

// needsToken reports whether path is served to authenticated clients only.
func needsToken(path string) bool {
	return (strings.HasPrefix(path, "/remote/") && path != "/remote/auth") || path == "/run_pcs"
}

type userKey struct{}

func userFrom(ctx context.Context) User {
	u, _ := ctx.Value(userKey{}).(User)
	return u
}

// authenticate rejects requests to protected paths without a valid token
// cookie and attaches the user to the context of the others.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !needsToken(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}
		user, ok := s.login(r)
		if !ok {
			writeText(w, http.StatusUnauthorized, `{"notauthorized":"true"}`)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey{}, user)))
	})
}

func (s *Server) login(r *http.Request) (User, bool) {
	c, err := r.Cookie(TokenCookie)
	if err != nil {
		return User{}, false
	}
	tokens, err := LoadTokens(s.cfg.Settings.PcsdTokensFile)
	if err != nil {
		log.Printf("login: %v", err)
		return User{}, false
	}
	return tokens.Login(c.Value)
}

func (s *Server) allowedForSuperuser(u User) bool {
	return u.Name != "" && u.Name == s.cfg.Settings.PcsdSuperuser
}

func (s *Server) allowedForLocalCluster(u User, want Permission) bool {
	if s.allowedForSuperuser(u) {
		return true
	}
	return slices.ContainsFunc(u.Permissions, func(p Permission) bool {
		return p.allows(want)
	})
}

// permitted writes 403 and returns false unless the request user holds want.
func (s *Server) permitted(w http.ResponseWriter, r *http.Request, want Permission) bool {
	if s.allowedForLocalCluster(userFrom(r.Context()), want) {
		return true
	}
	writeText(w, http.StatusForbidden, "Permission denied")
	return false
}

// KnownHost is a pcsd node pcs has a token for.
type KnownHost struct {
	Token string `toml:"token"`
}

// KnownHosts is the client side token store, keyed by node name:
//
//	[hosts.rh7-1]
//	token = "0f6a9c3e-5b52-4bd4-9ae4-0bd2b1c2a0f1"
type KnownHosts struct {
	Hosts map[string]KnownHost `toml:"hosts"`
}

// LoadKnownHosts reads the known hosts file at path. A missing file holds no
// hosts.
func LoadKnownHosts(path string) (KnownHosts, error) {
	var k KnownHosts
	if _, err := toml.DecodeFile(path, &k); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return KnownHosts{}, nil
		}
		return KnownHosts{}, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return k, nil
}

// Tokens returns the tokens by node name.
func (k KnownHosts) Tokens() map[string]string {
	out := make(map[string]string, len(k.Hosts))
	for name, h := range k.Hosts {
		out[name] = h.Token
	}
	return out
}
