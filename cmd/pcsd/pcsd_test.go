// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/oalbrigt/pcs/pkg/pcsd"
	"github.com/oalbrigt/pcs/pkg/settings"
)

func TestNewHTTPServer(t *testing.T) {
	set := settings.Default()
	set.PcsdTokensFile = filepath.Join(t.TempDir(), "tokens.toml")
	token, err := issueToken(set.PcsdTokensFile, "hacluster", nil)
	if err != nil {
		t.Fatal(err)
	}
	srv := newHTTPServer(set)
	if srv.TLSConfig.MinVersion != 0x0303 {
		t.Fatalf("MinVersion = %#x", srv.TLSConfig.MinVersion)
	}

	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest("GET", "/remote/check_auth", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("check_auth without token = %d, want %d", rec.Code, http.StatusUnauthorized)
	}

	req := httptest.NewRequest("GET", "/remote/check_auth", nil)
	req.AddCookie(&http.Cookie{Name: pcsd.TokenCookie, Value: token})
	rec = httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("check_auth = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestIssueToken(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens.toml")
	first, err := issueToken(path, "hacluster", nil)
	if err != nil {
		t.Fatal(err)
	}
	second, err := issueToken(path, "alice", []string{"read", "write"})
	if err != nil {
		t.Fatal(err)
	}
	tokens, err := pcsd.LoadTokens(path)
	if err != nil {
		t.Fatal(err)
	}
	if u, ok := tokens.Login(first); !ok || u.Name != "hacluster" {
		t.Fatalf("Login(first) = %#v, %v", u, ok)
	}
	u, ok := tokens.Login(second)
	want := pcsd.User{Name: "alice", Permissions: []pcsd.Permission{pcsd.PermissionRead, pcsd.PermissionWrite}}
	if !ok || !reflect.DeepEqual(u, want) {
		t.Fatalf("Login(second) = %#v, want %#v", u, want)
	}

	if _, err := issueToken(path, "bob", []string{"admin"}); err == nil {
		t.Fatalf("issueToken accepted permission admin")
	}
}
