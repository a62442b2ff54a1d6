// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package compress

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/klauspost/compress/zstd"
)

func TestSelectEncoding(t *testing.T) {
	tests := []struct {
		accept string
		want   string
	}{
		{"", ""},
		{"gzip", "gzip"},
		{"deflate", "deflate"},
		{"gzip, deflate, zstd", "zstd"},
		{"deflate, gzip", "gzip"},
		{"gzip;q=0.9, zstd;q=0.5", "gzip"},
		{"gzip;q=0", ""},
		{"br", ""},
		{"identity", ""},
		{"*", "zstd"},
		{"zstd;q=0, *;q=0.5", "gzip"},
		{"GZIP", "gzip"},
	}
	for _, tt := range tests {
		if got := SelectEncoding(tt.accept); got != tt.want {
			t.Errorf("SelectEncoding(%q) = %q, want %q", tt.accept, got, tt.want)
		}
	}
}

func decode(t *testing.T, encoding string, body []byte) []byte {
	t.Helper()
	var r io.Reader
	switch encoding {
	case "gzip":
		gr, err := gzip.NewReader(bytes.NewReader(body))
		if err != nil {
			t.Fatal(err)
		}
		r = gr
	case "deflate":
		r = flate.NewReader(bytes.NewReader(body))
	case "zstd":
		zr, err := zstd.NewReader(bytes.NewReader(body))
		if err != nil {
			t.Fatal(err)
		}
		defer zr.Close()
		r = zr
	default:
		return body
	}
	out, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("decode %s: %v", encoding, err)
	}
	return out
}

func TestMiddlewareResponse(t *testing.T) {
	payload := strings.Repeat(`{"status":"ok"}`, 200)
	h := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "1")
		io.WriteString(w, payload)
	}))
	for _, enc := range []string{"zstd", "gzip", "deflate", ""} {
		t.Run("enc="+enc, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/remote/status", nil)
			if enc != "" {
				req.Header.Set("Accept-Encoding", enc)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if got := rec.Header().Get("Content-Encoding"); got != enc {
				t.Fatalf("Content-Encoding = %q, want %q", got, enc)
			}
			if enc != "" && rec.Header().Get("Content-Length") != "" {
				t.Fatalf("Content-Length was kept for %s", enc)
			}
			if got := string(decode(t, enc, rec.Body.Bytes())); got != payload {
				t.Fatalf("body mismatch for %q", enc)
			}
		})
	}
}

func TestResponseWriterStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	rw, err := NewResponseWriter(rec, "gzip")
	if err != nil {
		t.Fatal(err)
	}
	rw.WriteHeader(http.StatusNotFound)
	rw.WriteHeader(http.StatusOK)
	io.WriteString(rw, "missing")
	if err := rw.Close(); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusNotFound {
		t.Fatalf("Code = %d, want %d", rec.Code, http.StatusNotFound)
	}
	if got := string(decode(t, "gzip", rec.Body.Bytes())); got != "missing" {
		t.Fatalf("body = %q", got)
	}
}

func encode(t *testing.T, encoding string, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	var w io.WriteCloser
	switch encoding {
	case "gzip":
		w = gzip.NewWriter(&buf)
	case "deflate":
		fw, err := flate.NewWriter(&buf, flate.BestSpeed)
		if err != nil {
			t.Fatal(err)
		}
		w = fw
	case "zstd":
		zw, err := zstd.NewWriter(&buf)
		if err != nil {
			t.Fatal(err)
		}
		w = zw
	}
	if _, err := w.Write(data); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestDecompressRequest(t *testing.T) {
	form := "command=%5B%22status%22%2C%22pcsd%22%5D"
	for _, enc := range []string{"zstd", "gzip", "deflate"} {
		t.Run(enc, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/run_pcs", bytes.NewReader(encode(t, enc, []byte(form))))
			req.Header.Set("Content-Encoding", enc)
			if err := DecompressRequest(req); err != nil {
				t.Fatal(err)
			}
			if req.Header.Get("Content-Encoding") != "" {
				t.Fatalf("Content-Encoding was kept")
			}
			got, err := io.ReadAll(req.Body)
			if err != nil {
				t.Fatal(err)
			}
			if err := req.Body.Close(); err != nil {
				t.Fatal(err)
			}
			if string(got) != form {
				t.Fatalf("body = %q, want %q", got, form)
			}
		})
	}
}

func TestDecompressRequestPassthrough(t *testing.T) {
	for _, enc := range []string{"", "identity", "br"} {
		req := httptest.NewRequest("POST", "/run_pcs", strings.NewReader("plain"))
		if enc != "" {
			req.Header.Set("Content-Encoding", enc)
		}
		if err := DecompressRequest(req); err != nil {
			t.Fatalf("DecompressRequest(%q) = %v", enc, err)
		}
		got, _ := io.ReadAll(req.Body)
		if string(got) != "plain" {
			t.Fatalf("body = %q", got)
		}
	}
}

func TestMiddlewareBadBody(t *testing.T) {
	h := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("handler called")
	}))
	req := httptest.NewRequest("POST", "/run_pcs", strings.NewReader("not gzip"))
	req.Header.Set("Content-Encoding", "gzip")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Code = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestEncode(t *testing.T) {
	data := []byte("totem {\n    version: 2\n}\n")
	for _, enc := range Encodings {
		b, err := Encode(enc, data)
		if err != nil {
			t.Fatalf("Encode(%q) = %v", enc, err)
		}
		req := httptest.NewRequest("POST", "/", bytes.NewReader(b))
		req.Header.Set("Content-Encoding", enc)
		if err := DecompressRequest(req); err != nil {
			t.Fatal(err)
		}
		got, _ := io.ReadAll(req.Body)
		if !bytes.Equal(got, data) {
			t.Fatalf("%s: body = %q, want %q", enc, got, data)
		}
	}
	if _, err := Encode("br", data); err == nil {
		t.Fatalf("Encode(br) succeeded")
	}
}
