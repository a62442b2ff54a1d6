// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package compress negotiates and applies HTTP content encoding for pcsd.
// Responses are compressed with zstd, gzip or deflate depending on the
// client's Accept-Encoding; compressed request bodies are decoded before they
// reach a handler.
package compress

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// Encodings in order of preference when qualities tie.
var Encodings = []string{"zstd", "gzip", "deflate"}

// SelectEncoding returns the preferred supported encoding accepted by the
// Accept-Encoding header value, or "" for identity.
func SelectEncoding(acceptEncoding string) string {
	quality := make(map[string]float64)
	wildcard := -1.0
	for _, part := range strings.Split(acceptEncoding, ",") {
		name, params, _ := strings.Cut(strings.TrimSpace(part), ";")
		name = strings.ToLower(strings.TrimSpace(name))
		q := 1.0
		if v, ok := strings.CutPrefix(strings.TrimSpace(params), "q="); ok {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				q = f
			}
		}
		if name == "*" {
			wildcard = q
			continue
		}
		quality[name] = q
	}
	best, bestQ := "", 0.0
	for _, enc := range Encodings {
		q, ok := quality[enc]
		if !ok {
			q = wildcard
		}
		if q > bestQ {
			best, bestQ = enc, q
		}
	}
	return best
}

// ResponseWriter compresses everything written to it with a single encoding.
type ResponseWriter struct {
	http.ResponseWriter
	enc         io.WriteCloser
	encoding    string
	wroteHeader bool
}

// NewResponseWriter returns a ResponseWriter for encoding. An unknown or empty
// encoding writes through unchanged.
func NewResponseWriter(w http.ResponseWriter, encoding string) (*ResponseWriter, error) {
	enc, err := newEncoder(w, encoding)
	if err != nil {
		return nil, err
	}
	rw := &ResponseWriter{ResponseWriter: w, enc: enc}
	if enc != nil {
		rw.encoding = encoding
	}
	return rw, nil
}

// newEncoder returns nil for an unknown or empty encoding.
func newEncoder(w io.Writer, encoding string) (io.WriteCloser, error) {
	var (
		enc io.WriteCloser
		err error
	)
	switch encoding {
	case "zstd":
		enc, err = zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedFastest))
	case "gzip":
		enc = gzip.NewWriter(w)
	case "deflate":
		enc, err = flate.NewWriter(w, flate.DefaultCompression)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create %s writer: %w", encoding, err)
	}
	return enc, nil
}

// Encode compresses data with encoding, for request bodies.
func Encode(encoding string, data []byte) ([]byte, error) {
	var buf bytes.Buffer
	enc, err := newEncoder(&buf, encoding)
	if err != nil {
		return nil, err
	}
	if enc == nil {
		return nil, fmt.Errorf("unsupported encoding %q", encoding)
	}
	if _, err := enc.Write(data); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteHeader sets the encoding headers and sends the status code.
func (rw *ResponseWriter) WriteHeader(code int) {
	if rw.wroteHeader {
		return
	}
	rw.wroteHeader = true
	if rw.encoding != "" {
		h := rw.Header()
		h.Set("Content-Encoding", rw.encoding)
		h.Add("Vary", "Accept-Encoding")
		h.Del("Content-Length")
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *ResponseWriter) Write(b []byte) (int, error) {
	if !rw.wroteHeader {
		rw.WriteHeader(http.StatusOK)
	}
	if rw.enc == nil {
		return rw.ResponseWriter.Write(b)
	}
	return rw.enc.Write(b)
}

// Close flushes the encoder.
func (rw *ResponseWriter) Close() error {
	if rw.enc == nil {
		return nil
	}
	return rw.enc.Close()
}

// DecompressRequest replaces the body of r with a decoded reader according
// to its Content-Encoding. Unknown encodings are left alone.
func DecompressRequest(r *http.Request) error {
	encoding := strings.ToLower(r.Header.Get("Content-Encoding"))
	var (
		body io.ReadCloser
		err  error
	)
	switch encoding {
	case "gzip":
		body, err = gzip.NewReader(r.Body)
	case "deflate":
		body = flate.NewReader(r.Body)
	case "zstd":
		var d *zstd.Decoder
		if d, err = zstd.NewReader(r.Body); err == nil {
			body = d.IOReadCloser()
		}
	default:
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to create decompressor for %s: %w", encoding, err)
	}
	r.Body = &bodyCloser{ReadCloser: body, orig: r.Body}
	r.Header.Del("Content-Encoding")
	r.Header.Del("Content-Length")
	r.ContentLength = -1
	return nil
}

type bodyCloser struct {
	io.ReadCloser
	orig io.Closer
}

func (b *bodyCloser) Close() error {
	return errors.Join(b.ReadCloser.Close(), b.orig.Close())
}

// Middleware decodes compressed request bodies and compresses responses for
// clients that accept it.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := DecompressRequest(r); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		encoding := SelectEncoding(r.Header.Get("Accept-Encoding"))
		if encoding == "" {
			next.ServeHTTP(w, r)
			return
		}
		rw, err := NewResponseWriter(w, encoding)
		if err != nil {
			log.Printf("compress: %v", err)
			next.ServeHTTP(w, r)
			return
		}
		defer func() {
			if err := rw.Close(); err != nil {
				log.Printf("compress: close %s writer: %v", encoding, err)
			}
		}()
		next.ServeHTTP(rw, r)
	})
}
