// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pcsd

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/oalbrigt/pcs/pkg/cli"
	"github.com/oalbrigt/pcs/pkg/compress"
)

// Client calls pcsd on cluster nodes.
type Client struct {
	HTTP *http.Client
	Port int
	// Tokens are sent in the token cookie, keyed by node name.
	Tokens map[string]string
}

var _ cli.PcsdClient = (*Client)(nil)

// NewClient returns a client for pcsd listening on port. pcsd serves
// self-signed certificates, so they are not verified.
func NewClient(port int, timeout time.Duration, tokens map[string]string) *Client {
	tr := http.DefaultTransport.(*http.Transport).Clone()
	tr.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	return &Client{
		HTTP:   &http.Client{Transport: tr, Timeout: timeout},
		Port:   port,
		Tokens: tokens,
	}
}

func (c *Client) url(node, path string) string {
	u := url.URL{
		Scheme: "https",
		Host:   net.JoinHostPort(node, strconv.Itoa(c.Port)),
		Path:   path,
	}
	return u.String()
}

func (c *Client) newRequest(ctx context.Context, method, node, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.url(node, path), body)
	if err != nil {
		return nil, err
	}
	if token, ok := c.Tokens[node]; ok {
		req.AddCookie(&http.Cookie{Name: TokenCookie, Value: token})
	}
	return req, nil
}

func (c *Client) do(req *http.Request) (int, []byte, error) {
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("unable to connect to %s: %w", req.URL.Hostname(), err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("unable to read response from %s: %w", req.URL.Hostname(), err)
	}
	return resp.StatusCode, body, nil
}

func (c *Client) get(ctx context.Context, node, path string) (int, []byte, error) {
	req, err := c.newRequest(ctx, "GET", node, path, nil)
	if err != nil {
		return 0, nil, err
	}
	return c.do(req)
}

// CheckAuth returns nil when node is reachable and accepts our credentials,
// cli.ErrNotAuthorized when it rejects them.
func (c *Client) CheckAuth(ctx context.Context, node string) error {
	code, _, err := c.get(ctx, node, "/remote/check_auth")
	if err != nil {
		return err
	}
	switch code {
	case http.StatusOK:
		return nil
	case http.StatusUnauthorized:
		return cli.ErrNotAuthorized
	default:
		return fmt.Errorf("%s: unexpected response %d", node, code)
	}
}

// Status returns the status of node as reported by its pcsd.
func (c *Client) Status(ctx context.Context, node string) (NodeStatus, error) {
	var st NodeStatus
	code, body, err := c.get(ctx, node, "/remote/status")
	if err != nil {
		return st, err
	}
	switch code {
	case http.StatusOK:
	case http.StatusUnauthorized:
		return st, cli.ErrNotAuthorized
	default:
		return st, fmt.Errorf("%s: unexpected response %d", node, code)
	}
	if err := json.Unmarshal(body, &st); err != nil {
		return st, fmt.Errorf("%s: invalid status: %w", node, err)
	}
	return st, nil
}

// SetCorosyncConf stores conf as corosync.conf on node. The body is sent
// zstd compressed.
func (c *Client) SetCorosyncConf(ctx context.Context, node, conf string) error {
	form := url.Values{"corosync_conf": {conf}}.Encode()
	body, err := compress.Encode("zstd", []byte(form))
	if err != nil {
		return err
	}
	req, err := c.newRequest(ctx, "POST", node, "/remote/set_corosync_conf", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Content-Encoding", "zstd")
	code, resp, err := c.do(req)
	if err != nil {
		return err
	}
	switch code {
	case http.StatusOK:
		return nil
	case http.StatusUnauthorized:
		return cli.ErrNotAuthorized
	default:
		return fmt.Errorf("%s: Unable to set corosync config: %s", node, bytes.TrimSpace(resp))
	}
}
