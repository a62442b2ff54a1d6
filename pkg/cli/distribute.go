// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/oalbrigt/pcs/pkg/corosync"
	"golang.org/x/sync/errgroup"
)

// DistributeCorosyncConf sends conf to every node of the cluster. With
// skipOffline, nodes which cannot be reached are reported as warnings.
func DistributeCorosyncConf(ctx context.Context, env *Env, conf *corosync.Config, skipOffline bool) error {
	if env.Pcsd == nil {
		return errors.New("unable to distribute corosync.conf: no pcsd client")
	}
	nodes := conf.NodeNames()
	text := conf.String()
	fmt.Fprintln(env.Stdout, "Sending updated corosync.conf to nodes...")
	results := make([]error, len(nodes))
	var g errgroup.Group
	for i, node := range nodes {
		g.Go(func() error {
			results[i] = env.Pcsd.SetCorosyncConf(ctx, node, text)
			return nil
		})
	}
	g.Wait()

	var failed []string
	for i, node := range nodes {
		err := results[i]
		switch {
		case err == nil:
			fmt.Fprintf(env.Stdout, "%s: Succeeded\n", node)
		case skipOffline && !errors.Is(err, ErrNotAuthorized):
			env.Warnf("%s: Unable to connect, skipping: %v", node, err)
		default:
			failed = append(failed, fmt.Sprintf("%s: %v", node, err))
		}
	}
	if len(failed) > 0 {
		return fmt.Errorf("Unable to set corosync.conf on nodes, use --skip-offline to skip offline nodes:\n%s",
			strings.Join(failed, "\n"))
	}
	return nil
}
