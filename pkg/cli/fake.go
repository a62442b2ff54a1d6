// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cli

import (
	"context"
	"sync"
)

// FakePcsd is a PcsdClient for tests. Nodes listed in Errors fail with the
// given error; all other nodes succeed.
type FakePcsd struct {
	Errors map[string]error

	mu    sync.Mutex
	confs map[string]string
}

func (f *FakePcsd) CheckAuth(ctx context.Context, node string) error {
	return f.Errors[node]
}

func (f *FakePcsd) SetCorosyncConf(ctx context.Context, node, conf string) error {
	if err := f.Errors[node]; err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.confs == nil {
		f.confs = make(map[string]string)
	}
	f.confs[node] = conf
	return nil
}

// CorosyncConf returns the configuration stored on node.
func (f *FakePcsd) CorosyncConf(node string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.confs[node]
	return c, ok
}
