// Copyright 2026 The Zphbundle Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package reporting

import (
	"context"
	"time"

	"github.com/zephyr-lang/zphbundle/internal/engine"
	"golang.org/x/sync/errgroup"
)

// MultiReport is a Report that wraps any number of other Report objects and
// tees output to all of them.
type MultiReport struct {
	Reporters []Report
}

var _ Report = (*MultiReport)(nil)

func (t *MultiReport) FileBundled(ctx context.Context, modulePath string, f *engine.File) {
	_ = t.do(func(r Report) error {
		r.FileBundled(ctx, modulePath, f)
		return nil
	})
}

func (t *MultiReport) EmitFinding(ctx context.Context, level engine.Level, message, file string) error {
	return t.do(func(r Report) error {
		return r.EmitFinding(ctx, level, message, file)
	})
}

func (t *MultiReport) BundleCompleted(ctx context.Context, output string, s engine.Stats, d time.Duration, err error) {
	_ = t.do(func(r Report) error {
		r.BundleCompleted(ctx, output, s, d, err)
		return nil
	})
}

func (t *MultiReport) Close() error {
	return t.do(func(r Report) error {
		return r.Close()
	})
}

func (t *MultiReport) do(f func(r Report) error) error {
	var eg errgroup.Group
	for _, r := range t.Reporters {
		r := r
		eg.Go(func() error {
			return f(r)
		})
	}
	return eg.Wait()
}
