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

package cli

import (
	"context"
	"errors"

	"github.com/zephyr-lang/zphbundle/internal/engine"
	"github.com/zephyr-lang/zphbundle/internal/reporting"
)

type bundleCmd struct {
	commandBase
}

func (*bundleCmd) Name() string {
	return "bundle"
}

func (*bundleCmd) Description() string {
	return "Bundle the Zephyr core and standard library into a source file."
}

func (c *bundleCmd) Execute(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return errors.New("unsupported arguments")
	}
	o, err := c.options()
	if err != nil {
		return err
	}
	r, err := reporting.Get(ctx, c.list)
	if err != nil {
		return err
	}
	o.Report = r
	err = engine.Run(ctx, &o)
	if err2 := r.Close(); err == nil {
		err = err2
	}
	return err
}
