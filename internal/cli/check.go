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

type checkCmd struct {
	commandBase
}

func (*checkCmd) Name() string {
	return "check"
}

func (*checkCmd) Description() string {
	return "Verify the generated file is up to date with the library.\nNothing is written."
}

func (c *checkCmd) Execute(ctx context.Context, args []string) error {
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
	err = engine.Check(ctx, &o)
	if err2 := r.Close(); err == nil {
		err = err2
	}
	return err
}
