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
	"fmt"
	"os"
	"strings"

	flag "github.com/spf13/pflag"
	"github.com/zephyr-lang/zphbundle/internal/engine"
)

type resolveCmd struct {
	commandBase
	from string
	code bool
}

func (*resolveCmd) Name() string {
	return "resolve"
}

func (*resolveCmd) Description() string {
	return "Print the files a module such as core/mem/malloc resolves to."
}

func (c *resolveCmd) SetFlags(f *flag.FlagSet) {
	c.commandBase.SetFlags(f)
	f.StringVar(&c.from, "from", "", "read a previously generated file instead of the library tree")
	f.BoolVar(&c.code, "code", false, "print the source of the files")
}

func (c *resolveCmd) Execute(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("expected exactly one module")
	}
	pkg, path, ok := strings.Cut(args[0], "/")
	if !ok || pkg == "" || path == "" {
		return fmt.Errorf("module %q must be of the form package/path", args[0])
	}
	b, err := c.load(ctx)
	if err != nil {
		return err
	}
	m, err := engine.Resolve(b, pkg, path)
	if err != nil {
		return err
	}
	kind := "folder"
	if m.Standalone {
		kind = "standalone"
	}
	fmt.Fprintf(stdout, "%s (%s)\n", args[0], kind)
	for _, f := range m.Files {
		k := engine.Source
		if f.IsAssembly {
			k = engine.Assembly
		}
		fmt.Fprintf(stdout, "  %-4d %-8s %s\n", f.ID, k, f.Name)
		if c.code {
			fmt.Fprintf(stdout, "%s\n", f.Content)
		}
	}
	return nil
}

func (c *resolveCmd) load(ctx context.Context) (engine.Bundle, error) {
	if c.from == "" {
		o, err := c.options()
		if err != nil {
			return nil, err
		}
		return engine.Load(ctx, &o)
	}
	data, err := os.ReadFile(c.from)
	if err != nil {
		return nil, &engine.IOError{Op: "read", Path: c.from, Err: err}
	}
	f := c.format
	if f == "" {
		f = engine.FormatForPath(c.from)
	}
	return engine.Decode(f, data)
}
