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
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	flag "github.com/spf13/pflag"
	"github.com/zephyr-lang/zphbundle/internal/engine"
)

// rootEnv is the environment variable pointing to the Zephyr library.
const rootEnv = "ZEPHYR_LIB"

// defaultOutput is where the playground imports the bundle from.
var defaultOutput = filepath.Join("src", "zephyr.ts")

type commandBase struct {
	root   string
	out    string
	config string
	format engine.Format
	split  engine.SplitPolicy
	exts   extFlag
	ignore []string
	list   bool
}

func (c *commandBase) SetFlags(f *flag.FlagSet) {
	f.StringVarP(&c.root, "root", "r", "", "directory containing the library packages, defaults to $"+rootEnv)
	f.StringVarP(&c.out, "out", "o", "", "generated file, defaults to "+defaultOutput)
	f.StringVar(&c.config, "config", "", "configuration file, defaults to "+engine.DefaultConfig+" if present")
	f.Var(&c.format, "format", "output format, ts or json; defaults to the output file extension")
	f.Var(&c.split, "split", "where file names are cut before the extension, first or last dot")
	c.exts = extFlag{}
	f.Var(&c.exts, "ext", "recognized extension as .ext=source or .ext=assembly, can be repeated")
	f.StringArrayVar(&c.ignore, "ignore", nil, "gitignore-style pattern of paths to skip, can be repeated")
	f.BoolVar(&c.list, "list", false, "list every bundled file")
}

// options merges the command line, the configuration file and the
// environment, in this order of precedence.
func (c *commandBase) options() (engine.Options, error) {
	config, mustExist := c.config, true
	if config == "" {
		config, mustExist = engine.DefaultConfig, false
	}
	doc, err := engine.LoadConfig(config, mustExist)
	if err != nil {
		return engine.Options{}, err
	}
	o := engine.Options{
		Root:       c.root,
		Output:     c.out,
		Format:     c.format,
		Split:      c.split,
		Extensions: doc.Extensions,
		Ignore:     append(append([]string{}, doc.Ignore...), c.ignore...),
	}
	if len(c.exts) > 0 {
		o.Extensions = map[string]engine.Kind(c.exts)
	}
	if o.Root == "" {
		o.Root = doc.Resolve(doc.Root)
	}
	if o.Root == "" {
		o.Root = lookupEnv(rootEnv)
	}
	if o.Root == "" {
		return engine.Options{}, &engine.ConfigurationError{
			Msg: "could not locate Zephyr libraries: use --root or set " + rootEnv,
		}
	}
	if o.Output == "" {
		o.Output = doc.Resolve(doc.Output)
	}
	if o.Output == "" {
		o.Output = defaultOutput
	}
	if o.Format == "" {
		o.Format = doc.Format
	}
	if o.Split == "" {
		o.Split = doc.Split
	}
	return o, nil
}

// lookupEnv returns the value of an environment variable, also looking at a
// .env file in the current directory. Overridden in unit testing.
var lookupEnv = func(key string) string {
	// A missing .env file is fine.
	_ = godotenv.Load()
	return os.Getenv(key)
}
