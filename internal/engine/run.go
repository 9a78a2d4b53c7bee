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

package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"time"
)

// Level is the level of a finding.
type Level string

// Valid Level values.
const (
	Notice  Level = "notice"
	Warning Level = "warning"
	Error   Level = "error"
)

// Report exposes callbacks that the engine calls while bundling.
type Report interface {
	// FileBundled is called for every file added to the bundle, in ID order.
	FileBundled(ctx context.Context, modulePath string, f *File)
	// EmitFinding emits a finding about the run. file may be empty.
	EmitFinding(ctx context.Context, level Level, message, file string) error
	// BundleCompleted is called once, at the end of the run, with the output
	// path, the bundle statistics, the wall clock duration and the error if
	// the run failed.
	BundleCompleted(ctx context.Context, output string, s Stats, d time.Duration, err error)
}

// Options is the options for Run() and Check().
type Options struct {
	// Report gets the progress and the findings. It is optional. It is
	// recommended to use reporting.Get() which returns the right
	// implementation based on the environment (CI, interactive, etc).
	Report Report
	// Root is the directory containing the library packages. Required.
	Root string
	// Output is the generated file. Required by Run() and Check().
	Output string
	// Format defaults to FormatForPath(Output).
	Format Format
	// Extensions defaults to DefaultExtensions().
	Extensions map[string]Kind
	// Split defaults to SplitFirst.
	Split SplitPolicy
	// Ignore lists gitignore-style patterns to skip.
	Ignore []string
}

// Run bundles the library tree and writes the generated file.
//
// Nothing is written if any file fails to be read.
func Run(ctx context.Context, o *Options) error {
	start := time.Now()
	s, data, err := generate(ctx, o)
	if err == nil {
		err = WriteOutput(o.Output, data)
	}
	if err == nil {
		log.Printf("wrote %s (%d bytes)", o.Output, len(data))
	}
	if o.Report != nil && !errIsConfig(err) {
		o.Report.BundleCompleted(ctx, o.Output, s, time.Since(start), err)
	}
	return err
}

// Check bundles the library tree and compares the result with the generated
// file on disk.
//
// It returns ErrStale if the file is missing or differs.
func Check(ctx context.Context, o *Options) error {
	_, data, err := generate(ctx, o)
	if err != nil {
		return err
	}
	old, err := os.ReadFile(o.Output)
	if errors.Is(err, fs.ErrNotExist) {
		return stale(ctx, o, "generated file is missing, run \"zphbundle bundle\"")
	}
	if err != nil {
		return &IOError{Op: "read", Path: o.Output, Err: err}
	}
	if !bytes.Equal(old, data) {
		return stale(ctx, o, "generated file is out of date, run \"zphbundle bundle\"")
	}
	log.Printf("%s is up to date", o.Output)
	return nil
}

func stale(ctx context.Context, o *Options, msg string) error {
	if o.Report != nil {
		if err := o.Report.EmitFinding(ctx, Error, msg, o.Output); err != nil {
			return err
		}
	}
	return ErrStale
}

// Load bundles the library tree without serializing it.
func Load(ctx context.Context, o *Options) (Bundle, error) {
	if err := checkRoot(o.Root); err != nil {
		return nil, err
	}
	return Build(ctx, os.DirFS(o.Root), &BuildOptions{
		Extensions: o.Extensions,
		Split:      o.Split,
		Ignore:     o.Ignore,
	})
}

func generate(ctx context.Context, o *Options) (Stats, []byte, error) {
	if err := checkRoot(o.Root); err != nil {
		return Stats{}, nil, err
	}
	if o.Output == "" {
		return Stats{}, nil, configError("output path is not set", nil)
	}
	f := o.Format
	if f == "" {
		f = FormatForPath(o.Output)
	}
	if !f.isValid() {
		return Stats{}, nil, configError(fmt.Sprintf("invalid format %q", f), nil)
	}
	b, err := Build(ctx, os.DirFS(o.Root), &BuildOptions{
		Extensions: o.Extensions,
		Split:      o.Split,
		Ignore:     o.Ignore,
		Report:     o.Report,
	})
	if err != nil {
		return Stats{}, nil, err
	}
	s := b.Stats()
	if s.Files == 0 && o.Report != nil {
		if err = o.Report.EmitFinding(ctx, Warning, "no library source found", o.Root); err != nil {
			return s, nil, err
		}
	}
	data, err := Serialize(b, f)
	return s, data, err
}

// checkRoot returns a ConfigurationError if the root is not a directory.
func checkRoot(root string) error {
	if root == "" {
		return configError("library root is not set", nil)
	}
	st, err := os.Stat(root)
	if errors.Is(err, fs.ErrNotExist) {
		return configError(fmt.Sprintf("library root %s is missing", root), nil)
	}
	if err != nil {
		return configError("library root is invalid", err)
	}
	if !st.IsDir() {
		return configError(fmt.Sprintf("library root %s is not a directory", root), nil)
	}
	return nil
}

func errIsConfig(err error) bool {
	var c *ConfigurationError
	return errors.As(err, &c)
}
