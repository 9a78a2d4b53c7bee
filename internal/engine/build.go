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
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"path"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// Kind is the kind of a library source file.
type Kind string

const (
	// Source is a high-level Zephyr source file.
	Source Kind = "source"
	// Assembly is a Zephyr assembly source file.
	Assembly Kind = "assembly"
)

func (k Kind) isValid() bool {
	return k == Source || k == Assembly
}

// DefaultExtensions is the classification used when none is specified.
func DefaultExtensions() map[string]Kind {
	return map[string]Kind{
		".zph":  Source,
		".zasm": Assembly,
	}
}

// SplitPolicy decides how the logical file name is derived from the file
// base name.
type SplitPolicy string

const (
	// SplitFirst cuts the name at its first dot: "v1.2.zph" becomes "v1".
	//
	// This is what previously generated outputs used.
	SplitFirst SplitPolicy = "first"
	// SplitLast only strips the recognized extension: "v1.2.zph" becomes
	// "v1.2".
	SplitLast SplitPolicy = "last"
)

// Set implements pflag.Value.
func (s *SplitPolicy) Set(value string) error {
	p := SplitPolicy(value)
	if !p.isValid() {
		return fmt.Errorf("invalid split policy %q, must be %q or %q", value, SplitFirst, SplitLast)
	}
	*s = p
	return nil
}

// String implements pflag.Value.
func (s *SplitPolicy) String() string {
	return string(*s)
}

// Type implements pflag.Value.
func (s *SplitPolicy) Type() string {
	return "policy"
}

func (s SplitPolicy) isValid() bool {
	return s == SplitFirst || s == SplitLast
}

// BuildOptions controls the Tree Builder.
type BuildOptions struct {
	// Extensions maps a file extension, including the leading dot, to its
	// kind. Files with any other extension are skipped. Defaults to
	// DefaultExtensions().
	Extensions map[string]Kind
	// Split defaults to SplitFirst.
	Split SplitPolicy
	// Ignore lists gitignore-style patterns of files and directories to skip.
	Ignore []string
	// Report, if set, gets FileBundled() called for every added file.
	Report Report
}

type builder struct {
	fsys    fs.FS
	exts    []string
	kinds   map[string]Kind
	split   SplitPolicy
	matcher gitignore.Matcher
	report  Report

	bundle Bundle
	nextID int
}

// Build walks the library tree and returns the bundle of every recognized
// source file.
//
// The traversal is deterministic: entries are read in lexical order and a
// directory's files are processed before its subdirectories. IDs are
// assigned in that order starting at 1.
func Build(ctx context.Context, fsys fs.FS, o *BuildOptions) (Bundle, error) {
	if o == nil {
		o = &BuildOptions{}
	}
	b := builder{
		fsys:   fsys,
		kinds:  o.Extensions,
		split:  o.Split,
		report: o.Report,
		bundle: Bundle{},
		nextID: 1,
	}
	if len(b.kinds) == 0 {
		b.kinds = DefaultExtensions()
	}
	for ext, k := range b.kinds {
		if !strings.HasPrefix(ext, ".") || len(ext) < 2 {
			return nil, configError(fmt.Sprintf("extension %q must start with a dot", ext), nil)
		}
		if !k.isValid() {
			return nil, configError(fmt.Sprintf("extension %s has invalid kind %q", ext, k), nil)
		}
		b.exts = append(b.exts, ext)
	}
	// Longest extension first, so ".d.zph" wins over ".zph".
	sort.Slice(b.exts, func(i, j int) bool {
		if len(b.exts[i]) != len(b.exts[j]) {
			return len(b.exts[i]) > len(b.exts[j])
		}
		return b.exts[i] < b.exts[j]
	})
	if b.split == "" {
		b.split = SplitFirst
	}
	if !b.split.isValid() {
		return nil, configError(fmt.Sprintf("invalid split policy %q", b.split), nil)
	}
	if len(o.Ignore) > 0 {
		var patterns []gitignore.Pattern
		for _, p := range o.Ignore {
			if p == "" {
				return nil, errEmptyIgnore
			}
			patterns = append(patterns, gitignore.ParsePattern(p, nil))
		}
		b.matcher = gitignore.NewMatcher(patterns)
	}
	if err := b.walk(ctx, "."); err != nil {
		return nil, err
	}
	return b.bundle, nil
}

var errEmptyIgnore = configError("ignore patterns cannot be empty strings", nil)

// walk processes one directory: its files first, then its subdirectories.
func (b *builder) walk(ctx context.Context, dir string) error {
	entries, err := fs.ReadDir(b.fsys, dir)
	if err != nil {
		return &IOError{Op: "list", Path: dir, Err: err}
	}
	var dirs []string
	for _, e := range entries {
		name := e.Name()
		p := name
		if dir != "." {
			p = dir + "/" + name
		}
		// Skip .git, .vscode, editor swap files, etc.
		if strings.HasPrefix(name, ".") {
			log.Printf("skipping hidden %s", p)
			continue
		}
		if b.ignored(p, e.IsDir()) {
			log.Printf("ignoring %s", p)
			continue
		}
		if e.IsDir() {
			dirs = append(dirs, p)
			continue
		}
		if ext, _ := b.classify(name); ext == "" {
			continue
		}
		if e.Type()&fs.ModeSymlink != 0 {
			// Symlinked files are followed, symlinked directories are not
			// descended.
			fi, err := fs.Stat(b.fsys, p)
			if errors.Is(err, fs.ErrNotExist) {
				log.Printf("skipping dangling symlink %s", p)
				continue
			}
			if err != nil {
				return &IOError{Op: "stat", Path: p, Err: err}
			}
			if !fi.Mode().IsRegular() {
				log.Printf("skipping symlink %s to %s", p, fi.Mode().Type())
				continue
			}
		} else if !e.Type().IsRegular() {
			log.Printf("skipping %s of type %s", p, e.Type())
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := b.add(ctx, p); err != nil {
			return err
		}
	}
	for _, d := range dirs {
		if err := b.walk(ctx, d); err != nil {
			return err
		}
	}
	return nil
}

func (b *builder) ignored(p string, isDir bool) bool {
	return b.matcher != nil && b.matcher.Match(strings.Split(p, "/"), isDir)
}

// add reads the file at p and inserts it in the bundle if its extension is
// recognized.
func (b *builder) add(ctx context.Context, p string) error {
	base := path.Base(p)
	ext, kind := b.classify(base)
	if ext == "" {
		return nil
	}
	name := b.logicalName(base, ext)
	if name == "" {
		return nil
	}
	modulePath := []string{name}
	if d := path.Dir(p); d != "." {
		modulePath = append(strings.Split(d, "/"), name)
	}
	content, err := fs.ReadFile(b.fsys, p)
	if err != nil {
		return &IOError{Op: "read", Path: p, Err: err}
	}
	if !utf8.Valid(content) {
		return &IOError{Op: "read", Path: p, Err: ErrInvalidUTF8}
	}
	f := &File{
		Name:       name,
		ID:         b.nextID,
		IsAssembly: kind == Assembly,
		Content:    string(content),
		Path:       p,
	}
	if err := b.bundle.insert(modulePath, f); err != nil {
		return err
	}
	b.nextID++
	log.Printf("bundled %s as %s (id %d)", p, strings.Join(modulePath, "/"), f.ID)
	if b.report != nil {
		b.report.FileBundled(ctx, strings.Join(modulePath, "/"), f)
	}
	return nil
}

// classify returns the recognized extension of base and its kind, or "" if
// the file is not a library source.
func (b *builder) classify(base string) (string, Kind) {
	for _, ext := range b.exts {
		if len(base) > len(ext) && strings.HasSuffix(base, ext) {
			return ext, b.kinds[ext]
		}
	}
	return "", ""
}

func (b *builder) logicalName(base, ext string) string {
	if b.split == SplitLast {
		return strings.TrimSuffix(base, ext)
	}
	if i := strings.IndexByte(base, '.'); i >= 0 {
		return base[:i]
	}
	return base
}

