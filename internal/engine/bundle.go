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
	"sort"
	"strings"
)

// File is a single library source file.
//
// The JSON field names are the ones the playground resolver reads.
type File struct {
	// Name is the logical file name, without the extension.
	Name string `json:"fileName"`
	// ID is unique in a bundle and increases in discovery order. It starts
	// at 1.
	ID         int    `json:"fileId"`
	IsAssembly bool   `json:"isAsm"`
	Content    string `json:"code"`

	// Path is the slash-separated path of the source file relative to the
	// library root. It is not serialized.
	Path string `json:"-"`
}

// Folder is a directory of the library tree.
//
// A name can appear both in Folders and in Files.
type Folder struct {
	Folders map[string]*Folder `json:"folders"`
	Files   map[string]*File   `json:"files"`
}

func newFolder() *Folder {
	return &Folder{Folders: map[string]*Folder{}, Files: map[string]*File{}}
}

// subfolder returns the named subfolder, creating it on first reference.
func (f *Folder) subfolder(name string) *Folder {
	s := f.Folders[name]
	if s == nil {
		s = newFolder()
		f.Folders[name] = s
	}
	return s
}

// Bundle maps a package name to its root folder.
type Bundle map[string]*Folder

// Packages returns the package names, sorted.
func (b Bundle) Packages() []string {
	out := make([]string, 0, len(b))
	for k := range b {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// insert adds f at the module path. The last element of the path is the
// file name.
func (b Bundle) insert(modulePath []string, f *File) error {
	pkg := modulePath[0]
	folder := b[pkg]
	if folder == nil {
		folder = newFolder()
		b[pkg] = folder
	}
	if len(modulePath) > 2 {
		for _, name := range modulePath[1 : len(modulePath)-1] {
			folder = folder.subfolder(name)
		}
	}
	if old, ok := folder.Files[f.Name]; ok {
		return &duplicateError{module: strings.Join(modulePath, "/"), first: old.Path, second: f.Path}
	}
	folder.Files[f.Name] = f
	return nil
}

// Lookup returns the file at the slash-separated module path, e.g.
// "core/mem/malloc".
func (b Bundle) Lookup(modulePath string) *File {
	parts := strings.Split(modulePath, "/")
	folder := b[parts[0]]
	if folder == nil {
		return nil
	}
	if len(parts) > 2 {
		for _, name := range parts[1 : len(parts)-1] {
			if folder = folder.Folders[name]; folder == nil {
				return nil
			}
		}
	}
	return folder.Files[parts[len(parts)-1]]
}

// Walk calls fn for every file in the bundle in ID order.
//
// modulePath is the slash-separated module path of the file.
func (b Bundle) Walk(fn func(modulePath string, f *File) error) error {
	type entry struct {
		modulePath string
		f          *File
	}
	var all []entry
	var rec func(prefix string, folder *Folder)
	rec = func(prefix string, folder *Folder) {
		for name, f := range folder.Files {
			all = append(all, entry{prefix + "/" + name, f})
		}
		for name, sub := range folder.Folders {
			rec(prefix+"/"+name, sub)
		}
	}
	for pkg, folder := range b {
		// A file directly at the root of the library shares its package name.
		for name, f := range folder.Files {
			mp := pkg + "/" + name
			if name == pkg && f.Path != "" && !strings.Contains(f.Path, "/") {
				mp = pkg
			}
			all = append(all, entry{mp, f})
		}
		for name, sub := range folder.Folders {
			rec(pkg+"/"+name, sub)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].f.ID < all[j].f.ID })
	for _, e := range all {
		if err := fn(e.modulePath, e.f); err != nil {
			return err
		}
	}
	return nil
}

// Stats summarizes a bundle.
type Stats struct {
	Packages int
	Folders  int
	Files    int
	Assembly int
	Bytes    int
}

// Stats returns the bundle counters.
func (b Bundle) Stats() Stats {
	s := Stats{Packages: len(b)}
	var rec func(folder *Folder)
	rec = func(folder *Folder) {
		for _, f := range folder.Files {
			s.Files++
			s.Bytes += len(f.Content)
			if f.IsAssembly {
				s.Assembly++
			}
		}
		for _, sub := range folder.Folders {
			s.Folders++
			rec(sub)
		}
	}
	for _, folder := range b {
		rec(folder)
	}
	return s
}

type duplicateError struct {
	module        string
	first, second string
}

func (d *duplicateError) Error() string {
	return ErrDuplicateModule.Error() + " " + d.module + ": " + d.first + " and " + d.second
}

func (d *duplicateError) Unwrap() error {
	return ErrDuplicateModule
}
