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
	"fmt"
	"sort"
	"strings"
)

// Module is what a `use` statement resolves to.
type Module struct {
	// Files is sorted by ID.
	Files []*File
	// Standalone is true when the module is a single file, false when it is a
	// folder whose files together form the module.
	Standalone bool
}

// Resolve finds the module at path inside package pkg, the same way the
// compiler host does it with the generated file.
//
// For "core" and "mem/malloc", "core/mem/malloc" is returned as a standalone
// module if it is a file. Otherwise, if "core/mem/malloc" is a folder, all
// its files are returned.
func Resolve(b Bundle, pkg, path string) (*Module, error) {
	folder := b[pkg]
	if folder == nil {
		return nil, fmt.Errorf("%w: package %q", ErrModuleNotFound, pkg)
	}
	if path == "" {
		return nil, fmt.Errorf("%w: empty path in package %q", ErrModuleNotFound, pkg)
	}
	items := strings.Split(path, "/")
	last := items[len(items)-1]
	for _, item := range items[:len(items)-1] {
		if folder = folder.Folders[item]; folder == nil {
			return nil, fmt.Errorf("%w: %s/%s", ErrModuleNotFound, pkg, path)
		}
	}
	if f := folder.Files[last]; f != nil {
		return &Module{Files: []*File{f}, Standalone: true}, nil
	}
	folder = folder.Folders[last]
	if folder == nil {
		return nil, fmt.Errorf("%w: %s/%s", ErrModuleNotFound, pkg, path)
	}
	m := &Module{}
	for _, f := range folder.Files {
		m.Files = append(m.Files, f)
	}
	sort.Slice(m.Files, func(i, j int) bool { return m.Files[i].ID < m.Files[j].ID })
	return m, nil
}
