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
	"io"
	"strings"

	"golang.org/x/mod/sumdb/dirhash"
)

// Digest hashes the content of a bundle and returns the hash.
//
// It uses the same hashing mechanism as Go Modules. See implementation at
// https://github.com/golang/mod/blob/v0.10.0/sumdb/dirhash/hash.go or a
// more recent version.
//
// Each file is hashed under its source path when known, or under its module
// path for bundles decoded from a generated file, so the digest of a freshly
// built bundle and of a decoded one may differ.
func Digest(b Bundle) (string, error) {
	byName := map[string]*File{}
	var files []string
	err := b.Walk(func(modulePath string, f *File) error {
		name := f.Path
		if name == "" {
			name = modulePath
		}
		if _, ok := byName[name]; ok {
			return fmt.Errorf("%w %s", ErrDuplicateModule, name)
		}
		byName[name] = f
		files = append(files, name)
		return nil
	})
	if err != nil {
		return "", err
	}
	return dirhash.Hash1(files, func(name string) (io.ReadCloser, error) {
		f := byName[name]
		if f == nil {
			return nil, fmt.Errorf("couldn't open %s", name)
		}
		return io.NopCloser(strings.NewReader(f.Content)), nil
	})
}
