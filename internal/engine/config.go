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
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"golang.org/x/mod/semver"
)

// DefaultConfig is the configuration file looked up in the current directory.
const DefaultConfig = "zphbundle.toml"

// Document is the content of a zphbundle.toml file.
//
// Every field is optional. Command line flags take precedence.
type Document struct {
	MinVersion string          `toml:"min_version" validate:"omitempty,semver"`
	Root       string          `toml:"root"`
	Output     string          `toml:"output"`
	Format     Format          `toml:"format" validate:"omitempty,oneof=ts json"`
	Split      SplitPolicy     `toml:"split" validate:"omitempty,oneof=first last"`
	Ignore     []string        `toml:"ignore" validate:"dive,required"`
	Extensions map[string]Kind `toml:"extensions" validate:"dive,keys,startswith=.,min=2,endkeys,oneof=source assembly"`

	// dir is the directory containing the file; relative paths are resolved
	// against it.
	dir string
}

// LoadConfig reads and validates a zphbundle.toml file.
//
// If mustExist is false, a missing file returns an empty document.
func LoadConfig(p string, mustExist bool) (*Document, error) {
	doc := &Document{dir: filepath.Dir(p)}
	b, err := os.ReadFile(p)
	if err != nil {
		if !mustExist && errors.Is(err, fs.ErrNotExist) {
			return doc, nil
		}
		return nil, configError("couldn't read "+p, err)
	}
	md, err := toml.Decode(string(b), doc)
	if err != nil {
		return nil, configError("couldn't parse "+p, err)
	}
	// Check the version first, so users get an "unsupported version" error
	// if they set fields that are only available in a later version.
	if err = doc.CheckVersion(); err != nil {
		return nil, configError(p, err)
	}
	if u := md.Undecoded(); len(u) > 0 {
		keys := make([]string, 0, len(u))
		for _, k := range u {
			keys = append(keys, k.String())
		}
		return nil, configError(p, fmt.Errorf("unknown fields: %s", strings.Join(keys, ", ")))
	}
	if err = doc.Validate(); err != nil {
		return nil, configError(p, err)
	}
	return doc, nil
}

// CheckVersion returns an error if min_version is newer than this tool.
func (doc *Document) CheckVersion() error {
	if doc.MinVersion == "" {
		return nil
	}
	v := "v" + doc.MinVersion
	if !semver.IsValid(v) {
		return errors.New("min_version is invalid")
	}
	if semver.Compare(v, Version.semver()) > 0 {
		return fmt.Errorf("min_version specifies unsupported version %q, running %s", doc.MinVersion, Version)
	}
	return nil
}

var validate = func() *validator.Validate {
	v := validator.New()
	// Report the names used in the file.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		return strings.SplitN(fld.Tag.Get("toml"), ",", 2)[0]
	})
	return v
}()

// Validate verifies a zphbundle.toml document is valid.
func (doc *Document) Validate() error {
	if err := validate.Struct(doc); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			e := verrs[0]
			return fmt.Errorf("%s is invalid: failed %q check on %v", e.Field(), e.Tag(), e.Value())
		}
		return err
	}
	return nil
}

// Resolve returns p relative to the directory holding the document.
func (doc *Document) Resolve(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(doc.dir, p)
}
