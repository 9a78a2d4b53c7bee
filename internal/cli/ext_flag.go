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
	"encoding/json"
	"errors"
	"strings"

	flag "github.com/spf13/pflag"
	"github.com/zephyr-lang/zphbundle/internal/engine"
)

// extFlag maps a file extension to the kind of source it holds.
type extFlag map[string]engine.Kind

var _ flag.Value = (*extFlag)(nil)

func (v extFlag) String() string {
	if v == nil {
		return "{}"
	}
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return string(b)
}

func (v extFlag) Set(s string) error {
	ext, kind, ok := strings.Cut(s, "=")
	if !ok || ext == "" {
		return errors.New("must be of the form .ext=kind")
	}
	if !strings.HasPrefix(ext, ".") || len(ext) < 2 {
		return errors.New("extension must start with a dot")
	}
	if k := engine.Kind(kind); k != engine.Source && k != engine.Assembly {
		return errors.New("kind must be source or assembly")
	}
	if _, ok := v[ext]; ok {
		return errors.New("duplicate extension")
	}
	v[ext] = engine.Kind(kind)
	return nil
}

func (v extFlag) Type() string {
	return "exts"
}
