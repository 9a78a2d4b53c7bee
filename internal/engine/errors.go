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
)

// ErrStale is returned by Check() when the generated file on disk doesn't
// match what would be generated from the current library tree.
//
// The information will have been provided via the Report interface.
var ErrStale = errors.New("generated output is out of date")

// ErrDuplicateModule is wrapped when two source files map to the same module
// path, e.g. "mem.zph" and "mem.zasm".
var ErrDuplicateModule = errors.New("duplicate module path")

// ErrInvalidUTF8 is wrapped in an IOError when a library source is not valid
// UTF-8 text and could not be embedded verbatim.
var ErrInvalidUTF8 = errors.New("not valid UTF-8 text")

// ErrModuleNotFound is wrapped by Resolve() when the module doesn't exist in
// the bundle.
var ErrModuleNotFound = errors.New("module not found")

// ConfigurationError is returned when the run cannot start because of invalid
// or missing configuration, e.g. the library root is not set.
//
// It is always returned before any output is written.
type ConfigurationError struct {
	Msg string
	Err error
}

func (c *ConfigurationError) Error() string {
	if c.Err != nil {
		return c.Msg + ": " + c.Err.Error()
	}
	return c.Msg
}

func (c *ConfigurationError) Unwrap() error {
	return c.Err
}

// IOError is returned when a source file cannot be read or the output cannot
// be written.
type IOError struct {
	// Op is "read", "write", "stat" or "list".
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return e.Op + " " + e.Path + ": " + e.Err.Error()
}

func (e *IOError) Unwrap() error {
	return e.Err
}

func configError(msg string, err error) error {
	return &ConfigurationError{Msg: msg, Err: err}
}

var (
	_ error = (*ConfigurationError)(nil)
	_ error = (*IOError)(nil)
)
