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
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Format is the generated file format.
type Format string

const (
	// FormatTypeScript generates a TypeScript module exporting `modules`.
	FormatTypeScript Format = "ts"
	// FormatJSON generates a plain JSON document.
	FormatJSON Format = "json"
)

// Set implements pflag.Value.
func (f *Format) Set(value string) error {
	v := Format(value)
	if !v.isValid() {
		return fmt.Errorf("invalid format %q, must be %q or %q", value, FormatTypeScript, FormatJSON)
	}
	*f = v
	return nil
}

// String implements pflag.Value.
func (f *Format) String() string {
	return string(*f)
}

// Type implements pflag.Value.
func (f *Format) Type() string {
	return "format"
}

func (f Format) isValid() bool {
	return f == FormatTypeScript || f == FormatJSON
}

// FormatForPath guesses the format from the output file extension.
func FormatForPath(p string) Format {
	if strings.EqualFold(filepath.Ext(p), ".json") {
		return FormatJSON
	}
	return FormatTypeScript
}

const generatedHeader = "// Code generated by zphbundle. DO NOT EDIT.\n"

// tsPrelude declares the shape of the embedded value so the TypeScript
// compiler can type check its consumers.
const tsPrelude = `
export interface File {
  code: string;
  fileName: string;
  fileId: number;
  isAsm: boolean;
}

export interface Folder {
  folders: { [folder: string]: Folder };
  files: { [file: string]: File };
}

`

const tsExport = "export const modules: { [module: string]: Folder } = JSON.parse(\n  "

type jsonDocument struct {
	Digest  string `json:"digest"`
	Modules Bundle `json:"modules"`
}

// Serialize returns the content of the generated file for the bundle.
//
// The output only depends on the bundle, so serializing the same library
// tree twice yields identical bytes.
func Serialize(b Bundle, f Format) ([]byte, error) {
	if b == nil {
		b = Bundle{}
	}
	digest, err := Digest(b)
	if err != nil {
		return nil, err
	}
	switch f {
	case FormatTypeScript, "":
		literal, err := marshal(b, "")
		if err != nil {
			return nil, err
		}
		// The JSON document is embedded as a string literal, which takes care
		// of newlines, quotes and line separators in the sources.
		str, err := marshal(string(literal), "")
		if err != nil {
			return nil, err
		}
		buf := bytes.Buffer{}
		buf.WriteString(generatedHeader)
		buf.WriteString("// Digest: " + digest + "\n")
		buf.WriteString(tsPrelude)
		buf.WriteString(tsExport)
		buf.Write(str)
		buf.WriteString("\n);\n")
		return buf.Bytes(), nil
	case FormatJSON:
		out, err := marshal(jsonDocument{Digest: digest, Modules: b}, "  ")
		if err != nil {
			return nil, err
		}
		return append(out, '\n'), nil
	default:
		return nil, fmt.Errorf("unsupported format %q", f)
	}
}

// Decode parses a file generated by Serialize back into a bundle.
//
// File.Path is not recoverable and is left empty.
func Decode(f Format, data []byte) (Bundle, error) {
	b := Bundle{}
	switch f {
	case FormatTypeScript, "":
		i := bytes.Index(data, []byte("JSON.parse("))
		if i == -1 {
			return nil, errors.New("no embedded bundle found")
		}
		rest := bytes.TrimLeft(data[i+len("JSON.parse("):], " \t\r\n")
		var literal string
		if err := json.NewDecoder(bytes.NewReader(rest)).Decode(&literal); err != nil {
			return nil, fmt.Errorf("invalid embedded literal: %w", err)
		}
		if err := json.Unmarshal([]byte(literal), &b); err != nil {
			return nil, fmt.Errorf("invalid embedded bundle: %w", err)
		}
	case FormatJSON:
		doc := jsonDocument{Modules: b}
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
		if doc.Modules != nil {
			b = doc.Modules
		}
	default:
		return nil, fmt.Errorf("unsupported format %q", f)
	}
	return b, nil
}

// WriteOutput writes the generated file, overwriting any previous content.
//
// The parent directory must exist.
func WriteOutput(p string, data []byte) error {
	if err := os.WriteFile(p, data, 0o644); err != nil {
		return &IOError{Op: "write", Path: p, Err: err}
	}
	return nil
}

// marshal is json.Marshal without HTML escaping and without the trailing
// newline.
func marshal(v any, indent string) ([]byte, error) {
	buf := bytes.Buffer{}
	e := json.NewEncoder(&buf)
	e.SetEscapeHTML(false)
	if indent != "" {
		e.SetIndent("", indent)
	}
	if err := e.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
