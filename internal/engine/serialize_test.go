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
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func scenarioFS() fstest.MapFS {
	return fstest.MapFS{
		"core/math.zph":      {Data: []byte("fn add(a,b) {}\n")},
		"core/io/write.zasm": {Data: []byte("WRITE\n")},
		"core/notes.txt":     {Data: []byte("not a source\n")},
	}
}

func buildScenario(t *testing.T) Bundle {
	b, err := Build(context.Background(), scenarioFS(), nil)
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func TestSerialize_TypeScript(t *testing.T) {
	t.Parallel()
	b := buildScenario(t)
	digest, err := Digest(b)
	if err != nil {
		t.Fatal(err)
	}
	got, err := Serialize(b, FormatTypeScript)
	if err != nil {
		t.Fatal(err)
	}
	want := "// Code generated by zphbundle. DO NOT EDIT.\n" +
		"// Digest: " + digest + "\n" +
		"\n" +
		"export interface File {\n" +
		"  code: string;\n" +
		"  fileName: string;\n" +
		"  fileId: number;\n" +
		"  isAsm: boolean;\n" +
		"}\n" +
		"\n" +
		"export interface Folder {\n" +
		"  folders: { [folder: string]: Folder };\n" +
		"  files: { [file: string]: File };\n" +
		"}\n" +
		"\n" +
		"export const modules: { [module: string]: Folder } = JSON.parse(\n" +
		`  "{\"core\":{\"folders\":{\"io\":{\"folders\":{},\"files\":{\"write\":{\"fileName\":\"write\",\"fileId\":2,\"isAsm\":true,\"code\":\"WRITE\\n\"}}}},` +
		`\"files\":{\"math\":{\"fileName\":\"math\",\"fileId\":1,\"isAsm\":false,\"code\":\"fn add(a,b) {}\\n\"}}}}"` + "\n" +
		");\n"
	if diff := cmp.Diff(want, string(got)); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestSerialize_Empty(t *testing.T) {
	t.Parallel()
	for _, b := range []Bundle{nil, {}} {
		got, err := Serialize(b, FormatTypeScript)
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.HasSuffix(got, []byte("JSON.parse(\n  \"{}\"\n);\n")) {
			t.Fatalf("expected an empty mapping, got:\n%s", got)
		}
		got, err = Serialize(b, FormatJSON)
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.HasSuffix(got, []byte("\"modules\": {}\n}\n")) {
			t.Fatalf("expected an empty mapping, got:\n%s", got)
		}
	}
}

func TestSerialize_RoundTrip(t *testing.T) {
	t.Parallel()
	fsys := scenarioFS()
	// Content that would break a naive template literal or string literal.
	fsys["std/tricky.zph"] = &fstest.MapFile{Data: []byte("`${x}` \"q\" \\ </script>\r\n\u2028\ttab\n")}
	fsys["std/r/wasi.zph"] = &fstest.MapFile{Data: []byte("")}
	b, err := Build(context.Background(), fsys, nil)
	if err != nil {
		t.Fatal(err)
	}
	for _, f := range []Format{FormatTypeScript, FormatJSON} {
		f := f
		t.Run(string(f), func(t *testing.T) {
			t.Parallel()
			data, err := Serialize(b, f)
			if err != nil {
				t.Fatal(err)
			}
			got, err := Decode(f, data)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(b, got, cmpopts.IgnoreFields(File{}, "Path")); diff != "" {
				t.Fatalf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSerialize_EscapedNewlines(t *testing.T) {
	t.Parallel()
	data, err := Serialize(buildScenario(t), FormatTypeScript)
	if err != nil {
		t.Fatal(err)
	}
	// The generated file has a fixed shape, the sources never leak raw
	// newlines in it.
	if n := bytes.Count(data, []byte("\n")); n != 18 {
		t.Fatalf("expected 18 lines, got %d:\n%s", n, data)
	}
	if !bytes.Contains(data, []byte(`fn add(a,b) {}\\n`)) {
		t.Fatalf("missing escaped newline:\n%s", data)
	}
}

func TestSerialize_Idempotent(t *testing.T) {
	t.Parallel()
	first, err := Serialize(buildScenario(t), FormatTypeScript)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		again, err := Serialize(buildScenario(t), FormatTypeScript)
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(first, again) {
			t.Fatalf("output differs:\n%s\n%s", first, again)
		}
	}
}

func TestSerialize_JSON(t *testing.T) {
	t.Parallel()
	b := Bundle{"std": {
		Folders: map[string]*Folder{},
		Files:   map[string]*File{"std": {Name: "std", ID: 1, Content: "module std\n", Path: "std/std.zph"}},
	}}
	digest, err := Digest(b)
	if err != nil {
		t.Fatal(err)
	}
	got, err := Serialize(b, FormatJSON)
	if err != nil {
		t.Fatal(err)
	}
	want := "{\n" +
		"  \"digest\": \"" + digest + "\",\n" +
		"  \"modules\": {\n" +
		"    \"std\": {\n" +
		"      \"folders\": {},\n" +
		"      \"files\": {\n" +
		"        \"std\": {\n" +
		"          \"fileName\": \"std\",\n" +
		"          \"fileId\": 1,\n" +
		"          \"isAsm\": false,\n" +
		"          \"code\": \"module std\\n\"\n" +
		"        }\n" +
		"      }\n" +
		"    }\n" +
		"  }\n" +
		"}\n"
	if diff := cmp.Diff(want, string(got)); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestSerialize_UnknownFormat(t *testing.T) {
	t.Parallel()
	if _, err := Serialize(Bundle{}, "yaml"); err == nil || err.Error() != `unsupported format "yaml"` {
		t.Fatal(err)
	}
	if _, err := Decode("yaml", nil); err == nil || err.Error() != `unsupported format "yaml"` {
		t.Fatal(err)
	}
}

func TestDecode_Invalid(t *testing.T) {
	t.Parallel()
	data := []struct {
		f    Format
		in   string
		want string
	}{
		{FormatTypeScript, "export const modules = {};\n", "no embedded bundle found"},
		{FormatTypeScript, "JSON.parse(42);", "invalid embedded literal"},
		{FormatTypeScript, "JSON.parse(\"[1]\");", "invalid embedded bundle"},
		{FormatJSON, "{", "unexpected end of JSON input"},
	}
	for i := range data {
		if _, err := Decode(data[i].f, []byte(data[i].in)); err == nil || !strings.HasPrefix(err.Error(), data[i].want) {
			t.Errorf("#%d: expected %q, got %v", i, data[i].want, err)
		}
	}
}

func TestFormatForPath(t *testing.T) {
	t.Parallel()
	data := map[string]Format{
		"src/zephyr.ts":   FormatTypeScript,
		"src/zephyr.json": FormatJSON,
		"ZEPHYR.JSON":     FormatJSON,
		"zephyr":          FormatTypeScript,
	}
	for p, want := range data {
		if got := FormatForPath(p); got != want {
			t.Errorf("%s: expected %s, got %s", p, want, got)
		}
	}
}

func TestWriteOutput(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	p := filepath.Join(dir, "zephyr.ts")
	if err := os.WriteFile(p, []byte("a much longer previous content"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := WriteOutput(p, []byte("new")); err != nil {
		t.Fatal(err)
	}
	if b, err := os.ReadFile(p); err != nil || string(b) != "new" {
		t.Fatalf("%q, %v", b, err)
	}
	err := WriteOutput(filepath.Join(dir, "missing", "zephyr.ts"), []byte("new"))
	var ioerr *IOError
	if !errors.As(err, &ioerr) || ioerr.Op != "write" {
		t.Fatalf("expected a write IOError, got %v", err)
	}
}
