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
	"io"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestRun(t *testing.T) {
	t.Parallel()
	root := makeLibrary(t)
	out := filepath.Join(t.TempDir(), "zephyr.ts")
	r := &recordReport{}
	if err := Run(context.Background(), &Options{Report: r, Root: root, Output: out}); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"core/math", "core/io/write"}, r.bundled); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
	want := []Stats{{Packages: 1, Folders: 1, Files: 2, Assembly: 1, Bytes: 21}}
	if diff := cmp.Diff(want, r.completed); diff != "" || r.err != nil {
		t.Fatalf("mismatch (-want +got):\n%s\n%v", diff, r.err)
	}
	data := readFile(t, out)
	got, err := Decode(FormatTypeScript, data)
	if err != nil {
		t.Fatal(err)
	}
	expected, err := Build(context.Background(), os.DirFS(root), nil)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(expected, got, cmpopts.IgnoreFields(File{}, "Path")); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}

	// A second run yields the same bytes.
	if err = Run(context.Background(), &Options{Root: root, Output: out}); err != nil {
		t.Fatal(err)
	}
	if again := readFile(t, out); !bytes.Equal(data, again) {
		t.Fatalf("output changed:\n%s\n%s", data, again)
	}
}

func TestRun_JSON(t *testing.T) {
	t.Parallel()
	root := makeLibrary(t)
	dir := t.TempDir()
	// The format follows the extension unless set explicitly.
	for _, o := range []Options{
		{Root: root, Output: filepath.Join(dir, "a.json")},
		{Root: root, Output: filepath.Join(dir, "b.txt"), Format: FormatJSON},
	} {
		o := o
		if err := Run(context.Background(), &o); err != nil {
			t.Fatal(err)
		}
		data := readFile(t, o.Output)
		if !bytes.HasPrefix(data, []byte("{\n  \"digest\": \"h1:")) {
			t.Fatalf("unexpected output:\n%s", data)
		}
		if _, err := Decode(FormatJSON, data); err != nil {
			t.Fatal(err)
		}
	}
}

func TestRun_Options(t *testing.T) {
	t.Parallel()
	root := makeLibrary(t)
	writeFile(t, root, "core/io/read.s", "READ\n")
	writeFile(t, root, "core/tests/math_test.zph", "test\n")
	writeFile(t, root, "std/std.v2.zph", "std\n")
	out := filepath.Join(t.TempDir(), "zephyr.ts")
	o := Options{
		Root:       root,
		Output:     out,
		Extensions: map[string]Kind{".zph": Source, ".s": Assembly},
		Split:      SplitLast,
		Ignore:     []string{"tests/"},
	}
	if err := Run(context.Background(), &o); err != nil {
		t.Fatal(err)
	}
	b, err := Decode(FormatTypeScript, readFile(t, out))
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"core/math", "core/io/read", "std/std.v2"}
	if diff := cmp.Diff(want, walkPaths(t, b)); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestRun_EmptyRoot(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	out := filepath.Join(t.TempDir(), "zephyr.ts")
	r := &recordReport{}
	if err := Run(context.Background(), &Options{Report: r, Root: root, Output: out}); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"warning:" + root + ":no library source found"}, r.findings); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
	if data := readFile(t, out); !bytes.HasSuffix(data, []byte("JSON.parse(\n  \"{}\"\n);\n")) {
		t.Fatalf("unexpected output:\n%s", data)
	}
}

func TestRun_ConfigError(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	notDir := writeFile(t, dir, "file.zph", "")
	data := []struct {
		name string
		o    Options
		err  string
	}{
		{"no root", Options{}, "library root is not set"},
		{"missing root", Options{Root: filepath.Join(dir, "missing")}, "library root " + filepath.Join(dir, "missing") + " is missing"},
		{"root is a file", Options{Root: notDir}, "library root " + notDir + " is not a directory"},
		{"no output", Options{Root: dir}, "output path is not set"},
		{"bad format", Options{Root: dir, Format: "yaml"}, "invalid format \"yaml\""},
		{"bad split", Options{Root: dir, Split: "middle"}, "invalid split policy \"middle\""},
		{"bad extension", Options{Root: dir, Extensions: map[string]Kind{"zph": Source}}, "extension \"zph\" must start with a dot"},
	}
	for i := range data {
		i := i
		t.Run(data[i].name, func(t *testing.T) {
			t.Parallel()
			out := filepath.Join(t.TempDir(), "zephyr.ts")
			o := data[i].o
			if o.Root == dir && data[i].name != "no output" {
				o.Output = out
			}
			r := &recordReport{}
			o.Report = r
			err := Run(context.Background(), &o)
			var cerr *ConfigurationError
			if !errors.As(err, &cerr) {
				t.Fatalf("expected a ConfigurationError, got %v", err)
			}
			if !strings.Contains(err.Error(), data[i].err) {
				t.Fatalf("expected %q in %q", data[i].err, err)
			}
			// Configuration errors are reported to the caller only.
			if len(r.completed) != 0 {
				t.Fatal("unexpected completion report")
			}
			if _, err := os.Stat(out); !errors.Is(err, fs.ErrNotExist) {
				t.Fatalf("output written: %v", err)
			}
		})
	}
}

func TestRun_MissingOutputDir(t *testing.T) {
	t.Parallel()
	root := makeLibrary(t)
	out := filepath.Join(t.TempDir(), "src", "zephyr.ts")
	r := &recordReport{}
	err := Run(context.Background(), &Options{Report: r, Root: root, Output: out})
	var ioerr *IOError
	if !errors.As(err, &ioerr) || ioerr.Op != "write" || ioerr.Path != out {
		t.Fatalf("expected a write IOError, got %v", err)
	}
	if len(r.completed) != 1 || !errors.Is(r.err, fs.ErrNotExist) {
		t.Fatalf("unexpected completion report %v, %v", r.completed, r.err)
	}
}

func TestRun_ReadError(t *testing.T) {
	t.Parallel()
	if os.Geteuid() == 0 {
		t.Skip("root can read anything")
	}
	root := makeLibrary(t)
	p := writeFile(t, root, "core/secret.zph", "secret\n")
	if err := os.Chmod(p, 0); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(t.TempDir(), "zephyr.ts")
	err := Run(context.Background(), &Options{Root: root, Output: out})
	var ioerr *IOError
	if !errors.As(err, &ioerr) || ioerr.Op != "read" {
		t.Fatalf("expected a read IOError, got %v", err)
	}
	if _, err := os.Stat(out); !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("output written: %v", err)
	}
}

func TestRun_Duplicate(t *testing.T) {
	t.Parallel()
	root := makeLibrary(t)
	writeFile(t, root, "core/math.zasm", "MATH\n")
	out := filepath.Join(t.TempDir(), "zephyr.ts")
	if err := Run(context.Background(), &Options{Root: root, Output: out}); !errors.Is(err, ErrDuplicateModule) {
		t.Fatalf("expected ErrDuplicateModule, got %v", err)
	}
}

func TestCheck(t *testing.T) {
	t.Parallel()
	root := makeLibrary(t)
	out := filepath.Join(t.TempDir(), "zephyr.ts")
	o := Options{Root: root, Output: out}

	r := &recordReport{}
	o.Report = r
	if err := Check(context.Background(), &o); !errors.Is(err, ErrStale) {
		t.Fatalf("expected ErrStale, got %v", err)
	}
	want := []string{"error:" + out + ":generated file is missing, run \"zphbundle bundle\""}
	if diff := cmp.Diff(want, r.findings); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}

	o.Report = nil
	if err := Run(context.Background(), &o); err != nil {
		t.Fatal(err)
	}
	if err := Check(context.Background(), &o); err != nil {
		t.Fatal(err)
	}

	writeFile(t, root, "core/io/write.zasm", "WRITE2\n")
	r = &recordReport{}
	o.Report = r
	if err := Check(context.Background(), &o); !errors.Is(err, ErrStale) {
		t.Fatalf("expected ErrStale, got %v", err)
	}
	want = []string{"error:" + out + ":generated file is out of date, run \"zphbundle bundle\""}
	if diff := cmp.Diff(want, r.findings); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestCheck_ConfigError(t *testing.T) {
	t.Parallel()
	err := Check(context.Background(), &Options{Output: filepath.Join(t.TempDir(), "zephyr.ts")})
	var cerr *ConfigurationError
	if !errors.As(err, &cerr) {
		t.Fatalf("expected a ConfigurationError, got %v", err)
	}
}

func TestLoad(t *testing.T) {
	t.Parallel()
	root := makeLibrary(t)
	b, err := Load(context.Background(), &Options{Root: root})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"core/math", "core/io/write"}, walkPaths(t, b)); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
	if f := b.Lookup("core/io/write"); f == nil || f.Path != "core/io/write.zasm" {
		t.Fatalf("unexpected file %+v", f)
	}
	if _, err = Load(context.Background(), &Options{Root: filepath.Join(root, "missing")}); err == nil {
		t.Fatal("expected an error")
	}
}

// makeLibrary creates the library tree used across tests and returns its
// root.
func makeLibrary(t testing.TB) string {
	root := t.TempDir()
	writeFile(t, root, "core/math.zph", "fn add(a,b) {}\n")
	writeFile(t, root, "core/io/write.zasm", "WRITE\n")
	writeFile(t, root, "core/notes.txt", "not a source\n")
	return root
}

func writeFile(t testing.TB, root, p, content string) string {
	abs := filepath.Join(root, filepath.FromSlash(p))
	if err := os.MkdirAll(filepath.Dir(abs), 0o700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(abs, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return abs
}

func readFile(t testing.TB, p string) []byte {
	b, err := os.ReadFile(p)
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func init() {
	// Silence logging.
	log.SetOutput(io.Discard)
}
