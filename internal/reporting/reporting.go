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

package reporting

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/zephyr-lang/zphbundle/internal/engine"
)

// Report is a closable engine.Report.
type Report interface {
	io.Closer
	engine.Report
}

// Get returns the right reporting implementation based on the current
// environment.
//
// When verbose is true, every bundled file is listed.
func Get(ctx context.Context, verbose bool) (*MultiReport, error) {
	r := &MultiReport{}

	// On GitHub Actions, annotate findings so a stale output shows up on the
	// pull request.
	if os.Getenv("GITHUB_RUN_ID") != "" {
		r.Reporters = append(r.Reporters, &github{out: os.Stdout})
		return r, nil
	}

	switch {
	case os.Getenv("TERM") != "dumb" && isatty.IsTerminal(os.Stderr.Fd()):
		// Active terminal. Colors! This includes VSCode's integrated terminal.
		r.Reporters = append(r.Reporters, &interactive{
			out:     colorable.NewColorableStderr(),
			verbose: verbose,
		})
	default:
		// Anything else, e.g. redirected output.
		r.Reporters = append(r.Reporters, &basic{out: os.Stderr, verbose: verbose})
	}
	return r, nil
}

type basic struct {
	out     io.Writer
	verbose bool
}

func (b *basic) Close() error {
	return nil
}

func (b *basic) FileBundled(ctx context.Context, modulePath string, f *engine.File) {
	if b.verbose {
		fmt.Fprintf(b.out, "- %s (%s, id %d)\n", modulePath, kindOf(f), f.ID)
	}
}

func (b *basic) EmitFinding(ctx context.Context, level engine.Level, message, file string) error {
	if file != "" {
		_, err := fmt.Fprintf(b.out, "[%s] %s: %s\n", level, file, message)
		return err
	}
	_, err := fmt.Fprintf(b.out, "[%s] %s\n", level, message)
	return err
}

func (b *basic) BundleCompleted(ctx context.Context, output string, s engine.Stats, d time.Duration, err error) {
	if err != nil {
		fmt.Fprintf(b.out, "%s (failed in %s): %s\n", output, d.Round(time.Millisecond), err)
		return
	}
	fmt.Fprintf(b.out, "%s (%s in %s)\n", output, summary(s), d.Round(time.Millisecond))
}

// github is the Report implementation when running inside a GitHub Actions
// Workflow.
//
// See https://docs.github.com/en/actions/using-workflows/workflow-commands-for-github-actions
type github struct {
	out io.Writer
}

func (g *github) Close() error {
	return nil
}

func (g *github) FileBundled(ctx context.Context, modulePath string, f *engine.File) {
	fmt.Fprintf(g.out, "::debug::%s (%s, id %d)\n", modulePath, kindOf(f), f.ID)
}

func (g *github) EmitFinding(ctx context.Context, level engine.Level, message, file string) error {
	if file != "" {
		_, err := fmt.Fprintf(g.out, "::%s file=%s,title=zphbundle::%s\n", level, file, message)
		return err
	}
	_, err := fmt.Fprintf(g.out, "::%s title=zphbundle::%s\n", level, message)
	return err
}

func (g *github) BundleCompleted(ctx context.Context, output string, s engine.Stats, d time.Duration, err error) {
	if err != nil {
		fmt.Fprintf(g.out, "::error file=%s,title=zphbundle::%s\n", output, err)
		return
	}
	fmt.Fprintf(g.out, "::notice file=%s,title=zphbundle::%s\n", output, summary(s))
}

type interactive struct {
	out     io.Writer
	verbose bool
}

func (i *interactive) Close() error {
	return nil
}

func (i *interactive) FileBundled(ctx context.Context, modulePath string, f *engine.File) {
	if !i.verbose {
		return
	}
	c := fgHiCyan
	if f.IsAssembly {
		c = fgMagenta
	}
	fmt.Fprintf(i.out, "%s- %s%s%s %s(%s, id %d)%s\n", reset, c, modulePath, reset, faint, kindOf(f), f.ID, reset)
}

func (i *interactive) EmitFinding(ctx context.Context, level engine.Level, message, file string) error {
	c := levelColor[level]
	if file != "" {
		_, err := fmt.Fprintf(i.out, "%s[%s%s%s] %s%s%s: %s\n", reset, c, level, reset, fgHiBlue, file, reset, message)
		return err
	}
	_, err := fmt.Fprintf(i.out, "%s[%s%s%s] %s\n", reset, c, level, reset, message)
	return err
}

func (i *interactive) BundleCompleted(ctx context.Context, output string, s engine.Stats, d time.Duration, err error) {
	if err != nil {
		fmt.Fprintf(i.out, "%s%s%s%s (failed in %s): %s\n", reset, fgRed, output, reset, d.Round(time.Millisecond), err)
		return
	}
	fmt.Fprintf(i.out, "%s%s%s%s (%s in %s)\n", reset, fgGreen, output, reset, summary(s), d.Round(time.Millisecond))
}

var levelColor = map[engine.Level]ansiCode{
	engine.Notice:  fgGreen,
	engine.Warning: fgYellow,
	engine.Error:   fgRed,
}

func kindOf(f *engine.File) engine.Kind {
	if f.IsAssembly {
		return engine.Assembly
	}
	return engine.Source
}

func summary(s engine.Stats) string {
	return fmt.Sprintf("%d packages, %d files, %d assembly, %d bytes", s.Packages, s.Files, s.Assembly, s.Bytes)
}
