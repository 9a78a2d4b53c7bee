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

// Package zphbundle is the executable bundling the Zephyr core and standard
// library into a source file the playground can import.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mattn/go-isatty"
	flag "github.com/spf13/pflag"
	"github.com/zephyr-lang/zphbundle/internal/cli"
	"github.com/zephyr-lang/zphbundle/internal/engine"
)

func main() {
	signalChannel := make(chan os.Signal, 2)
	signal.Notify(signalChannel, syscall.SIGTERM, syscall.SIGINT)
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-signalChannel
		cancel()
	}()

	if err := cli.Main(ctx, os.Args); err != nil && !errors.Is(err, flag.ErrHelp) {
		// If stderr is not a terminal, always print the error.
		//
		// If stderr is a terminal, a stale output has already been reported
		// and a context cancellation is the user's own Ctrl-C.
		if !isatty.IsTerminal(os.Stderr.Fd()) ||
			(!errors.Is(err, engine.ErrStale) && !errors.Is(err, context.Canceled)) {
			_, _ = fmt.Fprintf(os.Stderr, "zphbundle: %s\n", err)
		}
		os.Exit(1)
	}
}
