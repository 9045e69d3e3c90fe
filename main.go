package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/gnodet/hnvm/cmd"
	"github.com/gnodet/hnvm/pkg/tools"
)

var (
	// Version information - will be set during build
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

func main() {
	cmd.SetVersionInfo(Version, Commit, Date)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)

	// Installed as node, npm, npx, pnpm or pnpx, hnvm behaves as that binary
	var err error
	if name := filepath.Base(os.Args[0]); cmd.IsShim(name) {
		err = cmd.RunShim(ctx, name, os.Args[1:])
	} else {
		err = cmd.Execute(ctx)
	}
	stop()
	os.Exit(tools.ExitCode(err))
}
