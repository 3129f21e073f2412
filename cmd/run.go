// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/alecthomas/kong"

	pkgfs "github.com/hashicorp/go-pkgfs"
)

// CLI are the cli parameters for the go-pkgfs binary
type CLI struct {
	Copy   copyCmd   `cmd:"" help:"Copy a folder recursively."`
	Mtime  mtimeCmd  `cmd:"" help:"Print the most recent modification time below a path."`
	Unpack unpackCmd `cmd:"" help:"Unpack a zip or tar.gz archive."`

	Telemetry bool             `short:"T" optional:"" default:"false" help:"Print telemetry data to log after extraction."`
	Verbose   bool             `short:"v" optional:"" help:"Verbose logging."`
	Version   kong.VersionFlag `short:"V" optional:"" help:"Print release version information."`
}

// globals are handed to the subcommand Run methods.
type globals struct {
	logger    *slog.Logger
	telemetry bool
}

type copyCmd struct {
	Source      string `arg:"" help:"Source directory." type:"existingdir"`
	Destination string `arg:"" help:"Destination directory."`
}

func (c *copyCmd) Run(g *globals) error {
	cfg := pkgfs.NewConfig(pkgfs.WithLogger(g.logger))
	return pkgfs.CopyFolder(c.Source, c.Destination, cfg)
}

type mtimeCmd struct {
	Path string `arg:"" help:"File or directory to inspect." type:"path"`
}

func (m *mtimeCmd) Run(g *globals) error {
	cfg := pkgfs.NewConfig(pkgfs.WithLogger(g.logger))
	ts, err := pkgfs.MtimeRecursive(m.Path, cfg)
	if err != nil {
		return err
	}
	fmt.Println(ts.Format(time.RFC3339Nano))
	return nil
}

type unpackCmd struct {
	Archive         string `arg:"" name:"archive" help:"Path to archive. (\"-\" for STDIN)"`
	Destination     string `arg:"" name:"destination" default:"." help:"Output directory."`
	Checksum        bool   `short:"s" help:"Print the sha256 of the archive bytes."`
	ContinueOnError bool   `short:"C" help:"Continue extraction on error."`
	MaxInputSize    int64  `optional:"" default:"1073741824" help:"Maximum input size that is allowed (in bytes). (disable check: -1)"`
}

func (u *unpackCmd) Run(g *globals) error {
	ctx := context.Background()

	// setup telemetry hook
	telemetryToLog := func(ctx context.Context, td *pkgfs.TelemetryData) {
		if g.telemetry {
			g.logger.Info("extraction finished", "telemetryData", td)
		}
	}

	cfg := pkgfs.NewConfig(
		pkgfs.WithChecksum(u.Checksum),
		pkgfs.WithContinueOnError(u.ContinueOnError),
		pkgfs.WithLogger(g.logger),
		pkgfs.WithMaxInputSize(u.MaxInputSize),
		pkgfs.WithTelemetryHook(telemetryToLog),
	)

	// open archive
	var archive io.Reader
	if u.Archive == "-" {
		archive = bufio.NewReader(os.Stdin)
	} else {
		f, err := os.Open(u.Archive)
		if err != nil {
			return fmt.Errorf("opening archive failed: %w", err)
		}
		defer f.Close()
		archive = f
	}

	res, err := pkgfs.Unpack(ctx, archive, u.Destination, cfg)
	if err != nil {
		return fmt.Errorf("error during extraction: %w", err)
	}
	if res.ArchiveRoot != "" {
		fmt.Println(res.ArchiveRoot)
	}
	if res.Checksum != "" {
		fmt.Println(res.Checksum)
	}
	return nil
}

// Run is the entrypoint into go-pkgfs as a cli tool
func Run(version, commit, date string) {
	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Description("Filesystem helpers for package fetch pipelines"),
		kong.UsageOnError(),
		kong.Vars{
			"version": fmt.Sprintf("%s (%s), commit %s, built at %s", filepath.Base(os.Args[0]), version, commit, date),
		},
	)

	// Check for verbose output
	logLevel := slog.LevelError
	if cli.Verbose {
		logLevel = slog.LevelDebug
	}

	// setup logger
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))

	err := kctx.Run(&globals{logger: logger, telemetry: cli.Telemetry})
	kctx.FatalIfErrorf(err)
}
