package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/syssam/veloximport/compiler"
	"github.com/syssam/veloximport/compiler/load"
)

var errMissingURL = errors.New("missing database url: set --database-url, VELOXIMPORT_DATABASE_URL or DATABASE_URL")

// newLogger logs to w, at debug level when debug is set.
func newLogger(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// run imports the database described by cfg and prints the outcome.
func (c *cli) run(ctx context.Context, cfg *Config) error {
	if cfg.DatabaseURL == "" {
		return errMissingURL
	}
	logger := newLogger(c.stderr, cfg.Debug)
	gc, err := cfg.genConfig(logger)
	if err != nil {
		return err
	}
	var opts []load.ReaderOption
	if cfg.Debug {
		opts = append(opts, load.WithStats(cfg.SlowQuery))
	}
	res, err := compiler.Generate(ctx, cfg.DatabaseURL, gc, opts...)
	if err != nil {
		return err
	}
	printResult(c.stdout, res, gc.Target, cfg.DryRun)
	return nil
}

// printResult lists the files and warnings of a run.
func printResult(w io.Writer, res *compiler.Result, target string, dryRun bool) {
	for _, f := range res.Files {
		path := filepath.Join(target, f.Name)
		if dryRun {
			fmt.Fprintf(w, "  %s %s\n", path, dim(fmt.Sprintf("(%d bytes)", len(f.Content))))
			continue
		}
		fmt.Fprintln(w, success(path))
	}
	if len(res.Warnings) > 0 {
		fmt.Fprintln(w)
		for _, warn := range res.Warnings {
			fmt.Fprintln(w, warning(warn.String()))
		}
	}
	fmt.Fprintln(w)
	verb := "Generated"
	if dryRun {
		verb = "Rendered (dry run)"
	}
	fmt.Fprintf(w, "%s %d schemas from %s, %d warnings\n",
		bold(verb), len(res.Tables), res.Database, len(res.Warnings))
}
