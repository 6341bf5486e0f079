package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"commentarchive/internal/ingest"
	"commentarchive/internal/render"
	"commentarchive/internal/session"
)

func buildCmd(opts *globalOptions) *cobra.Command {
	var (
		watch  bool
		output string
	)

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Render the archive into one HTML document",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(opts)
			if err != nil {
				return err
			}

			if output != "" {
				a.cfg.Archive.Output = output
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			if err := a.build(ctx, cmd.OutOrStdout()); err != nil {
				return err
			}

			if !watch && !a.cfg.Features.Watch {
				return nil
			}

			return a.watch(ctx, func(ctx context.Context, paths []string) {
				a.log.Info("Records changed, rebuilding", "files", len(paths))
				if err := a.build(ctx, cmd.OutOrStdout()); err != nil {
					a.log.Error("Rebuild failed", "error", err)
				}
			})
		},
	}

	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Rebuild when record files change")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output path (overrides archive.output)")

	return cmd
}

func (a *app) build(ctx context.Context, out io.Writer) error {
	start := time.Now()

	cat, report, err := a.load(ctx)
	if err != nil {
		return err
	}

	prefs := session.DefaultPreferences()
	prefs.Background = a.cfg.Archive.Background

	doc, err := render.Document(cat, render.Options{
		Title:           a.cfg.Archive.Title,
		ArticlesPerPage: a.cfg.Archive.ArticlesPerPage,
		Preferences:     prefs,
		Converter:       a.converter,
		Sign:            a.cfg.Features.SignOutput,
		Version:         Version,
		Now:             time.Now(),
	})
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}

	written, err := render.WriteDocument(a.cfg.Archive.Output, doc)
	if err != nil {
		return fmt.Errorf("write %s: %w", a.cfg.Archive.Output, err)
	}

	status := "unchanged"
	if written {
		status = "written"
	}

	fmt.Fprintf(out, "%s: %d articles, %d comments, %d skipped (%s, %v)\n",
		a.cfg.Archive.Output, report.Articles, report.Comments, len(report.Failures),
		status, time.Since(start).Round(time.Millisecond))

	return nil
}

// watch blocks until ctx is done, calling onChange after record files settle.
func (a *app) watch(ctx context.Context, onChange func(ctx context.Context, paths []string)) error {
	w, err := ingest.NewWatcher(a.cfg.Archive.DataDir, ingest.DefaultDebounce, a.log)
	if err != nil {
		return fmt.Errorf("watch %s: %w", a.cfg.Archive.DataDir, err)
	}

	a.log.Info("Watching for changes", "dir", a.cfg.Archive.DataDir)

	return w.Run(ctx, onChange)
}
