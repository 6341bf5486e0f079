package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"commentarchive/internal/server"
	"commentarchive/internal/session"
)

func serveCmd(opts *globalOptions) *cobra.Command {
	var (
		addr  string
		watch bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the archive HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(opts)
			if err != nil {
				return err
			}

			if addr != "" {
				a.cfg.Server.Addr = addr
			}

			if a.cfg.Logging.Level != "debug" {
				gin.SetMode(gin.ReleaseMode)
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			cat, _, err := a.load(ctx)
			if err != nil {
				return err
			}

			sessions, err := a.sessionRegistry(ctx)
			if err != nil {
				return err
			}
			if closer, ok := sessions.(io.Closer); ok {
				defer closer.Close()
			}

			srv := server.New(cat, a.converter, sessions, server.Options{
				ArticlesPerPage:   a.cfg.Archive.ArticlesPerPage,
				ResultsPerPage:    a.cfg.Search.ResultsPerPage,
				PreviewLength:     a.cfg.Search.PreviewLength,
				PrivilegedAuthors: a.cfg.Search.PrivilegedAuthors,
				SiteDomain:        a.cfg.Search.SiteDomain,
				ReadTimeout:       a.cfg.Server.ReadTimeout(),
				WriteTimeout:      a.cfg.Server.WriteTimeout(),
			}, a.log)

			g, ctx := errgroup.WithContext(ctx)

			g.Go(func() error {
				return srv.Run(ctx, a.cfg.Server.Addr)
			})

			if watch || a.cfg.Features.Watch {
				g.Go(func() error {
					return a.watch(ctx, func(ctx context.Context, paths []string) {
						cat, _, err := a.load(ctx)
						if err != nil {
							a.log.Error("Reload failed, keeping previous archive", "error", err)
							return
						}
						srv.Replace(cat)
						a.log.Info("Archive reloaded", "files", len(paths), "articles", cat.Len())
					})
				})
			}

			return g.Wait()
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides server.addr)")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Reload the archive when record files change")

	return cmd
}

// sessionRegistry builds the configured session backend.
func (a *app) sessionRegistry(ctx context.Context) (session.Registry, error) {
	switch a.cfg.Server.Sessions {
	case "redis":
		r, err := session.NewRedisRegistry(ctx, a.cfg.Server.RedisURL, session.DefaultRedisPrefix, a.cfg.Server.SessionTTL())
		if err != nil {
			return nil, fmt.Errorf("redis sessions: %w", err)
		}
		a.log.Info("Using redis sessions", "ttl", a.cfg.Server.SessionTTL())
		return r, nil
	default:
		return session.NewMemoryStore(), nil
	}
}
