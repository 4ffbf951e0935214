package cli

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/morozRed/bit/internal/server"
)

func RunServe(version string) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(commandContext(cmd), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if verbose, _ := OptionalBoolFlag(cmd, "verbose", false); !verbose {
			gin.SetMode(gin.ReleaseMode)
		}
		srv, addr, err := newServer(ctx, cmd, version)
		if err != nil {
			return err
		}
		return srv.Run(ctx, addr)
	}
}

// newServer builds the HTTP server and its listen address from the config,
// letting --addr, --ref and the analysis flags override it.
func newServer(ctx context.Context, cmd *cobra.Command, version string) (*server.Server, string, error) {
	ws, err := openWorkspace(ctx, cmd)
	if err != nil {
		return nil, "", err
	}
	addr, err := OptionalStringFlag(cmd, "addr")
	if err != nil {
		return nil, "", err
	}
	if addr == "" {
		addr = ws.Config.Server.Addr
	}
	ref, err := ws.baseline(cmd)
	if err != nil {
		return nil, "", err
	}
	analyzer, err := ws.analyzer(cmd, nil)
	if err != nil {
		return nil, "", err
	}

	srv := server.New(server.Options{
		Analyzer:   analyzer,
		Git:        ws.Git,
		Registry:   ws.Registry,
		Ignore:     ws.Ignore,
		Root:       ws.Root,
		DefaultRef: ref,
		Version:    version,
		Logger:     ws.Logger,
	})
	return srv, addr, nil
}
