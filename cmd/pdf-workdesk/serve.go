package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/a3tai/pdf-workdesk/internal/config"
	"github.com/a3tai/pdf-workdesk/internal/mcp"
	"github.com/a3tai/pdf-workdesk/internal/session"
	"github.com/a3tai/pdf-workdesk/internal/web"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, config.ModeServer)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			sessions := session.NewStore(a.cfg.SessionTTL, a.cfg.MaxSessions, a.logger)
			go sessions.Run(ctx, session.DefaultSweepPeriod)

			api := web.NewServer(a.service, sessions, a.fetcher, a.logger)
			if err := api.ListenAndServe(ctx, a.cfg.Address()); err != nil {
				return err
			}
			a.logger.Info("Server stopped successfully")
			return nil
		},
	}
}

func mcpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve MCP tools over standard I/O for files in --dir",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, config.ModeStdio)
			if err != nil {
				return err
			}

			server, err := mcp.NewServer(a.cfg, a.service, a.logger)
			if err != nil {
				return err
			}
			return server.Run(cmd.Context(), os.Stdin, os.Stdout)
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			printVersion(cmd.OutOrStdout())
		},
	}
}
