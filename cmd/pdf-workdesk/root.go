package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/a3tai/pdf-workdesk/internal/config"
	"github.com/a3tai/pdf-workdesk/internal/fetch"
	"github.com/a3tai/pdf-workdesk/internal/logging"
	"github.com/a3tai/pdf-workdesk/internal/pdf"
)

// app bundles what every subcommand needs
type app struct {
	cfg     *config.Config
	logger  *logrus.Logger
	service *pdf.Service
	fetcher *fetch.Fetcher
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "pdf-workdesk",
		Short:         "Inspect, convert and edit PDF files",
		Long:          "PDF WorkDesk extracts text and images, protects, rotates, resizes, merges, converts and shrinks PDF files.\nRun it as an HTTP API (serve), as an MCP server (mcp) or one command at a time.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	config.DefineFlags(root.PersistentFlags())

	root.AddCommand(
		serveCmd(),
		mcpCmd(),
		textCmd(),
		imagesCmd(),
		infoCmd(),
		encryptCmd(),
		decryptCmd(),
		rotateCmd(),
		resizeCmd(),
		mergeCmd(),
		convertCmd(),
		reduceCmd(),
		versionCmd(),
	)
	return root
}

// newApp loads the configuration for cmd. A non-empty mode overrides the
// configured one.
func newApp(cmd *cobra.Command, mode string) (*app, error) {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return nil, err
	}
	if mode != "" {
		cfg.Mode = mode
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid configuration: %w", err)
		}
	}
	if version != "dev" {
		cfg.Version = version
	}

	logger, err := logging.New(cfg.LogLevel, cfg.IsStdioMode())
	if err != nil {
		return nil, err
	}
	if cfg.IsDebug() {
		logger.Debugf("Starting with configuration: %s", cfg.String())
	}

	return &app{
		cfg:    cfg,
		logger: logger,
		service: pdf.NewService(pdf.Options{
			MaxFileSize: cfg.MaxFileSize,
			PreviewDPI:  cfg.PreviewDPI,
		}, logger),
		fetcher: fetch.New(fetch.Options{
			Timeout:     cfg.FetchTimeout,
			MaxFileSize: cfg.MaxFileSize,
			CacheSize:   cfg.FetchCacheSize,
		}, logger),
	}, nil
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// load reads a document from a file or, for http(s) arguments, from a URL
func (a *app) load(ctx context.Context, input, password string) (*pdf.Document, error) {
	if isURL(input) {
		result, err := a.fetcher.Fetch(ctx, input)
		if err != nil {
			return nil, err
		}
		return a.service.Load(result.Data, result.Name, password)
	}
	return a.service.LoadFile(input, password)
}

// outputPath returns output, or name in the directory of input
func outputPath(input, output, name string) string {
	if output != "" {
		return output
	}
	if isURL(input) {
		return name
	}
	return filepath.Join(filepath.Dir(input), name)
}

// write saves an artifact and reports where it went
func (a *app) write(cmd *cobra.Command, input, output string, artifact *pdf.Artifact) error {
	target := outputPath(input, output, artifact.Name)
	if dir := filepath.Dir(target); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("cannot create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(target, artifact.Data, 0o644); err != nil {
		return fmt.Errorf("cannot write %s: %w", target, err)
	}

	a.logger.WithFields(logrus.Fields{"path": target, "size": artifact.Size()}).Debug("artifact written")
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d bytes)\n", target, artifact.Size())
	return nil
}
