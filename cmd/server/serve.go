package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"github.com/vinodismyname/sheetaudit/internal/rpc"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var transport string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the analysis tools over stdio",
		Long: `Serve reads newline-delimited JSON-RPC requests from stdin and writes one
response line per request to stdout. The "mcp" transport serves the same tools
through a standard MCP stdio server instead.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts, transport)
		},
	}

	cmd.Flags().StringVarP(&transport, "transport", "t", "", "Transport to serve: line or mcp (default from server.transport)")
	return cmd
}

// runServe serves on cmd's stdio until input ends or a signal arrives. An
// empty transport keeps server.transport from the configuration.
func runServe(cmd *cobra.Command, opts *rootOptions, transport string) error {
	if transport != "" {
		opts.cfg.Server.Transport = transport
		if err := opts.cfg.Validate(); err != nil {
			return err
		}
	}
	a, err := newApp(opts.cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return a.serve(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
}

func (a *app) serve(ctx context.Context, in io.Reader, out, diag io.Writer) error {
	transport := a.cfg.Server.Transport
	tools, _ := a.registry.Tools(ctx)

	a.logger.Info().
		Str("version", a.serverVersion()).
		Str("transport", transport).
		Int("tools", len(tools)).
		Int("max_concurrent_requests", a.limits.MaxConcurrentRequests).
		Int("max_open_workbooks", a.limits.MaxOpenWorkbooks).
		Int("model_context_size", a.registry.ModelContextSize()).
		Msg("server bootstrap configured")

	// The banner goes to the diagnostic stream only; stdout carries protocol lines.
	fmt.Fprintf(diag, "%s %s ready on stdio (%s transport, %d tools)\n", a.serverName(), a.serverVersion(), transport, len(tools))

	switch transport {
	case "mcp":
		return a.serveMCP(ctx, in, out)
	default:
		srv := rpc.NewServer(in, out, a.registry, a.mw, a.hooks, a.logger, rpc.Options{
			Name:            a.serverName(),
			Version:         a.serverVersion(),
			ProtocolVersion: a.cfg.Server.ProtocolVersion,
			MaxLineBytes:    a.limits.MaxLineBytes,
		})
		return srv.Serve(ctx)
	}
}

func (a *app) serveMCP(ctx context.Context, in io.Reader, out io.Writer) error {
	srv := server.NewMCPServer(
		a.serverName(),
		a.serverVersion(),
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithHooks(a.hooks.ServerHooks()),
		server.WithToolHandlerMiddleware(a.mw.ToolMiddleware),
		server.WithToolFilter(a.filter.FilterTools),
		server.WithInstructions("Pass a workbook filename and its base64 bytes as file_content. Reports are JSON and never modify the workbook."),
	)
	a.registry.Mount(srv, a.logger)

	stdio := server.NewStdioServer(srv)
	stdio.SetErrorLogger(log.New(a.logger, "", 0))

	a.hooks.OnServerStart("mcp")
	err := stdio.Listen(ctx, in, out)
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	a.hooks.OnServerStop("mcp", 0, err)
	return err
}
