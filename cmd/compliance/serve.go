package main

import (
	"github.com/spf13/cobra"

	"github.com/ersonp/compliance-core/internal/infrastructure/httpapi"
)

func newServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard HTTP API",
		Long:  "Serves the dashboard, rule, case and document endpoints for one tenant, plus /metrics and /healthz.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, addr)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Listen address (default: http.addr from config)")

	return cmd
}

func runServe(cmd *cobra.Command, addr string) error {
	ctx := cmd.Context()

	return withInternalDeps(func(d *internalDeps) error {
		if addr == "" {
			addr = d.Config.HTTP.Addr
		}

		d.compliance.Load(ctx)

		server := httpapi.NewServer(d.compliance, d.Metrics.Handler(), d.Logger)
		return server.Run(ctx, addr)
	})
}
