// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/hashicorp/bnet-relay/relay"
)

const shutdownTimeout = 15 * time.Second

type serveFlags struct {
	addr     string
	logLevel string
}

func newServeCmd() *cobra.Command {
	var flags serveFlags
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the relay's http server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, flags)
		},
	}
	cmd.Flags().StringVar(&flags.addr, "addr", "", "listen address, overrides HOST and PORT")
	cmd.Flags().StringVar(&flags.logLevel, "log-level", "", "log level, overrides LOG_LEVEL")
	return cmd
}

func serve(ctx context.Context, flags serveFlags) error {
	const op = "serve"
	c, err := relay.LoadConfig()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if flags.logLevel != "" {
		c.LogLevel = flags.logLevel
		if err := c.Validate(); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}
	addr := c.Addr()
	if flags.addr != "" {
		addr = flags.addr
	}
	logger := c.Logger("bnet-relay")

	s, err := relay.New(c, relay.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	l, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	srv := &http.Server{
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
		ErrorLog:          logger.StandardLogger(nil),
	}

	srvCh := make(chan error, 1)
	go func() {
		srvCh <- srv.Serve(l)
	}()
	logger.Info("listening", "addr", l.Addr().String(), "version", version)

	select {
	case err := <-srvCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("%s: %w", op, err)
		}
		return nil
	case <-ctx.Done():
		logger.Info("shutting down")
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
