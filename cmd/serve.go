// Copyright (C) 2024, Chain4Travel AG. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/chain4travel/camino-foundation/config"
	"github.com/chain4travel/camino-foundation/node"
)

const envFile = ".env"

func newServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a foundation node",
		Long: "Run a foundation node. Settings are read from flags, FOUNDATION_* " +
			"environment variables, a .env file and the config file, in that order.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := config.LoadEnvFile(envFile); err != nil {
				return err
			}
			v, err := config.BuildViper(cmd.Flags())
			if err != nil {
				return err
			}
			nodeConfig, err := config.GetConfig(v)
			if err != nil {
				return err
			}

			n, err := node.New(nodeConfig, nil)
			if err != nil {
				return err
			}
			defer func() {
				_ = n.Close()
			}()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			n.Log.Info("starting node", zap.String("address", nodeConfig.HTTPAddress()))
			return n.Run(ctx)
		},
	}
	config.AddFlags(cmd.Flags())
	return cmd
}
