// Copyright (C) 2024, Chain4Travel AG. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"context"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/chain4travel/camino-foundation/vms/foundationvm"
)

const (
	uriKey     = "uri"
	timeoutKey = "timeout"

	defaultURI     = "http://127.0.0.1:9650"
	defaultTimeout = 10 * time.Second
)

// NewRootCommand returns the foundation command with all its subcommands.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "foundation",
		Short:         "Weighted multisig governance node and client",
		Version:       foundationvm.Version.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String(uriKey, defaultURI, "URI of the node the client commands talk to")
	root.PersistentFlags().Duration(timeoutKey, defaultTimeout, "Timeout of client requests")

	root.AddCommand(
		newServeCommand(),
		newGenesisCommand(),
		newProposalsCommand(),
		newVotesCommand(),
		newVotersCommand(),
		newThresholdCommand(),
		newBalanceCommand(),
		newHeightCommand(),
		newProposeCommand(),
		newVoteCommand(),
		newExecuteCommand(),
		newCloseCommand(),
	)
	return root
}

// clientContext returns a client for the node set by the persistent flags and
// a context bounded by the request timeout.
func clientContext(cmd *cobra.Command) (foundationvm.Client, context.Context, context.CancelFunc, error) {
	uri, err := cmd.Flags().GetString(uriKey)
	if err != nil {
		return nil, nil, nil, err
	}
	timeout, err := cmd.Flags().GetDuration(timeoutKey)
	if err != nil {
		return nil, nil, nil, err
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	return foundationvm.NewClient(uri), ctx, cancel, nil
}

// Execute runs the foundation command with the process arguments.
func Execute() error {
	root := NewRootCommand()
	if err := root.Execute(); err != nil {
		root.PrintErrln(color.RedString("Error:"), err)
		return err
	}
	return nil
}
