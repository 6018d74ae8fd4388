// Copyright (C) 2024, Chain4Travel AG. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"fmt"

	"github.com/google/renameio/v2"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"

	"github.com/chain4travel/camino-foundation/genesis"
)

const (
	outputKey          = "output"
	voterKey           = "voter"
	allocationKey      = "allocation"
	thresholdKey       = "threshold"
	maxVotingPeriodKey = "max-voting-period"
	custodyKey         = "custody"
	startTimeKey       = "start-time"

	genesisFilePerms = 0o644
)

func newGenesisCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "genesis",
		Short: "Manage genesis files",
	}
	cmd.AddCommand(newGenesisInitCommand())
	return cmd
}

func newGenesisInitCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a verified genesis file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			genesisConfig, err := genesisFromFlags(cmd)
			if err != nil {
				return err
			}
			if err := genesisConfig.Verify(); err != nil {
				return fmt.Errorf("invalid genesis: %w", err)
			}
			genesisBytes, err := genesisConfig.JSON()
			if err != nil {
				return err
			}

			output, err := cmd.Flags().GetString(outputKey)
			if err != nil {
				return err
			}
			if err := renameio.WriteFile(output, genesisBytes, genesisFilePerms); err != nil {
				return fmt.Errorf("couldn't write genesis file: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote genesis with %d voters to %s\n", len(genesisConfig.Voters), output)
			return nil
		},
	}
	flags := cmd.Flags()
	flags.String(outputKey, "genesis.json", "Path of the genesis file")
	flags.StringArray(voterKey, nil, "Voter as address:weight[:info], repeatable")
	flags.StringArray(allocationKey, nil, "Initial balance as address:amount, repeatable")
	flags.String(thresholdKey, "", "Threshold as count:<weight> or percentage:<decimal>")
	flags.String(maxVotingPeriodKey, "", "Maximum voting period as a number of blocks or a duration")
	flags.String(custodyKey, "", "Address holding the transferable funds")
	flags.String(startTimeKey, "0", "Unix time of the genesis block")
	_ = cmd.MarkFlagRequired(voterKey)
	_ = cmd.MarkFlagRequired(thresholdKey)
	_ = cmd.MarkFlagRequired(maxVotingPeriodKey)
	_ = cmd.MarkFlagRequired(custodyKey)
	return cmd
}

func genesisFromFlags(cmd *cobra.Command) (*genesis.Config, error) {
	flags := cmd.Flags()
	genesisConfig := &genesis.Config{}

	voters, err := flags.GetStringArray(voterKey)
	if err != nil {
		return nil, err
	}
	for _, s := range voters {
		voter, err := parseVoter(s)
		if err != nil {
			return nil, err
		}
		genesisConfig.Voters = append(genesisConfig.Voters, voter)
	}

	allocations, err := flags.GetStringArray(allocationKey)
	if err != nil {
		return nil, err
	}
	for _, s := range allocations {
		allocation, err := parseAllocation(s)
		if err != nil {
			return nil, err
		}
		genesisConfig.Allocations = append(genesisConfig.Allocations, allocation)
	}

	threshold, err := flags.GetString(thresholdKey)
	if err != nil {
		return nil, err
	}
	if genesisConfig.Threshold, err = parseThreshold(threshold); err != nil {
		return nil, err
	}

	period, err := flags.GetString(maxVotingPeriodKey)
	if err != nil {
		return nil, err
	}
	if genesisConfig.MaxVotingPeriod, err = parseVotingPeriod(period); err != nil {
		return nil, err
	}

	custody, err := flags.GetString(custodyKey)
	if err != nil {
		return nil, err
	}
	if genesisConfig.Custody, err = parseAddress(custody); err != nil {
		return nil, err
	}

	startTime, err := flags.GetString(startTimeKey)
	if err != nil {
		return nil, err
	}
	if genesisConfig.StartTime, err = cast.ToUint64E(startTime); err != nil {
		return nil, fmt.Errorf("couldn't parse start time: %w", err)
	}
	return genesisConfig, nil
}
