// Copyright (C) 2024, Chain4Travel AG. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"errors"
	"fmt"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"

	"github.com/chain4travel/camino-foundation/vms/foundationvm/query"
)

const (
	startAfterKey = "start-after"
	limitKey      = "limit"
	reverseKey    = "reverse"
)

var (
	errVoteNotFound  = errors.New("no vote found")
	errVoterNotFound = errors.New("not a voter")
)

func parseProposalID(s string) (uint64, error) {
	proposalID, err := cast.ToUint64E(s)
	if err != nil {
		return 0, fmt.Errorf("couldn't parse proposal id %q: %w", s, err)
	}
	return proposalID, nil
}

func addPageFlags(cmd *cobra.Command, startAfterUsage string) {
	cmd.Flags().String(startAfterKey, "", startAfterUsage)
	cmd.Flags().Uint32(limitKey, query.DefaultLimit, fmt.Sprintf("Maximum number of results, at most %d", query.MaxLimit))
}

func startAfterAddress(cmd *cobra.Command) (ids.ShortID, error) {
	startAfter, err := cmd.Flags().GetString(startAfterKey)
	if err != nil || startAfter == "" {
		return ids.ShortEmpty, err
	}
	return parseAddress(startAfter)
}

func newProposalsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "proposals",
		Short: "Query proposals",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List proposals by id",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			flags := cmd.Flags()
			startAfter, err := flags.GetString(startAfterKey)
			if err != nil {
				return err
			}
			start := uint64(0)
			if startAfter != "" {
				if start, err = parseProposalID(startAfter); err != nil {
					return err
				}
			}
			limit, err := flags.GetUint32(limitKey)
			if err != nil {
				return err
			}
			reverse, err := flags.GetBool(reverseKey)
			if err != nil {
				return err
			}

			client, ctx, cancel, err := clientContext(cmd)
			if err != nil {
				return err
			}
			defer cancel()

			var proposals []*query.ProposalView
			if reverse {
				proposals, err = client.ReverseProposals(ctx, start, limit)
			} else {
				proposals, err = client.ListProposals(ctx, start, limit)
			}
			if err != nil {
				return err
			}
			renderProposals(cmd.OutOrStdout(), proposals)
			return nil
		},
	}
	addPageFlags(list, "Only list proposals after this id, or before it with --reverse")
	list.Flags().Bool(reverseKey, false, "List the newest proposals first")

	show := &cobra.Command{
		Use:   "show <proposal-id>",
		Short: "Show a proposal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			proposalID, err := parseProposalID(args[0])
			if err != nil {
				return err
			}
			client, ctx, cancel, err := clientContext(cmd)
			if err != nil {
				return err
			}
			defer cancel()

			proposal, err := client.GetProposal(ctx, proposalID)
			if err != nil {
				return err
			}
			renderProposal(cmd.OutOrStdout(), proposal)
			return nil
		},
	}

	cmd.AddCommand(list, show)
	return cmd
}

func newVotesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "votes <proposal-id> [voter]",
		Short: "List the votes on a proposal, or show the vote of one voter",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			proposalID, err := parseProposalID(args[0])
			if err != nil {
				return err
			}
			client, ctx, cancel, err := clientContext(cmd)
			if err != nil {
				return err
			}
			defer cancel()

			if len(args) == 2 {
				voter, err := parseAddress(args[1])
				if err != nil {
					return err
				}
				vote, err := client.GetVote(ctx, proposalID, voter)
				if err != nil {
					return err
				}
				if vote == nil {
					return fmt.Errorf("%w: %s on proposal %d", errVoteNotFound, voter, proposalID)
				}
				renderVotes(cmd.OutOrStdout(), []*query.VoteView{vote})
				return nil
			}

			startAfter, err := startAfterAddress(cmd)
			if err != nil {
				return err
			}
			limit, err := cmd.Flags().GetUint32(limitKey)
			if err != nil {
				return err
			}
			votes, err := client.ListVotes(ctx, proposalID, startAfter, limit)
			if err != nil {
				return err
			}
			renderVotes(cmd.OutOrStdout(), votes)
			return nil
		},
	}
	addPageFlags(cmd, "Only list votes of voters after this address")
	return cmd
}

func newVotersCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "voters [address]",
		Short: "List the voters, or show one voter",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, ctx, cancel, err := clientContext(cmd)
			if err != nil {
				return err
			}
			defer cancel()

			if len(args) == 1 {
				address, err := parseAddress(args[0])
				if err != nil {
					return err
				}
				voter, err := client.GetVoter(ctx, address)
				if err != nil {
					return err
				}
				if voter == nil {
					return fmt.Errorf("%w: %s", errVoterNotFound, address)
				}
				renderVoters(cmd.OutOrStdout(), []*query.VoterView{voter})
				return nil
			}

			startAfter, err := startAfterAddress(cmd)
			if err != nil {
				return err
			}
			limit, err := cmd.Flags().GetUint32(limitKey)
			if err != nil {
				return err
			}
			voters, err := client.ListVoters(ctx, startAfter, limit)
			if err != nil {
				return err
			}
			renderVoters(cmd.OutOrStdout(), voters)
			return nil
		},
	}
	addPageFlags(cmd, "Only list voters after this address")
	return cmd
}

func newThresholdCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "threshold",
		Short: "Show the threshold new proposals are created with",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, ctx, cancel, err := clientContext(cmd)
			if err != nil {
				return err
			}
			defer cancel()

			threshold, err := client.GetThreshold(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s of total weight %d\n", threshold.Rule, threshold.TotalWeight)
			return nil
		},
	}
}

func newBalanceCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "balance <address>",
		Short: "Show the balance of an address",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			address, err := parseAddress(args[0])
			if err != nil {
				return err
			}
			client, ctx, cancel, err := clientContext(cmd)
			if err != nil {
				return err
			}
			defer cancel()

			balance, err := client.GetBalance(ctx, address)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), balance)
			return nil
		},
	}
}

func newHeightCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "height",
		Short: "Show the height and time queries are evaluated at",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, ctx, cancel, err := clientContext(cmd)
			if err != nil {
				return err
			}
			defer cancel()

			reply, err := client.GetHeight(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "height %d, time %d\n", reply.Height, reply.Timestamp)
			return nil
		},
	}
}
