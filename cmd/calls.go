// Copyright (C) 2024, Chain4Travel AG. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"context"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/spf13/cobra"

	"github.com/chain4travel/camino-foundation/vms/foundationvm"
	"github.com/chain4travel/camino-foundation/vms/foundationvm/governance"
)

const (
	senderKey          = "sender"
	titleKey           = "title"
	descriptionKey     = "description"
	expiresAtHeightKey = "expires-at-height"
	expiresAtTimeKey   = "expires-at-time"
	neverExpiresKey    = "never-expires"
	weightKey          = "weight"
	infoKey            = "info"
)

type callFunc func(ctx context.Context, client foundationvm.Client, sender ids.ShortID) (*foundationvm.IssueReply, error)

func addSenderFlag(cmd *cobra.Command) {
	cmd.PersistentFlags().String(senderKey, "", "Address the call is sent from")
	_ = cmd.MarkPersistentFlagRequired(senderKey)
}

// issue sends [call] from the sender flag and renders the reply.
func issue(cmd *cobra.Command, call callFunc) error {
	s, err := cmd.Flags().GetString(senderKey)
	if err != nil {
		return err
	}
	sender, err := parseAddress(s)
	if err != nil {
		return err
	}
	client, ctx, cancel, err := clientContext(cmd)
	if err != nil {
		return err
	}
	defer cancel()

	reply, err := call(ctx, client, sender)
	if err != nil {
		return err
	}
	renderIssueReply(cmd.OutOrStdout(), reply)
	return nil
}

func newProposeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "propose",
		Short: "Create a proposal, the sender votes yes",
	}
	addSenderFlag(cmd)
	flags := cmd.PersistentFlags()
	flags.String(titleKey, "", "Title of the proposal")
	flags.String(descriptionKey, "", "Description of the proposal")
	flags.Uint64(expiresAtHeightKey, 0, "Height the voting period ends at")
	flags.Uint64(expiresAtTimeKey, 0, "Unix time the voting period ends at")
	flags.Bool(neverExpiresKey, false, "Request a voting period without end, it is capped by the maximum voting period")
	_ = cmd.MarkPersistentFlagRequired(titleKey)
	cmd.MarkFlagsMutuallyExclusive(expiresAtHeightKey, expiresAtTimeKey, neverExpiresKey)

	transfer := &cobra.Command{
		Use:   "transfer <recipient> <amount>",
		Short: "Propose to transfer funds from the custody account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			allocation, err := parseAllocation(args[0] + ":" + args[1])
			if err != nil {
				return err
			}
			return propose(cmd, &governance.TransferAction{
				Recipient: allocation.Address,
				Amount:    allocation.Amount,
			})
		},
	}

	addVoter := &cobra.Command{
		Use:   "add-voter <address> <weight>",
		Short: "Propose to add a voter or change its weight",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			voter, err := parseVoter(args[0] + ":" + args[1])
			if err != nil {
				return err
			}
			info, err := cmd.Flags().GetString(infoKey)
			if err != nil {
				return err
			}
			return propose(cmd, &governance.AddVoterAction{
				Address: voter.Address,
				Weight:  voter.Weight,
				Info:    info,
			})
		},
	}
	addVoter.Flags().String(infoKey, "", "Description of the voter")

	removeVoter := &cobra.Command{
		Use:   "remove-voter <address>",
		Short: "Propose to remove a voter",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			address, err := parseAddress(args[0])
			if err != nil {
				return err
			}
			weight, err := cmd.Flags().GetUint64(weightKey)
			if err != nil {
				return err
			}
			return propose(cmd, &governance.RemoveVoterAction{
				Address: address,
				Weight:  weight,
			})
		},
	}
	removeVoter.Flags().Uint64(weightKey, 0, "Expected weight of the voter, 0 skips the check")

	cmd.AddCommand(transfer, addVoter, removeVoter)
	return cmd
}

func propose(cmd *cobra.Command, action governance.Action) error {
	flags := cmd.Flags()
	title, err := flags.GetString(titleKey)
	if err != nil {
		return err
	}
	description, err := flags.GetString(descriptionKey)
	if err != nil {
		return err
	}
	expires, err := requestedExpiration(cmd)
	if err != nil {
		return err
	}
	return issue(cmd, func(ctx context.Context, client foundationvm.Client, sender ids.ShortID) (*foundationvm.IssueReply, error) {
		return client.Propose(ctx, sender, title, description, action, expires)
	})
}

// requestedExpiration returns nil if no expiration flag was set.
func requestedExpiration(cmd *cobra.Command) (*governance.Expiration, error) {
	flags := cmd.Flags()
	var expires governance.Expiration
	switch {
	case flags.Changed(expiresAtHeightKey):
		height, err := flags.GetUint64(expiresAtHeightKey)
		if err != nil {
			return nil, err
		}
		expires = governance.AtHeight(height)
	case flags.Changed(expiresAtTimeKey):
		unix, err := flags.GetUint64(expiresAtTimeKey)
		if err != nil {
			return nil, err
		}
		expires = governance.AtTime(unix)
	case flags.Changed(neverExpiresKey):
		expires = governance.Never()
	default:
		return nil, nil
	}
	return &expires, nil
}

func newVoteCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vote <proposal-id> <yes|no|abstain|veto>",
		Short: "Vote on an open proposal",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			proposalID, err := parseProposalID(args[0])
			if err != nil {
				return err
			}
			vote, err := governance.ParseVoteOption(args[1])
			if err != nil {
				return err
			}
			return issue(cmd, func(ctx context.Context, client foundationvm.Client, sender ids.ShortID) (*foundationvm.IssueReply, error) {
				return client.Vote(ctx, sender, proposalID, vote)
			})
		},
	}
	addSenderFlag(cmd)
	return cmd
}

func newExecuteCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "execute <proposal-id>",
		Short: "Execute the action of a passed proposal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			proposalID, err := parseProposalID(args[0])
			if err != nil {
				return err
			}
			return issue(cmd, func(ctx context.Context, client foundationvm.Client, sender ids.ShortID) (*foundationvm.IssueReply, error) {
				return client.Execute(ctx, sender, proposalID)
			})
		},
	}
	addSenderFlag(cmd)
	return cmd
}

func newCloseCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "close <proposal-id>",
		Short: "Reject an expired proposal that didn't pass",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			proposalID, err := parseProposalID(args[0])
			if err != nil {
				return err
			}
			return issue(cmd, func(ctx context.Context, client foundationvm.Client, sender ids.ShortID) (*foundationvm.IssueReply, error) {
				return client.Close(ctx, sender, proposalID)
			})
		},
	}
	addSenderFlag(cmd)
	return cmd
}
