// Copyright (C) 2024, Chain4Travel AG. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/chain4travel/camino-foundation/vms/foundationvm"
	"github.com/chain4travel/camino-foundation/vms/foundationvm/governance"
	"github.com/chain4travel/camino-foundation/vms/foundationvm/query"
)

var statusColors = map[governance.Status]*color.Color{
	governance.Open:     color.New(color.FgYellow),
	governance.Passed:   color.New(color.FgGreen),
	governance.Rejected: color.New(color.FgRed),
	governance.Executed: color.New(color.FgCyan),
}

func colorStatus(status governance.Status) string {
	if c, ok := statusColors[status]; ok {
		return c.Sprint(status)
	}
	return status.String()
}

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	return t
}

func renderProposals(w io.Writer, proposals []*query.ProposalView) {
	t := newTable(w)
	t.AppendHeader(table.Row{"ID", "Title", "Action", "Status", "Yes", "Expires"})
	for _, p := range proposals {
		t.AppendRow(table.Row{
			uint64(p.ID),
			p.Title,
			actionKind(p.Action),
			colorStatus(p.Status),
			p.Votes.Yes,
			p.Expires.String(),
		})
	}
	t.Render()
}

func renderProposal(w io.Writer, p *query.ProposalView) {
	t := newTable(w)
	t.AppendRows([]table.Row{
		{"ID", uint64(p.ID)},
		{"Title", p.Title},
		{"Description", p.Description},
		{"Proposer", p.Proposer},
		{"Start height", uint64(p.StartHeight)},
		{"Start time", uint64(p.StartTime)},
		{"Expires", p.Expires.String()},
		{"Threshold", p.Threshold.Rule.String()},
		{"Total weight", uint64(p.Threshold.TotalWeight)},
		{"Votes", fmt.Sprintf("yes %d, no %d, abstain %d, veto %d", p.Votes.Yes, p.Votes.No, p.Votes.Abstain, p.Votes.Veto)},
		{"Status", colorStatus(p.Status)},
		{"Action", actionKind(p.Action)},
	})
	if p.Action.Action != nil {
		t.AppendRows(actionRows(p.Action.Action))
	}
	t.Render()
}

func actionKind(action governance.ActionJSON) string {
	if action.Action == nil {
		return ""
	}
	return action.Action.Kind()
}

func actionRows(action governance.Action) []table.Row {
	switch action := action.(type) {
	case *governance.TransferAction:
		return []table.Row{
			{"Recipient", action.Recipient},
			{"Amount", action.Amount},
		}
	case *governance.AddVoterAction:
		return []table.Row{
			{"Voter", action.Address},
			{"Weight", action.Weight},
			{"Info", action.Info},
		}
	case *governance.RemoveVoterAction:
		return []table.Row{
			{"Voter", action.Address},
		}
	default:
		return nil
	}
}

func renderVotes(w io.Writer, votes []*query.VoteView) {
	t := newTable(w)
	t.AppendHeader(table.Row{"Voter", "Vote", "Weight"})
	for _, v := range votes {
		t.AppendRow(table.Row{v.Voter, v.Vote.String(), uint64(v.Weight)})
	}
	t.Render()
}

func renderVoters(w io.Writer, voters []*query.VoterView) {
	t := newTable(w)
	t.AppendHeader(table.Row{"Address", "Weight", "Since", "Info"})
	for _, v := range voters {
		t.AppendRow(table.Row{v.Address, uint64(v.Weight), uint64(v.Since), v.Info})
	}
	t.Render()
}

func renderIssueReply(w io.Writer, reply *foundationvm.IssueReply) {
	fmt.Fprintf(w, "accepted at height %d, proposal %d\n", reply.Height, reply.ProposalID)
	t := newTable(w)
	t.AppendHeader(table.Row{"Event", "Key", "Value"})
	for _, event := range reply.Events {
		for _, attribute := range event.Attributes {
			t.AppendRow(table.Row{event.Type, attribute.Key, attribute.Value})
		}
	}
	t.Render()
}
