// Copyright (C) 2024, Chain4Travel AG. All rights reserved.
// See the file LICENSE for licensing terms.

package metrics

import (
	"fmt"

	"github.com/ava-labs/avalanchego/utils/wrappers"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/chain4travel/camino-foundation/vms/foundationvm/governance"
)

var _ governance.ActionVisitor = (*actionMetrics)(nil)

type actionMetrics struct {
	numTransfers,
	numAddVoters,
	numRemoveVoters prometheus.Counter

	transferredAmount prometheus.Counter
}

func newActionMetrics(
	namespace string,
	registerer prometheus.Registerer,
) (*actionMetrics, error) {
	errs := wrappers.Errs{}
	m := &actionMetrics{
		numTransfers:    newActionMetric(namespace, "transfer", registerer, &errs),
		numAddVoters:    newActionMetric(namespace, "add_voter", registerer, &errs),
		numRemoveVoters: newActionMetric(namespace, "remove_voter", registerer, &errs),
		transferredAmount: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transferred_amount",
			Help:      "Amount of tokens sent out by executed proposals",
		}),
	}
	errs.Add(registerer.Register(m.transferredAmount))
	return m, errs.Err
}

func newActionMetric(
	namespace string,
	actionName string,
	registerer prometheus.Registerer,
	errs *wrappers.Errs,
) prometheus.Counter {
	actionMetric := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      fmt.Sprintf("%s_actions_executed", actionName),
		Help:      fmt.Sprintf("Number of %s actions executed", actionName),
	})
	errs.Add(registerer.Register(actionMetric))
	return actionMetric
}

func (m *actionMetrics) TransferAction(action *governance.TransferAction) error {
	m.numTransfers.Inc()
	m.transferredAmount.Add(float64(action.Amount))
	return nil
}

func (m *actionMetrics) AddVoterAction(*governance.AddVoterAction) error {
	m.numAddVoters.Inc()
	return nil
}

func (m *actionMetrics) RemoveVoterAction(*governance.RemoveVoterAction) error {
	m.numRemoveVoters.Inc()
	return nil
}
