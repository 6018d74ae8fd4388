// Copyright (C) 2024, Chain4Travel AG. All rights reserved.
// See the file LICENSE for licensing terms.

package metrics

import (
	"fmt"

	"github.com/ava-labs/avalanchego/utils/wrappers"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/chain4travel/camino-foundation/vms/foundationvm/txs"
)

var _ txs.Visitor = (*txMetrics)(nil)

type txMetrics struct {
	numProposeTxs,
	numVoteTxs,
	numExecuteTxs,
	numCloseTxs prometheus.Counter
}

func newTxMetrics(
	namespace string,
	registerer prometheus.Registerer,
) (*txMetrics, error) {
	errs := wrappers.Errs{}
	m := &txMetrics{
		numProposeTxs: newTxMetric(namespace, "propose", registerer, &errs),
		numVoteTxs:    newTxMetric(namespace, "vote", registerer, &errs),
		numExecuteTxs: newTxMetric(namespace, "execute", registerer, &errs),
		numCloseTxs:   newTxMetric(namespace, "close", registerer, &errs),
	}
	return m, errs.Err
}

func newTxMetric(
	namespace string,
	txName string,
	registerer prometheus.Registerer,
	errs *wrappers.Errs,
) prometheus.Counter {
	txMetric := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      fmt.Sprintf("%s_txs_accepted", txName),
		Help:      fmt.Sprintf("Number of %s transactions accepted", txName),
	})
	errs.Add(registerer.Register(txMetric))
	return txMetric
}

func (m *txMetrics) ProposeTx(*txs.ProposeTx) error {
	m.numProposeTxs.Inc()
	return nil
}

func (m *txMetrics) VoteTx(*txs.VoteTx) error {
	m.numVoteTxs.Inc()
	return nil
}

func (m *txMetrics) ExecuteTx(*txs.ExecuteTx) error {
	m.numExecuteTxs.Inc()
	return nil
}

func (m *txMetrics) CloseTx(*txs.CloseTx) error {
	m.numCloseTxs.Inc()
	return nil
}
