// Copyright (C) 2024, Chain4Travel AG. All rights reserved.
// See the file LICENSE for licensing terms.

package metrics

import (
	"github.com/ava-labs/avalanchego/utils/metric"
	"github.com/ava-labs/avalanchego/utils/wrappers"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/chain4travel/camino-foundation/vms/foundationvm/governance"
	"github.com/chain4travel/camino-foundation/vms/foundationvm/txs"
)

var _ Metrics = (*metrics)(nil)

type Metrics interface {
	metric.APIInterceptor

	// Mark that the given call was accepted.
	MarkAccepted(tx *txs.Tx) error
	// Mark that the action of a proposal was executed.
	MarkExecuted(action governance.Action) error
	// Mark that a call was rejected by the engine.
	MarkFailed()
	SetTotalWeight(weight uint64)
	SetHeight(height uint64)
}

func New(
	namespace string,
	registerer prometheus.Registerer,
) (Metrics, error) {
	txMetrics, err := newTxMetrics(namespace, registerer)
	errs := wrappers.Errs{Err: err}
	actionMetrics, err := newActionMetrics(namespace, registerer)
	errs.Add(err)

	m := &metrics{
		txMetrics:     txMetrics,
		actionMetrics: actionMetrics,

		numFailedTxs: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "txs_failed",
			Help:      "Number of transactions rejected by the governance engine",
		}),
		totalWeight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "total_weight",
			Help:      "Sum of the weights of all voters",
		}),
		height: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "height",
			Help:      "Height of the last accepted call",
		}),
	}

	apiRequestMetrics, err := metric.NewAPIInterceptor(namespace, registerer)
	m.APIInterceptor = apiRequestMetrics
	errs.Add(
		err,

		registerer.Register(m.numFailedTxs),
		registerer.Register(m.totalWeight),
		registerer.Register(m.height),
	)

	return m, errs.Err
}

type metrics struct {
	metric.APIInterceptor

	txMetrics     *txMetrics
	actionMetrics *actionMetrics

	numFailedTxs prometheus.Counter

	totalWeight, height prometheus.Gauge
}

func (m *metrics) MarkAccepted(tx *txs.Tx) error {
	return tx.Unsigned.Visit(m.txMetrics)
}

func (m *metrics) MarkExecuted(action governance.Action) error {
	return action.Visit(m.actionMetrics)
}

func (m *metrics) MarkFailed() {
	m.numFailedTxs.Inc()
}

func (m *metrics) SetTotalWeight(weight uint64) {
	m.totalWeight.Set(float64(weight))
}

func (m *metrics) SetHeight(height uint64) {
	m.height.Set(float64(height))
}
