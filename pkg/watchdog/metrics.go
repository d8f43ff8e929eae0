// Copyright 2019 Hewlett Packard Enterprise Development LP

// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at

//     http://www.apache.org/licenses/LICENSE-2.0

// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package watchdog

import (
	"github.com/bluek8s/licensewatchdog/pkg/enforcement"
	"github.com/bluek8s/licensewatchdog/pkg/validator"
	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "license_watchdog"

// Metrics are the loop's Prometheus collectors. A nil *Metrics records
// nothing.
type Metrics struct {
	samples      *prometheus.CounterVec
	valid        prometheus.Gauge
	enforcements *prometheus.CounterVec
	failures     *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them on registerer.
func NewMetrics(
	registerer prometheus.Registerer,
) (*Metrics, error) {

	m := &Metrics{
		samples: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "samples_total",
				Help:      "License samples taken, by outcome.",
			},
			[]string{"outcome"},
		),
		valid: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Name:      "license_valid",
				Help:      "1 if the last license sample was valid, 0 otherwise.",
			},
		),
		enforcements: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "enforcements_total",
				Help:      "Enforcement passes, by strategy and enforced outcome.",
			},
			[]string{"strategy", "outcome"},
		),
		failures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "enforcement_failures_total",
				Help:      "Target writes that failed, by strategy.",
			},
			[]string{"strategy"},
		),
	}

	for _, c := range []prometheus.Collector{m.samples, m.valid, m.enforcements, m.failures} {
		if err := registerer.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) observeSample(
	outcome validator.Outcome,
) {

	if m == nil {
		return
	}
	m.samples.WithLabelValues(outcome.String()).Inc()
	if outcome == validator.Valid {
		m.valid.Set(1)
	} else {
		m.valid.Set(0)
	}
}

func (m *Metrics) observeEnforcement(
	strategy enforcement.Strategy,
	result enforcement.Result,
) {

	if m == nil {
		return
	}
	m.enforcements.WithLabelValues(string(strategy), result.Outcome.String()).Inc()
	if failed := len(result.Failed()); failed > 0 {
		m.failures.WithLabelValues(string(strategy)).Add(float64(failed))
	}
}
