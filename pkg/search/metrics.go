// Copyright 2023 Paolo Fabio Zaino
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package search

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome label values.
const (
	outcomeOK = "ok"
)

// Metrics collects per-call search statistics. A nil *Metrics records
// nothing.
type Metrics struct {
	calls    *prometheus.CounterVec
	duration *prometheus.HistogramVec
	records  *prometheus.CounterVec
}

// NewMetrics creates the search collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ordsearch_search_calls_total",
			Help: "Search calls by kind and outcome (ok or error code).",
		}, []string{"kind", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ordsearch_search_duration_seconds",
			Help:    "Duration of search calls.",
			Buckets: prometheus.DefBuckets,
		}, []string{"kind"}),
		records: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ordsearch_search_records_total",
			Help: "Reaction records returned by successful search calls.",
		}, []string{"kind"}),
	}

	for _, c := range []prometheus.Collector{m.calls, m.duration, m.records} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) observe(kind PatternKind, elapsed time.Duration, records int, err error) {
	if m == nil {
		return
	}
	k := kind.String()
	outcome := outcomeOK
	if err != nil {
		outcome = string(CodeOf(err))
		if outcome == "" {
			outcome = "unknown"
		}
	}

	m.calls.WithLabelValues(k, outcome).Inc()
	m.duration.WithLabelValues(k).Observe(elapsed.Seconds())
	if err == nil {
		m.records.WithLabelValues(k).Add(float64(records))
	}
}
