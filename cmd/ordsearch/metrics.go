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

package main

import (
	"context"
	"strconv"

	cmn "github.com/pzaino/ordsearch/pkg/common"
	cfg "github.com/pzaino/ordsearch/pkg/config"
	"github.com/pzaino/ordsearch/pkg/search"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

const pushJobName = "ordsearch"

// withPool opens an engine pool for c, runs fn with it and closes it.
// Search metrics are pushed to the Pushgateway afterwards when enabled,
// whatever fn returned.
func withPool(ctx context.Context, c cfg.Config, fn func(context.Context, *search.Pool) error) error {
	reg := prometheus.NewRegistry()
	metrics, err := search.NewMetrics(reg)
	if err != nil {
		return err
	}

	p, err := search.NewPool(ctx, c, search.WithMetrics(metrics))
	if err != nil {
		return err
	}

	runErr := fn(ctx, p)
	if err := p.Close(); err != nil {
		cmn.DebugMsg(cmn.DbgLvlWarn, "closing the search pool: %v", err)
	}
	pushMetrics(c.Prometheus, reg)

	return runErr
}

func pushMetrics(c cfg.Prometheus, g prometheus.Gatherer) {
	if !c.Enabled {
		return
	}

	url := "http://" + c.Host + ":" + strconv.Itoa(c.Port)
	if err := push.New(url, pushJobName).Gatherer(g).Push(); err != nil {
		cmn.DebugMsg(cmn.DbgLvlError, "Could not push metrics to %s: %v", url, err)
		return
	}
	cmn.DebugMsg(cmn.DbgLvlDebug3, "Metrics pushed to %s", url)
}
