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
	"context"
	"database/sql"
	"strconv"
)

// Cartridge session parameters.
const (
	ParamChiralSubstructure = "rdkit.do_chiral_sss"
	ParamTanimotoThreshold  = "rdkit.tanimoto_threshold"
)

// SessionParam is a cartridge setting applied before a search statement.
type SessionParam struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// SessionParams returns the settings req needs, in the order they are applied.
func SessionParams(req Request) ([]SessionParam, error) {
	opts, err := normalizeOptions(req)
	if err != nil {
		return nil, err
	}

	switch o := opts.(type) {
	case SubstructureOptions:
		return []SessionParam{{
			Name:  ParamChiralSubstructure,
			Value: strconv.FormatBool(o.UseStereochemistry),
		}}, nil
	case SimilarityOptions:
		return []SessionParam{{
			Name:  ParamTanimotoThreshold,
			Value: strconv.FormatFloat(o.Threshold, 'f', -1, 64),
		}}, nil
	}
	return nil, unsupportedPatternKind("unsupported options %T", opts)
}

// applySession sets params for the transaction ex belongs to. They vanish
// when that transaction ends.
func applySession(ctx context.Context, ex execer, params []SessionParam) error {
	for _, p := range params {
		if _, err := ex.ExecContext(ctx, sqlSetSessionParam, p.Name, p.Value); err != nil {
			return storeError("session", err)
		}
	}
	return nil
}
