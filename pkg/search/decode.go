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
	"encoding/hex"
	"fmt"

	"github.com/pzaino/ordsearch/pkg/record"
)

// Rows is the forward-only result stream read by Decode. *sql.Rows and
// *sqlx.Rows satisfy it.
type Rows interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}

// Decode reads every (id, hex payload) row of rows and decodes the payloads
// into a dataset, in row order. A row that cannot be decoded fails the
// whole call: no partial dataset is ever returned. Repeated ids are kept
// once.
func Decode(rows Rows) (*record.Dataset, error) {
	ds := &record.Dataset{}
	seen := make(map[string]struct{})

	for rows.Next() {
		var (
			id      string
			payload []byte
		)
		if err := rows.Scan(&id, &payload); err != nil {
			return nil, malformedRecord(id, fmt.Errorf("scanning row: %w", err))
		}
		if _, dup := seen[id]; dup {
			continue
		}

		raw := make([]byte, hex.DecodedLen(len(payload)))
		n, err := hex.Decode(raw, payload)
		if err != nil {
			return nil, malformedRecord(id, fmt.Errorf("decoding hex payload: %w", err))
		}
		r, err := record.Unmarshal(raw[:n])
		if err != nil {
			return nil, malformedRecord(id, err)
		}

		seen[id] = struct{}{}
		ds.Reactions = append(ds.Reactions, r)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError("query", err)
	}

	return ds, nil
}
