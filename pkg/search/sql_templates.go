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

// Statement templates. The %[n]s slots only ever receive QuotedIdentifier
// values; caller supplied values are always bind arguments ($1 the pattern,
// $2 the limit).

// Base query shared by every search kind.
// Slots: 1 id column, 2 payload column, 3 reactions table, 4 target table.
var sqlSearchBody = `SELECT DISTINCT A.%[1]s, A.%[2]s
FROM %[3]s A
INNER JOIN %[4]s B ON A.%[1]s = B.%[1]s
WHERE `

// Containment of the pattern. Slot: 1 structure column.
var sqlSubstructurePredicate = `B.%[1]s @> $1`

// Cast applied to the pattern when it is SMARTS.
var sqlQueryMoleculeCast = `::qmol`

// Tanimoto similarity against the pattern's fingerprint.
// Slots: 1 fingerprint column, 2 fingerprint function.
var sqlSimilarityPredicate = `B.%[1]s %% %[2]s($1)`

var sqlLimitClause = ` LIMIT $2`

// Sets a cartridge parameter for the current transaction only.
var sqlSetSessionParam = `SELECT set_config($1, $2, true)`

var sqlPing = `SELECT 1`

// Structure column searched by a substructure query.
var substructureColumns = map[TargetGranularity]string{
	ReactionLevel:  "r",
	ComponentLevel: "m",
}

// fingerprint is a stored fingerprint column and the function computing
// the same fingerprint from a pattern.
type fingerprint struct {
	column   string
	function string
}

var similarityFingerprints = map[TargetGranularity]fingerprint{
	ReactionLevel:  {column: "rdfp", function: "reaction_difference_fp"},
	ComponentLevel: {column: "mfp2", function: "morganbv_fp"},
}
