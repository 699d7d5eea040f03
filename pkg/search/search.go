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

// Package search runs chemical-structure searches against the ORD reactions
// store: exact substructure containment and fingerprint similarity, both
// served by the RDKit cartridge.
//
// A search is composed into a parameterized statement in which table and
// column names are quoted identifier tokens and every caller supplied value
// is a bind argument. The statement runs inside a read-only transaction
// that also carries the cartridge session parameters; the transaction is
// always rolled back so nothing outlives the call.
package search

import (
	"fmt"
	"strings"

	cfg "github.com/pzaino/ordsearch/pkg/config"
)

const (
	// DefaultLimit is the number of records a search returns unless told otherwise.
	DefaultLimit = 100
	// DefaultThreshold is the default Tanimoto similarity threshold.
	DefaultThreshold = 0.5

	reactionLevelMarker = "reactions"
)

// PatternKind selects the kind of structural search.
type PatternKind int

const (
	// Substructure matches records containing the pattern.
	Substructure PatternKind = iota + 1
	// Similarity matches records whose fingerprint is close to the pattern's.
	Similarity
)

func (k PatternKind) String() string {
	switch k {
	case Substructure:
		return "substructure"
	case Similarity:
		return "similarity"
	default:
		return fmt.Sprintf("PatternKind(%d)", int(k))
	}
}

// ParsePatternKind maps a kind name to its PatternKind.
func ParsePatternKind(s string) (PatternKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "substructure", "sss":
		return Substructure, nil
	case "similarity", "sim":
		return Similarity, nil
	}
	return 0, unsupportedPatternKind("unknown pattern kind %q", s)
}

// TargetGranularity tells whether a target table holds whole reactions or
// their individual components (molecules).
type TargetGranularity int

const (
	// ComponentLevel targets hold one row per reaction component.
	ComponentLevel TargetGranularity = iota
	// ReactionLevel targets hold one row per reaction.
	ReactionLevel
)

func (g TargetGranularity) String() string {
	if g == ReactionLevel {
		return "reaction"
	}
	return "component"
}

// Options carries the kind specific settings of a Request. It is
// implemented only by SubstructureOptions and SimilarityOptions.
type Options interface {
	patternKind() PatternKind
}

// SubstructureOptions tune a substructure search.
type SubstructureOptions struct {
	// UseSMARTS casts the pattern to a query molecule.
	UseSMARTS bool
	// UseStereochemistry makes the containment operator honor chirality.
	UseStereochemistry bool
}

func (SubstructureOptions) patternKind() PatternKind { return Substructure }

// SimilarityOptions tune a similarity search.
type SimilarityOptions struct {
	// Threshold is the minimum Tanimoto similarity, in (0, 1]. Range
	// checking is left to the store.
	Threshold float64
}

func (SimilarityOptions) patternKind() PatternKind { return Similarity }

// Request is a single search.
type Request struct {
	Kind    PatternKind
	Pattern string
	// Target is the table to match against, "table" or "schema.table".
	Target string
	// Limit caps the number of records; 0 means no limit.
	Limit uint32
	// Options must match Kind; nil selects the kind's defaults.
	Options Options
}

// Layout names the reactions table and its columns.
type Layout struct {
	ReactionsTable   string
	IDColumn         string
	SerializedColumn string
}

// DefaultLayout is the layout of the ORD PostgreSQL database.
func DefaultLayout() Layout {
	return Layout{
		ReactionsTable:   "reactions",
		IDColumn:         "reaction_id",
		SerializedColumn: "serialized",
	}
}

// LayoutFromConfig builds a Layout from the search section of c, falling
// back to DefaultLayout for anything unset.
func LayoutFromConfig(c cfg.Config) Layout {
	l := DefaultLayout()
	if v := strings.TrimSpace(c.Search.ReactionsTable); v != "" {
		l.ReactionsTable = v
	}
	if v := strings.TrimSpace(c.Search.IDColumn); v != "" {
		l.IDColumn = v
	}
	if v := strings.TrimSpace(c.Search.SerializedColumn); v != "" {
		l.SerializedColumn = v
	}
	return l
}
