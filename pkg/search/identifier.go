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
	"strings"

	"github.com/lib/pq"
)

const identifierSeparator = "."

// QuotedIdentifier is an identifier, or a dotted pair of identifiers, that
// went through identifier quoting and may be placed in statement text.
type QuotedIdentifier string

// TableRef is a table reference split into its segments.
type TableRef struct {
	Schema string // empty when the reference has no schema
	Name   string
}

// ParseTableRef splits ref on the schema separator. It accepts one or two
// non-empty segments; anything else is an InvalidIdentifier error. The
// segments themselves are not checked, the store rejects unknown names.
func ParseTableRef(ref string) (TableRef, error) {
	parts := strings.Split(ref, identifierSeparator)
	for _, p := range parts {
		if p == "" {
			return TableRef{}, invalidIdentifier(ref, "empty identifier segment")
		}
	}

	switch len(parts) {
	case 1:
		return TableRef{Name: parts[0]}, nil
	case 2:
		return TableRef{Schema: parts[0], Name: parts[1]}, nil
	default:
		return TableRef{}, invalidIdentifier(ref, "more than one schema separator")
	}
}

// Quoted quotes each segment independently. "rdk"."mols" is a valid
// reference while "rdk.mols" names a table with a dot in it.
func (t TableRef) Quoted() QuotedIdentifier {
	if t.Schema == "" {
		return QuotedIdentifier(pq.QuoteIdentifier(t.Name))
	}
	return QuotedIdentifier(pq.QuoteIdentifier(t.Schema) + identifierSeparator + pq.QuoteIdentifier(t.Name))
}

func (t TableRef) String() string {
	if t.Schema == "" {
		return t.Name
	}
	return t.Schema + identifierSeparator + t.Name
}

// Granularity classifies the table from its dotted reference: references
// that hold "reactions" anywhere, schema included, are reaction-level,
// everything else is component-level.
func (t TableRef) Granularity() TargetGranularity {
	if strings.Contains(t.String(), reactionLevelMarker) {
		return ReactionLevel
	}
	return ComponentLevel
}

// Resolve parses ref and returns its quoted form.
func Resolve(ref string) (QuotedIdentifier, error) {
	t, err := ParseTableRef(ref)
	if err != nil {
		return "", err
	}
	return t.Quoted(), nil
}

// quoteName quotes a single-segment identifier such as a column or a
// function name.
func quoteName(name string) (QuotedIdentifier, error) {
	if name == "" {
		return "", invalidIdentifier(name, "empty identifier")
	}
	if strings.Contains(name, identifierSeparator) {
		return "", invalidIdentifier(name, "qualified name where a plain identifier is expected")
	}
	return QuotedIdentifier(pq.QuoteIdentifier(name)), nil
}
