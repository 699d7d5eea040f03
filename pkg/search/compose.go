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
	"fmt"
	"strings"
)

// Statement is a composed query: text with positional placeholders and the
// values bound to them, in order.
type Statement struct {
	Text string
	Args []interface{}
}

// String renders the statement for logging. The result is never executed.
func (s Statement) String() string {
	if len(s.Args) == 0 {
		return s.Text
	}
	args := make([]string, 0, len(s.Args))
	for i, a := range s.Args {
		args = append(args, fmt.Sprintf("$%d=%#v", i+1, a))
	}
	return s.Text + " -- " + strings.Join(args, ", ")
}

// render fills the identifier slots of tmpl.
func render(tmpl string, ids ...QuotedIdentifier) string {
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = string(id)
	}
	return fmt.Sprintf(tmpl, args...)
}

// normalizeOptions checks that req.Options belongs to req.Kind and returns
// the options to use, defaults included.
func normalizeOptions(req Request) (Options, error) {
	switch req.Kind {
	case Substructure:
		if req.Options == nil {
			return SubstructureOptions{}, nil
		}
	case Similarity:
		if req.Options == nil {
			return SimilarityOptions{Threshold: DefaultThreshold}, nil
		}
	default:
		return nil, unsupportedPatternKind("unknown pattern kind %d", int(req.Kind))
	}

	switch o := req.Options.(type) {
	case SubstructureOptions, SimilarityOptions:
		if o.patternKind() != req.Kind {
			return nil, unsupportedPatternKind("%T given for a %s search", o, req.Kind)
		}
		return o, nil
	case *SubstructureOptions:
		if o == nil {
			return normalizeOptions(Request{Kind: req.Kind})
		}
		return normalizeOptions(Request{Kind: req.Kind, Options: *o})
	case *SimilarityOptions:
		if o == nil {
			return normalizeOptions(Request{Kind: req.Kind})
		}
		return normalizeOptions(Request{Kind: req.Kind, Options: *o})
	default:
		return nil, unsupportedPatternKind("unsupported options %T", o)
	}
}

// Compose builds the statement for req against the reactions table
// described by l.
func Compose(req Request, l Layout) (Statement, error) {
	opts, err := normalizeOptions(req)
	if err != nil {
		return Statement{}, err
	}

	target, err := ParseTableRef(req.Target)
	if err != nil {
		return Statement{}, err
	}
	reactions, err := Resolve(l.ReactionsTable)
	if err != nil {
		return Statement{}, err
	}
	idCol, err := quoteName(l.IDColumn)
	if err != nil {
		return Statement{}, err
	}
	payloadCol, err := quoteName(l.SerializedColumn)
	if err != nil {
		return Statement{}, err
	}

	predicate, err := composePredicate(opts, target.Granularity())
	if err != nil {
		return Statement{}, err
	}

	var b strings.Builder
	b.WriteString(render(sqlSearchBody, idCol, payloadCol, reactions, target.Quoted()))
	b.WriteString(predicate)

	args := []interface{}{req.Pattern}
	if req.Limit > 0 {
		b.WriteString(sqlLimitClause)
		args = append(args, int64(req.Limit))
	}

	return Statement{Text: b.String(), Args: args}, nil
}

func composePredicate(opts Options, g TargetGranularity) (string, error) {
	switch o := opts.(type) {
	case SubstructureOptions:
		col, err := quoteName(substructureColumns[g])
		if err != nil {
			return "", err
		}
		predicate := render(sqlSubstructurePredicate, col)
		if o.UseSMARTS {
			predicate += sqlQueryMoleculeCast
		}
		return predicate, nil

	case SimilarityOptions:
		fp := similarityFingerprints[g]
		col, err := quoteName(fp.column)
		if err != nil {
			return "", err
		}
		fn, err := quoteName(fp.function)
		if err != nil {
			return "", err
		}
		return render(sqlSimilarityPredicate, col, fn), nil
	}
	return "", unsupportedPatternKind("unsupported options %T", opts)
}
