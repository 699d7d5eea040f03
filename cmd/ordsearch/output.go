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
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/pzaino/ordsearch/pkg/record"
	"github.com/pzaino/ordsearch/pkg/search"
)

// writeDataset prints ds in the requested format.
func writeDataset(w io.Writer, format string, ds *record.Dataset) error {
	if format == formatJSON {
		b, err := ds.MarshalJSON()
		if err != nil {
			return fmt.Errorf("rendering reactions: %w", err)
		}
		_, err = fmt.Fprintf(w, "%s\n", b)
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, r := range ds.Reactions {
		fmt.Fprintf(tw, "%s\t%s\n", r.ID(), reactionSMILES(r))
	}
	fmt.Fprintf(tw, "%d reactions\n", ds.Len())
	return tw.Flush()
}

// reactionSMILES returns the first reaction SMILES identifier of r, or "-".
func reactionSMILES(r *record.Reaction) string {
	for _, id := range r.Identifiers() {
		if id.Type == record.IdentifierReactionSMILES || id.Type == record.IdentifierReactionCXSMILES {
			return id.Value
		}
	}
	return "-"
}

// writeBinary stores ds as ORD Dataset wire bytes.
func writeBinary(path string, ds *record.Dataset) error {
	b, err := ds.Marshal()
	if err != nil {
		return fmt.Errorf("encoding dataset: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil { //nolint:gosec // output files are meant to be shared
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

type statementView struct {
	Text    string                `json:"text"`
	Args    []interface{}         `json:"args"`
	Session []search.SessionParam `json:"session"`
}

// writeStatement prints a composed statement and the session parameters
// applied before it.
func writeStatement(w io.Writer, format string, stmt search.Statement, params []search.SessionParam) error {
	if format == formatJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(statementView{Text: stmt.Text, Args: stmt.Args, Session: params})
	}

	var b strings.Builder
	for _, p := range params {
		fmt.Fprintf(&b, "SELECT set_config('%s', '%s', true);\n", p.Name, p.Value)
	}
	b.WriteString(stmt.Text)
	b.WriteString(";\n")
	for i, a := range stmt.Args {
		fmt.Fprintf(&b, "-- $%d = %v\n", i+1, a)
	}
	_, err := io.WriteString(w, b.String())
	return err
}
