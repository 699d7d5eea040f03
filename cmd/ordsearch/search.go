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
	"fmt"

	cmn "github.com/pzaino/ordsearch/pkg/common"
	cfg "github.com/pzaino/ordsearch/pkg/config"
	"github.com/pzaino/ordsearch/pkg/search"

	"github.com/spf13/cobra"
)

// searchFlags are the per-search flags shared by the search and compose
// commands.
type searchFlags struct {
	Limit     uint32
	SMARTS    bool
	Stereo    bool
	Threshold float64
	Out       string
}

func (f *searchFlags) register(cmd *cobra.Command, kind search.PatternKind) {
	cmd.Flags().Uint32VarP(&f.Limit, "limit", "l", search.DefaultLimit, "maximum number of reactions, 0 for no limit")
	if kind != search.Similarity {
		cmd.Flags().BoolVar(&f.SMARTS, "smarts", false, "the pattern is SMARTS")
		cmd.Flags().BoolVar(&f.Stereo, "stereo", false, "honor stereochemistry when matching")
	}
	if kind != search.Substructure {
		cmd.Flags().Float64VarP(&f.Threshold, "threshold", "t", search.DefaultThreshold, "minimum Tanimoto similarity, in (0, 1]")
	}
}

// request builds the search request for kind. Flags left unset take the
// search defaults of c.
func (f *searchFlags) request(cmd *cobra.Command, kind search.PatternKind, pattern, target string, c cfg.Config) (search.Request, error) {
	changed := func(name string) bool {
		fl := cmd.Flags().Lookup(name)
		return fl != nil && fl.Changed
	}

	req := search.Request{Kind: kind, Pattern: pattern, Target: target, Limit: f.Limit}
	if !changed("limit") {
		req.Limit = c.Search.Limit()
	}

	switch kind {
	case search.Substructure:
		if changed("threshold") {
			return search.Request{}, usageErrorf("--threshold only applies to similarity searches")
		}
		req.Options = search.SubstructureOptions{UseSMARTS: f.SMARTS, UseStereochemistry: f.Stereo}
	case search.Similarity:
		if changed("smarts") || changed("stereo") {
			return search.Request{}, usageErrorf("--smarts and --stereo only apply to substructure searches")
		}
		threshold := f.Threshold
		if !changed("threshold") && c.Search.DefaultThreshold > 0 {
			threshold = c.Search.DefaultThreshold
		}
		if threshold <= 0 || threshold > 1 {
			return search.Request{}, usageErrorf("threshold %g is out of range (0, 1]", threshold)
		}
		req.Options = search.SimilarityOptions{Threshold: threshold}
	}
	return req, nil
}

func newSearchCommand(rootOpts *rootOptions, kind search.PatternKind) *cobra.Command {
	flags := &searchFlags{}

	cmd := &cobra.Command{
		Use:   kind.String() + " <pattern> <table>",
		Short: fmt.Sprintf("Run a %s search", kind),
		Long: fmt.Sprintf(`Run a %s search of <pattern> against <table> ("table" or "schema.table")
and print the reactions linked to the matching rows.

Tables whose name contains "reactions" are searched as reaction tables, any
other table as a molecule table.`, kind),
		Example: searchExample(kind),
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := flags.request(cmd, kind, args[0], args[1], rootOpts.config)
			if err != nil {
				return err
			}
			return runSearch(cmd, rootOpts, flags, req)
		},
	}
	flags.register(cmd, kind)
	cmd.Flags().StringVarP(&flags.Out, "out", "o", "", "also write the result as a binary ORD Dataset to this file")

	return cmd
}

func searchExample(kind search.PatternKind) string {
	if kind == search.Similarity {
		return `  ordsearch similarity 'c1ccccc1O' rdk.mols --threshold 0.7
  ordsearch similarity 'CCO>>CC=O' rdk.reactions --format json`
	}
	return `  ordsearch substructure 'c1ccccc1' rdk.mols --limit 10
  ordsearch substructure '[#6](=O)[OH]' rdk.mols --smarts --out acids.pb`
}

func runSearch(cmd *cobra.Command, rootOpts *rootOptions, flags *searchFlags, req search.Request) error {
	c := rootOpts.config
	c.Search.PoolSize = 1

	return withPool(cmd.Context(), c, func(ctx context.Context, p *search.Pool) error {
		ds, err := p.Search(ctx, req)
		if err != nil {
			return err
		}
		cmn.DebugMsg(cmn.DbgLvlInfo, "%s search of %q in %s: %d reactions", req.Kind, req.Pattern, req.Target, ds.Len())

		if flags.Out != "" {
			if err := writeBinary(flags.Out, ds); err != nil {
				return err
			}
		}
		return writeDataset(cmd.OutOrStdout(), rootOpts.Format, ds)
	})
}
