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
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	cmn "github.com/pzaino/ordsearch/pkg/common"
	cfg "github.com/pzaino/ordsearch/pkg/config"
	"github.com/pzaino/ordsearch/pkg/record"
	"github.com/pzaino/ordsearch/pkg/search"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v2"
)

// batchFile is the document read by the batch command.
type batchFile struct {
	Searches []batchSearch `yaml:"searches"`
}

type batchSearch struct {
	Name      string   `yaml:"name"`
	Kind      string   `yaml:"kind"`
	Pattern   string   `yaml:"pattern"`
	Target    string   `yaml:"target"`
	Limit     *uint32  `yaml:"limit"`
	SMARTS    bool     `yaml:"smarts"`
	Stereo    bool     `yaml:"stereo"`
	Threshold *float64 `yaml:"threshold"`
}

// namedRequest is a validated batch entry.
type namedRequest struct {
	Name string
	search.Request
}

type batchResult struct {
	Name    string          `json:"name"`
	Kind    string          `json:"kind"`
	Pattern string          `json:"pattern"`
	Target  string          `json:"target"`
	Count   int             `json:"count"`
	Dataset json.RawMessage `json:"dataset"`

	ds *record.Dataset
}

// parseBatch reads a batch document and turns every entry into a request,
// filling unset limits and thresholds from c.
func parseBatch(data []byte, c cfg.Config) ([]namedRequest, error) {
	var f batchFile
	if err := yaml.UnmarshalStrict(data, &f); err != nil {
		return nil, usageErrorf("parsing batch file: %w", err)
	}
	if len(f.Searches) == 0 {
		return nil, usageErrorf("batch file has no searches")
	}

	reqs := make([]namedRequest, 0, len(f.Searches))
	for i, s := range f.Searches {
		name := strings.TrimSpace(s.Name)
		if name == "" {
			name = fmt.Sprintf("#%d", i+1)
		}
		req, err := s.request(c)
		if err != nil {
			return nil, usageErrorf("search %s: %w", name, err)
		}
		reqs = append(reqs, namedRequest{Name: name, Request: req})
	}
	return reqs, nil
}

func (s batchSearch) request(c cfg.Config) (search.Request, error) {
	kind, err := search.ParsePatternKind(s.Kind)
	if err != nil {
		return search.Request{}, err
	}
	if strings.TrimSpace(s.Pattern) == "" {
		return search.Request{}, fmt.Errorf("pattern is empty")
	}
	if strings.TrimSpace(s.Target) == "" {
		return search.Request{}, fmt.Errorf("target is empty")
	}

	req := search.Request{Kind: kind, Pattern: s.Pattern, Target: s.Target, Limit: c.Search.Limit()}
	if s.Limit != nil {
		req.Limit = *s.Limit
	}

	switch kind {
	case search.Substructure:
		if s.Threshold != nil {
			return search.Request{}, fmt.Errorf("threshold only applies to similarity searches")
		}
		req.Options = search.SubstructureOptions{UseSMARTS: s.SMARTS, UseStereochemistry: s.Stereo}
	case search.Similarity:
		if s.SMARTS || s.Stereo {
			return search.Request{}, fmt.Errorf("smarts and stereo only apply to substructure searches")
		}
		threshold := c.Search.DefaultThreshold
		if threshold <= 0 {
			threshold = search.DefaultThreshold
		}
		if s.Threshold != nil {
			threshold = *s.Threshold
		}
		if threshold <= 0 || threshold > 1 {
			return search.Request{}, fmt.Errorf("threshold %g is out of range (0, 1]", threshold)
		}
		req.Options = search.SimilarityOptions{Threshold: threshold}
	}
	return req, nil
}

func newBatchCommand(rootOpts *rootOptions) *cobra.Command {
	var parallel int

	cmd := &cobra.Command{
		Use:   "batch <file>",
		Short: "Run the searches listed in a YAML file",
		Long: `Run the searches listed in a YAML file concurrently, one engine per search
in flight, and print the results in file order. The first failing search
stops the batch.

File format:

  searches:
    - name: phenols
      kind: substructure
      pattern: c1ccccc1[OH]
      target: rdk.mols
      smarts: true
    - name: ethanol-like
      kind: similarity
      pattern: CCO
      target: rdk.mols
      threshold: 0.7
      limit: 20`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return usageErrorf("reading batch file: %w", err)
			}
			reqs, err := parseBatch(data, rootOpts.config)
			if err != nil {
				return err
			}

			c := rootOpts.config
			if parallel > 0 {
				c.Search.PoolSize = parallel
			}
			if c.Search.PoolSize > len(reqs) {
				c.Search.PoolSize = len(reqs)
			}

			return withPool(cmd.Context(), c, func(ctx context.Context, p *search.Pool) error {
				results, err := runBatch(ctx, p, reqs)
				if err != nil {
					return err
				}
				return writeBatch(cmd.OutOrStdout(), rootOpts.Format, results)
			})
		},
	}
	cmd.Flags().IntVarP(&parallel, "parallel", "p", 0, "number of concurrent searches, overrides search.pool_size")

	return cmd
}

// runBatch runs reqs over the engines of p. Results keep the order of reqs.
func runBatch(ctx context.Context, p *search.Pool, reqs []namedRequest) ([]batchResult, error) {
	results := make([]batchResult, len(reqs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.Size())
	for i, req := range reqs {
		i, req := i, req
		g.Go(func() error {
			ds, err := p.Search(ctx, req.Request)
			if err != nil {
				return fmt.Errorf("search %s: %w", req.Name, err)
			}
			cmn.DebugMsg(cmn.DbgLvlInfo, "Batch search %s: %d reactions", req.Name, ds.Len())
			results[i] = batchResult{
				Name:    req.Name,
				Kind:    req.Kind.String(),
				Pattern: req.Pattern,
				Target:  req.Target,
				Count:   ds.Len(),
				ds:      ds,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func writeBatch(w io.Writer, format string, results []batchResult) error {
	if format == formatJSON {
		for i := range results {
			b, err := results[i].ds.MarshalJSON()
			if err != nil {
				return fmt.Errorf("rendering %s: %w", results[i].Name, err)
			}
			results[i].Dataset = b
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	for i, r := range results {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "== %s: %s of %q in %s\n", r.Name, r.Kind, r.Pattern, r.Target)
		if err := writeDataset(w, formatText, r.ds); err != nil {
			return err
		}
	}
	return nil
}
