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
	"github.com/pzaino/ordsearch/pkg/search"

	"github.com/spf13/cobra"
)

func newComposeCommand(rootOpts *rootOptions) *cobra.Command {
	flags := &searchFlags{}

	cmd := &cobra.Command{
		Use:   "compose <substructure|similarity> <pattern> <table>",
		Short: "Print the statement a search would run",
		Long: `Print the statement a search would run, its bound arguments and the
cartridge session parameters set before it. The database is not contacted.`,
		Example: `  ordsearch compose substructure 'c1ccccc1' rdk.mols --smarts
  ordsearch compose similarity 'CCO' rdk.reactions --threshold 0.8 --format json`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := search.ParsePatternKind(args[0])
			if err != nil {
				return err
			}
			req, err := flags.request(cmd, kind, args[1], args[2], rootOpts.config)
			if err != nil {
				return err
			}

			stmt, err := search.Compose(req, search.LayoutFromConfig(rootOpts.config))
			if err != nil {
				return err
			}
			params, err := search.SessionParams(req)
			if err != nil {
				return err
			}
			return writeStatement(cmd.OutOrStdout(), rootOpts.Format, stmt, params)
		},
	}
	flags.register(cmd, 0)

	return cmd
}
