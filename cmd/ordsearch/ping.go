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

	"github.com/pzaino/ordsearch/pkg/search"

	"github.com/spf13/cobra"
)

func newPingCommand(rootOpts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check the reactions database is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c := rootOpts.config
			return withPool(cmd.Context(), c, func(ctx context.Context, p *search.Pool) error {
				err := p.Do(ctx, func(e *search.Engine) error { return e.Ping(ctx) })
				if err != nil {
					return err
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "ok: %s:%d/%s (%d engines)\n",
					c.Database.Host, c.Database.Port, c.Database.DBName, p.Size())
				return err
			})
		},
	}
}
