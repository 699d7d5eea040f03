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
	"errors"
	"fmt"
	"os"

	cmn "github.com/pzaino/ordsearch/pkg/common"
	cfg "github.com/pzaino/ordsearch/pkg/config"
	"github.com/pzaino/ordsearch/pkg/search"

	"github.com/spf13/cobra"
)

const (
	defaultConfigFile = "config.yaml"

	formatText = "text"
	formatJSON = "json"
)

// Exit codes.
const (
	exitFailure      = 1 // search or store failure
	exitCommandError = 2 // bad flags, arguments or input files
)

// validFormats are the accepted values of --format.
var validFormats = []string{formatText, formatJSON}

// rootOptions holds the global flags and the configuration they select.
type rootOptions struct {
	ConfigFile string
	Format     string
	Debug      int

	config cfg.Config
}

// usageError marks errors caused by the invocation rather than the store.
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

func usageErrorf(format string, args ...interface{}) error {
	return &usageError{err: fmt.Errorf(format, args...)}
}

func exitCode(err error) int {
	var ue *usageError
	if errors.As(err, &ue) || search.CodeOf(err) == search.CodeInvalidIdentifier ||
		search.CodeOf(err) == search.CodeUnsupportedPatternKind {
		return exitCommandError
	}
	return exitFailure
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "ordsearch",
		Short: "Substructure and similarity search over ORD reactions",
		Long: `ordsearch runs chemical structure searches against an Open Reaction Database
PostgreSQL store with the RDKit cartridge, and prints the matching reactions.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if !isValidFormat(opts.Format) {
				return usageErrorf("invalid format %q: must be one of %v", opts.Format, validFormats)
			}
			return opts.loadConfig(cmd.Flags().Changed("config"))
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigFile, "config", "c", defaultConfigFile, "path to the configuration file")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", formatText, "output format (text|json)")
	cmd.PersistentFlags().IntVarP(&opts.Debug, "debug", "d", -1, "debug level, overrides the configuration")

	cmd.AddCommand(newSearchCommand(opts, search.Substructure))
	cmd.AddCommand(newSearchCommand(opts, search.Similarity))
	cmd.AddCommand(newComposeCommand(opts))
	cmd.AddCommand(newBatchCommand(opts))
	cmd.AddCommand(newPingCommand(opts))

	return cmd
}

// loadConfig reads the configuration file. A missing default file is not an
// error: the built-in defaults are used instead.
func (o *rootOptions) loadConfig(explicit bool) error {
	if _, err := os.Stat(o.ConfigFile); err != nil && !explicit {
		o.config = cfg.Config{}
		cfg.ApplyDefaults(&o.config)
	} else {
		c, err := cfg.LoadConfig(o.ConfigFile)
		if err != nil {
			return usageErrorf("loading configuration: %w", err)
		}
		o.config = c
	}

	lvl := o.config.DebugLevel
	if o.Debug >= 0 {
		lvl = o.Debug
	}
	cmn.SetDebugLevel(cmn.DbgLevel(lvl))
	cmn.UpdateLoggerConfig()
	cmn.DebugMsg(cmn.DbgLvlDebug1, "Configuration loaded, debug level %d", lvl)
	return nil
}

func isValidFormat(format string) bool {
	for _, f := range validFormats {
		if f == format {
			return true
		}
	}
	return false
}
