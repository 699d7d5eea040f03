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

package config

// Config represents the structure of the configuration file
type Config struct {
	Database   Database   `yaml:"database"`
	Search     Search     `yaml:"search"`
	Prometheus Prometheus `yaml:"prometheus"`
	DebugLevel int        `yaml:"debug_level"`
}

// Database holds the connection parameters of the reactions store.
type Database struct {
	Host             string `yaml:"host"`
	Port             int    `yaml:"port"`
	User             string `yaml:"user"`
	Password         string `yaml:"password"`
	DBName           string `yaml:"dbname"`
	SSLMode          string `yaml:"sslmode"`
	ConnectTimeout   int    `yaml:"connect_timeout"`   // seconds
	StatementTimeout int    `yaml:"statement_timeout"` // milliseconds, 0 means no timeout
	MaxConns         int    `yaml:"max_conns"`
}

// Search describes the store layout and the defaults used by the search tools.
type Search struct {
	ReactionsTable   string  `yaml:"reactions_table"`
	IDColumn         string  `yaml:"id_column"`
	SerializedColumn string  `yaml:"serialized_column"`
	DefaultLimit     *int    `yaml:"default_limit"` // nil means 100, 0 means no limit
	DefaultThreshold float64 `yaml:"default_threshold"`
	PoolSize         int     `yaml:"pool_size"`
}

// Prometheus is the Pushgateway used to publish search metrics.
type Prometheus struct {
	Enabled bool   `yaml:"enabled"`
	Host    string `yaml:"host"`
	Port    int    `yaml:"port"`
}

// FileReader reads configuration files, it exists so includes can be tested
// without touching the filesystem.
type FileReader interface {
	ReadFile(filename string) ([]byte, error)
}

// OsFileReader is the FileReader backed by the local filesystem.
type OsFileReader struct{}

// Limit returns the configured default search limit. Zero, or a negative
// value, means no limit.
func (s Search) Limit() uint32 {
	if s.DefaultLimit == nil {
		return defaultSearchLimit
	}
	if *s.DefaultLimit < 0 {
		return 0
	}
	return uint32(*s.DefaultLimit) //nolint:gosec // configured limits are small
}
