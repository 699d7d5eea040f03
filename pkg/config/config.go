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

// Package config contains the configuration file parsing logic.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v2"
)

const (
	defaultDBHost           = "localhost"
	defaultDBPort           = 5432
	defaultDBUser           = "postgres"
	defaultDBName           = "ord"
	defaultSSLMode          = "disable"
	defaultConnectTimeout   = 10
	defaultReactionsTable   = "reactions"
	defaultIDColumn         = "reaction_id"
	defaultSerializedColumn = "serialized"
	defaultSearchLimit      = 100
	defaultSearchThreshold  = 0.5
	defaultPoolSize         = 1
	defaultPushgatewayPort  = 9091
)

var (
	envVarPattern  = regexp.MustCompile(`\$\{?(\w+)\}?`)
	includePattern = regexp.MustCompile(`include:\s*["']?([^"'\s]+)["']?`)
)

// ReadFile reads filename from disk.
func (OsFileReader) ReadFile(filename string) ([]byte, error) {
	return os.ReadFile(filename) //nolint:gosec // configuration paths are operator supplied
}

// fileExists checks if a file exists at the given filename.
// It returns true if the file exists and is not a directory, and false otherwise.
func fileExists(filename string) bool {
	info, err := os.Stat(filename)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// interpolateEnvVars replaces occurrences of `${VAR}` or `$VAR` in the input string
// with the value of the VAR environment variable.
func interpolateEnvVars(input string) string {
	return envVarPattern.ReplaceAllStringFunc(input, func(varName string) string {
		trimmed := strings.TrimPrefix(varName, "${")
		trimmed = strings.TrimPrefix(trimmed, "$")
		trimmed = strings.TrimSuffix(trimmed, "}")
		return os.Getenv(trimmed)
	})
}

// recursiveInclude processes the "include" directives in YAML files.
// It supports environment variable interpolation in file paths.
func recursiveInclude(yamlContent string, baseDir string, reader FileReader) (string, error) {
	matches := includePattern.FindAllStringSubmatch(yamlContent, -1)

	for _, match := range matches {
		includePath := filepath.Join(baseDir, interpolateEnvVars(match[1]))

		includedContentBytes, err := reader.ReadFile(includePath)
		if err != nil {
			return "", fmt.Errorf("reading include %s: %w", includePath, err)
		}

		includedContent := string(includedContentBytes)
		if strings.Contains(includedContent, "include:") {
			includedContent, err = recursiveInclude(includedContent, filepath.Dir(includePath), reader)
			if err != nil {
				return "", err
			}
		}

		yamlContent = strings.Replace(yamlContent, match[0], includedContent, 1)
	}

	return yamlContent, nil
}

// getConfigFile reads and unmarshals a configuration file with the given name.
func getConfigFile(confName string, reader FileReader) (Config, error) {
	if !fileExists(confName) {
		return Config{}, fmt.Errorf("file does not exist: %s", confName)
	}

	data, err := reader.ReadFile(confName)
	if err != nil {
		return Config{}, err
	}

	config, err := parseConfig(data, filepath.Dir(confName), reader)
	if err != nil {
		return Config{}, fmt.Errorf("parsing %s: %w", confName, err)
	}
	return config, nil
}

// ParseConfig parses a configuration document. Include directives are
// resolved relative to the current working directory. No defaults are
// applied.
func ParseConfig(data []byte) (Config, error) {
	return parseConfig(data, ".", OsFileReader{})
}

func parseConfig(data []byte, baseDir string, reader FileReader) (Config, error) {
	interpolatedData := interpolateEnvVars(string(data))
	finalData, err := recursiveInclude(interpolatedData, baseDir, reader)
	if err != nil {
		return Config{}, err
	}

	var config Config
	if strings.TrimSpace(finalData) == "" {
		return config, nil
	}
	err = yaml.Unmarshal([]byte(finalData), &config)
	return config, err
}

// LoadConfig is responsible for loading the configuration file
// and return the Config struct. Defaults are applied even when the file
// cannot be read, so callers may still run with a usable configuration.
func LoadConfig(confName string) (Config, error) {
	config, err := getConfigFile(confName, OsFileReader{})
	ApplyDefaults(&config)
	return config, err
}

// ApplyDefaults sets default values for any zero values in c.
func ApplyDefaults(c *Config) {
	if strings.TrimSpace(c.Database.Host) == "" {
		c.Database.Host = defaultDBHost
	}
	if c.Database.Port == 0 {
		c.Database.Port = defaultDBPort
	}
	if strings.TrimSpace(c.Database.User) == "" {
		c.Database.User = defaultDBUser
	}
	if strings.TrimSpace(c.Database.DBName) == "" {
		c.Database.DBName = defaultDBName
	}
	if strings.TrimSpace(c.Database.SSLMode) == "" {
		c.Database.SSLMode = defaultSSLMode
	}
	if c.Database.ConnectTimeout == 0 {
		c.Database.ConnectTimeout = defaultConnectTimeout
	}

	if strings.TrimSpace(c.Search.ReactionsTable) == "" {
		c.Search.ReactionsTable = defaultReactionsTable
	}
	if strings.TrimSpace(c.Search.IDColumn) == "" {
		c.Search.IDColumn = defaultIDColumn
	}
	if strings.TrimSpace(c.Search.SerializedColumn) == "" {
		c.Search.SerializedColumn = defaultSerializedColumn
	}
	if c.Search.DefaultLimit == nil {
		limit := defaultSearchLimit
		c.Search.DefaultLimit = &limit
	}
	if c.Search.DefaultThreshold == 0 {
		c.Search.DefaultThreshold = defaultSearchThreshold
	}
	if c.Search.PoolSize <= 0 {
		c.Search.PoolSize = defaultPoolSize
	}

	if c.Prometheus.Enabled {
		if strings.TrimSpace(c.Prometheus.Host) == "" {
			c.Prometheus.Host = defaultDBHost
		}
		if c.Prometheus.Port == 0 {
			c.Prometheus.Port = defaultPushgatewayPort
		}
	}
}

// IsEmpty checks if the given config is empty.
// It returns true if the config is empty, false otherwise.
func IsEmpty(config Config) bool {
	return config == Config{}
}

// IsEmpty reports whether c is the zero configuration.
func (c Config) IsEmpty() bool {
	return IsEmpty(c)
}
