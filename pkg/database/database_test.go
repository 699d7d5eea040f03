package database

import (
	"context"
	"testing"

	cfg "github.com/pzaino/ordsearch/pkg/config"
	"github.com/stretchr/testify/assert"
)

func TestBuildConnectionString(t *testing.T) {
	tests := []struct {
		name     string
		config   cfg.Config
		expected string
	}{
		{
			name: "Test case 1: Default values",
			config: cfg.Config{
				Database: cfg.Database{},
			},
			expected: "host=localhost port=5432 user=postgres password='' dbname=ord sslmode=disable application_name=ordsearch",
		},
		{
			name: "Test case 2: Custom values",
			config: cfg.Config{
				Database: cfg.Database{
					Port:             5433,
					Host:             "example.com",
					User:             "customuser",
					Password:         "custompassword",
					DBName:           "customdb",
					SSLMode:          "require",
					ConnectTimeout:   5,
					StatementTimeout: 1500,
				},
			},
			expected: "host=example.com port=5433 user=customuser password=custompassword dbname=customdb sslmode=require application_name=ordsearch connect_timeout=5 statement_timeout=1500",
		},
		{
			name: "Test case 3: Quoted password and unknown sslmode",
			config: cfg.Config{
				Database: cfg.Database{
					Password: `it's a s\cret`,
					SSLMode:  "prefer",
				},
			},
			expected: `host=localhost port=5432 user=postgres password='it\'s a s\\cret' dbname=ord sslmode=disable application_name=ordsearch`,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			result := buildConnectionString(test.config)
			assert.Equal(t, test.expected, result)
		})
	}
}

func TestDetermineConnectionLimits(t *testing.T) {
	tests := []struct {
		name     string
		config   cfg.Config
		expected int
	}{
		{name: "unset", config: cfg.Config{}, expected: 1},
		{name: "pool size", config: cfg.Config{Search: cfg.Search{PoolSize: 4}}, expected: 4},
		{name: "max conns above pool", config: cfg.Config{Search: cfg.Search{PoolSize: 4}, Database: cfg.Database{MaxConns: 10}}, expected: 10},
		{name: "max conns below pool", config: cfg.Config{Search: cfg.Search{PoolSize: 4}, Database: cfg.Database{MaxConns: 2}}, expected: 4},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			mx, idle := determineConnectionLimits(test.config)
			assert.Equal(t, test.expected, mx)
			assert.Equal(t, test.expected, idle)
		})
	}
}

func TestConnectWithUnknownDriver(t *testing.T) {
	db, err := ConnectWith(context.Background(), "no-such-driver", "", cfg.Config{})
	assert.Error(t, err)
	assert.Nil(t, db)
}
