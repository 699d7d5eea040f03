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

// Package database is responsible for opening and configuring the
// connections to the reactions store.
package database

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	cmn "github.com/pzaino/ordsearch/pkg/common"
	cfg "github.com/pzaino/ordsearch/pkg/config"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // PostgreSQL driver
)

const (
	// DriverName is the database/sql driver used for the reactions store.
	DriverName = "postgres"

	applicationName = "ordsearch"

	sqlSessionReadOnly = "SET SESSION CHARACTERISTICS AS TRANSACTION READ ONLY"
)

// Connect opens the connection pool described by c and checks the store is
// reachable. It does not retry: a failure is reported to the caller as is.
func Connect(ctx context.Context, c cfg.Config) (*sqlx.DB, error) {
	return ConnectWith(ctx, DriverName, buildConnectionString(c), c)
}

// ConnectWith is Connect with an explicit driver and data source name.
func ConnectWith(ctx context.Context, driverName, dsn string, c cfg.Config) (*sqlx.DB, error) {
	db, err := sqlx.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database connection: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging the database: %w", err)
	}

	mxConns, mxIdleConns := determineConnectionLimits(c)
	db.SetConnMaxLifetime(time.Minute * 5)
	db.SetMaxOpenConns(mxConns)
	db.SetMaxIdleConns(mxIdleConns)

	cmn.DebugMsg(cmn.DbgLvlDebug, "Connected to %s:%d/%s (max %d connections)",
		c.Database.Host, c.Database.Port, c.Database.DBName, mxConns)

	return db, nil
}

// ReadOnlySession pins one connection of db and turns its session read-only.
// The caller owns the returned connection and must Close it.
func ReadOnlySession(ctx context.Context, db *sqlx.DB) (*sqlx.Conn, error) {
	conn, err := db.Connx(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquiring a dedicated connection: %w", err)
	}
	if _, err := conn.ExecContext(ctx, sqlSessionReadOnly); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("setting the session read-only: %w", err)
	}
	return conn, nil
}

// determineConnectionLimits calculates connection limits based on config.
// Every search engine pins one connection, so the pool never shrinks below
// the configured number of engines.
func determineConnectionLimits(c cfg.Config) (int, int) {
	mxConns := c.Search.PoolSize
	if mxConns <= 0 {
		mxConns = 1
	}
	if c.Database.MaxConns > mxConns {
		mxConns = c.Database.MaxConns
	}
	return mxConns, mxConns
}

func buildConnectionString(c cfg.Config) string {
	dbPort := c.Database.Port
	if dbPort == 0 {
		dbPort = 5432
	}
	dbHost := strings.TrimSpace(c.Database.Host)
	if dbHost == "" {
		dbHost = cmn.LocalhostStr
	}
	dbUser := strings.TrimSpace(c.Database.User)
	if dbUser == "" {
		dbUser = "postgres"
	}
	dbName := strings.TrimSpace(c.Database.DBName)
	if dbName == "" {
		dbName = "ord"
	}
	dbSSLMode := strings.ToLower(strings.TrimSpace(c.Database.SSLMode))
	switch dbSSLMode {
	case cmn.DisableStr, "require", "verify-ca", "verify-full":
	default:
		dbSSLMode = cmn.DisableStr
	}

	params := []string{
		"host=" + quoteConnValue(dbHost),
		"port=" + strconv.Itoa(dbPort),
		"user=" + quoteConnValue(dbUser),
		"password=" + quoteConnValue(c.Database.Password),
		"dbname=" + quoteConnValue(dbName),
		"sslmode=" + dbSSLMode,
		"application_name=" + applicationName,
	}
	if c.Database.ConnectTimeout > 0 {
		params = append(params, "connect_timeout="+strconv.Itoa(c.Database.ConnectTimeout))
	}
	if c.Database.StatementTimeout > 0 {
		params = append(params, "statement_timeout="+strconv.Itoa(c.Database.StatementTimeout))
	}

	return strings.Join(params, " ")
}

// quoteConnValue quotes a conninfo value when it is empty or holds
// characters the key=value syntax treats specially.
func quoteConnValue(v string) string {
	if v != "" && !strings.ContainsAny(v, ` '\`) {
		return v
	}
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`)
	return "'" + r.Replace(v) + "'"
}
