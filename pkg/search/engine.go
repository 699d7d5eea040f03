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

package search

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"sync"
	"time"

	cmn "github.com/pzaino/ordsearch/pkg/common"
	cfg "github.com/pzaino/ordsearch/pkg/config"
	cdb "github.com/pzaino/ordsearch/pkg/database"
	"github.com/pzaino/ordsearch/pkg/record"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Engine runs searches over one dedicated read-only connection.
//
// Calls on the same Engine are serialized; use a Pool to search
// concurrently.
type Engine struct {
	mu      sync.Mutex
	db      *sqlx.DB
	ownsDB  bool
	conn    *sqlx.Conn // nil after a call lost the session
	closed  bool
	layout  Layout
	metrics *Metrics
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLayout sets the reactions table layout.
func WithLayout(l Layout) EngineOption {
	return func(e *Engine) { e.layout = l }
}

// WithMetrics records every call in m.
func WithMetrics(m *Metrics) EngineOption {
	return func(e *Engine) { e.metrics = m }
}

// NewEngine connects to the store described by c. The engine owns the
// connection pool and closes it in Close.
func NewEngine(ctx context.Context, c cfg.Config, opts ...EngineOption) (*Engine, error) {
	db, err := cdb.Connect(ctx, c)
	if err != nil {
		return nil, connectionError("connect", err)
	}

	opts = append([]EngineOption{WithLayout(LayoutFromConfig(c))}, opts...)
	e, err := NewEngineFromDB(ctx, db, opts...)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	e.ownsDB = true
	return e, nil
}

// NewEngineFromDB pins one connection of db and makes its session
// read-only. db stays owned by the caller.
func NewEngineFromDB(ctx context.Context, db *sqlx.DB, opts ...EngineOption) (*Engine, error) {
	conn, err := cdb.ReadOnlySession(ctx, db)
	if err != nil {
		return nil, connectionError("connect", err)
	}

	e := &Engine{db: db, conn: conn, layout: DefaultLayout()}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Layout returns the reactions table layout used by the engine.
func (e *Engine) Layout() Layout {
	return e.layout
}

// SubstructureSearch returns the reactions linked to a row of target whose
// structure contains pattern (SMILES, or SMARTS with UseSMARTS).
func (e *Engine) SubstructureSearch(ctx context.Context, pattern, target string, limit uint32, opts SubstructureOptions) (*record.Dataset, error) {
	return e.Search(ctx, Request{
		Kind:    Substructure,
		Pattern: pattern,
		Target:  target,
		Limit:   limit,
		Options: opts,
	})
}

// SimilaritySearch returns the reactions linked to a row of target whose
// fingerprint has a Tanimoto similarity of at least threshold with the
// fingerprint of smiles.
func (e *Engine) SimilaritySearch(ctx context.Context, smiles, target string, limit uint32, threshold float64) (*record.Dataset, error) {
	return e.Search(ctx, Request{
		Kind:    Similarity,
		Pattern: smiles,
		Target:  target,
		Limit:   limit,
		Options: SimilarityOptions{Threshold: threshold},
	})
}

// Search runs req. The store is not touched when req cannot be composed.
// Otherwise the search runs in a read-only transaction that is rolled back
// before Search returns, whatever the outcome.
func (e *Engine) Search(ctx context.Context, req Request) (ds *record.Dataset, err error) {
	start := time.Now()
	callID := uuid.NewString()
	defer func() {
		e.metrics.observe(req.Kind, time.Since(start), ds.Len(), err)
		if err != nil {
			cmn.DebugMsg(cmn.DbgLvlDebug, "search %s: failed after %s: %v", callID, time.Since(start), err)
		} else {
			cmn.DebugMsg(cmn.DbgLvlDebug, "search %s: %d records in %s", callID, ds.Len(), time.Since(start))
		}
	}()

	stmt, err := Compose(req, e.layout)
	if err != nil {
		return nil, err
	}
	params, err := SessionParams(req)
	if err != nil {
		return nil, err
	}

	cmn.DebugMsg(cmn.DbgLvlDebug, "search %s: %s of %q in %s", callID, req.Kind, req.Pattern, req.Target)
	cmn.DebugMsg(cmn.DbgLvlDebug2, "search %s: %s", callID, stmt)

	e.mu.Lock()
	defer e.mu.Unlock()

	conn, err := e.session(ctx, "begin")
	if err != nil {
		return nil, err
	}
	ds, err = e.run(ctx, conn, callID, params, stmt)
	if err != nil && (sessionLost(err) || ctx.Err() != nil) {
		e.dropSession(callID, err)
	}
	return ds, err
}

// Ping runs a trivial statement on the engine's connection, outside of any
// transaction. It fails if the session cannot be (re-)established.
func (e *Engine) Ping(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	conn, err := e.session(ctx, "ping")
	if err != nil {
		return err
	}
	var one int
	if err := conn.QueryRowxContext(ctx, sqlPing).Scan(&one); err != nil {
		err = storeError("ping", err)
		if sessionLost(err) || ctx.Err() != nil {
			e.dropSession("ping", err)
		}
		return err
	}
	return nil
}

// Close releases the engine's connection, and the pool when the engine
// owns it. It waits for an in-flight search to finish.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil
	}
	e.closed = true

	var err error
	if e.conn != nil {
		err = e.conn.Close()
		e.conn = nil
	}
	if e.ownsDB {
		if dbErr := e.db.Close(); err == nil {
			err = dbErr
		}
	}
	return err
}

// session returns the pinned connection, pinning a fresh read-only one
// when a previous call dropped it. e.mu must be held.
func (e *Engine) session(ctx context.Context, op string) (*sqlx.Conn, error) {
	if e.closed {
		return nil, &Error{Code: CodeConnection, Op: op, Message: "engine is closed"}
	}
	if e.conn == nil {
		conn, err := cdb.ReadOnlySession(ctx, e.db)
		if err != nil {
			return nil, connectionError("connect", err)
		}
		cmn.DebugMsg(cmn.DbgLvlDebug, "search engine: read-only session re-established")
		e.conn = conn
	}
	return e.conn, nil
}

// dropSession discards a connection the driver may have invalidated, as it
// does when a statement is cancelled. e.mu must be held.
func (e *Engine) dropSession(callID string, cause error) {
	if e.conn == nil {
		return
	}
	cmn.DebugMsg(cmn.DbgLvlWarn, "search %s: dropping session after: %v", callID, cause)
	_ = e.conn.Close()
	e.conn = nil
}

// sessionLost reports errors after which the pinned connection cannot be
// trusted anymore.
func sessionLost(err error) bool {
	return CodeOf(err) == CodeConnection ||
		errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, sql.ErrConnDone) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}
