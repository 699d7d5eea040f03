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
	"errors"
	"fmt"
	"sync"

	cmn "github.com/pzaino/ordsearch/pkg/common"
	cfg "github.com/pzaino/ordsearch/pkg/config"
	cdb "github.com/pzaino/ordsearch/pkg/database"
	"github.com/pzaino/ordsearch/pkg/record"

	"github.com/jmoiron/sqlx"
)

// ErrPoolClosed is returned by Acquire once the pool is closed.
var ErrPoolClosed = &Error{Code: CodeConnection, Op: "acquire", Message: "engine pool is closed"}

// Pool is a fixed set of engines sharing one database connection pool.
// Each engine serves one search at a time, so a pool of n engines runs at
// most n searches concurrently.
type Pool struct {
	mu      sync.Mutex
	db      *sqlx.DB
	ownsDB  bool
	slot    []*Engine
	idle    chan *Engine
	busy    map[*Engine]struct{} // checked out by Acquire
	closed  bool
	closing chan struct{}
}

// NewPool connects to the store described by c and opens
// c.Search.PoolSize engines on it.
func NewPool(ctx context.Context, c cfg.Config, opts ...EngineOption) (*Pool, error) {
	db, err := cdb.Connect(ctx, c)
	if err != nil {
		return nil, connectionError("connect", err)
	}

	opts = append([]EngineOption{WithLayout(LayoutFromConfig(c))}, opts...)
	p, err := NewPoolFromDB(ctx, db, c.Search.PoolSize, opts...)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	p.ownsDB = true
	return p, nil
}

// NewPoolFromDB opens size engines on db. db stays owned by the caller.
func NewPoolFromDB(ctx context.Context, db *sqlx.DB, size int, opts ...EngineOption) (*Pool, error) {
	if size < 1 {
		size = 1
	}

	p := &Pool{
		db:      db,
		idle:    make(chan *Engine, size),
		busy:    make(map[*Engine]struct{}, size),
		closing: make(chan struct{}),
	}
	for i := 0; i < size; i++ {
		e, err := NewEngineFromDB(ctx, db, opts...)
		if err != nil {
			_ = p.Close()
			return nil, fmt.Errorf("opening engine %d of %d: %w", i+1, size, err)
		}
		p.slot = append(p.slot, e)
		p.idle <- e
	}
	cmn.DebugMsg(cmn.DbgLvlInfo, "Search pool initialized with %d engines", size)
	return p, nil
}

// Size returns the number of engines in the pool.
func (p *Pool) Size() int {
	if p == nil {
		return 0
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.slot)
}

// Available returns the number of idle engines.
func (p *Pool) Available() int {
	if p == nil {
		return 0
	}
	return len(p.idle)
}

// Acquire waits for an idle engine. The engine must be handed back with
// Release.
func (p *Pool) Acquire(ctx context.Context) (*Engine, error) {
	if p == nil {
		return nil, ErrPoolClosed
	}
	select {
	case <-p.closing:
		return nil, ErrPoolClosed
	default:
	}

	select {
	case e := <-p.idle:
		p.mu.Lock()
		p.busy[e] = struct{}{}
		p.mu.Unlock()
		return e, nil
	case <-p.closing:
		return nil, ErrPoolClosed
	case <-ctx.Done():
		return nil, &Error{Code: CodeConnection, Op: "acquire", Message: "interrupted", Err: ctx.Err()}
	}
}

// Release hands e back to the pool. Engines that are not checked out of
// this pool, including ones already released, are ignored.
func (p *Pool) Release(e *Engine) {
	if p == nil || e == nil {
		return
	}
	p.mu.Lock()
	if _, ok := p.busy[e]; !ok {
		p.mu.Unlock()
		cmn.DebugMsg(cmn.DbgLvlWarn, "search pool: ignoring release of an engine that is not checked out")
		return
	}
	delete(p.busy, e)
	closed := p.closed
	p.mu.Unlock()

	if closed {
		_ = e.Close()
		return
	}
	// idle has room for every engine of the pool, so this never blocks
	p.idle <- e
}

// Do runs fn with an engine of the pool.
func (p *Pool) Do(ctx context.Context, fn func(*Engine) error) error {
	e, err := p.Acquire(ctx)
	if err != nil {
		return err
	}
	defer p.Release(e)
	return fn(e)
}

// Search runs req on the next idle engine.
func (p *Pool) Search(ctx context.Context, req Request) (*record.Dataset, error) {
	var ds *record.Dataset
	err := p.Do(ctx, func(e *Engine) error {
		var err error
		ds, err = e.Search(ctx, req)
		return err
	})
	return ds, err
}

// Close closes every engine of the pool, waiting for in-flight searches,
// and the database pool when the Pool owns it.
func (p *Pool) Close() error {
	if p == nil {
		return nil
	}
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.closing)
	p.mu.Unlock()

	var errs []error
	for _, e := range p.slot {
		if err := e.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if p.ownsDB {
		if err := p.db.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
