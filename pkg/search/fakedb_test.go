package search

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/pzaino/ordsearch/pkg/record"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

// fakeDriverName is a database/sql driver standing in for PostgreSQL. Each
// data source name selects one fakeStore.
const fakeDriverName = "ordsearch-fake"

func init() {
	sql.Register(fakeDriverName, fakeDriver{})
}

var fakeStores sync.Map // dsn -> *fakeStore

// responder answers a query. settings are the parameters set in the
// current transaction.
type responder func(query string, args []driver.NamedValue, settings map[string]string) (driver.Rows, error)

type fakeStore struct {
	mu        sync.Mutex
	log       []string
	openTx    int
	maxOpenTx int
	settings  map[*fakeConn]map[string]string

	respond     responder
	execErr     error
	beginErr    error
	rollbackErr error
}

func newFakeDB(t *testing.T) (*sqlx.DB, *fakeStore) {
	t.Helper()

	dsn := uuid.NewString()
	st := &fakeStore{settings: make(map[*fakeConn]map[string]string)}
	fakeStores.Store(dsn, st)

	db, err := sqlx.Open(fakeDriverName, dsn)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
		fakeStores.Delete(dsn)
	})
	return db, st
}

func (s *fakeStore) record(entry string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.log = append(s.log, entry)
}

// Log returns the statements seen so far.
func (s *fakeStore) Log() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.log...)
}

func (s *fakeStore) ResetLog() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.log = nil
}

func (s *fakeStore) OpenTx() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.openTx
}

func (s *fakeStore) MaxOpenTx() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.maxOpenTx
}

// LiveSettings counts the transaction-local parameters still set on any
// connection.
func (s *fakeStore) LiveSettings() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, m := range s.settings {
		n += len(m)
	}
	return n
}

type fakeDriver struct{}

func (fakeDriver) Open(dsn string) (driver.Conn, error) {
	v, ok := fakeStores.Load(dsn)
	if !ok {
		return nil, fmt.Errorf("no fake store %q", dsn)
	}
	return &fakeConn{store: v.(*fakeStore)}, nil
}

type fakeConn struct {
	store *fakeStore
	inTx  bool
}

func (c *fakeConn) Prepare(string) (driver.Stmt, error) {
	return nil, errors.New("prepared statements are not supported")
}

func (c *fakeConn) Close() error { return nil }

func (c *fakeConn) Begin() (driver.Tx, error) {
	return c.BeginTx(context.Background(), driver.TxOptions{})
}

func (c *fakeConn) BeginTx(_ context.Context, opts driver.TxOptions) (driver.Tx, error) {
	st := c.store
	st.mu.Lock()
	defer st.mu.Unlock()

	if st.beginErr != nil {
		return nil, st.beginErr
	}
	if opts.ReadOnly {
		st.log = append(st.log, "BEGIN READ ONLY")
	} else {
		st.log = append(st.log, "BEGIN")
	}
	c.inTx = true
	st.openTx++
	if st.openTx > st.maxOpenTx {
		st.maxOpenTx = st.openTx
	}
	return &fakeTx{conn: c}, nil
}

func (c *fakeConn) ExecContext(_ context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	st := c.store
	st.mu.Lock()
	defer st.mu.Unlock()

	st.log = append(st.log, formatEntry(query, args))
	if st.execErr != nil {
		return nil, st.execErr
	}
	if query == sqlSetSessionParam && c.inTx {
		if st.settings[c] == nil {
			st.settings[c] = make(map[string]string)
		}
		st.settings[c][args[0].Value.(string)] = args[1].Value.(string)
	}
	return driver.RowsAffected(0), nil
}

func (c *fakeConn) QueryContext(_ context.Context, query string, args []driver.NamedValue) (driver.Rows, error) {
	st := c.store
	st.mu.Lock()
	st.log = append(st.log, formatEntry(query, args))
	settings := make(map[string]string, len(st.settings[c]))
	for k, v := range st.settings[c] {
		settings[k] = v
	}
	respond := st.respond
	st.mu.Unlock()

	if query == sqlPing {
		return &fakeRows{cols: []string{"?column?"}, data: [][]driver.Value{{int64(1)}}}, nil
	}
	if respond == nil {
		return &fakeRows{cols: []string{"id", "serialized"}}, nil
	}
	return respond(query, args, settings)
}

func (c *fakeConn) endTx(entry string) error {
	st := c.store
	st.mu.Lock()
	defer st.mu.Unlock()

	st.log = append(st.log, entry)
	c.inTx = false
	st.openTx--
	delete(st.settings, c)
	if entry == "ROLLBACK" && st.rollbackErr != nil {
		return st.rollbackErr
	}
	return nil
}

type fakeTx struct {
	conn *fakeConn
}

func (tx *fakeTx) Commit() error   { return tx.conn.endTx("COMMIT") }
func (tx *fakeTx) Rollback() error { return tx.conn.endTx("ROLLBACK") }

type fakeRows struct {
	cols []string
	data [][]driver.Value
	err  error // returned once data is exhausted
	pos  int
}

func (r *fakeRows) Columns() []string { return r.cols }
func (r *fakeRows) Close() error      { return nil }

func (r *fakeRows) Next(dest []driver.Value) error {
	if r.pos >= len(r.data) {
		if r.err != nil {
			return r.err
		}
		return io.EOF
	}
	copy(dest, r.data[r.pos])
	r.pos++
	return nil
}

func formatEntry(query string, args []driver.NamedValue) string {
	if len(args) == 0 {
		return query
	}
	vals := make([]string, len(args))
	for i, a := range args {
		vals[i] = fmt.Sprint(a.Value)
	}
	return query + " [" + strings.Join(vals, " ") + "]"
}

// storedReaction is a row of the fake reactions store.
type storedReaction struct {
	id         string
	smiles     string
	similarity float64 // similarity to the pattern used by the tests
	payload    string  // hex payload; derived from id when empty
}

func reactionPayload(t *testing.T, id, smiles string) string {
	t.Helper()
	b, err := record.NewReaction(id, record.Identifier{
		Type:  record.IdentifierReactionSMILES,
		Value: smiles,
	}).Marshal()
	require.NoError(t, err)
	return hex.EncodeToString(b)
}

// rowsOf builds the result rows for reactions.
func rowsOf(t *testing.T, reactions ...storedReaction) *fakeRows {
	t.Helper()
	rows := &fakeRows{cols: []string{"reaction_id", "serialized"}}
	for _, r := range reactions {
		payload := r.payload
		if payload == "" {
			payload = reactionPayload(t, r.id, r.smiles)
		}
		rows.data = append(rows.data, []driver.Value{r.id, []byte(payload)})
	}
	return rows
}

// chemistryResponder evaluates searches over reactions: substructure
// containment is plain string containment of the pattern in the SMILES,
// similarity compares the stored score with the session threshold.
func chemistryResponder(t *testing.T, reactions []storedReaction) responder {
	return func(query string, args []driver.NamedValue, settings map[string]string) (driver.Rows, error) {
		pattern := args[0].Value.(string)
		limit := -1
		if len(args) > 1 {
			limit = int(args[1].Value.(int64))
		}

		var matched []storedReaction
		for _, r := range reactions {
			switch {
			case strings.Contains(query, " @> "):
				if strings.Contains(r.smiles, pattern) {
					matched = append(matched, r)
				}
			case strings.Contains(query, " % "):
				var threshold float64
				if _, err := fmt.Sscan(settings[ParamTanimotoThreshold], &threshold); err != nil {
					return nil, err
				}
				if r.similarity >= threshold {
					matched = append(matched, r)
				}
			}
		}
		if limit >= 0 && len(matched) > limit {
			matched = matched[:limit]
		}
		return rowsOf(t, matched...), nil
	}
}
