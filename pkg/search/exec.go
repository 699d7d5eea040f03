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
	"errors"

	cmn "github.com/pzaino/ordsearch/pkg/common"
	"github.com/pzaino/ordsearch/pkg/record"

	"github.com/jmoiron/sqlx"
)

// run executes one composed search in its own read-only transaction. The
// transaction is always rolled back: that undoes the session parameters and
// releases the snapshot. e.mu must be held.
func (e *Engine) run(ctx context.Context, conn *sqlx.Conn, callID string, params []SessionParam, stmt Statement) (ds *record.Dataset, err error) {
	tx, err := conn.BeginTxx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, connectionError("begin", err)
	}
	defer func() {
		rbErr := tx.Rollback()
		if rbErr == nil || errors.Is(rbErr, sql.ErrTxDone) {
			return
		}
		cmn.DebugMsg(cmn.DbgLvlError, "search %s: rolling back: %v", callID, rbErr)
		if err == nil {
			ds, err = nil, connectionError("rollback", rbErr)
		}
	}()

	if err := applySession(ctx, tx, params); err != nil {
		return nil, err
	}
	return execute(ctx, tx, stmt)
}

func execute(ctx context.Context, tx *sqlx.Tx, stmt Statement) (*record.Dataset, error) {
	rows, err := tx.QueryContext(ctx, stmt.Text, stmt.Args...)
	if err != nil {
		return nil, storeError("query", err)
	}
	defer rows.Close() //nolint:errcheck // nothing left to report once decoding is done

	return Decode(rows)
}

// connectionError reports a failure to obtain or release the session. An
// interrupted caller is not a connection failure.
func connectionError(op string, err error) error {
	var se *Error
	if errors.As(err, &se) {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return storeError(op, err)
	}
	return &Error{Code: CodeConnection, Op: op, Err: err}
}
