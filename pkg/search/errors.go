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
	"fmt"
	"net"

	"github.com/lib/pq"
)

// ErrorCode categorizes search errors.
type ErrorCode string

const (
	// CodeInvalidIdentifier is a malformed table or column reference.
	CodeInvalidIdentifier ErrorCode = "INVALID_IDENTIFIER"
	// CodeUnsupportedPatternKind is a request for a search kind the engine
	// does not know, or options that do not belong to the requested kind.
	CodeUnsupportedPatternKind ErrorCode = "UNSUPPORTED_PATTERN_KIND"
	// CodeConnection is a transport or authentication failure.
	CodeConnection ErrorCode = "CONNECTION"
	// CodeQueryExecution is a statement rejected by the store.
	CodeQueryExecution ErrorCode = "QUERY_EXECUTION"
	// CodeMalformedRecord is a returned row whose payload cannot be decoded.
	CodeMalformedRecord ErrorCode = "MALFORMED_RECORD"
)

// Sentinels for errors.Is. Any *Error with the same code matches.
var (
	ErrInvalidIdentifier      = &Error{Code: CodeInvalidIdentifier}
	ErrUnsupportedPatternKind = &Error{Code: CodeUnsupportedPatternKind}
	ErrConnection             = &Error{Code: CodeConnection}
	ErrQueryExecution         = &Error{Code: CodeQueryExecution}
	ErrMalformedRecord        = &Error{Code: CodeMalformedRecord}
)

// Error is the error type returned by every search operation.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Op is the step that failed (compose, begin, session, query, decode).
	Op string

	// RecordID identifies the offending row for CodeMalformedRecord.
	RecordID string

	// Message is a human-readable description.
	Message string

	// Err is the underlying cause, if any.
	Err error
}

func (e *Error) Error() string {
	msg := string(e.Code)
	if e.Op != "" {
		msg += " during " + e.Op
	}
	if e.RecordID != "" {
		msg += fmt.Sprintf(" (record %s)", e.RecordID)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error carrying the same code.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// CodeOf returns the ErrorCode of err, or "" when err is not a search error.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

func invalidIdentifier(ref, reason string) error {
	return &Error{Code: CodeInvalidIdentifier, Op: "compose", Message: fmt.Sprintf("%q: %s", ref, reason)}
}

func unsupportedPatternKind(format string, args ...interface{}) error {
	return &Error{Code: CodeUnsupportedPatternKind, Op: "compose", Message: fmt.Sprintf(format, args...)}
}

func malformedRecord(recordID string, err error) error {
	return &Error{Code: CodeMalformedRecord, Op: "decode", RecordID: recordID, Err: err}
}

// sqlStateQueryCanceled is raised by statement_timeout and by cancel
// requests. The session itself survives it.
const sqlStateQueryCanceled = "57014"

// storeError classifies an error returned by the driver while running op.
func storeError(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *Error
	if errors.As(err, &se) {
		return err
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		e := &Error{Code: CodeQueryExecution, Op: op, Message: pqErrorMessage(pqErr), Err: err}
		if pqErr.Code == sqlStateQueryCanceled {
			e.Message = "interrupted: " + e.Message
			return e
		}
		switch pqErr.Code.Class() {
		case "08", "28", "53", "57":
			e.Code = CodeConnection
		}
		return e
	}

	var netErr net.Error
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) || errors.As(err, &netErr) {
		return &Error{Code: CodeConnection, Op: op, Err: err}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return &Error{Code: CodeQueryExecution, Op: op, Message: "interrupted", Err: err}
	}
	return &Error{Code: CodeQueryExecution, Op: op, Err: err}
}

func pqErrorMessage(e *pq.Error) string {
	msg := fmt.Sprintf("SQLSTATE %s (%s)", e.Code, e.Code.Name())
	if e.Detail != "" {
		msg += ", detail: " + e.Detail
	}
	if e.Hint != "" {
		msg += ", hint: " + e.Hint
	}
	return msg
}
