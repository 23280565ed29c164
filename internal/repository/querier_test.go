package repository

import (
	"context"
	"fmt"
	"reflect"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// expectation ожидаемый запрос: фрагмент SQL и ответ на него
type expectation struct {
	sql  string
	tag  string
	row  []any
	err  error
	args []any
}

// scriptedQuerier отвечает на запросы строго по очереди ожиданий
type scriptedQuerier struct {
	t        *testing.T
	expected []*expectation
	seen     []*expectation
}

func newScriptedQuerier(t *testing.T) *scriptedQuerier {
	q := &scriptedQuerier{t: t}
	t.Cleanup(func() {
		assert.Empty(t, q.expected, "expected statements were not executed")
	})
	return q
}

func (q *scriptedQuerier) expectExec(sql, tag string) *expectation {
	e := &expectation{sql: sql, tag: tag}
	q.expected = append(q.expected, e)
	return e
}

func (q *scriptedQuerier) expectRow(sql string, values ...any) *expectation {
	e := &expectation{sql: sql, row: values}
	q.expected = append(q.expected, e)
	return e
}

func (q *scriptedQuerier) expectErr(sql string, err error) *expectation {
	e := &expectation{sql: sql, err: err}
	q.expected = append(q.expected, e)
	return e
}

func (q *scriptedQuerier) next(sql string, args []any) *expectation {
	q.t.Helper()
	require.NotEmpty(q.t, q.expected, "unexpected statement: %s", sql)
	e := q.expected[0]
	q.expected = q.expected[1:]
	require.Contains(q.t, sql, e.sql)
	e.args = args
	q.seen = append(q.seen, e)
	return e
}

func (q *scriptedQuerier) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	e := q.next(sql, args)
	if e.err != nil {
		return pgconn.CommandTag{}, e.err
	}
	return pgconn.NewCommandTag(e.tag), nil
}

func (q *scriptedQuerier) Query(_ context.Context, sql string, _ ...any) (pgx.Rows, error) {
	return nil, fmt.Errorf("scripted querier does not serve multi-row query: %s", sql)
}

func (q *scriptedQuerier) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	e := q.next(sql, args)
	return scriptedRow{values: e.row, err: e.err}
}

type scriptedRow struct {
	values []any
	err    error
}

func (r scriptedRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if len(dest) != len(r.values) {
		return fmt.Errorf("scan: %d destinations for %d values", len(dest), len(r.values))
	}
	for i, d := range dest {
		target := reflect.ValueOf(d).Elem()
		if r.values[i] == nil {
			target.Set(reflect.Zero(target.Type()))
			continue
		}
		v := reflect.ValueOf(r.values[i])
		switch {
		case v.Type().AssignableTo(target.Type()):
			target.Set(v)
		case v.Type().ConvertibleTo(target.Type()):
			target.Set(v.Convert(target.Type()))
		default:
			return fmt.Errorf("scan: column %d: cannot assign %s to %s", i, v.Type(), target.Type())
		}
	}
	return nil
}
