// Package query builds existence checks from client-supplied field names.
// Field and table identifiers are validated against an allow-list before
// they reach SQL, so arbitrary filter maps cannot steer the query shape.
package query

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

var (
	ErrUnknownTable = errors.New("unknown table")
	ErrUnknownField = errors.New("unknown field")
)

const DefaultTable = "profile"

var allowedFields = map[string]map[string]bool{
	"profile": {
		"username": true,
		"email":    true,
		"phone":    true,
	},
}

type Condition struct {
	Field string
	Op    string
	Value string
}

type Query struct {
	table      string
	conditions []Condition
}

func New(table string) (*Query, error) {
	if table == "" {
		table = DefaultTable
	}
	if _, ok := allowedFields[table]; !ok {
		return nil, errors.Wrap(ErrUnknownTable, table)
	}
	return &Query{table: table}, nil
}

func (q *Query) Table() string {
	return q.table
}

// Equals appends an equality condition. Conditions keep insertion order so
// the rendered SQL is deterministic for a given input sequence.
func (q *Query) Equals(field, value string) error {
	if !allowedFields[q.table][field] {
		return errors.Wrap(ErrUnknownField, field)
	}
	q.conditions = append(q.conditions, Condition{Field: field, Op: "=", Value: value})
	return nil
}

// ExistsSQL renders the query as an EXISTS check. Identifiers were
// allow-listed on the way in; values always travel as bind parameters.
func (q *Query) ExistsSQL() (string, []any) {
	clauses := make([]string, 0, len(q.conditions))
	args := make([]any, 0, len(q.conditions))

	for i, c := range q.conditions {
		clauses = append(clauses, fmt.Sprintf("%s %s $%d", c.Field, c.Op, i+1))
		args = append(args, c.Value)
	}

	sql := fmt.Sprintf("SELECT EXISTS (SELECT 1 FROM %s WHERE %s)", q.table, strings.Join(clauses, " AND "))
	return sql, args
}
