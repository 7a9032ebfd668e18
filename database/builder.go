package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/bun"
)

// QueryBuilder provides a fluent, type-safe API for building database queries
type QueryBuilder[T any] struct {
	conn bun.IDB

	joins     []*JoinClause
	wheres    []*WhereClause
	groups    []*WhereGroup
	orders    []string
	relations []relation
	limitVal  *int
	offsetVal *int
	forUpdate bool
	timeout   time.Duration
}

type relation struct {
	name  string
	apply []func(*bun.SelectQuery) *bun.SelectQuery
}

// JoinClause is a raw JOIN fragment with its arguments
type JoinClause struct {
	SQL  string
	Args []any
}

// WhereClause represents a WHERE condition
type WhereClause struct {
	Column   string
	Operator string
	Value    any
	IsRaw    bool
	RawSQL   string
	RawArgs  []any
}

// WhereGroup represents a parenthesised set of conditions joined by Connector
type WhereGroup struct {
	Conditions []*WhereClause
	Connector  string // "AND" or "OR"
}

// OrderDirection represents sort direction
type OrderDirection string

const (
	ASC  OrderDirection = "ASC"
	DESC OrderDirection = "DESC"
)

// WhereGroupBuilder provides a fluent API for building grouped WHERE clauses
type WhereGroupBuilder[T any] struct {
	parent *QueryBuilder[T]
	group  *WhereGroup
}

// Query creates a new QueryBuilder on a database handle or an open transaction
func Query[T any](conn bun.IDB) *QueryBuilder[T] {
	return &QueryBuilder[T]{conn: conn}
}

// Join adds a raw JOIN clause
func (q *QueryBuilder[T]) Join(sql string, args ...any) *QueryBuilder[T] {
	q.joins = append(q.joins, &JoinClause{SQL: sql, Args: args})
	return q
}

// Where adds a simple WHERE condition (column = value)
func (q *QueryBuilder[T]) Where(column string, value any) *QueryBuilder[T] {
	return q.WhereOp(column, "=", value)
}

// WhereOp adds a WHERE condition with a custom operator
func (q *QueryBuilder[T]) WhereOp(column, operator string, value any) *QueryBuilder[T] {
	q.wheres = append(q.wheres, &WhereClause{
		Column:   column,
		Operator: operator,
		Value:    value,
	})
	return q
}

// WhereIn adds a WHERE IN condition
func (q *QueryBuilder[T]) WhereIn(column string, values any) *QueryBuilder[T] {
	q.wheres = append(q.wheres, &WhereClause{
		IsRaw:   true,
		RawSQL:  column + " IN (?)",
		RawArgs: []any{bun.In(values)},
	})
	return q
}

// WhereRaw adds a raw WHERE condition
func (q *QueryBuilder[T]) WhereRaw(sql string, args ...any) *QueryBuilder[T] {
	q.wheres = append(q.wheres, &WhereClause{
		IsRaw:   true,
		RawSQL:  sql,
		RawArgs: args,
	})
	return q
}

// Or starts an OR group
func (q *QueryBuilder[T]) Or() *WhereGroupBuilder[T] {
	return &WhereGroupBuilder[T]{
		parent: q,
		group:  &WhereGroup{Connector: "OR"},
	}
}

// OrderBy adds an ORDER BY clause on a column
func (q *QueryBuilder[T]) OrderBy(column string, direction OrderDirection) *QueryBuilder[T] {
	q.orders = append(q.orders, column+" "+string(direction))
	return q
}

// OrderExpr adds a raw ORDER BY expression
func (q *QueryBuilder[T]) OrderExpr(expr string) *QueryBuilder[T] {
	q.orders = append(q.orders, expr)
	return q
}

// Relation preloads a bun relation, optionally customising the relation query
func (q *QueryBuilder[T]) Relation(name string, apply ...func(*bun.SelectQuery) *bun.SelectQuery) *QueryBuilder[T] {
	q.relations = append(q.relations, relation{name: name, apply: apply})
	return q
}

// Limit sets the LIMIT clause
func (q *QueryBuilder[T]) Limit(limit int) *QueryBuilder[T] {
	q.limitVal = &limit
	return q
}

// Offset sets the OFFSET clause
func (q *QueryBuilder[T]) Offset(offset int) *QueryBuilder[T] {
	q.offsetVal = &offset
	return q
}

// ForUpdate adds FOR UPDATE clause (for row locking)
func (q *QueryBuilder[T]) ForUpdate() *QueryBuilder[T] {
	q.forUpdate = true
	return q
}

// Timeout sets a timeout for the query
func (q *QueryBuilder[T]) Timeout(duration time.Duration) *QueryBuilder[T] {
	q.timeout = duration
	return q
}

// Where adds a condition to the group
func (w *WhereGroupBuilder[T]) Where(column string, value any) *WhereGroupBuilder[T] {
	return w.WhereOp(column, "=", value)
}

// WhereOp adds a condition with an operator to the group
func (w *WhereGroupBuilder[T]) WhereOp(column, operator string, value any) *WhereGroupBuilder[T] {
	w.group.Conditions = append(w.group.Conditions, &WhereClause{
		Column:   column,
		Operator: operator,
		Value:    value,
	})
	return w
}

// WhereRaw adds a raw condition to the group
func (w *WhereGroupBuilder[T]) WhereRaw(sql string, args ...any) *WhereGroupBuilder[T] {
	w.group.Conditions = append(w.group.Conditions, &WhereClause{
		IsRaw:   true,
		RawSQL:  sql,
		RawArgs: args,
	})
	return w
}

// End completes the group builder and returns to the query builder
func (w *WhereGroupBuilder[T]) End() *QueryBuilder[T] {
	w.parent.groups = append(w.parent.groups, w.group)
	return w.parent
}

// String renders the SELECT statement without executing it
func (q *QueryBuilder[T]) String() string {
	var data []T
	return q.buildSelect(&data).String()
}

// buildSelect turns the builder state into a bun SelectQuery scanning into dest
func (q *QueryBuilder[T]) buildSelect(dest any) *bun.SelectQuery {
	query := q.conn.NewSelect().Model(dest)

	for _, join := range q.joins {
		query = query.Join(join.SQL, join.Args...)
	}
	for _, rel := range q.relations {
		query = query.Relation(rel.name, rel.apply...)
	}

	for _, where := range q.wheres {
		sql, args := where.toSQL()
		query = query.Where(sql, args...)
	}
	for _, group := range q.groups {
		if sql, args, ok := group.toSQL(); ok {
			query = query.Where(sql, args...)
		}
	}

	for _, order := range q.orders {
		query = query.OrderExpr(order)
	}
	if q.limitVal != nil {
		query = query.Limit(*q.limitVal)
	}
	if q.offsetVal != nil {
		query = query.Offset(*q.offsetVal)
	}
	if q.forUpdate {
		query = query.For("UPDATE")
	}
	return query
}

func (q *QueryBuilder[T]) applyToUpdate(query *bun.UpdateQuery) *bun.UpdateQuery {
	for _, where := range q.wheres {
		sql, args := where.toSQL()
		query = query.Where(sql, args...)
	}
	for _, group := range q.groups {
		if sql, args, ok := group.toSQL(); ok {
			query = query.Where(sql, args...)
		}
	}
	return query
}

func (q *QueryBuilder[T]) applyToDelete(query *bun.DeleteQuery) *bun.DeleteQuery {
	for _, where := range q.wheres {
		sql, args := where.toSQL()
		query = query.Where(sql, args...)
	}
	for _, group := range q.groups {
		if sql, args, ok := group.toSQL(); ok {
			query = query.Where(sql, args...)
		}
	}
	return query
}

// withTimeout applies the builder timeout to ctx
func (q *QueryBuilder[T]) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if q.timeout > 0 {
		return context.WithTimeout(ctx, q.timeout)
	}
	return ctx, func() {}
}

// run retries outside transactions only. A failed statement aborts an open transaction.
func (q *QueryBuilder[T]) run(ctx context.Context, fn func() error) error {
	if _, inTx := q.conn.(bun.Tx); inTx {
		return fn()
	}
	return WithRetry(ctx, fn)
}

func (w *WhereClause) toSQL() (string, []any) {
	if w.IsRaw {
		return w.RawSQL, w.RawArgs
	}
	if w.Operator == "IS NULL" || w.Operator == "IS NOT NULL" {
		return fmt.Sprintf("%s %s", w.Column, w.Operator), nil
	}
	return fmt.Sprintf("%s %s ?", w.Column, w.Operator), []any{w.Value}
}

func (g *WhereGroup) toSQL() (string, []any, bool) {
	if len(g.Conditions) == 0 {
		return "", nil, false
	}

	conditions := make([]string, 0, len(g.Conditions))
	var args []any
	for _, cond := range g.Conditions {
		sql, condArgs := cond.toSQL()
		conditions = append(conditions, sql)
		args = append(args, condArgs...)
	}
	return "(" + strings.Join(conditions, " "+g.Connector+" ") + ")", args, true
}
