package database

import (
	"bengaliboutique_server/lib"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
)

// All executes the query and returns all matching records with automatic retry
func (q *QueryBuilder[T]) All(ctx context.Context) ([]T, error) {
	start := time.Now()
	var data []T

	ctx, cancel := q.withTimeout(ctx)
	defer cancel()

	err := q.run(ctx, func() error {
		data = nil // Reset on retry
		return q.buildSelect(&data).Scan(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to execute select query: %w (took %v)", err, time.Since(start))
	}

	return data, nil
}

// First returns the first matching record or lib.ErrNotFound
func (q *QueryBuilder[T]) First(ctx context.Context) (*T, error) {
	start := time.Now()
	data := new(T)

	ctx, cancel := q.withTimeout(ctx)
	defer cancel()

	err := q.run(ctx, func() error {
		return q.buildSelect(data).Limit(1).Scan(ctx)
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, lib.ErrNotFound
		}
		return nil, fmt.Errorf("failed to execute first query: %w (took %v)", err, time.Since(start))
	}

	return data, nil
}

// Count executes the query and returns the count of matching records with automatic retry
func (q *QueryBuilder[T]) Count(ctx context.Context) (int, error) {
	start := time.Now()
	var count int

	ctx, cancel := q.withTimeout(ctx)
	defer cancel()

	err := q.run(ctx, func() error {
		var data []T
		var err error
		count, err = q.buildSelect(&data).Count(ctx)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("failed to execute count query: %w (took %v)", err, time.Since(start))
	}

	return count, nil
}

// Insert inserts a new record and returns it
func (q *QueryBuilder[T]) Insert(ctx context.Context, data *T) (*T, error) {
	start := time.Now()

	ctx, cancel := q.withTimeout(ctx)
	defer cancel()

	err := q.run(ctx, func() error {
		_, err := q.conn.NewInsert().Model(data).Returning("*").Exec(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to execute insert query: %w (took %v)", lib.MapPgError(err), time.Since(start))
	}

	return data, nil
}

// Update applies column assignments to records matching the query and returns the affected row count
func (q *QueryBuilder[T]) Update(ctx context.Context, set map[string]any) (int, error) {
	start := time.Now()
	var rowsAffected int64

	ctx, cancel := q.withTimeout(ctx)
	defer cancel()

	err := q.run(ctx, func() error {
		query := q.conn.NewUpdate().Model((*T)(nil))
		query = q.applyToUpdate(query)

		for column, value := range set {
			query = query.Set("? = ?", bun.Ident(column), value)
		}

		res, err := query.Exec(ctx)
		if err != nil {
			return err
		}
		rowsAffected, _ = res.RowsAffected()
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to execute update query: %w (took %v)", lib.MapPgError(err), time.Since(start))
	}

	return int(rowsAffected), nil
}

// Delete deletes records matching the query with automatic retry
func (q *QueryBuilder[T]) Delete(ctx context.Context) (int, error) {
	start := time.Now()
	var rowsAffected int64

	ctx, cancel := q.withTimeout(ctx)
	defer cancel()

	err := q.run(ctx, func() error {
		query := q.applyToDelete(q.conn.NewDelete().Model((*T)(nil)))

		res, err := query.Exec(ctx)
		if err != nil {
			return err
		}
		rowsAffected, _ = res.RowsAffected()
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to execute delete query: %w (took %v)", err, time.Since(start))
	}

	return int(rowsAffected), nil
}
