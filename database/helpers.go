package database

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/MonkyMars/gecho"
	"github.com/uptrace/bun"
)

// Pagination represents pagination parameters
type Pagination struct {
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
	Total    int `json:"total"`
}

// PaginationResult wraps paginated data with metadata
type PaginationResult[T any] struct {
	Data       []T        `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// Paginate applies pagination to a query builder and returns results with metadata
func Paginate[T any](ctx context.Context, q *QueryBuilder[T], page, pageSize int) (*PaginationResult[T], error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 12
	}
	if pageSize > 100 {
		pageSize = 100
	}

	total, err := q.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get total count: %w", err)
	}

	data, err := q.Limit(pageSize).Offset((page - 1) * pageSize).All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get paginated data: %w", err)
	}

	return &PaginationResult[T]{
		Data: data,
		Pagination: Pagination{
			Page:     page,
			PageSize: pageSize,
			Total:    total,
		},
	}, nil
}

// FindByID is a helper to find a record by ID
func FindByID[T any](ctx context.Context, conn bun.IDB, id any) (*T, error) {
	return Query[T](conn).Where("id", id).First(ctx)
}

// Transaction runs fn in a transaction. A panic inside fn rolls back and is returned as an error.
func (db *DB) Transaction(ctx context.Context, fn func(ctx context.Context, tx bun.Tx) error) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			if db.logger != nil {
				db.logger.Error(fmt.Sprintf("PANIC RECOVERED: %v", p),
					gecho.Field("panic_value", p),
					gecho.Field("stack_trace", string(debug.Stack())))
			}
			_ = tx.Rollback()
			err = fmt.Errorf("panic recovered: %v", p)
		} else if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	return fn(ctx, tx)
}
