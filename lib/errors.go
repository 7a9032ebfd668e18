package lib

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

// Database errors
var (
	ErrConflict = errors.New("conflict")
	ErrNotFound = errors.New("not found")
)

// Cart and checkout errors
var (
	ErrOutOfStock         = errors.New("out of stock")
	ErrExceedsStock       = errors.New("exceeds stock")
	ErrEmptyCart          = errors.New("cart is empty")
	ErrStockChanged       = errors.New("stock changed")
	ErrNotificationFailed = errors.New("notification failed")
)

// Request errors
var (
	ErrValidationFailed = errors.New("validation failed")
	ErrUnauthenticated  = errors.New("unauthenticated")
	ErrForbidden        = errors.New("forbidden")
)

// Auth errors
var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("expired token")
)

// StockChangedError names the product whose live stock no longer covers the cart.
type StockChangedError struct {
	ProductName string
	Requested   int
	Available   int
}

func (e *StockChangedError) Error() string {
	return fmt.Sprintf("stock for %s changed: requested %d, available %d", e.ProductName, e.Requested, e.Available)
}

func (e *StockChangedError) Unwrap() error {
	return ErrStockChanged
}

// NotificationError is returned when an order was placed but a notification could not be delivered.
type NotificationError struct {
	OrderID uuid.UUID
	Err     error
}

func (e *NotificationError) Error() string {
	return fmt.Sprintf("order %s placed but notification failed: %v", e.OrderID, e.Err)
}

func (e *NotificationError) Unwrap() []error {
	return []error{ErrNotificationFailed, e.Err}
}

func MapPgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code { // SQLSTATE
		case "23505": // unique_violation
			return fmt.Errorf("%w: %s", ErrConflict, pgErr.ConstraintName)
		case "P0002": // no_data_found
			return ErrNotFound
		}
	}
	return err
}
