package database

import (
	"bengaliboutique_server/lib"
	"bengaliboutique_server/repository"
	"bengaliboutique_server/structs/tables"
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

type orderRepository struct {
	db *DB
}

// NewOrderRepository creates an OrderRepository backed by Postgres.
func NewOrderRepository(db *DB) repository.OrderRepository {
	return &orderRepository{db: db}
}

// RunInTx runs one checkout attempt per transaction and retries the whole attempt on
// serialization failures and deadlocks.
func (r *orderRepository) RunInTx(ctx context.Context, fn func(ctx context.Context, tx repository.CheckoutTx) error) error {
	return RetryWithBackoff(ctx, TxRetryConfig(), func() error {
		return r.db.Transaction(ctx, func(ctx context.Context, tx bun.Tx) error {
			return fn(ctx, &checkoutTx{tx: tx})
		})
	})
}

func (r *orderRepository) OrderForUser(ctx context.Context, orderID, userID uuid.UUID) (*tables.Order, error) {
	return Query[tables.Order](r.db).
		Relation("Items", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.OrderExpr("oi.product_name ASC")
		}).
		Where("o.id", orderID).
		Where("o.user_id", userID).
		First(ctx)
}

func (r *orderRepository) OrdersForUser(ctx context.Context, userID uuid.UUID) ([]tables.Order, error) {
	return Query[tables.Order](r.db).
		Relation("Items").
		Where("o.user_id", userID).
		OrderBy("o.created_at", DESC).
		All(ctx)
}

func (r *orderRepository) ListOrders(ctx context.Context, page, pageSize int) ([]tables.Order, int, error) {
	result, err := Paginate(ctx,
		Query[tables.Order](r.db).Relation("Items").OrderBy("o.created_at", DESC),
		page, pageSize)
	if err != nil {
		return nil, 0, err
	}
	return result.Data, result.Pagination.Total, nil
}

type checkoutTx struct {
	tx bun.Tx
}

func (c *checkoutTx) CreateOrder(ctx context.Context, order *tables.Order) error {
	_, err := Query[tables.Order](c.tx).Insert(ctx, order)
	return err
}

func (c *checkoutTx) LockProduct(ctx context.Context, productID uuid.UUID) (*tables.Product, error) {
	return Query[tables.Product](c.tx).Where("p.id", productID).ForUpdate().First(ctx)
}

func (c *checkoutTx) LockVariant(ctx context.Context, productID, variantID uuid.UUID) (*tables.ProductVariant, error) {
	return Query[tables.ProductVariant](c.tx).
		Where("pv.id", variantID).
		Where("pv.product_id", productID).
		ForUpdate().
		First(ctx)
}

func (c *checkoutTx) AddItem(ctx context.Context, item *tables.OrderItem) error {
	_, err := Query[tables.OrderItem](c.tx).Insert(ctx, item)
	return err
}

func (c *checkoutTx) DecrementProductStock(ctx context.Context, productID uuid.UUID, qty int) error {
	return decrementStock(ctx, Query[tables.Product](c.tx), productID, qty)
}

func (c *checkoutTx) DecrementVariantStock(ctx context.Context, variantID uuid.UUID, qty int) error {
	return decrementStock(ctx, Query[tables.ProductVariant](c.tx), variantID, qty)
}

// decrementStock is a compare-and-decrement: zero affected rows means the stock no longer covers qty.
func decrementStock[T any](ctx context.Context, q *QueryBuilder[T], id uuid.UUID, qty int) error {
	n, err := q.
		Where("id", id).
		WhereOp("stock", ">=", qty).
		Update(ctx, map[string]any{"stock": bun.SafeQuery("stock - ?", qty)})
	if err != nil {
		return err
	}
	if n == 0 {
		return lib.ErrStockChanged
	}
	return nil
}

func (c *checkoutTx) SetOrderTotal(ctx context.Context, orderID uuid.UUID, total decimal.Decimal) error {
	n, err := Query[tables.Order](c.tx).Where("id", orderID).Update(ctx, map[string]any{"total_price": total})
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("order %s: %w", orderID, lib.ErrNotFound)
	}
	return nil
}
