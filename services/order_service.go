package services

import (
	"bengaliboutique_server/lib"
	"bengaliboutique_server/repository"
	"bengaliboutique_server/structs"
	"bengaliboutique_server/structs/tables"
	"context"
	"fmt"

	"github.com/MonkyMars/gecho"
	"github.com/google/uuid"
)

type OrderPage struct {
	Orders   []tables.Order `json:"orders"`
	Page     int            `json:"page"`
	PageSize int            `json:"page_size"`
	Total    int            `json:"total"`
}

type OrderService struct {
	logger *gecho.Logger
	cfg    *structs.Config
	orders repository.OrderRepository
}

func NewOrderService(logger *gecho.Logger, cfg *structs.Config, orders repository.OrderRepository) *OrderService {
	return &OrderService{
		logger: logger,
		cfg:    cfg,
		orders: orders,
	}
}

func (os *OrderService) encryptionKey() string {
	if os.cfg.Encryption == nil {
		return ""
	}
	return os.cfg.Encryption.Key
}

// decryptAddresses replaces sealed addresses with plaintext in place.
func (os *OrderService) decryptAddresses(order *tables.Order) error {
	key := os.encryptionKey()

	billing, err := lib.DecryptField(order.BillingAddress, key)
	if err != nil {
		return fmt.Errorf("failed to decrypt billing address of order %s: %w", order.ID, err)
	}
	shipping, err := lib.DecryptField(order.ShippingAddress, key)
	if err != nil {
		return fmt.Errorf("failed to decrypt shipping address of order %s: %w", order.ID, err)
	}

	order.BillingAddress = billing
	order.ShippingAddress = shipping
	return nil
}

// Confirmation returns an order owned by user. Orders of other users are lib.ErrNotFound.
func (os *OrderService) Confirmation(ctx context.Context, user *structs.AuthClaims, orderID uuid.UUID) (*tables.Order, error) {
	if user == nil {
		return nil, lib.ErrUnauthenticated
	}

	order, err := os.orders.OrderForUser(ctx, orderID, user.Sub)
	if err != nil {
		return nil, fmt.Errorf("order %s: %w", orderID, err)
	}
	if err := os.decryptAddresses(order); err != nil {
		return nil, err
	}
	return order, nil
}

// History lists the user's orders, newest first.
func (os *OrderService) History(ctx context.Context, user *structs.AuthClaims) ([]tables.Order, error) {
	if user == nil {
		return nil, lib.ErrUnauthenticated
	}

	orders, err := os.orders.OrdersForUser(ctx, user.Sub)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		if err := os.decryptAddresses(&orders[i]); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

// AdminList pages through every order, newest first.
func (os *OrderService) AdminList(ctx context.Context, page int) (*OrderPage, error) {
	if page < 1 {
		page = 1
	}
	pageSize := os.cfg.Shop.AdminOrdersLimit

	orders, total, err := os.orders.ListOrders(ctx, page, pageSize)
	if err != nil {
		os.logger.Error("Failed to list orders", gecho.Field("error", err))
		return nil, err
	}
	for i := range orders {
		if err := os.decryptAddresses(&orders[i]); err != nil {
			return nil, err
		}
	}

	return &OrderPage{
		Orders:   orders,
		Page:     page,
		PageSize: pageSize,
		Total:    total,
	}, nil
}
