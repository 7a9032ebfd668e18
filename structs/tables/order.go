package tables

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

type Order struct {
	bun.BaseModel   `bun:"table:orders,alias:o"`
	ID              uuid.UUID       `bun:"id,pk,type:uuid,default:gen_random_uuid()" json:"id"`
	UserID          uuid.UUID       `bun:"user_id,type:uuid,notnull" json:"user_id"`
	Username        string          `bun:"username,notnull" json:"username"`
	BillingAddress  string          `bun:"billing_address,notnull" json:"billing_address"`
	ShippingAddress string          `bun:"shipping_address,notnull" json:"shipping_address"`
	PaymentMethod   string          `bun:"payment_method,notnull" json:"payment_method"`
	TotalPrice      decimal.Decimal `bun:"total_price,type:numeric(12,2),notnull" json:"total_price"`
	CreatedAt       time.Time       `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`

	Items []OrderItem `bun:"rel:has-many,join:id=order_id" json:"items,omitempty"`
}

type OrderItem struct {
	bun.BaseModel `bun:"table:order_items,alias:oi"`
	ID            uuid.UUID  `bun:"id,pk,type:uuid,default:gen_random_uuid()" json:"id"`
	OrderID       uuid.UUID  `bun:"order_id,type:uuid,notnull" json:"order_id"`
	ProductID     uuid.UUID  `bun:"product_id,type:uuid,notnull" json:"product_id"`
	VariantID     *uuid.UUID `bun:"variant_id,type:uuid,nullzero" json:"variant_id,omitempty"`
	Quantity      int        `bun:"quantity,notnull" json:"quantity"`

	// Snapshot at time of order
	Price       decimal.Decimal `bun:"price,type:numeric(12,2),notnull" json:"price"` // unit price * quantity
	ProductName string          `bun:"product_name,notnull" json:"product_name"`
}
