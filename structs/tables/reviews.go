package tables

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type Review struct {
	bun.BaseModel `bun:"table:reviews,alias:r"`
	ID            uuid.UUID `bun:"id,pk,type:uuid,default:gen_random_uuid()" json:"id"`
	ProductID     uuid.UUID `bun:"product_id,type:uuid,notnull" json:"product_id"`
	UserID        uuid.UUID `bun:"user_id,type:uuid,notnull" json:"user_id"`
	Username      string    `bun:"username,notnull" json:"username"`
	Rating        int       `bun:"rating,notnull" json:"rating"`
	Text          string    `bun:"text,notnull" json:"text"`
	CreatedAt     time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
}

// Wishlist rows are unique per (user, product).
type Wishlist struct {
	bun.BaseModel `bun:"table:wishlists,alias:w"`
	ID            uuid.UUID `bun:"id,pk,type:uuid,default:gen_random_uuid()" json:"id"`
	UserID        uuid.UUID `bun:"user_id,type:uuid,notnull,unique:wishlist_user_product" json:"user_id"`
	ProductID     uuid.UUID `bun:"product_id,type:uuid,notnull,unique:wishlist_user_product" json:"product_id"`
	CreatedAt     time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`

	Product *Product `bun:"rel:belongs-to,join:product_id=id" json:"product,omitempty"`
}
