package database

import (
	"bengaliboutique_server/lib"
	"bengaliboutique_server/repository"
	"bengaliboutique_server/structs/tables"
	"context"

	"github.com/google/uuid"
)

type wishlistRepository struct {
	db *DB
}

func NewWishlistRepository(db *DB) repository.WishlistRepository {
	return &wishlistRepository{db: db}
}

func (r *wishlistRepository) AddToWishlist(ctx context.Context, userID, productID uuid.UUID) (bool, error) {
	entry := &tables.Wishlist{UserID: userID, ProductID: productID}

	res, err := r.db.NewInsert().
		Model(entry).
		On("CONFLICT (user_id, product_id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return false, lib.MapPgError(err)
	}

	inserted, _ := res.RowsAffected()
	return inserted > 0, nil
}

func (r *wishlistRepository) RemoveFromWishlist(ctx context.Context, userID, productID uuid.UUID) error {
	_, err := Query[tables.Wishlist](r.db).
		Where("user_id", userID).
		Where("product_id", productID).
		Delete(ctx)
	return err
}

func (r *wishlistRepository) Wishlist(ctx context.Context, userID uuid.UUID) ([]tables.Wishlist, error) {
	return Query[tables.Wishlist](r.db).
		Relation("Product").
		Where("w.user_id", userID).
		OrderBy("w.created_at", DESC).
		All(ctx)
}
