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

type WishlistService struct {
	logger    *gecho.Logger
	catalog   repository.CatalogRepository
	wishlists repository.WishlistRepository
}

func NewWishlistService(logger *gecho.Logger, catalog repository.CatalogRepository, wishlists repository.WishlistRepository) *WishlistService {
	return &WishlistService{
		logger:    logger,
		catalog:   catalog,
		wishlists: wishlists,
	}
}

func (ws *WishlistService) requireProduct(ctx context.Context, productID uuid.UUID) error {
	if _, err := ws.catalog.ProductByID(ctx, productID); err != nil {
		return fmt.Errorf("product %s: %w", productID, err)
	}
	return nil
}

// Add puts the product on the user's wishlist. Adding twice keeps one entry; created
// reports whether this call inserted it.
func (ws *WishlistService) Add(ctx context.Context, user *structs.AuthClaims, productID uuid.UUID) (bool, error) {
	if user == nil {
		return false, lib.ErrUnauthenticated
	}
	if err := ws.requireProduct(ctx, productID); err != nil {
		return false, err
	}
	return ws.wishlists.AddToWishlist(ctx, user.Sub, productID)
}

func (ws *WishlistService) Remove(ctx context.Context, user *structs.AuthClaims, productID uuid.UUID) error {
	if user == nil {
		return lib.ErrUnauthenticated
	}
	if err := ws.requireProduct(ctx, productID); err != nil {
		return err
	}
	return ws.wishlists.RemoveFromWishlist(ctx, user.Sub, productID)
}

func (ws *WishlistService) List(ctx context.Context, user *structs.AuthClaims) ([]tables.Wishlist, error) {
	if user == nil {
		return nil, lib.ErrUnauthenticated
	}
	return ws.wishlists.Wishlist(ctx, user.Sub)
}
