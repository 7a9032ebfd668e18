package services

import (
	"bengaliboutique_server/lib"
	"bengaliboutique_server/repository"
	"bengaliboutique_server/structs"
	"bengaliboutique_server/structs/tables"
	"context"
	"fmt"
	"strings"

	"github.com/MonkyMars/gecho"
)

type ReviewInput struct {
	Rating int    `json:"rating" validate:"required,min=1,max=5"`
	Text   string `json:"text" validate:"required,max=2000"`
}

type ReviewService struct {
	logger  *gecho.Logger
	catalog repository.CatalogRepository
	reviews repository.ReviewRepository
}

func NewReviewService(logger *gecho.Logger, catalog repository.CatalogRepository, reviews repository.ReviewRepository) *ReviewService {
	return &ReviewService{
		logger:  logger,
		catalog: catalog,
		reviews: reviews,
	}
}

// AddReview records a review by user for the product with slug. Ratings are 1 to 5.
func (rs *ReviewService) AddReview(ctx context.Context, user *structs.AuthClaims, slug string, in ReviewInput) (*tables.Review, error) {
	if user == nil {
		return nil, lib.ErrUnauthenticated
	}

	in.Text = strings.TrimSpace(in.Text)
	if err := lib.Validate(in); err != nil {
		return nil, err
	}

	product, err := rs.catalog.ProductBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("product %q: %w", slug, err)
	}

	review := &tables.Review{
		ProductID: product.ID,
		UserID:    user.Sub,
		Username:  user.Username,
		Rating:    in.Rating,
		Text:      in.Text,
	}
	if err := rs.reviews.AddReview(ctx, review); err != nil {
		rs.logger.Error("Failed to add review", gecho.Field("product_id", product.ID), gecho.Field("error", err))
		return nil, err
	}
	return review, nil
}
