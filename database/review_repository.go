package database

import (
	"bengaliboutique_server/repository"
	"bengaliboutique_server/structs/tables"
	"context"

	"github.com/google/uuid"
)

type reviewRepository struct {
	db *DB
}

func NewReviewRepository(db *DB) repository.ReviewRepository {
	return &reviewRepository{db: db}
}

func (r *reviewRepository) AddReview(ctx context.Context, review *tables.Review) error {
	_, err := Query[tables.Review](r.db).Insert(ctx, review)
	return err
}

func (r *reviewRepository) ReviewsForProduct(ctx context.Context, productID uuid.UUID) ([]tables.Review, error) {
	return Query[tables.Review](r.db).
		Where("r.product_id", productID).
		OrderBy("r.created_at", DESC).
		All(ctx)
}

func (r *reviewRepository) LatestReviews(ctx context.Context, limit int) ([]tables.Review, error) {
	return Query[tables.Review](r.db).
		OrderBy("r.created_at", DESC).
		Limit(limit).
		All(ctx)
}
