package repository

import (
	"context"

	"trocly/internal/domain/entity"
)

type ReviewRepository interface {
	Create(ctx context.Context, review *entity.Review) error
	GetByReviewerAndItem(ctx context.Context, reviewerID, itemID string) (*entity.Review, error)
	ListBySellerID(ctx context.Context, sellerID string, limit, offset int) ([]*entity.Review, int64, error)
}
