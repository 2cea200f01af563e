package repository

import (
	"context"

	"trocly/internal/domain/entity"
)

type ItemRepository interface {
	Create(ctx context.Context, item *entity.Item) error
	GetByID(ctx context.Context, id string) (*entity.Item, error)
	Update(ctx context.Context, item *entity.Item) error
	List(ctx context.Context, filter map[string]interface{}, limit, offset int) ([]*entity.Item, int64, error)
	ListBySellerID(ctx context.Context, sellerID string, limit, offset int) ([]*entity.Item, int64, error)

	// ListActive returns the unsold candidate pool for recommendations,
	// bounded by limit.
	ListActive(ctx context.Context, limit int) ([]*entity.Item, error)

	IncrementViews(ctx context.Context, id string) error
	MarkSold(ctx context.Context, id string) error

	// View history, bounded and most-recent-first.
	RecordView(ctx context.Context, view *entity.ItemView) error
	ListRecentViews(ctx context.Context, userID string, limit int) ([]*entity.ItemView, error)
}
