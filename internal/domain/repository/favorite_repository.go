package repository

import (
	"context"

	"trocly/internal/domain/entity"
)

type FavoriteRepository interface {
	Add(ctx context.Context, userID, itemID string) (*entity.Favorite, error)
	Remove(ctx context.Context, userID, itemID string) error
	ListByUserID(ctx context.Context, userID string, limit, offset int) ([]*entity.FavoriteWithItem, int64, error)
	IsFavorite(ctx context.Context, userID, itemID string) (bool, error)
	Count(ctx context.Context, userID string) (int64, error)
}
