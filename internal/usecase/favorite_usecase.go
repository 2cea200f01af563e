package usecase

import (
	"context"

	"trocly/internal/domain/entity"
	"trocly/internal/domain/repository"
	"trocly/internal/infrastructure/ratelimit"
	"trocly/pkg/errors"
	"trocly/pkg/logger"
)

type FavoriteUseCase struct {
	favoriteRepo repository.FavoriteRepository
	itemRepo     repository.ItemRepository
	rateLimiter  *ratelimit.RateLimiter
}

func NewFavoriteUseCase(favoriteRepo repository.FavoriteRepository, itemRepo repository.ItemRepository, rateLimiter *ratelimit.RateLimiter) *FavoriteUseCase {
	return &FavoriteUseCase{
		favoriteRepo: favoriteRepo,
		itemRepo:     itemRepo,
		rateLimiter:  rateLimiter,
	}
}

func (uc *FavoriteUseCase) AddFavorite(ctx context.Context, userID, itemID string) (*entity.Favorite, error) {
	allowed, waitTime := uc.rateLimiter.Allow(userID, "add_favorite")
	if !allowed {
		logger.Warn("AddFavorite rate limited: user %s must wait %v", userID, waitTime)
		return nil, errors.RateLimited("Too many favorites in a row. Please wait a moment", waitTime)
	}

	item, err := uc.itemRepo.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item.SellerID == userID {
		return nil, errors.BadRequest("You cannot favorite your own item", nil)
	}

	return uc.favoriteRepo.Add(ctx, userID, itemID)
}

func (uc *FavoriteUseCase) RemoveFavorite(ctx context.Context, userID, itemID string) error {
	return uc.favoriteRepo.Remove(ctx, userID, itemID)
}

func (uc *FavoriteUseCase) ListFavorites(ctx context.Context, userID string, limit, offset int) ([]*entity.FavoriteWithItem, int64, error) {
	return uc.favoriteRepo.ListByUserID(ctx, userID, limit, offset)
}

func (uc *FavoriteUseCase) IsFavorite(ctx context.Context, userID, itemID string) (bool, error) {
	return uc.favoriteRepo.IsFavorite(ctx, userID, itemID)
}

func (uc *FavoriteUseCase) CountFavorites(ctx context.Context, userID string) (int64, error) {
	return uc.favoriteRepo.Count(ctx, userID)
}
