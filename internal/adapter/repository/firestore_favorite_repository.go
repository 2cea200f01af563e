package repository

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"trocly/internal/domain/entity"
	"trocly/internal/domain/repository"
	"trocly/pkg/errors"
	"trocly/pkg/logger"
)

type firestoreFavoriteRepository struct {
	client *firestore.Client
}

func NewFirestoreFavoriteRepository(client *firestore.Client) repository.FavoriteRepository {
	return &firestoreFavoriteRepository{client: client}
}

// Favorites use a deterministic doc id so a user can never favorite the same
// item twice.
func favoriteID(userID, itemID string) string {
	return fmt.Sprintf("%s_%s", userID, itemID)
}

func (r *firestoreFavoriteRepository) Add(ctx context.Context, userID, itemID string) (*entity.Favorite, error) {
	itemSnap, err := r.client.Collection("items").Doc(itemID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Item", err)
		}
		return nil, errors.FromFirestore("get item", err)
	}

	var item entity.Item
	if err := itemSnap.DataTo(&item); err != nil {
		return nil, errors.Unexpected("Failed to parse item data", err)
	}

	if item.IsSold {
		return nil, errors.BadRequest("Cannot favorite a sold item", nil)
	}

	favorite := entity.Favorite{
		ID:        favoriteID(userID, itemID),
		UserID:    userID,
		ItemID:    itemID,
		CreatedAt: time.Now(),
	}

	_, err = r.client.Collection("favorites").Doc(favorite.ID).Set(ctx, favorite)
	if err != nil {
		return nil, errors.FromFirestore("add favorite", err)
	}

	logger.Info("Added item %s to favorites for user %s", itemID, userID)
	return &favorite, nil
}

func (r *firestoreFavoriteRepository) Remove(ctx context.Context, userID, itemID string) error {
	_, err := r.client.Collection("favorites").Doc(favoriteID(userID, itemID)).Delete(ctx)
	if err != nil {
		return errors.FromFirestore("remove favorite", err)
	}
	return nil
}

func (r *firestoreFavoriteRepository) ListByUserID(ctx context.Context, userID string, limit, offset int) ([]*entity.FavoriteWithItem, int64, error) {
	query := r.client.Collection("favorites").
		Where("userId", "==", userID).
		OrderBy("createdAt", firestore.Desc)

	allDocs, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, 0, errors.FromFirestore("list favorites", err)
	}

	total := int64(len(allDocs))

	start := offset
	end := len(allDocs)
	if limit > 0 {
		end = start + limit
		if end > len(allDocs) {
			end = len(allDocs)
		}
	}
	if start > len(allDocs) {
		start = len(allDocs)
	}

	var favorites []*entity.FavoriteWithItem
	for i := start; i < end; i++ {
		var favorite entity.Favorite
		if err := allDocs[i].DataTo(&favorite); err != nil {
			logger.Warn("Skipping malformed favorite document for user %s: %v", userID, err)
			continue
		}

		withItem := &entity.FavoriteWithItem{
			ID:        favorite.ID,
			UserID:    favorite.UserID,
			ItemID:    favorite.ItemID,
			CreatedAt: favorite.CreatedAt,
		}

		itemSnap, err := r.client.Collection("items").Doc(favorite.ItemID).Get(ctx)
		if err == nil {
			var item entity.Item
			if err := itemSnap.DataTo(&item); err == nil {
				withItem.Item = &item
			}
		}

		favorites = append(favorites, withItem)
	}

	return favorites, total, nil
}

func (r *firestoreFavoriteRepository) IsFavorite(ctx context.Context, userID, itemID string) (bool, error) {
	_, err := r.client.Collection("favorites").Doc(favoriteID(userID, itemID)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return false, nil
		}
		return false, errors.FromFirestore("check favorite", err)
	}
	return true, nil
}

func (r *firestoreFavoriteRepository) Count(ctx context.Context, userID string) (int64, error) {
	docs, err := r.client.Collection("favorites").Where("userId", "==", userID).Documents(ctx).GetAll()
	if err != nil {
		return 0, errors.FromFirestore("count favorites", err)
	}
	return int64(len(docs)), nil
}
