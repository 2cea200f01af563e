package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trocly/internal/domain/entity"
	"trocly/internal/infrastructure/ratelimit"
	"trocly/pkg/errors"
)

type fakeFavoriteRepo struct {
	favorites map[string]*entity.Favorite
	items     *fakeItemRepo
}

func newFakeFavoriteRepo(items *fakeItemRepo) *fakeFavoriteRepo {
	return &fakeFavoriteRepo{
		favorites: make(map[string]*entity.Favorite),
		items:     items,
	}
}

func (r *fakeFavoriteRepo) Add(ctx context.Context, userID, itemID string) (*entity.Favorite, error) {
	if _, ok := r.items.items[itemID]; !ok {
		return nil, errors.NotFound("Item", nil)
	}
	id := userID + "_" + itemID
	favorite := &entity.Favorite{ID: id, UserID: userID, ItemID: itemID, CreatedAt: time.Now()}
	r.favorites[id] = favorite
	return favorite, nil
}

func (r *fakeFavoriteRepo) Remove(ctx context.Context, userID, itemID string) error {
	delete(r.favorites, userID+"_"+itemID)
	return nil
}

func (r *fakeFavoriteRepo) ListByUserID(ctx context.Context, userID string, limit, offset int) ([]*entity.FavoriteWithItem, int64, error) {
	var result []*entity.FavoriteWithItem
	for _, f := range r.favorites {
		if f.UserID != userID {
			continue
		}
		result = append(result, &entity.FavoriteWithItem{
			ID:        f.ID,
			UserID:    f.UserID,
			ItemID:    f.ItemID,
			Item:      r.items.items[f.ItemID],
			CreatedAt: f.CreatedAt,
		})
	}
	return result, int64(len(result)), nil
}

func (r *fakeFavoriteRepo) IsFavorite(ctx context.Context, userID, itemID string) (bool, error) {
	_, ok := r.favorites[userID+"_"+itemID]
	return ok, nil
}

func (r *fakeFavoriteRepo) Count(ctx context.Context, userID string) (int64, error) {
	var count int64
	for _, f := range r.favorites {
		if f.UserID == userID {
			count++
		}
	}
	return count, nil
}

func TestAddFavoriteRejectsOwnItem(t *testing.T) {
	items := newFakeItemRepo(&entity.Item{ID: "item-1", SellerID: "alice"})
	uc := NewFavoriteUseCase(newFakeFavoriteRepo(items), items, ratelimit.NewRateLimiter())

	_, err := uc.AddFavorite(context.Background(), "alice", "item-1")
	assert.True(t, errors.Is(err, "BAD_REQUEST"))
}

func TestAddAndRemoveFavorite(t *testing.T) {
	items := newFakeItemRepo(&entity.Item{ID: "item-1", SellerID: "bob", Title: "Bike"})
	uc := NewFavoriteUseCase(newFakeFavoriteRepo(items), items, ratelimit.NewRateLimiter())
	ctx := context.Background()

	favorite, err := uc.AddFavorite(ctx, "alice", "item-1")
	require.NoError(t, err)
	assert.Equal(t, "alice_item-1", favorite.ID)

	isFavorite, err := uc.IsFavorite(ctx, "alice", "item-1")
	require.NoError(t, err)
	assert.True(t, isFavorite)

	listed, total, err := uc.ListFavorites(ctx, "alice", 20, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, listed, 1)
	assert.Equal(t, "Bike", listed[0].Item.Title)

	count, err := uc.CountFavorites(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	require.NoError(t, uc.RemoveFavorite(ctx, "alice", "item-1"))
	isFavorite, err = uc.IsFavorite(ctx, "alice", "item-1")
	require.NoError(t, err)
	assert.False(t, isFavorite)
}
