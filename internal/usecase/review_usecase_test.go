package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trocly/internal/domain/entity"
	"trocly/internal/infrastructure/ratelimit"
	"trocly/pkg/errors"
)

type fakeReviewRepo struct {
	reviews map[string]*entity.Review
}

func newFakeReviewRepo() *fakeReviewRepo {
	return &fakeReviewRepo{reviews: make(map[string]*entity.Review)}
}

func (r *fakeReviewRepo) Create(ctx context.Context, review *entity.Review) error {
	r.reviews[review.ID] = review
	return nil
}

func (r *fakeReviewRepo) GetByReviewerAndItem(ctx context.Context, reviewerID, itemID string) (*entity.Review, error) {
	for _, review := range r.reviews {
		if review.ReviewerID == reviewerID && review.ItemID == itemID {
			return review, nil
		}
	}
	return nil, errors.NotFound("Review", nil)
}

func (r *fakeReviewRepo) ListBySellerID(ctx context.Context, sellerID string, limit, offset int) ([]*entity.Review, int64, error) {
	var result []*entity.Review
	for _, review := range r.reviews {
		if review.SellerID == sellerID {
			result = append(result, review)
		}
	}
	return result, int64(len(result)), nil
}

func newReviewFixture(t *testing.T) (*ReviewUseCase, *fakeUserRepo) {
	t.Helper()

	users := newFakeUserRepo(
		&entity.User{ID: "alice", Name: "Alice"},
		&entity.User{ID: "bob", Name: "Bob"},
	)
	items := newFakeItemRepo(
		&entity.Item{ID: "item-1", SellerID: "bob", Title: "Bike"},
	)

	return NewReviewUseCase(newFakeReviewRepo(), items, users, ratelimit.NewRateLimiter()), users
}

func TestSubmitReviewUpdatesSellerRating(t *testing.T) {
	uc, users := newReviewFixture(t)
	ctx := context.Background()

	review, err := uc.SubmitReview(ctx, "alice", SubmitReviewInput{ItemID: "item-1", Rating: 4, Comment: "smooth deal"})
	require.NoError(t, err)
	assert.Equal(t, "bob", review.SellerID)

	seller, err := users.GetByID(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, 4.0, seller.SellerRating)
	assert.Equal(t, 1, seller.SellerReviewCount)
}

func TestSubmitReviewValidation(t *testing.T) {
	uc, _ := newReviewFixture(t)
	ctx := context.Background()

	_, err := uc.SubmitReview(ctx, "alice", SubmitReviewInput{ItemID: "item-1", Rating: 0})
	assert.True(t, errors.Is(err, "BAD_REQUEST"))

	_, err = uc.SubmitReview(ctx, "alice", SubmitReviewInput{ItemID: "item-1", Rating: 6})
	assert.True(t, errors.Is(err, "BAD_REQUEST"))

	// Sellers cannot review themselves.
	_, err = uc.SubmitReview(ctx, "bob", SubmitReviewInput{ItemID: "item-1", Rating: 5})
	assert.True(t, errors.Is(err, "BAD_REQUEST"))
}

func TestSubmitReviewOncePerItem(t *testing.T) {
	uc, _ := newReviewFixture(t)
	ctx := context.Background()

	_, err := uc.SubmitReview(ctx, "alice", SubmitReviewInput{ItemID: "item-1", Rating: 5})
	require.NoError(t, err)

	_, err = uc.SubmitReview(ctx, "alice", SubmitReviewInput{ItemID: "item-1", Rating: 1})
	assert.True(t, errors.Is(err, "CONFLICT"))
}
