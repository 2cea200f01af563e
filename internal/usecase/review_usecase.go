package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"trocly/internal/domain/entity"
	"trocly/internal/domain/repository"
	"trocly/internal/infrastructure/ratelimit"
	"trocly/pkg/errors"
	"trocly/pkg/logger"
)

type ReviewUseCase struct {
	reviewRepo  repository.ReviewRepository
	itemRepo    repository.ItemRepository
	userRepo    repository.UserRepository
	rateLimiter *ratelimit.RateLimiter
}

func NewReviewUseCase(
	reviewRepo repository.ReviewRepository,
	itemRepo repository.ItemRepository,
	userRepo repository.UserRepository,
	rateLimiter *ratelimit.RateLimiter,
) *ReviewUseCase {
	return &ReviewUseCase{
		reviewRepo:  reviewRepo,
		itemRepo:    itemRepo,
		userRepo:    userRepo,
		rateLimiter: rateLimiter,
	}
}

type SubmitReviewInput struct {
	ItemID  string
	Rating  int
	Comment string
}

// SubmitReview records a buyer's review of a seller for one item. One review
// per reviewer and item; the seller's denormalized rating is recomputed
// best-effort afterwards.
func (uc *ReviewUseCase) SubmitReview(ctx context.Context, reviewerID string, input SubmitReviewInput) (*entity.Review, error) {
	if input.Rating < 1 || input.Rating > 5 {
		return nil, errors.BadRequest("Rating must be between 1 and 5", nil)
	}

	allowed, waitTime := uc.rateLimiter.Allow(reviewerID, "submit_review")
	if !allowed {
		logger.Warn("SubmitReview rate limited: user %s must wait %v", reviewerID, waitTime)
		return nil, errors.RateLimited("Too many reviews in a row. Please wait before submitting another", waitTime)
	}

	item, err := uc.itemRepo.GetByID(ctx, input.ItemID)
	if err != nil {
		return nil, err
	}
	if item.SellerID == reviewerID {
		return nil, errors.BadRequest("You cannot review your own item", nil)
	}

	if existing, err := uc.reviewRepo.GetByReviewerAndItem(ctx, reviewerID, input.ItemID); err == nil && existing != nil {
		return nil, errors.Conflict("You have already reviewed this item", nil)
	} else if err != nil && !errors.Is(err, "NOT_FOUND") {
		return nil, err
	}

	review := &entity.Review{
		ID:         uuid.New().String(),
		ItemID:     input.ItemID,
		SellerID:   item.SellerID,
		ReviewerID: reviewerID,
		Rating:     input.Rating,
		Comment:    input.Comment,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}

	if err := uc.reviewRepo.Create(ctx, review); err != nil {
		return nil, err
	}

	if err := uc.recomputeSellerRating(ctx, item.SellerID); err != nil {
		logger.Warn("Failed to recompute rating for seller %s: %v", item.SellerID, err)
	}

	return review, nil
}

func (uc *ReviewUseCase) ListSellerReviews(ctx context.Context, sellerID string, limit, offset int) ([]*entity.Review, int64, error) {
	return uc.reviewRepo.ListBySellerID(ctx, sellerID, limit, offset)
}

func (uc *ReviewUseCase) recomputeSellerRating(ctx context.Context, sellerID string) error {
	reviews, total, err := uc.reviewRepo.ListBySellerID(ctx, sellerID, 1000, 0)
	if err != nil {
		return err
	}
	if total == 0 {
		return nil
	}

	sum := 0
	for _, r := range reviews {
		sum += r.Rating
	}

	seller, err := uc.userRepo.GetByID(ctx, sellerID)
	if err != nil {
		return err
	}
	seller.SellerRating = float64(sum) / float64(len(reviews))
	seller.SellerReviewCount = len(reviews)
	seller.UpdatedAt = time.Now()

	return uc.userRepo.Update(ctx, seller)
}
