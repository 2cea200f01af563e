package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"

	"trocly/internal/domain/entity"
	"trocly/internal/domain/repository"
	"trocly/pkg/errors"
)

type firestoreReviewRepository struct {
	client *firestore.Client
}

func NewFirestoreReviewRepository(client *firestore.Client) repository.ReviewRepository {
	return &firestoreReviewRepository{
		client: client,
	}
}

func (r *firestoreReviewRepository) Create(ctx context.Context, review *entity.Review) error {
	if review.ID == "" {
		review.ID = uuid.New().String()
	}

	now := time.Now()
	review.CreatedAt = now
	review.UpdatedAt = now

	_, err := r.client.Collection("reviews").Doc(review.ID).Set(ctx, review)
	if err != nil {
		return errors.FromFirestore("create review", err)
	}

	return nil
}

func (r *firestoreReviewRepository) GetByReviewerAndItem(ctx context.Context, reviewerID, itemID string) (*entity.Review, error) {
	query := r.client.Collection("reviews").
		Where("reviewerId", "==", reviewerID).
		Where("itemId", "==", itemID).
		Limit(1)

	iter := query.Documents(ctx)
	doc, err := iter.Next()
	if err != nil {
		if err == iterator.Done {
			return nil, errors.NotFound("Review", nil)
		}
		return nil, errors.FromFirestore("query review", err)
	}

	var review entity.Review
	if err := doc.DataTo(&review); err != nil {
		return nil, errors.Unexpected("Failed to parse review data", err)
	}

	return &review, nil
}

func (r *firestoreReviewRepository) ListBySellerID(ctx context.Context, sellerID string, limit, offset int) ([]*entity.Review, int64, error) {
	query := r.client.Collection("reviews").
		Where("sellerId", "==", sellerID).
		OrderBy("createdAt", firestore.Desc)

	allDocs, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, 0, errors.FromFirestore("list reviews", err)
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

	var reviews []*entity.Review
	for i := start; i < end; i++ {
		var review entity.Review
		if err := allDocs[i].DataTo(&review); err != nil {
			continue
		}
		reviews = append(reviews, &review)
	}

	return reviews, total, nil
}
