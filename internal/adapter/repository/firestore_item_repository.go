package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"trocly/internal/domain/entity"
	"trocly/internal/domain/repository"
	"trocly/pkg/errors"
	"trocly/pkg/logger"
)

type firestoreItemRepository struct {
	client *firestore.Client
}

func NewFirestoreItemRepository(client *firestore.Client) repository.ItemRepository {
	return &firestoreItemRepository{
		client: client,
	}
}

func (r *firestoreItemRepository) Create(ctx context.Context, item *entity.Item) error {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}

	now := time.Now()
	item.CreatedAt = now
	item.UpdatedAt = now

	_, err := r.client.Collection("items").Doc(item.ID).Set(ctx, item)
	if err != nil {
		return errors.FromFirestore("create item", err)
	}

	return nil
}

func (r *firestoreItemRepository) GetByID(ctx context.Context, id string) (*entity.Item, error) {
	doc, err := r.client.Collection("items").Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Item", err)
		}
		return nil, errors.FromFirestore("get item", err)
	}

	var item entity.Item
	if err := doc.DataTo(&item); err != nil {
		return nil, errors.Unexpected("Failed to parse item data", err)
	}

	return &item, nil
}

func (r *firestoreItemRepository) Update(ctx context.Context, item *entity.Item) error {
	item.UpdatedAt = time.Now()

	_, err := r.client.Collection("items").Doc(item.ID).Set(ctx, item)
	if err != nil {
		return errors.FromFirestore("update item", err)
	}

	return nil
}

func (r *firestoreItemRepository) List(ctx context.Context, filter map[string]interface{}, limit, offset int) ([]*entity.Item, int64, error) {
	query := r.client.Collection("items").Query

	if category, ok := filter["category"].(string); ok && category != "" {
		query = query.Where("category", "==", category)
	}
	if sellerID, ok := filter["sellerId"].(string); ok && sellerID != "" {
		query = query.Where("sellerId", "==", sellerID)
	}
	if isSold, ok := filter["isSold"].(bool); ok {
		query = query.Where("isSold", "==", isSold)
	}
	if minPrice, ok := filter["minPrice"].(float64); ok && minPrice > 0 {
		query = query.Where("price", ">=", minPrice)
	}
	if maxPrice, ok := filter["maxPrice"].(float64); ok && maxPrice > 0 {
		query = query.Where("price", "<=", maxPrice)
	}

	query = query.OrderBy("createdAt", firestore.Desc)

	allDocs, err := query.Documents(ctx).GetAll()
	if err != nil {
		logger.Error("Firestore error while listing items: %v", err)
		return nil, 0, errors.FromFirestore("list items", err)
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

	var items []*entity.Item
	for i := start; i < end; i++ {
		var item entity.Item
		if err := allDocs[i].DataTo(&item); err != nil {
			logger.Warn("Skipping malformed item document: %v", err)
			continue
		}
		items = append(items, &item)
	}

	return items, total, nil
}

func (r *firestoreItemRepository) ListBySellerID(ctx context.Context, sellerID string, limit, offset int) ([]*entity.Item, int64, error) {
	return r.List(ctx, map[string]interface{}{"sellerId": sellerID}, limit, offset)
}

func (r *firestoreItemRepository) ListActive(ctx context.Context, limit int) ([]*entity.Item, error) {
	query := r.client.Collection("items").
		Where("isSold", "==", false).
		OrderBy("createdAt", firestore.Desc)
	if limit > 0 {
		query = query.Limit(limit)
	}

	iter := query.Documents(ctx)
	var items []*entity.Item

	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errors.FromFirestore("list active items", err)
		}

		var item entity.Item
		if err := doc.DataTo(&item); err != nil {
			continue
		}
		items = append(items, &item)
	}

	return items, nil
}

func (r *firestoreItemRepository) IncrementViews(ctx context.Context, id string) error {
	docRef := r.client.Collection("items").Doc(id)

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(docRef)
		if err != nil {
			return err
		}

		var item entity.Item
		if err := doc.DataTo(&item); err != nil {
			return err
		}

		return tx.Update(docRef, []firestore.Update{
			{Path: "views", Value: item.Views + 1},
		})
	})
	if err != nil {
		return errors.FromFirestore("increment item views", err)
	}

	return nil
}

func (r *firestoreItemRepository) MarkSold(ctx context.Context, id string) error {
	_, err := r.client.Collection("items").Doc(id).Update(ctx, []firestore.Update{
		{Path: "isSold", Value: true},
		{Path: "updatedAt", Value: time.Now()},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return errors.NotFound("Item", err)
		}
		return errors.FromFirestore("mark item sold", err)
	}
	return nil
}

func (r *firestoreItemRepository) RecordView(ctx context.Context, view *entity.ItemView) error {
	if view.ID == "" {
		view.ID = uuid.New().String()
	}
	view.ViewedAt = time.Now()

	_, err := r.client.Collection("users").Doc(view.UserID).Collection("recentViews").Doc(view.ID).Set(ctx, view)
	if err != nil {
		return errors.FromFirestore("record item view", err)
	}

	return nil
}

func (r *firestoreItemRepository) ListRecentViews(ctx context.Context, userID string, limit int) ([]*entity.ItemView, error) {
	query := r.client.Collection("users").Doc(userID).Collection("recentViews").
		OrderBy("viewedAt", firestore.Desc)
	if limit > 0 {
		query = query.Limit(limit)
	}

	iter := query.Documents(ctx)
	var views []*entity.ItemView

	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errors.FromFirestore("list recent views", err)
		}

		var view entity.ItemView
		if err := doc.DataTo(&view); err != nil {
			continue
		}
		views = append(views, &view)
	}

	return views, nil
}
