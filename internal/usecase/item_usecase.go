package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"trocly/internal/domain/entity"
	"trocly/internal/domain/repository"
	"trocly/pkg/errors"
	"trocly/pkg/logger"
)

type ItemUseCase struct {
	itemRepo repository.ItemRepository
	userRepo repository.UserRepository
}

func NewItemUseCase(itemRepo repository.ItemRepository, userRepo repository.UserRepository) *ItemUseCase {
	return &ItemUseCase{
		itemRepo: itemRepo,
		userRepo: userRepo,
	}
}

type CreateItemInput struct {
	Title       string
	Description string
	Category    string
	Keywords    []string
	Price       float64
	ImageURLs   []string
}

type UpdateItemInput struct {
	Title       string
	Description string
	Category    string
	Keywords    []string
	Price       float64
	ImageURLs   []string
}

func (uc *ItemUseCase) CreateItem(ctx context.Context, sellerID string, input CreateItemInput) (*entity.Item, error) {
	seller, err := uc.userRepo.GetByID(ctx, sellerID)
	if err != nil {
		return nil, err
	}

	item := &entity.Item{
		ID:          uuid.New().String(),
		SellerID:    sellerID,
		SellerName:  seller.Name,
		Title:       input.Title,
		Description: input.Description,
		Category:    input.Category,
		Keywords:    input.Keywords,
		Price:       input.Price,
		ImageURLs:   input.ImageURLs,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	if err := uc.itemRepo.Create(ctx, item); err != nil {
		return nil, err
	}

	return item, nil
}

// GetItem fetches an item and, when a signed-in viewer other than the seller
// looks at it, bumps the view counter and records the view for the
// recommendation history. Both are best-effort.
func (uc *ItemUseCase) GetItem(ctx context.Context, id, viewerID string) (*entity.Item, error) {
	item, err := uc.itemRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if viewerID != "" && viewerID != item.SellerID {
		if err := uc.itemRepo.IncrementViews(ctx, id); err != nil {
			logger.Warn("Failed to increment views for item %s: %v", id, err)
		}
		view := &entity.ItemView{
			ID:       uuid.New().String(),
			UserID:   viewerID,
			ItemID:   item.ID,
			Category: item.Category,
			Keywords: item.Keywords,
			ViewedAt: time.Now(),
		}
		if err := uc.itemRepo.RecordView(ctx, view); err != nil {
			logger.Warn("Failed to record view for item %s: %v", id, err)
		}
	}

	return item, nil
}

func (uc *ItemUseCase) ListItems(ctx context.Context, filter map[string]interface{}, limit, offset int) ([]*entity.Item, int64, error) {
	return uc.itemRepo.List(ctx, filter, limit, offset)
}

func (uc *ItemUseCase) ListSellerItems(ctx context.Context, sellerID string, limit, offset int) ([]*entity.Item, int64, error) {
	return uc.itemRepo.ListBySellerID(ctx, sellerID, limit, offset)
}

func (uc *ItemUseCase) UpdateItem(ctx context.Context, userID, id string, input UpdateItemInput) (*entity.Item, error) {
	item, err := uc.itemRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item.SellerID != userID {
		return nil, errors.Forbidden("Only the seller can edit this item", nil)
	}

	item.Title = input.Title
	item.Description = input.Description
	item.Category = input.Category
	item.Keywords = input.Keywords
	item.Price = input.Price
	item.ImageURLs = input.ImageURLs
	item.UpdatedAt = time.Now()

	if err := uc.itemRepo.Update(ctx, item); err != nil {
		return nil, err
	}

	return item, nil
}

func (uc *ItemUseCase) MarkItemSold(ctx context.Context, userID, id string) error {
	item, err := uc.itemRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if item.SellerID != userID {
		return errors.Forbidden("Only the seller can mark this item as sold", nil)
	}

	return uc.itemRepo.MarkSold(ctx, id)
}
