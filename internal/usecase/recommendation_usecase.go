package usecase

import (
	"context"
	"sort"
	"strings"

	"trocly/internal/domain/entity"
	"trocly/internal/domain/repository"
)

type RecommendationUseCase struct {
	itemRepo          repository.ItemRepository
	limit             int
	viewHistoryLimit  int
	candidatePoolSize int
}

func NewRecommendationUseCase(itemRepo repository.ItemRepository, limit, viewHistoryLimit, candidatePoolSize int) *RecommendationUseCase {
	return &RecommendationUseCase{
		itemRepo:          itemRepo,
		limit:             limit,
		viewHistoryLimit:  viewHistoryLimit,
		candidatePoolSize: candidatePoolSize,
	}
}

// GetRecommendations ranks active items against the user's recent browsing
// and returns at most the configured limit. A user with no history, or an
// empty pool, gets an empty slice and no error.
func (uc *RecommendationUseCase) GetRecommendations(ctx context.Context, userID string) ([]*entity.Item, error) {
	views, err := uc.itemRepo.ListRecentViews(ctx, userID, uc.viewHistoryLimit)
	if err != nil {
		return nil, err
	}
	if len(views) == 0 {
		return []*entity.Item{}, nil
	}

	pool, err := uc.itemRepo.ListActive(ctx, uc.candidatePoolSize)
	if err != nil {
		return nil, err
	}
	if len(pool) == 0 {
		return []*entity.Item{}, nil
	}

	return rankItems(userID, views, pool, uc.limit), nil
}

// rankItems is pure: category matches weigh heaviest, keyword overlap next,
// and the item's view counter breaks ties. Own, already-viewed and sold items
// never appear.
func rankItems(userID string, views []*entity.ItemView, pool []*entity.Item, limit int) []*entity.Item {
	viewedIDs := make(map[string]bool, len(views))
	categoryWeight := make(map[string]int)
	keywordWeight := make(map[string]int)
	for _, v := range views {
		viewedIDs[v.ItemID] = true
		if v.Category != "" {
			categoryWeight[v.Category]++
		}
		for _, kw := range v.Keywords {
			keywordWeight[strings.ToLower(kw)]++
		}
	}

	type scored struct {
		item  *entity.Item
		score int
	}

	var candidates []scored
	for _, item := range pool {
		if item.SellerID == userID || item.IsSold || viewedIDs[item.ID] {
			continue
		}

		score := 10 * categoryWeight[item.Category]
		for _, kw := range item.Keywords {
			score += keywordWeight[strings.ToLower(kw)]
		}
		if score == 0 {
			continue
		}
		candidates = append(candidates, scored{item: item, score: score})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].item.Views > candidates[j].item.Views
	})

	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	result := make([]*entity.Item, len(candidates))
	for i, c := range candidates {
		result[i] = c.item
	}
	return result
}
