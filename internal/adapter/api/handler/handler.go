package handler

import (
	"trocly/internal/usecase"
)

var (
	userHandler           *UserHandler
	itemHandler           *ItemHandler
	favoriteHandler       *FavoriteHandler
	reviewHandler         *ReviewHandler
	recommendationHandler *RecommendationHandler
)

func Setup(
	userUseCase *usecase.UserUseCase,
	itemUseCase *usecase.ItemUseCase,
	favoriteUseCase *usecase.FavoriteUseCase,
	reviewUseCase *usecase.ReviewUseCase,
	recommendationUseCase *usecase.RecommendationUseCase,
) {
	userHandler = NewUserHandler(userUseCase)
	itemHandler = NewItemHandler(itemUseCase)
	favoriteHandler = NewFavoriteHandler(favoriteUseCase)
	reviewHandler = NewReviewHandler(reviewUseCase)
	recommendationHandler = NewRecommendationHandler(recommendationUseCase)
}

func GetUserHandler() *UserHandler {
	return userHandler
}

func GetItemHandler() *ItemHandler {
	return itemHandler
}

func GetFavoriteHandler() *FavoriteHandler {
	return favoriteHandler
}

func GetReviewHandler() *ReviewHandler {
	return reviewHandler
}

func GetRecommendationHandler() *RecommendationHandler {
	return recommendationHandler
}
