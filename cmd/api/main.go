package main

import (
	"context"
	"log"

	"cloud.google.com/go/firestore"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"google.golang.org/api/option"

	fbapp "firebase.google.com/go/v4"

	"trocly/internal/adapter/api"
	"trocly/internal/adapter/api/handler"
	apimiddleware "trocly/internal/adapter/api/middleware"
	"trocly/internal/adapter/api/router"
	"trocly/internal/adapter/repository"
	"trocly/internal/infrastructure/firebase"
	"trocly/internal/infrastructure/ratelimit"
	"trocly/internal/infrastructure/storage"
	"trocly/internal/infrastructure/websocket"
	"trocly/internal/usecase"
	"trocly/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()

	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	firebaseApp, err := fbapp.NewApp(ctx, &fbapp.Config{ProjectID: cfg.FirebaseProject}, opts...)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase: %v", err)
	}

	authClient, err := firebaseApp.Auth(ctx)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase Auth: %v", err)
	}

	firestoreClient, err := firestore.NewClient(ctx, cfg.FirebaseProject, opts...)
	if err != nil {
		log.Fatalf("Failed to create Firestore client: %v", err)
	}
	defer firestoreClient.Close()

	storageClient, err := storage.NewCloudStorageClient(ctx, cfg.StorageBucket, cfg.CredentialsFile)
	if err != nil {
		log.Fatalf("Failed to initialize Cloud Storage: %v", err)
	}
	defer storageClient.Close()

	userRepo := repository.NewFirestoreUserRepository(firestoreClient)
	itemRepo := repository.NewFirestoreItemRepository(firestoreClient)
	threadRepo := repository.NewFirestoreThreadRepository(firestoreClient)
	favoriteRepo := repository.NewFirestoreFavoriteRepository(firestoreClient)
	reviewRepo := repository.NewFirestoreReviewRepository(firestoreClient)

	firebaseAuthClient := firebase.NewFirebaseAuthClient(authClient)

	rateLimiter := ratelimit.NewRateLimiter()
	rateLimiter.StartCleanupRoutine()

	wsManager := websocket.NewManager()
	wsManager.Start(ctx)

	userUseCase := usecase.NewUserUseCase(userRepo)
	itemUseCase := usecase.NewItemUseCase(itemRepo, userRepo)
	messagingUseCase := usecase.NewMessagingUseCase(threadRepo, userRepo, itemRepo, wsManager, storageClient, rateLimiter)
	favoriteUseCase := usecase.NewFavoriteUseCase(favoriteRepo, itemRepo, rateLimiter)
	reviewUseCase := usecase.NewReviewUseCase(reviewRepo, itemRepo, userRepo, rateLimiter)
	recommendationUseCase := usecase.NewRecommendationUseCase(itemRepo, cfg.RecommendationLimit, cfg.ViewHistoryLimit, cfg.CandidatePoolSize)

	handler.Setup(userUseCase, itemUseCase, favoriteUseCase, reviewUseCase, recommendationUseCase)
	handler.SetupFileHandler(storageClient)
	handler.SetupHealthHandler(firestoreClient)

	e := echo.New()

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	e.Validator = api.NewValidator()

	authMiddleware := apimiddleware.NewAuthMiddleware(authClient)

	messagingHandler := handler.NewMessagingHandler(messagingUseCase)
	wsHandler := handler.NewWebSocketHandler(wsManager, firebaseAuthClient, messagingUseCase)

	router.Setup(e, authMiddleware)
	router.SetupMessagingRouter(e, messagingHandler, authMiddleware)
	router.SetupWebSocketRouter(e, wsHandler)

	log.Printf("Starting server on port %s...", cfg.ServerPort)
	e.Logger.Fatal(e.Start(":" + cfg.ServerPort))
}
