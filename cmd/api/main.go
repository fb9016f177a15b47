package main

import (
	"context"
	"log"
	"os"

	"cloud.google.com/go/firestore"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"google.golang.org/api/option"

	fbapp "firebase.google.com/go/v4"

	"tradepost/internal/adapter/api"
	"tradepost/internal/adapter/api/handler"
	apimiddleware "tradepost/internal/adapter/api/middleware"
	"tradepost/internal/adapter/api/router"
	"tradepost/internal/adapter/repository"
	"tradepost/internal/domain/service"
	"tradepost/internal/infrastructure/metrics"
	"tradepost/internal/infrastructure/notification"
	"tradepost/internal/infrastructure/websocket"
	"tradepost/internal/usecase"
	"tradepost/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()

	var opts []option.ClientOption
	if serviceAccountJSON := os.Getenv("FIREBASE_SERVICE_ACCOUNT_JSON"); serviceAccountJSON != "" {
		log.Printf("Using Firebase service account from environment variable")
		opts = append(opts, option.WithCredentialsJSON([]byte(serviceAccountJSON)))
	} else if serviceAccountPath := os.Getenv("FIREBASE_SERVICE_ACCOUNT_PATH"); serviceAccountPath != "" {
		log.Printf("Using Firebase service account from file: %s", serviceAccountPath)
		opts = append(opts, option.WithCredentialsFile(serviceAccountPath))
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

	userRepo := repository.NewFirestoreUserRepository(firestoreClient)
	productRepo := repository.NewFirestoreProductRepository(firestoreClient)
	transactionRepo := repository.NewFirestoreTransactionRepository(firestoreClient)
	chatRepo := repository.NewFirestoreChatRepository(firestoreClient)
	tokenRepo := repository.NewFirestoreTokenRepository(firestoreClient)

	publisher := notification.NewPublisher(cfg.AmqpURL, cfg.AmqpExchange)
	defer publisher.Close()

	wsManager := websocket.NewManager()

	chatUseCase := usecase.NewChatUseCase(chatRepo, userRepo, productRepo, wsManager, publisher)
	transactionUseCase := usecase.NewTransactionUseCase(transactionRepo, productRepo, userRepo, chatUseCase, publisher)

	paymentGateway := service.NewKakaoPayService(cfg.KakaoPayAdminKey, cfg.KakaoPayCID, cfg.KakaoPayBaseURL)
	paymentUseCase := usecase.NewPaymentUseCase(transactionRepo, productRepo, paymentGateway, chatUseCase, publisher, cfg.BaseURL)

	authTokenUseCase := usecase.NewAuthTokenUseCase(tokenRepo, userRepo)

	authMiddleware := apimiddleware.NewAuthMiddleware(authClient)
	wsSession := websocket.NewSession(wsManager, authMiddleware, chatUseCase)

	handler.Setup(chatUseCase, transactionUseCase, paymentUseCase)
	handler.SetupWebSocketHandler(wsManager, wsSession)
	handler.SetupAuthHandler(authTokenUseCase)
	handler.SetupHealthHandler()

	e := echo.New()

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(metrics.Middleware())

	e.Validator = api.NewValidator()

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	router.Setup(e, authMiddleware)

	log.Printf("Starting server on port %s...", cfg.ServerPort)
	e.Logger.Fatal(e.Start(":" + cfg.ServerPort))
}
