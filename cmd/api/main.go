package main

import (
	"context"
	"log"
	"os"

	"cloud.google.com/go/firestore"
	fbapp "firebase.google.com/go/v4"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"google.golang.org/api/option"

	"driveattach/internal/adapter/api"
	"driveattach/internal/adapter/api/handler"
	apimiddleware "driveattach/internal/adapter/api/middleware"
	"driveattach/internal/adapter/api/router"
	"driveattach/internal/adapter/repository"
	"driveattach/internal/infrastructure/gdrive"
	"driveattach/internal/infrastructure/localstore"
	"driveattach/internal/usecase"
	"driveattach/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()

	var opt option.ClientOption
	if serviceAccountJSON := os.Getenv("FIREBASE_SERVICE_ACCOUNT_JSON"); serviceAccountJSON != "" {
		opt = option.WithCredentialsJSON([]byte(serviceAccountJSON))
	} else {
		serviceAccountPath := os.Getenv("FIREBASE_SERVICE_ACCOUNT_PATH")
		if serviceAccountPath == "" {
			serviceAccountPath = "./service-account.json"
		}
		if _, err := os.Stat(serviceAccountPath); os.IsNotExist(err) {
			log.Fatalf("Service account file does not exist: %s", serviceAccountPath)
		}
		opt = option.WithCredentialsFile(serviceAccountPath)
	}

	firebaseApp, err := fbapp.NewApp(ctx, &fbapp.Config{ProjectID: cfg.FirebaseProject}, opt)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase: %v", err)
	}

	authClient, err := firebaseApp.Auth(ctx)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase Auth: %v", err)
	}

	firestoreClient, err := firestore.NewClient(ctx, cfg.FirebaseProject, opt)
	if err != nil {
		log.Fatalf("Failed to create Firestore client: %v", err)
	}
	defer firestoreClient.Close()

	fileRepo := repository.NewFirestoreFileRecordRepository(firestoreClient)
	configRepo := repository.NewFirestoreDriveConfigRepository(firestoreClient)
	documentStore := repository.NewFirestoreDocumentStore(firestoreClient)

	localStore := localstore.New(cfg.SiteDir)

	configUseCase := usecase.NewConfigUseCase(configRepo)

	oauth := gdrive.NewOAuth(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL)
	driveClient := gdrive.NewClient(oauth, configUseCase)

	lifecycleUseCase := usecase.NewLifecycleUseCase(
		fileRepo,
		documentStore,
		driveClient,
		configUseCase,
		localStore,
		cfg.IgnoreEntityTypes,
		cfg.ImageFields,
	)
	authUseCase := usecase.NewAuthUseCase(configUseCase, oauth)

	// Document lifecycle hooks: offload after insert, Drive cleanup before
	// delete.
	fileRepo.AfterInsert(lifecycleUseCase.OnFileCreated)
	fileRepo.BeforeDelete(lifecycleUseCase.OnFileDeleted)

	handler.Setup(fileRepo, localStore, lifecycleUseCase, authUseCase, configUseCase, driveClient)
	handler.SetupHealthHandler()

	e := echo.New()

	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())

	e.Validator = api.NewValidator()

	authMiddleware := apimiddleware.NewAuthMiddleware(authClient)

	router.Setup(e, authMiddleware)

	log.Printf("Starting server on port %s...", cfg.ServerPort)
	e.Logger.Fatal(e.Start(":" + cfg.ServerPort))
}
