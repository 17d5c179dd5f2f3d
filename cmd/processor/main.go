package main

import (
	"context"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	log "github.com/sirupsen/logrus"

	"github.com/ateneo-connect/upload-pipeline/internal/config"
	"github.com/ateneo-connect/upload-pipeline/internal/handler"
	"github.com/ateneo-connect/upload-pipeline/internal/logging"
	"github.com/ateneo-connect/upload-pipeline/internal/notify"
	"github.com/ateneo-connect/upload-pipeline/internal/processor"
	"github.com/ateneo-connect/upload-pipeline/internal/repository/db"
	"github.com/ateneo-connect/upload-pipeline/internal/repository/objectstore"
	"github.com/ateneo-connect/upload-pipeline/internal/validation"
)

const serviceName = "upload-pipeline"

func main() {
	logging.InitLambda()

	ctx := context.Background()
	cfg, err := config.LoadConfig(ctx, nil)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	factory := objectstore.NewFactory(cfg.AwsConfig, cfg.GcsClient)
	store, err := factory.CreateStore(objectstore.Platform(cfg.StoragePlatform))
	if err != nil {
		log.Fatalf("Failed to create object store: %v", err)
	}

	database, err := db.NewDatabase(cfg.AwsConfig)
	if err != nil {
		log.Fatalf("Failed to connect to the database: %v", err)
	}

	snsClient := sns.NewFromConfig(cfg.AwsConfig)

	h := handler.NewHandler(
		validation.NewMetadataValidator(store, cfg.Policy),
		processor.NewProcessor(store, cfg.Policy),
		db.NewFileRecordRepository(database.Client, cfg.DynamoDBTable),
		notify.NewNotifier(snsClient, cfg.NotificationTopicARN),
		notify.NewAlerter(snsClient, cfg.AlertTopicARN, serviceName),
		cfg.Policy.UploadPrefix,
	)

	lambda.Start(h.Handle)
}
