package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/schollz/progressbar/v3"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ateneo-connect/upload-pipeline/internal/config"
	"github.com/ateneo-connect/upload-pipeline/internal/handler"
	"github.com/ateneo-connect/upload-pipeline/internal/logging"
	"github.com/ateneo-connect/upload-pipeline/internal/notify"
	"github.com/ateneo-connect/upload-pipeline/internal/processor"
	"github.com/ateneo-connect/upload-pipeline/internal/repository/db"
	"github.com/ateneo-connect/upload-pipeline/internal/repository/migrate"
	"github.com/ateneo-connect/upload-pipeline/internal/repository/objectstore"
	"github.com/ateneo-connect/upload-pipeline/internal/validation"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "pipeline",
	Short: "Operations CLI for the upload processing pipeline",
	Long:  "Manages the file-records table and replays captured delivery events through the processing pipeline",
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("log_level", "", "Log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().String("dynamodb_table", "", "DynamoDB table for file records")

	replayCmd.Flags().StringVar(&eventFile, "event", "", "Path to a captured S3 event JSON file")
	replayCmd.MarkFlagRequired("event")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(downCmd)
	rootCmd.AddCommand(replayCmd)
}

func initConfig() {
	var err error
	cfg, err = config.LoadConfig(context.Background(), rootCmd)
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	logging.InitCLI(cfg.LogLevel)
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the file-records table",
	Run: func(cmd *cobra.Command, args []string) {
		database, err := db.NewDatabase(cfg.AwsConfig)
		if err != nil {
			fmt.Printf("Failed to connect to the database: %v\n", err)
			return
		}

		migration := &migrate.CreateFileRecordsTable{Table: cfg.DynamoDBTable}
		if err := migration.Up(cmd.Context(), database.Client); err != nil {
			fmt.Printf("Failed to create the table: %v\n", err)
			return
		}

		fmt.Printf("Table %s created\n", cfg.DynamoDBTable)
	},
}

var downCmd = &cobra.Command{
	Use:   "down",
	Short: "Delete the file-records table",
	Run: func(cmd *cobra.Command, args []string) {
		database, err := db.NewDatabase(cfg.AwsConfig)
		if err != nil {
			fmt.Printf("Failed to connect to the database: %v\n", err)
			return
		}

		migration := &migrate.CreateFileRecordsTable{Table: cfg.DynamoDBTable}
		if err := migration.Down(cmd.Context(), database.Client); err != nil {
			fmt.Printf("Failed to delete the table: %v\n", err)
			return
		}

		fmt.Printf("Table %s deleted\n", cfg.DynamoDBTable)
	},
}

var eventFile string

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Replay a captured S3 event through the pipeline",
	Long:  "Reads an S3 event JSON file and drives each record through the same handler the Lambda runs. Safe to repeat: persistence converges on redelivery.",
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(eventFile)
		if err != nil {
			return fmt.Errorf("failed to read event file: %w", err)
		}

		var event events.S3Event
		if err := json.Unmarshal(data, &event); err != nil {
			return fmt.Errorf("failed to parse event file: %w", err)
		}

		h, err := buildHandler()
		if err != nil {
			return err
		}

		bar := progressbar.Default(int64(len(event.Records)), "replaying")
		var failed int
		for _, record := range event.Records {
			single := events.S3Event{Records: []events.S3EventRecord{record}}
			if err := h.Handle(cmd.Context(), single); err != nil {
				failed++
				log.WithError(err).Error("Record replay failed")
			}
			bar.Add(1)
		}

		if failed > 0 {
			return fmt.Errorf("%d of %d records failed", failed, len(event.Records))
		}
		fmt.Printf("Replayed %d records\n", len(event.Records))
		return nil
	},
}

func buildHandler() (*handler.Handler, error) {
	factory := objectstore.NewFactory(cfg.AwsConfig, cfg.GcsClient)
	store, err := factory.CreateStore(objectstore.Platform(cfg.StoragePlatform))
	if err != nil {
		return nil, fmt.Errorf("failed to create object store: %w", err)
	}

	database, err := db.NewDatabase(cfg.AwsConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to the database: %w", err)
	}

	snsClient := sns.NewFromConfig(cfg.AwsConfig)

	return handler.NewHandler(
		validation.NewMetadataValidator(store, cfg.Policy),
		processor.NewProcessor(store, cfg.Policy),
		db.NewFileRecordRepository(database.Client, cfg.DynamoDBTable),
		notify.NewNotifier(snsClient, cfg.NotificationTopicARN),
		notify.NewAlerter(snsClient, cfg.AlertTopicARN, "upload-pipeline"),
		cfg.Policy.UploadPrefix,
	), nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
