package config

import (
	"context"
	"fmt"

	"cloud.google.com/go/storage"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Policy is the immutable processing policy threaded into every pipeline
// component at construction.
type Policy struct {
	MaxFileSize      int64
	ImageTypes       []string
	VideoTypes       []string
	DocumentTypes    []string
	ImageQuality     int
	WebPThreshold    int64
	ThumbnailWidth   int
	ThumbnailHeight  int
	ThumbnailQuality int
	ScanWindow       int64
	UploadPrefix     string
	ProcessedPrefix  string
}

// AllowedTypes returns the union of the three content-type allow-lists.
func (p Policy) AllowedTypes() []string {
	out := make([]string, 0, len(p.ImageTypes)+len(p.VideoTypes)+len(p.DocumentTypes))
	out = append(out, p.ImageTypes...)
	out = append(out, p.VideoTypes...)
	out = append(out, p.DocumentTypes...)
	return out
}

// Config holds the application configuration
type Config struct {
	LogLevel string
	// AwsConfig: AWS SDK uses a shared configuration object that contains
	// credentials, region, retry policies, etc. Multiple AWS services
	// (S3, DynamoDB, SNS, SSM) are created from this single config.
	AwsConfig aws.Config
	// GcsClient is only constructed when the storage platform is gcs;
	// the Google Cloud SDK configures itself from the environment.
	GcsClient            *storage.Client
	DynamoDBTable        string
	StoragePlatform      string
	NotificationTopicARN string
	AlertTopicARN        string
	Policy               Policy
}

// LoadConfig loads configuration from environment variables and, when a
// cobra command is given, CLI flags. Priority: CLI flags > environment
// variables > defaults. Topic ARNs may alternatively be resolved from SSM
// Parameter Store via *_TOPIC_PARAM names.
func LoadConfig(ctx context.Context, rootCmd *cobra.Command) (*Config, error) {
	setDefaults()
	viper.AutomaticEnv()

	if rootCmd != nil {
		if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
			return nil, fmt.Errorf("failed to bind flags: %w", err)
		}
	}

	awsConfig, err := loadAWSConfig(ctx)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		LogLevel:             viper.GetString("log_level"),
		AwsConfig:            awsConfig,
		DynamoDBTable:        viper.GetString("dynamodb_table"),
		StoragePlatform:      viper.GetString("storage_platform"),
		NotificationTopicARN: viper.GetString("notification_topic_arn"),
		AlertTopicARN:        viper.GetString("alert_topic_arn"),
		Policy: Policy{
			MaxFileSize:      viper.GetInt64("max_file_size"),
			ImageTypes:       viper.GetStringSlice("allowed_image_types"),
			VideoTypes:       viper.GetStringSlice("allowed_video_types"),
			DocumentTypes:    viper.GetStringSlice("allowed_document_types"),
			ImageQuality:     viper.GetInt("image_quality"),
			WebPThreshold:    viper.GetInt64("webp_threshold"),
			ThumbnailWidth:   viper.GetInt("thumbnail_width"),
			ThumbnailHeight:  viper.GetInt("thumbnail_height"),
			ThumbnailQuality: viper.GetInt("thumbnail_quality"),
			ScanWindow:       viper.GetInt64("scan_window"),
			UploadPrefix:     viper.GetString("upload_prefix"),
			ProcessedPrefix:  viper.GetString("processed_prefix"),
		},
	}

	if err := resolveTopicParams(ctx, cfg); err != nil {
		return nil, err
	}

	if cfg.StoragePlatform == "gcs" {
		gcsClient, err := loadGCSClient(ctx)
		if err != nil {
			return nil, err
		}
		cfg.GcsClient = gcsClient
	}

	return cfg, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	viper.SetDefault("log_level", "info")
	viper.SetDefault("dynamodb_table", "marketplace-files")
	viper.SetDefault("storage_platform", "s3")
	viper.SetDefault("notification_topic_arn", "")
	viper.SetDefault("alert_topic_arn", "")
	viper.SetDefault("notification_topic_param", "")
	viper.SetDefault("alert_topic_param", "")

	viper.SetDefault("max_file_size", int64(50*1024*1024))
	viper.SetDefault("allowed_image_types", []string{
		"image/jpeg", "image/png", "image/gif", "image/webp",
	})
	viper.SetDefault("allowed_video_types", []string{
		"video/mp4", "video/mpeg", "video/quicktime", "video/webm",
	})
	viper.SetDefault("allowed_document_types", []string{
		"application/pdf",
		"application/msword",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		"text/plain",
	})
	viper.SetDefault("image_quality", 85)
	viper.SetDefault("webp_threshold", int64(1024*1024))
	viper.SetDefault("thumbnail_width", 300)
	viper.SetDefault("thumbnail_height", 300)
	viper.SetDefault("thumbnail_quality", 80)
	viper.SetDefault("scan_window", int64(10*1024))
	viper.SetDefault("upload_prefix", "uploads")
	viper.SetDefault("processed_prefix", "processed")
}

// loadAWSConfig loads AWS SDK configuration
func loadAWSConfig(ctx context.Context) (aws.Config, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return aws.Config{}, fmt.Errorf("unable to load AWS SDK config: %w", err)
	}
	return cfg, nil
}

// loadGCSClient loads Google Cloud Storage client
func loadGCSClient(ctx context.Context) (*storage.Client, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("unable to create GCS client: %w", err)
	}
	return client, nil
}

// resolveTopicParams fills in topic ARNs from SSM Parameter Store when a
// parameter name is configured and the ARN itself is not.
func resolveTopicParams(ctx context.Context, cfg *Config) error {
	notifParam := viper.GetString("notification_topic_param")
	alertParam := viper.GetString("alert_topic_param")
	if notifParam == "" && alertParam == "" {
		return nil
	}

	client := ssm.NewFromConfig(cfg.AwsConfig)

	if cfg.NotificationTopicARN == "" && notifParam != "" {
		arn, err := fetchParameter(ctx, client, notifParam)
		if err != nil {
			return err
		}
		cfg.NotificationTopicARN = arn
	}
	if cfg.AlertTopicARN == "" && alertParam != "" {
		arn, err := fetchParameter(ctx, client, alertParam)
		if err != nil {
			return err
		}
		cfg.AlertTopicARN = arn
	}
	return nil
}

func fetchParameter(ctx context.Context, client *ssm.Client, name string) (string, error) {
	out, err := client.GetParameter(ctx, &ssm.GetParameterInput{
		Name: aws.String(name),
	})
	if err != nil {
		return "", fmt.Errorf("failed to read SSM parameter %s: %w", name, err)
	}
	return aws.ToString(out.Parameter.Value), nil
}

// SetConfigValue sets a configuration value (used for CLI flags)
func SetConfigValue(key string, value interface{}) {
	viper.Set(key, value)
}
