// Package notify emits best-effort messages to SNS topics: user-facing
// processing notifications and operator alerts. Failures here are logged
// and never propagate into the pipeline.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
	log "github.com/sirupsen/logrus"

	"github.com/ateneo-connect/upload-pipeline/internal/domain"
)

// SNSAPI is the subset of the SNS client the notifier uses.
type SNSAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// Notifier publishes user notifications to a configured topic. An empty
// topic ARN turns every call into a logged no-op.
type Notifier struct {
	client   SNSAPI
	topicARN string
	now      func() time.Time
}

// NewNotifier initializes a new Notifier.
func NewNotifier(client SNSAPI, topicARN string) *Notifier {
	return &Notifier{
		client:   client,
		topicARN: topicARN,
		now:      time.Now,
	}
}

// NotifySuccess tells the user their file finished processing.
func (n *Notifier) NotifySuccess(ctx context.Context, key domain.StorageKey, result domain.ProcessingResult) {
	n.publish(ctx, domain.NotificationMessage{
		UserID: key.UserID,
		Type:   domain.NotificationFileProcessed,
		Title:  "File processed",
		Body:   fmt.Sprintf("Your file %s has been processed.", result.OriginalName),
		Data: map[string]string{
			"orderId":      key.OrderID,
			"fileId":       result.FileID,
			"processedUrl": result.ProcessedURL,
		},
		Timestamp: n.now().UTC().Format(time.RFC3339),
	})
}

// NotifyError tells the user their file failed processing.
func (n *Notifier) NotifyError(ctx context.Context, key domain.StorageKey, message string) {
	n.publish(ctx, domain.NotificationMessage{
		UserID: key.UserID,
		Type:   domain.NotificationFileProcessingError,
		Title:  "File processing failed",
		Body:   fmt.Sprintf("Your file %s could not be processed: %s", key.Filename, message),
		Data: map[string]string{
			"orderId":  key.OrderID,
			"fileName": key.Filename,
		},
		Timestamp: n.now().UTC().Format(time.RFC3339),
	})
}

func (n *Notifier) publish(ctx context.Context, msg domain.NotificationMessage) {
	if n.topicARN == "" {
		log.WithField("type", msg.Type).Debug("Notification topic not configured, skipping")
		return
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		log.WithError(err).Warn("Failed to marshal notification message")
		return
	}

	_, err = n.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(n.topicARN),
		Message:  aws.String(string(payload)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"userId": {
				DataType:    aws.String("String"),
				StringValue: aws.String(msg.UserID),
			},
			"type": {
				DataType:    aws.String("String"),
				StringValue: aws.String(msg.Type),
			},
		},
	})
	if err != nil {
		log.WithError(err).WithFields(log.Fields{
			"userId": msg.UserID,
			"type":   msg.Type,
		}).Warn("Failed to publish notification")
	}
}
