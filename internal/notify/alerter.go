package notify

import (
	"context"
	"encoding/json"
	"runtime/debug"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	log "github.com/sirupsen/logrus"
)

// systemAlert is the structured payload published when the pipeline hits
// an unexpected error.
type systemAlert struct {
	Service   string `json:"service"`
	Error     string `json:"error"`
	Stack     string `json:"stack"`
	Key       string `json:"key"`
	Timestamp string `json:"timestamp"`
	Severity  string `json:"severity"`
}

// Alerter publishes system alerts to the operations topic. An unset topic
// ARN is tolerated silently.
type Alerter struct {
	client   SNSAPI
	topicARN string
	service  string
}

// NewAlerter initializes a new Alerter for the named service.
func NewAlerter(client SNSAPI, topicARN, service string) *Alerter {
	return &Alerter{
		client:   client,
		topicARN: topicARN,
		service:  service,
	}
}

// Alert reports an unexpected error with the offending object key and the
// current stack. Best-effort: publish failures are only logged.
func (a *Alerter) Alert(ctx context.Context, err error, key string) {
	if a.topicARN == "" {
		return
	}

	payload, marshalErr := json.Marshal(systemAlert{
		Service:   a.service,
		Error:     err.Error(),
		Stack:     string(debug.Stack()),
		Key:       key,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Severity:  "critical",
	})
	if marshalErr != nil {
		log.WithError(marshalErr).Warn("Failed to marshal system alert")
		return
	}

	if _, pubErr := a.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(a.topicARN),
		Message:  aws.String(string(payload)),
	}); pubErr != nil {
		log.WithError(pubErr).Warn("Failed to publish system alert")
	}
}
