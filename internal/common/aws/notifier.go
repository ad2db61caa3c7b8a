// internal/common/aws/notifier.go
package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"

	"studytrack/internal/common/config"
	"studytrack/internal/common/logger"
	"studytrack/internal/reaper"
)

// ReapNotifier publishes sweep summaries over SNS and, optionally,
// mails them over SES. Either channel may be disabled by config.
type ReapNotifier struct {
	sns *SNSClient
	ses *SESClient
	cfg config.NotificationConfig
	log logger.Logger
}

// NewReapNotifier builds the notifier from the notification config.
func NewReapNotifier(ctx context.Context, cfg config.NotificationConfig, log logger.Logger) (*ReapNotifier, error) {
	n := &ReapNotifier{cfg: cfg, log: log}

	if cfg.SNSTopicARN != "" {
		client, err := NewSNSClient(ctx, cfg.AWSRegion)
		if err != nil {
			return nil, fmt.Errorf("sns client: %w", err)
		}
		n.sns = client
	}
	if cfg.Email.Enabled {
		client, err := NewSESClient(ctx, cfg.AWSRegion)
		if err != nil {
			return nil, fmt.Errorf("ses client: %w", err)
		}
		n.ses = client
	}
	return n, nil
}

// PublishSummary implements reaper.Notifier.
func (n *ReapNotifier) PublishSummary(ctx context.Context, result reaper.Result) error {
	subject := "Inactive account sweep completed"
	if result.DryRun {
		subject = "Inactive account sweep completed (dry run)"
	}
	body := fmt.Sprintf(
		"Scanned %d accounts, %d eligible, %d reaped, %d failed in %s.",
		result.Scanned, result.Eligible, result.Reaped, result.Failed, result.Duration,
	)

	if n.sns != nil {
		_, err := n.sns.Publish(ctx, &sns.PublishInput{
			TopicArn: &n.cfg.SNSTopicARN,
			Subject:  &subject,
			Message:  &body,
		})
		if err != nil {
			return fmt.Errorf("sns publish: %w", err)
		}
	}

	if n.ses != nil {
		_, err := n.ses.SendEmail(ctx, &ses.SendEmailInput{
			Source: &n.cfg.Email.FromEmail,
			Destination: &types.Destination{
				ToAddresses: []string{n.cfg.Email.ToEmail},
			},
			Message: &types.Message{
				Subject: &types.Content{Data: &subject},
				Body: &types.Body{
					Text: &types.Content{Data: &body},
				},
			},
		})
		if err != nil {
			return fmt.Errorf("ses send: %w", err)
		}
	}

	n.log.Info("published reap summary", map[string]interface{}{
		"reaped": result.Reaped,
		"failed": result.Failed,
	})
	return nil
}
