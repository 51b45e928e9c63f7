package cloud

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/rs/zerolog/log"
)

// SNSClient publishes notification emails to a topic with email subscribers.
type SNSClient struct {
	svc      *sns.Client
	topicArn string
}

func NewSNSClient(cfg aws.Config, topicArn string) *SNSClient {
	return &SNSClient{svc: sns.NewFromConfig(cfg), topicArn: topicArn}
}

const maxSubject = 100

// truncateSubject cuts s to at most max bytes without splitting a rune.
func truncateSubject(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

// Send publishes one message. SNS caps subjects at 100 characters.
func (c *SNSClient) Send(ctx context.Context, subject, message string) error {
	subject = truncateSubject(subject, maxSubject)
	res, err := c.svc.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(c.topicArn),
		Subject:  aws.String(subject),
		Message:  aws.String(message),
	})
	if err != nil {
		return fmt.Errorf("failed to publish to SNS: %w", err)
	}
	log.Debug().Str("message_id", aws.ToString(res.MessageId)).Msg("notification sent")
	return nil
}
