package notify

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
)

type snsAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SMSChannel sends text messages through AWS SNS.
type SMSChannel struct {
	client   snsAPI
	senderID string
}

func NewSMSChannel(cfg aws.Config, senderID string) *SMSChannel {
	return &SMSChannel{client: sns.NewFromConfig(cfg), senderID: senderID}
}

func (s *SMSChannel) Name() string { return "sms" }

// Send publishes to an E.164 phone number (e.g. +221771234567).
func (s *SMSChannel) Send(ctx context.Context, msg Message) error {
	if msg.Phone == "" {
		return ErrNoRecipient
	}

	attrs := map[string]types.MessageAttributeValue{
		"AWS.SNS.SMS.SMSType": {
			DataType:    aws.String("String"),
			StringValue: aws.String("Transactional"),
		},
	}
	if s.senderID != "" {
		attrs["AWS.SNS.SMS.SenderID"] = types.MessageAttributeValue{
			DataType:    aws.String("String"),
			StringValue: aws.String(s.senderID),
		}
	}

	_, err := s.client.Publish(ctx, &sns.PublishInput{
		Message:           aws.String(msg.Body),
		PhoneNumber:       aws.String(msg.Phone),
		MessageAttributes: attrs,
	})
	if err != nil {
		return fmt.Errorf("sns publish to %s: %w", msg.Phone, err)
	}
	return nil
}
