package notify

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	sesv2 "github.com/aws/aws-sdk-go-v2/service/sesv2"
	sestypes "github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

type sesAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// EmailChannel sends mail through AWS SES (SESv2 API).
type EmailChannel struct {
	client    sesAPI
	fromEmail string
}

func NewEmailChannel(cfg aws.Config, fromEmail string) *EmailChannel {
	return &EmailChannel{client: sesv2.NewFromConfig(cfg), fromEmail: fromEmail}
}

func (e *EmailChannel) Name() string { return "email" }

func (e *EmailChannel) Send(ctx context.Context, msg Message) error {
	if msg.Email == "" {
		return ErrNoRecipient
	}

	body := &sestypes.Body{Text: &sestypes.Content{Data: aws.String(msg.Body)}}
	if msg.HTML != "" {
		body.Html = &sestypes.Content{Data: aws.String(msg.HTML)}
	}

	_, err := e.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(e.fromEmail),
		Destination:      &sestypes.Destination{ToAddresses: []string{msg.Email}},
		Content: &sestypes.EmailContent{
			Simple: &sestypes.Message{
				Subject: &sestypes.Content{Data: aws.String(msg.Subject)},
				Body:    body,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("ses send to %s: %w", msg.Email, err)
	}
	return nil
}
