// internal/common/aws/ses.go
package aws

import (
	"context"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
)

// SESClient sends the optional e-mail copy of client notifications.
type SESClient struct {
	client *ses.Client
}

func NewSESClient(cfg awssdk.Config) *SESClient {
	return &SESClient{client: ses.NewFromConfig(cfg)}
}

func (s *SESClient) SendEmail(ctx context.Context, input *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	return s.client.SendEmail(ctx, input, optFns...)
}
