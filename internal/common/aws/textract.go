// internal/common/aws/textract.go
package aws

import (
	"context"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/textract"
)

// TextractClient runs expense analysis on uploaded receipts.
type TextractClient struct {
	client *textract.Client
}

func NewTextractClient(cfg awssdk.Config) *TextractClient {
	return &TextractClient{client: textract.NewFromConfig(cfg)}
}

func (t *TextractClient) AnalyzeExpense(ctx context.Context, input *textract.AnalyzeExpenseInput, optFns ...func(*textract.Options)) (*textract.AnalyzeExpenseOutput, error) {
	return t.client.AnalyzeExpense(ctx, input, optFns...)
}
