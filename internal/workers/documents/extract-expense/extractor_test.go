package extractexpense

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/textract"
	"github.com/aws/aws-sdk-go-v2/service/textract/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dental-claims/internal/common/logger"
)

// ==========================
// Mock Textract
// ==========================

type MockTextract struct {
	AnalyzeExpenseFunc func(ctx context.Context, input *textract.AnalyzeExpenseInput) (*textract.AnalyzeExpenseOutput, error)
}

func (m *MockTextract) AnalyzeExpense(ctx context.Context, input *textract.AnalyzeExpenseInput, optFns ...func(*textract.Options)) (*textract.AnalyzeExpenseOutput, error) {
	if m.AnalyzeExpenseFunc != nil {
		return m.AnalyzeExpenseFunc(ctx, input)
	}
	return &textract.AnalyzeExpenseOutput{}, nil
}

func summaryField(fieldType, value string) types.ExpenseField {
	return types.ExpenseField{
		Type:           &types.ExpenseType{Text: aws.String(fieldType)},
		ValueDetection: &types.ExpenseDetection{Text: aws.String(value)},
	}
}

// ==========================
// Extract
// ==========================

func TestExtractor_Extract(t *testing.T) {
	var captured *textract.AnalyzeExpenseInput
	mock := &MockTextract{
		AnalyzeExpenseFunc: func(_ context.Context, input *textract.AnalyzeExpenseInput) (*textract.AnalyzeExpenseOutput, error) {
			captured = input
			return &textract.AnalyzeExpenseOutput{
				ExpenseDocuments: []types.ExpenseDocument{{
					SummaryFields: []types.ExpenseField{
						summaryField("AMOUNT_PAID", "R$ 150,00"),
						summaryField("TOTAL", "R$ 1.234,56"),
						summaryField("SUBTOTAL", "R$ 1.000,00"),
						summaryField("TAX", "R$ 34,56"),
						summaryField("INVOICE_RECEIPT_DATE", "12/03/2024"),
						summaryField("VENDOR_NAME", " Clinica Sorriso "),
						summaryField("DESCRIPTION", "Restoration"),
						{Type: &types.ExpenseType{Text: aws.String("OTHER")}},
					},
				}},
			}, nil
		},
	}
	e := NewExtractor(mock, "claims-docs", logger.NewTestLogger(t))

	doc, err := e.Extract(context.Background(), "uploads/receipt-001.pdf")

	require.NoError(t, err)
	require.NotNil(t, captured)
	assert.Equal(t, "claims-docs", aws.ToString(captured.Document.S3Object.Bucket))
	assert.Equal(t, "uploads/receipt-001.pdf", aws.ToString(captured.Document.S3Object.Name))

	require.NotNil(t, doc.TotalAmount)
	assert.InDelta(t, 1234.56, *doc.TotalAmount, 0.001)
	require.NotNil(t, doc.TaxAmount)
	assert.InDelta(t, 34.56, *doc.TaxAmount, 0.001)
	assert.Equal(t, "12/03/2024", doc.Date)
	assert.Equal(t, "Clinica Sorriso", doc.ProviderName)
	assert.Equal(t, "Restoration", doc.ProcedureDescription)
}

func TestExtractor_Extract_NoFields(t *testing.T) {
	e := NewExtractor(&MockTextract{}, "bucket", logger.NewTestLogger(t))

	doc, err := e.Extract(context.Background(), "empty.png")

	require.NoError(t, err)
	assert.Nil(t, doc.TotalAmount)
	assert.Empty(t, doc.Date)
	assert.Empty(t, doc.ProviderName)
}

func TestExtractor_Extract_Errors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantErr error
	}{
		{"invalid parameter", &smithy.GenericAPIError{Code: "InvalidParameterException", Message: "bad"}, ErrInvalidDocumentFormat},
		{"unsupported document", &smithy.GenericAPIError{Code: "UnsupportedDocumentException"}, ErrInvalidDocumentFormat},
		{"throttled", &smithy.GenericAPIError{Code: "ThrottlingException"}, ErrExtractionFailed},
		{"transport failure", errors.New("dial tcp: timeout"), ErrExtractionFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &MockTextract{
				AnalyzeExpenseFunc: func(context.Context, *textract.AnalyzeExpenseInput) (*textract.AnalyzeExpenseOutput, error) {
					return nil, tt.err
				},
			}
			e := NewExtractor(mock, "bucket", logger.NewTestLogger(t))

			doc, err := e.Extract(context.Background(), "doc.pdf")

			assert.Nil(t, doc)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

// ==========================
// Currency parsing
// ==========================

func TestParseCurrency(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"R$ 1.234,56", 1234.56, true},
		{"$1,234.56", 1234.56, true},
		{"1000,00", 1000, true},
		{"150.00", 150, true},
		{"1.000.000", 1000000, true},
		{"1,000,000", 1000000, true},
		{"R$ 80", 80, true},
		{"", 0, false},
		{"R$", 0, false},
		{"n/a", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := ParseCurrency(tt.in)
			if !tt.ok {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.InDelta(t, tt.want, *got, 0.0001)
		})
	}
}
