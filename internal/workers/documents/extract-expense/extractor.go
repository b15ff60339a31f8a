// internal/workers/documents/extract-expense/extractor.go
package extractexpense

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/textract"
	"github.com/aws/aws-sdk-go-v2/service/textract/types"
	"github.com/aws/smithy-go"

	"dental-claims/internal/common/logger"
	"dental-claims/internal/models"
)

const TaskType = "extract-expense"

var (
	ErrInvalidDocumentFormat = errors.New("invalid_document_format")
	ErrExtractionFailed      = errors.New("textract_service_error")
)

// Error codes the service uses for documents it cannot read.
var invalidFormatCodes = map[string]bool{
	"InvalidParameterException":    true,
	"UnsupportedDocumentException": true,
	"BadDocumentException":         true,
	"InvalidS3ObjectException":     true,
	"DocumentTooLargeException":    true,
}

// TextractAPI is the subset of the Textract client used here.
type TextractAPI interface {
	AnalyzeExpense(ctx context.Context, input *textract.AnalyzeExpenseInput, optFns ...func(*textract.Options)) (*textract.AnalyzeExpenseOutput, error)
}

type Extractor struct {
	client TextractAPI
	bucket string
	logger logger.Logger
}

func NewExtractor(client TextractAPI, bucket string, log logger.Logger) *Extractor {
	return &Extractor{
		client: client,
		bucket: bucket,
		logger: log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

// Extract analyzes the receipt stored under documentKey in the documents bucket.
func (e *Extractor) Extract(ctx context.Context, documentKey string) (*models.ExtractedDocument, error) {
	out, err := e.client.AnalyzeExpense(ctx, &textract.AnalyzeExpenseInput{
		Document: &types.Document{
			S3Object: &types.S3Object{
				Bucket: aws.String(e.bucket),
				Name:   aws.String(documentKey),
			},
		},
	})
	log := logger.FromContext(ctx, e.logger)
	if err != nil {
		return nil, mapError(log, err)
	}

	doc := parseExpenseDocuments(out.ExpenseDocuments)

	log.Info("document analysis completed", map[string]interface{}{
		"documentsCount": len(out.ExpenseDocuments),
		"hasAmount":      doc.TotalAmount != nil,
		"hasDate":        doc.Date != "",
		"hasProvider":    doc.ProviderName != "",
	})
	return doc, nil
}

func mapError(log logger.Logger, err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		log.Error("document analysis failed", map[string]interface{}{
			"errorCode": apiErr.ErrorCode(),
		})
		if invalidFormatCodes[apiErr.ErrorCode()] {
			return fmt.Errorf("%w: %s", ErrInvalidDocumentFormat, apiErr.ErrorCode())
		}
		return fmt.Errorf("%w: %s", ErrExtractionFailed, apiErr.ErrorCode())
	}

	log.Error("document analysis failed", map[string]interface{}{
		"error": err.Error(),
	})
	return fmt.Errorf("%w: %v", ErrExtractionFailed, err)
}

// parseExpenseDocuments reads the summary fields of every returned document.
// A TOTAL field wins over other amount fields; otherwise the last one seen is kept.
func parseExpenseDocuments(docs []types.ExpenseDocument) *models.ExtractedDocument {
	out := &models.ExtractedDocument{}
	haveTotal := false

	for _, doc := range docs {
		for _, field := range doc.SummaryFields {
			fieldType := strings.ToLower(fieldTypeText(field))
			value := fieldValueText(field)
			if value == "" {
				continue
			}

			switch {
			case strings.Contains(fieldType, "tax"):
				out.TaxAmount = ParseCurrency(value)
			case fieldType == "total":
				if amount := ParseCurrency(value); amount != nil {
					out.TotalAmount = amount
					haveTotal = true
				}
			case strings.Contains(fieldType, "total") || strings.Contains(fieldType, "amount"):
				if !haveTotal {
					if amount := ParseCurrency(value); amount != nil {
						out.TotalAmount = amount
					}
				}
			case strings.Contains(fieldType, "date"):
				out.Date = value
			case strings.Contains(fieldType, "vendor") || strings.Contains(fieldType, "provider"):
				out.ProviderName = value
			case strings.Contains(fieldType, "description"):
				out.ProcedureDescription = value
			}
		}
	}
	return out
}

func fieldTypeText(f types.ExpenseField) string {
	if f.Type == nil {
		return ""
	}
	return aws.ToString(f.Type.Text)
}

func fieldValueText(f types.ExpenseField) string {
	if f.ValueDetection == nil {
		return ""
	}
	return strings.TrimSpace(aws.ToString(f.ValueDetection.Text))
}
