// internal/workers/notification/send-claim-notification/notifier.go
package sendclaimnotification

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"

	"dental-claims/internal/common/logger"
	"dental-claims/internal/common/metrics"
	"dental-claims/internal/models"
)

const TaskType = "send-claim-notification"

var ErrNotificationSendFailed = errors.New("NOTIFICATION_SEND_FAILED")

// EmailAttribute is the session attribute holding the client's address.
const EmailAttribute = "email"

type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type SNSService interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

type Config struct {
	ClientTopicARN   string
	ProviderTopicARN string
	EmailEnabled     bool
	FromEmail        string
}

// Notifier publishes claim outcomes to the client and provider topics.
// Delivery failures are reported per recipient, never returned as errors.
type Notifier struct {
	config    *Config
	snsClient SNSService
	sesClient SESService
	logger    logger.Logger
}

// NewNotifier builds a notifier. sesClient may be nil when e-mail is disabled.
func NewNotifier(config *Config, snsClient SNSService, sesClient SESService, log logger.Logger) *Notifier {
	return &Notifier{
		config:    config,
		snsClient: snsClient,
		sesClient: sesClient,
		logger:    log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

// PreApproval notifies the client and the provider network.
func (n *Notifier) PreApproval(ctx context.Context, session *models.Session, symptoms string, diagnosis models.Diagnosis, decision models.CoverageDecision, clinics []models.ClinicRecord) []models.NotificationResult {
	status := "REQUIRES IN-PERSON EVALUATION"
	subject := "Evaluation Required"
	next := "Evaluation needed: visit a dentist for an in-person evaluation."
	providerStatus := "REQUIRES EVALUATION"
	if decision.Approved {
		status = "GRANTED"
		subject = "Pre-Approval Granted"
		next = "Procedure pre-approved! Schedule your appointment."
		providerStatus = "APPROVED"
	}

	primary := "Evaluation needed"
	if len(diagnosis.PossibleConditions) > 0 {
		primary = diagnosis.PossibleConditions[0]
	}

	data := map[string]interface{}{
		"status":             status,
		"statusSubject":      subject,
		"providerStatus":     providerStatus,
		"planTier":           titleCase(string(decision.PlanTier)),
		"planTierUpper":      strings.ToUpper(string(decision.PlanTier)),
		"coveragePercentage": formatPercent(decision.CoveragePercentage),
		"primaryCondition":   primary,
		"conditions":         strings.Join(diagnosis.PossibleConditions, ", "),
		"urgencyLevel":       titleCase(string(diagnosis.UrgencyLevel)),
		"urgencyUpper":       strings.ToUpper(string(diagnosis.UrgencyLevel)),
		"symptoms":           symptoms,
		"nextSteps":          next,
		"clinics":            formatClinics(clinics),
	}

	return []models.NotificationResult{
		n.send(ctx, session, models.RecipientClient, TypePreApprovalClient, data),
		n.send(ctx, session, models.RecipientProvider, TypePreApprovalProvider, data),
	}
}

// Reimbursement notifies the client only.
func (n *Notifier) Reimbursement(ctx context.Context, session *models.Session, decision models.ReimbursementDecision) []models.NotificationResult {
	subject := "Reimbursement Update"
	next := "Please contact our support team."
	switch decision.Status {
	case models.ReimbursementApproved:
		subject = "Reimbursement Approved"
		next = "The amount will be credited within 5 business days."
	case models.ReimbursementPartial:
		subject = "Partial Reimbursement"
		next = "The amount will be credited within 5 business days."
	}

	data := map[string]interface{}{
		"statusSubject": subject,
		"statusUpper":   strings.ToUpper(string(decision.Status)),
		"amount":        fmt.Sprintf("%.2f", decision.Amount),
		"percentage":    formatPercent(decision.Percentage),
		"message":       decision.Message,
		"nextSteps":     next,
	}

	return []models.NotificationResult{
		n.send(ctx, session, models.RecipientClient, TypeReimbursement, data),
	}
}

// DentistSearch sends the clinic list to the client.
func (n *Notifier) DentistSearch(ctx context.Context, session *models.Session, tier models.PlanTier, specialty string, clinics []models.ClinicRecord) []models.NotificationResult {
	data := map[string]interface{}{
		"planTier":  titleCase(string(tier)),
		"specialty": specialty,
		"count":     len(clinics),
		"clinics":   formatClinics(clinics),
	}

	return []models.NotificationResult{
		n.send(ctx, session, models.RecipientClient, TypeDentistSearch, data),
	}
}

func (n *Notifier) send(ctx context.Context, session *models.Session, recipient models.Recipient, notificationType string, data map[string]interface{}) models.NotificationResult {
	tmpl := templates[notificationType]
	subject := renderTemplate(tmpl.Subject, data)
	body := renderTemplate(tmpl.Body, data)

	log := logger.FromContext(ctx, n.logger)
	result := models.NotificationResult{Recipient: recipient}

	topic := n.config.ClientTopicARN
	if recipient == models.RecipientProvider {
		topic = n.config.ProviderTopicARN
	}

	messageID, err := n.publish(ctx, topic, subject, body)
	if err != nil {
		result.Error = err.Error()
		log.Error("notification publish failed", map[string]interface{}{
			"recipient":        recipient,
			"notificationType": notificationType,
			"error":            err.Error(),
		})
		metrics.NotificationsSent.WithLabelValues(string(recipient), "failed").Inc()
	} else {
		result.Sent = true
		result.MessageID = messageID
		log.Info("notification published", map[string]interface{}{
			"recipient":        recipient,
			"notificationType": notificationType,
			"messageId":        messageID,
		})
		metrics.NotificationsSent.WithLabelValues(string(recipient), "sent").Inc()
	}

	if recipient == models.RecipientClient {
		if to := session.Attribute(EmailAttribute); to != "" && n.config.EmailEnabled && n.sesClient != nil {
			if err := n.sendEmail(ctx, to, subject, body); err != nil {
				log.Warn("email copy failed", map[string]interface{}{
					"notificationType": notificationType,
					"error":            err.Error(),
				})
			} else {
				result.EmailSent = true
			}
		}
	}

	return result
}

func (n *Notifier) publish(ctx context.Context, topic, subject, body string) (string, error) {
	if topic == "" {
		return "", fmt.Errorf("%w: topic not configured", ErrNotificationSendFailed)
	}
	out, err := n.snsClient.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(topic),
		Subject:  aws.String(subject),
		Message:  aws.String(body),
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNotificationSendFailed, err)
	}
	return aws.ToString(out.MessageId), nil
}

func (n *Notifier) sendEmail(ctx context.Context, to, subject, body string) error {
	_, err := n.sesClient.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(body)},
			},
		},
		Source: aws.String(n.config.FromEmail),
	})
	return err
}

func formatClinics(clinics []models.ClinicRecord) string {
	if len(clinics) == 0 {
		return "No clinics found for your plan."
	}
	var b strings.Builder
	for i, c := range clinics {
		fmt.Fprintf(&b, "%d. %s - %s - %s (%s)\n", i+1, c.Name, c.Address, c.Phone, c.Distance)
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatPercent(fraction float64) string {
	return fmt.Sprintf("%.0f", fraction*100)
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
