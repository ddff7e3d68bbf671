package event

import (
	"context"
	"fmt"
	"log/slog"

	pkgkafka "github.com/MegaphoneJon/com.aghstrategies.statelegemail/pkg/kafka"

	"github.com/MegaphoneJon/com.aghstrategies.statelegemail/internal/domain"
)

// Kafka topic constants for signature processing events.
const (
	TopicSignatureProcessed = "statelegemail.signature.processed"
	TopicLetterSent         = "statelegemail.letter.sent"
	TopicLetterFailed       = "statelegemail.letter.failed"
)

// Aggregate type constant.
const AggregateTypeSignature = "signature"

// Source identifier for events originating from this service.
const SourceStatelegemail = "statelegemail"

// SignatureProcessedData is the payload for a signature.processed event.
type SignatureProcessedData struct {
	SignatureID    string `json:"signature_id"`
	Region         string `json:"region"`
	RecipientCount int    `json:"recipient_count"`
	SentCount      int    `json:"sent_count"`
	FailedCount    int    `json:"failed_count"`
}

// LetterOutcomeData is the payload for letter.sent and letter.failed events.
type LetterOutcomeData struct {
	SignatureID    string `json:"signature_id"`
	RecipientName  string `json:"recipient_name"`
	RecipientEmail string `json:"recipient_email"`
	Error          string `json:"error,omitempty"`
}

// Producer publishes signature processing events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer. A nil kafka producer disables
// publishing, which keeps tests and minimal deployments quiet.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishSignatureProcessed publishes a signature.processed event summarizing
// one pipeline run.
func (p *Producer) PublishSignatureProcessed(ctx context.Context, signatureID, region string, outcomes []domain.NotificationOutcome) error {
	if p.kafka == nil {
		return nil
	}

	data := SignatureProcessedData{
		SignatureID:    signatureID,
		Region:         region,
		RecipientCount: len(outcomes),
	}
	for _, o := range outcomes {
		if o.Sent {
			data.SentCount++
		} else {
			data.FailedCount++
		}
	}

	event, err := pkgkafka.NewEvent(TopicSignatureProcessed, signatureID, AggregateTypeSignature, SourceStatelegemail, data)
	if err != nil {
		return fmt.Errorf("create signature.processed event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicSignatureProcessed, event); err != nil {
		return fmt.Errorf("publish signature.processed event: %w", err)
	}

	return nil
}

// PublishLetterOutcome publishes a letter.sent or letter.failed event for one
// recipient's send attempt.
func (p *Producer) PublishLetterOutcome(ctx context.Context, signatureID string, outcome domain.NotificationOutcome) error {
	if p.kafka == nil {
		return nil
	}

	topic := TopicLetterSent
	if !outcome.Sent {
		topic = TopicLetterFailed
	}

	data := LetterOutcomeData{
		SignatureID:    signatureID,
		RecipientName:  outcome.Recipient.Name,
		RecipientEmail: outcome.Recipient.Email,
		Error:          outcome.Error,
	}

	event, err := pkgkafka.NewEvent(topic, signatureID, AggregateTypeSignature, SourceStatelegemail, data)
	if err != nil {
		return fmt.Errorf("create letter outcome event: %w", err)
	}

	if err := p.kafka.Publish(ctx, topic, event); err != nil {
		return fmt.Errorf("publish letter outcome event: %w", err)
	}

	p.logger.DebugContext(ctx, "published letter outcome event",
		slog.String("topic", topic),
		slog.String("signature_id", signatureID),
		slog.String("recipient_email", outcome.Recipient.Email),
	)

	return nil
}
