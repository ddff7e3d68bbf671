package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	apperrors "github.com/MegaphoneJon/com.aghstrategies.statelegemail/pkg/errors"

	"github.com/MegaphoneJon/com.aghstrategies.statelegemail/internal/domain"
	"github.com/MegaphoneJon/com.aghstrategies.statelegemail/internal/event"
)

// RecipientResolver resolves an address into recipients. *resolver.Resolver
// satisfies this.
type RecipientResolver interface {
	Resolve(ctx context.Context, addr domain.AddressRecord) []domain.Recipient
}

// LetterDispatcher sends one letter per recipient. *dispatch.Dispatcher
// satisfies this.
type LetterDispatcher interface {
	Dispatch(ctx context.Context, from, subject, text string, recipients []domain.Recipient) []domain.NotificationOutcome
}

// RegionConfigSource supplies cached region configs for the inspection
// endpoint. *regionconfig.Cache satisfies this.
type RegionConfigSource interface {
	Lookup(ctx context.Context, region string) (domain.RegionConfig, bool)
}

// PetitionService implements the signature processing pipeline.
type PetitionService struct {
	resolver   RecipientResolver
	dispatcher LetterDispatcher
	regions    RegionConfigSource
	producer   *event.Producer
	logger     *slog.Logger
}

// NewPetitionService creates a new petition service.
func NewPetitionService(
	resolver RecipientResolver,
	dispatcher LetterDispatcher,
	regions RegionConfigSource,
	producer *event.Producer,
	logger *slog.Logger,
) *PetitionService {
	return &PetitionService{
		resolver:   resolver,
		dispatcher: dispatcher,
		regions:    regions,
		producer:   producer,
		logger:     logger,
	}
}

// ProcessSignatureInput holds one signer's submission.
type ProcessSignatureInput struct {
	SignerName  string
	SignerEmail string

	Street     string
	City       string
	Region     string
	PostalCode string

	Subject        string
	Message        string
	DefaultMessage string
}

// SignatureResult is the outcome of one pipeline run.
type SignatureResult struct {
	SignatureID string                       `json:"signature_id"`
	Recipients  []domain.Recipient           `json:"recipients"`
	Outcomes    []domain.NotificationOutcome `json:"outcomes"`
}

// ProcessSignature runs the full pipeline for one signature: message
// selection, address validation, recipient resolution, and per-recipient
// dispatch. Resolution trouble degrades to zero recipients; only unusable
// signer input is surfaced as an error.
func (s *PetitionService) ProcessSignature(ctx context.Context, input *ProcessSignatureInput) (*SignatureResult, error) {
	message := strings.TrimSpace(input.Message)
	if message == "" {
		message = strings.TrimSpace(input.DefaultMessage)
	}
	// If the message is left empty and there is no default, don't send anything.
	if message == "" {
		return nil, apperrors.InvalidInput("message is empty and the petition has no default message")
	}

	addr, err := domain.NewAddressRecord(input.Street, input.City, input.Region, input.PostalCode)
	if err != nil {
		return nil, err
	}

	signatureID := uuid.New().String()

	recipients := s.resolver.Resolve(ctx, addr)

	outcomes := s.dispatcher.Dispatch(ctx, senderLine(input.SignerName, input.SignerEmail), input.Subject, message, recipients)

	s.publishOutcomes(ctx, signatureID, addr.Region, outcomes)

	s.logger.InfoContext(ctx, "signature processed",
		slog.String("signature_id", signatureID),
		slog.String("region", addr.Region),
		slog.Int("recipients", len(recipients)),
	)

	return &SignatureResult{
		SignatureID: signatureID,
		Recipients:  recipients,
		Outcomes:    outcomes,
	}, nil
}

// ResolveRecipients is the dry-run surface: it resolves an address without
// dispatching anything. Unresolvable addresses yield an empty list, never an
// error, so form previews degrade gracefully.
func (s *PetitionService) ResolveRecipients(ctx context.Context, street, city, region, postalCode string) []domain.Recipient {
	addr, err := domain.NewAddressRecord(street, city, region, postalCode)
	if err != nil {
		s.logger.InfoContext(ctx, "address incomplete, skipping resolution",
			slog.String("error", err.Error()),
		)
		return []domain.Recipient{}
	}

	recipients := s.resolver.Resolve(ctx, addr)
	if recipients == nil {
		recipients = []domain.Recipient{}
	}
	return recipients
}

// RegionConfig returns the cached chamber title mapping for a region,
// populating the cache if needed.
func (s *PetitionService) RegionConfig(ctx context.Context, region string) (domain.RegionConfig, error) {
	cfg, ok := s.regions.Lookup(ctx, region)
	if !ok {
		return domain.RegionConfig{}, apperrors.NotFound("region config", region)
	}
	return cfg, nil
}

// publishOutcomes emits the per-letter and summary events. Event trouble is
// logged, never surfaced: delivery status already lives in the outcomes.
func (s *PetitionService) publishOutcomes(ctx context.Context, signatureID, region string, outcomes []domain.NotificationOutcome) {
	for _, outcome := range outcomes {
		if err := s.producer.PublishLetterOutcome(ctx, signatureID, outcome); err != nil {
			s.logger.ErrorContext(ctx, "failed to publish letter outcome event",
				slog.String("signature_id", signatureID),
				slog.String("error", err.Error()),
			)
		}
	}

	if err := s.producer.PublishSignatureProcessed(ctx, signatureID, region, outcomes); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish signature.processed event",
			slog.String("signature_id", signatureID),
			slog.String("error", err.Error()),
		)
	}
}

// senderLine formats the From line from the signer's contact details,
// e.g. `"Pat Signer" <pat@example.org>`.
func senderLine(name, email string) string {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" {
		return email
	}
	return fmt.Sprintf("%q <%s>", name, email)
}
