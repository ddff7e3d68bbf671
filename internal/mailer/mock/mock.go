package mock

import (
	"context"
	"log/slog"
	"time"

	"github.com/MegaphoneJon/com.aghstrategies.statelegemail/internal/domain"
)

// MockMailer is a mailer implementation that logs letters and always
// succeeds. It simulates a 10ms delay to mimic real sending latency.
type MockMailer struct {
	logger *slog.Logger
}

// NewMockMailer creates a new mock mailer.
func NewMockMailer(logger *slog.Logger) *MockMailer {
	return &MockMailer{
		logger: logger,
	}
}

// Name returns the name of this mailer.
func (m *MockMailer) Name() string {
	return "mock"
}

// Send logs the letter details and simulates a 10ms sending delay.
func (m *MockMailer) Send(ctx context.Context, letter domain.Letter) error {
	// Simulate sending delay.
	time.Sleep(10 * time.Millisecond)

	m.logger.InfoContext(ctx, "mock mailer: letter sent",
		slog.String("to_name", letter.ToName),
		slog.String("to_email", letter.ToEmail),
		slog.String("subject", letter.Subject),
	)

	return nil
}
