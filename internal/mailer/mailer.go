package mailer

import (
	"context"

	"github.com/MegaphoneJon/com.aghstrategies.statelegemail/internal/domain"
)

// Mailer is the external mail send capability. The host system owns actual
// delivery; this pipeline only hands letters over and records the outcome.
type Mailer interface {
	Name() string
	Send(ctx context.Context, letter domain.Letter) error
}
