package dispatch

import (
	"context"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/sync/errgroup"

	"github.com/MegaphoneJon/com.aghstrategies.statelegemail/internal/domain"
	"github.com/MegaphoneJon/com.aghstrategies.statelegemail/internal/mailer"
)

var lettersTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "letters_dispatched_total",
		Help: "Total letters dispatched by result",
	},
	[]string{"result"},
)

// DefaultWorkers bounds concurrent sends when no explicit limit is configured.
const DefaultWorkers = 4

// Dispatcher sends one letter per recipient through the mail collaborator.
// Sends are independent: a failure for one recipient never blocks the rest.
type Dispatcher struct {
	mailer  mailer.Mailer
	workers int
	logger  *slog.Logger
}

// New creates a dispatcher with a bounded worker pool.
func New(m mailer.Mailer, workers int, logger *slog.Logger) *Dispatcher {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Dispatcher{
		mailer:  m,
		workers: workers,
		logger:  logger,
	}
}

// Dispatch composes a personalized letter for each recipient and sends them
// concurrently. It returns exactly one outcome per recipient, in recipient
// order. Context cancellation marks unattempted sends as failed outcomes.
func (d *Dispatcher) Dispatch(ctx context.Context, from, subject, text string, recipients []domain.Recipient) []domain.NotificationOutcome {
	outcomes := make([]domain.NotificationOutcome, len(recipients))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.workers)

	for i, recipient := range recipients {
		i, recipient := i, recipient
		g.Go(func() error {
			outcomes[i] = d.sendOne(gctx, domain.Letter{
				From:    from,
				ToName:  recipient.Name,
				ToEmail: recipient.Email,
				Subject: subject,
				Text:    text,
			}, recipient)
			// Errors are recorded per recipient, never returned: returning
			// one would cancel the sibling sends.
			return nil
		})
	}

	_ = g.Wait()

	return outcomes
}

func (d *Dispatcher) sendOne(ctx context.Context, letter domain.Letter, recipient domain.Recipient) domain.NotificationOutcome {
	if err := ctx.Err(); err != nil {
		lettersTotal.WithLabelValues("canceled").Inc()
		return domain.NotificationOutcome{Recipient: recipient, Sent: false, Error: err.Error()}
	}

	if err := d.mailer.Send(ctx, letter); err != nil {
		d.logger.ErrorContext(ctx, "letter send failed",
			slog.String("mailer", d.mailer.Name()),
			slog.String("to_name", recipient.Name),
			slog.String("to_email", recipient.Email),
			slog.String("error", err.Error()),
		)
		lettersTotal.WithLabelValues("failed").Inc()
		return domain.NotificationOutcome{Recipient: recipient, Sent: false, Error: err.Error()}
	}

	d.logger.InfoContext(ctx, "letter sent",
		slog.String("mailer", d.mailer.Name()),
		slog.String("to_name", recipient.Name),
		slog.String("to_email", recipient.Email),
	)
	lettersTotal.WithLabelValues("sent").Inc()
	return domain.NotificationOutcome{Recipient: recipient, Sent: true}
}
