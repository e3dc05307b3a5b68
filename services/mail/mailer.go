package mail

import (
	"context"

	"go.uber.org/zap"
)

// Mailer delivers policy enforcement notifications to removed members.
// Delivery is fire-and-forget from the engine's perspective: a failed send
// never aborts the policy save.
type Mailer interface {
	// SendRemovedForTwoFactor notifies a member removed for not meeting the
	// two-step login requirement
	SendRemovedForTwoFactor(ctx context.Context, orgName, email string) error

	// SendRemovedForSingleOrg notifies a member removed for belonging to
	// more than one organization
	SendRemovedForSingleOrg(ctx context.Context, orgName, email string) error
}

// LogMailer is a Mailer that only logs; used in development and tests.
type LogMailer struct {
	logger *zap.Logger
}

// NewLogMailer creates a new LogMailer
func NewLogMailer(logger *zap.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

// SendRemovedForTwoFactor logs the notification instead of delivering it
func (m *LogMailer) SendRemovedForTwoFactor(_ context.Context, orgName, email string) error {
	m.logger.Info("mail: removed for two-step login requirement",
		zap.String("organization", orgName),
		zap.String("email", email))
	return nil
}

// SendRemovedForSingleOrg logs the notification instead of delivering it
func (m *LogMailer) SendRemovedForSingleOrg(_ context.Context, orgName, email string) error {
	m.logger.Info("mail: removed for single organization requirement",
		zap.String("organization", orgName),
		zap.String("email", email))
	return nil
}
