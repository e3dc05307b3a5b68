package mail

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/calvinballing/server/config"
	"go.uber.org/zap"
)

const (
	removedForTwoFactorSubject = "You have been removed from %s"
	removedForTwoFactorBody    = "Your user account has been removed from the %s organization because you do not have two-step login configured. Before you can re-join this organization you need to set up two-step login on your user account."

	removedForSingleOrgSubject = "You have been removed from %s"
	removedForSingleOrgBody    = "Your user account has been removed from the %s organization because you are a member of another organization. The %s organization has enabled a policy that prevents users from being a member of multiple organizations."
)

// SMTPMailer delivers notifications over SMTP
type SMTPMailer struct {
	cfg    config.MailConfig
	logger *zap.Logger
}

// NewSMTPMailer creates a new SMTPMailer
func NewSMTPMailer(cfg config.MailConfig, logger *zap.Logger) *SMTPMailer {
	return &SMTPMailer{
		cfg:    cfg,
		logger: logger,
	}
}

// SendRemovedForTwoFactor notifies a member removed for not meeting the
// two-step login requirement
func (m *SMTPMailer) SendRemovedForTwoFactor(ctx context.Context, orgName, email string) error {
	subject := fmt.Sprintf(removedForTwoFactorSubject, orgName)
	body := fmt.Sprintf(removedForTwoFactorBody, orgName)
	return m.send(ctx, email, subject, body)
}

// SendRemovedForSingleOrg notifies a member removed for belonging to more
// than one organization
func (m *SMTPMailer) SendRemovedForSingleOrg(ctx context.Context, orgName, email string) error {
	subject := fmt.Sprintf(removedForSingleOrgSubject, orgName)
	body := fmt.Sprintf(removedForSingleOrgBody, orgName, orgName)
	return m.send(ctx, email, subject, body)
}

func (m *SMTPMailer) send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)

	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}

	msg := buildMessage(m.cfg.From, to, subject, body)

	if err := smtp.SendMail(addr, auth, m.cfg.From, []string{to}, msg); err != nil {
		m.logger.Warn("failed to send mail",
			zap.String("to", to),
			zap.String("subject", subject),
			zap.Error(err))
		return fmt.Errorf("failed to send mail to %s: %w", to, err)
	}

	m.logger.Debug("mail sent",
		zap.String("to", to),
		zap.String("subject", subject))
	return nil
}

func buildMessage(from, to, subject, body string) []byte {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(body + "\r\n")
	return []byte(b.String())
}
