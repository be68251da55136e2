package email

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	appnotif "nomadly/internal/application/notification"
	"nomadly/internal/shared/config"
	apperrors "nomadly/internal/shared/errors"
	"nomadly/internal/shared/logger"
)

// SMTPSender delivers plain-text notification emails through SMTP.
type SMTPSender struct {
	dialer      *gomail.Dialer
	fromAddress string
	fromName    string
	logger      logger.Interface
}

var _ appnotif.EmailSender = (*SMTPSender)(nil)

func NewSMTPSender(cfg *config.EmailConfig, logger logger.Interface) *SMTPSender {
	return &SMTPSender{
		dialer:      gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword),
		fromAddress: cfg.FromAddress,
		fromName:    cfg.FromName,
		logger:      logger,
	}
}

func (s *SMTPSender) SendEmail(ctx context.Context, address, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.fromAddress, s.fromName)
	m.SetHeader("To", address)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return apperrors.NewExternalError(fmt.Sprintf("failed to send email to %s", address), err.Error())
	}

	s.logger.Debugw("email sent", "to", address, "subject", subject)
	return nil
}
