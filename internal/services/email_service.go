package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gopkg.in/gomail.v2"
)

var ErrMailerDisabled = errors.New("smtp not configured")

type EmailService interface {
	SendVerificationCode(ctx context.Context, email, code string) error
}

type mailDialer interface {
	DialAndSend(m ...*gomail.Message) error
}

type emailService struct {
	dialer  mailDialer
	from    string
	codeTTL time.Duration
}

func NewEmailService(smtpHost string, smtpPort int, smtpUser, smtpPassword, fromEmail string, codeTTL time.Duration) EmailService {
	s := &emailService{from: fromEmail, codeTTL: codeTTL}
	if smtpHost != "" && smtpUser != "" {
		s.dialer = gomail.NewDialer(smtpHost, smtpPort, smtpUser, smtpPassword)
	}
	return s
}

func (s *emailService) SendVerificationCode(ctx context.Context, email, code string) error {
	if s.dialer == nil {
		return ErrMailerDisabled
	}
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", email)
	m.SetHeader("Subject", "Your verification code")

	minutes := int(s.codeTTL.Minutes())
	m.SetBody("text/plain", fmt.Sprintf(
		"Hello,\n\nYour verification code is: %s\n\nThis code will expire in %d minutes.\n\n"+
			"If you didn't request this code, please ignore this email.\n", code, minutes))
	m.AddAlternative("text/html", fmt.Sprintf(`
		<h2>Verify your email</h2>
		<p>Your verification code is:</p>
		<p style="font-size:24px;font-weight:bold;letter-spacing:4px">%s</p>
		<p>This code will expire in %d minutes.</p>
		<p>If you didn't request this code, please ignore this email.</p>
	`, code, minutes))

	// gomail has no dial timeout; ctx bounds how long the caller waits.
	done := make(chan error, 1)
	go func() { done <- s.dialer.DialAndSend(m) }()
	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("failed to send verification email: %w", err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("failed to send verification email: %w", ctx.Err())
	}
}
