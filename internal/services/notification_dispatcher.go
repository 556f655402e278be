package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"tasklist/internal/logger"
)

// NotificationDispatcher delivers codes best-effort. The code is already
// persisted when Dispatch runs, so a failure only costs the e-mail.
type NotificationDispatcher interface {
	Dispatch(ctx context.Context, email, code string) bool
}

type dispatcher struct {
	mail    EmailService
	alerter Alerter
	metrics *Metrics
	timeout time.Duration
}

func NewNotificationDispatcher(mail EmailService, alerter Alerter, metrics *Metrics, timeout time.Duration) NotificationDispatcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &dispatcher{mail: mail, alerter: alerter, metrics: metrics, timeout: timeout}
}

func (d *dispatcher) Dispatch(ctx context.Context, email, code string) bool {
	// detached from the request: a client disconnect must not cancel delivery mid-flight
	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.timeout)
	defer cancel()

	err := d.mail.SendVerificationCode(sendCtx, email, code)
	if err == nil {
		logger.Info(ctx, "verification email sent", zap.String("email", email))
		return true
	}

	// recovery channel for operators
	logger.Fallback().Info("undelivered verification code",
		zap.String("email", email), zap.String("code", code), zap.String("reason", err.Error()))

	if errors.Is(err, ErrMailerDisabled) {
		logger.Warn(ctx, "smtp disabled, code written to fallback log", zap.String("email", email))
		return false
	}

	d.metrics.dispatchFailure()
	logger.Warn(ctx, "verification email failed", zap.String("email", email), zap.Error(err))
	if d.alerter != nil {
		text := fmt.Sprintf("Verification e-mail delivery failed for %s: %v", email, err)
		if aerr := d.alerter.Alert(ctx, text); aerr != nil {
			logger.Warn(ctx, "ops alert failed", zap.Error(aerr))
		}
	}
	return false
}
