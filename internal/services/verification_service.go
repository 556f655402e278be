package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"tasklist/internal/logger"
	"tasklist/internal/models"
	"tasklist/internal/repositories"
	"tasklist/internal/utils"
)

const (
	codeDigits             = 6
	defaultVerificationTTL = 10 * time.Minute
)

var newCode = func() (string, error) {
	return utils.NewNumericCode(codeDigits)
}

// VerificationService issues and consumes the one-time codes that prove e-mail ownership.
type VerificationService interface {
	Generate(ctx context.Context, email string) (string, error)
	Verify(ctx context.Context, email, code string) error
	Resend(ctx context.Context, email string) (string, error)
}

type VerificationOptions struct {
	CodeTTL  time.Duration
	Throttle *ResendThrottle
	Metrics  *Metrics
	Now      func() time.Time
}

// CodeManager is the database-backed VerificationService.
type CodeManager struct {
	codes    repositories.VerificationCodeRepository
	ttl      time.Duration
	throttle *ResendThrottle
	metrics  *Metrics
	now      func() time.Time
}

func NewCodeManager(codes repositories.VerificationCodeRepository, opts VerificationOptions) *CodeManager {
	s := &CodeManager{
		codes:    codes,
		ttl:      opts.CodeTTL,
		throttle: opts.Throttle,
		metrics:  opts.Metrics,
		now:      opts.Now,
	}
	if s.ttl <= 0 {
		s.ttl = defaultVerificationTTL
	}
	if s.throttle == nil {
		s.throttle = NewResendThrottle(0)
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// NewRecord builds an unsaved code for email, valid from now for the configured TTL.
func (s *CodeManager) NewRecord(email string) (*models.VerificationCode, error) {
	code, err := newCode()
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	return &models.VerificationCode{
		Email:     email,
		Code:      code,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}, nil
}

func (s *CodeManager) Generate(ctx context.Context, email string) (string, error) {
	email = normalizeEmail(email)
	rec, err := s.NewRecord(email)
	if err != nil {
		return "", err
	}
	if err := s.codes.Replace(ctx, rec); err != nil {
		logger.Error(ctx, "verification code not stored", zap.String("email", email), zap.Error(err))
		return "", persistence("store verification code", err)
	}
	s.metrics.codeIssued()
	logger.Info(ctx, "verification code issued",
		zap.String("email", email), zap.Time("expires_at", rec.ExpiresAt))
	return rec.Code, nil
}

func (s *CodeManager) Verify(ctx context.Context, email, code string) error {
	email = normalizeEmail(email)
	code = strings.TrimSpace(code)

	latest, err := s.codes.Latest(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			s.metrics.codeRejected("not_found")
			return ErrCodeNotFound
		}
		return persistence("load verification code", err)
	}
	if latest.Expired(s.now()) {
		s.metrics.codeRejected("expired")
		return ErrCodeExpired
	}
	if subtle.ConstantTimeCompare([]byte(latest.Code), []byte(code)) != 1 {
		s.metrics.codeRejected("mismatch")
		return ErrCodeMismatch
	}

	switch err := s.codes.ConsumeAndVerify(ctx, latest.ID, email); {
	case err == nil:
	case errors.Is(err, repositories.ErrNotFound):
		// another request consumed it first
		s.metrics.codeRejected("consumed")
		return ErrCodeNotFound
	case errors.Is(err, repositories.ErrNoAccount):
		s.metrics.codeRejected("no_account")
		return ErrAccountNotFound
	default:
		return persistence("consume verification code", err)
	}

	s.metrics.codeVerified()
	logger.Info(ctx, "email verified", zap.String("email", email))
	return nil
}

func (s *CodeManager) Resend(ctx context.Context, email string) (string, error) {
	email = normalizeEmail(email)
	if err := s.checkThrottle(ctx, email); err != nil {
		return "", err
	}
	return s.Generate(ctx, email)
}

func (s *CodeManager) checkThrottle(ctx context.Context, email string) error {
	latest, err := s.codes.Latest(ctx, email)
	var lastIssued *time.Time
	switch {
	case err == nil:
		lastIssued = &latest.CreatedAt
	case errors.Is(err, repositories.ErrNotFound):
	default:
		return persistence("load verification code", err)
	}
	if err := s.throttle.Check(lastIssued, s.now()); err != nil {
		s.metrics.throttled()
		logger.Info(ctx, "resend throttled", zap.String("email", email), zap.Error(err))
		return err
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
