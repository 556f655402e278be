package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tasklist/internal/logger"
	"tasklist/internal/models"
	"tasklist/internal/repositories"
	"tasklist/internal/validate"
)

type RegisterInput struct {
	Email       string `validate:"required,email"`
	Password    string `validate:"required,min=6"`
	DisplayName string `validate:"max=255"`
}

type LoginResult struct {
	Account     *models.Account `json:"user"`
	AccessToken string          `json:"access_token"`
	TokenType   string          `json:"token_type"`
	ExpiresAt   time.Time       `json:"expires_at"`
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*models.Account, error)
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	// SendCode and ResendCode both honour the resend cooldown.
	SendCode(ctx context.Context, email string) error
	ResendCode(ctx context.Context, email string) error
	VerifyEmail(ctx context.Context, email, code string) error
	Me(ctx context.Context, accountID string) (*models.Account, error)
	// Authenticate validates a bearer token and loads the live, verified account.
	Authenticate(ctx context.Context, token string) (*models.Account, error)
}

type authService struct {
	accounts   repositories.AccountRepository
	codes      *CodeManager
	hasher     PasswordHasher
	tokens     TokenService
	dispatcher NotificationDispatcher
	metrics    *Metrics
	now        func() time.Time

	decoyOnce sync.Once
	decoy     string
}

func NewAuthService(
	accounts repositories.AccountRepository,
	codes *CodeManager,
	hasher PasswordHasher,
	tokens TokenService,
	dispatcher NotificationDispatcher,
	metrics *Metrics,
) AuthService {
	return &authService{
		accounts:   accounts,
		codes:      codes,
		hasher:     hasher,
		tokens:     tokens,
		dispatcher: dispatcher,
		metrics:    metrics,
		now:        codes.now,
	}
}

func (s *authService) Register(ctx context.Context, in RegisterInput) (*models.Account, error) {
	in.Email = normalizeEmail(in.Email)
	in.DisplayName = strings.TrimSpace(in.DisplayName)
	if err := validate.Struct(in); err != nil {
		return nil, invalidInput(err.Error())
	}
	// bcrypt counts bytes, the validator counts runes
	if len(in.Password) > MaxPasswordBytes {
		return nil, invalidInput("password must be at most 72 bytes")
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}
	if in.DisplayName == "" {
		in.DisplayName = strings.SplitN(in.Email, "@", 2)[0]
	}

	account := &models.Account{
		ID:           uuid.NewString(),
		Email:        in.Email,
		PasswordHash: hash,
		DisplayName:  in.DisplayName,
		CreatedAt:    s.now().UTC(),
	}
	rec, err := s.codes.NewRecord(in.Email)
	if err != nil {
		return nil, err
	}

	// the uniqueness constraint is the only duplicate check
	if err := s.accounts.CreateWithCode(ctx, account, rec); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			logger.Info(ctx, "register: email already registered", zap.String("email", in.Email))
			return nil, ErrAlreadyRegistered
		}
		logger.Error(ctx, "register: account not stored", zap.String("email", in.Email), zap.Error(err))
		return nil, persistence("create account", err)
	}
	s.metrics.codeIssued()
	logger.Info(ctx, "account registered", zap.String("account_id", account.ID), zap.String("email", account.Email))

	s.dispatcher.Dispatch(ctx, account.Email, rec.Code)
	return account, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = normalizeEmail(email)

	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			// same bcrypt work as a known email
			s.hasher.Verify(password, s.decoyHash())
			s.metrics.login("invalid_credentials")
			logger.Info(ctx, "login: unknown email", zap.String("email", email))
			return nil, ErrInvalidCredentials
		}
		return nil, persistence("load account", err)
	}
	if !s.hasher.Verify(password, account.PasswordHash) {
		s.metrics.login("invalid_credentials")
		logger.Info(ctx, "login: password mismatch", zap.String("account_id", account.ID))
		return nil, ErrInvalidCredentials
	}
	if !account.IsVerified {
		s.metrics.login("not_verified")
		return nil, ErrNotVerified
	}

	if s.hasher.NeedsRehash(account.PasswordHash) {
		s.upgradeHash(ctx, account, password)
	}

	token, expiresAt, err := s.tokens.Issue(account.ID, account.Email, account.DisplayName)
	if err != nil {
		return nil, err
	}
	s.metrics.login("ok")
	logger.Info(ctx, "login ok", zap.String("account_id", account.ID), zap.Time("token_expires_at", expiresAt))

	return &LoginResult{
		Account:     account,
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresAt:   expiresAt,
	}, nil
}

// upgradeHash moves a legacy hash to bcrypt. Failure keeps the old hash working.
func (s *authService) upgradeHash(ctx context.Context, account *models.Account, password string) {
	hash, err := s.hasher.Hash(password)
	if err == nil {
		err = s.accounts.UpdatePasswordHash(ctx, account.ID, hash)
	}
	if err != nil {
		logger.Warn(ctx, "password rehash failed", zap.String("account_id", account.ID), zap.Error(err))
		return
	}
	account.PasswordHash = hash
	logger.Info(ctx, "password hash upgraded", zap.String("account_id", account.ID))
}

func (s *authService) SendCode(ctx context.Context, email string) error {
	return s.issue(ctx, email)
}

func (s *authService) ResendCode(ctx context.Context, email string) error {
	return s.issue(ctx, email)
}

func (s *authService) issue(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if !validate.Email(email) {
		return invalidInput("email is not valid")
	}
	code, err := s.codes.Resend(ctx, email)
	if err != nil {
		return err
	}
	s.dispatcher.Dispatch(ctx, email, code)
	return nil
}

func (s *authService) VerifyEmail(ctx context.Context, email, code string) error {
	if strings.TrimSpace(code) == "" {
		return invalidInput("code is required")
	}
	return s.codes.Verify(ctx, email, code)
}

func (s *authService) Me(ctx context.Context, accountID string) (*models.Account, error) {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, persistence("load account", err)
	}
	return account, nil
}

func (s *authService) Authenticate(ctx context.Context, token string) (*models.Account, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return nil, err
	}
	account, err := s.Me(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return nil, ErrTokenInvalid
		}
		return nil, err
	}
	if !account.IsVerified {
		return nil, ErrNotVerified
	}
	return account, nil
}

// decoyHash is a bcrypt hash at the hasher's cost that no password matches
// in practice.
func (s *authService) decoyHash() string {
	s.decoyOnce.Do(func() {
		h, err := s.hasher.Hash(uuid.NewString())
		if err == nil {
			s.decoy = h
		}
	})
	return s.decoy
}
