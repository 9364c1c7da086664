package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/amirasaad/acmebank/pkg/config"
	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrUnauthorized is returned for bad credentials and unusable tokens.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrMissingSecret is returned when a JWT is requested without a signing secret.
	ErrMissingSecret = errors.New("jwt secret is not configured")
)

type contextKey string

const tokenContextKey contextKey = "user"

// Authenticator checks an account id and password. *bank.Service satisfies it.
type Authenticator interface {
	Authenticate(ctx context.Context, accountID, password string) bool
}

// Strategy is one way of logging in and identifying the caller.
type Strategy interface {
	Login(ctx context.Context, accountID, password string) (string, error)
	GetCurrentAccountID(ctx context.Context) (string, error)
	GenerateToken(ctx context.Context, accountID string) (string, error)
}

type Service struct {
	strategy Strategy
	logger   *slog.Logger
}

func New(strategy Strategy, logger *slog.Logger) *Service {
	return &Service{strategy: strategy, logger: logger}
}

// NewWithBasic is used by the console, which keeps the account id in memory
// for the session and never issues tokens.
func NewWithBasic(bank Authenticator, logger *slog.Logger) *Service {
	return New(NewBasicAuthStrategy(bank, logger), logger)
}

func NewWithJWT(bank Authenticator, cfg *config.Jwt, logger *slog.Logger) *Service {
	return New(NewJWTStrategy(bank, cfg, logger), logger)
}

func (s *Service) Login(ctx context.Context, accountID, password string) (string, error) {
	log := s.logger.With("context", "Login", "account_id", accountID)
	log.Debug("Login called")
	id, err := s.strategy.Login(ctx, accountID, password)
	if err != nil {
		log.Warn("Login failed", "error", err)
		return "", err
	}
	log.Info("Login successful")
	return id, nil
}

func (s *Service) GenerateToken(ctx context.Context, accountID string) (string, error) {
	token, err := s.strategy.GenerateToken(ctx, accountID)
	if err != nil {
		s.logger.Error("GenerateToken failed", "account_id", accountID, "error", err)
		return "", err
	}
	return token, nil
}

// GetCurrentAccountID extracts the account id from a verified token.
func (s *Service) GetCurrentAccountID(token *jwt.Token) (string, error) {
	id, err := s.strategy.GetCurrentAccountID(
		context.WithValue(context.Background(), tokenContextKey, token),
	)
	if err != nil {
		s.logger.Debug("GetCurrentAccountID failed", "error", err)
		return "", err
	}
	return id, nil
}

// JWTStrategy issues HS256 tokens carrying the account id.
type JWTStrategy struct {
	bank   Authenticator
	cfg    *config.Jwt
	logger *slog.Logger
	now    func() time.Time
}

func NewJWTStrategy(bank Authenticator, cfg *config.Jwt, logger *slog.Logger) *JWTStrategy {
	if cfg == nil {
		cfg = &config.Jwt{}
	}
	return &JWTStrategy{bank: bank, cfg: cfg, logger: logger, now: time.Now}
}

func (s *JWTStrategy) Login(ctx context.Context, accountID, password string) (string, error) {
	if accountID == "" || password == "" || !s.bank.Authenticate(ctx, accountID, password) {
		return "", ErrUnauthorized
	}
	return accountID, nil
}

func (s *JWTStrategy) GenerateToken(_ context.Context, accountID string) (string, error) {
	if s.cfg.Secret == "" {
		return "", ErrMissingSecret
	}
	expiry := s.cfg.Expiry
	if expiry <= 0 {
		expiry = 24 * time.Hour
	}
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"account_id": accountID,
		"iat":        now.Unix(),
		"exp":        now.Add(expiry).Unix(),
	})
	signed, err := token.SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (s *JWTStrategy) GetCurrentAccountID(ctx context.Context) (string, error) {
	token, ok := ctx.Value(tokenContextKey).(*jwt.Token)
	if !ok || token == nil {
		return "", ErrUnauthorized
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrUnauthorized
	}
	id, ok := claims["account_id"].(string)
	if !ok || id == "" {
		return "", ErrUnauthorized
	}
	return id, nil
}

// BasicAuthStrategy only checks the password.
type BasicAuthStrategy struct {
	bank   Authenticator
	logger *slog.Logger
}

func NewBasicAuthStrategy(bank Authenticator, logger *slog.Logger) *BasicAuthStrategy {
	return &BasicAuthStrategy{bank: bank, logger: logger}
}

func (s *BasicAuthStrategy) Login(ctx context.Context, accountID, password string) (string, error) {
	if !s.bank.Authenticate(ctx, accountID, password) {
		return "", ErrUnauthorized
	}
	return accountID, nil
}

func (s *BasicAuthStrategy) GetCurrentAccountID(context.Context) (string, error) {
	return "", ErrUnauthorized
}

func (s *BasicAuthStrategy) GenerateToken(context.Context, string) (string, error) {
	return "", nil // no tokens for the console
}
