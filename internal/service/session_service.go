package service

import (
	"context"
	"errors"
	"strings"

	"Gated_Community/internal/pkg"

	"go.uber.org/zap"
)

const SessionKeyPrefix = "session:wallet:"

var (
	ErrAccountRequired = errors.New("account required")
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionMismatch = errors.New("account has been connected elsewhere")
)

// SessionService 钱包会话：JWT 签发后写入同一个键值存储，每个账户只保留最新的一个
type SessionService struct {
	store  Store
	issuer *pkg.TokenIssuer
	logger *zap.Logger
}

func NewSessionService(store Store, issuer *pkg.TokenIssuer, logger *zap.Logger) *SessionService {
	return &SessionService{
		store:  store,
		issuer: issuer,
		logger: logger.With(zap.String("component", "session_service")),
	}
}

func sessionKey(account string) string {
	return SessionKeyPrefix + strings.ToLower(account)
}

func (s *SessionService) Connect(ctx context.Context, account string) (string, error) {
	account = strings.TrimSpace(account)
	if account == "" {
		return "", ErrAccountRequired
	}
	if !s.store.IsAvailable(ctx) {
		return "", ErrStoreUnavailable
	}
	token, err := s.issuer.Issue(account)
	if err != nil {
		return "", err
	}
	if err := s.store.Set(ctx, sessionKey(account), []byte(token)); err != nil {
		return "", err
	}
	s.logger.Info("wallet connected", zap.String("account", account))
	return token, nil
}

// Disconnect 写入空值即视为删除（幂等）
func (s *SessionService) Disconnect(ctx context.Context, account string) error {
	if account == "" {
		return ErrAccountRequired
	}
	return s.store.Set(ctx, sessionKey(account), nil)
}

// Authenticate 校验 token 并确认是该账户当前的会话
func (s *SessionService) Authenticate(ctx context.Context, token string) (string, error) {
	claims, err := s.issuer.Parse(token)
	if err != nil {
		return "", err
	}
	stored, err := s.store.Get(ctx, sessionKey(claims.Account))
	if err != nil {
		return "", err
	}
	if len(stored) == 0 {
		return "", ErrSessionNotFound
	}
	if string(stored) != token {
		return "", ErrSessionMismatch
	}
	return claims.Account, nil
}
