package service

import (
	"errors"
	"strings"

	"github.com/ticketdesk/transcript-ledger/internal/auth"
	"github.com/ticketdesk/transcript-ledger/internal/config"
	"github.com/ticketdesk/transcript-ledger/internal/domain"
)

var (
	// ErrInvalidKey is returned when a reporter key does not match.
	ErrInvalidKey = errors.New("invalid reporter key")
	// ErrKeyExchangeDisabled is returned when no reporter key hash is configured.
	ErrKeyExchangeDisabled = errors.New("reporter key exchange disabled")
)

// AccessService issues tokens for the reporting API.
type AccessService struct {
	tokenMgr   *auth.TokenManager
	keyHash    string
	bcryptCost int
}

// NewAccessService builds the service.
func NewAccessService(cfg config.AuthConfig) *AccessService {
	return &AccessService{
		tokenMgr:   auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTLMinutes),
		keyHash:    cfg.ReporterKeyHash,
		bcryptCost: cfg.BcryptCost,
	}
}

// Tokens exposes the manager for the auth middleware.
func (s *AccessService) Tokens() *auth.TokenManager {
	return s.tokenMgr
}

// Exchange trades the shared reporter key for a reporter token.
func (s *AccessService) Exchange(subjectID, key string) (domain.Token, string, error) {
	if s.keyHash == "" {
		return domain.Token{}, "", ErrKeyExchangeDisabled
	}
	subjectID = strings.TrimSpace(subjectID)
	if subjectID == "" || key == "" {
		return domain.Token{}, "", ErrInvalidKey
	}
	if err := auth.CompareKey(s.keyHash, key); err != nil {
		return domain.Token{}, "", ErrInvalidKey
	}
	return s.tokenMgr.GenerateToken(subjectID, domain.RoleReporter)
}

// Issue signs a token directly; used by the operator CLI.
func (s *AccessService) Issue(subjectID string, role domain.Role) (domain.Token, string, error) {
	if strings.TrimSpace(subjectID) == "" {
		return domain.Token{}, "", errors.New("subject required")
	}
	if role != domain.RoleReporter && role != domain.RoleAdmin {
		return domain.Token{}, "", errors.New("unknown role")
	}
	return s.tokenMgr.GenerateToken(subjectID, role)
}

// HashKey produces the value for AUTH_REPORTER_KEY_HASH.
func (s *AccessService) HashKey(key string) (string, error) {
	if key == "" {
		return "", errors.New("key required")
	}
	return auth.HashKey(key, s.bcryptCost)
}
