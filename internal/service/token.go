package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"

	"github.com/bloombouqet/bloom_shop/internal/models"
	"github.com/bloombouqet/bloom_shop/internal/repo"
)

// tokenBytes gives 256 bits of entropy per issued token.
const tokenBytes = 32

// TokenService issues opaque bearer tokens. Only the SHA-256 of a value is
// persisted, so a leaked tokens table does not leak usable tokens.
type TokenService struct {
	Repo *repo.GormRepo
}

func NewTokenService(r *repo.GormRepo) *TokenService {
	return &TokenService{Repo: r}
}

func (s *TokenService) Issue(ctx context.Context, userID uint) (string, uint, error) {
	raw := make([]byte, tokenBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", 0, err
	}
	value := hex.EncodeToString(raw)

	token := &models.AccessToken{
		TokenHash: Sha256Hex(value),
		UserID:    userID,
	}
	if err := s.Repo.CreateToken(ctx, token); err != nil {
		return "", 0, &PersistenceError{Op: "create token", Err: err}
	}

	return value, token.ID, nil
}

// Resolve maps a presented token value to its owner. A revoked token, an
// unknown token, and a token whose owner is gone are all ErrUnauthenticated.
func (s *TokenService) Resolve(ctx context.Context, value string) (*models.User, uint, error) {
	if value == "" {
		return nil, 0, ErrUnauthenticated
	}

	token, err := s.Repo.FindValidTokenByHash(ctx, Sha256Hex(value))
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, 0, ErrUnauthenticated
		}
		return nil, 0, &PersistenceError{Op: "find token", Err: err}
	}

	user, err := s.Repo.FindUserByID(ctx, token.UserID)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, 0, ErrUnauthenticated
		}
		return nil, 0, &PersistenceError{Op: "find token owner", Err: err}
	}

	return user, token.ID, nil
}

// Revoke invalidates a single token. Revoking an already-revoked token is a
// no-op success.
func (s *TokenService) Revoke(ctx context.Context, tokenID uint) error {
	if err := s.Repo.RevokeToken(ctx, tokenID); err != nil {
		return &PersistenceError{Op: "revoke token", Err: err}
	}
	return nil
}

func Sha256Hex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
