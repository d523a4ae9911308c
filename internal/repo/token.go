package repo

import (
	"context"
	"time"

	"github.com/bloombouqet/bloom_shop/internal/models"
)

func (r *GormRepo) CreateToken(ctx context.Context, t *models.AccessToken) error {
	return r.DB.WithContext(ctx).Create(t).Error
}

func (r *GormRepo) FindValidTokenByHash(ctx context.Context, tokenHash string) (*models.AccessToken, error) {
	var token models.AccessToken
	if err := r.DB.WithContext(ctx).
		Where("token_hash = ? AND revoked_at IS NULL", tokenHash).
		First(&token).Error; err != nil {
		return nil, err
	}
	return &token, nil
}

// RevokeToken marks the token unusable. Revoking an already-revoked token
// leaves the original revocation timestamp in place.
func (r *GormRepo) RevokeToken(ctx context.Context, tokenID uint) error {
	now := time.Now().UTC()
	return r.DB.WithContext(ctx).Model(&models.AccessToken{}).
		Where("id = ? AND revoked_at IS NULL", tokenID).
		Update("revoked_at", &now).Error
}

func (r *GormRepo) CountValidTokens(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&models.AccessToken{}).
		Where("user_id = ? AND revoked_at IS NULL", userID).
		Count(&count).Error
	return count, err
}
