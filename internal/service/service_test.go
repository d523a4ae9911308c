package service

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/bloombouqet/bloom_shop/internal/models"
	"github.com/bloombouqet/bloom_shop/internal/repo"
)

func initTestRepo(t *testing.T) *repo.GormRepo {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect to in-memory db: %v", err)
	}

	// a fresh pool connection would see an empty in-memory database
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(1)
	}

	if err := db.AutoMigrate(&models.User{}, &models.AccessToken{}, &models.Category{}, &models.Product{}); err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}

	return repo.New(db)
}

func newAuthService(t *testing.T) *AuthService {
	t.Helper()
	r := initTestRepo(t)
	return &AuthService{Repo: r, Tokens: NewTokenService(r)}
}

func validRegisterInput() RegisterInput {
	return RegisterInput{
		Name:                 "Alice Flowers",
		Username:             "alice",
		Email:                "alice@x.com",
		Phone:                "0812345678",
		Password:             "secret1",
		PasswordConfirmation: "secret1",
	}
}

func userCount(t *testing.T, r *repo.GormRepo) int64 {
	t.Helper()
	var count int64
	require.NoError(t, r.DB.Model(&models.User{}).Count(&count).Error)
	return count
}
