package models

import (
	"time"
)

type User struct {
	ID           uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name         string `gorm:"not null"                 json:"name"`
	Username     string `gorm:"unique;not null"          json:"username"`
	Email        string `gorm:"unique;not null"          json:"email"`
	Phone        string `json:"phone"`
	PasswordHash string `gorm:"not null"                 json:"-"`
}

// AccessToken keeps only the SHA-256 of the issued value. The plaintext
// token is shown to the caller once and never stored.
type AccessToken struct {
	ID        uint       `gorm:"primaryKey"      json:"id"`
	TokenHash string     `gorm:"unique;not null" json:"-"`
	UserID    uint       `gorm:"index;not null"  json:"user_id"`
	CreatedAt time.Time  `json:"created_at"`
	RevokedAt *time.Time `json:"revoked_at,omitempty"`
}

type Category struct {
	ID   uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name string `gorm:"unique;not null"          json:"name"`
}

type Product struct {
	ID          uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string  `gorm:"not null"                 json:"name"`
	Description string  `json:"description"`
	Price       float64 `gorm:"not null"                 json:"price"`
	Stock       uint    `json:"stock"`
	CategoryID  uint    `gorm:"index;not null"           json:"category_id"`
	ImageURL    string  `json:"image_url"`
}
