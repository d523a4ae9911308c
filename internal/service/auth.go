package service

import (
	"context"
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"github.com/bloombouqet/bloom_shop/internal/hash"
	"github.com/bloombouqet/bloom_shop/internal/logging"
	"github.com/bloombouqet/bloom_shop/internal/models"
	"github.com/bloombouqet/bloom_shop/internal/mykafka"
	"github.com/bloombouqet/bloom_shop/internal/repo"
)

type AuthService struct {
	Repo     *repo.GormRepo
	Tokens   *TokenService
	Producer *mykafka.Producer
}

type RegisterInput struct {
	Name                 string `json:"name"`
	Username             string `json:"username"`
	Email                string `json:"email"`
	Phone                string `json:"phone"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}

func (in RegisterInput) validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Name, validation.Required, validation.Length(1, 255)),
		validation.Field(&in.Username, validation.Required, validation.Length(1, 255)),
		validation.Field(&in.Email, validation.Required, validation.Length(1, 255), is.Email),
		validation.Field(&in.Phone, validation.Required, validation.Length(10, 15)),
		validation.Field(&in.Password, validation.Required, validation.Length(6, 0)),
	)
}

// UpdateProfileInput holds only the updatable fields. Anything else in the
// request payload (name, username) is dropped at binding and never applied.
type UpdateProfileInput struct {
	Email *string `json:"email"`
	Phone *string `json:"phone"`
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, string, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	ve := newValidationError()
	ve.merge(in.validate())
	if in.Password != "" && in.Password != in.PasswordConfirmation {
		ve.add("password", "the password confirmation does not match")
	}
	if in.Username != "" {
		taken, err := s.Repo.UsernameTaken(ctx, in.Username)
		if err != nil {
			return nil, "", &PersistenceError{Op: "check username", Err: err}
		}
		if taken {
			ve.add("username", "the username has already been taken")
		}
	}
	if in.Email != "" {
		taken, err := s.Repo.EmailTaken(ctx, in.Email, 0)
		if err != nil {
			return nil, "", &PersistenceError{Op: "check email", Err: err}
		}
		if taken {
			ve.add("email", "the email has already been taken")
		}
	}
	if !ve.empty() {
		l.Warn("register_failed", "status", 422, "reason", "validation failed")
		return nil, "", ve
	}

	pwHash, err := hash.HashPassword(in.Password)
	if err != nil {
		l.Error("register_failed", "status", 500, "reason", "cannot hash the password", "error", err)
		return nil, "", err
	}

	user := &models.User{
		Name:         in.Name,
		Username:     in.Username,
		Email:        in.Email,
		Phone:        in.Phone,
		PasswordHash: pwHash,
	}
	if err := s.Repo.CreateUser(ctx, user); err != nil {
		// validation passed, so this is a store-level rejection such as a
		// uniqueness race with another instance
		l.Error("register_failed", "status", 500, "error", err)
		return nil, "", &PersistenceError{Op: "create user", Err: err}
	}

	token, _, err := s.Tokens.Issue(ctx, user.ID)
	if err != nil {
		l.Error("register_failed", "status", 500, "reason", "cannot issue token", "error", err)
		return nil, "", err
	}

	s.publish(ctx, user.ID, map[string]interface{}{
		"type":     "user_registered",
		"userID":   user.ID,
		"username": user.Username,
	})

	l.Info("user_registered", "user_id", user.ID)
	return user, token, nil
}

func (s *AuthService) Login(ctx context.Context, username, password string) (*models.User, string, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login")

	ve := newValidationError()
	if username == "" {
		ve.add("username", "cannot be blank")
	}
	if password == "" {
		ve.add("password", "cannot be blank")
	}
	if !ve.empty() {
		return nil, "", ve
	}

	user, err := s.Repo.FindUserByUsername(ctx, username)
	if err != nil {
		if repo.IsNotFound(err) {
			l.Warn("login_failed", "status", 401, "reason", "invalid credentials")
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", &PersistenceError{Op: "find user", Err: err}
	}

	if !hash.CheckPassword(user.PasswordHash, password) {
		l.Warn("login_failed", "status", 401, "reason", "invalid credentials")
		return nil, "", ErrInvalidCredentials
	}

	token, _, err := s.Tokens.Issue(ctx, user.ID)
	if err != nil {
		return nil, "", err
	}

	s.publish(ctx, user.ID, map[string]interface{}{
		"type":     "user_logged_in",
		"userID":   user.ID,
		"username": user.Username,
	})

	l.Info("login_successful", "user_id", user.ID)
	return user, token, nil
}

// Logout revokes exactly the presented token; other tokens held by the same
// user stay valid.
func (s *AuthService) Logout(ctx context.Context, user *models.User, tokenID uint) error {
	if err := s.Tokens.Revoke(ctx, tokenID); err != nil {
		return err
	}

	s.publish(ctx, user.ID, map[string]interface{}{
		"type":     "user_logged_out",
		"userID":   user.ID,
		"username": user.Username,
	})

	return nil
}

func (s *AuthService) UpdateProfile(ctx context.Context, user *models.User, in UpdateProfileInput) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.update_profile", "user_id", user.ID)

	ve := newValidationError()
	if in.Email != nil {
		if err := validation.Validate(*in.Email, validation.Required, validation.Length(1, 255), is.Email); err != nil {
			ve.add("email", err.Error())
		} else {
			taken, err := s.Repo.EmailTaken(ctx, *in.Email, user.ID)
			if err != nil {
				return nil, &PersistenceError{Op: "check email", Err: err}
			}
			if taken {
				ve.add("email", "the email has already been taken")
			}
		}
	}
	if in.Phone != nil {
		if err := validation.Validate(*in.Phone, validation.Required, validation.Length(10, 15)); err != nil {
			ve.add("phone", err.Error())
		}
	}
	if !ve.empty() {
		l.Warn("update_profile_failed", "status", 422, "reason", "validation failed")
		return nil, ve
	}

	if in.Email != nil {
		user.Email = *in.Email
	}
	if in.Phone != nil {
		user.Phone = *in.Phone
	}
	if err := s.Repo.SaveUser(ctx, user); err != nil {
		l.Error("update_profile_failed", "status", 500, "error", err)
		return nil, &PersistenceError{Op: "save user", Err: err}
	}

	s.publish(ctx, user.ID, map[string]interface{}{
		"type":   "profile_updated",
		"userID": user.ID,
	})

	return user, nil
}

func (s *AuthService) publish(ctx context.Context, userID uint, event map[string]interface{}) {
	pubCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.Producer.PublishEvent(pubCtx, "user_events", fmt.Sprint(userID), event); err != nil {
		logging.FromContext(ctx).Error("kafka publish error", "error", err)
	}
}
