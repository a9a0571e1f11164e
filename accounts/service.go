// SPDX-License-Identifier: GPL-3.0-only

package accounts

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"saraha-server/commons"
	"saraha-server/crypto"
	"saraha-server/models"
	"saraha-server/notifications"
	"saraha-server/tokens"

	"gorm.io/gorm"
)

// Service drives the account state machine:
// Unregistered -> Registered(unconfirmed) -> Registered(confirmed).
// There is no path back; confirmation flips exactly once.
type Service struct {
	DB     *gorm.DB
	Crypto *crypto.Crypto
	Tokens *tokens.TokenService
}

func NewService(conn *gorm.DB, c *crypto.Crypto, ts *tokens.TokenService) *Service {
	return &Service{DB: conn, Crypto: c, Tokens: ts}
}

type RegisterParams struct {
	UserName        string
	Email           string
	Password        string
	ConfirmPassword string
	Phone           string
}

// Register creates an unconfirmed account. The password is hashed and
// the phone encrypted before anything is persisted; a missing phone
// stays NULL rather than becoming an empty ciphertext. The activation
// email is dispatched asynchronously, so a mail outage never rolls back
// the created account.
func (s *Service) Register(ctx context.Context, params RegisterParams) (*models.User, error) {
	if params.Password != params.ConfirmPassword {
		return nil, ErrPasswordMismatch
	}

	var existing models.User
	err := s.DB.WithContext(ctx).Where("email = ?", params.Email).First(&existing).Error
	if err == nil {
		return nil, ErrDuplicateEmail
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	hash, err := s.Crypto.HashPassword(params.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		UserName: params.UserName,
		Email:    params.Email,
		Password: hash,
	}
	if strings.TrimSpace(params.Phone) != "" {
		ciphertext, err := s.Crypto.EncryptPhone(params.Phone)
		if err != nil {
			return nil, fmt.Errorf("failed to encrypt phone number: %w", err)
		}
		user.Phone = &ciphertext
	}

	if err := s.DB.WithContext(ctx).Create(&user).Error; err != nil {
		// The unique index is the final arbiter when two registrations
		// race on the same email; the losing insert lands here.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	activationToken, err := s.Tokens.IssueActivationToken(user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to issue activation token: %w", err)
	}

	baseURL := commons.GetEnv("BASE_URL", "http://localhost:8080")
	activationLink := baseURL + "/auth/activate_account/token=" + activationToken
	userName := user.UserName
	go notifications.DispatchNotification(notifications.Email, notifications.SMTP, notifications.NotificationData{
		To:       user.Email,
		ToName:   &userName,
		Subject:  "Welcome to Our Service - Verify Your Email",
		Template: "activation",
		Variables: map[string]any{
			"username":        user.UserName,
			"activation_link": activationLink,
		},
	})

	return &user, nil
}

// Login verifies credentials and issues a session token. The stored
// record is returned as-is: the phone stays ciphertext here, only the
// user listing and profile reads decrypt it.
func (s *Service) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	var user models.User
	if err := s.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, ErrNotFound
		}
		return "", nil, fmt.Errorf("failed to find user: %w", err)
	}

	if err := s.Crypto.VerifyPassword(password, user.Password); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	sessionToken, err := s.Tokens.IssueSessionToken(user.ID)
	if err != nil {
		return "", nil, fmt.Errorf("failed to issue session token: %w", err)
	}
	return sessionToken, &user, nil
}

// Activate confirms the email bound by the activation token. Activating
// an already-confirmed account is a no-op, not an error; a token whose
// email no longer resolves to a user fails ErrNotFound.
func (s *Service) Activate(ctx context.Context, token string) (*models.User, error) {
	email, err := s.Tokens.VerifyActivationToken(token)
	if err != nil {
		return nil, err
	}

	var user models.User
	if err := s.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find user for activation: %w", err)
	}

	if user.ConfirmedEmail {
		return &user, nil
	}

	if err := s.DB.WithContext(ctx).Model(&user).Update("confirmed_email", true).Error; err != nil {
		return nil, fmt.Errorf("failed to confirm email: %w", err)
	}
	user.ConfirmedEmail = true
	return &user, nil
}

// UpdateProfile overwrites email and userName. Password and phone are
// untouched by design.
func (s *Service) UpdateProfile(ctx context.Context, id uint, email, userName string) (*models.User, error) {
	var user models.User
	if err := s.DB.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	updates := map[string]any{"email": email, "user_name": userName}
	if err := s.DB.WithContext(ctx).Model(&user).Updates(updates).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	user.Email = email
	user.UserName = userName
	return &user, nil
}

// ChangePassword re-hashes and overwrites the password after verifying
// the current one.
func (s *Service) ChangePassword(ctx context.Context, email, currentPassword, newPassword string) (*models.User, error) {
	var user models.User
	if err := s.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if err := s.Crypto.VerifyPassword(currentPassword, user.Password); err != nil {
		return nil, ErrInvalidCredentials
	}

	hash, err := s.Crypto.HashPassword(newPassword)
	if err != nil {
		return nil, fmt.Errorf("failed to hash new password: %w", err)
	}
	if err := s.DB.WithContext(ctx).Model(&user).Update("password", hash).Error; err != nil {
		return nil, fmt.Errorf("failed to update password: %w", err)
	}
	user.Password = hash
	return &user, nil
}

func (s *Service) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := s.DB.WithContext(ctx).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// DecryptedPhone is the presentation form of a user's phone: plaintext
// when the stored ciphertext decrypts, "" when absent or undecryptable.
func (s *Service) DecryptedPhone(user *models.User) string {
	if user.Phone == nil || strings.TrimSpace(*user.Phone) == "" {
		return ""
	}
	return s.Crypto.DecryptPhone(*user.Phone)
}
