// Package accounts implements registration, login and user administration
// over the credential store.
package accounts

import (
	"context"
	"errors"
	"strings"

	"github.com/uniarchive/photoarchive/internal/apperr"
	"github.com/uniarchive/photoarchive/internal/auth"
	"github.com/uniarchive/photoarchive/models"
	"gorm.io/gorm"
)

type Service struct {
	db     *gorm.DB
	tokens *auth.Tokens
}

func NewService(db *gorm.DB, tokens *auth.Tokens) *Service {
	return &Service{db: db, tokens: tokens}
}

type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates a user with the default public role and returns the user
// with a fresh bearer token. Duplicate emails surface as a conflict, decided
// by the unique constraint rather than a racy pre-check.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*models.User, string, error) {
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Email) == "" || in.Password == "" {
		return nil, "", apperr.Validation("Please provide all required fields.")
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, "", apperr.Storage("hash password", err)
	}

	user := &models.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         models.RolePublic,
	}
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, "", apperr.Conflict("User with this email already exists.")
		}
		return nil, "", apperr.Storage("create user", err)
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, "", apperr.Storage("issue token", err)
	}
	return user, token, nil
}

// Login verifies credentials and issues a token. Unknown email and wrong
// password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, "", apperr.Validation("Please provide email and password.")
	}

	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", apperr.Unauthenticated("Invalid credentials.")
		}
		return nil, "", apperr.Storage("find user", err)
	}
	if !auth.CheckPassword(password, user.PasswordHash) {
		return nil, "", apperr.Unauthenticated("Invalid credentials.")
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, "", apperr.Storage("issue token", err)
	}
	return &user, token, nil
}

// ChangePassword verifies the current password before storing a new hash.
func (s *Service) ChangePassword(ctx context.Context, userID uint, current, next string) error {
	if current == "" || next == "" {
		return apperr.Validation("Current password and new password are required.")
	}

	var user models.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("User not found.")
		}
		return apperr.Storage("find user", err)
	}
	if !auth.CheckPassword(current, user.PasswordHash) {
		return apperr.Unauthenticated("Current password is incorrect.")
	}

	hash, err := auth.HashPassword(next)
	if err != nil {
		return apperr.Storage("hash password", err)
	}
	if err := s.db.WithContext(ctx).Model(&user).Update("password_hash", hash).Error; err != nil {
		return apperr.Storage("update password", err)
	}
	return nil
}

// ListUsers returns all users, newest first. Hashes stay out of responses via
// the model's json tags.
func (s *Service) ListUsers(ctx context.Context) ([]models.User, error) {
	users := make([]models.User, 0)
	if err := s.db.WithContext(ctx).Order("created_at DESC").Find(&users).Error; err != nil {
		return nil, apperr.Storage("list users", err)
	}
	return users, nil
}

// UpdateRole sets a user's role to one of the closed role set.
func (s *Service) UpdateRole(ctx context.Context, userID uint, role models.Role) error {
	if !role.Valid() {
		return apperr.Validation("Invalid role.")
	}
	res := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Update("role", role)
	if res.Error != nil {
		return apperr.Storage("update role", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("User not found.")
	}
	return nil
}
