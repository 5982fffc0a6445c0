package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/prithwish249/qr-attendence/internal/config"
	"github.com/prithwish249/qr-attendence/internal/models"
	"github.com/prithwish249/qr-attendence/internal/repo"
	"github.com/prithwish249/qr-attendence/internal/utils"
)

type AuthService struct {
	users UserStore
	cfg   *config.Config
}

type TokenResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresIn   int64        `json:"expires_in"`
	User        UserResponse `json:"user"`
}

type UserResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

type Claims struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

func NewAuthService(users UserStore, cfg *config.Config) *AuthService {
	return &AuthService{users: users, cfg: cfg}
}

func (s *AuthService) Login(ctx context.Context, username, password string) (*TokenResponse, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, utils.NewAppError(401, "UNAUTHORIZED", "Invalid username or password", nil)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, utils.NewAppError(401, "UNAUTHORIZED", "Invalid username or password", nil)
	}

	token, expiresIn, err := s.generateToken(user)
	if err != nil {
		return nil, utils.NewAppError(500, "INTERNAL_ERROR", "could not generate token", nil)
	}

	return &TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   expiresIn,
		User: UserResponse{
			ID:       user.ID,
			Username: user.Username,
			Role:     user.Role,
		},
	}, nil
}

func (s *AuthService) ListUsers(ctx context.Context) ([]UserResponse, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, utils.NewAppError(500, "INTERNAL_ERROR", "could not list users", nil)
	}

	out := make([]UserResponse, 0, len(users))
	for _, user := range users {
		out = append(out, UserResponse{ID: user.ID, Username: user.Username, Role: user.Role})
	}
	return out, nil
}

func (s *AuthService) CreateUser(ctx context.Context, username, password, role string) (*models.User, error) {
	if !models.ValidRole(role) {
		return nil, utils.NewAppError(400, "VALIDATION_ERROR", "Role must be either ADMIN or EMPLOYEE", nil)
	}
	if len(password) < s.cfg.PasswordMinLen {
		return nil, utils.NewAppError(400, "VALIDATION_ERROR", fmt.Sprintf("password must be at least %d characters", s.cfg.PasswordMinLen), nil)
	}

	exists, err := s.users.ExistsByUsername(ctx, username)
	if err != nil {
		return nil, utils.NewAppError(500, "INTERNAL_ERROR", "could not check existing users", nil)
	}
	if exists {
		return nil, utils.NewAppError(409, "CONFLICT", "Username already exists", nil)
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, utils.NewAppError(500, "INTERNAL_ERROR", "could not secure password", nil)
	}

	user, err := s.users.Create(ctx, username, role, string(passwordHash))
	if err != nil {
		return nil, utils.NewAppError(500, "INTERNAL_ERROR", "could not create user", nil)
	}

	return user, nil
}

func (s *AuthService) DeleteUser(ctx context.Context, id int64) error {
	err := s.users.Delete(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return utils.NewAppError(404, "NOT_FOUND", "User not found", nil)
	}
	if err != nil {
		return utils.NewAppError(500, "INTERNAL_ERROR", "could not delete user", nil)
	}
	return nil
}

func (s *AuthService) ChangePassword(ctx context.Context, id int64, newPassword string) error {
	if len(newPassword) < s.cfg.PasswordMinLen {
		return utils.NewAppError(400, "VALIDATION_ERROR", fmt.Sprintf("password must be at least %d characters", s.cfg.PasswordMinLen), nil)
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return utils.NewAppError(500, "INTERNAL_ERROR", "could not secure password", nil)
	}

	err = s.users.UpdatePassword(ctx, id, string(passwordHash))
	if errors.Is(err, repo.ErrNotFound) {
		return utils.NewAppError(404, "NOT_FOUND", "User not found", nil)
	}
	if err != nil {
		return utils.NewAppError(500, "INTERNAL_ERROR", "could not update password", nil)
	}
	return nil
}

func (s *AuthService) generateToken(user *models.User) (string, int64, error) {
	issuedAt := time.Now()
	expiresAt := issuedAt.Add(s.cfg.JWTExpiry)
	claims := Claims{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			Subject:   fmt.Sprintf("%d", user.ID),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", 0, err
	}

	return signed, int64(s.cfg.JWTExpiry.Seconds()), nil
}
