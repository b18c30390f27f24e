package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/concert-ticketing/internal/config"
	"github.com/iliyamo/concert-ticketing/internal/model"
	"github.com/iliyamo/concert-ticketing/internal/pkg/logger"
	"github.com/iliyamo/concert-ticketing/internal/repository"
	"github.com/iliyamo/concert-ticketing/internal/utils"
)

// UserStore is the persistence surface the auth service needs. Implemented
// by repository.UserRepo.
type UserStore interface {
	Create(ctx context.Context, u *model.User) (string, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByID(ctx context.Context, id string) (*model.User, error)
}

// TokenStore persists and redeems refresh-token hashes. Implemented by
// repository.TokenRepo.
type TokenStore interface {
	StoreRefresh(ctx context.Context, userID, tokenHash string, exp time.Time) error
	ValidateRefresh(ctx context.Context, tokenHash string) (string, error)
	RevokeAllForUser(ctx context.Context, userID string) error
}

// RegisterInput carries the admin-driven register mutation arguments.
type RegisterInput struct {
	Username string
	Email    string
	Password string
	Roles    []string
}

// RegisterUserInput carries the self sign-up mutation arguments.
type RegisterUserInput struct {
	Username        string
	Email           string
	Password        string
	ConfirmPassword string
}

// LoginResult is returned by Login: the signed access token plus the raw
// refresh token handed back to the client.
type LoginResult struct {
	Status       bool   `json:"status"`
	Message      string `json:"message"`
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
}

// AuthService handles registration and login. Passwords are stored as
// bcrypt hashes; sessions are an HS256 access token carrying the user's
// id, username and roles, plus a long-lived refresh token stored hashed.
type AuthService struct {
	users  UserStore
	tokens TokenStore
	cfg    config.Config
}

// NewAuthService wires the auth service.
func NewAuthService(users UserStore, tokens TokenStore, cfg config.Config) *AuthService {
	return &AuthService{users: users, tokens: tokens, cfg: cfg}
}

// Register creates a user with the given roles on behalf of an admin. The
// acting admin's username is recorded as created_by.
func (s *AuthService) Register(ctx context.Context, input RegisterInput, createdBy string) (*CommonResponse, error) {
	if input.Email == "" || input.Password == "" || input.Username == "" {
		return nil, BadRequest("Username, email and password are required")
	}
	roles := normalizeRoles(input.Roles)
	return s.createUser(ctx, input.Username, input.Email, input.Password, createdBy, roles)
}

// RegisterUser is the self sign-up path: the password must be confirmed and
// the account always gets the USER role.
func (s *AuthService) RegisterUser(ctx context.Context, input RegisterUserInput) (*CommonResponse, error) {
	if input.Email == "" || input.Password == "" || input.Username == "" {
		return nil, BadRequest("Username, email and password are required")
	}
	if input.Password != input.ConfirmPassword {
		return nil, BadRequest("Passwords do not match")
	}
	return s.createUser(ctx, input.Username, input.Email, input.Password, "", []string{model.RoleUser})
}

func (s *AuthService) createUser(ctx context.Context, username, email, password, createdBy string, roles []string) (*CommonResponse, error) {
	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		logger.Error("register: lookup failed", zap.Error(err))
		return nil, Dependency(err)
	}
	if existing != nil {
		return nil, Conflict("User already exist")
	}

	hash, err := utils.HashPassword(password, s.cfg.BcryptCost)
	if err != nil {
		return nil, Internal(err)
	}
	u := &model.User{
		Username:     strings.TrimSpace(username),
		Email:        email,
		PasswordHash: hash,
		Roles:        roles,
		CreatedBy:    createdBy,
	}
	if _, err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrUserExists) {
			return nil, Conflict("User already exist")
		}
		logger.Error("register: create failed", zap.Error(err))
		return nil, Dependency(err)
	}
	return &CommonResponse{Status: true, Message: "User registered successfully"}, nil
}

// Login verifies credentials and issues a token pair.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, NotFound("User not found")
		}
		logger.Error("login: lookup failed", zap.Error(err))
		return nil, Dependency(err)
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		return nil, Unauthorized("Invalid credentials")
	}

	access, err := utils.NewAccessToken(s.cfg.JWTSecret, u.ID, u.Username, u.Email, u.Roles, s.cfg.AccessTTLMin)
	if err != nil {
		return nil, Internal(err)
	}
	refresh, err := utils.NewRefreshToken(s.cfg.RefreshTTLDays)
	if err != nil {
		return nil, Internal(err)
	}
	if err := s.tokens.StoreRefresh(ctx, u.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		logger.Error("login: store refresh failed", zap.Error(err))
		return nil, Dependency(err)
	}

	return &LoginResult{
		Status:       true,
		Message:      "Login successful",
		Token:        access.Token,
		RefreshToken: refresh.Raw,
	}, nil
}

// Refresh exchanges a valid refresh token for a new token pair. The
// presented token is looked up by its hash; on success every older refresh
// token for the user is revoked, so a token can only be redeemed once.
func (s *AuthService) Refresh(ctx context.Context, raw string) (*LoginResult, error) {
	if raw == "" {
		return nil, BadRequest("Refresh token is required")
	}
	userID, err := s.tokens.ValidateRefresh(ctx, utils.HashRefreshRaw(raw))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, Unauthorized("Invalid refresh token")
		}
		logger.Error("refresh: token lookup failed", zap.Error(err))
		return nil, Dependency(err)
	}
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, Unauthorized("Invalid refresh token")
		}
		logger.Error("refresh: user lookup failed", zap.Error(err))
		return nil, Dependency(err)
	}

	if err := s.tokens.RevokeAllForUser(ctx, u.ID); err != nil {
		logger.Error("refresh: revoke failed", zap.Error(err))
		return nil, Dependency(err)
	}

	access, err := utils.NewAccessToken(s.cfg.JWTSecret, u.ID, u.Username, u.Email, u.Roles, s.cfg.AccessTTLMin)
	if err != nil {
		return nil, Internal(err)
	}
	refresh, err := utils.NewRefreshToken(s.cfg.RefreshTTLDays)
	if err != nil {
		return nil, Internal(err)
	}
	if err := s.tokens.StoreRefresh(ctx, u.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		logger.Error("refresh: store refresh failed", zap.Error(err))
		return nil, Dependency(err)
	}

	return &LoginResult{
		Status:       true,
		Message:      "Token refreshed successfully",
		Token:        access.Token,
		RefreshToken: refresh.Raw,
	}, nil
}

// Me returns the authenticated user's profile.
func (s *AuthService) Me(ctx context.Context, userID string) (*model.User, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, NotFound("User not found")
		}
		return nil, Dependency(err)
	}
	return u, nil
}

// normalizeRoles upper-cases and validates role names, defaulting to USER.
func normalizeRoles(roles []string) []string {
	out := make([]string, 0, len(roles))
	for _, r := range roles {
		switch strings.ToUpper(strings.TrimSpace(r)) {
		case model.RoleAdmin:
			out = append(out, model.RoleAdmin)
		case model.RoleUser:
			out = append(out, model.RoleUser)
		}
	}
	if len(out) == 0 {
		out = append(out, model.RoleUser)
	}
	return out
}
