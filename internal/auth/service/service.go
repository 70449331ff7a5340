// Package service implements account and session management.
package service

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"carmarket_backend/internal/auth/password"
	"carmarket_backend/internal/auth/repository"
	"carmarket_backend/internal/auth/token"
	"carmarket_backend/internal/auth/transport"
	"carmarket_backend/internal/events"
	"carmarket_backend/internal/listings/query"
	"carmarket_backend/platform/apperr"
	"carmarket_backend/platform/config"
	"carmarket_backend/platform/logger"
	"carmarket_backend/platform/validator"
)

const (
	roleUser  = "user"
	roleAdmin = "admin"

	invalidCredentialsMessage = "invalid credentials"
)

// Service provides auth operations.
type Service struct {
	repo  repository.Repository
	cfg   config.AuthServiceConfig
	bus   events.Bus
	log   *logger.Logger
	valid *validator.Validator
}

// New creates the auth service.
func New(repo repository.Repository, cfg config.AuthServiceConfig, bus events.Bus, log *logger.Logger) *Service {
	return &Service{repo: repo, cfg: cfg, bus: bus, log: log, valid: validator.New()}
}

// Register creates a new account and issues its first token pair.
// Input is validated here as well so the rules hold for every caller,
// not just the HTTP handler.
func (s *Service) Register(ctx context.Context, req transport.RegisterRequest) (*transport.TokenResponse, error) {
	if err := s.valid.Struct(req); err != nil {
		return nil, apperr.Validation("invalid registration data")
	}

	hash, err := password.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.CreateUser(ctx, req.Username, req.Email, hash, []string{roleUser})
	if err != nil {
		s.log.AuthEvent("register", req.Email, false, err.Error())
		return nil, err
	}
	s.log.AuthEvent("register", user.Email, true, "")

	s.bus.Publish(ctx, events.UserSignedUp{
		BaseEvent: events.NewBaseEvent(),
		UserID:    user.ID,
		Email:     user.Email,
		Username:  user.Username,
	})

	return s.issueTokens(ctx, user)
}

// Login verifies credentials and issues a token pair.
func (s *Service) Login(ctx context.Context, req transport.LoginRequest) (*transport.TokenResponse, error) {
	user, err := s.repo.GetUserByEmail(ctx, req.Email)
	if err != nil {
		s.log.AuthEvent("login", req.Email, false, "unknown email")
		return nil, apperr.Unauthorized(invalidCredentialsMessage)
	}
	if err := password.Compare(user.PasswordHash, req.Password); err != nil {
		s.log.AuthEvent("login", req.Email, false, "wrong password")
		return nil, apperr.Unauthorized(invalidCredentialsMessage)
	}

	s.log.AuthEvent("login", user.Email, true, "")
	return s.issueTokens(ctx, user)
}

// Refresh rotates a refresh token: the presented token is revoked and a
// fresh pair is issued.
func (s *Service) Refresh(ctx context.Context, rawToken string) (*transport.TokenResponse, error) {
	hash := token.Hash(rawToken)
	userID, expiresAt, err := s.repo.GetRefreshToken(ctx, hash)
	if err != nil {
		return nil, apperr.Unauthorized("invalid refresh token")
	}
	if time.Now().After(expiresAt) {
		_ = s.repo.RevokeRefreshToken(ctx, hash)
		return nil, apperr.Unauthorized("refresh token expired")
	}

	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, apperr.Unauthorized("invalid refresh token")
	}

	_ = s.repo.RevokeRefreshToken(ctx, hash)
	return s.issueTokens(ctx, user)
}

// Logout revokes the presented refresh token.
func (s *Service) Logout(ctx context.Context, rawToken string) error {
	return s.repo.RevokeRefreshToken(ctx, token.Hash(rawToken))
}

// Me returns the profile of the authenticated user.
func (s *Service) Me(ctx context.Context, userID uuid.UUID) (*transport.Profile, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	profile := toProfile(user)
	return &profile, nil
}

// AdminListUsers pages through accounts for the dashboard.
func (s *Service) AdminListUsers(ctx context.Context, page, limit int) (*transport.AdminUsersResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}

	users, total, err := s.repo.ListUsers(ctx, repository.ListUsersParams{
		Limit:  limit,
		Offset: (page - 1) * limit,
	})
	if err != nil {
		s.log.DatabaseError("admin list users", err)
		return nil, apperr.Internal("Error listing users")
	}

	profiles := make([]transport.Profile, 0, len(users))
	for _, user := range users {
		profiles = append(profiles, toProfile(user))
	}

	return &transport.AdminUsersResponse{
		Success:    true,
		Users:      profiles,
		TotalUsers: total,
		Page:       page,
		Pages:      query.TotalPages(total, limit),
	}, nil
}

// AdminDeleteUser removes an account and ends all of its sessions.
// Administrators cannot delete themselves.
func (s *Service) AdminDeleteUser(ctx context.Context, adminID uuid.UUID, id string) error {
	userID, err := uuid.Parse(id)
	if err != nil {
		return apperr.BadRequest("invalid user id")
	}
	if userID == adminID {
		return apperr.Validation("cannot delete your own account")
	}

	_ = s.repo.RevokeAllRefreshTokens(ctx, userID)
	return s.repo.DeleteUser(ctx, userID)
}

func (s *Service) issueTokens(ctx context.Context, user repository.User) (*transport.TokenResponse, error) {
	accessToken, err := s.signAccessToken(user)
	if err != nil {
		return nil, err
	}

	refreshToken, err := token.Generate(48)
	if err != nil {
		return nil, err
	}
	expiresAt := time.Now().Add(s.cfg.GetRefreshTokenTTL())
	if err := s.repo.CreateRefreshToken(ctx, user.ID, token.Hash(refreshToken), expiresAt); err != nil {
		return nil, err
	}

	return &transport.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

func (s *Service) signAccessToken(user repository.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   user.ID.String(),
		"roles": user.Roles,
		"exp":   now.Add(s.cfg.GetAccessTokenTTL()).Unix(),
		"iat":   now.Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.GetJWTAccessSecret()))
}

func toProfile(user repository.User) transport.Profile {
	roles := user.Roles
	if roles == nil {
		roles = []string{}
	}
	return transport.Profile{
		ID:        user.ID.String(),
		Username:  user.Username,
		Email:     user.Email,
		Roles:     roles,
		CreatedAt: user.CreatedAt.Format(time.RFC3339),
	}
}
