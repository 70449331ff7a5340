package service

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"carmarket_backend/internal/auth/password"
	"carmarket_backend/internal/auth/repository"
	"carmarket_backend/internal/auth/transport"
	"carmarket_backend/internal/events"
	"carmarket_backend/platform/apperr"
	"carmarket_backend/platform/logger"
)

type fakeRepo struct {
	repository.Repository

	users  map[string]repository.User
	tokens map[string]struct {
		userID    uuid.UUID
		expiresAt time.Time
	}
	deleted []uuid.UUID
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		users: make(map[string]repository.User),
		tokens: make(map[string]struct {
			userID    uuid.UUID
			expiresAt time.Time
		}),
	}
}

func (f *fakeRepo) CreateUser(ctx context.Context, username, email, passwordHash string, roles []string) (repository.User, error) {
	if _, exists := f.users[email]; exists {
		return repository.User{}, apperr.Conflict("email or username already in use")
	}
	user := repository.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		Roles:        roles,
		CreatedAt:    time.Now(),
	}
	f.users[email] = user
	return user, nil
}

func (f *fakeRepo) GetUserByEmail(ctx context.Context, email string) (repository.User, error) {
	user, ok := f.users[email]
	if !ok {
		return repository.User{}, apperr.NotFound("user not found")
	}
	return user, nil
}

func (f *fakeRepo) GetUserByID(ctx context.Context, id uuid.UUID) (repository.User, error) {
	for _, user := range f.users {
		if user.ID == id {
			return user, nil
		}
	}
	return repository.User{}, apperr.NotFound("user not found")
}

func (f *fakeRepo) CreateRefreshToken(ctx context.Context, userID uuid.UUID, tokenHash string, expiresAt time.Time) error {
	f.tokens[tokenHash] = struct {
		userID    uuid.UUID
		expiresAt time.Time
	}{userID, expiresAt}
	return nil
}

func (f *fakeRepo) GetRefreshToken(ctx context.Context, tokenHash string) (uuid.UUID, time.Time, error) {
	entry, ok := f.tokens[tokenHash]
	if !ok {
		return uuid.Nil, time.Time{}, apperr.Unauthorized("invalid refresh token")
	}
	return entry.userID, entry.expiresAt, nil
}

func (f *fakeRepo) RevokeRefreshToken(ctx context.Context, tokenHash string) error {
	delete(f.tokens, tokenHash)
	return nil
}

func (f *fakeRepo) RevokeAllRefreshTokens(ctx context.Context, userID uuid.UUID) error {
	for hash, entry := range f.tokens {
		if entry.userID == userID {
			delete(f.tokens, hash)
		}
	}
	return nil
}

func (f *fakeRepo) DeleteUser(ctx context.Context, id uuid.UUID) error {
	f.deleted = append(f.deleted, id)
	return nil
}

type testConfig struct{}

func (testConfig) GetJWTAccessSecret() string        { return "test-access-secret" }
func (testConfig) GetJWTRefreshSecret() string       { return "test-refresh-secret" }
func (testConfig) GetAccessTokenTTL() time.Duration  { return 15 * time.Minute }
func (testConfig) GetRefreshTokenTTL() time.Duration { return 24 * time.Hour }

func newTestService() (*Service, *fakeRepo) {
	repo := newFakeRepo()
	log := logger.New("test")
	return New(repo, testConfig{}, events.NewInMemoryBus(log), log), repo
}

func register(t *testing.T, svc *Service) *transport.TokenResponse {
	t.Helper()
	tokens, err := svc.Register(context.Background(), transport.RegisterRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "correct-horse",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	return tokens
}

func TestRegisterIssuesSignedAccessToken(t *testing.T) {
	svc, repo := newTestService()
	tokens := register(t, svc)

	if tokens.AccessToken == "" || tokens.RefreshToken == "" {
		t.Fatal("expected both tokens")
	}

	parsed, err := jwt.Parse(tokens.AccessToken, func(tk *jwt.Token) (interface{}, error) {
		return []byte("test-access-secret"), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("access token invalid: %v", err)
	}

	// Passwords are stored hashed.
	user := repo.users["alice@example.com"]
	if user.PasswordHash == "correct-horse" {
		t.Fatal("password stored in plaintext")
	}
	if err := password.Compare(user.PasswordHash, "correct-horse"); err != nil {
		t.Fatalf("stored hash does not verify: %v", err)
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	svc, _ := newTestService()
	register(t, svc)

	_, err := svc.Login(context.Background(), transport.LoginRequest{
		Email:    "alice@example.com",
		Password: "wrong",
	})
	if apperr.GetKind(err) != apperr.KindUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}

	// Unknown accounts get the same answer as wrong passwords.
	_, err = svc.Login(context.Background(), transport.LoginRequest{
		Email:    "nobody@example.com",
		Password: "wrong",
	})
	if apperr.GetKind(err) != apperr.KindUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestRefreshRotatesToken(t *testing.T) {
	svc, _ := newTestService()
	tokens := register(t, svc)

	rotated, err := svc.Refresh(context.Background(), tokens.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if rotated.RefreshToken == tokens.RefreshToken {
		t.Fatal("refresh token must rotate")
	}

	// The old token is spent.
	if _, err := svc.Refresh(context.Background(), tokens.RefreshToken); apperr.GetKind(err) != apperr.KindUnauthorized {
		t.Fatalf("expected unauthorized for spent token, got %v", err)
	}
}

func TestAdminCannotDeleteSelf(t *testing.T) {
	svc, repo := newTestService()
	adminID := uuid.New()

	err := svc.AdminDeleteUser(context.Background(), adminID, adminID.String())
	if apperr.GetKind(err) != apperr.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(repo.deleted) != 0 {
		t.Fatal("self delete must not reach the store")
	}
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	svc, repo := newTestService()

	_, err := svc.Register(context.Background(), transport.RegisterRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "short",
	})
	if apperr.GetKind(err) != apperr.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(repo.users) != 0 {
		t.Fatal("invalid registration must not reach the store")
	}
}
