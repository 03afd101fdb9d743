package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/havenpaws/shelter-api/internal/models"
	appErrors "github.com/havenpaws/shelter-api/pkg/errors"
)

type mockAuthRepo struct {
	userByUsername  *models.User
	usernameTaken   bool
	emailTaken      bool
	created         *models.User
	refreshTokens   map[string]*models.RefreshToken
	revokedTokenIDs []string
}

func (m *mockAuthRepo) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	if m.userByUsername == nil || m.userByUsername.Username != username {
		return nil, sql.ErrNoRows
	}
	return m.userByUsername, nil
}

func (m *mockAuthRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	if m.userByUsername != nil && m.userByUsername.ID == id {
		return m.userByUsername, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAuthRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return m.usernameTaken, nil
}

func (m *mockAuthRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return m.emailTaken, nil
}

func (m *mockAuthRepo) Create(ctx context.Context, user *models.User) error {
	user.ID = "user-1"
	m.created = user
	return nil
}

func (m *mockAuthRepo) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	if m.refreshTokens == nil {
		m.refreshTokens = make(map[string]*models.RefreshToken)
	}
	m.refreshTokens[token.Token] = token
	return nil
}

func (m *mockAuthRepo) FindRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	stored, ok := m.refreshTokens[token]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return stored, nil
}

func (m *mockAuthRepo) RevokeRefreshToken(ctx context.Context, id string, revokedAt time.Time) error {
	m.revokedTokenIDs = append(m.revokedTokenIDs, id)
	for _, token := range m.refreshTokens {
		if token.ID == id {
			token.Revoked = true
			now := revokedAt
			token.RevokedAt = &now
		}
	}
	return nil
}

func (m *mockAuthRepo) RevokeUserRefreshTokens(ctx context.Context, userID string) error {
	return nil
}

func testAuthConfig() AuthConfig {
	return AuthConfig{
		AccessTokenSecret:  "test-secret",
		AccessTokenExpiry:  15 * time.Minute,
		RefreshTokenExpiry: 24 * time.Hour,
		Issuer:             "shelter-api-test",
	}
}

func hashOf(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func TestAuthServiceRegister(t *testing.T) {
	repo := &mockAuthRepo{}
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	info, err := svc.Register(context.Background(), models.RegisterRequest{
		Username:        "sam",
		Email:           "sam@example.com",
		Password:        "secret123",
		ConfirmPassword: "secret123",
		Role:            "employee",
	})
	require.NoError(t, err)
	assert.Equal(t, "sam", info.Username)
	assert.Equal(t, models.RoleEmployee, info.Role)
	require.NotNil(t, repo.created)
	assert.NotEqual(t, "secret123", repo.created.PasswordHash)
}

func TestAuthServiceRegisterReportsAllFieldErrors(t *testing.T) {
	repo := &mockAuthRepo{}
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	_, err := svc.Register(context.Background(), models.RegisterRequest{
		Username:        "ab",
		Email:           "not-an-email",
		Password:        "123",
		ConfirmPassword: "456",
		Role:            "superuser",
	})
	require.Error(t, err)
	appErr, ok := err.(*appErrors.Error)
	require.True(t, ok)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)

	fields := make(map[string]bool)
	for _, detail := range appErr.Details {
		fields[detail.Field] = true
	}
	assert.True(t, fields["username"])
	assert.True(t, fields["email"])
	assert.True(t, fields["password"])
	assert.True(t, fields["confirm_password"])
	assert.True(t, fields["role"])
}

func TestAuthServiceRegisterUsernameConflict(t *testing.T) {
	repo := &mockAuthRepo{usernameTaken: true}
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	_, err := svc.Register(context.Background(), models.RegisterRequest{
		Username:        "sam",
		Email:           "sam@example.com",
		Password:        "secret123",
		ConfirmPassword: "secret123",
		Role:            "admin",
	})
	require.Error(t, err)
	appErr, ok := err.(*appErrors.Error)
	require.True(t, ok)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
}

func TestAuthServiceLogin(t *testing.T) {
	repo := &mockAuthRepo{userByUsername: &models.User{
		ID:           "user-1",
		Username:     "sam",
		Email:        "sam@example.com",
		PasswordHash: hashOf(t, "secret123"),
		Role:         models.RoleEmployee,
	}}
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	res, err := svc.Login(context.Background(), models.LoginRequest{Username: "sam", Password: "secret123"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.NotEmpty(t, res.RefreshToken)
	assert.Equal(t, "user-1", res.User.ID)

	claims, err := svc.ValidateToken(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, models.RoleEmployee, claims.Role)
}

func TestAuthServiceLoginWrongPassword(t *testing.T) {
	repo := &mockAuthRepo{userByUsername: &models.User{
		ID:           "user-1",
		Username:     "sam",
		PasswordHash: hashOf(t, "secret123"),
		Role:         models.RoleEmployee,
	}}
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	_, err := svc.Login(context.Background(), models.LoginRequest{Username: "sam", Password: "wrong"})
	require.Error(t, err)
	appErr, ok := err.(*appErrors.Error)
	require.True(t, ok)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErr.Code)
}

func TestAuthServiceLoginUnknownUserSameError(t *testing.T) {
	repo := &mockAuthRepo{}
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	_, err := svc.Login(context.Background(), models.LoginRequest{Username: "ghost", Password: "whatever"})
	require.Error(t, err)
	appErr, ok := err.(*appErrors.Error)
	require.True(t, ok)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErr.Code)
}

func TestAuthServiceRefreshRotatesToken(t *testing.T) {
	repo := &mockAuthRepo{userByUsername: &models.User{
		ID:           "user-1",
		Username:     "sam",
		PasswordHash: hashOf(t, "secret123"),
		Role:         models.RoleAdmin,
	}}
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	login, err := svc.Login(context.Background(), models.LoginRequest{Username: "sam", Password: "secret123"})
	require.NoError(t, err)

	refreshed, err := svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	require.NoError(t, err)
	assert.NotEqual(t, login.RefreshToken, refreshed.RefreshToken)
	assert.Len(t, repo.revokedTokenIDs, 1)

	// The used token was revoked and cannot be replayed.
	_, err = svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	require.Error(t, err)
}

func TestAuthServiceLogoutRejectsForeignToken(t *testing.T) {
	repo := &mockAuthRepo{userByUsername: &models.User{
		ID:           "user-1",
		Username:     "sam",
		PasswordHash: hashOf(t, "secret123"),
		Role:         models.RoleEmployee,
	}}
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	login, err := svc.Login(context.Background(), models.LoginRequest{Username: "sam", Password: "secret123"})
	require.NoError(t, err)

	err = svc.Logout(context.Background(), login.RefreshToken, "someone-else")
	require.Error(t, err)
	appErr, ok := err.(*appErrors.Error)
	require.True(t, ok)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErr.Code)

	require.NoError(t, svc.Logout(context.Background(), login.RefreshToken, "user-1"))
}
