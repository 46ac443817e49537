package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/campusops/classtrack-api/internal/models"
	appErrors "github.com/campusops/classtrack-api/pkg/errors"
)

type fakeUserRepo struct {
	users     map[string]*models.User
	lastLogin time.Time
}

func (f *fakeUserRepo) FindByUsername(_ context.Context, username string) (*models.User, error) {
	user, ok := f.users[username]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return user, nil
}

func (f *fakeUserRepo) FindByID(_ context.Context, id string) (*models.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeUserRepo) UpdateLastLogin(_ context.Context, _ string, ts time.Time) error {
	f.lastLogin = ts
	return nil
}

func newAuthFixture(t *testing.T) (*AuthService, *fakeUserRepo) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)

	repo := &fakeUserRepo{users: map[string]*models.User{
		"admin": {ID: "user-1", Username: "admin", PasswordHash: string(hash), Role: models.RoleAdmin, Active: true},
		"ghost": {ID: "user-2", Username: "ghost", PasswordHash: string(hash), Role: models.RoleStaff, Active: false},
	}}
	svc := NewAuthService(repo, nil, zap.NewNop(), AuthConfig{
		TokenSecret: "test-secret",
		TokenExpiry: time.Hour,
		Issuer:      "classtrack-test",
	})
	return svc, repo
}

func TestLoginIssuesValidToken(t *testing.T) {
	svc, repo := newAuthFixture(t)

	res, err := svc.Login(context.Background(), models.LoginRequest{Username: "admin", Password: "s3cret"})
	require.NoError(t, err)
	assert.Equal(t, "admin", res.Username)
	assert.Equal(t, models.RoleAdmin, res.Role)
	assert.Equal(t, int64(3600), res.ExpiresIn)
	assert.False(t, repo.lastLogin.IsZero())

	claims, err := svc.ValidateToken(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "admin", claims.Username)
	assert.Equal(t, models.RoleAdmin, claims.Role)
	assert.Equal(t, "classtrack-test", claims.Issuer)
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _ := newAuthFixture(t)

	_, err := svc.Login(context.Background(), models.LoginRequest{Username: "admin", Password: "wrong"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErr.Code)
}

func TestLoginUnknownUser(t *testing.T) {
	svc, _ := newAuthFixture(t)

	_, err := svc.Login(context.Background(), models.LoginRequest{Username: "nobody", Password: "s3cret"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErr.Code)
}

func TestLoginInactiveAccount(t *testing.T) {
	svc, _ := newAuthFixture(t)

	_, err := svc.Login(context.Background(), models.LoginRequest{Username: "ghost", Password: "s3cret"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErr.Code)
}

func TestLoginValidation(t *testing.T) {
	svc, _ := newAuthFixture(t)

	_, err := svc.Login(context.Background(), models.LoginRequest{Username: "admin"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestValidateTokenRejectsTampering(t *testing.T) {
	svc, _ := newAuthFixture(t)

	res, err := svc.Login(context.Background(), models.LoginRequest{Username: "admin", Password: "s3cret"})
	require.NoError(t, err)

	_, err = svc.ValidateToken(res.AccessToken + "x")
	require.Error(t, err)

	other := NewAuthService(&fakeUserRepo{users: map[string]*models.User{}}, nil, zap.NewNop(), AuthConfig{
		TokenSecret: "different-secret",
		TokenExpiry: time.Hour,
	})
	_, err = other.ValidateToken(res.AccessToken)
	require.Error(t, err)
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	svc, _ := newAuthFixture(t)
	svc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	res, err := svc.Login(context.Background(), models.LoginRequest{Username: "admin", Password: "s3cret"})
	require.NoError(t, err)

	_, err = svc.ValidateToken(res.AccessToken)
	require.Error(t, err)
}
