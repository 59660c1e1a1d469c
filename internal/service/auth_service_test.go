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

	"github.com/naykakashima/timetable-api/internal/models"
	"github.com/naykakashima/timetable-api/pkg/config"
	appErrors "github.com/naykakashima/timetable-api/pkg/errors"
)

type userRepoStub struct {
	byEmail map[string]*models.User
	byID    map[string]*models.User
	created []*models.User
}

func (s *userRepoStub) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if user, ok := s.byEmail[email]; ok {
		return user, nil
	}
	return nil, sql.ErrNoRows
}

func (s *userRepoStub) FindByID(ctx context.Context, id string) (*models.User, error) {
	if user, ok := s.byID[id]; ok {
		return user, nil
	}
	return nil, sql.ErrNoRows
}

func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	user.ID = "u1"
	s.created = append(s.created, user)
	return nil
}

func (s *userRepoStub) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	return nil
}

func jwtCfg() config.JWTConfig {
	return config.JWTConfig{Secret: "test_secret", Expiration: time.Hour, Issuer: "timetable-api"}
}

func TestRegisterHashesPassword(t *testing.T) {
	repo := &userRepoStub{byEmail: map[string]*models.User{}}
	svc := NewAuthService(repo, jwtCfg(), zap.NewNop())

	info, err := svc.Register(context.Background(), &models.RegisterRequest{
		Email:     "user@example.com",
		Password:  "correct-horse",
		FullName:  "A Student",
		StudentID: "160011223",
	})
	require.NoError(t, err)
	assert.Equal(t, "u1", info.ID)

	require.Len(t, repo.created, 1)
	stored := repo.created[0]
	assert.NotEqual(t, "correct-horse", stored.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("correct-horse")))
	assert.True(t, stored.Active)
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	svc := NewAuthService(&userRepoStub{byEmail: map[string]*models.User{}}, jwtCfg(), zap.NewNop())

	_, err := svc.Register(context.Background(), &models.RegisterRequest{Email: "user@example.com", Password: "short", FullName: "A Student"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	repo := &userRepoStub{byEmail: map[string]*models.User{
		"user@example.com": {ID: "u1", Email: "user@example.com"},
	}}
	svc := NewAuthService(repo, jwtCfg(), zap.NewNop())

	_, err := svc.Register(context.Background(), &models.RegisterRequest{Email: "user@example.com", Password: "whatever12", FullName: "A Student"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestLoginIssuesVerifiableToken(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.MinCost)
	require.NoError(t, err)
	repo := &userRepoStub{byEmail: map[string]*models.User{
		"user@example.com": {ID: "u1", Email: "user@example.com", PasswordHash: string(hash), Active: true},
	}}
	svc := NewAuthService(repo, jwtCfg(), zap.NewNop())

	resp, err := svc.Login(context.Background(), &models.LoginRequest{Email: "user@example.com", Password: "correct-horse"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, int64(3600), resp.ExpiresIn)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "user@example.com", claims.Email)
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.MinCost)
	require.NoError(t, err)
	repo := &userRepoStub{byEmail: map[string]*models.User{
		"user@example.com": {ID: "u1", Email: "user@example.com", PasswordHash: string(hash), Active: true},
	}}
	svc := NewAuthService(repo, jwtCfg(), zap.NewNop())

	_, err = svc.Login(context.Background(), &models.LoginRequest{Email: "user@example.com", Password: "tr0ub4dor"})
	assert.ErrorIs(t, err, appErrors.ErrInvalidCredentials)
}

func TestLoginRejectsUnknownEmail(t *testing.T) {
	svc := NewAuthService(&userRepoStub{byEmail: map[string]*models.User{}}, jwtCfg(), zap.NewNop())

	_, err := svc.Login(context.Background(), &models.LoginRequest{Email: "nobody@example.com", Password: "whatever1"})
	assert.ErrorIs(t, err, appErrors.ErrInvalidCredentials)
}

func TestLoginRejectsInactiveAccount(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.MinCost)
	require.NoError(t, err)
	repo := &userRepoStub{byEmail: map[string]*models.User{
		"user@example.com": {ID: "u1", Email: "user@example.com", PasswordHash: string(hash), Active: false},
	}}
	svc := NewAuthService(repo, jwtCfg(), zap.NewNop())

	_, err = svc.Login(context.Background(), &models.LoginRequest{Email: "user@example.com", Password: "correct-horse"})
	assert.ErrorIs(t, err, appErrors.ErrInactiveAccount)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	svc := NewAuthService(&userRepoStub{}, jwtCfg(), zap.NewNop())

	_, err := svc.ValidateToken("not.a.token")
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)
}
