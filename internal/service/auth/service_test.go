package auth

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/woundtrack/supply-api/internal/email"
	"github.com/woundtrack/supply-api/internal/model"
	"github.com/woundtrack/supply-api/internal/service/access"
	pkgauth "github.com/woundtrack/supply-api/pkg/auth"
	apperrors "github.com/woundtrack/supply-api/pkg/errors"
	"github.com/woundtrack/supply-api/pkg/security"
)

type fakeUserRepo struct {
	byID    map[uuid.UUID]*model.User
	byEmail map[string]*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		byID:    make(map[uuid.UUID]*model.User),
		byEmail: make(map[string]*model.User),
	}
}

func (f *fakeUserRepo) Create(_ context.Context, user *model.User) error {
	f.byID[user.ID] = user
	f.byEmail[user.Email] = user
	return nil
}

func (f *fakeUserRepo) Get(_ context.Context, id uuid.UUID) (*model.User, error) {
	user, ok := f.byID[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return user, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, emailAddr string) (*model.User, error) {
	user, ok := f.byEmail[emailAddr]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return user, nil
}

func (f *fakeUserRepo) SetApproved(_ context.Context, id uuid.UUID, approved bool) error {
	user, ok := f.byID[id]
	if !ok {
		return sql.ErrNoRows
	}
	user.IsApproved = approved
	return nil
}

func setupAuthService(t *testing.T) (Service, *fakeUserRepo) {
	t.Helper()

	users := newFakeUserRepo()
	tokens := pkgauth.NewJWTService("test-secret", time.Hour)
	// Minimum cost keeps the bcrypt-heavy tests fast.
	hasher := security.NewBcryptHasher(bcrypt.MinCost)
	emails := email.NewService(email.SMTPConfig{})
	return NewService(users, tokens, hasher, emails, time.Hour), users
}

func registerUser(t *testing.T, svc Service) *model.User {
	t.Helper()

	user, err := svc.Register(context.Background(), &model.RegisterRequest{
		Name:       "Jane Doe",
		Email:      "jane@example.com",
		Password:   "correct-horse",
		FacilityID: uuid.New().String(),
	})
	require.NoError(t, err)
	return user
}

func TestRegister_CreatesUnapprovedUser(t *testing.T) {
	svc, users := setupAuthService(t)

	user := registerUser(t, svc)

	assert.False(t, user.IsApproved)
	assert.Equal(t, model.RoleUser, user.Role)
	assert.NotNil(t, user.FacilityID)
	assert.NotEqual(t, "correct-horse", user.PasswordHash)
	assert.Contains(t, users.byEmail, "jane@example.com")
}

func TestLogin_UnapprovedUserRejected(t *testing.T) {
	svc, _ := setupAuthService(t)
	registerUser(t, svc)

	_, err := svc.Login(context.Background(), "jane@example.com", "correct-horse")

	require.Error(t, err)
	assert.Equal(t, apperrors.KindInvalidCredential, apperrors.KindOf(err))
}

func TestLogin_WrongPasswordRejected(t *testing.T) {
	svc, users := setupAuthService(t)
	user := registerUser(t, svc)
	users.byID[user.ID].IsApproved = true

	_, err := svc.Login(context.Background(), "jane@example.com", "wrong-password")

	require.Error(t, err)
	assert.Equal(t, apperrors.KindInvalidCredential, apperrors.KindOf(err))
}

func TestLogin_UnknownEmailRejected(t *testing.T) {
	svc, _ := setupAuthService(t)

	_, err := svc.Login(context.Background(), "nobody@example.com", "whatever1")

	require.Error(t, err)
	// Unknown email and bad password are indistinguishable to the caller.
	assert.Equal(t, apperrors.KindInvalidCredential, apperrors.KindOf(err))
}

func TestLogin_ApprovedUserGetsScopedToken(t *testing.T) {
	svc, users := setupAuthService(t)
	user := registerUser(t, svc)
	users.byID[user.ID].IsApproved = true

	resp, err := svc.Login(context.Background(), "jane@example.com", "correct-horse")
	require.NoError(t, err)
	require.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, int64(3600), resp.ExpiresIn)

	identity, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, identity.UserID)
	assert.Equal(t, model.RoleUser, identity.Role)
	require.NotNil(t, identity.FacilityID)
	assert.Equal(t, *user.FacilityID, *identity.FacilityID)
}

func TestApproveUser_RequiresAdmin(t *testing.T) {
	svc, _ := setupAuthService(t)
	user := registerUser(t, svc)

	facilityID := uuid.New()
	nonAdmin := &access.Identity{UserID: uuid.New(), Role: model.RoleUser, FacilityID: &facilityID}

	err := svc.ApproveUser(context.Background(), nonAdmin, user.ID)

	require.Error(t, err)
	assert.Equal(t, apperrors.KindForbidden, apperrors.KindOf(err))
}

func TestApproveUser_EnablesLogin(t *testing.T) {
	svc, _ := setupAuthService(t)
	user := registerUser(t, svc)

	admin := &access.Identity{UserID: uuid.New(), Role: model.RoleAdmin}
	require.NoError(t, svc.ApproveUser(context.Background(), admin, user.ID))

	_, err := svc.Login(context.Background(), "jane@example.com", "correct-horse")
	require.NoError(t, err)
}

func TestApproveUser_UnknownUserNotFound(t *testing.T) {
	svc, _ := setupAuthService(t)

	admin := &access.Identity{UserID: uuid.New(), Role: model.RoleAdmin}
	err := svc.ApproveUser(context.Background(), admin, uuid.New())

	require.Error(t, err)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
}

func TestValidateToken_GarbageRejected(t *testing.T) {
	svc, _ := setupAuthService(t)

	_, err := svc.ValidateToken("not-a-token")

	require.Error(t, err)
	assert.Equal(t, apperrors.KindInvalidCredential, apperrors.KindOf(err))
}
