package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/sakif/devconnector/internal/apperror"
	"github.com/sakif/devconnector/internal/auth"
	"github.com/sakif/devconnector/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =========================================================================
// FAKES AND HELPERS
// =========================================================================

// fakeUserRepo is an in-memory repository.UserRepository.
type fakeUserRepo struct {
	mu      sync.Mutex
	byID    map[string]*model.User
	byEmail map[string]*model.User
	nextID  int
	// set to simulate a database failure
	createErr error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		byID:    map[string]*model.User{},
		byEmail: map[string]*model.User{},
	}
}

func (f *fakeUserRepo) CreateUser(_ context.Context, user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	if _, ok := f.byEmail[user.Email]; ok {
		return apperror.Conflict("User already exists")
	}
	f.nextID++
	user.ID = fmt.Sprintf("user-%d", f.nextID)
	user.CreatedAt = time.Now()
	stored := *user
	f.byID[user.ID] = &stored
	f.byEmail[user.Email] = &stored
	return nil
}

func (f *fakeUserRepo) GetUserByID(_ context.Context, id string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	copied := *u
	return &copied, nil
}

func (f *fakeUserRepo) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byEmail[email]
	if !ok {
		return nil, apperror.NotFoundMessage("user not found")
	}
	copied := *u
	return &copied, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const testSecret = "test-secret-at-least-16-chars!!"

func newTestTokens(t *testing.T) *auth.TokenService {
	t.Helper()
	ts, err := auth.NewTokenService(testSecret, time.Hour)
	require.NoError(t, err)
	return ts
}

// newTestAuthService wires an AuthService over repo with bcrypt's minimum cost
// so hashing stays fast.
func newTestAuthService(t *testing.T, repo *fakeUserRepo) *AuthService {
	t.Helper()
	ps, err := auth.NewPasswordService(4)
	require.NoError(t, err)
	return NewAuthService(repo, newTestTokens(t), ps, discardLogger())
}

// =========================================================================
// Register
// =========================================================================

func TestRegister(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestAuthService(t, repo)

	res, err := svc.Register(context.Background(), " Ada Lovelace ", "Ada@Example.com ", "secret123")
	require.NoError(t, err)

	assert.Equal(t, "Ada Lovelace", res.User.Name)
	assert.Equal(t, "ada@example.com", res.User.Email)
	assert.Equal(t, auth.GravatarURL("ada@example.com"), res.User.Avatar)
	assert.NotEqual(t, "secret123", res.User.PasswordHash)
	require.NotEmpty(t, res.Token)

	id, err := newTestTokens(t).Verify(res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, id)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc := newTestAuthService(t, newFakeUserRepo())

	_, err := svc.Register(context.Background(), "Ada", "ada@example.com", "secret123")
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), "Imposter", "ADA@example.com", "other123")
	assert.ErrorIs(t, err, apperror.ErrConflict)
	assert.EqualError(t, err, "User already exists")
}

func TestRegister_PasswordTooLong(t *testing.T) {
	svc := newTestAuthService(t, newFakeUserRepo())

	long := make([]byte, 73)
	for i := range long {
		long[i] = 'a'
	}
	_, err := svc.Register(context.Background(), "Ada", "ada@example.com", string(long))
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestRegister_RepositoryError(t *testing.T) {
	repo := newFakeUserRepo()
	repo.createErr = errors.New("database is on fire")
	svc := newTestAuthService(t, repo)

	_, err := svc.Register(context.Background(), "Ada", "ada@example.com", "secret123")
	require.Error(t, err)
	assert.NotErrorIs(t, err, apperror.ErrConflict)
	assert.ErrorContains(t, err, "database is on fire")
}

// =========================================================================
// Login
// =========================================================================

func TestLogin(t *testing.T) {
	svc := newTestAuthService(t, newFakeUserRepo())
	reg, err := svc.Register(context.Background(), "Ada", "ada@example.com", "secret123")
	require.NoError(t, err)

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  bool
	}{
		{"correct", "ada@example.com", "secret123", false},
		{"email is case-insensitive", " ADA@example.com", "secret123", false},
		{"wrong password", "ada@example.com", "nope", true},
		{"unknown email", "bob@example.com", "secret123", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := svc.Login(context.Background(), tt.email, tt.password)
			if tt.wantErr {
				assert.ErrorIs(t, err, apperror.ErrValidation)
				assert.EqualError(t, err, MsgInvalidCredentials)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, reg.User.ID, res.User.ID)
			assert.NotEmpty(t, res.Token)
		})
	}
}

// =========================================================================
// CurrentUser
// =========================================================================

func TestCurrentUser(t *testing.T) {
	svc := newTestAuthService(t, newFakeUserRepo())
	reg, err := svc.Register(context.Background(), "Ada", "ada@example.com", "secret123")
	require.NoError(t, err)

	u, err := svc.CurrentUser(context.Background(), reg.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada", u.Name)

	_, err = svc.CurrentUser(context.Background(), "gone")
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	_, err = svc.CurrentUser(context.Background(), "")
	assert.Error(t, err)
}
