package users

import (
	"context"
	"strings"
	"testing"

	"github.com/examhub/examhub/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRepo is an in-memory Repository for service tests.
type fakeRepo struct {
	users map[string]*User
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{users: map[string]*User{}}
}

func (f *fakeRepo) Create(ctx context.Context, user *User) (*User, error) {
	if _, ok := f.users[user.UserName]; ok {
		return nil, common.ErrAlreadyExists
	}
	f.users[user.UserName] = user
	return user, nil
}

func (f *fakeRepo) GetByUserName(ctx context.Context, userName string) (*User, error) {
	user, ok := f.users[userName]
	if !ok {
		return nil, common.ErrNotFound
	}
	return user, nil
}

func TestRegisterHashesCredential(t *testing.T) {
	repo := newFakeRepo()
	s := NewService(repo)

	user, err := s.Register(context.Background(), "alice", "hunter2")
	require.NoError(t, err)

	assert.Equal(t, RoleParticipant, user.Role)
	assert.True(t, strings.HasPrefix(user.Credential, "$2"), "credential should be a bcrypt hash")
	assert.NotContains(t, user.Credential, "hunter2")
}

func TestRegisterDuplicate(t *testing.T) {
	s := NewService(newFakeRepo())
	ctx := context.Background()

	_, err := s.Register(ctx, "alice", "pw")
	require.NoError(t, err)

	_, err = s.Register(ctx, "alice", "pw")
	assert.ErrorIs(t, err, common.ErrAlreadyExists)
}

func TestRegisterEmptyFields(t *testing.T) {
	s := NewService(newFakeRepo())
	ctx := context.Background()

	_, err := s.Register(ctx, "", "pw")
	assert.ErrorIs(t, err, common.ErrValidation)

	_, err = s.Register(ctx, "alice", "")
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestAuthenticateRegisteredUser(t *testing.T) {
	s := NewService(newFakeRepo())
	ctx := context.Background()

	_, err := s.Register(ctx, "alice", "hunter2")
	require.NoError(t, err)

	user, err := s.Authenticate(ctx, "alice", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.UserName)

	_, err = s.Authenticate(ctx, "alice", "wrong")
	assert.ErrorIs(t, err, common.ErrUnauthorized)
}

func TestAuthenticatePlaintextRecord(t *testing.T) {
	repo := newFakeRepo()
	repo.users["admin"] = &User{UserName: "admin", Credential: "admin", Role: RoleAdmin}
	s := NewService(repo)
	ctx := context.Background()

	user, err := s.Authenticate(ctx, "admin", "admin")
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, user.Role)

	_, err = s.Authenticate(ctx, "admin", "nope")
	assert.ErrorIs(t, err, common.ErrUnauthorized)
}

func TestAuthenticateUnknownUser(t *testing.T) {
	s := NewService(newFakeRepo())

	_, err := s.Authenticate(context.Background(), "ghost", "pw")
	assert.ErrorIs(t, err, common.ErrUnauthorized)
}
