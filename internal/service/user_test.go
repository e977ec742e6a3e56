package service

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/accounts-api/internal/apperror"
	"github.com/sakif/accounts-api/internal/model"
)

func newTestUserService(repo *fakeUserRepo) *UserService {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewUserService(repo, logger)
}

func seedUser(t *testing.T, repo *fakeUserRepo, fullName, email string) *model.User {
	t.Helper()
	user := &model.User{FullName: fullName, Email: email, City: "Linz", Country: "Austria"}
	require.NoError(t, repo.Create(context.Background(), user))
	return user
}

func TestList(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestUserService(repo)

	users, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, users)

	seedUser(t, repo, "Ann Lee", "a@x.com")
	seedUser(t, repo, "Bob Roy", "b@x.com")

	users, err = svc.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, users, 2)
}

func TestList_StoreTimeout(t *testing.T) {
	repo := newFakeUserRepo()
	repo.failWith = context.DeadlineExceeded
	svc := newTestUserService(repo)

	_, err := svc.List(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, apperror.ErrUnavailable)
}

func TestToggleGraduate(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestUserService(repo)

	seeded := seedUser(t, repo, "Ann Lee", "a@x.com")
	require.False(t, seeded.IsGraduate)

	updated, err := svc.ToggleGraduate(context.Background(), seeded.ID)
	require.NoError(t, err)
	assert.True(t, updated.IsGraduate)

	// toggling again restores the original state
	updated, err = svc.ToggleGraduate(context.Background(), seeded.ID)
	require.NoError(t, err)
	assert.False(t, updated.IsGraduate)

	stored, err := repo.GetByID(context.Background(), seeded.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsGraduate, "the flip must be persisted, not just returned")
}

func TestToggleGraduate_UnknownID(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestUserService(repo)

	_, err := svc.ToggleGraduate(context.Background(), "no-such-id")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}
