package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sakif/accounts-api/internal/model"
	"github.com/sakif/accounts-api/internal/repository"
)

// UserService covers the non-credential user operations: listing accounts and
// flipping the graduation flag.
type UserService struct {
	users  repository.UserRepository
	logger *slog.Logger
}

func NewUserService(users repository.UserRepository, logger *slog.Logger) *UserService {
	return &UserService{users: users, logger: logger}
}

// List returns every registered account. Password hashes never appear in the
// output regardless of this code path — model.User excludes the field from
// serialization entirely.
func (s *UserService) List(ctx context.Context) ([]model.User, error) {
	storeCtx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	users, err := s.users.List(storeCtx)
	if err != nil {
		return nil, fmt.Errorf("service/user: listing users: %w", mapStoreErr(err))
	}

	return users, nil
}

// ToggleGraduate flips the isGraduate flag on the given account and returns
// the updated record. Fetch-then-update: the repository's Update raises
// not-found if the account vanished between the two calls.
func (s *UserService) ToggleGraduate(ctx context.Context, id string) (*model.User, error) {
	storeCtx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	user, err := s.users.GetByID(storeCtx, id)
	if err != nil {
		return nil, fmt.Errorf("service/user: fetching user %s: %w", id, mapStoreErr(err))
	}

	user.IsGraduate = !user.IsGraduate

	if err := s.users.Update(storeCtx, user); err != nil {
		return nil, fmt.Errorf("service/user: updating user %s: %w", id, mapStoreErr(err))
	}

	s.logger.Info("graduation flag toggled",
		slog.String("userID", user.ID),
		slog.Bool("isGraduate", user.IsGraduate),
	)

	return user, nil
}
