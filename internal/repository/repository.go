// Package repository defines the persistence interfaces.
//
// The interfaces are intentionally narrow: the store is a collaborator with
// find-by-email / find-by-id / insert / update semantics, and nothing above
// this package knows (or cares) what implements it. Services depend on the
// interface; the concrete sqlite implementation lives in repository/sqlite.
package repository

import (
	"context"

	"github.com/sakif/accounts-api/internal/model"
)

// UserRepository is the user store contract.
//
// SEMANTICS:
//   - Create assigns ID/CreatedAt/UpdatedAt and inserts. A UNIQUE violation on
//     email surfaces as apperror.ErrDuplicateEmail — the index, not the
//     caller's pre-check, is the uniqueness guarantee.
//   - GetByID / GetByEmail return apperror.ErrNotFound when absent.
//   - Update persists the mutable fields of an existing row and bumps
//     UpdatedAt; apperror.ErrNotFound if the id does not exist.
//   - UpsertGitHub inserts or refreshes an account keyed on its GitHub ID,
//     keeping the existing internal ID on repeat logins.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
	Update(ctx context.Context, user *model.User) error
	UpsertGitHub(ctx context.Context, user *model.User) error
}
