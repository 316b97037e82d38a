package accounts

import (
	"context"
)

// Repository is the identity-store gateway. Implementations must assign
// the account ID at creation and surface a concurrent duplicate as
// common.ErrorAlreadyExists.
type Repository interface {
	// ExistsByEmailOrUserName reports whether any account already uses
	// the given email or username.
	ExistsByEmailOrUserName(ctx context.Context, email, userName string) (bool, error)

	// FindByEmail returns the account for the email, or
	// common.ErrorNotFound.
	FindByEmail(ctx context.Context, email string) (*Account, error)

	// Create persists a new account and returns it with the
	// store-assigned ID.
	Create(ctx context.Context, account *Account) (*Account, error)
}
