package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/picloop/identity/internal/common"
	"github.com/picloop/identity/internal/dbx"
)

// PostgresRepository stores accounts in PostgreSQL. Uniqueness of email
// and username is ultimately enforced by the table's UNIQUE constraints;
// a violation is mapped to common.ErrorAlreadyExists so concurrent
// duplicates surface as conflicts, not internal errors.
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, account *Account) (*Account, error) {

	query :=
		`INSERT INTO accounts (full_name, username, email, password_hash, profile_image, is_google_user)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		account.FullName, account.UserName, account.Email, account.PasswordHash,
		account.ProfileImage.Value, account.IsFederated()).
		Scan(&account.ID, &account.CreatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return nil, fmt.Errorf("%w: email or username is already taken", common.ErrorAlreadyExists)
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return account, nil
}

func (r *PostgresRepository) ExistsByEmailOrUserName(ctx context.Context, email, userName string) (bool, error) {

	query :=
		`SELECT EXISTS (SELECT 1 FROM accounts WHERE email = $1 OR username = $2)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, email, userName).Scan(&exists); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}

	return exists, nil
}

func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (*Account, error) {

	query :=
		`SELECT id, full_name, username, email, password_hash, profile_image, is_google_user, created_at
		 FROM accounts
		 WHERE email = $1
		 `

	account := &Account{}
	var image string
	var isGoogleUser bool

	err := r.db.QueryRowContext(ctx, query, email).Scan(
		&account.ID, &account.FullName, &account.UserName, &account.Email,
		&account.PasswordHash, &image, &isGoogleUser, &account.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	if isGoogleUser {
		account.ProfileImage = ExternalURL(image)
	} else {
		account.ProfileImage = StoredKey(image)
	}

	return account, nil
}
