package accounts

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/picloop/identity/internal/common"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

const insertQuery = `(?s)^INSERT\s+INTO\s+accounts\s*\(full_name,\s*username,\s*email,\s*password_hash,\s*profile_image,\s*is_google_user\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4,\s*\$5,\s*\$6\)\s*RETURNING\s+id,\s*created_at\s*$`

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	created := time.Now()
	rows := sqlmock.NewRows([]string{"id", "created_at"}).AddRow("acc-42", created)
	mock.ExpectQuery(insertQuery).
		WithArgs("Jane Doe", "janedoe7", "jane@example.com", "digest", "profiles/k", false).
		WillReturnRows(rows)

	a := &Account{
		FullName:     "Jane Doe",
		UserName:     "janedoe7",
		Email:        "jane@example.com",
		PasswordHash: "digest",
		ProfileImage: StoredKey("profiles/k"),
	}
	got, err := repo.Create(context.Background(), a)
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if got.ID != "acc-42" || !got.CreatedAt.Equal(created) {
		t.Fatalf("unexpected account: %+v", got)
	}
}

func TestCreate_FederatedAccountSetsFlag(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id", "created_at"}).AddRow("acc-43", time.Now())
	mock.ExpectQuery(insertQuery).
		WithArgs("Jane Doe", "janedoe7", "jane@example.com", "", "https://img.example/jane", true).
		WillReturnRows(rows)

	a := &Account{
		FullName:     "Jane Doe",
		UserName:     "janedoe7",
		Email:        "jane@example.com",
		ProfileImage: ExternalURL("https://img.example/jane"),
	}
	if _, err := repo.Create(context.Background(), a); err != nil {
		t.Fatalf("Create error: %v", err)
	}
}

func TestCreate_UniqueViolationIsConflict(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(insertQuery).
		WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "accounts_email_key"})

	_, err := repo.Create(context.Background(), &Account{
		FullName: "Jane Doe", UserName: "janedoe7", Email: "jane@example.com",
		ProfileImage: StoredKey("profiles/k"),
	})
	if !errors.Is(err, common.ErrorAlreadyExists) {
		t.Fatalf("want common.ErrorAlreadyExists, got %v", err)
	}
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(insertQuery).WillReturnError(errors.New("db down"))

	_, err := repo.Create(context.Background(), &Account{ProfileImage: StoredKey("k")})
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

const existsQuery = `(?s)^SELECT\s+EXISTS\s*\(SELECT\s+1\s+FROM\s+accounts\s+WHERE\s+email\s*=\s*\$1\s+OR\s+username\s*=\s*\$2\)\s*$`

func TestExistsByEmailOrUserName(t *testing.T) {
	tests := []struct {
		name   string
		exists bool
	}{
		{name: "taken", exists: true},
		{name: "free", exists: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, db := newRepoWithMock(t)
			defer db.Close()

			rows := sqlmock.NewRows([]string{"exists"}).AddRow(tt.exists)
			mock.ExpectQuery(existsQuery).
				WithArgs("jane@example.com", "janedoe7").
				WillReturnRows(rows)

			got, err := repo.ExistsByEmailOrUserName(context.Background(), "jane@example.com", "janedoe7")
			if err != nil {
				t.Fatalf("ExistsByEmailOrUserName error: %v", err)
			}
			if got != tt.exists {
				t.Fatalf("got %v, want %v", got, tt.exists)
			}
		})
	}
}

const findQuery = `(?s)^SELECT\s+id,\s*full_name,\s*username,\s*email,\s*password_hash,\s*profile_image,\s*is_google_user,\s*created_at\s+FROM\s+accounts\s+WHERE\s+email\s*=\s*\$1\s*$`

func TestFindByEmail_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id", "full_name", "username", "email", "password_hash", "profile_image", "is_google_user", "created_at"}).
		AddRow("acc-1", "Jane Doe", "janedoe7", "jane@example.com", "digest", "profiles/k", false, time.Now())
	mock.ExpectQuery(findQuery).WithArgs("jane@example.com").WillReturnRows(rows)

	got, err := repo.FindByEmail(context.Background(), "jane@example.com")
	if err != nil {
		t.Fatalf("FindByEmail error: %v", err)
	}
	if got.ID != "acc-1" || got.UserName != "janedoe7" {
		t.Fatalf("unexpected account: %+v", got)
	}
	if got.ProfileImage != StoredKey("profiles/k") {
		t.Fatalf("expected stored-key image, got %+v", got.ProfileImage)
	}
}

func TestFindByEmail_FederatedMapsToExternalURL(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id", "full_name", "username", "email", "password_hash", "profile_image", "is_google_user", "created_at"}).
		AddRow("acc-2", "Jane Doe", "janedoe7", "jane@example.com", "", "https://img.example/jane", true, time.Now())
	mock.ExpectQuery(findQuery).WithArgs("jane@example.com").WillReturnRows(rows)

	got, err := repo.FindByEmail(context.Background(), "jane@example.com")
	if err != nil {
		t.Fatalf("FindByEmail error: %v", err)
	}
	if got.ProfileImage != ExternalURL("https://img.example/jane") {
		t.Fatalf("expected external-url image, got %+v", got.ProfileImage)
	}
	if !got.IsFederated() {
		t.Fatal("expected federated account")
	}
}

func TestFindByEmail_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(findQuery).WithArgs("ghost@example.com").WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByEmail(context.Background(), "ghost@example.com")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestFindByEmail_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(findQuery).WithArgs("jane@example.com").WillReturnError(errors.New("db down"))

	_, err := repo.FindByEmail(context.Background(), "jane@example.com")
	if err == nil || errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("expected db error, got %v", err)
	}
}
