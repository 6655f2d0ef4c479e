package sqlxrepos

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sprakportal/backend/core/user"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return sqlx.NewDb(db, "postgres"), mock
}

func userMockColumns() []string {
	return []string{"id", "name", "email", "role", "level", "is_active", "profile_image", "password_hash", "created_at", "updated_at", "last_login"}
}

func TestUserRepository_CreateUser(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	now := time.Now().UTC()
	usr := user.User{
		Name: "Stina Student", Email: "stina@example.se", Role: user.RoleStudent,
		Level: "A2", IsActive: true, PasswordHash: []byte("hashed"),
		CreatedAt: now, UpdatedAt: now,
	}

	mock.ExpectQuery(`INSERT INTO "user"`).
		WithArgs(usr.Name, usr.Email, usr.Role, usr.Level, usr.IsActive, usr.ProfileImage,
			usr.PasswordHash, usr.CreatedAt, usr.UpdatedAt, usr.LastLogin).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))

	got, err := repo.CreateUser(context.Background(), usr)
	require.NoError(t, err)
	assert.Equal(t, 7, got.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_GetUserByEmail(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)
	now := time.Now().UTC()

	t.Run("found", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM "user" WHERE LOWER\(email\) = LOWER\(\$1\)`).
			WithArgs("stina@example.se").
			WillReturnRows(sqlmock.NewRows(userMockColumns()).
				AddRow(7, "Stina Student", "stina@example.se", "student", "A2", true, nil, []byte("hashed"), now, now, now))

		got, err := repo.GetUserByEmail(context.Background(), "stina@example.se")
		require.NoError(t, err)
		assert.Equal(t, 7, got.ID)
		assert.Equal(t, "Stina Student", got.Name)
		assert.False(t, got.ProfileImage.Valid)
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM "user"`).
			WithArgs("nope@example.se").
			WillReturnRows(sqlmock.NewRows(userMockColumns()))

		_, err := repo.GetUserByEmail(context.Background(), "nope@example.se")
		assert.Equal(t, user.ErrNotFound, err)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_CheckEmailUniqueness(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	t.Run("taken", func(t *testing.T) {
		mock.ExpectQuery(`SELECT EXISTS`).
			WithArgs("stina@example.se", sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

		err := repo.CheckEmailUniqueness(context.Background(), "stina@example.se")
		assert.Equal(t, user.ErrEmailExists, err)
	})

	t.Run("free", func(t *testing.T) {
		mock.ExpectQuery(`SELECT EXISTS`).
			WithArgs("ny@example.se", sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

		assert.NoError(t, repo.CheckEmailUniqueness(context.Background(), "ny@example.se"))
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_UpdateUser_partialWrite(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)
	now := time.Now().UTC()

	// only updated_at, name and last_login are set; the query must not touch
	// other columns
	mock.ExpectQuery(`UPDATE "user" SET updated_at = \$1, name = \$2, last_login = \$3 WHERE id = \$4`).
		WithArgs(now, "Nytt Namn", now, 7).
		WillReturnRows(sqlmock.NewRows(userMockColumns()).
			AddRow(7, "Nytt Namn", "stina@example.se", "student", "A2", true, nil, []byte("hashed"), now, now, now))

	got, err := repo.UpdateUser(context.Background(), user.User{ID: 7, Name: "Nytt Namn", UpdatedAt: now, LastLogin: now}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Nytt Namn", got.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_DeleteUsersByID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectExec(`DELETE FROM "user" WHERE id = ANY\(\$1\)`).
		WithArgs(sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 2))

	assert.NoError(t, repo.DeleteUsersByID(context.Background(), 7, 8))
	assert.NoError(t, mock.ExpectationsWereMet())
}
