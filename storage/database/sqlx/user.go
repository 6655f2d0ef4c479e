package sqlxrepos

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/volatiletech/null/v8"

	"github.com/sprakportal/backend/core/user"
)

type userRow struct {
	ID           int         `db:"id"`
	Name         string      `db:"name"`
	Email        string      `db:"email"`
	Role         string      `db:"role"`
	Level        string      `db:"level"`
	IsActive     bool        `db:"is_active"`
	ProfileImage null.String `db:"profile_image"`
	PasswordHash []byte      `db:"password_hash"`
	CreatedAt    time.Time   `db:"created_at"`
	UpdatedAt    time.Time   `db:"updated_at"`
	LastLogin    time.Time   `db:"last_login"`
}

func (r userRow) toDomain() user.User {
	return user.User{
		ID:           r.ID,
		Name:         r.Name,
		Email:        r.Email,
		Role:         r.Role,
		Level:        r.Level,
		IsActive:     r.IsActive,
		ProfileImage: r.ProfileImage,
		PasswordHash: r.PasswordHash,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
		LastLogin:    r.LastLogin,
	}
}

const userColumns = `id, name, email, role, level, is_active, profile_image, password_hash, created_at, updated_at, last_login`

type userRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) user.Repository {
	return &userRepository{db: db}
}

func (repo *userRepository) CheckEmailUniqueness(ctx context.Context, email string, excludedUsers ...user.User) error {
	exclIDs := make([]int, 0, len(excludedUsers))
	for _, usr := range excludedUsers {
		exclIDs = append(exclIDs, usr.ID)
	}

	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM "user" WHERE LOWER(email) = LOWER($1) AND NOT (id = ANY($2)))`
	if err := repo.db.GetContext(ctx, &exists, query, email, intArray(exclIDs)); err != nil {
		return err
	}
	if exists {
		return user.ErrEmailExists
	}
	return nil
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	query := `
		INSERT INTO "user" (name, email, role, level, is_active, profile_image, password_hash, created_at, updated_at, last_login)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`
	err := repo.db.QueryRowContext(ctx, query,
		usr.Name, usr.Email, usr.Role, usr.Level, usr.IsActive, usr.ProfileImage,
		usr.PasswordHash, usr.CreatedAt, usr.UpdatedAt, usr.LastLogin,
	).Scan(&usr.ID)
	return usr, err
}

func (repo *userRepository) QueryAllUsers(ctx context.Context) ([]user.User, error) {
	var rows []userRow
	query := fmt.Sprintf(`SELECT %s FROM "user" ORDER BY id`, userColumns)
	if err := repo.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, err
	}
	users := make([]user.User, 0, len(rows))
	for _, r := range rows {
		users = append(users, r.toDomain())
	}
	return users, nil
}

func (repo *userRepository) GetUserByID(ctx context.Context, id int) (user.User, error) {
	var r userRow
	query := fmt.Sprintf(`SELECT %s FROM "user" WHERE id = $1`, userColumns)
	if err := repo.db.GetContext(ctx, &r, query, id); err != nil {
		if err == sql.ErrNoRows {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, err
	}
	return r.toDomain(), nil
}

func (repo *userRepository) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	var r userRow
	query := fmt.Sprintf(`SELECT %s FROM "user" WHERE LOWER(email) = LOWER($1)`, userColumns)
	if err := repo.db.GetContext(ctx, &r, query, email); err != nil {
		if err == sql.ErrNoRows {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, err
	}
	return r.toDomain(), nil
}

// UpdateUser only writes set fields; zero values are left untouched.
func (repo *userRepository) UpdateUser(ctx context.Context, usr user.User, isActive *bool) (user.User, error) {
	sets := []string{"updated_at = $1"}
	args := []interface{}{usr.UpdatedAt}

	add := func(col string, val interface{}) {
		args = append(args, val)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if usr.Name != "" {
		add("name", usr.Name)
	}
	if usr.Email != "" {
		add("email", usr.Email)
	}
	if usr.Role != "" {
		add("role", usr.Role)
	}
	if usr.Level != "" {
		add("level", usr.Level)
	}
	if usr.PasswordHash != nil {
		add("password_hash", usr.PasswordHash)
	}
	if usr.ProfileImage.Valid {
		add("profile_image", usr.ProfileImage)
	}
	if !usr.LastLogin.IsZero() {
		add("last_login", usr.LastLogin)
	}
	if isActive != nil {
		add("is_active", *isActive)
	}

	args = append(args, usr.ID)
	query := fmt.Sprintf(`UPDATE "user" SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), userColumns)

	var r userRow
	if err := repo.db.GetContext(ctx, &r, query, args...); err != nil {
		if err == sql.ErrNoRows {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, err
	}
	return r.toDomain(), nil
}

func (repo *userRepository) DeleteUsersByID(ctx context.Context, ids ...int) error {
	_, err := repo.db.ExecContext(ctx, `DELETE FROM "user" WHERE id = ANY($1)`, intArray(ids))
	return err
}
