package auth

import (
	"context"
	"time"

	"github.com/ariefcatur/go-retail-backoffice/internal/database"
)

type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	Name         string    `json:"name"`
	Email        *string   `json:"email,omitempty"`
	Phone        *string   `json:"phone,omitempty"`
	Department   *string   `json:"department,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type UserRepo struct {
	DB      database.Querier
	Dialect database.Dialect
}

const userColumns = `id, username, password_hash, role, name, email, phone, department, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role, &u.Name, &u.Email, &u.Phone, &u.Department, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

func (r *UserRepo) Insert(ctx context.Context, u User) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO users(`+userColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		u.ID, u.Username, u.PasswordHash, u.Role, u.Name, u.Email, u.Phone, u.Department, u.CreatedAt, u.UpdatedAt)
	return r.Dialect.Translate(err)
}

func (r *UserRepo) ByUsername(ctx context.Context, username string) (User, error) {
	u, err := scanUser(r.DB.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username))
	return u, database.NotFound(err)
}

func (r *UserRepo) ByEmail(ctx context.Context, email string) (User, error) {
	u, err := scanUser(r.DB.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
	return u, database.NotFound(err)
}

func (r *UserRepo) SetPassword(ctx context.Context, id, hash string, now time.Time) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE users SET password_hash = $2, updated_at = $3 WHERE id = $1`, id, hash, now)
	if err != nil {
		return err
	}
	return database.RowsAffected(res)
}
