package customers

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/ariefcatur/go-retail-backoffice/internal/activity"
	"github.com/ariefcatur/go-retail-backoffice/internal/auth"
	"github.com/ariefcatur/go-retail-backoffice/internal/database"
	"github.com/google/uuid"
)

type Customer struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     *string   `json:"phone,omitempty"`
	Address   *string   `json:"address,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Input struct {
	Name    string  `json:"name" validate:"required,max=255"`
	Email   string  `json:"email" validate:"required,email"`
	Phone   *string `json:"phone" validate:"omitempty,max=32"`
	Address *string `json:"address"`
}

type Repo struct {
	DB      database.Querier
	Dialect database.Dialect
}

const columns = `id, name, email, phone, address, created_at, updated_at`

func scan(row interface{ Scan(...any) error }) (Customer, error) {
	var c Customer
	err := row.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Address, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func (r *Repo) List(ctx context.Context) ([]Customer, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+columns+` FROM customers ORDER BY name, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Customer{}
	for rows.Next() {
		c, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *Repo) Get(ctx context.Context, id string) (Customer, error) {
	c, err := scan(r.DB.QueryRowContext(ctx, `SELECT `+columns+` FROM customers WHERE id = $1`, id))
	return c, database.NotFound(err)
}

func (r *Repo) Insert(ctx context.Context, c Customer) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO customers(`+columns+`) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		c.ID, c.Name, c.Email, c.Phone, c.Address, c.CreatedAt, c.UpdatedAt)
	return r.Dialect.Translate(err)
}

func (r *Repo) Update(ctx context.Context, c Customer) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE customers SET name = $2, email = $3, phone = $4, address = $5, updated_at = $6
		WHERE id = $1`,
		c.ID, c.Name, c.Email, c.Phone, c.Address, c.UpdatedAt)
	if err != nil {
		return r.Dialect.Translate(err)
	}
	return database.RowsAffected(res)
}

// Delete refuses (database.ErrInUse) while the customer has orders.
func (r *Repo) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		return r.Dialect.Translate(err)
	}
	return database.RowsAffected(res)
}

type Service struct {
	DB       *sql.DB
	Dialect  database.Dialect
	Activity *activity.Trail
	Now      func() time.Time
}

func (s *Service) repo() *Repo { return &Repo{DB: s.DB, Dialect: s.Dialect} }

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *Service) List(ctx context.Context) ([]Customer, error) { return s.repo().List(ctx) }

func (s *Service) Get(ctx context.Context, id string) (Customer, error) { return s.repo().Get(ctx, id) }

func (s *Service) Create(ctx context.Context, actor auth.Principal, in Input) (Customer, error) {
	if err := actor.RequireAdmin(); err != nil {
		return Customer{}, err
	}
	now := s.now()
	c := Customer{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(in.Name),
		Email:     normalizeEmail(in.Email),
		Phone:     in.Phone,
		Address:   in.Address,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo().Insert(ctx, c); err != nil {
		return Customer{}, err
	}
	s.Activity.Record(ctx, actor.UserID, activity.ActionCreateCustomer, fmt.Sprintf("Created customer %s", c.Email))
	return c, nil
}

func (s *Service) Update(ctx context.Context, actor auth.Principal, id string, in Input) (Customer, error) {
	if err := actor.RequireAdmin(); err != nil {
		return Customer{}, err
	}
	r := s.repo()
	c, err := r.Get(ctx, id)
	if err != nil {
		return Customer{}, err
	}
	c.Name = strings.TrimSpace(in.Name)
	c.Email = normalizeEmail(in.Email)
	c.Phone = in.Phone
	c.Address = in.Address
	c.UpdatedAt = s.now()
	if err := r.Update(ctx, c); err != nil {
		return Customer{}, err
	}
	s.Activity.Record(ctx, actor.UserID, activity.ActionUpdateCustomer, fmt.Sprintf("Updated customer %s", c.Email))
	return c, nil
}

func (s *Service) Delete(ctx context.Context, actor auth.Principal, id string) error {
	if err := actor.RequireAdmin(); err != nil {
		return err
	}
	if err := s.repo().Delete(ctx, id); err != nil {
		return err
	}
	s.Activity.Record(ctx, actor.UserID, activity.ActionDeleteCustomer, fmt.Sprintf("Deleted customer #%s", id))
	return nil
}

func normalizeEmail(e string) string { return strings.ToLower(strings.TrimSpace(e)) }
