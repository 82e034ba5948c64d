package promotions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ariefcatur/go-retail-backoffice/internal/activity"
	"github.com/ariefcatur/go-retail-backoffice/internal/auth"
	"github.com/ariefcatur/go-retail-backoffice/internal/database"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var ErrInvalidPromotion = errors.New("invalid promotion")

type Promotion struct {
	ID            string          `json:"id"`
	Code          string          `json:"code"`
	DiscountType  DiscountType    `json:"discountType"`
	DiscountValue decimal.Decimal `json:"discountValue"`
	StartDate     time.Time       `json:"startDate"`
	EndDate       time.Time       `json:"endDate"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

type Input struct {
	Code          string          `json:"code" validate:"required,max=64"`
	DiscountType  DiscountType    `json:"discountType" validate:"required,oneof=PERCENTAGE FIXED"`
	DiscountValue decimal.Decimal `json:"discountValue"`
	StartDate     time.Time       `json:"startDate" validate:"required"`
	EndDate       time.Time       `json:"endDate" validate:"required"`
}

// Validate checks the rules the struct tags cannot express.
func (in Input) Validate() error {
	switch in.DiscountType {
	case Percentage:
		if !in.DiscountValue.IsPositive() || in.DiscountValue.GreaterThan(hundred) {
			return fmt.Errorf("%w: percentage must be in (0, 100]", ErrInvalidPromotion)
		}
	case Fixed:
		if !in.DiscountValue.IsPositive() {
			return fmt.Errorf("%w: fixed discount must be positive", ErrInvalidPromotion)
		}
	default:
		return fmt.Errorf("%w: unknown discount type %q", ErrInvalidPromotion, in.DiscountType)
	}
	if in.EndDate.Before(in.StartDate) {
		return fmt.Errorf("%w: endDate before startDate", ErrInvalidPromotion)
	}
	return nil
}

type Repo struct {
	DB      database.Querier
	Dialect database.Dialect
}

const columns = `id, code, discount_type, discount_value, start_date, end_date, created_at, updated_at`

func scan(row interface{ Scan(...any) error }) (Promotion, error) {
	var p Promotion
	err := row.Scan(&p.ID, &p.Code, &p.DiscountType, &p.DiscountValue, &p.StartDate, &p.EndDate, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (r *Repo) List(ctx context.Context) ([]Promotion, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+columns+` FROM promotions ORDER BY start_date DESC, code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Promotion{}
	for rows.Next() {
		p, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *Repo) Get(ctx context.Context, id string) (Promotion, error) {
	p, err := scan(r.DB.QueryRowContext(ctx, `SELECT `+columns+` FROM promotions WHERE id = $1`, id))
	return p, database.NotFound(err)
}

func (r *Repo) FindByCode(ctx context.Context, code string) (Promotion, error) {
	p, err := scan(r.DB.QueryRowContext(ctx, `SELECT `+columns+` FROM promotions WHERE code = $1`, code))
	return p, database.NotFound(err)
}

// FindActive looks code up and checks its window against now. A missing
// code is not an error: it comes back as ReasonNotFound.
func (r *Repo) FindActive(ctx context.Context, code string, now time.Time) (Promotion, Reason, error) {
	p, err := r.FindByCode(ctx, strings.TrimSpace(code))
	if errors.Is(err, database.ErrNotFound) {
		return Promotion{}, ReasonNotFound, nil
	}
	if err != nil {
		return Promotion{}, "", err
	}
	return p, p.Check(now), nil
}

func (r *Repo) Insert(ctx context.Context, p Promotion) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO promotions(`+columns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		p.ID, p.Code, p.DiscountType, p.DiscountValue, p.StartDate, p.EndDate, p.CreatedAt, p.UpdatedAt)
	return r.Dialect.Translate(err)
}

func (r *Repo) Update(ctx context.Context, p Promotion) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE promotions
		SET code = $2, discount_type = $3, discount_value = $4, start_date = $5, end_date = $6, updated_at = $7
		WHERE id = $1`,
		p.ID, p.Code, p.DiscountType, p.DiscountValue, p.StartDate, p.EndDate, p.UpdatedAt)
	if err != nil {
		return r.Dialect.Translate(err)
	}
	return database.RowsAffected(res)
}

// Delete keeps past orders; their promotion reference becomes NULL.
func (r *Repo) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM promotions WHERE id = $1`, id)
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

func (s *Service) List(ctx context.Context) ([]Promotion, error) { return s.repo().List(ctx) }

func (s *Service) Create(ctx context.Context, actor auth.Principal, in Input) (Promotion, error) {
	if err := actor.RequireAdmin(); err != nil {
		return Promotion{}, err
	}
	if err := in.Validate(); err != nil {
		return Promotion{}, err
	}
	now := s.now()
	p := fromInput(in)
	p.ID = uuid.NewString()
	p.CreatedAt, p.UpdatedAt = now, now
	if err := s.repo().Insert(ctx, p); err != nil {
		return Promotion{}, err
	}
	s.Activity.Record(ctx, actor.UserID, activity.ActionCreatePromotion, fmt.Sprintf("Created promotion %s", p.Code))
	return p, nil
}

func (s *Service) Update(ctx context.Context, actor auth.Principal, id string, in Input) (Promotion, error) {
	if err := actor.RequireAdmin(); err != nil {
		return Promotion{}, err
	}
	if err := in.Validate(); err != nil {
		return Promotion{}, err
	}
	r := s.repo()
	cur, err := r.Get(ctx, id)
	if err != nil {
		return Promotion{}, err
	}
	p := fromInput(in)
	p.ID = id
	p.CreatedAt = cur.CreatedAt
	p.UpdatedAt = s.now()
	if err := r.Update(ctx, p); err != nil {
		return Promotion{}, err
	}
	s.Activity.Record(ctx, actor.UserID, activity.ActionUpdatePromotion, fmt.Sprintf("Updated promotion %s", p.Code))
	return p, nil
}

func (s *Service) Delete(ctx context.Context, actor auth.Principal, id string) error {
	if err := actor.RequireAdmin(); err != nil {
		return err
	}
	r := s.repo()
	p, err := r.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := r.Delete(ctx, id); err != nil {
		return err
	}
	s.Activity.Record(ctx, actor.UserID, activity.ActionDeletePromotion, fmt.Sprintf("Deleted promotion %s", p.Code))
	return nil
}

func fromInput(in Input) Promotion {
	return Promotion{
		Code:          strings.TrimSpace(in.Code),
		DiscountType:  in.DiscountType,
		DiscountValue: in.DiscountValue,
		StartDate:     in.StartDate.UTC(),
		EndDate:       in.EndDate.UTC(),
	}
}
