package catalog

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
	"github.com/ariefcatur/go-retail-backoffice/internal/ledger"
	"github.com/google/uuid"
)

type Service struct {
	DB       *sql.DB
	Dialect  database.Dialect
	Activity *activity.Trail
	Now      func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *Service) repo(q database.Querier) *Repo { return &Repo{DB: q, Dialect: s.Dialect} }

func (s *Service) Products(ctx context.Context) ([]Product, error) {
	return s.repo(s.DB).ListProducts(ctx)
}

func (s *Service) Product(ctx context.Context, id string) (Product, error) {
	return s.repo(s.DB).GetProduct(ctx, id)
}

// CreateProduct inserts the product and, when an initial stock is given,
// the IMPORT movement that accounts for it.
func (s *Service) CreateProduct(ctx context.Context, actor auth.Principal, in ProductInput) (Product, error) {
	if err := actor.RequireAdmin(); err != nil {
		return Product{}, err
	}
	now := s.now()
	p := Product{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(in.Name),
		Price:       in.Price,
		Stock:       in.Stock,
		Description: in.Description,
		CategoryID:  in.CategoryID,
		Image:       in.Image,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	err := database.WithTx(ctx, s.DB, func(tx *sql.Tx) error {
		r := s.repo(tx)
		if err := r.checkCategory(ctx, p.CategoryID); err != nil {
			return err
		}
		if err := r.InsertProduct(ctx, p); err != nil {
			return err
		}
		return importInitial(ctx, tx, p.ID, nil, in.Stock, now)
	})
	if err != nil {
		return Product{}, err
	}
	s.Activity.Record(ctx, actor.UserID, activity.ActionCreateProduct, fmt.Sprintf("Created product %s", p.Name))
	return s.Product(ctx, p.ID)
}

// UpdateProduct changes everything but stock. in.Stock is ignored.
func (s *Service) UpdateProduct(ctx context.Context, actor auth.Principal, id string, in ProductInput) (Product, error) {
	if err := actor.RequireAdmin(); err != nil {
		return Product{}, err
	}
	p := Product{
		ID:          id,
		Name:        strings.TrimSpace(in.Name),
		Price:       in.Price,
		Description: in.Description,
		CategoryID:  in.CategoryID,
		Image:       in.Image,
		UpdatedAt:   s.now(),
	}
	r := s.repo(s.DB)
	if err := r.checkCategory(ctx, p.CategoryID); err != nil {
		return Product{}, err
	}
	if err := r.UpdateProduct(ctx, p); err != nil {
		return Product{}, err
	}
	s.Activity.Record(ctx, actor.UserID, activity.ActionUpdateProduct, fmt.Sprintf("Updated product %s", p.Name))
	return s.Product(ctx, id)
}

// DeleteProduct fails with database.ErrInUse once the product has any order
// or ledger history.
func (s *Service) DeleteProduct(ctx context.Context, actor auth.Principal, id string) error {
	if err := actor.RequireAdmin(); err != nil {
		return err
	}
	if err := s.repo(s.DB).DeleteProduct(ctx, id); err != nil {
		return err
	}
	s.Activity.Record(ctx, actor.UserID, activity.ActionDeleteProduct, fmt.Sprintf("Deleted product #%s", id))
	return nil
}

func (s *Service) Attributes(ctx context.Context, productID string) ([]Attribute, error) {
	r := s.repo(s.DB)
	if _, err := r.GetProduct(ctx, productID); err != nil {
		return nil, err
	}
	return r.ListAttributes(ctx, productID)
}

func (s *Service) CreateAttribute(ctx context.Context, actor auth.Principal, in AttributeInput) (Attribute, error) {
	if err := actor.RequireAdmin(); err != nil {
		return Attribute{}, err
	}
	now := s.now()
	a := Attribute{
		ID:        uuid.NewString(),
		ProductID: in.ProductID,
		Size:      strings.TrimSpace(in.Size),
		Color:     strings.TrimSpace(in.Color),
		Stock:     in.Stock,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err := database.WithTx(ctx, s.DB, func(tx *sql.Tx) error {
		r := s.repo(tx)
		if _, err := r.GetProduct(ctx, a.ProductID); err != nil {
			return err
		}
		if err := r.InsertAttribute(ctx, a); err != nil {
			return err
		}
		return importInitial(ctx, tx, a.ProductID, &a.ID, in.Stock, now)
	})
	if err != nil {
		return Attribute{}, err
	}
	s.Activity.Record(ctx, actor.UserID, activity.ActionCreateAttribute,
		fmt.Sprintf("Created variant %s/%s for product #%s", a.Size, a.Color, a.ProductID))
	return a, nil
}

func (r *Repo) checkCategory(ctx context.Context, id *string) error {
	if id == nil {
		return nil
	}
	_, err := r.GetCategory(ctx, *id)
	if errors.Is(err, database.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrUnknownCategory, *id)
	}
	return err
}

func importInitial(ctx context.Context, q database.Querier, productID string, attributeID *string, qty int, now time.Time) error {
	if qty <= 0 {
		return nil
	}
	_, err := (&ledger.Repo{DB: q}).Append(ctx, ledger.Entry{
		ProductID:   productID,
		AttributeID: attributeID,
		Type:        ledger.Import,
		Quantity:    qty,
		CreatedAt:   now,
	})
	return err
}

func (s *Service) Categories(ctx context.Context) ([]Category, error) {
	return s.repo(s.DB).ListCategories(ctx)
}

func (s *Service) CreateCategory(ctx context.Context, actor auth.Principal, in CategoryInput) (Category, error) {
	if err := actor.RequireAdmin(); err != nil {
		return Category{}, err
	}
	now := s.now()
	c := Category{ID: uuid.NewString(), Name: strings.TrimSpace(in.Name), CreatedAt: now, UpdatedAt: now}
	if err := s.repo(s.DB).InsertCategory(ctx, c); err != nil {
		return Category{}, err
	}
	s.Activity.Record(ctx, actor.UserID, activity.ActionCreateCategory, fmt.Sprintf("Created category %s", c.Name))
	return c, nil
}

func (s *Service) UpdateCategory(ctx context.Context, actor auth.Principal, id string, in CategoryInput) (Category, error) {
	if err := actor.RequireAdmin(); err != nil {
		return Category{}, err
	}
	r := s.repo(s.DB)
	c, err := r.GetCategory(ctx, id)
	if err != nil {
		return Category{}, err
	}
	c.Name = strings.TrimSpace(in.Name)
	c.UpdatedAt = s.now()
	if err := r.UpdateCategory(ctx, c); err != nil {
		return Category{}, err
	}
	s.Activity.Record(ctx, actor.UserID, activity.ActionUpdateCategory, fmt.Sprintf("Updated category %s", c.Name))
	return c, nil
}

func (s *Service) DeleteCategory(ctx context.Context, actor auth.Principal, id string) error {
	if err := actor.RequireAdmin(); err != nil {
		return err
	}
	if err := s.repo(s.DB).DeleteCategory(ctx, id); err != nil {
		return err
	}
	s.Activity.Record(ctx, actor.UserID, activity.ActionDeleteCategory, fmt.Sprintf("Deleted category #%s", id))
	return nil
}
