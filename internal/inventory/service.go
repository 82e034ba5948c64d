package inventory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ariefcatur/go-retail-backoffice/internal/activity"
	"github.com/ariefcatur/go-retail-backoffice/internal/auth"
	"github.com/ariefcatur/go-retail-backoffice/internal/catalog"
	"github.com/ariefcatur/go-retail-backoffice/internal/database"
	"github.com/ariefcatur/go-retail-backoffice/internal/ledger"
)

var ErrInvalidImport = errors.New("invalid import")

type ImportInput struct {
	ProductID   string  `json:"productId" validate:"required"`
	AttributeID *string `json:"attributeId"`
	Quantity    int     `json:"quantity" validate:"gt=0"`
}

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

// Import adds stock and appends the IMPORT row in one transaction. It is
// not idempotent: every call is a new movement.
func (s *Service) Import(ctx context.Context, actor auth.Principal, in ImportInput) (ledger.Entry, error) {
	if err := actor.RequireAdmin(); err != nil {
		return ledger.Entry{}, err
	}
	if in.Quantity <= 0 {
		return ledger.Entry{}, fmt.Errorf("%w: quantity must be positive", ErrInvalidImport)
	}
	if in.AttributeID != nil && *in.AttributeID == "" {
		in.AttributeID = nil
	}

	var entry ledger.Entry
	err := database.WithTx(ctx, s.DB, func(tx *sql.Tx) error {
		cat := &catalog.Repo{DB: tx, Dialect: s.Dialect}
		if _, err := cat.ProductPrice(ctx, in.ProductID); err != nil {
			return err
		}

		var err error
		if in.AttributeID != nil {
			a, gerr := cat.GetAttribute(ctx, *in.AttributeID)
			if gerr != nil {
				return gerr
			}
			if a.ProductID != in.ProductID {
				return fmt.Errorf("%w: variant %s belongs to another product", ErrInvalidImport, a.ID)
			}
			err = cat.AdjustAttributeStock(ctx, a.ID, in.Quantity)
		} else {
			err = cat.AdjustProductStock(ctx, in.ProductID, in.Quantity)
		}
		if err != nil {
			return err
		}

		entry, err = (&ledger.Repo{DB: tx}).Append(ctx, ledger.Entry{
			ProductID:   in.ProductID,
			AttributeID: in.AttributeID,
			Type:        ledger.Import,
			Quantity:    in.Quantity,
			CreatedAt:   s.now(),
		})
		return err
	})
	if err != nil {
		return ledger.Entry{}, err
	}

	s.Activity.Record(ctx, actor.UserID, activity.ActionImportInventory,
		fmt.Sprintf("Imported %d of product #%s", in.Quantity, in.ProductID))
	return entry, nil
}

func (s *Service) List(ctx context.Context, productID string) ([]ledger.Entry, error) {
	return (&ledger.Repo{DB: s.DB}).List(ctx, ledger.Filter{ProductID: productID})
}
