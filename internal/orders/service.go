package orders

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ariefcatur/go-retail-backoffice/internal/activity"
	"github.com/ariefcatur/go-retail-backoffice/internal/auth"
	"github.com/ariefcatur/go-retail-backoffice/internal/catalog"
	"github.com/ariefcatur/go-retail-backoffice/internal/customers"
	"github.com/ariefcatur/go-retail-backoffice/internal/database"
	"github.com/ariefcatur/go-retail-backoffice/internal/ledger"
	"github.com/ariefcatur/go-retail-backoffice/internal/notify"
	"github.com/ariefcatur/go-retail-backoffice/internal/promotions"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var (
	// ErrInvalidOrder covers unknown customers, products and variants.
	ErrInvalidOrder      = errors.New("invalid order")
	ErrInsufficientStock = catalog.ErrInsufficientStock
	ErrUnknownStatus     = errors.New("unknown order status")
	ErrInvalidTransition = errors.New("status transition not allowed")
)

type Service struct {
	DB       *sql.DB
	Dialect  database.Dialect
	Notifier notify.Notifier
	Activity *activity.Trail
	Log      logrus.FieldLogger
	Now      func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

type pricedLine struct {
	LineInput
	price int64
}

// Create places an order. Pricing, the order row, its items, the stock
// decrements and the EXPORT ledger rows commit together or not at all.
// The confirmation mail and the audit entry follow the commit and cannot
// fail the call.
func (s *Service) Create(ctx context.Context, actor auth.Principal, in CreateInput) (Receipt, error) {
	if err := actor.RequireAdmin(); err != nil {
		return Receipt{}, err
	}
	if len(in.Items) == 0 {
		return Receipt{}, fmt.Errorf("%w: no items", ErrInvalidOrder)
	}

	now := s.now()
	var (
		receipt Receipt
		cust    customers.Customer
	)
	err := database.WithTx(ctx, s.DB, func(tx *sql.Tx) error {
		var err error
		cust, err = (&customers.Repo{DB: tx, Dialect: s.Dialect}).Get(ctx, in.CustomerID)
		if errors.Is(err, database.ErrNotFound) {
			return fmt.Errorf("%w: customer %s not found", ErrInvalidOrder, in.CustomerID)
		}
		if err != nil {
			return err
		}

		cat := &catalog.Repo{DB: tx, Dialect: s.Dialect}
		lines, total, err := s.price(ctx, cat, in.Items)
		if err != nil {
			return err
		}

		var promotionID *string
		if in.PromotionCode != "" {
			p, reason, err := (&promotions.Repo{DB: tx, Dialect: s.Dialect}).FindActive(ctx, in.PromotionCode, now)
			if err != nil {
				return err
			}
			res := &PromotionResult{Code: in.PromotionCode, Reason: reason}
			if reason == promotions.ReasonNone {
				total, receipt.DiscountClamped = p.Apply(total)
				res.Applied = true
				promotionID = &p.ID
			}
			receipt.Promotion = res
		}

		o := Order{
			ID:          uuid.NewString(),
			CustomerID:  cust.ID,
			TotalPrice:  total,
			Status:      StatusPending,
			PromotionID: promotionID,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		repo := &Repo{DB: tx}
		if err := repo.Insert(ctx, o); err != nil {
			return err
		}

		led := &ledger.Repo{DB: tx}
		for _, l := range lines {
			err := repo.InsertItem(ctx, Item{
				ID:          uuid.NewString(),
				OrderID:     o.ID,
				ProductID:   l.ProductID,
				AttributeID: l.AttributeID,
				Quantity:    l.Quantity,
				Price:       l.price,
				CreatedAt:   now,
			})
			if err != nil {
				return err
			}

			if l.AttributeID != nil {
				err = cat.AdjustAttributeStock(ctx, *l.AttributeID, -l.Quantity)
			} else {
				err = cat.AdjustProductStock(ctx, l.ProductID, -l.Quantity)
			}
			if err != nil {
				return fmt.Errorf("product %s: %w", l.ProductID, err)
			}

			_, err = led.Append(ctx, ledger.Entry{
				ProductID:   l.ProductID,
				AttributeID: l.AttributeID,
				Type:        ledger.Export,
				Quantity:    l.Quantity,
				OrderID:     &o.ID,
				CreatedAt:   now,
			})
			if err != nil {
				return err
			}
		}

		receipt.OrderID = o.ID
		receipt.TotalPrice = total
		return nil
	})
	if err != nil {
		return Receipt{}, err
	}

	s.notify(ctx, notify.Message{
		To:      cust.Email,
		Subject: "New Order",
		Body: fmt.Sprintf("Dear %s, your order #%s has been placed. Total: %s.",
			cust.Name, receipt.OrderID, notify.FormatVND(receipt.TotalPrice)),
	})
	s.Activity.Record(ctx, actor.UserID, activity.ActionCreateOrder, fmt.Sprintf("Created order #%s", receipt.OrderID))
	return receipt, nil
}

// price reads every line's unit price from the catalog and checks that a
// given variant belongs to the line's product. Duplicate lines stay separate.
func (s *Service) price(ctx context.Context, cat *catalog.Repo, items []LineInput) ([]pricedLine, int64, error) {
	lines := make([]pricedLine, 0, len(items))
	var total int64
	for _, it := range items {
		if it.Quantity <= 0 {
			return nil, 0, fmt.Errorf("%w: quantity must be positive for product %s", ErrInvalidOrder, it.ProductID)
		}
		if it.AttributeID != nil && *it.AttributeID == "" {
			it.AttributeID = nil
		}

		price, err := cat.ProductPrice(ctx, it.ProductID)
		if errors.Is(err, database.ErrNotFound) {
			return nil, 0, fmt.Errorf("%w: product %s not found", ErrInvalidOrder, it.ProductID)
		}
		if err != nil {
			return nil, 0, err
		}

		if it.AttributeID != nil {
			a, err := cat.GetAttribute(ctx, *it.AttributeID)
			if errors.Is(err, database.ErrNotFound) || (err == nil && a.ProductID != it.ProductID) {
				return nil, 0, fmt.Errorf("%w: variant %s not found for product %s", ErrInvalidOrder, *it.AttributeID, it.ProductID)
			}
			if err != nil {
				return nil, 0, err
			}
		}

		total += price * int64(it.Quantity)
		lines = append(lines, pricedLine{LineInput: it, price: price})
	}
	return lines, total, nil
}

// UpdateStatus moves an order along the transition table. Canceling does
// not return stock.
func (s *Service) UpdateStatus(ctx context.Context, actor auth.Principal, id, status string) (Order, error) {
	if err := actor.RequireAdmin(); err != nil {
		return Order{}, err
	}
	to, ok := ParseStatus(status)
	if !ok {
		return Order{}, fmt.Errorf("%w: %q", ErrUnknownStatus, status)
	}

	repo := &Repo{DB: s.DB}
	o, err := repo.Get(ctx, id)
	if err != nil {
		return Order{}, err
	}
	if !CanTransition(o.Status, to) {
		return Order{}, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.Status, to)
	}

	now := s.now()
	err = repo.UpdateStatus(ctx, id, o.Status, to, now)
	if errors.Is(err, database.ErrNotFound) {
		// status berubah di antara Get dan UPDATE
		return Order{}, fmt.Errorf("%w: order %s changed concurrently", ErrInvalidTransition, id)
	}
	if err != nil {
		return Order{}, err
	}
	o.Status = to
	o.UpdatedAt = now

	s.notify(ctx, notify.Message{
		To:      o.CustomerEmail,
		Subject: "Order Status Updated",
		Body:    fmt.Sprintf("Dear %s, your order #%s is now %s.", o.CustomerName, o.ID, o.Status),
	})
	s.Activity.Record(ctx, actor.UserID, activity.ActionUpdateOrder, fmt.Sprintf("Updated order #%s to %s", o.ID, o.Status))
	return o, nil
}

func (s *Service) notify(ctx context.Context, m notify.Message) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.Send(ctx, m); err != nil && s.Log != nil {
		s.Log.WithError(err).WithField("to", m.To).Warn("order notification failed")
	}
}

func (s *Service) List(ctx context.Context) ([]Order, error) {
	return (&Repo{DB: s.DB}).List(ctx)
}

func (s *Service) Details(ctx context.Context, id string) (Details, error) {
	repo := &Repo{DB: s.DB}
	o, err := repo.Get(ctx, id)
	if err != nil {
		return Details{}, err
	}
	items, err := repo.Items(ctx, id)
	if err != nil {
		return Details{}, err
	}
	return Details{Order: o, Items: items}, nil
}

// History lists a customer's orders, newest first.
func (s *Service) History(ctx context.Context, customerID string) ([]Order, error) {
	if _, err := (&customers.Repo{DB: s.DB, Dialect: s.Dialect}).Get(ctx, customerID); err != nil {
		return nil, err
	}
	return (&Repo{DB: s.DB}).ListByCustomer(ctx, customerID)
}
