// Package ledger is the append-only record of stock movements. Rows are
// inserted together with the stock change they describe and never updated.
package ledger

import (
	"context"
	"time"

	"github.com/ariefcatur/go-retail-backoffice/internal/database"
	"github.com/google/uuid"
)

type Movement string

const (
	Import Movement = "IMPORT"
	Export Movement = "EXPORT"
)

type Entry struct {
	ID          string    `json:"id"`
	ProductID   string    `json:"productId"`
	AttributeID *string   `json:"attributeId,omitempty"`
	Type        Movement  `json:"type"`
	Quantity    int       `json:"quantity"`
	OrderID     *string   `json:"orderId,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`

	// diisi oleh List
	ProductName string `json:"productName,omitempty"`
	Size        string `json:"size,omitempty"`
	Color       string `json:"color,omitempty"`
}

type Repo struct{ DB database.Querier }

// Append inserts e, assigning an id when e has none.
func (r *Repo) Append(ctx context.Context, e Entry) (Entry, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO inventory_logs(id, product_id, attribute_id, type, quantity, order_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		e.ID, e.ProductID, e.AttributeID, e.Type, e.Quantity, e.OrderID, e.CreatedAt)
	if err != nil {
		return Entry{}, err
	}
	return e, nil
}

type Filter struct {
	ProductID string
	Limit     int
}

// List returns movements newest first.
func (r *Repo) List(ctx context.Context, f Filter) ([]Entry, error) {
	if f.Limit <= 0 {
		f.Limit = 500
	}
	q := `
		SELECT l.id, l.product_id, l.attribute_id, l.type, l.quantity, l.order_id, l.created_at,
		       p.name, COALESCE(a.size, ''), COALESCE(a.color, '')
		FROM inventory_logs l
		JOIN products p ON p.id = l.product_id
		LEFT JOIN product_attributes a ON a.id = l.attribute_id`
	args := []any{f.Limit}
	if f.ProductID != "" {
		q += ` WHERE l.product_id = $2`
		args = append(args, f.ProductID)
	}
	q += ` ORDER BY l.created_at DESC, l.id LIMIT $1`

	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Entry{}
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.ProductID, &e.AttributeID, &e.Type, &e.Quantity, &e.OrderID, &e.CreatedAt,
			&e.ProductName, &e.Size, &e.Color); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
