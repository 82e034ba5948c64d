package orders

import (
	"context"
	"time"

	"github.com/ariefcatur/go-retail-backoffice/internal/database"
)

// Repo bekerja di dalam atau di luar transaksi, tergantung DB.
type Repo struct{ DB database.Querier }

const orderSelect = `
	SELECT o.id, o.customer_id, c.name, c.email, o.total_price, o.status, o.promotion_id, o.created_at, o.updated_at
	FROM orders o
	JOIN customers c ON c.id = o.customer_id`

func scanOrder(row interface{ Scan(...any) error }) (Order, error) {
	var o Order
	err := row.Scan(&o.ID, &o.CustomerID, &o.CustomerName, &o.CustomerEmail, &o.TotalPrice, &o.Status,
		&o.PromotionID, &o.CreatedAt, &o.UpdatedAt)
	return o, err
}

func (r *Repo) Insert(ctx context.Context, o Order) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO orders(id, customer_id, total_price, status, promotion_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		o.ID, o.CustomerID, o.TotalPrice, o.Status, o.PromotionID, o.CreatedAt, o.UpdatedAt)
	return err
}

func (r *Repo) InsertItem(ctx context.Context, it Item) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO order_items(id, order_id, product_id, attribute_id, quantity, price, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		it.ID, it.OrderID, it.ProductID, it.AttributeID, it.Quantity, it.Price, it.CreatedAt)
	return err
}

func (r *Repo) Get(ctx context.Context, id string) (Order, error) {
	o, err := scanOrder(r.DB.QueryRowContext(ctx, orderSelect+` WHERE o.id = $1`, id))
	return o, database.NotFound(err)
}

func (r *Repo) List(ctx context.Context) ([]Order, error) {
	return r.list(ctx, orderSelect+` ORDER BY o.created_at DESC, o.id`)
}

func (r *Repo) ListByCustomer(ctx context.Context, customerID string) ([]Order, error) {
	return r.list(ctx, orderSelect+` WHERE o.customer_id = $1 ORDER BY o.created_at DESC, o.id`, customerID)
}

func (r *Repo) list(ctx context.Context, q string, args ...any) ([]Order, error) {
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// Items returns the order's lines with product name and variant size/color.
func (r *Repo) Items(ctx context.Context, orderID string) ([]Item, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT i.id, i.order_id, i.product_id, i.attribute_id, i.quantity, i.price, i.created_at,
		       p.name, COALESCE(a.size, ''), COALESCE(a.color, '')
		FROM order_items i
		JOIN products p ON p.id = i.product_id
		LEFT JOIN product_attributes a ON a.id = i.attribute_id
		WHERE i.order_id = $1
		ORDER BY i.created_at, i.id`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Item{}
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.AttributeID, &it.Quantity, &it.Price, &it.CreatedAt,
			&it.ProductName, &it.Size, &it.Color); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// UpdateStatus hanya berhasil kalau status di DB masih from; nol baris =
// order tidak ada atau sudah diubah request lain.
func (r *Repo) UpdateStatus(ctx context.Context, id string, from, to Status, now time.Time) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE orders SET status = $3, updated_at = $4
		WHERE id = $1 AND status = $2`, id, from, to, now)
	if err != nil {
		return err
	}
	return database.RowsAffected(res)
}
