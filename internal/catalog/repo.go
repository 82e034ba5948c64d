package catalog

import (
	"context"
	"errors"

	"github.com/ariefcatur/go-retail-backoffice/internal/database"
)

var (
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrUnknownCategory   = errors.New("category does not exist")
)

// Repo is the catalog store. Bind DB to a *sql.Tx to take part in a
// caller's transaction.
type Repo struct {
	DB      database.Querier
	Dialect database.Dialect
}

const productSelect = `
	SELECT p.id, p.name, p.price,
	       p.stock + COALESCE((SELECT SUM(a.stock) FROM product_attributes a WHERE a.product_id = p.id), 0),
	       p.description, p.category_id, c.name, p.image, p.created_at, p.updated_at
	FROM products p
	LEFT JOIN categories c ON c.id = p.category_id`

func scanProduct(row interface{ Scan(...any) error }) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.Name, &p.Price, &p.Stock, &p.Description, &p.CategoryID, &p.CategoryName,
		&p.Image, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (r *Repo) ListProducts(ctx context.Context) ([]Product, error) {
	rows, err := r.DB.QueryContext(ctx, productSelect+` ORDER BY p.created_at DESC, p.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *Repo) GetProduct(ctx context.Context, id string) (Product, error) {
	p, err := scanProduct(r.DB.QueryRowContext(ctx, productSelect+` WHERE p.id = $1`, id))
	return p, database.NotFound(err)
}

// InsertProduct stores p with p.Stock as the product's own counter.
func (r *Repo) InsertProduct(ctx context.Context, p Product) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO products(id, name, price, stock, description, category_id, image, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		p.ID, p.Name, p.Price, p.Stock, p.Description, p.CategoryID, p.Image, p.CreatedAt, p.UpdatedAt)
	return r.Dialect.Translate(err)
}

// UpdateProduct never touches stock; stock only moves through the ledger.
func (r *Repo) UpdateProduct(ctx context.Context, p Product) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE products
		SET name = $2, price = $3, description = $4, category_id = $5, image = $6, updated_at = $7
		WHERE id = $1`,
		p.ID, p.Name, p.Price, p.Description, p.CategoryID, p.Image, p.UpdatedAt)
	if err != nil {
		return r.Dialect.Translate(err)
	}
	return database.RowsAffected(res)
}

func (r *Repo) DeleteProduct(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return r.Dialect.Translate(err)
	}
	return database.RowsAffected(res)
}

func (r *Repo) ProductPrice(ctx context.Context, id string) (int64, error) {
	var price int64
	err := r.DB.QueryRowContext(ctx, `SELECT price FROM products WHERE id = $1`, id).Scan(&price)
	return price, database.NotFound(err)
}

const attributeColumns = `id, product_id, size, color, stock, created_at, updated_at`

func scanAttribute(row interface{ Scan(...any) error }) (Attribute, error) {
	var a Attribute
	err := row.Scan(&a.ID, &a.ProductID, &a.Size, &a.Color, &a.Stock, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

func (r *Repo) ListAttributes(ctx context.Context, productID string) ([]Attribute, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+attributeColumns+` FROM product_attributes
		WHERE product_id = $1 ORDER BY created_at, id`, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Attribute{}
	for rows.Next() {
		a, err := scanAttribute(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *Repo) GetAttribute(ctx context.Context, id string) (Attribute, error) {
	a, err := scanAttribute(r.DB.QueryRowContext(ctx,
		`SELECT `+attributeColumns+` FROM product_attributes WHERE id = $1`, id))
	return a, database.NotFound(err)
}

func (r *Repo) InsertAttribute(ctx context.Context, a Attribute) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO product_attributes(`+attributeColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		a.ID, a.ProductID, a.Size, a.Color, a.Stock, a.CreatedAt, a.UpdatedAt)
	return r.Dialect.Translate(err)
}

func (r *Repo) AttributeStock(ctx context.Context, id string) (int, error) {
	var stock int
	err := r.DB.QueryRowContext(ctx, `SELECT stock FROM product_attributes WHERE id = $1`, id).Scan(&stock)
	return stock, database.NotFound(err)
}

// AdjustAttributeStock adds delta to a variant's stock in one conditional
// statement. A decrement that would go below zero changes nothing and
// returns ErrInsufficientStock.
func (r *Repo) AdjustAttributeStock(ctx context.Context, id string, delta int) error {
	return r.adjust(ctx, "product_attributes", id, delta)
}

// AdjustProductStock is AdjustAttributeStock for the product's own counter,
// used by products sold without a variant.
func (r *Repo) AdjustProductStock(ctx context.Context, id string, delta int) error {
	return r.adjust(ctx, "products", id, delta)
}

func (r *Repo) adjust(ctx context.Context, table, id string, delta int) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE `+table+` SET stock = stock + $2 WHERE id = $1 AND stock + $2 >= 0`, id, delta)
	if err != nil {
		return err
	}
	err = database.RowsAffected(res)
	if !errors.Is(err, database.ErrNotFound) {
		return err
	}
	// nol baris: id tidak ada, atau stok tidak cukup
	var one int
	err = r.DB.QueryRowContext(ctx, `SELECT 1 FROM `+table+` WHERE id = $1`, id).Scan(&one)
	if err != nil {
		return database.NotFound(err)
	}
	return ErrInsufficientStock
}

func (r *Repo) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT id, name, created_at, updated_at FROM categories ORDER BY name, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Category{}
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *Repo) GetCategory(ctx context.Context, id string) (Category, error) {
	var c Category
	err := r.DB.QueryRowContext(ctx, `SELECT id, name, created_at, updated_at FROM categories WHERE id = $1`, id).
		Scan(&c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt)
	return c, database.NotFound(err)
}

func (r *Repo) InsertCategory(ctx context.Context, c Category) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO categories(id, name, created_at, updated_at) VALUES ($1, $2, $3, $4)`,
		c.ID, c.Name, c.CreatedAt, c.UpdatedAt)
	return r.Dialect.Translate(err)
}

func (r *Repo) UpdateCategory(ctx context.Context, c Category) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE categories SET name = $2, updated_at = $3 WHERE id = $1`,
		c.ID, c.Name, c.UpdatedAt)
	if err != nil {
		return r.Dialect.Translate(err)
	}
	return database.RowsAffected(res)
}

// DeleteCategory leaves its products uncategorised (ON DELETE SET NULL).
func (r *Repo) DeleteCategory(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return r.Dialect.Translate(err)
	}
	return database.RowsAffected(res)
}
