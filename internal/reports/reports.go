// Package reports holds the read-only aggregates over COMPLETED orders.
package reports

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ariefcatur/go-retail-backoffice/internal/database"
)

const DateLayout = "2006-01-02"

var ErrInvalidRange = errors.New("invalid date range")

type DailyRevenue struct {
	Date  string `json:"date"`
	Total int64  `json:"total"`
}

type TopProduct struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	TotalSold int64  `json:"totalSold"`
}

type Service struct {
	DB      *sql.DB
	Dialect database.Dialect
}

// ParseRange parses two YYYY-MM-DD dates. Both days are included.
func ParseRange(start, end string) (time.Time, time.Time, error) {
	from, err := time.Parse(DateLayout, start)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: startDate %q", ErrInvalidRange, start)
	}
	to, err := time.Parse(DateLayout, end)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: endDate %q", ErrInvalidRange, end)
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: endDate before startDate", ErrInvalidRange)
	}
	return from, to, nil
}

// Revenue sums COMPLETED orders per UTC calendar day of creation, oldest
// day first. Days without revenue are absent; no rows gives an empty slice.
func (s *Service) Revenue(ctx context.Context, start, end string) ([]DailyRevenue, error) {
	from, to, err := ParseRange(start, end)
	if err != nil {
		return nil, err
	}
	day := s.Dialect.DayBucket("created_at")
	rows, err := s.DB.QueryContext(ctx, `
		SELECT `+day+`, CAST(SUM(total_price) AS BIGINT)
		FROM orders
		WHERE status = 'COMPLETED' AND created_at >= $1 AND created_at < $2
		GROUP BY 1
		ORDER BY 1`, from, to.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []DailyRevenue{}
	for rows.Next() {
		var r DailyRevenue
		if err := rows.Scan(&r.Date, &r.Total); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// TopProducts ranks products by units sold in COMPLETED orders.
func (s *Service) TopProducts(ctx context.Context, limit int) ([]TopProduct, error) {
	if limit <= 0 {
		limit = 5
	}
	rows, err := s.DB.QueryContext(ctx, `
		SELECT p.id, p.name, CAST(SUM(i.quantity) AS BIGINT) AS sold
		FROM order_items i
		JOIN products p ON p.id = i.product_id
		JOIN orders o ON o.id = i.order_id
		WHERE o.status = 'COMPLETED'
		GROUP BY p.id, p.name
		ORDER BY sold DESC, p.name
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []TopProduct{}
	for rows.Next() {
		var tp TopProduct
		if err := rows.Scan(&tp.ProductID, &tp.Name, &tp.TotalSold); err != nil {
			return nil, err
		}
		out = append(out, tp)
	}
	return out, rows.Err()
}
