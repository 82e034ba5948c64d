package orders

import (
	"time"

	"github.com/ariefcatur/go-retail-backoffice/internal/promotions"
)

type Order struct {
	ID            string    `json:"id"`
	CustomerID    string    `json:"customerId"`
	CustomerName  string    `json:"customerName,omitempty"`
	CustomerEmail string    `json:"customerEmail,omitempty"`
	TotalPrice    int64     `json:"totalPrice"`
	Status        Status    `json:"status"`
	PromotionID   *string   `json:"promotionId"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Item.Price is the unit price captured when the order was placed.
type Item struct {
	ID          string    `json:"id"`
	OrderID     string    `json:"orderId"`
	ProductID   string    `json:"productId"`
	AttributeID *string   `json:"attributeId"`
	Quantity    int       `json:"quantity"`
	Price       int64     `json:"price"`
	CreatedAt   time.Time `json:"createdAt"`

	ProductName string `json:"productName,omitempty"`
	Size        string `json:"size,omitempty"`
	Color       string `json:"color,omitempty"`
}

type LineInput struct {
	ProductID   string  `json:"productId" validate:"required"`
	AttributeID *string `json:"attributeId"`
	Quantity    int     `json:"quantity" validate:"gt=0"`
	// Price dari client tidak dipakai; harga selalu dibaca dari katalog.
	Price *int64 `json:"price,omitempty"`
}

type CreateInput struct {
	CustomerID    string      `json:"customerId" validate:"required"`
	PromotionCode string      `json:"promotionCode"`
	Items         []LineInput `json:"items" validate:"required,min=1,dive"`
}

type PromotionResult struct {
	Code    string            `json:"code"`
	Applied bool              `json:"applied"`
	Reason  promotions.Reason `json:"reason"`
}

type Receipt struct {
	OrderID         string           `json:"orderId"`
	TotalPrice      int64            `json:"totalPrice"`
	Promotion       *PromotionResult `json:"promotion,omitempty"`
	DiscountClamped bool             `json:"discountClamped,omitempty"`
}

type Details struct {
	Order
	Items []Item `json:"items"`
}
