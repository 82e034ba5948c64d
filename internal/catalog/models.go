package catalog

import "time"

// Product.Stock is derived on read: the product's own counter plus the sum
// of its variants. Nothing stores the total.
type Product struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Price        int64     `json:"price"`
	Stock        int       `json:"stock"`
	Description  string    `json:"description"`
	CategoryID   *string   `json:"categoryId"`
	CategoryName *string   `json:"categoryName,omitempty"`
	Image        *string   `json:"image,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type Attribute struct {
	ID        string    `json:"id"`
	ProductID string    `json:"productId"`
	Size      string    `json:"size"`
	Color     string    `json:"color"`
	Stock     int       `json:"stock"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Category struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type ProductInput struct {
	Name        string  `json:"name" validate:"required,max=255"`
	Price       int64   `json:"price" validate:"gte=0"`
	Description string  `json:"description"`
	CategoryID  *string `json:"categoryId"`
	Image       *string `json:"image"`
	// Stock hanya dipakai saat create; dicatat sebagai IMPORT.
	Stock int `json:"stock" validate:"gte=0"`
}

type AttributeInput struct {
	ProductID string `json:"productId" validate:"required"`
	Size      string `json:"size" validate:"max=32"`
	Color     string `json:"color" validate:"max=32"`
	Stock     int    `json:"stock" validate:"gte=0"`
}

type CategoryInput struct {
	Name string `json:"name" validate:"required,max=255"`
}
