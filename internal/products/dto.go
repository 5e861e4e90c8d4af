package products

// CreateProductRequest is the payload for creating a product.
type CreateProductRequest struct {
	SKU      string  `json:"sku" validate:"required,max=64"`
	Name     string  `json:"name" validate:"required,max=255"`
	Category string  `json:"category" validate:"required,max=64"`
	Price    float64 `json:"price" validate:"gte=0"`
	Stock    int     `json:"stock" validate:"gte=0"`
	ImageURL string  `json:"image_url" validate:"omitempty,url"`
}

// UpdateProductRequest is the payload for a partial product update.
type UpdateProductRequest struct {
	Name     *string  `json:"name" validate:"omitempty,max=255"`
	Category *string  `json:"category" validate:"omitempty,max=64"`
	Price    *float64 `json:"price" validate:"omitempty,gte=0"`
	Stock    *int     `json:"stock" validate:"omitempty,gte=0"`
	ImageURL *string  `json:"image_url" validate:"omitempty,url"`
	IsActive *bool    `json:"is_active"`
}
