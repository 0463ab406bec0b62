package handler

// AddCartItemRequest adds units of a product to the cart
type AddCartItemRequest struct {
	ProductID string `json:"product_id" binding:"required,uuid"`
	Size      string `json:"size" binding:"omitempty,max=20"`
	Quantity  int    `json:"quantity" binding:"required,min=1,max=99"`
}

// CartLineRequest addresses one cart line by its "<product_id>:<size>" key
type CartLineRequest struct {
	Key string `json:"key" binding:"required"`
}

// UpdateCartQuantityRequest sets a line's quantity; zero removes the line
type UpdateCartQuantityRequest struct {
	Key      string `json:"key" binding:"required"`
	Quantity int    `json:"quantity" binding:"min=0,max=99"`
}

// ChangeCartSizeRequest moves a line to another size
type ChangeCartSizeRequest struct {
	Key  string `json:"key" binding:"required"`
	Size string `json:"size" binding:"required,max=20"`
}
