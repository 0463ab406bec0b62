package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/tungtungsport/storefront/internal/application/cart"
)

// CartHandler handles the customer's cart and checkout selection
type CartHandler struct {
	BaseHandler
	cartService *cart.CartService
}

// NewCartHandler creates a new cart handler
func NewCartHandler(cartService *cart.CartService) *CartHandler {
	return &CartHandler{
		cartService: cartService,
	}
}

// respond writes the cart returned by a cart operation
func (h *CartHandler) respond(c *gin.Context, resp *cart.CartResponse, err error) {
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// withCustomer runs fn for the authenticated customer
func (h *CartHandler) withCustomer(c *gin.Context, fn func(id uuid.UUID) (*cart.CartResponse, error)) {
	id, err := customerID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	resp, err := fn(id)
	h.respond(c, resp, err)
}

// GetCart godoc
// @ID           getCart
// @Summary      Get cart
// @Description  Cart lines priced at the current catalog price, with selection totals
// @Tags         cart
// @Produce      json
// @Success      200 {object} APIResponse[cart.CartResponse]
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /cart [get]
func (h *CartHandler) GetCart(c *gin.Context) {
	h.withCustomer(c, func(id uuid.UUID) (*cart.CartResponse, error) {
		return h.cartService.GetCart(c.Request.Context(), id)
	})
}

// AddItem godoc
// @ID           addCartItem
// @Summary      Add to cart
// @Description  Adds units to the product/size line, creating it when missing
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        request body AddCartItemRequest true "Item"
// @Success      200 {object} APIResponse[cart.CartResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /cart/items [post]
func (h *CartHandler) AddItem(c *gin.Context) {
	var req AddCartItemRequest
	if !h.bindJSON(c, &req) {
		return
	}
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		h.BadRequest(c, "Invalid product_id format")
		return
	}
	h.withCustomer(c, func(id uuid.UUID) (*cart.CartResponse, error) {
		return h.cartService.AddItem(c.Request.Context(), id, cart.AddItemInput{
			ProductID: productID,
			Size:      req.Size,
			Quantity:  req.Quantity,
		})
	})
}

// UpdateQuantity godoc
// @ID           updateCartQuantity
// @Summary      Update line quantity
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        request body UpdateCartQuantityRequest true "Quantity"
// @Success      200 {object} APIResponse[cart.CartResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /cart/items/quantity [put]
func (h *CartHandler) UpdateQuantity(c *gin.Context) {
	var req UpdateCartQuantityRequest
	if !h.bindJSON(c, &req) {
		return
	}
	h.withCustomer(c, func(id uuid.UUID) (*cart.CartResponse, error) {
		return h.cartService.UpdateQuantity(c.Request.Context(), id, req.Key, req.Quantity)
	})
}

// ChangeSize godoc
// @ID           changeCartSize
// @Summary      Change line size
// @Description  Merges into an existing line of the new size; the selection follows the item
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        request body ChangeCartSizeRequest true "Size"
// @Success      200 {object} APIResponse[cart.CartResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /cart/items/size [put]
func (h *CartHandler) ChangeSize(c *gin.Context) {
	var req ChangeCartSizeRequest
	if !h.bindJSON(c, &req) {
		return
	}
	h.withCustomer(c, func(id uuid.UUID) (*cart.CartResponse, error) {
		return h.cartService.ChangeSize(c.Request.Context(), id, req.Key, req.Size)
	})
}

// RemoveItem godoc
// @ID           removeCartItem
// @Summary      Remove line
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        request body CartLineRequest true "Line"
// @Success      200 {object} APIResponse[cart.CartResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /cart/items [delete]
func (h *CartHandler) RemoveItem(c *gin.Context) {
	var req CartLineRequest
	if !h.bindJSON(c, &req) {
		return
	}
	h.withCustomer(c, func(id uuid.UUID) (*cart.CartResponse, error) {
		return h.cartService.RemoveItem(c.Request.Context(), id, req.Key)
	})
}

// ClearCart godoc
// @ID           clearCart
// @Summary      Empty the cart
// @Tags         cart
// @Produce      json
// @Success      200 {object} APIResponse[cart.CartResponse]
// @Security     BearerAuth
// @Router       /cart [delete]
func (h *CartHandler) ClearCart(c *gin.Context) {
	h.withCustomer(c, func(id uuid.UUID) (*cart.CartResponse, error) {
		return h.cartService.Clear(c.Request.Context(), id)
	})
}

// ToggleSelection godoc
// @ID           toggleCartSelection
// @Summary      Toggle line selection
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        request body CartLineRequest true "Line"
// @Success      200 {object} APIResponse[cart.CartResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /cart/selection/toggle [post]
func (h *CartHandler) ToggleSelection(c *gin.Context) {
	var req CartLineRequest
	if !h.bindJSON(c, &req) {
		return
	}
	h.withCustomer(c, func(id uuid.UUID) (*cart.CartResponse, error) {
		return h.cartService.ToggleSelection(c.Request.Context(), id, req.Key)
	})
}

// SelectAll godoc
// @ID           selectAllCart
// @Summary      Select every line
// @Tags         cart
// @Produce      json
// @Success      200 {object} APIResponse[cart.CartResponse]
// @Security     BearerAuth
// @Router       /cart/selection/all [post]
func (h *CartHandler) SelectAll(c *gin.Context) {
	h.withCustomer(c, func(id uuid.UUID) (*cart.CartResponse, error) {
		return h.cartService.SelectAll(c.Request.Context(), id)
	})
}

// ClearSelection godoc
// @ID           clearCartSelection
// @Summary      Deselect every line
// @Tags         cart
// @Produce      json
// @Success      200 {object} APIResponse[cart.CartResponse]
// @Security     BearerAuth
// @Router       /cart/selection [delete]
func (h *CartHandler) ClearSelection(c *gin.Context) {
	h.withCustomer(c, func(id uuid.UUID) (*cart.CartResponse, error) {
		return h.cartService.ClearSelection(c.Request.Context(), id)
	})
}
