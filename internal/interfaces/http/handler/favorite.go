package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/tungtungsport/storefront/internal/application/catalog"
)

// FavoriteHandler handles the customer's wishlist
type FavoriteHandler struct {
	BaseHandler
	favoriteService *catalog.FavoriteService
}

// NewFavoriteHandler creates a new favorite handler
func NewFavoriteHandler(favoriteService *catalog.FavoriteService) *FavoriteHandler {
	return &FavoriteHandler{
		favoriteService: favoriteService,
	}
}

// ListFavorites godoc
// @ID           listFavorites
// @Summary      List favorites
// @Tags         favorites
// @Produce      json
// @Success      200 {object} APIResponse[[]catalog.FavoriteResponse]
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /favorites [get]
func (h *FavoriteHandler) ListFavorites(c *gin.Context) {
	id, err := customerID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	favorites, err := h.favoriteService.List(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, favorites)
}

// AddFavorite godoc
// @ID           addFavorite
// @Summary      Add favorite
// @Description  Adding a product twice is not an error
// @Tags         favorites
// @Produce      json
// @Param        product_id path string true "Product ID" format(uuid)
// @Success      200 {object} APIResponse[FavoriteStateData]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /favorites/{product_id} [post]
func (h *FavoriteHandler) AddFavorite(c *gin.Context) {
	id, err := customerID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	productID, ok := h.pathUUID(c, "product_id")
	if !ok {
		return
	}

	if err := h.favoriteService.Add(c.Request.Context(), id, productID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, FavoriteStateData{ProductID: productID.String(), Favorited: true})
}

// RemoveFavorite godoc
// @ID           removeFavorite
// @Summary      Remove favorite
// @Tags         favorites
// @Produce      json
// @Param        product_id path string true "Product ID" format(uuid)
// @Success      200 {object} APIResponse[FavoriteStateData]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /favorites/{product_id} [delete]
func (h *FavoriteHandler) RemoveFavorite(c *gin.Context) {
	id, err := customerID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	productID, ok := h.pathUUID(c, "product_id")
	if !ok {
		return
	}

	if err := h.favoriteService.Remove(c.Request.Context(), id, productID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, FavoriteStateData{ProductID: productID.String(), Favorited: false})
}

// ToggleFavorite godoc
// @ID           toggleFavorite
// @Summary      Toggle favorite
// @Tags         favorites
// @Produce      json
// @Param        product_id path string true "Product ID" format(uuid)
// @Success      200 {object} APIResponse[FavoriteStateData]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /favorites/{product_id}/toggle [post]
func (h *FavoriteHandler) ToggleFavorite(c *gin.Context) {
	id, err := customerID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	productID, ok := h.pathUUID(c, "product_id")
	if !ok {
		return
	}

	favorited, err := h.favoriteService.Toggle(c.Request.Context(), id, productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, FavoriteStateData{ProductID: productID.String(), Favorited: favorited})
}
