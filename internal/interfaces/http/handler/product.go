package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/tungtungsport/storefront/internal/application/catalog"
	apporder "github.com/tungtungsport/storefront/internal/application/order"
)

// ProductHandler serves the public catalog
type ProductHandler struct {
	BaseHandler
	productService *catalog.ProductService
	ratingService  *apporder.RatingService
}

// NewProductHandler creates a new product handler
func NewProductHandler(productService *catalog.ProductService, ratingService *apporder.RatingService) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		ratingService:  ratingService,
	}
}

// ListProducts godoc
// @ID           listProducts
// @Summary      List products
// @Description  Browse active products with search, brand, category and sort filters
// @Tags         catalog
// @Produce      json
// @Param        page      query int    false "Page number" default(1)
// @Param        page_size query int    false "Page size" default(20) maximum(100)
// @Param        search    query string false "Name search"
// @Param        brand     query string false "Brand"
// @Param        category  query string false "Category"
// @Param        sort      query string false "Sort order" Enums(newest, price_asc, price_desc, name)
// @Param        only_new  query bool   false "Only new arrivals"
// @Success      200 {object} APIResponse[[]catalog.ProductResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /products [get]
func (h *ProductHandler) ListProducts(c *gin.Context) {
	var in catalog.ListProductsInput
	if !h.bindQuery(c, &in) {
		return
	}

	products, total, err := h.productService.List(c.Request.Context(), in)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	page, pageSize := in.Page, in.PageSize
	if page <= 0 {
		page = 1
	}
	h.SuccessWithMeta(c, products, total, page, pageSize)
}

// GetProduct godoc
// @ID           getProduct
// @Summary      Get product
// @Tags         catalog
// @Produce      json
// @Param        id path string true "Product ID" format(uuid)
// @Success      200 {object} APIResponse[catalog.ProductResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /products/{id} [get]
func (h *ProductHandler) GetProduct(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	product, err := h.productService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, product)
}

// ListProductRatings godoc
// @ID           listProductRatings
// @Summary      List product ratings
// @Description  Newest ratings first
// @Tags         catalog
// @Produce      json
// @Param        id        path  string true  "Product ID" format(uuid)
// @Param        page      query int    false "Page number" default(1)
// @Param        page_size query int    false "Page size" default(20)
// @Success      200 {object} APIResponse[[]apporder.RatingResponse]
// @Failure      400 {object} ErrorResponse
// @Router       /products/{id}/ratings [get]
func (h *ProductHandler) ListProductRatings(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	req, ok := h.listRequest(c)
	if !ok {
		return
	}

	ratings, err := h.ratingService.ListProductRatings(c.Request.Context(), id, req.Page, req.PageSize)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, ratings)
}

// ListBrands godoc
// @ID           listBrands
// @Summary      List brands
// @Tags         catalog
// @Produce      json
// @Success      200 {object} APIResponse[[]string]
// @Router       /products/brands [get]
func (h *ProductHandler) ListBrands(c *gin.Context) {
	brands, err := h.productService.Brands(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, brands)
}

// ListCategories godoc
// @ID           listCategories
// @Summary      List categories
// @Tags         catalog
// @Produce      json
// @Success      200 {object} APIResponse[[]string]
// @Router       /products/categories [get]
func (h *ProductHandler) ListCategories(c *gin.Context) {
	categories, err := h.productService.Categories(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, categories)
}

// ListShippingOptions godoc
// @ID           listShippingOptions
// @Summary      List shipping options
// @Description  Couriers available at checkout with their flat cost
// @Tags         catalog
// @Produce      json
// @Success      200 {object} APIResponse[[]apporder.ShippingOptionResponse]
// @Router       /shipping-options [get]
func (h *ProductHandler) ListShippingOptions(c *gin.Context) {
	h.Success(c, apporder.ListShippingOptions())
}
