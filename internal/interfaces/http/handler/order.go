package handler

import (
	"bufio"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/tungtungsport/storefront/internal/application/identity"
	apporder "github.com/tungtungsport/storefront/internal/application/order"
)

// IdempotencyKeyHeader lets clients retry a checkout without placing it twice
const IdempotencyKeyHeader = "Idempotency-Key"

// proofFormField is the multipart field carrying the payment proof image
const proofFormField = "file"

// OrderHandler handles checkout and the customer's side of the order lifecycle
type OrderHandler struct {
	BaseHandler
	checkoutService *apporder.CheckoutService
	orderService    *apporder.OrderService
	proofService    *apporder.PaymentProofService
	returnService   *apporder.ReturnService
	ratingService   *apporder.RatingService
	authService     *identity.AuthService
}

// OrderServices groups the services behind the order endpoints
type OrderServices struct {
	Checkout *apporder.CheckoutService
	Orders   *apporder.OrderService
	Proofs   *apporder.PaymentProofService
	Returns  *apporder.ReturnService
	Ratings  *apporder.RatingService
	Auth     *identity.AuthService
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(s OrderServices) *OrderHandler {
	return &OrderHandler{
		checkoutService: s.Checkout,
		orderService:    s.Orders,
		proofService:    s.Proofs,
		returnService:   s.Returns,
		ratingService:   s.Ratings,
		authService:     s.Auth,
	}
}

// customerAndOrder resolves the caller and the :id path parameter
func (h *OrderHandler) customerAndOrder(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	cust, err := customerID(c)
	if err != nil {
		h.HandleError(c, err)
		return uuid.Nil, uuid.Nil, false
	}
	orderID, ok := h.pathUUID(c, "id")
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	return cust, orderID, true
}

// Checkout godoc
// @ID           checkout
// @Summary      Place an order
// @Description  Checks out the whole cart, the selected lines or a single item in one transaction.
// @Description  COD orders start CONFIRMED; bank transfer orders start UNPAID with a virtual account.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key header string false "Retry key; repeated calls return the first order"
// @Param        request body CheckoutRequest true "Checkout"
// @Success      201 {object} APIResponse[apporder.OrderResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /checkout [post]
func (h *OrderHandler) Checkout(c *gin.Context) {
	cust, err := customerID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	var req CheckoutRequest
	if !h.bindJSON(c, &req) {
		return
	}

	in := apporder.CheckoutInput{
		CustomerID:      cust,
		Source:          apporder.CheckoutSource(req.Source),
		SelectedKeys:    req.SelectedKeys,
		ShippingMethod:  req.ShippingMethod,
		PaymentMethod:   req.PaymentMethod,
		ShippingName:    req.ShippingName,
		ShippingPhone:   req.ShippingPhone,
		ShippingAddress: req.ShippingAddress,
		IdempotencyKey:  strings.TrimSpace(c.GetHeader(IdempotencyKeyHeader)),
	}
	if req.DirectItem != nil {
		productID, err := uuid.Parse(req.DirectItem.ProductID)
		if err != nil {
			h.BadRequest(c, "Invalid direct_item.product_id format")
			return
		}
		in.DirectItem = &apporder.DirectItemInput{
			ProductID: productID,
			Size:      req.DirectItem.Size,
			Quantity:  req.DirectItem.Quantity,
		}
	}
	if err := h.prefillShipping(c, &in); err != nil {
		h.HandleError(c, err)
		return
	}

	resp, err := h.checkoutService.Checkout(c.Request.Context(), in)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// prefillShipping fills blank shipping fields from the saved profile
func (h *OrderHandler) prefillShipping(c *gin.Context, in *apporder.CheckoutInput) error {
	blank := func(s string) bool { return strings.TrimSpace(s) == "" }
	if h.authService == nil || (!blank(in.ShippingName) && !blank(in.ShippingPhone) && !blank(in.ShippingAddress)) {
		return nil
	}
	profile, err := h.authService.GetProfile(c.Request.Context(), in.CustomerID)
	if err != nil {
		return err
	}
	if blank(in.ShippingName) {
		in.ShippingName = profile.Name
	}
	if blank(in.ShippingPhone) {
		in.ShippingPhone = profile.Phone
	}
	if blank(in.ShippingAddress) {
		in.ShippingAddress = profile.Address
	}
	return nil
}

// ListOrders godoc
// @ID           listMyOrders
// @Summary      List my orders
// @Description  Newest first. Due auto transitions are applied to the returned orders.
// @Tags         orders
// @Produce      json
// @Param        page      query int    false "Page number" default(1)
// @Param        page_size query int    false "Page size" default(20)
// @Param        status    query string false "Status filter"
// @Param        search    query string false "Order number search"
// @Success      200 {object} APIResponse[[]apporder.OrderResponse]
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /orders [get]
func (h *OrderHandler) ListOrders(c *gin.Context) {
	cust, err := customerID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	var q ListOrdersQuery
	if !h.bindQuery(c, &q) {
		return
	}
	filter := toListOrdersFilter(q)

	orders, total, err := h.orderService.ListOrders(c.Request.Context(), cust, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, orders, total, filter.Page, filter.PageSize)
}

func toListOrdersFilter(q ListOrdersQuery) apporder.ListOrdersFilter {
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.PageSize <= 0 {
		q.PageSize = 20
	}
	return apporder.ListOrdersFilter{
		Page:     q.Page,
		PageSize: q.PageSize,
		Status:   strings.ToUpper(strings.TrimSpace(q.Status)),
		Search:   q.Search,
	}
}

// GetOrder godoc
// @ID           getMyOrder
// @Summary      Get my order
// @Tags         orders
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Success      200 {object} APIResponse[apporder.OrderResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /orders/{id} [get]
func (h *OrderHandler) GetOrder(c *gin.Context) {
	cust, orderID, ok := h.customerAndOrder(c)
	if !ok {
		return
	}
	resp, err := h.orderService.GetOrder(c.Request.Context(), orderID, cust)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// CancelOrder godoc
// @ID           cancelMyOrder
// @Summary      Cancel order
// @Description  Allowed until the order ships
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        id      path string             true  "Order ID" format(uuid)
// @Param        request body CancelOrderRequest false "Reason"
// @Success      200 {object} APIResponse[apporder.OrderResponse]
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /orders/{id}/cancel [post]
func (h *OrderHandler) CancelOrder(c *gin.Context) {
	cust, orderID, ok := h.customerAndOrder(c)
	if !ok {
		return
	}
	var req CancelOrderRequest
	if c.Request.ContentLength > 0 && !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.orderService.Cancel(c.Request.Context(), orderID, cust, req.Reason)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ConfirmReceived godoc
// @ID           confirmOrderReceived
// @Summary      Confirm receipt
// @Description  Completes an arrived order
// @Tags         orders
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Success      200 {object} APIResponse[apporder.OrderResponse]
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /orders/{id}/confirm-received [post]
func (h *OrderHandler) ConfirmReceived(c *gin.Context) {
	cust, orderID, ok := h.customerAndOrder(c)
	if !ok {
		return
	}
	resp, err := h.orderService.ConfirmReceived(c.Request.Context(), orderID, cust)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// GetPaymentInstructions godoc
// @ID           getPaymentInstructions
// @Summary      Payment instructions
// @Description  Virtual account number, amount and transfer steps of a bank transfer order
// @Tags         orders
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Success      200 {object} APIResponse[apporder.PaymentInstructionsResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /orders/{id}/payment [get]
func (h *OrderHandler) GetPaymentInstructions(c *gin.Context) {
	cust, orderID, ok := h.customerAndOrder(c)
	if !ok {
		return
	}
	resp, err := h.orderService.PaymentInstructions(c.Request.Context(), orderID, cust)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// UploadPaymentProof godoc
// @ID           uploadPaymentProof
// @Summary      Upload payment proof
// @Description  JPEG, PNG or WebP up to 5 MB. An unpaid order moves to awaiting confirmation.
// @Tags         orders
// @Accept       multipart/form-data
// @Produce      json
// @Param        id   path     string true "Order ID" format(uuid)
// @Param        file formData file   true "Transfer receipt image"
// @Success      201 {object} APIResponse[apporder.PaymentProofResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /orders/{id}/payment-proofs [post]
func (h *OrderHandler) UploadPaymentProof(c *gin.Context) {
	cust, orderID, ok := h.customerAndOrder(c)
	if !ok {
		return
	}

	header, err := c.FormFile(proofFormField)
	if err != nil {
		h.BadRequest(c, "A payment proof image is required in the \"file\" field")
		return
	}
	file, err := header.Open()
	if err != nil {
		h.BadRequest(c, "The uploaded file could not be read")
		return
	}
	defer file.Close()

	body := bufio.NewReader(file)
	head, _ := body.Peek(512)
	contentType, ok := proofContentType(header.Header.Get("Content-Type"), head)
	if !ok {
		h.BadRequest(c, "The file content does not match its declared type")
		return
	}

	resp, err := h.proofService.Upload(c.Request.Context(), apporder.UploadProofInput{
		OrderID:     orderID,
		CustomerID:  cust,
		ContentType: contentType,
		Size:        header.Size,
		Body:        body,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// ListPaymentProofs godoc
// @ID           listPaymentProofs
// @Summary      List payment proofs of an order
// @Tags         orders
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Success      200 {object} APIResponse[[]apporder.PaymentProofResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /orders/{id}/payment-proofs [get]
func (h *OrderHandler) ListPaymentProofs(c *gin.Context) {
	cust, orderID, ok := h.customerAndOrder(c)
	if !ok {
		return
	}
	proofs, err := h.proofService.ListForOrder(c.Request.Context(), orderID, cust)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, proofs)
}

// RequestReturn godoc
// @ID           requestReturn
// @Summary      Request a return
// @Description  Only for arrived orders within 12 hours of arrival
// @Tags         returns
// @Accept       json
// @Produce      json
// @Param        id      path string               true "Order ID" format(uuid)
// @Param        request body RequestReturnRequest true "Return"
// @Success      201 {object} APIResponse[apporder.ReturnResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /orders/{id}/returns [post]
func (h *OrderHandler) RequestReturn(c *gin.Context) {
	cust, orderID, ok := h.customerAndOrder(c)
	if !ok {
		return
	}
	var req RequestReturnRequest
	if !h.bindJSON(c, &req) {
		return
	}

	items := make([]apporder.ReturnItemInput, 0, len(req.Items))
	for _, it := range req.Items {
		itemID, err := uuid.Parse(it.OrderItemID)
		if err != nil {
			h.BadRequest(c, "Invalid order_item_id format")
			return
		}
		items = append(items, apporder.ReturnItemInput{OrderItemID: itemID, Quantity: it.Quantity})
	}

	resp, err := h.returnService.RequestReturn(c.Request.Context(), apporder.RequestReturnInput{
		OrderID:    orderID,
		CustomerID: cust,
		Reason:     req.Reason,
		Items:      items,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// RateOrder godoc
// @ID           rateOrder
// @Summary      Rate products
// @Description  Each product of a completed order can be rated once
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        id      path string           true "Order ID" format(uuid)
// @Param        request body RateOrderRequest true "Ratings"
// @Success      201 {object} APIResponse[[]apporder.RatingResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /orders/{id}/ratings [post]
func (h *OrderHandler) RateOrder(c *gin.Context) {
	cust, orderID, ok := h.customerAndOrder(c)
	if !ok {
		return
	}
	var req RateOrderRequest
	if !h.bindJSON(c, &req) {
		return
	}

	items := make([]apporder.RateItemInput, 0, len(req.Items))
	for _, it := range req.Items {
		productID, err := uuid.Parse(it.ProductID)
		if err != nil {
			h.BadRequest(c, "Invalid product_id format")
			return
		}
		items = append(items, apporder.RateItemInput{ProductID: productID, Stars: it.Stars, Review: it.Review})
	}

	ratings, err := h.ratingService.RateOrder(c.Request.Context(), orderID, cust, items)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, ratings)
}

// ListReturns godoc
// @ID           listMyReturns
// @Summary      List my returns
// @Tags         returns
// @Produce      json
// @Param        page      query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} APIResponse[[]apporder.ReturnResponse]
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /returns [get]
func (h *OrderHandler) ListReturns(c *gin.Context) {
	cust, err := customerID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	req, ok := h.listRequest(c)
	if !ok {
		return
	}
	returns, err := h.returnService.ListMyReturns(c.Request.Context(), cust, req.Page, req.PageSize)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, returns)
}

// GetReturn godoc
// @ID           getMyReturn
// @Summary      Get my return
// @Tags         returns
// @Produce      json
// @Param        id path string true "Return ID" format(uuid)
// @Success      200 {object} APIResponse[apporder.ReturnResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /returns/{id} [get]
func (h *OrderHandler) GetReturn(c *gin.Context) {
	cust, returnID, ok := h.customerAndOrder(c)
	if !ok {
		return
	}
	resp, err := h.returnService.GetReturn(c.Request.Context(), returnID, cust)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// proofContentType returns the type sniffed from the first bytes of an
// upload. A declared part type other than the generic octet-stream must agree
// with it.
func proofContentType(declared string, head []byte) (string, bool) {
	sniffed := mediaType(http.DetectContentType(head))
	declared = mediaType(declared)
	if declared == "image/jpg" {
		declared = "image/jpeg"
	}
	if declared != "" && declared != "application/octet-stream" && declared != sniffed {
		return sniffed, false
	}
	return sniffed, true
}

func mediaType(v string) string {
	if i := strings.Index(v, ";"); i >= 0 {
		v = v[:i]
	}
	return strings.ToLower(strings.TrimSpace(v))
}
