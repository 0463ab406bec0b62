package handler

import (
	"github.com/gin-gonic/gin"
	apporder "github.com/tungtungsport/storefront/internal/application/order"
)

// AdminHandler serves the staff back office: order fulfilment, payment
// verification and return review
type AdminHandler struct {
	BaseHandler
	orderService  *apporder.OrderService
	proofService  *apporder.PaymentProofService
	returnService *apporder.ReturnService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(orderService *apporder.OrderService, proofService *apporder.PaymentProofService, returnService *apporder.ReturnService) *AdminHandler {
	return &AdminHandler{
		orderService:  orderService,
		proofService:  proofService,
		returnService: returnService,
	}
}

// ListOrders godoc
// @ID           adminListOrders
// @Summary      List all orders
// @Tags         admin
// @Produce      json
// @Param        page      query int    false "Page number" default(1)
// @Param        page_size query int    false "Page size" default(20)
// @Param        status    query string false "Status filter"
// @Param        search    query string false "Order number search"
// @Success      200 {object} APIResponse[[]apporder.OrderResponse]
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/orders [get]
func (h *AdminHandler) ListOrders(c *gin.Context) {
	var q ListOrdersQuery
	if !h.bindQuery(c, &q) {
		return
	}
	filter := toListOrdersFilter(q)

	orders, total, err := h.orderService.ListAll(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, orders, total, filter.Page, filter.PageSize)
}

// GetOrder godoc
// @ID           adminGetOrder
// @Summary      Get any order
// @Tags         admin
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Success      200 {object} APIResponse[apporder.OrderResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/orders/{id} [get]
func (h *AdminHandler) GetOrder(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.orderService.GetOrderForStaff(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// UpdateOrderStatus godoc
// @ID           adminUpdateOrderStatus
// @Summary      Update order status
// @Description  Moves an order along the lifecycle. SHIPPED needs a tracking number.
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        id      path string                   true "Order ID" format(uuid)
// @Param        request body UpdateOrderStatusRequest true "Target status"
// @Success      200 {object} APIResponse[apporder.OrderResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/orders/{id}/status [put]
func (h *AdminHandler) UpdateOrderStatus(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req UpdateOrderStatusRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.orderService.UpdateStatus(c.Request.Context(), id, nil, req.Status, apporder.StatusUpdateOptions{
		TrackingNumber: req.TrackingNumber,
		EstimatedHours: req.EstimatedHours,
		Reason:         req.Reason,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ListPendingProofs godoc
// @ID           adminListPendingProofs
// @Summary      List proofs awaiting review
// @Tags         admin
// @Produce      json
// @Param        page      query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} APIResponse[[]apporder.PaymentProofResponse]
// @Security     BearerAuth
// @Router       /admin/payment-proofs [get]
func (h *AdminHandler) ListPendingProofs(c *gin.Context) {
	req, ok := h.listRequest(c)
	if !ok {
		return
	}
	proofs, err := h.proofService.ListPending(c.Request.Context(), req.Page, req.PageSize)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, proofs)
}

// VerifyProof godoc
// @ID           adminVerifyProof
// @Summary      Verify payment proof
// @Description  Confirms the payment and moves the order to CONFIRMED
// @Tags         admin
// @Produce      json
// @Param        id path string true "Proof ID" format(uuid)
// @Success      200 {object} APIResponse[apporder.PaymentProofResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/payment-proofs/{id}/verify [post]
func (h *AdminHandler) VerifyProof(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.proofService.Verify(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// RejectProof godoc
// @ID           adminRejectProof
// @Summary      Reject payment proof
// @Description  The order keeps waiting for a new proof
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        id      path string             true "Proof ID" format(uuid)
// @Param        request body ReviewNotesRequest true "Rejection notes"
// @Success      200 {object} APIResponse[apporder.PaymentProofResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/payment-proofs/{id}/reject [post]
func (h *AdminHandler) RejectProof(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req ReviewNotesRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.proofService.Reject(c.Request.Context(), id, req.Notes)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ApproveReturn godoc
// @ID           adminApproveReturn
// @Summary      Approve return
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        id      path string             true  "Return ID" format(uuid)
// @Param        request body ReviewNotesRequest false "Notes"
// @Success      200 {object} APIResponse[apporder.ReturnResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/returns/{id}/approve [post]
func (h *AdminHandler) ApproveReturn(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req ReviewNotesRequest
	if c.Request.ContentLength > 0 && !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.returnService.ApproveReturn(c.Request.Context(), id, req.Notes)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// RejectReturn godoc
// @ID           adminRejectReturn
// @Summary      Reject return
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        id      path string             true "Return ID" format(uuid)
// @Param        request body ReviewNotesRequest true "Rejection notes"
// @Success      200 {object} APIResponse[apporder.ReturnResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/returns/{id}/reject [post]
func (h *AdminHandler) RejectReturn(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req ReviewNotesRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.returnService.RejectReturn(c.Request.Context(), id, req.Notes)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// CompleteReturn godoc
// @ID           adminCompleteReturn
// @Summary      Complete return
// @Description  Marks an approved return as received back
// @Tags         admin
// @Produce      json
// @Param        id path string true "Return ID" format(uuid)
// @Success      200 {object} APIResponse[apporder.ReturnResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/returns/{id}/complete [post]
func (h *AdminHandler) CompleteReturn(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.returnService.CompleteReturn(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
