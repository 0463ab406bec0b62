package order

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tungtungsport/storefront/internal/domain/order"
	"github.com/tungtungsport/storefront/internal/domain/shared"
	"go.uber.org/zap"
)

// OrderService serves order reads and status commands. Reads apply due
// auto transitions and write them back; commands return the order as stored.
type OrderService struct {
	txScope        TransactionScope
	orderRepo      order.OrderRepository
	ratingRepo     order.RatingRepository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
	policy         order.Policy
	now            func() time.Time
}

// NewOrderService creates a new OrderService
func NewOrderService(
	txScope TransactionScope,
	orderRepo order.OrderRepository,
	ratingRepo order.RatingRepository,
	policy order.Policy,
	logger *zap.Logger,
) *OrderService {
	if policy == (order.Policy{}) {
		policy = order.DefaultPolicy()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderService{
		txScope:    txScope,
		orderRepo:  orderRepo,
		ratingRepo: ratingRepo,
		logger:     logger.Named("orders"),
		policy:     policy,
		now:        time.Now,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *OrderService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// GetOrder returns one of the customer's orders. Another customer's order
// reads as not found.
func (s *OrderService) GetOrder(ctx context.Context, orderID, customerID uuid.UUID) (*OrderResponse, error) {
	if customerID == uuid.Nil {
		return nil, shared.ErrNotAuthenticated
	}
	o, err := s.orderRepo.FindByIDForCustomer(ctx, orderID, customerID)
	if err != nil {
		return nil, persistenceError(err)
	}
	o = writeBack(ctx, s.orderRepo, s.policy, s.eventPublisher, s.logger, o, s.now())
	return s.toResponse(ctx, o)
}

// GetOrderForStaff returns any order
func (s *OrderService) GetOrderForStaff(ctx context.Context, orderID uuid.UUID) (*OrderResponse, error) {
	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, persistenceError(err)
	}
	o = writeBack(ctx, s.orderRepo, s.policy, s.eventPublisher, s.logger, o, s.now())
	return s.toResponse(ctx, o)
}

// ListOrders lists the customer's orders, newest first
func (s *OrderService) ListOrders(ctx context.Context, customerID uuid.UUID, filter ListOrdersFilter) ([]OrderResponse, int64, error) {
	if customerID == uuid.Nil {
		return nil, 0, shared.ErrNotAuthenticated
	}
	domainFilter, err := toDomainFilter(filter)
	if err != nil {
		return nil, 0, err
	}

	orders, err := s.orderRepo.FindByCustomer(ctx, customerID, domainFilter)
	if err != nil {
		return nil, 0, persistenceError(err)
	}
	total, err := s.orderRepo.CountByCustomer(ctx, customerID, domainFilter)
	if err != nil {
		return nil, 0, persistenceError(err)
	}
	return s.evaluateAll(ctx, orders), total, nil
}

// ListAll lists orders of every customer (staff view)
func (s *OrderService) ListAll(ctx context.Context, filter ListOrdersFilter) ([]OrderResponse, int64, error) {
	domainFilter, err := toDomainFilter(filter)
	if err != nil {
		return nil, 0, err
	}

	orders, err := s.orderRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, persistenceError(err)
	}
	total, err := s.orderRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, persistenceError(err)
	}
	return s.evaluateAll(ctx, orders), total, nil
}

func (s *OrderService) evaluateAll(ctx context.Context, orders []order.Order) []OrderResponse {
	now := s.now()
	resp := make([]OrderResponse, 0, len(orders))
	for i := range orders {
		o := writeBack(ctx, s.orderRepo, s.policy, s.eventPublisher, s.logger, &orders[i], now)
		resp = append(resp, ToOrderResponse(o, now, s.policy, s.allRated(ctx, o)))
	}
	return resp
}

// UpdateStatus moves an order to status. With a customer ID only the
// customer actions (cancel, confirm received) are allowed and ownership is
// enforced; a nil customer ID is a staff update along any valid edge.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID uuid.UUID, customerID *uuid.UUID, status string, opts StatusUpdateOptions) (*OrderResponse, error) {
	target := order.Status(strings.ToUpper(strings.TrimSpace(status)))
	if !target.IsValid() {
		return nil, shared.NewDomainError(shared.ErrInvalidInput.Code, "Unknown order status: "+status)
	}
	if customerID != nil && *customerID == uuid.Nil {
		return nil, shared.ErrNotAuthenticated
	}

	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, persistenceError(err)
	}
	if customerID != nil {
		if err := o.EnsureOwnedBy(*customerID); err != nil {
			return nil, err
		}
	}

	now := s.now()
	// due auto transitions are stored first so they survive a rejected action
	// and a delivered parcel can be confirmed in the same request
	next := writeBack(ctx, s.orderRepo, s.policy, s.eventPublisher, s.logger, o, now)
	from := next.Status

	if customerID != nil {
		err = s.applyCustomerAction(next, *customerID, target, opts, now)
	} else {
		err = s.applyStaffAction(next, target, opts, now)
	}
	if err != nil {
		return nil, err
	}

	if err := s.save(ctx, next, from, now); err != nil {
		return nil, persistenceError(err)
	}

	actor := "staff"
	if customerID != nil {
		actor = "customer"
	}
	s.logger.Info("order status updated",
		zap.String("order_id", next.ID.String()),
		zap.String("from", string(from)),
		zap.String("to", string(next.Status)),
		zap.String("actor", actor),
	)
	publishEvents(ctx, s.eventPublisher, s.logger, next)

	persisted, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, persistenceError(err)
	}
	return s.toResponse(ctx, persisted)
}

// save stores a status change. Confirming the payment also closes the
// receipts still waiting for review in the same transaction.
func (s *OrderService) save(ctx context.Context, o *order.Order, from order.Status, now time.Time) error {
	if o.Status != order.StatusConfirmed || from == order.StatusConfirmed {
		return s.orderRepo.SaveWithLock(ctx, o)
	}
	return s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		if err := repos.OrderRepo().SaveWithLock(ctx, o); err != nil {
			return err
		}
		closed, err := supersedePendingProofs(ctx, repos.ProofRepo(), o.ID, uuid.Nil, now)
		if closed > 0 {
			s.logger.Info("pending payment proofs superseded",
				zap.String("order_id", o.ID.String()),
				zap.Int("count", closed),
			)
		}
		return err
	})
}

func (s *OrderService) applyCustomerAction(o *order.Order, customerID uuid.UUID, target order.Status, opts StatusUpdateOptions, now time.Time) error {
	switch target {
	case order.StatusCancelled:
		return o.Cancel(customerID, opts.Reason, now)
	case order.StatusCompleted:
		return o.ConfirmReceived(customerID, now)
	}
	return shared.NewDomainError(shared.CodeNotAuthorized, "Only store staff can move an order to "+target.String())
}

func (s *OrderService) applyStaffAction(o *order.Order, target order.Status, opts StatusUpdateOptions, now time.Time) error {
	if target == order.StatusShipped {
		return o.Ship(opts.TrackingNumber, opts.EstimatedHours, now)
	}
	return o.TransitionTo(target, now, s.policy)
}

// Cancel cancels the customer's order before shipment
func (s *OrderService) Cancel(ctx context.Context, orderID, customerID uuid.UUID, reason string) (*OrderResponse, error) {
	return s.UpdateStatus(ctx, orderID, &customerID, string(order.StatusCancelled), StatusUpdateOptions{Reason: reason})
}

// ConfirmReceived completes an arrived order on the customer's word
func (s *OrderService) ConfirmReceived(ctx context.Context, orderID, customerID uuid.UUID) (*OrderResponse, error) {
	return s.UpdateStatus(ctx, orderID, &customerID, string(order.StatusCompleted), StatusUpdateOptions{})
}

// PaymentInstructions returns how to pay the order
func (s *OrderService) PaymentInstructions(ctx context.Context, orderID, customerID uuid.UUID) (*PaymentInstructionsResponse, error) {
	if customerID == uuid.Nil {
		return nil, shared.ErrNotAuthenticated
	}
	o, err := s.orderRepo.FindByIDForCustomer(ctx, orderID, customerID)
	if err != nil {
		return nil, persistenceError(err)
	}

	amount := FormatRupiah(o.Total)
	resp := &PaymentInstructionsResponse{
		OrderID:        o.ID,
		OrderNumber:    o.OrderNumber,
		PaymentMethod:  string(o.PaymentMethod),
		VirtualAccount: o.VirtualAccount,
		Amount:         o.Total,
		AmountText:     amount,
		Status:         string(o.Status),
	}
	if o.PaymentMethod == order.PaymentMethodCOD {
		resp.Steps = []string{
			fmt.Sprintf("Siapkan uang tunai sebesar %s", amount),
			"Bayar kepada kurir saat paket diterima",
		}
		return resp, nil
	}
	resp.Steps = []string{
		"Buka aplikasi m-BCA atau KlikBCA",
		"Pilih m-Transfer > BCA Virtual Account",
		fmt.Sprintf("Masukkan nomor Virtual Account %s", o.VirtualAccount),
		fmt.Sprintf("Pastikan jumlah pembayaran %s", amount),
		"Unggah bukti transfer pada halaman pesanan",
	}
	return resp, nil
}

func (s *OrderService) toResponse(ctx context.Context, o *order.Order) (*OrderResponse, error) {
	resp := ToOrderResponse(o, s.now(), s.policy, s.allRated(ctx, o))
	return &resp, nil
}

// allRated only matters for completed orders; a lookup failure keeps the
// rate action visible
func (s *OrderService) allRated(ctx context.Context, o *order.Order) bool {
	if o.Status != order.StatusCompleted || s.ratingRepo == nil {
		return false
	}
	ratings, err := s.ratingRepo.FindByOrder(ctx, o.ID)
	if err != nil {
		s.logger.Warn("failed to load ratings", zap.String("order_id", o.ID.String()), zap.Error(err))
		return false
	}
	return allProductsRated(o, ratings)
}

func toDomainFilter(filter ListOrdersFilter) (shared.Filter, error) {
	f := normalizeFilter(filter.Page, filter.PageSize)
	f.Search = strings.TrimSpace(filter.Search)
	if filter.Status != "" {
		status := order.Status(strings.ToUpper(filter.Status))
		if !status.IsValid() {
			return f, shared.NewDomainError(shared.ErrInvalidInput.Code, "Unknown order status: "+filter.Status)
		}
		f.Filters["status"] = string(status)
	}
	return f, nil
}
