package order

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/tungtungsport/storefront/internal/domain/cart"
	"github.com/tungtungsport/storefront/internal/domain/catalog"
	"github.com/tungtungsport/storefront/internal/domain/order"
	"github.com/tungtungsport/storefront/internal/domain/shared"
	"go.uber.org/zap"
)

// CheckoutConfig holds the checkout tunables
type CheckoutConfig struct {
	VirtualAccountPrefix string
	IdempotencyTTL       time.Duration
	Policy               order.Policy
}

// CheckoutService turns cart lines or a "buy now" item into an order
type CheckoutService struct {
	txScope        TransactionScope
	orderRepo      order.OrderRepository
	productRepo    catalog.ProductRepository
	idempotency    shared.IdempotencyStore
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
	config         CheckoutConfig
	now            func() time.Time
}

// NewCheckoutService creates a new CheckoutService
func NewCheckoutService(
	txScope TransactionScope,
	orderRepo order.OrderRepository,
	productRepo catalog.ProductRepository,
	cfg CheckoutConfig,
	logger *zap.Logger,
) *CheckoutService {
	if cfg.IdempotencyTTL <= 0 {
		cfg.IdempotencyTTL = 24 * time.Hour
	}
	if cfg.Policy == (order.Policy{}) {
		cfg.Policy = order.DefaultPolicy()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CheckoutService{
		txScope:     txScope,
		orderRepo:   orderRepo,
		productRepo: productRepo,
		logger:      logger.Named("checkout"),
		config:      cfg,
		now:         time.Now,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *CheckoutService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetIdempotencyStore enables the Idempotency-Key guard
func (s *CheckoutService) SetIdempotencyStore(store shared.IdempotencyStore) {
	s.idempotency = store
}

// Checkout places an order. The order, its items, the virtual account and
// the cart removal are written in one transaction.
func (s *CheckoutService) Checkout(ctx context.Context, in CheckoutInput) (*OrderResponse, error) {
	if in.CustomerID == uuid.Nil {
		return nil, shared.ErrNotAuthenticated
	}
	address, err := order.NewShippingAddress(in.ShippingName, in.ShippingPhone, in.ShippingAddress)
	if err != nil {
		return nil, err
	}
	shipping, err := order.LookupShippingOption(in.ShippingMethod)
	if err != nil {
		return nil, err
	}
	method, err := order.ParsePaymentMethod(in.PaymentMethod)
	if err != nil {
		return nil, err
	}
	if in.Source == "" {
		in.Source = SourceCartAll
	}
	if !in.Source.IsValid() {
		return nil, shared.NewDomainError(shared.ErrInvalidInput.Code, "Unknown checkout source: "+string(in.Source))
	}
	if in.Source == SourceDirect && in.DirectItem == nil {
		return nil, shared.ErrEmptyOrder
	}

	idemKey := ""
	if in.IdempotencyKey != "" && s.idempotency != nil {
		idemKey = "checkout:" + in.CustomerID.String() + ":" + in.IdempotencyKey
		claimed, result, err := s.idempotency.Claim(ctx, idemKey, s.config.IdempotencyTTL)
		switch {
		case err != nil:
			s.logger.Warn("idempotency store unavailable, checking out without guard", zap.Error(err))
			idemKey = ""
		case !claimed && result != "":
			return s.replay(ctx, in.CustomerID, result)
		case !claimed:
			return nil, ErrIdempotencyInProgress
		}
	}

	created, err := s.placeOrder(ctx, in, address, shipping, method)
	if err != nil {
		if idemKey != "" {
			if rerr := s.idempotency.Release(ctx, idemKey); rerr != nil {
				s.logger.Warn("failed to release idempotency key", zap.Error(rerr))
			}
		}
		s.logger.Warn("checkout failed",
			zap.String("customer_id", in.CustomerID.String()),
			zap.String("source", string(in.Source)),
			zap.Error(err),
		)
		return nil, persistenceError(err)
	}

	if idemKey != "" {
		if err := s.idempotency.Complete(ctx, idemKey, created.ID.String(), s.config.IdempotencyTTL); err != nil {
			s.logger.Warn("failed to record idempotency result", zap.Error(err))
		}
	}

	s.logger.Info("order placed",
		zap.String("order_id", created.ID.String()),
		zap.String("order_number", created.OrderNumber),
		zap.String("customer_id", created.CustomerID.String()),
		zap.String("payment_method", string(created.PaymentMethod)),
		zap.String("status", string(created.Status)),
		zap.String("total", created.Total.String()),
	)
	publishEvents(ctx, s.eventPublisher, s.logger, created)

	persisted, err := s.orderRepo.FindByID(ctx, created.ID)
	if err != nil {
		return nil, persistenceError(err)
	}
	resp := ToOrderResponse(persisted, s.now(), s.config.Policy, false)
	return &resp, nil
}

func (s *CheckoutService) placeOrder(
	ctx context.Context,
	in CheckoutInput,
	address order.ShippingAddress,
	shipping order.ShippingOption,
	method order.PaymentMethod,
) (*order.Order, error) {
	var created *order.Order
	now := s.now()

	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		lines, err := s.resolveLines(ctx, repos.CartRepo(), in)
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			return shared.ErrEmptyOrder
		}

		items, err := s.priceLines(ctx, lines)
		if err != nil {
			return err
		}

		orderNumber, err := repos.OrderRepo().GenerateOrderNumber(ctx, now)
		if err != nil {
			return err
		}
		va := ""
		if method == order.PaymentMethodBankTransfer {
			seq, err := repos.OrderRepo().NextVirtualAccountSequence(ctx)
			if err != nil {
				return err
			}
			va = order.FormatVirtualAccount(s.config.VirtualAccountPrefix, seq)
		}

		o, err := order.NewOrder(order.NewOrderParams{
			CustomerID:     in.CustomerID,
			OrderNumber:    orderNumber,
			Items:          items,
			Shipping:       shipping,
			PaymentMethod:  method,
			Address:        address,
			VirtualAccount: va,
			Now:            now,
		})
		if err != nil {
			return err
		}
		if err := repos.OrderRepo().Create(ctx, o); err != nil {
			return err
		}

		switch in.Source {
		case SourceCartAll:
			err = repos.CartRepo().Clear(ctx, in.CustomerID)
		case SourceCartSelection:
			keys := make([]cart.LineKey, len(lines))
			for i, l := range lines {
				keys[i] = l.Key
			}
			err = repos.CartRepo().RemoveLines(ctx, in.CustomerID, keys)
		}
		if err != nil {
			return err
		}

		created = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// resolveLines returns the cart lines the checkout covers
func (s *CheckoutService) resolveLines(ctx context.Context, repo cart.Repository, in CheckoutInput) ([]cart.Line, error) {
	if in.Source == SourceDirect {
		if in.DirectItem.Quantity <= 0 || in.DirectItem.Quantity > cart.MaxLineQuantity {
			return nil, cart.ErrInvalidQuantity
		}
		return []cart.Line{{
			Key:      cart.NewLineKey(in.DirectItem.ProductID, in.DirectItem.Size),
			Quantity: in.DirectItem.Quantity,
		}}, nil
	}

	c, err := repo.Load(ctx, in.CustomerID)
	if err != nil {
		return nil, err
	}
	if in.Source == SourceCartAll {
		return c.Lines(), nil
	}

	// without explicit keys the selection stored with the cart applies
	if len(in.SelectedKeys) == 0 {
		return c.SelectedLines(), nil
	}
	keys := make([]cart.LineKey, 0, len(in.SelectedKeys))
	for _, raw := range in.SelectedKeys {
		key, err := cart.ParseLineKey(raw)
		if err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	lines, err := c.LinesFor(keys)
	if errors.Is(err, cart.ErrLineNotFound) {
		return nil, shared.NewDomainError(shared.ErrInvalidInput.Code, "Selected item is no longer in the cart")
	}
	return lines, err
}

// priceLines snapshots catalog prices, names and images into order items
func (s *CheckoutService) priceLines(ctx context.Context, lines []cart.Line) ([]order.Item, error) {
	ids := make([]uuid.UUID, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.Key.ProductID)
	}
	products, err := s.productRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	items := make([]order.Item, 0, len(lines))
	for _, l := range lines {
		p, ok := products[l.Key.ProductID]
		if !ok {
			return nil, catalog.ErrProductNotFound
		}
		if err := p.EnsureAvailable(); err != nil {
			return nil, err
		}
		size, err := p.ResolveSize(l.Key.Size)
		if err != nil {
			return nil, err
		}
		item, err := order.NewItem(p.ID, p.Name, p.PrimaryImage(), size, l.Quantity, p.Price)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func (s *CheckoutService) replay(ctx context.Context, customerID uuid.UUID, result string) (*OrderResponse, error) {
	orderID, err := uuid.Parse(result)
	if err != nil {
		return nil, persistenceError(err)
	}
	o, err := s.orderRepo.FindByIDForCustomer(ctx, orderID, customerID)
	if err != nil {
		return nil, persistenceError(err)
	}
	s.logger.Info("checkout replayed from idempotency key", zap.String("order_id", o.ID.String()))
	resp := ToOrderResponse(o, s.now(), s.config.Policy, false)
	return &resp, nil
}
