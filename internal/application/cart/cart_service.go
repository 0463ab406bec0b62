package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tungtungsport/storefront/internal/domain/cart"
	"github.com/tungtungsport/storefront/internal/domain/catalog"
	"github.com/tungtungsport/storefront/internal/domain/shared"
	"go.uber.org/zap"
)

// maxSaveAttempts bounds how often a cart change is replayed after a
// concurrent write
const maxSaveAttempts = 3

// CartService manages the customer's cart and checkout selection. Every
// mutation saves the cart and returns it read back from the repository.
type CartService struct {
	cartRepo    cart.Repository
	productRepo catalog.ProductRepository
	logger      *zap.Logger
	now         func() time.Time
}

// NewCartService creates a new CartService
func NewCartService(cartRepo cart.Repository, productRepo catalog.ProductRepository, logger *zap.Logger) *CartService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		logger:      logger.Named("cart"),
		now:         time.Now,
	}
}

// GetCart returns the cart priced at current catalog prices
func (s *CartService) GetCart(ctx context.Context, customerID uuid.UUID) (*CartResponse, error) {
	if customerID == uuid.Nil {
		return nil, shared.ErrNotAuthenticated
	}
	c, err := s.cartRepo.Load(ctx, customerID)
	if err != nil {
		return nil, persistenceError(err)
	}
	return s.price(ctx, c)
}

// AddItem adds units of an available product in a valid size
func (s *CartService) AddItem(ctx context.Context, customerID uuid.UUID, in AddItemInput) (*CartResponse, error) {
	if customerID == uuid.Nil {
		return nil, shared.ErrNotAuthenticated
	}
	p, err := s.productRepo.FindByID(ctx, in.ProductID)
	if err != nil {
		return nil, persistenceError(err)
	}
	if err := p.EnsureAvailable(); err != nil {
		return nil, err
	}
	size, err := p.ResolveSize(in.Size)
	if err != nil {
		return nil, err
	}

	return s.mutate(ctx, customerID, "item added", func(c *cart.Cart) error {
		_, err := c.AddItem(p.ID, size, in.Quantity, s.now())
		return err
	})
}

// UpdateQuantity sets a line's quantity; zero removes the line
func (s *CartService) UpdateQuantity(ctx context.Context, customerID uuid.UUID, key string, quantity int) (*CartResponse, error) {
	k, err := cart.ParseLineKey(key)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, customerID, "quantity updated", func(c *cart.Cart) error {
		return c.UpdateQuantity(k, quantity)
	})
}

// ChangeSize moves a line to another size of the same product, merging with
// an existing line of that size
func (s *CartService) ChangeSize(ctx context.Context, customerID uuid.UUID, key, newSize string) (*CartResponse, error) {
	k, err := cart.ParseLineKey(key)
	if err != nil {
		return nil, err
	}
	p, err := s.productRepo.FindByID(ctx, k.ProductID)
	if err != nil {
		return nil, persistenceError(err)
	}
	size, err := p.ResolveSize(newSize)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, customerID, "size changed", func(c *cart.Cart) error {
		_, err := c.ChangeSize(k, size)
		return err
	})
}

// RemoveItem drops a line
func (s *CartService) RemoveItem(ctx context.Context, customerID uuid.UUID, key string) (*CartResponse, error) {
	k, err := cart.ParseLineKey(key)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, customerID, "item removed", func(c *cart.Cart) error {
		return c.RemoveItem(k)
	})
}

// Clear empties the cart
func (s *CartService) Clear(ctx context.Context, customerID uuid.UUID) (*CartResponse, error) {
	if customerID == uuid.Nil {
		return nil, shared.ErrNotAuthenticated
	}
	if err := s.cartRepo.Clear(ctx, customerID); err != nil {
		return nil, persistenceError(err)
	}
	s.logger.Info("cart cleared", zap.String("customer_id", customerID.String()))
	return s.GetCart(ctx, customerID)
}

// ToggleSelection flips whether a line is selected for checkout
func (s *CartService) ToggleSelection(ctx context.Context, customerID uuid.UUID, key string) (*CartResponse, error) {
	k, err := cart.ParseLineKey(key)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, customerID, "selection toggled", func(c *cart.Cart) error {
		_, err := c.ToggleSelection(k)
		return err
	})
}

// SelectAll selects every line for checkout
func (s *CartService) SelectAll(ctx context.Context, customerID uuid.UUID) (*CartResponse, error) {
	return s.mutate(ctx, customerID, "all selected", func(c *cart.Cart) error {
		c.SelectAll()
		return nil
	})
}

// ClearSelection deselects every line
func (s *CartService) ClearSelection(ctx context.Context, customerID uuid.UUID) (*CartResponse, error) {
	return s.mutate(ctx, customerID, "selection cleared", func(c *cart.Cart) error {
		c.ClearSelection()
		return nil
	})
}

func (s *CartService) mutate(ctx context.Context, customerID uuid.UUID, action string, fn func(*cart.Cart) error) (*CartResponse, error) {
	if customerID == uuid.Nil {
		return nil, shared.ErrNotAuthenticated
	}
	for attempt := 1; ; attempt++ {
		c, err := s.cartRepo.Load(ctx, customerID)
		if err != nil {
			return nil, persistenceError(err)
		}
		if err := fn(c); err != nil {
			return nil, err
		}
		err = s.cartRepo.Save(ctx, c)
		if errors.Is(err, shared.ErrConcurrencyConflict) && attempt < maxSaveAttempts {
			// another request (usually a checkout) changed the cart; replay on fresh state
			s.logger.Debug("cart changed concurrently, retrying",
				zap.String("customer_id", customerID.String()),
				zap.Int("attempt", attempt),
			)
			continue
		}
		if err != nil {
			s.logger.Error("failed to save cart", zap.String("customer_id", customerID.String()), zap.Error(err))
			return nil, persistenceError(err)
		}
		s.logger.Debug("cart "+action,
			zap.String("customer_id", customerID.String()),
			zap.Int("lines", len(c.Lines())),
		)
		return s.GetCart(ctx, customerID)
	}
}

// price attaches catalog data to each line. Lines whose product is gone or
// off sale are shown as unavailable and left out of the totals.
func (s *CartService) price(ctx context.Context, c *cart.Cart) (*CartResponse, error) {
	lines := c.Lines()
	resp := &CartResponse{
		Items:         make([]CartItemResponse, 0, len(lines)),
		Total:         decimal.Zero,
		SelectedTotal: decimal.Zero,
	}
	if len(lines) == 0 {
		return resp, nil
	}

	ids := make([]uuid.UUID, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.Key.ProductID)
	}
	products, err := s.productRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, persistenceError(err)
	}

	for _, l := range lines {
		item := CartItemResponse{
			Key:       l.Key.String(),
			ProductID: l.Key.ProductID,
			Size:      l.Key.Size,
			Quantity:  l.Quantity,
			UnitPrice: decimal.Zero,
			Subtotal:  decimal.Zero,
			Selected:  c.IsSelected(l.Key),
		}
		if p, ok := products[l.Key.ProductID]; ok {
			item.ProductName = p.Name
			item.Brand = p.Brand
			item.ImageURL = p.PrimaryImage()
			item.Sizes = p.Sizes
			item.Available = p.Active
			item.UnitPrice = p.Price
			item.Subtotal = p.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
		}
		if item.Available {
			resp.ItemCount += l.Quantity
			resp.Total = resp.Total.Add(item.Subtotal)
			if item.Selected {
				resp.SelectedCount += l.Quantity
				resp.SelectedTotal = resp.SelectedTotal.Add(item.Subtotal)
			}
		}
		resp.Items = append(resp.Items, item)
	}
	return resp, nil
}

func persistenceError(err error) error {
	if _, ok := shared.AsDomainError(err); ok {
		return err
	}
	return fmt.Errorf("%w: %v", shared.ErrPersistenceFailure, err)
}
