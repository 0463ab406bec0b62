package order

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tungtungsport/storefront/internal/domain/order"
	"github.com/tungtungsport/storefront/internal/domain/shared"
)

func newReturnService(repos *repoSet, now time.Time) *ReturnService {
	svc := NewReturnService(repos.scope, repos.orders, repos.returns, order.DefaultPolicy(), nil)
	svc.now = fixedClock(now)
	return svc
}

// arrivedAt is baseTime+72h for placedOrder fixtures
var arrivedAt = baseTime.Add(72 * time.Hour)

func TestReturnService_RequestReturn(t *testing.T) {
	repos := newRepoSet()
	customer := uuid.New()
	o := placedOrder(customer, order.PaymentMethodCOD, order.StatusArrived)
	svc := newReturnService(repos, arrivedAt.Add(11*time.Hour))

	var created *order.ReturnRequest
	stored := &order.ReturnRequest{}
	repos.orders.On("FindByID", mock.Anything, o.ID).Return(o, nil)
	repos.returns.On("Create", mock.Anything, mock.AnythingOfType("*order.ReturnRequest")).
		Run(func(args mock.Arguments) {
			created = args.Get(1).(*order.ReturnRequest)
			*stored = *created
		}).
		Return(nil)
	repos.orders.On("SaveWithLock", mock.Anything, mock.MatchedBy(func(saved *order.Order) bool {
		return saved.Status == order.StatusReturnInProgress
	})).Return(nil)
	repos.returns.On("FindByID", mock.Anything, mock.Anything).Return(stored, nil)

	resp, err := svc.RequestReturn(context.Background(), RequestReturnInput{
		OrderID:    o.ID,
		CustomerID: customer,
		Reason:     "Ukuran terlalu kecil",
		Items:      []ReturnItemInput{{OrderItemID: o.Items[0].ID, Quantity: 1}},
	})
	require.NoError(t, err)
	require.NotNil(t, created)

	assert.Equal(t, string(order.ReturnStatusPending), resp.Status)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "42", resp.Items[0].Size)
	assert.Equal(t, 1, resp.Items[0].Quantity)
	assert.Equal(t, order.StatusReturnInProgress, o.Status)
	repos.orders.AssertExpectations(t)
}

func TestReturnService_RequestReturn_Window(t *testing.T) {
	tests := []struct {
		name  string
		now   time.Time
		code  string
		saved bool
	}{
		{"exactly at the boundary", arrivedAt.Add(12 * time.Hour), shared.CodeWindowExpired, false},
		{"after the boundary", arrivedAt.Add(13 * time.Hour), shared.CodeWindowExpired, false},
		{"past auto completion", arrivedAt.Add(30 * time.Hour), shared.CodeWindowExpired, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repos := newRepoSet()
			customer := uuid.New()
			o := placedOrder(customer, order.PaymentMethodCOD, order.StatusArrived)
			svc := newReturnService(repos, tt.now)
			repos.orders.On("FindByID", mock.Anything, o.ID).Return(o, nil)

			_, err := svc.RequestReturn(context.Background(), RequestReturnInput{
				OrderID:    o.ID,
				CustomerID: customer,
				Reason:     "rusak",
				Items:      []ReturnItemInput{{OrderItemID: o.Items[0].ID, Quantity: 1}},
			})
			assertCode(t, err, tt.code)
			repos.returns.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestReturnService_RequestReturn_Rejections(t *testing.T) {
	t.Run("not arrived", func(t *testing.T) {
		repos := newRepoSet()
		customer := uuid.New()
		o := placedOrder(customer, order.PaymentMethodCOD, order.StatusPacked)
		svc := newReturnService(repos, baseTime.Add(time.Hour))
		repos.orders.On("FindByID", mock.Anything, o.ID).Return(o, nil)

		_, err := svc.RequestReturn(context.Background(), RequestReturnInput{
			OrderID: o.ID, CustomerID: customer, Reason: "rusak",
			Items: []ReturnItemInput{{OrderItemID: o.Items[0].ID, Quantity: 1}},
		})
		assertCode(t, err, shared.CodeInvalidTransition)
	})

	t.Run("someone else's order", func(t *testing.T) {
		repos := newRepoSet()
		o := placedOrder(uuid.New(), order.PaymentMethodCOD, order.StatusArrived)
		svc := newReturnService(repos, arrivedAt.Add(time.Hour))
		repos.orders.On("FindByID", mock.Anything, o.ID).Return(o, nil)

		_, err := svc.RequestReturn(context.Background(), RequestReturnInput{
			OrderID: o.ID, CustomerID: uuid.New(), Reason: "rusak",
			Items: []ReturnItemInput{{OrderItemID: o.Items[0].ID, Quantity: 1}},
		})
		assertCode(t, err, shared.CodeNotAuthorized)
	})

	t.Run("too many units", func(t *testing.T) {
		repos := newRepoSet()
		customer := uuid.New()
		o := placedOrder(customer, order.PaymentMethodCOD, order.StatusArrived)
		svc := newReturnService(repos, arrivedAt.Add(time.Hour))
		repos.orders.On("FindByID", mock.Anything, o.ID).Return(o, nil)

		_, err := svc.RequestReturn(context.Background(), RequestReturnInput{
			OrderID: o.ID, CustomerID: customer, Reason: "rusak",
			Items: []ReturnItemInput{{OrderItemID: o.Items[0].ID, Quantity: 3}},
		})
		assertCode(t, err, "INVALID_INPUT")
		assert.Equal(t, order.StatusArrived, o.Status)
	})

	t.Run("database failure", func(t *testing.T) {
		repos := newRepoSet()
		customer := uuid.New()
		o := placedOrder(customer, order.PaymentMethodCOD, order.StatusArrived)
		svc := newReturnService(repos, arrivedAt.Add(time.Hour))
		repos.orders.On("FindByID", mock.Anything, o.ID).Return(o, nil)
		repos.returns.On("Create", mock.Anything, mock.Anything).Return(errors.New("disk full"))

		_, err := svc.RequestReturn(context.Background(), RequestReturnInput{
			OrderID: o.ID, CustomerID: customer, Reason: "rusak",
			Items: []ReturnItemInput{{OrderItemID: o.Items[0].ID, Quantity: 1}},
		})
		assert.ErrorIs(t, err, shared.ErrPersistenceFailure)
	})
}

func TestReturnService_ShippedParcelPastEstimateCanBeReturned(t *testing.T) {
	repos := newRepoSet()
	customer := uuid.New()
	o := placedOrder(customer, order.PaymentMethodCOD, order.StatusShipped)
	svc := newReturnService(repos, baseTime.Add(80*time.Hour))

	repos.orders.On("FindByID", mock.Anything, o.ID).Return(o, nil)
	repos.returns.On("Create", mock.Anything, mock.Anything).Return(nil)
	repos.orders.On("SaveWithLock", mock.Anything, mock.MatchedBy(func(saved *order.Order) bool {
		return saved.Status == order.StatusReturnInProgress && saved.ArrivedAt != nil
	})).Return(nil)
	repos.returns.On("FindByID", mock.Anything, mock.Anything).Return(&order.ReturnRequest{Status: order.ReturnStatusPending}, nil)

	_, err := svc.RequestReturn(context.Background(), RequestReturnInput{
		OrderID: o.ID, CustomerID: customer, Reason: "rusak",
		Items: []ReturnItemInput{{OrderItemID: o.Items[0].ID, Quantity: 2}},
	})
	require.NoError(t, err)
	repos.orders.AssertExpectations(t)
}

func TestReturnService_Review(t *testing.T) {
	newPending := func() *order.ReturnRequest {
		r := &order.ReturnRequest{
			BaseAggregateRoot: shared.NewBaseAggregateRoot(),
			OrderID:           uuid.New(),
			CustomerID:        uuid.New(),
			Reason:            "rusak",
			Status:            order.ReturnStatusPending,
		}
		return r
	}

	t.Run("approve then complete", func(t *testing.T) {
		repos := newRepoSet()
		svc := newReturnService(repos, baseTime)
		r := newPending()
		repos.returns.On("FindByID", mock.Anything, r.ID).Return(r, nil)
		repos.returns.On("SaveWithLock", mock.Anything, r).Return(nil)

		resp, err := svc.ApproveReturn(context.Background(), r.ID, "ok")
		require.NoError(t, err)
		assert.Equal(t, string(order.ReturnStatusApproved), resp.Status)

		resp, err = svc.CompleteReturn(context.Background(), r.ID)
		require.NoError(t, err)
		assert.Equal(t, string(order.ReturnStatusCompleted), resp.Status)
	})

	t.Run("reject needs notes", func(t *testing.T) {
		repos := newRepoSet()
		svc := newReturnService(repos, baseTime)
		r := newPending()
		repos.returns.On("FindByID", mock.Anything, r.ID).Return(r, nil)

		_, err := svc.RejectReturn(context.Background(), r.ID, " ")
		assertCode(t, err, "INVALID_INPUT")
	})

	t.Run("complete a pending return", func(t *testing.T) {
		repos := newRepoSet()
		svc := newReturnService(repos, baseTime)
		r := newPending()
		repos.returns.On("FindByID", mock.Anything, r.ID).Return(r, nil)

		_, err := svc.CompleteReturn(context.Background(), r.ID)
		assertCode(t, err, shared.CodeInvalidTransition)
	})
}

func TestReturnService_GetReturn_Ownership(t *testing.T) {
	repos := newRepoSet()
	svc := newReturnService(repos, baseTime)
	r := &order.ReturnRequest{BaseAggregateRoot: shared.NewBaseAggregateRoot(), CustomerID: uuid.New()}
	repos.returns.On("FindByID", mock.Anything, r.ID).Return(r, nil)

	_, err := svc.GetReturn(context.Background(), r.ID, uuid.New())
	assertCode(t, err, "NOT_FOUND")

	resp, err := svc.GetReturn(context.Background(), r.ID, r.CustomerID)
	require.NoError(t, err)
	assert.Equal(t, r.ID, resp.ID)
}
