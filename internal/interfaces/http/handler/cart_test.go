package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	appcart "github.com/tungtungsport/storefront/internal/application/cart"
)

func lineByKey(resp appcart.CartResponse, key string) (appcart.CartItemResponse, bool) {
	for _, item := range resp.Items {
		if item.Key == key {
			return item, true
		}
	}
	return appcart.CartItemResponse{}, false
}

func TestCartHandler_AddAndMerge(t *testing.T) {
	s := newTestServer(t)
	buyer := s.seedCustomer(t, false)
	boots := s.seedProduct(t, "Mercurial Vapor", 100000, "41", "42", "43")

	rec := s.do(t, http.MethodPost, "/api/v1/cart/items", AddCartItemRequest{
		ProductID: boots.ID.String(), Size: "42", Quantity: 1,
	}, buyer.Token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodPost, "/api/v1/cart/items", AddCartItemRequest{
		ProductID: boots.ID.String(), Size: "42", Quantity: 2,
	}, buyer.Token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	cart := decodeData[appcart.CartResponse](t, rec)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, boots.ID.String()+":42", cart.Items[0].Key)
	assert.Equal(t, 3, cart.Items[0].Quantity)
	assert.Equal(t, 3, cart.ItemCount)
	assert.Equal(t, "300000", cart.Total.String())
	assert.False(t, cart.Items[0].Selected)
	assert.True(t, cart.Items[0].Available)

	t.Run("unknown size", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/api/v1/cart/items", AddCartItemRequest{
			ProductID: boots.ID.String(), Size: "50", Quantity: 1,
		}, buyer.Token)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "INVALID_SIZE", errorCode(t, rec))
	})

	t.Run("quantity out of range", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/api/v1/cart/items", AddCartItemRequest{
			ProductID: boots.ID.String(), Size: "42", Quantity: 100,
		}, buyer.Token)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "VALIDATION_ERROR", errorCode(t, rec))
	})

	t.Run("product taken off sale", func(t *testing.T) {
		gone := s.seedProduct(t, "Old Stock", 50000)
		gone.Deactivate()
		require.NoError(t, s.products.Save(context.Background(), gone))

		rec := s.do(t, http.MethodPost, "/api/v1/cart/items", AddCartItemRequest{
			ProductID: gone.ID.String(), Quantity: 1,
		}, buyer.Token)
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, "PRODUCT_UNAVAILABLE", errorCode(t, rec))
	})

	t.Run("cart needs a token", func(t *testing.T) {
		rec := s.do(t, http.MethodGet, "/api/v1/cart", nil, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestCartHandler_ChangeSizeMergesAndKeepsSelection(t *testing.T) {
	s := newTestServer(t)
	buyer := s.seedCustomer(t, false)
	boots := s.seedProduct(t, "Predator Edge", 100000, "41", "42")
	key41 := boots.ID.String() + ":41"
	key42 := boots.ID.String() + ":42"

	for _, size := range []string{"41", "42"} {
		rec := s.do(t, http.MethodPost, "/api/v1/cart/items", AddCartItemRequest{
			ProductID: boots.ID.String(), Size: size, Quantity: 1,
		}, buyer.Token)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}

	rec := s.do(t, http.MethodPost, "/api/v1/cart/selection/toggle", CartLineRequest{Key: key41}, buyer.Token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	cart := decodeData[appcart.CartResponse](t, rec)
	assert.Equal(t, 1, cart.SelectedCount)
	assert.Equal(t, "100000", cart.SelectedTotal.String())

	rec = s.do(t, http.MethodPut, "/api/v1/cart/items/size", ChangeCartSizeRequest{Key: key41, Size: "42"}, buyer.Token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	cart = decodeData[appcart.CartResponse](t, rec)

	require.Len(t, cart.Items, 1)
	merged, ok := lineByKey(cart, key42)
	require.True(t, ok)
	assert.Equal(t, 2, merged.Quantity)
	assert.True(t, merged.Selected)
	assert.Equal(t, 2, cart.SelectedCount)
}

func TestCartHandler_SelectionAndRemoval(t *testing.T) {
	s := newTestServer(t)
	buyer := s.seedCustomer(t, false)
	boots := s.seedProduct(t, "Copa Mundial", 100000, "42")
	ball := s.seedProduct(t, "Match Ball", 50000)
	bootsKey := boots.ID.String() + ":42"
	ballKey := ball.ID.String() + ":default"

	s.do(t, http.MethodPost, "/api/v1/cart/items", AddCartItemRequest{ProductID: boots.ID.String(), Size: "42", Quantity: 2}, buyer.Token)
	rec := s.do(t, http.MethodPost, "/api/v1/cart/items", AddCartItemRequest{ProductID: ball.ID.String(), Quantity: 1}, buyer.Token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	cart := decodeData[appcart.CartResponse](t, rec)
	require.Len(t, cart.Items, 2)
	_, ok := lineByKey(cart, ballKey)
	assert.True(t, ok, "products without sizes use the default size")

	rec = s.do(t, http.MethodPost, "/api/v1/cart/selection/all", nil, buyer.Token)
	require.Equal(t, http.StatusOK, rec.Code)
	cart = decodeData[appcart.CartResponse](t, rec)
	assert.Equal(t, 3, cart.SelectedCount)
	assert.Equal(t, "250000", cart.SelectedTotal.String())

	rec = s.do(t, http.MethodDelete, "/api/v1/cart/selection", nil, buyer.Token)
	require.Equal(t, http.StatusOK, rec.Code)
	cart = decodeData[appcart.CartResponse](t, rec)
	assert.Equal(t, 0, cart.SelectedCount)
	assert.True(t, cart.SelectedTotal.IsZero())

	t.Run("quantity zero removes the line", func(t *testing.T) {
		rec := s.do(t, http.MethodPut, "/api/v1/cart/items/quantity", UpdateCartQuantityRequest{Key: ballKey, Quantity: 0}, buyer.Token)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		cart := decodeData[appcart.CartResponse](t, rec)
		require.Len(t, cart.Items, 1)
		assert.Equal(t, bootsKey, cart.Items[0].Key)
	})

	t.Run("update quantity", func(t *testing.T) {
		rec := s.do(t, http.MethodPut, "/api/v1/cart/items/quantity", UpdateCartQuantityRequest{Key: bootsKey, Quantity: 5}, buyer.Token)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, 5, decodeData[appcart.CartResponse](t, rec).ItemCount)
	})

	t.Run("unknown line", func(t *testing.T) {
		rec := s.do(t, http.MethodDelete, "/api/v1/cart/items", CartLineRequest{Key: ballKey}, buyer.Token)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "NOT_FOUND", errorCode(t, rec))
	})

	t.Run("malformed key", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/api/v1/cart/selection/toggle", CartLineRequest{Key: "not-a-key"}, buyer.Token)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "INVALID_INPUT", errorCode(t, rec))
	})

	t.Run("remove and clear", func(t *testing.T) {
		s.do(t, http.MethodPost, "/api/v1/cart/items", AddCartItemRequest{ProductID: ball.ID.String(), Quantity: 1}, buyer.Token)

		rec := s.do(t, http.MethodDelete, "/api/v1/cart/items", CartLineRequest{Key: bootsKey}, buyer.Token)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Len(t, decodeData[appcart.CartResponse](t, rec).Items, 1)

		rec = s.do(t, http.MethodDelete, "/api/v1/cart", nil, buyer.Token)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, decodeData[appcart.CartResponse](t, rec).Items)
	})

	t.Run("carts are per customer", func(t *testing.T) {
		other := s.seedCustomer(t, false)
		rec := s.do(t, http.MethodGet, "/api/v1/cart", nil, other.Token)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, decodeData[appcart.CartResponse](t, rec).Items)
	})
}
