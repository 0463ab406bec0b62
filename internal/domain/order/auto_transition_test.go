package order

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPolicy_Evaluate(t *testing.T) {
	policy := DefaultPolicy()

	t.Run("shipped order past its estimate arrives", func(t *testing.T) {
		o := createTestOrder(t, PaymentMethodCOD)
		advanceTo(t, o, StatusShipped, baseTime)
		now := baseTime.Add(73 * time.Hour)

		next, changed := policy.Evaluate(o, now)
		require.True(t, changed)
		assert.Equal(t, StatusArrived, next.Status)
		require.NotNil(t, next.ArrivedAt)
		assert.Equal(t, now, *next.ArrivedAt)

		again, changed := policy.Evaluate(next, now)
		assert.False(t, changed)
		assert.Same(t, next, again)
		assert.Equal(t, StatusArrived, again.Status)
		assert.Equal(t, now, *again.ArrivedAt)
	})

	t.Run("estimate boundary is inclusive", func(t *testing.T) {
		o := createTestOrder(t, PaymentMethodCOD)
		advanceTo(t, o, StatusShipped, baseTime)

		_, changed := policy.Evaluate(o, baseTime.Add(72*time.Hour-time.Second))
		assert.False(t, changed)

		next, changed := policy.Evaluate(o, baseTime.Add(72*time.Hour))
		assert.True(t, changed)
		assert.Equal(t, StatusArrived, next.Status)
	})

	t.Run("input is never mutated", func(t *testing.T) {
		o := createTestOrder(t, PaymentMethodCOD)
		advanceTo(t, o, StatusShipped, baseTime)
		o.ClearDomainEvents()

		_, changed := policy.Evaluate(o, baseTime.Add(100*time.Hour))
		require.True(t, changed)
		assert.Equal(t, StatusShipped, o.Status)
		assert.Nil(t, o.ArrivedAt)
		assert.Empty(t, o.GetDomainEvents())
	})

	t.Run("shipped without estimate stays shipped", func(t *testing.T) {
		o := createTestOrder(t, PaymentMethodCOD)
		advanceTo(t, o, StatusShipped, baseTime)
		o.EstimatedDeliveryHours = nil

		_, changed := policy.Evaluate(o, baseTime.Add(1000*time.Hour))
		assert.False(t, changed)
	})

	t.Run("arrived order completes after more than 24 hours", func(t *testing.T) {
		o := createTestOrder(t, PaymentMethodCOD)
		advanceTo(t, o, StatusArrived, baseTime)

		_, changed := policy.Evaluate(o, baseTime.Add(24*time.Hour))
		assert.False(t, changed)

		next, changed := policy.Evaluate(o, baseTime.Add(24*time.Hour+time.Second))
		require.True(t, changed)
		assert.Equal(t, StatusCompleted, next.Status)
		assert.False(t, next.CustomerConfirmed)
		assert.NotNil(t, next.CompletedAt)
		assert.Equal(t, baseTime, *next.ArrivedAt)

		_, changed = policy.Evaluate(next, baseTime.Add(48*time.Hour))
		assert.False(t, changed)
	})

	t.Run("fresh arrival does not complete in the same pass", func(t *testing.T) {
		o := createTestOrder(t, PaymentMethodCOD)
		advanceTo(t, o, StatusShipped, baseTime)

		next, changed := policy.Evaluate(o, baseTime.Add(500*time.Hour))
		require.True(t, changed)
		assert.Equal(t, StatusArrived, next.Status)
	})

	t.Run("unpaid bank transfer stays unpaid indefinitely", func(t *testing.T) {
		o := createTestOrder(t, PaymentMethodBankTransfer)

		for _, d := range []time.Duration{time.Hour, 72 * time.Hour, 365 * 24 * time.Hour} {
			next, changed := EvaluateAutoTransitions(o, baseTime.Add(d))
			assert.False(t, changed)
			assert.Equal(t, StatusUnpaid, next.Status)
		}
	})

	t.Run("other statuses are untouched", func(t *testing.T) {
		for _, status := range []Status{StatusConfirmed, StatusPacked, StatusCompleted, StatusCancelled, StatusReturnInProgress} {
			o := createTestOrder(t, PaymentMethodCOD)
			o.Status = status
			_, changed := policy.Evaluate(o, baseTime.Add(1000*time.Hour))
			assert.False(t, changed, status)
		}
	})

	t.Run("nil order", func(t *testing.T) {
		next, changed := policy.Evaluate(nil, baseTime)
		assert.Nil(t, next)
		assert.False(t, changed)
	})
}

func TestPolicy_ReturnWindowOpen(t *testing.T) {
	policy := DefaultPolicy()
	o := createTestOrder(t, PaymentMethodCOD)
	advanceTo(t, o, StatusArrived, baseTime)

	assert.True(t, policy.ReturnWindowOpen(o, baseTime))
	assert.True(t, policy.ReturnWindowOpen(o, baseTime.Add(12*time.Hour-time.Nanosecond)))
	assert.False(t, policy.ReturnWindowOpen(o, baseTime.Add(12*time.Hour)))
	assert.False(t, policy.ReturnWindowOpen(o, baseTime.Add(13*time.Hour)))

	deadline, ok := policy.ReturnDeadline(o)
	require.True(t, ok)
	assert.Equal(t, baseTime.Add(12*time.Hour), deadline)
}

func TestOrder_AutoComplete(t *testing.T) {
	policy := DefaultPolicy()
	o := createTestOrder(t, PaymentMethodCOD)
	advanceTo(t, o, StatusArrived, baseTime)

	require.Error(t, o.AutoComplete(baseTime.Add(time.Hour), policy))
	require.NoError(t, o.AutoComplete(baseTime.Add(25*time.Hour), policy))
	assert.Equal(t, StatusCompleted, o.Status)
	assert.False(t, o.CustomerConfirmed)
}

func TestOrder_AvailableActions(t *testing.T) {
	policy := DefaultPolicy()

	t.Run("unpaid bank transfer", func(t *testing.T) {
		o := createTestOrder(t, PaymentMethodBankTransfer)
		assert.ElementsMatch(t, []Action{ActionCancel, ActionUploadPaymentProof}, o.AvailableActions(baseTime, policy, false))
	})

	t.Run("confirmed COD", func(t *testing.T) {
		o := createTestOrder(t, PaymentMethodCOD)
		assert.Equal(t, []Action{ActionCancel}, o.AvailableActions(baseTime, policy, false))
	})

	t.Run("shipped has none", func(t *testing.T) {
		o := createTestOrder(t, PaymentMethodCOD)
		advanceTo(t, o, StatusShipped, baseTime)
		assert.Empty(t, o.AvailableActions(baseTime, policy, false))
	})

	t.Run("arrived inside and outside return window", func(t *testing.T) {
		o := createTestOrder(t, PaymentMethodCOD)
		advanceTo(t, o, StatusArrived, baseTime)

		assert.ElementsMatch(t, []Action{ActionConfirmReceived, ActionRequestReturn},
			o.AvailableActions(baseTime.Add(time.Hour), policy, false))
		assert.Equal(t, []Action{ActionConfirmReceived},
			o.AvailableActions(baseTime.Add(13*time.Hour), policy, false))
	})

	t.Run("completed offers rating until everything is rated", func(t *testing.T) {
		o := createTestOrder(t, PaymentMethodCOD)
		advanceTo(t, o, StatusCompleted, baseTime)

		assert.True(t, o.Can(ActionRate, baseTime, policy, false))
		assert.False(t, o.Can(ActionRate, baseTime, policy, true))
	})
}
