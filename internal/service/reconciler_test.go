package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-service/internal/apperrors"
	"storefront-service/internal/gateway"
	"storefront-service/internal/models"
)

func unpaidOrder(id int64, reference string) *models.Order {
	return &models.Order{
		ID:            id,
		Reference:     reference,
		CustomerName:  "Ada Obi",
		CustomerEmail: "ada@example.com",
		Status:        models.OrderStatusPending,
		PaymentStatus: models.PaymentStatusUnpaid,
		TotalAmount:   150000,
	}
}

func TestReconcileMarksOrderPaidExactlyOnce(t *testing.T) {
	orders := newFakeOrderStore(unpaidOrder(1, "FS-abc123"))
	gw := &fakeGateway{verifyResult: &gateway.VerifyResult{
		Status:     "success",
		Amount:     1500,
		Channel:    "card",
		RawPayload: []byte(`{"status":true}`),
	}}
	publisher := &fakePublisher{}
	r := NewReconciler(orders, gw, publisher)

	first, err := r.Reconcile(context.Background(), "FS-abc123")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPaid, first.PaymentStatus)
	assert.Equal(t, models.OrderStatusConfirmed, first.Status)
	require.NotNil(t, first.PaidAt)
	assert.JSONEq(t, `{"status":true}`, string(first.GatewayPayload))
	assert.Len(t, publisher.paidEvents, 1)

	// second call is a no-op: no gateway round trip, no second event
	second, err := r.Reconcile(context.Background(), "FS-abc123")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPaid, second.PaymentStatus)
	assert.Equal(t, 1, gw.verifyCalls)
	assert.Len(t, publisher.paidEvents, 1)
}

func TestReconcileUnknownReference(t *testing.T) {
	r := NewReconciler(newFakeOrderStore(), &fakeGateway{}, &fakePublisher{})

	_, err := r.Reconcile(context.Background(), "FS-missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrOrderNotFound)
}

func TestReconcileGatewayRejected(t *testing.T) {
	orders := newFakeOrderStore(unpaidOrder(1, "FS-abc123"))
	gw := &fakeGateway{verifyErr: apperrors.ErrGatewayRejected}
	r := NewReconciler(orders, gw, &fakePublisher{})

	_, err := r.Reconcile(context.Background(), "FS-abc123")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrGatewayRejected)

	// local order untouched
	order, err := orders.GetOrderByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusUnpaid, order.PaymentStatus)
}

func TestReconcileGatewayUnavailable(t *testing.T) {
	orders := newFakeOrderStore(unpaidOrder(1, "FS-abc123"))
	gw := &fakeGateway{verifyErr: apperrors.ErrGatewayUnavailable}
	r := NewReconciler(orders, gw, &fakePublisher{})

	_, err := r.Reconcile(context.Background(), "FS-abc123")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrGatewayUnavailable)
}

func TestInitiatePayment(t *testing.T) {
	orders := newFakeOrderStore(unpaidOrder(1, "FS-abc123"))
	gw := &fakeGateway{initResult: &gateway.InitializeResult{
		AuthorizationURL: "https://checkout.example/xyz",
		Reference:        "FS-abc123",
	}}
	r := NewReconciler(orders, gw, &fakePublisher{})

	result, err := r.InitiatePayment(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "https://checkout.example/xyz", result.AuthorizationURL)
}

func TestInitiatePaymentAlreadyPaid(t *testing.T) {
	order := unpaidOrder(1, "FS-abc123")
	order.PaymentStatus = models.PaymentStatusPaid
	r := NewReconciler(newFakeOrderStore(order), &fakeGateway{}, &fakePublisher{})

	_, err := r.InitiatePayment(context.Background(), 1)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeValidation, apperrors.FromError(err).Code)
}
