package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"storefront-service/internal/apperrors"
	"storefront-service/internal/gateway"
	"storefront-service/internal/models"
	"storefront-service/internal/util"
)

// Reconciler syncs local payment state with the gateway's authoritative
// verification result. The gateway decides whether money moved; the local
// order record stays authoritative for everything else.
type Reconciler struct {
	orders    OrderStore
	gateway   PaymentGateway
	publisher Publisher
	logger    *zap.Logger
}

// NewReconciler creates a payment reconciler
func NewReconciler(orders OrderStore, gw PaymentGateway, publisher Publisher) *Reconciler {
	return &Reconciler{
		orders:    orders,
		gateway:   gw,
		publisher: publisher,
		logger:    util.GetLogger(),
	}
}

// Reconcile verifies a transaction reference against the gateway and marks
// the order paid on success. Idempotent: an already-paid order is returned
// unchanged without a gateway call, so polling and duplicate webhooks are
// safe.
func (r *Reconciler) Reconcile(ctx context.Context, reference string) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "Reconciler.Reconcile")
	defer span.End()

	util.ReconciliationsTotal.Inc()

	order, err := r.orders.GetOrderByReference(ctx, reference)
	if err != nil {
		if errors.Is(err, apperrors.ErrOrderNotFound) {
			util.ReconciliationsFailed.WithLabelValues("not_found").Inc()
			return nil, err
		}
		util.ReconciliationsFailed.WithLabelValues("store_error").Inc()
		return nil, apperrors.Internal(err, "loading order by reference")
	}

	if order.PaymentStatus == models.PaymentStatusPaid {
		r.logger.Info("Order already paid, reconciliation is a no-op",
			zap.String("reference", reference),
			zap.Int64("order_id", order.ID))
		return order, nil
	}

	start := time.Now()
	result, err := r.gateway.Verify(ctx, reference)
	util.GatewayVerifyLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		appErr := apperrors.FromError(err)
		switch appErr.Code {
		case apperrors.CodeGatewayUnavailable:
			util.ReconciliationsFailed.WithLabelValues("gateway_unavailable").Inc()
		case apperrors.CodeGatewayRejected:
			util.ReconciliationsFailed.WithLabelValues("gateway_rejected").Inc()
		default:
			util.ReconciliationsFailed.WithLabelValues("gateway_error").Inc()
		}
		return nil, err
	}

	paidAt := time.Now()
	if t, parseErr := time.Parse(time.RFC3339, result.PaidAt); parseErr == nil {
		paidAt = t
	}

	applied, err := r.orders.MarkOrderPaid(ctx, order.ID, paidAt, result.RawPayload)
	if err != nil {
		util.ReconciliationsFailed.WithLabelValues("store_error").Inc()
		return nil, apperrors.Internal(err, "marking order paid")
	}

	updated, err := r.orders.GetOrderByID(ctx, order.ID)
	if err != nil {
		return nil, apperrors.Internal(err, "reloading reconciled order")
	}

	if !applied {
		// a concurrent reconciliation won the compare-and-set
		r.logger.Info("Concurrent reconciliation already applied",
			zap.String("reference", reference),
			zap.Int64("order_id", order.ID))
		return updated, nil
	}

	util.ReconciliationsApplied.Inc()
	r.logger.Info("Order reconciled as paid",
		zap.String("reference", reference),
		zap.Int64("order_id", order.ID),
		zap.Float64("amount", result.Amount),
		zap.String("channel", result.Channel))

	event := &models.OrderPaidEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeOrderPaid,
			Timestamp: time.Now(),
		},
		OrderID:   updated.ID,
		Reference: updated.Reference,
		Amount:    updated.TotalAmount,
		PaidAt:    updated.PaidAt,
	}
	if err := r.publisher.PublishOrderPaid(ctx, event); err != nil {
		r.logger.Error("Failed to publish OrderPaid event", zap.Error(err))
	}

	return updated, nil
}

// InitiatePayment starts a gateway checkout session for an unpaid order
// and returns the authorization URL the customer is redirected to.
func (r *Reconciler) InitiatePayment(ctx context.Context, orderID int64) (*gateway.InitializeResult, error) {
	ctx, span := util.StartSpan(ctx, "Reconciler.InitiatePayment")
	defer span.End()

	order, err := r.orders.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if order.PaymentStatus == models.PaymentStatusPaid {
		return nil, apperrors.ErrInvalidInput.WithMessage("Order %s is already paid", order.Reference)
	}

	return r.gateway.Initialize(ctx, &gateway.InitializeRequest{
		Email:     order.CustomerEmail,
		Amount:    order.TotalAmount,
		Reference: order.Reference,
		Metadata:  map[string]string{"order_reference": order.Reference},
	})
}
