package service

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"storefront-service/internal/mailer"
	"storefront-service/internal/models"
	"storefront-service/internal/util"
)

// edgeEffect runs one side effect of a status transition. Effects are
// best-effort: they log failures and never propagate them, because the
// transition that triggered them has already committed.
type edgeEffect func(ctx context.Context, order *models.Order)

// Dispatcher decides which post-purchase side effects fire for a committed
// status transition. Effects are keyed on the (previous, new) pair, so an
// idempotent re-save of the same status fires nothing.
type Dispatcher struct {
	orders      OrderStore
	reviews     ReviewStore
	tasks       TaskScheduler
	mailer      mailer.Sender
	logger      *zap.Logger
	reviewDelay time.Duration

	effects map[string][]edgeEffect
}

// NewDispatcher creates a post-purchase workflow dispatcher
func NewDispatcher(orders OrderStore, reviews ReviewStore, tasks TaskScheduler, sender mailer.Sender, reviewDelay time.Duration) *Dispatcher {
	d := &Dispatcher{
		orders:      orders,
		reviews:     reviews,
		tasks:       tasks,
		mailer:      sender,
		logger:      util.GetLogger(),
		reviewDelay: reviewDelay,
	}

	d.effects = map[string][]edgeEffect{
		models.OrderStatusShipped:   {d.sendShippingNotice},
		models.OrderStatusDelivered: {d.seedReviewRequests, d.scheduleReviewEmail},
	}

	return d
}

// Dispatch fires the effects registered for entering order.Status from
// previousStatus. Re-entering the current status is a no-op.
func (d *Dispatcher) Dispatch(ctx context.Context, previousStatus string, order *models.Order) {
	if previousStatus == order.Status {
		return
	}

	for _, effect := range d.effects[order.Status] {
		effect(ctx, order)
	}
}

// sendShippingNotice emails the shipment confirmation, provided tracking
// details are present on the updated order.
func (d *Dispatcher) sendShippingNotice(ctx context.Context, order *models.Order) {
	if order.TrackingNumber == nil || *order.TrackingNumber == "" ||
		order.CourierInfo == nil || *order.CourierInfo == "" {
		d.logger.Warn("Skipping shipping notice, tracking details missing",
			zap.Int64("order_id", order.ID))
		return
	}

	items, err := d.orders.GetOrderItems(ctx, order.ID)
	if err != nil {
		d.logger.Error("Failed to load items for shipping notice",
			zap.Int64("order_id", order.ID), zap.Error(err))
		return
	}

	notice := &mailer.ShippingNotice{
		Recipient:      order.CustomerEmail,
		CustomerName:   order.CustomerName,
		Reference:      order.Reference,
		Items:          items,
		TotalAmount:    order.TotalAmount,
		TrackingNumber: *order.TrackingNumber,
		CourierInfo:    *order.CourierInfo,
	}

	if err := d.mailer.SendShippingNotice(notice); err != nil {
		d.logger.Error("Failed to send shipping notice",
			zap.Int64("order_id", order.ID), zap.Error(err))
		return
	}

	util.ShippingNoticesSent.Inc()
	d.logger.Info("Shipping notice sent",
		zap.Int64("order_id", order.ID),
		zap.String("tracking_number", *order.TrackingNumber))
}

// seedReviewRequests upserts one ReviewRequest per distinct product in the
// order. Duplicates are swallowed by the unique constraint; a failure on
// one product does not block the others.
func (d *Dispatcher) seedReviewRequests(ctx context.Context, order *models.Order) {
	items, err := d.orders.GetOrderItems(ctx, order.ID)
	if err != nil {
		d.logger.Error("Failed to load items for review requests",
			zap.Int64("order_id", order.ID), zap.Error(err))
		return
	}

	for _, product := range distinctProducts(items) {
		created, err := d.reviews.CreateReviewRequest(ctx, &models.ReviewRequest{
			OrderID:       order.ID,
			ProductID:     product.ProductID,
			CustomerID:    order.CustomerID,
			CustomerEmail: order.CustomerEmail,
		})
		if err != nil {
			d.logger.Error("Failed to create review request",
				zap.Int64("order_id", order.ID),
				zap.Int64("product_id", product.ProductID),
				zap.Error(err))
			continue
		}
		if created {
			util.ReviewRequestsCreated.Inc()
		}
	}
}

// scheduleReviewEmail persists one deferred review-request email due after
// the configured delay. The (kind, order_id) uniqueness in the task store
// guarantees at most one email per order no matter how many Delivered
// commits race.
func (d *Dispatcher) scheduleReviewEmail(ctx context.Context, order *models.Order) {
	items, err := d.orders.GetOrderItems(ctx, order.ID)
	if err != nil {
		d.logger.Error("Failed to load items for review email",
			zap.Int64("order_id", order.ID), zap.Error(err))
		return
	}

	payload, err := json.Marshal(&models.ReviewEmailPayload{
		OrderID:       order.ID,
		Reference:     order.Reference,
		CustomerName:  order.CustomerName,
		CustomerEmail: order.CustomerEmail,
		Products:      distinctProducts(items),
	})
	if err != nil {
		d.logger.Error("Failed to encode review email payload",
			zap.Int64("order_id", order.ID), zap.Error(err))
		return
	}

	scheduled, err := d.tasks.ScheduleTask(ctx, &models.ScheduledTask{
		Kind:    models.TaskKindReviewRequestEmail,
		OrderID: order.ID,
		DueAt:   time.Now().Add(d.reviewDelay),
		Payload: payload,
	})
	if err != nil {
		d.logger.Error("Failed to schedule review email",
			zap.Int64("order_id", order.ID), zap.Error(err))
		return
	}

	if scheduled {
		util.ReviewEmailsScheduled.Inc()
		d.logger.Info("Review email scheduled",
			zap.Int64("order_id", order.ID),
			zap.Duration("delay", d.reviewDelay))
	}
}

func distinctProducts(items []models.OrderItem) []models.ReviewedProduct {
	seen := make(map[int64]bool, len(items))
	products := make([]models.ReviewedProduct, 0, len(items))
	for _, item := range items {
		if seen[item.ProductID] {
			continue
		}
		seen[item.ProductID] = true
		products = append(products, models.ReviewedProduct{
			ProductID: item.ProductID,
			Name:      item.ProductName,
			ImageURL:  item.ImageURL,
		})
	}
	return products
}
