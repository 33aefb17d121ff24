package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"storefront-service/internal/apperrors"
	"storefront-service/internal/models"
	"storefront-service/internal/util"
)

// transitionStatuses is the set of statuses an admin may move an order to.
// Any member is reachable from any other; side effects key on the
// (previous, new) pair in the dispatcher, not here.
var transitionStatuses = map[string]bool{
	models.OrderStatusPending:    true,
	models.OrderStatusProcessing: true,
	models.OrderStatusShipped:    true,
	models.OrderStatusDelivered:  true,
	models.OrderStatusCancelled:  true,
}

// TransitionService validates and applies order status changes, then hands
// the (previous, new) pair to the post-purchase dispatcher.
type TransitionService struct {
	orders     OrderStore
	dispatcher *Dispatcher
	publisher  Publisher
	logger     *zap.Logger
}

// NewTransitionService creates a status transition service
func NewTransitionService(orders OrderStore, dispatcher *Dispatcher, publisher Publisher) *TransitionService {
	return &TransitionService{
		orders:     orders,
		dispatcher: dispatcher,
		publisher:  publisher,
		logger:     util.GetLogger(),
	}
}

// Transition moves an order to newStatus, persisting tracking metadata
// when supplied. The previous status is read before the write and guards
// it: the update is a compare-and-set on that status, so of two racing
// identical transitions only the winner dispatches side effects. Effect
// failures never fail the committed transition.
func (s *TransitionService) Transition(ctx context.Context, orderID int64, newStatus string, trackingNumber, courierInfo *string) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "TransitionService.Transition")
	defer span.End()

	if !transitionStatuses[newStatus] {
		return nil, apperrors.ErrInvalidStatus.WithMessage("Unknown order status %q", newStatus)
	}

	previous, err := s.orders.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	updated, applied, err := s.orders.UpdateOrderStatus(ctx, orderID, newStatus, previous.Status, trackingNumber, courierInfo)
	if err != nil {
		return nil, apperrors.Internal(err, "updating order status")
	}

	if !applied {
		// a concurrent transition won the compare-and-set; its effects
		// already fired, so this request changes nothing
		current, err := s.orders.GetOrderByID(ctx, orderID)
		if err != nil {
			return nil, err
		}
		s.logger.Info("Concurrent transition already applied",
			zap.Int64("order_id", orderID),
			zap.String("read_previous", previous.Status),
			zap.String("current", current.Status))
		return current, nil
	}

	util.TransitionsTotal.WithLabelValues(newStatus).Inc()
	s.logger.Info("Order status transition committed",
		zap.Int64("order_id", orderID),
		zap.String("previous", previous.Status),
		zap.String("new", newStatus))

	event := &models.OrderStatusChangedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeOrderStatusChanged,
			Timestamp: time.Now(),
		},
		OrderID:        updated.ID,
		Reference:      updated.Reference,
		PreviousStatus: previous.Status,
		NewStatus:      updated.Status,
	}
	if err := s.publisher.PublishOrderStatusChanged(ctx, event); err != nil {
		s.logger.Error("Failed to publish OrderStatusChanged event", zap.Error(err))
	}

	s.dispatcher.Dispatch(ctx, previous.Status, updated)

	return updated, nil
}
