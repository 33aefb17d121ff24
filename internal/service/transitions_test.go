package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-service/internal/apperrors"
	"storefront-service/internal/models"
)

func newTransitionFixture(order *models.Order) (*TransitionService, *fakeOrderStore, *fakeMailer, *fakeTaskScheduler, *fakePublisher) {
	orders := newFakeOrderStore(order)
	sent := &fakeMailer{}
	tasks := &fakeTaskScheduler{}
	publisher := &fakePublisher{}
	dispatcher := NewDispatcher(orders, newFakeReviewStore(), tasks, sent, 24*time.Hour)
	return NewTransitionService(orders, dispatcher, publisher), orders, sent, tasks, publisher
}

func TestTransitionRejectsUnknownStatus(t *testing.T) {
	svc, _, _, _, _ := newTransitionFixture(&models.Order{ID: 1, Status: models.OrderStatusPending})

	_, err := svc.Transition(context.Background(), 1, "misplaced", nil, nil)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeValidation, apperrors.FromError(err).Code)
}

func TestTransitionUnknownOrder(t *testing.T) {
	svc, _, _, _, _ := newTransitionFixture(&models.Order{ID: 1, Status: models.OrderStatusPending})

	_, err := svc.Transition(context.Background(), 99, models.OrderStatusShipped, nil, nil)
	assert.ErrorIs(t, err, apperrors.ErrOrderNotFound)
}

func TestTransitionPersistsTrackingMetadata(t *testing.T) {
	svc, orders, sent, _, publisher := newTransitionFixture(&models.Order{
		ID:            1,
		Reference:     "FS-t1",
		CustomerEmail: "ada@example.com",
		Status:        models.OrderStatusPending,
	})
	orders.items[1] = []models.OrderItem{{OrderID: 1, ProductID: 5, ProductName: "Mug"}}

	updated, err := svc.Transition(context.Background(), 1,
		models.OrderStatusShipped, strPtr("TRK-42"), strPtr("GIG Logistics"))
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusShipped, updated.Status)
	require.NotNil(t, updated.TrackingNumber)
	assert.Equal(t, "TRK-42", *updated.TrackingNumber)

	// SHIP effect fired once, with event published
	assert.Len(t, sent.shippingNotices, 1)
	require.Len(t, publisher.statusEvents, 1)
	assert.Equal(t, models.OrderStatusPending, publisher.statusEvents[0].PreviousStatus)
	assert.Equal(t, models.OrderStatusShipped, publisher.statusEvents[0].NewStatus)

	// tracking metadata persists even on a status the machine ignores
	updated, err = svc.Transition(context.Background(), 1,
		models.OrderStatusProcessing, strPtr("TRK-43"), nil)
	require.NoError(t, err)
	assert.Equal(t, "TRK-43", *updated.TrackingNumber)
	assert.Equal(t, "GIG Logistics", *updated.CourierInfo)
}

func TestTransitionLostRaceDispatchesNothing(t *testing.T) {
	svc, orders, sent, _, publisher := newTransitionFixture(&models.Order{
		ID:            1,
		Reference:     "FS-t3",
		CustomerEmail: "ada@example.com",
		Status:        models.OrderStatusPending,
	})
	orders.items[1] = []models.OrderItem{{OrderID: 1, ProductID: 5, ProductName: "Mug"}}

	// a concurrent identical transition commits between our read of the
	// previous status and our write
	raced := false
	orders.afterGet = func() {
		if !raced {
			raced = true
			orders.orders[1].Status = models.OrderStatusShipped
			orders.orders[1].TrackingNumber = strPtr("TRK-42")
			orders.orders[1].CourierInfo = strPtr("GIG Logistics")
		}
	}

	updated, err := svc.Transition(context.Background(), 1,
		models.OrderStatusShipped, strPtr("TRK-42"), strPtr("GIG Logistics"))
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusShipped, updated.Status)

	// losing the compare-and-set means the winner owns the side effects
	assert.Empty(t, sent.shippingNotices)
	assert.Empty(t, publisher.statusEvents)
}

func TestTransitionResaveDoesNotRefireEffects(t *testing.T) {
	svc, orders, sent, tasks, _ := newTransitionFixture(&models.Order{
		ID:            1,
		Reference:     "FS-t2",
		CustomerEmail: "ada@example.com",
		Status:        models.OrderStatusProcessing,
	})
	orders.items[1] = []models.OrderItem{{OrderID: 1, ProductID: 5, ProductName: "Mug"}}

	_, err := svc.Transition(context.Background(), 1, models.OrderStatusDelivered, nil, nil)
	require.NoError(t, err)
	assert.Len(t, tasks.tasks, 1)

	// re-saving Delivered commits the write but fires no new effects
	_, err = svc.Transition(context.Background(), 1, models.OrderStatusDelivered, nil, nil)
	require.NoError(t, err)
	assert.Len(t, tasks.tasks, 1)
	assert.Empty(t, sent.shippingNotices)
}
