package models

import "time"

// Event types
const (
	EventTypeOrderPaid          = "ORDER_PAID"
	EventTypeOrderStatusChanged = "ORDER_STATUS_CHANGED"
	EventTypeReviewSubmitted    = "REVIEW_SUBMITTED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// OrderPaidEvent published when a reconciliation confirms payment
type OrderPaidEvent struct {
	BaseEvent
	OrderID   int64      `json:"order_id"`
	Reference string     `json:"reference"`
	Amount    int64      `json:"amount"`
	PaidAt    *time.Time `json:"paid_at,omitempty"`
}

// OrderStatusChangedEvent published for every committed status transition
type OrderStatusChangedEvent struct {
	BaseEvent
	OrderID        int64  `json:"order_id"`
	Reference      string `json:"reference"`
	PreviousStatus string `json:"previous_status"`
	NewStatus      string `json:"new_status"`
}

// ReviewSubmittedEvent published when a customer review is accepted
type ReviewSubmittedEvent struct {
	BaseEvent
	ReviewID  int64 `json:"review_id"`
	OrderID   int64 `json:"order_id"`
	ProductID int64 `json:"product_id"`
	Rating    int   `json:"rating"`
}
