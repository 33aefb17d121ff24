package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// Order represents a customer order with its contact snapshot.
// Name and email are captured at order time and never refreshed from the
// customer profile.
type Order struct {
	ID             int64          `db:"id" json:"id"`
	Reference      string         `db:"reference" json:"reference"`
	CustomerID     *int64         `db:"customer_id" json:"customer_id,omitempty"`
	CustomerName   string         `db:"customer_name" json:"customer_name"`
	CustomerEmail  string         `db:"customer_email" json:"customer_email"`
	Status         string         `db:"status" json:"status"`
	PaymentStatus  string         `db:"payment_status" json:"payment_status"`
	TotalAmount    int64          `db:"total_amount" json:"total_amount"`
	TrackingNumber *string        `db:"tracking_number" json:"tracking_number,omitempty"`
	CourierInfo    *string        `db:"courier_info" json:"courier_info,omitempty"`
	GatewayPayload types.JSONText `db:"gateway_payload" json:"-"`
	PaidAt         *time.Time     `db:"paid_at" json:"paid_at,omitempty"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at" json:"updated_at"`
}

// OrderItem is a line item snapshot (name, price and image frozen at
// purchase time).
type OrderItem struct {
	ID          int64  `db:"id" json:"id"`
	OrderID     int64  `db:"order_id" json:"order_id"`
	ProductID   int64  `db:"product_id" json:"product_id"`
	ProductName string `db:"product_name" json:"product_name"`
	Quantity    int    `db:"quantity" json:"quantity"`
	UnitPrice   int64  `db:"unit_price" json:"unit_price"`
	ImageURL    string `db:"image_url" json:"image_url"`
}

// ReviewRequest records that a customer is invited to review one product
// from one delivered order. Unique on (order_id, product_id).
type ReviewRequest struct {
	ID            int64     `db:"id" json:"id"`
	OrderID       int64     `db:"order_id" json:"order_id"`
	ProductID     int64     `db:"product_id" json:"product_id"`
	CustomerID    *int64    `db:"customer_id" json:"customer_id,omitempty"`
	CustomerEmail string    `db:"customer_email" json:"customer_email"`
	Completed     bool      `db:"completed" json:"completed"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// Review is a customer's rating for one product from one order.
// Unique on (order_id, product_id).
type Review struct {
	ID               int64     `db:"id" json:"id"`
	OrderID          int64     `db:"order_id" json:"order_id"`
	ProductID        int64     `db:"product_id" json:"product_id"`
	CustomerName     string    `db:"customer_name" json:"customer_name"`
	CustomerEmail    string    `db:"customer_email" json:"-"`
	Rating           int       `db:"rating" json:"rating"`
	Title            string    `db:"title" json:"title,omitempty"`
	Comment          string    `db:"comment" json:"comment,omitempty"`
	Status           string    `db:"status" json:"status"`
	VerifiedPurchase bool      `db:"verified_purchase" json:"verified_purchase"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`

	Images []ReviewImage `db:"-" json:"images,omitempty"`
}

// ReviewImage is an image attached to a review (at most 5 per review).
type ReviewImage struct {
	ID       int64  `db:"id" json:"id"`
	ReviewID int64  `db:"review_id" json:"review_id"`
	URL      string `db:"url" json:"url"`
}

// ScheduledTask is a durable unit of deferred work executed by the
// scheduler worker. Unique on (kind, order_id) so the same order can
// schedule a given kind at most once.
type ScheduledTask struct {
	ID        int64          `db:"id" json:"id"`
	Kind      string         `db:"kind" json:"kind"`
	OrderID   int64          `db:"order_id" json:"order_id"`
	Status    string         `db:"status" json:"status"`
	DueAt     time.Time      `db:"due_at" json:"due_at"`
	ClaimedAt *time.Time     `db:"claimed_at" json:"claimed_at,omitempty"`
	Attempts  int            `db:"attempts" json:"attempts"`
	Payload   types.JSONText `db:"payload" json:"payload"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt time.Time      `db:"updated_at" json:"updated_at"`
}

// Order statuses
const (
	OrderStatusPending    = "pending"
	OrderStatusConfirmed  = "confirmed"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
)

// Payment statuses
const (
	PaymentStatusUnpaid = "unpaid"
	PaymentStatusPaid   = "paid"
)

// Review statuses
const (
	ReviewStatusPending  = "pending"
	ReviewStatusApproved = "approved"
	ReviewStatusRejected = "rejected"
)

// Scheduled task kinds and statuses
const (
	TaskKindReviewRequestEmail = "review_request_email"

	TaskStatusPending    = "pending"
	TaskStatusProcessing = "processing"
	TaskStatusSent       = "sent"
	TaskStatusFailed     = "failed"
)

// ReviewEmailPayload is the stored payload of a deferred review-request
// email task.
type ReviewEmailPayload struct {
	OrderID       int64             `json:"order_id"`
	Reference     string            `json:"reference"`
	CustomerName  string            `json:"customer_name"`
	CustomerEmail string            `json:"customer_email"`
	Products      []ReviewedProduct `json:"products"`
}

// ReviewedProduct identifies one product listed in a review-request email.
type ReviewedProduct struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	ImageURL  string `json:"image_url"`
}
