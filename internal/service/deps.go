package service

import (
	"context"
	"time"

	"storefront-service/internal/gateway"
	"storefront-service/internal/models"
)

// OrderStore is the order-record access the services need.
type OrderStore interface {
	GetOrderByID(ctx context.Context, id int64) (*models.Order, error)
	GetOrderByReference(ctx context.Context, reference string) (*models.Order, error)
	GetOrderItems(ctx context.Context, orderID int64) ([]models.OrderItem, error)
	MarkOrderPaid(ctx context.Context, orderID int64, paidAt time.Time, gatewayPayload []byte) (bool, error)
	UpdateOrderStatus(ctx context.Context, orderID int64, status, previousStatus string, trackingNumber, courierInfo *string) (*models.Order, bool, error)
}

// ReviewStore is the review/review-request access the services need.
type ReviewStore interface {
	CreateReviewRequest(ctx context.Context, req *models.ReviewRequest) (bool, error)
	CompleteReviewRequest(ctx context.Context, orderID, productID int64) error
	CreateReview(ctx context.Context, review *models.Review) error
	ListApprovedReviews(ctx context.Context, productID int64) ([]models.Review, error)
	GetReviewByID(ctx context.Context, id int64) (*models.Review, error)
	UpdateReviewStatus(ctx context.Context, reviewID int64, status string) (*models.Review, error)
	DeleteReview(ctx context.Context, reviewID int64) error
}

// TaskScheduler persists deferred work.
type TaskScheduler interface {
	ScheduleTask(ctx context.Context, task *models.ScheduledTask) (bool, error)
}

// PaymentGateway is the external payment provider contract.
type PaymentGateway interface {
	Initialize(ctx context.Context, req *gateway.InitializeRequest) (*gateway.InitializeResult, error)
	Verify(ctx context.Context, reference string) (*gateway.VerifyResult, error)
}

// Publisher emits lifecycle events for downstream consumers.
type Publisher interface {
	PublishOrderPaid(ctx context.Context, event *models.OrderPaidEvent) error
	PublishOrderStatusChanged(ctx context.Context, event *models.OrderStatusChangedEvent) error
	PublishReviewSubmitted(ctx context.Context, event *models.ReviewSubmittedEvent) error
}

// StatsCache caches per-product review aggregates.
type StatsCache interface {
	GetReviewStats(ctx context.Context, productID int64, dest interface{}) (bool, error)
	SetReviewStats(ctx context.Context, productID int64, stats interface{}) error
	InvalidateReviewStats(ctx context.Context, productID int64) error
}
