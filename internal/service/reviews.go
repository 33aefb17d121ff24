package service

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"storefront-service/internal/apperrors"
	"storefront-service/internal/models"
	"storefront-service/internal/util"
)

const maxReviewImages = 5

// ReviewService handles customer review submission, listing and
// moderation.
type ReviewService struct {
	orders    OrderStore
	reviews   ReviewStore
	cache     StatsCache
	publisher Publisher
	logger    *zap.Logger
}

// NewReviewService creates a review service
func NewReviewService(orders OrderStore, reviews ReviewStore, cache StatsCache, publisher Publisher) *ReviewService {
	return &ReviewService{
		orders:    orders,
		reviews:   reviews,
		cache:     cache,
		publisher: publisher,
		logger:    util.GetLogger(),
	}
}

// SubmitReviewRequest carries a customer review submission.
type SubmitReviewRequest struct {
	OrderID       int64
	ProductID     int64
	CustomerName  string
	CustomerEmail string
	Rating        int
	Title         string
	Comment       string
	ImageURLs     []string
}

// RatingSummary aggregates approved reviews for one product. Breakdown
// always carries all five star keys, zero-filled.
type RatingSummary struct {
	Count     int         `json:"count"`
	Average   float64     `json:"average"`
	Breakdown map[int]int `json:"breakdown"`
}

// ProductReviews is the listing payload for one product.
type ProductReviews struct {
	Reviews []models.Review `json:"reviews"`
	Stats   RatingSummary   `json:"stats"`
}

// SubmitReview validates and persists a review for a delivered order.
// Eligibility: the order exists, is delivered, and the submitted email
// matches the contact snapshot captured at order time. Uniqueness per
// (order, product) is enforced by the store's constraint, not a prior
// read.
func (s *ReviewService) SubmitReview(ctx context.Context, req *SubmitReviewRequest) (*models.Review, error) {
	ctx, span := util.StartSpan(ctx, "ReviewService.SubmitReview")
	defer span.End()

	if req.Rating < 1 || req.Rating > 5 {
		return nil, apperrors.ErrInvalidRating
	}
	if len(req.ImageURLs) > maxReviewImages {
		return nil, apperrors.ErrInvalidInput.WithMessage("At most %d images are allowed", maxReviewImages)
	}

	order, err := s.orders.GetOrderByID(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}

	if order.Status != models.OrderStatusDelivered {
		return nil, apperrors.ErrNotDelivered
	}
	if !strings.EqualFold(order.CustomerEmail, req.CustomerEmail) {
		return nil, apperrors.ErrNotOrderOwner
	}

	images := make([]models.ReviewImage, 0, len(req.ImageURLs))
	for _, url := range req.ImageURLs {
		images = append(images, models.ReviewImage{URL: url})
	}

	review := &models.Review{
		OrderID:          req.OrderID,
		ProductID:        req.ProductID,
		CustomerName:     req.CustomerName,
		CustomerEmail:    req.CustomerEmail,
		Rating:           req.Rating,
		Title:            req.Title,
		Comment:          req.Comment,
		Status:           models.ReviewStatusPending,
		VerifiedPurchase: true,
		Images:           images,
	}

	if err := s.reviews.CreateReview(ctx, review); err != nil {
		if appErr := apperrors.FromError(err); appErr.Code == apperrors.CodeConflict {
			return nil, err
		}
		return nil, apperrors.Internal(err, "persisting review")
	}

	util.ReviewsSubmittedTotal.Inc()

	// best effort: the submission stands even if the invitation record
	// cannot be marked
	if err := s.reviews.CompleteReviewRequest(ctx, req.OrderID, req.ProductID); err != nil {
		s.logger.Warn("Failed to mark review request completed",
			zap.Int64("order_id", req.OrderID),
			zap.Int64("product_id", req.ProductID),
			zap.Error(err))
	}

	event := &models.ReviewSubmittedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeReviewSubmitted,
			Timestamp: time.Now(),
		},
		ReviewID:  review.ID,
		OrderID:   review.OrderID,
		ProductID: review.ProductID,
		Rating:    review.Rating,
	}
	if err := s.publisher.PublishReviewSubmitted(ctx, event); err != nil {
		s.logger.Error("Failed to publish ReviewSubmitted event", zap.Error(err))
	}

	return review, nil
}

// ListProductReviews returns the approved reviews for a product, newest
// first, with the aggregate summary. The summary is served from the cache
// when warm; cache failures degrade to recomputation, never to an error.
func (s *ReviewService) ListProductReviews(ctx context.Context, productID int64) (*ProductReviews, error) {
	ctx, span := util.StartSpan(ctx, "ReviewService.ListProductReviews")
	defer span.End()

	reviews, err := s.reviews.ListApprovedReviews(ctx, productID)
	if err != nil {
		return nil, apperrors.Internal(err, "listing approved reviews")
	}

	var stats RatingSummary
	cached, err := s.cache.GetReviewStats(ctx, productID, &stats)
	if err != nil {
		s.logger.Warn("Review stats cache read failed",
			zap.Int64("product_id", productID), zap.Error(err))
		cached = false
	}

	if !cached {
		ratings := make([]int, len(reviews))
		for i, review := range reviews {
			ratings[i] = review.Rating
		}
		stats = BuildRatingSummary(ratings)

		if err := s.cache.SetReviewStats(ctx, productID, &stats); err != nil {
			s.logger.Warn("Review stats cache write failed",
				zap.Int64("product_id", productID), zap.Error(err))
		}
	}

	if reviews == nil {
		reviews = []models.Review{}
	}
	return &ProductReviews{Reviews: reviews, Stats: stats}, nil
}

// Moderate sets a review's status to approved, rejected or pending.
func (s *ReviewService) Moderate(ctx context.Context, reviewID int64, status string) (*models.Review, error) {
	ctx, span := util.StartSpan(ctx, "ReviewService.Moderate")
	defer span.End()

	switch status {
	case models.ReviewStatusApproved, models.ReviewStatusRejected, models.ReviewStatusPending:
	default:
		return nil, apperrors.ErrInvalidInput.WithMessage("Unknown review status %q", status)
	}

	review, err := s.reviews.UpdateReviewStatus(ctx, reviewID, status)
	if err != nil {
		if appErr := apperrors.FromError(err); appErr.Code == apperrors.CodeNotFound {
			return nil, err
		}
		return nil, apperrors.Internal(err, "updating review status")
	}

	util.ReviewsModeratedTotal.WithLabelValues(status).Inc()

	if err := s.cache.InvalidateReviewStats(ctx, review.ProductID); err != nil {
		s.logger.Warn("Failed to invalidate review stats cache",
			zap.Int64("product_id", review.ProductID), zap.Error(err))
	}

	return review, nil
}

// Delete removes a review entirely. Administrator action; reviews are
// never auto-deleted.
func (s *ReviewService) Delete(ctx context.Context, reviewID int64) error {
	ctx, span := util.StartSpan(ctx, "ReviewService.Delete")
	defer span.End()

	review, err := s.reviews.GetReviewByID(ctx, reviewID)
	if err != nil {
		return err
	}

	if err := s.reviews.DeleteReview(ctx, reviewID); err != nil {
		return apperrors.Internal(err, "deleting review")
	}

	if err := s.cache.InvalidateReviewStats(ctx, review.ProductID); err != nil {
		s.logger.Warn("Failed to invalidate review stats cache",
			zap.Int64("product_id", review.ProductID), zap.Error(err))
	}

	return nil
}

// BuildRatingSummary derives the aggregate for a set of ratings: count,
// mean rounded to one decimal, and a zero-filled per-star breakdown.
func BuildRatingSummary(ratings []int) RatingSummary {
	summary := RatingSummary{
		Breakdown: map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0},
	}

	var sum int
	for _, rating := range ratings {
		if rating < 1 || rating > 5 {
			continue
		}
		summary.Count++
		summary.Breakdown[rating]++
		sum += rating
	}

	if summary.Count > 0 {
		summary.Average = math.Round(float64(sum)/float64(summary.Count)*10) / 10
	}
	return summary
}
