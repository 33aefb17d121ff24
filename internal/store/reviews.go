package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"storefront-service/internal/apperrors"
	"storefront-service/internal/models"
)

// CreateReviewRequest inserts a review invitation for one (order, product)
// pair. The unique constraint on the pair makes the insert idempotent:
// a duplicate is reported as created=false, never as an error.
func (s *Store) CreateReviewRequest(ctx context.Context, req *models.ReviewRequest) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO review_requests (order_id, product_id, customer_id, customer_email)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (order_id, product_id) DO NOTHING`,
		req.OrderID, req.ProductID, req.CustomerID, req.CustomerEmail)
	if err != nil {
		return false, err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

// CompleteReviewRequest marks the invitation for an (order, product) pair
// as completed once a review lands.
func (s *Store) CompleteReviewRequest(ctx context.Context, orderID, productID int64) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE review_requests SET completed = TRUE WHERE order_id = $1 AND product_id = $2",
		orderID, productID)
	return err
}

// CreateReview inserts a review and its images. The unique constraint on
// (order_id, product_id) is the authoritative duplicate check; a violation
// surfaces as apperrors.ErrDuplicateReview.
func (s *Store) CreateReview(ctx context.Context, review *models.Review) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO reviews (order_id, product_id, customer_name, customer_email, rating, title, comment, status, verified_purchase)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at`

	err = tx.GetContext(ctx, review, query,
		review.OrderID, review.ProductID, review.CustomerName, review.CustomerEmail,
		review.Rating, review.Title, review.Comment, review.Status, review.VerifiedPurchase)
	if IsUniqueViolation(err) {
		return apperrors.ErrDuplicateReview
	}
	if err != nil {
		return fmt.Errorf("failed to insert review: %w", err)
	}

	for i := range review.Images {
		review.Images[i].ReviewID = review.ID
		if err := tx.GetContext(ctx, &review.Images[i].ID,
			"INSERT INTO review_images (review_id, url) VALUES ($1, $2) RETURNING id",
			review.ID, review.Images[i].URL); err != nil {
			return fmt.Errorf("failed to insert review image: %w", err)
		}
	}

	return tx.Commit()
}

// ListApprovedReviews retrieves approved reviews for a product,
// newest first, with images attached.
func (s *Store) ListApprovedReviews(ctx context.Context, productID int64) ([]models.Review, error) {
	var reviews []models.Review
	err := s.db.SelectContext(ctx, &reviews, `
		SELECT * FROM reviews
		WHERE product_id = $1 AND status = $2
		ORDER BY created_at DESC`,
		productID, models.ReviewStatusApproved)
	if err != nil {
		return nil, err
	}

	for i := range reviews {
		var images []models.ReviewImage
		if err := s.db.SelectContext(ctx, &images,
			"SELECT * FROM review_images WHERE review_id = $1 ORDER BY id", reviews[i].ID); err != nil {
			return nil, err
		}
		reviews[i].Images = images
	}

	return reviews, nil
}

// GetReviewByID retrieves a review by ID
func (s *Store) GetReviewByID(ctx context.Context, id int64) (*models.Review, error) {
	var review models.Review
	err := s.db.GetContext(ctx, &review, "SELECT * FROM reviews WHERE id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrReviewNotFound
	}
	if err != nil {
		return nil, err
	}
	return &review, nil
}

// UpdateReviewStatus sets a review's moderation status
func (s *Store) UpdateReviewStatus(ctx context.Context, reviewID int64, status string) (*models.Review, error) {
	var review models.Review
	err := s.db.GetContext(ctx, &review, `
		UPDATE reviews SET status = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING *`,
		status, reviewID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrReviewNotFound
	}
	if err != nil {
		return nil, err
	}
	return &review, nil
}

// DeleteReview removes a review and its dependent images.
func (s *Store) DeleteReview(ctx context.Context, reviewID int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM reviews WHERE id = $1", reviewID)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return apperrors.ErrReviewNotFound
	}
	return nil
}
