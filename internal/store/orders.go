package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"storefront-service/internal/apperrors"
	"storefront-service/internal/models"
)

// CreateOrder creates a new order with its line items in one transaction.
func (s *Store) CreateOrder(ctx context.Context, order *models.Order, items []models.OrderItem) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO orders (reference, customer_id, customer_name, customer_email, status, payment_status, total_amount)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`

	if err := tx.GetContext(ctx, order, query,
		order.Reference, order.CustomerID, order.CustomerName, order.CustomerEmail,
		order.Status, order.PaymentStatus, order.TotalAmount); err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}

	itemQuery := `
		INSERT INTO order_items (order_id, product_id, product_name, quantity, unit_price, image_url)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`

	for i := range items {
		items[i].OrderID = order.ID
		if err := tx.GetContext(ctx, &items[i].ID, itemQuery,
			order.ID, items[i].ProductID, items[i].ProductName,
			items[i].Quantity, items[i].UnitPrice, items[i].ImageURL); err != nil {
			return fmt.Errorf("failed to insert order item: %w", err)
		}
	}

	return tx.Commit()
}

// GetOrderByID retrieves an order by ID
func (s *Store) GetOrderByID(ctx context.Context, id int64) (*models.Order, error) {
	var order models.Order
	err := s.db.GetContext(ctx, &order, "SELECT * FROM orders WHERE id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// GetOrderByReference retrieves an order by its unique customer-facing reference
func (s *Store) GetOrderByReference(ctx context.Context, reference string) (*models.Order, error) {
	var order models.Order
	err := s.db.GetContext(ctx, &order, "SELECT * FROM orders WHERE reference = $1", reference)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// GetOrderItems retrieves all line items for an order
func (s *Store) GetOrderItems(ctx context.Context, orderID int64) ([]models.OrderItem, error) {
	var items []models.OrderItem
	err := s.db.SelectContext(ctx, &items,
		"SELECT * FROM order_items WHERE order_id = $1 ORDER BY id", orderID)
	return items, err
}

// MarkOrderPaid conditionally flips an unpaid order to paid/confirmed and
// stores the raw gateway payload for audit. The payment_status guard makes
// the write a compare-and-set: a concurrent duplicate reconciliation finds
// zero rows and reports applied=false.
func (s *Store) MarkOrderPaid(ctx context.Context, orderID int64, paidAt time.Time, gatewayPayload []byte) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE orders
		SET payment_status = $1, status = $2, paid_at = $3, gateway_payload = $4, updated_at = NOW()
		WHERE id = $5 AND payment_status = $6`,
		models.PaymentStatusPaid, models.OrderStatusConfirmed, paidAt, gatewayPayload,
		orderID, models.PaymentStatusUnpaid)
	if err != nil {
		return false, err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

// UpdateOrderStatus conditionally moves the order from previousStatus to
// status, stamping updated_at, and persists tracking metadata when
// supplied. The status guard makes the write a compare-and-set: a
// concurrent transition that committed first finds zero rows and reports
// applied=false, so its side effects fire exactly once. Tracking and
// courier are written independently of the status value.
func (s *Store) UpdateOrderStatus(ctx context.Context, orderID int64, status, previousStatus string, trackingNumber, courierInfo *string) (*models.Order, bool, error) {
	var order models.Order
	err := s.db.GetContext(ctx, &order, `
		UPDATE orders
		SET status = $1,
		    tracking_number = COALESCE($2, tracking_number),
		    courier_info = COALESCE($3, courier_info),
		    updated_at = NOW()
		WHERE id = $4 AND status = $5
		RETURNING *`,
		status, trackingNumber, courierInfo, orderID, previousStatus)
	if errors.Is(err, sql.ErrNoRows) {
		// either the order is gone or a concurrent transition won;
		// the caller re-reads to tell the two apart
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return &order, true, nil
}
