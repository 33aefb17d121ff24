package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"storefront-service/internal/apperrors"
	"storefront-service/internal/gateway"
	"storefront-service/internal/mailer"
	"storefront-service/internal/models"
)

type fakeOrderStore struct {
	orders   map[int64]*models.Order
	items    map[int64][]models.OrderItem
	itemsErr error
	afterGet func() // runs after each GetOrderByID, for interleaving writes
}

func newFakeOrderStore(orders ...*models.Order) *fakeOrderStore {
	s := &fakeOrderStore{
		orders: make(map[int64]*models.Order),
		items:  make(map[int64][]models.OrderItem),
	}
	for _, o := range orders {
		s.orders[o.ID] = o
	}
	return s
}

func (s *fakeOrderStore) GetOrderByID(_ context.Context, id int64) (*models.Order, error) {
	order, ok := s.orders[id]
	if !ok {
		return nil, apperrors.ErrOrderNotFound
	}
	copied := *order
	if s.afterGet != nil {
		s.afterGet()
	}
	return &copied, nil
}

func (s *fakeOrderStore) GetOrderByReference(_ context.Context, reference string) (*models.Order, error) {
	for _, order := range s.orders {
		if order.Reference == reference {
			copied := *order
			return &copied, nil
		}
	}
	return nil, apperrors.ErrOrderNotFound
}

func (s *fakeOrderStore) GetOrderItems(_ context.Context, orderID int64) ([]models.OrderItem, error) {
	if s.itemsErr != nil {
		return nil, s.itemsErr
	}
	return s.items[orderID], nil
}

func (s *fakeOrderStore) MarkOrderPaid(_ context.Context, orderID int64, paidAt time.Time, payload []byte) (bool, error) {
	order, ok := s.orders[orderID]
	if !ok {
		return false, apperrors.ErrOrderNotFound
	}
	if order.PaymentStatus == models.PaymentStatusPaid {
		return false, nil
	}
	order.PaymentStatus = models.PaymentStatusPaid
	order.Status = models.OrderStatusConfirmed
	order.PaidAt = &paidAt
	order.GatewayPayload = payload
	order.UpdatedAt = time.Now()
	return true, nil
}

func (s *fakeOrderStore) UpdateOrderStatus(_ context.Context, orderID int64, status, previousStatus string, trackingNumber, courierInfo *string) (*models.Order, bool, error) {
	order, ok := s.orders[orderID]
	if !ok || order.Status != previousStatus {
		return nil, false, nil
	}
	order.Status = status
	if trackingNumber != nil {
		order.TrackingNumber = trackingNumber
	}
	if courierInfo != nil {
		order.CourierInfo = courierInfo
	}
	order.UpdatedAt = time.Now()
	copied := *order
	return &copied, true, nil
}

type pairKey struct {
	orderID, productID int64
}

type fakeReviewStore struct {
	requests     map[pairKey]*models.ReviewRequest
	reviews      map[pairKey]*models.Review
	byID         map[int64]*models.Review
	nextID       int64
	requestErrOn map[int64]error // keyed by product id
	completeErr  error
}

func newFakeReviewStore() *fakeReviewStore {
	return &fakeReviewStore{
		requests:     make(map[pairKey]*models.ReviewRequest),
		reviews:      make(map[pairKey]*models.Review),
		byID:         make(map[int64]*models.Review),
		requestErrOn: make(map[int64]error),
	}
}

func (s *fakeReviewStore) CreateReviewRequest(_ context.Context, req *models.ReviewRequest) (bool, error) {
	if err := s.requestErrOn[req.ProductID]; err != nil {
		return false, err
	}
	key := pairKey{req.OrderID, req.ProductID}
	if _, ok := s.requests[key]; ok {
		return false, nil
	}
	s.requests[key] = req
	return true, nil
}

func (s *fakeReviewStore) CompleteReviewRequest(_ context.Context, orderID, productID int64) error {
	if s.completeErr != nil {
		return s.completeErr
	}
	if req, ok := s.requests[pairKey{orderID, productID}]; ok {
		req.Completed = true
	}
	return nil
}

func (s *fakeReviewStore) CreateReview(_ context.Context, review *models.Review) error {
	key := pairKey{review.OrderID, review.ProductID}
	if _, ok := s.reviews[key]; ok {
		return apperrors.ErrDuplicateReview
	}
	s.nextID++
	review.ID = s.nextID
	review.CreatedAt = time.Now()
	review.UpdatedAt = review.CreatedAt
	s.reviews[key] = review
	s.byID[review.ID] = review
	return nil
}

func (s *fakeReviewStore) ListApprovedReviews(_ context.Context, productID int64) ([]models.Review, error) {
	var out []models.Review
	for _, review := range s.byID {
		if review.ProductID == productID && review.Status == models.ReviewStatusApproved {
			out = append(out, *review)
		}
	}
	return out, nil
}

func (s *fakeReviewStore) GetReviewByID(_ context.Context, id int64) (*models.Review, error) {
	review, ok := s.byID[id]
	if !ok {
		return nil, apperrors.ErrReviewNotFound
	}
	copied := *review
	return &copied, nil
}

func (s *fakeReviewStore) UpdateReviewStatus(_ context.Context, reviewID int64, status string) (*models.Review, error) {
	review, ok := s.byID[reviewID]
	if !ok {
		return nil, apperrors.ErrReviewNotFound
	}
	review.Status = status
	copied := *review
	return &copied, nil
}

func (s *fakeReviewStore) DeleteReview(_ context.Context, reviewID int64) error {
	review, ok := s.byID[reviewID]
	if !ok {
		return apperrors.ErrReviewNotFound
	}
	delete(s.byID, reviewID)
	delete(s.reviews, pairKey{review.OrderID, review.ProductID})
	return nil
}

type fakeTaskScheduler struct {
	tasks       []*models.ScheduledTask
	scheduleErr error
}

func (s *fakeTaskScheduler) ScheduleTask(_ context.Context, task *models.ScheduledTask) (bool, error) {
	if s.scheduleErr != nil {
		return false, s.scheduleErr
	}
	for _, existing := range s.tasks {
		if existing.Kind == task.Kind && existing.OrderID == task.OrderID {
			return false, nil
		}
	}
	s.tasks = append(s.tasks, task)
	return true, nil
}

type fakeMailer struct {
	shippingNotices []*mailer.ShippingNotice
	reviewEmails    []*mailer.ReviewRequestEmail
	shippingErr     error
	reviewErr       error
}

func (m *fakeMailer) SendShippingNotice(notice *mailer.ShippingNotice) error {
	if m.shippingErr != nil {
		return m.shippingErr
	}
	m.shippingNotices = append(m.shippingNotices, notice)
	return nil
}

func (m *fakeMailer) SendReviewRequest(request *mailer.ReviewRequestEmail) error {
	if m.reviewErr != nil {
		return m.reviewErr
	}
	m.reviewEmails = append(m.reviewEmails, request)
	return nil
}

type fakePublisher struct {
	paidEvents   []*models.OrderPaidEvent
	statusEvents []*models.OrderStatusChangedEvent
	reviewEvents []*models.ReviewSubmittedEvent
	publishErr   error
}

func (p *fakePublisher) PublishOrderPaid(_ context.Context, event *models.OrderPaidEvent) error {
	if p.publishErr != nil {
		return p.publishErr
	}
	p.paidEvents = append(p.paidEvents, event)
	return nil
}

func (p *fakePublisher) PublishOrderStatusChanged(_ context.Context, event *models.OrderStatusChangedEvent) error {
	if p.publishErr != nil {
		return p.publishErr
	}
	p.statusEvents = append(p.statusEvents, event)
	return nil
}

func (p *fakePublisher) PublishReviewSubmitted(_ context.Context, event *models.ReviewSubmittedEvent) error {
	if p.publishErr != nil {
		return p.publishErr
	}
	p.reviewEvents = append(p.reviewEvents, event)
	return nil
}

type fakeStatsCache struct {
	entries map[int64][]byte
	sets    int
	gets    int
}

func newFakeStatsCache() *fakeStatsCache {
	return &fakeStatsCache{entries: make(map[int64][]byte)}
}

func (c *fakeStatsCache) GetReviewStats(_ context.Context, productID int64, dest interface{}) (bool, error) {
	c.gets++
	raw, ok := c.entries[productID]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (c *fakeStatsCache) SetReviewStats(_ context.Context, productID int64, stats interface{}) error {
	c.sets++
	raw, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	c.entries[productID] = raw
	return nil
}

func (c *fakeStatsCache) InvalidateReviewStats(_ context.Context, productID int64) error {
	delete(c.entries, productID)
	return nil
}

type fakeGateway struct {
	verifyResult *gateway.VerifyResult
	verifyErr    error
	verifyCalls  int
	initResult   *gateway.InitializeResult
	initErr      error
}

func (g *fakeGateway) Verify(_ context.Context, reference string) (*gateway.VerifyResult, error) {
	g.verifyCalls++
	if g.verifyErr != nil {
		return nil, g.verifyErr
	}
	if g.verifyResult == nil {
		return nil, fmt.Errorf("no verify result configured for %s", reference)
	}
	return g.verifyResult, nil
}

func (g *fakeGateway) Initialize(_ context.Context, _ *gateway.InitializeRequest) (*gateway.InitializeResult, error) {
	if g.initErr != nil {
		return nil, g.initErr
	}
	return g.initResult, nil
}
