package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"storefront-service/internal/apperrors"
	"storefront-service/internal/service"
	"storefront-service/internal/util"
)

// Handler contains HTTP handlers
type Handler struct {
	reconciler  *service.Reconciler
	transitions *service.TransitionService
	reviews     *service.ReviewService
	logger      *zap.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(reconciler *service.Reconciler, transitions *service.TransitionService, reviews *service.ReviewService) *Handler {
	return &Handler{
		reconciler:  reconciler,
		transitions: transitions,
		reviews:     reviews,
		logger:      util.GetLogger(),
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/payments/verify/:reference", h.verifyPayment)
		v1.POST("/orders/:id/pay", h.initiatePayment)
		v1.POST("/orders/:id/reviews", h.submitReview)
		v1.GET("/products/:id/reviews", h.listProductReviews)

		admin := v1.Group("/admin")
		{
			admin.PUT("/orders/:id/status", h.updateOrderStatus)
			admin.PATCH("/reviews/:id", h.moderateReview)
			admin.DELETE("/reviews/:id", h.deleteReview)
		}
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck handles readiness check requests
func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

// verifyPayment reconciles an order against the gateway by reference
func (h *Handler) verifyPayment(c *gin.Context) {
	reference := c.Param("reference")
	if reference == "" {
		h.respondError(c, apperrors.ErrInvalidInput.WithMessage("Missing transaction reference"))
		return
	}

	order, err := h.reconciler.Reconcile(c.Request.Context(), reference)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"order": order})
}

// initiatePayment starts a gateway checkout session for an order
func (h *Handler) initiatePayment(c *gin.Context) {
	orderID, ok := h.pathID(c)
	if !ok {
		return
	}

	result, err := h.reconciler.InitiatePayment(c.Request.Context(), orderID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"authorization_url": result.AuthorizationURL,
		"reference":         result.Reference,
	})
}

type updateStatusRequest struct {
	Status         string  `json:"status" binding:"required"`
	TrackingNumber *string `json:"tracking_number,omitempty"`
	CourierInfo    *string `json:"courier_info,omitempty"`
}

// updateOrderStatus applies an admin status transition
func (h *Handler) updateOrderStatus(c *gin.Context) {
	orderID, ok := h.pathID(c)
	if !ok {
		return
	}

	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, apperrors.Wrap(apperrors.ErrInvalidInput, err))
		return
	}

	order, err := h.transitions.Transition(c.Request.Context(), orderID, req.Status, req.TrackingNumber, req.CourierInfo)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"order": order})
}

type submitReviewRequest struct {
	ProductID     int64    `json:"product_id" binding:"required"`
	CustomerName  string   `json:"customer_name" binding:"required"`
	CustomerEmail string   `json:"customer_email" binding:"required,email"`
	Rating        int      `json:"rating" binding:"required"`
	Title         string   `json:"title,omitempty"`
	Comment       string   `json:"comment,omitempty"`
	Images        []string `json:"images,omitempty"`
}

// submitReview handles a customer review submission
func (h *Handler) submitReview(c *gin.Context) {
	orderID, ok := h.pathID(c)
	if !ok {
		return
	}

	var req submitReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, apperrors.Wrap(apperrors.ErrInvalidInput, err))
		return
	}

	review, err := h.reviews.SubmitReview(c.Request.Context(), &service.SubmitReviewRequest{
		OrderID:       orderID,
		ProductID:     req.ProductID,
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		Rating:        req.Rating,
		Title:         req.Title,
		Comment:       req.Comment,
		ImageURLs:     req.Images,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"review": review})
}

// listProductReviews returns approved reviews and aggregate stats
func (h *Handler) listProductReviews(c *gin.Context) {
	productID, ok := h.pathID(c)
	if !ok {
		return
	}

	result, err := h.reviews.ListProductReviews(c.Request.Context(), productID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

type moderateReviewRequest struct {
	Status string `json:"status" binding:"required"`
}

// moderateReview applies an admin moderation decision
func (h *Handler) moderateReview(c *gin.Context) {
	reviewID, ok := h.pathID(c)
	if !ok {
		return
	}

	var req moderateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, apperrors.Wrap(apperrors.ErrInvalidInput, err))
		return
	}

	review, err := h.reviews.Moderate(c.Request.Context(), reviewID, req.Status)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"review": review})
}

// deleteReview removes a review
func (h *Handler) deleteReview(c *gin.Context) {
	reviewID, ok := h.pathID(c)
	if !ok {
		return
	}

	if err := h.reviews.Delete(c.Request.Context(), reviewID); err != nil {
		h.respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		h.respondError(c, apperrors.ErrInvalidInput.WithMessage("Invalid id %q", c.Param("id")))
		return 0, false
	}
	return id, true
}

// respondError maps the error taxonomy onto HTTP. Internal failures are
// logged with their cause and reported with a generic message.
func (h *Handler) respondError(c *gin.Context, err error) {
	appErr := apperrors.FromError(err)
	if appErr.Code == apperrors.CodeInternal {
		h.logger.Error("Request failed",
			zap.String("path", c.FullPath()),
			zap.Error(appErr))
	}
	c.JSON(appErr.HTTPCode, gin.H{"error": appErr})
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
