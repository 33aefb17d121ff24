package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ReconciliationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "payment_reconciliations_total",
		Help: "Total number of payment reconciliation attempts",
	})

	ReconciliationsApplied = promauto.NewCounter(prometheus.CounterOpts{
		Name: "payment_reconciliations_applied_total",
		Help: "Total number of reconciliations that marked an order paid",
	})

	ReconciliationsFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_reconciliations_failed_total",
		Help: "Total number of failed reconciliations",
	}, []string{"reason"})

	GatewayVerifyLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "gateway_verify_latency_seconds",
		Help:    "Latency of payment gateway verify calls",
		Buckets: prometheus.DefBuckets,
	})

	TransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "order_transitions_total",
		Help: "Total number of committed order status transitions",
	}, []string{"status"})

	ShippingNoticesSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shipping_notices_sent_total",
		Help: "Total number of shipping notice emails sent",
	})

	ReviewRequestsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "review_requests_created_total",
		Help: "Total number of review request records created",
	})

	ReviewEmailsScheduled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "review_emails_scheduled_total",
		Help: "Total number of deferred review emails scheduled",
	})

	ReviewEmailsSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "review_emails_sent_total",
		Help: "Total number of deferred review emails delivered",
	})

	ReviewEmailsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "review_emails_failed_total",
		Help: "Total number of deferred review email delivery failures",
	})

	ReviewsSubmittedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "reviews_submitted_total",
		Help: "Total number of customer reviews accepted",
	})

	ReviewsModeratedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reviews_moderated_total",
		Help: "Total number of review moderation decisions",
	}, []string{"status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
