package mailer

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-service/internal/models"
)

func TestShippingNoticeRendersItemsAndTotal(t *testing.T) {
	sender, err := NewSMTPSender("localhost", 587, "", "", "shop@example.com")
	require.NoError(t, err)

	var body bytes.Buffer
	err = sender.templates.ExecuteTemplate(&body, "shipping_notice", &ShippingNotice{
		Recipient:    "ada@example.com",
		CustomerName: "Ada",
		Reference:    "FS-m1",
		Items: []models.OrderItem{
			{ProductName: "Mug", Quantity: 2, UnitPrice: 250000},
			{ProductName: "Poster", Quantity: 1, UnitPrice: 120000},
		},
		TotalAmount:    620000,
		TrackingNumber: "TRK-42",
		CourierInfo:    "GIG Logistics",
	})
	require.NoError(t, err)

	rendered := body.String()
	assert.Contains(t, rendered, "Ada")
	assert.Contains(t, rendered, "FS-m1")
	assert.Contains(t, rendered, "Mug")
	assert.Contains(t, rendered, "x2")
	assert.Contains(t, rendered, "2500.00")
	assert.Contains(t, rendered, "6200.00")
	assert.Contains(t, rendered, "TRK-42")
	assert.Contains(t, rendered, "GIG Logistics")
}

func TestReviewRequestRendersProducts(t *testing.T) {
	sender, err := NewSMTPSender("localhost", 587, "", "", "shop@example.com")
	require.NoError(t, err)

	var body bytes.Buffer
	err = sender.templates.ExecuteTemplate(&body, "review_request", &ReviewRequestEmail{
		Recipient:    "ada@example.com",
		CustomerName: "Ada",
		Reference:    "FS-m2",
		Products: []models.ReviewedProduct{
			{ProductID: 5, Name: "Mug"},
			{ProductID: 7, Name: "Poster"},
		},
	})
	require.NoError(t, err)

	rendered := body.String()
	assert.Contains(t, rendered, "FS-m2")
	assert.Contains(t, rendered, "Mug")
	assert.Contains(t, rendered, "Poster")
}
