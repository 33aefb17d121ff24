package mailer

import (
	"bytes"
	"fmt"
	"html/template"

	"gopkg.in/gomail.v2"

	"storefront-service/internal/models"
)

// Sender delivers transactional mail. Callers treat sends as
// fire-and-forget: a failed send is logged by the caller, never allowed to
// fail the state change that triggered it.
type Sender interface {
	SendShippingNotice(notice *ShippingNotice) error
	SendReviewRequest(request *ReviewRequestEmail) error
}

// ShippingNotice is the payload of a shipment confirmation email.
type ShippingNotice struct {
	Recipient      string
	CustomerName   string
	Reference      string
	Items          []models.OrderItem
	TotalAmount    int64
	TrackingNumber string
	CourierInfo    string
}

// ReviewRequestEmail invites a customer to review the products of a
// delivered order.
type ReviewRequestEmail struct {
	Recipient    string
	CustomerName string
	Reference    string
	Products     []models.ReviewedProduct
}

// SMTPSender sends mail over SMTP.
type SMTPSender struct {
	dialer    *gomail.Dialer
	from      string
	templates *template.Template
}

// NewSMTPSender creates an SMTP mail sender
func NewSMTPSender(host string, port int, username, password, from string) (*SMTPSender, error) {
	tmpl, err := template.New("mailer").Funcs(template.FuncMap{
		// amounts are stored in minor currency units
		"money": func(minor int64) string {
			return fmt.Sprintf("%.2f", float64(minor)/100)
		},
	}).Parse(mailTemplates)
	if err != nil {
		return nil, fmt.Errorf("failed to parse mail templates: %w", err)
	}

	return &SMTPSender{
		dialer:    gomail.NewDialer(host, port, username, password),
		from:      from,
		templates: tmpl,
	}, nil
}

// SendShippingNotice emails the customer that their order is on the way.
func (s *SMTPSender) SendShippingNotice(notice *ShippingNotice) error {
	subject := fmt.Sprintf("Your order %s has shipped", notice.Reference)
	return s.send(notice.Recipient, subject, "shipping_notice", notice)
}

// SendReviewRequest emails the customer asking for reviews of the products
// in a delivered order.
func (s *SMTPSender) SendReviewRequest(request *ReviewRequestEmail) error {
	subject := fmt.Sprintf("How was your order %s?", request.Reference)
	return s.send(request.Recipient, subject, "review_request", request)
}

func (s *SMTPSender) send(to, subject, templateName string, data interface{}) error {
	var body bytes.Buffer
	if err := s.templates.ExecuteTemplate(&body, templateName, data); err != nil {
		return fmt.Errorf("failed to render %s template: %w", templateName, err)
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", s.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body.String())

	if err := s.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send %s email: %w", templateName, err)
	}
	return nil
}
