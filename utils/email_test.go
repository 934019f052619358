package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-storefront/config"
	"go-storefront/models"
	"go-storefront/pricing"
)

type sentEmail struct {
	to, subject, body string
}

type recordingSender struct {
	sent []sentEmail
}

func (r *recordingSender) SendEmail(toEmail, subject, htmlContent string) error {
	r.sent = append(r.sent, sentEmail{toEmail, subject, htmlContent})
	return nil
}

func TestEmailService_OrderConfirmation(t *testing.T) {
	rec := &recordingSender{}
	es := NewEmailService(rec)

	order := models.Order{
		OrderNumber:    "ORD-20250301-ABCDEF12",
		Subtotal:       pricing.Cents(4000),
		ShippingAmount: pricing.Cents(999),
		TaxAmount:      pricing.Cents(320),
		TotalAmount:    pricing.Cents(5319),
		Items: []models.OrderItem{
			{ProductName: "Mug <Large>", Quantity: 2, TotalPrice: pricing.Cents(4000)},
		},
	}

	require.NoError(t, es.SendOrderConfirmationEmail("a@example.com", "Ann", order))
	require.Len(t, rec.sent, 1)

	msg := rec.sent[0]
	assert.Equal(t, "a@example.com", msg.to)
	assert.Equal(t, "Order Confirmation ORD-20250301-ABCDEF12", msg.subject)
	assert.Contains(t, msg.body, "2 x Mug &lt;Large&gt;: $40.00")
	assert.Contains(t, msg.body, "Total Amount: <strong>$53.19</strong>")
}

func TestEmailService_OrderStatus(t *testing.T) {
	rec := &recordingSender{}
	es := NewEmailService(rec)

	order := models.Order{OrderNumber: "ORD-1", Status: models.OrderShipped}
	require.NoError(t, es.SendOrderStatusEmail("a@example.com", "Ann", order))
	assert.Equal(t, "Order ORD-1 is shipped", rec.sent[0].subject)
}

func TestStripTags(t *testing.T) {
	assert.Equal(t, "Hi Ann &,\n\nBye", stripTags("<strong>Hi Ann &amp;,</strong><br><br>Bye"))
}

func TestNewEmailServiceFromConfig(t *testing.T) {
	es, err := NewEmailServiceFromConfig(&config.Config{})
	require.NoError(t, err)
	assert.IsType(t, LogSender{}, es.sender)

	_, err = NewEmailServiceFromConfig(&config.Config{EmailProvider: "postmark"})
	assert.Error(t, err)

	_, err = NewEmailServiceFromConfig(&config.Config{EmailProvider: "sendgrid"})
	assert.Error(t, err)

	es, err = NewEmailServiceFromConfig(&config.Config{EmailProvider: "sendgrid", SendGridAPIKey: "key", EmailSender: "shop@example.com"})
	require.NoError(t, err)
	assert.IsType(t, &SendGridSender{}, es.sender)
}

func TestPostmarkSender(t *testing.T) {
	var got map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "token", r.Header.Get("X-Postmark-Server-Token"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"To":"a@example.com","MessageID":"m-1","ErrorCode":0,"Message":"OK"}`))
	}))
	defer server.Close()

	sender := NewPostmarkSender("token", "shop@example.com")
	sender.client.BaseURL = server.URL

	require.NoError(t, sender.SendEmail("a@example.com", "Hello", "<strong>Hi</strong>"))
	assert.Equal(t, "shop@example.com", got["From"])
	assert.Equal(t, "a@example.com", got["To"])
	assert.Equal(t, "Hi", got["TextBody"])
}

func TestSendGridSender(t *testing.T) {
	var got map[string]any
	status := http.StatusAccepted
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(status)
	}))
	defer server.Close()

	sender := NewSendGridSender("key", "shop@example.com")
	sender.baseURL = server.URL

	require.NoError(t, sender.SendEmail("a@example.com", "Hello", "<strong>Hi</strong>"))
	assert.Equal(t, "Hello", got["subject"])
	from, ok := got["from"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "shop@example.com", from["email"])

	status = http.StatusBadRequest
	assert.Error(t, sender.SendEmail("a@example.com", "Hello", "Hi"))
}
