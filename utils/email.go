// utils/email.go
package utils

import (
	"fmt"
	"html"
	"log"
	"strings"

	"github.com/keighl/postmark"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"go-storefront/config"
	"go-storefront/models"
)

// EmailSender delivers a single message through a provider
type EmailSender interface {
	SendEmail(toEmail, subject, htmlContent string) error
}

// PostmarkSender sends email with Postmark
type PostmarkSender struct {
	client *postmark.Client
	from   string
}

// NewPostmarkSender creates a Postmark sender for the given server token
func NewPostmarkSender(serverToken, from string) *PostmarkSender {
	return &PostmarkSender{
		client: postmark.NewClient(serverToken, ""),
		from:   from,
	}
}

// SendEmail sends a basic email to the specified recipient
func (ps *PostmarkSender) SendEmail(toEmail, subject, htmlContent string) error {
	_, err := ps.client.SendEmail(postmark.Email{
		From:     ps.from,
		To:       toEmail,
		Subject:  subject,
		HtmlBody: htmlContent,
		TextBody: stripTags(htmlContent),
	})
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// SendGridSender sends email with SendGrid. A client is built per message
// because sendgrid.Client stores the request body on itself.
type SendGridSender struct {
	apiKey  string
	from    *mail.Email
	baseURL string
}

// NewSendGridSender creates a SendGrid sender for the given API key
func NewSendGridSender(apiKey, from string) *SendGridSender {
	return &SendGridSender{
		apiKey: apiKey,
		from:   mail.NewEmail("Storefront", from),
	}
}

// SendEmail sends a basic email to the specified recipient
func (ss *SendGridSender) SendEmail(toEmail, subject, htmlContent string) error {
	client := sendgrid.NewSendClient(ss.apiKey)
	if ss.baseURL != "" {
		client.BaseURL = ss.baseURL
	}

	message := mail.NewSingleEmail(ss.from, subject, mail.NewEmail("", toEmail), stripTags(htmlContent), htmlContent)
	resp, err := client.Send(message)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("failed to send email: sendgrid returned %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}

// LogSender writes messages to the log instead of sending them. Used when no
// provider is configured.
type LogSender struct{}

func (LogSender) SendEmail(toEmail, subject, htmlContent string) error {
	log.Printf("email to %s: %s", toEmail, subject)
	return nil
}

// EmailService renders storefront emails and hands them to a sender
type EmailService struct {
	sender EmailSender
}

// NewEmailService wraps sender
func NewEmailService(sender EmailSender) *EmailService {
	return &EmailService{sender: sender}
}

// NewEmailServiceFromConfig picks the provider named by EMAIL_PROVIDER
func NewEmailServiceFromConfig(cfg *config.Config) (*EmailService, error) {
	switch cfg.EmailProvider {
	case "postmark":
		if cfg.PostmarkToken == "" {
			return nil, fmt.Errorf("POSTMARK_API_TOKEN is not set")
		}
		return NewEmailService(NewPostmarkSender(cfg.PostmarkToken, cfg.EmailSender)), nil
	case "sendgrid":
		if cfg.SendGridAPIKey == "" {
			return nil, fmt.Errorf("SENDGRID_API_KEY is not set")
		}
		return NewEmailService(NewSendGridSender(cfg.SendGridAPIKey, cfg.EmailSender)), nil
	default:
		return NewEmailService(LogSender{}), nil
	}
}

// SendEmail sends a basic email to the specified recipient
func (es *EmailService) SendEmail(toEmail, subject, htmlContent string) error {
	return es.sender.SendEmail(toEmail, subject, htmlContent)
}

// SendWelcomeEmail greets a newly registered user
func (es *EmailService) SendWelcomeEmail(toEmail, name string) error {
	subject := "Welcome to the Storefront"
	htmlContent := fmt.Sprintf(
		"<strong>Hi %s,</strong><br><br>Your account has been created. Happy shopping!",
		html.EscapeString(name),
	)
	return es.SendEmail(toEmail, subject, htmlContent)
}

// SendOrderConfirmationEmail sends an order confirmation email to the user
func (es *EmailService) SendOrderConfirmationEmail(toEmail, name string, order models.Order) error {
	subject := fmt.Sprintf("Order Confirmation %s", order.OrderNumber)

	var items strings.Builder
	for _, item := range order.Items {
		fmt.Fprintf(&items, "<li>%d x %s: $%s</li>", item.Quantity, html.EscapeString(item.ProductName), item.TotalPrice)
	}

	htmlContent := fmt.Sprintf(
		"<strong>Dear %s,</strong><br><br>Thank you for your purchase! Your order <strong>%s</strong> has been placed successfully.<ul>%s</ul>Subtotal: $%s<br>Shipping: $%s<br>Tax: $%s<br>Total Amount: <strong>$%s</strong><br><br>Thank you for shopping with us!",
		html.EscapeString(name),
		order.OrderNumber,
		items.String(),
		order.Subtotal,
		order.ShippingAmount,
		order.TaxAmount,
		order.TotalAmount,
	)
	return es.SendEmail(toEmail, subject, htmlContent)
}

// SendOrderStatusEmail tells the customer their order moved to a new status
func (es *EmailService) SendOrderStatusEmail(toEmail, name string, order models.Order) error {
	subject := fmt.Sprintf("Order %s is %s", order.OrderNumber, order.Status)
	htmlContent := fmt.Sprintf(
		"<strong>Dear %s,</strong><br><br>Your order <strong>%s</strong> status has been updated to '%s'.<br><br>Thank you for shopping with us!",
		html.EscapeString(name),
		order.OrderNumber,
		order.Status,
	)
	return es.SendEmail(toEmail, subject, htmlContent)
}

var tagStripper = strings.NewReplacer("<br>", "\n", "<li>", "\n- ", "</li>", "", "<ul>", "", "</ul>", "\n", "<strong>", "", "</strong>", "")

func stripTags(s string) string {
	return html.UnescapeString(tagStripper.Replace(s))
}
