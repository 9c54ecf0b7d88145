package utils

import (
	"fmt"
	"os"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"camshop-backend/models"
)

// EmailService sends transactional mail through SendGrid
type EmailService struct {
	client *sendgrid.Client
	sender string
}

// NewEmailService initializes the service from SENDGRID_API_KEY and
// EMAIL_SENDER
func NewEmailService() *EmailService {
	apiKey := os.Getenv("SENDGRID_API_KEY")
	if apiKey == "" {
		panic("SENDGRID_API_KEY is not set in environment variables")
	}
	return &EmailService{
		client: sendgrid.NewSendClient(apiKey),
		sender: os.Getenv("EMAIL_SENDER"),
	}
}

// SendEmail sends a basic email to the specified recipient
func (es *EmailService) SendEmail(toEmail, subject, plainContent, htmlContent string) error {
	from := mail.NewEmail("CMSHP Camera Shop", es.sender)
	to := mail.NewEmail("", toEmail)
	message := mail.NewSingleEmail(from, subject, to, plainContent, htmlContent)

	resp, err := es.client.Send(message)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("failed to send email: status %d", resp.StatusCode)
	}
	return nil
}

// SendVerificationEmail sends an email verification link to the user
func (es *EmailService) SendVerificationEmail(toEmail, token string) error {
	subject := "Verify Your Email"
	verificationLink := fmt.Sprintf("%s/verify?token=%s", os.Getenv("CLIENT_URL"), token)
	htmlContent := fmt.Sprintf(
		"<strong>Please verify your email by clicking on the following link:</strong> <a href=\"%s\">Verify Email</a>",
		verificationLink,
	)
	return es.SendEmail(toEmail, subject, "Please verify your email: "+verificationLink, htmlContent)
}

// SendOrderConfirmation sends an order confirmation after payment is
// confirmed. Implements the checkout Mailer interface.
func (es *EmailService) SendOrderConfirmation(toEmail string, order *models.Order) error {
	subject := fmt.Sprintf("Order Confirmation - %s", order.CustomOrderID)
	htmlContent := fmt.Sprintf(
		"<strong>Thank you for your purchase!</strong><br><br>Your order <strong>%s</strong> has been placed successfully.<br><br>Total Amount: <strong>$%.2f</strong><br><br>You can view your receipt <a href=\"%s\">here</a>.<br><br>Thank you for shopping with us!",
		order.CustomOrderID,
		order.TotalAmount,
		order.ReceiptLink,
	)
	plain := fmt.Sprintf("Thank you for your purchase! Your order %s has been placed successfully. Total Amount: $%.2f", order.CustomOrderID, order.TotalAmount)
	return es.SendEmail(toEmail, subject, plain, htmlContent)
}

// SendShippingNotice tells the customer their order is on the way
func (es *EmailService) SendShippingNotice(toEmail string, order *models.Order) error {
	subject := fmt.Sprintf("Your Order Has Shipped - %s", order.CustomOrderID)
	htmlContent := fmt.Sprintf(
		"<strong>Good news!</strong><br><br>Your order <strong>%s</strong> has shipped.<br><br>Tracking number: <strong>%s</strong><br>Track it here: <a href=\"%s\">%s</a>",
		order.CustomOrderID,
		order.TrackingNo,
		order.TrackingLink,
		order.TrackingLink,
	)
	plain := fmt.Sprintf("Your order %s has shipped. Tracking number: %s (%s)", order.CustomOrderID, order.TrackingNo, order.TrackingLink)
	return es.SendEmail(toEmail, subject, plain, htmlContent)
}
