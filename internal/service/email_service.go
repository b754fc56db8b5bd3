package service

import (
	"bytes"
	"crypto/tls"
	"fmt"
	"mime"
	"net/mail"
	"net/smtp"
	"strings"

	"github.com/smartskincare/api/internal/config"
	"github.com/smartskincare/api/internal/constants"
	"github.com/smartskincare/api/internal/models"
)

// EmailService sends transactional mail over SMTP.
type EmailService struct {
	cfg *config.EmailConfig
}

// NewEmailService builds the email service.
func NewEmailService(cfg *config.EmailConfig) *EmailService {
	return &EmailService{cfg: cfg}
}

// SendOrderReceiptEmail mails the receipt for a committed order.
func (s *EmailService) SendOrderReceiptEmail(toEmail string, order *models.Order) error {
	if order == nil {
		return ErrNotFound
	}
	subject := fmt.Sprintf("Your Smart Skincare order %s", order.OrderNo)

	var b strings.Builder
	fmt.Fprintf(&b, "Thank you for your purchase!\n\n")
	fmt.Fprintf(&b, "Order number: %s\n\n", order.OrderNo)
	for _, item := range order.Items {
		fmt.Fprintf(&b, "  %s x%d  %s %s\n", item.ProductName, item.Quantity, order.Currency, item.TotalPrice.String())
	}
	fmt.Fprintf(&b, "\nSubtotal:  %s %s\n", order.Currency, order.Subtotal.String())
	fmt.Fprintf(&b, "Tax:       %s %s\n", order.Currency, order.TaxAmount.String())
	fmt.Fprintf(&b, "Shipping:  %s %s\n", order.Currency, order.ShippingFee.String())
	fmt.Fprintf(&b, "Total:     %s %s\n", order.Currency, order.TotalAmount.String())

	return s.sendTextEmail(toEmail, subject, b.String())
}

// SendAppointmentStatusEmail mails a booking status notification.
func (s *EmailService) SendAppointmentStatusEmail(toEmail string, appointment *models.Appointment, status string) error {
	if appointment == nil {
		return ErrNotFound
	}
	var subject, body string
	switch strings.ToLower(strings.TrimSpace(status)) {
	case constants.AppointmentStatusCancelled:
		subject = "Your consultation has been cancelled"
		body = fmt.Sprintf("Hi %s,\n\nYour skin consultation on %s at %s has been cancelled.\n\nYou can book a new slot any time.",
			appointment.Name, appointment.Date, appointment.Time)
	default:
		subject = "Your consultation is confirmed"
		body = fmt.Sprintf("Hi %s,\n\nYour skin consultation is confirmed for %s at %s.\n\nSee you then!",
			appointment.Name, appointment.Date, appointment.Time)
	}
	return s.sendTextEmail(toEmail, subject, body)
}

// SendPasswordResetEmail mails a reset token.
func (s *EmailService) SendPasswordResetEmail(toEmail, token string) error {
	subject := "Reset your Smart Skincare password"
	body := fmt.Sprintf("We received a request to reset your password.\n\nYour reset token is: %s\n\nIf you did not request this, you can ignore this email.", token)
	return s.sendTextEmail(toEmail, subject, body)
}

// SendCustomEmail sends a test or ad-hoc message.
func (s *EmailService) SendCustomEmail(toEmail, subject, body string) error {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		subject = "Smart Skincare SMTP test"
	}
	body = strings.TrimSpace(body)
	if body == "" {
		body = "This is a test email from Smart Skincare. Your SMTP configuration works."
	}
	return s.sendTextEmail(toEmail, subject, body)
}

func (s *EmailService) sendTextEmail(toEmail, subject, body string) error {
	if s.cfg == nil || !s.cfg.Enabled {
		return ErrEmailServiceDisabled
	}
	if s.cfg.Host == "" || s.cfg.Port == 0 || s.cfg.From == "" {
		return ErrEmailServiceNotConfigured
	}
	if _, err := mail.ParseAddress(toEmail); err != nil {
		return ErrInvalidEmail
	}

	from := buildFromAddress(s.cfg.From, s.cfg.FromName)
	msg := buildEmailMessage(from, toEmail, subject, body)

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	var auth smtp.Auth
	if s.cfg.Username != "" || s.cfg.Password != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}

	if s.cfg.UseSSL {
		return normalizeEmailSendError(sendMailWithSSL(addr, auth, s.cfg.Host, s.cfg.From, []string{toEmail}, []byte(msg)))
	}
	if s.cfg.UseTLS {
		return normalizeEmailSendError(sendMailWithStartTLS(addr, auth, s.cfg.Host, s.cfg.From, []string{toEmail}, []byte(msg)))
	}
	return normalizeEmailSendError(sendMailPlain(addr, auth, s.cfg.Host, s.cfg.From, []string{toEmail}, []byte(msg)))
}

func buildFromAddress(from, name string) string {
	if strings.TrimSpace(name) == "" {
		return from
	}
	encoded := mime.QEncoding.Encode("UTF-8", name)
	return (&mail.Address{Name: encoded, Address: from}).String()
}

func buildEmailMessage(from, to, subject, body string) string {
	var buf bytes.Buffer
	buf.WriteString(fmt.Sprintf("From: %s\r\n", from))
	buf.WriteString(fmt.Sprintf("To: %s\r\n", to))
	buf.WriteString(fmt.Sprintf("Subject: %s\r\n", mime.QEncoding.Encode("UTF-8", subject)))
	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	buf.WriteString("\r\n")
	buf.WriteString(body)
	return buf.String()
}

func sendMailWithSSL(addr string, auth smtp.Auth, host, from string, to []string, msg []byte) error {
	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: host})
	if err != nil {
		return err
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, host)
	if err != nil {
		return err
	}
	defer client.Close()

	if auth != nil {
		if ok, _ := client.Extension("AUTH"); ok {
			if err := client.Auth(auth); err != nil {
				return err
			}
		}
	}

	return sendSMTPData(client, from, to, msg)
}

func sendMailWithStartTLS(addr string, auth smtp.Auth, host, from string, to []string, msg []byte) error {
	client, err := smtp.Dial(addr)
	if err != nil {
		return err
	}
	defer client.Close()

	if err := client.StartTLS(&tls.Config{ServerName: host}); err != nil {
		return err
	}

	if auth != nil {
		if ok, _ := client.Extension("AUTH"); ok {
			if err := client.Auth(auth); err != nil {
				return err
			}
		}
	}

	return sendSMTPData(client, from, to, msg)
}

func sendMailPlain(addr string, auth smtp.Auth, host, from string, to []string, msg []byte) error {
	client, err := smtp.Dial(addr)
	if err != nil {
		return err
	}
	defer client.Close()

	if auth != nil {
		if ok, _ := client.Extension("AUTH"); ok {
			if err := client.Auth(auth); err != nil {
				return err
			}
		}
	}

	return sendSMTPData(client, from, to, msg)
}

func sendSMTPData(client *smtp.Client, from string, to []string, msg []byte) error {
	if err := client.Mail(from); err != nil {
		return err
	}
	for _, rcpt := range to {
		if err := client.Rcpt(rcpt); err != nil {
			return err
		}
	}
	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return client.Quit()
}

func normalizeEmailSendError(err error) error {
	if err == nil {
		return nil
	}
	if isEmailRecipientRejected(err) {
		return ErrEmailRecipientRejected
	}
	return err
}

func isEmailRecipientRejected(err error) bool {
	if err == nil {
		return false
	}
	message := strings.ToLower(strings.TrimSpace(err.Error()))
	if message == "" {
		return false
	}
	directKeywords := []string{
		"no such recipient",
		"no such user",
		"recipient not found",
		"recipient address rejected",
		"invalid recipient",
		"user unknown",
		"unknown user",
		"unknown mailbox",
		"mailbox unavailable",
	}
	for _, keyword := range directKeywords {
		if strings.Contains(message, keyword) {
			return true
		}
	}
	if strings.Contains(message, "550") {
		hints := []string{"recipient", "user", "mailbox", "address", "rcpt"}
		for _, hint := range hints {
			if strings.Contains(message, hint) {
				return true
			}
		}
	}
	return false
}
