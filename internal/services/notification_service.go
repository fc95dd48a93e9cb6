// internal/services/notification_service.go
package services

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"html/template"
	"mime/multipart"
	"net/smtp"
	"net/textproto"

	"github.com/sirupsen/logrus"

	"github.com/innovatech/storefront-backend/internal/config"
	"github.com/innovatech/storefront-backend/internal/models"
)

// NotificationService sends transactional email. Delivery is best-effort:
// checkout never fails because SMTP is down, so callers fire these from
// goroutines and failures only surface in the logs.
type NotificationService struct {
	config *config.Config
	pdf    *PDFService
}

type EmailTemplate struct {
	Subject string
	Body    string
}

type ContactRequest struct {
	Name    string `json:"name" binding:"required,min=2,max=120"`
	Email   string `json:"email" binding:"required,email"`
	Subject string `json:"subject" binding:"required,min=2,max=150"`
	Message string `json:"message" binding:"required,min=5,max=3000"`
}

func NewNotificationService(config *config.Config, pdf *PDFService) *NotificationService {
	return &NotificationService{config: config, pdf: pdf}
}

// SendInvoiceEmail mails the customer their purchase confirmation with the
// invoice PDF attached.
func (s *NotificationService) SendInvoiceEmail(purchase *models.Purchase, customer *models.Customer) error {
	data := map[string]interface{}{
		"CustomerName": customer.FullName,
		"PurchaseID":   purchase.ID,
		"Total":        formatMoney(purchase.Total),
		"HistoryURL":   fmt.Sprintf("%s/purchases/%s", s.config.Frontend.BaseURL, purchase.ID),
	}

	subject := fmt.Sprintf("Your InnovaTech purchase %s", purchase.ID)
	body, err := s.renderTemplate(s.getEmailTemplate("invoice").Body, data)
	if err != nil {
		logrus.WithError(err).Error("Failed to render invoice email template")
		return err
	}

	var attachment []byte
	if s.pdf != nil {
		attachment, err = s.pdf.RenderInvoice(purchase, customer)
		if err != nil {
			logrus.WithError(err).WithField("purchase_id", purchase.ID).
				Error("Failed to render invoice PDF, sending email without attachment")
			attachment = nil
		}
	}

	filename := fmt.Sprintf("invoice-%s.pdf", purchase.ID)
	if err := s.sendEmailWithAttachment(customer.Email, subject, body, filename, attachment); err != nil {
		logrus.WithError(err).WithField("purchase_id", purchase.ID).
			Error("Failed to send invoice email")
		return err
	}
	return nil
}

// SendWelcomeEmail greets a freshly registered customer.
func (s *NotificationService) SendWelcomeEmail(customer *models.Customer) error {
	data := map[string]interface{}{
		"CustomerName": customer.FullName,
		"StoreURL":     s.config.Frontend.BaseURL,
	}

	body, err := s.renderTemplate(s.getEmailTemplate("welcome").Body, data)
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	return s.sendEmail(customer.Email, "Welcome to InnovaTech", body)
}

// SendContactEmail forwards a contact-form submission to the store inbox.
func (s *NotificationService) SendContactEmail(req *ContactRequest) error {
	data := map[string]interface{}{
		"Name":    req.Name,
		"Email":   req.Email,
		"Subject": req.Subject,
		"Message": req.Message,
	}

	body, err := s.renderTemplate(s.getEmailTemplate("contact").Body, data)
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	return s.sendEmail(s.config.Email.FromEmail, "Contact form: "+req.Subject, body)
}

func (s *NotificationService) sendEmail(to, subject, body string) error {
	if s.config.Email.SMTPHost == "" {
		logrus.WithFields(logrus.Fields{"to": to, "subject": subject}).
			Info("SMTP not configured, skipping email")
		return nil
	}

	auth := smtp.PlainAuth("", s.config.Email.SMTPUsername, s.config.Email.SMTPPassword, s.config.Email.SMTPHost)

	msg := []byte(fmt.Sprintf(
		"From: %s <%s>\r\nTo: %s\r\nSubject: %s\r\nContent-Type: text/html; charset=\"UTF-8\"\r\n\r\n%s",
		s.config.Email.FromName, s.config.Email.FromEmail, to, subject, body))

	addr := fmt.Sprintf("%s:%s", s.config.Email.SMTPHost, s.config.Email.SMTPPort)
	return smtp.SendMail(addr, auth, s.config.Email.FromEmail, []string{to}, msg)
}

func (s *NotificationService) sendEmailWithAttachment(to, subject, body, filename string, attachment []byte) error {
	if attachment == nil {
		return s.sendEmail(to, subject, body)
	}
	if s.config.Email.SMTPHost == "" {
		logrus.WithFields(logrus.Fields{"to": to, "subject": subject, "attachment": filename}).
			Info("SMTP not configured, skipping email")
		return nil
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	headers := fmt.Sprintf(
		"From: %s <%s>\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: multipart/mixed; boundary=%q\r\n\r\n",
		s.config.Email.FromName, s.config.Email.FromEmail, to, subject, writer.Boundary())

	htmlHeader := textproto.MIMEHeader{}
	htmlHeader.Set("Content-Type", `text/html; charset="UTF-8"`)
	htmlPart, err := writer.CreatePart(htmlHeader)
	if err != nil {
		return fmt.Errorf("failed to build email body: %w", err)
	}
	if _, err := htmlPart.Write([]byte(body)); err != nil {
		return fmt.Errorf("failed to build email body: %w", err)
	}

	attachmentHeader := textproto.MIMEHeader{}
	attachmentHeader.Set("Content-Type", "application/pdf")
	attachmentHeader.Set("Content-Transfer-Encoding", "base64")
	attachmentHeader.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	attachmentPart, err := writer.CreatePart(attachmentHeader)
	if err != nil {
		return fmt.Errorf("failed to build email attachment: %w", err)
	}
	encoded := base64.StdEncoding.EncodeToString(attachment)
	if _, err := attachmentPart.Write([]byte(encoded)); err != nil {
		return fmt.Errorf("failed to build email attachment: %w", err)
	}

	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize email: %w", err)
	}

	auth := smtp.PlainAuth("", s.config.Email.SMTPUsername, s.config.Email.SMTPPassword, s.config.Email.SMTPHost)
	addr := fmt.Sprintf("%s:%s", s.config.Email.SMTPHost, s.config.Email.SMTPPort)
	msg := append([]byte(headers), buf.Bytes()...)
	return smtp.SendMail(addr, auth, s.config.Email.FromEmail, []string{to}, msg)
}

func (s *NotificationService) renderTemplate(templateStr string, data interface{}) (string, error) {
	tmpl, err := template.New("email").Parse(templateStr)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}

func (s *NotificationService) getEmailTemplate(templateType string) EmailTemplate {
	templates := map[string]EmailTemplate{
		"invoice": {
			Subject: "Your InnovaTech purchase",
			Body: `
<!DOCTYPE html>
<html>
<body>
	<h2>Thank you for your purchase, {{.CustomerName}}!</h2>
	<p>Your order <strong>{{.PurchaseID}}</strong> is confirmed. The total charged was <strong>{{.Total}}</strong>.</p>
	<p>Your invoice is attached as a PDF.</p>
	<a href="{{.HistoryURL}}">View your order</a>
	<p>Best regards,<br>The InnovaTech Team</p>
</body>
</html>`,
		},
		"welcome": {
			Subject: "Welcome to InnovaTech",
			Body: `
<!DOCTYPE html>
<html>
<body>
	<h2>Welcome {{.CustomerName}}!</h2>
	<p>Your InnovaTech account is ready. Your cart and favorites now follow you across devices.</p>
	<a href="{{.StoreURL}}">Start shopping</a>
	<p>Best regards,<br>The InnovaTech Team</p>
</body>
</html>`,
		},
		"contact": {
			Subject: "Contact form submission",
			Body: `
<!DOCTYPE html>
<html>
<body>
	<h3>{{.Subject}}</h3>
	<p>From: {{.Name}} ({{.Email}})</p>
	<p>{{.Message}}</p>
</body>
</html>`,
		},
	}

	if tmpl, exists := templates[templateType]; exists {
		return tmpl
	}

	return EmailTemplate{
		Subject: "Notification",
		Body:    "<p>{{.Message}}</p>",
	}
}
