package service

import (
	"context"
	"fmt"
	"html"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"locationapp-backend/internal/domain"
	"locationapp-backend/internal/logger"
	"locationapp-backend/internal/messaging"
	"locationapp-backend/internal/utils"
)

type sendGridEmailService struct {
	client    *sendgrid.Client
	fromEmail string
	fromName  string
}

// NewEmailService returns a SendGrid sender, or a sender that only logs when
// apiKey is empty.
func NewEmailService(apiKey, fromEmail, fromName string) EmailService {
	if apiKey == "" {
		return logEmailService{}
	}
	return &sendGridEmailService{
		client:    sendgrid.NewSendClient(apiKey),
		fromEmail: fromEmail,
		fromName:  fromName,
	}
}

func (s *sendGridEmailService) SendInquiryNotice(ctx context.Context, to string, inquiry *domain.Inquiry, room *domain.Room, replyLink string) error {
	subject, plain, htmlBody := inquiryNotice(inquiry, room, replyLink)

	from := mail.NewEmail(s.fromName, s.fromEmail)
	recipient := mail.NewEmail("", to)
	message := mail.NewSingleEmail(from, subject, recipient, plain, htmlBody)

	response, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("failed to send inquiry notice: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("sendgrid error: status %d, body: %s", response.StatusCode, response.Body)
	}
	return nil
}

type logEmailService struct{}

func (logEmailService) SendInquiryNotice(ctx context.Context, to string, inquiry *domain.Inquiry, room *domain.Room, replyLink string) error {
	subject, _, _ := inquiryNotice(inquiry, room, replyLink)
	logger.Info("Email delivery disabled, inquiry notice not sent", "to", to, "subject", subject)
	return nil
}

func inquiryNotice(inquiry *domain.Inquiry, room *domain.Room, replyLink string) (subject, plain, htmlBody string) {
	title := "chambre " + inquiry.RoomID
	if room != nil {
		title = room.Title
	}
	subject = fmt.Sprintf("Nouvelle demande : %s", title)

	plain = fmt.Sprintf("%s (%s) a envoyé une demande pour %s.\n\n%s", inquiry.Name, inquiry.Phone, title, inquiry.Message)
	if inquiry.DateStart != nil {
		plain += "\n\nDébut souhaité : " + messaging.FormatDate(*inquiry.DateStart, nil)
	}
	if inquiry.DateEnd != nil {
		plain += "\nFin souhaitée : " + messaging.FormatDate(*inquiry.DateEnd, nil)
	}
	if room != nil {
		plain += "\nLoyer : " + utils.FormatAmount(room.PricePerMonth, room.Currency) + " / mois"
	}
	if replyLink != "" {
		plain += "\n\nRépondre sur WhatsApp : " + replyLink
	}

	htmlBody = "<p>" + html.EscapeString(inquiry.Name) + " (" + html.EscapeString(inquiry.Phone) + ") a envoyé une demande pour <strong>" +
		html.EscapeString(title) + "</strong>.</p><p>" + html.EscapeString(inquiry.Message) + "</p>"
	if replyLink != "" {
		htmlBody += `<p><a href="` + html.EscapeString(replyLink) + `">Répondre sur WhatsApp</a></p>`
	}
	return subject, plain, htmlBody
}
