package services

import (
	"bengaliboutique_server/structs"
	"bengaliboutique_server/structs/tables"
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/MonkyMars/gecho"
	"github.com/resend/resend-go/v3"
)

var (
	client     *resend.Client
	clientOnce = sync.Once{}
)

var errEmailNotConfigured = errors.New("email api key not configured")

// Message is one plain-text email.
type Message struct {
	To      []string
	Subject string
	Body    string
}

// Notifier delivers order notifications. Send returns the transport error unchanged.
type Notifier interface {
	Send(ctx context.Context, msg Message) error
}

type EmailService struct {
	logger *gecho.Logger
	cfg    *structs.Config
	client *resend.Client
}

func NewEmailService(logger *gecho.Logger, cfg *structs.Config) *EmailService {
	es := &EmailService{
		logger: logger,
		cfg:    cfg,
	}
	if cfg.Email.ApiKey != "" {
		es.client = getEmailClient(cfg.Email.ApiKey)
	}
	return es
}

func getEmailClient(apiKey string) *resend.Client {
	clientOnce.Do(func() {
		client = resend.NewClient(apiKey)
	})
	return client
}

// Send delivers msg through Resend. Without an API key, development builds only log
// the message and production builds fail.
func (es *EmailService) Send(ctx context.Context, msg Message) error {
	if es.client == nil {
		if es.cfg.Server.Environment == "production" {
			return errEmailNotConfigured
		}
		es.logger.Info("Email delivery disabled, logging message",
			gecho.Field("to", msg.To),
			gecho.Field("subject", msg.Subject),
			gecho.Field("body", msg.Body),
		)
		return nil
	}

	params := &resend.SendEmailRequest{
		From:    es.cfg.Email.From,
		To:      msg.To,
		Text:    msg.Body,
		Subject: msg.Subject,
	}

	if _, err := es.client.Emails.SendWithContext(ctx, params); err != nil {
		es.logger.Error("Failed to send email", gecho.Field("error", err), gecho.Field("to", msg.To))
		return err
	}
	return nil
}

// BuyerConfirmation is sent to the buyer once the order is committed.
func BuyerConfirmation(order *tables.Order, email, currency string) Message {
	return Message{
		To:      []string{email},
		Subject: "Order Confirmation",
		Body:    fmt.Sprintf("Your order #%s has been placed. Total: %s%s", order.ID, currency, order.TotalPrice.StringFixed(2)),
	}
}

// AdminAlert notifies the shop administrator about a new order.
func AdminAlert(order *tables.Order, adminEmail, currency string) Message {
	return Message{
		To:      []string{adminEmail},
		Subject: "New Order Placed",
		Body:    fmt.Sprintf("Order #%s by %s for %s%s", order.ID, order.Username, currency, order.TotalPrice.StringFixed(2)),
	}
}
