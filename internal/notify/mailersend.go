package notify

import (
	"context"
	"fmt"

	"github.com/bagerileve/storefront/pkg/circuitbreaker"
	"github.com/mailersend/mailersend-go"
	"go.uber.org/zap"
)

// MailerSend delivers template emails through the MailerSend API behind a
// circuit breaker.
type MailerSend struct {
	client  *mailersend.Mailersend
	breaker *circuitbreaker.Breaker[*mailersend.Response]
}

func NewMailerSend(apiKey string, logger *zap.Logger) *MailerSend {
	return &MailerSend{
		client:  mailersend.NewMailersend(apiKey),
		breaker: circuitbreaker.New[*mailersend.Response]("mailersend", circuitbreaker.DefaultSettings(), logger),
	}
}

func (m *MailerSend) Send(ctx context.Context, msg Message) error {
	recipients := make([]mailersend.Recipient, 0, len(msg.To))
	personalization := make([]mailersend.Personalization, 0, len(msg.To))
	for _, to := range msg.To {
		recipients = append(recipients, mailersend.Recipient{Name: to.Name, Email: to.Email})
		personalization = append(personalization, mailersend.Personalization{Email: to.Email, Data: msg.Data})
	}

	message := m.client.Email.NewMessage()
	message.SetFrom(mailersend.From{Name: msg.From.Name, Email: msg.From.Email})
	message.SetRecipients(recipients)
	message.SetReplyTo(mailersend.ReplyTo{Name: msg.ReplyTo.Name, Email: msg.ReplyTo.Email})
	message.SetSubject(msg.Subject)
	message.SetTemplateID(msg.TemplateID)
	message.SetPersonalization(personalization)

	_, err := m.breaker.Execute(ctx, func(ctx context.Context) (*mailersend.Response, error) {
		return m.client.Email.Send(ctx, message)
	})
	if err != nil {
		return fmt.Errorf("mailersend %s: %w", msg.TemplateID, err)
	}
	return nil
}
