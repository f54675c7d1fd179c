// Package notify sends the order confirmation and admin notification emails.
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/bagerileve/storefront/internal/dates"
	"github.com/bagerileve/storefront/internal/domain"
	"github.com/bagerileve/storefront/internal/openinghours"
)

const (
	TemplateOrderConfirmation = "o65qngk8d63gwr12"
	TemplateAdminNotification = "pq3enl6exxr42vwr"

	SubjectOrderConfirmation = "Tack för din beställning!"
	SubjectAdminNotification = "Ny order från hemsidan"
)

type Address struct {
	Name  string
	Email string
}

// Message is one template email. Data fills the template for every recipient.
type Message struct {
	From       Address
	To         []Address
	ReplyTo    Address
	Subject    string
	TemplateID string
	Data       map[string]any
}

type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

type Config struct {
	// Sender is both the From address and the admin address shown in emails.
	Sender   Address
	Hostname string
	Location *time.Location
}

type OrderNotifier struct {
	mailer Mailer
	cfg    Config
}

func NewOrderNotifier(mailer Mailer, cfg Config) *OrderNotifier {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	return &OrderNotifier{mailer: mailer, cfg: cfg}
}

// SendOrderConfirmation mails the customer. Replies go to the shop.
func (n *OrderNotifier) SendOrderConfirmation(ctx context.Context, order *domain.Order, confirmationURL string) error {
	customer := order.Snapshot.Customer
	data, err := n.templateData(order)
	if err != nil {
		return err
	}
	data["confirmationUrl"] = confirmationURL

	return n.mailer.Send(ctx, Message{
		From:       n.cfg.Sender,
		To:         []Address{{Name: customer.Name, Email: customer.Email}},
		ReplyTo:    n.cfg.Sender,
		Subject:    SubjectOrderConfirmation,
		TemplateID: TemplateOrderConfirmation,
		Data:       data,
	})
}

// SendAdminNotification mails recipient about the order. Replies go to the
// customer.
func (n *OrderNotifier) SendAdminNotification(ctx context.Context, order *domain.Order, recipient string) error {
	customer := order.Snapshot.Customer
	data, err := n.templateData(order)
	if err != nil {
		return err
	}

	return n.mailer.Send(ctx, Message{
		From:       n.cfg.Sender,
		To:         []Address{{Email: recipient}},
		ReplyTo:    Address{Name: customer.Name, Email: customer.Email},
		Subject:    SubjectAdminNotification,
		TemplateID: TemplateAdminNotification,
		Data:       data,
	})
}

func (n *OrderNotifier) templateData(order *domain.Order) (map[string]any, error) {
	s := order.Snapshot
	pickup, err := dates.Parse(s.PickupDate, n.cfg.Location)
	if err != nil {
		return nil, fmt.Errorf("order %s pickup date: %w", order.OrderNumber, err)
	}

	items := make([]map[string]any, 0, len(s.Items))
	for _, item := range s.Items {
		title := item.ProductTitle
		if item.VariantID != domain.StandardVariantID {
			title = item.ProductTitle + " - " + item.VariantDescription
		}
		items = append(items, map[string]any{
			"productTitle":       title,
			"variantId":          item.VariantID,
			"variantDescription": item.VariantDescription,
			"unitPrice":          FormatPrice(item.UnitPrice),
			"quantity":           fmt.Sprintf("%d st.", item.Quantity),
			"lineTotal":          FormatPrice(item.LineTotal),
		})
	}

	return map[string]any{
		"order": map[string]any{
			"customer": map[string]any{
				"name":    s.Customer.Name,
				"email":   s.Customer.Email,
				"phone":   s.Customer.Phone,
				"message": s.Customer.Message,
			},
			"pickupDate": openinghours.FormatShortDate(pickup),
			"items":      items,
			"totals": map[string]any{
				"tax":   FormatPrice(s.Totals.Tax),
				"total": FormatPrice(s.Totals.Total),
			},
		},
		"createdAt":  order.CreatedAt.In(n.cfg.Location).Format(time.DateTime),
		"orderNr":    order.OrderNumber,
		"adminEmail": n.cfg.Sender.Email,
		"hostname":   n.cfg.Hostname,
	}, nil
}
