package providers

import "context"

// Notification is one outbound push about a tee time becoming available.
type Notification struct {
	Recipient string `json:"recipient"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	URL       string `json:"url,omitempty"`
}

// Notifier delivers notifications through an external relay. Delivery
// (push/email/SMS) is entirely the relay's problem.
type Notifier interface {
	Send(ctx context.Context, n *Notification) error
}
