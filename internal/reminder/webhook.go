package reminder

import (
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// Payload is the JSON body of a delivered reminder.
type Payload struct {
	Topic  string    `json:"topic"`
	Due    int       `json:"due"`
	SentAt time.Time `json:"sentAt"`
}

// WebhookNotifier POSTs each reminder as JSON to a URL.
type WebhookNotifier struct {
	client *resty.Client
	url    string
	now    func() time.Time
}

// NewWebhookNotifier returns a notifier posting to url with a 10s timeout.
func NewWebhookNotifier(url string) *WebhookNotifier {
	return &WebhookNotifier{
		client: resty.New().SetTimeout(10 * time.Second),
		url:    url,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (n *WebhookNotifier) Notify(topic string, count int) error {
	resp, err := n.client.R().
		SetHeader("Content-Type", "application/json").
		SetBody(Payload{Topic: topic, Due: count, SentAt: n.now()}).
		Post(n.url)
	if err != nil {
		return fmt.Errorf("post reminder: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("post reminder: %s: %s", resp.Status(), resp.String())
	}
	return nil
}
