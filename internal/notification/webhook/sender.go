package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/luciodale/booking-portal-sub002/internal/notification/domain"
)

const defaultTimeout = 10 * time.Second

// Sender posts notices as JSON to a fixed endpoint.
type Sender struct {
	url    string
	client *http.Client
}

func NewSender(url string, client *http.Client) (*Sender, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, domain.ErrMissingWebhookURL
	}
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	return &Sender{url: url, client: client}, nil
}

type envelope struct {
	Type   string        `json:"type"`
	Notice domain.Notice `json:"data"`
}

func (s *Sender) Send(ctx context.Context, n domain.Notice) error {
	if err := n.Validate(); err != nil {
		return err
	}

	body, err := json.Marshal(envelope{Type: domain.TaskTypeBookingConfirmed, Notice: n})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", n.BookingID.String())

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 400 {
		return fmt.Errorf("%w: status=%d", domain.ErrDeliveryRejected, resp.StatusCode)
	}
	return nil
}

// Notifier delivers inline, without a queue.
type Notifier struct {
	sender domain.Sender
}

func NewNotifier(sender domain.Sender) *Notifier {
	return &Notifier{sender: sender}
}

func (n *Notifier) NotifyConfirmed(ctx context.Context, notice domain.Notice) error {
	return n.sender.Send(ctx, notice)
}
