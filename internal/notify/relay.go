package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/Domenick1991/studiobooking/config"
)

// RelayChannel is the remote dispatch service: one JSON POST per message to a
// configured endpoint, which does the actual delivery.
type RelayChannel struct {
	endpoint string
	sender   string
	client   *http.Client
}

func NewRelayChannel(cfg *config.NotifyConfig) *RelayChannel {
	return &RelayChannel{
		endpoint: cfg.RelayEndpoint,
		sender:   cfg.SenderAddress,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *RelayChannel) Name() string { return "relay" }

func (c *RelayChannel) Configured() bool {
	return c.endpoint != ""
}

type relayPayload struct {
	From     string `json:"from"`
	To       string `json:"to"`
	Subject  string `json:"subject"`
	TextBody string `json:"text_body"`
	HTMLBody string `json:"html_body,omitempty"`
}

func (c *RelayChannel) Send(ctx context.Context, msg Message) error {
	body, err := json.Marshal(relayPayload{
		From:     c.sender,
		To:       msg.To,
		Subject:  msg.Subject,
		TextBody: msg.TextBody,
		HTMLBody: msg.HTMLBody,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("relay responded with status %d", resp.StatusCode)
	}
	return nil
}
