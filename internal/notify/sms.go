package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/darisni/backend/config"
)

// SMSClient posts messages to an HTTP SMS gateway.
type SMSClient struct {
	cfg    config.SMSConfig
	http   *http.Client
	logger *zap.Logger
}

// NewSMSClient creates the SMS gateway client, or nil when no gateway is
// configured.
func NewSMSClient(cfg config.SMSConfig, logger *zap.Logger) *SMSClient {
	if cfg.BaseURL == "" {
		return nil
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SMSClient{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

type smsRequest struct {
	To     string `json:"to"`
	Body   string `json:"body"`
	Sender string `json:"sender"`
}

// SendSMS delivers one message. to must already be in gateway form
// (966XXXXXXXXX, no plus).
func (c *SMSClient) SendSMS(ctx context.Context, to, body string) error {
	payload, err := json.Marshal(smsRequest{To: to, Body: body, Sender: c.cfg.Sender})
	if err != nil {
		return fmt.Errorf("marshal sms: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/messages", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("sms gateway: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("sms gateway: status %d", resp.StatusCode)
	}
	return nil
}
