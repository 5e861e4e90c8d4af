package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Notification is one push message addressed by external user id.
type Notification struct {
	Title   string   `json:"title"`
	Body    string   `json:"body"`
	UserIDs []string `json:"user_ids"`
}

// Client talks to a OneSignal-compatible push gateway.
type Client struct {
	BaseURL string
	AppID   string
	APIKey  string
	HTTP    *http.Client
}

// NewClient returns a push client.
func NewClient(baseURL, appID, apiKey string) *Client {
	return &Client{
		BaseURL: baseURL,
		AppID:   appID,
		APIKey:  apiKey,
		HTTP:    &http.Client{Timeout: 10 * time.Second},
	}
}

// Send delivers one notification. The gateway fans out to every device
// registered under the given external user ids.
func (c *Client) Send(ctx context.Context, n Notification) error {
	endpoint := strings.TrimRight(c.BaseURL, "/")
	if endpoint == "" {
		return fmt.Errorf("push gateway base url required")
	}
	if len(n.UserIDs) == 0 {
		return fmt.Errorf("notification without recipients")
	}

	payload := map[string]any{
		"app_id":                    c.AppID,
		"include_external_user_ids": n.UserIDs,
		"headings":                  map[string]string{"en": n.Title},
		"contents":                  map[string]string{"en": n.Body},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint+"/notifications", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Basic "+c.APIKey)

	client := c.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return fmt.Errorf("push gateway response %d: %s", resp.StatusCode, string(data))
	}
	return nil
}
