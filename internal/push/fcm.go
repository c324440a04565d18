package push

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Gateway error codes that mean the token is permanently dead.
var deadTokenErrors = map[string]bool{
	"NotRegistered":       true,
	"InvalidRegistration": true,
	"MismatchSenderId":    true,
}

// FCMClient delivers multicast pushes over the FCM HTTP API.
type FCMClient struct {
	apiURL string
	apiKey string
	client *http.Client
}

func NewFCMClient(apiURL, apiKey string, timeout time.Duration) *FCMClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &FCMClient{
		apiURL: apiURL,
		apiKey: apiKey,
		client: &http.Client{Timeout: timeout},
	}
}

type fcmRequest struct {
	RegistrationIDs []string          `json:"registration_ids"`
	Notification    fcmNotification   `json:"notification"`
	Data            map[string]string `json:"data,omitempty"`
}

type fcmNotification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type fcmResponse struct {
	Success int `json:"success"`
	Failure int `json:"failure"`
	Results []struct {
		MessageID string `json:"message_id,omitempty"`
		Error     string `json:"error,omitempty"`
	} `json:"results"`
}

// SendMulticast sends one payload to all tokens and returns the subset the
// gateway reported as permanently invalid.
func (c *FCMClient) SendMulticast(ctx context.Context, tokens []string, n Notification) ([]string, error) {
	payload, err := json.Marshal(fcmRequest{
		RegistrationIDs: tokens,
		Notification:    fcmNotification{Title: n.Title, Body: n.Body},
		Data:            n.Data,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "key="+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("push gateway error: status %d", resp.StatusCode)
	}

	var parsed fcmResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, err
	}

	var invalid []string
	for i, result := range parsed.Results {
		if i >= len(tokens) {
			break
		}
		if deadTokenErrors[result.Error] {
			invalid = append(invalid, tokens[i])
		}
	}
	return invalid, nil
}
