package toxicity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// PerspectiveClient scores text against a Perspective-style comment
// analysis API. Calls carry a bounded timeout; callers fail open on error.
type PerspectiveClient struct {
	apiURL string
	apiKey string
	client *http.Client
	langs  []string
}

func NewPerspectiveClient(apiURL, apiKey string, timeout time.Duration) *PerspectiveClient {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &PerspectiveClient{
		apiURL: apiURL,
		apiKey: apiKey,
		client: &http.Client{Timeout: timeout},
		langs:  []string{"en"},
	}
}

type perspectiveRequest struct {
	Comment struct {
		Text string `json:"text"`
	} `json:"comment"`
	Languages           []string                   `json:"languages"`
	RequestedAttributes map[string]json.RawMessage `json:"requestedAttributes"`
}

type perspectiveResponse struct {
	AttributeScores map[string]struct {
		SummaryScore struct {
			Value float64 `json:"value"`
		} `json:"summaryScore"`
	} `json:"attributeScores"`
}

// Score returns the summary toxicity score in [0,1].
func (p *PerspectiveClient) Score(ctx context.Context, text string) (float64, error) {
	reqBody := perspectiveRequest{Languages: p.langs}
	reqBody.Comment.Text = text
	reqBody.RequestedAttributes = map[string]json.RawMessage{"TOXICITY": json.RawMessage("{}")}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.apiURL+"?key="+p.apiKey, bytes.NewReader(payload))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, fmt.Errorf("scoring API error: status %d", resp.StatusCode)
	}

	var parsed perspectiveResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return 0, err
	}

	attr, ok := parsed.AttributeScores["TOXICITY"]
	if !ok {
		return 0, errors.New("no toxicity attribute in response")
	}
	return attr.SummaryScore.Value, nil
}
