package presenter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrTimeout is returned when the issuance request does not complete
// within the client timeout.  It is distinct from server-reported failures
// so retries show up differently in logs and tests.
var ErrTimeout = errors.New("token request timed out")

// Client calls the issuance endpoint over HTTP with a bearer access token.
type Client struct {
	BaseURL     string
	AccessToken string
	HTTPClient  *http.Client
}

// NewClient builds a Client with a 10 second request timeout.
func NewClient(baseURL, accessToken string) *Client {
	return &Client{
		BaseURL:     baseURL,
		AccessToken: accessToken,
		HTTPClient:  &http.Client{Timeout: 10 * time.Second},
	}
}

// IssueToken posts to /api/checkin/generate-token and decodes the issued
// token.  Server-side failures surface their error message verbatim;
// timeouts surface ErrTimeout.
func (c *Client) IssueToken(ctx context.Context, reservationID string) (Ticket, error) {
	body, err := json.Marshal(map[string]string{"slot_participant_id": reservationID})
	if err != nil {
		return Ticket{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.BaseURL+"/api/checkin/generate-token", bytes.NewReader(body))
	if err != nil {
		return Ticket{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.AccessToken)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		var netErr interface{ Timeout() bool }
		if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
			return Ticket{}, ErrTimeout
		}
		return Ticket{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var fail struct {
			Error string `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&fail); err != nil || fail.Error == "" {
			return Ticket{}, fmt.Errorf("token request failed with status %d", resp.StatusCode)
		}
		return Ticket{}, errors.New(fail.Error)
	}

	var ok struct {
		Token     string `json:"token"`
		ExpiresAt string `json:"expires_at"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&ok); err != nil {
		return Ticket{}, fmt.Errorf("decode token response: %w", err)
	}
	expiresAt, err := time.Parse(time.RFC3339, ok.ExpiresAt)
	if err != nil {
		return Ticket{}, fmt.Errorf("parse expires_at: %w", err)
	}
	return Ticket{Token: ok.Token, ExpiresAt: expiresAt}, nil
}
