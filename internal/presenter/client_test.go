package presenter

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestClientIssueTokenSuccess(t *testing.T) {
	t.Parallel()
	expiresAt := time.Date(2026, 3, 14, 10, 5, 0, 0, time.UTC)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/checkin/generate-token" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer access-123" {
			t.Errorf("Authorization = %q", got)
		}
		var body struct {
			SlotParticipantID string `json:"slot_participant_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.SlotParticipantID != "res-1" {
			t.Errorf("request body = %+v (err %v)", body, err)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"token":      "tok-abc",
			"expires_at": expiresAt.Format(time.RFC3339),
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "access-123")
	got, err := c.IssueToken(context.Background(), "res-1")
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	if got.Token != "tok-abc" || !got.ExpiresAt.Equal(expiresAt) {
		t.Fatalf("ticket = %+v", got)
	}
}

func TestClientSurfacesServerErrorVerbatim(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		json.NewEncoder(w).Encode(map[string]string{"error": "access denied"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "access-123")
	_, err := c.IssueToken(context.Background(), "res-1")
	if err == nil {
		t.Fatal("expected an error")
	}
	// The server's message reaches the presenter word for word; it is not
	// a timeout.
	if err.Error() != "access denied" {
		t.Fatalf("err = %q, want the server message verbatim", err)
	}
	if errors.Is(err, ErrTimeout) {
		t.Fatal("server rejection must not look like a timeout")
	}
}

func TestClientTimeoutIsDistinct(t *testing.T) {
	t.Parallel()
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release // stall until the client has given up
	}))
	defer srv.Close()
	defer close(release)

	c := NewClient(srv.URL, "access-123")
	c.HTTPClient.Timeout = 50 * time.Millisecond

	_, err := c.IssueToken(context.Background(), "res-1")
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("err = %v, want ErrTimeout", err)
	}
}

func TestClientStatusWithoutErrorBody(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "access-123")
	_, err := c.IssueToken(context.Background(), "res-1")
	if err == nil {
		t.Fatal("expected an error")
	}
	if err.Error() != "token request failed with status 500" {
		t.Fatalf("err = %q", err)
	}
}
