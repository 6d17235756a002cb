package checkin

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/realmeet/checkin-service/internal/model"
	"github.com/realmeet/checkin-service/internal/repository"
	"github.com/realmeet/checkin-service/internal/utils"
)

// fakeReservations serves reservation details from memory.
type fakeReservations struct {
	mu      sync.Mutex
	details map[string]model.ReservationDetail
}

func (f *fakeReservations) GetDetail(_ context.Context, id string) (model.ReservationDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.details[id]
	if !ok {
		return model.ReservationDetail{}, repository.ErrReservationNotFound
	}
	return d, nil
}

// fakeTokens mirrors the storage invariants: one row per reservation and a
// mutex-guarded compare-and-set on consumption.
type fakeTokens struct {
	mu            sync.Mutex
	byHash        map[string]model.CheckinToken
	byReservation map[string]string // reservation id -> current hash
}

func newFakeTokens() *fakeTokens {
	return &fakeTokens{
		byHash:        map[string]model.CheckinToken{},
		byReservation: map[string]string{},
	}
}

func (f *fakeTokens) Supersede(_ context.Context, rec model.CheckinToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if old, ok := f.byReservation[rec.ReservationID]; ok {
		delete(f.byHash, old)
	}
	f.byReservation[rec.ReservationID] = rec.TokenHash
	f.byHash[rec.TokenHash] = rec
	return nil
}

func (f *fakeTokens) GetByHash(_ context.Context, hash string) (model.CheckinToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.byHash[hash]
	if !ok {
		return model.CheckinToken{}, repository.ErrTokenNotFound
	}
	return rec, nil
}

func (f *fakeTokens) Consume(_ context.Context, hash, partnerID string, now time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.byHash[hash]
	if !ok || rec.ConsumedAt != nil || !now.Before(rec.ExpiresAt) {
		return repository.ErrTokenConsumed
	}
	rec.ConsumedAt = &now
	rec.ConsumedBy = &partnerID
	f.byHash[hash] = rec
	return nil
}

// fakeAudit collects log entries for assertions.
type fakeAudit struct {
	mu      sync.Mutex
	entries []repository.LogEntry
}

func (f *fakeAudit) Record(_ context.Context, e repository.LogEntry) {
	f.mu.Lock()
	f.entries = append(f.entries, e)
	f.mu.Unlock()
}

func (f *fakeAudit) last() (repository.LogEntry, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.entries) == 0 {
		return repository.LogEntry{}, false
	}
	return f.entries[len(f.entries)-1], true
}

const (
	participantID = "11111111-1111-1111-1111-111111111111"
	reservationID = "22222222-2222-2222-2222-222222222222"
	hostID        = "33333333-3333-3333-3333-333333333333"
)

// fixture wires a service around in-memory stores with a controllable
// clock.  The slot starts one hour from base and runs for two hours, so
// base sits comfortably inside the check-in window.
func fixture(t *testing.T) (*Service, *fakeReservations, *fakeTokens, *fakeAudit, time.Time) {
	t.Helper()
	base := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	res := &fakeReservations{details: map[string]model.ReservationDetail{
		reservationID: {
			Reservation: model.Reservation{
				ID:         reservationID,
				UserID:     participantID,
				SlotID:     7,
				ActivityID: 3,
			},
			Slot: model.Slot{
				ID:         7,
				ActivityID: 3,
				StartsAt:   base.Add(time.Hour),
				EndsAt:     base.Add(3 * time.Hour),
			},
			Activity: model.Activity{ID: 3, Name: "Pottery Workshop", HostID: hostID},
			Participant: model.Profile{
				ID:       participantID,
				FullName: "Dana Reyes",
			},
		},
	}}
	tokens := newFakeTokens()
	audit := &fakeAudit{}
	svc := NewService(res, tokens, audit, 5*time.Minute)
	svc.now = func() time.Time { return base }
	return svc, res, tokens, audit, base
}

func TestIssueReturnsTokenWithTTLExpiry(t *testing.T) {
	t.Parallel()
	svc, _, tokens, audit, base := fixture(t)

	issued, err := svc.Issue(context.Background(), participantID, reservationID, Meta{})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if issued.Token == "" {
		t.Fatal("expected a non-empty token")
	}
	if want := base.Add(5 * time.Minute); !issued.ExpiresAt.Equal(want) {
		t.Fatalf("ExpiresAt = %v, want %v", issued.ExpiresAt, want)
	}
	if _, err := tokens.GetByHash(context.Background(), utils.HashToken(issued.Token)); err != nil {
		t.Fatalf("stored token not found by hash: %v", err)
	}
	if e, ok := audit.last(); !ok || e.Action != model.LogActionTokenGenerated || e.Result != model.LogResultSuccess {
		t.Fatalf("unexpected audit entry: %+v", e)
	}
}

func TestIssueHidesForeignAndMissingReservations(t *testing.T) {
	t.Parallel()
	svc, _, _, _, _ := fixture(t)

	// Someone else's reservation and a nonexistent one must be
	// indistinguishable to the caller.
	if _, err := svc.Issue(context.Background(), "not-the-owner", reservationID, Meta{}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("foreign reservation: got %v, want ErrForbidden", err)
	}
	if _, err := svc.Issue(context.Background(), participantID, "no-such-id", Meta{}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("missing reservation: got %v, want ErrForbidden", err)
	}
}

func TestIssueRejectsCheckedInReservation(t *testing.T) {
	t.Parallel()
	svc, res, _, _, base := fixture(t)

	when := base.Add(-time.Minute)
	d := res.details[reservationID]
	d.Reservation.CheckedInAt = &when
	res.details[reservationID] = d

	if _, err := svc.Issue(context.Background(), participantID, reservationID, Meta{}); !errors.Is(err, ErrAlreadyCheckedIn) {
		t.Fatalf("got %v, want ErrAlreadyCheckedIn", err)
	}
}

func TestIssueRejectsEndedSlot(t *testing.T) {
	t.Parallel()
	svc, _, _, _, base := fixture(t)
	svc.now = func() time.Time { return base.Add(4 * time.Hour) }

	if _, err := svc.Issue(context.Background(), participantID, reservationID, Meta{}); !errors.Is(err, ErrSlotEnded) {
		t.Fatalf("got %v, want ErrSlotEnded", err)
	}
}

func TestRedeemSucceedsOnceThenConflicts(t *testing.T) {
	t.Parallel()
	svc, _, _, audit, base := fixture(t)

	issued, err := svc.Issue(context.Background(), participantID, reservationID, Meta{})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	got, err := svc.Redeem(context.Background(), hostID, issued.Token, Meta{})
	if err != nil {
		t.Fatalf("Redeem: %v", err)
	}
	if got.ReservationID != reservationID || got.ParticipantName != "Dana Reyes" {
		t.Fatalf("unexpected result: %+v", got)
	}
	if !got.CheckedInAt.Equal(base) {
		t.Fatalf("CheckedInAt = %v, want %v", got.CheckedInAt, base)
	}
	if e, ok := audit.last(); !ok || e.Action != model.LogActionValidate || e.Result != model.LogResultSuccess {
		t.Fatalf("unexpected audit entry: %+v", e)
	}

	// A second scan of the same token observes the consumed state.
	if _, err := svc.Redeem(context.Background(), hostID, issued.Token, Meta{}); !errors.Is(err, ErrTokenConsumed) {
		t.Fatalf("second redeem: got %v, want ErrTokenConsumed", err)
	}
}

func TestRedeemConcurrentScansOneWinner(t *testing.T) {
	t.Parallel()
	svc, _, _, _, _ := fixture(t)

	issued, err := svc.Issue(context.Background(), participantID, reservationID, Meta{})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	const scans = 16
	errs := make(chan error, scans)
	var start sync.WaitGroup
	start.Add(1)
	for i := 0; i < scans; i++ {
		go func() {
			start.Wait()
			_, err := svc.Redeem(context.Background(), hostID, issued.Token, Meta{})
			errs <- err
		}()
	}
	start.Done()

	var ok, conflict int
	for i := 0; i < scans; i++ {
		switch err := <-errs; {
		case err == nil:
			ok++
		case errors.Is(err, ErrTokenConsumed):
			conflict++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if ok != 1 || conflict != scans-1 {
		t.Fatalf("got %d successes and %d conflicts, want exactly 1 and %d", ok, conflict, scans-1)
	}
}

func TestRedeemExpiryBoundary(t *testing.T) {
	t.Parallel()
	svc, _, _, _, _ := fixture(t)

	issued, err := svc.Issue(context.Background(), participantID, reservationID, Meta{})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	// One millisecond before expiry the token is still live.
	svc.now = func() time.Time { return issued.ExpiresAt.Add(-time.Millisecond) }
	if _, err := svc.Verify(context.Background(), hostID, issued.Token, Meta{}); err != nil {
		t.Fatalf("verify just before expiry: %v", err)
	}

	// At the expiry instant it is already dead.
	svc.now = func() time.Time { return issued.ExpiresAt }
	if _, err := svc.Redeem(context.Background(), hostID, issued.Token, Meta{}); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("at expiry: got %v, want ErrTokenExpired", err)
	}
}

func TestIssueSupersedesPreviousToken(t *testing.T) {
	t.Parallel()
	svc, _, _, _, _ := fixture(t)

	first, err := svc.Issue(context.Background(), participantID, reservationID, Meta{})
	if err != nil {
		t.Fatalf("first Issue: %v", err)
	}
	second, err := svc.Issue(context.Background(), participantID, reservationID, Meta{})
	if err != nil {
		t.Fatalf("second Issue: %v", err)
	}
	if first.Token == second.Token {
		t.Fatal("regenerated token must differ")
	}

	// The superseded token no longer resolves; only the latest is live.
	if _, err := svc.Redeem(context.Background(), hostID, first.Token, Meta{}); !errors.Is(err, ErrTokenNotFound) {
		t.Fatalf("superseded token: got %v, want ErrTokenNotFound", err)
	}
	if _, err := svc.Redeem(context.Background(), hostID, second.Token, Meta{}); err != nil {
		t.Fatalf("latest token: %v", err)
	}
}

func TestRedeemRejectsForeignHost(t *testing.T) {
	t.Parallel()
	svc, _, _, audit, _ := fixture(t)

	issued, err := svc.Issue(context.Background(), participantID, reservationID, Meta{})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := svc.Redeem(context.Background(), "other-partner", issued.Token, Meta{}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("got %v, want ErrForbidden", err)
	}
	if e, ok := audit.last(); !ok || e.Result != model.LogResultInvalidHost {
		t.Fatalf("unexpected audit entry: %+v", e)
	}
}

func TestRedeemOutsideWindow(t *testing.T) {
	t.Parallel()
	svc, res, _, _, base := fixture(t)

	// Push the slot out so that check-in has not opened yet.
	d := res.details[reservationID]
	d.Slot.StartsAt = base.Add(WindowBefore + 2*time.Hour)
	d.Slot.EndsAt = base.Add(WindowBefore + 4*time.Hour)
	res.details[reservationID] = d

	issued, err := svc.Issue(context.Background(), participantID, reservationID, Meta{})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := svc.Redeem(context.Background(), hostID, issued.Token, Meta{}); !errors.Is(err, ErrOutsideWindow) {
		t.Fatalf("got %v, want ErrOutsideWindow", err)
	}
}

func TestVerifyDoesNotConsume(t *testing.T) {
	t.Parallel()
	svc, _, _, _, _ := fixture(t)

	issued, err := svc.Issue(context.Background(), participantID, reservationID, Meta{})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	for i := 0; i < 3; i++ {
		if _, err := svc.Verify(context.Background(), hostID, issued.Token, Meta{}); err != nil {
			t.Fatalf("verify #%d: %v", i+1, err)
		}
	}
	// Still redeemable after repeated peeks.
	if _, err := svc.Redeem(context.Background(), hostID, issued.Token, Meta{}); err != nil {
		t.Fatalf("redeem after verifies: %v", err)
	}
}

func TestForgedTokenNotFound(t *testing.T) {
	t.Parallel()
	svc, _, _, audit, _ := fixture(t)

	if _, err := svc.Verify(context.Background(), hostID, "completely-made-up", Meta{}); !errors.Is(err, ErrTokenNotFound) {
		t.Fatalf("got %v, want ErrTokenNotFound", err)
	}
	if e, ok := audit.last(); !ok || e.Result != model.LogResultInvalidToken {
		t.Fatalf("unexpected audit entry: %+v", e)
	}
}
