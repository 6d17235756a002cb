// Package presenter implements the client-side half of the check-in flow:
// it requests a token for one reservation, exposes it for rendering as a
// scannable payload, counts down to expiry at one-second resolution, and
// regenerates on demand.  It performs no server mutation beyond the
// issuance call itself.
package presenter

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// State enumerates the presenter lifecycle.  Ready moves to Expired purely
// by time; Error and Expired only leave via Regenerate.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateReady
	StateError
	StateExpired
)

// String returns a short name for logging and tests.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateError:
		return "error"
	case StateExpired:
		return "expired"
	}
	return "unknown"
}

// Ticket is the issuance result the presenter displays.
type Ticket struct {
	Token     string
	ExpiresAt time.Time
}

// Issuer requests a fresh token for a reservation.  The production
// implementation is Client; tests substitute fakes.
type Issuer interface {
	IssueToken(ctx context.Context, reservationID string) (Ticket, error)
}

// Snapshot is an immutable view of presenter state handed to the change
// callback and returned by Snapshot().  Remaining is only meaningful in
// StateReady and is clamped at zero.
type Snapshot struct {
	State     State
	Token     string
	ExpiresAt time.Time
	Remaining time.Duration
	Err       string
}

// Countdown renders Remaining as M:SS, the format shown under the code
// ("5:00" down to "0:00").
func (s Snapshot) Countdown() string { return FormatRemaining(s.Remaining) }

// Presenter drives one displayed token.  All transitions happen under a
// single mutex; the issuance call is the only suspension point and is
// guarded by a generation counter so a stale in-flight response never
// overwrites a newer token (last write wins).
type Presenter struct {
	issuer        Issuer
	reservationID string
	onChange      func(Snapshot)

	// injectable for deterministic tests
	now      func() time.Time
	schedule func(d time.Duration, f func()) (cancel func())

	mu          sync.Mutex
	state       State
	ticket      Ticket
	errMsg      string
	gen         uint64
	cancelTimer func()
	closed      bool
}

// New constructs a presenter for one reservation.  onChange is invoked on
// every state change and on every countdown tick; it may be nil.  The
// presenter starts in StateIdle; call Start to fetch the first token.
func New(issuer Issuer, reservationID string, onChange func(Snapshot)) *Presenter {
	if issuer == nil {
		panic("nil issuer passed to presenter.New")
	}
	if onChange == nil {
		onChange = func(Snapshot) {}
	}
	return &Presenter{
		issuer:        issuer,
		reservationID: reservationID,
		onChange:      onChange,
		now:           time.Now,
		schedule: func(d time.Duration, f func()) func() {
			t := time.AfterFunc(d, f)
			return func() { t.Stop() }
		},
	}
}

// Start begins the first issuance.  Calling Start more than once is
// equivalent to Regenerate.
func (p *Presenter) Start(ctx context.Context) { p.Regenerate(ctx) }

// Regenerate requests a fresh token from any state.  The previously
// displayed token is superseded server-side by the new issuance, so
// dropping it here is safe even while it is still nominally valid.
func (p *Presenter) Regenerate(ctx context.Context) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.stopTimerLocked()
	p.gen++
	gen := p.gen
	p.state = StateLoading
	p.errMsg = ""
	snap := p.snapshotLocked()
	p.mu.Unlock()

	p.onChange(snap)
	go p.fetch(ctx, gen)
}

// Close tears the presenter down: the countdown timer is cancelled and any
// in-flight issuance result is dropped.
func (p *Presenter) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	p.stopTimerLocked()
	p.gen++ // orphan any in-flight fetch
}

// Snapshot returns the current view.  Remaining is recomputed from the
// clock on every call, so it is accurate even between ticks.
func (p *Presenter) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshotLocked()
}

func (p *Presenter) fetch(ctx context.Context, gen uint64) {
	ticket, err := p.issuer.IssueToken(ctx, p.reservationID)

	p.mu.Lock()
	if p.closed || gen != p.gen {
		// A newer issuance superseded this one, or the presenter was torn
		// down while the request was in flight.  Drop the result.
		p.mu.Unlock()
		return
	}
	if err != nil {
		p.state = StateError
		p.errMsg = err.Error()
		snap := p.snapshotLocked()
		p.mu.Unlock()
		p.onChange(snap)
		return
	}
	p.ticket = ticket
	if !p.now().Before(ticket.ExpiresAt) {
		// Dead on arrival (clock skew or a stalled response).  Never show
		// Ready for a token that can no longer be redeemed.
		p.state = StateExpired
		snap := p.snapshotLocked()
		p.mu.Unlock()
		p.onChange(snap)
		return
	}
	p.state = StateReady
	p.cancelTimer = p.schedule(time.Second, func() { p.tick(gen) })
	snap := p.snapshotLocked()
	p.mu.Unlock()
	p.onChange(snap)
}

// tick fires once per second while a token is displayed.  When the
// remaining time reaches zero the presenter enters StateExpired and the
// chain stops; a manual Regenerate restarts it.
func (p *Presenter) tick(gen uint64) {
	p.mu.Lock()
	if p.closed || gen != p.gen || p.state != StateReady {
		p.mu.Unlock()
		return
	}
	if !p.now().Before(p.ticket.ExpiresAt) {
		p.state = StateExpired
		p.cancelTimer = nil
		snap := p.snapshotLocked()
		p.mu.Unlock()
		p.onChange(snap)
		return
	}
	p.cancelTimer = p.schedule(time.Second, func() { p.tick(gen) })
	snap := p.snapshotLocked()
	p.mu.Unlock()
	p.onChange(snap)
}

func (p *Presenter) stopTimerLocked() {
	if p.cancelTimer != nil {
		p.cancelTimer()
		p.cancelTimer = nil
	}
}

func (p *Presenter) snapshotLocked() Snapshot {
	snap := Snapshot{State: p.state, Err: p.errMsg}
	if p.state == StateReady || p.state == StateExpired {
		snap.Token = p.ticket.Token
		snap.ExpiresAt = p.ticket.ExpiresAt
	}
	if p.state == StateReady {
		if rem := p.ticket.ExpiresAt.Sub(p.now()); rem > 0 {
			snap.Remaining = rem
		}
	}
	return snap
}

// FormatRemaining renders a duration as M:SS with seconds zero-padded.
// Negative durations render as "0:00".
func FormatRemaining(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d.Round(time.Second) / time.Second)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
