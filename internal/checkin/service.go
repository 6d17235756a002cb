package checkin

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/realmeet/checkin-service/internal/model"
	"github.com/realmeet/checkin-service/internal/repository"
	"github.com/realmeet/checkin-service/internal/utils"
)

// WindowBefore is how long before a slot's start time check-in opens.
// Check-in closes when the slot ends.
const WindowBefore = 24 * time.Hour

// ReservationStore provides the reservation rows the service decides on.
// The production implementation is repository.ReservationRepo.
type ReservationStore interface {
	GetDetail(ctx context.Context, id string) (model.ReservationDetail, error)
}

// TokenStore persists issued tokens.  Supersede keeps at most one token
// per reservation, GetByHash resolves a presented raw value, and Consume
// is the single atomic redemption point (conditional update on
// consumed_at).  The production implementation is
// repository.CheckinTokenRepo.
type TokenStore interface {
	Supersede(ctx context.Context, rec model.CheckinToken) error
	GetByHash(ctx context.Context, hash string) (model.CheckinToken, error)
	Consume(ctx context.Context, hash, partnerID string, now time.Time) error
}

// AuditLog records check-in activity.  Implementations must be
// best-effort; Record has no error return on purpose.
type AuditLog interface {
	Record(ctx context.Context, e repository.LogEntry)
}

// Meta carries request metadata into the audit trail.
type Meta struct {
	IP        string
	UserAgent string
}

// IssuedToken is the issuance result handed back to the participant: the
// raw token value (shown once, rendered as a QR payload) and its absolute
// expiry.
type IssuedToken struct {
	Token     string
	ExpiresAt time.Time
}

// RedeemResult reports a successful redemption to staff tooling and to
// event consumers.
type RedeemResult struct {
	ReservationID   string
	ParticipantID   string
	ParticipantName string
	SlotID          uint64
	ActivityID      uint64
	ActivityName    string
	CheckedInAt     time.Time
}

// Service implements the token issuer and redeemer over injected stores.
// It holds no mutable state of its own; every invariant is enforced at the
// storage layer, so concurrent requests need no additional locking.
type Service struct {
	reservations ReservationStore
	tokens       TokenStore
	audit        AuditLog
	ttl          time.Duration

	now func() time.Time // overridable in tests
}

// NewService constructs a Service.  ttl is the process-wide token
// lifetime; every issued token expires exactly ttl after issuance.
func NewService(reservations ReservationStore, tokens TokenStore, audit AuditLog, ttl time.Duration) *Service {
	if reservations == nil || tokens == nil || audit == nil {
		panic("nil dependency passed to checkin.NewService")
	}
	return &Service{
		reservations: reservations,
		tokens:       tokens,
		audit:        audit,
		ttl:          ttl,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// TTL returns the configured token lifetime.
func (s *Service) TTL() time.Duration { return s.ttl }

// Issue mints a fresh token for one reservation on behalf of its owner.
// Any previously issued, unconsumed token for the same reservation is
// superseded and becomes unredeemable.  A reservation that does not exist
// or belongs to someone else yields ErrForbidden either way, so the
// endpoint cannot be used to enumerate reservations.
func (s *Service) Issue(ctx context.Context, callerID, reservationID string, meta Meta) (IssuedToken, error) {
	detail, err := s.reservations.GetDetail(ctx, reservationID)
	if err != nil {
		if errors.Is(err, repository.ErrReservationNotFound) {
			return IssuedToken{}, ErrForbidden
		}
		return IssuedToken{}, err
	}
	if detail.Reservation.UserID != callerID {
		return IssuedToken{}, ErrForbidden
	}
	if detail.Reservation.CheckedInAt != nil {
		return IssuedToken{}, ErrAlreadyCheckedIn
	}
	now := s.now()
	if now.After(detail.Slot.EndsAt) {
		return IssuedToken{}, ErrSlotEnded
	}

	raw, err := utils.NewOpaqueToken()
	if err != nil {
		return IssuedToken{}, err
	}
	rec := model.CheckinToken{
		ReservationID: detail.Reservation.ID,
		TokenHash:     utils.HashToken(raw),
		IssuedAt:      now,
		ExpiresAt:     now.Add(s.ttl),
	}
	if err := s.tokens.Supersede(ctx, rec); err != nil {
		return IssuedToken{}, err
	}

	s.record(ctx, model.LogActionTokenGenerated, model.LogResultSuccess, &detail, &callerID, meta,
		fmt.Sprintf(`{"expires_at":%q}`, rec.ExpiresAt.Format(time.RFC3339)))

	return IssuedToken{Token: raw, ExpiresAt: rec.ExpiresAt}, nil
}

// Verify resolves a scanned token without consuming it, so staff can see
// who is at the door before confirming.  It applies the same checks as
// Redeem minus the mutation.
func (s *Service) Verify(ctx context.Context, partnerID, rawToken string, meta Meta) (model.ReservationDetail, error) {
	detail, _, err := s.inspect(ctx, partnerID, rawToken, model.LogActionScan, meta)
	if err != nil {
		return model.ReservationDetail{}, err
	}
	s.record(ctx, model.LogActionScan, model.LogResultSuccess, &detail, &partnerID, meta, "")
	return detail, nil
}

// Redeem consumes a token exactly once and marks the reservation checked
// in.  Of any number of concurrent attempts with the same token, at most
// one succeeds; the rest observe ErrTokenConsumed.
func (s *Service) Redeem(ctx context.Context, partnerID, rawToken string, meta Meta) (RedeemResult, error) {
	detail, tok, err := s.inspect(ctx, partnerID, rawToken, model.LogActionReject, meta)
	if err != nil {
		return RedeemResult{}, err
	}

	now := s.now()
	if err := s.tokens.Consume(ctx, tok.TokenHash, partnerID, now); err != nil {
		if errors.Is(err, repository.ErrTokenConsumed) {
			// Lost the race against a concurrent scan.
			s.record(ctx, model.LogActionReject, model.LogResultAlreadyCheckedIn, &detail, &partnerID, meta, "")
			return RedeemResult{}, ErrTokenConsumed
		}
		return RedeemResult{}, err
	}

	s.record(ctx, model.LogActionValidate, model.LogResultSuccess, &detail, &partnerID, meta, "")
	return RedeemResult{
		ReservationID:   detail.Reservation.ID,
		ParticipantID:   detail.Participant.ID,
		ParticipantName: detail.Participant.FullName,
		SlotID:          detail.Slot.ID,
		ActivityID:      detail.Activity.ID,
		ActivityName:    detail.Activity.Name,
		CheckedInAt:     now,
	}, nil
}

// inspect runs the shared pre-checks for Verify and Redeem: token lookup,
// expiry, prior consumption, host ownership, reservation state and the
// check-in window.  Failures are audited under the given action.
func (s *Service) inspect(ctx context.Context, partnerID, rawToken, action string, meta Meta) (model.ReservationDetail, model.CheckinToken, error) {
	fail := func(result string, detail *model.ReservationDetail, err error) (model.ReservationDetail, model.CheckinToken, error) {
		s.record(ctx, action, result, detail, &partnerID, meta, "")
		return model.ReservationDetail{}, model.CheckinToken{}, err
	}

	tok, err := s.tokens.GetByHash(ctx, utils.HashToken(rawToken))
	if err != nil {
		if errors.Is(err, repository.ErrTokenNotFound) {
			return fail(model.LogResultInvalidToken, nil, ErrTokenNotFound)
		}
		return model.ReservationDetail{}, model.CheckinToken{}, err
	}

	now := s.now()
	if !now.Before(tok.ExpiresAt) {
		return fail(model.LogResultExpired, nil, ErrTokenExpired)
	}
	if tok.ConsumedAt != nil {
		return fail(model.LogResultAlreadyCheckedIn, nil, ErrTokenConsumed)
	}

	detail, err := s.reservations.GetDetail(ctx, tok.ReservationID)
	if err != nil {
		if errors.Is(err, repository.ErrReservationNotFound) {
			return fail(model.LogResultNotFound, nil, ErrReservationNotFound)
		}
		return model.ReservationDetail{}, model.CheckinToken{}, err
	}
	if detail.Activity.HostID != partnerID {
		return fail(model.LogResultInvalidHost, &detail, ErrForbidden)
	}
	if detail.Reservation.CheckedInAt != nil {
		return fail(model.LogResultAlreadyCheckedIn, &detail, ErrAlreadyCheckedIn)
	}
	if now.Before(detail.Slot.StartsAt.Add(-WindowBefore)) || now.After(detail.Slot.EndsAt) {
		return fail(model.LogResultInvalidWindow, &detail, ErrOutsideWindow)
	}
	return detail, tok, nil
}

// record writes one audit row.  detail may be nil when the scan never
// resolved to a reservation (forged or superseded tokens).
func (s *Service) record(ctx context.Context, action, result string, detail *model.ReservationDetail, performedBy *string, meta Meta, metadata string) {
	e := repository.LogEntry{
		Action:      action,
		Result:      result,
		PerformedBy: performedBy,
		IPAddress:   meta.IP,
		UserAgent:   meta.UserAgent,
		Metadata:    metadata,
	}
	if detail != nil {
		id := detail.Reservation.ID
		slotID := detail.Slot.ID
		activityID := detail.Activity.ID
		e.ReservationID = &id
		e.SlotID = &slotID
		e.ActivityID = &activityID
	}
	s.audit.Record(ctx, e)
}
