package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/realmeet/checkin-service/internal/checkin"
	"github.com/realmeet/checkin-service/internal/queue"
	queue_publisher "github.com/realmeet/checkin-service/internal/service"
)

// StaffCheckinHandler serves the scanner endpoints staff use at the venue
// entrance: verify (peek at a scanned token without consuming it) and
// validate (redeem it).  Both require partner authentication.
type StaffCheckinHandler struct {
	Service *checkin.Service
}

// NewStaffCheckinHandler constructs a StaffCheckinHandler.
func NewStaffCheckinHandler(svc *checkin.Service) *StaffCheckinHandler {
	if svc == nil {
		panic("nil service passed to NewStaffCheckinHandler")
	}
	return &StaffCheckinHandler{Service: svc}
}

type tokenReq struct {
	Token string `json:"token"`
}

// Verify handles POST /api/checkin/verify.  It resolves the scanned token
// to participant and slot details without consuming it, so staff can eye
// the arrival before confirming.  The token is echoed back for the
// follow-up validate call.
func (h *StaffCheckinHandler) Verify(c echo.Context) error {
	partnerID, err := getPartnerID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body tokenReq
	if err := c.Bind(&body); err != nil || body.Token == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "token is required"})
	}

	meta := checkin.Meta{IP: c.RealIP(), UserAgent: c.Request().UserAgent()}
	detail, err := h.Service.Verify(c.Request().Context(), partnerID, body.Token, meta)
	if err != nil {
		return scanError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"status": "ready",
		"participant": echo.Map{
			"id":     detail.Reservation.ID,
			"name":   detail.Participant.FullName,
			"avatar": detail.Participant.AvatarURL,
		},
		"activity": echo.Map{
			"name":    detail.Activity.Name,
			"address": detail.Activity.Address + ", " + detail.Activity.City,
		},
		"slot": echo.Map{
			"starts_at": detail.Slot.StartsAt.UTC().Format(time.RFC3339),
			"ends_at":   detail.Slot.EndsAt.UTC().Format(time.RFC3339),
		},
		// Token returned for the validation step.
		"token": body.Token,
	})
}

// Validate handles POST /api/checkin/validate.  It redeems the token
// exactly once, marks the reservation checked in and announces the
// check-in on the message queue.  A concurrent duplicate scan receives a
// 409; only one redemption can ever succeed per token.
func (h *StaffCheckinHandler) Validate(c echo.Context) error {
	partnerID, err := getPartnerID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body tokenReq
	if err := c.Bind(&body); err != nil || body.Token == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "token is required"})
	}

	ctx := c.Request().Context()
	meta := checkin.Meta{IP: c.RealIP(), UserAgent: c.Request().UserAgent()}
	result, err := h.Service.Redeem(ctx, partnerID, body.Token, meta)
	if err != nil {
		return scanError(c, err)
	}

	// Best effort: a broker outage must not fail the check-in.
	_ = queue_publisher.PublishCheckinValidated(ctx, queue.CheckinValidatedEvent{
		ReservationID:   result.ReservationID,
		ParticipantID:   result.ParticipantID,
		ParticipantName: result.ParticipantName,
		SlotID:          result.SlotID,
		ActivityID:      result.ActivityID,
		ActivityName:    result.ActivityName,
		PartnerID:       partnerID,
		CheckedInAt:     result.CheckedInAt.UTC().Format(time.RFC3339),
	})

	return c.JSON(http.StatusOK, echo.Map{
		"success":       true,
		"message":       result.ParticipantName + " checked in",
		"checked_in_at": result.CheckedInAt.UTC().Format(time.RFC3339),
	})
}

// scanError maps service errors from verify/validate to HTTP responses.
// Each failure class gets a distinct status and message so staff tooling
// can tell a stale QR from a duplicate scan.
func scanError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, checkin.ErrTokenNotFound):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid token"})
	case errors.Is(err, checkin.ErrTokenExpired):
		return c.JSON(http.StatusGone, echo.Map{"error": "token expired"})
	case errors.Is(err, checkin.ErrTokenConsumed), errors.Is(err, checkin.ErrAlreadyCheckedIn):
		return c.JSON(http.StatusConflict, echo.Map{"error": "already checked in"})
	case errors.Is(err, checkin.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "reservation is not for your activities"})
	case errors.Is(err, checkin.ErrOutsideWindow):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "outside check-in window"})
	case errors.Is(err, checkin.ErrReservationNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "server error"})
}
