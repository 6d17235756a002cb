package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/realmeet/checkin-service/internal/checkin"
)

// CheckinHandler serves the participant-facing issuance endpoint.  All
// decisions live in the injected checkin.Service; the handler only binds,
// authenticates and maps errors to HTTP statuses.
type CheckinHandler struct {
	Service *checkin.Service
}

// NewCheckinHandler constructs a CheckinHandler.
func NewCheckinHandler(svc *checkin.Service) *CheckinHandler {
	if svc == nil {
		panic("nil service passed to NewCheckinHandler")
	}
	return &CheckinHandler{Service: svc}
}

// GenerateToken handles POST /api/checkin/generate-token.  The request
// body names a reservation (slot_participant_id); the authenticated
// participant must own it.  On success it returns the raw token and its
// absolute expiry.  Each call supersedes any previously issued token for
// the same reservation.
func (h *CheckinHandler) GenerateToken(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body struct {
		SlotParticipantID string `json:"slot_participant_id"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.SlotParticipantID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "slot_participant_id is required"})
	}
	if _, err := uuid.Parse(body.SlotParticipantID); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid slot_participant_id"})
	}

	meta := checkin.Meta{IP: c.RealIP(), UserAgent: c.Request().UserAgent()}
	issued, err := h.Service.Issue(c.Request().Context(), userID, body.SlotParticipantID, meta)
	if err != nil {
		switch {
		case errors.Is(err, checkin.ErrForbidden):
			// Deliberately identical for missing and foreign reservations.
			return c.JSON(http.StatusForbidden, echo.Map{"error": "access denied"})
		case errors.Is(err, checkin.ErrAlreadyCheckedIn):
			return c.JSON(http.StatusConflict, echo.Map{"error": "already checked in"})
		case errors.Is(err, checkin.ErrSlotEnded):
			return c.JSON(http.StatusGone, echo.Map{"error": "slot has ended"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to generate token"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"token":      issued.Token,
		"expires_at": issued.ExpiresAt.UTC().Format(time.RFC3339),
	})
}
