package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/realmeet/checkin-service/internal/repository"
)

// StaffSlotsHandler serves the dashboard endpoints staff use to follow
// check-in progress: live status of one slot and the day's schedule.
type StaffSlotsHandler struct {
	Slots        *repository.SlotRepo
	Reservations *repository.ReservationRepo
}

// NewStaffSlotsHandler constructs a StaffSlotsHandler.
func NewStaffSlotsHandler(slots *repository.SlotRepo, reservations *repository.ReservationRepo) *StaffSlotsHandler {
	if slots == nil || reservations == nil {
		panic("nil repository passed to NewStaffSlotsHandler")
	}
	return &StaffSlotsHandler{Slots: slots, Reservations: reservations}
}

// SlotStatus handles GET /api/checkin/slot-status/:slotId.  It returns
// check-in counts and the participant roster for one slot.  Only the
// partner hosting the slot's activity may view it.
func (h *StaffSlotsHandler) SlotStatus(c echo.Context) error {
	partnerID, err := getPartnerID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	slotID, err := strconv.ParseUint(c.Param("slotId"), 10, 64)
	if err != nil || slotID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid slot id"})
	}

	ctx := c.Request().Context()
	sw, err := h.Slots.GetWithActivity(ctx, slotID)
	if err != nil {
		if errors.Is(err, repository.ErrSlotNotFound) {
			// Same response as a foreign slot: not enumerable.
			return c.JSON(http.StatusForbidden, echo.Map{"error": "access denied"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if sw.Activity.HostID != partnerID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "access denied"})
	}

	participants, err := h.Reservations.ListBySlot(ctx, slotID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	total, checkedIn, err := h.Reservations.CountBySlot(ctx, slotID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if participants == nil {
		participants = []repository.ParticipantStatus{}
	}

	return c.JSON(http.StatusOK, echo.Map{
		"slot": echo.Map{
			"id":               sw.Slot.ID,
			"starts_at":        sw.Slot.StartsAt.UTC().Format(time.RFC3339),
			"ends_at":          sw.Slot.EndsAt.UTC().Format(time.RFC3339),
			"max_participants": sw.Slot.MaxParticipants,
		},
		"activity": echo.Map{"name": sw.Activity.Name},
		"stats": echo.Map{
			"total":      total,
			"checked_in": checkedIn,
			"remaining":  total - checkedIn,
		},
		"participants": participants,
	})
}

// TodaySlots handles GET /api/checkin/today-slots.  It lists the
// partner's slots starting today (UTC) with check-in counts, ordered by
// start time.
func (h *StaffSlotsHandler) TodaySlots(c echo.Context) error {
	partnerID, err := getPartnerID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx := c.Request().Context()
	now := time.Now().UTC()
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	to := from.Add(24 * time.Hour)

	slots, err := h.Slots.ListByHostBetween(ctx, partnerID, from, to)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	items := make([]echo.Map, 0, len(slots))
	for _, sw := range slots {
		total, checkedIn, err := h.Reservations.CountBySlot(ctx, sw.Slot.ID)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
		}
		items = append(items, echo.Map{
			"id":        sw.Slot.ID,
			"starts_at": sw.Slot.StartsAt.UTC().Format(time.RFC3339),
			"ends_at":   sw.Slot.EndsAt.UTC().Format(time.RFC3339),
			"activity": echo.Map{
				"id":      sw.Activity.ID,
				"name":    sw.Activity.Name,
				"address": sw.Activity.Address,
			},
			"stats": echo.Map{
				"total":      total,
				"checked_in": checkedIn,
				"max":        sw.Slot.MaxParticipants,
			},
		})
	}

	return c.JSON(http.StatusOK, echo.Map{"slots": items})
}
