package handler

import (
	"errors"

	"github.com/labstack/echo/v4"
)

// getUserID extracts the authenticated participant id stored in the
// context by the ParticipantAuth middleware.
func getUserID(c echo.Context) (string, error) {
	if s, ok := c.Get("user_id").(string); ok && s != "" {
		return s, nil
	}
	return "", errors.New("missing user_id in context")
}

// getPartnerID extracts the authenticated partner id stored in the
// context by the PartnerAuth middleware.
func getPartnerID(c echo.Context) (string, error) {
	if s, ok := c.Get("partner_id").(string); ok && s != "" {
		return s, nil
	}
	return "", errors.New("missing partner_id in context")
}
