package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/realmeet/checkin-service/internal/model"
	"github.com/realmeet/checkin-service/internal/repository"
	"github.com/realmeet/checkin-service/internal/utils"
)

// PartnerAuth authenticates staff requests.  A valid request carries a
// partner session JWT whose hash still matches a non-revoked row in
// partner_sessions and whose subject resolves to a business profile.  On
// success the partner id and profile are stored in the context under
// "partner_id" and "partner".  Revocation is checked on every request so a
// logged-out session dies immediately, not at JWT expiry.
func PartnerAuth(secret string, sessions *repository.SessionRepo, profiles *repository.ProfileRepo) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, echo.ErrUnauthorized
				}
				return []byte(secret), nil
			})
			if err != nil || !tok.Valid {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "session expired"})
			}
			claims, ok := tok.Claims.(jwt.MapClaims)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid claims"})
			}
			if typ, _ := claims["typ"].(string); typ != "partner_session" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token type"})
			}

			ctx := c.Request().Context()
			partnerID, err := sessions.Validate(ctx, utils.HashToken(raw))
			if err != nil {
				if errors.Is(err, repository.ErrSessionInvalid) {
					return c.JSON(http.StatusUnauthorized, echo.Map{"error": "session expired"})
				}
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
			}
			if sub, _ := claims["sub"].(string); sub != partnerID {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "session expired"})
			}

			partner, err := profiles.GetBusinessByID(ctx, partnerID)
			if err != nil {
				if errors.Is(err, repository.ErrProfileNotFound) {
					return c.JSON(http.StatusForbidden, echo.Map{"error": "partner account not found"})
				}
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
			}

			c.Set("partner_id", partner.ID)
			c.Set("partner", partner)
			return next(c)
		}
	}
}

// PartnerFromContext retrieves the authenticated partner profile stored by
// PartnerAuth.  The second return is false when the middleware did not run.
func PartnerFromContext(c echo.Context) (model.Profile, bool) {
	p, ok := c.Get("partner").(model.Profile)
	return p, ok
}
