package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/realmeet/checkin-service/internal/config"
	"github.com/realmeet/checkin-service/internal/middleware"
	"github.com/realmeet/checkin-service/internal/repository"
	"github.com/realmeet/checkin-service/internal/utils"
)

// AuthHandler bundles dependencies for partner (staff) authentication.
// Only business accounts may log in here; participants never authenticate
// against this service directly, their access tokens are minted by the
// platform's auth system.
type AuthHandler struct {
	Cfg      config.Config
	Profiles *repository.ProfileRepo
	Sessions *repository.SessionRepo
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(cfg config.Config, profiles *repository.ProfileRepo, sessions *repository.SessionRepo) *AuthHandler {
	if profiles == nil || sessions == nil {
		panic("nil repository passed to NewAuthHandler")
	}
	return &AuthHandler{Cfg: cfg, Profiles: profiles, Sessions: sessions}
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles POST /api/auth/login.  It verifies a business account's
// credentials, issues a partner session token and records its hash for
// audit and revocation.  Unknown emails, individual accounts and wrong
// passwords all yield the same 401 so accounts are not enumerable.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}

	ctx := c.Request().Context()
	p, err := h.Profiles.GetBusinessByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !utils.VerifyPassword(p.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	session, err := utils.NewPartnerSessionToken(h.Cfg.PartnerSecret, p.ID, h.Cfg.PartnerSessionHrs)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue session failed"})
	}
	if err := h.Sessions.Store(ctx, p.ID, utils.HashToken(session.Token), session.Exp,
		c.Request().UserAgent(), c.RealIP()); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save session failed"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"token":   session.Token,
		"expires": session.Exp.Format(time.RFC3339),
		"partner": echo.Map{
			"id":            p.ID,
			"name":          p.FullName,
			"business_name": p.BusinessName,
		},
	})
}

// Logout handles POST /api/auth/logout.  It revokes the presented session
// server-side; the JWT itself becomes useless immediately even though it
// has not expired.
func (h *AuthHandler) Logout(c echo.Context) error {
	auth := c.Request().Header.Get("Authorization")
	raw := strings.TrimPrefix(auth, "Bearer ")
	if raw == "" || raw == auth {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing session token"})
	}
	if err := h.Sessions.RevokeByHash(c.Request().Context(), utils.HashToken(raw)); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "revoke failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// Me handles GET /api/auth/me.  It returns the authenticated partner's
// profile; the staff SPA calls it on load to decide whether to show the
// login screen.
func (h *AuthHandler) Me(c echo.Context) error {
	p, ok := middleware.PartnerFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"partner": echo.Map{
			"id":            p.ID,
			"name":          p.FullName,
			"business_name": p.BusinessName,
			"logo_url":      p.AvatarURL,
		},
	})
}
