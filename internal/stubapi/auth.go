package stubapi

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/storefront-client/internal/utils"
)

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Health reports liveness.
func (s *Server) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}

// Login verifies credentials, opens a cookie session and issues a JWT.
// The token is always exposed through the X-Auth-Token header and,
// depending on configuration, also as a top-level body field.
func (s *Server) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid body"})
	}
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "email/password required"})
	}

	u := s.store.userByEmail(req.Email)
	if u == nil || !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "invalid email or password"})
	}

	sid := uuid.NewString()
	s.store.createSession(sid, u.ID)
	c.SetCookie(&http.Cookie{
		Name:     sessionCookie,
		Value:    sid,
		Path:     "/",
		HttpOnly: true,
		Expires:  time.Now().Add(24 * time.Hour),
	})

	access, err := utils.NewAccessToken(s.cfg.JWTSecret, u.ID, u.Email, s.cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "issue token failed"})
	}
	c.Response().Header().Set("X-Auth-Token", access.Token)

	body := echo.Map{"user": u}
	if s.cfg.TokenInBody {
		body["token"] = access.Token
	}
	return c.JSON(http.StatusOK, body)
}

// Profile returns the authenticated user's record.
func (s *Server) Profile(c echo.Context) error {
	uid := s.identify(c)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "not authenticated"})
	}
	u := s.store.userByID(uid)
	if u == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unknown user"})
	}
	return c.JSON(http.StatusOK, echo.Map{"user": u})
}

// Logout tears down the cookie session. The response body is empty on
// purpose; the client must not choke on it.
func (s *Server) Logout(c echo.Context) error {
	if cookie, err := c.Cookie(sessionCookie); err == nil && cookie.Value != "" {
		s.store.deleteSession(cookie.Value)
	}
	c.SetCookie(&http.Cookie{Name: sessionCookie, Value: "", Path: "/", MaxAge: -1})
	return c.NoContent(http.StatusOK)
}
