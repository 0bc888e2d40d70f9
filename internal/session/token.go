package session

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const headerAuthToken = "X-Auth-Token"

// scanToken looks for a session token in a login response. Backends put
// it in different places, so a fixed precedence order is applied: body
// token, body accessToken, nested data/session/user objects, then the
// Authorization response header stripped of its Bearer prefix, then the
// X-Auth-Token header. The first non-empty match wins.
func scanToken(raw json.RawMessage, header http.Header) string {
	var body struct {
		Token       string `json:"token"`
		AccessToken string `json:"accessToken"`
		Data        struct {
			Token string `json:"token"`
		} `json:"data"`
		Session struct {
			Token string `json:"token"`
		} `json:"session"`
		User struct {
			Token string `json:"token"`
		} `json:"user"`
	}
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &body)
	}
	for _, t := range []string{
		body.Token,
		body.AccessToken,
		body.Data.Token,
		body.Session.Token,
		body.User.Token,
	} {
		if t != "" {
			return t
		}
	}
	if auth := header.Get("Authorization"); auth != "" {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	return header.Get(headerAuthToken)
}

// tokenExpired reports whether a persisted token is a JWT whose exp
// claim is in the past. Opaque tokens (anything that does not parse as
// a JWT, or carries no exp) are never considered expired here; the
// backend is the judge of those.
func tokenExpired(token string) bool {
	tok, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return false
	}
	exp, err := tok.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(time.Now())
}
