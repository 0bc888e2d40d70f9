package stubapi

import (
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// Config controls the stub's behavior, including the backend quirks the
// client is expected to tolerate.
type Config struct {
	JWTSecret    string
	AccessTTLMin int
	BcryptCost   int
	// EmptyMutationBodies makes cart mutations answer 200/201 with an
	// empty body, the way some production backends do.
	EmptyMutationBodies bool
	// TokenInBody includes the access token as a top-level "token"
	// field of the login response in addition to the X-Auth-Token
	// header.
	TokenInBody bool
}

// DefaultConfig returns settings suitable for local development.
func DefaultConfig() Config {
	return Config{
		JWTSecret:           "dev-secret",
		AccessTTLMin:        60,
		BcryptCost:          10,
		EmptyMutationBodies: true,
		TokenInBody:         true,
	}
}

// Server wires the store and config into echo handlers.
type Server struct {
	cfg   Config
	store *Store
}

// New builds an echo instance serving the storefront API surface over
// the given store.
func New(cfg Config, store *Store) *echo.Echo {
	s := &Server{cfg: cfg, store: store}
	e := echo.New()
	e.HideBanner = true

	e.GET("/healthz", s.Health)

	e.POST("/api/users/login", s.Login)
	e.POST("/api/users/logout", s.Logout)
	e.GET("/api/users/profile", s.Profile)

	e.GET("/api/cart", s.GetCart)
	e.POST("/api/cart", s.AddToCart)
	e.POST("/api/cart/update/:productId", s.UpdateCartItem)
	e.POST("/api/cart/remove/:productId", s.RemoveCartItem)

	e.GET("/api/products", s.ListProducts)
	e.GET("/api/products/:id", s.GetProduct)
	e.GET("/api/categories", s.ListCategories)

	return e
}

// sessionCookie is the cookie carrying the session id.
const sessionCookie = "sid"

// identify resolves the requesting user from a bearer JWT or the
// session cookie. Bearer wins when both are present. An empty return
// means the request is anonymous.
func (s *Server) identify(c echo.Context) string {
	auth := c.Request().Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		raw := strings.TrimPrefix(auth, "Bearer ")
		tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, echo.ErrUnauthorized
			}
			return []byte(s.cfg.JWTSecret), nil
		})
		if err == nil && tok.Valid {
			if claims, ok := tok.Claims.(jwt.MapClaims); ok {
				if sub, ok := claims["sub"].(string); ok && sub != "" {
					return sub
				}
			}
		}
	}
	if cookie, err := c.Cookie(sessionCookie); err == nil && cookie.Value != "" {
		return s.store.sessionUser(cookie.Value)
	}
	return ""
}
