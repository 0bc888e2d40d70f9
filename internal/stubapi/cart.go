package stubapi

import (
	"net/http"
	"regexp"

	"github.com/labstack/echo/v4"
)

var objectIDPattern = regexp.MustCompile(`^[0-9a-fA-F]{24}$`)

type addToCartReq struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type updateCartReq struct {
	Quantity int `json:"quantity"`
}

// GetCart returns the authenticated user's cart lines.
func (s *Server) GetCart(c echo.Context) error {
	uid := s.identify(c)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "not authenticated"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": s.store.cart(uid)})
}

// AddToCart merges a product into the cart.
func (s *Server) AddToCart(c echo.Context) error {
	uid := s.identify(c)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "not authenticated"})
	}
	var req addToCartReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid body"})
	}
	if !objectIDPattern.MatchString(req.ProductID) {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid product id"})
	}
	if req.Quantity < 1 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "quantity must be positive"})
	}
	if !s.store.addToCart(uid, req.ProductID, req.Quantity) {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "product not found"})
	}
	if s.cfg.EmptyMutationBodies {
		return c.NoContent(http.StatusCreated)
	}
	return c.JSON(http.StatusCreated, echo.Map{})
}

// UpdateCartItem sets a line's quantity.
func (s *Server) UpdateCartItem(c echo.Context) error {
	uid := s.identify(c)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "not authenticated"})
	}
	productID := c.Param("productId")
	if !objectIDPattern.MatchString(productID) {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid product id"})
	}
	var req updateCartReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid body"})
	}
	if req.Quantity < 1 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "quantity must be positive"})
	}
	if !s.store.updateCart(uid, productID, req.Quantity) {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "item not in cart"})
	}
	if s.cfg.EmptyMutationBodies {
		return c.NoContent(http.StatusOK)
	}
	return c.JSON(http.StatusOK, echo.Map{})
}

// RemoveCartItem drops a line. Removing an absent line is not an error.
func (s *Server) RemoveCartItem(c echo.Context) error {
	uid := s.identify(c)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "not authenticated"})
	}
	productID := c.Param("productId")
	if !objectIDPattern.MatchString(productID) {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid product id"})
	}
	s.store.removeFromCart(uid, productID)
	if s.cfg.EmptyMutationBodies {
		return c.NoContent(http.StatusOK)
	}
	return c.JSON(http.StatusOK, echo.Map{})
}
