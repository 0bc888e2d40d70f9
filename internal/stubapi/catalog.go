package stubapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

// ListProducts returns a filtered, paged product listing.
func (s *Server) ListProducts(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	pageSize, _ := strconv.Atoi(c.QueryParam("pageSize"))
	products, pages, total := s.store.listProducts(
		c.QueryParam("search"),
		c.QueryParam("category"),
		page, pageSize,
	)
	if page < 1 {
		page = 1
	}
	if products == nil {
		products = []Product{}
	}
	return c.JSON(http.StatusOK, echo.Map{
		"products": products,
		"page":     page,
		"pages":    pages,
		"total":    total,
	})
}

// GetProduct returns one product by id.
func (s *Server) GetProduct(c echo.Context) error {
	id := c.Param("id")
	if !objectIDPattern.MatchString(id) {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid product id"})
	}
	p, ok := s.store.product(id)
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "product not found"})
	}
	return c.JSON(http.StatusOK, p)
}

// ListCategories returns every category.
func (s *Server) ListCategories(c echo.Context) error {
	cats := s.store.listCategories()
	if cats == nil {
		cats = []Category{}
	}
	return c.JSON(http.StatusOK, echo.Map{"categories": cats})
}
