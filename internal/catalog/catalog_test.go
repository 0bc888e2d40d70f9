package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/storefront-client/internal/api"
)

func newTestService(t *testing.T, handler http.Handler) *Service {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewService(api.NewClient(srv.URL))
}

func TestListProducts_QueryParams(t *testing.T) {
	var gotQuery map[string][]string
	svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		json.NewEncoder(w).Encode(map[string]any{
			"products": []any{}, "page": 2, "pages": 5, "total": 57,
		})
	}))

	page, err := svc.ListProducts(context.Background(), ListParams{
		Search:   "mug",
		Category: "kitchen",
		Page:     2,
		PageSize: 12,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"mug"}, gotQuery["search"])
	assert.Equal(t, []string{"kitchen"}, gotQuery["category"])
	assert.Equal(t, []string{"2"}, gotQuery["page"])
	assert.Equal(t, []string{"12"}, gotQuery["pageSize"])
	assert.Equal(t, 57, page.Total)
	assert.Equal(t, 5, page.Pages)
}

func TestListProducts_OmitsZeroParams(t *testing.T) {
	svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.URL.RawQuery)
		json.NewEncoder(w).Encode(map[string]any{"products": []any{}})
	}))

	_, err := svc.ListProducts(context.Background(), ListParams{})
	require.NoError(t, err)
}

func TestGetProduct_RejectsMalformedID(t *testing.T) {
	svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("request must not reach the server")
	}))

	_, err := svc.GetProduct(context.Background(), "not-an-id")
	require.Error(t, err)
}

func TestGetProduct_NotFound(t *testing.T) {
	svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"message": "product not found"})
	}))

	_, err := svc.GetProduct(context.Background(), "507f1f77bcf86cd799439011")
	require.Error(t, err)
	apiErr, ok := api.IsAPIError(err)
	require.True(t, ok)
	assert.True(t, apiErr.IsNotFound())
	assert.Equal(t, "product not found", apiErr.Message)
}

func TestListCategories(t *testing.T) {
	svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"categories": []map[string]string{
				{"_id": "1", "name": "Apparel", "slug": "apparel"},
				{"_id": "2", "name": "Mugs", "slug": "mugs"},
			},
		})
	}))

	cats, err := svc.ListCategories(context.Background())
	require.NoError(t, err)
	require.Len(t, cats, 2)
	assert.Equal(t, "Apparel", cats[0].Name)
}
