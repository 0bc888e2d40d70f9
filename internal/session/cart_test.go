package session

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testProductID = "507f1f77bcf86cd799439011"

// authedManager returns a manager whose session is already active via a
// persisted token, without any startup probe in flight.
func authedManager(t *testing.T, handler http.Handler, opts ...ManagerOption) *Manager {
	t.Helper()
	m, ms := newTestManager(t, handler, opts...)
	require.NoError(t, ms.Save(context.Background(), "tok"))
	m.Restore(context.Background())
	require.Equal(t, "tok", m.Token())
	return m
}

func TestAddItem_RequiresLogin(t *testing.T) {
	var hits atomic.Int32
	m, _ := newTestManager(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))

	res := m.AddItem(context.Background(), testProductID, 1)
	assert.False(t, res.Success)
	assert.True(t, res.LoginRequired)
	assert.Equal(t, int32(0), hits.Load(), "anonymous add must not reach the network")
}

func TestAddItem_ValidationShortCircuit(t *testing.T) {
	var hits atomic.Int32
	m := authedManager(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))

	for _, bad := range []string{
		"not-a-valid-id",
		"507f1f77bcf86cd79943901",   // 23 chars
		"507f1f77bcf86cd7994390111", // 25 chars
		"507f1f77bcf86cd79943901g",  // non-hex
		"",
	} {
		res := m.AddItem(context.Background(), bad, 1)
		assert.False(t, res.Success, "id %q must be rejected", bad)
		assert.False(t, res.LoginRequired)
		assert.NotEmpty(t, res.Message)
	}
	res := m.AddItem(context.Background(), testProductID, 0)
	assert.False(t, res.Success, "non-positive quantity must be rejected")

	assert.Equal(t, int32(0), hits.Load(), "validation failures must not issue requests")
}

func TestValidProductID(t *testing.T) {
	assert.True(t, ValidProductID(testProductID))
	assert.True(t, ValidProductID("ABCDEF0123456789abcdef01"))
	assert.False(t, ValidProductID("507f1f77bcf86cd79943901z"))
	assert.False(t, ValidProductID("short"))
}

func TestMutation_EmptyBodySuccess(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/cart/update/"+testProductID, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK) // empty body on purpose
	})
	mux.HandleFunc("GET /api/cart", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"items": []any{
			map[string]any{"product": map[string]any{"_id": testProductID}, "quantity": 3},
		}})
	})

	m := authedManager(t, mux)
	res := m.UpdateItem(context.Background(), testProductID, 3)
	require.True(t, res.Success, "2xx with empty body is a success")
	assert.Equal(t, 3, m.Cart().Count())
}

func TestMutation_EmptyBodyFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/cart/update/"+testProductID, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError) // empty body on purpose
	})

	m := authedManager(t, mux)
	res := m.UpdateItem(context.Background(), testProductID, 3)
	assert.False(t, res.Success, "5xx with empty body is a failure")
	assert.NotEmpty(t, res.Message)
	assert.Equal(t, 0, m.Cart().Count(), "failed mutation must not touch local state")
}

func TestMutation_ServerMessageSurfaced(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/cart", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusConflict, map[string]any{"message": "out of stock"})
	})

	m := authedManager(t, mux)
	res := m.AddItem(context.Background(), testProductID, 1)
	assert.False(t, res.Success)
	assert.Equal(t, "out of stock", res.Message)
}

func TestUpdateItem_ZeroQuantityRoutesToRemove(t *testing.T) {
	var mu sync.Mutex
	var paths []string

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/cart/remove/"+testProductID, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		paths = append(paths, r.URL.Path)
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("POST /api/cart/update/"+testProductID, func(w http.ResponseWriter, r *http.Request) {
		t.Error("update endpoint must not be called for quantity 0")
	})
	mux.HandleFunc("GET /api/cart", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"items": []any{}})
	})

	m := authedManager(t, mux)
	res := m.UpdateItem(context.Background(), testProductID, 0)
	require.True(t, res.Success)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, paths, 1)
	assert.Equal(t, "/api/cart/remove/"+testProductID, paths[0])
}

func TestMutation_AlwaysRefetches(t *testing.T) {
	var cartFetches atomic.Int32

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/cart", func(w http.ResponseWriter, r *http.Request) {
		// The mutation response lies about the cart; only the refetch
		// below carries the real state.
		writeJSON(w, http.StatusCreated, map[string]any{"items": []any{}})
	})
	mux.HandleFunc("GET /api/cart", func(w http.ResponseWriter, r *http.Request) {
		cartFetches.Add(1)
		writeJSON(w, http.StatusOK, map[string]any{"items": []any{
			map[string]any{"product": map[string]any{"_id": testProductID}, "quantity": 7},
		}})
	})

	m := authedManager(t, mux)
	res := m.AddItem(context.Background(), testProductID, 1)
	require.True(t, res.Success)
	assert.Equal(t, int32(1), cartFetches.Load(), "every successful mutation refetches the cart")
	assert.Equal(t, 7, m.Cart().Count(), "server truth wins over the mutation response")
}

func TestMutation_OptimisticFallbackWhenRefetchFails(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/cart", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})
	mux.HandleFunc("GET /api/cart", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	m := authedManager(t, mux)
	res := m.AddItem(context.Background(), testProductID, 2)
	require.True(t, res.Success)

	cart := m.Cart()
	require.Len(t, cart.Items, 1, "optimistic edit applies when the refetch fails")
	assert.Equal(t, testProductID, cart.Items[0].Product.ID)
	assert.Equal(t, 2, cart.Count())
}

func TestCountInvariant_AcrossMutations(t *testing.T) {
	// Server-side cart the handlers mutate; the client must track it
	// through refetches only.
	var mu sync.Mutex
	qty := map[string]int{}

	other := "507f191e810c19729de860ea"
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/cart", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ProductID string `json:"productId"`
			Quantity  int    `json:"quantity"`
		}
		_ = decodeJSON(r, &req)
		mu.Lock()
		qty[req.ProductID] += req.Quantity
		mu.Unlock()
		w.WriteHeader(http.StatusCreated)
	})
	mux.HandleFunc("POST /api/cart/update/{id}", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Quantity int `json:"quantity"`
		}
		_ = decodeJSON(r, &req)
		mu.Lock()
		qty[r.PathValue("id")] = req.Quantity
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("POST /api/cart/remove/{id}", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		delete(qty, r.PathValue("id"))
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("GET /api/cart", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		items := []any{}
		for id, q := range qty {
			items = append(items, map[string]any{"product": map[string]any{"_id": id}, "quantity": q})
		}
		mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]any{"items": items})
	})

	m := authedManager(t, mux)
	ctx := context.Background()

	checkInvariant := func() {
		cart := m.Cart()
		sum := 0
		for _, it := range cart.Items {
			sum += it.Quantity
		}
		assert.Equal(t, sum, cart.Count())
	}

	require.True(t, m.AddItem(ctx, testProductID, 2).Success)
	checkInvariant()
	assert.Equal(t, 2, m.Cart().Count())

	require.True(t, m.AddItem(ctx, other, 1).Success)
	checkInvariant()
	assert.Equal(t, 3, m.Cart().Count())

	require.True(t, m.UpdateItem(ctx, testProductID, 5).Success)
	checkInvariant()
	assert.Equal(t, 6, m.Cart().Count())

	require.True(t, m.RemoveItem(ctx, other).Success)
	checkInvariant()
	assert.Equal(t, 5, m.Cart().Count())

	require.True(t, m.UpdateItem(ctx, testProductID, 0).Success, "quantity 0 removes the line")
	checkInvariant()
	assert.Equal(t, 0, m.Cart().Count())
}

func TestMutations_SerializedUnderConcurrency(t *testing.T) {
	var inFlight, maxInFlight atomic.Int32

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/cart", func(w http.ResponseWriter, r *http.Request) {
		cur := inFlight.Add(1)
		if cur > maxInFlight.Load() {
			maxInFlight.Store(cur)
		}
		time.Sleep(5 * time.Millisecond)
		inFlight.Add(-1)
		w.WriteHeader(http.StatusCreated)
	})
	mux.HandleFunc("GET /api/cart", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"items": []any{}})
	})

	m := authedManager(t, mux)
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.AddItem(context.Background(), testProductID, 1)
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), maxInFlight.Load(), "cart mutations must not race each other")
}

func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}
