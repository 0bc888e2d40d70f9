package session

import (
	"context"
	"log"
	"net/http"
	"regexp"
	"time"

	"github.com/iliyamo/storefront-client/internal/api"
)

// productIDPattern is the strict identifier format the backend uses.
// Anything else is rejected locally before a request is sent.
var productIDPattern = regexp.MustCompile(`^[0-9a-fA-F]{24}$`)

// ValidProductID reports whether id is a well-formed product identifier.
func ValidProductID(id string) bool { return productIDPattern.MatchString(id) }

type addItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type updateItemRequest struct {
	Quantity int `json:"quantity"`
}

// AddItem adds quantity units of a product to the cart. The caller must
// be authenticated; otherwise the call fails locally with LoginRequired
// set and no request is issued.
func (m *Manager) AddItem(ctx context.Context, productID string, quantity int) MutationResult {
	if !m.authenticated() {
		return MutationResult{LoginRequired: true, Message: "please log in to add items to your cart"}
	}
	if !ValidProductID(productID) {
		return MutationResult{Message: "invalid product id"}
	}
	if quantity < 1 {
		return MutationResult{Message: "quantity must be at least 1"}
	}
	return m.mutate(ctx, "/api/cart",
		addItemRequest{ProductID: productID, Quantity: quantity},
		"could not add item to cart", productID,
		func(items []CartItem) []CartItem {
			for i := range items {
				if items[i].Product.ID == productID {
					items[i].Quantity += quantity
					return items
				}
			}
			return append(items, CartItem{Product: Product{ID: productID}, Quantity: quantity})
		})
}

// UpdateItem sets the quantity of an existing cart line. A quantity
// below 1 is a removal, not an update with zero units.
func (m *Manager) UpdateItem(ctx context.Context, productID string, quantity int) MutationResult {
	if quantity < 1 {
		return m.RemoveItem(ctx, productID)
	}
	if !ValidProductID(productID) {
		return MutationResult{Message: "invalid product id"}
	}
	return m.mutate(ctx, "/api/cart/update/"+productID,
		updateItemRequest{Quantity: quantity},
		"could not update cart item", productID,
		func(items []CartItem) []CartItem {
			for i := range items {
				if items[i].Product.ID == productID {
					items[i].Quantity = quantity
				}
			}
			return items
		})
}

// RemoveItem deletes a cart line.
func (m *Manager) RemoveItem(ctx context.Context, productID string) MutationResult {
	if !ValidProductID(productID) {
		return MutationResult{Message: "invalid product id"}
	}
	return m.mutate(ctx, "/api/cart/remove/"+productID, struct{}{},
		"could not remove cart item", productID,
		func(items []CartItem) []CartItem {
			kept := items[:0]
			for _, it := range items {
				if it.Product.ID != productID {
					kept = append(kept, it)
				}
			}
			return kept
		})
}

func (m *Manager) authenticated() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.user != nil || m.token != ""
}

// mutate issues one cart mutation and then refetches the full cart so
// local state never drifts from server truth after a write. Mutations
// are serialized per manager; two rapid calls cannot race each other at
// the server. When the refetch itself fails the optimistic apply is
// used as a fallback until the next successful refresh.
func (m *Manager) mutate(ctx context.Context, path string, body any, fallback, productID string, apply func([]CartItem) []CartItem) MutationResult {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	resp, err := m.client.Do(ctx, http.MethodPost, path, body)
	if err != nil {
		log.Printf("session: cart mutation %s failed: %v", path, err)
		return MutationResult{Message: fallback}
	}
	p := api.Normalize(resp.StatusCode, resp.Body)
	if !p.Success {
		msg := p.Message
		if msg == "" {
			msg = fallback
		}
		return MutationResult{Message: msg}
	}

	if err := m.refreshCart(ctx); err != nil {
		log.Printf("session: cart refetch after mutation: %v", err)
		m.mu.Lock()
		m.items = apply(m.items)
		m.mu.Unlock()
	}

	m.mu.Lock()
	uid := ""
	if m.user != nil {
		uid = m.user.ID
	}
	count := CartState{Items: m.items}.Count()
	m.mu.Unlock()
	m.emit(ctx, Event{Type: EventCartUpdated, UserID: uid, ProductID: productID, CartCount: count, At: time.Now().UTC()})

	return MutationResult{Success: true, Message: p.Message}
}
