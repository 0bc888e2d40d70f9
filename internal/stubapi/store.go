// Package stubapi implements a small in-memory storefront backend used
// for local development and integration tests. It reproduces the
// behaviors a real backend exhibits and that the client must tolerate:
// dual cookie/bearer authentication, tokens surfaced through response
// headers, and empty bodies on mutation responses.
package stubapi

import (
	"sort"
	"strings"
	"sync"

	"github.com/iliyamo/storefront-client/internal/utils"
)

// User is a stored account. Only the bcrypt hash of the password is
// kept.
type User struct {
	ID           string    `json:"_id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	IsAdmin      bool      `json:"isAdmin"`
	Addresses    []Address `json:"addresses,omitempty"`
}

// Address mirrors the address records a profile carries.
type Address struct {
	ID         string `json:"_id,omitempty"`
	FullName   string `json:"fullName"`
	Line1      string `json:"line1"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
	IsDefault  bool   `json:"isDefault"`
}

// Product is a catalog entry.
type Product struct {
	ID       string  `json:"_id"`
	Name     string  `json:"name"`
	Slug     string  `json:"slug"`
	Image    string  `json:"image,omitempty"`
	Price    float64 `json:"price"`
	Category string  `json:"category,omitempty"`
}

// Category groups products.
type Category struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// CartLine is one line of a stored cart.
type CartLine struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

// Store holds all backend state in memory behind one mutex. It is safe
// for concurrent handlers.
type Store struct {
	mu         sync.Mutex
	users      map[string]*User  // keyed by lower-cased email
	sessions   map[string]string // session id -> user id
	carts      map[string][]CartLine
	products   map[string]Product
	productIDs []string // preserves listing order
	categories []Category
	nextID     int
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		users:    make(map[string]*User),
		sessions: make(map[string]string),
		carts:    make(map[string][]CartLine),
		products: make(map[string]Product),
	}
}

// newObjectID produces a unique 24-hex identifier in the format the
// storefront API uses everywhere.
func (s *Store) newObjectID() string {
	id, err := utils.RandomHex(12) // 12 bytes -> 24 hex chars
	if err != nil {
		// crypto/rand failing is unrecoverable for a dev stub
		panic(err)
	}
	return id
}

// SeedUser creates an account with a bcrypt-hashed password and returns
// its id.
func (s *Store) SeedUser(name, email, password string, isAdmin bool, cost int) (string, error) {
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u := &User{
		ID:           s.newObjectID(),
		Name:         name,
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: hash,
		IsAdmin:      isAdmin,
	}
	s.users[u.Email] = u
	return u.ID, nil
}

// SeedProduct adds a catalog entry and returns its id.
func (s *Store) SeedProduct(p Product) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == "" {
		p.ID = s.newObjectID()
	}
	if p.Slug == "" {
		p.Slug = strings.ToLower(strings.ReplaceAll(p.Name, " ", "-"))
	}
	s.products[p.ID] = p
	s.productIDs = append(s.productIDs, p.ID)
	return p.ID
}

// SeedCategory adds a category.
func (s *Store) SeedCategory(c Category) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == "" {
		c.ID = s.newObjectID()
	}
	if c.Slug == "" {
		c.Slug = strings.ToLower(strings.ReplaceAll(c.Name, " ", "-"))
	}
	s.categories = append(s.categories, c)
	return c.ID
}

func (s *Store) userByEmail(email string) *User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.users[strings.ToLower(strings.TrimSpace(email))]
}

func (s *Store) userByID(id string) *User {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.ID == id {
			return u
		}
	}
	return nil
}

func (s *Store) createSession(sid, userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sid] = userID
}

func (s *Store) sessionUser(sid string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions[sid]
}

func (s *Store) deleteSession(sid string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sid)
}

func (s *Store) cart(userID string) []CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	lines := make([]CartLine, len(s.carts[userID]))
	copy(lines, s.carts[userID])
	return lines
}

// addToCart merges quantity into an existing line or appends a new one.
// It returns false when the product does not exist.
func (s *Store) addToCart(userID, productID string, qty int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[productID]
	if !ok {
		return false
	}
	lines := s.carts[userID]
	for i := range lines {
		if lines[i].Product.ID == productID {
			lines[i].Quantity += qty
			s.carts[userID] = lines
			return true
		}
	}
	s.carts[userID] = append(lines, CartLine{Product: p, Quantity: qty})
	return true
}

// updateCart sets a line's quantity. It returns false when the line is
// not in the cart.
func (s *Store) updateCart(userID, productID string, qty int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	lines := s.carts[userID]
	for i := range lines {
		if lines[i].Product.ID == productID {
			lines[i].Quantity = qty
			s.carts[userID] = lines
			return true
		}
	}
	return false
}

// removeFromCart drops a line. Removing an absent line succeeds; the
// operation is idempotent.
func (s *Store) removeFromCart(userID, productID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	lines := s.carts[userID]
	kept := lines[:0]
	for _, l := range lines {
		if l.Product.ID != productID {
			kept = append(kept, l)
		}
	}
	s.carts[userID] = kept
}

// listProducts filters and pages the catalog.
func (s *Store) listProducts(search, category string, page, pageSize int) (out []Product, pages, total int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var all []Product
	for _, id := range s.productIDs {
		p := s.products[id]
		if search != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(search)) {
			continue
		}
		if category != "" && p.Category != category {
			continue
		}
		all = append(all, p)
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].Name < all[j].Name })

	total = len(all)
	if pageSize < 1 {
		pageSize = 12
	}
	pages = (total + pageSize - 1) / pageSize
	if page < 1 {
		page = 1
	}
	start := (page - 1) * pageSize
	if start >= total {
		return nil, pages, total
	}
	end := start + pageSize
	if end > total {
		end = total
	}
	return all[start:end], pages, total
}

func (s *Store) listCategories() []Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Category, len(s.categories))
	copy(out, s.categories)
	return out
}

func (s *Store) product(id string) (Product, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	return p, ok
}
