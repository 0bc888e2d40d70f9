// Package session implements the session and cart manager: it owns the
// authentication token lifecycle, the user profile, and the shopping
// cart, and keeps local state consistent with the backend by refetching
// the cart after every successful mutation.
package session

// User is the server-authoritative identity attached to a session.
type User struct {
	ID        string    `json:"_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	IsAdmin   bool      `json:"isAdmin"`
	Addresses []Address `json:"addresses,omitempty"`
}

// Product is the snapshot of a product embedded in a cart line. It is
// whatever the backend knew about the product when the line was added.
type Product struct {
	ID    string  `json:"_id"`
	Name  string  `json:"name"`
	Slug  string  `json:"slug,omitempty"`
	Image string  `json:"image,omitempty"`
	Price float64 `json:"price"`
}

// CartItem is one cart line. ProductID uniquely identifies a line; the
// backend never returns two lines for the same product.
type CartItem struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

// ProductID returns the identifier of the line's product.
func (i CartItem) ProductID() string { return i.Product.ID }

// CartState is an ordered view of the cart. Items are a cache of server
// state; the count is always derived from the items and never stored on
// its own.
type CartState struct {
	Items []CartItem
}

// Count returns the sum of all line quantities.
func (c CartState) Count() int {
	n := 0
	for _, it := range c.Items {
		n += it.Quantity
	}
	return n
}

// State describes where the session is in its lifecycle.
type State int

const (
	// StateUnknown means Restore has not been attempted yet.
	StateUnknown State = iota
	// StateRestoring means a persisted token was loaded and the
	// profile fetch has not concluded.
	StateRestoring
	// StateAuthenticated means a user is set.
	StateAuthenticated
	// StateAnonymous means no user is set and restoration concluded.
	StateAnonymous
)

func (s State) String() string {
	switch s {
	case StateRestoring:
		return "restoring"
	case StateAuthenticated:
		return "authenticated"
	case StateAnonymous:
		return "anonymous"
	default:
		return "unknown"
	}
}

// LoginResult reports the outcome of a login attempt. Success means the
// credentials were accepted; ProfileLoaded reports whether the
// authoritative profile was confirmed afterwards. A login is not failed
// merely because profile confirmation lagged.
type LoginResult struct {
	Success       bool
	ProfileLoaded bool
	Message       string
}

// MutationResult reports the outcome of a cart mutation. LoginRequired
// is set when the operation was refused locally because no session is
// active; callers should route the user to login.
type MutationResult struct {
	Success       bool
	LoginRequired bool
	Message       string
}
