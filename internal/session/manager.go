package session

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/iliyamo/storefront-client/internal/api"
	"github.com/iliyamo/storefront-client/internal/store"
)

// DefaultDebounce is the quiet period applied to the startup profile
// fetch so rapid repeated triggers coalesce into one request.
const DefaultDebounce = 100 * time.Millisecond

var errNoUser = errors.New("profile response has no user")

// Manager is the single source of truth for "who is logged in" and
// "what is in their cart". Construct one instance at application start
// and pass it to whatever consumes it.
type Manager struct {
	client   *api.Client
	tokens   store.TokenStore
	cache    store.StateCache
	sinks    []EventSink
	retry    api.RetryPolicy
	debounce time.Duration

	mu           sync.Mutex // guards the session state below
	state        State
	user         *User
	token        string
	items        []CartItem
	restored     bool
	gen          uint64 // bumped on login/logout; stale async results are dropped
	profileTimer *time.Timer

	opMu sync.Mutex // serializes login/logout and cart mutations
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithTokenStore sets the token persistence backend. The default is an
// in-memory store that does not survive a restart.
func WithTokenStore(ts store.TokenStore) ManagerOption {
	return func(m *Manager) { m.tokens = ts }
}

// WithStateCache enables the last-known-good user/cart snapshot cache.
func WithStateCache(sc store.StateCache) ManagerOption {
	return func(m *Manager) { m.cache = sc }
}

// WithEventSink adds a sink for session and cart events.
func WithEventSink(s EventSink) ManagerOption {
	return func(m *Manager) { m.sinks = append(m.sinks, s) }
}

// WithRetryPolicy replaces the profile-fetch retry policy used after
// login.
func WithRetryPolicy(p api.RetryPolicy) ManagerOption {
	return func(m *Manager) { m.retry = p }
}

// WithDebounce replaces the startup profile-fetch debounce interval.
func WithDebounce(d time.Duration) ManagerOption {
	return func(m *Manager) { m.debounce = d }
}

// New creates a Manager bound to baseURL. Extra API client options
// (timeout, custom http.Client) can be passed through apiOpts.
func New(baseURL string, apiOpts []api.Option, opts ...ManagerOption) *Manager {
	m := &Manager{
		tokens:   store.NewMemoryStore(),
		retry:    api.DefaultRetryPolicy,
		debounce: DefaultDebounce,
		state:    StateUnknown,
	}
	for _, opt := range opts {
		opt(m)
	}
	apiOpts = append(apiOpts, api.WithTokenSource(m.Token))
	m.client = api.NewClient(baseURL, apiOpts...)
	return m
}

// Client exposes the underlying API client for sibling services that
// share the session (e.g. catalog browsing).
func (m *Manager) Client() *api.Client { return m.client }

// User returns a copy of the current user, or nil when anonymous.
func (m *Manager) User() *User {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.user == nil {
		return nil
	}
	u := *m.user
	return &u
}

// Token returns the current bearer token, or "" when the session relies
// on cookies alone.
func (m *Manager) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token
}

// State reports where the session is in its lifecycle.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Cart returns a copy of the current cart state.
func (m *Manager) Cart() CartState {
	m.mu.Lock()
	defer m.mu.Unlock()
	items := make([]CartItem, len(m.items))
	copy(items, m.items)
	return CartState{Items: items}
}

// Restore loads a persisted token and schedules the debounced startup
// profile fetch. It must be called once before authenticated requests;
// repeated calls are ignored. The token load itself is synchronous so
// no request is ever fired with a stale or absent token.
func (m *Manager) Restore(ctx context.Context) {
	m.mu.Lock()
	if m.restored {
		m.mu.Unlock()
		return
	}
	m.restored = true
	m.mu.Unlock()

	tok, err := m.tokens.Load(ctx)
	if err != nil {
		log.Printf("session: token restore failed: %v", err)
		tok = ""
	}
	if tok != "" && tokenExpired(tok) {
		log.Printf("session: persisted token expired, discarding")
		if err := m.tokens.Clear(ctx); err != nil {
			log.Printf("session: clear expired token: %v", err)
		}
		tok = ""
	}

	m.mu.Lock()
	m.token = tok
	known := m.user != nil
	if !known {
		m.state = StateRestoring
	}
	m.mu.Unlock()

	if !known {
		m.scheduleProfileFetch()
	}
}

// scheduleProfileFetch (re)arms the debounce timer. Rapid successive
// calls collapse into a single request after the quiet period.
func (m *Manager) scheduleProfileFetch() {
	m.mu.Lock()
	defer m.mu.Unlock()
	gen := m.gen
	if m.profileTimer != nil {
		m.profileTimer.Stop()
	}
	m.profileTimer = time.AfterFunc(m.debounce, func() { m.startupProfileFetch(gen) })
}

// startupProfileFetch is the debounced probe issued at startup. Its
// failure is intentionally silent: the user has not attempted to log
// in, so loading simply concludes as anonymous.
func (m *Manager) startupProfileFetch(gen uint64) {
	ctx, cancel := context.WithTimeout(context.Background(), api.DefaultTimeout)
	defer cancel()

	u, err := m.fetchProfile(ctx)

	m.mu.Lock()
	if m.gen != gen {
		// Session changed while the probe was in flight; drop it.
		m.mu.Unlock()
		return
	}
	if err != nil || u == nil {
		if m.user == nil {
			m.state = StateAnonymous
		}
		m.mu.Unlock()
		return
	}
	m.user = u
	m.state = StateAuthenticated
	m.mu.Unlock()

	if err := m.refreshCart(ctx); err != nil {
		log.Printf("session: cart refresh after restore: %v", err)
	}
}

// RefreshProfile fetches the authoritative profile immediately,
// bypassing the debounce. On success the user is adopted and the cart
// refreshed.
func (m *Manager) RefreshProfile(ctx context.Context) error {
	u, err := m.fetchProfile(ctx)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.user = u
	m.state = StateAuthenticated
	m.mu.Unlock()
	return m.refreshCart(ctx)
}

func (m *Manager) fetchProfile(ctx context.Context) (*User, error) {
	var out struct {
		User *User `json:"user"`
	}
	if err := m.client.GetJSON(ctx, "/api/users/profile", &out); err != nil {
		return nil, err
	}
	if out.User == nil {
		return nil, errNoUser
	}
	return out.User, nil
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login posts credentials and establishes a session. The body and the
// response headers are scanned for a token in a fixed precedence order;
// a user object in the login body is adopted optimistically while the
// authoritative profile is confirmed with a bounded retry loop. All
// failures come back as a result value, never a panic or raw error.
func (m *Manager) Login(ctx context.Context, email, password string) LoginResult {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	resp, err := m.client.Do(ctx, http.MethodPost, "/api/users/login", credentials{Email: email, Password: password})
	if err != nil {
		log.Printf("session: login request failed: %v", err)
		return LoginResult{Message: "login request failed"}
	}
	p := api.Normalize(resp.StatusCode, resp.Body)
	if !p.Success {
		msg := p.Message
		if msg == "" {
			msg = "invalid email or password"
		}
		return LoginResult{Message: msg}
	}

	tok := scanToken(p.Raw, resp.Header)

	m.mu.Lock()
	m.gen++
	gen := m.gen
	if tok != "" {
		m.token = tok
	}
	if len(p.Raw) > 0 {
		var body struct {
			User *User `json:"user"`
		}
		if json.Unmarshal(p.Raw, &body) == nil && body.User != nil {
			// Optimistic: lets the caller's UI update before the
			// profile round trip confirms.
			m.user = body.User
			m.state = StateAuthenticated
		}
	}
	m.mu.Unlock()

	if tok != "" {
		if err := m.tokens.Save(ctx, tok); err != nil {
			log.Printf("session: persist token: %v", err)
		}
	}

	// The session cookie may not be visible immediately after login, so
	// the profile is confirmed with a bounded sequential retry.
	var u *User
	err = m.retry.Do(ctx, func(ctx context.Context) error {
		var ferr error
		u, ferr = m.fetchProfile(ctx)
		return ferr
	})
	if err != nil || u == nil {
		return LoginResult{
			Success:       true,
			ProfileLoaded: false,
			Message:       "logged in, but the profile could not be confirmed yet",
		}
	}

	m.mu.Lock()
	if m.gen == gen {
		m.user = u
		m.state = StateAuthenticated
	}
	m.mu.Unlock()

	m.emit(ctx, Event{Type: EventLogin, UserID: u.ID, Email: u.Email, At: time.Now().UTC()})

	if err := m.refreshCart(ctx); err != nil {
		log.Printf("session: cart refresh after login: %v", err)
	}
	return LoginResult{Success: true, ProfileLoaded: true}
}

// Logout posts a best-effort logout request and unconditionally clears
// all session and cart state. Calling it twice leaves the same cleared
// state as calling it once.
func (m *Manager) Logout(ctx context.Context) {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	if _, err := m.client.Do(ctx, http.MethodPost, "/api/users/logout", nil); err != nil {
		log.Printf("session: logout request failed: %v", err)
	}

	m.mu.Lock()
	m.gen++
	hadSession := m.user != nil || m.token != ""
	uid := ""
	if m.user != nil {
		uid = m.user.ID
	}
	m.user = nil
	m.token = ""
	m.items = nil
	m.state = StateAnonymous
	if m.profileTimer != nil {
		m.profileTimer.Stop()
		m.profileTimer = nil
	}
	m.mu.Unlock()

	if err := m.tokens.Clear(ctx); err != nil {
		log.Printf("session: clear persisted token: %v", err)
	}
	if m.cache != nil {
		if err := m.cache.Clear(ctx); err != nil {
			log.Printf("session: clear state cache: %v", err)
		}
	}
	if hadSession {
		m.emit(ctx, Event{Type: EventLogout, UserID: uid, At: time.Now().UTC()})
	}
}

// refreshCart replaces local cart state with the server's. Lines that
// share a product are merged so the no-duplicate invariant holds even
// against a misbehaving backend.
func (m *Manager) refreshCart(ctx context.Context) error {
	var out struct {
		Items []CartItem `json:"items"`
	}
	if err := m.client.GetJSON(ctx, "/api/cart", &out); err != nil {
		return err
	}

	seen := make(map[string]int, len(out.Items))
	items := make([]CartItem, 0, len(out.Items))
	for _, it := range out.Items {
		if idx, dup := seen[it.Product.ID]; dup {
			items[idx].Quantity += it.Quantity
			continue
		}
		seen[it.Product.ID] = len(items)
		items = append(items, it)
	}

	m.mu.Lock()
	m.items = items
	m.mu.Unlock()

	m.saveSnapshot(ctx)
	return nil
}

// Fallback returns the cached last-known-good snapshot, or nil when no
// cache is configured or empty. It is for display when the network is
// unavailable and is never authoritative.
func (m *Manager) Fallback(ctx context.Context) (*store.Snapshot, error) {
	if m.cache == nil {
		return nil, nil
	}
	return m.cache.Get(ctx)
}

func (m *Manager) saveSnapshot(ctx context.Context) {
	if m.cache == nil {
		return
	}
	m.mu.Lock()
	var userRaw, itemsRaw json.RawMessage
	if m.user != nil {
		userRaw, _ = json.Marshal(m.user)
	}
	if m.items != nil {
		itemsRaw, _ = json.Marshal(m.items)
	}
	count := CartState{Items: m.items}.Count()
	m.mu.Unlock()

	snap := store.Snapshot{User: userRaw, Items: itemsRaw, Count: count, SavedAt: time.Now().UTC()}
	if err := m.cache.Put(ctx, snap); err != nil {
		log.Printf("session: save snapshot: %v", err)
	}
}

func (m *Manager) emit(ctx context.Context, ev Event) {
	for _, s := range m.sinks {
		if err := s.Publish(ctx, ev); err != nil {
			log.Printf("session: event sink: %v", err)
		}
	}
}
