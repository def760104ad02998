package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/storefront/commerce-api/internal/core/domain"
	"github.com/storefront/commerce-api/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory stubs shared by the service tests
// ---------------------------------------------------------------------------

// fakeClock advances by step on every call.
type fakeClock struct {
	mu   sync.Mutex
	t    time.Time
	step time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC), step: time.Second}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(c.step)
	return c.t
}

// --- users ---

type stubUserRepo struct {
	bySubject map[string]*domain.User
	findCalls int
	createErr error
}

func newStubUserRepo(users ...*domain.User) *stubUserRepo {
	r := &stubUserRepo{bySubject: make(map[string]*domain.User)}
	for _, u := range users {
		clone := *u
		r.bySubject[u.SubjectID] = &clone
	}
	return r
}

func (r *stubUserRepo) Create(_ context.Context, u *domain.User) (*domain.User, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	if _, ok := r.bySubject[u.SubjectID]; ok {
		return nil, domain.ErrUserExists
	}
	clone := *u
	clone.ID = fmt.Sprintf("u%d", len(r.bySubject)+1)
	r.bySubject[u.SubjectID] = &clone
	out := clone
	return &out, nil
}

func (r *stubUserRepo) FindBySubject(_ context.Context, subjectID string) (*domain.User, error) {
	r.findCalls++
	u, ok := r.bySubject[subjectID]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	for _, u := range r.bySubject {
		if u.ID == id {
			clone := *u
			return &clone, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

// --- sessions ---

type stubSessionRepo struct {
	sessions    []*domain.Session
	activityErr error
	logoutErr   error
}

func (r *stubSessionRepo) Create(_ context.Context, s *domain.Session) (*domain.Session, error) {
	clone := *s
	clone.ID = fmt.Sprintf("s%d", len(r.sessions)+1)
	r.sessions = append(r.sessions, &clone)
	out := clone
	return &out, nil
}

func (r *stubSessionRepo) FindLatestActive(_ context.Context, userID string) (*domain.Session, error) {
	var latest *domain.Session
	for _, s := range r.sessions {
		if s.UserID != userID || s.LogoutAt != nil {
			continue
		}
		if latest == nil || !s.LoginAt.Before(latest.LoginAt) {
			latest = s
		}
	}
	if latest == nil {
		return nil, domain.ErrNoActiveSession
	}
	clone := *latest
	return &clone, nil
}

func (r *stubSessionRepo) byID(id string) *domain.Session {
	for _, s := range r.sessions {
		if s.ID == id {
			return s
		}
	}
	return nil
}

func (r *stubSessionRepo) SetLastActivity(_ context.Context, id string, at time.Time) error {
	if r.activityErr != nil {
		return r.activityErr
	}
	s := r.byID(id)
	if s == nil {
		return domain.ErrNoActiveSession
	}
	s.LastActivity = at
	return nil
}

func (r *stubSessionRepo) SetLogout(_ context.Context, id string, at time.Time) error {
	if r.logoutErr != nil {
		return r.logoutErr
	}
	s := r.byID(id)
	if s == nil {
		return domain.ErrNoActiveSession
	}
	s.LogoutAt = &at
	return nil
}

func (r *stubSessionRepo) EndActive(_ context.Context, userID, keepID string, at time.Time) (int64, error) {
	var n int64
	for _, s := range r.sessions {
		if s.UserID == userID && s.ID != keepID && s.LogoutAt == nil {
			t := at
			s.LogoutAt = &t
			n++
		}
	}
	return n, nil
}

func (r *stubSessionRepo) ListByUser(_ context.Context, userID string) ([]*domain.Session, error) {
	return r.sorted(func(s *domain.Session) bool { return s.UserID == userID }), nil
}

func (r *stubSessionRepo) ListAll(_ context.Context) ([]*domain.Session, error) {
	return r.sorted(func(*domain.Session) bool { return true }), nil
}

func (r *stubSessionRepo) sorted(keep func(*domain.Session) bool) []*domain.Session {
	var out []*domain.Session
	for _, s := range r.sessions {
		if keep(s) {
			clone := *s
			out = append(out, &clone)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].LoginAt.After(out[j].LoginAt) })
	return out
}

// --- identity ---

type stubIdentity struct {
	tokens    map[string]string // token -> subject
	passwords map[string]string // email -> password
	subjects  map[string]string // email -> subject
	verifyErr error
	revokeErr error
	revoked   []string
	signUpErr error
}

func newStubIdentity() *stubIdentity {
	return &stubIdentity{
		tokens:    make(map[string]string),
		passwords: make(map[string]string),
		subjects:  make(map[string]string),
	}
}

func (s *stubIdentity) SignUp(_ context.Context, email, password string) (string, error) {
	if s.signUpErr != nil {
		return "", s.signUpErr
	}
	if _, ok := s.subjects[email]; ok {
		return "", domain.ErrUserExists
	}
	subject := "sub-" + email
	s.subjects[email] = subject
	s.passwords[email] = password
	return subject, nil
}

func (s *stubIdentity) IssueCredential(_ context.Context, email, password string) (string, string, error) {
	if pw, ok := s.passwords[email]; !ok || pw != password {
		return "", "", domain.ErrInvalidCredentials
	}
	subject := s.subjects[email]
	token := fmt.Sprintf("tok-%s-%d", subject, len(s.tokens)+1)
	s.tokens[token] = subject
	return subject, token, nil
}

func (s *stubIdentity) VerifyCredential(_ context.Context, token string) (string, error) {
	if s.verifyErr != nil {
		return "", s.verifyErr
	}
	subject, ok := s.tokens[token]
	if !ok {
		return "", fmt.Errorf("%w: invalid token", domain.ErrUnauthenticated)
	}
	return subject, nil
}

func (s *stubIdentity) RevokeCredential(_ context.Context, token string) error {
	if s.revokeErr != nil {
		return s.revokeErr
	}
	delete(s.tokens, token)
	s.revoked = append(s.revoked, token)
	return nil
}

// --- catalog ---

type stubCatalog struct {
	products map[string]*domain.Product
	err      error
}

func newStubCatalog(products ...domain.Product) *stubCatalog {
	c := &stubCatalog{products: make(map[string]*domain.Product)}
	for i := range products {
		p := products[i]
		c.products[p.ID] = &p
	}
	return c
}

func (c *stubCatalog) GetProduct(_ context.Context, id string) (*domain.Product, error) {
	if c.err != nil {
		return nil, c.err
	}
	p, ok := c.products[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	clone := *p
	return &clone, nil
}

// --- carts ---

type stubCartRepo struct {
	mu        sync.Mutex
	carts     map[string]*domain.Cart
	saveErr   error
	clearErr  error
	saveCalls int
}

func newStubCartRepo() *stubCartRepo {
	return &stubCartRepo{carts: make(map[string]*domain.Cart)}
}

func cloneCart(c *domain.Cart) *domain.Cart {
	clone := *c
	clone.Lines = append([]domain.CartLine{}, c.Lines...)
	return &clone
}

// seed stores a cart as if it had been saved once.
func (r *stubCartRepo) seed(userID string, lines ...domain.CartLine) {
	r.carts[userID] = &domain.Cart{ID: "c-" + userID, UserID: userID, Lines: lines, Version: 1}
}

func (r *stubCartRepo) Get(_ context.Context, userID string) (*domain.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.carts[userID]
	if !ok {
		return nil, domain.ErrCartNotFound
	}
	return cloneCart(c), nil
}

func (r *stubCartRepo) Save(_ context.Context, c *domain.Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saveCalls++
	if r.saveErr != nil {
		return r.saveErr
	}
	stored, ok := r.carts[c.UserID]
	switch {
	case !ok && c.Version != 0, ok && stored.Version != c.Version:
		return domain.ErrCartVersionMismatch
	}
	c.Version++
	if c.ID == "" {
		c.ID = "c-" + c.UserID
	}
	r.carts[c.UserID] = cloneCart(c)
	return nil
}

func (r *stubCartRepo) Clear(_ context.Context, userID string, expectedVersion int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.clearErr != nil {
		return r.clearErr
	}
	stored, ok := r.carts[userID]
	if !ok || stored.Version != expectedVersion {
		return domain.ErrCartVersionMismatch
	}
	stored.Lines = []domain.CartLine{}
	stored.Version++
	return nil
}

// --- orders ---

type stubOrderRepo struct {
	mu        sync.Mutex
	orders    []*domain.Order
	createErr error
}

func (r *stubOrderRepo) Create(_ context.Context, o *domain.Order) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return nil, r.createErr
	}
	clone := *o
	clone.ID = fmt.Sprintf("o%d", len(r.orders)+1)
	r.orders = append(r.orders, &clone)
	out := clone
	return &out, nil
}

func (r *stubOrderRepo) ListByUser(_ context.Context, userID string) ([]*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Order
	for i := len(r.orders) - 1; i >= 0; i-- {
		if r.orders[i].UserID == userID {
			clone := *r.orders[i]
			out = append(out, &clone)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *stubOrderRepo) FindPaidByPaymentReference(_ context.Context, ref string) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.orders {
		if o.PaymentReference == ref && o.Status == domain.OrderPaid {
			clone := *o
			return &clone, nil
		}
	}
	return nil, domain.ErrOrderNotFound
}

// --- payment gateway ---

type stubGateway struct {
	mu          sync.Mutex
	intents     map[string]*domain.PaymentIntent
	createErr   error
	getErr      error
	createCalls int
	lastKey     string
	lastUserID  string
}

func newStubGateway() *stubGateway {
	return &stubGateway{intents: make(map[string]*domain.PaymentIntent)}
}

func (g *stubGateway) CreateIntent(_ context.Context, amount domain.Money, userID, key string) (*domain.PaymentIntent, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.createCalls++
	g.lastKey = key
	g.lastUserID = userID
	if g.createErr != nil {
		return nil, g.createErr
	}
	id := fmt.Sprintf("pi_%d", g.createCalls)
	pi := &domain.PaymentIntent{
		ID:           id,
		ClientSecret: id + "_secret",
		Amount:       amount,
		Status:       domain.PaymentRequiresPaymentMethod,
		UserID:       userID,
	}
	g.intents[id] = pi
	clone := *pi
	return &clone, nil
}

func (g *stubGateway) GetIntent(_ context.Context, id string) (*domain.PaymentIntent, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.getErr != nil {
		return nil, g.getErr
	}
	pi, ok := g.intents[id]
	if !ok {
		return nil, fmt.Errorf("%w: no such payment intent", domain.ErrGateway)
	}
	clone := *pi
	return &clone, nil
}

// --- intent cache ---

type stubIntentCache struct {
	entries map[string]ports.IssuedIntent
	getErr  error
}

func newStubIntentCache() *stubIntentCache {
	return &stubIntentCache{entries: make(map[string]ports.IssuedIntent)}
}

func (c *stubIntentCache) Get(_ context.Context, token string) (*ports.IssuedIntent, error) {
	if c.getErr != nil {
		return nil, c.getErr
	}
	e, ok := c.entries[token]
	if !ok {
		return nil, nil
	}
	return &e, nil
}

func (c *stubIntentCache) Put(_ context.Context, token string, intent ports.IssuedIntent) error {
	if _, ok := c.entries[token]; !ok {
		c.entries[token] = intent
	}
	return nil
}

// --- locker ---

type stubLocker struct {
	mu        sync.Mutex
	err       error
	locks     int
	unlocks   int
	held      map[string]bool
	reentrant bool
}

func newStubLocker() *stubLocker {
	return &stubLocker{held: make(map[string]bool)}
}

func (l *stubLocker) Lock(_ context.Context, userID string) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return nil, l.err
	}
	if l.held[userID] {
		l.reentrant = true
	}
	l.held[userID] = true
	l.locks++
	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		l.held[userID] = false
		l.unlocks++
	}, nil
}
