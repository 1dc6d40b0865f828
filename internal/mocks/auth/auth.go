package auth

// Package auth contains simple hand-written test doubles for auth ports.
// These are lightweight and suitable for unit tests without codegen.

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Baodng2402/360-Retail-Web-sub000/internal/adapters/jwtclaims"
	domainauth "github.com/Baodng2402/360-Retail-Web-sub000/internal/domain/auth"
	apperrors "github.com/Baodng2402/360-Retail-Web-sub000/internal/errors"
	"github.com/Baodng2402/360-Retail-Web-sub000/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.AuthGateway     = (*FakeGateway)(nil)
	_ ports.CredentialStore = (*FaultyStore)(nil)
)

var fakeSigningKey = []byte("fake-gateway-key")

// Account is a user known to FakeGateway.
type Account struct {
	UserID   string
	Email    string
	Password string
	Name     string
	Role     string
	Status   domainauth.SessionStatus
	// Stores maps store id to the caller's role in that store.
	Stores map[string]string
	// DefaultStore, when set, scopes the login token.
	DefaultStore string
	TrialEndDate *time.Time
}

// FakeGateway simulates the identity and subscription API in memory and
// issues real, decodable tokens. Any *Func field overrides the default
// behavior for that method.
type FakeGateway struct {
	LoginFunc            func(ctx context.Context, in ports.LoginInput) (ports.TokenResult, error)
	RegisterFunc         func(ctx context.Context, in ports.RegisterInput) (ports.RegisterResult, error)
	MeFunc               func(ctx context.Context) (domainauth.ClaimBag, error)
	MeFromLocalTokenFunc func(ctx context.Context) (domainauth.Session, error)
	RefreshAccessFunc    func(ctx context.Context, storeID string) (ports.TokenResult, error)
	ChangePasswordFunc   func(ctx context.Context, in ports.ChangePasswordInput) error
	CheckStoreTrialFunc  func(ctx context.Context) (ports.SubscriptionStatus, error)
	CreateStoreTrialFunc func(ctx context.Context, in ports.StartTrialInput) (ports.StartTrialResult, error)

	// Now is used for token expiry and trial dates. Defaults to time.Now.
	Now func() time.Time

	mu        sync.Mutex
	accounts  map[string]*Account
	current   *Account
	lastToken map[string]any
	calls     []string
	trialSeq  int
}

// NewFakeGateway creates a FakeGateway seeded with accounts.
func NewFakeGateway(accounts ...Account) *FakeGateway {
	g := &FakeGateway{accounts: make(map[string]*Account)}
	for i := range accounts {
		g.AddAccount(accounts[i])
	}
	return g
}

// AddAccount registers or replaces an account keyed by email.
func (g *FakeGateway) AddAccount(a Account) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if a.Stores == nil {
		a.Stores = make(map[string]string)
	}
	if a.Status == "" {
		a.Status = domainauth.StatusRegistered
	}
	g.accounts[strings.ToLower(a.Email)] = &a
}

// SetStatus changes an account's server-side status, as a billing event would.
func (g *FakeGateway) SetStatus(email string, status domainauth.SessionStatus) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if a, ok := g.accounts[strings.ToLower(email)]; ok {
		a.Status = status
	}
}

// Calls returns the method names invoked so far, in order.
func (g *FakeGateway) Calls() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.calls...)
}

func (g *FakeGateway) record(name string) {
	g.mu.Lock()
	g.calls = append(g.calls, name)
	g.mu.Unlock()
}

func (g *FakeGateway) now() time.Time {
	if g.Now != nil {
		return g.Now()
	}
	return time.Now()
}

func (g *FakeGateway) Login(ctx context.Context, in ports.LoginInput) (ports.TokenResult, error) {
	g.record("Login")
	if g.LoginFunc != nil {
		return g.LoginFunc(ctx, in)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	a, ok := g.accounts[strings.ToLower(strings.TrimSpace(in.Email))]
	if !ok || a.Password != in.Password {
		return ports.TokenResult{}, apperrors.API(401, "Invalid email or password.")
	}
	g.current = a
	return g.issueLocked(a, a.DefaultStore)
}

func (g *FakeGateway) Register(ctx context.Context, in ports.RegisterInput) (ports.RegisterResult, error) {
	g.record("Register")
	if g.RegisterFunc != nil {
		return g.RegisterFunc(ctx, in)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	key := strings.ToLower(strings.TrimSpace(in.Email))
	if _, exists := g.accounts[key]; exists {
		return ports.RegisterResult{}, apperrors.API(409, "Email already exists")
	}
	g.accounts[key] = &Account{
		UserID:   fmt.Sprintf("user-%d", len(g.accounts)+1),
		Email:    in.Email,
		Password: in.Password,
		Status:   domainauth.StatusRegistered,
		Stores:   make(map[string]string),
	}
	return ports.RegisterResult{Message: "Registration successful. Please check your email."}, nil
}

func (g *FakeGateway) Me(ctx context.Context) (domainauth.ClaimBag, error) {
	g.record("Me")
	if g.MeFunc != nil {
		return g.MeFunc(ctx)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.current == nil {
		return nil, apperrors.API(401, "Your session has expired. Please sign in again.")
	}
	bag := domainauth.ClaimBag{}
	for k, v := range g.lastToken {
		bag[k] = fmt.Sprint(v)
	}
	return bag, nil
}

func (g *FakeGateway) MeFromLocalToken(ctx context.Context) (domainauth.Session, error) {
	g.record("MeFromLocalToken")
	if g.MeFromLocalTokenFunc != nil {
		return g.MeFromLocalTokenFunc(ctx)
	}
	bag, err := g.Me(ctx)
	if err != nil {
		return domainauth.Anonymous(), nil //nolint:nilerr // local decode never fails
	}
	return domainauth.SessionFromClaims(bag), nil
}

func (g *FakeGateway) RefreshAccess(ctx context.Context, storeID string) (ports.TokenResult, error) {
	g.record("RefreshAccess")
	if g.RefreshAccessFunc != nil {
		return g.RefreshAccessFunc(ctx, storeID)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.current == nil {
		return ports.TokenResult{}, apperrors.API(401, "Your session has expired. Please sign in again.")
	}
	if storeID != "" {
		if _, ok := g.current.Stores[storeID]; !ok {
			return ports.TokenResult{}, apperrors.API(403, "You do not have access to this store.")
		}
	}
	return g.issueLocked(g.current, storeID)
}

func (g *FakeGateway) ChangePassword(ctx context.Context, in ports.ChangePasswordInput) error {
	g.record("ChangePassword")
	if g.ChangePasswordFunc != nil {
		return g.ChangePasswordFunc(ctx, in)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.current == nil {
		return apperrors.API(401, "Your session has expired. Please sign in again.")
	}
	if g.current.Password != in.CurrentPassword {
		return apperrors.API(400, "Current password is incorrect.")
	}
	g.current.Password = in.NewPassword
	return nil
}

func (g *FakeGateway) CheckStoreTrial(ctx context.Context) (ports.SubscriptionStatus, error) {
	g.record("CheckStoreTrial")
	if g.CheckStoreTrialFunc != nil {
		return g.CheckStoreTrialFunc(ctx)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.current == nil {
		return ports.SubscriptionStatus{}, apperrors.API(401, "Your session has expired. Please sign in again.")
	}
	storeID, _ := g.lastToken[domainauth.ClaimStoreID].(string)
	return ports.SubscriptionStatus{
		Status:       g.current.Status,
		StoreID:      storeID,
		TrialEndDate: g.current.TrialEndDate,
		HasStore:     len(g.current.Stores) > 0,
	}, nil
}

func (g *FakeGateway) CreateStoreTrial(ctx context.Context, in ports.StartTrialInput) (ports.StartTrialResult, error) {
	g.record("CreateStoreTrial")
	if g.CreateStoreTrialFunc != nil {
		return g.CreateStoreTrialFunc(ctx, in)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.current == nil {
		return ports.StartTrialResult{}, apperrors.API(401, "Your session has expired. Please sign in again.")
	}
	if g.current.Status != domainauth.StatusRegistered {
		return ports.StartTrialResult{}, apperrors.API(409, "Trial already used")
	}
	g.trialSeq++
	id := fmt.Sprintf("trial-store-%d", g.trialSeq)
	end := g.now().Add(7 * 24 * time.Hour).UTC()
	g.current.Stores[id] = "Owner"
	g.current.Status = domainauth.StatusTrial
	g.current.TrialEndDate = &end
	return ports.StartTrialResult{
		StoreID:      id,
		StoreName:    in.StoreName,
		TrialEndDate: &end,
		Message:      "Trial started",
	}, nil
}

// issueLocked mints a token for a scoped to storeID. Caller holds g.mu.
func (g *FakeGateway) issueLocked(a *Account, storeID string) (ports.TokenResult, error) {
	now := g.now()
	exp := now.Add(time.Hour)
	claims := map[string]any{
		domainauth.ClaimSubject:   a.UserID,
		domainauth.ClaimEmail:     a.Email,
		domainauth.ClaimStatus:    string(a.Status),
		domainauth.ClaimExpiresAt: exp.Unix(),
	}
	if a.Name != "" {
		claims[domainauth.ClaimName] = a.Name
	}
	if a.Role != "" {
		claims[domainauth.ClaimRole] = a.Role
	}
	if storeID != "" {
		claims[domainauth.ClaimStoreID] = storeID
		claims[domainauth.ClaimStoreRole] = a.Stores[storeID]
	}
	if a.Status == domainauth.StatusTrial && a.TrialEndDate != nil {
		claims[domainauth.ClaimTrialEndDate] = a.TrialEndDate.Format(time.RFC3339)
		days := int(a.TrialEndDate.Sub(now).Hours() / 24)
		claims[domainauth.ClaimTrialDaysRemaining] = days
		claims[domainauth.ClaimTrialExpired] = days < 0
	}

	tok, err := jwtclaims.Encode(claims, fakeSigningKey)
	if err != nil {
		return ports.TokenResult{}, err
	}
	g.lastToken = claims
	return ports.TokenResult{AccessToken: tok, ExpiresAt: exp}, nil
}

// FaultyStore wraps a CredentialStore and fails on demand.
type FaultyStore struct {
	Inner    ports.CredentialStore
	GetErr   error
	SetErr   error
	ClearErr error
}

func (s *FaultyStore) Get(ctx context.Context) (string, bool, error) {
	if s.GetErr != nil {
		return "", false, s.GetErr
	}
	return s.Inner.Get(ctx)
}

func (s *FaultyStore) Set(ctx context.Context, token string) error {
	if s.SetErr != nil {
		return s.SetErr
	}
	return s.Inner.Set(ctx, token)
}

func (s *FaultyStore) Clear(ctx context.Context) error {
	if s.ClearErr != nil {
		return s.ClearErr
	}
	return s.Inner.Clear(ctx)
}
