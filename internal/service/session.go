package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/Baodng2402/360-Retail-Web-sub000/internal/adapters/jwtclaims"
	domainauth "github.com/Baodng2402/360-Retail-Web-sub000/internal/domain/auth"
	apperrors "github.com/Baodng2402/360-Retail-Web-sub000/internal/errors"
	obserrors "github.com/Baodng2402/360-Retail-Web-sub000/internal/observability/errors"
	"github.com/Baodng2402/360-Retail-Web-sub000/internal/observability/statsd"
	"github.com/Baodng2402/360-Retail-Web-sub000/internal/ports"
)

// ChangeReason names the operation that produced a session change.
type ChangeReason string

const (
	ChangeInit    ChangeReason = "init"
	ChangeLogin   ChangeReason = "login"
	ChangeRefresh ChangeReason = "refresh"
	ChangeSwitch  ChangeReason = "switch"
	ChangeTrial   ChangeReason = "start_trial"
	ChangeSync    ChangeReason = "sync"
	ChangeLogout  ChangeReason = "logout"
)

// Change is delivered to subscribers after every committed session update.
type Change struct {
	Reason   ChangeReason
	Previous domainauth.Session
	Current  domainauth.Session
	// Store is the cached display object for Current.StoreID, if known.
	Store *domainauth.Store
}

// SessionOptions groups dependencies for SessionContext.
type SessionOptions struct {
	Gateway ports.AuthGateway     // Required: identity/subscription API
	Store   ports.CredentialStore // Required: bearer-token persistence
	Decoder ports.ClaimDecoder    // Optional: defaults to jwtclaims.Codec
	Logger  *slog.Logger          // Optional: structured logger
	Metrics statsd.Sink           // Optional: metrics sink (StatsD-compatible)
}

// sessionState is an immutable snapshot; it is replaced, never mutated.
type sessionState struct {
	session domainauth.Session
	store   *domainauth.Store
}

// SessionContext owns the current session. Its state is derived only from the
// most recently persisted token. Login, refresh, store switch, trial start and
// logout are mutually exclusive: a call made while another is in flight fails
// with a switch-conflict error instead of waiting.
type SessionContext struct {
	gateway ports.AuthGateway
	store   ports.CredentialStore
	decoder ports.ClaimDecoder
	logger  *slog.Logger
	metrics statsd.Sink

	gate     *semaphore.Weighted
	inFlight atomic.Value // string
	state    atomic.Pointer[sessionState]

	subsMu sync.Mutex
	subs   map[int]func(Change)
	nextID int
}

// NewSessionContext constructs a SessionContext in the anonymous state.
// Call Init to load the persisted credential.
func NewSessionContext(opts SessionOptions) (*SessionContext, error) {
	if opts.Gateway == nil {
		return nil, errors.New("AuthGateway is required")
	}
	if opts.Store == nil {
		return nil, errors.New("CredentialStore is required")
	}

	decoder := opts.Decoder
	if decoder == nil {
		decoder = jwtclaims.New()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = statsd.Noop{}
	}

	s := &SessionContext{
		gateway: opts.Gateway,
		store:   opts.Store,
		decoder: decoder,
		logger:  logger.With("component", "session_context"),
		metrics: metrics,
		gate:    semaphore.NewWeighted(1),
		subs:    make(map[int]func(Change)),
	}
	s.inFlight.Store("")
	s.state.Store(&sessionState{session: domainauth.Anonymous()})
	return s, nil
}

// Snapshot returns the current session. Safe for concurrent use without locks.
func (s *SessionContext) Snapshot() domainauth.Session {
	return s.state.Load().session
}

// CurrentStore returns the display object for the selected store. When only
// the token's store id is known, a Store carrying just the ID is returned.
func (s *SessionContext) CurrentStore() (domainauth.Store, bool) {
	st := s.state.Load()
	if st.store != nil {
		return *st.store, true
	}
	if st.session.StoreID != "" {
		return domainauth.Store{ID: st.session.StoreID}, true
	}
	return domainauth.Store{}, false
}

// CanAccess applies the access guard to the current snapshot.
func (s *SessionContext) CanAccess(featureRequiresStore bool) bool {
	return domainauth.CanAccess(s.Snapshot(), featureRequiresStore)
}

// InFlight names the mutating operation currently running, or "".
func (s *SessionContext) InFlight() string {
	v, _ := s.inFlight.Load().(string)
	return v
}

// Subscribe registers fn for every committed change. fn runs synchronously
// while the mutating operation still holds the session; it must not call
// back into a mutator. The returned func unregisters fn.
func (s *SessionContext) Subscribe(fn func(Change)) func() {
	s.subsMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.subsMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subsMu.Lock()
			delete(s.subs, id)
			s.subsMu.Unlock()
		})
	}
}

// Init reads the persisted credential once and decodes it. Absent, placeholder
// and malformed credentials leave the session anonymous.
func (s *SessionContext) Init(ctx context.Context) error {
	return s.run(ctx, "init", func(ctx context.Context) error {
		tok, ok, err := s.store.Get(ctx)
		if err != nil {
			return fmt.Errorf("read credential: %w", err)
		}
		if !ok {
			s.logger.DebugContext(ctx, "no usable credential persisted")
			s.publish(ctx, ChangeInit, domainauth.Anonymous(), nil)
			return nil
		}
		bag, err := s.decode(ctx, tok)
		if err != nil {
			s.logger.WarnContext(ctx, "persisted credential is malformed; starting anonymous", "error", err)
			s.publish(ctx, ChangeInit, domainauth.Anonymous(), nil)
			return nil
		}
		s.publish(ctx, ChangeInit, domainauth.SessionFromClaims(bag), nil)
		return nil
	})
}

// Login authenticates with email and password and adopts the returned token.
func (s *SessionContext) Login(ctx context.Context, in ports.LoginInput) (ports.TokenResult, error) {
	var res ports.TokenResult
	err := s.run(ctx, "login", func(ctx context.Context) error {
		out, err := s.gateway.Login(ctx, in)
		if err != nil {
			return err
		}
		if err := s.commitToken(ctx, out.AccessToken, ChangeLogin, nil); err != nil {
			return err
		}
		res = out
		return nil
	})
	if err != nil {
		return ports.TokenResult{}, fmt.Errorf("login: %w", err)
	}
	return res, nil
}

// Register creates an account. It does not change the session.
func (s *SessionContext) Register(ctx context.Context, in ports.RegisterInput) (ports.RegisterResult, error) {
	res, err := s.gateway.Register(ctx, in)
	if err != nil {
		return ports.RegisterResult{}, fmt.Errorf("register: %w", err)
	}
	return res, nil
}

// ChangePassword changes the signed-in user's password. It does not change the session.
func (s *SessionContext) ChangePassword(ctx context.Context, in ports.ChangePasswordInput) error {
	if err := s.gateway.ChangePassword(ctx, in); err != nil {
		return fmt.Errorf("change password: %w", err)
	}
	return nil
}

// Refresh reissues the token for the current store scope.
func (s *SessionContext) Refresh(ctx context.Context) error {
	err := s.run(ctx, "refresh", func(ctx context.Context) error {
		out, err := s.gateway.RefreshAccess(ctx, s.Snapshot().StoreID)
		if err != nil {
			return err
		}
		return s.commitToken(ctx, out.AccessToken, ChangeRefresh, nil)
	})
	if err != nil {
		return fmt.Errorf("refresh: %w", err)
	}
	return nil
}

// Logout clears the credential and resets to the anonymous session.
func (s *SessionContext) Logout(ctx context.Context) error {
	err := s.run(ctx, "logout", func(ctx context.Context) error {
		if err := s.store.Clear(ctx); err != nil {
			return fmt.Errorf("clear credential: %w", err)
		}
		s.publish(ctx, ChangeLogout, domainauth.Anonymous(), nil)
		return nil
	})
	if err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

// StartTrial creates a trial store and rescopes the session to it.
func (s *SessionContext) StartTrial(ctx context.Context, storeName string) (ports.StartTrialResult, error) {
	var res ports.StartTrialResult
	err := s.run(ctx, "start_trial", func(ctx context.Context) error {
		out, err := s.gateway.CreateStoreTrial(ctx, ports.StartTrialInput{StoreName: storeName})
		if err != nil {
			return err
		}
		res = out

		tok, err := s.gateway.RefreshAccess(ctx, out.StoreID)
		if err != nil {
			return err
		}
		var display *domainauth.Store
		if out.StoreID != "" {
			display = &domainauth.Store{
				ID:        out.StoreID,
				StoreName: out.StoreName,
				IsActive:  true,
				CreatedAt: time.Now().UTC(),
			}
		}
		return s.commitToken(ctx, tok.AccessToken, ChangeTrial, display)
	})
	if err != nil {
		return ports.StartTrialResult{}, fmt.Errorf("start trial: %w", err)
	}
	return res, nil
}

// SyncStatus compares the server-authoritative subscription status with the
// token's and refreshes the token when they disagree. It is meant for passive,
// caller-scheduled checks: network and API failures are logged and swallowed.
// A concurrent mutation still yields a switch-conflict error.
func (s *SessionContext) SyncStatus(ctx context.Context) error {
	return s.run(ctx, "sync", func(ctx context.Context) error {
		cur := s.Snapshot()
		if !cur.Authenticated {
			return nil
		}
		remote, err := s.gateway.CheckStoreTrial(ctx)
		if err != nil {
			s.logger.WarnContext(ctx, "subscription status check failed", "error", err)
			return nil
		}
		if remote.Status == cur.Status {
			return nil
		}
		s.logger.InfoContext(ctx, "subscription status changed server-side",
			"token_status", cur.Status, "server_status", remote.Status, "store_id", cur.StoreID)

		out, err := s.gateway.RefreshAccess(ctx, cur.StoreID)
		if err != nil {
			s.logger.WarnContext(ctx, "token refresh after status change failed", "error", err)
			return nil
		}
		if err := s.commitToken(ctx, out.AccessToken, ChangeSync, nil); err != nil {
			s.logger.WarnContext(ctx, "refreshed token rejected", "error", err)
		}
		return nil
	})
}

// run executes a mutating operation under the single in-flight flag. The
// operation runs on a context detached from ctx's cancellation: if the caller
// stops waiting, run returns ctx.Err() and the operation still completes so
// the credential store and the session never disagree.
func (s *SessionContext) run(ctx context.Context, op string, fn func(context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !s.gate.TryAcquire(1) {
		inFlight := s.InFlight()
		if inFlight == "" {
			inFlight = "another operation"
		}
		s.metrics.Count("session.conflict", 1, map[string]string{"op": op, "in_flight": inFlight})
		s.logger.InfoContext(ctx, "session operation rejected", "op", op, "in_flight", inFlight)
		return apperrors.SwitchConflict(inFlight)
	}
	s.inFlight.Store(op)

	start := time.Now()
	done := make(chan error, 1)
	go func() {
		var err error
		defer func() {
			if r := recover(); r != nil {
				err = apperrors.Internal(fmt.Sprintf("%s panicked: %v", op, r))
			}
			s.inFlight.Store("")
			s.gate.Release(1)
			s.record(op, time.Since(start), err)
			done <- err
		}()
		err = fn(context.WithoutCancel(ctx))
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		s.logger.DebugContext(ctx, "caller stopped waiting; operation continues", "op", op)
		return ctx.Err()
	}
}

func (s *SessionContext) record(op string, d time.Duration, err error) {
	result := "success"
	if err != nil {
		result = obserrors.Classify(err)
	}
	tags := map[string]string{"op": op, "result": result}
	s.metrics.Count("session.op", 1, tags)
	s.metrics.Timing("session.op.duration", d, tags)
}

// decode wraps the claim decoder, logging unknown lifecycle values.
func (s *SessionContext) decode(ctx context.Context, tok string) (domainauth.ClaimBag, error) {
	bag, err := s.decoder.Decode(tok)
	if err != nil {
		return nil, err
	}
	if sub := domainauth.Resolve(bag); sub.UnknownStatus != "" {
		s.logger.WarnContext(ctx, "token carries unknown status; treating as Registered",
			"status", sub.UnknownStatus)
	}
	return bag, nil
}

// commitToken decodes, persists and publishes a token. A token that does not
// decode is not persisted and the session is left unchanged.
func (s *SessionContext) commitToken(ctx context.Context, token string, reason ChangeReason, display *domainauth.Store) error {
	tok, ok := domainauth.NormalizeToken(token)
	if !ok {
		return apperrors.API(0, "The server did not return an access token.")
	}
	bag, err := s.decode(ctx, tok)
	if err != nil {
		return err
	}
	return s.commitDecoded(ctx, tok, bag, reason, display)
}

func (s *SessionContext) commitDecoded(ctx context.Context, tok string, bag domainauth.ClaimBag, reason ChangeReason, display *domainauth.Store) error {
	if err := s.store.Set(ctx, tok); err != nil {
		return fmt.Errorf("persist credential: %w", err)
	}
	s.publish(ctx, reason, domainauth.SessionFromClaims(bag), display)
	return nil
}

// publish swaps in the new snapshot and notifies subscribers. The cached
// display store is kept only while it matches the token's store id.
func (s *SessionContext) publish(ctx context.Context, reason ChangeReason, next domainauth.Session, display *domainauth.Store) {
	prev := s.state.Load()

	var cached *domainauth.Store
	switch {
	case next.StoreID == "":
	case display != nil && display.ID == next.StoreID:
		cp := *display
		cached = &cp
	case prev.store != nil && prev.store.ID == next.StoreID && prev.session.UserID == next.UserID:
		cached = prev.store
	}
	s.state.Store(&sessionState{session: next, store: cached})

	s.observeTransition(ctx, reason, prev.session, next)

	change := Change{Reason: reason, Previous: prev.session, Current: next, Store: cached}
	s.subsMu.Lock()
	subs := make([]func(Change), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.subsMu.Unlock()
	for _, fn := range subs {
		fn(change)
	}
}

func (s *SessionContext) observeTransition(ctx context.Context, reason ChangeReason, prev, next domainauth.Session) {
	if next.TrialDaysRemaining != nil {
		s.metrics.Gauge("session.trial_days_remaining", float64(*next.TrialDaysRemaining),
			map[string]string{"store_id": next.StoreID})
	}

	sameUser := prev.Authenticated && next.Authenticated && prev.UserID == next.UserID
	switch {
	case sameUser && domainauth.IsRegression(prev.Status, next.Status):
		s.logger.WarnContext(ctx, "session status regressed",
			"reason", reason, "from", prev.Status, "to", next.Status, "store_id", next.StoreID)
	case prev.Status != next.Status || prev.StoreID != next.StoreID:
		s.logger.InfoContext(ctx, "session changed",
			"reason", reason, "status", next.Status, "store_id", next.StoreID)
	}
}
