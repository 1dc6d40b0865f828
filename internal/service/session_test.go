package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/Baodng2402/360-Retail-Web-sub000/internal/adapters/credstore"
	domainauth "github.com/Baodng2402/360-Retail-Web-sub000/internal/domain/auth"
	apperrors "github.com/Baodng2402/360-Retail-Web-sub000/internal/errors"
	"github.com/Baodng2402/360-Retail-Web-sub000/internal/mocks"
	fakes "github.com/Baodng2402/360-Retail-Web-sub000/internal/mocks/auth"
	"github.com/Baodng2402/360-Retail-Web-sub000/internal/ports"
	"github.com/Baodng2402/360-Retail-Web-sub000/internal/testutil"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestSession(t *testing.T, gw ports.AuthGateway, store ports.CredentialStore) *SessionContext {
	t.Helper()
	s, err := NewSessionContext(SessionOptions{Gateway: gw, Store: store, Logger: discardLogger()})
	require.NoError(t, err)
	return s
}

func ownerAccount() fakes.Account {
	return fakes.Account{
		UserID:       "owner-1",
		Email:        "owner@example.com",
		Password:     "secret",
		Role:         "Owner",
		Status:       domainauth.StatusActive,
		Stores:       map[string]string{"store-1": "Owner", "store-2": "Manager"},
		DefaultStore: "store-1",
	}
}

func staffAccount() fakes.Account {
	return fakes.Account{
		UserID:   "staff-9",
		Email:    "staff@example.com",
		Password: "hunter2",
		Status:   domainauth.StatusRegistered,
	}
}

func login(t *testing.T, s *SessionContext, a fakes.Account) {
	t.Helper()
	_, err := s.Login(context.Background(), ports.LoginInput{Email: a.Email, Password: a.Password})
	require.NoError(t, err)
}

type recordingSink struct {
	mu     sync.Mutex
	counts map[string]int64
	gauges map[string]float64
}

func newRecordingSink() *recordingSink {
	return &recordingSink{counts: map[string]int64{}, gauges: map[string]float64{}}
}

func (r *recordingSink) Count(name string, v int64, tags map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counts[name+"|"+tags["op"]+"|"+tags["result"]] += v
}

func (r *recordingSink) Gauge(name string, v float64, _ map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gauges[name] = v
}

func (r *recordingSink) Timing(string, time.Duration, map[string]string) {}

func (r *recordingSink) count(key string) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counts[key]
}

func TestNewSessionContext_RequiresDependencies(t *testing.T) {
	_, err := NewSessionContext(SessionOptions{Store: credstore.NewMemory("")})
	require.Error(t, err)

	_, err = NewSessionContext(SessionOptions{Gateway: fakes.NewFakeGateway()})
	require.Error(t, err)

	s, err := NewSessionContext(SessionOptions{Gateway: fakes.NewFakeGateway(), Store: credstore.NewMemory("")})
	require.NoError(t, err)
	assert.True(t, s.Snapshot().IsAnonymous())
	assert.Empty(t, s.InFlight())
}

func TestSessionContext_Init(t *testing.T) {
	valid := testutil.NewClaims("u-1").
		WithEmail("u1@example.com").
		WithStatus("Trial").
		WithStore("store-7", "Owner").
		With("trial_days_remaining", "3").
		Token(t)

	tests := []struct {
		name      string
		persisted string
		wantAnon  bool
	}{
		{name: "nothing persisted", persisted: "", wantAnon: true},
		{name: "undefined literal", persisted: "undefined", wantAnon: true},
		{name: "null literal", persisted: "null", wantAnon: true},
		{name: "malformed token", persisted: "abc.def", wantAnon: true},
		{name: "garbage payload", persisted: testutil.RawToken([]byte("not json")), wantAnon: true},
		{name: "valid token", persisted: valid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			gw := mocks.NewMockAuthGateway(ctrl) // no expectations: init never touches the network
			s := newTestSession(t, gw, credstore.NewMemory(tt.persisted))

			require.NoError(t, s.Init(context.Background()))

			got := s.Snapshot()
			if tt.wantAnon {
				assert.Equal(t, domainauth.Anonymous(), got)
				_, ok := s.CurrentStore()
				assert.False(t, ok)
				return
			}
			assert.True(t, got.Authenticated)
			assert.Equal(t, "u-1", got.UserID)
			assert.Equal(t, domainauth.StatusTrial, got.Status)
			require.NotNil(t, got.TrialDaysRemaining)
			assert.Equal(t, 3, *got.TrialDaysRemaining)

			st, ok := s.CurrentStore()
			require.True(t, ok)
			assert.Equal(t, "store-7", st.ID)
			assert.Empty(t, st.StoreName)
		})
	}
}

func TestSessionContext_InitStoreReadFailure(t *testing.T) {
	boom := errors.New("keychain locked")
	s := newTestSession(t, fakes.NewFakeGateway(), &fakes.FaultyStore{Inner: credstore.NewMemory(""), GetErr: boom})

	err := s.Init(context.Background())
	require.ErrorIs(t, err, boom)
	assert.True(t, s.Snapshot().IsAnonymous())
}

func TestSessionContext_LoginPersistsAndDecodes(t *testing.T) {
	gw := fakes.NewFakeGateway(ownerAccount())
	store := credstore.NewMemory("")
	s := newTestSession(t, gw, store)

	var changes []Change
	unsubscribe := s.Subscribe(func(c Change) { changes = append(changes, c) })
	defer unsubscribe()

	res, err := s.Login(context.Background(), ports.LoginInput{Email: "owner@example.com", Password: "secret"})
	require.NoError(t, err)

	persisted, ok, err := store.Get(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, res.AccessToken, persisted)

	got := s.Snapshot()
	assert.Equal(t, "owner-1", got.UserID)
	assert.Equal(t, domainauth.StatusActive, got.Status)
	assert.Equal(t, "store-1", got.StoreID)
	assert.True(t, s.CanAccess(true))

	require.Len(t, changes, 1)
	assert.Equal(t, ChangeLogin, changes[0].Reason)
	assert.True(t, changes[0].Previous.IsAnonymous())
	assert.Equal(t, got, changes[0].Current)
}

func TestSessionContext_LoginFailureLeavesStateUntouched(t *testing.T) {
	gw := fakes.NewFakeGateway(ownerAccount())
	store := credstore.NewMemory("")
	s := newTestSession(t, gw, store)

	_, err := s.Login(context.Background(), ports.LoginInput{Email: "owner@example.com", Password: "wrong"})
	require.Error(t, err)
	assert.Equal(t, "Invalid email or password.", apperrors.UserMessage(err))

	assert.True(t, s.Snapshot().IsAnonymous())
	_, ok, _ := store.Get(context.Background())
	assert.False(t, ok)
}

func TestSessionContext_LoginRejectsUndecodableToken(t *testing.T) {
	ctrl := gomock.NewController(t)
	gw := mocks.NewMockAuthGateway(ctrl)
	gw.EXPECT().Login(gomock.Any(), gomock.Any()).Return(ports.TokenResult{AccessToken: "not-a-token"}, nil)

	store := credstore.NewMemory("")
	s := newTestSession(t, gw, store)

	_, err := s.Login(context.Background(), ports.LoginInput{Email: "a@b.c", Password: "x"})
	require.Error(t, err)
	assert.True(t, apperrors.IsMalformedToken(err))

	_, ok, _ := store.Get(context.Background())
	assert.False(t, ok, "undecodable token must not be persisted")
	assert.True(t, s.Snapshot().IsAnonymous())
}

func TestSessionContext_PersistFailureLeavesStateUntouched(t *testing.T) {
	boom := errors.New("disk full")
	gw := fakes.NewFakeGateway(ownerAccount())
	s := newTestSession(t, gw, &fakes.FaultyStore{Inner: credstore.NewMemory(""), SetErr: boom})

	_, err := s.Login(context.Background(), ports.LoginInput{Email: "owner@example.com", Password: "secret"})
	require.ErrorIs(t, err, boom)
	assert.True(t, s.Snapshot().IsAnonymous())
}

func TestSessionContext_RefreshRejectedWhileLoginInFlight(t *testing.T) {
	ctrl := gomock.NewController(t)
	gw := mocks.NewMockAuthGateway(ctrl)

	entered := make(chan struct{})
	release := make(chan struct{})
	loginTok := testutil.NewClaims("u-1").WithStatus("Active").Token(t)
	refreshTok := testutil.NewClaims("u-1").WithStatus("Active").WithStore("store-1", "Owner").Token(t)

	gw.EXPECT().Login(gomock.Any(), gomock.Any()).DoAndReturn(
		func(context.Context, ports.LoginInput) (ports.TokenResult, error) {
			close(entered)
			<-release
			return ports.TokenResult{AccessToken: loginTok}, nil
		})
	gw.EXPECT().RefreshAccess(gomock.Any(), "").Return(ports.TokenResult{AccessToken: refreshTok}, nil)

	s := newTestSession(t, gw, credstore.NewMemory(""))
	ctx := context.Background()

	loginErr := make(chan error, 1)
	go func() {
		_, err := s.Login(ctx, ports.LoginInput{Email: "u@example.com", Password: "pw"})
		loginErr <- err
	}()
	<-entered

	assert.Equal(t, "login", s.InFlight())

	err := s.Refresh(ctx)
	require.Error(t, err)
	assert.True(t, apperrors.IsSwitchConflict(err))
	assert.Contains(t, err.Error(), "login already in progress")

	require.True(t, apperrors.IsSwitchConflict(s.Logout(ctx)))
	assert.True(t, s.Snapshot().IsAnonymous())

	close(release)
	require.NoError(t, <-loginErr)
	assert.Equal(t, "u-1", s.Snapshot().UserID)

	require.NoError(t, s.Refresh(ctx))
	assert.Equal(t, "store-1", s.Snapshot().StoreID)
}

func TestSessionContext_LogoutThenLoginAsAnotherUser(t *testing.T) {
	end := time.Now().Add(72 * time.Hour)
	owner := ownerAccount()
	owner.Status = domainauth.StatusTrial
	owner.TrialEndDate = &end
	staff := staffAccount()

	gw := fakes.NewFakeGateway(owner, staff)
	store := credstore.NewMemory("")
	s := newTestSession(t, gw, store)

	var reasons []ChangeReason
	var afterLogout domainauth.Session
	s.Subscribe(func(c Change) {
		reasons = append(reasons, c.Reason)
		if c.Reason == ChangeLogout {
			afterLogout = c.Current
		}
	})

	login(t, s, owner)
	require.Equal(t, domainauth.StatusTrial, s.Snapshot().Status)
	require.NotNil(t, s.Snapshot().TrialDaysRemaining)

	require.NoError(t, s.Logout(context.Background()))
	assert.Equal(t, domainauth.Anonymous(), s.Snapshot())
	assert.Equal(t, domainauth.Anonymous(), afterLogout)
	_, ok, _ := store.Get(context.Background())
	assert.False(t, ok)
	_, ok = s.CurrentStore()
	assert.False(t, ok)

	login(t, s, staff)
	got := s.Snapshot()
	assert.Equal(t, "staff-9", got.UserID)
	assert.Equal(t, domainauth.StatusRegistered, got.Status)
	assert.Empty(t, got.StoreID)
	assert.Nil(t, got.TrialDaysRemaining)
	assert.Nil(t, got.TrialEndDate)
	assert.False(t, got.TrialExpired)
	_, ok = s.CurrentStore()
	assert.False(t, ok)
	assert.False(t, s.CanAccess(true))
	assert.True(t, s.CanAccess(false))

	assert.Equal(t, []ChangeReason{ChangeLogin, ChangeLogout, ChangeLogin}, reasons)
}

func TestSessionContext_LogoutClearFailureKeepsSession(t *testing.T) {
	boom := errors.New("permission denied")
	faulty := &fakes.FaultyStore{Inner: credstore.NewMemory("")}
	s := newTestSession(t, fakes.NewFakeGateway(ownerAccount()), faulty)
	login(t, s, ownerAccount())

	faulty.ClearErr = boom
	err := s.Logout(context.Background())
	require.ErrorIs(t, err, boom)
	assert.Equal(t, "owner-1", s.Snapshot().UserID)
}

func TestSessionContext_AbandonedRefreshStillCompletes(t *testing.T) {
	ctrl := gomock.NewController(t)
	gw := mocks.NewMockAuthGateway(ctrl)

	entered := make(chan struct{})
	release := make(chan struct{})
	tok := testutil.NewClaims("u-1").WithStatus("Active").WithStore("store-3", "Owner").Token(t)
	gw.EXPECT().RefreshAccess(gomock.Any(), "").DoAndReturn(
		func(ctx context.Context, _ string) (ports.TokenResult, error) {
			close(entered)
			<-release
			if ctx.Err() != nil {
				return ports.TokenResult{}, ctx.Err()
			}
			return ports.TokenResult{AccessToken: tok}, nil
		})

	store := credstore.NewMemory("")
	s := newTestSession(t, gw, store)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Refresh(ctx) }()
	<-entered

	cancel()
	err := <-done
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, "refresh", s.InFlight())

	close(release)
	require.Eventually(t, func() bool { return s.InFlight() == "" }, 2*time.Second, 5*time.Millisecond)

	assert.Equal(t, "store-3", s.Snapshot().StoreID)
	persisted, ok, _ := store.Get(context.Background())
	require.True(t, ok)
	assert.Equal(t, tok, persisted)
}

func TestSessionContext_AbandonedStartTrialStillCompletes(t *testing.T) {
	ctrl := gomock.NewController(t)
	gw := mocks.NewMockAuthGateway(ctrl)

	entered := make(chan struct{})
	release := make(chan struct{})
	tok := testutil.NewClaims("u-1").WithStatus("Trial").WithStore("trial-1", "Owner").Token(t)
	gw.EXPECT().CreateStoreTrial(gomock.Any(), ports.StartTrialInput{StoreName: "Corner Shop"}).DoAndReturn(
		func(context.Context, ports.StartTrialInput) (ports.StartTrialResult, error) {
			close(entered)
			<-release
			return ports.StartTrialResult{StoreID: "trial-1", StoreName: "Corner Shop"}, nil
		})
	gw.EXPECT().RefreshAccess(gomock.Any(), "trial-1").Return(ports.TokenResult{AccessToken: tok}, nil)

	store := credstore.NewMemory("")
	s := newTestSession(t, gw, store)

	type outcome struct {
		res ports.StartTrialResult
		err error
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan outcome, 1)
	go func() {
		res, err := s.StartTrial(ctx, "Corner Shop")
		done <- outcome{res, err}
	}()
	<-entered

	cancel()
	got := <-done
	require.ErrorIs(t, got.err, context.Canceled)
	assert.Equal(t, ports.StartTrialResult{}, got.res)

	close(release)
	require.Eventually(t, func() bool { return s.InFlight() == "" }, 2*time.Second, 5*time.Millisecond)

	assert.Equal(t, "trial-1", s.Snapshot().StoreID)
	current, ok := s.CurrentStore()
	require.True(t, ok)
	assert.Equal(t, "Corner Shop", current.StoreName)
	persisted, ok, _ := store.Get(context.Background())
	require.True(t, ok)
	assert.Equal(t, tok, persisted)
}

func TestSessionContext_CanceledContextDoesNothing(t *testing.T) {
	ctrl := gomock.NewController(t)
	gw := mocks.NewMockAuthGateway(ctrl)
	s := newTestSession(t, gw, credstore.NewMemory(""))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Login(ctx, ports.LoginInput{Email: "a@b.c", Password: "x"})
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, s.InFlight())
}

func TestSessionContext_PanicReleasesGate(t *testing.T) {
	gw := fakes.NewFakeGateway(ownerAccount())
	gw.RefreshAccessFunc = func(context.Context, string) (ports.TokenResult, error) {
		panic("boom")
	}
	s := newTestSession(t, gw, credstore.NewMemory(""))

	err := s.Refresh(context.Background())
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeInternal, apperrors.GetCode(err))
	assert.Empty(t, s.InFlight())

	login(t, s, ownerAccount())
}

func TestSessionContext_StartTrial(t *testing.T) {
	a := staffAccount()
	gw := fakes.NewFakeGateway(a)
	sink := newRecordingSink()
	s, err := NewSessionContext(SessionOptions{
		Gateway: gw,
		Store:   credstore.NewMemory(""),
		Logger:  discardLogger(),
		Metrics: sink,
	})
	require.NoError(t, err)
	login(t, s, a)
	require.False(t, s.CanAccess(true))

	res, err := s.StartTrial(context.Background(), "Corner Shop")
	require.NoError(t, err)
	assert.Equal(t, "trial-store-1", res.StoreID)

	got := s.Snapshot()
	assert.Equal(t, domainauth.StatusTrial, got.Status)
	assert.Equal(t, "trial-store-1", got.StoreID)
	assert.Equal(t, domainauth.StoreRole("Owner"), got.StoreRole)
	assert.True(t, s.CanAccess(true))

	st, ok := s.CurrentStore()
	require.True(t, ok)
	assert.Equal(t, "Corner Shop", st.StoreName)

	assert.Equal(t, int64(1), sink.count("session.op|start_trial|success"))
	assert.Equal(t, int64(1), sink.count("session.op|login|success"))
	_, hasGauge := sink.gauges["session.trial_days_remaining"]
	assert.True(t, hasGauge)
}

func TestSessionContext_StartTrialFailureKeepsSession(t *testing.T) {
	a := ownerAccount() // already Active: trial is refused
	gw := fakes.NewFakeGateway(a)
	s := newTestSession(t, gw, credstore.NewMemory(""))
	login(t, s, a)
	before := s.Snapshot()

	_, err := s.StartTrial(context.Background(), "Another")
	require.Error(t, err)
	assert.Equal(t, "Trial already used", apperrors.UserMessage(err))
	assert.Equal(t, before, s.Snapshot())
}

func TestSessionContext_SyncStatusRefreshesOnServerChange(t *testing.T) {
	a := ownerAccount()
	a.Status = domainauth.StatusTrial
	gw := fakes.NewFakeGateway(a)
	s := newTestSession(t, gw, credstore.NewMemory(""))
	login(t, s, a)

	require.NoError(t, s.SyncStatus(context.Background()))
	assert.NotContains(t, gw.Calls(), "RefreshAccess", "unchanged status must not refresh")

	gw.SetStatus(a.Email, domainauth.StatusActive)
	require.NoError(t, s.SyncStatus(context.Background()))

	got := s.Snapshot()
	assert.Equal(t, domainauth.StatusActive, got.Status)
	assert.Equal(t, "store-1", got.StoreID)
	assert.Contains(t, gw.Calls(), "RefreshAccess")
}

func TestSessionContext_SyncStatusSwallowsNetworkFailure(t *testing.T) {
	a := ownerAccount()
	gw := fakes.NewFakeGateway(a)
	s := newTestSession(t, gw, credstore.NewMemory(""))
	login(t, s, a)
	before := s.Snapshot()

	gw.CheckStoreTrialFunc = func(context.Context) (ports.SubscriptionStatus, error) {
		return ports.SubscriptionStatus{}, apperrors.Network(errors.New("connection refused"))
	}

	require.NoError(t, s.SyncStatus(context.Background()))
	assert.Equal(t, before, s.Snapshot())
}

func TestSessionContext_SyncStatusAnonymousIsNoop(t *testing.T) {
	ctrl := gomock.NewController(t)
	s := newTestSession(t, mocks.NewMockAuthGateway(ctrl), credstore.NewMemory(""))
	require.NoError(t, s.SyncStatus(context.Background()))
}

func TestSessionContext_LogsStatusRegression(t *testing.T) {
	var buf bytes.Buffer
	a := ownerAccount()
	gw := fakes.NewFakeGateway(a)
	s, err := NewSessionContext(SessionOptions{
		Gateway: gw,
		Store:   credstore.NewMemory(""),
		Logger:  slog.New(slog.NewTextHandler(&buf, nil)),
	})
	require.NoError(t, err)
	login(t, s, a)
	assert.NotContains(t, buf.String(), "session status regressed")

	gw.SetStatus(a.Email, domainauth.StatusTrial)
	require.NoError(t, s.Refresh(context.Background()))

	assert.Equal(t, domainauth.StatusTrial, s.Snapshot().Status)
	assert.Contains(t, buf.String(), "session status regressed")
}

func TestSessionContext_UnsubscribeStopsNotifications(t *testing.T) {
	a := ownerAccount()
	s := newTestSession(t, fakes.NewFakeGateway(a), credstore.NewMemory(""))

	calls := 0
	unsubscribe := s.Subscribe(func(Change) { calls++ })
	login(t, s, a)
	unsubscribe()
	unsubscribe()
	require.NoError(t, s.Logout(context.Background()))

	assert.Equal(t, 1, calls)
}

func TestSessionContext_RegisterAndChangePasswordDoNotTouchSession(t *testing.T) {
	a := ownerAccount()
	gw := fakes.NewFakeGateway(a)
	s := newTestSession(t, gw, credstore.NewMemory(""))

	_, err := s.Register(context.Background(), ports.RegisterInput{Email: "new@example.com", Password: "pw"})
	require.NoError(t, err)
	assert.True(t, s.Snapshot().IsAnonymous())

	login(t, s, a)
	before := s.Snapshot()
	require.NoError(t, s.ChangePassword(context.Background(), ports.ChangePasswordInput{
		CurrentPassword: "secret", NewPassword: "n3w", ConfirmNewPassword: "n3w",
	}))
	assert.Equal(t, before, s.Snapshot())
}
