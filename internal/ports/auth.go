package ports

// Package ports defines interfaces (hexagonal ports) for session-related behavior.
// Implementations live in internal/adapters; orchestration in internal/service.

import (
	"context"
	"time"

	domainauth "github.com/Baodng2402/360-Retail-Web-sub000/internal/domain/auth"
)

// ClaimDecoder turns a bearer token into its claim bag.
// Decode never panics; on failure it returns an empty bag and a malformed-token error.
type ClaimDecoder interface {
	Decode(token string) (domainauth.ClaimBag, error)
}

// CredentialStore persists the single bearer-token slot.
// Implementations normalise placeholder values ("", "null", "undefined") to absent
// on both read and write.
type CredentialStore interface {
	// Get returns the stored token and whether a usable one exists.
	Get(ctx context.Context) (token string, ok bool, err error)
	// Set overwrites the slot. Setting an absent value clears it.
	Set(ctx context.Context, token string) error
	// Clear empties the slot.
	Clear(ctx context.Context) error
}

// LoginInput carries credentials for password login.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterInput carries fields for account registration.
type RegisterInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterResult is the server acknowledgement for a registration.
type RegisterResult struct {
	Message string `json:"message,omitempty"`
}

// TokenResult is returned by login and access refresh.
type TokenResult struct {
	AccessToken        string    `json:"accessToken"`
	ExpiresAt          time.Time `json:"expiresAt"`
	MustChangePassword bool      `json:"mustChangePassword"`
}

// ChangePasswordInput carries a password change request.
type ChangePasswordInput struct {
	CurrentPassword    string `json:"currentPassword"`
	NewPassword        string `json:"newPassword"`
	ConfirmNewPassword string `json:"confirmNewPassword"`
}

// SubscriptionStatus is the server-authoritative subscription state for the current store.
type SubscriptionStatus struct {
	Status        domainauth.SessionStatus `json:"status"`
	PlanName      string                   `json:"planName,omitempty"`
	StoreID       string                   `json:"storeId,omitempty"`
	TrialEndDate  *time.Time               `json:"trialEndDate,omitempty"`
	DaysRemaining *int                     `json:"daysRemaining,omitempty"`
	HasStore      bool                     `json:"hasStore"`
}

// StartTrialInput requests a trial for a new store.
type StartTrialInput struct {
	StoreName string `json:"storeName"`
}

// StartTrialResult describes the store created for a trial.
type StartTrialResult struct {
	StoreID      string     `json:"storeId"`
	StoreName    string     `json:"storeName"`
	TrialEndDate *time.Time `json:"trialEndDate,omitempty"`
	Message      string     `json:"message,omitempty"`
}

// AuthGateway is the HTTP boundary of the identity and subscription services.
// Every call attaches the stored credential when present and never clears it.
type AuthGateway interface {
	Login(ctx context.Context, in LoginInput) (TokenResult, error)
	Register(ctx context.Context, in RegisterInput) (RegisterResult, error)
	// Me returns the server's view of the caller's claims.
	Me(ctx context.Context) (domainauth.ClaimBag, error)
	// MeFromLocalToken decodes the stored credential without a network call.
	MeFromLocalToken(ctx context.Context) (domainauth.Session, error)
	// RefreshAccess reissues the token, scoped to storeID when non-empty.
	RefreshAccess(ctx context.Context, storeID string) (TokenResult, error)
	ChangePassword(ctx context.Context, in ChangePasswordInput) error
	CheckStoreTrial(ctx context.Context) (SubscriptionStatus, error)
	CreateStoreTrial(ctx context.Context, in StartTrialInput) (StartTrialResult, error)
}
