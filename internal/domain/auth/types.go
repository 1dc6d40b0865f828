package auth

// Package auth contains domain-level types for the back-office session:
// claims, lifecycle status, the current store and access decisions.
// It is pure and free of framework/adapter concerns.

import (
	"strings"
	"time"
)

// Role is the account-level role asserted by the issuer (e.g. "Owner", "Staff").
// Kept as the issued string; the engine never branches on unknown values.
type Role string

// StoreRole is the caller's role within the currently selected store.
type StoreRole string

// Session is the decoded view of the current bearer token.
// The zero value is the anonymous session.
type Session struct {
	Authenticated bool      `json:"authenticated"`
	UserID        string    `json:"user_id,omitempty"`
	Email         string    `json:"email,omitempty"`
	Name          string    `json:"name,omitempty"`
	Role          Role      `json:"role,omitempty"`
	StoreID       string    `json:"store_id,omitempty"`
	StoreRole     StoreRole `json:"store_role,omitempty"`

	Status              SessionStatus `json:"status,omitempty"`
	TrialExpired        bool          `json:"trial_expired"`
	TrialEndDate        *time.Time    `json:"trial_end_date,omitempty"`
	TrialDaysRemaining  *int          `json:"trial_days_remaining,omitempty"`
	SubscriptionExpired bool          `json:"subscription_expired"`
	ExpiresAt           *time.Time    `json:"expires_at,omitempty"`
}

// Anonymous returns the session used when no usable credential exists.
func Anonymous() Session { return Session{} }

// IsAnonymous returns true when no principal is attached.
func (s Session) IsAnonymous() bool { return !s.Authenticated }

// HasStore returns true when the token is scoped to a store.
func (s Session) HasStore() bool { return s.StoreID != "" }

// SessionFromClaims builds a Session from a decoded claim bag.
// An empty bag yields the anonymous session.
func SessionFromClaims(claims ClaimBag) Session {
	if len(claims) == 0 {
		return Anonymous()
	}
	sub := Resolve(claims)
	return Session{
		Authenticated:       true,
		UserID:              claims.Get(ClaimSubject),
		Email:               claims.Get(ClaimEmail),
		Name:                claims.Get(ClaimName),
		Role:                Role(claims.Get(ClaimRole)),
		StoreID:             claims.Get(ClaimStoreID),
		StoreRole:           StoreRole(claims.Get(ClaimStoreRole)),
		Status:              sub.Status,
		TrialExpired:        sub.TrialExpired,
		TrialEndDate:        sub.TrialEndDate,
		TrialDaysRemaining:  sub.TrialDaysRemaining,
		SubscriptionExpired: sub.SubscriptionExpired,
		ExpiresAt:           sub.ExpiresAt,
	}
}

// Store is a tenant the user may operate against.
type Store struct {
	ID        string    `json:"id"`
	StoreName string    `json:"storeName"`
	Address   string    `json:"address,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	IsActive  bool      `json:"isActive"`
	IsDefault bool      `json:"isDefault"`
	CreatedAt time.Time `json:"createdAt"`
}

// NormalizeToken returns the trimmed token and whether it is usable.
// Empty strings and the literals "null" and "undefined" are treated as absent.
func NormalizeToken(raw string) (string, bool) {
	v := strings.TrimSpace(raw)
	if v == "" || strings.EqualFold(v, "null") || strings.EqualFold(v, "undefined") {
		return "", false
	}
	return v, true
}
