package auth

import (
	"strconv"
	"strings"
	"time"
)

// SessionStatus is the subscription lifecycle state carried by a token.
type SessionStatus string

const (
	StatusRegistered SessionStatus = "Registered"
	StatusTrial      SessionStatus = "Trial"
	StatusActive     SessionStatus = "Active"
	StatusInactive   SessionStatus = "Inactive"
	StatusSuspended  SessionStatus = "Suspended"
)

// AllStatuses lists every SessionStatus member.
var AllStatuses = []SessionStatus{
	StatusRegistered,
	StatusTrial,
	StatusActive,
	StatusInactive,
	StatusSuspended,
}

// ParseSessionStatus matches raw case-insensitively against the enumeration.
// The second return value is false when raw is not a member.
func ParseSessionStatus(raw string) (SessionStatus, bool) {
	v := strings.TrimSpace(raw)
	for _, s := range AllStatuses {
		if strings.EqualFold(v, string(s)) {
			return s, true
		}
	}
	return StatusRegistered, false
}

// Valid reports whether s is one of the five lifecycle states.
func (s SessionStatus) Valid() bool {
	_, ok := ParseSessionStatus(string(s))
	return ok
}

// rank orders the progression Registered < Trial < Active.
// Inactive and Suspended sit outside the progression and rank -1.
func (s SessionStatus) rank() int {
	switch s {
	case StatusRegistered:
		return 0
	case StatusTrial:
		return 1
	case StatusActive:
		return 2
	default:
		return -1
	}
}

// IsRegression reports whether moving from prev to next walks the
// Registered -> Trial -> Active progression backwards.
func IsRegression(prev, next SessionStatus) bool {
	p, n := prev.rank(), next.rank()
	if p < 0 || n < 0 {
		return false
	}
	return n < p
}

// Subscription is the typed view of the lifecycle claims in a token.
type Subscription struct {
	Status              SessionStatus
	TrialExpired        bool
	TrialEndDate        *time.Time
	TrialDaysRemaining  *int
	SubscriptionExpired bool
	ExpiresAt           *time.Time

	// UnknownStatus holds the raw status claim when it was present but not a
	// recognised member; Status is then Registered.
	UnknownStatus string
}

// Resolve derives the subscription lifecycle from a claim bag.
// It is pure and total: missing or garbage claims degrade to safe defaults.
func Resolve(claims ClaimBag) Subscription {
	raw := claims.Get(ClaimStatus)
	status, ok := ParseSessionStatus(raw)

	sub := Subscription{
		Status:              status,
		TrialExpired:        parseBool(claims.Get(ClaimTrialExpired)),
		SubscriptionExpired: parseBool(claims.Get(ClaimSubscriptionExpired)),
		TrialDaysRemaining:  parseInt(claims.Get(ClaimTrialDaysRemaining)),
		TrialEndDate:        parseDate(claims.Get(ClaimTrialEndDate)),
		ExpiresAt:           parseUnix(claims.Get(ClaimExpiresAt)),
	}
	if !ok && raw != "" {
		sub.UnknownStatus = raw
	}
	return sub
}

func parseBool(v string) bool {
	return strings.EqualFold(strings.TrimSpace(v), "true")
}

func parseInt(v string) *int {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil
	}
	return &n
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	time.DateOnly,
}

func parseDate(v string) *time.Time {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return &t
		}
	}
	return nil
}

func parseUnix(v string) *time.Time {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	secs, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return nil
	}
	t := time.Unix(secs, 0).UTC()
	return &t
}
