package auth

// CanAccess decides whether a feature may be used in the given session.
// Access is denied only when the feature needs a store and none is selected.
func CanAccess(s Session, featureRequiresStore bool) bool {
	return !featureRequiresStore || s.HasStore()
}

// NeedsUpgrade reports whether the session should be steered to the
// subscription page: an expired trial or subscription, or a store that has
// been deactivated or suspended.
func NeedsUpgrade(s Session) bool {
	if !s.Authenticated {
		return false
	}
	switch s.Status {
	case StatusInactive, StatusSuspended:
		return true
	case StatusTrial:
		return s.TrialExpired
	case StatusActive:
		return s.SubscriptionExpired
	default:
		return false
	}
}
