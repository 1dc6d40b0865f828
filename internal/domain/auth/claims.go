package auth

import "strings"

// Canonical claim names consumed by the session engine.
const (
	ClaimSubject             = "sub"
	ClaimEmail               = "email"
	ClaimRole                = "role"
	ClaimName                = "name"
	ClaimStatus              = "status"
	ClaimStoreID             = "store_id"
	ClaimStoreRole           = "store_role"
	ClaimTrialExpired        = "trial_expired"
	ClaimTrialEndDate        = "trial_end_date"
	ClaimTrialDaysRemaining  = "trial_days_remaining"
	ClaimSubscriptionExpired = "subscription_expired"
	ClaimExpiresAt           = "exp"
)

// claimAliases lists the keys checked for each canonical claim, in lookup order.
// The long URI forms are emitted by the legacy identity issuer and must keep resolving.
var claimAliases = map[string][]string{
	ClaimSubject: {
		"sub",
		"nameid",
		"nameidentifier",
		"http://schemas.xmlsoap.org/ws/2005/05/identity/claims/nameidentifier",
	},
	ClaimEmail: {
		"email",
		"emailaddress",
		"http://schemas.xmlsoap.org/ws/2005/05/identity/claims/emailaddress",
	},
	ClaimRole: {
		"role",
		"http://schemas.microsoft.com/ws/2008/06/identity/claims/role",
	},
	ClaimName: {
		"name",
		"unique_name",
		"http://schemas.xmlsoap.org/ws/2005/05/identity/claims/name",
	},
}

// ClaimBag is the untyped claim set carried by a bearer token payload.
// Values are strings as issued; every read must validate or convert.
type ClaimBag map[string]string

// Get resolves a canonical claim name, checking the short key first and then
// its legacy aliases. The first non-empty value wins.
func (c ClaimBag) Get(canonical string) string {
	if len(c) == 0 {
		return ""
	}
	keys, ok := claimAliases[canonical]
	if !ok {
		keys = []string{canonical}
	}
	for _, k := range keys {
		if v := strings.TrimSpace(c[k]); v != "" {
			return v
		}
	}
	return ""
}

// Has reports whether the canonical claim resolves to a non-empty value.
func (c ClaimBag) Has(canonical string) bool {
	return c.Get(canonical) != ""
}

// Clone returns an independent copy of the bag.
func (c ClaimBag) Clone() ClaimBag {
	out := make(ClaimBag, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// Aliases returns the lookup keys for a canonical claim name.
func Aliases(canonical string) []string {
	keys, ok := claimAliases[canonical]
	if !ok {
		return []string{canonical}
	}
	out := make([]string, len(keys))
	copy(out, keys)
	return out
}
