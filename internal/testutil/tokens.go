package testutil

import (
	"encoding/base64"
	"encoding/json"

	"github.com/golang-jwt/jwt/v5"
)

var fixtureKey = []byte("testutil-fixture-key")

// MintToken returns an HS256 token carrying claims. The signature is never
// checked by the session engine; it only has to be well formed.
func MintToken(t TestingTB, claims map[string]any) string {
	t.Helper()

	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims(claims)).SignedString(fixtureKey)
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return tok
}

// RawToken builds a three-segment token whose payload is the given bytes
// verbatim. Useful for malformed or hand-shaped payloads.
func RawToken(payload []byte) string {
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"none","typ":"JWT"}`))
	return header + "." + base64.RawURLEncoding.EncodeToString(payload) + ".sig"
}

// TokenClaims is a fluent builder for session fixture claims.
type TokenClaims struct {
	claims map[string]any
}

// NewClaims starts a claim set for user id sub.
func NewClaims(sub string) *TokenClaims {
	return &TokenClaims{claims: map[string]any{"sub": sub}}
}

// WithEmail sets the email claim.
func (c *TokenClaims) WithEmail(email string) *TokenClaims {
	c.claims["email"] = email
	return c
}

// WithStatus sets the lifecycle status claim.
func (c *TokenClaims) WithStatus(status string) *TokenClaims {
	c.claims["status"] = status
	return c
}

// WithStore scopes the token to storeID with the given in-store role.
func (c *TokenClaims) WithStore(storeID, role string) *TokenClaims {
	c.claims["store_id"] = storeID
	if role != "" {
		c.claims["store_role"] = role
	}
	return c
}

// With sets an arbitrary claim.
func (c *TokenClaims) With(key string, value any) *TokenClaims {
	c.claims[key] = value
	return c
}

// Map returns a copy of the claims.
func (c *TokenClaims) Map() map[string]any {
	out := make(map[string]any, len(c.claims))
	for k, v := range c.claims {
		out[k] = v
	}
	return out
}

// Token mints the claims into a token.
func (c *TokenClaims) Token(t TestingTB) string {
	t.Helper()
	return MintToken(t, c.claims)
}

// JSON returns the claims as a JSON object, e.g. for an auth/me fixture.
func (c *TokenClaims) JSON(t TestingTB) []byte {
	t.Helper()
	b, err := json.Marshal(c.claims)
	if err != nil {
		t.Fatalf("marshal claims: %v", err)
	}
	return b
}
