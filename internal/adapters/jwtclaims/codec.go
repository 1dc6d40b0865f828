// Package jwtclaims decodes bearer-token payloads into claim bags.
//
// The codec performs no signature verification. Tokens are issued and
// validated by the identity service; this package only reads what they assert.
package jwtclaims

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	domainauth "github.com/Baodng2402/360-Retail-Web-sub000/internal/domain/auth"
	apperrors "github.com/Baodng2402/360-Retail-Web-sub000/internal/errors"
	"github.com/Baodng2402/360-Retail-Web-sub000/internal/ports"
)

var _ ports.ClaimDecoder = (*Codec)(nil)

// Codec is a stateless ClaimDecoder. The zero value is ready to use.
type Codec struct{}

// New returns a Codec.
func New() *Codec { return &Codec{} }

// Decode returns the claims carried by token. It never panics: any malformed
// input yields an empty, non-nil bag and a malformed-token error.
func (c *Codec) Decode(token string) (bag domainauth.ClaimBag, err error) {
	defer func() {
		if r := recover(); r != nil {
			bag = domainauth.ClaimBag{}
			err = apperrors.MalformedToken(fmt.Errorf("%w: %v", jwt.ErrTokenMalformed, r))
		}
	}()

	claims, err := parsePayload(token)
	if err != nil {
		return domainauth.ClaimBag{}, apperrors.MalformedToken(err)
	}
	return flatten(claims), nil
}

func parsePayload(token string) (jwt.MapClaims, error) {
	parts := strings.Split(strings.TrimSpace(token), ".")
	if len(parts) != 3 {
		return nil, fmt.Errorf("%w: expected 3 segments, got %d", jwt.ErrTokenMalformed, len(parts))
	}

	raw, err := base64.StdEncoding.DecodeString(padSegment(parts[1]))
	if err != nil {
		return nil, fmt.Errorf("%w: payload is not base64url: %w", jwt.ErrTokenMalformed, err)
	}

	var claims jwt.MapClaims
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&claims); err != nil {
		return nil, fmt.Errorf("%w: payload is not a JSON object: %w", jwt.ErrTokenMalformed, err)
	}
	if claims == nil {
		return nil, fmt.Errorf("%w: payload is null", jwt.ErrTokenMalformed)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("%w: trailing data after payload object", jwt.ErrTokenMalformed)
	}
	return claims, nil
}

// padSegment converts a base64url segment to standard base64 with padding.
func padSegment(seg string) string {
	s := strings.NewReplacer("-", "+", "_", "/").Replace(strings.TrimRight(seg, "="))
	if rem := len(s) % 4; rem != 0 {
		s += strings.Repeat("=", 4-rem)
	}
	return s
}

// flatten converts claim values to strings so every read goes through the
// domain's explicit parsing.
func flatten(claims jwt.MapClaims) domainauth.ClaimBag {
	bag := make(domainauth.ClaimBag, len(claims))
	for k, v := range claims {
		if s, ok := stringify(v); ok {
			bag[k] = s
		}
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		bag[domainauth.ClaimExpiresAt] = strconv.FormatInt(exp.Unix(), 10)
	}
	return bag
}

func stringify(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", false
	case string:
		return t, true
	case json.Number:
		return t.String(), true
	case bool:
		return strconv.FormatBool(t), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case []any:
		for _, item := range t {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				return s, true
			}
		}
		return "", false
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return "", false
		}
		return string(b), true
	}
}

// Encode signs claims with HS256 under key. Used for fixtures and local
// tooling; the API never accepts tokens minted here.
func Encode(claims map[string]any, key []byte) (string, error) {
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims(claims))
	signed, err := tok.SignedString(key)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}
