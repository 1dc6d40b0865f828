package httpgateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	jmespath "github.com/jmespath-community/go-jmespath"
	"github.com/tidwall/gjson"

	domainauth "github.com/Baodng2402/360-Retail-Web-sub000/internal/domain/auth"
	apperrors "github.com/Baodng2402/360-Retail-Web-sub000/internal/errors"
	"github.com/Baodng2402/360-Retail-Web-sub000/internal/ports"
)

// claimListExpr projects auth/me payloads into [type, value] pairs. The list
// arrives either bare or under a "claims" field.
const claimListExpr = "(claims || @)[?type].[type, value]"

func (c *Client) Login(ctx context.Context, in ports.LoginInput) (ports.TokenResult, error) {
	if strings.TrimSpace(in.Email) == "" {
		return ports.TokenResult{}, apperrors.ValidationField("email", "Email is required.")
	}
	if in.Password == "" {
		return ports.TokenResult{}, apperrors.ValidationField("password", "Password is required.")
	}
	r, err := c.do(ctx, http.MethodPost, "auth/login", nil, in)
	if err != nil {
		return ports.TokenResult{}, err
	}
	return parseTokenResult(r)
}

func (c *Client) Register(ctx context.Context, in ports.RegisterInput) (ports.RegisterResult, error) {
	if strings.TrimSpace(in.Email) == "" {
		return ports.RegisterResult{}, apperrors.ValidationField("email", "Email is required.")
	}
	r, err := c.do(ctx, http.MethodPost, "auth/register", nil, in)
	if err != nil {
		return ports.RegisterResult{}, err
	}
	if r.Type == gjson.String {
		return ports.RegisterResult{Message: r.Str}, nil
	}
	return ports.RegisterResult{Message: r.Get("message").String()}, nil
}

func (c *Client) Me(ctx context.Context) (domainauth.ClaimBag, error) {
	r, err := c.do(ctx, http.MethodGet, "auth/me", nil, nil)
	if err != nil {
		return nil, err
	}
	return claimsFromPayload(r)
}

// MeFromLocalToken decodes the stored credential. Absent, placeholder and
// malformed credentials all yield the anonymous session without error.
func (c *Client) MeFromLocalToken(ctx context.Context) (domainauth.Session, error) {
	tok, ok, err := c.store.Get(ctx)
	if err != nil {
		return domainauth.Anonymous(), apperrors.Wrap(err, apperrors.ErrCodeInternal, "read credential")
	}
	if !ok {
		return domainauth.Anonymous(), nil
	}
	bag, err := c.decoder.Decode(tok)
	if err != nil {
		c.logger.DebugContext(ctx, "stored credential is not decodable", "error", err)
		return domainauth.Anonymous(), nil
	}
	return domainauth.SessionFromClaims(bag), nil
}

func (c *Client) RefreshAccess(ctx context.Context, storeID string) (ports.TokenResult, error) {
	var q url.Values
	if id := strings.TrimSpace(storeID); id != "" {
		q = url.Values{"storeId": {id}}
	}
	r, err := c.do(ctx, http.MethodPost, "auth/refresh-access", q, nil)
	if err != nil {
		return ports.TokenResult{}, err
	}
	return parseTokenResult(r)
}

func (c *Client) ChangePassword(ctx context.Context, in ports.ChangePasswordInput) error {
	if in.CurrentPassword == "" {
		return apperrors.ValidationField("currentPassword", "Current password is required.")
	}
	if in.NewPassword == "" {
		return apperrors.ValidationField("newPassword", "New password is required.")
	}
	if in.NewPassword != in.ConfirmNewPassword {
		return apperrors.ValidationField("confirmNewPassword", "Passwords do not match.")
	}
	_, err := c.do(ctx, http.MethodPost, "auth/change-password", nil, in)
	return err
}

func parseTokenResult(r gjson.Result) (ports.TokenResult, error) {
	tok := firstString(r, "accessToken", "access_token", "token")
	if tok == "" && r.Type == gjson.String {
		tok = strings.TrimSpace(r.Str)
	}
	if _, ok := domainauth.NormalizeToken(tok); !ok {
		return ports.TokenResult{}, apperrors.API(http.StatusOK, "The server did not return an access token.")
	}
	out := ports.TokenResult{
		AccessToken:        tok,
		MustChangePassword: r.Get("mustChangePassword").Bool(),
	}
	if t := parseTime(r.Get("expiresAt").String()); t != nil {
		out.ExpiresAt = *t
	}
	return out, nil
}

// claimsFromPayload accepts a [{type, value}] list (bare or under "claims")
// or a plain object of claims.
func claimsFromPayload(r gjson.Result) (domainauth.ClaimBag, error) {
	var data any
	if err := json.Unmarshal([]byte(r.Raw), &data); err != nil {
		return nil, apperrors.API(http.StatusOK, "The server returned an unreadable profile.")
	}

	bag := domainauth.ClaimBag{}
	projected, err := jmespath.Search(claimListExpr, data)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "project claim list")
	}
	if pairs, ok := projected.([]any); ok && len(pairs) > 0 {
		for _, p := range pairs {
			pair, ok := p.([]any)
			if !ok || len(pair) != 2 {
				continue
			}
			k, _ := pair[0].(string)
			v := claimString(pair[1])
			if k == "" || v == "" {
				continue
			}
			// Multi-valued claims (e.g. several roles) keep the first value.
			if _, seen := bag[k]; !seen {
				bag[k] = v
			}
		}
		return bag, nil
	}

	if r.IsObject() {
		r.ForEach(func(k, v gjson.Result) bool {
			if s := claimString(v.Value()); s != "" {
				bag[k.String()] = s
			}
			return true
		})
		return bag, nil
	}
	return nil, apperrors.API(http.StatusOK, "The server returned an unexpected profile shape.")
}

func claimString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		if t {
			return "true"
		}
		return "false"
	default:
		return ""
	}
}

func firstString(r gjson.Result, paths ...string) string {
	for _, p := range paths {
		if v := r.Get(p); v.Type == gjson.String {
			if s := strings.TrimSpace(v.Str); s != "" {
				return s
			}
		}
	}
	return ""
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	time.DateOnly,
}

func parseTime(v string) *time.Time {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return &t
		}
	}
	return nil
}
