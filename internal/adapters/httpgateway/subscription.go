package httpgateway

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	domainauth "github.com/Baodng2402/360-Retail-Web-sub000/internal/domain/auth"
	apperrors "github.com/Baodng2402/360-Retail-Web-sub000/internal/errors"
	"github.com/Baodng2402/360-Retail-Web-sub000/internal/ports"
)

// CheckStoreTrial fetches the server-authoritative subscription state.
// Unknown status strings degrade to Registered, matching token decoding.
func (c *Client) CheckStoreTrial(ctx context.Context) (ports.SubscriptionStatus, error) {
	r, err := c.do(ctx, http.MethodGet, "subscription/status", nil, nil)
	if err != nil {
		return ports.SubscriptionStatus{}, err
	}

	raw := firstString(r, "status", "subscriptionStatus")
	status, ok := domainauth.ParseSessionStatus(raw)
	if !ok && raw != "" {
		c.logger.WarnContext(ctx, "unknown subscription status from server", "status", raw)
	}

	out := ports.SubscriptionStatus{
		Status:        status,
		PlanName:      firstString(r, "planName", "plan"),
		StoreID:       firstString(r, "storeId", "store_id"),
		TrialEndDate:  parseTime(firstString(r, "trialEndDate", "trialEndsAt")),
		DaysRemaining: intField(r, "daysRemaining", "trialDaysRemaining"),
	}
	if hs := r.Get("hasStore"); hs.Exists() {
		out.HasStore = hs.Bool()
	} else {
		out.HasStore = out.StoreID != ""
	}
	return out, nil
}

// CreateStoreTrial starts a trial, creating the named store server-side.
func (c *Client) CreateStoreTrial(ctx context.Context, in ports.StartTrialInput) (ports.StartTrialResult, error) {
	in.StoreName = strings.TrimSpace(in.StoreName)
	if in.StoreName == "" {
		return ports.StartTrialResult{}, apperrors.ValidationField("storeName", "Store name is required.")
	}
	r, err := c.do(ctx, http.MethodPost, "subscription/start-trial", nil, in)
	if err != nil {
		return ports.StartTrialResult{}, err
	}
	out := ports.StartTrialResult{
		StoreID:      firstString(r, "storeId", "store.id", "id"),
		StoreName:    firstString(r, "storeName", "store.storeName"),
		TrialEndDate: parseTime(firstString(r, "trialEndDate", "trialEndsAt")),
		Message:      firstString(r, "message"),
	}
	if out.StoreName == "" {
		out.StoreName = in.StoreName
	}
	return out, nil
}

// intField reads an integer that may be sent as a number or a numeric string.
func intField(r gjson.Result, paths ...string) *int {
	for _, p := range paths {
		v := r.Get(p)
		switch v.Type {
		case gjson.Number:
			if v.Num == float64(int(v.Num)) {
				n := int(v.Num)
				return &n
			}
		case gjson.String:
			if n, err := strconv.Atoi(strings.TrimSpace(v.Str)); err == nil {
				return &n
			}
		}
	}
	return nil
}
