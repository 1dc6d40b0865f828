package auth

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_StatusMatrix(t *testing.T) {
	type optional struct {
		name   string
		claims ClaimBag
		days   *int
		end    *time.Time
	}

	three := 3
	end := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	optionals := []optional{
		{name: "absent"},
		{
			name:   "present",
			claims: ClaimBag{"trial_days_remaining": "3", "trial_end_date": "2026-03-01"},
			days:   &three,
			end:    &end,
		},
	}

	for _, status := range AllStatuses {
		for _, expired := range []bool{true, false} {
			for _, opt := range optionals {
				name := fmt.Sprintf("%s/expired=%v/%s", status, expired, opt.name)
				t.Run(name, func(t *testing.T) {
					bag := ClaimBag{
						"status":               string(status),
						"trial_expired":        fmt.Sprint(expired),
						"subscription_expired": fmt.Sprint(expired),
					}
					for k, v := range opt.claims {
						bag[k] = v
					}

					got := Resolve(bag)
					assert.Equal(t, status, got.Status)
					assert.Equal(t, expired, got.TrialExpired)
					assert.Equal(t, expired, got.SubscriptionExpired)
					assert.Empty(t, got.UnknownStatus)
					if opt.days == nil {
						assert.Nil(t, got.TrialDaysRemaining)
						assert.Nil(t, got.TrialEndDate)
						return
					}
					require.NotNil(t, got.TrialDaysRemaining)
					assert.Equal(t, *opt.days, *got.TrialDaysRemaining)
					require.NotNil(t, got.TrialEndDate)
					assert.True(t, opt.end.Equal(*got.TrialEndDate))
				})
			}
		}
	}
}

func TestResolve_StatusDefault(t *testing.T) {
	tests := []struct {
		name        string
		claims      ClaimBag
		wantUnknown string
	}{
		{name: "missing", claims: ClaimBag{}},
		{name: "nil bag", claims: nil},
		{name: "garbage", claims: ClaimBag{"status": "Premium"}, wantUnknown: "Premium"},
		{name: "numeric", claims: ClaimBag{"status": "2"}, wantUnknown: "2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Resolve(tt.claims)
			assert.Equal(t, StatusRegistered, got.Status)
			assert.Equal(t, tt.wantUnknown, got.UnknownStatus)
		})
	}
}

func TestResolve_CaseInsensitiveStatus(t *testing.T) {
	assert.Equal(t, StatusTrial, Resolve(ClaimBag{"status": "trial"}).Status)
	assert.Equal(t, StatusSuspended, Resolve(ClaimBag{"status": " SUSPENDED "}).Status)
}

func TestResolve_BooleanNormalization(t *testing.T) {
	tests := []struct {
		raw  string
		want bool
	}{
		{"true", true},
		{"True", true},
		{"TRUE", true},
		{"false", false},
		{"", false},
		{"yes", false},
		{"1", false},
	}

	for _, tt := range tests {
		bag := ClaimBag{}
		if tt.raw != "" {
			bag["trial_expired"] = tt.raw
		}
		assert.Equal(t, tt.want, Resolve(bag).TrialExpired, "trial_expired=%q", tt.raw)
	}
}

func TestResolve_DaysRemainingZeroIsNotUnknown(t *testing.T) {
	got := Resolve(ClaimBag{"trial_days_remaining": "0"})
	require.NotNil(t, got.TrialDaysRemaining)
	assert.Equal(t, 0, *got.TrialDaysRemaining)

	assert.Nil(t, Resolve(ClaimBag{"trial_days_remaining": "three"}).TrialDaysRemaining)
	assert.Nil(t, Resolve(ClaimBag{"trial_days_remaining": "2.5"}).TrialDaysRemaining)
}

func TestResolve_ScenarioA(t *testing.T) {
	got := Resolve(ClaimBag{"status": "Trial", "trial_expired": "false", "trial_days_remaining": "3"})
	assert.Equal(t, StatusTrial, got.Status)
	assert.False(t, got.TrialExpired)
	require.NotNil(t, got.TrialDaysRemaining)
	assert.Equal(t, 3, *got.TrialDaysRemaining)
}

func TestResolve_ScenarioB(t *testing.T) {
	got := Resolve(ClaimBag{"status": "Trial", "trial_expired": "true"})
	assert.Equal(t, StatusTrial, got.Status)
	assert.True(t, got.TrialExpired)
	assert.Nil(t, got.TrialDaysRemaining)
}

func TestResolve_Deterministic(t *testing.T) {
	bag := ClaimBag{"status": "Active", "trial_end_date": "2026-01-02T10:00:00Z", "exp": "1767225600"}
	assert.Equal(t, Resolve(bag), Resolve(bag))
}

func TestResolve_TrialEndDateFormats(t *testing.T) {
	for _, raw := range []string{"2026-01-02T10:00:00Z", "2026-01-02T10:00:00.123", "2026-01-02"} {
		assert.NotNil(t, Resolve(ClaimBag{"trial_end_date": raw}).TrialEndDate, raw)
	}
	assert.Nil(t, Resolve(ClaimBag{"trial_end_date": "next week"}).TrialEndDate)
}

func TestIsRegression(t *testing.T) {
	assert.True(t, IsRegression(StatusActive, StatusTrial))
	assert.True(t, IsRegression(StatusTrial, StatusRegistered))
	assert.False(t, IsRegression(StatusRegistered, StatusTrial))
	assert.False(t, IsRegression(StatusActive, StatusSuspended))
	assert.False(t, IsRegression(StatusSuspended, StatusRegistered))
}
