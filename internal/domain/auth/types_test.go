package auth

import (
	"testing"
)

func TestSession_Anonymous(t *testing.T) {
	s := Anonymous()
	if !s.IsAnonymous() {
		t.Fatalf("expected anonymous")
	}
	if s.HasStore() {
		t.Fatalf("anonymous session must not have a store")
	}
}

func TestSessionFromClaims_Empty(t *testing.T) {
	if s := SessionFromClaims(nil); s != Anonymous() {
		t.Fatalf("expected anonymous session, got %+v", s)
	}
	if s := SessionFromClaims(ClaimBag{}); !s.IsAnonymous() {
		t.Fatalf("expected anonymous session for empty bag")
	}
}

func TestSessionFromClaims_IdentityAndStore(t *testing.T) {
	s := SessionFromClaims(ClaimBag{
		"http://schemas.xmlsoap.org/ws/2005/05/identity/claims/nameidentifier": "u-1",
		"email":      "owner@shop.test",
		"role":       "Owner",
		"store_id":   "store-a",
		"store_role": "Manager",
		"status":     "active",
	})

	if !s.Authenticated || s.UserID != "u-1" || s.Email != "owner@shop.test" {
		t.Fatalf("unexpected identity: %+v", s)
	}
	if s.Role != Role("Owner") || s.StoreID != "store-a" || s.StoreRole != StoreRole("Manager") {
		t.Fatalf("unexpected role/store: %+v", s)
	}
	if s.Status != StatusActive {
		t.Fatalf("status = %q, want Active", s.Status)
	}
}

func TestNormalizeToken(t *testing.T) {
	tests := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{"", "", false},
		{"   ", "", false},
		{"null", "", false},
		{"NULL", "", false},
		{"undefined", "", false},
		{" Undefined ", "", false},
		{"a.b.c", "a.b.c", true},
		{"  a.b.c\n", "a.b.c", true},
	}

	for _, tt := range tests {
		got, ok := NormalizeToken(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("NormalizeToken(%q) = (%q, %v), want (%q, %v)", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}
