package errors

import (
	"context"
	goerrors "errors"
	"fmt"
	"net"
	"testing"

	apperrors "github.com/Baodng2402/360-Retail-Web-sub000/internal/errors"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"app error", apperrors.SwitchConflict("login"), "switch_conflict"},
		{"wrapped app error", fmt.Errorf("switch store: %w", apperrors.StoreMismatch("a", "b")), "store_mismatch"},
		{"canceled", fmt.Errorf("refresh: %w", context.Canceled), "canceled"},
		{"deadline", context.DeadlineExceeded, "timeout"},
		{"net error", &net.OpError{Op: "dial", Err: goerrors.New("refused")}, "errors_errorstring"},
		{"plain", goerrors.New("boom"), "errors_errorstring"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.err); got != tt.want {
				t.Fatalf("Classify() = %q, want %q", got, tt.want)
			}
		})
	}
}
