// Package credstore provides CredentialStore adapters for local persistence.
package credstore

import (
	"context"
	"sync"

	domainauth "github.com/Baodng2402/360-Retail-Web-sub000/internal/domain/auth"
	"github.com/Baodng2402/360-Retail-Web-sub000/internal/ports"
)

var _ ports.CredentialStore = (*Memory)(nil)

// Memory keeps the credential in process memory.
type Memory struct {
	mu    sync.RWMutex
	token string
}

// NewMemory returns a Memory store seeded with raw. Placeholder values are
// kept verbatim so reads exercise the same normalisation as persisted data.
func NewMemory(raw string) *Memory {
	return &Memory{token: raw}
}

func (m *Memory) Get(_ context.Context) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	tok, ok := domainauth.NormalizeToken(m.token)
	return tok, ok, nil
}

func (m *Memory) Set(_ context.Context, token string) error {
	tok, _ := domainauth.NormalizeToken(token)
	m.mu.Lock()
	m.token = tok
	m.mu.Unlock()
	return nil
}

func (m *Memory) Clear(_ context.Context) error {
	m.mu.Lock()
	m.token = ""
	m.mu.Unlock()
	return nil
}
