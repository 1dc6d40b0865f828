package credstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	domainauth "github.com/Baodng2402/360-Retail-Web-sub000/internal/domain/auth"
	"github.com/Baodng2402/360-Retail-Web-sub000/internal/ports"
)

// DefaultTokenKey is the document key holding the bearer token.
const DefaultTokenKey = "token"

var _ ports.CredentialStore = (*File)(nil)

// File persists the credential in a JSON document on disk. The document may
// carry other independently evolving keys (e.g. notification preferences);
// writes preserve them untouched.
type File struct {
	path string
	key  string
	mu   sync.Mutex
}

// FileOptions configures a File store.
type FileOptions struct {
	Path string // Required: document location
	Key  string // Optional: token key, defaults to DefaultTokenKey
}

// NewFile creates the parent directory if needed and returns a File store.
func NewFile(opts FileOptions) (*File, error) {
	if opts.Path == "" {
		return nil, errors.New("credential file path is required")
	}
	if err := os.MkdirAll(filepath.Dir(opts.Path), 0o700); err != nil {
		return nil, fmt.Errorf("create credential dir: %w", err)
	}
	key := opts.Key
	if key == "" {
		key = DefaultTokenKey
	}
	return &File{path: opts.Path, key: key}, nil
}

// Path returns the document location.
func (f *File) Path() string { return f.path }

func (f *File) Get(_ context.Context) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.load()
	if err != nil {
		return "", false, err
	}
	raw, ok := doc[f.key]
	if !ok {
		return "", false, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		// Non-string values (null, numbers) are legacy garbage, not a token.
		return "", false, nil
	}
	tok, ok := domainauth.NormalizeToken(s)
	return tok, ok, nil
}

func (f *File) Set(ctx context.Context, token string) error {
	tok, ok := domainauth.NormalizeToken(token)
	if !ok {
		return f.Clear(ctx)
	}
	b, err := json.Marshal(tok)
	if err != nil {
		return fmt.Errorf("marshal token: %w", err)
	}
	return f.SetValue(ctx, f.key, b)
}

func (f *File) Clear(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.load()
	if err != nil {
		return err
	}
	if _, ok := doc[f.key]; !ok {
		return nil
	}
	delete(doc, f.key)
	return f.save(doc)
}

// Value returns the raw JSON stored under key.
func (f *File) Value(_ context.Context, key string) (json.RawMessage, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.load()
	if err != nil {
		return nil, false, err
	}
	v, ok := doc[key]
	return v, ok, nil
}

// SetValue stores raw JSON under key, leaving other keys untouched.
func (f *File) SetValue(_ context.Context, key string, value json.RawMessage) error {
	if !json.Valid(value) {
		return fmt.Errorf("value for %q is not valid JSON", key)
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.load()
	if err != nil {
		return err
	}
	doc[key] = value
	return f.save(doc)
}

func (f *File) load() (map[string]json.RawMessage, error) {
	doc := make(map[string]json.RawMessage)
	b, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return doc, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read credential file: %w", err)
	}
	if len(b) == 0 {
		return doc, nil
	}
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("decode credential file: %w", err)
	}
	return doc, nil
}

// save writes to a temp file and renames it over the document so readers see
// either the old or the new content.
func (f *File) save(doc map[string]json.RawMessage) error {
	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode credential file: %w", err)
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return fmt.Errorf("write credential file: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("replace credential file: %w", err)
	}
	return nil
}
