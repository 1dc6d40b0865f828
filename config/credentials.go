package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// CredentialBackend selects where the bearer token is persisted.
type CredentialBackend string

const (
	// CredentialBackendMemory keeps the token for the life of the process.
	CredentialBackendMemory CredentialBackend = "memory"
	// CredentialBackendFile keeps the token in a JSON document on disk.
	CredentialBackendFile CredentialBackend = "file"
	// CredentialBackendRedis keeps the token in Redis, shared across processes.
	CredentialBackendRedis CredentialBackend = "redis"
)

// UnmarshalText implements encoding.TextUnmarshaler for CredentialBackend.
func (b *CredentialBackend) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	switch v {
	case "memory", "file", "redis":
		*b = CredentialBackend(v)
		return nil
	default:
		return fmt.Errorf("invalid CredentialBackend: %q (valid options: memory, file, redis)", v)
	}
}

// CredentialsConfig controls bearer-token persistence.
type CredentialsConfig struct {
	Backend CredentialBackend `env:"CREDENTIALS_BACKEND" envDefault:"file"`

	// FilePath is the JSON document used by the file backend.
	// Defaults to <user config dir>/retailctl/credentials.json.
	FilePath string `env:"CREDENTIALS_FILE"`

	// Key is the storage slot holding the token.
	Key string `env:"CREDENTIALS_KEY" envDefault:"token"`

	// RedisPrefix namespaces keys for the redis backend.
	RedisPrefix string `env:"CREDENTIALS_REDIS_PREFIX" envDefault:"retail:credential:"`

	// TTL expires the redis key; zero keeps it until logout.
	TTL time.Duration `env:"CREDENTIALS_TTL" envDefault:"0s"`
}

// Sanitize fills in the default file location and trims values.
func (c *CredentialsConfig) Sanitize() {
	if c.Backend == "" {
		c.Backend = CredentialBackendFile
	}
	if c.Key = strings.TrimSpace(c.Key); c.Key == "" {
		c.Key = "token"
	}
	if c.TTL < 0 {
		c.TTL = 0
	}
	c.FilePath = strings.TrimSpace(c.FilePath)
	if c.FilePath == "" {
		c.FilePath = defaultCredentialsPath()
	}
}

func defaultCredentialsPath() string {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "retailctl", "credentials.json")
}
