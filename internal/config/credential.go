package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/99designs/keyring"
)

const (
	serviceName = "mailbrief"
	apiKeyItem  = "summarizer-api-key"

	// APIKeyEnv overrides the stored key when set.
	APIKeyEnv = "MAILBRIEF_API_KEY"

	// KeyringPasswordEnv supplies the password for the encrypted file
	// keyring, used only when no OS keyring is available.
	KeyringPasswordEnv = "MAILBRIEF_KEYRING_PASSWORD"
)

// ErrNoCredential means no API key is stored or set in the environment.
var ErrNoCredential = errors.New("no API key configured")

// Credentials reads and writes the summarizer API key.
type Credentials struct {
	ring keyring.Keyring
}

// OpenCredentials opens the OS keyring, falling back to an encrypted file
// under dir.
func OpenCredentials(dir string) (*Credentials, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  filepath.Join(dir, "credentials"),
		FilePasswordFunc:         filePassword(keyring.TerminalPrompt),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return NewCredentials(ring), nil
}

// filePassword reads the file keyring password from KeyringPasswordEnv,
// otherwise asks on the terminal.
func filePassword(prompt keyring.PromptFunc) keyring.PromptFunc {
	return func(msg string) (string, error) {
		if v := os.Getenv(KeyringPasswordEnv); v != "" {
			return v, nil
		}
		return prompt(msg)
	}
}

// NewCredentials wraps an already opened keyring.
func NewCredentials(ring keyring.Keyring) *Credentials {
	return &Credentials{ring: ring}
}

// APIKey returns the environment override if set, else the stored key.
func (c *Credentials) APIKey() (string, error) {
	if v := strings.TrimSpace(os.Getenv(APIKeyEnv)); v != "" {
		return v, nil
	}
	item, err := c.ring.Get(apiKeyItem)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "", ErrNoCredential
	}
	if err != nil {
		return "", fmt.Errorf("getting credential %q: %w", apiKeyItem, err)
	}
	key := strings.TrimSpace(string(item.Data))
	if key == "" {
		return "", ErrNoCredential
	}
	return key, nil
}

// SetAPIKey stores the key.
func (c *Credentials) SetAPIKey(key string) error {
	err := c.ring.Set(keyring.Item{
		Key:   apiKeyItem,
		Data:  []byte(strings.TrimSpace(key)),
		Label: "mailbrief summarizer API key",
	})
	if err != nil {
		return fmt.Errorf("setting credential %q: %w", apiKeyItem, err)
	}
	return nil
}

// ClearAPIKey removes the stored key. Clearing a missing key is not an error.
func (c *Credentials) ClearAPIKey() error {
	err := c.ring.Remove(apiKeyItem)
	if err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return fmt.Errorf("removing credential %q: %w", apiKeyItem, err)
	}
	return nil
}
