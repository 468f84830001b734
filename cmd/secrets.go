package cmd

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/zalando/go-keyring"
)

const (
	// KeyringService groups nosh secrets in the OS keychain.
	KeyringService = "nosh"
	keyringAccount = "yelp_api_key"
)

func secureYelpKeyPath(configDir string) string {
	return filepath.Join(configDir, "yelp_api_key")
}

// saveSecureYelpAPIKey stores the key in the OS keychain, or in an owner-only
// file when no keychain is available.
func saveSecureYelpAPIKey(configDir, key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil
	}
	if err := keyring.Set(KeyringService, keyringAccount, key); err == nil {
		// The keychain copy replaces any fallback file.
		if err := os.Remove(secureYelpKeyPath(configDir)); err != nil && !os.IsNotExist(err) {
			return err
		}
		return nil
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return err
	}
	// Owner read/write only.
	return os.WriteFile(secureYelpKeyPath(configDir), []byte(key+"\n"), 0600)
}

func loadSecureYelpAPIKey(configDir string) (string, error) {
	if key, err := keyring.Get(KeyringService, keyringAccount); err == nil && strings.TrimSpace(key) != "" {
		return strings.TrimSpace(key), nil
	}

	// Not in the keychain, or no keychain on this machine.
	data, err := os.ReadFile(secureYelpKeyPath(configDir))
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
