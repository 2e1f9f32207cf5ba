package config

import (
	"os"
	"strings"

	"github.com/zalando/go-keyring"

	"commitgen/cli/internal/erruser"
)

const (
	// keyringService is the service name in the OS keychain
	// (macOS Keychain, Windows Credential Manager, Linux Secret Service).
	keyringService = "commitgen"
	// keyringAPIKeyItem is the item name for the OpenAI API key.
	keyringAPIKeyItem = "api-key"
)

// SaveAPIKey stores the API key in the OS keychain.
func SaveAPIKey(apiKey string) error {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return erruser.New("API key is empty.", nil)
	}
	if err := keyring.Set(keyringService, keyringAPIKeyItem, apiKey); err != nil {
		return erruser.New("Could not save the API key to the OS keychain.", err)
	}
	return nil
}

// DeleteAPIKey removes the API key from the OS keychain. A key that was
// never stored is not an error.
func DeleteAPIKey() error {
	err := keyring.Delete(keyringService, keyringAPIKeyItem)
	if err != nil && err != keyring.ErrNotFound {
		return erruser.New("Could not remove the API key from the OS keychain.", err)
	}
	return nil
}

// keychainAPIKey reads the API key from the OS keychain. Not-found is
// reported as empty with no error.
func keychainAPIKey() (string, error) {
	key, err := keyring.Get(keyringService, keyringAPIKeyItem)
	if err == keyring.ErrNotFound {
		return "", nil
	}
	if err != nil {
		return "", erruser.New("Could not read the API key from the OS keychain.", err)
	}
	return key, nil
}

// ResolveAPIKey returns the API key for the OpenAI provider, checking the
// configured value (which already reflects file, env, and flag layers),
// then OPENAI_API_KEY, then the OS keychain. Empty result with nil error
// means no key is configured anywhere.
func (c Config) ResolveAPIKey() (string, error) {
	if c.APIKey != "" {
		return c.APIKey, nil
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		return v, nil
	}
	return keychainAPIKey()
}
