// Package secrets keeps LibreNMS API tokens in an encrypted local file so
// they do not have to sit in shell history or plain-text config.
//
// Tokens are stored under the sanitized API URL they belong to. Each entry
// is encrypted with AES-GCM under a key derived from the master key and the
// entry id with HKDF.
package secrets

import (
	"fmt"

	"github.com/wwolkers/librenms-inventory/internal/url"
)

type SecretStore interface {
	GetSecretByID(secretID string) (string, error)
	StoreSecretByID(secretID, secret string) error
	ListSecrets() (map[string]string, error)
	RemoveSecretByID(secretID string) error
}

// TokenID() returns the id the token for apiURL is stored under, so that
// "https://nms/api/v0/" and "https://nms/api/v0" share an entry.
func TokenID(apiURL string) (string, error) {
	id, err := url.Sanitize(apiURL)
	if err != nil {
		return "", fmt.Errorf("invalid API URL %q: %w", apiURL, err)
	}
	return id, nil
}

// LookupToken() returns the token stored for apiURL.
func LookupToken(store SecretStore, apiURL string) (string, error) {
	id, err := TokenID(apiURL)
	if err != nil {
		return "", err
	}
	return store.GetSecretByID(id)
}

// StoreToken() saves token as the token for apiURL.
func StoreToken(store SecretStore, apiURL, token string) error {
	id, err := TokenID(apiURL)
	if err != nil {
		return err
	}
	return store.StoreSecretByID(id, token)
}

// StaticStore answers every lookup with the same token. The CLI uses it for
// a token given by flag, environment or --token-path, so every source is
// read through the SecretStore interface.
type StaticStore struct {
	Token string
}

func NewStaticStore(token string) *StaticStore {
	return &StaticStore{Token: token}
}

func (s *StaticStore) GetSecretByID(secretID string) (string, error) {
	if s.Token == "" {
		return "", fmt.Errorf("no token set")
	}
	return s.Token, nil
}

func (s *StaticStore) StoreSecretByID(secretID, secret string) error {
	s.Token = secret
	return nil
}

func (s *StaticStore) ListSecrets() (map[string]string, error) {
	return map[string]string{"static": s.Token}, nil
}

func (s *StaticStore) RemoveSecretByID(secretID string) error {
	s.Token = ""
	return nil
}
