package secrets

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"golang.org/x/exp/maps"
)

// Structure to store encrypted secrets in a JSON file
type LocalSecretStore struct {
	mu       sync.RWMutex
	sealer   sealer
	filename string
	Secrets  map[string]string `json:"secrets"`
}

func NewLocalSecretStore(masterKeyHex, filename string, create bool) (*LocalSecretStore, error) {
	masterKey, err := hex.DecodeString(masterKeyHex)
	if err != nil {
		return nil, fmt.Errorf("unable to decode master key from hex representation: %w", err)
	}
	if len(masterKey) == 0 {
		return nil, fmt.Errorf("master key is empty")
	}

	secrets := make(map[string]string)
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		if !create {
			return nil, fmt.Errorf("file %s does not exist", filename)
		}
		if err := saveSecrets(filename, secrets); err != nil {
			return nil, fmt.Errorf("unable to create file %s: %w", filename, err)
		}
	} else {
		secrets, err = loadSecrets(filename)
		if err != nil {
			return nil, fmt.Errorf("unable to load secrets from file: %w", err)
		}
	}

	return &LocalSecretStore{
		sealer:   sealer{masterKey: masterKey},
		filename: filename,
		Secrets:  secrets,
	}, nil
}

// OpenStore() opens (or creates) the store at filename with the master key
// from the MASTER_KEY environment variable.
func OpenStore(filename string) (*LocalSecretStore, error) {
	if filename == "" {
		return nil, fmt.Errorf("path to secret store required")
	}
	masterKey := os.Getenv("MASTER_KEY")
	if masterKey == "" {
		return nil, fmt.Errorf("MASTER_KEY environment variable not set")
	}
	store, err := NewLocalSecretStore(masterKey, filename, true)
	if err != nil {
		return nil, fmt.Errorf("failed to open local secret store: %w", err)
	}
	return store, nil
}

// GetSecretByID decrypts the secret stored under secretID.
func (l *LocalSecretStore) GetSecretByID(secretID string) (string, error) {
	l.mu.RLock()
	sealed, exists := l.Secrets[secretID]
	l.mu.RUnlock()
	if !exists {
		return "", fmt.Errorf("no secret found for %s", secretID)
	}
	return l.sealer.open(secretID, sealed)
}

// StoreSecretByID encrypts secret and writes the store back to its file.
func (l *LocalSecretStore) StoreSecretByID(secretID, secret string) error {
	sealed, err := l.sealer.seal(secretID, []byte(secret))
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.Secrets[secretID] = sealed
	return saveSecrets(l.filename, l.Secrets)
}

// ListSecrets returns a copy of the encrypted entries keyed by id.
func (l *LocalSecretStore) ListSecrets() (map[string]string, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return maps.Clone(l.Secrets), nil
}

// RemoveSecretByID removes secretID and writes the store back to its file.
func (l *LocalSecretStore) RemoveSecretByID(secretID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, exists := l.Secrets[secretID]; !exists {
		return fmt.Errorf("no secret found for %s", secretID)
	}
	delete(l.Secrets, secretID)
	return saveSecrets(l.filename, l.Secrets)
}

func saveSecrets(jsonFile string, store map[string]string) error {
	file, err := os.OpenFile(jsonFile, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	return encoder.Encode(store)
}

func loadSecrets(jsonFile string) (map[string]string, error) {
	file, err := os.Open(jsonFile)
	if err != nil {
		return nil, fmt.Errorf("unable to open secret file %s: %w", jsonFile, err)
	}
	defer file.Close()

	store := make(map[string]string)
	if err := json.NewDecoder(file).Decode(&store); err != nil {
		return nil, fmt.Errorf("unable to decode secret file %s: %w", jsonFile, err)
	}
	return store, nil
}
