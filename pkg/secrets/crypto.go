package secrets

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// sealer encrypts store entries with keys derived from a master key.
type sealer struct {
	masterKey []byte
}

// GenerateMasterKey creates a 32-byte random key and returns it as a hex string.
func GenerateMasterKey() (string, error) {
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return "", err
	}
	return hex.EncodeToString(key), nil
}

// key derives the AES-256 key of one entry, using its id as HKDF salt.
func (s sealer) key(secretID string) []byte {
	r := hkdf.New(sha256.New, s.masterKey, []byte(secretID), nil)
	derived := make([]byte, 32)
	_, _ = io.ReadFull(r, derived) // cannot fail for 32 bytes of sha256 output
	return derived
}

func (s sealer) gcm(secretID string) (cipher.AEAD, error) {
	block, err := aes.NewCipher(s.key(secretID))
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// seal returns hex(nonce || ciphertext).
func (s sealer) seal(secretID string, plaintext []byte) (string, error) {
	aead, err := s.gcm(secretID)
	if err != nil {
		return "", err
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}
	return hex.EncodeToString(aead.Seal(nonce, nonce, plaintext, nil)), nil
}

func (s sealer) open(secretID, sealed string) (string, error) {
	data, err := hex.DecodeString(sealed)
	if err != nil {
		return "", err
	}
	aead, err := s.gcm(secretID)
	if err != nil {
		return "", err
	}
	if len(data) < aead.NonceSize() {
		return "", fmt.Errorf("ciphertext too short")
	}
	nonce, ciphertext := data[:aead.NonceSize()], data[aead.NonceSize():]
	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt secret %s: %w", secretID, err)
	}
	return string(plaintext), nil
}
