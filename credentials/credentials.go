// Package credentials stores the Gemini API key encrypted at rest in
// ~/.entregaveis/credentials.yaml and resolves the key for a session.
//
// The encryption key comes from ENTREGAVEIS_ENCRYPTION_KEY (64 hex chars),
// else from ENTREGAVEIS_PASSPHRASE, else from the system keyring.
package credentials

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Secret storage constants.
const (
	DefaultSecretsDir  = ".entregaveis"
	DefaultSecretsFile = "credentials.yaml"

	// GeminiAPIKeyName is the secret name under which the model key is stored.
	GeminiAPIKeyName = "gemini.api_key"
)

var (
	// ErrNoSecret is returned when the requested secret is not stored.
	ErrNoSecret = errors.New("secret not stored")
	// ErrEncryptionFailed is returned when encryption/decryption fails.
	ErrEncryptionFailed = errors.New("encryption failed")
)

// Secrets is the on-disk layout. Values are AES-GCM encrypted and base64 encoded.
type Secrets struct {
	Values      map[string]string `yaml:"values"`
	LastUpdated time.Time         `yaml:"last_updated"`
}

// Store manages the encrypted secrets file.
type Store struct {
	dir           string
	encryptionKey []byte
	keyProvider   KeyProvider
}

// NewStore creates a store whose key provider is chosen from the process
// environment.
func NewStore() (*Store, error) {
	dir, err := SecretsDir()
	if err != nil {
		return nil, fmt.Errorf("getting secrets directory: %w", err)
	}
	keyProvider, err := SelectKeyProvider(KeyOptions{Getenv: os.Getenv, Dir: dir})
	if err != nil {
		return nil, fmt.Errorf("initializing key provider: %w", err)
	}
	return NewStoreWithKeyProvider(keyProvider)
}

// NewStoreWithKeyProvider creates a store with a custom key provider.
func NewStoreWithKeyProvider(keyProvider KeyProvider) (*Store, error) {
	dir, err := SecretsDir()
	if err != nil {
		return nil, fmt.Errorf("getting secrets directory: %w", err)
	}

	key, err := keyProvider.GetKey()
	if err != nil {
		return nil, fmt.Errorf("getting encryption key: %w", err)
	}

	return &Store{dir: dir, encryptionKey: key, keyProvider: keyProvider}, nil
}

// SecretsDir returns the directory holding credentials.yaml.
// Uses $ENTREGAVEIS_CONFIG_DIR if set, otherwise ~/.entregaveis
func SecretsDir() (string, error) {
	if dir := os.Getenv("ENTREGAVEIS_CONFIG_DIR"); dir != "" {
		return dir, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, DefaultSecretsDir), nil
}

// Path returns the full path of the credentials file.
func (s *Store) Path() string {
	return filepath.Join(s.dir, DefaultSecretsFile)
}

// KeyDescription describes where the encryption key lives.
func (s *Store) KeyDescription() string {
	return s.keyProvider.Description()
}

// Get returns the decrypted secret stored under name.
func (s *Store) Get(name string) (string, error) {
	secrets, err := s.read()
	if err != nil {
		return "", err
	}

	enc, ok := secrets.Values[name]
	if !ok || enc == "" {
		return "", ErrNoSecret
	}

	plain, err := s.decrypt(enc)
	if err != nil {
		return "", fmt.Errorf("decrypting %s: %w", name, err)
	}
	return plain, nil
}

// Set encrypts value and stores it under name, keeping other secrets.
func (s *Store) Set(name, value string) error {
	secrets, err := s.read()
	if err != nil && !errors.Is(err, ErrNoSecret) {
		return err
	}
	if secrets == nil {
		secrets = &Secrets{}
	}
	if secrets.Values == nil {
		secrets.Values = make(map[string]string)
	}

	enc, err := s.encrypt(value)
	if err != nil {
		return fmt.Errorf("encrypting %s: %w", name, err)
	}
	secrets.Values[name] = enc
	return s.write(secrets)
}

// Delete removes the secret stored under name. Missing secrets are not an error.
func (s *Store) Delete(name string) error {
	secrets, err := s.read()
	if errors.Is(err, ErrNoSecret) {
		return nil
	}
	if err != nil {
		return err
	}
	if _, ok := secrets.Values[name]; !ok {
		return nil
	}

	delete(secrets.Values, name)
	if len(secrets.Values) == 0 {
		if err := os.Remove(s.Path()); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("removing secrets file: %w", err)
		}
		return nil
	}
	return s.write(secrets)
}

// LastUpdated reports when the secrets file was last written.
func (s *Store) LastUpdated() (time.Time, error) {
	secrets, err := s.read()
	if err != nil {
		return time.Time{}, err
	}
	return secrets.LastUpdated, nil
}

func (s *Store) read() (*Secrets, error) {
	data, err := os.ReadFile(s.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoSecret
		}
		return nil, fmt.Errorf("reading secrets file: %w", err)
	}

	var secrets Secrets
	if err := yaml.Unmarshal(data, &secrets); err != nil {
		return nil, fmt.Errorf("parsing secrets file: %w", err)
	}
	return &secrets, nil
}

func (s *Store) write(secrets *Secrets) error {
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return fmt.Errorf("creating secrets directory: %w", err)
	}

	secrets.LastUpdated = time.Now()
	data, err := yaml.Marshal(secrets)
	if err != nil {
		return fmt.Errorf("marshaling secrets: %w", err)
	}

	if err := os.WriteFile(s.Path(), data, 0600); err != nil {
		return fmt.Errorf("writing secrets file: %w", err)
	}
	return nil
}

// encrypt encrypts a string using AES-GCM.
func (s *Store) encrypt(plaintext string) (string, error) {
	gcm, err := newGCM(s.encryptionKey)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("%w: generating nonce: %v", ErrEncryptionFailed, err)
	}

	ciphertext := gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

// decrypt decrypts an AES-GCM encrypted string.
func (s *Store) decrypt(ciphertext string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("%w: decoding base64: %v", ErrEncryptionFailed, err)
	}

	gcm, err := newGCM(s.encryptionKey)
	if err != nil {
		return "", err
	}

	nonceSize := gcm.NonceSize()
	if len(data) < nonceSize {
		return "", fmt.Errorf("%w: ciphertext too short", ErrEncryptionFailed)
	}

	nonce, sealed := data[:nonceSize], data[nonceSize:]
	plaintext, err := gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", fmt.Errorf("%w: decryption failed: %v", ErrEncryptionFailed, err)
	}
	return string(plaintext), nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: creating cipher: %v", ErrEncryptionFailed, err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("%w: creating GCM: %v", ErrEncryptionFailed, err)
	}
	return gcm, nil
}

// MaskAPIKey returns a masked API key showing only the first four characters.
func MaskAPIKey(apiKey string) string {
	if len(apiKey) <= 8 {
		return strings.Repeat("*", len(apiKey))
	}
	return apiKey[:4] + strings.Repeat("*", 8) + "..."
}
