package credentials

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/zalando/go-keyring"
	"golang.org/x/crypto/argon2"
)

// Sources of the key that encrypts credentials.yaml, in the order
// SelectKeyProvider tries them.
const (
	// EncryptionKeyEnv holds a hex-encoded 32-byte key (CI, containers).
	EncryptionKeyEnv = "ENTREGAVEIS_ENCRYPTION_KEY"
	// PassphraseEnv holds a passphrase stretched with Argon2id.
	PassphraseEnv = "ENTREGAVEIS_PASSPHRASE"

	// SaltFile sits next to credentials.yaml and salts passphrase keys.
	SaltFile = "credentials.salt"

	keyringService = "entregaveis"
	keyringAccount = "credentials-key"

	secretsKeySize = 32
	saltSize       = 16
)

// Argon2id cost for passphrase keys.
const (
	kdfTime    = 1
	kdfMemory  = 64 * 1024
	kdfThreads = 4
)

// ErrKeyringUnavailable means the OS keyring could not be read or written.
var ErrKeyringUnavailable = errors.New("system keyring unavailable")

// KeyProvider supplies the AES-256 key for the secrets file.
type KeyProvider interface {
	GetKey() ([]byte, error)
	// Description is shown by `auth status`.
	Description() string
}

// KeyOptions feeds SelectKeyProvider.
type KeyOptions struct {
	// Getenv defaults to os.Getenv.
	Getenv func(string) string
	// Dir is the secrets directory; the passphrase salt lives there.
	Dir string
}

// SelectKeyProvider picks the hex key from the environment, then a
// passphrase from the environment, then the OS keyring.
func SelectKeyProvider(opts KeyOptions) (KeyProvider, error) {
	getenv := opts.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}

	if raw := strings.TrimSpace(getenv(EncryptionKeyEnv)); raw != "" {
		return &hexKey{name: EncryptionKeyEnv, raw: raw}, nil
	}
	if pass := getenv(PassphraseEnv); pass != "" {
		return &passphraseKey{passphrase: pass, saltPath: filepath.Join(opts.Dir, SaltFile)}, nil
	}

	kr := &keyringKey{}
	if _, err := kr.GetKey(); err != nil {
		if errors.Is(err, ErrKeyringUnavailable) {
			return nil, fmt.Errorf("%w; set %s or %s", err, EncryptionKeyEnv, PassphraseEnv)
		}
		return nil, err
	}
	return kr, nil
}

// hexKey is a key given directly as 64 hex characters.
type hexKey struct {
	name string
	raw  string
}

func (k *hexKey) GetKey() ([]byte, error) {
	key, err := hex.DecodeString(k.raw)
	if err != nil {
		return nil, fmt.Errorf("%s is not hex: %w", k.name, err)
	}
	if len(key) != secretsKeySize {
		return nil, fmt.Errorf("%s must decode to %d bytes, got %d", k.name, secretsKeySize, len(key))
	}
	return key, nil
}

func (k *hexKey) Description() string {
	return "variável de ambiente " + k.name
}

// passphraseKey stretches a passphrase with a salt created on first use.
type passphraseKey struct {
	passphrase string
	saltPath   string
}

func (k *passphraseKey) GetKey() ([]byte, error) {
	salt, err := loadOrCreateSalt(k.saltPath)
	if err != nil {
		return nil, err
	}
	return argon2.IDKey([]byte(k.passphrase), salt, kdfTime, kdfMemory, kdfThreads, secretsKeySize), nil
}

func (k *passphraseKey) Description() string {
	return fmt.Sprintf("frase secreta em %s (Argon2id, sal em %s)", PassphraseEnv, k.saltPath)
}

func loadOrCreateSalt(path string) ([]byte, error) {
	salt, err := os.ReadFile(path)
	if err == nil {
		if len(salt) != saltSize {
			return nil, fmt.Errorf("salt file %s is corrupt: %d bytes", path, len(salt))
		}
		return salt, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("reading salt: %w", err)
	}

	salt = make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("generating salt: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("creating secrets directory: %w", err)
	}
	if err := os.WriteFile(path, salt, 0600); err != nil {
		return nil, fmt.Errorf("writing salt: %w", err)
	}
	return salt, nil
}

// keyringKey keeps a random key in the OS keyring, created on first use.
type keyringKey struct{}

func (k *keyringKey) GetKey() ([]byte, error) {
	stored, err := keyring.Get(keyringService, keyringAccount)
	switch {
	case err == nil:
		if key, decErr := hex.DecodeString(stored); decErr == nil && len(key) == secretsKeySize {
			return key, nil
		}
		// Unreadable entry: replace it. Secrets encrypted under it are lost.
	case !errors.Is(err, keyring.ErrNotFound):
		return nil, fmt.Errorf("%w: %v", ErrKeyringUnavailable, err)
	}

	key := make([]byte, secretsKeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generating key: %w", err)
	}
	if err := keyring.Set(keyringService, keyringAccount, hex.EncodeToString(key)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyringUnavailable, err)
	}
	return key, nil
}

func (k *keyringKey) Description() string {
	return "chaveiro do sistema (" + keyringService + "/" + keyringAccount + ")"
}
