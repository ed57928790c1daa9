package credentials

import (
	"bytes"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/zalando/go-keyring"
)

func envOf(vars map[string]string) func(string) string {
	return func(k string) string { return vars[k] }
}

func TestSelectKeyProvider_HexKeyWins(t *testing.T) {
	dir := t.TempDir()
	p, err := SelectKeyProvider(KeyOptions{
		Getenv: envOf(map[string]string{EncryptionKeyEnv: testEncryptionKey, PassphraseEnv: "segredo"}),
		Dir:    dir,
	})
	if err != nil {
		t.Fatalf("SelectKeyProvider() error = %v", err)
	}
	key, err := p.GetKey()
	if err != nil {
		t.Fatalf("GetKey() error = %v", err)
	}
	want, _ := hex.DecodeString(testEncryptionKey)
	if !bytes.Equal(key, want) {
		t.Error("GetKey() returned the wrong key")
	}
	if !strings.Contains(p.Description(), EncryptionKeyEnv) {
		t.Errorf("Description() = %q, want it to name %s", p.Description(), EncryptionKeyEnv)
	}
	if _, err := os.Stat(filepath.Join(dir, SaltFile)); !os.IsNotExist(err) {
		t.Error("no salt should be written when the hex key is used")
	}
}

func TestSelectKeyProvider_BadHexKey(t *testing.T) {
	for name, raw := range map[string]string{"not hex": "not-valid-hex", "short": "0123456789abcdef"} {
		t.Run(name, func(t *testing.T) {
			p, err := SelectKeyProvider(KeyOptions{Getenv: envOf(map[string]string{EncryptionKeyEnv: raw})})
			if err != nil {
				t.Fatalf("SelectKeyProvider() error = %v", err)
			}
			if _, err := p.GetKey(); err == nil {
				t.Error("GetKey() expected an error")
			}
		})
	}
}

func TestSelectKeyProvider_PassphraseCreatesSaltOnce(t *testing.T) {
	dir := t.TempDir()
	opts := KeyOptions{Getenv: envOf(map[string]string{PassphraseEnv: "segredo"}), Dir: dir}

	p, err := SelectKeyProvider(opts)
	if err != nil {
		t.Fatalf("SelectKeyProvider() error = %v", err)
	}
	k1, err := p.GetKey()
	if err != nil {
		t.Fatalf("GetKey() error = %v", err)
	}
	if len(k1) != secretsKeySize {
		t.Errorf("len(key) = %d, want %d", len(k1), secretsKeySize)
	}

	salt, err := os.ReadFile(filepath.Join(dir, SaltFile))
	if err != nil {
		t.Fatalf("salt not written: %v", err)
	}
	if len(salt) != saltSize {
		t.Errorf("len(salt) = %d, want %d", len(salt), saltSize)
	}

	again, _ := SelectKeyProvider(opts)
	k2, _ := again.GetKey()
	if !bytes.Equal(k1, k2) {
		t.Error("the same passphrase and salt file should derive the same key")
	}

	other, _ := SelectKeyProvider(KeyOptions{Getenv: envOf(map[string]string{PassphraseEnv: "outra"}), Dir: dir})
	k3, _ := other.GetKey()
	if bytes.Equal(k1, k3) {
		t.Error("different passphrases should derive different keys")
	}
}

func TestSelectKeyProvider_CorruptSalt(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, SaltFile), []byte("abc"), 0600); err != nil {
		t.Fatal(err)
	}
	p, _ := SelectKeyProvider(KeyOptions{Getenv: envOf(map[string]string{PassphraseEnv: "segredo"}), Dir: dir})
	if _, err := p.GetKey(); err == nil || !strings.Contains(err.Error(), "corrupt") {
		t.Errorf("GetKey() error = %v, want corrupt salt", err)
	}
}

func TestSelectKeyProvider_KeyringPersistsKey(t *testing.T) {
	keyring.MockInit()

	p, err := SelectKeyProvider(KeyOptions{Getenv: envOf(nil)})
	if err != nil {
		t.Fatalf("SelectKeyProvider() error = %v", err)
	}
	if _, ok := p.(*keyringKey); !ok {
		t.Fatalf("provider = %T, want keyring", p)
	}
	k1, err := p.GetKey()
	if err != nil {
		t.Fatalf("GetKey() error = %v", err)
	}
	k2, _ := (&keyringKey{}).GetKey()
	if !bytes.Equal(k1, k2) {
		t.Error("keyring key should be stable across calls")
	}
}

func TestSelectKeyProvider_KeyringUnavailable(t *testing.T) {
	keyring.MockInitWithError(errors.New("no dbus"))
	defer keyring.MockInit()

	_, err := SelectKeyProvider(KeyOptions{Getenv: envOf(nil)})
	if !errors.Is(err, ErrKeyringUnavailable) {
		t.Fatalf("error = %v, want ErrKeyringUnavailable", err)
	}
	if !strings.Contains(err.Error(), PassphraseEnv) {
		t.Errorf("error %q should point at %s", err, PassphraseEnv)
	}
}

func TestNewStore_Passphrase(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("ENTREGAVEIS_CONFIG_DIR", dir)
	t.Setenv(EncryptionKeyEnv, "")
	t.Setenv(PassphraseEnv, "segredo")

	store, err := NewStore()
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	if err := store.Set(GeminiAPIKeyName, "AIza-test-key-12345"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	reopened, err := NewStore()
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	got, err := reopened.Get(GeminiAPIKeyName)
	if err != nil || got != "AIza-test-key-12345" {
		t.Errorf("Get() = %q, %v", got, err)
	}
}
