package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"github.com/zalando/go-keyring"
)

const (
	SecretFileName = "rpc.secret"

	keyringService = "namaadhu"
	keyringUser    = "rpc-secret"
)

// ErrNoSecret is returned by a SecretStore holding no secret.
var ErrNoSecret = errors.New("no stored secret")

// SecretStore persists the RPC secret shared by the daemon and its clients.
type SecretStore interface {
	Get() (string, error)
	Set(secret string) error
}

var (
	keyringSet = keyring.Set
	keyringGet = keyring.Get
)

// KeyringStore keeps the secret in the operating system's keyring.
type KeyringStore struct {
	Service string
	User    string
}

func NewKeyringStore() *KeyringStore {
	return &KeyringStore{Service: keyringService, User: keyringUser}
}

func (k *KeyringStore) Get() (string, error) {
	s, err := keyringGet(k.Service, k.User)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", ErrNoSecret
	}
	if err != nil {
		return "", err
	}
	return s, nil
}

func (k *KeyringStore) Set(secret string) error {
	return keyringSet(k.Service, k.User, secret)
}

// FileSecretStore keeps the secret in a 0600 file.
type FileSecretStore struct {
	fs   afero.Fs
	path string
}

func NewFileSecretStore(fsys afero.Fs, dir string) *FileSecretStore {
	return &FileSecretStore{fs: fsys, path: filepath.Join(dir, SecretFileName)}
}

func (f *FileSecretStore) Get() (string, error) {
	b, err := afero.ReadFile(f.fs, f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", ErrNoSecret
	}
	if err != nil {
		return "", err
	}
	s := strings.TrimSpace(string(b))
	if s == "" {
		return "", ErrNoSecret
	}
	return s, nil
}

func (f *FileSecretStore) Set(secret string) error {
	if err := f.fs.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return err
	}
	return afero.WriteFile(f.fs, f.path, []byte(secret+"\n"), 0o600)
}

// SecretStores lists where the secret is looked up, in order: the keyring
// when enabled, then the config directory.
func (c *Config) SecretStores(fsys afero.Fs) []SecretStore {
	file := NewFileSecretStore(fsys, c.ConfigDir)
	if c.Keyring {
		return []SecretStore{NewKeyringStore(), file}
	}
	return []SecretStore{file}
}

// EnsureSecret fills c.Secret from the first store holding one. Otherwise a
// fresh random token is saved to the first store that accepts it, so an
// unavailable keyring falls back to the config directory. An explicitly
// configured secret is left alone.
func (c *Config) EnsureSecret(fsys afero.Fs) error {
	if c.Secret != "" {
		return nil
	}
	stores := c.SecretStores(fsys)
	for _, st := range stores {
		s, err := st.Get()
		if err == nil {
			c.Secret = s
			return nil
		}
		if !errors.Is(err, ErrNoSecret) && len(stores) == 1 {
			return fmt.Errorf("error: failed to read RPC secret: %w", err)
		}
	}

	secret := uuid.NewString()
	var errs []error
	for _, st := range stores {
		err := st.Set(secret)
		if err == nil {
			c.Secret = secret
			return nil
		}
		errs = append(errs, err)
	}
	return fmt.Errorf("error: failed to store RPC secret: %w", errors.Join(errs...))
}
