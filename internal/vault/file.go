package vault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
)

// FileVault keeps tokens in an AES-256-GCM encrypted JSON file at
// $XDG_CONFIG_HOME/gridmap/tokens.enc.
type FileVault struct {
	path string
	key  []byte
}

// NewFileVault returns the vault at the default location.
func NewFileVault() *FileVault {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return OpenFileVault(filepath.Join(dir, "gridmap", "tokens.enc"))
}

// OpenFileVault returns a vault backed by path. The file is created on the
// first Set.
func OpenFileVault(path string) *FileVault {
	return &FileVault{path: path, key: deriveKey()}
}

// deriveKey binds the file to this machine and user.
func deriveKey() []byte {
	hostname, _ := os.Hostname()
	username := os.Getenv("USER")
	if username == "" {
		username = os.Getenv("USERNAME")
	}
	hash := sha256.Sum256([]byte(fmt.Sprintf("gridmap-tokens:%s:%s", hostname, username)))
	return hash[:]
}

func (f *FileVault) load() (map[string]string, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]string), nil
		}
		return nil, err
	}

	plaintext, err := f.open(data)
	if err != nil {
		return nil, fmt.Errorf("vault decrypt: %w", err)
	}

	store := make(map[string]string)
	if err := json.Unmarshal(plaintext, &store); err != nil {
		return nil, fmt.Errorf("vault parse: %w", err)
	}
	return store, nil
}

func (f *FileVault) save(store map[string]string) error {
	plaintext, err := json.Marshal(store)
	if err != nil {
		return err
	}
	sealed, err := f.seal(plaintext)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(f.path, sealed, 0o600)
}

func (f *FileVault) gcm() (cipher.AEAD, error) {
	block, err := aes.NewCipher(f.key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// seal prepends a random nonce to the ciphertext.
func (f *FileVault) seal(plaintext []byte) ([]byte, error) {
	gcm, err := f.gcm()
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

func (f *FileVault) open(data []byte) ([]byte, error) {
	gcm, err := f.gcm()
	if err != nil {
		return nil, err
	}
	n := gcm.NonceSize()
	if len(data) < n {
		return nil, fmt.Errorf("ciphertext too short")
	}
	return gcm.Open(nil, data[:n], data[n:], nil)
}

func (f *FileVault) Set(baseURL, token string) error {
	store, err := f.load()
	if err != nil {
		return err
	}
	store[Key(baseURL)] = token
	return f.save(store)
}

func (f *FileVault) Get(baseURL string) (string, error) {
	store, err := f.load()
	if err != nil {
		return "", err
	}
	token, ok := store[Key(baseURL)]
	if !ok {
		return "", fmt.Errorf("%w for %s", ErrNotFound, Key(baseURL))
	}
	return token, nil
}

func (f *FileVault) Delete(baseURL string) error {
	store, err := f.load()
	if err != nil {
		return err
	}
	k := Key(baseURL)
	if _, ok := store[k]; !ok {
		return fmt.Errorf("%w for %s", ErrNotFound, k)
	}
	delete(store, k)
	return f.save(store)
}

func (f *FileVault) List() ([]string, error) {
	store, err := f.load()
	if err != nil {
		return nil, err
	}
	urls := make([]string, 0, len(store))
	for k := range store {
		urls = append(urls, k)
	}
	sort.Strings(urls)
	return urls, nil
}
