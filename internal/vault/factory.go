package vault

import "runtime"

// New returns the best available vault for the current platform: the system
// Keychain on macOS, an AES-256-GCM encrypted file elsewhere.
func New() Vault {
	if runtime.GOOS == "darwin" {
		return NewKeychain()
	}
	return NewFileVault()
}
