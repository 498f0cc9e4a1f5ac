package vault

import (
	"fmt"
	"os/exec"
	"strings"
)

const service = "gridmap"

// KeychainVault keeps tokens in the macOS Keychain, one generic password per
// dashboard.
type KeychainVault struct{}

// NewKeychain returns the Keychain vault.
func NewKeychain() *KeychainVault {
	return &KeychainVault{}
}

func (k *KeychainVault) Set(baseURL, token string) error {
	cmd := exec.Command("security", "add-generic-password",
		"-s", service,
		"-a", Key(baseURL),
		"-w", token,
		"-U",
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("keychain set: %s: %w", strings.TrimSpace(string(out)), err)
	}
	return nil
}

func (k *KeychainVault) Get(baseURL string) (string, error) {
	out, err := exec.Command("security", "find-generic-password",
		"-s", service,
		"-a", Key(baseURL),
		"-w",
	).Output()
	if err != nil {
		return "", fmt.Errorf("%w for %s", ErrNotFound, Key(baseURL))
	}
	return strings.TrimSpace(string(out)), nil
}

func (k *KeychainVault) Delete(baseURL string) error {
	out, err := exec.Command("security", "delete-generic-password",
		"-s", service,
		"-a", Key(baseURL),
	).CombinedOutput()
	if err != nil {
		return fmt.Errorf("keychain delete: %s: %w", strings.TrimSpace(string(out)), err)
	}
	return nil
}

func (k *KeychainVault) List() ([]string, error) {
	out, err := exec.Command("security", "dump-keychain").Output()
	if err != nil {
		return nil, fmt.Errorf("keychain list: %w", err)
	}
	return parseDump(string(out)), nil
}

// parseDump picks the account names of our service out of `security
// dump-keychain` output. Entries start with a class line; attribute order
// within an entry is not fixed.
func parseDump(dump string) []string {
	const acct = `"acct"<blob>="`
	var urls []string
	for _, entry := range strings.Split(dump, "class: ") {
		if !strings.Contains(entry, `"svce"<blob>="`+service+`"`) {
			continue
		}
		i := strings.Index(entry, acct)
		if i < 0 {
			continue
		}
		rest := entry[i+len(acct):]
		if end := strings.Index(rest, `"`); end > 0 {
			urls = append(urls, rest[:end])
		}
	}
	return urls
}
