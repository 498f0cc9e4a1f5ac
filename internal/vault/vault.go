// Package vault keeps dashboard access tokens out of config.toml, keyed by the
// dashboard base URL.
package vault

import (
	"errors"
	"strings"
)

// ErrNotFound is returned when no token is stored for a dashboard.
var ErrNotFound = errors.New("no token stored")

// Vault stores one token per dashboard.
type Vault interface {
	Set(baseURL, token string) error
	Get(baseURL string) (string, error)
	Delete(baseURL string) error
	List() ([]string, error)
}

// Key normalizes a base URL so that "http://h/" and "http://h" share a token.
func Key(baseURL string) string {
	return strings.TrimRight(strings.TrimSpace(baseURL), "/")
}

// Lookup returns the token for baseURL, or "" when none is stored or the
// vault cannot be read.
func Lookup(v Vault, baseURL string) string {
	token, err := v.Get(Key(baseURL))
	if err != nil {
		return ""
	}
	return token
}

// Mask returns a masked version of a token for display.
func Mask(value string) string {
	if len(value) <= 8 {
		return "****"
	}
	return value[:4] + "..." + value[len(value)-4:]
}
