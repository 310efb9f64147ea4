package password

import (
	"crypto/subtle"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// PinBook maps PINs back to driver aliases. Entries may hold the PIN in plain text or as a
// bcrypt hash. It is built once at startup and never modified.
type PinBook struct {
	entries []pinEntry
}

type pinEntry struct {
	alias  string
	secret string
	hashed bool
}

// Pin is one configured alias with its PIN or bcrypt hash.
type Pin struct {
	Alias  string
	Secret string
}

// NewPinBook builds a book from pins. Lookups walk pins in the given order, so a PIN shared by
// two aliases resolves to the one listed first.
func NewPinBook(pins []Pin) (*PinBook, error) {
	if len(pins) == 0 {
		return nil, errors.New("password: no driver pins configured")
	}
	entries := make([]pinEntry, 0, len(pins))
	for _, p := range pins {
		alias := strings.TrimSpace(p.Alias)
		secret := strings.TrimSpace(p.Secret)
		if alias == "" || secret == "" {
			return nil, errors.New("password: alias and pin must be non-empty")
		}
		entries = append(entries, pinEntry{alias: alias, secret: secret, hashed: isBcryptHash(secret)})
	}
	return &PinBook{entries: entries}, nil
}

// Match returns the alias whose PIN equals input exactly.
func (b *PinBook) Match(input string) (string, bool) {
	if input == "" {
		return "", false
	}
	for _, e := range b.entries {
		if e.hashed {
			if bcrypt.CompareHashAndPassword([]byte(e.secret), []byte(input)) == nil {
				return e.alias, true
			}
			continue
		}
		if subtle.ConstantTimeCompare([]byte(e.secret), []byte(input)) == 1 {
			return e.alias, true
		}
	}
	return "", false
}

// Aliases lists configured aliases in lookup order.
func (b *PinBook) Aliases() []string {
	out := make([]string, 0, len(b.entries))
	for _, e := range b.entries {
		out = append(out, e.alias)
	}
	return out
}

func isBcryptHash(s string) bool {
	return strings.HasPrefix(s, "$2a$") || strings.HasPrefix(s, "$2b$") || strings.HasPrefix(s, "$2y$")
}
