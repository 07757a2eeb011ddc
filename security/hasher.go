package security

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const hashCost = 10

// bcrypt output is always this long, whatever the cost
const bcryptHashLen = 60

var bcryptPrefixes = []string{"$2a$", "$2b$", "$2y$"}

// ErrPasswordTooLong is returned by Hash for input bcrypt cannot represent.
// The limit is in bytes, so it applies to multibyte passwords well before
// their character count suggests.
var ErrPasswordTooLong = errors.New("password exceeds 72 bytes")

// MaxPasswordBytes is the longest input bcrypt hashes.
const MaxPasswordBytes = 72

// Hasher hashes and verifies user passwords with bcrypt.
type Hasher struct {
	cost int
}

func NewHasher() *Hasher {
	return &Hasher{cost: hashCost}
}

// Hash returns a salted bcrypt hash of plain.
func (h *Hasher) Hash(plain string) (string, error) {
	if len(plain) > MaxPasswordBytes {
		return "", ErrPasswordTooLong
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Verify reports whether plain matches hash. A malformed or non-bcrypt hash
// simply does not match.
func (h *Hasher) Verify(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// LooksLikeHash reports whether a stored password value is a bcrypt hash
// rather than a legacy plaintext password.
func LooksLikeHash(stored string) bool {
	if len(stored) != bcryptHashLen {
		return false
	}
	for _, p := range bcryptPrefixes {
		if strings.HasPrefix(stored, p) {
			return true
		}
	}
	return false
}
