package password

import "golang.org/x/crypto/bcrypt"

// Hasher hashes and verifies passwords with bcrypt.
type Hasher struct {
	cost int
}

// New returns a Hasher with the given bcrypt cost. Costs outside bcrypt's
// supported range fall back to bcrypt.DefaultCost.
func New(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Hasher{cost: cost}
}

// Hash returns the salted bcrypt digest of plaintext.
func (h *Hasher) Hash(plaintext string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// Verify reports whether plaintext matches digest, using bcrypt's own
// comparison.
func (h *Hasher) Verify(plaintext, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}
