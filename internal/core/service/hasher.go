package service

import "golang.org/x/crypto/bcrypt"

// PasswordHasher produces and checks one-way salted password hashes.
type PasswordHasher interface {
	Hash(password string) (string, error)

	// Verify reports whether password matches hash. Malformed hashes are a
	// plain verification failure, never an error surfaced to callers.
	Verify(password, hash string) bool
}

// BcryptHasher is the default PasswordHasher. The salt lives inside the
// produced hash string, so nothing else needs to be stored.
type BcryptHasher struct {
	Cost int
}

func (h BcryptHasher) Hash(password string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	return string(hash), err
}

func (h BcryptHasher) Verify(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
