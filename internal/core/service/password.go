package service

import "golang.org/x/crypto/bcrypt"

// PasswordHasher wraps bcrypt. The zero value uses bcrypt.DefaultCost.
type PasswordHasher struct {
	Cost int
}

// dummyHash is compared against when the user does not exist, so unknown
// emails cost the same as wrong passwords.
var dummyHash = []byte("$2a$10$7EqJtq98hPqEX7fNZaFWoOhi5BWX4Z6Nw6vJZ2mO0yJ5nYv9Xh2O2")

func (h PasswordHasher) Hash(password string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Verify reports whether password matches hash. Malformed hashes never match.
func (h PasswordHasher) Verify(hash, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// burn performs a throwaway comparison.
func (h PasswordHasher) burn(password string) {
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
}
