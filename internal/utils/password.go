package utils

import "golang.org/x/crypto/bcrypt"

// HashPassword hashes a student's password with bcrypt.  The cost comes
// from BCRYPT_COST so tests can run with a cheap setting while production
// stays slow; out-of-range values fall back to the bcrypt default rather
// than failing signup.
func HashPassword(plain string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword reports whether plain matches the stored hash.  bcrypt's
// comparison does not leak where the inputs diverge.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
