package auth

import "golang.org/x/crypto/bcrypt"

// bcryptCost trades hashing speed for brute-force resistance.
const bcryptCost = 12

// HashPassword returns a salted bcrypt digest of the plaintext. The salt is
// random per call, so hashing the same password twice yields different digests.
func HashPassword(plain string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plain), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// CheckPassword reports whether plain matches the stored digest. A wrong
// password is a plain false, never an error.
func CheckPassword(plain, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plain)) == nil
}
