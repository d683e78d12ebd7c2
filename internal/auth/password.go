package auth

import (
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// BcryptCost is the hashing cost for stored passwords.
const BcryptCost = 12

func HashPassword(plain string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), BcryptCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func CheckPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// randomPassword is assigned to accounts created through Google sign-in;
// nobody knows it, so password login stays closed until a reset.
func randomPassword() string {
	return uuid.NewString()
}
