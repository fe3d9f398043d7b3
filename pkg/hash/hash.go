package hash

import (
	"golang.org/x/crypto/bcrypt"
)

const DefaultCost = 10

// HashPassword hashes with bcrypt. Costs below DefaultCost are raised to it.
func HashPassword(password string, cost int) (string, error) {
	if cost < DefaultCost {
		cost = DefaultCost
	}
	hashbytes, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}

	return string(hashbytes), nil
}

func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
