package hash

import (
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// MaxPasswordBytes is bcrypt's input limit. It counts bytes, not characters.
const MaxPasswordBytes = 72

func HashPassword(password string) (string, error) {
	hashbytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}

	return string(hashbytes), nil
}

func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

var dummyHash = sync.OnceValue(func() string {
	h, _ := HashPassword("feed_shop-dummy-password")
	return h
})

// BurnCompare runs a full bcrypt comparison against a throwaway hash. Callers use it when
// there is no stored hash, so a missing user costs as much as a wrong password.
func BurnCompare(password string) {
	_ = CheckPassword(dummyHash(), password)
}
