package password

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// HashPIN returns a bcrypt hash that can replace the plain PIN in DRIVER_PINS.
func HashPIN(pin string, cost int) (string, error) {
	if pin == "" {
		return "", errors.New("password: empty pin")
	}
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
