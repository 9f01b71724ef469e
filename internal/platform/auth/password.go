package auth

import (
	"fmt"

	"github.com/phrazzld/confengine/internal/config"
	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher hashes and verifies passwords with bcrypt at the configured cost.
type PasswordHasher struct {
	cost int
}

// NewPasswordHasher creates a hasher using the BCRYPT_COST option.
func NewPasswordHasher(cfg config.SecurityConfig) (*PasswordHasher, error) {
	cost := cfg.PasswordCost()
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("invalid bcrypt cost %d", cost)
	}
	return &PasswordHasher{cost: cost}, nil
}

// Hash returns the bcrypt hash of password.
func (h *PasswordHasher) Hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// Compare returns nil when password matches hashedPassword.
func (h *PasswordHasher) Compare(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}
