package service

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const saltAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// PasswordHasher turns a password and a per-user salt into a stored digest.
type PasswordHasher interface {
	GenerateSalt(length int) (string, error)
	Hash(password, salt string) (string, error)
	Verify(password, salt, digest string) bool
}

// NewPasswordHasher picks the hasher for algorithm: "sha256" (default) or "bcrypt".
func NewPasswordHasher(algorithm string) (PasswordHasher, error) {
	switch strings.ToLower(algorithm) {
	case "", "sha256":
		return SHA256Hasher{}, nil
	case "bcrypt":
		return BcryptHasher{Cost: bcrypt.DefaultCost}, nil
	default:
		return nil, fmt.Errorf("unsupported hash algorithm %q", algorithm)
	}
}

// GenerateSalt returns length characters drawn uniformly from [A-Za-z0-9]
// using crypto/rand.
func GenerateSalt(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("salt length must be positive, got %d", length)
	}
	max := big.NewInt(int64(len(saltAlphabet)))
	b := make([]byte, length)
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("generating salt: %w", err)
		}
		b[i] = saltAlphabet[n.Int64()]
	}
	return string(b), nil
}

// SHA256Hasher stores lowercase hex sha256(password + salt).
type SHA256Hasher struct{}

func (SHA256Hasher) GenerateSalt(length int) (string, error) {
	return GenerateSalt(length)
}

func (SHA256Hasher) Hash(password, salt string) (string, error) {
	sum := sha256.Sum256([]byte(password + salt))
	return hex.EncodeToString(sum[:]), nil
}

func (h SHA256Hasher) Verify(password, salt, digest string) bool {
	computed, _ := h.Hash(password, salt)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(digest)) == 1
}

// BcryptHasher runs bcrypt over password + salt.
type BcryptHasher struct {
	Cost int
}

func (BcryptHasher) GenerateSalt(length int) (string, error) {
	return GenerateSalt(length)
}

func (h BcryptHasher) Hash(password, salt string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(password+salt), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (BcryptHasher) Verify(password, salt, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(password+salt)) == nil
}
