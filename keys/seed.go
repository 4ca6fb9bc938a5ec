package keys

import (
	"fmt"

	"golang.org/x/crypto/argon2"
)

// Argon2id cost parameters for passphrase derived seeds
const (
	argon2Time    = 1
	argon2Memory  = 64 * 1024
	argon2Threads = 4
)

// SeedFromPassphrase stretches a passphrase into a SeedSize seed with
// argon2id. The same passphrase and salt always yield the same seed, which
// lets a ledger recreate its mint identity across restarts.
func SeedFromPassphrase(passphrase, salt string) ([]byte, error) {
	if passphrase == "" {
		return nil, fmt.Errorf("%w: empty passphrase", ErrInvalidSeed)
	}
	if len(salt) < 8 {
		return nil, fmt.Errorf("%w: salt must be at least 8 bytes", ErrInvalidSeed)
	}
	return argon2.IDKey([]byte(passphrase), []byte(salt), argon2Time, argon2Memory, argon2Threads, SeedSize), nil
}

// FromPassphrase derives a key pair for scheme from a passphrase
func FromPassphrase(scheme Scheme, passphrase, salt string) (KeyPair, error) {
	seed, err := SeedFromPassphrase(passphrase, salt)
	if err != nil {
		return nil, err
	}
	return scheme.KeyFromSeed(seed)
}
