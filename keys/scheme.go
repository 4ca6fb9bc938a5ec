// Package keys implements the signing and verification services used by the
// ledger. A public identity is always the hex encoding of a public key, so the
// same string serves as an account address and as a verification key.
package keys

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"sort"
)

// SeedSize is the length of the seed accepted by KeyFromSeed
const SeedSize = 32

var (
	// ErrUnknownScheme is returned by Lookup for an unregistered name
	ErrUnknownScheme = errors.New("unknown signature scheme")

	// ErrInvalidSeed is returned when a seed has the wrong length or
	// maps to an unusable private key
	ErrInvalidSeed = errors.New("invalid key seed")
)

// KeyPair is a private signing identity together with its public address
type KeyPair interface {
	// Address returns the hex encoded public key
	Address() string
	Sign(msg []byte) ([]byte, error)
}

// Scheme is an asymmetric signature algorithm
type Scheme interface {
	Name() string
	GenerateKey(rand io.Reader) (KeyPair, error)
	KeyFromSeed(seed []byte) (KeyPair, error)

	// Verify reports whether sig is a valid signature of msg by the key
	// encoded in address. Malformed addresses or signatures yield false.
	Verify(address string, msg, sig []byte) bool
}

var registry = map[string]Scheme{}

func register(s Scheme) {
	registry[s.Name()] = s
}

// Default returns the secp256k1 ECDSA scheme
func Default() Scheme {
	return registry[Secp256k1]
}

// Lookup returns the scheme registered under name
func Lookup(name string) (Scheme, error) {
	s, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownScheme, name)
	}
	return s, nil
}

// Names lists the registered schemes in sorted order
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// readSeed draws a fresh seed from r, falling back to crypto/rand
func readSeed(r io.Reader) ([]byte, error) {
	if r == nil {
		r = rand.Reader
	}
	seed := make([]byte, SeedSize)
	if _, err := io.ReadFull(r, seed); err != nil {
		return nil, fmt.Errorf("read seed: %w", err)
	}
	return seed, nil
}

func checkSeed(seed []byte) error {
	if len(seed) != SeedSize {
		return fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidSeed, len(seed), SeedSize)
	}
	return nil
}
