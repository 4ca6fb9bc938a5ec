// Package digest provides the hash functions used to seal blocks and to
// compute transaction signing digests.
package digest

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"sort"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/sha3"
)

const (
	SHA256     = "sha256"
	SHA3_256   = "sha3-256"
	Blake2b256 = "blake2b-256"
)

// ErrUnknownHasher is returned by Lookup for an unregistered name
var ErrUnknownHasher = errors.New("unknown hash function")

// Hasher computes a fixed-length digest over arbitrary bytes
type Hasher interface {
	Name() string
	Size() int
	Sum(data []byte) []byte
}

type hashFunc struct {
	name string
	size int
	sum  func([]byte) []byte
}

func (h hashFunc) Name() string { return h.name }
func (h hashFunc) Size() int    { return h.size }

func (h hashFunc) Sum(data []byte) []byte {
	return h.sum(data)
}

var registry = map[string]Hasher{
	SHA256: hashFunc{
		name: SHA256,
		size: sha256.Size,
		sum: func(b []byte) []byte {
			d := sha256.Sum256(b)
			return d[:]
		},
	},
	SHA3_256: hashFunc{
		name: SHA3_256,
		size: 32,
		sum: func(b []byte) []byte {
			d := sha3.Sum256(b)
			return d[:]
		},
	},
	Blake2b256: hashFunc{
		name: Blake2b256,
		size: blake2b.Size256,
		sum: func(b []byte) []byte {
			d := blake2b.Sum256(b)
			return d[:]
		},
	},
}

// Default returns the SHA-256 hasher
func Default() Hasher {
	return registry[SHA256]
}

// Lookup returns the hasher registered under name
func Lookup(name string) (Hasher, error) {
	h, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownHasher, name)
	}
	return h, nil
}

// Names lists the registered hash functions in sorted order
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
