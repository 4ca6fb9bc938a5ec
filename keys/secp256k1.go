package keys

import (
	"encoding/hex"
	"fmt"
	"io"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
)

// Secp256k1 is ECDSA over secp256k1 with DER encoded signatures and
// uncompressed public key addresses
const Secp256k1 = "secp256k1"

func init() {
	register(secp256k1Scheme{})
}

type secp256k1Scheme struct{}

type secp256k1KeyPair struct {
	priv    *secp256k1.PrivateKey
	address string
}

func (secp256k1Scheme) Name() string { return Secp256k1 }

func (s secp256k1Scheme) GenerateKey(r io.Reader) (KeyPair, error) {
	seed, err := readSeed(r)
	if err != nil {
		return nil, err
	}
	return s.KeyFromSeed(seed)
}

func (secp256k1Scheme) KeyFromSeed(seed []byte) (KeyPair, error) {
	if err := checkSeed(seed); err != nil {
		return nil, err
	}

	priv := secp256k1.PrivKeyFromBytes(seed)
	if priv.Key.IsZero() {
		return nil, fmt.Errorf("%w: scalar is zero", ErrInvalidSeed)
	}

	return &secp256k1KeyPair{
		priv:    priv,
		address: hex.EncodeToString(priv.PubKey().SerializeUncompressed()),
	}, nil
}

func (secp256k1Scheme) Verify(address string, msg, sig []byte) bool {
	raw, err := hex.DecodeString(address)
	if err != nil {
		return false
	}
	pub, err := secp256k1.ParsePubKey(raw)
	if err != nil {
		return false
	}
	parsed, err := ecdsa.ParseDERSignature(sig)
	if err != nil {
		return false
	}
	return parsed.Verify(msg, pub)
}

func (kp *secp256k1KeyPair) Address() string { return kp.address }

// Sign produces an RFC 6979 deterministic signature over msg
func (kp *secp256k1KeyPair) Sign(msg []byte) ([]byte, error) {
	return ecdsa.Sign(kp.priv, msg).Serialize(), nil
}
