package keys

import (
	"encoding/hex"
	"io"

	"github.com/cloudflare/circl/sign/dilithium/mode3"
)

// Dilithium3 is the post-quantum CRYSTALS-Dilithium mode 3 scheme. Its
// addresses are much longer than those of the elliptic curve schemes.
const Dilithium3 = "dilithium3"

func init() {
	register(dilithiumScheme{})
}

type dilithiumScheme struct{}

type dilithiumKeyPair struct {
	priv    *mode3.PrivateKey
	address string
}

func (dilithiumScheme) Name() string { return Dilithium3 }

func (s dilithiumScheme) GenerateKey(r io.Reader) (KeyPair, error) {
	seed, err := readSeed(r)
	if err != nil {
		return nil, err
	}
	return s.KeyFromSeed(seed)
}

func (dilithiumScheme) KeyFromSeed(seed []byte) (KeyPair, error) {
	if err := checkSeed(seed); err != nil {
		return nil, err
	}

	var s [mode3.SeedSize]byte
	copy(s[:], seed)
	pub, priv := mode3.NewKeyFromSeed(&s)

	return &dilithiumKeyPair{priv: priv, address: hex.EncodeToString(pub.Bytes())}, nil
}

func (dilithiumScheme) Verify(address string, msg, sig []byte) bool {
	raw, err := hex.DecodeString(address)
	if err != nil || len(raw) != mode3.PublicKeySize {
		return false
	}
	if len(sig) != mode3.SignatureSize {
		return false
	}

	var pub mode3.PublicKey
	if err := pub.UnmarshalBinary(raw); err != nil {
		return false
	}
	return mode3.Verify(&pub, msg, sig)
}

func (kp *dilithiumKeyPair) Address() string { return kp.address }

func (kp *dilithiumKeyPair) Sign(msg []byte) ([]byte, error) {
	sig := make([]byte, mode3.SignatureSize)
	mode3.SignTo(kp.priv, msg, sig)
	return sig, nil
}
