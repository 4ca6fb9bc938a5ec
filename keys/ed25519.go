package keys

import (
	"crypto/ed25519"
	"encoding/hex"
	"io"
)

const Ed25519 = "ed25519"

func init() {
	register(ed25519Scheme{})
}

type ed25519Scheme struct{}

type ed25519KeyPair struct {
	priv    ed25519.PrivateKey
	address string
}

func (ed25519Scheme) Name() string { return Ed25519 }

func (s ed25519Scheme) GenerateKey(r io.Reader) (KeyPair, error) {
	seed, err := readSeed(r)
	if err != nil {
		return nil, err
	}
	return s.KeyFromSeed(seed)
}

func (ed25519Scheme) KeyFromSeed(seed []byte) (KeyPair, error) {
	if err := checkSeed(seed); err != nil {
		return nil, err
	}
	priv := ed25519.NewKeyFromSeed(seed)
	pub := priv.Public().(ed25519.PublicKey)
	return &ed25519KeyPair{priv: priv, address: hex.EncodeToString(pub)}, nil
}

func (ed25519Scheme) Verify(address string, msg, sig []byte) bool {
	pub, err := hex.DecodeString(address)
	if err != nil || len(pub) != ed25519.PublicKeySize {
		return false
	}
	if len(sig) != ed25519.SignatureSize {
		return false
	}
	return ed25519.Verify(pub, msg, sig)
}

func (kp *ed25519KeyPair) Address() string { return kp.address }

func (kp *ed25519KeyPair) Sign(msg []byte) ([]byte, error) {
	return ed25519.Sign(kp.priv, msg), nil
}
