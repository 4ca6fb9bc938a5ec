package keys

import (
	"encoding/hex"
	"fmt"
	"io"

	"go.dedis.ch/kyber/v4"
	"go.dedis.ch/kyber/v4/sign/schnorr"
	"go.dedis.ch/kyber/v4/suites"
)

// Schnorr is Schnorr signing over the kyber Ed25519 group. Signatures are
// randomized, so two signatures of the same message differ.
const Schnorr = "schnorr"

var edSuite = suites.MustFind("Ed25519")

func init() {
	register(schnorrScheme{})
}

type schnorrScheme struct{}

type schnorrKeyPair struct {
	private kyber.Scalar
	address string
}

func (schnorrScheme) Name() string { return Schnorr }

func (s schnorrScheme) GenerateKey(r io.Reader) (KeyPair, error) {
	seed, err := readSeed(r)
	if err != nil {
		return nil, err
	}
	return s.KeyFromSeed(seed)
}

func (schnorrScheme) KeyFromSeed(seed []byte) (KeyPair, error) {
	if err := checkSeed(seed); err != nil {
		return nil, err
	}

	private := edSuite.Scalar().Pick(edSuite.XOF(seed))
	public := edSuite.Point().Mul(private, nil)
	raw, err := public.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("marshal public key: %w", err)
	}

	return &schnorrKeyPair{private: private, address: hex.EncodeToString(raw)}, nil
}

func (schnorrScheme) Verify(address string, msg, sig []byte) bool {
	raw, err := hex.DecodeString(address)
	if err != nil {
		return false
	}
	public := edSuite.Point()
	if err := public.UnmarshalBinary(raw); err != nil {
		return false
	}
	return schnorr.Verify(edSuite, public, msg, sig) == nil
}

func (kp *schnorrKeyPair) Address() string { return kp.address }

func (kp *schnorrKeyPair) Sign(msg []byte) ([]byte, error) {
	sig, err := schnorr.Sign(edSuite, kp.private, msg)
	if err != nil {
		return nil, fmt.Errorf("schnorr sign: %w", err)
	}
	return sig, nil
}
