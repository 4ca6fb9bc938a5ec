package blockchain

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"fmt"

	"github.com/yourusername/nqtcoin/keys"
)

// SourceKind tells who pays for a transaction
type SourceKind uint8

const (
	// SourceUnsigned is the reserved "no source" sentinel of legacy records
	SourceUnsigned SourceKind = iota
	// SourceWallet is a user account that must sign its transfers
	SourceWallet
	// SourceMint is the ledger's own issuing identity
	SourceMint
)

func (k SourceKind) String() string {
	switch k {
	case SourceUnsigned:
		return "unsigned"
	case SourceWallet:
		return "wallet"
	case SourceMint:
		return "mint"
	default:
		return fmt.Sprintf("SourceKind(%d)", uint8(k))
	}
}

// Source identifies the payer of a transaction
type Source struct {
	Kind    SourceKind `json:"kind"`
	Address string     `json:"address,omitempty"`
}

// WalletSource returns a source debiting the given account
func WalletSource(address string) Source {
	return Source{Kind: SourceWallet, Address: address}
}

// MintSource returns a source that creates supply from the mint identity
func MintSource(address string) Source {
	return Source{Kind: SourceMint, Address: address}
}

// UnsignedSource returns the legacy "no source" sentinel
func UnsignedSource() Source {
	return Source{Kind: SourceUnsigned}
}

func (s Source) String() string {
	if s.Kind == SourceUnsigned {
		return "<none>"
	}
	return s.Address
}

// Transaction is a signed transfer of Amount from Source to Dest
type Transaction struct {
	Source    Source `json:"source"`
	Dest      string `json:"dest"`
	Amount    int64  `json:"amount"`
	Timestamp int64  `json:"timestamp"`
	Signature []byte `json:"signature,omitempty"`

	suite *Suite
}

// NewTransaction creates an unsigned transaction stamped with the suite clock
func NewTransaction(suite *Suite, source Source, dest string, amount int64) (*Transaction, error) {
	if suite == nil {
		return nil, ErrNoSuite
	}
	return newTransactionAt(suite, source, dest, amount, suite.Now())
}

func newTransactionAt(suite *Suite, source Source, dest string, amount int64, timestamp int64) (*Transaction, error) {
	switch source.Kind {
	case SourceWallet, SourceMint:
		if source.Address == "" {
			return nil, fmt.Errorf("%w: empty %s source", ErrInvalidAddress, source.Kind)
		}
	case SourceUnsigned:
	default:
		return nil, fmt.Errorf("%w: unknown source kind %d", ErrInvalidAddress, source.Kind)
	}
	if dest == "" {
		return nil, fmt.Errorf("%w: empty destination", ErrInvalidAddress)
	}
	if amount <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidAmount, amount)
	}

	return &Transaction{
		Source:    source,
		Dest:      dest,
		Amount:    amount,
		Timestamp: timestamp,
		suite:     suite,
	}, nil
}

// signingBytes encodes the four signed fields: source, destination,
// amount and timestamp
func (tx *Transaction) signingBytes() []byte {
	buf := new(bytes.Buffer)
	writeString(buf, tx.Source.Address)
	writeString(buf, tx.Dest)
	binary.Write(buf, binary.LittleEndian, tx.Amount)
	binary.Write(buf, binary.LittleEndian, tx.Timestamp)
	return buf.Bytes()
}

// Hash returns the digest that is signed
func (tx *Transaction) Hash() []byte {
	return tx.suite.Hasher.Sum(tx.signingBytes())
}

// ID returns the hex encoded signing digest
func (tx *Transaction) ID() string {
	if tx.suite == nil {
		return ""
	}
	return hex.EncodeToString(tx.Hash())
}

// Sign signs the transaction with kp, which must own the source address
func (tx *Transaction) Sign(kp keys.KeyPair) error {
	if tx.suite == nil {
		return ErrNoSuite
	}
	if tx.Source.Kind == SourceUnsigned {
		return fmt.Errorf("%w: transaction has no source to sign for", ErrKeyMismatch)
	}
	if kp == nil || kp.Address() != tx.Source.Address {
		return ErrKeyMismatch
	}

	sig, err := kp.Sign(tx.Hash())
	if err != nil {
		return fmt.Errorf("sign transaction: %w", err)
	}
	tx.Signature = sig
	return nil
}

// IsValid verifies the signature against the source address. Unsigned
// sentinel records are always valid. A failed verification is reported as
// false; only a missing signature is an error.
func (tx *Transaction) IsValid() (bool, error) {
	return tx.verifyWith(tx.suite)
}

// verifyWith checks the signature with the given suite instead of the one
// the transaction was built with. The ledger always verifies this way.
func (tx *Transaction) verifyWith(suite *Suite) (bool, error) {
	if tx.Source.Kind == SourceUnsigned {
		return true, nil
	}
	if len(tx.Signature) == 0 {
		return false, ErrMissingSignature
	}
	if suite == nil || suite.Hasher == nil || suite.Scheme == nil {
		return false, ErrNoSuite
	}
	digest := suite.Hasher.Sum(tx.signingBytes())
	return suite.Scheme.Verify(tx.Source.Address, digest, tx.Signature), nil
}

// clone returns a deep copy bound to suite
func (tx *Transaction) clone(suite *Suite) *Transaction {
	c := *tx
	if tx.Signature != nil {
		c.Signature = append([]byte(nil), tx.Signature...)
	}
	c.suite = suite
	return &c
}

// BalanceContribution returns the signed effect of this transaction on
// address. Mint and unsigned sources create supply and debit nobody.
func (tx *Transaction) BalanceContribution(address string) int64 {
	var delta int64
	if tx.Source.Kind == SourceWallet && tx.Source.Address == address {
		delta -= tx.Amount
	}
	if tx.Dest == address {
		delta += tx.Amount
	}
	return delta
}

// encode writes every field that the block hash commits to
func (tx *Transaction) encode(buf *bytes.Buffer) {
	buf.WriteByte(byte(tx.Source.Kind))
	writeString(buf, tx.Source.Address)
	writeString(buf, tx.Dest)
	binary.Write(buf, binary.LittleEndian, tx.Amount)
	binary.Write(buf, binary.LittleEndian, tx.Timestamp)
	writeBytes(buf, tx.Signature)
}

func writeString(buf *bytes.Buffer, s string) {
	writeBytes(buf, []byte(s))
}

// writeBytes writes a length prefixed byte string
func writeBytes(buf *bytes.Buffer, b []byte) {
	binary.Write(buf, binary.LittleEndian, uint32(len(b)))
	buf.Write(b)
}
