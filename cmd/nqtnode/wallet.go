package main

import (
	"fmt"
	"time"

	"github.com/yourusername/nqtcoin/blockchain"
	"github.com/yourusername/nqtcoin/keys"
)

// Wallet is a named signing identity used by the demo run
type Wallet struct {
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	CreatedAt time.Time `json:"created_at"`

	key keys.KeyPair
}

// NewWallet generates a wallet with a fresh key
func NewWallet(name string, scheme keys.Scheme) (*Wallet, error) {
	kp, err := scheme.GenerateKey(nil)
	if err != nil {
		return nil, fmt.Errorf("generate key for %s: %w", name, err)
	}
	return WalletFromKey(name, kp), nil
}

func WalletFromKey(name string, kp keys.KeyPair) *Wallet {
	return &Wallet{Name: name, Address: kp.Address(), CreatedAt: time.Now(), key: kp}
}

// Send signs a transfer to dest and submits it to the ledger
func (w *Wallet) Send(bc *blockchain.Blockchain, dest string, amount int64) (*blockchain.Transaction, error) {
	tx, err := blockchain.NewTransaction(bc.Suite(), blockchain.WalletSource(w.Address), dest, amount)
	if err != nil {
		return nil, err
	}
	if err := tx.Sign(w.key); err != nil {
		return nil, err
	}
	if err := bc.AddTransaction(tx); err != nil {
		return nil, err
	}
	return tx, nil
}

// Balance returns the confirmed balance of the wallet
func (w *Wallet) Balance(bc *blockchain.Blockchain) int64 {
	return bc.GetBalance(w.Address)
}
