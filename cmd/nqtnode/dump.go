package main

import (
	"fmt"
	"time"

	"github.com/pterm/pterm"

	"github.com/yourusername/nqtcoin/blockchain"
)

func abbrev(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}

// renderChain returns the chain as a table, one row per block
func renderChain(chain []*blockchain.Block) (string, error) {
	data := pterm.TableData{
		{"Index", "Time", "Txs", "Nonce", "Previous", "Hash"},
	}
	for _, b := range chain {
		prev := b.PreviousHash
		if prev == "" {
			prev = "-"
		}
		data = append(data, []string{
			fmt.Sprint(b.Index),
			time.UnixMilli(b.Timestamp).UTC().Format(time.RFC3339),
			fmt.Sprint(len(b.Transactions)),
			fmt.Sprint(b.Nonce),
			abbrev(prev, 16),
			abbrev(b.Hash, 16),
		})
	}
	return pterm.DefaultTable.WithHasHeader().WithBoxed().WithData(data).Srender()
}

// renderTransactions lists the transactions of a block
func renderTransactions(block *blockchain.Block) (string, error) {
	data := pterm.TableData{
		{"Source", "Dest", "Amount", "Signed"},
	}
	for _, tx := range block.Transactions {
		source := tx.Source.String()
		if tx.Source.Kind == blockchain.SourceMint {
			source = "mint:" + abbrev(source, 11)
		}
		ok, _ := tx.IsValid()
		data = append(data, []string{
			abbrev(source, 16),
			abbrev(tx.Dest, 16),
			fmt.Sprintf("%d %s", tx.Amount, blockchain.CoinSymbol),
			fmt.Sprint(ok),
		})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
}
