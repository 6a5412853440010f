package solanalib

import (
	"github.com/krazyTry/solanalib/ledger"
)

type (
	Cluster    = ledger.Cluster
	Connection = ledger.Connection
	Option     = ledger.Option
)

const (
	Devnet      = ledger.Devnet
	Testnet     = ledger.Testnet
	MainnetBeta = ledger.MainnetBeta
	Localnet    = ledger.Localnet
)

// GetConnection opens a connection to the public endpoint of a cluster.
//
// Example:
//
// conn, _ := GetConnection(Devnet)
//
// wallet := CreateWallet()
//
// conn.AirdropSolana(ctx, wallet.PublicKey().String(), solana.LAMPORTS_PER_SOL)
//
// conn.TransferSolana(ctx, wallet.PrivateKey, receiver, 5000)
var GetConnection = ledger.GetConnection

// NewConnection opens a connection to a custom RPC endpoint.
//
// Example:
//
// conn := NewConnection(Localnet, "http://127.0.0.1:8899", ledger.WithCommitment(rpc.CommitmentFinalized))
//
// mint, _ := conn.CreateNFT(ctx, payer.PrivateKey, owner.String())
//
// conn.TransferNFT(ctx, owner.PrivateKey, receiver, mint.String())
var NewConnection = ledger.NewConnection

// CreateWallet generates a keypair locally.
var CreateWallet = ledger.CreateWallet
