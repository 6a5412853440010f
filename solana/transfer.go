package solana

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/programs/token"
	"github.com/gagliardetto/solana-go/rpc"
)

// TransferTokenInstructions moves amount base units of mint from sender's
// associated token account to receiver's, creating either account when missing.
// Account creation is paid by payer; sender signs the transfer.
func TransferTokenInstructions(
	ctx context.Context,
	rpcClient RPCClient,
	commitment rpc.CommitmentType,
	payer solana.PublicKey,
	sender solana.PublicKey,
	receiver solana.PublicKey,
	mint solana.PublicKey,
	decimals uint8,
	amount uint64,
) ([]solana.Instruction, error) {

	var instructions []solana.Instruction

	sendTokenAccount, err := PrepareTokenATA(ctx, rpcClient, commitment, sender, mint, payer, &instructions)
	if err != nil {
		return nil, err
	}

	receiveTokenAccount, err := PrepareTokenATA(ctx, rpcClient, commitment, receiver, mint, payer, &instructions)
	if err != nil {
		return nil, err
	}

	transferIx := token.NewTransferCheckedInstruction(
		amount,
		decimals,
		sendTokenAccount,
		mint,
		receiveTokenAccount,
		sender,
		[]solana.PublicKey{},
	).Build()

	return MergeInstructions(append(instructions, transferIx)), nil
}

// TransferSOLInstructions moves lamports between two system accounts.
func TransferSOLInstructions(from, to solana.PublicKey, lamports uint64) []solana.Instruction {
	return []solana.Instruction{
		system.NewTransferInstruction(lamports, from, to).Build(),
	}
}
