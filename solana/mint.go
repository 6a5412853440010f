package solana

import (
	"github.com/gagliardetto/solana-go"
	associatedtokenaccount "github.com/gagliardetto/solana-go/programs/associated-token-account"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/programs/token"
)

// MintParams describes a new mint and its first issuance.
type MintParams struct {
	Payer     solana.PublicKey
	Mint      solana.PublicKey
	Recipient solana.PublicKey
	Decimals  uint8
	// Base units minted to the recipient's associated token account.
	Amount uint64
	// Lamports funding the mint account, rent-exempt for token.MINT_SIZE.
	RentLamports uint64
	// Revoke the mint authority after the first issuance.
	FixedSupply bool
}

// CreateMintInstructions creates and initializes the mint with payer as mint
// authority and no freeze authority, creates the recipient's associated token
// account and mints Amount into it. The mint account must sign.
func CreateMintInstructions(p MintParams) ([]solana.Instruction, solana.PublicKey, error) {
	recipientATA, _, err := solana.FindAssociatedTokenAddress(p.Recipient, p.Mint)
	if err != nil {
		return nil, solana.PublicKey{}, err
	}

	instructions := []solana.Instruction{
		system.NewCreateAccountInstruction(
			p.RentLamports,
			token.MINT_SIZE,
			solana.TokenProgramID,
			p.Payer,
			p.Mint,
		).Build(),
		token.NewInitializeMint2InstructionBuilder().
			SetDecimals(p.Decimals).
			SetMintAuthority(p.Payer).
			SetMintAccount(p.Mint).
			Build(),
		associatedtokenaccount.NewCreateInstruction(
			p.Payer, p.Recipient, p.Mint,
		).Build(),
		token.NewMintToInstruction(
			p.Amount,
			p.Mint,
			recipientATA,
			p.Payer,
			[]solana.PublicKey{},
		).Build(),
	}

	if p.FixedSupply {
		instructions = append(instructions, RevokeMintAuthorityInstruction(p.Mint, p.Payer))
	}
	return instructions, recipientATA, nil
}

// RevokeMintAuthorityInstruction clears the mint authority; no further supply can be issued.
func RevokeMintAuthorityInstruction(mint, authority solana.PublicKey) solana.Instruction {
	return token.NewSetAuthorityInstructionBuilder().
		SetAuthorityType(token.AuthorityMintTokens).
		SetSubjectAccount(mint).
		SetAuthorityAccount(authority).
		Build()
}
