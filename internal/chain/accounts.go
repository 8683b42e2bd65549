package chain

import (
	"github.com/gagliardetto/solana-go"

	"notifyScope/internal/model"
)

// ExtraInfo is the decoded on-chain state behind a template's extra field.
// The set of implementations is closed: one per supported lookup kind.
type ExtraInfo interface {
	Kind() model.LookupKind
}

// DaoAccount is the borsh layout of an InterDAO dao account.
type DaoAccount struct {
	Master    solana.PublicKey
	Mint      solana.PublicKey
	Authority solana.PublicKey
	Regime    uint8
	Supply    uint64
	Nonce     uint8
}

func (DaoAccount) Kind() model.LookupKind { return model.LookupDao }

// ProposalAccount is the borsh layout of an InterDAO proposal account.
type ProposalAccount struct {
	Dao          solana.PublicKey
	Creator      solana.PublicKey
	StartDate    int64
	EndDate      int64
	VotesFor     uint64
	VotesAgainst uint64
	Executed     bool
}

func (ProposalAccount) Kind() model.LookupKind { return model.LookupProposal }
