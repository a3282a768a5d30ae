package public

import "github.com/ardanlabs/blockledger/foundation/blockchain/database"

type lastBlock struct {
	LastBlock database.Block `json:"last-block"`
}

type chain struct {
	Chain  []database.Block `json:"chain"`
	Length int              `json:"length"`
}

type validity struct {
	Validity bool `json:"validity"`
}

type message struct {
	Message string `json:"message"`
}

// =============================================================================

type mineRequest struct {
	Proof *uint64 `json:"proof"`
	ID    string  `json:"id"`
}

type forged struct {
	Message      string                 `json:"message"`
	Index        uint64                 `json:"index"`
	Transactions []database.Transaction `json:"transactions"`
	Proof        uint64                 `json:"proof"`
	PreviousHash string                 `json:"previous_hash"`
}

// =============================================================================

// NewTransaction is what a client submits to queue a transaction. Pointers
// let validation tell a missing amount from a zero amount.
type NewTransaction struct {
	Sender    string   `json:"sender" validate:"required"`
	Recipient string   `json:"recipient" validate:"required"`
	Amount    *float64 `json:"amount" validate:"required"`
}

func toTransaction(nt NewTransaction) database.Transaction {
	return database.Transaction{
		Amount:    *nt.Amount,
		Recipient: nt.Recipient,
		Sender:    nt.Sender,
	}
}
