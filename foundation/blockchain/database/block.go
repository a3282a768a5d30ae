package database

import (
	"crypto/sha256"
	"encoding/json"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// ZeroHash represents a hash code of zeros.
const ZeroHash string = "0x0000000000000000000000000000000000000000000000000000000000000000"

// RewardSender is the sender recorded on the transaction that pays a miner.
const RewardSender = "0"

// =============================================================================

// Transaction represents a transfer of value between two parties. Fields are
// declared in json key order so the encoded form is canonical.
type Transaction struct {
	Amount    float64 `json:"amount"`
	Recipient string  `json:"recipient"`
	Sender    string  `json:"sender"`
}

// NewRewardTx constructs the transaction crediting a miner for a block.
func NewRewardTx(recipient string, amount float64) Transaction {
	return Transaction{
		Amount:    amount,
		Recipient: recipient,
		Sender:    RewardSender,
	}
}

// IsReward reports whether the transaction is a mining reward.
func (tx Transaction) IsReward() bool {
	return tx.Sender == RewardSender
}

// =============================================================================

// Block represents a group of transactions batched together. Fields are
// declared in json key order so the encoded form is canonical. Don't reorder
// them, every node must produce the same bytes for the same block.
type Block struct {
	Index        uint64        `json:"index"`
	PreviousHash string        `json:"previous_hash"`
	Proof        uint64        `json:"proof"`
	Timestamp    float64       `json:"timestamp"`
	Transactions []Transaction `json:"transactions"`
}

// NewBlock constructs the block that follows the previous block, sealing the
// specified transactions with the proof.
func NewBlock(prevBlock Block, proof uint64, trans []Transaction) Block {
	if trans == nil {
		trans = []Transaction{}
	}

	return Block{
		Index:        prevBlock.Index + 1,
		PreviousHash: prevBlock.Hash(),
		Proof:        proof,
		Timestamp:    float64(time.Now().UTC().UnixMicro()) / 1e6,
		Transactions: trans,
	}
}

// Canonical returns the deterministic string form of the block. This is the
// input for both the block hash and the proof of work puzzle of the next block.
func (b Block) Canonical() string {

	// A block with no transactions must encode the same whether it was built
	// locally or decoded off the wire.
	if b.Transactions == nil {
		b.Transactions = []Transaction{}
	}

	data, err := json.Marshal(b)
	if err != nil {
		return ""
	}

	return string(data)
}

// Hash returns the unique hash for the Block.
func (b Block) Hash() string {
	hash := sha256.Sum256([]byte(b.Canonical()))
	return hexutil.Encode(hash[:])
}

// =============================================================================

// Genesis returns the fixed first block of every chain. It is identical on
// every node so hash linkage can be checked from block 2 onward.
func Genesis() Block {
	return Block{
		Index:        1,
		PreviousHash: ZeroHash,
		Proof:        1,
		Timestamp:    1,
		Transactions: []Transaction{},
	}
}
