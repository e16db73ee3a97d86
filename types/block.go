package types

import (
	"fmt"

	"github.com/NethermindEth/juno/core/felt"
)

type BlockStatus string

const (
	BlockStatusPending      BlockStatus = "PENDING"
	BlockStatusAcceptedOnL2 BlockStatus = "ACCEPTED_ON_L2"
	BlockStatusAcceptedOnL1 BlockStatus = "ACCEPTED_ON_L1"
	BlockStatusAborted      BlockStatus = "ABORTED"
	BlockStatusReverted     BlockStatus = "REVERTED"
)

// GasPrice is quoted in both wei (ETH) and fri (STRK).
type GasPrice struct {
	PriceInWei *felt.Felt `json:"price_in_wei"`
	PriceInFri *felt.Felt `json:"price_in_fri"`
}

// Block is returned by get_block.
//
// A pending block has no hash, number or state root yet: those fields are nil
// only when Status is PENDING.
type Block struct {
	Hash             *felt.Felt  `json:"block_hash,omitempty"`
	Number           *uint64     `json:"block_number,omitempty"`
	ParentHash       *felt.Felt  `json:"parent_block_hash"`
	StateRoot        *felt.Felt  `json:"state_root,omitempty"`
	Status           BlockStatus `json:"status"`
	Timestamp        uint64      `json:"timestamp"`
	SequencerAddress *felt.Felt  `json:"sequencer_address,omitempty"`
	StarknetVersion  string      `json:"starknet_version,omitempty"`

	// GasPrice is only reported by blocks older than the wei/fri split.
	GasPrice       *felt.Felt `json:"gas_price,omitempty"`
	L1GasPrice     *GasPrice  `json:"l1_gas_price,omitempty"`
	L1DataGasPrice *GasPrice  `json:"l1_data_gas_price,omitempty"`
	L2GasPrice     *GasPrice  `json:"l2_gas_price,omitempty"`
	L1DAMode       string     `json:"l1_da_mode,omitempty"`

	TransactionCommitment *felt.Felt `json:"transaction_commitment,omitempty"`
	EventCommitment       *felt.Felt `json:"event_commitment,omitempty"`
	ReceiptCommitment     *felt.Felt `json:"receipt_commitment,omitempty"`
	StateDiffCommitment   *felt.Felt `json:"state_diff_commitment,omitempty"`
	StateDiffLength       *uint64    `json:"state_diff_length,omitempty"`

	Transactions []Transaction        `json:"transactions"`
	Receipts     []TransactionReceipt `json:"transaction_receipts"`
}

// IsPending returns true if the block has not been closed by the sequencer yet.
func (b *Block) IsPending() bool {
	return b.Status == BlockStatusPending
}

func (b *Block) Validate() error {
	if b.Status == "" {
		return missingField("status")
	}
	if b.ParentHash == nil {
		return missingField("parent_block_hash")
	}
	if b.Timestamp == 0 {
		return missingField("timestamp")
	}
	if b.Transactions == nil {
		return missingField("transactions")
	}
	if b.Receipts == nil {
		return missingField("transaction_receipts")
	}

	if !b.IsPending() {
		switch {
		case b.Hash == nil:
			return missingField("block_hash")
		case b.Number == nil:
			return missingField("block_number")
		case b.StateRoot == nil:
			return missingField("state_root")
		}
	}

	if len(b.Transactions) != len(b.Receipts) {
		return fmt.Errorf("%w: %d transactions but %d receipts", ErrInvalidField, len(b.Transactions), len(b.Receipts))
	}
	for i := range b.Transactions {
		if err := b.Transactions[i].Validate(); err != nil {
			return fmt.Errorf("transactions[%d]: %w", i, err)
		}
	}
	for i := range b.Receipts {
		if err := b.Receipts[i].Validate(); err != nil {
			return fmt.Errorf("transaction_receipts[%d]: %w", i, err)
		}
	}
	return nil
}

// BlockSignature is the sequencer's signature over a block, returned by get_signature.
type BlockSignature struct {
	BlockHash *felt.Felt   `json:"block_hash"`
	Signature []*felt.Felt `json:"signature"`
}

func (s *BlockSignature) Validate() error {
	if s.BlockHash == nil {
		return missingField("block_hash")
	}
	if len(s.Signature) == 0 {
		return missingField("signature")
	}
	return requireFelts("signature", s.Signature)
}
