package types

import (
	"github.com/NethermindEth/juno/core/felt"
)

type Event struct {
	FromAddress *felt.Felt   `json:"from_address"`
	Keys        []*felt.Felt `json:"keys"`
	Data        []*felt.Felt `json:"data"`
}

// L2ToL1Message is sent from a contract to an L1 (Ethereum) address.
type L2ToL1Message struct {
	FromAddress *felt.Felt   `json:"from_address"`
	ToAddress   string       `json:"to_address"`
	Payload     []*felt.Felt `json:"payload"`
}

// L1ToL2Message is the L1 message consumed by an L1_HANDLER transaction.
type L1ToL2Message struct {
	FromAddress string       `json:"from_address"`
	ToAddress   *felt.Felt   `json:"to_address"`
	Selector    *felt.Felt   `json:"selector"`
	Payload     []*felt.Felt `json:"payload"`
	Nonce       *felt.Felt   `json:"nonce,omitempty"`
}

type GasVector struct {
	L1Gas     uint64 `json:"l1_gas"`
	L1DataGas uint64 `json:"l1_data_gas"`
	L2Gas     uint64 `json:"l2_gas,omitempty"`
}

type ExecutionResources struct {
	Steps                  uint64            `json:"n_steps"`
	MemoryHoles            uint64            `json:"n_memory_holes"`
	BuiltinInstanceCounter map[string]uint64 `json:"builtin_instance_counter"`
	DataAvailability       *GasVector        `json:"data_availability,omitempty"`
	TotalGasConsumed       *GasVector        `json:"total_gas_consumed,omitempty"`
}

type TransactionReceipt struct {
	TransactionHash       *felt.Felt          `json:"transaction_hash"`
	TransactionIndex      *uint64             `json:"transaction_index"`
	ActualFee             *felt.Felt          `json:"actual_fee,omitempty"`
	Events                []Event             `json:"events"`
	L2ToL1Messages        []L2ToL1Message     `json:"l2_to_l1_messages"`
	L1ToL2ConsumedMessage *L1ToL2Message      `json:"l1_to_l2_consumed_message,omitempty"`
	ExecutionResources    *ExecutionResources `json:"execution_resources,omitempty"`
	ExecutionStatus       ExecutionStatus     `json:"execution_status,omitempty"`
	RevertError           string              `json:"revert_error,omitempty"`
}

func (r *TransactionReceipt) Validate() error {
	if r.TransactionHash == nil {
		return missingField("transaction_hash")
	}
	if r.TransactionIndex == nil {
		return missingField("transaction_index")
	}
	for i := range r.Events {
		if r.Events[i].FromAddress == nil {
			return missingField("events.from_address")
		}
		if err := requireFelts("events.keys", r.Events[i].Keys); err != nil {
			return err
		}
		if err := requireFelts("events.data", r.Events[i].Data); err != nil {
			return err
		}
	}
	return nil
}
