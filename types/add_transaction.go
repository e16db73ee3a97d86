package types

import (
	"encoding/json"

	"github.com/NethermindEth/juno/core/felt"
)

// TransactionReceivedCode is the code of a successful add_transaction response.
const TransactionReceivedCode = "TRANSACTION_RECEIVED"

// BroadcastedTransaction is the body of an add_transaction request.
type BroadcastedTransaction struct {
	Type    TransactionType `json:"type"`
	Version *felt.Felt      `json:"version"`

	SenderAddress       *felt.Felt `json:"sender_address,omitempty"`
	Nonce               *felt.Felt `json:"nonce,omitempty"`
	MaxFee              *felt.Felt `json:"max_fee,omitempty"`
	Tip                 *felt.Felt `json:"tip,omitempty"`
	ClassHash           *felt.Felt `json:"class_hash,omitempty"`
	CompiledClassHash   *felt.Felt `json:"compiled_class_hash,omitempty"`
	ContractAddressSalt *felt.Felt `json:"contract_address_salt,omitempty"`

	CallData              []*felt.Felt `json:"calldata,omitempty"`
	Signature             []*felt.Felt `json:"signature"`
	ConstructorCallData   []*felt.Felt `json:"constructor_calldata,omitempty"`
	PaymasterData         []*felt.Felt `json:"paymaster_data,omitempty"`
	AccountDeploymentData []*felt.Felt `json:"account_deployment_data,omitempty"`

	ResourceBounds map[string]ResourceBounds `json:"resource_bounds,omitempty"`
	NonceDAMode    string                    `json:"nonce_data_availability_mode,omitempty"`
	FeeDAMode      string                    `json:"fee_data_availability_mode,omitempty"`

	// ContractClass is the (compressed) class definition of a DECLARE transaction.
	ContractClass json.RawMessage `json:"contract_class,omitempty"`
}

// Validate checks the fields each transaction type needs before it is sent.
func (t *BroadcastedTransaction) Validate() error {
	if t.Version == nil {
		return missingField("version")
	}
	if t.Signature == nil {
		return missingField("signature")
	}
	if err := requireFelts("signature", t.Signature); err != nil {
		return err
	}
	if err := requireFelts("calldata", t.CallData); err != nil {
		return err
	}

	switch t.Type {
	case TransactionTypeInvoke:
		if t.SenderAddress == nil {
			return missingField("sender_address")
		}
	case TransactionTypeDeclare:
		if t.SenderAddress == nil {
			return missingField("sender_address")
		}
		if len(t.ContractClass) == 0 {
			return missingField("contract_class")
		}
	case TransactionTypeDeployAccount:
		if t.ClassHash == nil {
			return missingField("class_hash")
		}
		if t.ContractAddressSalt == nil {
			return missingField("contract_address_salt")
		}
	case "":
		return missingField("type")
	default:
		return invalidField("type", t.Type)
	}
	return nil
}

// AddTransactionResponse is the gateway's acknowledgement of a submitted transaction.
type AddTransactionResponse struct {
	Code            string     `json:"code"`
	TransactionHash *felt.Felt `json:"transaction_hash"`
	// Address is set for DEPLOY_ACCOUNT transactions.
	Address *felt.Felt `json:"address,omitempty"`
	// ClassHash is set for DECLARE transactions.
	ClassHash *felt.Felt `json:"class_hash,omitempty"`
}

func (r *AddTransactionResponse) Validate() error {
	if r.Code != TransactionReceivedCode {
		return invalidField("code", r.Code)
	}
	if r.TransactionHash == nil {
		return missingField("transaction_hash")
	}
	return nil
}
