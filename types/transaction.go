package types

import (
	"github.com/NethermindEth/juno/core/felt"
)

type TransactionType string

const (
	TransactionTypeInvoke        TransactionType = "INVOKE_FUNCTION"
	TransactionTypeDeclare       TransactionType = "DECLARE"
	TransactionTypeDeploy        TransactionType = "DEPLOY"
	TransactionTypeDeployAccount TransactionType = "DEPLOY_ACCOUNT"
	TransactionTypeL1Handler     TransactionType = "L1_HANDLER"
)

// Resource names used as keys of the resource_bounds object.
const (
	ResourceL1Gas     = "L1_GAS"
	ResourceL2Gas     = "L2_GAS"
	ResourceL1DataGas = "L1_DATA_GAS"
)

type ResourceBounds struct {
	MaxAmount       *felt.Felt `json:"max_amount"`
	MaxPricePerUnit *felt.Felt `json:"max_price_per_unit"`
}

// Transaction is the union of every transaction variant the feeder gateway returns.
// Fields that do not apply to a variant are left nil. Types added by later
// gateway versions decode as-is; only the fields every variant carries are checked.
type Transaction struct {
	Hash    *felt.Felt      `json:"transaction_hash"`
	Type    TransactionType `json:"type"`
	Version *felt.Felt      `json:"version,omitempty"`

	ContractAddress     *felt.Felt `json:"contract_address,omitempty"`
	EntryPointSelector  *felt.Felt `json:"entry_point_selector,omitempty"`
	SenderAddress       *felt.Felt `json:"sender_address,omitempty"`
	Nonce               *felt.Felt `json:"nonce,omitempty"`
	MaxFee              *felt.Felt `json:"max_fee,omitempty"`
	ClassHash           *felt.Felt `json:"class_hash,omitempty"`
	CompiledClassHash   *felt.Felt `json:"compiled_class_hash,omitempty"`
	ContractAddressSalt *felt.Felt `json:"contract_address_salt,omitempty"`
	Tip                 *felt.Felt `json:"tip,omitempty"`

	CallData              []*felt.Felt `json:"calldata"`
	Signature             []*felt.Felt `json:"signature"`
	ConstructorCallData   []*felt.Felt `json:"constructor_calldata"`
	PaymasterData         []*felt.Felt `json:"paymaster_data"`
	AccountDeploymentData []*felt.Felt `json:"account_deployment_data"`

	ResourceBounds map[string]ResourceBounds `json:"resource_bounds"`
	NonceDAMode    string                    `json:"nonce_data_availability_mode,omitempty"`
	FeeDAMode      string                    `json:"fee_data_availability_mode,omitempty"`
}

func (t *Transaction) Validate() error {
	if t.Hash == nil {
		return missingField("transaction_hash")
	}
	if t.Type == "" {
		return missingField("type")
	}
	for _, list := range []struct {
		name  string
		felts []*felt.Felt
	}{
		{"calldata", t.CallData},
		{"signature", t.Signature},
		{"constructor_calldata", t.ConstructorCallData},
	} {
		if err := requireFelts(list.name, list.felts); err != nil {
			return err
		}
	}
	return nil
}

type TransactionFailureReason struct {
	Code         string `json:"code"`
	ErrorMessage string `json:"error_message,omitempty"`
}

// TransactionStatusValue is the legacy combined status of a transaction.
type TransactionStatusValue string

const (
	TxStatusNotReceived  TransactionStatusValue = "NOT_RECEIVED"
	TxStatusReceived     TransactionStatusValue = "RECEIVED"
	TxStatusPending      TransactionStatusValue = "PENDING"
	TxStatusRejected     TransactionStatusValue = "REJECTED"
	TxStatusReverted     TransactionStatusValue = "REVERTED"
	TxStatusAcceptedOnL2 TransactionStatusValue = "ACCEPTED_ON_L2"
	TxStatusAcceptedOnL1 TransactionStatusValue = "ACCEPTED_ON_L1"
	TxStatusAborted      TransactionStatusValue = "ABORTED"
)

type FinalityStatus string

const (
	FinalityNotReceived  FinalityStatus = "NOT_RECEIVED"
	FinalityReceived     FinalityStatus = "RECEIVED"
	FinalityAcceptedOnL2 FinalityStatus = "ACCEPTED_ON_L2"
	FinalityAcceptedOnL1 FinalityStatus = "ACCEPTED_ON_L1"
)

type ExecutionStatus string

const (
	ExecutionSucceeded ExecutionStatus = "SUCCEEDED"
	ExecutionReverted  ExecutionStatus = "REVERTED"
	ExecutionRejected  ExecutionStatus = "REJECTED"
)

// TransactionWithStatus is returned by get_transaction.
// Transaction is nil when the gateway has not received the transaction.
type TransactionWithStatus struct {
	Status           TransactionStatusValue    `json:"status"`
	FinalityStatus   FinalityStatus            `json:"finality_status,omitempty"`
	ExecutionStatus  ExecutionStatus           `json:"execution_status,omitempty"`
	BlockHash        *felt.Felt                `json:"block_hash,omitempty"`
	BlockNumber      *uint64                   `json:"block_number,omitempty"`
	TransactionIndex *uint64                   `json:"transaction_index,omitempty"`
	Transaction      *Transaction              `json:"transaction,omitempty"`
	FailureReason    *TransactionFailureReason `json:"transaction_failure_reason,omitempty"`
}

func (t *TransactionWithStatus) Validate() error {
	if t.Status == "" {
		return missingField("status")
	}
	if t.Status == TxStatusNotReceived {
		return nil
	}
	if t.Transaction == nil {
		return missingField("transaction")
	}
	return t.Transaction.Validate()
}

// TransactionStatus is returned by get_transaction_status.
type TransactionStatus struct {
	TxStatus        TransactionStatusValue    `json:"tx_status"`
	FinalityStatus  FinalityStatus            `json:"finality_status,omitempty"`
	ExecutionStatus ExecutionStatus           `json:"execution_status,omitempty"`
	BlockHash       *felt.Felt                `json:"block_hash,omitempty"`
	FailureReason   *TransactionFailureReason `json:"tx_failure_reason,omitempty"`
	RevertError     string                    `json:"tx_revert_reason,omitempty"`
}

func (t *TransactionStatus) Validate() error {
	if t.TxStatus == "" {
		return missingField("tx_status")
	}
	return nil
}

// IsReceived is false only when the gateway has never seen the transaction.
func (t *TransactionStatus) IsReceived() bool {
	return t.TxStatus != TxStatusNotReceived && t.FinalityStatus != FinalityNotReceived
}
