// Package fixtures exposes canonical gateway payloads shared by the package tests.
package fixtures

import (
	"embed"
	"fmt"
)

//go:embed testdata/*.json
var testdata embed.FS

// Names of the embedded payloads.
const (
	Block100               = "block_100.json"
	BlockPending           = "block_pending.json"
	StateUpdate100         = "state_update_100.json"
	Transaction            = "transaction.json"
	TransactionStatus      = "transaction_status.json"
	ContractAddresses      = "contract_addresses.json"
	Signature              = "signature.json"
	ClassSierra            = "class_sierra.json"
	AddTransactionReceived = "add_transaction_received.json"
	ErrorBlockNotFound     = "error_block_not_found.json"
	ErrorInvalidNonce      = "error_invalid_nonce.json"
)

// Load returns the named payload, panicking if it does not exist.
func Load(name string) []byte {
	bz, err := testdata.ReadFile("testdata/" + name)
	if err != nil {
		panic(fmt.Sprintf("fixtures: %s: %v", name, err))
	}
	return bz
}
