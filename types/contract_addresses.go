package types

import (
	"encoding/json"
	"fmt"

	"github.com/NethermindEth/juno/core/felt"
)

// ContractAddresses holds the L1 addresses of the core contracts, returned by get_contract_addresses.
type ContractAddresses struct {
	Starknet             *felt.Felt `json:"Starknet"`
	GpsStatementVerifier *felt.Felt `json:"GpsStatementVerifier"`
}

func (c *ContractAddresses) Validate() error {
	if c.Starknet == nil {
		return missingField("Starknet")
	}
	if c.GpsStatementVerifier == nil {
		return missingField("GpsStatementVerifier")
	}
	return nil
}

// PublicKey is the sequencer's public key, returned by get_public_key as a bare JSON string.
type PublicKey struct {
	Key *felt.Felt
}

func (p *PublicKey) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("public key is not a JSON string: %w", err)
	}
	key, err := new(felt.Felt).SetString(raw)
	if err != nil {
		return fmt.Errorf("public key %q: %w", raw, err)
	}
	p.Key = key
	return nil
}

func (p PublicKey) MarshalJSON() ([]byte, error) {
	if p.Key == nil {
		return []byte("null"), nil
	}
	return json.Marshal(p.Key.String())
}

func (p *PublicKey) Validate() error {
	if p.Key == nil {
		return missingField("public_key")
	}
	return nil
}
