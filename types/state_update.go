package types

import (
	"fmt"

	"github.com/NethermindEth/juno/core/felt"
)

type StorageDiff struct {
	Key   *felt.Felt `json:"key"`
	Value *felt.Felt `json:"value"`
}

type DeployedContract struct {
	Address   *felt.Felt `json:"address"`
	ClassHash *felt.Felt `json:"class_hash"`
}

type DeclaredClass struct {
	ClassHash         *felt.Felt `json:"class_hash"`
	CompiledClassHash *felt.Felt `json:"compiled_class_hash"`
}

type ReplacedClass struct {
	Address   *felt.Felt `json:"address"`
	ClassHash *felt.Felt `json:"class_hash"`
}

// StateDiff maps are keyed by the contract address exactly as the gateway spells it.
type StateDiff struct {
	StorageDiffs         map[string][]StorageDiff `json:"storage_diffs"`
	Nonces               map[string]*felt.Felt    `json:"nonces"`
	DeployedContracts    []DeployedContract       `json:"deployed_contracts"`
	OldDeclaredContracts []*felt.Felt             `json:"old_declared_contracts"`
	DeclaredClasses      []DeclaredClass          `json:"declared_classes"`
	ReplacedClasses      []ReplacedClass          `json:"replaced_classes"`
}

func (d *StateDiff) Validate() error {
	for addr, diffs := range d.StorageDiffs {
		for i, diff := range diffs {
			if diff.Key == nil || diff.Value == nil {
				return missingField(fmt.Sprintf("storage_diffs[%s][%d]", addr, i))
			}
		}
	}
	for addr, nonce := range d.Nonces {
		if nonce == nil {
			return missingField(fmt.Sprintf("nonces[%s]", addr))
		}
	}
	for i, c := range d.DeployedContracts {
		if c.Address == nil || c.ClassHash == nil {
			return missingField(fmt.Sprintf("deployed_contracts[%d]", i))
		}
	}
	for i, c := range d.DeclaredClasses {
		if c.ClassHash == nil || c.CompiledClassHash == nil {
			return missingField(fmt.Sprintf("declared_classes[%d]", i))
		}
	}
	for i, c := range d.ReplacedClasses {
		if c.Address == nil || c.ClassHash == nil {
			return missingField(fmt.Sprintf("replaced_classes[%d]", i))
		}
	}
	return requireFelts("old_declared_contracts", d.OldDeclaredContracts)
}

// StateUpdate is returned by get_state_update.
// BlockHash and NewRoot are nil for the pending block.
type StateUpdate struct {
	BlockHash *felt.Felt `json:"block_hash,omitempty"`
	NewRoot   *felt.Felt `json:"new_root,omitempty"`
	OldRoot   *felt.Felt `json:"old_root"`
	StateDiff *StateDiff `json:"state_diff"`
}

// IsPending returns true if the update belongs to the pending block.
func (u *StateUpdate) IsPending() bool {
	return u.BlockHash == nil
}

func (u *StateUpdate) Validate() error {
	if u.OldRoot == nil {
		return missingField("old_root")
	}
	if u.StateDiff == nil {
		return missingField("state_diff")
	}
	if (u.BlockHash == nil) != (u.NewRoot == nil) {
		return fmt.Errorf("%w: block_hash and new_root must both be set or both be absent", ErrInvalidField)
	}
	return u.StateDiff.Validate()
}

// StateUpdateWithBlock is returned by get_state_update when includeBlock=true.
type StateUpdateWithBlock struct {
	Block       *Block       `json:"block"`
	StateUpdate *StateUpdate `json:"state_update"`
}

func (s *StateUpdateWithBlock) Validate() error {
	if s.Block == nil {
		return missingField("block")
	}
	if s.StateUpdate == nil {
		return missingField("state_update")
	}
	if err := s.Block.Validate(); err != nil {
		return fmt.Errorf("block: %w", err)
	}
	if err := s.StateUpdate.Validate(); err != nil {
		return fmt.Errorf("state_update: %w", err)
	}
	return nil
}
