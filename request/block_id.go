package request

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/NethermindEth/juno/core/felt"
)

type blockIDKind int

const (
	blockIDUnset blockIDKind = iota
	blockIDNumber
	blockIDHash
	blockIDLatest
	blockIDPending
)

// Tags accepted by the gateway in place of a block number.
const (
	tagLatest  = "latest"
	tagPending = "pending"
)

// BlockID identifies a block by number, hash or tag.
// The zero value identifies nothing and is rejected by the Builder.
type BlockID struct {
	kind   blockIDKind
	number uint64
	hash   *felt.Felt
}

func BlockNumber(number uint64) BlockID {
	return BlockID{kind: blockIDNumber, number: number}
}

func BlockHash(hash *felt.Felt) BlockID {
	return BlockID{kind: blockIDHash, hash: hash}
}

// Latest identifies the most recent closed block.
func Latest() BlockID {
	return BlockID{kind: blockIDLatest}
}

// Pending identifies the block the sequencer is currently building.
func Pending() BlockID {
	return BlockID{kind: blockIDPending}
}

// ParseBlockID parses "latest", "pending", a decimal block number or a 0x-prefixed block hash.
func ParseBlockID(s string) (BlockID, error) {
	s = strings.TrimSpace(s)
	switch {
	case s == tagLatest:
		return Latest(), nil
	case s == tagPending:
		return Pending(), nil
	case strings.HasPrefix(s, "0x"):
		hash, err := new(felt.Felt).SetString(s)
		if err != nil {
			return BlockID{}, fmt.Errorf("%w: block hash %q: %v", ErrInvalidArgument, s, err)
		}
		return BlockHash(hash), nil
	default:
		number, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return BlockID{}, fmt.Errorf("%w: block id %q: expected a number, a 0x hash, %q or %q", ErrInvalidArgument, s, tagLatest, tagPending)
		}
		return BlockNumber(number), nil
	}
}

func (b BlockID) IsPending() bool {
	return b.kind == blockIDPending
}

func (b BlockID) String() string {
	switch b.kind {
	case blockIDNumber:
		return strconv.FormatUint(b.number, 10)
	case blockIDHash:
		if b.hash == nil {
			return "<nil hash>"
		}
		return b.hash.String()
	case blockIDLatest:
		return tagLatest
	case blockIDPending:
		return tagPending
	default:
		return "<unset>"
	}
}

// validate rejects identifiers that cannot be encoded into a query string.
func (b BlockID) validate() error {
	switch b.kind {
	case blockIDNumber, blockIDLatest, blockIDPending:
		return nil
	case blockIDHash:
		return validateHash("block hash", b.hash)
	default:
		return fmt.Errorf("%w: block id is not set", ErrInvalidArgument)
	}
}

// addTo sets the blockNumber or blockHash query parameter.
func (b BlockID) addTo(query url.Values) {
	switch b.kind {
	case blockIDNumber:
		query.Set("blockNumber", strconv.FormatUint(b.number, 10))
	case blockIDHash:
		query.Set("blockHash", b.hash.String())
	case blockIDLatest:
		query.Set("blockNumber", tagLatest)
	case blockIDPending:
		query.Set("blockNumber", tagPending)
	}
}

func validateHash(name string, hash *felt.Felt) error {
	if hash == nil {
		return fmt.Errorf("%w: %s is nil", ErrInvalidArgument, name)
	}
	if hash.IsZero() {
		return fmt.Errorf("%w: %s is zero", ErrInvalidArgument, name)
	}
	return nil
}
