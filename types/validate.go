// Package types holds the payload shapes returned and accepted by the sequencer gateway.
//
// Every value that represents a field element is decoded into a *felt.Felt so that
// numbers well beyond the 64-bit range survive decoding and re-encoding exactly.
// Types that can be decoded from a gateway response implement Validator: the response
// decoder refuses any payload that is missing a required field instead of handing out
// a partially populated value.
package types

import (
	"errors"
	"fmt"

	"github.com/NethermindEth/juno/core/felt"
)

var (
	// ErrMissingField is returned by Validate when a required field is absent from the payload.
	ErrMissingField = errors.New("missing required field")

	// ErrInvalidField is returned by Validate when a field is present but holds an unexpected value.
	ErrInvalidField = errors.New("invalid field value")
)

// Validator is implemented by every payload that has required fields.
type Validator interface {
	Validate() error
}

func missingField(name string) error {
	return fmt.Errorf("%w: %s", ErrMissingField, name)
}

func invalidField(name string, value any) error {
	return fmt.Errorf("%w: %s=%v", ErrInvalidField, name, value)
}

// requireFelts returns an error naming the first nil element.
func requireFelts(name string, felts []*felt.Felt) error {
	for i, f := range felts {
		if f == nil {
			return missingField(fmt.Sprintf("%s[%d]", name, i))
		}
	}
	return nil
}
