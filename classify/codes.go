package classify

import "github.com/buildwithgrove/sequencer-client/types"

// retrySafeCodes are gateway codes that describe the gateway's load, not the request.
var retrySafeCodes = map[types.GatewayErrorCode]struct{}{
	types.ErrCodeTransactionLimitExceeded: {},
}

// terminalCodes are gateway codes that reject the request itself: sending it
// again unchanged yields the same answer.
var terminalCodes = map[types.GatewayErrorCode]struct{}{
	types.ErrCodeBlockNotFound:                 {},
	types.ErrCodeClassAlreadyDeclared:          {},
	types.ErrCodeCompilationFailed:             {},
	types.ErrCodeContractBytecodeSizeTooLarge:  {},
	types.ErrCodeContractClassObjectSizeTooBig: {},
	types.ErrCodeDuplicatedTransaction:         {},
	types.ErrCodeEntryPointNotFound:            {},
	types.ErrCodeFeeTransferFailure:            {},
	types.ErrCodeInsufficientAccountBalance:    {},
	types.ErrCodeInsufficientMaxFee:            {},
	types.ErrCodeInvalidBlockNumber:            {},
	types.ErrCodeInvalidCompiledClassHash:      {},
	types.ErrCodeInvalidContractClass:          {},
	types.ErrCodeInvalidContractClassVersion:   {},
	types.ErrCodeInvalidProgram:                {},
	types.ErrCodeInvalidTransactionHash:        {},
	types.ErrCodeInvalidTransactionNonce:       {},
	types.ErrCodeInvalidTransactionVersion:     {},
	types.ErrCodeMalformedRequest:              {},
	types.ErrCodeOutOfRangeBlockHash:           {},
	types.ErrCodeOutOfRangeClassHash:           {},
	types.ErrCodeOutOfRangeTransactionHash:     {},
	types.ErrCodeSchemaValidationError:         {},
	types.ErrCodeTransactionFailed:             {},
	types.ErrCodeUndeclaredClass:               {},
	types.ErrCodeUninitializedContract:         {},
	types.ErrCodeUnsupportedSelectorForFee:     {},
	types.ErrCodeValidateFailure:               {},
}

// IsRetrySafe reports whether the gateway code signals a temporary condition.
func IsRetrySafe(code types.GatewayErrorCode) bool {
	_, ok := retrySafeCodes[code]
	return ok
}

// IsTerminal reports whether the gateway code rejects the request itself.
func IsTerminal(code types.GatewayErrorCode) bool {
	_, ok := terminalCodes[code]
	return ok
}
