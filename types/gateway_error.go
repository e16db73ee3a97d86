package types

import (
	"fmt"
	"strings"
)

// GatewayErrorCode is a business error code reported by the gateway, without its namespace prefix.
// e.g. "StarknetErrorCode.BLOCK_NOT_FOUND" is normalized to "BLOCK_NOT_FOUND".
type GatewayErrorCode string

// Codes reported by the gateway.
// The list is not exhaustive: unknown codes are preserved verbatim.
const (
	ErrCodeBlockNotFound                 GatewayErrorCode = "BLOCK_NOT_FOUND"
	ErrCodeClassAlreadyDeclared          GatewayErrorCode = "CLASS_ALREADY_DECLARED"
	ErrCodeCompilationFailed             GatewayErrorCode = "COMPILATION_FAILED"
	ErrCodeContractBytecodeSizeTooLarge  GatewayErrorCode = "CONTRACT_BYTECODE_SIZE_TOO_LARGE"
	ErrCodeContractClassObjectSizeTooBig GatewayErrorCode = "CONTRACT_CLASS_OBJECT_SIZE_TOO_LARGE"
	ErrCodeDuplicatedTransaction         GatewayErrorCode = "DUPLICATED_TRANSACTION"
	ErrCodeEntryPointNotFound            GatewayErrorCode = "ENTRY_POINT_NOT_FOUND_IN_CONTRACT"
	ErrCodeFeeTransferFailure            GatewayErrorCode = "FEE_TRANSFER_FAILURE"
	ErrCodeInsufficientAccountBalance    GatewayErrorCode = "INSUFFICIENT_ACCOUNT_BALANCE"
	ErrCodeInsufficientMaxFee            GatewayErrorCode = "INSUFFICIENT_MAX_FEE"
	ErrCodeInvalidBlockNumber            GatewayErrorCode = "INVALID_BLOCK_NUMBER"
	ErrCodeInvalidCompiledClassHash      GatewayErrorCode = "INVALID_COMPILED_CLASS_HASH"
	ErrCodeInvalidContractClass          GatewayErrorCode = "INVALID_CONTRACT_CLASS"
	ErrCodeInvalidContractClassVersion   GatewayErrorCode = "INVALID_CONTRACT_CLASS_VERSION"
	ErrCodeInvalidProgram                GatewayErrorCode = "INVALID_PROGRAM"
	ErrCodeInvalidTransactionHash        GatewayErrorCode = "INVALID_TRANSACTION_HASH"
	ErrCodeInvalidTransactionNonce       GatewayErrorCode = "INVALID_TRANSACTION_NONCE"
	ErrCodeInvalidTransactionVersion     GatewayErrorCode = "INVALID_TRANSACTION_VERSION"
	ErrCodeMalformedRequest              GatewayErrorCode = "MALFORMED_REQUEST"
	ErrCodeOutOfRangeBlockHash           GatewayErrorCode = "OUT_OF_RANGE_BLOCK_HASH"
	ErrCodeOutOfRangeClassHash           GatewayErrorCode = "OUT_OF_RANGE_CLASS_HASH"
	ErrCodeOutOfRangeTransactionHash     GatewayErrorCode = "OUT_OF_RANGE_TRANSACTION_HASH"
	ErrCodeSchemaValidationError         GatewayErrorCode = "SCHEMA_VALIDATION_ERROR"
	ErrCodeTransactionFailed             GatewayErrorCode = "TRANSACTION_FAILED"
	ErrCodeTransactionLimitExceeded      GatewayErrorCode = "TRANSACTION_LIMIT_EXCEEDED"
	ErrCodeUndeclaredClass               GatewayErrorCode = "UNDECLARED_CLASS"
	ErrCodeUninitializedContract         GatewayErrorCode = "UNINITIALIZED_CONTRACT"
	ErrCodeUnsupportedSelectorForFee     GatewayErrorCode = "UNSUPPORTED_SELECTOR_FOR_FEE"
	ErrCodeValidateFailure               GatewayErrorCode = "VALIDATE_FAILURE"
)

// Namespaces the gateway prefixes its codes with.
var gatewayErrorCodePrefixes = []string{
	"StarknetErrorCode.",
	"KnownStarknetErrorCode.",
	"StarkErrorCode.",
}

// NormalizeErrorCode strips the namespace prefix from a raw gateway error code.
func NormalizeErrorCode(raw string) GatewayErrorCode {
	code := strings.TrimSpace(raw)
	for _, prefix := range gatewayErrorCodePrefixes {
		if strings.HasPrefix(code, prefix) {
			return GatewayErrorCode(strings.TrimPrefix(code, prefix))
		}
	}
	return GatewayErrorCode(code)
}

// GatewayError is the error body the gateway returns when it rejects a request, e.g.
//
//	{"code": "StarknetErrorCode.BLOCK_NOT_FOUND", "message": "Block number 9999999 was not found."}
type GatewayError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Validate requires a code: a JSON object without one is not a gateway error body.
func (e GatewayError) Validate() error {
	if strings.TrimSpace(e.Code) == "" {
		return missingField("code")
	}
	return nil
}

// NormalizedCode returns the error code without its namespace prefix.
func (e GatewayError) NormalizedCode() GatewayErrorCode {
	return NormalizeErrorCode(e.Code)
}

func (e GatewayError) Error() string {
	return fmt.Sprintf("gateway error %s: %s", e.Code, e.Message)
}
