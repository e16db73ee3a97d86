// Package request builds the HTTP requests sent to the sequencer gateway.
//
// Building a request never touches the network and is deterministic: the same
// arguments always produce byte-identical URLs and bodies.
package request

import "net/http"

// Endpoint describes one gateway operation.
// Endpoints are defined once below and shared read-only.
type Endpoint struct {
	// Name is the low-cardinality label used in logs, metrics and traces.
	Name string
	// Method is the HTTP method of the operation.
	Method string
	// Path is relative to the gateway base URL.
	Path string
	// HasBody is true for operations that send a JSON body.
	HasBody bool
}

const (
	feederGatewayPrefix = "feeder_gateway/"
	gatewayPrefix       = "gateway/"
)

var (
	EndpointGetBlock = Endpoint{
		Name:   "get_block",
		Method: http.MethodGet,
		Path:   feederGatewayPrefix + "get_block",
	}
	EndpointGetStateUpdate = Endpoint{
		Name:   "get_state_update",
		Method: http.MethodGet,
		Path:   feederGatewayPrefix + "get_state_update",
	}
	EndpointGetClassByHash = Endpoint{
		Name:   "get_class_by_hash",
		Method: http.MethodGet,
		Path:   feederGatewayPrefix + "get_class_by_hash",
	}
	EndpointGetCompiledClassByHash = Endpoint{
		Name:   "get_compiled_class_by_class_hash",
		Method: http.MethodGet,
		Path:   feederGatewayPrefix + "get_compiled_class_by_class_hash",
	}
	EndpointGetContractAddresses = Endpoint{
		Name:   "get_contract_addresses",
		Method: http.MethodGet,
		Path:   feederGatewayPrefix + "get_contract_addresses",
	}
	EndpointGetTransaction = Endpoint{
		Name:   "get_transaction",
		Method: http.MethodGet,
		Path:   feederGatewayPrefix + "get_transaction",
	}
	EndpointGetTransactionStatus = Endpoint{
		Name:   "get_transaction_status",
		Method: http.MethodGet,
		Path:   feederGatewayPrefix + "get_transaction_status",
	}
	EndpointGetSignature = Endpoint{
		Name:   "get_signature",
		Method: http.MethodGet,
		Path:   feederGatewayPrefix + "get_signature",
	}
	EndpointGetPublicKey = Endpoint{
		Name:   "get_public_key",
		Method: http.MethodGet,
		Path:   feederGatewayPrefix + "get_public_key",
	}
	EndpointAddTransaction = Endpoint{
		Name:    "add_transaction",
		Method:  http.MethodPost,
		Path:    gatewayPrefix + "add_transaction",
		HasBody: true,
	}
)

// Endpoints lists every supported operation.
var Endpoints = []Endpoint{
	EndpointGetBlock,
	EndpointGetStateUpdate,
	EndpointGetClassByHash,
	EndpointGetCompiledClassByHash,
	EndpointGetContractAddresses,
	EndpointGetTransaction,
	EndpointGetTransactionStatus,
	EndpointGetSignature,
	EndpointGetPublicKey,
	EndpointAddTransaction,
}
