package request

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/NethermindEth/juno/core/felt"

	"github.com/buildwithgrove/sequencer-client/types"
)

// Request is a fully encoded gateway request.
// It is built once per call and reused, unchanged, by every attempt.
type Request struct {
	Endpoint Endpoint
	// URL includes the sorted query string.
	URL string
	// Body is nil for GET requests.
	Body []byte
}

// Builder turns typed arguments into gateway requests.
// A Builder is immutable and safe for concurrent use.
type Builder struct {
	baseURL *url.URL
}

// NewBuilder returns a Builder rooted at the given gateway base URL,
// e.g. "https://alpha-mainnet.starknet.io".
func NewBuilder(baseURL string) (*Builder, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("%w: gateway url %q: %v", ErrInvalidArgument, baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: gateway url %q: scheme must be http or https", ErrInvalidArgument, baseURL)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("%w: gateway url %q: missing host", ErrInvalidArgument, baseURL)
	}
	u.RawQuery = ""
	u.Fragment = ""
	u.Path = strings.TrimSuffix(u.Path, "/")
	u.RawPath = ""
	return &Builder{baseURL: u}, nil
}

// BaseURL returns the normalized gateway base URL.
func (b *Builder) BaseURL() string {
	return b.baseURL.String()
}

func (b *Builder) GetBlock(id BlockID) (Request, error) {
	if err := id.validate(); err != nil {
		return Request{}, err
	}
	query := url.Values{}
	id.addTo(query)
	return b.build(EndpointGetBlock, query, nil), nil
}

func (b *Builder) GetStateUpdate(id BlockID) (Request, error) {
	if err := id.validate(); err != nil {
		return Request{}, err
	}
	query := url.Values{}
	id.addTo(query)
	return b.build(EndpointGetStateUpdate, query, nil), nil
}

// GetStateUpdateWithBlock asks for the state update together with its block.
func (b *Builder) GetStateUpdateWithBlock(id BlockID) (Request, error) {
	if err := id.validate(); err != nil {
		return Request{}, err
	}
	query := url.Values{}
	id.addTo(query)
	query.Set("includeBlock", "true")
	return b.build(EndpointGetStateUpdate, query, nil), nil
}

// GetClassByHash looks the class up against the pending block so that classes
// declared in it are visible.
func (b *Builder) GetClassByHash(classHash *felt.Felt) (Request, error) {
	return b.classRequest(EndpointGetClassByHash, classHash)
}

func (b *Builder) GetCompiledClassByHash(classHash *felt.Felt) (Request, error) {
	return b.classRequest(EndpointGetCompiledClassByHash, classHash)
}

func (b *Builder) classRequest(endpoint Endpoint, classHash *felt.Felt) (Request, error) {
	if err := validateHash("class hash", classHash); err != nil {
		return Request{}, err
	}
	query := url.Values{}
	query.Set("classHash", classHash.String())
	Pending().addTo(query)
	return b.build(endpoint, query, nil), nil
}

func (b *Builder) GetContractAddresses() (Request, error) {
	return b.build(EndpointGetContractAddresses, nil, nil), nil
}

func (b *Builder) GetTransaction(txHash *felt.Felt) (Request, error) {
	return b.transactionRequest(EndpointGetTransaction, txHash)
}

func (b *Builder) GetTransactionStatus(txHash *felt.Felt) (Request, error) {
	return b.transactionRequest(EndpointGetTransactionStatus, txHash)
}

func (b *Builder) transactionRequest(endpoint Endpoint, txHash *felt.Felt) (Request, error) {
	if err := validateHash("transaction hash", txHash); err != nil {
		return Request{}, err
	}
	query := url.Values{}
	query.Set("transactionHash", txHash.String())
	return b.build(endpoint, query, nil), nil
}

// GetSignature builds a signature request. Pending blocks are not signed.
func (b *Builder) GetSignature(id BlockID) (Request, error) {
	if err := id.validate(); err != nil {
		return Request{}, err
	}
	if id.IsPending() {
		return Request{}, fmt.Errorf("%w: pending blocks have no signature", ErrInvalidArgument)
	}
	query := url.Values{}
	id.addTo(query)
	return b.build(EndpointGetSignature, query, nil), nil
}

func (b *Builder) GetPublicKey() (Request, error) {
	return b.build(EndpointGetPublicKey, nil, nil), nil
}

// AddTransaction validates and encodes a transaction for submission.
func (b *Builder) AddTransaction(tx *types.BroadcastedTransaction) (Request, error) {
	if tx == nil {
		return Request{}, fmt.Errorf("%w: transaction is nil", ErrInvalidArgument)
	}
	if err := tx.Validate(); err != nil {
		return Request{}, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}
	body, err := json.Marshal(tx)
	if err != nil {
		return Request{}, fmt.Errorf("%w: encoding transaction: %v", ErrInvalidArgument, err)
	}
	return b.build(EndpointAddTransaction, nil, body), nil
}

// build assembles the final URL. url.Values.Encode sorts by key, which keeps
// identical arguments byte-identical across calls.
func (b *Builder) build(endpoint Endpoint, query url.Values, body []byte) Request {
	u := *b.baseURL
	u.Path = u.Path + "/" + endpoint.Path
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return Request{
		Endpoint: endpoint,
		URL:      u.String(),
		Body:     body,
	}
}
