package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/require"

	"github.com/buildwithgrove/sequencer-client/classify"
	"github.com/buildwithgrove/sequencer-client/request"
	"github.com/buildwithgrove/sequencer-client/testutil/fixtures"
	"github.com/buildwithgrove/sequencer-client/testutil/gateway"
	"github.com/buildwithgrove/sequencer-client/types"
)

func init() {
	color.NoColor = true
}

func runSeqctl(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	rootCmd := NewRootCmd()
	rootCmd.SetArgs(append(args, "--log-level", "error"))
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	err := rootCmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func Test_Block(t *testing.T) {
	c := require.New(t)
	server := gateway.NewServer(t, gateway.Reply(http.StatusOK, fixtures.Load(fixtures.Block100)))

	stdout, _, err := runSeqctl(t, "", "block", "100", "--gateway-url", server.URL)
	c.NoError(err)

	var block types.Block
	c.NoError(json.Unmarshal([]byte(stdout), &block))
	c.Equal(uint64(100), *block.Number)
	c.Contains(stdout, "\n  \"block_number\": 100,")
	c.Equal("/feeder_gateway/get_block?blockNumber=100", server.Requests()[0].URI)
}

func Test_ReadCommands(t *testing.T) {
	txHash := "0x69d743891f69d758928e163eff1e3d7256752f549f134974d4aa8d26d5d7da8"

	tests := []struct {
		name        string
		fixture     []byte
		args        []string
		expectedURI string
	}{
		{
			name:        "latest block by default",
			fixture:     fixtures.Load(fixtures.Block100),
			args:        []string{"block"},
			expectedURI: "/feeder_gateway/get_block?blockNumber=latest",
		},
		{
			name:        "state update",
			fixture:     fixtures.Load(fixtures.StateUpdate100),
			args:        []string{"state-update", "100"},
			expectedURI: "/feeder_gateway/get_state_update?blockNumber=100",
		},
		{
			name:        "class",
			fixture:     fixtures.Load(fixtures.ClassSierra),
			args:        []string{"class", "0x1234"},
			expectedURI: "/feeder_gateway/get_class_by_hash?blockNumber=pending&classHash=0x1234",
		},
		{
			name:        "contract addresses",
			fixture:     fixtures.Load(fixtures.ContractAddresses),
			args:        []string{"contract-addresses"},
			expectedURI: "/feeder_gateway/get_contract_addresses",
		},
		{
			name:        "transaction status",
			fixture:     fixtures.Load(fixtures.TransactionStatus),
			args:        []string{"transaction-status", txHash},
			expectedURI: "/feeder_gateway/get_transaction_status?transactionHash=" + txHash,
		},
		{
			name:        "signature",
			fixture:     fixtures.Load(fixtures.Signature),
			args:        []string{"signature", "100"},
			expectedURI: "/feeder_gateway/get_signature?blockNumber=100",
		},
		{
			name:        "public key",
			fixture:     []byte(`"0x1234"`),
			args:        []string{"public-key"},
			expectedURI: "/feeder_gateway/get_public_key",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			server := gateway.NewServer(t, gateway.Reply(http.StatusOK, test.fixture))

			stdout, _, err := runSeqctl(t, "", append(test.args, "--gateway-url", server.URL)...)
			require.NoError(t, err)
			require.True(t, json.Valid([]byte(stdout)))
			require.Equal(t, test.expectedURI, server.Requests()[0].URI)
		})
	}
}

func Test_InvalidArguments(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "unknown block tag", args: []string{"block", "earliest"}},
		{name: "malformed class hash", args: []string{"class", "0xzz"}},
		{name: "signature of pending block", args: []string{"signature", "pending"}},
		{name: "inverted range", args: []string{"blocks", "--from", "10", "--to", "5"}},
		{name: "range too large", args: []string{"blocks", "--from", "0", "--to", "10000"}},
		{name: "full uint64 range", args: []string{"blocks", "--from", "0", "--to", "18446744073709551615"}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			server := gateway.NewServer(t, gateway.Reply(http.StatusOK, []byte("{}")))

			_, _, err := runSeqctl(t, "", append(test.args, "--gateway-url", server.URL)...)
			require.ErrorIs(t, err, request.ErrInvalidArgument)
			require.Zero(t, server.RequestCount())
		})
	}
}

func Test_AddTransaction(t *testing.T) {
	txJSON := `{
  "type": "INVOKE_FUNCTION",
  "version": "0x1",
  "sender_address": "0x49d36570d4e46f48e99674bd3fcc84644ddd6b96f7c741b1562b82f9e004dc7",
  "nonce": "0x1d",
  "max_fee": "0x1d1a94a20000000000",
  "calldata": ["0x1"],
  "signature": ["0x3", "0x4"]
}`

	t.Run("from file", func(t *testing.T) {
		c := require.New(t)
		server := gateway.NewServer(t, gateway.Reply(http.StatusOK, fixtures.Load(fixtures.AddTransactionReceived)))
		path := filepath.Join(t.TempDir(), "tx.json")
		c.NoError(os.WriteFile(path, []byte(txJSON), 0o600))

		stdout, _, err := runSeqctl(t, "", "add-transaction", "--file", path, "--gateway-url", server.URL)
		c.NoError(err)
		c.Contains(stdout, "TRANSACTION_RECEIVED")
		c.Equal(http.MethodPost, server.Requests()[0].Method)
		c.Equal("/gateway/add_transaction", server.Requests()[0].URI)
	})

	t.Run("stale nonce from stdin", func(t *testing.T) {
		c := require.New(t)
		server := gateway.NewServer(t, gateway.Reply(http.StatusBadRequest, fixtures.Load(fixtures.ErrorInvalidNonce)))

		_, _, err := runSeqctl(t, txJSON, "add-transaction", "--file", "-", "--gateway-url", server.URL)
		c.ErrorIs(err, classify.ErrGatewayRejected)
		c.Equal(1, server.RequestCount())

		var stderr bytes.Buffer
		printError(&stderr, err)
		c.Contains(stderr.String(), "kind:     gateway_rejected")
		c.Contains(stderr.String(), "attempts: 1")
		c.Contains(stderr.String(), "status:   400")
		c.Contains(stderr.String(), "code:     INVALID_TRANSACTION_NONCE")
	})

	t.Run("malformed JSON", func(t *testing.T) {
		server := gateway.NewServer(t, gateway.Reply(http.StatusOK, []byte("{}")))

		_, _, err := runSeqctl(t, "{not json", "add-transaction", "--file", "-", "--gateway-url", server.URL)
		require.ErrorIs(t, err, request.ErrInvalidArgument)
		require.Zero(t, server.RequestCount())
	})
}

func Test_Blocks(t *testing.T) {
	c := require.New(t)
	server := gateway.NewServer(t, gateway.Reply(http.StatusOK, fixtures.Load(fixtures.Block100)))

	stdout, _, err := runSeqctl(t, "", "blocks", "--from", "100", "--to", "104", "--concurrency", "2", "--no-progress", "--gateway-url", server.URL)
	c.NoError(err)

	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	c.Len(lines, 5)
	for _, line := range lines {
		var block types.Block
		c.NoError(json.Unmarshal([]byte(line), &block))
	}

	uris := make(map[string]bool)
	for _, received := range server.Requests() {
		uris[received.URI] = true
	}
	c.Len(uris, 5)
	c.True(uris["/feeder_gateway/get_block?blockNumber=104"])
}

func Test_Blocks_FailureStopsRange(t *testing.T) {
	server := gateway.NewServer(t, gateway.Reply(http.StatusBadRequest, fixtures.Load(fixtures.ErrorBlockNotFound)))

	stdout, _, err := runSeqctl(t, "", "blocks", "--from", "1", "--to", "3", "--concurrency", "1", "--no-progress", "--gateway-url", server.URL)
	require.ErrorIs(t, err, classify.ErrGatewayRejected)
	require.Empty(t, stdout)
}

func Test_LoadConfig(t *testing.T) {
	c := require.New(t)
	path := filepath.Join(t.TempDir(), "seqctl.yaml")
	c.NoError(os.WriteFile(path, []byte(`
gateway_url: https://alpha-mainnet.starknet.io
api_key: from-file
retry:
  max_attempts: 2
`), 0o600))

	flags := &rootFlags{configPath: path, apiKey: "from-flag", logLevel: "warn"}
	cfg, err := flags.loadConfig()
	c.NoError(err)
	c.Equal("https://alpha-mainnet.starknet.io", cfg.GatewayURL)
	c.Equal("from-flag", cfg.APIKey)
	c.Equal("warn", cfg.Logger.Level)
	c.Equal(2, cfg.Retry.MaxAttempts)

	flags = &rootFlags{}
	cfg, err = flags.loadConfig()
	c.NoError(err)
	c.Equal(defaultGatewayURL, cfg.GatewayURL)

	flags = &rootFlags{logLevel: "verbose"}
	_, err = flags.loadConfig()
	c.Error(err)
}

func Test_PrintError_PlainError(t *testing.T) {
	var stderr bytes.Buffer
	printError(&stderr, os.ErrNotExist)
	require.Equal(t, "Error: file does not exist\n", stderr.String())
}
