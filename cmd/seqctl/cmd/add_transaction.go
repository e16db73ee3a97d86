package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/buildwithgrove/sequencer-client/request"
	"github.com/buildwithgrove/sequencer-client/types"
)

func newAddTransactionCmd(flags *rootFlags) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "add-transaction --file <path>",
		Short: "Submit a signed transaction read from a JSON file, - for stdin",
		Long: `Submit a signed INVOKE_FUNCTION, DECLARE or DEPLOY_ACCOUNT transaction.

The file holds the transaction exactly as the gateway expects it. Gateway
rejections such as INVALID_TRANSACTION_NONCE are reported without retrying.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tx, err := readTransaction(cmd.InOrStdin(), file)
			if err != nil {
				return err
			}

			c, err := flags.setup()
			if err != nil {
				return err
			}
			defer c.Close()

			resp, err := c.AddTransaction(cmd.Context(), tx)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "path to the transaction JSON, - for stdin")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func readTransaction(stdin io.Reader, file string) (*types.BroadcastedTransaction, error) {
	var (
		data []byte
		err  error
	)
	if file == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(file)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read transaction: %w", err)
	}

	var tx types.BroadcastedTransaction
	if err := json.Unmarshal(data, &tx); err != nil {
		return nil, fmt.Errorf("%w: transaction is not valid JSON: %v", request.ErrInvalidArgument, err)
	}
	return &tx, nil
}
