package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/NethermindEth/juno/core/felt"
	"github.com/spf13/cobra"

	"github.com/buildwithgrove/sequencer-client/client"
	"github.com/buildwithgrove/sequencer-client/request"
)

// readCmd describes a read-only subcommand. call receives the positional arguments.
type readCmd struct {
	use   string
	short string
	args  cobra.PositionalArgs
	call  func(ctx context.Context, c *client.Client, args []string) (any, error)
}

var readCmds = []readCmd{
	{
		use:   "block [block-id]",
		short: "Fetch a block by number, hash, latest or pending (default latest)",
		args:  cobra.MaximumNArgs(1),
		call: func(ctx context.Context, c *client.Client, args []string) (any, error) {
			id, err := blockIDArg(args)
			if err != nil {
				return nil, err
			}
			return c.GetBlock(ctx, id)
		},
	},
	{
		use:   "state-update [block-id]",
		short: "Fetch the state update of a block (default latest)",
		args:  cobra.MaximumNArgs(1),
		call: func(ctx context.Context, c *client.Client, args []string) (any, error) {
			id, err := blockIDArg(args)
			if err != nil {
				return nil, err
			}
			return c.GetStateUpdate(ctx, id)
		},
	},
	{
		use:   "state-update-with-block [block-id]",
		short: "Fetch the state update of a block together with the block",
		args:  cobra.MaximumNArgs(1),
		call: func(ctx context.Context, c *client.Client, args []string) (any, error) {
			id, err := blockIDArg(args)
			if err != nil {
				return nil, err
			}
			return c.GetStateUpdateWithBlock(ctx, id)
		},
	},
	{
		use:   "class <class-hash>",
		short: "Fetch a class definition by hash",
		args:  cobra.ExactArgs(1),
		call: func(ctx context.Context, c *client.Client, args []string) (any, error) {
			hash, err := feltArg("class hash", args[0])
			if err != nil {
				return nil, err
			}
			return c.GetClassByHash(ctx, hash)
		},
	},
	{
		use:   "compiled-class <class-hash>",
		short: "Fetch the compiled (CASM) class of a Sierra class hash",
		args:  cobra.ExactArgs(1),
		call: func(ctx context.Context, c *client.Client, args []string) (any, error) {
			hash, err := feltArg("class hash", args[0])
			if err != nil {
				return nil, err
			}
			return c.GetCompiledClassByHash(ctx, hash)
		},
	},
	{
		use:   "contract-addresses",
		short: "Fetch the L1 core contract addresses",
		args:  cobra.NoArgs,
		call: func(ctx context.Context, c *client.Client, _ []string) (any, error) {
			return c.GetContractAddresses(ctx)
		},
	},
	{
		use:   "transaction <transaction-hash>",
		short: "Fetch a transaction and its status",
		args:  cobra.ExactArgs(1),
		call: func(ctx context.Context, c *client.Client, args []string) (any, error) {
			hash, err := feltArg("transaction hash", args[0])
			if err != nil {
				return nil, err
			}
			return c.GetTransaction(ctx, hash)
		},
	},
	{
		use:   "transaction-status <transaction-hash>",
		short: "Fetch the finality and execution status of a transaction",
		args:  cobra.ExactArgs(1),
		call: func(ctx context.Context, c *client.Client, args []string) (any, error) {
			hash, err := feltArg("transaction hash", args[0])
			if err != nil {
				return nil, err
			}
			return c.GetTransactionStatus(ctx, hash)
		},
	},
	{
		use:   "signature [block-id]",
		short: "Fetch the sequencer signature of a closed block (default latest)",
		args:  cobra.MaximumNArgs(1),
		call: func(ctx context.Context, c *client.Client, args []string) (any, error) {
			id, err := blockIDArg(args)
			if err != nil {
				return nil, err
			}
			return c.GetSignature(ctx, id)
		},
	},
	{
		use:   "public-key",
		short: "Fetch the sequencer public key",
		args:  cobra.NoArgs,
		call: func(ctx context.Context, c *client.Client, _ []string) (any, error) {
			return c.GetPublicKey(ctx)
		},
	},
}

func newReadCmds(flags *rootFlags) []*cobra.Command {
	cmds := make([]*cobra.Command, 0, len(readCmds))
	for _, rc := range readCmds {
		cmds = append(cmds, &cobra.Command{
			Use:   rc.use,
			Short: rc.short,
			Args:  rc.args,
			RunE: func(cmd *cobra.Command, args []string) error {
				c, err := flags.setup()
				if err != nil {
					return err
				}
				defer c.Close()

				value, err := rc.call(cmd.Context(), c, args)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), value)
			},
		})
	}
	return cmds
}

func blockIDArg(args []string) (request.BlockID, error) {
	if len(args) == 0 {
		return request.Latest(), nil
	}
	return request.ParseBlockID(args[0])
}

func feltArg(name, value string) (*felt.Felt, error) {
	f, err := new(felt.Felt).SetString(value)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %q: %v", request.ErrInvalidArgument, name, value, err)
	}
	return f, nil
}

func printJSON(w io.Writer, value any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}
