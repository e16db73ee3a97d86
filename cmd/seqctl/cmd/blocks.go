package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/cheggaaa/pb/v3"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/buildwithgrove/sequencer-client/request"
	"github.com/buildwithgrove/sequencer-client/types"
)

const (
	defaultBlocksConcurrency = 8

	// maxBlocksRange bounds a single invocation, every block is held in memory until written.
	maxBlocksRange = 10_000

	blocksProgressTemplate = `{{ blue "blocks" }} {{ counters . }} {{ bar . "[" "=" ">" "_" "]" | blue }} {{ green (percent .) }} {{ rtime . "ETA %s" }}`
)

func newBlocksCmd(flags *rootFlags) *cobra.Command {
	var (
		from, to    uint64
		concurrency int
		noProgress  bool
	)

	cmd := &cobra.Command{
		Use:   "blocks --from <number> --to <number>",
		Short: "Fetch a range of blocks concurrently, one JSON document per line",
		Long: `Fetch every block in [from, to] with up to --concurrency calls in flight.

Blocks are written to stdout in ascending order once the whole range succeeded.
The first failed block cancels the remaining calls.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if to < from {
				return fmt.Errorf("%w: --to %d is below --from %d", request.ErrInvalidArgument, to, from)
			}
			if to-from >= maxBlocksRange {
				return fmt.Errorf("%w: range [%d, %d] exceeds %d blocks", request.ErrInvalidArgument, from, to, maxBlocksRange)
			}
			count := to - from + 1
			if concurrency < 1 {
				return fmt.Errorf("%w: --concurrency must be at least 1", request.ErrInvalidArgument)
			}

			c, err := flags.setup()
			if err != nil {
				return err
			}
			defer c.Close()

			bar := pb.ProgressBarTemplate(blocksProgressTemplate).New(int(count))
			bar.SetWriter(cmd.ErrOrStderr())
			bar.Set(pb.Bytes, false)
			if !noProgress {
				bar.Start()
			}

			blocks := make([]*types.Block, count)
			g, ctx := errgroup.WithContext(cmd.Context())
			g.SetLimit(concurrency)
			for i := range count {
				number := from + i
				g.Go(func() error {
					block, err := c.GetBlock(ctx, request.BlockNumber(number))
					if err != nil {
						return fmt.Errorf("block %d: %w", number, err)
					}
					blocks[i] = block
					bar.Increment()
					return nil
				})
			}
			err = g.Wait()
			if !noProgress {
				bar.Finish()
			}
			if err != nil {
				return err
			}

			encoder := json.NewEncoder(cmd.OutOrStdout())
			for _, block := range blocks {
				if err := encoder.Encode(block); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().Uint64Var(&from, "from", 0, "first block number")
	cmd.Flags().Uint64Var(&to, "to", 0, "last block number, inclusive")
	cmd.Flags().IntVar(&concurrency, "concurrency", defaultBlocksConcurrency, "maximum calls in flight")
	cmd.Flags().BoolVar(&noProgress, "no-progress", false, "do not draw the progress bar")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}
