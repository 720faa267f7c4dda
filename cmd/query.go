package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/milden6/onlinedawg"
)

var queryStreamed bool

var queryCmd = &cobra.Command{
	Use:   "query file words...",
	Short: "Check which words are stored in a graph",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runQuery(logger, cmd.OutOrStdout(), args[0], args[1:], queryStreamed)
	},
}

func init() {
	queryCmd.Flags().BoolVar(&queryStreamed, "streamed", false, "Read the file in the DAWG.2 format without loading it")
}

func runQuery(logger *zap.Logger, out io.Writer, path string, words []string, streamed bool) error {
	if streamed {
		d, err := onlinedawg.OpenStreamed(path)
		if err != nil {
			return err
		}
		defer d.Close()

		for _, word := range words {
			found, err := d.Lookup(word)
			if err != nil {
				return fmt.Errorf("looking up %q: %w", word, err)
			}
			fmt.Fprintf(out, "%s: %v\n", word, found)
		}
		logger.Debug("Queried streamed graph", zap.String("path", path), zap.Int("words", len(words)))
		return nil
	}

	d, err := onlinedawg.LoadReadonly(path)
	if err != nil {
		return err
	}
	printLookups(out, d, words)
	logger.Debug("Queried graph",
		zap.String("path", path),
		zap.Int("words", len(words)),
		zap.Int64("memory", d.MemoryUsage()),
	)
	return nil
}

func printLookups(out io.Writer, f onlinedawg.Finder, words []string) {
	for _, word := range words {
		fmt.Fprintf(out, "%s: %v\n", word, f.Contains(word))
	}
}
