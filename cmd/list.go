package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/milden6/onlinedawg"
)

var listPrefix string

var listCmd = &cobra.Command{
	Use:   "list file",
	Short: "Print the words stored in a graph in ascending order",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runList(logger, cmd.OutOrStdout(), args[0], listPrefix)
	},
}

func init() {
	listCmd.Flags().StringVar(&listPrefix, "prefix", "", "Only print words starting with this prefix")
}

func runList(logger *zap.Logger, out io.Writer, path, prefix string) error {
	g, err := onlinedawg.Load(path)
	if err != nil {
		return err
	}

	count := 0
	g.Enumerate(func(runes []rune, final bool) onlinedawg.EnumerationResult {
		word := string(runes)
		switch {
		case strings.HasPrefix(word, prefix):
			if final {
				fmt.Fprintln(out, word)
				count++
			}
			return onlinedawg.Continue
		case strings.HasPrefix(prefix, word):
			return onlinedawg.Continue
		default:
			return onlinedawg.Skip
		}
	})

	logger.Debug("Listed words", zap.String("path", path), zap.String("prefix", prefix), zap.Int("count", count))
	return nil
}
