package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/milden6/onlinedawg"
)

var (
	statsStreamed bool
	statsDump     bool
)

var statsCmd = &cobra.Command{
	Use:   "stats file",
	Short: "Print the size of a graph",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runStats(logger, cmd.OutOrStdout(), args[0], statsStreamed, statsDump)
	},
}

func init() {
	statsCmd.Flags().BoolVar(&statsStreamed, "streamed", false, "Read the file in the DAWG.2 format")
	statsCmd.Flags().BoolVar(&statsDump, "dump", false, "Also print every node of a DAWG.1 file")
}

func runStats(logger *zap.Logger, out io.Writer, path string, streamed, dump bool) error {
	var f onlinedawg.Finder
	if streamed {
		d, err := onlinedawg.OpenStreamed(path)
		if err != nil {
			return err
		}
		defer d.Close()
		f = d
	} else {
		d, err := onlinedawg.LoadReadonly(path)
		if err != nil {
			return err
		}
		f = d
	}

	fmt.Fprintf(out, "words:  %d\n", f.WordCount())
	fmt.Fprintf(out, "nodes:  %d\n", f.NodeCount())
	fmt.Fprintf(out, "edges:  %d\n", f.EdgeCount())
	fmt.Fprintf(out, "memory: %d\n", f.MemoryUsage())

	if dump && !streamed {
		if err := dumpFile(out, path); err != nil {
			return err
		}
	}

	logger.Debug("Printed stats", zap.String("path", path), zap.Bool("streamed", streamed))
	return nil
}

func dumpFile(out io.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return onlinedawg.DumpFile(out, f)
}
