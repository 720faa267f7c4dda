package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/milden6/onlinedawg"
)

type buildOptions struct {
	output   string
	sort     bool
	verify   bool
	streamed bool
	interval int
}

var buildOpts buildOptions

var buildCmd = &cobra.Command{
	Use:   "build [files...]",
	Short: "Build a graph from word lists, one word per line",
	Long: `Build reads one word per line from the given files, or from standard
input when no file is given, and saves the resulting graph. Words must be
in ascending byte order unless --sort is given.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := runBuild(logger, cmd.InOrStdin(), args, buildOpts)
		return err
	},
}

func init() {
	buildCmd.Flags().StringVarP(&buildOpts.output, "output", "o", "out.dawg", "Output file")
	buildCmd.Flags().BoolVar(&buildOpts.sort, "sort", false, "Sort the words before adding them")
	buildCmd.Flags().BoolVar(&buildOpts.verify, "verify", false, "Run the exhaustive self check before saving")
	buildCmd.Flags().BoolVar(&buildOpts.streamed, "streamed", false, "Write the DAWG.2 format with a seek index")
	buildCmd.Flags().IntVar(&buildOpts.interval, "interval", onlinedawg.DefaultSeekInterval, "Nodes between seek index entries (with --streamed)")
}

func runBuild(logger *zap.Logger, stdin io.Reader, paths []string, opts buildOptions) (*onlinedawg.Graph, error) {
	words, err := readWords(stdin, paths)
	if err != nil {
		return nil, err
	}
	logger.Debug("Read words", zap.Int("count", len(words)), zap.Strings("paths", paths))

	if opts.sort {
		sort.Strings(words)
	}

	start := time.Now()
	g := onlinedawg.New()
	for i, word := range words {
		if i > 0 && word == words[i-1] {
			continue
		}
		if !g.CanAdd(word) {
			return nil, fmt.Errorf("word %q is out of order after %q (use --sort)", word, words[i-1])
		}
		g.Add(word)
	}
	logger.Info("Built graph",
		zap.Int("words", g.WordCount()),
		zap.Int("nodes", g.NodeCount()),
		zap.Int("edges", g.EdgeCount()),
		zap.Int64("memory", g.MemoryUsage()),
		zap.Duration("elapsed", time.Since(start)),
	)

	if opts.verify {
		if err := g.Verify(); err != nil {
			return nil, err
		}
		logger.Debug("Graph verified")
	}

	written, err := save(g, opts)
	if err != nil {
		return nil, err
	}
	logger.Info("Saved graph",
		zap.String("output", opts.output),
		zap.Bool("streamed", opts.streamed),
		zap.Int64("bytes", written),
	)

	return g, nil
}

func save(g *onlinedawg.Graph, opts buildOptions) (int64, error) {
	if !opts.streamed {
		return g.Save(opts.output)
	}

	f, err := os.Create(opts.output)
	if err != nil {
		return 0, err
	}
	w := bufio.NewWriter(f)
	n, err := g.WriteStreamed(w, opts.interval)
	if err == nil {
		err = w.Flush()
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return n, err
}

// readWords returns the non-empty lines of every file, or of stdin when
// there are no files.
func readWords(stdin io.Reader, paths []string) ([]string, error) {
	if len(paths) == 0 {
		words, err := scanWords(stdin, nil)
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		return words, nil
	}

	var words []string
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		words, err = scanWords(f, words)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
	}
	return words, nil
}

// scanWords appends the non-empty lines of r to words. A line that is not
// valid UTF-8 is an error.
func scanWords(r io.Reader, words []string) ([]string, error) {
	scanner := bufio.NewScanner(r)
	for line := 1; scanner.Scan(); line++ {
		word := strings.TrimRight(scanner.Text(), "\r")
		if word == "" {
			continue
		}
		if !utf8.ValidString(word) {
			return nil, fmt.Errorf("line %d: %q is not valid UTF-8", line, word)
		}
		words = append(words, word)
	}
	return words, scanner.Err()
}
