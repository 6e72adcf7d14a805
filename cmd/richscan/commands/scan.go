package commands

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/h2non/filetype"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	rich "github.com/wanglei-coder/richheader"
	"github.com/wanglei-coder/richheader/internal/index"
	"github.com/wanglei-coder/richheader/internal/logger"
	"github.com/wanglei-coder/richheader/internal/output"
)

var scanIndexResults bool

var scanCmd = &cobra.Command{
	Use:   "scan DIR",
	Short: "Scan a directory tree for PE files carrying a Rich header",
	Long: `Walk the directory tree, sniff out PE executables and decode the Rich
header of each one. Files without a header are counted but not listed;
unreadable or malformed files are logged and skipped so one bad file
cannot stop a large scan.

With --index every decoded fingerprint is also recorded in the local
index for later matching with "richscan index match".

Examples:
  # Scan a directory
  richscan scan ./bin

  # Scan and record fingerprints
  richscan scan --index ./bin

  # Machine-readable results
  richscan scan -o json ./bin`,
	Args: cobra.ExactArgs(1),
	RunE: runScan,
}

func init() {
	scanCmd.Flags().BoolVar(&scanIndexResults, "index", false, "record decoded fingerprints in the local index")
}

func runScan(cmd *cobra.Command, args []string) error {
	root := args[0]
	format := resultFormat()

	var ix *index.Index
	if scanIndexResults {
		opened, err := index.Open(cfg.Index.Path)
		if err != nil {
			return err
		}
		defer func() { _ = opened.Close() }()
		ix = opened
	}

	var (
		mu        sync.Mutex
		summaries = output.SummaryList{}
		examined  atomic.Int64
		noHeader  atomic.Int64
	)

	g := new(errgroup.Group)
	g.SetLimit(cfg.Scan.Workers)

	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		g.Go(func() error {
			ok, err := isPEFile(path)
			if err != nil {
				logger.Warn("failed to sniff file type", "file", path, "error", err)
				return nil
			}
			if !ok {
				return nil
			}
			examined.Add(1)

			h, err := rich.DecodeFile(path)
			switch {
			case errors.Is(err, rich.ErrHeaderNotFound):
				noHeader.Add(1)
				logger.Debug("no rich header", "file", path)
				return nil
			case errors.Is(err, rich.ErrTruncatedInput):
				logger.Warn("malformed rich header", "file", path, "error", err)
				return nil
			case err != nil:
				logger.Warn("failed to decode file", "file", path, "error", err)
				return nil
			}

			mu.Lock()
			summaries = append(summaries, output.NewSummary(h))
			mu.Unlock()

			if ix != nil {
				if err := ix.Put(h); err != nil {
					logger.Warn("failed to index fingerprint", "file", path, "error", err)
				}
			}
			return nil
		})
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}
	if walkErr != nil {
		return walkErr
	}

	sort.Slice(summaries, func(i, j int) bool { return summaries[i].Source < summaries[j].Source })

	logger.Info("scan finished",
		"root", root,
		"pe_files", examined.Load(),
		"with_header", len(summaries),
		"without_header", noHeader.Load(),
	)

	if len(summaries) == 0 && format == output.FormatTable {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), "No rich headers found")
		return err
	}
	return summaries.Write(cmd.OutOrStdout(), format)
}

// isPEFile sniffs the file's magic bytes for an MZ executable. The sniff
// buffer follows the filetype matcher's recommended header size.
func isPEFile(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	head := make([]byte, 261)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return false, err
	}
	return filetype.Is(head[:n], "exe"), nil
}
