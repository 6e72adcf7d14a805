package commands

import (
	"fmt"
	"io"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	rich "github.com/wanglei-coder/richheader"
	"github.com/wanglei-coder/richheader/internal/index"
	"github.com/wanglei-coder/richheader/internal/output"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Query the local fingerprint index",
	Long: `Query the fingerprints recorded by "richscan scan --index". Binaries
whose decoded entries are identical share a rich header hash, so the
index answers which previously scanned files came out of the same
build environment.`,
}

var indexMatchCmd = &cobra.Command{
	Use:   "match FILE",
	Short: "List indexed binaries sharing a file's fingerprint",
	Long: `Decode FILE and list every indexed record carrying the same rich
header hash.

Examples:
  # Which scanned binaries share this build environment?
  richscan index match sample.exe`,
	Args: cobra.ExactArgs(1),
	RunE: runIndexMatch,
}

var indexListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every indexed fingerprint",
	Args:  cobra.NoArgs,
	RunE:  runIndexList,
}

func init() {
	indexCmd.AddCommand(indexMatchCmd)
	indexCmd.AddCommand(indexListCmd)
}

func runIndexMatch(cmd *cobra.Command, args []string) error {
	h, err := rich.DecodeFile(args[0])
	if err != nil {
		return err
	}

	ix, err := index.Open(cfg.Index.Path)
	if err != nil {
		return err
	}
	defer func() { _ = ix.Close() }()

	records, err := ix.Lookup(h.Hash())
	if errors.Is(err, index.ErrNotIndexed) {
		_, err := fmt.Fprintf(cmd.OutOrStdout(),
			"No indexed binary shares the fingerprint of %s\n", args[0])
		return err
	}
	if err != nil {
		return err
	}
	return recordList(records).Write(cmd.OutOrStdout(), resultFormat())
}

func runIndexList(cmd *cobra.Command, args []string) error {
	ix, err := index.Open(cfg.Index.Path)
	if err != nil {
		return err
	}
	defer func() { _ = ix.Close() }()

	records, err := ix.All()
	if err != nil {
		return err
	}
	if len(records) == 0 {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), "Index is empty")
		return err
	}
	return recordList(records).Write(cmd.OutOrStdout(), resultFormat())
}

// recordList renders index records as one table.
type recordList []index.Record

// Headers implements output.TableRenderer.
func (l recordList) Headers() []string {
	return []string{"Source", "Rich Hash", "Entries", "Checksum", "Indexed At"}
}

// Rows implements output.TableRenderer.
func (l recordList) Rows() [][]string {
	rows := make([][]string, 0, len(l))
	for _, r := range l {
		checksum := "ok"
		if !r.ChecksumMatches {
			checksum = "MISMATCH"
		}
		rows = append(rows, []string{
			r.Source,
			r.Hash,
			fmt.Sprintf("%d", r.Entries),
			checksum,
			r.IndexedAt.Format(time.RFC3339),
		})
	}
	return rows
}

// Write renders the records in the given format.
func (l recordList) Write(w io.Writer, format output.Format) error {
	return output.Print(w, format, l)
}
