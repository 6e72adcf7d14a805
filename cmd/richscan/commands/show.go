package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	rich "github.com/wanglei-coder/richheader"
	"github.com/wanglei-coder/richheader/internal/output"
)

var showCmd = &cobra.Command{
	Use:   "show FILE...",
	Short: "Decode and print the Rich header of PE files",
	Long: `Decode the Rich header of each file and print its entries, XOR key,
offsets, fingerprint hash and checksum verdict.

Examples:
  # Inspect one binary
  richscan show app.exe

  # Inspect several binaries as JSON
  richscan show -o json app.exe setup.exe`,
	Args: cobra.MinimumNArgs(1),
	RunE: runShow,
}

func runShow(cmd *cobra.Command, args []string) error {
	format := resultFormat()
	out := cmd.OutOrStdout()

	for i, name := range args {
		h, err := rich.DecodeFile(name)
		if err != nil {
			return err
		}
		if i > 0 && format == output.FormatTable {
			if _, err := fmt.Fprintln(out); err != nil {
				return err
			}
		}
		if err := output.NewReport(h).Write(out, format); err != nil {
			return err
		}
	}
	return nil
}
