package output

import (
	"fmt"
	"io"

	rich "github.com/wanglei-coder/richheader"
)

// EntryRow is one decoded entry in serializable form.
type EntryRow struct {
	ToolID       uint16 `json:"tool_id" yaml:"tool_id"`
	BuildVersion uint16 `json:"build_version" yaml:"build_version"`
	UseCount     uint32 `json:"use_count" yaml:"use_count"`
}

// Report is the full projection of one decoded header.
type Report struct {
	Source          string     `json:"source" yaml:"source"`
	RichHash        string     `json:"rich_hash" yaml:"rich_hash"`
	XorKey          uint32     `json:"xor_key" yaml:"xor_key"`
	DansOffset      int        `json:"dans_offset" yaml:"dans_offset"`
	RichOffset      int        `json:"rich_offset" yaml:"rich_offset"`
	ChecksumMatches bool       `json:"checksum_matches" yaml:"checksum_matches"`
	Entries         []EntryRow `json:"entries" yaml:"entries"`
}

// NewReport projects a decoded header into its reporting form. Entries
// keep their on-disk order.
func NewReport(h *rich.Header) Report {
	r := Report{
		Source:          h.Source,
		RichHash:        h.Hash(),
		XorKey:          h.XorKey,
		DansOffset:      h.DansOffset,
		RichOffset:      h.RichOffset,
		ChecksumMatches: h.ChecksumMatches,
	}
	for _, e := range h.Entries.Entries() {
		r.Entries = append(r.Entries, EntryRow{
			ToolID:       e.ToolID,
			BuildVersion: e.BuildVersion,
			UseCount:     e.UseCount,
		})
	}
	return r
}

// Headers implements TableRenderer.
func (r Report) Headers() []string {
	return []string{"Tool ID", "Build Version", "Use Count"}
}

// Rows implements TableRenderer.
func (r Report) Rows() [][]string {
	rows := make([][]string, 0, len(r.Entries))
	for _, e := range r.Entries {
		rows = append(rows, []string{
			fmt.Sprintf("0x%04X", e.ToolID),
			fmt.Sprintf("%d", e.BuildVersion),
			fmt.Sprintf("%d", e.UseCount),
		})
	}
	return rows
}

// Write renders the report in the given format. The table form mirrors
// the classic parser printout: a file preamble, the entry table and the
// checksum verdict.
func (r Report) Write(w io.Writer, format Format) error {
	if format != FormatTable {
		return Print(w, format, r)
	}

	pairs := [][2]string{
		{"File", r.Source},
		{"Rich hash", r.RichHash},
		{"XOR key", fmt.Sprintf("0x%08X", r.XorKey)},
		{"DanS offset", fmt.Sprintf("0x%X", r.DansOffset)},
		{"Rich offset", fmt.Sprintf("0x%X", r.RichOffset)},
	}
	if err := SimpleTable(w, pairs); err != nil {
		return err
	}
	if len(r.Entries) > 0 {
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
		if err := PrintTable(w, r); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "\nChecksum match: %v\n", r.ChecksumMatches)
	return err
}

// Summary is the one-line projection of a decoded header used by scan
// listings.
type Summary struct {
	Source          string `json:"source" yaml:"source"`
	Entries         int    `json:"entries" yaml:"entries"`
	ChecksumMatches bool   `json:"checksum_matches" yaml:"checksum_matches"`
	RichHash        string `json:"rich_hash" yaml:"rich_hash"`
}

// NewSummary projects a decoded header into its scan listing form.
func NewSummary(h *rich.Header) Summary {
	return Summary{
		Source:          h.Source,
		Entries:         h.Entries.Len(),
		ChecksumMatches: h.ChecksumMatches,
		RichHash:        h.Hash(),
	}
}

// SummaryList renders scan results as one table.
type SummaryList []Summary

// Headers implements TableRenderer.
func (l SummaryList) Headers() []string {
	return []string{"File", "Entries", "Checksum", "Rich Hash"}
}

// Rows implements TableRenderer.
func (l SummaryList) Rows() [][]string {
	rows := make([][]string, 0, len(l))
	for _, s := range l {
		checksum := "ok"
		if !s.ChecksumMatches {
			checksum = "MISMATCH"
		}
		rows = append(rows, []string{s.Source, fmt.Sprintf("%d", s.Entries), checksum, s.RichHash})
	}
	return rows
}

// Write renders the list in the given format.
func (l SummaryList) Write(w io.Writer, format Format) error {
	return Print(w, format, l)
}

// Comparison is the verdict of comparing two decoded headers.
type Comparison struct {
	First  string `json:"first" yaml:"first"`
	Second string `json:"second" yaml:"second"`
	Equal  bool   `json:"equal" yaml:"equal"`
}

// Write renders the verdict. The table form keeps the classic one-line
// phrasing.
func (c Comparison) Write(w io.Writer, format Format) error {
	if format != FormatTable {
		return Print(w, format, c)
	}
	if c.Equal {
		_, err := fmt.Fprintln(w, "Both files have identical linker headers")
		return err
	}
	_, err := fmt.Fprintln(w, "Both files have different linker headers")
	return err
}
