// Package rich decodes the undocumented "Rich" header that Microsoft
// linkers hide between the DOS stub and the PE header. The region starts
// with the magic "DanS", ends with the magic "Rich", and is XOR-obfuscated
// with the checksum dword stored right after the closing magic. Each entry
// in between records a build tool and how many object modules it produced.
package rich

import (
	"bytes"
	"crypto/md5"
	"encoding/binary"
	"fmt"
)

// Entry is one decoded record of the header: which tool, at which build
// version, produced how many of the linked object modules.
type Entry struct {
	ToolID       uint16
	BuildVersion uint16
	UseCount     uint32
}

// EntrySet stores entries keyed by tool id while remembering the order in
// which ids first appeared on disk. Storing an id that is already present
// replaces its entry but keeps the original position. Headers that carry
// several records for one tool id therefore collapse to the last record
// seen, matching the keyed-mapping behavior of the reference tooling.
type EntrySet struct {
	ids  []uint16
	byID map[uint16]Entry
}

// NewEntrySet builds a set from entries in order, applying the same
// keyed-overwrite rule the decoder applies. It is handy for constructing
// known fingerprints to compare decoded headers against.
func NewEntrySet(entries ...Entry) *EntrySet {
	s := &EntrySet{byID: make(map[uint16]Entry, len(entries))}
	for _, e := range entries {
		s.put(e)
	}
	return s
}

func (s *EntrySet) put(e Entry) {
	if _, ok := s.byID[e.ToolID]; !ok {
		s.ids = append(s.ids, e.ToolID)
	}
	s.byID[e.ToolID] = e
}

// Len returns the number of distinct tool ids in the set.
func (s *EntrySet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.ids)
}

// Get returns the entry stored under id.
func (s *EntrySet) Get(id uint16) (Entry, bool) {
	if s == nil {
		return Entry{}, false
	}
	e, ok := s.byID[id]
	return e, ok
}

// IDs returns the tool ids in first-seen on-disk order.
func (s *EntrySet) IDs() []uint16 {
	if s == nil {
		return nil
	}
	ids := make([]uint16, len(s.ids))
	copy(ids, s.ids)
	return ids
}

// Entries returns the stored entries in first-seen on-disk order.
func (s *EntrySet) Entries() []Entry {
	if s == nil {
		return nil
	}
	entries := make([]Entry, 0, len(s.ids))
	for _, id := range s.ids {
		entries = append(entries, s.byID[id])
	}
	return entries
}

// Equal reports whether both sets hold the same id to entry mapping. Order
// is not compared.
func (s *EntrySet) Equal(other *EntrySet) bool {
	if s.Len() != other.Len() {
		return false
	}
	if s == nil {
		return true
	}
	for _, id := range s.ids {
		theirs, ok := other.Get(id)
		if !ok || theirs != s.byID[id] {
			return false
		}
	}
	return true
}

// Header is the decoded Rich header of one input. Decode assembles it in
// full; it is not mutated afterwards.
type Header struct {
	// Source names the input for reporting. It plays no part in Equal.
	Source string

	// Entries holds the decoded records keyed by tool id.
	Entries *EntrySet

	// ChecksumMatches is true when the checksum recomputed over the input
	// equals the stored one. A mismatch means the file was patched or
	// corrupted after linking; it is a property of the input, not a
	// decode failure.
	ChecksumMatches bool

	// XorKey is the stored checksum dword found after the "Rich" magic.
	// The same value masks the whole header region.
	XorKey uint32

	// DansOffset and RichOffset delimit the hidden region: DansOffset is
	// where the masked "DanS" magic sits, RichOffset where "Rich" sits.
	DansOffset int
	RichOffset int

	// Raw holds the still-obfuscated bytes from DanS through the stored
	// checksum dword.
	Raw []byte
}

// Equal reports value equality of two decoded headers: the same entries
// per tool id and the same checksum verdict. Source, offsets and raw bytes
// are deliberately left out, so headers decoded from different files
// compare equal when the same build environment produced them.
func (h *Header) Equal(other *Header) bool {
	if h == nil || other == nil {
		return h == other
	}
	if h.ChecksumMatches != other.ChecksumMatches {
		return false
	}
	return h.Entries.Equal(other.Entries)
}

// Hash returns the MD5 of the XOR-decrypted region between DanS and Rich,
// the "rich header hash" commonly used to group binaries coming from one
// build environment. Headers with identical entries hash identically even
// when their XOR keys differ.
func (h *Header) Hash() string {
	if h == nil || len(h.Raw) == 0 {
		return ""
	}
	richIndex := bytes.Index(h.Raw, []byte(RichSignature))
	if richIndex == -1 {
		return ""
	}

	key := make([]byte, 4)
	binary.LittleEndian.PutUint32(key, h.XorKey)

	rawData := h.Raw[:richIndex]
	clearData := make([]byte, len(rawData))
	for idx, val := range rawData {
		clearData[idx] = val ^ key[idx%len(key)]
	}
	return fmt.Sprintf("%x", md5.Sum(clearData))
}
