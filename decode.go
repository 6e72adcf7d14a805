package rich

import (
	"bytes"
	"encoding/binary"

	"github.com/pkg/errors"
)

// Decode parses the Rich header out of the leading bytes of a PE image.
// data must start at file offset zero and cover at least the DOS header;
// a successful decode additionally needs the bytes up to the "Rich" magic
// and the checksum dword behind it. The returned Header keeps no
// references into data.
//
// A checksum mismatch is reported through Header.ChecksumMatches, never as
// an error. ErrHeaderNotFound and ErrTruncatedInput are the only failure
// classes; both can be tested with errors.Is.
func Decode(data []byte) (*Header, error) {
	if len(data) < DOSHeaderSize {
		return nil, errors.Wrapf(ErrTruncatedInput,
			"%d bytes cannot hold a DOS header", len(data))
	}

	// Only the low word of e_lfanew counts, the loader ignores the rest
	// of the dword.
	lfanew := int(binary.LittleEndian.Uint32(data[lfanewOffset:]) & 0xFFFF)

	search := data
	if lfanew < len(search) {
		search = search[:lfanew]
	}
	richOffset := bytes.Index(search, []byte(RichSignature))
	if richOffset < 0 {
		return nil, errors.Wrapf(ErrHeaderNotFound,
			"no %q magic before PE header at 0x%X", RichSignature, lfanew)
	}

	key, err := readDword(data, richOffset+4)
	if err != nil {
		return nil, err
	}

	dansOffset, err := findDansOffset(data, key, richOffset, lfanew)
	if err != nil {
		return nil, err
	}

	sum := checksumOfStub(data[:dansOffset])

	entries := NewEntrySet()
	count := (richOffset - dansOffset - entryTableSkip) / entrySize
	for i := 0; i < count; i++ {
		off := dansOffset + entryTableSkip + i*entrySize
		idWord := binary.LittleEndian.Uint32(data[off:]) ^ key
		useCount := binary.LittleEndian.Uint32(data[off+4:]) ^ key
		sum += rol32(idWord, useCount)
		entries.put(Entry{
			ToolID:       uint16(idWord >> 16),
			BuildVersion: uint16(idWord & 0xFFFF),
			UseCount:     useCount,
		})
	}

	raw := make([]byte, richOffset+8-dansOffset)
	copy(raw, data[dansOffset:richOffset+8])

	return &Header{
		Entries:         entries,
		ChecksumMatches: sum == key,
		XorKey:          key,
		DansOffset:      dansOffset,
		RichOffset:      richOffset,
		Raw:             raw,
	}, nil
}

// findDansOffset locates the start of the hidden region, the offset whose
// dword XOR-decodes to "DanS". Linkers put it at 0x80; when it is not
// there every dword offset between the DOS header and the PE header is
// probed. A candidate only counts when it leaves room for the magic, its
// three padding dwords and the entry table before "Rich", so it must sit
// at least 0x10 bytes before the closing magic.
func findDansOffset(data []byte, key uint32, richOffset, lfanew int) (int, error) {
	word, err := readDword(data, defaultDansOffset)
	if err != nil {
		return 0, err
	}
	if word^key == DansSignature && defaultDansOffset+entryTableSkip <= richOffset {
		return defaultDansOffset, nil
	}

	for off := scanStart; off+4 <= lfanew && off+entryTableSkip <= richOffset; off += 4 {
		word, err := readDword(data, off)
		if err != nil {
			return 0, err
		}
		if word^key == DansSignature {
			return off, nil
		}
	}
	return 0, errors.Wrapf(ErrHeaderNotFound,
		"no dword in [0x%X, 0x%X) decodes to %q", scanStart, lfanew, "DanS")
}

// readDword reads the little-endian dword at off, failing when the input
// ends before it.
func readDword(data []byte, off int) (uint32, error) {
	if off < 0 || off+4 > len(data) {
		return 0, errors.Wrapf(ErrTruncatedInput,
			"dword read at 0x%X past end of %d-byte input", off, len(data))
	}
	return binary.LittleEndian.Uint32(data[off:]), nil
}
