package rich

// DOSHeaderSize is the size of the legacy DOS header. The PE header
// pointer e_lfanew occupies its last dword, so no input shorter than this
// can be decoded.
const DOSHeaderSize = 0x40

const (
	// DansSignature is the little-endian encoding of "DanS", the magic
	// dword that opens the hidden header region.
	DansSignature = 0x536E6144
	// RichSignature terminates the header; the stored checksum dword
	// follows it immediately.
	RichSignature = "Rich"
)

const (
	// e_lfanew lives at this fixed offset inside the DOS header.
	lfanewOffset = 0x3C

	// Linkers normally start the hidden header right after a standard DOS
	// stub.
	defaultDansOffset = 0x80

	// When the header is not at the default position it is searched from
	// the end of the DOS header proper, one dword at a time.
	scanStart = 0x40

	// The entry table starts this many bytes past the header start: the
	// DanS magic dword plus three zeroed padding dwords.
	entryTableSkip = 0x10

	// Each entry is two dwords, the masked id word and the masked use
	// count.
	entrySize = 8
)
