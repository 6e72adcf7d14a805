package rich

import (
	"encoding/binary"
	"io"
	"os"

	"github.com/pkg/errors"
)

// DecodeFile opens the named file and decodes its Rich header. Only the
// leading region is read: everything up to the PE header plus the checksum
// dword that trails the "Rich" magic, never the whole image. The file is
// closed before returning on every path.
//
// Open, stat and read failures come back unchanged; decode failures carry
// the file name and unwrap to ErrHeaderNotFound or ErrTruncatedInput.
func DecodeFile(name string) (*Header, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, err
	}
	size := stat.Size()

	head := make([]byte, DOSHeaderSize)
	if _, err := io.ReadFull(f, head); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, errors.Wrapf(ErrTruncatedInput,
				"%s: %d bytes cannot hold a DOS header", name, size)
		}
		return nil, err
	}

	lfanew := int64(binary.LittleEndian.Uint32(head[lfanewOffset:]) & 0xFFFF)

	// The decoder reads nothing past the PE header except the checksum
	// dword behind "Rich", and it probes the default header start even
	// when the PE header sits below that.
	limit := lfanew + 8
	if limit < defaultDansOffset+4 {
		limit = defaultDansOffset + 4
	}
	if limit > size {
		limit = size
	}

	data := make([]byte, limit)
	copy(data, head)
	if limit > DOSHeaderSize {
		if _, err := io.ReadFull(f, data[DOSHeaderSize:]); err != nil {
			return nil, err
		}
	}

	h, err := Decode(data)
	if err != nil {
		return nil, errors.WithMessage(err, name)
	}
	h.Source = name
	return h, nil
}
