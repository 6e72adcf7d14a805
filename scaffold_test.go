package rich

import (
	"bytes"
	"encoding/binary"
	"testing"
)

// richSpec describes a synthetic Rich header for tests.
type richSpec struct {
	dansOffset int     // 0 means the default 0x80
	entries    []Entry // written in order, duplicate tool ids allowed
	padAfter   int     // bytes between the checksum dword and the PE header
	stubByte   byte    // DOS stub filler, 0 means 0xCC
}

// builtRich is a scaffolded PE leading region with a valid, correctly
// obfuscated and checksummed Rich header, plus the geometry it was built
// with.
type builtRich struct {
	data []byte
	key  uint32
	dans int
	rich int
}

// buildRich encodes spec into the leading bytes of a synthetic PE image:
// MZ magic, stub filler, e_lfanew, then the masked DanS block, entry
// table, "Rich" and the stored checksum. The checksum key depends on every
// stub byte, so an unlucky key could make some unrelated dword XOR-decode
// to "DanS" or spell "Rich" early; a salt byte in the stub is bumped until
// the package's own locators land exactly on the intended offsets.
func buildRich(t *testing.T, spec richSpec) builtRich {
	t.Helper()

	dans := spec.dansOffset
	if dans == 0 {
		dans = defaultDansOffset
	}
	if dans < scanStart || dans%4 != 0 {
		t.Fatalf("buildRich: dans offset 0x%X not representable", dans)
	}

	for salt := 0; salt < 256; salt++ {
		b := assembleRich(spec, dans, byte(salt))
		lfanew := int(binary.LittleEndian.Uint32(b.data[lfanewOffset:]) & 0xFFFF)

		search := b.data
		if lfanew < len(search) {
			search = search[:lfanew]
		}
		if bytes.Index(search, []byte(RichSignature)) != b.rich {
			continue
		}
		if got, err := findDansOffset(b.data, b.key, b.rich, lfanew); err != nil || got != dans {
			continue
		}
		return b
	}
	t.Fatalf("buildRich: no salt yields an unambiguous header")
	return builtRich{}
}

func assembleRich(spec richSpec, dans int, salt byte) builtRich {
	stubFill := spec.stubByte
	if stubFill == 0 {
		stubFill = 0xCC
	}
	pad := spec.padAfter
	if pad == 0 {
		pad = 8
	}

	rich := dans + entryTableSkip + len(spec.entries)*entrySize
	lfanew := rich + 8 + pad
	total := lfanew + 8
	if total < defaultDansOffset+4 {
		total = defaultDansOffset + 4
	}

	data := make([]byte, total)
	data[0] = 'M'
	data[1] = 'Z'
	data[2] = salt
	for i := 3; i < dans; i++ {
		data[i] = stubFill
	}
	binary.LittleEndian.PutUint32(data[lfanewOffset:], uint32(lfanew))

	key := checksumOfStub(data[:dans])
	for _, e := range spec.entries {
		key += rol32(uint32(e.ToolID)<<16|uint32(e.BuildVersion), e.UseCount)
	}

	binary.LittleEndian.PutUint32(data[dans:], DansSignature^key)
	for i := 1; i < 4; i++ {
		binary.LittleEndian.PutUint32(data[dans+i*4:], key) // pads decode to zero
	}
	for i, e := range spec.entries {
		off := dans + entryTableSkip + i*entrySize
		binary.LittleEndian.PutUint32(data[off:], (uint32(e.ToolID)<<16|uint32(e.BuildVersion))^key)
		binary.LittleEndian.PutUint32(data[off+4:], e.UseCount^key)
	}
	copy(data[rich:], RichSignature)
	binary.LittleEndian.PutUint32(data[rich+4:], key)
	copy(data[lfanew:], "PE\x00\x00")

	return builtRich{data: data, key: key, dans: dans, rich: rich}
}
