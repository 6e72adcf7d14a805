package rich

// rol32 rotates v left by n bits inside a 32-bit word. n is reduced modulo
// 32; Go defines v>>32 as zero, so n == 0 needs no special case.
func rol32(v, n uint32) uint32 {
	n %= 32
	return v<<n | v>>(32-n)
}

// checksumOfStub folds the bytes preceding the header start: each byte is
// rotated left by its file offset and summed, starting from the header
// start offset itself. The e_lfanew field is skipped because the linker
// rewrites it after the checksum is computed, and the stored value never
// covers it.
func checksumOfStub(stub []byte) uint32 {
	sum := uint32(len(stub))
	for i, b := range stub {
		if i >= lfanewOffset && i < lfanewOffset+4 {
			continue
		}
		sum += rol32(uint32(b), uint32(i))
	}
	return sum
}
