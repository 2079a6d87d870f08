package testutils

// Payload builds a buffer of length bytes filled with copies of fill, with tail written over its end.
// A nil fill uses 'a' bytes.
func Payload(fill []byte, length int, tail []byte) []byte {
	if len(fill) == 0 {
		fill = []byte{'a'}
	}
	if length < len(tail) {
		length = len(tail)
	}

	b := make([]byte, length)
	for n := 0; n < length; {
		n += copy(b[n:], fill)
	}
	copy(b[length-len(tail):], tail)
	return b
}
