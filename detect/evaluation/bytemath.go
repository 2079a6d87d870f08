package evaluation

import (
	"strconv"

	"nidscore/detect/ast"
)

// readNumber reads a number of format f at pos. ok is false when the buffer is too short or the text is not a number.
func readNumber(buf []byte, pos int, f ast.NumberFormat) (v uint64, ok bool) {
	if pos < 0 || pos+f.Bytes > len(buf) {
		return 0, false
	}
	b := buf[pos : pos+f.Bytes]

	if f.String {
		v, err := strconv.ParseUint(string(b), f.Base, 64)
		if err != nil {
			return 0, false
		}
		return v, true
	}

	for i := range b {
		if f.BigEndian {
			v = v<<8 | uint64(b[i])
		} else {
			v |= uint64(b[i]) << (8 * uint(i))
		}
	}
	return v, true
}

func base(cursor int, relative bool) int {
	if relative {
		return cursor
	}
	return 0
}

// byteJump returns the new cursor.
func byteJump(d *ast.ByteJump, buf []byte, cursor int) (int, bool) {
	pos := base(cursor, d.Relative) + int(d.Offset)
	v, ok := readNumber(buf, pos, d.NumberFormat)
	if !ok {
		return 0, false
	}

	if d.Multiplier > 1 {
		v *= uint64(d.Multiplier)
	}
	if d.Align && v%4 != 0 {
		v += 4 - v%4
	}
	if v > uint64(len(buf)) {
		return 0, false
	}

	next := pos + d.Bytes + int(v)
	if d.FromBeginning {
		next = int(v)
	}
	next += int(d.PostOffset)

	if next < 0 || next > len(buf) {
		return 0, false
	}
	return next, true
}

func byteTest(d *ast.ByteTest, buf []byte, cursor int) bool {
	v, ok := readNumber(buf, base(cursor, d.Relative)+int(d.Offset), d.NumberFormat)
	if !ok {
		return false
	}

	var match bool
	switch d.Op {
	case ast.OpLess:
		match = v < d.Value
	case ast.OpGreater:
		match = v > d.Value
	case ast.OpEqual:
		match = v == d.Value
	case ast.OpAnd:
		match = v&d.Value != 0
	case ast.OpOr:
		match = v^d.Value != 0
	case ast.OpLessEqual:
		match = v <= d.Value
	case ast.OpGreaterEqual:
		match = v >= d.Value
	}

	return match != d.Negated
}

// byteExtract returns the extracted value and the cursor past the bytes read.
func byteExtract(d *ast.ByteExtract, buf []byte, cursor int) (v uint64, end int, ok bool) {
	pos := base(cursor, d.Relative) + int(d.Offset)
	v, ok = readNumber(buf, pos, d.NumberFormat)
	if !ok {
		return 0, 0, false
	}

	if d.Multiplier > 1 {
		v *= uint64(d.Multiplier)
	}
	if d.Align > 1 && v%uint64(d.Align) != 0 {
		v += uint64(d.Align) - v%uint64(d.Align)
	}

	return v, pos + d.Bytes, true
}
