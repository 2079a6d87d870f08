// Package encoding normalizes raw HTTP fields into the buffers signatures inspect.
package encoding

import (
	"bytes"
	"strings"
)

// NormalizeURI turns a raw request target into the normalized form inspected by http_uri: percent escapes are
// decoded, repeated slashes collapsed and dot segments removed from the path. Invalid escapes are kept as is.
// The query is only unescaped.
func NormalizeURI(raw []byte) []byte {
	path, query := raw, []byte(nil)
	if i := bytes.IndexByte(raw, '?'); i >= 0 {
		path, query = raw[:i], raw[i:]
	}

	out := removeDotSegments(weakUnescape(path))
	if query != nil {
		out = append(out, weakUnescape(query)...)
	}
	return out
}

// NormalizeHost lowercases a raw host header and drops a trailing dot and port.
func NormalizeHost(raw []byte) []byte {
	h := strings.ToLower(string(bytes.TrimSpace(raw)))
	if i := strings.LastIndexByte(h, ':'); i >= 0 && !strings.HasSuffix(h, "]") {
		h = h[:i]
	}
	return []byte(strings.TrimSuffix(h, "."))
}

// weakUnescape decodes %XX escapes, leaving the bytes of invalid or unfinished escapes untouched.
func weakUnescape(s []byte) []byte {
	if bytes.IndexByte(s, '%') < 0 {
		return append([]byte(nil), s...)
	}

	buf := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '%' && i+2 < len(s) && isHexChar(s[i+1]) && isHexChar(s[i+2]) {
			buf = append(buf, unhex(s[i+1])<<4|unhex(s[i+2]))
			i += 2
			continue
		}
		buf = append(buf, s[i])
	}
	return buf
}

func removeDotSegments(p []byte) []byte {
	if len(p) == 0 {
		return p
	}

	absolute := p[0] == '/'
	trailing := p[len(p)-1] == '/'

	var segs []string
	for _, seg := range strings.Split(string(p), "/") {
		switch seg {
		case "", ".":
		case "..":
			if len(segs) > 0 {
				segs = segs[:len(segs)-1]
			}
		default:
			segs = append(segs, seg)
		}
	}

	out := strings.Join(segs, "/")
	if absolute {
		out = "/" + out
	}
	if trailing && len(segs) > 0 {
		out += "/"
	}
	return []byte(out)
}

func isHexChar(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func unhex(c byte) byte {
	switch {
	case '0' <= c && c <= '9':
		return c - '0'
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10
	case 'A' <= c && c <= 'F':
		return c - 'A' + 10
	}
	return 0
}
