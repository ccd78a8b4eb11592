package wire

// Header is a single response header. Name and Value are views into
// the receive buffer passed to [ReadResponse]; they remain valid only
// as long as that buffer is not reused.
type Header struct {
	Name  []byte
	Value []byte
}

// Headers is the ordered header block of a parsed response.
type Headers []Header

// Get returns the value of the first header matching name,
// case-insensitively.
func (hs Headers) Get(name string) (string, bool) {
	if v, ok := hs.get(name); ok {
		return string(v), true
	}

	return "", false
}

// get is the allocation-free lookup used by the framing decision.
func (hs Headers) get(name string) ([]byte, bool) {
	for _, h := range hs {
		if equalFold(h.Name, name) {
			return h.Value, true
		}
	}

	return nil, false
}

// equalFold reports whether b matches s ignoring ASCII case. Header
// names are ASCII per RFC 7230, so no UTF-8 handling is needed.
func equalFold(b []byte, s string) bool {
	if len(b) != len(s) {
		return false
	}
	for i := 0; i < len(b); i++ {
		if lowerASCII(b[i]) != lowerASCII(s[i]) {
			return false
		}
	}

	return true
}

func lowerASCII(c byte) byte {
	if 'A' <= c && c <= 'Z' {
		return c + ('a' - 'A')
	}

	return c
}
