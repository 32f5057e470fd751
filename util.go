package ws

import "github.com/gobwas/httphead"

// btsEqualFold checks s to be case insensitive equal to p.
// Note that p must be only ascii letters. That is, p is expected to be
// lowercased.
func btsEqualFold(s, p []byte) bool {
	if len(s) != len(p) {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if 'A' <= c && c <= 'Z' {
			c |= 'a' - 'A'
		}
		if c != p[i] {
			return false
		}
	}
	return true
}

// btsHasToken reports whether comma separated header value contains token.
// Matching is case insensitive; token must be lowercased.
func btsHasToken(header, token []byte) (has bool) {
	httphead.ScanTokens(header, func(v []byte) bool {
		has = btsEqualFold(v, token)
		return !has
	})
	return has
}

// btsSelectProtocol returns the first token of header accepted by check.
// It returns false as second value when header is malformed.
func btsSelectProtocol(header []byte, check func([]byte) bool) (ret []byte, ok bool) {
	var selected bool
	ok = httphead.ScanTokens(header, func(v []byte) bool {
		if check(v) {
			ret = v
			selected = true
		}
		return !selected
	})
	return ret, ok
}
