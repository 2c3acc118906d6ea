package cacheinfra

import "strings"

// matchPattern reports whether key matches a glob where '*' matches any run
// of characters, including ':' and '/'. No other metacharacters are
// recognised.
func matchPattern(pattern, key string) bool {
	if !strings.Contains(pattern, "*") {
		return pattern == key
	}

	segments := strings.Split(pattern, "*")
	first, last := segments[0], segments[len(segments)-1]
	if !strings.HasPrefix(key, first) {
		return false
	}
	rest := key[len(first):]

	for _, seg := range segments[1 : len(segments)-1] {
		idx := strings.Index(rest, seg)
		if idx < 0 {
			return false
		}
		rest = rest[idx+len(seg):]
	}

	return strings.HasSuffix(rest, last)
}
