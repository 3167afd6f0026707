package upload

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// IsValidPath reports whether p can be used as a stored file name. The name
// must be relative, must not end with "/", and must not contain "..", empty
// or "." segments, the characters \ ? # ~, control characters, whitespace or
// invalid UTF-8.
func IsValidPath(p string) bool {
	if p == "" || p == "." || p[0] == '/' || strings.HasSuffix(p, "/") {
		return false
	}

	if strings.Contains(p, "..") || strings.Contains(p, "//") {
		return false
	}

	if strings.ContainsAny(p, `\?#~`) || !utf8.ValidString(p) {
		return false
	}

	if strings.Contains(p, "/./") || strings.HasSuffix(p, "/.") || strings.HasPrefix(p, "./") {
		return false
	}

	for _, r := range p {
		if r < 0x20 || r == 0x7f || unicode.IsSpace(r) {
			return false
		}
	}

	return true
}
