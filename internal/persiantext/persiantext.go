// Package persiantext normalizes Persian text for processing: it maps
// Arabic presentation forms and digits to their Persian or ASCII
// counterparts and decodes \uXXXX escape sequences.
//
// Persian text in the wild frequently mixes Arabic kaf/yeh with the
// Persian letters and carries digits from three different Unicode
// blocks, which breaks string comparison and numeric parsing alike.
package persiantext

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// unifyMap maps Arabic code points to their Persian equivalents and
// Arabic-Indic and Extended Arabic-Indic digits to ASCII.
var unifyMap = map[rune]rune{
	'ك': 'ک', // Arabic kaf to Persian keheh
	'ي': 'ی', // Arabic yeh to Persian yeh
	'ى': 'ی', // alef maksura to Persian yeh
	'ة': 'ه', // teh marbuta to heh
	'٠': '0', '١': '1', '٢': '2', '٣': '3', '٤': '4',
	'٥': '5', '٦': '6', '٧': '7', '٨': '8', '٩': '9',
	'۰': '0', '۱': '1', '۲': '2', '۳': '3', '۴': '4',
	'۵': '5', '۶': '6', '۷': '7', '۸': '8', '۹': '9',
}

// Unifier returns a transformer applying the normalization. It can be
// composed with other x/text transformers or wrapped around a reader.
func Unifier() transform.Transformer {
	return runes.Map(func(r rune) rune {
		if m, ok := unifyMap[r]; ok {
			return m
		}
		return r
	})
}

// Unify normalizes a string in one shot.
func Unify(s string) string {
	out, _, err := transform.String(Unifier(), s)
	if err != nil {
		// runes.Map cannot fail on valid input; malformed UTF-8 is
		// passed through replaced, which is the best we can do.
		return s
	}
	return out
}

// UnicodeUnescape decodes \uXXXX sequences in s, leaving all other
// text untouched. A backslash-u not followed by four hex digits is an
// error.
func UnicodeUnescape(s string) (string, error) {
	var b strings.Builder
	b.Grow(len(s))
	for {
		i := strings.Index(s, `\u`)
		if i < 0 {
			b.WriteString(s)
			return b.String(), nil
		}
		b.WriteString(s[:i])
		esc := s[i : i+2]
		rest := s[i+2:]
		if len(rest) < 4 {
			return "", fmt.Errorf("truncated escape %q", esc+rest)
		}
		code, err := strconv.ParseUint(rest[:4], 16, 32)
		if err != nil {
			return "", fmt.Errorf("bad escape %q: %w", esc+rest[:4], err)
		}
		b.WriteRune(rune(code))
		s = rest[4:]
	}
}
