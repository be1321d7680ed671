package runner

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultMaxInputSize bounds a raw answer when server.max_input_size is unset.
const DefaultMaxInputSize = 4096

var (
	ErrInputTooLarge = errors.New("answer exceeds maximum allowed size")
	ErrInvalidUTF8   = errors.New("answer contains invalid UTF-8 sequences")
)

// SanitizeAnswer checks a raw answer against limit bytes and rewrites it as
// the single line the validators and transcripts expect:
//
//   - terminal escape sequences and other control characters are dropped
//   - zero width and byte order marks are dropped
//   - line breaks, tabs and repeated spaces fold into one space
//   - surrounding space is trimmed
//
// A non-positive limit uses DefaultMaxInputSize. Oversized answers are
// rejected, never truncated.
func SanitizeAnswer(input string, limit int) (string, error) {
	if limit <= 0 {
		limit = DefaultMaxInputSize
	}
	if len(input) > limit {
		return "", fmt.Errorf("%w: size=%d limit=%d", ErrInputTooLarge, len(input), limit)
	}
	if !utf8.ValidString(input) {
		return "", ErrInvalidUTF8
	}

	var b strings.Builder
	b.Grow(len(input))
	pendingSpace := false
	for i := 0; i < len(input); {
		r, size := utf8.DecodeRuneInString(input[i:])
		switch {
		case r == 0x1b:
			size = escapeLen(input[i:])
		case unicode.IsSpace(r):
			pendingSpace = b.Len() > 0
		case unicode.IsControl(r), unicode.Is(unicode.Cf, r):
		default:
			if pendingSpace {
				b.WriteByte(' ')
				pendingSpace = false
			}
			b.WriteRune(r)
		}
		i += size
	}
	return b.String(), nil
}

// escapeLen returns the byte length of the escape sequence starting at s[0].
func escapeLen(s string) int {
	if len(s) < 2 {
		return len(s)
	}
	switch s[1] {
	case '[': // CSI ends with a byte in @..~
		for i := 2; i < len(s); i++ {
			if s[i] >= 0x40 && s[i] <= 0x7e {
				return i + 1
			}
		}
		return len(s)
	case ']': // OSC ends with BEL or ESC \
		for i := 2; i < len(s); i++ {
			if s[i] == '\a' {
				return i + 1
			}
			if s[i] == 0x1b && i+1 < len(s) && s[i+1] == '\\' {
				return i + 2
			}
		}
		return len(s)
	}
	if s[1] < utf8.RuneSelf {
		return 2
	}
	return 1
}
