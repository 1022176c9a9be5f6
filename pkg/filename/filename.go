// Package filename normalises user supplied file names for headers, archive
// entries and extension lookups.
package filename

import (
	"fmt"
	"net/url"
	"path"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const maxLen = 255

// Base strips directories and control characters. It keeps unicode; empty
// and dot-only names become "file".
func Base(name string) string {
	s := strings.ReplaceAll(strings.TrimSpace(name), "\\", "/")
	s = path.Base(s)
	s = strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, s)
	if s == "." || s == ".." || s == "/" || s == "" {
		return "file"
	}
	if len(s) > maxLen {
		ext := path.Ext(s)
		if len(ext) > 16 {
			ext = ""
		}
		s = truncate(s[:len(s)-len(ext)], maxLen-len(ext)) + ext
	}
	return s
}

// ASCII folds accents and replaces anything outside printable ASCII with
// '_', for header fallbacks.
func ASCII(name string) string {
	t := transform.Chain(norm.NFD, transform.RemoveFunc(isMn), norm.NFC)
	s, _, err := transform.String(t, Base(name))
	if err != nil {
		s = Base(name)
	}

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r == '"' || r == '\\':
			b.WriteByte('_')
		case r >= 0x20 && r < 0x7f:
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

// Extension returns the lower-case extension without the dot.
func Extension(name string) string {
	return strings.ToLower(strings.TrimPrefix(path.Ext(Base(name)), "."))
}

// ContentDisposition renders a header value with an ASCII filename and an
// RFC 5987 filename* carrying the original name.
func ContentDisposition(kind, name string) string {
	base := Base(name)
	v := fmt.Sprintf(`%s; filename="%s"`, kind, ASCII(base))
	if ASCII(base) != base {
		v += "; filename*=UTF-8''" + url.PathEscape(base)
	}
	return v
}

// Deduper hands out unique names: the second "a.txt" becomes "a (1).txt".
type Deduper struct {
	seen map[string]struct{}
}

func NewDeduper() *Deduper { return &Deduper{seen: make(map[string]struct{})} }

func (d *Deduper) Next(name string) string {
	name = Base(name)
	if _, ok := d.seen[name]; !ok {
		d.seen[name] = struct{}{}
		return name
	}

	ext := path.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for i := 1; ; i++ {
		candidate := stem + " (" + strconv.Itoa(i) + ")" + ext
		if _, ok := d.seen[candidate]; !ok {
			d.seen[candidate] = struct{}{}
			return candidate
		}
	}
}

func truncate(s string, n int) string {
	for len(s) > n && len(s) > 0 {
		_, size := utf8.DecodeLastRuneInString(s)
		s = s[:len(s)-size]
	}
	return s
}

func isMn(r rune) bool { return unicode.Is(unicode.Mn, r) }
