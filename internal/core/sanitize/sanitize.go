// Package sanitize cleans free text coming out of spreadsheet exports before it is stored
// Pipeline order
// 1 UTF-8 repair drop invalid bytes
// 2 Unicode NFKC normalization
// 3 Private use area remap for emoji mangled by older exporters
// 4 Strip C0 controls except LF TAB and CR
// 5 NFKC again so removing a control never leaves an unnormalized pair behind
package sanitize

import (
	"strings"
	"sync"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Result carries the sanitized text next to the untouched input
type Result struct {
	Sanitized string
	Original  string
	Changed   bool
}

// puaLow and puaHigh bound the private use block we remap
const (
	puaLow  = 0xF300
	puaHigh = 0xF8FF
)

// puaEmoji maps private use code points to the emoji they stood for.
// U+F970 and U+FA79 sit outside the remapped block and never fire
var puaEmoji = map[rune]rune{
	0xF64F: '\U0001F64F', // 🙏
	0xF60D: '\U0001F60D', // 😍
	0xF970: '\U0001F970', // 🥰
	0xFA79: '\U0001FA79', // 🩹
}

var chainPool = sync.Pool{
	New: func() any {
		return transform.Chain(
			norm.NFKC,
			runes.Map(remapPUA),
			runes.Remove(runes.Predicate(IsStrippedControl)),
			norm.NFKC,
		)
	},
}

// Sanitize never fails; empty input yields an empty, unchanged result
func Sanitize(in string) Result {
	if in == "" {
		return Result{}
	}

	s := strings.ToValidUTF8(in, "")

	tr := chainPool.Get().(transform.Transformer)
	out, _, err := transform.String(tr, s)
	tr.Reset()
	chainPool.Put(tr)
	if err != nil {
		out = s
	}

	return Result{Sanitized: out, Original: in, Changed: out != in}
}

// IsStrippedControl reports whether r is a C0 control we drop.
// LF and TAB are kept, and so is CR
func IsStrippedControl(r rune) bool {
	switch {
	case r <= 0x08:
		return r >= 0
	case r == 0x0B, r == 0x0C:
		return true
	case r >= 0x0E && r <= 0x1F:
		return true
	}
	return false
}

func remapPUA(r rune) rune {
	if r < puaLow || r > puaHigh {
		return r
	}
	if e, ok := puaEmoji[r]; ok {
		return e
	}
	return r
}
