// Package text holds the normalization primitives shared by the whole
// pipeline: whitespace collapsing, accent stripping for match keys,
// mojibake repair and case-id canonicalization. All functions are total;
// they never fail, they degrade to the input (or empty string).
package text

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/unicode/norm"
)

var wsRe = regexp.MustCompile(`\s+`)

// Whitespace collapses runs of whitespace to single spaces and trims.
func Whitespace(s string) string {
	return strings.TrimSpace(wsRe.ReplaceAllString(s, " "))
}

// StripAccentsLower decomposes the string, drops combining marks and
// lowercases. Used only for matching keys, never for display.
func StripAccentsLower(s string) string {
	decomposed := norm.NFKD.String(s)
	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		if r > unicode.MaxASCII {
			continue
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// cp1252Table maps each rune back to the Windows-1252 byte it decodes
// from, falling back to Latin-1 for the undefined slots.
var cp1252Table = buildCP1252Table()

func buildCP1252Table() map[rune]byte {
	m := make(map[rune]byte, 256)
	for i := 0; i < 256; i++ {
		r := charmap.Windows1252.DecodeByte(byte(i))
		if r == utf8Replacement {
			// Undefined CP-1252 slot; Latin-1 identity.
			r = rune(i)
		}
		if _, seen := m[r]; !seen {
			m[r] = byte(i)
		}
	}
	return m
}

const utf8Replacement = '�'

// repairMojibakePairs re-decodes "Ã"/"Â" lead-byte artifacts left by a
// UTF-8 text read as CP-1252. One pass; callers iterate to a fixed point.
func repairMojibakePairs(s string) string {
	runes := []rune(s)
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(runes); i++ {
		ch := runes[i]
		if (ch == 'Ã' || ch == 'Â') && i+1 < len(runes) {
			if byt, ok := cp1252Table[runes[i+1]]; ok && byt >= 0x80 && byt <= 0xBF {
				lead := byte(0xC3)
				if ch == 'Â' {
					lead = 0xC2
				}
				decoded := string([]byte{lead, byt})
				if strings.ToValidUTF8(decoded, "") == decoded && decoded != "" {
					b.WriteString(decoded)
					i++
					continue
				}
			}
		}
		b.WriteRune(ch)
	}
	return b.String()
}

// RepairMojibake detects UTF-8 bytes mis-decoded as Latin-1/CP-1252 and
// re-decodes them. Applies up to 3 pair-repair passes because corruption
// can be nested; idempotent after the first full run.
func RepairMojibake(s string) string {
	out := s
	if strings.ContainsFunc(out, func(r rune) bool { return r >= 0x80 && r <= 0x9F }) {
		if fixed, ok := latin1Reencode(out); ok {
			out = fixed
		}
	}
	for i := 0; i < 3; i++ {
		fixed := repairMojibakePairs(out)
		if fixed == out {
			break
		}
		out = fixed
	}
	return out
}

// latin1Reencode maps each rune back to its Latin-1 byte and re-decodes
// the byte string as UTF-8. Fails (ok=false) if any rune is outside
// Latin-1 or the bytes are not valid UTF-8.
func latin1Reencode(s string) (string, bool) {
	buf := make([]byte, 0, len(s))
	for _, r := range s {
		if r > 0xFF {
			return "", false
		}
		buf = append(buf, byte(r))
	}
	out := string(buf)
	if strings.ToValidUTF8(out, "�") != out {
		return "", false
	}
	return out, true
}

var ctrlRe = regexp.MustCompile("[\x00-\x08\x0b\x0c\x0e-\x1f\x7f]|[-]")

// Clean repairs encoding damage when present and strips control
// characters. Safe on already-clean text.
func Clean(s string) string {
	if s == "" {
		return ""
	}
	out := s
	if ctrlRe.MatchString(out) || strings.ContainsAny(out, "ÃÂ�") {
		out = RepairMojibake(out)
	}
	return ctrlRe.ReplaceAllString(out, "")
}

var (
	tcIDRe    = regexp.MustCompile(`(?i)TCs?\s*[/\s]*([0-9.]+)\s*/\s*(\d{4})`)
	nonDigit  = regexp.MustCompile(`\D`)
	tcPadding = "000000"
)

// NormalizeTCID extracts and canonicalizes a case id to TC/NNNNNN/YYYY
// (sequence zero-padded to six digits). Returns "" when no id is found.
func NormalizeTCID(s string) string {
	if s == "" {
		return ""
	}
	m := tcIDRe.FindStringSubmatch(s)
	if m == nil {
		return ""
	}
	num := nonDigit.ReplaceAllString(m[1], "")
	if num == "" {
		return ""
	}
	if len(num) < 6 {
		num = tcPadding[:6-len(num)] + num
	}
	return "TC/" + num + "/" + m[2]
}

// FindTCIDs returns every distinct canonical case id referenced in s, in
// order of first appearance.
func FindTCIDs(s string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, m := range tcIDRe.FindAllString(s, -1) {
		norm := NormalizeTCID(m)
		if norm == "" || seen[norm] {
			continue
		}
		seen[norm] = true
		out = append(out, norm)
	}
	return out
}

var romanValues = []struct {
	val int
	sym string
}{
	{1000, "M"}, {900, "CM"}, {500, "D"}, {400, "CD"},
	{100, "C"}, {90, "XC"}, {50, "L"}, {40, "XL"},
	{10, "X"}, {9, "IX"}, {5, "V"}, {4, "IV"}, {1, "I"},
}

// Roman renders n as an uppercase roman numeral. Non-positive input is
// returned as decimal.
func Roman(n int) string {
	if n <= 0 {
		return ""
	}
	var b strings.Builder
	for _, rv := range romanValues {
		for n >= rv.val {
			b.WriteString(rv.sym)
			n -= rv.val
		}
	}
	return b.String()
}

// Alpha converts 1-based n to spreadsheet-style letters: 1->A, 26->Z,
// 27->AA.
func Alpha(n int) string {
	if n <= 0 {
		return "A"
	}
	var b []byte
	for n > 0 {
		n--
		b = append([]byte{byte('A' + n%26)}, b...)
		n /= 26
	}
	return string(b)
}
