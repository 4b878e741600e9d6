package text

import (
	"regexp"
	"strings"
)

// Canonical uppercase names of the sitting counselors.
const (
	NameDissei  = "DOMINGOS DISSEI"
	NameTorres  = "RICARDO TORRES"
	NameBraguim = "ROBERTO BRAGUIM"
	NameAntonio = "JOÃO ANTÔNIO"
	NameTuma    = "EDUARDO TUMA"
)

// initialsMap maps the 1–3 letter codes used by the e-TCM exports to the
// counselor's full name.
var initialsMap = map[string]string{
	"ET": NameTuma,
	"DD": NameDissei,
	"JA": NameAntonio,
	"RT": NameTorres,
	"RB": NameBraguim,
}

var nonLetterRe = regexp.MustCompile(`[^A-Za-z]`)

// ExpandName converts an initials code ("ET", "e.t.") to the full
// canonical uppercase name, or uppercases the input unchanged when it is
// not a known code. Empty input stays empty.
func ExpandName(s string) string {
	w := Whitespace(s)
	if w == "" {
		return ""
	}
	code := strings.ToUpper(nonLetterRe.ReplaceAllString(w, ""))
	if len(code) >= 1 && len(code) <= 3 {
		if full, ok := initialsMap[code]; ok {
			return full
		}
	}
	return strings.ToUpper(w)
}

// NormNameKey produces the accent-free lowercase key used to compare
// counselor names. Repairs the recurring "antanio" artifact so corrupted
// exports still match João Antônio.
func NormNameKey(s string) string {
	key := StripAccentsLower(Whitespace(s))
	if strings.Contains(key, "joao") && strings.Contains(key, "antanio") {
		key = strings.ReplaceAll(key, "antanio", "antonio")
	}
	return key
}

// CounselorTitle resolves the institutional title shown before a
// counselor's name in headings.
func CounselorTitle(name string) string {
	switch NormNameKey(name) {
	case "domingos dissei":
		return "CONSELHEIRO PRESIDENTE"
	case "ricardo torres":
		return "CONSELHEIRO VICE-PRESIDENTE"
	case "roberto braguim":
		return "CONSELHEIRO CORREGEDOR"
	}
	return "CONSELHEIRO"
}

// reviewerFallback pairs each relator with the reviewer assigned when the
// export leaves the column blank.
var reviewerFallback = map[string]string{
	"ricardo torres":  NameBraguim,
	"roberto braguim": NameAntonio,
	"joao antonio":    NameTuma,
	"eduardo tuma":    NameTorres,
	"domingos dissei": NameBraguim,
}

// ReviewerFor returns the default reviewer for a relator, or "" when the
// relator has no fixed pairing.
func ReviewerFor(relator string) string {
	return reviewerFallback[NormNameKey(relator)]
}

// chamberFallback resolves an ambiguous "câmara" marker (no number) by
// the relator who owns the sheet.
var chamberFallback = map[string]string{
	"domingos dissei": "1c",
	"ricardo torres":  "1c",
	"roberto braguim": "1c",
	"joao antonio":    "2c",
	"eduardo tuma":    "2c",
}

// ChamberFor returns the chamber ("1c"/"2c") a relator sits on, or ""
// when unknown.
func ChamberFor(relator string) string {
	return chamberFallback[NormNameKey(relator)]
}
