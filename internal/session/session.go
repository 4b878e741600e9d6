// Package session computes sitting metadata: canonical session numbers,
// opening and closing dates per the court's scheduling rules, and the
// introductory paragraph of the agenda document.
package session

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	TypeOrdinary      = "ordinaria"
	TypeExtraordinary = "extraordinaria"

	FormatRemote   = "nao-presencial"
	FormatInPerson = "presencial"

	CompetencyPleno    = "pleno"
	CompetencyChamber1 = "1c"
	CompetencyChamber2 = "2c"
)

const defaultVenue = "NO PLENÁRIO DO EDIFÍCIO PREFEITO FARIA LIMA E COM TRANSMISSÃO AO VIVO " +
	"PELO CANAL TV TCMSP NO YOUTUBE."

// Meta describes the sitting whose agenda is being produced. Dates are
// kept as DD/MM/YYYY strings; malformed dates degrade to blank fields
// rather than failing a build.
type Meta struct {
	Number     string
	Type       string
	Format     string
	Competency string
	Opening    string // publication date before Normalize, opening date after
	Closing    string
	StartTime  string // in-person sittings only
	Venue      string
}

// Overrides clamp the computed dates after the scheduling rules run.
// They take absolute precedence and are the only way to bypass the
// rule table.
type Overrides struct {
	ForcedOpening string
	ForcedClosing string
}

// Normalize canonicalizes type, format and number and fills in the
// computed dates. now feeds the one real-time-dependent rule (in-person
// plenary sittings open on the Wednesday of the following week). The
// call is idempotent when ov is empty.
func (m *Meta) Normalize(ov Overrides, now time.Time) {
	m.Type = strings.ToLower(strings.TrimSpace(m.Type))
	m.Format = canonicalFormat(strings.ToLower(strings.TrimSpace(m.Format)))
	m.Competency = strings.ToLower(strings.TrimSpace(m.Competency))
	m.Number = OrdinalNumber(m.Number)
	if m.StartTime == "" {
		m.StartTime = "9h30min."
	}
	if m.Venue == "" {
		m.Venue = defaultVenue
	}

	pub, pubOK := ParseDateBR(m.Opening)

	// A supplied closing date freezes the opening date as given.
	if m.Closing == "" {
		var opening time.Time
		var computed bool
		switch {
		case m.Format == FormatInPerson && m.Competency == CompetencyPleno:
			opening, computed = weekdayOfNextWeek(now, time.Wednesday), true
		case pubOK && m.Format == FormatRemote && strings.HasPrefix(m.Type, "ordin"):
			opening, computed = nthWeekdayOfNextMonth(pub, time.Tuesday, 1), true
		case pubOK && m.Format == FormatRemote && strings.HasPrefix(m.Type, "extra"):
			opening, computed = nthWeekdayOfNextMonth(pub, time.Tuesday, 2), true
		}
		if computed {
			m.Opening = FormatDateBR(opening)
		}
	}

	if ov.ForcedOpening != "" {
		if d, ok := ParseDateBR(ov.ForcedOpening); ok {
			m.Opening = FormatDateBR(d)
		}
	}
	switch {
	case ov.ForcedClosing != "":
		if d, ok := ParseDateBR(ov.ForcedClosing); ok {
			m.Closing = FormatDateBR(d)
		}
	case m.Closing == "":
		if base, ok := ParseDateBR(m.Opening); ok {
			m.Closing = FormatDateBR(base.AddDate(0, 0, 15))
		}
	}
}

// OrdinalNumber appends the feminine ordinal marker to a purely numeric
// session number. Already-suffixed or non-numeric values pass through.
func OrdinalNumber(num string) string {
	num = strings.TrimSpace(num)
	if num == "" || strings.Contains(num, "ª") {
		return num
	}
	if _, err := strconv.Atoi(strings.ReplaceAll(num, ".", "")); err != nil {
		return num
	}
	return num + "ª"
}

func canonicalFormat(f string) string {
	switch f {
	case "nao presencial", "não presencial", "não-presencial", FormatRemote:
		return FormatRemote
	case FormatInPerson:
		return FormatInPerson
	}
	return f
}

// ParseDateBR parses DD/MM/YYYY. The bool reports success; callers leave
// the affected field blank on failure.
func ParseDateBR(s string) (time.Time, bool) {
	d, err := time.Parse("02/01/2006", strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

func FormatDateBR(d time.Time) string {
	return d.Format("02/01/2006")
}

// weekdayOfNextWeek returns the given weekday inside the ISO week that
// follows today's.
func weekdayOfNextWeek(today time.Time, wd time.Weekday) time.Time {
	// Monday=0 .. Sunday=6
	offset := (int(today.Weekday()) + 6) % 7
	mondayNext := today.AddDate(0, 0, 7-offset)
	target := (int(wd) + 6) % 7
	d := mondayNext.AddDate(0, 0, target)
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
}

// nthWeekdayOfNextMonth returns the n-th occurrence of wd in the month
// after d's.
func nthWeekdayOfNextMonth(d time.Time, wd time.Weekday, n int) time.Time {
	first := time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
	delta := (int(wd) - int(first.Weekday()) + 7) % 7
	return first.AddDate(0, 0, delta+7*(n-1))
}

// CompetencyLabel renders the judging body name used in headings.
func CompetencyLabel(comp string) string {
	switch strings.ToLower(strings.TrimSpace(comp)) {
	case CompetencyChamber1, "1ª", "1a", "primeira", "1ª camara", "1a camara":
		return "1ª CÂMARA"
	case CompetencyChamber2, "2ª", "2a", "segunda", "2ª camara", "2a camara":
		return "2ª CÂMARA"
	}
	return "PLENO"
}

// Intro renders the introductory paragraph for the sitting. Remote
// sittings cite the virtual-session rules; in-person sittings announce
// date, time and venue, with a dedicated phrasing for the full court.
func (m *Meta) Intro() string {
	typeUp := "EXTRAORDINÁRIA"
	if strings.HasPrefix(m.Type, "ordin") {
		typeUp = "ORDINÁRIA"
	}
	if m.Format == FormatRemote {
		return fmt.Sprintf(
			"DA %s SESSÃO %s NÃO PRESENCIAL EM AMBIENTE VIRTUAL DO TRIBUNAL DE CONTAS "+
				"DO MUNICÍPIO DE SÃO PAULO, nos termos do §2º do art. 153-a do Regimento Interno, "+
				"da Resolução nº 24/2025 e da Instrução nº 01/2025, cuja abertura está designada "+
				"para o dia %s e o encerramento previsto para 15 dias corridos (%s).",
			m.Number, typeUp, m.Opening, m.Closing)
	}
	if label := CompetencyLabel(m.Competency); label != "PLENO" {
		return fmt.Sprintf(
			"PAUTA DA %s SESSÃO %s DA %s DO TRIBUNAL DE CONTAS DO MUNICÍPIO DE SÃO PAULO, "+
				"A REALIZAR-SE NO DIA %s, ÀS %s, %s",
			m.Number, typeUp, label, m.Opening, m.StartTime, m.Venue)
	}
	return fmt.Sprintf(
		"PAUTA DA %s SESSÃO %s DO TRIBUNAL DE CONTAS DO MUNICÍPIO DE SÃO PAULO, "+
			"A REALIZAR-SE NO DIA %s, ÀS %s, %s",
		m.Number, typeUp, m.Opening, m.StartTime, m.Venue)
}

// DefaultIntro is used when no sitting metadata is supplied.
const DefaultIntro = "DA SESSÃO ORDINÁRIA NÃO PRESENCIAL DO TRIBUNAL DE CONTAS DO MUNICÍPIO DE " +
	"SÃO PAULO, nos termos das disposições da Resolução n.º 07/2019 e da Instrução n.º 01/2019."
