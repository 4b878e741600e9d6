package text

import (
	"reflect"
	"testing"
)

func TestWhitespace(t *testing.T) {
	tests := []struct{ in, want string }{
		{"  a   b\tc\n", "a b c"},
		{"", ""},
		{"único", "único"},
	}
	for _, tt := range tests {
		if got := Whitespace(tt.in); got != tt.want {
			t.Errorf("Whitespace(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestStripAccentsLower(t *testing.T) {
	tests := []struct{ in, want string }{
		{"JOÃO ANTÔNIO", "joao antonio"},
		{"Revisão", "revisao"},
		{"sem acento", "sem acento"},
	}
	for _, tt := range tests {
		if got := StripAccentsLower(tt.in); got != tt.want {
			t.Errorf("StripAccentsLower(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRepairMojibake(t *testing.T) {
	tests := []struct {
		name, in, want string
	}{
		{"double encoded a tilde", "SÃ£o Paulo", "São Paulo"},
		{"double encoded c cedilla", "InstruÃ§Ã£o", "Instrução"},
		{"clean text untouched", "Sessão Ordinária", "Sessão Ordinária"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RepairMojibake(tt.in); got != tt.want {
				t.Errorf("RepairMojibake(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestRepairMojibakeFixedPoint(t *testing.T) {
	inputs := []string{"SÃ£o Paulo", "ResoluÃ§Ã£o", "texto limpo", ""}
	for _, in := range inputs {
		once := RepairMojibake(in)
		twice := RepairMojibake(once)
		if once != twice {
			t.Errorf("repair not idempotent for %q: %q vs %q", in, once, twice)
		}
	}
}

func TestNormalizeTCID(t *testing.T) {
	tests := []struct{ in, want string }{
		{"TC 72.000.123/2020", "TC/72000123/2020"},
		{"tc/5107/2016", "TC/005107/2016"},
		{"TC/005107/2016", "TC/005107/2016"},
		{"TC  12129 / 2023", "TC/012129/2023"},
		{"sem processo", ""},
	}
	for _, tt := range tests {
		if got := NormalizeTCID(tt.in); got != tt.want {
			t.Errorf("NormalizeTCID(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFindTCIDs(t *testing.T) {
	in := "Tramitam em conjunto os TCs 5107/2016 e TC/5116/2016 e TC/005107/2016"
	want := []string{"TC/005107/2016", "TC/005116/2016"}
	if got := FindTCIDs(in); !reflect.DeepEqual(got, want) {
		t.Errorf("FindTCIDs = %v, want %v", got, want)
	}
}

func TestRoman(t *testing.T) {
	tests := []struct {
		in   int
		want string
	}{
		{1, "I"}, {4, "IV"}, {5, "V"}, {9, "IX"}, {14, "XIV"}, {40, "XL"},
	}
	for _, tt := range tests {
		if got := Roman(tt.in); got != tt.want {
			t.Errorf("Roman(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestAlpha(t *testing.T) {
	tests := []struct {
		in   int
		want string
	}{
		{1, "A"}, {2, "B"}, {26, "Z"}, {27, "AA"},
	}
	for _, tt := range tests {
		if got := Alpha(tt.in); got != tt.want {
			t.Errorf("Alpha(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestExpandName(t *testing.T) {
	tests := []struct{ in, want string }{
		{"ET", NameTuma},
		{"et", NameTuma},
		{"dd", NameDissei},
		{"J.A.", NameAntonio},
		{"RT", NameTorres},
		{"RB", NameBraguim},
		{"Nome Completo Qualquer", "NOME COMPLETO QUALQUER"},
	}
	for _, tt := range tests {
		if got := ExpandName(tt.in); got != tt.want {
			t.Errorf("ExpandName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormNameKey(t *testing.T) {
	if got := NormNameKey("JOÃO ANTÔNIO"); got != "joao antonio" {
		t.Errorf("NormNameKey = %q", got)
	}
	// Corrupted encodings of the same name must land on the same key.
	if got := NormNameKey("JOÃO ANTÃNIO"); got != "joao antonio" {
		t.Errorf("NormNameKey corrupted = %q", got)
	}
}

func TestReviewerFor(t *testing.T) {
	if got := ReviewerFor(NameDissei); got == "" || got == "-" {
		t.Errorf("paired relator must yield a reviewer, got %q", got)
	}
	if got := ReviewerFor("RELATOR INEXISTENTE"); got != "" {
		t.Errorf("unpaired relator must yield empty, got %q", got)
	}
}

func TestCounselorTitle(t *testing.T) {
	tests := []struct{ in, want string }{
		{NameDissei, "CONSELHEIRO PRESIDENTE"},
		{NameTorres, "CONSELHEIRO VICE-PRESIDENTE"},
		{NameBraguim, "CONSELHEIRO CORREGEDOR"},
		{NameTuma, "CONSELHEIRO"},
	}
	for _, tt := range tests {
		if got := CounselorTitle(tt.in); got != tt.want {
			t.Errorf("CounselorTitle(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
