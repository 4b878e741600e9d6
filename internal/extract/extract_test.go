package extract

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/rfgon/pautagen/internal/text"
)

func writeXLSX(t *testing.T, path string, rows [][]string) {
	t.Helper()
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		for j, cell := range row {
			name, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				t.Fatal(err)
			}
			if err := f.SetCellValue(sheet, name, cell); err != nil {
				t.Fatal(err)
			}
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}
}

func TestFileHeaderDetection(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "PLENARIO_TESTE.xlsx")
	writeXLSX(t, path, [][]string{
		{"Marcador", "Processo", "Data", "Objeto", "Relator", "Revisor", "Motivo"},
		{"", "TC/001234/2020", "", "Contrato de obras", "DD", "RT", ""},
		{"", "TC/005678/2021", "", "Recurso interposto", "ET", "-", "Reinclusão"},
	})

	rows, err := File(path)
	if err != nil {
		t.Fatalf("File: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}

	r := rows[0]
	if r.ProcessID != "TC/001234/2020" {
		t.Errorf("process = %q", r.ProcessID)
	}
	if r.Relator != text.NameDissei {
		t.Errorf("relator = %q, want expanded initials", r.Relator)
	}
	if r.Reviewer != text.NameTorres {
		t.Errorf("reviewer = %q", r.Reviewer)
	}
	if r.Competency != "pleno" {
		t.Errorf("competency = %q, want pleno from filename", r.Competency)
	}

	if !rows[1].Reinclusion {
		t.Error("reinclusion reason not flagged")
	}
	// Tuma with "-" reviewer falls back to the pairing table.
	if rows[1].Reviewer != text.NameTorres {
		t.Errorf("fallback reviewer = %q, want %q", rows[1].Reviewer, text.NameTorres)
	}
}

func TestFileDropsIncompleteRows(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "1CAMARA_TESTE.xlsx")
	writeXLSX(t, path, [][]string{
		{"Processo", "Objeto", "Relator"},
		{"TC/000001/2020", "Contrato", "DD"},
		{"", "Objeto sem processo", "DD"},
		{"TC/000002/2020", "", "DD"},
	})

	rows, err := File(path)
	if err != nil {
		t.Fatalf("File: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1 (incomplete rows dropped)", len(rows))
	}
	if rows[0].Competency != "1c" {
		t.Errorf("competency = %q, want 1c from filename", rows[0].Competency)
	}
}

func TestFileCompetencyMarkerLatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "export.xlsx")
	writeXLSX(t, path, [][]string{
		{"Marcador", "Processo", "Data", "Objeto", "Relator"},
		{"PLENO", "", "", "", ""},
		{"", "TC/000001/2020", "", "Contrato A", "DD"},
		{"1ª Câmara", "", "", "", ""},
		{"", "TC/000002/2020", "", "Contrato B", "DD"},
		{"", "TC/000003/2020", "", "Contrato C", "RT"},
	})

	rows, err := File(path)
	if err != nil {
		t.Fatalf("File: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}
	if rows[0].Competency != "pleno" {
		t.Errorf("row 0 competency = %q, want pleno", rows[0].Competency)
	}
	// Marker latches until the next one appears.
	if rows[1].Competency != "1c" || rows[2].Competency != "1c" {
		t.Errorf("latched competencies = %q, %q, want 1c", rows[1].Competency, rows[2].Competency)
	}
}

func TestFileRelatorFromFilename(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "2CAMARA_EDUARDO_TUMA.xlsx")
	writeXLSX(t, path, [][]string{
		{"Processo", "Data", "Objeto"},
		{"TC/000001/2020", "", "Contrato"},
	})

	rows, err := File(path)
	if err != nil {
		t.Fatalf("File: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	if rows[0].Relator != text.NameTuma {
		t.Errorf("relator = %q, want from filename", rows[0].Relator)
	}
	if rows[0].Competency != "2c" {
		t.Errorf("competency = %q, want 2c", rows[0].Competency)
	}
}

func TestFileSubjectAltColumn(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "PLENO_DD.xlsx")
	writeXLSX(t, path, [][]string{
		{"Processo", "Objeto", "Assunto", "Relator"},
		{"TC/000001/2020", "", "Assunto alternativo", "DD"},
	})

	rows, err := File(path)
	if err != nil {
		t.Fatalf("File: %v", err)
	}
	if len(rows) != 1 || rows[0].Subject != "Assunto alternativo" {
		t.Fatalf("alt subject column not used: %+v", rows)
	}
}

func TestFileHTMLExport(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "PLENARIO_RICARDO_TORRES.xls")
	html := `<html><body><table>
<tr><th>Processo</th><th>Objeto</th><th>Relator</th></tr>
<tr><td>TC/000042/2023</td><td>Auditoria programada</td><td>RT</td></tr>
</table></body></html>`
	if err := os.WriteFile(path, []byte(html), 0o644); err != nil {
		t.Fatal(err)
	}

	rows, err := File(path)
	if err != nil {
		t.Fatalf("File: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	if rows[0].ProcessID != "TC/000042/2023" || rows[0].Relator != text.NameTorres {
		t.Errorf("row = %+v", rows[0])
	}
}

func TestFileLegacyBinaryXLS(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "legacy.xls")
	ole := append([]byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}, make([]byte, 128)...)
	if err := os.WriteFile(path, ole, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := File(path); err == nil {
		t.Fatal("legacy binary workbook must fail to parse")
	}
}

func TestFolderSkipsBrokenFiles(t *testing.T) {
	dir := t.TempDir()
	writeXLSX(t, filepath.Join(dir, "PLENO_DD.xlsx"), [][]string{
		{"Processo", "Objeto", "Relator"},
		{"TC/000001/2020", "Contrato", "DD"},
	})
	if err := os.WriteFile(filepath.Join(dir, "broken.xlsx"), []byte("not a workbook"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644); err != nil {
		t.Fatal(err)
	}

	res, err := Folder(dir)
	if err != nil {
		t.Fatalf("Folder: %v", err)
	}
	if res.Files != 2 {
		t.Errorf("files = %d, want 2 spreadsheets considered", res.Files)
	}
	if res.Skipped != 1 {
		t.Errorf("skipped = %d, want 1", res.Skipped)
	}
	if len(res.Rows) != 1 {
		t.Errorf("rows = %d, want 1", len(res.Rows))
	}
}

func TestFolderSortsByRelatorSequence(t *testing.T) {
	dir := t.TempDir()
	writeXLSX(t, filepath.Join(dir, "a_tuma.xlsx"), [][]string{
		{"Processo", "Objeto", "Relator"},
		{"TC/000001/2020", "Contrato A", "ET"},
	})
	writeXLSX(t, filepath.Join(dir, "b_dissei.xlsx"), [][]string{
		{"Processo", "Objeto", "Relator"},
		{"TC/000002/2020", "Contrato B", "DD"},
	})

	res, err := Folder(dir)
	if err != nil {
		t.Fatalf("Folder: %v", err)
	}
	if len(res.Rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(res.Rows))
	}
	if res.Rows[0].Relator != text.NameDissei || res.Rows[1].Relator != text.NameTuma {
		t.Errorf("rows not sorted by relator sequence: %q, %q",
			res.Rows[0].Relator, res.Rows[1].Relator)
	}
}

func TestIsReinclusion(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"Reinclusão", true},
		{"RE-INCLUSÃO", true},
		{"reinc.", true},
		{"Retirado de pauta", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := isReinclusion(tt.in); got != tt.want {
			t.Errorf("isReinclusion(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
