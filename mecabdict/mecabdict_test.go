package mecabdict

import (
	"io"
	"strings"
	"testing"

	"github.com/npillmayer/wakachi"
)

func TestLexiconReader(t *testing.T) {
	csv := "東京,1,2,500,名詞,固有名詞\n\n\"1,5\",3,4,-10,数値\n"
	lr := NewLexiconReader(strings.NewReader(csv))

	e, err := lr.Next()
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if e.Surface != "東京" || e.Param.LeftID != 1 || e.Param.RightID != 2 ||
		e.Param.WordCost != 500 || e.Feature != "名詞,固有名詞" {
		t.Fatalf("unexpected entry: %+v", e)
	}

	e, err = lr.Next()
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if e.Surface != "1,5" || e.Param.WordCost != -10 || e.Feature != "数値" {
		t.Fatalf("quoted surface not handled: %+v", e)
	}

	if _, err = lr.Next(); err != io.EOF {
		t.Fatalf("expected io.EOF, got %v", err)
	}
}

func TestLexiconReaderBadLine(t *testing.T) {
	lr := NewLexiconReader(strings.NewReader("surface-only\n"))
	if _, err := lr.Next(); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestMatrixReader(t *testing.T) {
	mr := NewMatrixReader(strings.NewReader("2 3\n0 0 5\n1 2 -7\n"))
	nr, nl, err := mr.Dims()
	if err != nil {
		t.Fatalf("Dims failed: %v", err)
	}
	if nr != 2 || nl != 3 {
		t.Fatalf("Dims = %dx%d, want 2x3", nr, nl)
	}
	r, l, c, err := mr.Next()
	if err != nil || r != 0 || l != 0 || c != 5 {
		t.Fatalf("entry 1 = (%d,%d,%d,%v)", r, l, c, err)
	}
	r, l, c, err = mr.Next()
	if err != nil || r != 1 || l != 2 || c != -7 {
		t.Fatalf("entry 2 = (%d,%d,%d,%v)", r, l, c, err)
	}
	if _, _, _, err = mr.Next(); err != io.EOF {
		t.Fatalf("expected io.EOF, got %v", err)
	}
}

func TestMatrixReaderMissingHeader(t *testing.T) {
	mr := NewMatrixReader(strings.NewReader(""))
	if _, _, err := mr.Dims(); err == nil {
		t.Fatalf("expected error for missing header")
	}
}

func TestCharDefReader(t *testing.T) {
	src := `# comment line
DEFAULT 0 1 0
KATAKANA 1 1 2
0x30A1..0x30FA KATAKANA  # katakana block
0x30FC KATAKANA
`
	cr := NewCharDefReader(strings.NewReader(src))

	rec, err := cr.Next()
	if err != nil || rec.Category == nil {
		t.Fatalf("expected category record, got %+v (%v)", rec, err)
	}
	if rec.Category.Name != "DEFAULT" || rec.Category.Invoke || !rec.Category.Group || rec.Category.Length != 0 {
		t.Fatalf("DEFAULT parsed wrong: %+v", rec.Category)
	}

	rec, err = cr.Next()
	if err != nil || rec.Category == nil || rec.Category.Name != "KATAKANA" ||
		!rec.Category.Invoke || rec.Category.Length != 2 {
		t.Fatalf("KATAKANA parsed wrong: %+v (%v)", rec.Category, err)
	}

	rec, err = cr.Next()
	if err != nil || rec.Range == nil {
		t.Fatalf("expected range record, got %+v (%v)", rec, err)
	}
	if rec.Range.Lo != 0x30A1 || rec.Range.Hi != 0x30FA || len(rec.Range.Categories) != 1 ||
		rec.Range.Categories[0] != "KATAKANA" {
		t.Fatalf("range parsed wrong: %+v", rec.Range)
	}

	rec, err = cr.Next()
	if err != nil || rec.Range == nil || rec.Range.Lo != 0x30FC || rec.Range.Hi != 0x30FC {
		t.Fatalf("single code point parsed wrong: %+v (%v)", rec.Range, err)
	}

	if _, err = cr.Next(); err != io.EOF {
		t.Fatalf("expected io.EOF, got %v", err)
	}
}

func TestUnkReader(t *testing.T) {
	ur := NewUnkReader(strings.NewReader("DEFAULT,0,0,100,記号,一般\n"))
	e, err := ur.Next()
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if e.Category != "DEFAULT" || e.Param.WordCost != 100 || e.Feature != "記号,一般" {
		t.Fatalf("unexpected entry: %+v", e)
	}
	if _, err = ur.Next(); err != io.EOF {
		t.Fatalf("expected io.EOF, got %v", err)
	}
}

func TestFromReaders(t *testing.T) {
	dict, err := FromReaders(
		strings.NewReader("本,0,0,2,hon\n"),
		strings.NewReader("1 1\n0 0 0\n"),
		strings.NewReader("DEFAULT 0 1 0\n"),
		strings.NewReader("DEFAULT,0,0,100,*\n"),
	)
	if err != nil {
		t.Fatalf("FromReaders failed: %v", err)
	}
	if dict.NumWords() != 1 {
		t.Fatalf("NumWords = %d, want 1", dict.NumWords())
	}
	if nr, nl := dict.ConnectorDims(); nr != 1 || nl != 1 {
		t.Fatalf("ConnectorDims = %dx%d, want 1x1", nr, nl)
	}

	tok, err := wakachi.NewTokenizer(dict)
	if err != nil {
		t.Fatalf("NewTokenizer failed: %v", err)
	}
	w := tok.NewWorker()
	w.SetText("本")
	w.Tokenize()
	if w.NumTokens() != 1 {
		t.Fatalf("NumTokens = %d, want 1", w.NumTokens())
	}
	if got := w.Token(0).Feature(); got != "hon" {
		t.Fatalf("feature = %q, want hon", got)
	}
}
