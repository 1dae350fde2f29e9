package wakachi

import (
	"errors"
	"io"
	"testing"
)

type sliceLexiconReader struct {
	entries []LexiconEntry
	index   int
}

func (r *sliceLexiconReader) Next() (LexiconEntry, error) {
	if r.index >= len(r.entries) {
		return LexiconEntry{}, io.EOF
	}
	e := r.entries[r.index]
	r.index++
	return e, nil
}

type sliceMatrixReader struct {
	numRight, numLeft int
	entries           [][3]int
	index             int
}

func (r *sliceMatrixReader) Dims() (int, int, error) {
	return r.numRight, r.numLeft, nil
}

func (r *sliceMatrixReader) Next() (uint16, uint16, int16, error) {
	if r.index >= len(r.entries) {
		return 0, 0, 0, io.EOF
	}
	e := r.entries[r.index]
	r.index++
	return uint16(e[0]), uint16(e[1]), int16(e[2]), nil
}

type sliceCharDefReader struct {
	recs  []CharDefRecord
	index int
}

func (r *sliceCharDefReader) Next() (CharDefRecord, error) {
	if r.index >= len(r.recs) {
		return CharDefRecord{}, io.EOF
	}
	rec := r.recs[r.index]
	r.index++
	return rec, nil
}

type sliceUnkReader struct {
	entries []UnkEntry
	index   int
}

func (r *sliceUnkReader) Next() (UnkEntry, error) {
	if r.index >= len(r.entries) {
		return UnkEntry{}, io.EOF
	}
	e := r.entries[r.index]
	r.index++
	return e, nil
}

func categoryRec(name string, invoke, group bool, length uint16) CharDefRecord {
	return CharDefRecord{Category: &CategoryDef{Name: name, Invoke: invoke, Group: group, Length: length}}
}

func rangeRec(lo, hi rune, cats ...string) CharDefRecord {
	return CharDefRecord{Range: &CharRange{Lo: lo, Hi: hi, Categories: cats}}
}

func defaultOnlyChars() *sliceCharDefReader {
	return &sliceCharDefReader{recs: []CharDefRecord{categoryRec("DEFAULT", false, true, 0)}}
}

func defaultUnk() *sliceUnkReader {
	return &sliceUnkReader{entries: []UnkEntry{
		{Category: "DEFAULT", Param: WordParam{0, 0, 100}, Feature: "*"},
	}}
}

func oneByOneMatrix() *sliceMatrixReader {
	return &sliceMatrixReader{numRight: 1, numLeft: 1, entries: [][3]int{{0, 0, 0}}}
}

func TestBuildDictionary(t *testing.T) {
	dict, err := BuildDictionary(
		&sliceLexiconReader{entries: []LexiconEntry{
			{Surface: "本", Param: WordParam{0, 0, 2}, Feature: "hon"},
		}},
		oneByOneMatrix(),
		defaultOnlyChars(),
		defaultUnk(),
	)
	if err != nil {
		t.Fatalf("BuildDictionary failed: %v", err)
	}
	if dict.NumWords() != 1 {
		t.Fatalf("NumWords = %d, want 1", dict.NumWords())
	}
	if got := dict.WordFeature(WordIdx{LexSystem, 0}); got != "hon" {
		t.Fatalf("WordFeature = %q, want hon", got)
	}
	if got := dict.WordFeature(WordIdx{LexUnknown, 0}); got != "*" {
		t.Fatalf("unknown WordFeature = %q, want *", got)
	}
}

func TestBuildMissingDefaultCategory(t *testing.T) {
	_, err := BuildDictionary(
		&sliceLexiconReader{entries: []LexiconEntry{{Surface: "a", Feature: "*"}}},
		oneByOneMatrix(),
		&sliceCharDefReader{recs: []CharDefRecord{categoryRec("KANJI", false, false, 2)}},
		&sliceUnkReader{entries: []UnkEntry{{Category: "KANJI", Feature: "*"}}},
	)
	var ferr *FormatError
	if !errors.As(err, &ferr) {
		t.Fatalf("expected FormatError, got %v", err)
	}
}

func TestBuildUndefinedUnkCategory(t *testing.T) {
	_, err := BuildDictionary(
		&sliceLexiconReader{entries: []LexiconEntry{{Surface: "a", Feature: "*"}}},
		oneByOneMatrix(),
		defaultOnlyChars(),
		&sliceUnkReader{entries: []UnkEntry{
			{Category: "DEFAULT", Feature: "*"},
			{Category: "NOSUCH", Feature: "*"},
		}},
	)
	if err == nil {
		t.Fatalf("expected error for undefined unk category")
	}
}

func TestBuildCategoryWithoutUnkEntries(t *testing.T) {
	_, err := BuildDictionary(
		&sliceLexiconReader{entries: []LexiconEntry{{Surface: "a", Feature: "*"}}},
		oneByOneMatrix(),
		&sliceCharDefReader{recs: []CharDefRecord{
			categoryRec("DEFAULT", false, true, 0),
			categoryRec("KANJI", false, false, 2),
		}},
		defaultUnk(), // KANJI has no fallback entry
	)
	if err == nil {
		t.Fatalf("expected error for category without unknown entries")
	}
}

func TestBuildConnectionIDOutOfRange(t *testing.T) {
	_, err := BuildDictionary(
		&sliceLexiconReader{entries: []LexiconEntry{
			{Surface: "a", Param: WordParam{LeftID: 5, RightID: 0}, Feature: "*"},
		}},
		oneByOneMatrix(),
		defaultOnlyChars(),
		defaultUnk(),
	)
	var ferr *FormatError
	if !errors.As(err, &ferr) {
		t.Fatalf("expected FormatError, got %v", err)
	}
}

func TestBuildEmptyLexicon(t *testing.T) {
	_, err := BuildDictionary(
		&sliceLexiconReader{},
		oneByOneMatrix(),
		defaultOnlyChars(),
		defaultUnk(),
	)
	if err == nil {
		t.Fatalf("expected error for empty lexicon")
	}
}

func TestPostingOrderFollowsInsertion(t *testing.T) {
	build := func(firstFeature, secondFeature string) *Dictionary {
		dict, err := BuildDictionary(
			&sliceLexiconReader{entries: []LexiconEntry{
				{Surface: "あ", Param: WordParam{0, 0, 1}, Feature: firstFeature},
				{Surface: "あ", Param: WordParam{0, 0, 1}, Feature: secondFeature},
			}},
			oneByOneMatrix(),
			defaultOnlyChars(),
			defaultUnk(),
		)
		if err != nil {
			t.Fatalf("BuildDictionary failed: %v", err)
		}
		return dict
	}
	dict := build("first", "second")
	var order []uint32
	dict.lex.commonPrefix([]byte("あ"), func(endByte int, wordID uint32, param WordParam) bool {
		order = append(order, wordID)
		return true
	})
	if len(order) != 2 || order[0] != 0 || order[1] != 1 {
		t.Fatalf("posting order = %v, want [0 1]", order)
	}
}

func TestCharPropertyClassification(t *testing.T) {
	dict, err := BuildDictionary(
		&sliceLexiconReader{entries: []LexiconEntry{{Surface: "a", Feature: "*"}}},
		oneByOneMatrix(),
		&sliceCharDefReader{recs: []CharDefRecord{
			categoryRec("DEFAULT", false, true, 0),
			categoryRec("KANJI", false, false, 2),
			categoryRec("KANJINUMERIC", true, true, 0),
			rangeRec(0x4E00, 0x9FFF, "KANJI"),
			rangeRec(0x4E00, 0x4E00, "KANJINUMERIC", "KANJI"), // 一
		}},
		&sliceUnkReader{entries: []UnkEntry{
			{Category: "DEFAULT", Feature: "*"},
			{Category: "KANJI", Feature: "*"},
			{Category: "KANJINUMERIC", Feature: "*"},
		}},
	)
	if err != nil {
		t.Fatalf("BuildDictionary failed: %v", err)
	}
	cp := &dict.chars

	kanjiID, ok := cp.cateID("KANJI")
	if !ok {
		t.Fatalf("KANJI category not found")
	}
	numericID, _ := cp.cateID("KANJINUMERIC")
	defaultID, _ := cp.cateID("DEFAULT")

	ci := cp.charInfoFor('本')
	if ci.cateSet() != 1<<kanjiID || ci.baseID() != kanjiID {
		t.Fatalf("本 classified wrong: set=%b base=%d", ci.cateSet(), ci.baseID())
	}
	ci = cp.charInfoFor('一')
	if ci.cateSet() != (1<<kanjiID)|(1<<numericID) {
		t.Fatalf("一 category set = %b", ci.cateSet())
	}
	if ci.baseID() != numericID {
		t.Fatalf("一 base = %d, want KANJINUMERIC", ci.baseID())
	}
	ci = cp.charInfoFor('q')
	if ci.cateSet() != 1<<defaultID || ci.baseID() != defaultID {
		t.Fatalf("uncovered char not DEFAULT: set=%b base=%d", ci.cateSet(), ci.baseID())
	}
	// Beyond the BMP table: DEFAULT.
	ci = cp.charInfoFor(0x20B9F)
	if ci.baseID() != defaultID {
		t.Fatalf("non-BMP char not DEFAULT: base=%d", ci.baseID())
	}
}
