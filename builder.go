package wakachi

import (
	"fmt"
	"io"
	"sort"

	"github.com/npillmayer/wakachi/dat"
)

// LexiconEntry is one surface with its parameters and feature string.
type LexiconEntry struct {
	Surface string
	Param   WordParam
	Feature string
}

// LexiconReader yields lexicon entries one-by-one.
// It should return io.EOF when the stream is exhausted.
type LexiconReader interface {
	Next() (LexiconEntry, error)
}

// MatrixReader yields connection-cost entries one-by-one. Dims must be
// callable before the first Next.
type MatrixReader interface {
	Dims() (numRight, numLeft int, err error)
	Next() (rightID, leftID uint16, cost int16, err error)
}

// CharRange assigns categories to an inclusive range of code points. The
// first category is the primary one; the rest are compatibility categories.
type CharRange struct {
	Lo, Hi     rune
	Categories []string
}

// CharDefRecord is one char.def record: either a category definition or a
// code-point range, never both.
type CharDefRecord struct {
	Category *CategoryDef
	Range    *CharRange
}

// CharDefReader yields char.def records one-by-one, category definitions
// before the ranges that reference them.
// It should return io.EOF when the stream is exhausted.
type CharDefReader interface {
	Next() (CharDefRecord, error)
}

// UnkEntry is one unknown-word template, keyed by category name.
type UnkEntry struct {
	Category string
	Param    WordParam
	Feature  string
}

// UnkReader yields unknown-word entries one-by-one.
// It should return io.EOF when the stream is exhausted.
type UnkReader interface {
	Next() (UnkEntry, error)
}

// BuildDictionary constructs an in-memory Dictionary from streaming,
// format-agnostic sources.
//
// File format parsing is intentionally outside the base package. Use
// adapters like package mecabdict to parse concrete formats and feed this
// API.
func BuildDictionary(lex LexiconReader, mat MatrixReader, chars CharDefReader, unk UnkReader) (*Dictionary, error) {
	d := &Dictionary{}

	conn, err := buildConnector(mat)
	if err != nil {
		return nil, err
	}
	d.conn = conn

	cp, err := buildCharProperty(chars)
	if err != nil {
		return nil, err
	}
	d.chars = cp

	lx, err := buildLexicon(lex)
	if err != nil {
		return nil, err
	}
	d.lex = lx

	uh, err := buildUnkHandler(unk, &d.chars)
	if err != nil {
		return nil, err
	}
	d.unk = uh

	if err := d.validate(); err != nil {
		return nil, err
	}
	stats := d.lex.trie.Stats()
	tracer().Infof("dictionary built: words=%d matrix=%dx%d cats=%d trie fill=%.2f",
		d.lex.numWords(), d.conn.numRight, d.conn.numLeft,
		d.chars.numCategories(), stats.FillRatio())
	return d, nil
}

func buildLexicon(rdr LexiconReader) (lexicon, error) {
	var entries []LexiconEntry
	for {
		e, err := rdr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return lexicon{}, err
		}
		if e.Surface == "" {
			return lexicon{}, formatError("lexicon", "empty surface")
		}
		entries = append(entries, e)
	}
	if len(entries) == 0 {
		return lexicon{}, formatError("lexicon", "no entries")
	}
	if len(entries) > int(dat.MaxValue) {
		return lexicon{}, formatErrorf("lexicon", "too many entries: %d", len(entries))
	}

	// Word ids follow the input order; homographs keep their relative order
	// in the posting lists, which fixes the tie-breaking among equal-cost
	// entries.
	byID := make([]int, len(entries))
	for i := range byID {
		byID[i] = i
	}
	sort.SliceStable(byID, func(a, b int) bool {
		return entries[byID[a]].Surface < entries[byID[b]].Surface
	})

	builder := dat.NewBuilder()
	var postings []uint32
	for i := 0; i < len(byID); {
		surface := entries[byID[i]].Surface
		j := i
		for j < len(byID) && entries[byID[j]].Surface == surface {
			j++
		}
		offset := int32(len(postings))
		postings = append(postings, uint32(j-i))
		for _, id := range byID[i:j] {
			postings = append(postings, uint32(id))
		}
		if err := builder.Insert([]byte(surface), offset); err != nil {
			return lexicon{}, wrapFormatError("lexicon", fmt.Sprintf("surface %q", surface), err)
		}
		i = j
	}
	trie, err := builder.Freeze()
	if err != nil {
		return lexicon{}, wrapFormatError("lexicon", "trie construction failed", err)
	}

	params := make([]uint16, 0, len(entries)*3)
	featOffsets := make([]uint32, 0, len(entries)+1)
	var featBlob []byte
	for _, e := range entries {
		params = append(params, e.Param.LeftID, e.Param.RightID, uint16(e.Param.WordCost))
		featOffsets = append(featOffsets, uint32(len(featBlob)))
		featBlob = append(featBlob, e.Feature...)
	}
	featOffsets = append(featOffsets, uint32(len(featBlob)))

	return newLexicon(trie, postings, params, featOffsets, featBlob, LexSystem)
}

func buildConnector(rdr MatrixReader) (matrixConnector, error) {
	numRight, numLeft, err := rdr.Dims()
	if err != nil {
		return matrixConnector{}, err
	}
	if numRight <= 0 || numLeft <= 0 {
		return matrixConnector{}, formatErrorf("connection matrix", "dimensions %dx%d", numRight, numLeft)
	}
	data := make([]int16, numRight*numLeft)
	for {
		rightID, leftID, cost, err := rdr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return matrixConnector{}, err
		}
		if int(rightID) >= numRight || int(leftID) >= numLeft {
			return matrixConnector{}, formatErrorf("connection matrix",
				"entry (%d,%d) out of %dx%d", rightID, leftID, numRight, numLeft)
		}
		data[int(rightID)*numLeft+int(leftID)] = cost
	}
	return newMatrixConnector(data, numRight, numLeft)
}

func buildCharProperty(rdr CharDefReader) (charProperty, error) {
	var cats []CategoryDef
	var ranges []CharRange
	for {
		rec, err := rdr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return charProperty{}, err
		}
		switch {
		case rec.Category != nil:
			if len(cats) == MaxCategories {
				return charProperty{}, formatErrorf("char categories", "more than %d categories", MaxCategories)
			}
			for _, c := range cats {
				if c.Name == rec.Category.Name {
					return charProperty{}, formatErrorf("char categories", "duplicate category %s", c.Name)
				}
			}
			cats = append(cats, *rec.Category)
		case rec.Range != nil:
			ranges = append(ranges, *rec.Range)
		}
	}

	cateID := func(name string) (uint32, bool) {
		for i, c := range cats {
			if c.Name == name {
				return uint32(i), true
			}
		}
		return 0, false
	}
	defaultID, ok := cateID("DEFAULT")
	if !ok {
		return charProperty{}, formatError("char categories", "no DEFAULT category defined")
	}

	chr2inf := make([]uint64, charTableLen)
	for _, rng := range ranges {
		if rng.Lo < 0 || rng.Hi < rng.Lo || rng.Hi >= charTableLen {
			return charProperty{}, formatErrorf("char ranges", "range 0x%X..0x%X out of table", rng.Lo, rng.Hi)
		}
		if len(rng.Categories) == 0 {
			return charProperty{}, formatErrorf("char ranges", "range 0x%X..0x%X names no category", rng.Lo, rng.Hi)
		}
		var set uint32
		var base uint32
		for i, name := range rng.Categories {
			id, ok := cateID(name)
			if !ok {
				return charProperty{}, formatErrorf("char ranges", "undefined category %s", name)
			}
			if i == 0 {
				base = id
			}
			set |= 1 << id
		}
		for r := rng.Lo; r <= rng.Hi; r++ {
			prev := charInfo(chr2inf[r])
			// A later range overrides the primary category but keeps the
			// accumulated compatibility set.
			chr2inf[r] = uint64(makeCharInfo(prev.cateSet()|set, base))
		}
	}
	deflt := makeCharInfo(1<<defaultID, defaultID)
	for i, packed := range chr2inf {
		if charInfo(packed).cateSet() == 0 {
			chr2inf[i] = uint64(deflt)
		}
	}
	return newCharProperty(chr2inf, cats)
}

func buildUnkHandler(rdr UnkReader, cp *charProperty) (unkHandler, error) {
	perCate := make([][]UnkEntry, cp.numCategories())
	for {
		e, err := rdr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return unkHandler{}, err
		}
		id, ok := cp.cateID(e.Category)
		if !ok {
			return unkHandler{}, formatErrorf("unk entries", "undefined category %s", e.Category)
		}
		perCate[id] = append(perCate[id], e)
	}

	offsets := make([]uint32, 0, cp.numCategories()+1)
	var params []uint16
	var featOffsets []uint32
	var featBlob []byte
	n := uint32(0)
	for _, entries := range perCate {
		offsets = append(offsets, n)
		for _, e := range entries {
			params = append(params, e.Param.LeftID, e.Param.RightID, uint16(e.Param.WordCost))
			featOffsets = append(featOffsets, uint32(len(featBlob)))
			featBlob = append(featBlob, e.Feature...)
			n++
		}
	}
	offsets = append(offsets, n)
	featOffsets = append(featOffsets, uint32(len(featBlob)))

	return newUnkHandler(offsets, params, featOffsets, featBlob, cp.numCategories())
}
