package wakachi

// MaxCategories bounds the number of character categories; the category-id
// set of one character must fit a 32-bit bitmap.
const MaxCategories = 32

// charTableLen covers the Basic Multilingual Plane. Characters beyond it are
// classified as DEFAULT, as are bytes that do not decode as UTF-8.
const charTableLen = 0x10000

// charInfo packs the classification of one character:
//
//	bits  0..31  category-id set (bitmap)
//	bits 32..39  base category id
//
// The base category is the primary category from char.def; the bitmap also
// carries the compatibility categories.
type charInfo uint64

func makeCharInfo(cateSet uint32, baseID uint32) charInfo {
	return charInfo(uint64(cateSet) | uint64(baseID)<<32)
}

func (ci charInfo) cateSet() uint32 { return uint32(ci) }
func (ci charInfo) baseID() uint32  { return uint32(ci>>32) & 0xFF }

// CategoryDef carries the unknown-word behavior of one character category,
// with the semantics of MeCab's char.def:
//
//   - Invoke: always attempt unknown-word generation at a position of this
//     category, even when the lexicon matched there.
//   - Group: emit one candidate spanning the maximal run of this category.
//   - Length: emit candidates of lengths 1..Length (0 = none).
type CategoryDef struct {
	Name   string
	Invoke bool
	Group  bool
	Length uint16
}

// charProperty classifies characters into category-id sets and holds the
// per-category records. The chr2inf table may be a view into the dictionary
// image; cats is decoded at load (it is a handful of entries).
type charProperty struct {
	chr2inf     []uint64 // indexed by BMP code unit, packed charInfo
	cats        []CategoryDef
	defaultInfo charInfo
}

func newCharProperty(chr2inf []uint64, cats []CategoryDef) (charProperty, error) {
	cp := charProperty{chr2inf: chr2inf, cats: cats}
	if len(chr2inf) != charTableLen {
		return cp, formatErrorf("char table", "expected %d entries, got %d", charTableLen, len(chr2inf))
	}
	if len(cats) == 0 || len(cats) > MaxCategories {
		return cp, formatErrorf("char categories", "category count %d out of range 1..%d", len(cats), MaxCategories)
	}
	defaultID, ok := cp.cateID("DEFAULT")
	if !ok {
		return cp, formatError("char categories", "no DEFAULT category defined")
	}
	cp.defaultInfo = makeCharInfo(1<<defaultID, defaultID)
	maxSet := uint32(1)<<uint(len(cats)) - 1 // all ones when len(cats) == 32
	for i, packed := range chr2inf {
		ci := charInfo(packed)
		if ci.cateSet() == 0 {
			return cp, formatErrorf("char table", "character U+%04X has an empty category set", i)
		}
		if ci.cateSet()&^maxSet != 0 || ci.baseID() >= uint32(len(cats)) {
			return cp, formatErrorf("char table", "character U+%04X references an undefined category", i)
		}
	}
	return cp, nil
}

// charInfoFor classifies one rune. Runes outside the table fall back to
// DEFAULT.
func (cp *charProperty) charInfoFor(r rune) charInfo {
	if r < 0 || r >= charTableLen {
		return cp.defaultInfo
	}
	return charInfo(cp.chr2inf[r])
}

// cateID returns the id of a category by name.
func (cp *charProperty) cateID(name string) (uint32, bool) {
	for i, c := range cp.cats {
		if c.Name == name {
			return uint32(i), true
		}
	}
	return 0, false
}

func (cp *charProperty) numCategories() int { return len(cp.cats) }

func (cp *charProperty) category(id uint32) CategoryDef { return cp.cats[id] }
