package wakachi

import "math/bits"

// maxUnkRunLen bounds the category-run scan of the unknown-word handler so
// that degenerate inputs (one very long homogeneous run) stay linear.
const maxUnkRunLen = 1024

// unkWord is one synthesized unknown-word candidate.
type unkWord struct {
	startChar int
	endChar   int
	entryID   uint32
	param     WordParam
}

// unkHandler synthesizes word candidates for positions the lexicon does not
// cover, driven by the per-category parameters of the char-property table.
// Entries are grouped by category id; params and feature storage share the
// lexicon's layout so the slices can be image views.
type unkHandler struct {
	offsets     []uint32 // per category id, len numCategories+1
	params      []uint16 // triplets, one per entry
	featOffsets []uint32
	featBlob    []byte
}

func newUnkHandler(offsets []uint32, params []uint16, featOffsets []uint32,
	featBlob []byte, numCategories int) (unkHandler, error) {
	//
	uh := unkHandler{
		offsets:     offsets,
		params:      params,
		featOffsets: featOffsets,
		featBlob:    featBlob,
	}
	if len(offsets) != numCategories+1 {
		return uh, formatErrorf("unk offsets", "expected %d entries, got %d", numCategories+1, len(offsets))
	}
	if len(params)%3 != 0 {
		return uh, formatErrorf("unk params", "length %d is not a multiple of 3", len(params))
	}
	n := uint32(len(params) / 3)
	for i := 0; i < numCategories; i++ {
		if offsets[i] > offsets[i+1] {
			return uh, formatErrorf("unk offsets", "offsets not monotonic at category %d", i)
		}
		if offsets[i] == offsets[i+1] {
			// A category without unknown entries can strand the lattice:
			// EOS reachability hinges on a fallback candidate existing at
			// every unmatched position.
			return uh, formatErrorf("unk offsets", "category %d has no unknown entries", i)
		}
	}
	if offsets[numCategories] != n {
		return uh, formatErrorf("unk offsets", "offsets end at %d, have %d entries", offsets[numCategories], n)
	}
	if len(featOffsets) != int(n)+1 {
		return uh, formatErrorf("unk features", "expected %d offsets, got %d", n+1, len(featOffsets))
	}
	for i := uint32(0); i < n; i++ {
		if featOffsets[i] > featOffsets[i+1] {
			return uh, formatErrorf("unk features", "offsets not monotonic at entry %d", i)
		}
	}
	if n > 0 && int(featOffsets[n]) > len(featBlob) {
		return uh, formatError("unk features", "offset beyond feature blob")
	}
	return uh, nil
}

func (uh *unkHandler) numEntries() int { return len(uh.params) / 3 }

func (uh *unkHandler) wordParam(entryID uint32) WordParam {
	i := int(entryID) * 3
	return WordParam{
		LeftID:   uh.params[i],
		RightID:  uh.params[i+1],
		WordCost: int16(uh.params[i+2]),
	}
}

func (uh *unkHandler) wordFeatureBytes(entryID uint32) []byte {
	return uh.featBlob[uh.featOffsets[entryID]:uh.featOffsets[entryID+1]]
}

// verify checks that every entry's connection ids fit the matrix.
func (uh *unkHandler) verify(conn *matrixConnector) bool {
	for id := 0; id < uh.numEntries(); id++ {
		if !conn.verifyParam(uh.wordParam(uint32(id))) {
			return false
		}
	}
	return true
}

// genUnkWords emits unknown-word candidates starting at startChar.
//
// For every category in the character's category set: generation runs if the
// category invokes unconditionally, or if the lexicon produced no match at
// this position. The category run is the count of consecutive characters
// whose category set contains the category. A grouping category emits one
// candidate over the run (capped by maxGroupingLen when > 0); additionally
// candidates of lengths 1..Length are emitted. A length coinciding with an
// already-emitted grouped span is suppressed.
func (uh *unkHandler) genUnkWords(cp *charProperty, sent *sentence, startChar int,
	hasMatched bool, maxGroupingLen int, f func(w unkWord)) {
	//
	cateSet := sent.charInfoAt(startChar).cateSet()
	for set := cateSet; set != 0; set &= set - 1 {
		cate := uint32(bits.TrailingZeros32(set))
		cat := cp.category(cate)
		if hasMatched && !cat.Invoke {
			continue
		}

		maxRun := maxUnkRunLen
		if int(cat.Length) > maxRun {
			maxRun = int(cat.Length)
		}
		run := 1
		for startChar+run < sent.lenChar() && run < maxRun &&
			sent.charInfoAt(startChar+run).cateSet()&(1<<cate) != 0 {
			run++
		}

		grouped := 0
		if cat.Group {
			glen := run
			if maxGroupingLen > 0 && glen > maxGroupingLen {
				glen = maxGroupingLen
			}
			uh.scanEntries(cate, startChar, startChar+glen, f)
			grouped = glen
		}
		for i := 1; i <= int(cat.Length) && i <= run; i++ {
			if i == grouped {
				continue
			}
			uh.scanEntries(cate, startChar, startChar+i, f)
		}
	}
}

func (uh *unkHandler) scanEntries(cate uint32, startChar, endChar int, f func(w unkWord)) {
	for id := uh.offsets[cate]; id < uh.offsets[cate+1]; id++ {
		f(unkWord{
			startChar: startChar,
			endChar:   endChar,
			entryID:   id,
			param:     uh.wordParam(id),
		})
	}
}
