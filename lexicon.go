package wakachi

import (
	"github.com/npillmayer/wakachi/dat"
)

// LexType identifies the lexicon a word entry comes from.
type LexType uint8

const (
	// LexSystem marks entries of the system lexicon.
	LexSystem LexType = iota
	// LexUser marks user entries baked into the image at compile time.
	LexUser
	// LexUnknown marks candidates synthesized by the unknown-word handler.
	LexUnknown
)

func (t LexType) String() string {
	switch t {
	case LexSystem:
		return "system"
	case LexUser:
		return "user"
	case LexUnknown:
		return "unknown"
	}
	return "invalid"
}

// WordIdx discriminates a word entry across lexicons.
type WordIdx struct {
	LexType LexType
	WordID  uint32
}

// WordParam carries the connection ids and emission cost of one word entry.
type WordParam struct {
	LeftID   uint16
	RightID  uint16
	WordCost int16
}

// lexicon is the set of surface strings with their word entries: a
// double-array trie over UTF-8 surfaces whose values point into a postings
// array (homograph word-id lists), plus the word-parameter table and the
// feature-string store. All backing slices may be views into the dictionary
// image; the lexicon is immutable after construction.
type lexicon struct {
	trie        *dat.DAT
	postings    []uint32 // interleaved: count, id, id, ...
	params      []uint16 // triplets: left id, right id, word cost (bit-cast)
	featOffsets []uint32 // len numWords+1, offsets into featBlob
	featBlob    []byte
	lexType     LexType
}

func newLexicon(trie *dat.DAT, postings []uint32, params []uint16,
	featOffsets []uint32, featBlob []byte, lexType LexType) (lexicon, error) {
	//
	lx := lexicon{
		trie:        trie,
		postings:    postings,
		params:      params,
		featOffsets: featOffsets,
		featBlob:    featBlob,
		lexType:     lexType,
	}
	if len(lx.params)%3 != 0 {
		return lx, formatErrorf("word params", "length %d is not a multiple of 3", len(lx.params))
	}
	n := lx.numWords()
	if len(lx.featOffsets) != n+1 {
		return lx, formatErrorf("feature offsets", "expected %d entries, got %d", n+1, len(lx.featOffsets))
	}
	for i := 0; i < n; i++ {
		if lx.featOffsets[i] > lx.featOffsets[i+1] {
			return lx, formatErrorf("feature offsets", "offsets not monotonic at word %d", i)
		}
	}
	if n > 0 && int(lx.featOffsets[n]) > len(lx.featBlob) {
		return lx, formatError("feature offsets", "offset beyond feature blob")
	}
	// Walk the postings to check id ranges; posting lists are dense so this
	// also verifies the interleaved encoding is self-consistent.
	for i := 0; i < len(lx.postings); {
		cnt := int(lx.postings[i])
		if cnt == 0 || i+1+cnt > len(lx.postings) {
			return lx, formatErrorf("postings", "corrupt list at offset %d", i)
		}
		for _, id := range lx.postings[i+1 : i+1+cnt] {
			if int(id) >= n {
				return lx, formatErrorf("postings", "word id %d out of range", id)
			}
		}
		i += 1 + cnt
	}
	return lx, nil
}

func (lx *lexicon) numWords() int { return len(lx.params) / 3 }

func (lx *lexicon) wordParam(wordID uint32) WordParam {
	i := int(wordID) * 3
	return WordParam{
		LeftID:   lx.params[i],
		RightID:  lx.params[i+1],
		WordCost: int16(lx.params[i+2]),
	}
}

// wordFeatureBytes returns the feature string of a word as a slice into the
// feature store.
func (lx *lexicon) wordFeatureBytes(wordID uint32) []byte {
	return lx.featBlob[lx.featOffsets[wordID]:lx.featOffsets[wordID+1]]
}

// commonPrefix walks every lexicon surface that prefixes input, expanding
// trie hits into all homograph entries. The callback receives the match
// length in bytes, the global word id and its parameters; returning false
// stops the iteration. Matches arrive in strictly increasing byte length,
// homographs in their baked-in posting order.
func (lx *lexicon) commonPrefix(input []byte, f func(endByte int, wordID uint32, param WordParam) bool) {
	walker := lx.trie.Walk(input)
	for {
		length, value, ok := walker.Next()
		if !ok {
			return
		}
		if int(value) >= len(lx.postings) {
			continue
		}
		cnt := int(lx.postings[value])
		if int(value)+1+cnt > len(lx.postings) {
			continue
		}
		for _, id := range lx.postings[int(value)+1 : int(value)+1+cnt] {
			if !f(length, id, lx.wordParam(id)) {
				return
			}
		}
	}
}

// verify checks that every entry's connection ids fit the matrix.
func (lx *lexicon) verify(conn *matrixConnector) bool {
	for id := 0; id < lx.numWords(); id++ {
		if !conn.verifyParam(lx.wordParam(uint32(id))) {
			return false
		}
	}
	return true
}
