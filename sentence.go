package wakachi

import "unicode/utf8"

// sentence is the decoded input of one tokenization: the raw bytes, the
// scalar array with byte offsets in both directions, and the per-scalar
// classification. All buffers are owned by the Worker and reused across
// sentences.
//
// Byte sequences that do not decode as UTF-8 are kept: each offending byte
// becomes one scalar of the DEFAULT category, so any input byte string is
// tokenizable and surfaces reproduce the input exactly.
type sentence struct {
	input string
	raw   []byte   // copy of input, for trie lookups
	chars []rune   // decoded scalars; utf8.RuneError for invalid bytes
	c2b   []int32  // char index -> byte offset; len lenChar+1
	b2c   []int32  // byte offset -> char index, -1 inside a scalar; len len(input)+1
	cinfo []uint64 // packed charInfo per scalar
}

func (s *sentence) clear() {
	s.input = ""
	s.raw = s.raw[:0]
	s.chars = s.chars[:0]
	s.c2b = s.c2b[:0]
	s.b2c = s.b2c[:0]
	s.cinfo = s.cinfo[:0]
}

// set decodes and classifies input. Empty input leaves the sentence empty.
func (s *sentence) set(input string, cp *charProperty) {
	s.clear()
	s.input = input
	s.raw = append(s.raw, input...)

	for i := 0; i < len(input); {
		r, size := utf8.DecodeRuneInString(input[i:])
		var ci charInfo
		if r == utf8.RuneError && size <= 1 {
			// Invalid byte: one scalar of the DEFAULT category.
			size = 1
			ci = cp.defaultInfo
		} else {
			ci = cp.charInfoFor(r)
		}
		s.chars = append(s.chars, r)
		s.c2b = append(s.c2b, int32(i))
		s.cinfo = append(s.cinfo, uint64(ci))
		s.b2c = append(s.b2c, int32(len(s.chars)-1))
		for k := 1; k < size; k++ {
			s.b2c = append(s.b2c, -1)
		}
		i += size
	}
	s.c2b = append(s.c2b, int32(len(input)))
	s.b2c = append(s.b2c, int32(len(s.chars)))
}

func (s *sentence) lenChar() int { return len(s.chars) }

// byteOffset returns the byte position of a char boundary; charPos may be
// lenChar (the end of the input).
func (s *sentence) byteOffset(charPos int) int { return int(s.c2b[charPos]) }

// charAt returns the char index of a byte offset, or -1 when the offset is
// not a scalar boundary.
func (s *sentence) charAt(byteOff int) int { return int(s.b2c[byteOff]) }

func (s *sentence) charInfoAt(charPos int) charInfo { return charInfo(s.cinfo[charPos]) }

// catRunLen counts the consecutive scalars from charPos whose category set
// intersects mask.
func (s *sentence) catRunLen(charPos int, mask uint32) int {
	run := 0
	for charPos+run < s.lenChar() && s.charInfoAt(charPos+run).cateSet()&mask != 0 {
		run++
	}
	return run
}
