package wakachi

import "iter"

// Token is a view of one resultant token. It borrows the Worker's buffers
// and stays valid until the next SetText or Reset; use ToBuf for a
// self-contained copy.
type Token struct {
	worker *Worker
	index  int
}

func (t Token) top() *topNode { return &t.worker.top[t.index] }

// RangeChar returns the token's span in scalar positions.
func (t Token) RangeChar() (start, end int) {
	tn := t.top()
	return int(tn.node.startWord), int(tn.endWord)
}

// RangeByte returns the token's span in byte positions.
func (t Token) RangeByte() (start, end int) {
	sent := &t.worker.sent
	tn := t.top()
	return sent.byteOffset(int(tn.node.startWord)), sent.byteOffset(int(tn.endWord))
}

// Surface returns the token's surface, sliced from the input.
func (t Token) Surface() string {
	start, end := t.RangeByte()
	return t.worker.sent.input[start:end]
}

// WordIdx returns the token's word index.
func (t Token) WordIdx() WordIdx { return t.top().node.wordIdx() }

// Feature returns the token's feature string.
func (t Token) Feature() string {
	return string(t.worker.tok.dict.wordFeatureBytes(t.WordIdx()))
}

// LexType returns the lexicon the token came from.
func (t Token) LexType() LexType { return t.top().node.lexType }

// IsUnknown reports whether the token was synthesized by the unknown-word
// handler rather than matched in the lexicon.
func (t Token) IsUnknown() bool { return t.LexType() == LexUnknown }

// LeftID returns the left connection id of the token's entry.
func (t Token) LeftID() uint16 { return t.top().node.leftID }

// RightID returns the right connection id of the token's entry.
func (t Token) RightID() uint16 { return t.top().node.rightID }

// WordCost returns the emission cost of the token's entry.
func (t Token) WordCost() int16 {
	return t.worker.tok.dict.wordParam(t.WordIdx()).WordCost
}

// TotalCost returns the cumulative minimum cost from BOS through this
// token's node.
func (t Token) TotalCost() int32 { return t.top().node.minCost }

// ToBuf deep-copies the token into an owned TokenBuf.
func (t Token) ToBuf() TokenBuf {
	startChar, endChar := t.RangeChar()
	startByte, endByte := t.RangeByte()
	return TokenBuf{
		Surface:   t.Surface(),
		Feature:   t.Feature(),
		StartChar: startChar,
		EndChar:   endChar,
		StartByte: startByte,
		EndByte:   endByte,
		WordIdx:   t.WordIdx(),
		LeftID:    t.LeftID(),
		RightID:   t.RightID(),
		WordCost:  t.WordCost(),
		TotalCost: t.TotalCost(),
	}
}

// Tokens iterates the resultant tokens in sentence order. The yielded views
// borrow the Worker.
func (w *Worker) Tokens() iter.Seq[Token] {
	return func(yield func(Token) bool) {
		for i := 0; i < w.NumTokens(); i++ {
			if !yield(w.Token(i)) {
				return
			}
		}
	}
}

// TokenBuf is an owned, self-contained token, safe to retain and to move
// across goroutines.
type TokenBuf struct {
	Surface   string
	Feature   string
	StartChar int
	EndChar   int
	StartByte int
	EndByte   int
	WordIdx   WordIdx
	LeftID    uint16
	RightID   uint16
	WordCost  int16
	TotalCost int32
}

// IsUnknown reports whether the token was synthesized by the unknown-word
// handler.
func (b TokenBuf) IsUnknown() bool { return b.WordIdx.LexType == LexUnknown }
