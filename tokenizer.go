package wakachi

// maxGroupingBound is the exclusive upper bound accepted for the
// MaxGroupingLen option.
const maxGroupingBound = 64

// Tokenizer pairs a Dictionary with a fixed option set. It is immutable and
// cheap to copy; concurrent tokenization uses one Worker per goroutine,
// created with NewWorker.
type Tokenizer struct {
	dict           *Dictionary
	spaceCateSet   uint32 // bit mask of the SPACE category; 0 = spaces are ordinary
	maxGroupingLen int    // 0 = category default
	normalize      bool
	cacheSize      int
}

// Option configures a Tokenizer.
type Option func(*Tokenizer) error

// IgnoreSpace suppresses SPACE-category scalars from token boundaries:
// space runs become cost-free prefixes of the following node instead of
// nodes of their own. This mirrors MeCab's behavior. Enabling it requires a
// SPACE category in the dictionary's char.def.
func IgnoreSpace(yes bool) Option {
	return func(t *Tokenizer) error {
		if !yes {
			t.spaceCateSet = 0
			return nil
		}
		cateID, ok := t.dict.chars.cateID("SPACE")
		if !ok {
			return optionError("IgnoreSpace", "SPACE is not defined in the dictionary (char.def)")
		}
		t.spaceCateSet = 1 << cateID
		return nil
	}
}

// MaxGroupingLen caps the length of grouped unknown-word candidates.
// 0 keeps the category defaults; use 24 for results identical to MeCab.
// Values of 64 or more are rejected.
func MaxGroupingLen(n int) Option {
	return func(t *Tokenizer) error {
		if n < 0 || n >= maxGroupingBound {
			return optionError("MaxGroupingLen", "must be in 0..63")
		}
		t.maxGroupingLen = n
		return nil
	}
}

// Normalize applies an NFKC pre-pass to inputs in SetText. Token byte
// offsets then refer to the normalized text. Off by default; leave it off
// for MeCab parity.
func Normalize(yes bool) Option {
	return func(t *Tokenizer) error {
		t.normalize = yes
		return nil
	}
}

// CacheSize enables per-worker memoization of Analyze results, keyed by the
// input string. 0 disables caching.
func CacheSize(n int) Option {
	return func(t *Tokenizer) error {
		if n < 0 {
			return optionError("CacheSize", "must be non-negative")
		}
		t.cacheSize = n
		return nil
	}
}

// NewTokenizer creates a tokenizer over a shared dictionary.
func NewTokenizer(dict *Dictionary, opts ...Option) (*Tokenizer, error) {
	t := &Tokenizer{dict: dict}
	for _, opt := range opts {
		if err := opt(t); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// Dictionary returns the shared dictionary.
func (t *Tokenizer) Dictionary() *Dictionary { return t.dict }

// NewWorker creates a worker holding the reusable tokenization buffers.
func (t *Tokenizer) NewWorker() *Worker { return newWorker(t) }

// buildLattice populates the lattice for a non-empty sentence.
//
// startNode and startWord track the starting char positions of words
// currently inserted. Without the space policy they are always equal. With
// it, startNode points at the position including a leading space run and
// startWord at the position after it, so inserted nodes connect across the
// run while their surfaces exclude it.
func (t *Tokenizer) buildLattice(sent *sentence, la *lattice) {
	la.reset(sent.lenChar())
	conn := &t.dict.conn

	startNode, startWord := 0, 0
	for startWord < sent.lenChar() {
		if !la.hasPreviousNode(startNode) {
			startWord++
			startNode = startWord
			continue
		}
		if t.spaceCateSet != 0 {
			if sent.charInfoAt(startNode).cateSet()&t.spaceCateSet != 0 {
				startWord += sent.catRunLen(startNode, t.spaceCateSet)
			}
		}
		// Trailing spaces: nothing left to insert.
		if startWord == sent.lenChar() {
			break
		}

		t.addLatticeEdges(sent, la, startNode, startWord, conn)

		startWord++
		startNode = startWord
	}

	la.insertEos(startNode, conn)
}

// addLatticeEdges inserts every candidate starting at startWord: lexicon
// common-prefix hits first, then unknown-word candidates. The unknown-word
// handler is told whether the lexicon matched, which drives the
// MeCab-compatible invoke rule.
func (t *Tokenizer) addLatticeEdges(sent *sentence, la *lattice, startNode, startWord int,
	conn *matrixConnector) {
	//
	dict := t.dict
	hasMatched := false
	base := sent.byteOffset(startWord)

	dict.lex.commonPrefix(sent.raw[base:], func(endByte int, wordID uint32, param WordParam) bool {
		endChar := sent.charAt(base + endByte)
		if endChar < 0 {
			// Surface ends inside an input scalar; cannot form a node.
			return true
		}
		la.insertNode(startNode, startWord, endChar,
			WordIdx{LexType: dict.lex.lexType, WordID: wordID}, param, conn)
		hasMatched = true
		return true
	})

	dict.unk.genUnkWords(&dict.chars, sent, startWord, hasMatched, t.maxGroupingLen,
		func(w unkWord) {
			la.insertNode(startNode, w.startChar, w.endChar,
				WordIdx{LexType: LexUnknown, WordID: w.entryID}, w.param, conn)
		})
}
