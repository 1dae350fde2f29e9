package wakachi

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"golang.org/x/text/unicode/norm"
)

// Worker runs tokenization. It owns the internal buffers (decoded
// sentence, lattice pool, best-path list), so repeated tokenization does not
// reallocate. Workers are single-goroutine; create one per concurrent
// tokenization with Tokenizer.NewWorker. The underlying Dictionary must stay
// open for as long as any of its workers (and their borrowed tokens) are in
// use.
type Worker struct {
	tok   *Tokenizer
	sent  sentence
	la    lattice
	top   []topNode
	cache *lru.Cache[string, []TokenBuf]
}

func newWorker(t *Tokenizer) *Worker {
	w := &Worker{tok: t}
	if t.cacheSize > 0 {
		// The error path of lru.New is a non-positive size, excluded here.
		w.cache, _ = lru.New[string, []TokenBuf](t.cacheSize)
	}
	return w
}

// SetText replaces the input to be tokenized and clears the previous
// result. It does not tokenize. Any byte sequence is accepted; bytes that do
// not decode as UTF-8 each become one scalar of the DEFAULT category.
func (w *Worker) SetText(input string) {
	if w.tok.normalize {
		input = norm.NFKC.String(input)
	}
	w.sent.clear()
	w.top = w.top[:0]
	if input != "" {
		w.sent.set(input, &w.tok.dict.chars)
	}
}

// Reset clears the input and the result.
func (w *Worker) Reset() {
	w.sent.clear()
	w.top = w.top[:0]
}

// Tokenize runs lattice construction and the minimum-cost search over the
// current input. Calling it again on the same input yields the same result.
func (w *Worker) Tokenize() {
	w.top = w.top[:0]
	if w.sent.lenChar() == 0 {
		return
	}
	w.tok.buildLattice(&w.sent, &w.la)
	w.top = w.la.appendTopNodes(w.top)
}

// NumTokens returns the number of tokens of the last Tokenize.
func (w *Worker) NumTokens() int { return len(w.top) }

// Token returns the i-th token of the best path. The view borrows the
// worker and is valid until the next SetText or Reset.
func (w *Worker) Token(i int) Token {
	// top holds the path reversed (EOS side first).
	return Token{worker: w, index: w.NumTokens() - i - 1}
}

// AppendTokenBufs appends owned copies of the resultant tokens to dst.
func (w *Worker) AppendTokenBufs(dst []TokenBuf) []TokenBuf {
	for i := 0; i < w.NumTokens(); i++ {
		dst = append(dst, w.Token(i).ToBuf())
	}
	return dst
}

// Analyze tokenizes input and returns owned tokens. When the tokenizer was
// configured with CacheSize, results are memoized per worker; the returned
// slice is shared with the cache in that case and must be treated as
// read-only.
func (w *Worker) Analyze(input string) []TokenBuf {
	if w.cache != nil {
		if bufs, ok := w.cache.Get(input); ok {
			return bufs
		}
	}
	w.SetText(input)
	w.Tokenize()
	bufs := w.AppendTokenBufs(nil)
	if w.cache != nil {
		w.cache.Add(input, bufs)
	}
	return bufs
}
