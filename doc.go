/*
Package wakachi implements Viterbi-based tokenization (morphological
analysis) of Japanese and similar unsegmented text, compatible with MeCab's
cost model. Given a compiled dictionary (a lexicon over a double-array trie,
a connection-cost matrix, a character-category table and unknown-word
parameters) it finds the token sequence of minimum total cost over a word
lattice.

A Dictionary is an immutable value that may be shared by any number of
goroutines. Tokenization state lives in a Worker, which owns reusable
buffers and must not be used concurrently:

	dict, err := wakachi.LoadDictionary("system.dic")
	// handle err
	tok, err := wakachi.NewTokenizer(dict, wakachi.IgnoreSpace(true))
	// handle err
	w := tok.NewWorker()
	w.SetText("本とカレーの街神保町へようこそ。")
	w.Tokenize()
	for t := range w.Tokens() {
		fmt.Printf("%s\t%s\n", t.Surface(), t.Feature())
	}

Dictionaries are loaded from a compiled binary image (optionally
memory-mapped or Zstandard-compressed), or built in memory from streaming
sources. Source-format parsing is intentionally outside the base package:
package mecabdict parses the MeCab file formats (lexicon.csv, matrix.def,
char.def, unk.def) and feeds the reader interfaces consumed by
BuildDictionary.

----------------------------------------------------------------------

# BSD License

Copyright (c) Norbert Pillmayer <norbert@pillmayer@com>

All rights reserved.

License information is available in the LICENSE file.
*/
package wakachi

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'wakachi'
func tracer() tracing.Trace {
	return tracing.Select("wakachi")
}

func assert(condition bool, msg string) {
	if !condition {
		panic(msg)
	}
}
