package wakachi_test

import (
	"reflect"
	"testing"

	"github.com/npillmayer/wakachi"
)

func TestTokenizeIdempotent(t *testing.T) {
	dict := buildDict(t, nlpLexicon, tinyMatrix, "DEFAULT 0 1 0", "DEFAULT,0,0,100,*")
	w := newWorker(t, dict)
	w.SetText("自然言語処理")
	w.Tokenize()
	first := w.AppendTokenBufs(nil)
	w.Tokenize()
	second := w.AppendTokenBufs(nil)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("repeated Tokenize differs:\n%v\n%v", first, second)
	}
}

func TestWorkersDeterministic(t *testing.T) {
	dict := buildDict(t, nlpLexicon, tinyMatrix, "DEFAULT 0 1 0", "DEFAULT,0,0,100,*")
	tok, err := wakachi.NewTokenizer(dict)
	if err != nil {
		t.Fatalf("NewTokenizer failed: %v", err)
	}
	w1 := tok.NewWorker()
	w2 := tok.NewWorker()
	for _, input := range []string{"自然言語処理", "自然日本語処理", "処理"} {
		w1.SetText(input)
		w1.Tokenize()
		w2.SetText(input)
		w2.Tokenize()
		if !reflect.DeepEqual(w1.AppendTokenBufs(nil), w2.AppendTokenBufs(nil)) {
			t.Fatalf("workers disagree on %q", input)
		}
	}
}

func TestSetTextClearsResult(t *testing.T) {
	dict := buildDict(t, nlpLexicon, tinyMatrix, "DEFAULT 0 1 0", "DEFAULT,0,0,100,*")
	w := newWorker(t, dict)
	w.SetText("自然")
	w.Tokenize()
	if w.NumTokens() == 0 {
		t.Fatalf("expected tokens")
	}
	w.SetText("言語")
	if w.NumTokens() != 0 {
		t.Fatalf("SetText did not clear the previous result")
	}
	w.Tokenize()
	if got := surfaces(w); !reflect.DeepEqual(got, []string{"言語"}) {
		t.Fatalf("surfaces = %q", got)
	}
	w.Reset()
	if w.NumTokens() != 0 {
		t.Fatalf("Reset did not clear the result")
	}
	w.Tokenize()
	if w.NumTokens() != 0 {
		t.Fatalf("Tokenize after Reset produced tokens")
	}
}

func TestWorkerBufferReuse(t *testing.T) {
	dict := buildDict(t, nlpLexicon, tinyMatrix, "DEFAULT 0 1 0", "DEFAULT,0,0,100,*")
	w := newWorker(t, dict)
	// Shrinking and growing inputs must not leak state between sentences.
	inputs := []string{"自然言語処理", "処理", "自然日本語処理", "", "言語"}
	for _, input := range inputs {
		w.SetText(input)
		w.Tokenize()
		total := 0
		for tk := range w.Tokens() {
			s, e := tk.RangeByte()
			total += e - s
		}
		if total != len(input) {
			t.Fatalf("%q: token bytes %d != input bytes %d", input, total, len(input))
		}
	}
}

func TestAnalyze(t *testing.T) {
	dict := buildDict(t, nlpLexicon, tinyMatrix, "DEFAULT 0 1 0", "DEFAULT,0,0,100,*")
	w := newWorker(t, dict)
	bufs := w.Analyze("自然言語処理")
	if len(bufs) != 2 || bufs[0].Surface != "自然" || bufs[1].Surface != "言語処理" {
		t.Fatalf("Analyze = %+v", bufs)
	}
	if bufs[0].StartByte != 0 || bufs[0].EndByte != 6 || bufs[1].EndByte != 18 {
		t.Fatalf("Analyze byte ranges wrong: %+v", bufs)
	}
}

func TestAnalyzeMemoized(t *testing.T) {
	dict := buildDict(t, nlpLexicon, tinyMatrix, "DEFAULT 0 1 0", "DEFAULT,0,0,100,*")
	w := newWorker(t, dict, wakachi.CacheSize(16))
	first := w.Analyze("自然言語処理")
	w.Analyze("処理") // intervening input
	second := w.Analyze("自然言語処理")
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("memoized result differs")
	}
	// A cache hit hands back the stored slice.
	if len(first) == 0 || &first[0] != &second[0] {
		t.Fatalf("expected the cached slice on the second call")
	}
}

func TestTokenBufIsSelfContained(t *testing.T) {
	dict := buildDict(t, nlpLexicon, tinyMatrix, "DEFAULT 0 1 0", "DEFAULT,0,0,100,*")
	w := newWorker(t, dict)
	w.SetText("自然日本語処理")
	w.Tokenize()
	bufs := w.AppendTokenBufs(nil)
	w.SetText("処理")
	w.Tokenize()
	if bufs[0].Surface != "自然" || bufs[1].Surface != "日本語処理" {
		t.Fatalf("TokenBuf mutated by later tokenization: %+v", bufs)
	}
	if !bufs[1].IsUnknown() || bufs[0].IsUnknown() {
		t.Fatalf("TokenBuf unknown flags wrong")
	}
}
