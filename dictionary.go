package wakachi

import (
	mmap "github.com/edsrzf/mmap-go"
)

// Dictionary is the immutable aggregate consulted during tokenization: the
// lexicon, the connection matrix, the char-property table and the
// unknown-word table. Once constructed it is never modified, so any number
// of goroutines may share one Dictionary through their Workers.
//
// A Dictionary loaded with LoadDictionary owns a memory mapping; its views
// point into the mapped bytes. Close releases the mapping; call it only
// after every Worker (and every borrowed Token) of the dictionary is done.
// Dictionaries built in memory hold no external resources and Close is a
// no-op for them.
type Dictionary struct {
	lex   lexicon
	conn  matrixConnector
	chars charProperty
	unk   unkHandler

	buf []byte    // backing image, nil for built dictionaries
	mm  mmap.MMap // non-nil when the image is memory-mapped
}

// Close releases the memory mapping, if any. The dictionary and everything
// borrowing from it become invalid.
func (d *Dictionary) Close() error {
	if d.mm == nil {
		return nil
	}
	mm := d.mm
	d.mm = nil
	d.buf = nil
	return mm.Unmap()
}

// NumWords returns the number of lexicon entries.
func (d *Dictionary) NumWords() int { return d.lex.numWords() }

// ConnectorDims returns the connection-matrix dimensions (numRight,
// numLeft).
func (d *Dictionary) ConnectorDims() (numRight, numLeft int) {
	return d.conn.numRight, d.conn.numLeft
}

// WordFeature returns the feature string of a word entry.
func (d *Dictionary) WordFeature(idx WordIdx) string {
	return string(d.wordFeatureBytes(idx))
}

// wordFeatureBytes returns the feature string as a zero-copy slice into the
// feature store.
func (d *Dictionary) wordFeatureBytes(idx WordIdx) []byte {
	switch idx.LexType {
	case LexUnknown:
		return d.unk.wordFeatureBytes(idx.WordID)
	default:
		return d.lex.wordFeatureBytes(idx.WordID)
	}
}

func (d *Dictionary) wordParam(idx WordIdx) WordParam {
	switch idx.LexType {
	case LexUnknown:
		return d.unk.wordParam(idx.WordID)
	default:
		return d.lex.wordParam(idx.WordID)
	}
}

// validate cross-checks the components after load or build. Connection ids
// out of matrix range are rejected here (categories without unknown
// fallbacks are already rejected by newUnkHandler), so that tokenization
// itself can never fail.
func (d *Dictionary) validate() error {
	if !d.lex.verify(&d.conn) {
		return formatError("lexicon", "connection id out of matrix range")
	}
	if !d.unk.verify(&d.conn) {
		return formatError("unknown entries", "connection id out of matrix range")
	}
	if int(bosEOSConnectionID) >= d.conn.numLeft || int(bosEOSConnectionID) >= d.conn.numRight {
		return formatError("connection matrix", "BOS/EOS connection id out of range")
	}
	return nil
}
