package wakachi

import (
	"encoding/binary"
	"io"
	"unsafe"

	"github.com/npillmayer/wakachi/dat"
)

// The dictionary image is a sequence of tagged, 8-byte-aligned sections
// behind a fixed magic header. Bulk data (trie arrays, word parameters,
// the connection matrix, the char table, feature blobs) is stored in
// native byte order so that a loaded image can be consumed as typed slices
// without a decode pass; a byte-order mark rejects images produced on a
// machine with different endianness.
const imageMagic = "wakachi dict 01\n"

const byteOrderMark uint32 = 0x0A0B0C0D

const (
	secTrieBase = 1 + iota
	secTrieCheck
	secPostings
	secParams
	secFeatOffsets
	secFeatBlob
	secMatrix
	secCharTable
	secCategories
	secUnkOffsets
	secUnkParams
	secUnkFeatOffsets
	secUnkFeatBlob

	numSections = secUnkFeatBlob - secTrieBase + 1
)

// ---------------------------------------------------------------------------
// typed views
//
// The casts below reinterpret image bytes as integer slices in place. The
// backing buffer must stay alive and unmodified for the lifetime of the
// views; the Dictionary guarantees this by owning the buffer (or mapping).

func checkView(b []byte, elem int) error {
	if len(b)%elem != 0 {
		return formatErrorf("image", "section length %d not a multiple of %d", len(b), elem)
	}
	if len(b) > 0 && uintptr(unsafe.Pointer(&b[0]))%uintptr(elem) != 0 {
		return formatErrorf("image", "section misaligned for %d-byte elements", elem)
	}
	return nil
}

func viewUint16(b []byte) ([]uint16, error) {
	if err := checkView(b, 2); err != nil {
		return nil, err
	}
	if len(b) == 0 {
		return []uint16{}, nil
	}
	return unsafe.Slice((*uint16)(unsafe.Pointer(&b[0])), len(b)/2), nil
}

func viewInt16(b []byte) ([]int16, error) {
	if err := checkView(b, 2); err != nil {
		return nil, err
	}
	if len(b) == 0 {
		return []int16{}, nil
	}
	return unsafe.Slice((*int16)(unsafe.Pointer(&b[0])), len(b)/2), nil
}

func viewInt32(b []byte) ([]int32, error) {
	if err := checkView(b, 4); err != nil {
		return nil, err
	}
	if len(b) == 0 {
		return []int32{}, nil
	}
	return unsafe.Slice((*int32)(unsafe.Pointer(&b[0])), len(b)/4), nil
}

func viewUint32(b []byte) ([]uint32, error) {
	if err := checkView(b, 4); err != nil {
		return nil, err
	}
	if len(b) == 0 {
		return []uint32{}, nil
	}
	return unsafe.Slice((*uint32)(unsafe.Pointer(&b[0])), len(b)/4), nil
}

func viewUint64(b []byte) ([]uint64, error) {
	if err := checkView(b, 8); err != nil {
		return nil, err
	}
	if len(b) == 0 {
		return []uint64{}, nil
	}
	return unsafe.Slice((*uint64)(unsafe.Pointer(&b[0])), len(b)/8), nil
}

func bytesOf[T uint16 | int16 | int32 | uint32 | uint64](v []T) []byte {
	if len(v) == 0 {
		return nil
	}
	var zero T
	return unsafe.Slice((*byte)(unsafe.Pointer(&v[0])), len(v)*int(unsafe.Sizeof(zero)))
}

// ---------------------------------------------------------------------------
// decoding

type imageReader struct {
	buf []byte
	pos int
}

func (r *imageReader) section(tag uint32) ([]byte, error) {
	if r.pos+16 > len(r.buf) {
		return nil, formatErrorf("image", "truncated before section %d", tag)
	}
	gotTag := binary.NativeEndian.Uint32(r.buf[r.pos:])
	length := binary.NativeEndian.Uint64(r.buf[r.pos+8:])
	if gotTag != tag {
		return nil, formatErrorf("image", "expected section %d, found %d", tag, gotTag)
	}
	start := r.pos + 16
	if uint64(len(r.buf)-start) < length {
		return nil, formatErrorf("image", "section %d exceeds image size", tag)
	}
	end := start + int(length)
	r.pos = end + pad8(end)
	return r.buf[start:end:end], nil
}

func pad8(n int) int { return (8 - n%8) % 8 }

// parseImage decodes a dictionary image in place. The returned dictionary
// keeps data as views into data's memory.
func parseImage(data []byte) (*Dictionary, error) {
	if len(data) < len(imageMagic)+8 {
		return nil, formatError("image", "too small")
	}
	if string(data[:len(imageMagic)]) != imageMagic {
		return nil, formatError("image", "magic header mismatch")
	}
	if binary.NativeEndian.Uint32(data[len(imageMagic):]) != byteOrderMark {
		return nil, formatError("image", "byte order mismatch; rebuild the dictionary on this platform")
	}
	count := binary.NativeEndian.Uint32(data[len(imageMagic)+4:])
	if count != numSections {
		return nil, formatErrorf("image", "expected %d sections, found %d", numSections, count)
	}
	r := &imageReader{buf: data, pos: len(imageMagic) + 8}

	d := &Dictionary{buf: data}
	var err error

	var base, check []int32
	if base, err = sectionView(r, secTrieBase, viewInt32); err != nil {
		return nil, err
	}
	if check, err = sectionView(r, secTrieCheck, viewInt32); err != nil {
		return nil, err
	}
	trie, err := dat.FromArrays(base, check)
	if err != nil {
		return nil, wrapFormatError("lexicon trie", "bad arrays", err)
	}
	postings, err := sectionView(r, secPostings, viewUint32)
	if err != nil {
		return nil, err
	}
	params, err := sectionView(r, secParams, viewUint16)
	if err != nil {
		return nil, err
	}
	featOffsets, err := sectionView(r, secFeatOffsets, viewUint32)
	if err != nil {
		return nil, err
	}
	featBlob, err := r.section(secFeatBlob)
	if err != nil {
		return nil, err
	}
	if d.lex, err = newLexicon(trie, postings, params, featOffsets, featBlob, LexSystem); err != nil {
		return nil, err
	}

	matrix, err := r.section(secMatrix)
	if err != nil {
		return nil, err
	}
	if d.conn, err = parseMatrix(matrix); err != nil {
		return nil, err
	}

	charTable, err := sectionView(r, secCharTable, viewUint64)
	if err != nil {
		return nil, err
	}
	catSec, err := r.section(secCategories)
	if err != nil {
		return nil, err
	}
	cats, err := parseCategories(catSec)
	if err != nil {
		return nil, err
	}
	if d.chars, err = newCharProperty(charTable, cats); err != nil {
		return nil, err
	}

	unkOffsets, err := sectionView(r, secUnkOffsets, viewUint32)
	if err != nil {
		return nil, err
	}
	unkParams, err := sectionView(r, secUnkParams, viewUint16)
	if err != nil {
		return nil, err
	}
	unkFeatOffsets, err := sectionView(r, secUnkFeatOffsets, viewUint32)
	if err != nil {
		return nil, err
	}
	unkFeatBlob, err := r.section(secUnkFeatBlob)
	if err != nil {
		return nil, err
	}
	if d.unk, err = newUnkHandler(unkOffsets, unkParams, unkFeatOffsets, unkFeatBlob,
		d.chars.numCategories()); err != nil {
		return nil, err
	}

	if r.pos != len(data) {
		return nil, formatError("image", "size does not match section table")
	}
	if err := d.validate(); err != nil {
		return nil, err
	}
	return d, nil
}

func sectionView[T any](r *imageReader, tag uint32, view func([]byte) ([]T, error)) ([]T, error) {
	payload, err := r.section(tag)
	if err != nil {
		return nil, err
	}
	return view(payload)
}

func parseMatrix(payload []byte) (matrixConnector, error) {
	if len(payload) < 8 {
		return matrixConnector{}, formatError("connection matrix", "section too small")
	}
	numRight := int(binary.NativeEndian.Uint32(payload))
	numLeft := int(binary.NativeEndian.Uint32(payload[4:]))
	data, err := viewInt16(payload[8:])
	if err != nil {
		return matrixConnector{}, err
	}
	return newMatrixConnector(data, numRight, numLeft)
}

func parseCategories(payload []byte) ([]CategoryDef, error) {
	if len(payload) < 4 {
		return nil, formatError("char categories", "section too small")
	}
	count := int(binary.NativeEndian.Uint32(payload))
	if count <= 0 || count > MaxCategories {
		return nil, formatErrorf("char categories", "category count %d out of range", count)
	}
	recsEnd := 4 + count*4
	offsEnd := recsEnd + (count+1)*4
	if len(payload) < offsEnd {
		return nil, formatError("char categories", "section too small")
	}
	cats := make([]CategoryDef, count)
	for i := 0; i < count; i++ {
		rec := payload[4+i*4:]
		cats[i].Invoke = rec[0] != 0
		cats[i].Group = rec[1] != 0
		cats[i].Length = binary.NativeEndian.Uint16(rec[2:])
	}
	blob := payload[offsEnd:]
	prev := uint32(0)
	for i := 0; i <= count; i++ {
		off := binary.NativeEndian.Uint32(payload[recsEnd+i*4:])
		if off < prev || int(off) > len(blob) {
			return nil, formatError("char categories", "name offsets corrupt")
		}
		if i > 0 {
			cats[i-1].Name = string(blob[prev:off])
		}
		prev = off
	}
	return cats, nil
}

// ---------------------------------------------------------------------------
// encoding

type imageWriter struct {
	w   io.Writer
	n   int
	err error
}

func (iw *imageWriter) write(b []byte) {
	if iw.err != nil {
		return
	}
	n, err := iw.w.Write(b)
	iw.n += n
	iw.err = err
}

func (iw *imageWriter) writeU32(v uint32) {
	var b [4]byte
	binary.NativeEndian.PutUint32(b[:], v)
	iw.write(b[:])
}

var zeroPad [8]byte

func (iw *imageWriter) section(tag uint32, payload []byte) {
	var hdr [16]byte
	binary.NativeEndian.PutUint32(hdr[:], tag)
	binary.NativeEndian.PutUint64(hdr[8:], uint64(len(payload)))
	iw.write(hdr[:])
	iw.write(payload)
	if p := pad8(len(payload)); p != 0 {
		iw.write(zeroPad[:p])
	}
}

// Write serializes the dictionary image. The output is what NewDictionary,
// ReadDictionary and LoadDictionary expect.
func (d *Dictionary) Write(w io.Writer) error {
	iw := &imageWriter{w: w}
	iw.write([]byte(imageMagic))
	iw.writeU32(byteOrderMark)
	iw.writeU32(numSections)

	iw.section(secTrieBase, bytesOf(d.lex.trie.Base))
	iw.section(secTrieCheck, bytesOf(d.lex.trie.Check))
	iw.section(secPostings, bytesOf(d.lex.postings))
	iw.section(secParams, bytesOf(d.lex.params))
	iw.section(secFeatOffsets, bytesOf(d.lex.featOffsets))
	iw.section(secFeatBlob, d.lex.featBlob)
	iw.section(secMatrix, encodeMatrix(&d.conn))
	iw.section(secCharTable, bytesOf(d.chars.chr2inf))
	iw.section(secCategories, encodeCategories(d.chars.cats))
	iw.section(secUnkOffsets, bytesOf(d.unk.offsets))
	iw.section(secUnkParams, bytesOf(d.unk.params))
	iw.section(secUnkFeatOffsets, bytesOf(d.unk.featOffsets))
	iw.section(secUnkFeatBlob, d.unk.featBlob)
	return iw.err
}

func encodeMatrix(c *matrixConnector) []byte {
	payload := make([]byte, 8, 8+len(c.data)*2)
	binary.NativeEndian.PutUint32(payload, uint32(c.numRight))
	binary.NativeEndian.PutUint32(payload[4:], uint32(c.numLeft))
	return append(payload, bytesOf(c.data)...)
}

func encodeCategories(cats []CategoryDef) []byte {
	var payload []byte
	var b4 [4]byte
	binary.NativeEndian.PutUint32(b4[:], uint32(len(cats)))
	payload = append(payload, b4[:]...)
	for _, c := range cats {
		var rec [4]byte
		if c.Invoke {
			rec[0] = 1
		}
		if c.Group {
			rec[1] = 1
		}
		binary.NativeEndian.PutUint16(rec[2:], c.Length)
		payload = append(payload, rec[:]...)
	}
	off := uint32(0)
	for _, c := range cats {
		binary.NativeEndian.PutUint32(b4[:], off)
		payload = append(payload, b4[:]...)
		off += uint32(len(c.Name))
	}
	binary.NativeEndian.PutUint32(b4[:], off)
	payload = append(payload, b4[:]...)
	for _, c := range cats {
		payload = append(payload, c.Name...)
	}
	return payload
}
