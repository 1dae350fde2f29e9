package wakachi

import (
	"fmt"
	"io"
	"os"

	mmap "github.com/edsrzf/mmap-go"
	"github.com/klauspost/compress/zstd"
)

// NewDictionary constructs a dictionary from an image held in memory. The
// dictionary keeps views into data, which must not be modified afterwards.
// data must be 8-byte aligned; buffers from ReadDictionary, LoadDictionary
// and ReadDictionaryZstd always are.
func NewDictionary(data []byte) (*Dictionary, error) {
	return parseImage(data)
}

// ReadDictionary loads a dictionary image from a reader into an owned,
// aligned buffer.
func ReadDictionary(r io.Reader) (*Dictionary, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, wrapFormatError("image", "read failed", err)
	}
	return parseImage(alignedCopy(data))
}

// ReadDictionaryZstd loads a Zstandard-compressed dictionary image, the
// form preset dictionaries ship in.
func ReadDictionaryZstd(r io.Reader) (*Dictionary, error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, wrapFormatError("image", "zstd reader", err)
	}
	defer dec.Close()
	data, err := io.ReadAll(dec)
	if err != nil {
		return nil, wrapFormatError("image", "zstd decompression failed", err)
	}
	return parseImage(alignedCopy(data))
}

// LoadDictionary memory-maps a dictionary image from a file. The mapping
// is owned by the returned dictionary and released by Close; every Worker
// of the dictionary must be done before Close is called.
func LoadDictionary(path string) (*Dictionary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dictionary: %w", err)
	}
	defer f.Close()
	mm, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("map dictionary: %w", err)
	}
	d, err := parseImage(mm)
	if err != nil {
		mm.Unmap()
		tracer().Errorf("dictionary %s rejected: %v", path, err)
		return nil, err
	}
	d.mm = mm
	tracer().Infof("dictionary %s mapped: %d bytes, %d words", path, len(mm), d.NumWords())
	return d, nil
}

// WriteZstd serializes the dictionary image with Zstandard compression.
func (d *Dictionary) WriteZstd(w io.Writer) error {
	enc, err := zstd.NewWriter(w)
	if err != nil {
		return err
	}
	if err := d.Write(enc); err != nil {
		enc.Close()
		return err
	}
	return enc.Close()
}

// alignedCopy places data into a buffer whose start is 8-byte aligned, as
// the in-place typed views require.
func alignedCopy(data []byte) []byte {
	words := make([]uint64, (len(data)+7)/8)
	buf := bytesOf(words)[:len(data)]
	copy(buf, data)
	return buf
}
