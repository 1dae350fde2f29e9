// Package mecabdict parses the MeCab dictionary source formats
// (lexicon CSV, matrix.def, char.def, unk.def) and feeds the streaming
// reader interfaces of package wakachi. The base package stays
// format-agnostic; this adapter owns the concrete syntax.
package mecabdict

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/npillmayer/wakachi"
)

// FromReaders builds a dictionary from the four MeCab source files.
func FromReaders(lexiconCSV, matrixDef, charDef, unkDef io.Reader) (*wakachi.Dictionary, error) {
	return wakachi.BuildDictionary(
		NewLexiconReader(lexiconCSV),
		NewMatrixReader(matrixDef),
		NewCharDefReader(charDef),
		NewUnkReader(unkDef),
	)
}

// ---------------------------------------------------------------------------
// lexicon CSV

// LexiconReader parses lexicon CSV lines of the form
//
//	surface,leftID,rightID,cost,feature...
//
// The feature part is the remainder of the line and may contain commas.
// A surface containing commas must be double-quoted.
type LexiconReader struct {
	sc   *bufio.Scanner
	line int
}

// NewLexiconReader wraps a lexicon CSV stream.
func NewLexiconReader(r io.Reader) *LexiconReader {
	return &LexiconReader{sc: newScanner(r)}
}

// Next yields one lexicon entry, or io.EOF.
func (lr *LexiconReader) Next() (wakachi.LexiconEntry, error) {
	for lr.sc.Scan() {
		lr.line++
		line := strings.TrimRight(lr.sc.Text(), "\r")
		if line == "" {
			continue
		}
		surface, param, feature, err := parseCSVEntry(line)
		if err != nil {
			return wakachi.LexiconEntry{}, fmt.Errorf("lexicon line %d: %w", lr.line, err)
		}
		return wakachi.LexiconEntry{Surface: surface, Param: param, Feature: feature}, nil
	}
	if err := lr.sc.Err(); err != nil {
		return wakachi.LexiconEntry{}, err
	}
	return wakachi.LexiconEntry{}, io.EOF
}

// parseCSVEntry splits `key,left,right,cost,feature...`, honoring a
// double-quoted key.
func parseCSVEntry(line string) (key string, param wakachi.WordParam, feature string, err error) {
	rest := line
	if strings.HasPrefix(rest, `"`) {
		end := strings.Index(rest[1:], `"`)
		if end < 0 || !strings.HasPrefix(rest[1+end+1:], ",") {
			return "", param, "", fmt.Errorf("unterminated quoted field")
		}
		key = rest[1 : 1+end]
		rest = rest[1+end+2:]
	} else {
		comma := strings.Index(rest, ",")
		if comma < 0 {
			return "", param, "", fmt.Errorf("expected 4 comma-separated fields")
		}
		key = rest[:comma]
		rest = rest[comma+1:]
	}
	fields := strings.SplitN(rest, ",", 4)
	if len(fields) < 4 {
		return "", param, "", fmt.Errorf("expected 4 comma-separated fields")
	}
	left, err := strconv.ParseUint(fields[0], 10, 16)
	if err != nil {
		return "", param, "", fmt.Errorf("left id: %w", err)
	}
	right, err := strconv.ParseUint(fields[1], 10, 16)
	if err != nil {
		return "", param, "", fmt.Errorf("right id: %w", err)
	}
	cost, err := strconv.ParseInt(fields[2], 10, 16)
	if err != nil {
		return "", param, "", fmt.Errorf("cost: %w", err)
	}
	param = wakachi.WordParam{
		LeftID:   uint16(left),
		RightID:  uint16(right),
		WordCost: int16(cost),
	}
	return key, param, fields[3], nil
}

// ---------------------------------------------------------------------------
// matrix.def

// MatrixReader parses matrix.def: a header line `numRight numLeft`, then
// one `rightID leftID cost` entry per line.
type MatrixReader struct {
	sc       *bufio.Scanner
	line     int
	numRight int
	numLeft  int
	haveDims bool
	dimsErr  error
}

// NewMatrixReader wraps a matrix.def stream.
func NewMatrixReader(r io.Reader) *MatrixReader {
	return &MatrixReader{sc: newScanner(r)}
}

// Dims returns the matrix dimensions from the header line.
func (mr *MatrixReader) Dims() (numRight, numLeft int, err error) {
	if !mr.haveDims {
		mr.haveDims = true
		mr.dimsErr = mr.readDims()
	}
	return mr.numRight, mr.numLeft, mr.dimsErr
}

func (mr *MatrixReader) readDims() error {
	for mr.sc.Scan() {
		mr.line++
		fields := strings.Fields(mr.sc.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) != 2 {
			return fmt.Errorf("matrix line %d: expected `numRight numLeft`", mr.line)
		}
		nr, err := strconv.Atoi(fields[0])
		if err != nil {
			return fmt.Errorf("matrix line %d: %w", mr.line, err)
		}
		nl, err := strconv.Atoi(fields[1])
		if err != nil {
			return fmt.Errorf("matrix line %d: %w", mr.line, err)
		}
		mr.numRight, mr.numLeft = nr, nl
		return nil
	}
	if err := mr.sc.Err(); err != nil {
		return err
	}
	return fmt.Errorf("matrix: missing header line")
}

// Next yields one cost entry, or io.EOF.
func (mr *MatrixReader) Next() (rightID, leftID uint16, cost int16, err error) {
	if _, _, err := mr.Dims(); err != nil {
		return 0, 0, 0, err
	}
	for mr.sc.Scan() {
		mr.line++
		fields := strings.Fields(mr.sc.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) != 3 {
			return 0, 0, 0, fmt.Errorf("matrix line %d: expected `right left cost`", mr.line)
		}
		r, err := strconv.ParseUint(fields[0], 10, 16)
		if err != nil {
			return 0, 0, 0, fmt.Errorf("matrix line %d: %w", mr.line, err)
		}
		l, err := strconv.ParseUint(fields[1], 10, 16)
		if err != nil {
			return 0, 0, 0, fmt.Errorf("matrix line %d: %w", mr.line, err)
		}
		c, err := strconv.ParseInt(fields[2], 10, 16)
		if err != nil {
			return 0, 0, 0, fmt.Errorf("matrix line %d: %w", mr.line, err)
		}
		return uint16(r), uint16(l), int16(c), nil
	}
	if err := mr.sc.Err(); err != nil {
		return 0, 0, 0, err
	}
	return 0, 0, 0, io.EOF
}

// ---------------------------------------------------------------------------
// char.def

// CharDefReader parses char.def. Category records look like
//
//	KATAKANA 1 1 2
//
// (name, invoke, group, length), range records like
//
//	0x30A1..0x30FA KATAKANA  # comment
//	0x003D         SYMBOL
//
// with the primary category first and compatibility categories after it.
type CharDefReader struct {
	sc   *bufio.Scanner
	line int
}

// NewCharDefReader wraps a char.def stream.
func NewCharDefReader(r io.Reader) *CharDefReader {
	return &CharDefReader{sc: newScanner(r)}
}

// Next yields one char.def record, or io.EOF.
func (cr *CharDefReader) Next() (wakachi.CharDefRecord, error) {
	for cr.sc.Scan() {
		cr.line++
		line := cr.sc.Text()
		if i := strings.Index(line, "#"); i >= 0 {
			line = line[:i]
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		if strings.HasPrefix(fields[0], "0x") {
			rng, err := parseCharRange(fields)
			if err != nil {
				return wakachi.CharDefRecord{}, fmt.Errorf("char.def line %d: %w", cr.line, err)
			}
			return wakachi.CharDefRecord{Range: rng}, nil
		}
		cat, err := parseCategoryDef(fields)
		if err != nil {
			return wakachi.CharDefRecord{}, fmt.Errorf("char.def line %d: %w", cr.line, err)
		}
		return wakachi.CharDefRecord{Category: cat}, nil
	}
	if err := cr.sc.Err(); err != nil {
		return wakachi.CharDefRecord{}, err
	}
	return wakachi.CharDefRecord{}, io.EOF
}

func parseCategoryDef(fields []string) (*wakachi.CategoryDef, error) {
	if len(fields) != 4 {
		return nil, fmt.Errorf("expected `NAME invoke group length`")
	}
	invoke, err := parseFlag(fields[1])
	if err != nil {
		return nil, fmt.Errorf("invoke: %w", err)
	}
	group, err := parseFlag(fields[2])
	if err != nil {
		return nil, fmt.Errorf("group: %w", err)
	}
	length, err := strconv.ParseUint(fields[3], 10, 16)
	if err != nil {
		return nil, fmt.Errorf("length: %w", err)
	}
	return &wakachi.CategoryDef{
		Name:   fields[0],
		Invoke: invoke,
		Group:  group,
		Length: uint16(length),
	}, nil
}

func parseCharRange(fields []string) (*wakachi.CharRange, error) {
	if len(fields) < 2 {
		return nil, fmt.Errorf("range without category")
	}
	lo, hi, err := parseCodepoints(fields[0])
	if err != nil {
		return nil, err
	}
	return &wakachi.CharRange{Lo: lo, Hi: hi, Categories: fields[1:]}, nil
}

func parseCodepoints(s string) (lo, hi rune, err error) {
	los, his, isRange := strings.Cut(s, "..")
	l, err := strconv.ParseUint(strings.TrimPrefix(los, "0x"), 16, 32)
	if err != nil {
		return 0, 0, fmt.Errorf("code point %q: %w", los, err)
	}
	lo, hi = rune(l), rune(l)
	if isRange {
		h, err := strconv.ParseUint(strings.TrimPrefix(his, "0x"), 16, 32)
		if err != nil {
			return 0, 0, fmt.Errorf("code point %q: %w", his, err)
		}
		hi = rune(h)
	}
	return lo, hi, nil
}

func parseFlag(s string) (bool, error) {
	switch s {
	case "0":
		return false, nil
	case "1":
		return true, nil
	}
	return false, fmt.Errorf("expected 0 or 1, got %q", s)
}

// ---------------------------------------------------------------------------
// unk.def

// UnkReader parses unk.def lines of the form
//
//	CATEGORY,leftID,rightID,cost,feature...
type UnkReader struct {
	sc   *bufio.Scanner
	line int
}

// NewUnkReader wraps an unk.def stream.
func NewUnkReader(r io.Reader) *UnkReader {
	return &UnkReader{sc: newScanner(r)}
}

// Next yields one unknown-word template, or io.EOF.
func (ur *UnkReader) Next() (wakachi.UnkEntry, error) {
	for ur.sc.Scan() {
		ur.line++
		line := strings.TrimRight(ur.sc.Text(), "\r")
		if line == "" {
			continue
		}
		category, param, feature, err := parseCSVEntry(line)
		if err != nil {
			return wakachi.UnkEntry{}, fmt.Errorf("unk.def line %d: %w", ur.line, err)
		}
		return wakachi.UnkEntry{Category: category, Param: param, Feature: feature}, nil
	}
	if err := ur.sc.Err(); err != nil {
		return wakachi.UnkEntry{}, err
	}
	return wakachi.UnkEntry{}, io.EOF
}

func newScanner(r io.Reader) *bufio.Scanner {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	return sc
}
