package lmfile

import (
	"fmt"
	"strconv"
)

const (
	// DefaultMaxDepth bounds the nesting of prediction chains.
	DefaultMaxDepth = 512
	// DefaultRootLabel starts every emitted path.
	DefaultRootLabel = "root"
	// DefaultSeparator joins path segments.
	DefaultSeparator = " -> "
)

// Resolver maps a trie record index to its word.
type Resolver interface {
	Word(index uint32) (string, bool)
}

// Stats summarizes a completed walk.
type Stats struct {
	Records  int // non-sentinel records read
	Paths    int // lines emitted
	MaxDepth int // deepest record seen
	End      int // offset just past the root sentinel
}

// Decoder walks the trie section of a model. It holds no per-walk state,
// so Walk may be called any number of times.
type Decoder struct {
	data   []byte
	offset int
	words  Resolver

	RootLabel string
	Separator string
	MaxDepth  int
}

// NewDecoder creates a decoder for the trie starting at offset.
// words may be nil, in which case every index renders as a number.
func NewDecoder(data []byte, offset int, words Resolver) *Decoder {
	return &Decoder{
		data:      data,
		offset:    offset,
		words:     words,
		RootLabel: DefaultRootLabel,
		Separator: DefaultSeparator,
		MaxDepth:  DefaultMaxDepth,
	}
}

// Walk decodes the trie and calls fn with the root-to-leaf path of every leaf,
// in stream order. An error from fn stops the walk and is returned as-is.
func (d *Decoder) Walk(fn func(path string) error) (Stats, error) {
	maxDepth := d.MaxDepth
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	w := &walk{
		dec:      d,
		cur:      NewCursor(d.data, d.offset),
		emit:     fn,
		maxDepth: maxDepth,
	}
	err := w.siblings(d.RootLabel, 0)
	w.stats.End = w.cur.Pos()
	return w.stats, err
}

// Paths collects every emitted path.
func (d *Decoder) Paths() ([]string, error) {
	var paths []string
	_, err := d.Walk(func(path string) error {
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return paths, nil
}

// Token renders a record index: the vocabulary word when known, the decimal
// index otherwise.
func (d *Decoder) Token(index uint16) string {
	if d.words != nil {
		if word, ok := d.words.Word(uint32(index)); ok {
			return word
		}
	}
	return strconv.FormatUint(uint64(index), 10)
}

// walk is the state of a single decode session.
type walk struct {
	dec      *Decoder
	cur      *Cursor
	emit     func(string) error
	maxDepth int
	// recordRead is set by every node record and cleared when a sentinel
	// consumes it; a sentinel right after a record closes an empty child list.
	recordRead bool
	stats      Stats
}

func (w *walk) siblings(path string, depth int) error {
	for {
		index, err := w.cur.Uint16()
		if err != nil {
			return err
		}
		if index == 0 {
			if !w.recordRead {
				return nil
			}
			w.recordRead = false
			w.stats.Paths++
			return w.emit(path)
		}

		w.recordRead = true
		freq, err := w.cur.Uint16()
		if err != nil {
			return fmt.Errorf("frequency of index %d: %w", index, err)
		}
		if _, err := w.cur.Uint16(); err != nil {
			return fmt.Errorf("reserved field of index %d: %w", index, err)
		}
		w.stats.Records++

		if depth+1 > w.maxDepth {
			return fmt.Errorf("record at offset %#x nests below depth %d: %w", w.cur.Pos()-6, w.maxDepth, ErrMaxDepthExceeded)
		}
		if depth+1 > w.stats.MaxDepth {
			w.stats.MaxDepth = depth + 1
		}

		child := path + w.dec.Separator + w.dec.Token(index) + "(" + strconv.FormatUint(uint64(freq), 10) + ")"
		if err := w.siblings(child, depth+1); err != nil {
			return err
		}
	}
}
