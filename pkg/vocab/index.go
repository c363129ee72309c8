// Package vocab holds the reference vocabulary extracted from a device report:
// every word with its list index and usage frequency.
package vocab

import (
	"errors"
	"sort"

	"github.com/tchap/go-patricia/v2/patricia"
)

// ErrEmptyVocabulary means the export yielded no usable entries.
var ErrEmptyVocabulary = errors.New("vocabulary has no usable entries")

// Entry is one row of the reference word list.
type Entry struct {
	Index     uint32 `msgpack:"i"`
	Word      string `msgpack:"w"`
	Frequency uint32 `msgpack:"f"`
}

// Index is a read-only, two-way lookup over vocabulary entries.
// Duplicate indices or words resolve to the entry inserted last.
type Index struct {
	byIndex     map[uint32]Entry
	words       *patricia.Trie
	modelOffset int64
}

// Option configures an Index.
type Option func(*Index)

// WithModelOffset maps a model record index i to the entry with Index i+offset.
// Word-list exports number rows from 1 while model records count from 0.
func WithModelOffset(offset int) Option {
	return func(ix *Index) {
		ix.modelOffset = int64(offset)
	}
}

// NewIndex builds an index over entries.
func NewIndex(entries []Entry, opts ...Option) *Index {
	ix := &Index{
		byIndex: make(map[uint32]Entry, len(entries)),
		words:   patricia.NewTrie(),
	}
	for _, opt := range opts {
		opt(ix)
	}
	for _, e := range entries {
		ix.byIndex[e.Index] = e
		if e.Word == "" {
			continue
		}
		ix.words.Set(patricia.Prefix(e.Word), e)
	}
	return ix
}

// Len returns the number of distinct indices.
func (ix *Index) Len() int {
	return len(ix.byIndex)
}

// Word resolves a model record index to its word.
func (ix *Index) Word(index uint32) (string, bool) {
	key := int64(index) + ix.modelOffset
	if key < 0 || key > int64(^uint32(0)) {
		return "", false
	}
	e, ok := ix.byIndex[uint32(key)]
	if !ok {
		return "", false
	}
	return e.Word, true
}

// Lookup finds the entry for an exact word.
func (ix *Index) Lookup(word string) (Entry, bool) {
	if word == "" {
		return Entry{}, false
	}
	item := ix.words.Get(patricia.Prefix(word))
	if item == nil {
		return Entry{}, false
	}
	return item.(Entry), true
}

// WithPrefix returns every entry whose word starts with prefix, ordered by index.
// An empty prefix returns the whole vocabulary.
func (ix *Index) WithPrefix(prefix string) []Entry {
	if prefix == "" {
		return ix.Entries()
	}
	var out []Entry
	_ = ix.words.VisitSubtree(patricia.Prefix(prefix), func(_ patricia.Prefix, item patricia.Item) error {
		out = append(out, item.(Entry))
		return nil
	})
	sortByIndex(out)
	return out
}

// Entries returns all entries ordered by index.
func (ix *Index) Entries() []Entry {
	out := make([]Entry, 0, len(ix.byIndex))
	for _, e := range ix.byIndex {
		out = append(out, e)
	}
	sortByIndex(out)
	return out
}

func sortByIndex(entries []Entry) {
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Index < entries[j].Index
	})
}
