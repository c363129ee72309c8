// Package match compares a message against the reference vocabulary and
// scores how many of its words the vocabulary knows.
package match

import (
	"errors"
	"strconv"
	"strings"

	"github.com/bastiangx/dynlm/pkg/vocab"
)

// ErrEmptyMessage means the message had no words, so there is nothing to score.
var ErrEmptyMessage = errors.New("message contains no words")

// EmptyMessageLine is written in place of a score for an empty message.
const EmptyMessageLine = "The message was empty. Unable to compare words if there are none."

// Lookup finds vocabulary entries by exact word.
type Lookup interface {
	Lookup(word string) (vocab.Entry, bool)
}

// Record is one message word found in the vocabulary.
type Record struct {
	Index     uint32 `msgpack:"i"`
	Word      string `msgpack:"w"`
	Frequency uint32 `msgpack:"f"`
}

// String renders the record as "<index> <word>(<frequency>)".
func (r Record) String() string {
	return strconv.FormatUint(uint64(r.Index), 10) + " " + r.Word + "(" + strconv.FormatUint(uint64(r.Frequency), 10) + ")"
}

// Result holds the outcome of matching one message.
type Result struct {
	Matched int
	Total   int
	Records []Record // one per matched occurrence, in message order
}

// Match splits message on whitespace and looks every token up exactly, with no
// case folding or punctuation stripping. A message without tokens returns
// ErrEmptyMessage alongside a zero Result.
func Match(message string, words Lookup) (Result, error) {
	tokens := strings.Fields(message)
	res := Result{Total: len(tokens)}
	if res.Total == 0 {
		return res, ErrEmptyMessage
	}
	for _, tok := range tokens {
		e, ok := words.Lookup(tok)
		if !ok {
			continue
		}
		res.Matched++
		res.Records = append(res.Records, Record{
			Index:     e.Index,
			Word:      tok,
			Frequency: e.Frequency,
		})
	}
	return res, nil
}

// Percent is the match rate of the result, see Score.
func (r Result) Percent() float64 {
	return Score(r.Matched, r.Total)
}

// Summary is the headline written above the match listing.
func (r Result) Summary() string {
	return FormatScore(r.Percent()) + "% of the words in the message match with the words from the reference vocabulary."
}

// Lines returns the summary, a blank line, and one line per record.
func (r Result) Lines() []string {
	lines := make([]string, 0, len(r.Records)+2)
	lines = append(lines, r.Summary(), "")
	for _, rec := range r.Records {
		lines = append(lines, rec.String())
	}
	return lines
}
