package pipeline

import (
	"errors"

	"github.com/bastiangx/dynlm/internal/inputs"
	"github.com/bastiangx/dynlm/pkg/config"
	"github.com/bastiangx/dynlm/pkg/lmfile"
	"github.com/bastiangx/dynlm/pkg/match"
	"github.com/bastiangx/dynlm/pkg/report"
	"github.com/bastiangx/dynlm/pkg/vocab"
	"github.com/charmbracelet/log"
)

// LoadVocabulary reads a word-list export into an index configured for cfg.
// Column names left empty in cfg fall back to vocab.DefaultColumns.
func LoadVocabulary(path string, cfg *config.Config) (*vocab.Index, error) {
	cols := vocab.DefaultColumns()
	if cfg.Vocab.IndexColumn != "" {
		cols.Index = cfg.Vocab.IndexColumn
	}
	if cfg.Vocab.WordColumn != "" {
		cols.Word = cfg.Vocab.WordColumn
	}
	if cfg.Vocab.FrequencyColumn != "" {
		cols.Frequency = cfg.Vocab.FrequencyColumn
	}
	cols.Delimiter = inputs.VocabDelimiter(path, cfg.Vocab.DelimiterRune())
	entries, err := vocab.LoadFile(path, cols)
	if err != nil {
		return nil, err
	}
	return vocab.NewIndex(entries, vocab.WithModelOffset(cfg.Vocab.ModelIndexOffset)), nil
}

// DumpTrie locates the trie in data and writes every path to sink.
// It returns the trie offset and the walk statistics, also on failure.
func DumpTrie(data []byte, words lmfile.Resolver, cfg *config.Config, sink report.LineSink) (int, lmfile.Stats, error) {
	marker, err := cfg.Model.MarkerBytes()
	if err != nil {
		return 0, lmfile.Stats{}, err
	}
	offset, err := lmfile.Locate(data, marker, cfg.Model.TrieOffset)
	if err != nil {
		return 0, lmfile.Stats{}, err
	}
	log.Debugf("Trie starts at offset %#x", offset)

	dec := lmfile.NewDecoder(data, offset, words)
	dec.RootLabel = cfg.Model.RootLabel
	dec.Separator = cfg.Model.Separator
	dec.MaxDepth = cfg.Model.MaxDepth

	stats, err := dec.Walk(sink.WriteLine)
	return offset, stats, err
}

// MatchMessage scores message against words and writes the summary and the
// match listing to sink. An empty message writes match.EmptyMessageLine and
// returns match.ErrEmptyMessage.
func MatchMessage(message string, words match.Lookup, sink report.LineSink) (match.Result, error) {
	res, err := match.Match(message, words)
	if errors.Is(err, match.ErrEmptyMessage) {
		if werr := sink.WriteLine(match.EmptyMessageLine); werr != nil {
			return res, werr
		}
		return res, err
	}
	if err != nil {
		return res, err
	}
	for _, line := range res.Lines() {
		if err := sink.WriteLine(line); err != nil {
			return res, err
		}
	}
	return res, nil
}
