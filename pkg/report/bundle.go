package report

import (
	"fmt"
	"os"
	"time"

	"github.com/bastiangx/dynlm/pkg/match"
	"github.com/vmihailenco/msgpack/v5"
)

// Bundle is the machine readable summary of one run.
type Bundle struct {
	RunID        string         `msgpack:"id"`
	CreatedAt    time.Time      `msgpack:"at"`
	ModelPath    string         `msgpack:"mp"`
	VocabPath    string         `msgpack:"vp"`
	MessagePath  string         `msgpack:"msp"`
	TrieOffset   int            `msgpack:"off"`
	Paths        []string       `msgpack:"p"`
	Matches      []match.Record `msgpack:"m"`
	Matched      int            `msgpack:"mc"`
	Total        int            `msgpack:"tc"`
	Score        float64        `msgpack:"s"`
	EmptyMessage bool           `msgpack:"e,omitempty"`
}

// WriteBundle encodes b to a new file at path.
func WriteBundle(path string, b *Bundle) error {
	data, err := msgpack.Marshal(b)
	if err != nil {
		return fmt.Errorf("failed to encode report bundle: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write report bundle %s: %w", path, err)
	}
	return nil
}

// ReadBundle decodes a bundle written by WriteBundle.
func ReadBundle(path string) (*Bundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read report bundle %s: %w", path, err)
	}
	var b Bundle
	if err := msgpack.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("failed to decode report bundle %s: %w", path, err)
	}
	return &b, nil
}
