package vocab

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
)

// ErrMissingColumns means no row of the export names all required columns.
var ErrMissingColumns = errors.New("required columns not found")

// Columns names the export's header fields and its delimiter.
type Columns struct {
	Index     string
	Word      string
	Frequency string
	Delimiter rune
}

// DefaultColumns matches the word-list export of common forensic suites.
func DefaultColumns() Columns {
	return Columns{
		Index:     "#",
		Word:      "Word",
		Frequency: "Frequency",
		Delimiter: ',',
	}
}

// LoadFile reads a delimited word-list export from disk.
func LoadFile(filename string, cols Columns) ([]Entry, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open vocabulary %s: %w", filename, err)
	}
	defer file.Close()

	entries, err := Load(file, cols)
	if err != nil {
		return nil, fmt.Errorf("vocabulary %s: %w", filename, err)
	}
	return entries, nil
}

// Load parses a delimited export. Rows before the header row are skipped, which
// covers the title line exports carry. Rows with an annotated index such as
// "(12)" or a non-numeric index are excluded.
func Load(r io.Reader, cols Columns) ([]Entry, error) {
	reader := csv.NewReader(r)
	if cols.Delimiter != 0 {
		reader.Comma = cols.Delimiter
	}
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	indexCol, wordCol, freqCol := -1, -1, -1
	var entries []Entry
	line := 0
	skipped := 0

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row %d: %w", line+1, err)
		}
		line++

		if indexCol < 0 {
			indexCol, wordCol, freqCol = headerPositions(record, cols)
			if indexCol >= 0 {
				log.Debugf("Vocabulary header found on row %d", line)
			}
			continue
		}

		last := max(indexCol, wordCol, freqCol)
		if len(record) <= last {
			skipped++
			continue
		}

		rawIndex := strings.TrimSpace(record[indexCol])
		if strings.ContainsAny(rawIndex, "()") {
			skipped++
			continue
		}
		index, err := strconv.ParseUint(rawIndex, 10, 32)
		if err != nil {
			skipped++
			continue
		}

		word := record[wordCol]
		if word == "" {
			skipped++
			continue
		}

		freq, ok := parseFrequency(record[freqCol])
		if !ok {
			log.Warnf("Row %d: unusable frequency %q for word %q", line, record[freqCol], word)
			skipped++
			continue
		}

		entries = append(entries, Entry{
			Index:     uint32(index),
			Word:      word,
			Frequency: freq,
		})
	}

	if indexCol < 0 {
		return nil, fmt.Errorf("%w: want %q, %q and %q", ErrMissingColumns, cols.Index, cols.Word, cols.Frequency)
	}
	if len(entries) == 0 {
		return nil, ErrEmptyVocabulary
	}

	log.Debugf("Loaded %d vocabulary entries (%d rows excluded)", len(entries), skipped)
	return entries, nil
}

// headerPositions returns the column positions if record is the header row.
func headerPositions(record []string, cols Columns) (int, int, int) {
	indexCol, wordCol, freqCol := -1, -1, -1
	for i, field := range record {
		name := strings.TrimSpace(strings.TrimPrefix(field, "\ufeff"))
		switch name {
		case cols.Index:
			indexCol = i
		case cols.Word:
			wordCol = i
		case cols.Frequency:
			freqCol = i
		}
	}
	if indexCol < 0 || wordCol < 0 || freqCol < 0 {
		return -1, -1, -1
	}
	return indexCol, wordCol, freqCol
}

// parseFrequency accepts integers and integral floats ("12" or "12.0").
func parseFrequency(raw string) (uint32, bool) {
	raw = strings.TrimSpace(raw)
	if v, err := strconv.ParseUint(raw, 10, 32); err == nil {
		return uint32(v), true
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f < 0 || f > math.MaxUint32 || f != math.Trunc(f) {
		return 0, false
	}
	return uint32(f), true
}
