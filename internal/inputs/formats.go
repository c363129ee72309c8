// Package inputs checks the evidence files handed to a run before any parsing starts.
package inputs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
)

// ErrWrongExtension means a file does not carry the extension its role requires.
var ErrWrongExtension = errors.New("unexpected file extension")

// FileFormat represents the role of an input file
type FileFormat int

const (
	FormatUnknown FileFormat = iota
	FormatModel              // dynamic.lm language model
	FormatVocab              // word-list export
	FormatMessage            // plain text message
)

// FormatInfo contains metadata about an input format
type FormatInfo struct {
	Format      FileFormat
	Description string
	Extensions  []string
	Example     string
}

var supportedFormats = map[FileFormat]FormatInfo{
	FormatModel: {
		Format:      FormatModel,
		Description: "dynamic language model",
		Extensions:  []string{".lm"},
		Example:     "/home/tmp/dynamic.lm",
	},
	FormatVocab: {
		Format:      FormatVocab,
		Description: "word list export",
		Extensions:  []string{".csv", ".tsv"},
		Example:     "/home/tmp/20220511_word_list.csv",
	},
	FormatMessage: {
		Format:      FormatMessage,
		Description: "text message",
		Extensions:  []string{".txt"},
		Example:     "/home/tmp/message1.txt",
	},
}

// GetFormatInfo returns information about a specific format
func GetFormatInfo(format FileFormat) (FormatInfo, bool) {
	info, exists := supportedFormats[format]
	return info, exists
}

// ValidateFile checks that filename has the right extension for format and can
// be opened for reading. An empty file is allowed: an empty message is a valid
// input and an empty model fails later with a precise error.
func ValidateFile(filename string, format FileFormat) error {
	info, exists := supportedFormats[format]
	if !exists {
		return fmt.Errorf("unknown format: %v", format)
	}

	ext := strings.ToLower(filepath.Ext(filename))
	validExt := false
	for _, validExtension := range info.Extensions {
		if ext == validExtension {
			validExt = true
			break
		}
	}
	if !validExt {
		return fmt.Errorf("%s should be a %s file (%s): %w",
			filename, info.Description, strings.Join(info.Extensions, ", "), ErrWrongExtension)
	}

	stat, err := os.Stat(filename)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", filename, err)
	}
	if stat.IsDir() {
		return fmt.Errorf("%s is a directory, expected a %s file", filename, info.Description)
	}

	file, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", filename, err)
	}
	file.Close()

	log.Debugf("%s %s validated (%d bytes)", info.Description, filename, stat.Size())
	return nil
}

// DetectFormat guesses the role of a file from its extension.
func DetectFormat(filename string) FileFormat {
	ext := strings.ToLower(filepath.Ext(filename))
	for format, info := range supportedFormats {
		for _, e := range info.Extensions {
			if e == ext {
				return format
			}
		}
	}
	return FormatUnknown
}

// VocabDelimiter returns the delimiter implied by a vocabulary file's extension.
func VocabDelimiter(filename string, fallback rune) rune {
	if strings.ToLower(filepath.Ext(filename)) == ".tsv" {
		return '\t'
	}
	return fallback
}
