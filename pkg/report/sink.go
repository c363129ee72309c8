/*
Package report writes the results of a run: plain text line files for the
examiner and a msgpack bundle for other tools.

Text output is line oriented. Trie paths are written as they are decoded, so a
run that fails mid-decode leaves the lines written so far on disk.

The bundle uses short msgpack keys:

	{"id": "01J...", "mp": "dynamic.lm", "off": 4242, "p": ["root -> hi(3)"], "m": [{"i": 1, "w": "hi", "f": 3}], "mc": 1, "tc": 1, "s": 100}
*/
package report

import (
	"bufio"
	"fmt"
	"io"
	"os"
)

// LineSink receives output one line at a time.
type LineSink interface {
	WriteLine(line string) error
}

// WriterSink buffers lines onto an io.Writer.
type WriterSink struct {
	w     *bufio.Writer
	lines int
}

// NewWriterSink wraps w. Call Flush when done.
func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{w: bufio.NewWriter(w)}
}

// WriteLine writes line followed by a newline.
func (s *WriterSink) WriteLine(line string) error {
	if _, err := s.w.WriteString(line); err != nil {
		return err
	}
	if err := s.w.WriteByte('\n'); err != nil {
		return err
	}
	s.lines++
	return nil
}

// WriteLines writes every line in order.
func (s *WriterSink) WriteLines(lines []string) error {
	for _, line := range lines {
		if err := s.WriteLine(line); err != nil {
			return err
		}
	}
	return nil
}

// Lines returns how many lines were written.
func (s *WriterSink) Lines() int {
	return s.lines
}

// Flush pushes buffered lines to the underlying writer.
func (s *WriterSink) Flush() error {
	return s.w.Flush()
}

// FileSink is a WriterSink backed by a new file.
type FileSink struct {
	*WriterSink
	file *os.File
}

// CreateFile creates path, failing if it already exists.
func CreateFile(path string) (*FileSink, error) {
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file %s: %w", path, err)
	}
	return &FileSink{WriterSink: NewWriterSink(file), file: file}, nil
}

// Name returns the file path.
func (s *FileSink) Name() string {
	return s.file.Name()
}

// Close flushes and closes the file. It is safe to call more than once.
func (s *FileSink) Close() error {
	if s.file == nil {
		return nil
	}
	flushErr := s.Flush()
	closeErr := s.file.Close()
	s.file = nil
	if flushErr != nil {
		return flushErr
	}
	return closeErr
}
