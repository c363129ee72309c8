package pipeline

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/bastiangx/dynlm/internal/inputs"
	"github.com/bastiangx/dynlm/internal/ledger"
	"github.com/bastiangx/dynlm/internal/logger"
	"github.com/bastiangx/dynlm/internal/utils"
	"github.com/bastiangx/dynlm/pkg/config"
	"github.com/bastiangx/dynlm/pkg/lmfile"
	"github.com/bastiangx/dynlm/pkg/match"
	"github.com/bastiangx/dynlm/pkg/report"
	"github.com/bastiangx/dynlm/pkg/vocab"
)

const testVocab = `Word list export
#,Word,Frequency
1,hello,40
2,world,12
3,cat,7
(4),ghost,1
`

var testStart = time.Date(2024, 5, 11, 14, 3, 0, 0, time.UTC)

const testStamp = "2024_05_11-14_03_00_PM "

type record struct {
	index, freq uint16
	children    []record
}

func trie(nodes ...record) []byte {
	var buf []byte
	for _, n := range nodes {
		buf = binary.LittleEndian.AppendUint16(buf, n.index)
		buf = binary.LittleEndian.AppendUint16(buf, n.freq)
		buf = binary.LittleEndian.AppendUint16(buf, 0)
		buf = append(buf, trie(n.children...)...)
	}
	return binary.LittleEndian.AppendUint16(buf, 0)
}

// model wraps a trie in a container: 4 header bytes, the marker, 4 padding
// bytes, then the trie at offset 13.
func model(body []byte) []byte {
	data := []byte("HDR!\x06dmap\x00\x00\x00\x00")
	return append(data, body...)
}

var testTrie = trie(
	record{index: 1, freq: 5, children: []record{{index: 2, freq: 7}}},
	record{index: 2, freq: 3},
)

type memRecorder struct {
	runs []ledger.Run
}

func (m *memRecorder) Record(_ context.Context, r ledger.Run) error {
	m.runs = append(m.runs, r)
	return nil
}

type fixture struct {
	in  Inputs
	rec *memRecorder
}

func newFixture(t *testing.T, modelData []byte, message string) fixture {
	t.Helper()
	dir := t.TempDir()
	in := Inputs{
		ModelPath:   filepath.Join(dir, "dynamic.lm"),
		VocabPath:   filepath.Join(dir, "words.csv"),
		MessagePath: filepath.Join(dir, "message.txt"),
		OutputDir:   filepath.Join(dir, "case-001"),
	}
	writeFile(t, in.ModelPath, modelData)
	writeFile(t, in.VocabPath, []byte(testVocab))
	writeFile(t, in.MessagePath, []byte(message))
	return fixture{in: in, rec: &memRecorder{}}
}

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	return strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
}

func (f fixture) run(t *testing.T) (*Outcome, error) {
	t.Helper()
	return Run(context.Background(), f.in, config.DefaultConfig(), Options{
		RunID:    "01TESTRUN",
		Now:      func() time.Time { return testStart },
		Recorder: f.rec,
		Logger:   logger.Discard(),
	})
}

func TestRunWritesOutputs(t *testing.T) {
	f := newFixture(t, model(testTrie), "hello world hello nope\n")

	out, err := f.run(t)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if out.TrieOffset != 13 {
		t.Errorf("TrieOffset = %d, want 13", out.TrieOffset)
	}
	if want := filepath.Join(f.in.OutputDir, testStamp+PredictFileName); out.PredictFile != want {
		t.Errorf("PredictFile = %q, want %q", out.PredictFile, want)
	}

	wantPaths := []string{"root -> world(5) -> cat(7)", "root -> cat(3)"}
	if got := readLines(t, out.PredictFile); !slices.Equal(got, wantPaths) {
		t.Errorf("predict file = %q, want %q", got, wantPaths)
	}

	wantMessage := []string{
		"75.0% of the words in the message match with the words from the reference vocabulary.",
		"",
		"1 hello(40)",
		"2 world(12)",
		"1 hello(40)",
	}
	if got := readLines(t, out.MessageFile); !slices.Equal(got, wantMessage) {
		t.Errorf("message file = %q, want %q", got, wantMessage)
	}

	activity, err := os.ReadFile(out.ActivityFile)
	if err != nil {
		t.Fatalf("activity log missing: %v", err)
	}
	if !strings.Contains(string(activity), "0xd") {
		t.Errorf("activity log should record the trie offset in hex, got:\n%s", activity)
	}

	bundle, err := report.ReadBundle(out.BundleFile)
	if err != nil {
		t.Fatalf("ReadBundle failed: %v", err)
	}
	if bundle.RunID != "01TESTRUN" || bundle.Matched != 3 || bundle.Total != 4 || bundle.Score != 75 {
		t.Errorf("unexpected bundle %+v", bundle)
	}
	if !slices.Equal(bundle.Paths, wantPaths) {
		t.Errorf("bundle paths = %q, want %q", bundle.Paths, wantPaths)
	}

	if len(f.rec.runs) != 1 {
		t.Fatalf("recorded %d runs, want 1", len(f.rec.runs))
	}
	run := f.rec.runs[0]
	if run.Status != ledger.StatusOK || run.Paths != 2 || run.Matched != 3 || len(run.ModelSHA256) != 64 {
		t.Errorf("unexpected ledger entry %+v", run)
	}
}

func TestRunEmptyMessage(t *testing.T) {
	f := newFixture(t, model(testTrie), " \n\t\n")

	out, err := f.run(t)
	if err != nil {
		t.Fatalf("an empty message should not fail the run: %v", err)
	}
	if !out.EmptyMessage {
		t.Error("EmptyMessage should be set")
	}

	if got := readLines(t, out.MessageFile); !slices.Equal(got, []string{match.EmptyMessageLine}) {
		t.Errorf("message file = %q", got)
	}
	if got := readLines(t, out.PredictFile); len(got) != 2 {
		t.Errorf("trie should still be written, got %q", got)
	}
	if run := f.rec.runs[0]; run.Status != ledger.StatusEmptyMessage || run.Score != 0 {
		t.Errorf("unexpected ledger entry %+v", run)
	}
}

func TestRunFailures(t *testing.T) {
	testCases := []struct {
		description string
		model       []byte
		prepare     func(t *testing.T, in *Inputs)
		wantErr     error
	}{
		{
			description: "Model without marker",
			model:       []byte("no marker in here"),
			wantErr:     lmfile.ErrMarkerNotFound,
		},
		{
			description: "Truncated trie",
			model:       model(testTrie[:len(testTrie)-2]),
			wantErr:     lmfile.ErrTruncatedStream,
		},
		{
			description: "Output folder already exists",
			model:       model(testTrie),
			prepare: func(t *testing.T, in *Inputs) {
				if err := os.Mkdir(in.OutputDir, 0o755); err != nil {
					t.Fatal(err)
				}
			},
			wantErr: utils.ErrDirExists,
		},
		{
			description: "Message with the wrong extension",
			model:       model(testTrie),
			prepare: func(t *testing.T, in *Inputs) {
				renamed := strings.TrimSuffix(in.MessagePath, ".txt") + ".docx"
				if err := os.Rename(in.MessagePath, renamed); err != nil {
					t.Fatal(err)
				}
				in.MessagePath = renamed
			},
			wantErr: inputs.ErrWrongExtension,
		},
		{
			description: "Vocabulary without usable rows",
			model:       model(testTrie),
			prepare: func(t *testing.T, in *Inputs) {
				writeFile(t, in.VocabPath, []byte("#,Word,Frequency\n(1),x,2\n"))
			},
			wantErr: vocab.ErrEmptyVocabulary,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			f := newFixture(t, tc.model, "hello")
			if tc.prepare != nil {
				tc.prepare(t, &f.in)
			}

			_, err := f.run(t)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("Run error = %v, want %v", err, tc.wantErr)
			}
			if len(f.rec.runs) != 1 {
				t.Fatalf("recorded %d runs, want 1", len(f.rec.runs))
			}
			if run := f.rec.runs[0]; run.Status != ledger.StatusFailed || run.Error == "" {
				t.Errorf("unexpected ledger entry %+v", run)
			}
		})
	}
}

func TestRunKeepsPartialTrie(t *testing.T) {
	f := newFixture(t, model(testTrie[:len(testTrie)-2]), "hello")

	out, err := f.run(t)
	if !errors.Is(err, lmfile.ErrTruncatedStream) {
		t.Fatalf("Run error = %v, want ErrTruncatedStream", err)
	}
	got := readLines(t, out.PredictFile)
	want := []string{"root -> world(5) -> cat(7)", "root -> cat(3)"}
	if !slices.Equal(got, want) {
		t.Errorf("lines written before the failure = %q, want %q", got, want)
	}
	if out.MessageFile != "" {
		t.Errorf("message stage should not run after a fatal trie error")
	}
}

func TestDumpTrie(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Model.RootLabel = "ROOT"
	cfg.Model.Separator = "/"

	var buf bytes.Buffer
	sink := report.NewWriterSink(&buf)
	offset, stats, err := DumpTrie(model(testTrie), nil, cfg, sink)
	if err != nil {
		t.Fatalf("DumpTrie failed: %v", err)
	}
	if err := sink.Flush(); err != nil {
		t.Fatal(err)
	}

	if offset != 13 || stats.Paths != 2 || stats.Records != 3 {
		t.Errorf("offset %d, stats %+v", offset, stats)
	}
	if want := "ROOT/1(5)/2(7)\nROOT/2(3)\n"; buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
}

func TestDumpTrieBadMarker(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Model.Marker = "zz"

	_, _, err := DumpTrie(model(testTrie), nil, cfg, report.NewWriterSink(&bytes.Buffer{}))
	if err == nil {
		t.Fatal("expected an error for a marker that is not hex")
	}
}

func TestMatchMessage(t *testing.T) {
	index := vocab.NewIndex([]vocab.Entry{
		{Index: 1, Word: "hello", Frequency: 40},
		{Index: 2, Word: "world", Frequency: 12},
	})

	testCases := []struct {
		description string
		message     string
		wantErr     error
		expected    string
	}{
		{
			description: "Repeated word",
			message:     "hello world hello",
			expected: "100.0% of the words in the message match with the words from the reference vocabulary.\n\n" +
				"1 hello(40)\n2 world(12)\n1 hello(40)\n",
		},
		{
			description: "Nothing matches",
			message:     "Hello, world!",
			expected:    "0.0% of the words in the message match with the words from the reference vocabulary.\n\n",
		},
		{
			description: "Empty message",
			message:     "   ",
			wantErr:     match.ErrEmptyMessage,
			expected:    match.EmptyMessageLine + "\n",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			var buf bytes.Buffer
			sink := report.NewWriterSink(&buf)
			_, err := MatchMessage(tc.message, index, sink)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("error = %v, want %v", err, tc.wantErr)
			}
			if err := sink.Flush(); err != nil {
				t.Fatal(err)
			}
			if buf.String() != tc.expected {
				t.Errorf("output = %q, want %q", buf.String(), tc.expected)
			}
		})
	}
}

func TestLoadVocabularyAppliesModelOffset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "words.tsv")
	writeFile(t, path, []byte("#\tWord\tFrequency\n1\thello\t40\n2\tworld\t12\n"))

	index, err := LoadVocabulary(path, config.DefaultConfig())
	if err != nil {
		t.Fatalf("LoadVocabulary failed: %v", err)
	}
	if w, ok := index.Word(1); !ok || w != "world" {
		t.Errorf("Word(1) = %q, %v; want world", w, ok)
	}
	if _, ok := index.Lookup("hello"); !ok {
		t.Error("hello should be found by word")
	}
}

func TestLoadVocabularyDefaultColumns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "words.csv")
	writeFile(t, path, []byte(testVocab))

	cfg := config.DefaultConfig()
	cfg.Vocab.IndexColumn = ""
	cfg.Vocab.WordColumn = ""
	cfg.Vocab.FrequencyColumn = ""

	index, err := LoadVocabulary(path, cfg)
	if err != nil {
		t.Fatalf("LoadVocabulary failed: %v", err)
	}
	if e, ok := index.Lookup("cat"); !ok || e.Index != 3 || e.Frequency != 7 {
		t.Errorf("Lookup(cat) = %+v, %v", e, ok)
	}
}

func TestDumpTrieNegativeOffset(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Model.TrieOffset = -5

	_, stats, err := DumpTrie(model(testTrie), nil, cfg, report.NewWriterSink(&bytes.Buffer{}))
	if err == nil {
		t.Fatal("expected an error for a negative trie offset")
	}
	if errors.Is(err, lmfile.ErrTruncatedStream) || stats.Paths != 0 {
		t.Errorf("err = %v, stats = %+v", err, stats)
	}
}
