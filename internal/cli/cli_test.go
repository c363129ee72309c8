package cli

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bastiangx/dynlm/internal/inputs"
	"github.com/bastiangx/dynlm/internal/ledger"
	"github.com/bastiangx/dynlm/internal/pipeline"
	"github.com/bastiangx/dynlm/internal/utils"
	"github.com/bastiangx/dynlm/pkg/config"
	"github.com/bastiangx/dynlm/pkg/match"
	"github.com/charmbracelet/huh"
)

const testVocab = "#,Word,Frequency\n1,hello,40\n2,world,12\n3,cat,7\n"

// testModel holds root -> world(5) -> cat(7) and root -> cat(3) at offset 9.
func testModel() []byte {
	data := []byte("\x06dmap\x00\x00\x00\x00")
	for _, v := range []uint16{1, 5, 0, 2, 7, 0, 0, 0, 2, 3, 0, 0, 0} {
		data = binary.LittleEndian.AppendUint16(data, v)
	}
	return data
}

type testEnv struct {
	dir    string
	config string
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	dir := t.TempDir()
	env := testEnv{dir: dir, config: filepath.Join(dir, "config.toml")}

	cfg := config.DefaultConfig()
	cfg.Ledger.Path = filepath.Join(dir, "ledger.db")
	if err := config.SaveConfig(cfg, env.config); err != nil {
		t.Fatalf("failed to save config: %v", err)
	}

	env.write(t, "dynamic.lm", testModel())
	env.write(t, "words.csv", []byte(testVocab))
	env.write(t, "message.txt", []byte("hello world hello nope"))
	return env
}

func (e testEnv) write(t *testing.T, name string, data []byte) {
	t.Helper()
	if err := os.WriteFile(e.path(name), data, 0o644); err != nil {
		t.Fatal(err)
	}
}

func (e testEnv) path(name string) string {
	return filepath.Join(e.dir, name)
}

func (e testEnv) execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	RootCmd.SetOut(&out)
	RootCmd.SetErr(io.Discard)
	RootCmd.SetArgs(append([]string{"--config", e.config}, args...))
	err := RootCmd.Execute()
	return out.String(), err
}

func TestDumpCommand(t *testing.T) {
	env := newTestEnv(t)

	testCases := []struct {
		description string
		args        []string
		expected    string
	}{
		{
			description: "With vocabulary",
			args:        []string{"dump", "--model", env.path("dynamic.lm"), "--vocab", env.path("words.csv")},
			expected:    "root -> world(5) -> cat(7)\nroot -> cat(3)\n",
		},
		{
			description: "Without vocabulary",
			args:        []string{"dump", "--model", env.path("dynamic.lm"), "--vocab", ""},
			expected:    "root -> 1(5) -> 2(7)\nroot -> 2(3)\n",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			got, err := env.execute(t, tc.args...)
			if err != nil {
				t.Fatalf("dump failed: %v", err)
			}
			if got != tc.expected {
				t.Errorf("output = %q, want %q", got, tc.expected)
			}
		})
	}
}

func TestMatchCommand(t *testing.T) {
	env := newTestEnv(t)
	env.write(t, "empty.txt", nil)

	got, err := env.execute(t, "match", "--vocab", env.path("words.csv"), "--message", env.path("message.txt"))
	if err != nil {
		t.Fatalf("match failed: %v", err)
	}
	want := "75.0% of the words in the message match with the words from the reference vocabulary.\n\n" +
		"1 hello(40)\n2 world(12)\n1 hello(40)\n"
	if got != want {
		t.Errorf("output = %q, want %q", got, want)
	}

	got, err = env.execute(t, "match", "--vocab", env.path("words.csv"), "--message", env.path("empty.txt"))
	if err != nil {
		t.Fatalf("an empty message is not an error: %v", err)
	}
	if got != match.EmptyMessageLine+"\n" {
		t.Errorf("output = %q", got)
	}
}

func TestVocabCommand(t *testing.T) {
	env := newTestEnv(t)

	got, err := env.execute(t, "vocab", "--vocab", env.path("words.csv"), "--prefix", "w", "--limit", "0")
	if err != nil {
		t.Fatalf("vocab failed: %v", err)
	}
	if got != "2 world(12)\n" {
		t.Errorf("output = %q", got)
	}

	got, err = env.execute(t, "vocab", "--vocab", env.path("words.csv"), "--prefix", "", "--limit", "2")
	if err != nil {
		t.Fatalf("vocab failed: %v", err)
	}
	if got != "1 hello(40)\n2 world(12)\n" {
		t.Errorf("output = %q", got)
	}
}

func TestRunThenHistoryAndReport(t *testing.T) {
	env := newTestEnv(t)
	outDir := env.path("case-001")

	got, err := env.execute(t, "run",
		"--model", env.path("dynamic.lm"),
		"--vocab", env.path("words.csv"),
		"--message", env.path("message.txt"),
		"--out", outDir)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if !strings.Contains(got, "Finished.") || !strings.Contains(got, "75.0%") {
		t.Errorf("unexpected finish output:\n%s", got)
	}

	bundles, _ := filepath.Glob(filepath.Join(outDir, "*"+pipeline.BundleFileName))
	if len(bundles) != 1 {
		t.Fatalf("expected one report bundle, found %v", bundles)
	}

	got, err = env.execute(t, "history", "--limit", "5")
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	if !strings.Contains(got, ledger.StatusOK) || !strings.Contains(got, outDir) {
		t.Errorf("history should list the run:\n%s", got)
	}

	got, err = env.execute(t, "report", bundles[0])
	if err != nil {
		t.Fatalf("report failed: %v", err)
	}
	for _, want := range []string{"root -> world(5) -> cat(7)", "2 world(12)", "0x9"} {
		if !strings.Contains(got, want) {
			t.Errorf("report output missing %q:\n%s", want, got)
		}
	}

	_, err = env.execute(t, "run",
		"--model", env.path("dynamic.lm"),
		"--vocab", env.path("words.csv"),
		"--message", env.path("message.txt"),
		"--out", outDir)
	if !errors.Is(err, utils.ErrDirExists) {
		t.Errorf("second run into the same folder: err = %v, want ErrDirExists", err)
	}
}

func TestInputHandlerComplete(t *testing.T) {
	base := t.TempDir()

	t.Run("Non-interactive with a missing path", func(t *testing.T) {
		h := NewInputHandler(false, base)
		in := pipeline.Inputs{ModelPath: "a.lm", VocabPath: "", MessagePath: "m.txt", OutputDir: "out"}
		err := h.Complete(&in)
		if !errors.Is(err, errMissingInput) || !strings.Contains(err.Error(), "--vocab") {
			t.Errorf("err = %v, want missing --vocab", err)
		}
	})

	t.Run("All paths given", func(t *testing.T) {
		h := NewInputHandler(false, base)
		h.run = func(*huh.Form) error {
			t.Error("no prompt expected")
			return nil
		}
		in := pipeline.Inputs{ModelPath: "a.lm", VocabPath: "w.csv", MessagePath: "m.txt", OutputDir: "case"}
		if err := h.Complete(&in); err != nil {
			t.Fatal(err)
		}
		if in.OutputDir != filepath.Join(base, "case") {
			t.Errorf("OutputDir = %q", in.OutputDir)
		}
	})

	t.Run("Interactive prompts for the rest", func(t *testing.T) {
		h := NewInputHandler(true, "")
		in := pipeline.Inputs{ModelPath: "a.lm", VocabPath: "w.csv"}
		prompted := false
		h.run = func(*huh.Form) error {
			prompted = true
			in.MessagePath = " m.txt "
			in.OutputDir = "/abs/case"
			return nil
		}
		if err := h.Complete(&in); err != nil {
			t.Fatal(err)
		}
		if !prompted || in.MessagePath != "m.txt" || in.OutputDir != "/abs/case" {
			t.Errorf("prompted=%v inputs=%+v", prompted, in)
		}
	})

	t.Run("Aborted prompt", func(t *testing.T) {
		h := NewInputHandler(true, "")
		h.run = func(*huh.Form) error { return huh.ErrUserAborted }
		in := pipeline.Inputs{}
		if err := h.Complete(&in); !errors.Is(err, huh.ErrUserAborted) {
			t.Errorf("err = %v, want ErrUserAborted", err)
		}
	})
}

func TestValidators(t *testing.T) {
	dir := t.TempDir()
	model := filepath.Join(dir, "dynamic.lm")
	if err := os.WriteFile(model, testModel(), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(dir, "taken"), 0o755); err != nil {
		t.Fatal(err)
	}
	h := NewInputHandler(true, dir)

	testCases := []struct {
		description string
		validate    func(string) error
		input       string
		wantErr     bool
	}{
		{"Existing model", fileValidator(inputs.FormatModel), model, false},
		{"Blank path", fileValidator(inputs.FormatModel), "  ", true},
		{"Missing file", fileValidator(inputs.FormatModel), filepath.Join(dir, "nope.lm"), true},
		{"New folder", h.validateNewDir, "fresh", false},
		{"Folder already exists", h.validateNewDir, "taken", true},
		{"Blank folder", h.validateNewDir, "", true},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			err := tc.validate(tc.input)
			if (err != nil) != tc.wantErr {
				t.Errorf("validate(%q) error = %v, wantErr %v", tc.input, err, tc.wantErr)
			}
		})
	}
}

func TestRenderHistory(t *testing.T) {
	if got := renderHistory(nil); !strings.Contains(got, "No runs") {
		t.Errorf("empty history = %q", got)
	}

	runs := []ledger.Run{
		{ID: "01B", StartedAt: time.Now(), Status: ledger.StatusFailed, Error: "marker not found"},
		{ID: "01A", StartedAt: time.Now(), Status: ledger.StatusOK, Score: 62.5, OutputDir: "case-001"},
	}
	got := renderHistory(runs)
	for _, want := range []string{"01B", "marker not found", "62.5%", "case-001"} {
		if !strings.Contains(got, want) {
			t.Errorf("history missing %q:\n%s", want, got)
		}
	}
}

func TestFileValidatorHintsAtFormat(t *testing.T) {
	err := fileValidator(inputs.FormatModel)("evidence/words.csv")
	if !errors.Is(err, inputs.ErrWrongExtension) {
		t.Fatalf("err = %v, want ErrWrongExtension", err)
	}
	if !strings.Contains(err.Error(), "looks like a word list export") {
		t.Errorf("error should name the detected format: %v", err)
	}
}
