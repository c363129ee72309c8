// Package pipeline runs an examination end to end: locate and decode the
// model's trie, match the message against the vocabulary, and write every
// result into a fresh run folder.
package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bastiangx/dynlm/internal/inputs"
	"github.com/bastiangx/dynlm/internal/ledger"
	"github.com/bastiangx/dynlm/internal/logger"
	"github.com/bastiangx/dynlm/internal/utils"
	"github.com/bastiangx/dynlm/pkg/config"
	"github.com/bastiangx/dynlm/pkg/lmfile"
	"github.com/bastiangx/dynlm/pkg/match"
	"github.com/bastiangx/dynlm/pkg/report"
	"github.com/charmbracelet/log"
	"github.com/oklog/ulid/v2"
)

// Output file names, prefixed with the run timestamp.
const (
	PredictFileName  = "result_predict.txt"
	MessageFileName  = "result_message.txt"
	ActivityFileName = "activity.log"
	BundleFileName   = "result.msgpack"
)

// Inputs names the evidence files and the run folder to create.
type Inputs struct {
	ModelPath   string
	VocabPath   string
	MessagePath string
	OutputDir   string
}

// Recorder stores run history. *ledger.Ledger satisfies it.
type Recorder interface {
	Record(ctx context.Context, r ledger.Run) error
}

// Options tune a run. The zero value is usable.
type Options struct {
	RunID    string
	Now      func() time.Time
	Recorder Recorder
	// Logger receives console messages; nil means the default charm logger.
	Logger *log.Logger
}

// Outcome describes a finished run.
type Outcome struct {
	RunID        string
	OutputDir    string
	TrieOffset   int
	Trie         lmfile.Stats
	Match        match.Result
	EmptyMessage bool
	PredictFile  string
	MessageFile  string
	ActivityFile string
	BundleFile   string
}

// Run executes the whole examination. Fatal errors abort the run; trie lines
// written before the failure stay in the predict file.
func Run(ctx context.Context, in Inputs, cfg *config.Config, opts Options) (*Outcome, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}
	logr := opts.Logger
	if logr == nil {
		logr = log.Default()
	}
	started := now()
	out := &Outcome{RunID: opts.RunID, OutputDir: in.OutputDir}
	if out.RunID == "" {
		out.RunID = ulid.Make().String()
	}

	entry := ledger.Run{
		ID:          out.RunID,
		StartedAt:   started,
		OutputDir:   in.OutputDir,
		ModelPath:   in.ModelPath,
		VocabPath:   in.VocabPath,
		MessagePath: in.MessagePath,
	}

	err := run(in, cfg, started, out, &entry)
	switch {
	case err != nil:
		entry.Status = ledger.StatusFailed
		entry.Error = err.Error()
	case out.EmptyMessage:
		entry.Status = ledger.StatusEmptyMessage
	default:
		entry.Status = ledger.StatusOK
	}
	if opts.Recorder != nil {
		if recErr := opts.Recorder.Record(ctx, entry); recErr != nil {
			logr.Warnf("Failed to record run in ledger: %v", recErr)
		}
	}
	if err != nil {
		return out, err
	}
	logr.Debug("Run finished", "id", out.RunID, "paths", out.Trie.Paths, "matched", out.Match.Matched)
	return out, nil
}

func run(in Inputs, cfg *config.Config, started time.Time, out *Outcome, entry *ledger.Run) error {
	for _, check := range []struct {
		path   string
		format inputs.FileFormat
	}{
		{in.ModelPath, inputs.FormatModel},
		{in.VocabPath, inputs.FormatVocab},
		{in.MessagePath, inputs.FormatMessage},
	} {
		if err := inputs.ValidateFile(check.path, check.format); err != nil {
			return fmt.Errorf("input check: %w", err)
		}
	}

	if err := utils.CreateRunDir(in.OutputDir); err != nil {
		return fmt.Errorf("output folder: %w", err)
	}
	stamp := func(name string) string {
		return filepath.Join(in.OutputDir, utils.StampedName(started, cfg.Output.TimestampLayout, name))
	}

	out.ActivityFile = stamp(ActivityFileName)
	activityFile, err := os.Create(out.ActivityFile)
	if err != nil {
		return fmt.Errorf("activity log: %w", err)
	}
	defer activityFile.Close()
	alog := logger.NewActivity(activityFile)
	alog.Info("Run started", "id", out.RunID, "folder", utils.GetAbsolutePath(in.OutputDir))
	alog.Info("Inputs", "model", in.ModelPath, "vocab", in.VocabPath, "message", in.MessagePath)

	index, err := LoadVocabulary(in.VocabPath, cfg)
	if err != nil {
		alog.Error("Unable to extract information from the vocabulary export", "err", err)
		return fmt.Errorf("vocabulary stage: %w", err)
	}
	alog.Info("Vocabulary loaded", "entries", index.Len())

	data, err := os.ReadFile(in.ModelPath)
	if err != nil {
		return fmt.Errorf("model stage: %w", err)
	}
	sum := sha256.Sum256(data)
	entry.ModelSHA256 = hex.EncodeToString(sum[:])
	alog.Info("Model read", "bytes", len(data), "sha256", entry.ModelSHA256)

	out.PredictFile = stamp(PredictFileName)
	predict, err := report.CreateFile(out.PredictFile)
	if err != nil {
		return err
	}
	defer predict.Close()

	var paths []string
	keep := cfg.Output.Msgpack
	offset, stats, err := DumpTrie(data, index, cfg, lineFunc(func(line string) error {
		if keep {
			paths = append(paths, line)
		}
		return predict.WriteLine(line)
	}))
	out.TrieOffset, out.Trie = offset, stats
	entry.TrieOffset, entry.Paths = offset, stats.Paths
	if err != nil {
		alog.Error("Trie decoding failed", "err", err, "paths_written", stats.Paths)
		return fmt.Errorf("model stage (%s): %w", in.ModelPath, err)
	}
	if err := predict.Close(); err != nil {
		return fmt.Errorf("writing %s: %w", out.PredictFile, err)
	}
	alog.Infof("Trie starts at offset: %#x", offset)
	alog.Info("Trie written", "paths", stats.Paths, "records", stats.Records, "depth", stats.MaxDepth, "file", out.PredictFile)

	message, err := os.ReadFile(in.MessagePath)
	if err != nil {
		return fmt.Errorf("message stage: %w", err)
	}

	out.MessageFile = stamp(MessageFileName)
	msgSink, err := report.CreateFile(out.MessageFile)
	if err != nil {
		return err
	}
	defer msgSink.Close()

	res, err := MatchMessage(string(message), index, msgSink)
	out.Match = res
	entry.Matched, entry.Total = res.Matched, res.Total
	switch {
	case errors.Is(err, match.ErrEmptyMessage):
		out.EmptyMessage = true
		alog.Warn("The message file is empty, nothing to compare")
	case err != nil:
		return fmt.Errorf("message stage: %w", err)
	default:
		entry.Score = res.Percent()
		alog.Infof("The matching words rate = %s%%", match.FormatScore(entry.Score))
	}
	if err := msgSink.Close(); err != nil {
		return fmt.Errorf("writing %s: %w", out.MessageFile, err)
	}

	if cfg.Output.Msgpack {
		out.BundleFile = stamp(BundleFileName)
		bundle := &report.Bundle{
			RunID:        out.RunID,
			CreatedAt:    started,
			ModelPath:    in.ModelPath,
			VocabPath:    in.VocabPath,
			MessagePath:  in.MessagePath,
			TrieOffset:   offset,
			Paths:        paths,
			Matches:      res.Records,
			Matched:      res.Matched,
			Total:        res.Total,
			Score:        entry.Score,
			EmptyMessage: out.EmptyMessage,
		}
		if err := report.WriteBundle(out.BundleFile, bundle); err != nil {
			return err
		}
	}

	alog.Info("Finished.")
	return nil
}

// lineFunc adapts a function to report.LineSink.
type lineFunc func(string) error

func (f lineFunc) WriteLine(line string) error {
	return f(line)
}
