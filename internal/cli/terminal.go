package cli

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/bastiangx/dynlm/internal/ledger"
	"github.com/bastiangx/dynlm/internal/pipeline"
	"github.com/bastiangx/dynlm/internal/utils"
	"github.com/bastiangx/dynlm/pkg/match"
	"github.com/bastiangx/dynlm/pkg/report"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

var (
	text   = lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"}
	muted  = lipgloss.AdaptiveColor{Light: "#9893a5", Dark: "#6e6a86"}
	accent = lipgloss.AdaptiveColor{Light: "#286983", Dark: "#9ccfd8"}
	warn   = lipgloss.AdaptiveColor{Light: "#ea9d34", Dark: "#f6c177"}
	bad    = lipgloss.AdaptiveColor{Light: "#b4637a", Dark: "#eb6f92"}

	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(accent)
	labelStyle = lipgloss.NewStyle().Foreground(muted)
	valueStyle = lipgloss.NewStyle().Foreground(text)
	boxStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(muted).
			Padding(0, 1)
)

// printVersion writes the version banner.
func printVersion(w io.Writer) {
	logger := log.NewWithOptions(w, log.Options{
		ReportCaller:    false,
		ReportTimestamp: false,
		Prefix:          "",
	})

	styles := log.DefaultStyles()
	styles.Values["version"] = lipgloss.NewStyle().Bold(true).Foreground(text)
	styles.Values["gh"] = lipgloss.NewStyle().Italic(true).Foreground(text)
	logger.SetStyles(styles)

	logger.Print("")
	logger.Print("[ dynlm ] Reconstructs dynamic.lm prediction tries")
	logger.Print("", "version", Version)
	logger.Print("")
	logger.Print("use -h or --help to see available commands")
	logger.Print("Github Repo", "gh", gh)
}

// renderFinish summarizes a finished run and where its files went.
func renderFinish(out *pipeline.Outcome) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Finished."))
	b.WriteString("\n\n")

	row := func(label, value string) {
		b.WriteString(labelStyle.Render(fmt.Sprintf("%-10s", label)))
		b.WriteString(valueStyle.Render(value))
		b.WriteString("\n")
	}
	row("run", out.RunID)
	row("trie", fmt.Sprintf("%s paths at offset %#x", utils.FormatWithCommas(uint64(out.Trie.Paths)), out.TrieOffset))
	if out.EmptyMessage {
		b.WriteString(lipgloss.NewStyle().Foreground(warn).Render(match.EmptyMessageLine))
		b.WriteString("\n")
	} else {
		row("match", fmt.Sprintf("%s%% (%d of %d words)", match.FormatScore(out.Match.Percent()), out.Match.Matched, out.Match.Total))
	}
	b.WriteString("\n")
	b.WriteString(labelStyle.Render("The output files are located in:"))
	b.WriteString("\n")
	b.WriteString(valueStyle.Render(utils.GetAbsolutePath(out.OutputDir)))
	b.WriteString("\n")
	for _, f := range []string{out.PredictFile, out.MessageFile, out.ActivityFile, out.BundleFile} {
		if f == "" {
			continue
		}
		b.WriteString(labelStyle.Render("  " + filepath.Base(f)))
		b.WriteString("\n")
	}
	return boxStyle.Render(strings.TrimRight(b.String(), "\n"))
}

// renderHistory lists runs one per line, newest first.
func renderHistory(runs []ledger.Run) string {
	if len(runs) == 0 {
		return labelStyle.Render("No runs recorded yet.")
	}
	var b strings.Builder
	for _, r := range runs {
		status := valueStyle
		switch r.Status {
		case ledger.StatusFailed:
			status = lipgloss.NewStyle().Foreground(bad)
		case ledger.StatusEmptyMessage:
			status = lipgloss.NewStyle().Foreground(warn)
		}
		score := "-"
		if r.Status == ledger.StatusOK {
			score = match.FormatScore(r.Score) + "%"
		}
		fmt.Fprintf(&b, "%s  %s  %s  %s  %s\n",
			labelStyle.Render(r.StartedAt.Local().Format("2006-01-02 15:04:05")),
			valueStyle.Render(r.ID),
			status.Render(fmt.Sprintf("%-13s", r.Status)),
			valueStyle.Render(fmt.Sprintf("%6s", score)),
			labelStyle.Render(r.OutputDir),
		)
		if r.Error != "" {
			b.WriteString(lipgloss.NewStyle().Foreground(bad).Render("    " + r.Error))
			b.WriteString("\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// renderBundle prints a saved report in the same layout as the result files.
func renderBundle(w io.Writer, b *report.Bundle) error {
	fmt.Fprintln(w, titleStyle.Render("Run "+b.RunID))
	fmt.Fprintln(w, labelStyle.Render("created  ")+valueStyle.Render(b.CreatedAt.Local().Format("2006-01-02 15:04:05")))
	fmt.Fprintln(w, labelStyle.Render("model    ")+valueStyle.Render(b.ModelPath))
	fmt.Fprintln(w, labelStyle.Render("vocab    ")+valueStyle.Render(b.VocabPath))
	fmt.Fprintln(w, labelStyle.Render("message  ")+valueStyle.Render(b.MessagePath))
	fmt.Fprintln(w, labelStyle.Render("offset   ")+valueStyle.Render(fmt.Sprintf("%#x", b.TrieOffset)))
	fmt.Fprintln(w)

	sink := report.NewWriterSink(w)
	if err := sink.WriteLines(b.Paths); err != nil {
		return err
	}
	if err := sink.WriteLine(""); err != nil {
		return err
	}
	if b.EmptyMessage {
		if err := sink.WriteLine(match.EmptyMessageLine); err != nil {
			return err
		}
		return sink.Flush()
	}
	res := match.Result{Matched: b.Matched, Total: b.Total, Records: b.Matches}
	if err := sink.WriteLines(res.Lines()); err != nil {
		return err
	}
	return sink.Flush()
}
