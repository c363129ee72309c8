package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bastiangx/dynlm/internal/inputs"
	"github.com/bastiangx/dynlm/internal/pipeline"
	"github.com/bastiangx/dynlm/internal/utils"
	"github.com/charmbracelet/huh"
	"github.com/mattn/go-isatty"
)

// errMissingInput is returned when a path is missing and no terminal is
// available to ask for it.
var errMissingInput = errors.New("missing input")

// Interactive reports whether stdin is a terminal we can prompt on.
func Interactive() bool {
	fd := os.Stdin.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// InputHandler asks for the paths a run still needs.
type InputHandler struct {
	interactive bool
	outputBase  string
	run         func(*huh.Form) error
}

// NewInputHandler returns a handler that prompts only when interactive is set.
// Relative output folders are placed under outputBase.
func NewInputHandler(interactive bool, outputBase string) *InputHandler {
	return &InputHandler{
		interactive: interactive,
		outputBase:  outputBase,
		run:         func(f *huh.Form) error { return f.Run() },
	}
}

type pathField struct {
	flag     string
	format   inputs.FileFormat
	value    *string
	validate func(string) error
}

// Complete fills every empty field of in and resolves the output folder
// against the output base. Without a terminal, the first empty field is an
// error naming its flag.
func (h *InputHandler) Complete(in *pipeline.Inputs) error {
	fields := []pathField{
		{"model", inputs.FormatModel, &in.ModelPath, fileValidator(inputs.FormatModel)},
		{"vocab", inputs.FormatVocab, &in.VocabPath, fileValidator(inputs.FormatVocab)},
		{"message", inputs.FormatMessage, &in.MessagePath, fileValidator(inputs.FormatMessage)},
		{"out", inputs.FormatUnknown, &in.OutputDir, h.validateNewDir},
	}

	var missing []huh.Field
	for _, f := range fields {
		if *f.value != "" {
			continue
		}
		if !h.interactive {
			return fmt.Errorf("%w: --%s is required when not running in a terminal", errMissingInput, f.flag)
		}
		title, placeholder := "Name of the new folder for the results", "case-001"
		if info, ok := inputs.GetFormatInfo(f.format); ok {
			title = fmt.Sprintf("Path to the %s (%s)", info.Description, strings.Join(info.Extensions, ", "))
			placeholder = info.Example
		}
		missing = append(missing, huh.NewInput().
			Title(title).
			Placeholder(placeholder).
			Value(f.value).
			Validate(f.validate))
	}
	if len(missing) > 0 {
		if err := h.run(huh.NewForm(huh.NewGroup(missing...))); err != nil {
			return err
		}
		for _, f := range fields {
			*f.value = strings.TrimSpace(*f.value)
		}
	}
	in.OutputDir = resolveOutputDir(h.outputBase, in.OutputDir)
	return nil
}

func resolveOutputDir(base, name string) string {
	if base == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(base, name)
}

func fileValidator(format inputs.FileFormat) func(string) error {
	return func(s string) error {
		s = strings.TrimSpace(s)
		if s == "" {
			return errors.New("a path is required")
		}
		err := inputs.ValidateFile(s, format)
		if errors.Is(err, inputs.ErrWrongExtension) {
			if got := inputs.DetectFormat(s); got != inputs.FormatUnknown {
				info, _ := inputs.GetFormatInfo(got)
				return fmt.Errorf("%s looks like a %s: %w", s, info.Description, err)
			}
		}
		return err
	}
}

func (h *InputHandler) validateNewDir(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return errors.New("a folder name is required")
	}
	if utils.FileExists(resolveOutputDir(h.outputBase, s)) {
		return fmt.Errorf("%s: %w, choose another name", s, utils.ErrDirExists)
	}
	return nil
}
