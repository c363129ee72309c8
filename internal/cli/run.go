package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/bastiangx/dynlm/internal/logger"
	"github.com/bastiangx/dynlm/internal/pipeline"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Decode a model, score a message and write the results to a new folder",
		Args:  cobra.NoArgs,
		RunE:  runExamination,
	}

	cmd.Flags().StringP("model", "m", "", "dynamic.lm model file")
	cmd.Flags().StringP("vocab", "v", "", "Vocabulary export (.csv or .tsv)")
	cmd.Flags().StringP("message", "t", "", "Message text file (.txt)")
	cmd.Flags().StringP("out", "o", "", "New folder for the results")

	RootCmd.AddCommand(cmd)
}

func runExamination(cmd *cobra.Command, _ []string) error {
	var in pipeline.Inputs
	in.ModelPath, _ = cmd.Flags().GetString("model")
	in.VocabPath, _ = cmd.Flags().GetString("vocab")
	in.MessagePath, _ = cmd.Flags().GetString("message")
	in.OutputDir, _ = cmd.Flags().GetString("out")

	handler := NewInputHandler(Interactive(), appConfig.Output.Dir)
	if err := handler.Complete(&in); err != nil {
		return err
	}

	opts := pipeline.Options{Now: time.Now, Logger: logger.New(AppName)}
	l, err := openLedger()
	switch {
	case err == nil:
		defer l.Close()
		opts.Recorder = l
		opts.RunID = l.NewID(time.Now())
	case errors.Is(err, errLedgerDisabled):
		log.Debug("Run history disabled")
	default:
		log.Warnf("Continuing without run history: %v", err)
	}

	log.Debug("Run inputs",
		"model", in.ModelPath,
		"vocab", in.VocabPath,
		"message", in.MessagePath,
		"out", in.OutputDir)

	out, err := pipeline.Run(cmd.Context(), in, appConfig, opts)
	if err != nil {
		if out != nil && out.ActivityFile != "" {
			log.Errorf("See %s for details", out.ActivityFile)
		}
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), renderFinish(out))
	return nil
}
