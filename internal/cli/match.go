package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/bastiangx/dynlm/internal/inputs"
	"github.com/bastiangx/dynlm/internal/pipeline"
	"github.com/bastiangx/dynlm/pkg/match"
	"github.com/bastiangx/dynlm/pkg/report"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "match",
		Short: "Score a message against a vocabulary",
		Args:  cobra.NoArgs,
		RunE:  runMatch,
	}

	cmd.Flags().StringP("vocab", "v", "", "Vocabulary export (.csv or .tsv)")
	cmd.Flags().StringP("message", "t", "", "Message text file (.txt)")
	_ = cmd.MarkFlagRequired("vocab")
	_ = cmd.MarkFlagRequired("message")

	RootCmd.AddCommand(cmd)
}

func runMatch(cmd *cobra.Command, _ []string) error {
	vocabPath, _ := cmd.Flags().GetString("vocab")
	messagePath, _ := cmd.Flags().GetString("message")

	if err := inputs.ValidateFile(vocabPath, inputs.FormatVocab); err != nil {
		return err
	}
	if err := inputs.ValidateFile(messagePath, inputs.FormatMessage); err != nil {
		return err
	}

	index, err := pipeline.LoadVocabulary(vocabPath, appConfig)
	if err != nil {
		return fmt.Errorf("vocabulary stage: %w", err)
	}
	message, err := os.ReadFile(messagePath)
	if err != nil {
		return fmt.Errorf("message stage: %w", err)
	}

	sink := report.NewWriterSink(cmd.OutOrStdout())
	_, err = pipeline.MatchMessage(string(message), index, sink)
	if flushErr := sink.Flush(); flushErr != nil {
		return flushErr
	}
	if err != nil && !errors.Is(err, match.ErrEmptyMessage) {
		return fmt.Errorf("message stage: %w", err)
	}
	return nil
}
