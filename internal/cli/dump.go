package cli

import (
	"fmt"
	"os"

	"github.com/bastiangx/dynlm/internal/inputs"
	"github.com/bastiangx/dynlm/internal/pipeline"
	"github.com/bastiangx/dynlm/pkg/lmfile"
	"github.com/bastiangx/dynlm/pkg/report"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Print every predicted word chain of a model",
		Args:  cobra.NoArgs,
		RunE:  runDump,
	}

	cmd.Flags().StringP("model", "m", "", "dynamic.lm model file")
	cmd.Flags().StringP("vocab", "v", "", "Vocabulary export; without it indices are printed as numbers")
	_ = cmd.MarkFlagRequired("model")

	RootCmd.AddCommand(cmd)
}

func runDump(cmd *cobra.Command, _ []string) error {
	modelPath, _ := cmd.Flags().GetString("model")
	vocabPath, _ := cmd.Flags().GetString("vocab")

	if err := inputs.ValidateFile(modelPath, inputs.FormatModel); err != nil {
		return err
	}
	data, err := os.ReadFile(modelPath)
	if err != nil {
		return fmt.Errorf("model stage: %w", err)
	}

	var words lmfile.Resolver
	if vocabPath != "" {
		if err := inputs.ValidateFile(vocabPath, inputs.FormatVocab); err != nil {
			return err
		}
		index, err := pipeline.LoadVocabulary(vocabPath, appConfig)
		if err != nil {
			return fmt.Errorf("vocabulary stage: %w", err)
		}
		words = index
	}

	sink := report.NewWriterSink(cmd.OutOrStdout())
	offset, stats, err := pipeline.DumpTrie(data, words, appConfig, sink)
	if flushErr := sink.Flush(); err == nil {
		err = flushErr
	}
	if err != nil {
		return fmt.Errorf("model stage (%s): %w", modelPath, err)
	}
	log.Debug("Trie decoded", "offset", fmt.Sprintf("%#x", offset), "paths", stats.Paths, "records", stats.Records)
	return nil
}
