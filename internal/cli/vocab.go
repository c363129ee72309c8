package cli

import (
	"fmt"

	"github.com/bastiangx/dynlm/internal/inputs"
	"github.com/bastiangx/dynlm/internal/pipeline"
	"github.com/bastiangx/dynlm/internal/utils"
	"github.com/bastiangx/dynlm/pkg/vocab"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "vocab",
		Short: "List vocabulary entries, optionally by prefix",
		Args:  cobra.NoArgs,
		RunE:  runVocab,
	}

	cmd.Flags().StringP("vocab", "v", "", "Vocabulary export (.csv or .tsv)")
	cmd.Flags().StringP("prefix", "p", "", "Only words starting with this prefix")
	cmd.Flags().IntP("limit", "l", 0, "Max entries (0 for all)")
	_ = cmd.MarkFlagRequired("vocab")

	RootCmd.AddCommand(cmd)
}

func runVocab(cmd *cobra.Command, _ []string) error {
	vocabPath, _ := cmd.Flags().GetString("vocab")
	prefix, _ := cmd.Flags().GetString("prefix")
	limit, _ := cmd.Flags().GetInt("limit")

	if err := inputs.ValidateFile(vocabPath, inputs.FormatVocab); err != nil {
		return err
	}
	index, err := pipeline.LoadVocabulary(vocabPath, appConfig)
	if err != nil {
		return fmt.Errorf("vocabulary stage: %w", err)
	}

	var entries []vocab.Entry
	if prefix != "" {
		entries = index.WithPrefix(prefix)
	} else {
		entries = index.Entries()
	}
	log.Debugf("%d of %d entries selected", len(entries), index.Len())

	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	w := cmd.OutOrStdout()
	for _, e := range entries {
		fmt.Fprintf(w, "%d %s(%s)\n", e.Index, e.Word, utils.FormatWithCommas(uint64(e.Frequency)))
	}
	return nil
}
