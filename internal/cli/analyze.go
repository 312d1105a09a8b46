package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-fidelity/internal/config"
)

func newAnalyzeCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [generated.wav recorded.wav]",
		Short: "Analyze an existing pair of generated and recorded WAV files",
		Long: `analyze compares two WAV files. Without arguments it reads generated.wav
and recorded.wav from --dir (or files.generated / files.recorded).`,
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) != 0 && len(args) != 2 {
				return fmt.Errorf("expected no files or two files, got %d", len(args))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 2 {
				a.cfg.Files.Generated, a.cfg.Files.Recorded = args[0], args[1]
			}
			return a.analyze(cmd.Context(), a.cfg.Source())
		},
	}

	addAnalysisFlags(cmd.Flags(), config.Default())
	return cmd
}
