package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ppiankov/appscope/internal/vocab"
)

var vocabCmd = &cobra.Command{
	Use:   "vocab",
	Short: "Inspect or customize the analysis vocabulary",
	Long: `The vocabulary holds the categories, themes, force keywords, JTBD patterns
and outcome dimensions used by the analyzers. A customized copy can be
selected with --vocab or analysis.vocabulary_file.`,
}

var vocabShowCmd = &cobra.Command{
	Use:   "show [file]",
	Short: "Print the built-in vocabulary, or validate and print a file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			_, err := os.Stdout.Write(vocab.DefaultYAML())
			return err
		}

		v, err := vocab.Load(args[0])
		if err != nil {
			return err
		}
		data, err := v.Marshal()
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(data)
		return err
	},
}

var vocabInitCmd = &cobra.Command{
	Use:   "init <file>",
	Short: "Write the built-in vocabulary to a file for editing",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("vocabulary file already exists: %s", path)
		}
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return fmt.Errorf("create directory: %w", err)
		}
		if err := os.WriteFile(path, vocab.DefaultYAML(), 0644); err != nil {
			return fmt.Errorf("write vocabulary: %w", err)
		}

		fmt.Printf("✓ Wrote vocabulary: %s\n", path)
		fmt.Printf("\nUse it with:\n")
		fmt.Printf("  appscope analyze <app> --vocab %s\n\n", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(vocabCmd)
	vocabCmd.AddCommand(vocabShowCmd)
	vocabCmd.AddCommand(vocabInitCmd)
}
