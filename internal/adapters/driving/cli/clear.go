package cli

import (
	"github.com/spf13/cobra"
)

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every indexed chunk",
	Long:  `Empties the index and deletes its directory on disk. Settings are kept.`,
	Args:  cobra.NoArgs,
	RunE:  runClear,
}

func init() {
	rootCmd.AddCommand(clearCmd)
}

func runClear(cmd *cobra.Command, _ []string) error {
	pipeline, err := requirePipeline(cmd)
	if err != nil {
		return err
	}

	if err := pipeline.Clear(cmd.Context()); err != nil {
		return err
	}
	cmd.Println("Index cleared.")
	return nil
}
