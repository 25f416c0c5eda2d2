package cli

import (
	"github.com/spf13/cobra"
)

var statusJSON bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the index state",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "output status as JSON")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	pipeline, err := requirePipeline(cmd)
	if err != nil {
		return err
	}

	status, err := pipeline.Status(cmd.Context())
	if err != nil {
		return err
	}
	if statusJSON {
		return printJSON(cmd, status, nil)
	}

	ready := style.Warning.Render("no")
	if status.Ready {
		ready = style.Success.Render("yes")
	}

	cmd.Println(style.Title.Render("Index"))
	cmd.Printf("  State:       %s\n", status.State)
	cmd.Printf("  Ready:       %s\n", ready)
	cmd.Printf("  Chunks:      %d\n", status.Entries)
	if status.Fingerprint != "" {
		cmd.Printf("  Embeddings:  %s\n", status.Fingerprint)
	}
	if status.Location != "" {
		cmd.Printf("  Location:    %s\n", status.Location)
	}
	if len(status.Sources) > 0 {
		cmd.Println(style.Label.Render("Documents"))
		for _, s := range status.Sources {
			cmd.Printf("  %s\n", s)
		}
	}
	return nil
}
