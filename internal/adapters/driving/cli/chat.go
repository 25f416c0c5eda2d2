package cli

import (
	"bufio"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/voxqa/internal/core/domain"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Ask questions interactively",
	Long: `Starts a question loop over the indexed documents. Every question is
answered on its own; earlier turns are shown but not sent to the model.

Type 'exit' or press Ctrl-D to leave.`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	addQueryFlags(chatCmd)
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) error {
	pipeline, err := requirePipeline(cmd)
	if err != nil {
		return err
	}

	status, err := pipeline.Status(cmd.Context())
	if err != nil {
		return err
	}
	if status.Entries == 0 {
		return hint(domain.ErrIndexNotReady)
	}

	opts := queryOptions(cmd, pipeline.Defaults().QueryOptions())
	cmd.Println(style.Title.Render("voxqa chat"))
	cmd.Println(style.Muted.Render(strings.Join(status.Sources, ", ")))
	cmd.Println()

	var conv domain.Conversation
	scanner := bufio.NewScanner(cmd.InOrStdin())
	for {
		cmd.Print(style.Label.Render("> "))
		if !scanner.Scan() {
			cmd.Println()
			break
		}
		question := strings.TrimSpace(scanner.Text())
		if question == "" {
			continue
		}
		if question == "exit" || question == "quit" {
			break
		}

		conv.Append(domain.RoleUser, question, nil)
		answer, err := pipeline.Query(cmd.Context(), question, opts)
		if err != nil {
			if cmd.Context().Err() != nil {
				return err
			}
			// Keep the loop alive; the index is untouched by a failed query.
			cmd.Println(style.Error.Render(hint(err).Error()))
			continue
		}
		conv.Append(domain.RoleAssistant, answer.Text, answer.SupportingChunks)
		printAnswer(cmd, answer, askSources)
		cmd.Println()
	}

	if err := scanner.Err(); err != nil {
		return err
	}
	cmd.Printf("%d questions answered.\n", conv.Len()/2)
	return nil
}
