package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/voxqa/internal/core/domain"
)

var (
	askK           int
	askTemperature float64
	askMaxOutput   int
	askJSON        bool
	askSources     bool
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Answer a question from the indexed documents",
	Long: `Retrieves the chunks closest to the question and asks the LLM to answer
from them alone. If the documents do not contain the answer, the model is
told to say so.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	addQueryFlags(askCmd)
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the answer as JSON")
	rootCmd.AddCommand(askCmd)
}

// addQueryFlags registers the retrieval and generation flags shared by ask and chat.
func addQueryFlags(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&askK, "top-k", "k", 0, "number of chunks to retrieve (default from settings)")
	cmd.Flags().Float64VarP(&askTemperature, "temperature", "t", 0, "sampling temperature in [0, 1] (default from settings)")
	cmd.Flags().IntVar(&askMaxOutput, "max-output", 0, "maximum answer length in tokens (default from settings)")
	cmd.Flags().BoolVarP(&askSources, "show-sources", "s", false, "print the supporting chunks")
}

// queryOptions starts from the session defaults and applies the flags that were set.
func queryOptions(cmd *cobra.Command, defaults domain.QueryOptions) domain.QueryOptions {
	opts := defaults
	if cmd.Flags().Changed("top-k") {
		opts.K = askK
	}
	if cmd.Flags().Changed("temperature") {
		opts.Temperature = askTemperature
	}
	if cmd.Flags().Changed("max-output") {
		opts.MaxOutputLength = askMaxOutput
	}
	return opts
}

// answerJSON is the --json shape of an answer.
type answerJSON struct {
	Answer  string       `json:"answer"`
	Sources []sourceJSON `json:"sources"`
}

type sourceJSON struct {
	Source  string  `json:"source"`
	Index   int     `json:"index"`
	Score   float64 `json:"score"`
	Content string  `json:"content"`
}

func runAsk(cmd *cobra.Command, args []string) error {
	question := strings.Join(args, " ")

	pipeline, err := requirePipeline(cmd)
	if err != nil {
		return err
	}

	opts := queryOptions(cmd, pipeline.Defaults().QueryOptions())
	answer, err := pipeline.Query(cmd.Context(), question, opts)
	if err != nil {
		if askJSON {
			return printJSON(cmd, domain.NewErrorResult(err), err)
		}
		return hint(err)
	}

	if askJSON {
		return printJSON(cmd, toAnswerJSON(answer), nil)
	}

	printAnswer(cmd, answer, askSources)
	return nil
}

func toAnswerJSON(a *domain.Answer) answerJSON {
	out := answerJSON{Answer: a.Text, Sources: make([]sourceJSON, len(a.SupportingChunks))}
	for i, c := range a.SupportingChunks {
		out.Sources[i] = sourceJSON{Source: c.Source, Index: c.Position, Content: c.Content}
		if i < len(a.Scores) {
			out.Sources[i].Score = a.Scores[i]
		}
	}
	return out
}

func printAnswer(cmd *cobra.Command, a *domain.Answer, withSources bool) {
	cmd.Println(style.Answer.Render(a.Text))

	if !withSources {
		return
	}
	cmd.Println(style.Label.Render("Sources"))
	for i, c := range a.SupportingChunks {
		score := ""
		if i < len(a.Scores) {
			score = fmt.Sprintf(" (%.2f)", a.Scores[i])
		}
		cmd.Printf("  [%d] %s #%d%s\n", i+1, c.Source, c.Position, score)
		cmd.Println(style.Source.Render(snippet(c.Content, 160)))
	}
}

// snippet collapses whitespace and truncates to max runes.
func snippet(s string, limit int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit]) + "…"
}

// printJSON writes v and returns err, so failures still exit non-zero.
func printJSON(cmd *cobra.Command, v any, err error) error {
	data, merr := json.MarshalIndent(v, "", "  ")
	if merr != nil {
		return fmt.Errorf("failed to marshal output: %w", merr)
	}
	cmd.Println(string(data))
	return err
}
